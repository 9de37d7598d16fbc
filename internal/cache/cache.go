package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
)

const (
	ProductCacheTTL  = 10 * time.Minute
	WishlistCacheTTL = 5 * time.Minute
)

// GetProductFromCache récupère un produit depuis Redis ou MongoDB (cache-aside)
func GetProductFromCache(ctx context.Context, productID primitive.ObjectID) (*models.Product, error) {
	key := "product:" + productID.Hex()

	// 1. Essayer le cache Redis
	data, err := database.Redis.Get(ctx, key).Result()
	if err == nil {
		var product models.Product
		if json.Unmarshal([]byte(data), &product) == nil {
			return &product, nil
		}
	}

	// 2. Récupérer de MongoDB
	var product models.Product
	if err := database.Products().FindOne(ctx, bson.M{"_id": productID}).Decode(&product); err != nil {
		return nil, err
	}

	// 3. Mettre en cache
	jsonData, _ := json.Marshal(product)
	database.Redis.Set(ctx, key, jsonData, ProductCacheTTL)

	return &product, nil
}

// InvalidateProductCache invalide le cache d'un produit
func InvalidateProductCache(ctx context.Context, productID primitive.ObjectID) {
	database.Redis.Del(ctx, "product:"+productID.Hex())
}

// GetWishlistFromCache récupère la wishlist peuplée depuis Redis (ou nil si absente)
func GetWishlistFromCache(ctx context.Context, userID string) []models.Product {
	data, err := database.Redis.Get(ctx, "wishlist:"+userID).Result()
	if err != nil {
		return nil
	}
	var products []models.Product
	if json.Unmarshal([]byte(data), &products) != nil {
		return nil
	}
	return products
}

// SetWishlistInCache met en cache la wishlist peuplée
func SetWishlistInCache(ctx context.Context, userID string, products []models.Product) {
	jsonData, _ := json.Marshal(products)
	database.Redis.Set(ctx, "wishlist:"+userID, jsonData, WishlistCacheTTL)
}

// InvalidateWishlistCache invalide le cache wishlist d'un utilisateur
func InvalidateWishlistCache(ctx context.Context, userID string) {
	database.Redis.Del(ctx, "wishlist:"+userID)
}
