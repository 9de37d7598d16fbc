package user

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"velora_back_end/internal/cache"
	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
	"velora_back_end/internal/utils"
)

// GetWishlist renvoie la wishlist peuplée (produits actifs uniquement).
// Les ids de produits disparus sont retirés du document utilisateur.
func GetWishlist(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	// Cache-aside : la version peuplée vit 5 minutes dans Redis
	if cached := cache.GetWishlistFromCache(ctx, userID.Hex()); cached != nil {
		utils.OK(c, http.StatusOK, gin.H{"products": cached, "count": len(cached)})
		return
	}

	var user models.User
	if err := database.Users().FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		utils.FailNotFound(c, "Utilisateur introuvable")
		return
	}

	products := []models.Product{}
	validIDs := []primitive.ObjectID{}
	for _, pid := range user.Wishlist {
		var product models.Product
		err := database.Products().FindOne(ctx, bson.M{"_id": pid}).Decode(&product)
		if err != nil || !product.IsActive {
			continue
		}
		products = append(products, product)
		validIDs = append(validIDs, pid)
	}

	// Purger les ids périmés
	if len(validIDs) != len(user.Wishlist) {
		database.Users().UpdateOne(ctx,
			bson.M{"_id": userID},
			bson.M{"$set": bson.M{"wishlist": validIDs, "updatedAt": time.Now()}},
		)
	}

	cache.SetWishlistInCache(ctx, userID.Hex(), products)

	utils.OK(c, http.StatusOK, gin.H{"products": products, "count": len(products)})
}

// AddToWishlist ajoute un produit à la wishlist
func AddToWishlist(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input struct {
		ProductID string `json:"productId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.FailValidation(c, "productId requis")
		return
	}

	productID, err := primitive.ObjectIDFromHex(input.ProductID)
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Identifiant produit invalide", utils.CodeInvalidID)
		return
	}

	ctx := c.Request.Context()

	var product models.Product
	if err := database.Products().FindOne(ctx, bson.M{"_id": productID}).Decode(&product); err != nil || !product.IsActive {
		utils.FailNotFound(c, "Produit introuvable ou indisponible")
		return
	}

	var user models.User
	if err := database.Users().FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		utils.FailNotFound(c, "Utilisateur introuvable")
		return
	}

	if user.InWishlist(productID) {
		utils.FailValidation(c, "Ce produit est déjà dans votre liste d'envies")
		return
	}

	_, err = database.Users().UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$addToSet": bson.M{"wishlist": productID},
			"$set":      bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		utils.FailInternal(c, "Erreur lors de l'ajout à la liste d'envies")
		return
	}

	cache.InvalidateWishlistCache(ctx, userID.Hex())
	utils.OKWithMessage(c, http.StatusOK, "Produit ajouté à votre liste d'envies", nil)
}

// RemoveFromWishlist retire un produit de la wishlist
func RemoveFromWishlist(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Identifiant produit invalide", utils.CodeInvalidID)
		return
	}

	ctx := c.Request.Context()

	var user models.User
	if err := database.Users().FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		utils.FailNotFound(c, "Utilisateur introuvable")
		return
	}

	if !user.InWishlist(productID) {
		utils.FailValidation(c, "Ce produit n'est pas dans votre liste d'envies")
		return
	}

	_, err = database.Users().UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$pull": bson.M{"wishlist": productID},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		utils.FailInternal(c, "Erreur lors du retrait de la liste d'envies")
		return
	}

	cache.InvalidateWishlistCache(ctx, userID.Hex())
	utils.OKWithMessage(c, http.StatusOK, "Produit retiré de votre liste d'envies", nil)
}

// CheckWishlist indique si un produit est dans la wishlist
func CheckWishlist(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Identifiant produit invalide", utils.CodeInvalidID)
		return
	}

	var user models.User
	if err := database.Users().FindOne(c.Request.Context(), bson.M{"_id": userID}).Decode(&user); err != nil {
		utils.FailNotFound(c, "Utilisateur introuvable")
		return
	}

	utils.OK(c, http.StatusOK, gin.H{"inWishlist": user.InWishlist(productID)})
}

// ClearWishlist vide la wishlist
func ClearWishlist(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	_, err := database.Users().UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"wishlist": []primitive.ObjectID{}, "updatedAt": time.Now()}},
	)
	if err != nil {
		utils.FailInternal(c, "Erreur lors du vidage de la liste d'envies")
		return
	}

	cache.InvalidateWishlistCache(ctx, userID.Hex())
	utils.OKWithMessage(c, http.StatusOK, "Liste d'envies vidée", nil)
}

// ShareWishlist envoie la liste d'envies par e-mail à un destinataire
func ShareWishlist(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.FailValidation(c, "E-mail du destinataire requis")
		return
	}

	ctx := c.Request.Context()

	var user models.User
	if err := database.Users().FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		utils.FailNotFound(c, "Utilisateur introuvable")
		return
	}

	products := []models.Product{}
	for _, pid := range user.Wishlist {
		var product models.Product
		if database.Products().FindOne(ctx, bson.M{"_id": pid}).Decode(&product) == nil && product.IsActive {
			products = append(products, product)
		}
	}

	if len(products) == 0 {
		utils.FailValidation(c, "Votre liste d'envies est vide")
		return
	}

	if err := utils.SendWishlistEmail(input.Email, user.Name, products); err != nil {
		log.Println("❌ Erreur envoi wishlist:", err)
		utils.FailInternal(c, "Erreur lors de l'envoi de l'e-mail")
		return
	}

	utils.OKWithMessage(c, http.StatusOK, "Liste d'envies partagée avec "+input.Email, nil)
}
