package product

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"velora_back_end/internal/cache"
	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
	"velora_back_end/internal/services"
	"velora_back_end/internal/utils"
)

// CreateProduct crée un produit (admin). Le SKU est généré à partir de la
// catégorie s'il n'est pas fourni, puis le produit est indexé dans Elastic.
func CreateProduct(c *gin.Context) {
	var input struct {
		Name         string   `json:"name" binding:"required"`
		Description  string   `json:"description"`
		Price        float64  `json:"price" binding:"required"`
		ComparePrice float64  `json:"comparePrice"`
		Category     string   `json:"category" binding:"required"`
		Brand        string   `json:"brand"`
		SKU          string   `json:"sku"`
		Stock        int      `json:"stock"`
		Images       []string `json:"images"`
		Tags         []string `json:"tags"`
		IsFeatured   bool     `json:"isFeatured"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.FailValidation(c, "Nom, prix et catégorie sont requis")
		return
	}
	if input.Price <= 0 {
		utils.FailValidation(c, "Le prix doit être supérieur à 0")
		return
	}
	if input.Stock < 0 {
		utils.FailValidation(c, "Le stock ne peut pas être négatif")
		return
	}

	sku := input.SKU
	if sku == "" {
		sku = services.GenerateSKU(input.Category)
	}

	if input.Images == nil {
		input.Images = []string{}
	}

	now := time.Now()
	product := models.Product{
		Name:         input.Name,
		Description:  input.Description,
		Price:        input.Price,
		ComparePrice: input.ComparePrice,
		Category:     input.Category,
		Brand:        input.Brand,
		SKU:          sku,
		Stock:        input.Stock,
		Images:       input.Images,
		Tags:         input.Tags,
		IsActive:     true,
		IsFeatured:   input.IsFeatured,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	res, err := database.Products().InsertOne(c.Request.Context(), product)
	if err != nil {
		if utils.IsDuplicateKey(err) {
			utils.Fail(c, http.StatusConflict, utils.DuplicateKeyMessage(err), utils.CodeDuplicate)
			return
		}
		log.Println("❌ Erreur création produit:", err)
		utils.FailInternal(c, "Erreur lors de la création du produit")
		return
	}
	product.ID = res.InsertedID.(primitive.ObjectID)

	go services.IndexProduct(product)

	log.Println("✅ Produit créé:", product.Name, "(", product.SKU, ")")
	utils.OKWithMessage(c, http.StatusCreated, "Produit créé avec succès", product)
}

// UpdateProduct modifie un produit (admin). Prix > 0 et stock >= 0 restent
// garantis. L'index Elastic et le cache Redis sont rafraîchis.
func UpdateProduct(c *gin.Context) {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Identifiant produit invalide", utils.CodeInvalidID)
		return
	}

	var input struct {
		Name         *string   `json:"name"`
		Description  *string   `json:"description"`
		Price        *float64  `json:"price"`
		ComparePrice *float64  `json:"comparePrice"`
		Category     *string   `json:"category"`
		Brand        *string   `json:"brand"`
		Stock        *int      `json:"stock"`
		Images       *[]string `json:"images"`
		Tags         *[]string `json:"tags"`
		IsFeatured   *bool     `json:"isFeatured"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.FailValidation(c, "Corps de requête invalide")
		return
	}

	set := bson.M{}
	if input.Name != nil {
		set["name"] = *input.Name
	}
	if input.Description != nil {
		set["description"] = *input.Description
	}
	if input.Price != nil {
		if *input.Price <= 0 {
			utils.FailValidation(c, "Le prix doit être supérieur à 0")
			return
		}
		set["price"] = *input.Price
	}
	if input.ComparePrice != nil {
		set["comparePrice"] = *input.ComparePrice
	}
	if input.Category != nil {
		set["category"] = *input.Category
	}
	if input.Brand != nil {
		set["brand"] = *input.Brand
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			utils.FailValidation(c, "Le stock ne peut pas être négatif")
			return
		}
		set["stock"] = *input.Stock
	}
	if input.Images != nil {
		set["images"] = *input.Images
	}
	if input.Tags != nil {
		set["tags"] = *input.Tags
	}
	if input.IsFeatured != nil {
		set["isFeatured"] = *input.IsFeatured
	}

	if len(set) == 0 {
		utils.FailValidation(c, "Aucun champ à mettre à jour")
		return
	}

	ctx := c.Request.Context()
	res, err := database.Products().UpdateOne(ctx,
		bson.M{"_id": productID},
		bson.M{"$set": touchUpdatedAt(set)},
	)
	if err != nil || res.MatchedCount == 0 {
		utils.FailNotFound(c, "Produit introuvable")
		return
	}

	var product models.Product
	if err := database.Products().FindOne(ctx, bson.M{"_id": productID}).Decode(&product); err != nil {
		utils.FailInternal(c, "Erreur lors de la relecture du produit")
		return
	}

	cache.InvalidateProductCache(ctx, productID)
	go services.IndexProduct(product)

	utils.OKWithMessage(c, http.StatusOK, "Produit mis à jour", product)
}

// DeleteProduct supprime un produit et ses avis, et le retire de l'index
func DeleteProduct(c *gin.Context) {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Identifiant produit invalide", utils.CodeInvalidID)
		return
	}

	ctx := c.Request.Context()

	res, err := database.Products().DeleteOne(ctx, bson.M{"_id": productID})
	if err != nil || res.DeletedCount == 0 {
		utils.FailNotFound(c, "Produit introuvable")
		return
	}

	// Cascade : les avis orphelins ne servent plus à rien
	if _, err := database.Reviews().DeleteMany(ctx, bson.M{"productId": productID}); err != nil {
		log.Println("⚠️ Erreur suppression avis du produit:", err)
	}

	cache.InvalidateProductCache(ctx, productID)
	go services.RemoveProductFromIndex(productID.Hex())

	log.Println("🗑️ Produit supprimé:", productID.Hex())
	utils.OKWithMessage(c, http.StatusOK, "Produit supprimé", nil)
}

// ToggleProductStatus active/désactive un produit. Un produit désactivé
// sort de l'index de recherche.
func ToggleProductStatus(c *gin.Context) {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Identifiant produit invalide", utils.CodeInvalidID)
		return
	}

	ctx := c.Request.Context()

	var product models.Product
	if err := database.Products().FindOne(ctx, bson.M{"_id": productID}).Decode(&product); err != nil {
		utils.FailNotFound(c, "Produit introuvable")
		return
	}

	product.IsActive = !product.IsActive
	product.UpdatedAt = time.Now()

	_, err = database.Products().UpdateOne(ctx,
		bson.M{"_id": productID},
		bson.M{"$set": bson.M{"isActive": product.IsActive, "updatedAt": product.UpdatedAt}},
	)
	if err != nil {
		utils.FailInternal(c, "Erreur lors du changement de statut")
		return
	}

	cache.InvalidateProductCache(ctx, productID)
	if product.IsActive {
		go services.IndexProduct(product)
	} else {
		go services.RemoveProductFromIndex(productID.Hex())
	}

	utils.OKWithMessage(c, http.StatusOK, "Statut du produit mis à jour", gin.H{"isActive": product.IsActive})
}

// ListAllProducts liste tous les produits, actifs ou non (back-office)
func ListAllProducts(c *gin.Context) {
	page, limit := utils.ParsePagination(c, 20)
	ctx := c.Request.Context()

	total, err := database.Products().CountDocuments(ctx, bson.M{})
	if err != nil {
		utils.FailInternal(c, "Erreur lors de la récupération des produits")
		return
	}

	cursor, err := database.Products().Find(ctx, bson.M{},
		options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip(int64((page-1)*limit)).
			SetLimit(int64(limit)))
	if err != nil {
		utils.FailInternal(c, "Erreur lors de la récupération des produits")
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		utils.FailInternal(c, "Erreur lors de la récupération des produits")
		return
	}

	utils.OK(c, http.StatusOK, gin.H{
		"products":   products,
		"pagination": utils.BuildPagination(page, limit, total),
	})
}
