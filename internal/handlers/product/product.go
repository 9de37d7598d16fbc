package product

import (
	"net/http"
	"strconv"
	"strings"
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

// buildListFilter construit le filtre Mongo depuis la query string
func buildListFilter(c *gin.Context) bson.M {
	filter := bson.M{"isActive": true}

	if category := c.Query("category"); category != "" {
		filter["category"] = bson.M{"$regex": category, "$options": "i"}
	}

	priceFilter := bson.M{}
	if min, err := strconv.ParseFloat(c.Query("minPrice"), 64); err == nil {
		priceFilter["$gte"] = min
	}
	if max, err := strconv.ParseFloat(c.Query("maxPrice"), 64); err == nil {
		priceFilter["$lte"] = max
	}
	if len(priceFilter) > 0 {
		filter["price"] = priceFilter
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		regex := bson.M{"$regex": search, "$options": "i"}
		filter["$or"] = []bson.M{
			{"name": regex},
			{"description": regex},
			{"category": regex},
			{"brand": regex},
			{"tags": regex},
		}
	}

	return filter
}

// buildSort traduit le paramètre sort en tri Mongo
func buildSort(c *gin.Context) bson.D {
	switch c.Query("sort") {
	case "price_asc":
		return bson.D{{Key: "price", Value: 1}}
	case "price_desc":
		return bson.D{{Key: "price", Value: -1}}
	case "rating":
		return bson.D{{Key: "averageRating", Value: -1}}
	case "popular":
		return bson.D{{Key: "totalSold", Value: -1}}
	case "oldest":
		return bson.D{{Key: "createdAt", Value: 1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}}
	}
}

// ListProducts liste les produits actifs avec filtres, tri et pagination
func ListProducts(c *gin.Context) {
	page, limit := utils.ParsePagination(c, 12)
	filter := buildListFilter(c)
	ctx := c.Request.Context()

	total, err := database.Products().CountDocuments(ctx, filter)
	if err != nil {
		utils.FailInternal(c, "Erreur lors de la récupération des produits")
		return
	}

	opts := options.Find().
		SetSort(buildSort(c)).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := database.Products().Find(ctx, filter, opts)
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

// GetProduct renvoie un produit actif avec ses avis, et incrémente le
// compteur de vues (approximatif sous trafic concurrent, assumé).
// Le produit est servi depuis le cache Redis quand il y est.
func GetProduct(c *gin.Context) {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Identifiant produit invalide", utils.CodeInvalidID)
		return
	}

	ctx := c.Request.Context()

	product, err := cache.GetProductFromCache(ctx, productID)
	if err != nil || !product.IsActive {
		utils.FailNotFound(c, "Produit introuvable")
		return
	}

	database.Products().UpdateOne(ctx,
		bson.M{"_id": productID},
		bson.M{"$inc": bson.M{"views": 1}},
	)
	product.Views++

	// Embarquer les avis
	cursor, err := database.Reviews().Find(ctx, bson.M{"productId": productID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	reviews := []models.Review{}
	if err == nil {
		cursor.All(ctx, &reviews)
		cursor.Close(ctx)
	}

	utils.OK(c, http.StatusOK, gin.H{
		"product": product,
		"reviews": reviews,
	})
}

// SearchProducts interroge Elasticsearch, et retombe sur une recherche
// regex MongoDB si l'index est indisponible
func SearchProducts(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if len(query) < 2 {
		utils.FailValidation(c, "La recherche doit contenir au moins 2 caractères")
		return
	}

	results, err := services.SearchProducts(query)
	if err == nil {
		utils.OK(c, http.StatusOK, gin.H{"products": results, "count": len(results), "source": "elasticsearch"})
		return
	}

	// Mode dégradé : regex MongoDB
	regex := bson.M{"$regex": query, "$options": "i"}
	filter := bson.M{
		"isActive": true,
		"$or": []bson.M{
			{"name": regex},
			{"description": regex},
			{"brand": regex},
			{"category": regex},
			{"tags": regex},
		},
	}

	ctx := c.Request.Context()
	cursor, err := database.Products().Find(ctx, filter, options.Find().SetLimit(50))
	if err != nil {
		utils.FailInternal(c, "Erreur lors de la recherche")
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		utils.FailInternal(c, "Erreur lors de la recherche")
		return
	}

	utils.OK(c, http.StatusOK, gin.H{"products": products, "count": len(products), "source": "mongodb"})
}

// GetCategories renvoie les catégories distinctes des produits actifs
func GetCategories(c *gin.Context) {
	values, err := database.Products().Distinct(c.Request.Context(), "category", bson.M{"isActive": true})
	if err != nil {
		utils.FailInternal(c, "Erreur lors de la récupération des catégories")
		return
	}

	categories := []string{}
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			categories = append(categories, s)
		}
	}

	utils.OK(c, http.StatusOK, gin.H{"categories": categories})
}

// listWith renvoie les produits actifs correspondant au filtre et au tri donnés
func listWith(c *gin.Context, filter bson.M, sort bson.D, defaultLimit int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 || limit > 50 {
		limit = defaultLimit
	}

	ctx := c.Request.Context()
	cursor, err := database.Products().Find(ctx, filter,
		options.Find().SetSort(sort).SetLimit(int64(limit)))
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

	utils.OK(c, http.StatusOK, gin.H{"products": products, "count": len(products)})
}

// GetFeatured renvoie les produits mis en avant
func GetFeatured(c *gin.Context) {
	listWith(c,
		bson.M{"isActive": true, "isFeatured": true},
		bson.D{{Key: "createdAt", Value: -1}}, 8)
}

// GetNewArrivals renvoie les derniers produits ajoutés
func GetNewArrivals(c *gin.Context) {
	listWith(c,
		bson.M{"isActive": true},
		bson.D{{Key: "createdAt", Value: -1}}, 8)
}

// GetBestSellers renvoie les produits les plus vendus
func GetBestSellers(c *gin.Context) {
	listWith(c,
		bson.M{"isActive": true, "totalSold": bson.M{"$gt": 0}},
		bson.D{{Key: "totalSold", Value: -1}}, 8)
}

// GetByCategory renvoie les produits actifs d'une catégorie
func GetByCategory(c *gin.Context) {
	category := c.Param("category")
	listWith(c,
		bson.M{"isActive": true, "category": bson.M{"$regex": "^" + category + "$", "$options": "i"}},
		bson.D{{Key: "createdAt", Value: -1}}, 12)
}

// GetRelated renvoie des produits de la même catégorie, hors produit courant
func GetRelated(c *gin.Context) {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Identifiant produit invalide", utils.CodeInvalidID)
		return
	}

	product, err := cache.GetProductFromCache(c.Request.Context(), productID)
	if err != nil || !product.IsActive {
		utils.FailNotFound(c, "Produit introuvable")
		return
	}

	listWith(c,
		bson.M{
			"isActive": true,
			"category": product.Category,
			"_id":      bson.M{"$ne": productID},
		},
		bson.D{{Key: "averageRating", Value: -1}}, 4)
}

// touchUpdatedAt est utilisé par les handlers admin pour horodater les mises à jour
func touchUpdatedAt(set bson.M) bson.M {
	set["updatedAt"] = time.Now()
	return set
}
