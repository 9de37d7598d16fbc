package product

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"velora_back_end/internal/cache"
	"velora_back_end/internal/database"
	"velora_back_end/internal/services"
	"velora_back_end/internal/utils"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// UploadImage téléverse une image produit dans MinIO (admin) et ajoute
// la clé de l'objet à la liste d'images du produit
func UploadImage(c *gin.Context) {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Identifiant produit invalide", utils.CodeInvalidID)
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		utils.FailValidation(c, "Fichier image requis (champ \"image\")")
		return
	}

	contentType := file.Header.Get("Content-Type")
	if !allowedImageTypes[contentType] {
		utils.FailValidation(c, "Format d'image non supporté (jpeg, png ou webp)")
		return
	}
	if file.Size > 5<<20 {
		utils.FailValidation(c, "L'image ne doit pas dépasser 5 Mo")
		return
	}

	ctx := c.Request.Context()

	objectName, err := services.UploadProductImage(ctx, file)
	if err != nil {
		log.Println("❌ Erreur upload MinIO:", err)
		utils.FailInternal(c, "Erreur lors du téléversement de l'image")
		return
	}

	res, err := database.Products().UpdateOne(ctx,
		bson.M{"_id": productID},
		bson.M{
			"$push": bson.M{"images": objectName},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil || res.MatchedCount == 0 {
		services.RemoveProductImage(ctx, objectName)
		utils.FailNotFound(c, "Produit introuvable")
		return
	}

	cache.InvalidateProductCache(ctx, productID)
	utils.OKWithMessage(c, http.StatusOK, "Image téléversée", gin.H{"image": objectName})
}

// GetImageURL renvoie une URL présignée (24h) pour une image produit
func GetImageURL(c *gin.Context) {
	objectName := strings.TrimPrefix(c.Param("object"), "/")
	if objectName == "" {
		utils.FailValidation(c, "Nom d'objet requis")
		return
	}

	url, err := services.GenerateSignedURL(c.Request.Context(), objectName)
	if err != nil {
		log.Println("❌ Erreur URL présignée:", err)
		utils.FailInternal(c, "Erreur lors de la génération de l'URL")
		return
	}

	utils.OK(c, http.StatusOK, gin.H{"url": url})
}

// DeleteImage retire une image de la liste du produit et du bucket
func DeleteImage(c *gin.Context) {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Identifiant produit invalide", utils.CodeInvalidID)
		return
	}

	var input struct {
		Image string `json:"image" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.FailValidation(c, "image requis")
		return
	}

	ctx := c.Request.Context()

	res, err := database.Products().UpdateOne(ctx,
		bson.M{"_id": productID},
		bson.M{
			"$pull": bson.M{"images": input.Image},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil || res.MatchedCount == 0 {
		utils.FailNotFound(c, "Produit introuvable")
		return
	}

	if err := services.RemoveProductImage(ctx, input.Image); err != nil {
		log.Println("⚠️ Erreur suppression objet MinIO:", err)
	}

	cache.InvalidateProductCache(ctx, productID)
	utils.OKWithMessage(c, http.StatusOK, "Image supprimée", nil)
}
