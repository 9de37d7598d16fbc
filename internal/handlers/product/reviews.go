package product

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
	"velora_back_end/internal/services"
	"velora_back_end/internal/utils"
)

// hasDeliveredOrder vérifie si l'utilisateur a reçu ce produit dans une
// commande livrée (badge "achat vérifié")
func hasDeliveredOrder(c *gin.Context, userID, productID primitive.ObjectID) bool {
	count, err := database.Orders().CountDocuments(c.Request.Context(), bson.M{
		"userId":          userID,
		"status":          models.OrderStatusDelivered,
		"items.productId": productID,
	})
	return err == nil && count > 0
}

// CreateReview dépose un avis. Un seul avis par couple (utilisateur,
// produit) : l'index unique renvoie un 409 sur le doublon. La note
// moyenne du produit est recalculée intégralement après coup.
func CreateReview(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		utils.Fail(c, http.StatusUnauthorized, "Token invalide", utils.CodeInvalidToken)
		return
	}

	var input struct {
		ProductID string `json:"productId" binding:"required"`
		Rating    int    `json:"rating" binding:"required,min=1,max=5"`
		Title     string `json:"title"`
		Comment   string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.FailValidation(c, "productId et rating (1 à 5) sont requis")
		return
	}

	productID, err := primitive.ObjectIDFromHex(input.ProductID)
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Identifiant produit invalide", utils.CodeInvalidID)
		return
	}

	ctx := c.Request.Context()

	var product models.Product
	if err := database.Products().FindOne(ctx, bson.M{"_id": productID, "isActive": true}).Decode(&product); err != nil {
		utils.FailNotFound(c, "Produit introuvable")
		return
	}

	var user models.User
	if err := database.Users().FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		utils.FailNotFound(c, "Utilisateur introuvable")
		return
	}

	now := time.Now()
	review := models.Review{
		ProductID:        productID,
		UserID:           userID,
		UserName:         user.Name,
		Rating:           input.Rating,
		Title:            input.Title,
		Comment:          input.Comment,
		VerifiedPurchase: hasDeliveredOrder(c, userID, productID),
		Votes:            []models.ReviewVote{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	res, err := database.Reviews().InsertOne(ctx, review)
	if err != nil {
		if utils.IsDuplicateKey(err) {
			utils.Fail(c, http.StatusConflict, "Vous avez déjà laissé un avis sur ce produit", utils.CodeDuplicate)
			return
		}
		log.Println("❌ Erreur création avis:", err)
		utils.FailInternal(c, "Erreur lors de la création de l'avis")
		return
	}
	review.ID = res.InsertedID.(primitive.ObjectID)

	services.RecomputeProductRating(ctx, productID)

	log.Println("⭐ Nouvel avis sur", product.Name, ":", input.Rating, "/5")
	utils.OKWithMessage(c, http.StatusCreated, "Avis publié", review)
}

// ListReviews renvoie les avis d'un produit, les plus récents d'abord
func ListReviews(c *gin.Context) {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Identifiant produit invalide", utils.CodeInvalidID)
		return
	}

	page, limit := utils.ParsePagination(c, 10)
	ctx := c.Request.Context()

	filter := bson.M{"productId": productID}
	total, err := database.Reviews().CountDocuments(ctx, filter)
	if err != nil {
		utils.FailInternal(c, "Erreur lors de la récupération des avis")
		return
	}

	cursor, err := database.Reviews().Find(ctx, filter,
		options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip(int64((page-1)*limit)).
			SetLimit(int64(limit)))
	if err != nil {
		utils.FailInternal(c, "Erreur lors de la récupération des avis")
		return
	}
	defer cursor.Close(ctx)

	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		utils.FailInternal(c, "Erreur lors de la récupération des avis")
		return
	}

	utils.OK(c, http.StatusOK, gin.H{
		"reviews":    reviews,
		"pagination": utils.BuildPagination(page, limit, total),
	})
}

// UpdateReview modifie un avis (auteur uniquement) puis recalcule la note
func UpdateReview(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		utils.Fail(c, http.StatusUnauthorized, "Token invalide", utils.CodeInvalidToken)
		return
	}

	reviewID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Identifiant d'avis invalide", utils.CodeInvalidID)
		return
	}

	var input struct {
		Rating  *int    `json:"rating"`
		Title   *string `json:"title"`
		Comment *string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.FailValidation(c, "Corps de requête invalide")
		return
	}
	if input.Rating != nil && (*input.Rating < 1 || *input.Rating > 5) {
		utils.FailValidation(c, "La note doit être comprise entre 1 et 5")
		return
	}

	ctx := c.Request.Context()

	var review models.Review
	if err := database.Reviews().FindOne(ctx, bson.M{"_id": reviewID}).Decode(&review); err != nil {
		utils.FailNotFound(c, "Avis introuvable")
		return
	}
	if review.UserID != userID {
		utils.Fail(c, http.StatusForbidden, "Vous ne pouvez modifier que vos propres avis", utils.CodeForbidden)
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if input.Rating != nil {
		set["rating"] = *input.Rating
	}
	if input.Title != nil {
		set["title"] = *input.Title
	}
	if input.Comment != nil {
		set["comment"] = *input.Comment
	}

	if _, err := database.Reviews().UpdateOne(ctx, bson.M{"_id": reviewID}, bson.M{"$set": set}); err != nil {
		utils.FailInternal(c, "Erreur lors de la modification de l'avis")
		return
	}

	services.RecomputeProductRating(ctx, review.ProductID)

	utils.OKWithMessage(c, http.StatusOK, "Avis modifié", nil)
}

// DeleteReview supprime un avis (auteur ou admin) puis recalcule la note
func DeleteReview(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		utils.Fail(c, http.StatusUnauthorized, "Token invalide", utils.CodeInvalidToken)
		return
	}

	reviewID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Identifiant d'avis invalide", utils.CodeInvalidID)
		return
	}

	ctx := c.Request.Context()

	var review models.Review
	if err := database.Reviews().FindOne(ctx, bson.M{"_id": reviewID}).Decode(&review); err != nil {
		utils.FailNotFound(c, "Avis introuvable")
		return
	}

	isAdmin := c.GetString("role") == models.RoleAdmin
	if review.UserID != userID && !isAdmin {
		utils.Fail(c, http.StatusForbidden, "Vous ne pouvez supprimer que vos propres avis", utils.CodeForbidden)
		return
	}

	if _, err := database.Reviews().DeleteOne(ctx, bson.M{"_id": reviewID}); err != nil {
		utils.FailInternal(c, "Erreur lors de la suppression de l'avis")
		return
	}

	services.RecomputeProductRating(ctx, review.ProductID)

	log.Println("🗑️ Avis supprimé:", reviewID.Hex())
	utils.OKWithMessage(c, http.StatusOK, "Avis supprimé", nil)
}

// VoteReview enregistre un vote utile / pas utile (une voix par utilisateur,
// revoter change la voix)
func VoteReview(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		utils.Fail(c, http.StatusUnauthorized, "Token invalide", utils.CodeInvalidToken)
		return
	}

	reviewID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Identifiant d'avis invalide", utils.CodeInvalidID)
		return
	}

	var input struct {
		Vote string `json:"vote" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil ||
		(input.Vote != models.VoteHelpful && input.Vote != models.VoteNotHelpful) {
		utils.FailValidation(c, "vote doit valoir \"helpful\" ou \"notHelpful\"")
		return
	}

	ctx := c.Request.Context()

	var review models.Review
	if err := database.Reviews().FindOne(ctx, bson.M{"_id": reviewID}).Decode(&review); err != nil {
		utils.FailNotFound(c, "Avis introuvable")
		return
	}

	if review.UserID == userID {
		utils.FailValidation(c, "Vous ne pouvez pas voter pour votre propre avis")
		return
	}

	review.CastVote(userID, input.Vote)

	_, err = database.Reviews().UpdateOne(ctx,
		bson.M{"_id": reviewID},
		bson.M{"$set": bson.M{
			"votes":           review.Votes,
			"helpfulCount":    review.HelpfulCount,
			"notHelpfulCount": review.NotHelpfulCount,
			"updatedAt":       time.Now(),
		}},
	)
	if err != nil {
		utils.FailInternal(c, "Erreur lors de l'enregistrement du vote")
		return
	}

	utils.OK(c, http.StatusOK, gin.H{
		"helpfulCount":    review.HelpfulCount,
		"notHelpfulCount": review.NotHelpfulCount,
	})
}
