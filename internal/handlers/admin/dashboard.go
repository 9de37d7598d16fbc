package admin

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
	"velora_back_end/internal/utils"
)

// Dashboard renvoie les compteurs globaux et le chiffre d'affaires
// (somme des commandes payées, via aggregation)
func Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	totalUsers, _ := database.Users().CountDocuments(ctx, bson.M{})
	activeUsers, _ := database.Users().CountDocuments(ctx, bson.M{"isActive": true})
	totalProducts, _ := database.Products().CountDocuments(ctx, bson.M{})
	activeProducts, _ := database.Products().CountDocuments(ctx, bson.M{"isActive": true})
	totalOrders, _ := database.Orders().CountDocuments(ctx, bson.M{})
	pendingOrders, _ := database.Orders().CountDocuments(ctx, bson.M{"status": models.OrderStatusPending})

	// Chiffre d'affaires : commandes payées uniquement
	revenue := 0.0
	pipeline := []bson.M{
		{"$match": bson.M{"isPaid": true}},
		{"$group": bson.M{"_id": nil, "total": bson.M{"$sum": "$total"}}},
	}
	cursor, err := database.Orders().Aggregate(ctx, pipeline)
	if err == nil {
		var results []struct {
			Total float64 `bson:"total"`
		}
		if cursor.All(ctx, &results) == nil && len(results) > 0 {
			revenue = results[0].Total
		}
		cursor.Close(ctx)
	}

	utils.OK(c, http.StatusOK, gin.H{
		"users":    gin.H{"total": totalUsers, "active": activeUsers},
		"products": gin.H{"total": totalProducts, "active": activeProducts},
		"orders":   gin.H{"total": totalOrders, "pending": pendingOrders},
		"revenue":  revenue,
	})
}

// ListUsers liste les utilisateurs (back-office)
func ListUsers(c *gin.Context) {
	page, limit := utils.ParsePagination(c, 20)
	ctx := c.Request.Context()

	total, err := database.Users().CountDocuments(ctx, bson.M{})
	if err != nil {
		utils.FailInternal(c, "Erreur lors de la récupération des utilisateurs")
		return
	}

	cursor, err := database.Users().Find(ctx, bson.M{},
		options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip(int64((page-1)*limit)).
			SetLimit(int64(limit)))
	if err != nil {
		utils.FailInternal(c, "Erreur lors de la récupération des utilisateurs")
		return
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		utils.FailInternal(c, "Erreur lors de la récupération des utilisateurs")
		return
	}

	utils.OK(c, http.StatusOK, gin.H{
		"users":      users,
		"pagination": utils.BuildPagination(page, limit, total),
	})
}

// UpdateUser modifie le rôle ou l'état actif d'un utilisateur.
// Un admin ne peut pas se rétrograder lui-même.
func UpdateUser(c *gin.Context) {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Identifiant utilisateur invalide", utils.CodeInvalidID)
		return
	}

	var input struct {
		Role     *string `json:"role"`
		IsActive *bool   `json:"isActive"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.FailValidation(c, "Corps de requête invalide")
		return
	}

	if input.Role != nil && *input.Role != models.RoleUser && *input.Role != models.RoleAdmin {
		utils.FailValidation(c, "Rôle inconnu")
		return
	}

	if targetID.Hex() == c.GetString("user_id") && input.Role != nil && *input.Role != models.RoleAdmin {
		utils.FailValidation(c, "Vous ne pouvez pas retirer votre propre rôle admin")
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if input.Role != nil {
		set["role"] = *input.Role
	}
	if input.IsActive != nil {
		set["isActive"] = *input.IsActive
	}
	if len(set) == 1 {
		utils.FailValidation(c, "Aucun champ à mettre à jour")
		return
	}

	res, err := database.Users().UpdateOne(c.Request.Context(),
		bson.M{"_id": targetID},
		bson.M{"$set": set},
	)
	if err != nil || res.MatchedCount == 0 {
		utils.FailNotFound(c, "Utilisateur introuvable")
		return
	}

	utils.OKWithMessage(c, http.StatusOK, "Utilisateur mis à jour", nil)
}

// ListOrders liste toutes les commandes, filtrables par statut
func ListOrders(c *gin.Context) {
	page, limit := utils.ParsePagination(c, 20)
	ctx := c.Request.Context()

	filter := bson.M{}
	if status := c.Query("status"); status != "" {
		if !models.ValidOrderStatus(status) {
			utils.FailValidation(c, "Statut inconnu")
			return
		}
		filter["status"] = status
	}

	total, err := database.Orders().CountDocuments(ctx, filter)
	if err != nil {
		utils.FailInternal(c, "Erreur lors de la récupération des commandes")
		return
	}

	cursor, err := database.Orders().Find(ctx, filter,
		options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip(int64((page-1)*limit)).
			SetLimit(int64(limit)))
	if err != nil {
		utils.FailInternal(c, "Erreur lors de la récupération des commandes")
		return
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		utils.FailInternal(c, "Erreur lors de la récupération des commandes")
		return
	}

	utils.OK(c, http.StatusOK, gin.H{
		"orders":     orders,
		"pagination": utils.BuildPagination(page, limit, total),
	})
}

// UpdateOrderStatus change le statut d'une commande. N'importe quel statut
// peut suivre n'importe quel autre ; chaque changement est ajouté à
// l'historique, "delivered" horodate la livraison.
func UpdateOrderStatus(c *gin.Context) {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Identifiant de commande invalide", utils.CodeInvalidID)
		return
	}

	var input struct {
		Status string `json:"status" binding:"required"`
		Note   string `json:"note"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.FailValidation(c, "status requis")
		return
	}
	if !models.ValidOrderStatus(input.Status) {
		utils.FailValidation(c, "Statut inconnu")
		return
	}

	ctx := c.Request.Context()

	var order models.Order
	if err := database.Orders().FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
		utils.FailNotFound(c, "Commande introuvable")
		return
	}

	order.UpdateStatus(input.Status, input.Note)

	if _, err := database.Orders().ReplaceOne(ctx, bson.M{"_id": order.ID}, order); err != nil {
		utils.FailInternal(c, "Erreur lors de la mise à jour du statut")
		return
	}

	log.Println("📦 Commande", order.OrderNumber, "→", input.Status)
	utils.OKWithMessage(c, http.StatusOK, "Statut mis à jour", order)
}
