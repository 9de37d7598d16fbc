package user

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
	"velora_back_end/internal/services"
	"velora_back_end/internal/utils"
)

func taxRate() float64 {
	rate, err := strconv.ParseFloat(os.Getenv("TAX_RATE"), 64)
	if err != nil {
		return 0.21
	}
	return rate
}

func shippingCost(subtotal float64) float64 {
	// Livraison offerte à partir de 50€
	if subtotal >= 50 {
		return 0
	}
	return 4.99
}

// CreateOrder transforme le panier en commande : lignes figées (nom, prix,
// image, SKU copiés), totaux, numéro du jour, décrément du stock et panier
// vidé. Les lectures-écritures ne sont pas transactionnelles : en cas de
// checkout simultané le stock peut descendre sous la réalité.
func CreateOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input struct {
		ShippingAddress models.ShippingAddress `json:"shippingAddress" binding:"required"`
		PaymentMethod   string                 `json:"paymentMethod" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.FailValidation(c, "Adresse de livraison et moyen de paiement requis")
		return
	}
	if input.ShippingAddress.Street == "" || input.ShippingAddress.City == "" ||
		input.ShippingAddress.ZipCode == "" || input.ShippingAddress.Country == "" {
		utils.FailValidation(c, "Adresse de livraison incomplète")
		return
	}

	ctx := c.Request.Context()

	var cart models.Cart
	if err := database.Carts().FindOne(ctx, bson.M{"userId": userID}).Decode(&cart); err != nil || len(cart.Items) == 0 {
		utils.FailValidation(c, "Votre panier est vide")
		return
	}

	// Figer les lignes et revalider le stock au passage
	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		var product models.Product
		if err := database.Products().FindOne(ctx, bson.M{"_id": line.ProductID}).Decode(&product); err != nil || !product.IsActive {
			utils.FailValidation(c, "Le produit \""+line.Name+"\" n'est plus disponible")
			return
		}
		if line.Quantity > product.Stock {
			utils.FailValidation(c, "Stock insuffisant pour \""+product.Name+"\"")
			return
		}
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Image:     product.MainImage(),
			SKU:       product.SKU,
			Quantity:  line.Quantity,
		})
	}

	orderNumber, err := services.NextOrderNumber(ctx)
	if err != nil {
		utils.FailInternal(c, "Erreur lors de la création de la commande")
		return
	}

	now := time.Now()
	order := models.Order{
		OrderNumber:     orderNumber,
		UserID:          userID,
		Items:           items,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		Status:          models.OrderStatusPending,
		StatusHistory: []models.StatusEntry{
			{Status: models.OrderStatusPending, ChangedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	order.CalculateTotals()
	order.Tax = order.Subtotal * taxRate()
	order.ShippingCost = shippingCost(order.Subtotal)
	order.CalculateTotals()

	// PaymentIntent Stripe si le client paie par carte
	if input.PaymentMethod == "stripe" {
		params := &stripe.PaymentIntentParams{
			Amount:   stripe.Int64(int64(order.Total * 100)),
			Currency: stripe.String(string(stripe.CurrencyEUR)),
			Metadata: map[string]string{
				"order_number": orderNumber,
				"user_id":      userID.Hex(),
			},
		}
		pi, err := paymentintent.New(params)
		if err != nil {
			log.Println("❌ Erreur création PaymentIntent:", err)
			utils.FailInternal(c, "Erreur lors de l'initialisation du paiement")
			return
		}
		order.PaymentIntentID = pi.ID
	}

	res, err := database.Orders().InsertOne(ctx, order)
	if err != nil {
		if utils.IsDuplicateKey(err) {
			// Collision de numéro (deux commandes au même instant) : le
			// client peut simplement réessayer
			utils.Fail(c, http.StatusConflict, "Conflit de numéro de commande, veuillez réessayer", utils.CodeDuplicate)
			return
		}
		log.Println("❌ Erreur création commande:", err)
		utils.FailInternal(c, "Erreur lors de la création de la commande")
		return
	}
	order.ID = res.InsertedID.(primitive.ObjectID)

	// Décrément du stock, lecture-modification-écriture par produit
	for _, item := range order.Items {
		database.Products().UpdateOne(ctx,
			bson.M{"_id": item.ProductID},
			bson.M{
				"$inc": bson.M{"stock": -item.Quantity, "totalSold": item.Quantity},
				"$set": bson.M{"updatedAt": now},
			},
		)
		// Plancher à 0 si un checkout concurrent a fait passer le stock en négatif
		database.Products().UpdateOne(ctx,
			bson.M{"_id": item.ProductID, "stock": bson.M{"$lt": 0}},
			bson.M{"$set": bson.M{"stock": 0}},
		)
	}

	// Vider le panier
	cart.Clear()
	if _, err := database.Carts().ReplaceOne(ctx, bson.M{"_id": cart.ID}, cart); err != nil {
		log.Println("⚠️ Erreur vidage panier après commande:", err)
	}
	publishCartEvent(c, userID, "cleared", &cart)

	// Confirmation par e-mail, sans bloquer la réponse
	if email := c.GetString("email"); email != "" {
		go utils.SendOrderConfirmationEmail(email, order)
	}

	log.Println("✅ Commande créée:", orderNumber)
	utils.OKWithMessage(c, http.StatusCreated, "Commande créée avec succès", order)
}

// ListOrders renvoie les commandes de l'utilisateur, les plus récentes d'abord
func ListOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	page, limit := utils.ParsePagination(c, 10)
	ctx := c.Request.Context()

	filter := bson.M{"userId": userID}
	total, err := database.Orders().CountDocuments(ctx, filter)
	if err != nil {
		utils.FailInternal(c, "Erreur lors de la récupération des commandes")
		return
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := database.Orders().Find(ctx, filter, opts)
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

// GetOrder renvoie une commande si elle appartient à l'utilisateur
func GetOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Identifiant de commande invalide", utils.CodeInvalidID)
		return
	}

	var order models.Order
	err = database.Orders().FindOne(c.Request.Context(), bson.M{"_id": orderID, "userId": userID}).Decode(&order)
	if err != nil {
		utils.FailNotFound(c, "Commande introuvable")
		return
	}

	utils.OK(c, http.StatusOK, order)
}

// CancelOrder annule une commande pending/confirmed et restitue le stock
func CancelOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Identifiant de commande invalide", utils.CodeInvalidID)
		return
	}

	ctx := c.Request.Context()

	var order models.Order
	err = database.Orders().FindOne(ctx, bson.M{"_id": orderID, "userId": userID}).Decode(&order)
	if err != nil {
		utils.FailNotFound(c, "Commande introuvable")
		return
	}

	if !order.CanBeCancelled() {
		utils.FailValidation(c, "Cette commande ne peut plus être annulée")
		return
	}

	var input struct {
		Reason string `json:"reason"`
	}
	c.ShouldBindJSON(&input)

	order.UpdateStatus(models.OrderStatusCancelled, input.Reason)

	if _, err := database.Orders().ReplaceOne(ctx, bson.M{"_id": order.ID}, order); err != nil {
		utils.FailInternal(c, "Erreur lors de l'annulation")
		return
	}

	// Restituer le stock de chaque ligne
	for _, item := range order.Items {
		database.Products().UpdateOne(ctx,
			bson.M{"_id": item.ProductID},
			bson.M{
				"$inc": bson.M{"stock": item.Quantity, "totalSold": -item.Quantity},
				"$set": bson.M{"updatedAt": time.Now()},
			},
		)
	}

	log.Println("🗑️ Commande annulée:", order.OrderNumber)
	utils.OKWithMessage(c, http.StatusOK, "Commande annulée", order)
}
