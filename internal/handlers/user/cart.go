package user

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
	"velora_back_end/internal/utils"
)

// currentUserID extrait l'ObjectID de l'utilisateur du contexte gin
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		utils.Fail(c, http.StatusUnauthorized, "Token invalide", utils.CodeInvalidToken)
		return primitive.NilObjectID, false
	}
	return userID, true
}

// loadOrCreateCart retourne le panier de l'utilisateur, en le créant s'il
// n'existe pas encore
func loadOrCreateCart(c *gin.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	err := database.Carts().FindOne(c.Request.Context(), bson.M{"userId": userID}).Decode(&cart)
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	fresh := models.NewCart(userID)
	res, err := database.Carts().InsertOne(c.Request.Context(), fresh)
	if err != nil {
		// Deux requêtes simultanées peuvent créer le panier en même temps :
		// l'index unique sur userId fait échouer la deuxième, on relit
		if utils.IsDuplicateKey(err) {
			if e := database.Carts().FindOne(c.Request.Context(), bson.M{"userId": userID}).Decode(&cart); e == nil {
				return &cart, nil
			}
		}
		return nil, err
	}
	fresh.ID = res.InsertedID.(primitive.ObjectID)
	return fresh, nil
}

// saveCart persiste tout le document panier (lecture-modification-écriture,
// dernier écrivain gagnant)
func saveCart(c *gin.Context, cart *models.Cart) error {
	_, err := database.Carts().ReplaceOne(c.Request.Context(), bson.M{"_id": cart.ID}, cart)
	return err
}

// publishCartEvent notifie les clients websocket via Redis pub/sub
func publishCartEvent(c *gin.Context, userID primitive.ObjectID, event string, cart *models.Cart) {
	payload, _ := json.Marshal(gin.H{
		"event":      event,
		"subtotal":   cart.Subtotal,
		"totalItems": cart.TotalItems,
	})
	if err := database.Redis.Publish(c.Request.Context(), "cart:"+userID.Hex(), payload).Err(); err != nil {
		log.Println("⚠️ Erreur publication événement panier:", err)
	}
}

// findActiveProduct charge un produit achetable, ou répond 404
func findActiveProduct(c *gin.Context, productID primitive.ObjectID) (*models.Product, bool) {
	var product models.Product
	err := database.Products().FindOne(c.Request.Context(), bson.M{"_id": productID}).Decode(&product)
	if err != nil || !product.IsActive {
		utils.FailNotFound(c, "Produit introuvable ou indisponible")
		return nil, false
	}
	return &product, true
}

// cartMutationError traduit une erreur métier du panier en réponse HTTP
func cartMutationError(c *gin.Context, err error) {
	var stockErr *models.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		utils.FailValidation(c, fmt.Sprintf("Stock insuffisant : vous pouvez encore ajouter %d unité(s)", stockErr.Remaining))
	case errors.Is(err, models.ErrInvalidQuantity):
		utils.FailValidation(c, "La quantité doit être comprise entre 1 et 99")
	case errors.Is(err, models.ErrItemNotFound):
		utils.FailNotFound(c, "Article introuvable dans le panier")
	case errors.Is(err, models.ErrProductUnavailable):
		utils.FailNotFound(c, "Produit introuvable ou indisponible")
	default:
		utils.FailInternal(c, "Erreur lors de la mise à jour du panier")
	}
}

// GetCart renvoie le panier, après avoir retiré les lignes dont le produit
// a disparu, est désactivé ou n'a plus de stock. Le nettoyage est persisté.
func GetCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	cart, err := loadOrCreateCart(c, userID)
	if err != nil {
		utils.FailInternal(c, "Erreur lors de la récupération du panier")
		return
	}

	pruned := false
	kept := cart.Items[:0]
	for _, item := range cart.Items {
		var product models.Product
		err := database.Products().FindOne(c.Request.Context(), bson.M{"_id": item.ProductID}).Decode(&product)
		if err != nil || !product.Purchasable() {
			pruned = true
			continue
		}
		kept = append(kept, item)
	}
	cart.Items = kept

	if pruned {
		cart.CalculateTotals()
		if err := saveCart(c, cart); err != nil {
			log.Println("⚠️ Erreur persistance panier nettoyé:", err)
		}
	}

	utils.OK(c, http.StatusOK, cart)
}

// AddToCart ajoute un produit au panier (quantité 1 par défaut)
func AddToCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input struct {
		ProductID string `json:"productId" binding:"required"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.FailValidation(c, "productId requis")
		return
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}

	productID, err := primitive.ObjectIDFromHex(input.ProductID)
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Identifiant produit invalide", utils.CodeInvalidID)
		return
	}

	product, ok := findActiveProduct(c, productID)
	if !ok {
		return
	}

	cart, err := loadOrCreateCart(c, userID)
	if err != nil {
		utils.FailInternal(c, "Erreur lors de la récupération du panier")
		return
	}

	if err := cart.AddItem(product, input.Quantity); err != nil {
		cartMutationError(c, err)
		return
	}

	if err := saveCart(c, cart); err != nil {
		utils.FailInternal(c, "Erreur lors de la mise à jour du panier")
		return
	}

	publishCartEvent(c, userID, "updated", cart)
	log.Println("🛒 Ajout au panier:", product.Name, "x", input.Quantity)
	utils.OKWithMessage(c, http.StatusOK, "Produit ajouté au panier", cart)
}

// UpdateCartItem change la quantité d'une ligne (0 = suppression)
func UpdateCartItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input struct {
		Quantity *int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Quantity == nil {
		utils.FailValidation(c, "quantity requis")
		return
	}

	productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Identifiant produit invalide", utils.CodeInvalidID)
		return
	}

	cart, err := loadOrCreateCart(c, userID)
	if err != nil {
		utils.FailInternal(c, "Erreur lors de la récupération du panier")
		return
	}

	// Quantité 0 : suppression directe, pas besoin du produit
	if *input.Quantity == 0 {
		if err := cart.RemoveItem(productID); err != nil {
			cartMutationError(c, err)
			return
		}
	} else {
		product, ok := findActiveProduct(c, productID)
		if !ok {
			return
		}
		if err := cart.UpdateQuantity(product, *input.Quantity); err != nil {
			cartMutationError(c, err)
			return
		}
	}

	if err := saveCart(c, cart); err != nil {
		utils.FailInternal(c, "Erreur lors de la mise à jour du panier")
		return
	}

	publishCartEvent(c, userID, "updated", cart)
	utils.OKWithMessage(c, http.StatusOK, "Panier mis à jour", cart)
}

// RemoveFromCart retire une ligne du panier
func RemoveFromCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Identifiant produit invalide", utils.CodeInvalidID)
		return
	}

	cart, err := loadOrCreateCart(c, userID)
	if err != nil {
		utils.FailInternal(c, "Erreur lors de la récupération du panier")
		return
	}

	if err := cart.RemoveItem(productID); err != nil {
		cartMutationError(c, err)
		return
	}

	if err := saveCart(c, cart); err != nil {
		utils.FailInternal(c, "Erreur lors de la mise à jour du panier")
		return
	}

	publishCartEvent(c, userID, "updated", cart)
	utils.OKWithMessage(c, http.StatusOK, "Produit retiré du panier", cart)
}

// ClearCart vide le panier (les articles mis de côté restent)
func ClearCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	cart, err := loadOrCreateCart(c, userID)
	if err != nil {
		utils.FailInternal(c, "Erreur lors de la récupération du panier")
		return
	}

	cart.Clear()

	if err := saveCart(c, cart); err != nil {
		utils.FailInternal(c, "Erreur lors de la mise à jour du panier")
		return
	}

	publishCartEvent(c, userID, "cleared", cart)
	utils.OKWithMessage(c, http.StatusOK, "Panier vidé", cart)
}

// SaveForLater met une ligne de côté
func SaveForLater(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Identifiant produit invalide", utils.CodeInvalidID)
		return
	}

	cart, err := loadOrCreateCart(c, userID)
	if err != nil {
		utils.FailInternal(c, "Erreur lors de la récupération du panier")
		return
	}

	if err := cart.SaveForLater(productID); err != nil {
		cartMutationError(c, err)
		return
	}

	if err := saveCart(c, cart); err != nil {
		utils.FailInternal(c, "Erreur lors de la mise à jour du panier")
		return
	}

	publishCartEvent(c, userID, "updated", cart)
	utils.OKWithMessage(c, http.StatusOK, "Article mis de côté", cart)
}

// MoveToCart remet un article mis de côté dans le panier, avec les mêmes
// validations qu'un ajout
func MoveToCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Identifiant produit invalide", utils.CodeInvalidID)
		return
	}

	product, ok := findActiveProduct(c, productID)
	if !ok {
		return
	}

	cart, err := loadOrCreateCart(c, userID)
	if err != nil {
		utils.FailInternal(c, "Erreur lors de la récupération du panier")
		return
	}

	if err := cart.MoveToCart(product); err != nil {
		cartMutationError(c, err)
		return
	}

	if err := saveCart(c, cart); err != nil {
		utils.FailInternal(c, "Erreur lors de la mise à jour du panier")
		return
	}

	publishCartEvent(c, userID, "updated", cart)
	utils.OKWithMessage(c, http.StatusOK, "Article remis dans le panier", cart)
}

// MergeCart fusionne un panier invité (constitué côté front) dans le panier
// de l'utilisateur. La fusion n'est pas atomique : si un produit échoue, les
// lignes déjà fusionnées restent acquises.
func MergeCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input struct {
		Items []struct {
			ProductID string `json:"productId" binding:"required"`
			Quantity  int    `json:"quantity" binding:"required"`
		} `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.FailValidation(c, "items requis")
		return
	}

	cart, err := loadOrCreateCart(c, userID)
	if err != nil {
		utils.FailInternal(c, "Erreur lors de la récupération du panier")
		return
	}

	merged := 0
	skipped := 0
	for _, guestItem := range input.Items {
		productID, err := primitive.ObjectIDFromHex(guestItem.ProductID)
		if err != nil {
			skipped++
			continue
		}

		var product models.Product
		err = database.Products().FindOne(c.Request.Context(), bson.M{"_id": productID}).Decode(&product)
		if err != nil || !product.Purchasable() {
			skipped++
			continue
		}

		if err := cart.MergeGuestItem(&product, guestItem.Quantity); err != nil {
			skipped++
			continue
		}
		merged++

		// Persistance ligne par ligne : une fusion partielle est acceptée
		if err := saveCart(c, cart); err != nil {
			log.Println("⚠️ Erreur persistance fusion panier:", err)
			utils.FailInternal(c, "Erreur lors de la fusion du panier")
			return
		}
	}

	publishCartEvent(c, userID, "updated", cart)
	utils.OKWithMessage(c, http.StatusOK, "Panier fusionné", gin.H{
		"cart":    cart,
		"merged":  merged,
		"skipped": skipped,
	})
}

// CartCount renvoie le nombre total d'unités du panier (badge du header)
func CartCount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var cart models.Cart
	err := database.Carts().FindOne(c.Request.Context(), bson.M{"userId": userID}).Decode(&cart)
	if err != nil {
		utils.OK(c, http.StatusOK, gin.H{"count": 0})
		return
	}

	utils.OK(c, http.StatusOK, gin.H{"count": cart.TotalItems, "updatedAt": cart.UpdatedAt.Format(time.RFC3339)})
}
