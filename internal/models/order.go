package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Statuts possibles d'une commande. Les transitions sont volontairement
// libres : n'importe quel statut peut suivre n'importe quel autre.
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
	OrderStatusReturned   = "returned"
)

// ValidOrderStatus vérifie qu'un statut fait partie de la liste connue
func ValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
		OrderStatusReturned:
		return true
	}
	return false
}

// OrderItem est une copie figée de la ligne au moment de la commande :
// le nom, le prix, l'image et le SKU ne bougent plus même si le produit change
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Price     float64            `bson:"price" json:"price"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
	SKU       string             `bson:"sku,omitempty" json:"sku,omitempty"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

type ShippingAddress struct {
	FullName string `bson:"fullName" json:"fullName"`
	Street   string `bson:"street" json:"street"`
	City     string `bson:"city" json:"city"`
	State    string `bson:"state,omitempty" json:"state,omitempty"`
	ZipCode  string `bson:"zipCode" json:"zipCode"`
	Country  string `bson:"country" json:"country"`
	Phone    string `bson:"phone,omitempty" json:"phone,omitempty"`
}

// StatusEntry est une entrée de l'historique de statuts (append-only)
type StatusEntry struct {
	Status    string    `bson:"status" json:"status"`
	Note      string    `bson:"note,omitempty" json:"note,omitempty"`
	ChangedAt time.Time `bson:"changedAt" json:"changedAt"`
}

type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNumber     string             `bson:"orderNumber" json:"orderNumber"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	Items           []OrderItem        `bson:"items" json:"items"`
	ShippingAddress ShippingAddress    `bson:"shippingAddress" json:"shippingAddress"`
	PaymentMethod   string             `bson:"paymentMethod" json:"paymentMethod"`
	PaymentIntentID string             `bson:"paymentIntentId,omitempty" json:"paymentIntentId,omitempty"`
	IsPaid          bool               `bson:"isPaid" json:"isPaid"`
	PaidAt          *time.Time         `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	Subtotal        float64            `bson:"subtotal" json:"subtotal"`
	Tax             float64            `bson:"tax" json:"tax"`
	ShippingCost    float64            `bson:"shippingCost" json:"shippingCost"`
	Discount        float64            `bson:"discount" json:"discount"`
	Total           float64            `bson:"total" json:"total"`
	Status          string             `bson:"status" json:"status"`
	StatusHistory   []StatusEntry      `bson:"statusHistory" json:"statusHistory"`
	DeliveredAt     *time.Time         `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// FormatOrderNumber construit le numéro ORD-YYYYMMDD-NNNNN à partir
// de la date et du rang dans la journée (1 pour la première commande)
func FormatOrderNumber(t time.Time, seq int) string {
	return fmt.Sprintf("ORD-%s-%05d", t.Format("20060102"), seq)
}

// CalculateTotals recalcule subtotal et total à partir des lignes figées.
// total = subtotal + tax + shippingCost - discount
func (o *Order) CalculateTotals() {
	subtotal := 0.0
	for _, item := range o.Items {
		subtotal += item.Price * float64(item.Quantity)
	}
	o.Subtotal = subtotal
	o.Total = subtotal + o.Tax + o.ShippingCost - o.Discount
}

// UpdateStatus change le statut et ajoute une entrée à l'historique.
// Aucune matrice de transitions : l'admin peut passer d'un statut à
// n'importe quel autre. "delivered" horodate deliveredAt.
func (o *Order) UpdateStatus(status, note string) {
	now := time.Now()
	o.Status = status
	o.StatusHistory = append(o.StatusHistory, StatusEntry{
		Status:    status,
		Note:      note,
		ChangedAt: now,
	})
	if status == OrderStatusDelivered {
		o.DeliveredAt = &now
	}
	o.UpdatedAt = now
}

// CanBeCancelled : seul un client peut annuler, et uniquement tant que
// la commande n'est pas partie en préparation
func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}

// TotalQuantity retourne le nombre total d'unités de la commande
func (o *Order) TotalQuantity() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}
