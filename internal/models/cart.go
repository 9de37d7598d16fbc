package models

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Bornes de quantité par ligne de panier
const (
	MinItemQuantity = 1
	MaxItemQuantity = 99
)

var (
	ErrItemNotFound       = errors.New("article introuvable dans le panier")
	ErrInvalidQuantity    = errors.New("la quantité doit être comprise entre 1 et 99")
	ErrProductUnavailable = errors.New("produit indisponible")
)

// InsufficientStockError porte le nombre d'unités encore ajoutables,
// pour que le handler puisse l'afficher au client
type InsufficientStockError struct {
	Remaining int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuffisant, vous pouvez encore ajouter %d unité(s)", e.Remaining)
}

type CartItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Price     float64            `bson:"price" json:"price"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	AddedAt   time.Time          `bson:"addedAt" json:"addedAt"`
}

type Cart struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	Items      []CartItem         `bson:"items" json:"items"`
	SavedItems []CartItem         `bson:"savedItems" json:"savedItems"`
	Subtotal   float64            `bson:"subtotal" json:"subtotal"`
	TotalItems int                `bson:"totalItems" json:"totalItems"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewCart crée un panier vide pour un utilisateur
func NewCart(userID primitive.ObjectID) *Cart {
	return &Cart{
		UserID:     userID,
		Items:      []CartItem{},
		SavedItems: []CartItem{},
		UpdatedAt:  time.Now(),
	}
}

// CalculateTotals recalcule subtotal et totalItems à partir des lignes.
// Toujours appelé après une mutation — on ne patche jamais les totaux.
func (c *Cart) CalculateTotals() {
	subtotal := 0.0
	totalItems := 0
	for _, item := range c.Items {
		subtotal += item.Price * float64(item.Quantity)
		totalItems += item.Quantity
	}
	c.Subtotal = subtotal
	c.TotalItems = totalItems
	c.UpdatedAt = time.Now()
}

// FindItem retourne l'index de la ligne du produit, ou -1
func (c *Cart) FindItem(productID primitive.ObjectID) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// FindSavedItem retourne l'index dans les articles mis de côté, ou -1
func (c *Cart) FindSavedItem(productID primitive.ObjectID) int {
	for i, item := range c.SavedItems {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// AddItem ajoute une quantité d'un produit au panier. Le prix de la ligne
// est toujours rafraîchi au prix courant du produit. Si la quantité cumulée
// dépasse le stock ou le plafond de 99, rien n'est modifié.
func (c *Cart) AddItem(product *Product, quantity int) error {
	if quantity < MinItemQuantity || quantity > MaxItemQuantity {
		return ErrInvalidQuantity
	}
	if !product.Purchasable() {
		return ErrProductUnavailable
	}

	if idx := c.FindItem(product.ID); idx >= 0 {
		newQty := c.Items[idx].Quantity + quantity
		if newQty > product.Stock {
			return &InsufficientStockError{Remaining: product.Stock - c.Items[idx].Quantity}
		}
		if newQty > MaxItemQuantity {
			return ErrInvalidQuantity
		}
		c.Items[idx].Quantity = newQty
		c.Items[idx].Price = product.Price
	} else {
		if quantity > product.Stock {
			return &InsufficientStockError{Remaining: product.Stock}
		}
		c.Items = append(c.Items, CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Image:     product.MainImage(),
			Quantity:  quantity,
			AddedAt:   time.Now(),
		})
	}

	c.CalculateTotals()
	return nil
}

// UpdateQuantity fixe la quantité d'une ligne. 0 supprime la ligne.
// Le prix est rafraîchi au prix courant du produit.
func (c *Cart) UpdateQuantity(product *Product, quantity int) error {
	idx := c.FindItem(product.ID)
	if idx < 0 {
		return ErrItemNotFound
	}

	if quantity == 0 {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
		c.CalculateTotals()
		return nil
	}
	if quantity < MinItemQuantity || quantity > MaxItemQuantity {
		return ErrInvalidQuantity
	}
	if quantity > product.Stock {
		return &InsufficientStockError{Remaining: product.Stock}
	}

	c.Items[idx].Quantity = quantity
	c.Items[idx].Price = product.Price
	c.CalculateTotals()
	return nil
}

// RemoveItem supprime une ligne du panier
func (c *Cart) RemoveItem(productID primitive.ObjectID) error {
	idx := c.FindItem(productID)
	if idx < 0 {
		return ErrItemNotFound
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	c.CalculateTotals()
	return nil
}

// Clear vide le panier (les articles mis de côté sont conservés)
func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.CalculateTotals()
}

// SaveForLater déplace une ligne du panier vers les articles mis de côté
func (c *Cart) SaveForLater(productID primitive.ObjectID) error {
	idx := c.FindItem(productID)
	if idx < 0 {
		return ErrItemNotFound
	}
	item := c.Items[idx]
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)

	// Si le produit est déjà mis de côté on cumule les quantités
	if s := c.FindSavedItem(productID); s >= 0 {
		c.SavedItems[s].Quantity += item.Quantity
		if c.SavedItems[s].Quantity > MaxItemQuantity {
			c.SavedItems[s].Quantity = MaxItemQuantity
		}
	} else {
		c.SavedItems = append(c.SavedItems, item)
	}

	c.CalculateTotals()
	return nil
}

// MoveToCart remet un article mis de côté dans le panier, avec les mêmes
// validations de stock qu'un ajout
func (c *Cart) MoveToCart(product *Product) error {
	idx := c.FindSavedItem(product.ID)
	if idx < 0 {
		return ErrItemNotFound
	}
	item := c.SavedItems[idx]

	if err := c.AddItem(product, item.Quantity); err != nil {
		return err
	}

	c.SavedItems = append(c.SavedItems[:idx], c.SavedItems[idx+1:]...)
	c.CalculateTotals()
	return nil
}

// MergeGuestItem fusionne une ligne d'un panier invité dans le panier de
// l'utilisateur. La quantité cumulée est plafonnée au stock disponible
// au lieu d'échouer, contrairement à AddItem.
func (c *Cart) MergeGuestItem(product *Product, quantity int) error {
	if !product.Purchasable() {
		return ErrProductUnavailable
	}
	if quantity < MinItemQuantity {
		return ErrInvalidQuantity
	}
	if quantity > MaxItemQuantity {
		quantity = MaxItemQuantity
	}

	if idx := c.FindItem(product.ID); idx >= 0 {
		newQty := c.Items[idx].Quantity + quantity
		if newQty > product.Stock {
			newQty = product.Stock
		}
		if newQty > MaxItemQuantity {
			newQty = MaxItemQuantity
		}
		c.Items[idx].Quantity = newQty
		c.Items[idx].Price = product.Price
	} else {
		if quantity > product.Stock {
			quantity = product.Stock
		}
		c.Items = append(c.Items, CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Image:     product.MainImage(),
			Quantity:  quantity,
			AddedAt:   time.Now(),
		})
	}

	c.CalculateTotals()
	return nil
}
