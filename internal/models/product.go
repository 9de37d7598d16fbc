package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description" json:"description"`
	Price         float64            `bson:"price" json:"price"`
	ComparePrice  float64            `bson:"comparePrice,omitempty" json:"comparePrice,omitempty"`
	Category      string             `bson:"category" json:"category"`
	Brand         string             `bson:"brand,omitempty" json:"brand,omitempty"`
	SKU           string             `bson:"sku,omitempty" json:"sku,omitempty"`
	Stock         int                `bson:"stock" json:"stock"`
	Images        []string           `bson:"images" json:"images"`
	Tags          []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	IsActive      bool               `bson:"isActive" json:"isActive"`
	IsFeatured    bool               `bson:"isFeatured" json:"isFeatured"`
	AverageRating float64            `bson:"averageRating" json:"averageRating"`
	NumReviews    int                `bson:"numReviews" json:"numReviews"`
	Views         int                `bson:"views" json:"views"`
	TotalSold     int                `bson:"totalSold" json:"totalSold"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// MainImage retourne la première image du produit (ou chaîne vide)
func (p *Product) MainImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Purchasable indique si le produit peut être ajouté à un panier
func (p *Product) Purchasable() bool {
	return p.IsActive && p.Stock > 0
}
