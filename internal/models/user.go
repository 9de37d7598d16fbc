package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rôles possibles d'un utilisateur
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Address struct {
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	ZipCode string `bson:"zipCode,omitempty" json:"zipCode,omitempty"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
}

type User struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	Email       string               `bson:"email" json:"email"`
	Password    string               `bson:"password" json:"-"`
	Role        string               `bson:"role" json:"role"`
	Provider    string               `bson:"provider" json:"provider,omitempty"`
	ProviderID  string               `bson:"providerId,omitempty" json:"-"`
	PhoneNumber string               `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	Address     Address              `bson:"address,omitempty" json:"address,omitempty"`
	Wishlist    []primitive.ObjectID `bson:"wishlist" json:"wishlist"`
	IsActive    bool                 `bson:"isActive" json:"isActive"`
	LastLogin   *time.Time           `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// IsAdmin indique si l'utilisateur a le rôle admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// InWishlist indique si un produit est déjà dans la wishlist
func (u *User) InWishlist(productID primitive.ObjectID) bool {
	for _, id := range u.Wishlist {
		if id == productID {
			return true
		}
	}
	return false
}

// RemoveFromWishlist retire un produit de la wishlist (sans erreur si absent)
func (u *User) RemoveFromWishlist(productID primitive.ObjectID) {
	kept := u.Wishlist[:0]
	for _, id := range u.Wishlist {
		if id != productID {
			kept = append(kept, id)
		}
	}
	u.Wishlist = kept
}
