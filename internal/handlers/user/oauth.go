package user

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"velora_back_end/internal/cache"
	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
	"velora_back_end/internal/utils"
)

type ctxKey string

const ProviderKey ctxKey = "provider"

// BeginAuth démarre le flow OAuth (Google / Facebook)
func BeginAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		utils.FailValidation(c, "Aucun provider spécifié")
		return
	}

	c.Request = c.Request.WithContext(
		context.WithValue(c.Request.Context(), ProviderKey, provider),
	)

	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// CallbackAuth termine le flow OAuth : le compte est créé à la première
// connexion, réactivé et mis à jour ensuite
func CallbackAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		utils.FailValidation(c, "Aucun provider spécifié")
		return
	}

	c.Request = c.Request.WithContext(
		context.WithValue(c.Request.Context(), ProviderKey, provider),
	)

	gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Échec de l'authentification "+provider, utils.CodeUnauthorized)
		return
	}

	email := strings.ToLower(strings.TrimSpace(gothUser.Email))
	if email == "" {
		utils.Fail(c, http.StatusBadRequest, "Le provider n'a pas fourni d'adresse e-mail", utils.CodeValidation)
		return
	}

	ctx := c.Request.Context()
	now := time.Now()

	var user models.User
	err = database.Users().FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		// Première connexion : on crée le compte
		name := gothUser.Name
		if name == "" {
			name = strings.Split(email, "@")[0]
		}
		user = models.User{
			Name:       name,
			Email:      email,
			Role:       models.RoleUser,
			Provider:   provider,
			ProviderID: gothUser.UserID,
			Wishlist:   []primitive.ObjectID{},
			IsActive:   true,
			LastLogin:  &now,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		res, err := database.Users().InsertOne(ctx, user)
		if err != nil {
			log.Println("❌ Erreur création compte OAuth:", err)
			utils.FailInternal(c, "Erreur lors de la création du compte")
			return
		}
		user.ID = res.InsertedID.(primitive.ObjectID)

		go utils.SendWelcomeEmail(user.Email, user.Name)
		log.Println("✅ Nouveau compte", provider, ":", email)
	} else {
		database.Users().UpdateOne(ctx,
			bson.M{"_id": user.ID},
			bson.M{"$set": bson.M{
				"provider":   provider,
				"providerId": gothUser.UserID,
				"isActive":   true,
				"lastLogin":  now,
				"updatedAt":  now,
			}},
		)
		user.IsActive = true
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		utils.FailInternal(c, "Erreur lors de la génération du token")
		return
	}

	refreshToken := utils.GenerateRefreshToken()
	if err := cache.StoreRefreshToken(ctx, refreshToken, user.ID.Hex()); err != nil {
		log.Println("⚠️ Erreur stockage refresh token:", err)
	}

	utils.OK(c, http.StatusOK, gin.H{
		"user":         user,
		"token":        token,
		"refreshToken": refreshToken,
	})
}
