package user

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"velora_back_end/internal/cache"
	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
	"velora_back_end/internal/utils"
)

// Register crée un compte utilisateur. Le rôle est toujours "user",
// quoi que contienne la requête. L'e-mail de bienvenue part en goroutine.
func Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.FailValidation(c, "Nom, e-mail et mot de passe (6 caractères min.) sont requis")
		return
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		utils.FailInternal(c, "Erreur lors de la création du compte")
		return
	}

	now := time.Now()
	user := models.User{
		Name:      input.Name,
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		Password:  hash,
		Role:      models.RoleUser,
		Provider:  "local",
		Wishlist:  []primitive.ObjectID{},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := database.Users().InsertOne(c.Request.Context(), user)
	if err != nil {
		if utils.IsDuplicateKey(err) {
			utils.Fail(c, http.StatusConflict, utils.DuplicateKeyMessage(err), utils.CodeDuplicate)
			return
		}
		log.Println("❌ Erreur création utilisateur:", err)
		utils.FailInternal(c, "Erreur lors de la création du compte")
		return
	}
	user.ID = res.InsertedID.(primitive.ObjectID)

	// Fire-and-forget : l'inscription n'attend pas le SMTP
	go utils.SendWelcomeEmail(user.Email, user.Name)

	token, err := utils.GenerateJWT(user)
	if err != nil {
		utils.FailInternal(c, "Erreur lors de la génération du token")
		return
	}

	refreshToken := utils.GenerateRefreshToken()
	if err := cache.StoreRefreshToken(c.Request.Context(), refreshToken, user.ID.Hex()); err != nil {
		log.Println("⚠️ Erreur stockage refresh token:", err)
	}

	log.Println("✅ Nouvel utilisateur inscrit:", user.Email)
	utils.OKWithMessage(c, http.StatusCreated, "Compte créé avec succès", gin.H{
		"user":         user,
		"token":        token,
		"refreshToken": refreshToken,
	})
}

// Login authentifie un utilisateur. Le message d'erreur ne révèle jamais
// si c'est l'e-mail ou le mot de passe qui est faux.
func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.FailValidation(c, "E-mail et mot de passe requis")
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var user models.User
	err := database.Users().FindOne(c.Request.Context(), bson.M{"email": email}).Decode(&user)
	if err != nil {
		utils.Fail(c, http.StatusUnauthorized, "E-mail ou mot de passe incorrect", utils.CodeUnauthorized)
		return
	}

	if !utils.VerifyPassword(input.Password, user.Password) {
		utils.Fail(c, http.StatusUnauthorized, "E-mail ou mot de passe incorrect", utils.CodeUnauthorized)
		return
	}

	if !user.IsActive {
		utils.Fail(c, http.StatusUnauthorized, "Ce compte a été désactivé", utils.CodeUnauthorized)
		return
	}

	now := time.Now()
	database.Users().UpdateOne(c.Request.Context(),
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"lastLogin": now, "updatedAt": now}},
	)

	token, err := utils.GenerateJWT(user)
	if err != nil {
		utils.FailInternal(c, "Erreur lors de la génération du token")
		return
	}

	refreshToken := utils.GenerateRefreshToken()
	if err := cache.StoreRefreshToken(c.Request.Context(), refreshToken, user.ID.Hex()); err != nil {
		log.Println("⚠️ Erreur stockage refresh token:", err)
	}

	log.Println("✅ Connexion:", user.Email)
	utils.OK(c, http.StatusOK, gin.H{
		"user":         user,
		"token":        token,
		"refreshToken": refreshToken,
	})
}

// Logout révoque le refresh token et blackliste l'access token courant
func Logout(c *gin.Context) {
	var input struct {
		RefreshToken string `json:"refreshToken"`
	}
	c.ShouldBindJSON(&input)

	if input.RefreshToken != "" {
		cache.DeleteRefreshToken(c.Request.Context(), input.RefreshToken)
	}

	if jti := c.GetString("jti"); jti != "" {
		cache.BlacklistToken(c.Request.Context(), jti)
	}

	utils.OKWithMessage(c, http.StatusOK, "Déconnexion réussie", nil)
}

// Me renvoie le profil de l'utilisateur connecté
func Me(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		utils.Fail(c, http.StatusUnauthorized, "Token invalide", utils.CodeInvalidToken)
		return
	}

	var user models.User
	err = database.Users().FindOne(c.Request.Context(), bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		utils.FailNotFound(c, "Utilisateur introuvable")
		return
	}

	utils.OK(c, http.StatusOK, user)
}

// UpdateProfile modifie nom, téléphone et adresse. L'e-mail et le rôle
// ne sont pas modifiables ici.
func UpdateProfile(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		utils.Fail(c, http.StatusUnauthorized, "Token invalide", utils.CodeInvalidToken)
		return
	}

	var input struct {
		Name        string          `json:"name"`
		PhoneNumber string          `json:"phoneNumber"`
		Address     *models.Address `json:"address"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.FailValidation(c, "Corps de requête invalide")
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if input.Name != "" {
		set["name"] = input.Name
	}
	if input.PhoneNumber != "" {
		set["phoneNumber"] = input.PhoneNumber
	}
	if input.Address != nil {
		set["address"] = input.Address
	}

	res := database.Users().FindOneAndUpdate(c.Request.Context(),
		bson.M{"_id": userID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var user models.User
	if err := res.Decode(&user); err != nil {
		utils.FailNotFound(c, "Utilisateur introuvable")
		return
	}

	utils.OKWithMessage(c, http.StatusOK, "Profil mis à jour", user)
}

// ChangePassword vérifie l'ancien mot de passe, enregistre le nouveau et
// révoque tous les refresh tokens
func ChangePassword(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		utils.Fail(c, http.StatusUnauthorized, "Token invalide", utils.CodeInvalidToken)
		return
	}

	var input struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.FailValidation(c, "Mot de passe actuel et nouveau mot de passe (6 caractères min.) requis")
		return
	}

	var user models.User
	if err := database.Users().FindOne(c.Request.Context(), bson.M{"_id": userID}).Decode(&user); err != nil {
		utils.FailNotFound(c, "Utilisateur introuvable")
		return
	}

	if !utils.VerifyPassword(input.CurrentPassword, user.Password) {
		utils.Fail(c, http.StatusUnauthorized, "Mot de passe actuel incorrect", utils.CodeUnauthorized)
		return
	}

	hash, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		utils.FailInternal(c, "Erreur lors du changement de mot de passe")
		return
	}

	_, err = database.Users().UpdateOne(c.Request.Context(),
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"password": hash, "updatedAt": time.Now()}},
	)
	if err != nil {
		utils.FailInternal(c, "Erreur lors du changement de mot de passe")
		return
	}

	// Les sessions ouvertes ailleurs doivent se reconnecter
	cache.RevokeAllRefreshTokens(c.Request.Context(), userID.Hex())

	utils.OKWithMessage(c, http.StatusOK, "Mot de passe modifié avec succès", nil)
}

// RefreshToken échange un refresh token valide contre un nouvel access token
func RefreshToken(c *gin.Context) {
	var input struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.FailValidation(c, "Refresh token requis")
		return
	}

	userIDHex := cache.GetRefreshToken(c.Request.Context(), input.RefreshToken)
	if userIDHex == "" {
		utils.Fail(c, http.StatusUnauthorized, "Refresh token invalide ou expiré", utils.CodeInvalidToken)
		return
	}

	userID, err := primitive.ObjectIDFromHex(userIDHex)
	if err != nil {
		utils.Fail(c, http.StatusUnauthorized, "Refresh token invalide", utils.CodeInvalidToken)
		return
	}

	var user models.User
	if err := database.Users().FindOne(c.Request.Context(), bson.M{"_id": userID}).Decode(&user); err != nil || !user.IsActive {
		utils.Fail(c, http.StatusUnauthorized, "Compte introuvable ou désactivé", utils.CodeUnauthorized)
		return
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		utils.FailInternal(c, "Erreur lors de la génération du token")
		return
	}

	// Rotation : l'ancien refresh token est remplacé
	cache.DeleteRefreshToken(c.Request.Context(), input.RefreshToken)
	newRefresh := utils.GenerateRefreshToken()
	if err := cache.StoreRefreshToken(c.Request.Context(), newRefresh, user.ID.Hex()); err != nil {
		log.Println("⚠️ Erreur stockage refresh token:", err)
	}

	utils.OK(c, http.StatusOK, gin.H{
		"token":        token,
		"refreshToken": newRefresh,
	})
}

// ForgotPassword envoie un lien de réinitialisation. La réponse est la
// même que l'e-mail existe ou non.
func ForgotPassword(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.FailValidation(c, "E-mail requis")
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var user models.User
	err := database.Users().FindOne(c.Request.Context(), bson.M{"email": email, "isActive": true}).Decode(&user)
	if err == nil {
		resetToken := utils.GenerateRefreshToken()
		if err := cache.StorePasswordResetToken(c.Request.Context(), resetToken, user.ID.Hex()); err == nil {
			go utils.SendPasswordResetEmail(user.Email, resetToken)
		}
	}

	// Réponse identique dans tous les cas
	utils.OKWithMessage(c, http.StatusOK, "Si un compte existe avec cet e-mail, un lien de réinitialisation a été envoyé", nil)
}

// ResetPassword consomme un token de réinitialisation (usage unique, 1h)
func ResetPassword(c *gin.Context) {
	var input struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.FailValidation(c, "Token et nouveau mot de passe (6 caractères min.) requis")
		return
	}

	userIDHex := cache.ConsumePasswordResetToken(c.Request.Context(), input.Token)
	if userIDHex == "" {
		utils.Fail(c, http.StatusUnauthorized, "Lien de réinitialisation invalide ou expiré", utils.CodeInvalidToken)
		return
	}

	userID, err := primitive.ObjectIDFromHex(userIDHex)
	if err != nil {
		utils.Fail(c, http.StatusUnauthorized, "Lien de réinitialisation invalide", utils.CodeInvalidToken)
		return
	}

	hash, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		utils.FailInternal(c, "Erreur lors de la réinitialisation")
		return
	}

	res, err := database.Users().UpdateOne(c.Request.Context(),
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"password": hash, "updatedAt": time.Now()}},
	)
	if err != nil || res.MatchedCount == 0 {
		utils.FailNotFound(c, "Utilisateur introuvable")
		return
	}

	cache.RevokeAllRefreshTokens(c.Request.Context(), userIDHex)

	utils.OKWithMessage(c, http.StatusOK, "Mot de passe réinitialisé avec succès", nil)
}

// DeleteAccount désactive le compte (soft delete) et révoque les sessions
func DeleteAccount(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		utils.Fail(c, http.StatusUnauthorized, "Token invalide", utils.CodeInvalidToken)
		return
	}

	var input struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.FailValidation(c, "Mot de passe requis pour supprimer le compte")
		return
	}

	var user models.User
	if err := database.Users().FindOne(c.Request.Context(), bson.M{"_id": userID}).Decode(&user); err != nil {
		utils.FailNotFound(c, "Utilisateur introuvable")
		return
	}

	if user.Provider == "local" && !utils.VerifyPassword(input.Password, user.Password) {
		utils.Fail(c, http.StatusUnauthorized, "Mot de passe incorrect", utils.CodeUnauthorized)
		return
	}

	_, err = database.Users().UpdateOne(c.Request.Context(),
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}},
	)
	if err != nil {
		utils.FailInternal(c, "Erreur lors de la suppression du compte")
		return
	}

	cache.RevokeAllRefreshTokens(c.Request.Context(), userID.Hex())
	if jti := c.GetString("jti"); jti != "" {
		cache.BlacklistToken(c.Request.Context(), jti)
	}

	log.Println("🗑️ Compte désactivé:", user.Email)
	utils.OKWithMessage(c, http.StatusOK, "Compte supprimé avec succès", nil)
}
