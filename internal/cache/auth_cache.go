package cache

import (
	"context"
	"time"

	"velora_back_end/internal/database"
	"velora_back_end/internal/utils"
)

const (
	PasswordResetTTL = 1 * time.Hour
)

// StoreRefreshToken enregistre un refresh token pour un utilisateur (30 jours)
func StoreRefreshToken(ctx context.Context, token, userID string) error {
	return database.Redis.Set(ctx, "refresh:"+token, userID, utils.RefreshTokenTTL).Err()
}

// GetRefreshToken retourne l'userID associé à un refresh token, ou "" s'il
// est inconnu ou expiré
func GetRefreshToken(ctx context.Context, token string) string {
	userID, err := database.Redis.Get(ctx, "refresh:"+token).Result()
	if err != nil {
		return ""
	}
	return userID
}

// DeleteRefreshToken révoque un refresh token
func DeleteRefreshToken(ctx context.Context, token string) {
	database.Redis.Del(ctx, "refresh:"+token)
}

// RevokeAllRefreshTokens supprime tous les refresh tokens d'un utilisateur
// (changement de mot de passe, suppression de compte)
func RevokeAllRefreshTokens(ctx context.Context, userID string) {
	iter := database.Redis.Scan(ctx, 0, "refresh:*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if val, err := database.Redis.Get(ctx, key).Result(); err == nil && val == userID {
			database.Redis.Del(ctx, key)
		}
	}
}

// BlacklistToken blackliste un access token (par son jti) jusqu'à son expiration
func BlacklistToken(ctx context.Context, jti string) {
	database.Redis.Set(ctx, "blacklist:"+jti, "1", utils.AccessTokenTTL)
}

// IsTokenBlacklisted vérifie si un access token a été révoqué
func IsTokenBlacklisted(ctx context.Context, jti string) bool {
	exists, err := database.Redis.Exists(ctx, "blacklist:"+jti).Result()
	return err == nil && exists > 0
}

// StorePasswordResetToken enregistre un token de réinitialisation (1 heure)
func StorePasswordResetToken(ctx context.Context, token, userID string) error {
	return database.Redis.Set(ctx, "pwdreset:"+token, userID, PasswordResetTTL).Err()
}

// ConsumePasswordResetToken retourne l'userID associé et supprime le token
// (usage unique), ou "" s'il est inconnu ou expiré
func ConsumePasswordResetToken(ctx context.Context, token string) string {
	key := "pwdreset:" + token
	userID, err := database.Redis.Get(ctx, key).Result()
	if err != nil {
		return ""
	}
	database.Redis.Del(ctx, key)
	return userID
}
