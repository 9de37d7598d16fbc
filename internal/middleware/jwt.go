package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"velora_back_end/internal/cache"
	"velora_back_end/internal/utils"
)

// AuthRequired valide le token Bearer, vérifie qu'il n'est pas blacklisté
// et place user_id / email / role / jti dans le contexte gin
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c)
		if !ok {
			c.Abort()
			return
		}

		if claims.JTI != "" && cache.IsTokenBlacklisted(c.Request.Context(), claims.JTI) {
			utils.Fail(c, http.StatusUnauthorized, "Session expirée, veuillez vous reconnecter", utils.CodeInvalidToken)
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)
		c.Set("jti", claims.JTI)
		c.Next()
	}
}

// OptionalAuth remplit le contexte si un token valide est présent,
// mais laisse passer les requêtes anonymes
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.Next()
			return
		}

		claims, err := utils.ParseJWT(parts[1])
		if err != nil {
			c.Next()
			return
		}
		if claims.JTI != "" && cache.IsTokenBlacklisted(c.Request.Context(), claims.JTI) {
			c.Next()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)
		c.Set("jti", claims.JTI)
		c.Next()
	}
}

func parseBearer(c *gin.Context) (*utils.TokenClaims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		utils.Fail(c, http.StatusUnauthorized, "Token manquant", utils.CodeUnauthorized)
		return nil, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		utils.Fail(c, http.StatusUnauthorized, "Format Authorization invalide", utils.CodeInvalidToken)
		return nil, false
	}

	claims, err := utils.ParseJWT(parts[1])
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			utils.Fail(c, http.StatusUnauthorized, "Token expiré, veuillez vous reconnecter", utils.CodeTokenExpired)
		} else {
			utils.Fail(c, http.StatusUnauthorized, "Token invalide", utils.CodeInvalidToken)
		}
		return nil, false
	}
	return claims, true
}
