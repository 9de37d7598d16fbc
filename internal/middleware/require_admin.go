package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"velora_back_end/internal/models"
	"velora_back_end/internal/utils"
)

// RequireAdmin refuse l'accès si le rôle du token n'est pas admin.
// À chaîner après AuthRequired.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != models.RoleAdmin {
			utils.Fail(c, http.StatusForbidden, "Accès réservé aux administrateurs", utils.CodeForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
