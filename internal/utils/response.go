package utils

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// Codes d'erreur machine renvoyés dans le champ "error" de l'enveloppe
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeDuplicate     = "DUPLICATE_FIELD"
	CodeInvalidID     = "INVALID_ID"
	CodeNotFound      = "RESOURCE_NOT_FOUND"
	CodeInvalidToken  = "INVALID_TOKEN"
	CodeTokenExpired  = "TOKEN_EXPIRED"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeRateLimit     = "RATE_LIMIT_EXCEEDED"
	CodeInternalError = "INTERNAL_ERROR"
)

// OK envoie l'enveloppe de succès {"success": true, "data": ...}
func OK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// OKWithMessage envoie un succès avec un message lisible en plus des données
func OKWithMessage(c *gin.Context, status int, message string, data interface{}) {
	body := gin.H{
		"success": true,
		"message": message,
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// Fail envoie l'enveloppe d'échec {"success": false, "message": ..., "error": CODE}
func Fail(c *gin.Context, status int, message, code string) {
	body := gin.H{
		"success": false,
		"message": message,
	}
	if code != "" {
		body["error"] = code
	}
	c.JSON(status, body)
}

// FailValidation : raccourci pour une erreur de validation (400)
func FailValidation(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, message, CodeValidation)
}

// FailNotFound : raccourci pour une ressource introuvable (404)
func FailNotFound(c *gin.Context, message string) {
	Fail(c, http.StatusNotFound, message, CodeNotFound)
}

// FailInternal : raccourci pour une erreur serveur (500)
func FailInternal(c *gin.Context, message string) {
	Fail(c, http.StatusInternalServerError, message, CodeInternalError)
}

// IsDuplicateKey détecte une violation d'index unique MongoDB (code 11000)
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// DuplicateKeyMessage traduit une erreur de doublon MongoDB en message métier
// selon l'index violé
func DuplicateKeyMessage(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "email"):
		return "Un compte existe déjà avec cet e-mail"
	case strings.Contains(msg, "sku"):
		return "Un produit existe déjà avec ce SKU"
	case strings.Contains(msg, "orderNumber"):
		return "Ce numéro de commande existe déjà"
	case strings.Contains(msg, "productId") && strings.Contains(msg, "userId"):
		return "Vous avez déjà laissé un avis sur ce produit"
	}
	return "Cette valeur existe déjà"
}
