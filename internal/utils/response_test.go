package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func performJSON(handler gin.HandlerFunc) (*httptest.ResponseRecorder, map[string]interface{}) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/test", nil)

	handler(c)

	var body map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestOKEnvelope(t *testing.T) {
	w, body := performJSON(func(c *gin.Context) {
		OK(c, http.StatusOK, gin.H{"count": 3})
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	require.Contains(t, body, "data")
	assert.NotContains(t, body, "error")

	data := body["data"].(map[string]interface{})
	assert.Equal(t, 3.0, data["count"])
}

func TestOKWithMessageEnvelope(t *testing.T) {
	w, body := performJSON(func(c *gin.Context) {
		OKWithMessage(c, http.StatusCreated, "Compte créé avec succès", gin.H{"id": "abc"})
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Compte créé avec succès", body["message"])
	assert.Contains(t, body, "data")
}

func TestOKWithMessageNilData(t *testing.T) {
	_, body := performJSON(func(c *gin.Context) {
		OKWithMessage(c, http.StatusOK, "Déconnexion réussie", nil)
	})

	assert.Equal(t, true, body["success"])
	assert.NotContains(t, body, "data")
}

func TestFailEnvelope(t *testing.T) {
	w, body := performJSON(func(c *gin.Context) {
		Fail(c, http.StatusConflict, "Un compte existe déjà avec cet e-mail", CodeDuplicate)
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Un compte existe déjà avec cet e-mail", body["message"])
	assert.Equal(t, "DUPLICATE_FIELD", body["error"])
	assert.NotContains(t, body, "data")
}

func TestFailShortcuts(t *testing.T) {
	w, body := performJSON(func(c *gin.Context) {
		FailValidation(c, "Champ manquant")
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", body["error"])

	w, body = performJSON(func(c *gin.Context) {
		FailNotFound(c, "Produit introuvable")
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "RESOURCE_NOT_FOUND", body["error"])

	w, body = performJSON(func(c *gin.Context) {
		FailInternal(c, "Erreur serveur")
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", body["error"])
}

func TestDuplicateKeyMessage(t *testing.T) {
	assert.Equal(t, "Un compte existe déjà avec cet e-mail",
		DuplicateKeyMessage(errors.New(`E11000 duplicate key error collection: velora.users index: email_1 dup key`)))
	assert.Equal(t, "Un produit existe déjà avec ce SKU",
		DuplicateKeyMessage(errors.New(`E11000 duplicate key error collection: velora.products index: sku_1 dup key`)))
	assert.Equal(t, "Ce numéro de commande existe déjà",
		DuplicateKeyMessage(errors.New(`E11000 duplicate key error collection: velora.orders index: orderNumber_1 dup key`)))
	assert.Equal(t, "Vous avez déjà laissé un avis sur ce produit",
		DuplicateKeyMessage(errors.New(`E11000 duplicate key error collection: velora.reviews index: productId_1_userId_1 dup key`)))
	assert.Equal(t, "Cette valeur existe déjà",
		DuplicateKeyMessage(errors.New(`E11000 duplicate key error index: autre_1`)))
}
