package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"velora_back_end/internal/utils"
)

func TestTooManyRequestsEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/auth/login", nil)

	tooManyRequests(c, "Trop de tentatives échouées. Réessayez dans 15 minutes", 900)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	var body map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &body)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, utils.CodeRateLimit, body["error"])
	assert.Equal(t, 900.0, body["retry_after"])
}
