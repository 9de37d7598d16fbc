package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func performWithRole(role string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/admin/dashboard", nil)
	if role != "" {
		c.Set("role", role)
	}

	RequireAdmin()(c)
	if !c.IsAborted() {
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
	return w
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	w := performWithRole("admin")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdminRejectsUser(t *testing.T) {
	w := performWithRole("user")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")
}

func TestRequireAdminRejectsMissingRole(t *testing.T) {
	w := performWithRole("")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
