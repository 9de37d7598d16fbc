package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"velora_back_end/internal/models"
)

func TestGenerateAndParseJWT(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-de-test")

	user := models.User{
		ID:    primitive.NewObjectID(),
		Email: "claire@example.com",
		Role:  models.RoleUser,
	}

	token, err := GenerateJWT(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, "claire@example.com", claims.Email)
	assert.Equal(t, models.RoleUser, claims.Role)
	assert.NotEmpty(t, claims.JTI)
}

func TestParseJWTWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-de-test")

	user := models.User{ID: primitive.NewObjectID(), Email: "a@b.fr", Role: models.RoleUser}
	token, err := GenerateJWT(user)
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "un-autre-secret")

	_, err = ParseJWT(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseJWTGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-de-test")

	_, err := ParseJWT("pas.un.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseJWT("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseJWTExpired(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-de-test")

	claims := jwt.MapClaims{
		"user_id": primitive.NewObjectID().Hex(),
		"email":   "a@b.fr",
		"role":    models.RoleUser,
		"jti":     "jti-test",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret-de-test"))
	require.NoError(t, err)

	_, err = ParseJWT(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}

func TestGenerateRefreshTokenOpaque(t *testing.T) {
	t1 := GenerateRefreshToken()
	t2 := GenerateRefreshToken()

	assert.NotEmpty(t, t1)
	assert.NotEqual(t, t1, t2)
}

func TestJTIUniquePerToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-de-test")

	user := models.User{ID: primitive.NewObjectID(), Email: "a@b.fr", Role: models.RoleAdmin}

	tok1, err := GenerateJWT(user)
	require.NoError(t, err)
	tok2, err := GenerateJWT(user)
	require.NoError(t, err)

	c1, err := ParseJWT(tok1)
	require.NoError(t, err)
	c2, err := ParseJWT(tok2)
	require.NoError(t, err)

	assert.NotEqual(t, c1.JTI, c2.JTI)
}
