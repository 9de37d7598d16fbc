package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"velora_back_end/internal/utils"
)

const (
	// Limites par endpoint
	LoginMaxAttempts          = 5
	RegisterMaxAttempts       = 3
	ForgotPasswordMaxAttempts = 3
	APIMaxRequests            = 100 // Par minute pour les endpoints généraux
	CartMaxAdds               = 20  // Ajouts panier par minute
	SearchMaxRequests         = 30  // Recherches par minute

	// Durées de cooldown
	LoginCooldown          = 15 * time.Minute
	RegisterCooldown       = 30 * time.Minute
	ForgotPasswordCooldown = 10 * time.Minute
	APICooldown            = 1 * time.Minute
)

// RateLimiter regroupe les middlewares de limitation. Le client Redis est
// injecté à la construction : pas de compteur global en mémoire, l'état
// vit dans Redis et se partage entre instances.
type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{redis: client}
}

func tooManyRequests(c *gin.Context, message string, retryAfter int) {
	c.JSON(http.StatusTooManyRequests, gin.H{
		"success":     false,
		"message":     message,
		"error":       utils.CodeRateLimit,
		"retry_after": retryAfter,
	})
	c.Abort()
}

// Login limite les tentatives de connexion par email (5 / 15 min).
// Seules les tentatives échouées (401) comptent.
func (rl *RateLimiter) Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Lire le body sans le consommer
		bodyBytes, _ := io.ReadAll(c.Request.Body)

		var input struct {
			Email string `json:"email"`
		}

		if err := json.Unmarshal(bodyBytes, &input); err != nil || input.Email == "" {
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			c.Next()
			return
		}

		// Remettre le body pour les handlers suivants
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		ctx := context.Background()
		key := "login_attempts:" + input.Email

		// Vérifier si l'utilisateur est en cooldown
		cooldownKey := "login_cooldown:" + input.Email
		if rl.redis.Exists(ctx, cooldownKey).Val() > 0 {
			ttl := rl.redis.TTL(ctx, cooldownKey).Val()
			msg := fmt.Sprintf("Trop de tentatives échouées. Réessayez dans %d minutes", int(ttl.Minutes()))
			tooManyRequests(c, msg, int(ttl.Seconds()))
			return
		}

		// Vérifier le nombre de tentatives
		attempts, _ := rl.redis.Get(ctx, key).Int()
		if attempts >= LoginMaxAttempts {
			// Activer le cooldown
			rl.redis.Set(ctx, cooldownKey, "1", LoginCooldown)
			rl.redis.Del(ctx, key)

			msg := fmt.Sprintf("Trop de tentatives échouées. Compte bloqué pendant %d minutes", int(LoginCooldown.Minutes()))
			tooManyRequests(c, msg, int(LoginCooldown.Seconds()))
			return
		}

		c.Next()

		// Si login échoué (401), incrémenter les tentatives
		if c.Writer.Status() == http.StatusUnauthorized {
			rl.redis.Incr(ctx, key)
			rl.redis.Expire(ctx, key, LoginCooldown)

			remaining := LoginMaxAttempts - attempts - 1
			if remaining > 0 {
				c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
			}
		} else if c.Writer.Status() == http.StatusOK {
			// Login réussi, réinitialiser les tentatives
			rl.redis.Del(ctx, key)
			rl.redis.Del(ctx, cooldownKey)
		}
	}
}

// Register limite les inscriptions par IP (3 / 30 min)
func (rl *RateLimiter) Register() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		ip := c.ClientIP()
		key := "register_attempts:" + ip

		cooldownKey := "register_cooldown:" + ip
		if rl.redis.Exists(ctx, cooldownKey).Val() > 0 {
			ttl := rl.redis.TTL(ctx, cooldownKey).Val()
			msg := fmt.Sprintf("Trop d'inscriptions. Réessayez dans %d minutes", int(ttl.Minutes()))
			tooManyRequests(c, msg, int(ttl.Seconds()))
			return
		}

		attempts, _ := rl.redis.Get(ctx, key).Int()
		if attempts >= RegisterMaxAttempts {
			rl.redis.Set(ctx, cooldownKey, "1", RegisterCooldown)
			rl.redis.Del(ctx, key)

			msg := fmt.Sprintf("Trop d'inscriptions. Réessayez dans %d minutes", int(RegisterCooldown.Minutes()))
			tooManyRequests(c, msg, int(RegisterCooldown.Seconds()))
			return
		}

		c.Next()

		// Si inscription réussie, incrémenter
		if c.Writer.Status() == http.StatusCreated {
			rl.redis.Incr(ctx, key)
			rl.redis.Expire(ctx, key, RegisterCooldown)
		}
	}
}

// ForgotPassword limite les demandes de réinitialisation par email (3 / 10 min)
func (rl *RateLimiter) ForgotPassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		bodyBytes, _ := io.ReadAll(c.Request.Body)

		var input struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal(bodyBytes, &input); err != nil || input.Email == "" {
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			c.Next()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		ctx := context.Background()
		key := "forgot_password_attempts:" + input.Email

		cooldownKey := "forgot_password_cooldown:" + input.Email
		if rl.redis.Exists(ctx, cooldownKey).Val() > 0 {
			ttl := rl.redis.TTL(ctx, cooldownKey).Val()
			msg := fmt.Sprintf("Trop de demandes. Réessayez dans %d minutes", int(ttl.Minutes()))
			tooManyRequests(c, msg, int(ttl.Seconds()))
			return
		}

		attempts, _ := rl.redis.Get(ctx, key).Int()
		if attempts >= ForgotPasswordMaxAttempts {
			rl.redis.Set(ctx, cooldownKey, "1", ForgotPasswordCooldown)
			rl.redis.Del(ctx, key)

			msg := fmt.Sprintf("Trop de demandes. Réessayez dans %d minutes", int(ForgotPasswordCooldown.Minutes()))
			tooManyRequests(c, msg, int(ForgotPasswordCooldown.Seconds()))
			return
		}

		c.Next()

		// Incrémenter après chaque demande
		if c.Writer.Status() == http.StatusOK {
			rl.redis.Incr(ctx, key)
			rl.redis.Expire(ctx, key, ForgotPasswordCooldown)
		}
	}
}

// API limite le nombre de requêtes par IP (100 / min, général)
func (rl *RateLimiter) API() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		ip := c.ClientIP()
		key := "api_requests:" + ip

		requests, _ := rl.redis.Get(ctx, key).Int()
		if requests >= APIMaxRequests {
			tooManyRequests(c, "Trop de requêtes. Réessayez dans 1 minute", 60)
			return
		}

		// Incrémenter le compteur
		pipe := rl.redis.Pipeline()
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, APICooldown)
		pipe.Exec(ctx)

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", APIMaxRequests))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", APIMaxRequests-requests-1))

		c.Next()
	}
}

// Cart limite les ajouts au panier par utilisateur (20 / min, anti-spam)
func (rl *RateLimiter) Cart() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.Next()
			return
		}

		ctx := context.Background()
		key := "cart_add:" + userID

		requests, _ := rl.redis.Get(ctx, key).Int()
		if requests >= CartMaxAdds {
			tooManyRequests(c, "Trop d'ajouts au panier. Ralentissez un peu", 60)
			return
		}

		pipe := rl.redis.Pipeline()
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, 1*time.Minute)
		pipe.Exec(ctx)

		c.Next()
	}
}

// Search limite les recherches par IP (30 / min, anti-spam)
func (rl *RateLimiter) Search() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		ctx := context.Background()
		key := "search_requests:" + ip

		requests, _ := rl.redis.Get(ctx, key).Int()
		if requests >= SearchMaxRequests {
			tooManyRequests(c, "Trop de recherches. Réessayez dans 1 minute", 60)
			return
		}

		pipe := rl.redis.Pipeline()
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, 1*time.Minute)
		pipe.Exec(ctx)

		c.Next()
	}
}
