package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/quicktrack-app/server/internal/apperror"
	"github.com/quicktrack-app/server/internal/auth"
	"github.com/quicktrack-app/server/internal/models"
)

// Context keys for values set by middleware
const (
	identityKey  = "identity"
	requestIDKey = "requestId"
)

// AuthMiddleware verifies the Telegram init data carried in the Authorization
// header and stores the verified identity in the request context. The header
// holds the raw init-data string, not a Bearer token.
func AuthMiddleware(botToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := auth.Validate(c.GetHeader("Authorization"), botToken, time.Now())
		if err != nil {
			errorResponse(c, apperror.Unauthorized(err.Error()))
			c.Abort()
			return
		}

		c.Set(identityKey, *identity)
		c.Next()
	}
}

// identityFromContext returns the identity set by AuthMiddleware. Routes
// using it are always registered behind the middleware, so the value exists.
func identityFromContext(c *gin.Context) models.Identity {
	return c.MustGet(identityKey).(models.Identity)
}

// RequestID tags each request with an id for log correlation, honoring one
// supplied by the caller.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// RequestLogger logs one line per completed request
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		slog.Info("request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString(requestIDKey),
		)
	}
}

// CORS allows the Mini App, served from Telegram's webview, to call the API
// from the browser.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}
