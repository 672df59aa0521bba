package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/hoppa-app/chat-server/internal/auth"
)

// ContextKeyUserID is the context key for the resolved user ID.
const ContextKeyUserID = "user_id"

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// AuthMiddleware resolves the bearer credential once per request and
// binds the user id to the request context. Absent, expired and unknown
// credentials all produce the same 401.
func AuthMiddleware(authService *auth.Service, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := authService.Verify(bearerToken(c))
		if err != nil {
			logger.Debug().Str("path", c.Request.URL.Path).Msg("unauthenticated request")
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
			c.Abort()
			return
		}

		c.Set(ContextKeyUserID, userID)
		c.Next()
	}
}

// OptionalAuthMiddleware binds the user id when the credential is
// valid and otherwise leaves the context empty without failing the
// request. Used by the heartbeat endpoint, which is a no-op for
// unauthenticated callers.
func OptionalAuthMiddleware(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, err := authService.Verify(bearerToken(c)); err == nil {
			c.Set(ContextKeyUserID, userID)
		}
		c.Next()
	}
}

// LoggerMiddleware logs HTTP requests.
func LoggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("http request")
	}
}

// userID extracts the bound user id from the gin context. The second
// return is false when the request was not authenticated.
func userID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(ContextKeyUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
