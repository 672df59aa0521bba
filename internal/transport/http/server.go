package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/hoppa-app/chat-server/internal/auth"
	"github.com/hoppa-app/chat-server/internal/config"
	"github.com/hoppa-app/chat-server/internal/core"
	"github.com/hoppa-app/chat-server/internal/presence"
	"github.com/hoppa-app/chat-server/internal/service/messaging"
	"github.com/hoppa-app/chat-server/internal/store"
)

// NewServer builds the HTTP server with all REST and websocket routes.
func NewServer(
	hub *core.Hub,
	authService *auth.Service,
	messenger *messaging.Service,
	tracker *presence.Tracker,
	st store.Store,
	cfg *config.Config,
	logger *zerolog.Logger,
) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	apiHandlers := NewAPIHandlers(authService, logger)
	chatHandlers := NewChatHandlers(messenger, tracker, hub, st, cfg.SearchLimit, logger)

	router.GET("/health", healthHandler)
	router.POST("/api/register", apiHandlers.Register)
	router.POST("/api/login", apiHandlers.Login)

	chat := router.Group("/api/chat")
	chat.Use(AuthMiddleware(authService, logger))
	{
		chat.GET("/conversations", chatHandlers.Conversations)
		chat.GET("/search", chatHandlers.SearchUsers)
		chat.POST("/history", chatHandlers.History)
		chat.POST("/messages", chatHandlers.SendMessage)
	}

	// Heartbeat accepts unauthenticated requests and treats them as no-ops,
	// so a client with an expired token keeps a quiet beat loop.
	router.POST("/api/chat/heartbeat", OptionalAuthMiddleware(authService), chatHandlers.Heartbeat)

	router.GET("/ws", gin.WrapH(NewWSHandler(hub, authService, logger)))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
