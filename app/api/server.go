package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates the HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	setupRoutes(r, handler, apiAccessKey)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	r.GET("/health", handler.GetHealth)
	r.GET("/stats", handler.GetStats)

	// Privileged endpoints: the command surface and subscription management
	// are disabled entirely without an access key.
	if apiAccessKey != "" {
		privileged := r.Group("/")
		privileged.Use(authMiddleware(apiAccessKey))
		{
			privileged.POST("/commands", handler.HandleCommand)

			api := privileged.Group("/api")
			{
				api.GET("/subscriptions", handler.APIListSubscriptions)
				api.POST("/subscriptions", handler.APISubscribe)
				api.DELETE("/subscriptions/:id/destinations/:destination", handler.APIUnsubscribe)
				api.POST("/render/code", handler.APIRenderCode)
				api.POST("/render/markdown", handler.APIRenderMarkdown)
			}
		}
		slog.Info("Privileged endpoints enabled with authentication")
	} else {
		slog.Info("Privileged endpoints disabled (API_ACCESS_KEY not set)")
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"health":   "/health",
			"stats":    "/stats",
			"commands": "/commands",
		})
	})
}

// authMiddleware guards privileged endpoints with a shared access key
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" || providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing API key"})
			c.Abort()
			return
		}

		c.Next()
	}
}
