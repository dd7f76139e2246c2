package routes

import (
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"govnode/internal/handlers"
	"govnode/internal/middleware"
)

// SetupRouter initializes the Gin router with the status surface and the
// manual voting trigger.
func SetupRouter(h *handlers.NodeHandler) *gin.Engine {
	r := gin.Default()

	r.Any("/health", func(c *gin.Context) {
		c.String(200, "ok")
	})

	// CORS for the dashboard origins listed in ALLOWED_ORIGINS.
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		var allowed bool
		for _, o := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" && trimmed == origin {
				allowed = true
				break
			}
		}
		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Authorization, Origin")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	api := r.Group("/api")
	{
		api.GET("/node/status", h.GetNodeStatus)
		api.GET("/proposals/active", h.GetActiveProposals)

		trigger := api.Group("/voting")
		trigger.Use(middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
			RequestsPerSecond: 0.2, // one manual round per 5s per client
			Burst:             1,
		}))
		trigger.POST("/trigger", h.TriggerVotingRound)
	}

	return r
}
