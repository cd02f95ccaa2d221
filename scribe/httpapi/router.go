package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RouterConfig holds the transport limits. Zero values disable the corresponding limit.
type RouterConfig struct {
	RateLimit      rate.Limit
	RateBurst      int
	AllowedOrigins []string
	MaxBodyBytes   int64
}

type Router struct {
	handler *Handler
	cfg     RouterConfig
}

func NewRouter(handler *Handler, cfg RouterConfig) *Router {
	return &Router{handler: handler, cfg: cfg}
}

func (r *Router) SetupRouter(logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	router := gin.New()

	middleware := []gin.HandlerFunc{
		RequestIDMiddleware(),
		SecurityHeadersMiddleware(),
		RecoveryMiddleware(logger),
		LoggerMiddleware(logger),
	}
	if r.cfg.RateLimit > 0 {
		middleware = append(middleware, RateLimitMiddleware(r.cfg.RateLimit, r.cfg.RateBurst))
	}
	if len(r.cfg.AllowedOrigins) > 0 {
		middleware = append(middleware, CORSMiddleware(r.cfg.AllowedOrigins))
	}
	if r.cfg.MaxBodyBytes > 0 {
		middleware = append(middleware, BodyLimitMiddleware(r.cfg.MaxBodyBytes))
	}
	router.Use(middleware...)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := router.Group("/api")
	{
		api.POST("/summary", r.handler.Summary)
		api.POST("/extract", r.handler.Extract)
		api.POST("/render", r.handler.Render)
		api.GET("/schema", r.handler.Schema)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
	})

	return router
}
