package mockapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Options struct {
	Store    *Store
	Logger   *slog.Logger
	Secret   string
	Envelope bool
}

// NewRouter mounts the Other Master endpoints under /api/OtherMasters/api.
func NewRouter(opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := NewHandler(opts.Store, logger, opts.Envelope)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	masters := engine.Group("/api/OtherMasters/api")
	masters.Use(Authenticate(opts.Secret))
	{
		masters.GET("/GetData/list", h.List)
		masters.GET("/GetData/Load", h.Load)
		masters.GET("/GetData/:id", h.Get)
		masters.GET("/GetMasterType", h.MasterTypes)
		masters.POST("/SaveData", h.Save)
		masters.DELETE("/DeleteData/:id", h.Delete)
	}
	engine.NoRoute(func(c *gin.Context) {
		abort(c, http.StatusNotFound, "NOT_FOUND", "Route not found")
	})
	return engine
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", c.GetHeader("X-Request-ID"),
		)
	}
}
