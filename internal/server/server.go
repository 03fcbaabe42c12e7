// Package server exposes detection, quality checks, arbitration and batch
// translation over HTTP.
package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/valpere/transqc/internal/arbiter"
	"github.com/valpere/transqc/internal/detector"
	"github.com/valpere/transqc/internal/orchestrator"
	"github.com/valpere/transqc/internal/quality"
	"github.com/valpere/transqc/internal/store"
)

// Deps are the components the handlers call. Store may be nil, in which case
// nothing is journaled and the history routes are not registered.
type Deps struct {
	Arbiter      *arbiter.Arbiter
	Orchestrator *orchestrator.Orchestrator
	Store        *store.Store
	TargetLang   string
}

type Handler struct {
	detector     *detector.Detector
	checker      *quality.Checker
	arbiter      *arbiter.Arbiter
	orchestrator *orchestrator.Orchestrator
	store        *store.Store
	targetLang   string
	logger       *zap.Logger
}

func NewHandler(deps Deps, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		detector:     detector.New(),
		checker:      quality.NewChecker(),
		arbiter:      deps.Arbiter,
		orchestrator: deps.Orchestrator,
		store:        deps.Store,
		targetLang:   deps.TargetLang,
		logger:       logger,
	}
}

// NewRouter creates a router with all routes configured.
func NewRouter(deps Deps, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	h := NewHandler(deps, logger)

	r := gin.New()
	r.Use(ginLogger(h.logger))
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		v1.POST("/detect", h.Detect)
		v1.POST("/check", h.Check)
		if h.arbiter != nil {
			v1.POST("/translate", h.Translate)
		}
		if h.orchestrator != nil {
			v1.POST("/batch", h.Batch)
		}
		if h.store != nil {
			v1.GET("/history", h.History)
			v1.GET("/stats", h.Stats)
		}
	}

	return r
}

// ginLogger logs one entry per request.
func ginLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
