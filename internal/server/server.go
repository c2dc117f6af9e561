// file: internal/server/server.go
// version: 1.2.0
// guid: d4010186-3040-43ca-8c3b-d63f7fc202aa

package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jdfalk/medication-identifier/internal/ai"
	"github.com/jdfalk/medication-identifier/internal/config"
	"github.com/jdfalk/medication-identifier/internal/database"
	"github.com/jdfalk/medication-identifier/internal/matcher"
	"github.com/jdfalk/medication-identifier/internal/metrics"
	"github.com/jdfalk/medication-identifier/internal/server/middleware"
	"github.com/jdfalk/medication-identifier/internal/session"
	"github.com/jdfalk/medication-identifier/internal/suggest"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *gin.Engine

	engine    *matcher.Engine
	suggester *ai.OpenAISuggester
	sessions  *session.Registry
	completer *suggest.Suggester
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// GetDefaultServerConfig returns sane defaults for a local deployment.
func GetDefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:         "8080",
		Host:         "localhost",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewServer creates a new server instance wired to the global store.
func NewServer() *Server {
	router := gin.Default()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	// Register metrics (idempotent)
	metrics.Register()

	params := matcher.DefaultParams()
	params.MinRelevance = config.AppConfig.Matcher.MinRelevance
	params.MaxResults = config.AppConfig.Matcher.MaxResults
	params.FuzzyCutoff = config.AppConfig.Matcher.FuzzyCutoff
	params.MinConfidence = config.AppConfig.Matcher.MinConfidence

	server := &Server{
		router:    router,
		engine:    matcher.New(params),
		suggester: ai.NewOpenAISuggester(config.AppConfig.APIKeys.OpenAI, config.AppConfig.AIEnabled),
		sessions:  session.NewRegistry(session.DefaultTTL),
		completer: suggest.New(database.GlobalStore),
	}

	server.setupRoutes()

	return server
}

// Start starts the HTTP server and blocks until an interrupt signal.
func (s *Server) Start(cfg ServerConfig) error {
	s.httpServer = &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:        s.router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Keep the records gauge fresh while running.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	ticker := time.NewTicker(30 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if database.GlobalStore != nil {
					if count, err := database.GlobalStore.CountRecords(); err == nil {
						metrics.SetRecords(count)
					} else {
						log.Printf("[DEBUG] heartbeat: failed to count records: %v", err)
					}
				}
			case <-quit:
				return
			}
		}
	}()

	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("Server exited")
	return nil
}

// setupRoutes configures all the routes
func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint (standard path)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/healthz", s.healthCheck)
	s.router.GET("/api/health", s.healthCheck)

	limiter := middleware.NewIPRateLimiter(300, 30)

	api := s.router.Group("/api")
	api.Use(limiter.Middleware())
	{
		// Identification routes
		api.POST("/identify", s.identify)
		api.POST("/score", s.scoreRecord)

		// Record routes; mutations require the admin token
		api.GET("/records", s.listRecords)
		api.GET("/records/:id", s.getRecord)

		admin := api.Group("")
		admin.Use(middleware.RequireAdminToken(config.AppConfig.AdminTokenHash))
		{
			admin.POST("/records", s.createRecord)
			admin.PUT("/records/:id", s.updateRecord)
			admin.DELETE("/records/:id", s.deleteRecord)
		}

		// Autocomplete
		api.GET("/suggest", s.suggestNames)

		// Capture sessions
		api.POST("/sessions", s.createSession)
		api.GET("/sessions/:id", s.getSession)
		api.POST("/sessions/:id/events", s.sessionEvent)
		api.POST("/sessions/:id/signals", s.sessionSignals)
		api.POST("/sessions/:id/identify", s.sessionIdentify)
	}
}

// healthCheck reports liveness plus store reachability.
func (s *Server) healthCheck(c *gin.Context) {
	status := "ok"
	if database.GlobalStore == nil {
		status = "degraded"
	} else if _, err := database.GlobalStore.CountRecords(); err != nil {
		status = "degraded"
	}
	c.JSON(http.StatusOK, HealthResponse{
		Status:    status,
		Timestamp: time.Now().Unix(),
	})
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
