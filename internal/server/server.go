// Package server
//
// @title Terra API
// @version 1.0
// @description Factions, projects and tension leaderboard
// @host localhost:10000
// @BasePath /api/v1
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/terra-dev/terra/internal/auth"
	"github.com/terra-dev/terra/internal/config"
	"github.com/terra-dev/terra/internal/projects"
	"github.com/terra-dev/terra/internal/tension"
)

// Enqueuer accepts background tasks. *asynq.Client satisfies it.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Dependencies are the collaborators the server is built from
type Dependencies struct {
	DB    *gorm.DB
	Auth  *auth.Manager
	Queue Enqueuer
	// Redis backs the login rate limiter when set; otherwise an in-memory store is used.
	Redis *redis.Client
}

// Server represents the HTTP server
type Server struct {
	router    *gin.Engine
	db        *gorm.DB
	config    *config.Config
	logger    zerolog.Logger
	validator *validator.Validate
	auth      *auth.Manager
	queue     Enqueuer
	projects  *projects.Service
	tension   *tension.Service
	version   string
}

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger, deps Dependencies, version string) (*Server, error) {
	validate, err := newValidator()
	if err != nil {
		return nil, err
	}

	server := &Server{
		db:        deps.DB,
		config:    cfg,
		logger:    zlog,
		validator: validate,
		auth:      deps.Auth,
		queue:     deps.Queue,
		projects:  projects.NewService(deps.DB, zlog),
		tension:   tension.NewService(deps.DB, zlog),
		version:   version,
	}

	if err := server.setupRouter(deps.Redis); err != nil {
		return nil, err
	}

	return server, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter(redisClient *redis.Client) error {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	// The web client sends the session cookie cross-origin
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{s.config.Server.FrontendOrigin},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           7 * 24 * time.Hour,
	}))

	loginLimiter, err := newLoginLimiter(s.config.Auth.LoginRatePerMinute, redisClient)
	if err != nil {
		return err
	}

	s.router.GET("/health", s.healthCheck)

	api := s.router.Group("/api/v1")
	api.Use(s.sessionMiddleware())
	{
		api.GET("/system/info", s.getSystemInfo)

		authRoutes := api.Group("/auth")
		{
			authRoutes.GET("/status", s.authStatus)
			authRoutes.POST("/login", loginLimiter, s.login)
			authRoutes.POST("/logout", s.logout)
			authRoutes.POST("/otac", RequireTier(auth.Server, s.logger), s.issueOTAC)
		}

		api.GET("/projects", RequireTier(auth.Player, s.logger), s.listProjects)
		api.POST("/projects", RequireTier(auth.Admin, s.logger), s.addProject)
		api.DELETE("/projects", RequireTier(auth.Admin, s.logger), s.deleteProject)

		api.GET("/tension", RequireTier(auth.Player, s.logger), s.leaderboard)
		api.POST("/tension", RequireTier(auth.Server, s.logger), s.setTension)
		api.DELETE("/tension", RequireTier(auth.Server, s.logger), s.deleteTension)
	}

	return nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully
func (s *Server) Start() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:              s.config.Server.ListenAddress,
		Handler:           s.router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info().
			Str("address", s.config.Server.ListenAddress).
			Bool("tls", s.config.Server.Secure()).
			Msg("Starting HTTP server")

		var err error
		if s.config.Server.Secure() {
			err = srv.ListenAndServeTLS(s.config.Server.TLSCertFile, s.config.Server.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		s.logger.Error().Err(err).Msg("HTTP server error")
		return err
	case <-sigChan:
	}
	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.logger.Info().Msg("Server shutdown complete")
	return nil
}
