// Package portal serves the SkillBridge web portal: role-scoped dashboards
// backed by the SkillBridge REST API, with one portal session per browser.
package portal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/skillbridge-dev/skillbridge/internal/auth"
	"github.com/skillbridge-dev/skillbridge/internal/config"
	"github.com/skillbridge-dev/skillbridge/internal/database"
	"github.com/skillbridge-dev/skillbridge/internal/models"
	"github.com/skillbridge-dev/skillbridge/internal/sessionstore"
	"github.com/skillbridge-dev/skillbridge/internal/tasks"
)

// Server represents the portal HTTP server
type Server struct {
	router     *gin.Engine
	db         *gorm.DB
	config     *config.Config
	logger     zerolog.Logger
	sessions   sessionstore.Backend
	tokens     *auth.TokenManager
	enqueuer   tasks.Enqueuer
	httpClient *http.Client
	version    string

	asynqClient *asynq.Client
	redisClient *redis.Client
}

// Deps are the collaborators New builds from configuration. Tests inject
// their own through NewWithDeps.
type Deps struct {
	DB         *gorm.DB
	Sessions   sessionstore.Backend
	Enqueuer   tasks.Enqueuer
	HTTPClient *http.Client
}

// New creates a new portal server from configuration
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	if err := cfg.ValidatePortal(); err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.Database.URL, zlog)
	if err != nil {
		return nil, err
	}

	sealer := auth.NewSealer(cfg.Portal.Secret)

	var (
		sessions    sessionstore.Backend
		redisClient *redis.Client
	)
	switch cfg.Portal.SessionBackend {
	case "redis":
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address})
		sessions = sessionstore.NewRedis(redisClient, sealer, cfg.Portal.SessionTTL)
	default:
		sessions = sessionstore.NewDB(db, sealer)
	}

	// Initialize Asynq client for enqueueing report refreshes
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr: cfg.Redis.Address,
	})

	srv, err := NewWithDeps(cfg, Deps{
		DB:       db,
		Sessions: sessions,
		Enqueuer: asynqClient,
		HTTPClient: &http.Client{
			Timeout: cfg.API.Timeout,
		},
	}, zlog, version)
	if err != nil {
		return nil, err
	}
	srv.asynqClient = asynqClient
	srv.redisClient = redisClient
	return srv, nil
}

// NewWithDeps creates a server around injected collaborators
func NewWithDeps(cfg *config.Config, deps Deps, zlog zerolog.Logger, version string) (*Server, error) {
	tokens, err := auth.NewTokenManager(cfg.Portal.Secret, cfg.Portal.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize portal tokens: %w", err)
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("session backend is required")
	}
	httpClient := deps.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.API.Timeout}
	}

	server := &Server{
		db:         deps.DB,
		config:     cfg,
		logger:     zlog,
		sessions:   deps.Sessions,
		tokens:     tokens,
		enqueuer:   deps.Enqueuer,
		httpClient: httpClient,
		version:    version,
	}

	server.setupRouter()
	return server, nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	origins := s.config.Portal.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Location"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint (no session required)
	s.router.GET("/health", s.healthCheck)

	web := s.router.Group("")
	web.Use(s.sessionMiddleware())
	{
		web.GET("/login", s.loginView)
		web.POST("/login", s.login)
		web.POST("/register/:kind", s.register)
		web.POST("/logout", s.logout)

		// Any authenticated role
		app := web.Group("/app")
		app.Use(s.RoleGate(""))
		{
			app.GET("/me", s.me)
			app.POST("/refresh", s.refresh)
		}

		admin := web.Group("/admin")
		admin.Use(s.RoleGate(models.RoleAdmin))
		{
			admin.GET("/dashboard", s.adminDashboard)
			admin.GET("/students", s.adminListStudents)
			admin.GET("/trainers", s.adminListTrainers)
			admin.GET("/companies", s.adminListCompanies)
			admin.GET("/colleges", s.adminListColleges)

			admin.GET("/batches", s.adminListBatches)
			admin.POST("/batches", s.adminCreateBatch)
			admin.GET("/batches/:id", s.adminGetBatch)
			admin.PUT("/batches/:id", s.adminUpdateBatch)
			admin.DELETE("/batches/:id", s.adminDeleteBatch)
			admin.POST("/batches/:id/students/:studentId", s.adminAddStudent)
			admin.DELETE("/batches/:id/students/:studentId", s.adminRemoveStudent)
			admin.POST("/batches/:id/trainers/:trainerId", s.adminAssignTrainer)
			admin.GET("/batches/:id/feedback", s.adminBatchFeedback)

			admin.GET("/reports", s.listReports)
			admin.POST("/reports/refresh", s.refreshReports)
		}

		student := web.Group("/student")
		student.Use(s.RoleGate(models.RoleStudent))
		{
			student.GET("/dashboard", s.studentDashboard)
			student.GET("/profile", s.studentProfile)
			student.PUT("/profile", s.studentUpdateProfile)
			student.GET("/batches", s.studentBatches)
			student.GET("/feedback", s.studentReceivedFeedback)
			student.POST("/feedback", s.studentGiveFeedback)
			student.GET("/progress/:batchId", s.studentProgress)
		}

		trainer := web.Group("/trainer")
		trainer.Use(s.RoleGate(models.RoleTrainer))
		{
			trainer.GET("/dashboard", s.trainerDashboard)
			trainer.GET("/batches", s.trainerBatches)
			trainer.GET("/students", s.trainerStudents)
			trainer.GET("/feedback", s.trainerReceivedFeedback)
			trainer.POST("/feedback", s.trainerGiveFeedback)
			trainer.POST("/progress", s.trainerUpdateProgress)
		}
	}
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "skillbridge-portal",
		"version":   s.version,
	})
}

// pruner is implemented by session backends that cannot expire rows on their own
type pruner interface {
	Prune(ctx context.Context, olderThan time.Time) (int64, error)
}

// pruneSessions drops portal sessions idle for longer than the session TTL
func (s *Server) pruneSessions(ctx context.Context) {
	p, ok := s.sessions.(pruner)
	if !ok {
		return
	}
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		n, err := p.Prune(ctx, time.Now().Add(-s.config.Portal.SessionTTL))
		if err != nil {
			s.logger.Warn().Err(err).Msg("Failed to prune portal sessions")
		} else if n > 0 {
			s.logger.Info().Int64("pruned", n).Msg("Pruned idle portal sessions")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Start starts the HTTP server and blocks until SIGINT or SIGTERM
func (s *Server) Start() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:              s.config.Portal.Addr,
		Handler:           s.router,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	pruneCtx, stopPrune := context.WithCancel(context.Background())
	defer stopPrune()
	go s.pruneSessions(pruneCtx)

	go func() {
		s.logger.Info().Str("addr", srv.Addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	<-sigChan
	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")
	stopPrune()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	if s.asynqClient != nil {
		if err := s.asynqClient.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("Error closing Asynq client")
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("Error closing Redis client")
		}
	}
	if s.db != nil {
		if err := database.Close(s.db); err != nil {
			s.logger.Error().Err(err).Msg("Error closing database")
		}
	}

	s.logger.Info().Msg("Server shutdown complete")
	return nil
}
