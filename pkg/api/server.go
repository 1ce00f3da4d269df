// Package api is the HTTP surface: gin handlers over the task service and
// the standalone verifier, with error-kind to status-code mapping.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ovokpus/PostAssist/pkg/config"
	"github.com/ovokpus/PostAssist/pkg/models"
	"github.com/ovokpus/PostAssist/pkg/queue"
	"github.com/ovokpus/PostAssist/pkg/store"
	"github.com/ovokpus/PostAssist/pkg/version"
)

// TaskService is the slice of the queue service the handlers need.
type TaskService interface {
	Submit(ctx context.Context, task *models.Task) error
	Get(ctx context.Context, taskID string) (*models.Task, error)
	List(ctx context.Context) ([]*models.Task, error)
	Cancel(ctx context.Context, taskID string) error
	Delete(ctx context.Context, taskID string) error
}

// PostVerifier runs standalone post verifications.
type PostVerifier interface {
	Verify(ctx context.Context, req queue.VerifyRequest) (*models.VerificationReport, error)
}

// Server holds the handler dependencies.
type Server struct {
	cfg      *config.Config
	tasks    TaskService
	verifier PostVerifier
	health   store.HealthReporter
	logger   *slog.Logger
}

// NewServer wires the HTTP server. health may be nil when no store health
// is reportable.
func NewServer(cfg *config.Config, tasks TaskService, verifier PostVerifier, health store.HealthReporter, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:      cfg,
		tasks:    tasks,
		verifier: verifier,
		health:   health,
		logger:   logger,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	router.GET("/", s.handleHealth)
	router.GET("/health", s.handleHealth)

	router.POST("/generate-post", s.handleGeneratePost)
	router.GET("/status/:task_id", s.handleTaskStatus)
	router.GET("/tasks", s.handleListTasks)
	router.DELETE("/tasks/:task_id", s.handleDeleteTask)
	router.POST("/tasks/:task_id/cancel", s.handleCancelTask)

	router.POST("/verify-post", s.handleVerifyPost)
	router.POST("/batch-generate", s.handleBatchGenerate)

	return router
}

// HTTPServer wraps the router in an http.Server listening on the configured
// port.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:    ":" + s.cfg.HTTPPort,
		Handler: s.Router(),
	}
}

// Service health states reported alongside the store's own constants.
const (
	serviceConfigured    = "configured"
	serviceNotConfigured = "not_configured"
)

func (s *Server) handleHealth(c *gin.Context) {
	llmState := serviceNotConfigured
	if s.cfg.LLM.Configured() {
		llmState = serviceConfigured
	}
	searchState := serviceNotConfigured
	if s.cfg.Search.Configured() {
		searchState = serviceConfigured
	}
	storeState := store.HealthNotAvailable
	if s.health != nil {
		storeState = s.health.Health(c.Request.Context())
	}

	// Unconfigured providers degrade overall status; a deliberately absent
	// store does not, but a tripped or unreachable remote does.
	status := "healthy"
	if llmState == serviceNotConfigured || searchState == serviceNotConfigured ||
		storeState == store.HealthDegraded {
		status = "degraded"
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:  status,
		Version: version.Version,
		Services: map[string]string{
			"llm":    llmState,
			"search": searchState,
			"store":  storeState,
		},
	})
}
