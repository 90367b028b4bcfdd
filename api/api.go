package api

import (
	"RandomWalkService/internal/model"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// This file serves as the main entry point for the API package. It defines the APIHandler struct and its dependencies.
// The package structure is as follows:
// - api.go: Main API handler, dependencies, routing and server lifecycle (this file)
// - handler.go: JSON API handlers
// - page.go: HTML page handlers
// - session.go: session cookie handling
// - middleware.go: Middleware functions
// - validator.go: Request validation

// Constants
const (
	DefaultTimeout      = 30 * time.Second
	ShutdownTimeout     = 10 * time.Second
	ServiceVersion      = "1.0.0"
	ServiceName         = "random-walk-service"
	RequestIDContextKey = "request_id"
	SessionContextKey   = "session_id"
	RequestIDHeaderKey  = "X-Request-ID"
	SessionHeaderKey    = "X-Session-ID"
	SessionCookieName   = "walk_session"
	UploadFormField     = "file"
)

// WalkService is an interface defining the session interactions
type WalkService interface {
	NewSession(id string) model.Session
	SelectSource(s model.Session, source model.Source) (model.Session, error)
	Generate(s model.Session) model.Session
	Upload(s model.Session, filename string, r io.Reader) (model.Session, error)
	Edit(s model.Session, times, prices []string) (model.Session, error)
	ReplaceSeries(s model.Session, series model.Series) (model.Session, error)
	Stats(series model.Series) (model.Stats, error)
	Export(series model.Series, format string, w io.Writer) error
}

// SessionStorage loads and stores session state between requests
type SessionStorage interface {
	Get(ctx context.Context, id string) (model.Session, error)
	Save(ctx context.Context, session model.Session) (model.Session, error)
}

// PageRenderer renders the interactive HTML page
type PageRenderer interface {
	Page(w io.Writer, s model.Session, extraRows int) error
}

// HandlerConfig holds request limits and cookie lifetime
type HandlerConfig struct {
	MaxUploadBytes int64
	SessionTTL     time.Duration
}

// DefaultHandlerConfig returns sensible default configuration
func DefaultHandlerConfig() HandlerConfig {
	return HandlerConfig{
		MaxUploadBytes: 10 << 20,
		SessionTTL:     30 * time.Minute,
	}
}

// APIHandler handles HTTP requests using Gin framework
type APIHandler struct {
	walkService WalkService
	sessions    SessionStorage
	renderer    PageRenderer
	validator   *Validator
	config      HandlerConfig
	logger      *slog.Logger
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(walkService WalkService, sessions SessionStorage, renderer PageRenderer, config HandlerConfig, logger *slog.Logger) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &APIHandler{
		walkService: walkService,
		sessions:    sessions,
		renderer:    renderer,
		validator:   GetValidator(),
		config:      config,
		logger:      logger,
	}
}

// StartServer serves on port until ctx is cancelled, then shuts down gracefully.
// A graceful shutdown returns nil.
func (h *APIHandler) StartServer(ctx context.Context, port int) error {
	if port < 0 || port > 65535 {
		return errors.New("port must be between 0 and 65535")
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           h.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		h.logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// SetupRoutes configures all API routes
func (h *APIHandler) SetupRoutes() *gin.Engine {
	// Set Gin to release mode for production
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.MaxMultipartMemory = h.config.MaxUploadBytes

	// Add middleware
	router.Use(requestIDMiddleware())
	router.Use(ginLoggerMiddleware())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	// Page routes
	router.GET("/", h.ShowPage)
	router.POST("/source", h.SelectSourceForm)
	router.POST("/generate", h.GenerateForm)
	router.POST("/upload", h.UploadForm)
	router.POST("/edit", h.EditForm)
	router.GET("/chart", h.Chart)
	router.GET("/export.csv", h.ExportCSV)
	router.GET("/export.xlsx", h.ExportXLSX)

	// API routes
	v1 := router.Group("/api/v1")
	v1.GET("/series", h.GetSeries)
	v1.PUT("/series", h.PutSeries)
	v1.POST("/series/generate", h.GenerateSeries)
	v1.POST("/series/upload", h.UploadSeries)
	v1.POST("/source", h.SelectSource)
	v1.GET("/stats", h.GetStats)

	router.GET("/health", h.HealthCheck)

	return router
}
