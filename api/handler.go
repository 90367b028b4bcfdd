package api

import (
	"RandomWalkService/internal/core"
	"RandomWalkService/internal/model"
	"RandomWalkService/internal/service"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SeriesResponse is the JSON view of a session
type SeriesResponse struct {
	SessionID       string        `json:"session_id"`
	Source          model.Source  `json:"source"`
	Series          model.Series  `json:"series"`
	OriginalColumns []string      `json:"original_columns,omitempty"`
	Notice          *model.Notice `json:"notice,omitempty"`
}

// SeriesRequest is the body of PUT /api/v1/series
type SeriesRequest struct {
	Series model.Series `json:"series"`
}

// SourceRequest is the body of POST /api/v1/source
type SourceRequest struct {
	Source string `json:"source"`
}

func newSeriesResponse(s model.Session) SeriesResponse {
	series := s.Series
	if series == nil {
		series = model.Series{}
	}
	return SeriesResponse{
		SessionID:       s.ID,
		Source:          s.Source,
		Series:          series,
		OriginalColumns: s.OriginalColumns,
		Notice:          s.Notice,
	}
}

// GetSeries handles GET /api/v1/series requests
func (h *APIHandler) GetSeries(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	s, err := h.loadSession(ctx, c)
	if err != nil {
		h.handleError(c, err, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, newSeriesResponse(s))
}

// PutSeries handles PUT /api/v1/series requests, the JSON counterpart of a grid edit
func (h *APIHandler) PutSeries(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	var req SeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleValidationError(c, fmt.Errorf("invalid request body: %w", err))
		return
	}

	s, err := h.loadSession(ctx, c)
	if err != nil {
		h.handleError(c, err, http.StatusInternalServerError, "Internal server error")
		return
	}

	next, err := h.walkService.ReplaceSeries(s, req.Series)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondSession(ctx, c, next)
}

// GenerateSeries handles POST /api/v1/series/generate requests
func (h *APIHandler) GenerateSeries(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	s, err := h.loadSession(ctx, c)
	if err != nil {
		h.handleError(c, err, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.respondSession(ctx, c, h.walkService.Generate(s))
}

// UploadSeries handles POST /api/v1/series/upload multipart requests
func (h *APIHandler) UploadSeries(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	s, err := h.loadSession(ctx, c)
	if err != nil {
		h.handleError(c, err, http.StatusInternalServerError, "Internal server error")
		return
	}

	next, err := h.upload(c, s)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondSession(ctx, c, next)
}

// SelectSource handles POST /api/v1/source requests
func (h *APIHandler) SelectSource(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	var req SourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleValidationError(c, fmt.Errorf("invalid request body: %w", err))
		return
	}
	source, err := h.validator.ValidateSource(req.Source)
	if err != nil {
		h.handleValidationError(c, err)
		return
	}

	s, err := h.loadSession(ctx, c)
	if err != nil {
		h.handleError(c, err, http.StatusInternalServerError, "Internal server error")
		return
	}

	next, err := h.walkService.SelectSource(s, source)
	if err != nil {
		h.handleValidationError(c, err)
		return
	}

	h.respondSession(ctx, c, next)
}

// GetStats handles GET /api/v1/stats requests
func (h *APIHandler) GetStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	s, err := h.loadSession(ctx, c)
	if err != nil {
		h.handleError(c, err, http.StatusInternalServerError, "Internal server error")
		return
	}

	stats, err := h.walkService.Stats(s.Series)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// HealthCheck handles GET /health requests
func (h *APIHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"service":   ServiceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   ServiceVersion,
	})
}

// upload reads the multipart file field and passes it to the service
func (h *APIHandler) upload(c *gin.Context, s model.Session) (model.Session, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.config.MaxUploadBytes+(1<<20))

	fh, err := c.FormFile(UploadFormField)
	if err != nil {
		return s, &core.IngestError{Kind: core.KindFileFormat, Msg: "no file uploaded", Err: err}
	}
	filename, err := h.validator.ValidateFilename(fh.Filename)
	if err != nil {
		return s, &core.IngestError{Kind: core.KindFileFormat, Msg: err.Error()}
	}

	f, err := fh.Open()
	if err != nil {
		return s, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	return h.walkService.Upload(s, filename, f)
}

// respondSession stores the next session and writes it as JSON
func (h *APIHandler) respondSession(ctx context.Context, c *gin.Context, next model.Session) {
	saved, err := h.saveSession(ctx, c, next)
	if err != nil {
		h.handleError(c, err, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, newSeriesResponse(saved))
}

// handleServiceError maps ingestion and service errors onto status codes
func (h *APIHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case core.KindOf(err) != "":
		h.handleError(c, err, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrEmptySeries):
		h.handleError(c, err, http.StatusUnprocessableEntity, err.Error())
	default:
		h.handleError(c, err, http.StatusInternalServerError, "Internal server error")
	}
}

// requestID returns the id set by the request id middleware
func requestID(c *gin.Context) string {
	if v, exists := c.Get(RequestIDContextKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return "unknown"
}

// handleError logs the error and sends appropriate HTTP response
func (h *APIHandler) handleError(c *gin.Context, err error, statusCode int, userMessage string) {
	requestIDStr := requestID(c)

	h.logger.Error("API error",
		slog.String("request_id", requestIDStr),
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("error", err.Error()),
		slog.Int("status_code", statusCode),
	)

	body := gin.H{
		"error":      userMessage,
		"request_id": requestIDStr,
	}
	if kind := core.KindOf(err); kind != "" {
		body["kind"] = string(kind)
	}
	c.JSON(statusCode, body)
}

// handleValidationError handles validation errors specifically
func (h *APIHandler) handleValidationError(c *gin.Context, err error) {
	h.handleError(c, err, http.StatusBadRequest, err.Error())
}
