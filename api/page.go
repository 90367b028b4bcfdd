package api

import (
	"RandomWalkService/internal/chart"
	"RandomWalkService/internal/core"
	"RandomWalkService/internal/model"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

const htmlContentType = "text/html; charset=utf-8"

// ShowPage handles GET / requests
func (h *APIHandler) ShowPage(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	s, err := h.loadSession(ctx, c)
	if err != nil {
		h.handleError(c, err, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.renderPage(c, http.StatusOK, s, 0)
}

// SelectSourceForm handles POST /source from the radio control
func (h *APIHandler) SelectSourceForm(c *gin.Context) {
	h.interact(c, func(s model.Session) (model.Session, error) {
		source, err := h.validator.ValidateSource(c.PostForm("source"))
		if err != nil {
			return s, err
		}
		return h.walkService.SelectSource(s, source)
	})
}

// GenerateForm handles POST /generate
func (h *APIHandler) GenerateForm(c *gin.Context) {
	h.interact(c, func(s model.Session) (model.Session, error) {
		return h.walkService.Generate(s), nil
	})
}

// UploadForm handles POST /upload multipart requests
func (h *APIHandler) UploadForm(c *gin.Context) {
	h.interact(c, func(s model.Session) (model.Session, error) {
		return h.upload(c, s)
	})
}

// EditForm handles POST /edit from the data grid. The add_row action saves
// the grid and renders it again with one blank row to fill in.
func (h *APIHandler) EditForm(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	s, err := h.loadSession(ctx, c)
	if err != nil {
		h.handleError(c, err, http.StatusInternalServerError, "Internal server error")
		return
	}

	next, err := h.applyEdit(c, s)
	if err != nil {
		h.logInteractionError(c, err)
	}

	saved, err := h.saveSession(ctx, c, next)
	if err != nil {
		h.handleError(c, err, http.StatusInternalServerError, "Internal server error")
		return
	}

	if c.PostForm("action") == "add_row" {
		h.renderPage(c, http.StatusOK, saved, 1)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// Chart handles GET /chart, the chart page embedded in the main page
func (h *APIHandler) Chart(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	s, err := h.loadSession(ctx, c)
	if err != nil {
		h.handleError(c, err, http.StatusInternalServerError, "Internal server error")
		return
	}

	var buf bytes.Buffer
	if err := chart.Render(&buf, s.Series, chart.DefaultOptions()); err != nil {
		h.handleError(c, err, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.Data(http.StatusOK, htmlContentType, buf.Bytes())
}

// ExportCSV handles GET /export.csv
func (h *APIHandler) ExportCSV(c *gin.Context) {
	h.export(c, core.FormatCSV)
}

// ExportXLSX handles GET /export.xlsx
func (h *APIHandler) ExportXLSX(c *gin.Context) {
	h.export(c, core.FormatXLSX)
}

func (h *APIHandler) export(c *gin.Context, format string) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	format, err := h.validator.ValidateExportFormat(format)
	if err != nil {
		h.handleValidationError(c, err)
		return
	}

	s, err := h.loadSession(ctx, c)
	if err != nil {
		h.handleError(c, err, http.StatusInternalServerError, "Internal server error")
		return
	}

	var buf bytes.Buffer
	if err := h.walkService.Export(s.Series, format, &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	contentType := "text/csv; charset=utf-8"
	if format == core.FormatXLSX {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="random_walk.%s"`, format))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// interact runs one page interaction: load the session, apply fn, store the
// result and redirect back to the page. Errors are shown on the page through
// the session notice and never abort the session.
func (h *APIHandler) interact(c *gin.Context, fn func(model.Session) (model.Session, error)) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	s, err := h.loadSession(ctx, c)
	if err != nil {
		h.handleError(c, err, http.StatusInternalServerError, "Internal server error")
		return
	}

	next, err := fn(s)
	if err != nil {
		h.logInteractionError(c, err)
		if next.Notice == nil || next.Notice.Level != model.NoticeError {
			next = next.Clone()
			next.Notice = &model.Notice{Level: model.NoticeError, Message: err.Error()}
		}
	}

	if _, err := h.saveSession(ctx, c, next); err != nil {
		h.handleError(c, err, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *APIHandler) applyEdit(c *gin.Context, s model.Session) (model.Session, error) {
	times, prices, err := h.validator.ValidateEditForm(c.PostFormArray("time"), c.PostFormArray("price"), c.PostFormArray("delete"))
	if err != nil {
		next := s.Clone()
		next.Notice = &model.Notice{Level: model.NoticeError, Message: err.Error()}
		return next, err
	}
	return h.walkService.Edit(s, times, prices)
}

func (h *APIHandler) renderPage(c *gin.Context, status int, s model.Session, extraRows int) {
	var buf bytes.Buffer
	if err := h.renderer.Page(&buf, s, extraRows); err != nil {
		h.handleError(c, err, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.Data(status, htmlContentType, buf.Bytes())
}

func (h *APIHandler) logInteractionError(c *gin.Context, err error) {
	h.logger.Warn("interaction rejected",
		slog.String("request_id", requestID(c)),
		slog.String("path", c.Request.URL.Path),
		slog.String("kind", string(core.KindOf(err))),
		slog.String("error", err.Error()),
	)
}
