package api

import (
	"RandomWalkService/internal/data"
	"RandomWalkService/internal/model"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// loadSession returns the caller's session. An absent, malformed or expired id
// starts a new session holding the default walk.
func (h *APIHandler) loadSession(ctx context.Context, c *gin.Context) (model.Session, error) {
	id := c.GetHeader(SessionHeaderKey)
	if id == "" {
		id, _ = c.Cookie(SessionCookieName)
	}

	if cleanID, ok := h.validator.ValidateSessionID(id); ok {
		s, err := h.sessions.Get(ctx, cleanID)
		if err == nil {
			c.Set(SessionContextKey, s.ID)
			return s, nil
		}
		if !errors.Is(err, data.ErrSessionNotFound) {
			return model.Session{}, fmt.Errorf("failed to load session: %w", err)
		}
	}

	s := h.walkService.NewSession(generateSessionID())
	h.logger.Info("started session", slog.String("session_id", s.ID))
	return h.saveSession(ctx, c, s)
}

// saveSession stores the session and hands its id back to the client
func (h *APIHandler) saveSession(ctx context.Context, c *gin.Context, s model.Session) (model.Session, error) {
	saved, err := h.sessions.Save(ctx, s)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to save session: %w", err)
	}

	c.Set(SessionContextKey, saved.ID)
	c.Header(SessionHeaderKey, saved.ID)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, saved.ID, int(h.config.SessionTTL.Seconds()), "/", "", false, true)
	return saved, nil
}

func generateSessionID() string {
	return uuid.New().String()
}
