package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/saptono/wicara/domain/entities"
)

// SessionService is the slice of the session controller the API needs
type SessionService interface {
	Start(ctx context.Context) error
	Stop() error
	Status() entities.Status
	Transcript() []entities.TranscriptEntry
}

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, sessions SessionService, logger *zap.Logger) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "wicara",
		})
	})

	// API v1 routes
	v1 := e.Group("/api/v1")

	v1.POST("/session/start", func(c echo.Context) error {
		return startSession(c, sessions, logger)
	})
	v1.POST("/session/stop", func(c echo.Context) error {
		return stopSession(c, sessions, logger)
	})
	v1.GET("/session", func(c echo.Context) error {
		return c.JSON(http.StatusOK, sessions.Status())
	})
	v1.GET("/transcript", func(c echo.Context) error {
		return c.JSON(http.StatusOK, TranscriptResponse{
			Entries: sessions.Transcript(),
		})
	})
}

func startSession(c echo.Context, sessions SessionService, logger *zap.Logger) error {
	// The session outlives this request, so it must not inherit the
	// request context.
	if err := sessions.Start(context.Background()); err != nil {
		logger.Warn("Session start rejected", zap.Error(err))
		return c.JSON(startErrorStatus(err), ErrorResponse{
			Error:   startErrorCode(err),
			Message: err.Error(),
		})
	}

	status := sessions.Status()
	logger.Info("Session started",
		zap.String("conversation_id", status.ConversationID))

	return c.JSON(http.StatusOK, StartResponse{
		ConversationID: status.ConversationID,
		State:          status.State,
	})
}

func stopSession(c echo.Context, sessions SessionService, logger *zap.Logger) error {
	if err := sessions.Stop(); err != nil {
		logger.Error("Session stop failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "stop_failed",
			Message: err.Error(),
		})
	}
	return c.JSON(http.StatusOK, StopResponse{
		State: sessions.Status().State,
	})
}

// startErrorStatus maps a start failure to an HTTP status: microphone denial
// is the caller's environment, upstream dial failures are a bad gateway, and
// anything else (already live, usually) is a conflict.
func startErrorStatus(err error) int {
	var sessionErr *entities.SessionError
	if errors.As(err, &sessionErr) {
		switch sessionErr.Kind {
		case entities.ErrorKindPermission:
			return http.StatusForbidden
		case entities.ErrorKindConnect:
			return http.StatusBadGateway
		}
	}
	return http.StatusConflict
}

func startErrorCode(err error) string {
	var sessionErr *entities.SessionError
	if errors.As(err, &sessionErr) {
		return string(sessionErr.Kind)
	}
	return "session_conflict"
}
