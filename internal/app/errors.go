package app

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sssohn/pointsd/internal/auth"
	"github.com/sssohn/pointsd/internal/metrics"
	"github.com/sssohn/pointsd/internal/observability"
	"github.com/sssohn/pointsd/internal/points"
)

// Every rejected operation surfaces a specific message; backend failures
// collapse into one generic "store unavailable" and go to sentry.
func (a *api) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := 0
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, auth.ErrAccountNotFound),
		errors.Is(err, auth.ErrAccountDisabled),
		errors.Is(err, auth.ErrAccountDeleted),
		errors.Is(err, points.ErrNotAssignedToClass),
		errors.Is(err, points.ErrNotHomeroom):
		status = http.StatusForbidden
	case errors.Is(err, points.ErrNoSuchStudent),
		errors.Is(err, points.ErrRequestNotFound):
		status = http.StatusNotFound
	case errors.Is(err, points.ErrAlreadyDisposed):
		status = http.StatusConflict
	case errors.Is(err, points.ErrNoHomeroomTeacher),
		errors.Is(err, points.ErrInvalidPoints),
		errors.Is(err, points.ErrInvalidType):
		status = http.StatusUnprocessableEntity
	}
	if status != 0 {
		_ = c.JSON(status, echo.Map{"error": err.Error()})
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := he.Message
		if _, ok := msg.(string); !ok {
			msg = http.StatusText(he.Code)
		}
		_ = c.JSON(he.Code, echo.Map{"error": msg})
		return
	}

	metrics.HandlerErrors.Inc()
	observability.CaptureErr(err)
	a.log.Error("unhandled request error", zap.String("path", c.Path()), zap.Error(err))
	_ = c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "store unavailable, try again"})
}
