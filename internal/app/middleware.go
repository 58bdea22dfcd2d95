package app

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sssohn/pointsd/internal/auth"
	"github.com/sssohn/pointsd/internal/ctxutil"
	"github.com/sssohn/pointsd/internal/live"
	"github.com/sssohn/pointsd/internal/models"
	"github.com/sssohn/pointsd/internal/points"
)

type api struct {
	gate     *auth.Gate
	svc      *points.Service
	hub      *live.Hub
	database *sql.DB
	validate *validator.Validate
	log      *zap.Logger
}

const actorKey = "actor"

// requireAuth resolves the bearer token into an account and re-checks the
// directory status on every call, so a freshly disabled account loses access
// without waiting for token expiry.
func (a *api) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
		}
		acc, err := a.gate.ResolveActor(c.Request().Context(), token)
		if err != nil {
			return err
		}
		c.Set(actorKey, acc)

		ctx := ctxutil.WithActorID(c.Request().Context(), acc.ID)
		ctx = ctxutil.WithActorRole(ctx, string(acc.Role))
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

func actor(c echo.Context) *models.Account {
	acc, _ := c.Get(actorKey).(*models.Account)
	return acc
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if strings.HasPrefix(header, prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

func (a *api) bindAndValidate(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if err := a.validate.Struct(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
