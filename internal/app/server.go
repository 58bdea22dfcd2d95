package app

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/sssohn/pointsd/internal/auth"
	"github.com/sssohn/pointsd/internal/live"
	"github.com/sssohn/pointsd/internal/points"
)

type Options struct {
	Addr           string
	Env            string // dev|prod
	Gate           *auth.Gate
	Service        *points.Service
	Hub            *live.Hub
	DB             *sql.DB
	Log            *zap.Logger
	DisableReqLogs bool
}

type Server struct {
	opts *Options
	app  *echo.Echo
}

func NewServer(opts *Options) *Server {
	s := &Server{opts: opts, app: echo.New()}
	s.app.HideBanner = true
	s.setup()
	return s
}

func (s *Server) setup() {
	api := &api{
		gate:     s.opts.Gate,
		svc:      s.opts.Service,
		hub:      s.opts.Hub,
		database: s.opts.DB,
		validate: validator.New(),
		log:      s.opts.Log,
	}

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	if s.opts.Env == "prod" {
		s.app.Use(middleware.Recover())
	}
	s.app.HTTPErrorHandler = api.errorHandler

	v1 := s.app.Group("/v1")
	v1.POST("/auth/student-login", api.studentLogin)
	v1.POST("/auth/teacher-login", api.teacherLogin)
	v1.GET("/auth/session", api.restoreSession)

	authed := v1.Group("", api.requireAuth)
	authed.POST("/auth/logout", api.logout)
	authed.GET("/roster", api.roster)
	authed.GET("/roster/stream", api.rosterStream)
	authed.GET("/reasons", api.reasons)
	authed.GET("/students/:id/summary", api.studentSummary)
	authed.GET("/students/:id/records", api.studentRecords)
	authed.GET("/students/:id/records/export", api.studentRecordsExport)
	authed.GET("/students/:id/stream", api.studentStream)
	authed.POST("/requests", api.submitRequest)
	authed.GET("/requests", api.listRequests)
	authed.POST("/requests/:id/dispose", api.disposeRequest)
	authed.GET("/requests/stream", api.requestStream)
	authed.GET("/audit", api.auditLog)
	authed.GET("/audit/stream", api.auditStream)
}

func (s *Server) Start() error {
	err := s.app.Start(s.opts.Addr)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Stop(ctx context.Context) error { return s.app.Shutdown(ctx) }

// ServeHTTP lets tests drive the router directly.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.app.ServeHTTP(w, r) }
