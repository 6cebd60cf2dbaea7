package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/asistente/core"
	"github.com/trezcool/asistente/core/activity"
	"github.com/trezcool/asistente/core/course"
	"github.com/trezcool/asistente/core/dashboard"
	"github.com/trezcool/asistente/core/feed"
	"github.com/trezcool/asistente/core/note"
	"github.com/trezcool/asistente/core/user"
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		Validate       *validator.Validate
		Translator     ut.Translator
		UserSvc        user.Service
		CourseSvc      course.Service
		ActivitySvc    activity.Service
		NoteSvc        note.Service
		FeedSvc        feed.Service
		DashboardSvc   dashboard.Service
		DisableReqLogs bool
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		auth     authenticator
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ http.Handler = (*Server)(nil)

func NewServer(deps ServerDeps) *Server {
	vala.BeginValidation().Validate(
		vala.IsNotNil(deps.Conf, "Conf"),
		vala.IsNotNil(deps.Logger, "Logger"),
		vala.IsNotNil(deps.Validate, "Validate"),
		vala.IsNotNil(deps.Translator, "Translator"),
		vala.IsNotNil(deps.UserSvc, "UserSvc"),
		vala.IsNotNil(deps.CourseSvc, "CourseSvc"),
		vala.IsNotNil(deps.ActivitySvc, "ActivitySvc"),
		vala.IsNotNil(deps.NoteSvc, "NoteSvc"),
		vala.IsNotNil(deps.FeedSvc, "FeedSvc"),
		vala.IsNotNil(deps.DashboardSvc, "DashboardSvc"),
	).CheckAndPanic()

	s := &Server{
		deps:     deps,
		app:      echo.New(),
		auth:     newAuthenticator(deps.Conf),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug && !conf.TestMode

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(s.auth.jwtConfig)
	authed := []echo.MiddlewareFunc{jwt, ctxUserMiddleware(s.deps.UserSvc)}

	registerUserAPI(v1, jwt, s.auth, s.deps.UserSvc, s.deps.NoteSvc, s.deps.Validate)
	registerCourseAPI(v1, s.deps.CourseSvc, s.deps.ActivitySvc, authed...)
	registerSubjectAPI(v1, s.deps.CourseSvc, s.deps.ActivitySvc, authed...)
	registerActivityAPI(v1, s.deps.ActivitySvc, authed...)
	registerScheduleAPI(v1, s.deps.CourseSvc, authed...)
	registerNoteAPI(v1, s.deps.NoteSvc, authed...)
	registerFeedAPI(v1, s.deps.FeedSvc, authed...)
	registerDashboardAPI(v1, s.deps.DashboardSvc, authed...)
}

// Start blocks until the listener stops; a failure other than a regular shutdown is sent to Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address()); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already signaled
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}
