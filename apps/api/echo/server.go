package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/tuitioncenter/core"
	"github.com/trezcool/tuitioncenter/core/attendance"
	"github.com/trezcool/tuitioncenter/core/payment"
	"github.com/trezcool/tuitioncenter/core/staff"
	"github.com/trezcool/tuitioncenter/core/student"
	"github.com/trezcool/tuitioncenter/core/subject"
	"github.com/trezcool/tuitioncenter/core/tuition"
	"github.com/trezcool/tuitioncenter/services/ratelimit"
	"github.com/trezcool/tuitioncenter/services/telemetry"
	"github.com/trezcool/tuitioncenter/storage/uploads"
)

type (
	Options struct {
		Conf           *core.Config
		Logger         core.Logger
		DisableReqLogs bool
		Validate       *validator.Validate
		Translator     ut.Translator
		Limiter        ratelimit.Limiter
		Uploads        *uploads.DiskStore
		StaffSvc       *staff.Service
		SubjectSvc     *subject.Service
		StudentSvc     *student.Service
		AttendanceSvc  *attendance.Service
		PaymentSvc     *payment.Service
		TuitionSvc     *tuition.Service
	}

	Server struct {
		opts     *Options
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ http.Handler = (*Server)(nil)

func NewServer(opts *Options) *Server {
	s := &Server{
		opts:     opts,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.opts.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	if conf.TelemetryName != "" {
		s.app.Use(echo.WrapMiddleware(telemetry.HTTPMiddleware(conf.TelemetryName)))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)
	s.app.Static("/"+uploads.ReceiptsPrefix, s.opts.Uploads.ReceiptsDir())
	s.app.Static("/"+uploads.PicturesPrefix, s.opts.Uploads.PicturesDir())

	api := s.app.Group("/api")
	auth := authMiddlewares{
		jwt:       newJWTMiddleware(conf.SecretKey, false),
		optional:  newJWTMiddleware(conf.SecretKey, true),
		principal: principalMiddleware(s.opts.StaffSvc, s.opts.StudentSvc),
	}

	registerAuthAPI(api, auth, s.opts)
	registerProfileAPI(api, auth, s.opts)
	registerAdminAPI(api, auth, s.opts)
	registerStudentAPI(api, auth, s.opts)
	registerSubjectAPI(api, auth, s.opts)
	registerAttendanceAPI(api, auth, s.opts)
	registerPaymentAPI(api, auth, s.opts)
}

// Start blocks until the server stops. Listen errors are reported on Errors().
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.errors <- s.app.Start(s.opts.Conf.Server.Address())
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
	default: // already shutting down
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to TutorCenter API!")
}
