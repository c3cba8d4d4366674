package dig_container

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"
	"gorm.io/gorm"

	echoapi "github.com/trezcool/tuitioncenter/apps/api/echo"
	"github.com/trezcool/tuitioncenter/core"
	"github.com/trezcool/tuitioncenter/core/attendance"
	"github.com/trezcool/tuitioncenter/core/payment"
	"github.com/trezcool/tuitioncenter/core/staff"
	"github.com/trezcool/tuitioncenter/core/student"
	"github.com/trezcool/tuitioncenter/core/subject"
	"github.com/trezcool/tuitioncenter/core/tuition"
	emailsvc "github.com/trezcool/tuitioncenter/services/email"
	logsvc "github.com/trezcool/tuitioncenter/services/logger"
	"github.com/trezcool/tuitioncenter/services/ratelimit"
	"github.com/trezcool/tuitioncenter/storage/database"
	"github.com/trezcool/tuitioncenter/storage/database/gormdb"
	"github.com/trezcool/tuitioncenter/storage/uploads"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

type repositories struct {
	dig.Out
	Staff      staff.Repository
	Subjects   subject.Repository
	Students   student.Repository
	Attendance attendance.Repository
	Payments   payment.Repository
}

type serverParams struct {
	dig.In
	Conf          *core.Config
	Logger        core.Logger
	Validate      *validator.Validate
	Translator    ut.Translator
	Limiter       ratelimit.Limiter
	Uploads       *uploads.DiskStore
	StaffSvc      *staff.Service
	SubjectSvc    *subject.Service
	StudentSvc    *student.Service
	AttendanceSvc *attendance.Service
	PaymentSvc    *payment.Service
	TuitionSvc    *tuition.Service
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) *sql.DB {
	setUp := func() (*sql.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newGormDB(conf *core.Config, db *sql.DB) (*gorm.DB, error) {
	return gormdb.NewGormDB(db, conf.Debug)
}

func newRepositories(db *gorm.DB) repositories {
	return repositories{
		Staff:      gormdb.NewStaffRepository(db),
		Subjects:   gormdb.NewSubjectRepository(db),
		Students:   gormdb.NewStudentRepository(db),
		Attendance: gormdb.NewAttendanceRepository(db),
		Payments:   gormdb.NewPaymentRepository(db),
	}
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newUploads(conf *core.Config) (*uploads.DiskStore, error) {
	return uploads.NewDiskStore(conf.Uploads)
}

func newLimiter(conf *core.Config) ratelimit.Limiter {
	return ratelimit.New(conf.RedisAddr, conf.RateLimit.Window)
}

func newValidator() *validator.Validate {
	return validator.New()
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newStudentService(repo student.Repository, subjectSvc *subject.Service) *student.Service {
	return student.NewService(repo, subjectSvc)
}

func newPaymentService(
	conf *core.Config,
	repo payment.Repository,
	studentRepo student.Repository,
	store *uploads.DiskStore,
	mailSvc core.EmailService,
) *payment.Service {
	return payment.NewService(repo, studentRepo, store, mailSvc, conf.NotifyEmail)
}

func newTuitionService(studentSvc *student.Service, attSvc *attendance.Service, paySvc *payment.Service) *tuition.Service {
	return tuition.NewService(studentSvc, attSvc, paySvc)
}

func newServerOptions(p serverParams) *echoapi.Options {
	return &echoapi.Options{
		Conf:          p.Conf,
		Logger:        p.Logger,
		Validate:      p.Validate,
		Translator:    p.Translator,
		Limiter:       p.Limiter,
		Uploads:       p.Uploads,
		StaffSvc:      p.StaffSvc,
		SubjectSvc:    p.SubjectSvc,
		StudentSvc:    p.StudentSvc,
		AttendanceSvc: p.AttendanceSvc,
		PaymentSvc:    p.PaymentSvc,
		TuitionSvc:    p.TuitionSvc,
	}
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newGormDB))
	must(c.Provide(newRepositories))
	must(c.Provide(newEmailService))
	must(c.Provide(newUploads))
	must(c.Provide(newLimiter))
	must(c.Provide(newValidator))
	must(c.Provide(newTranslator))

	must(c.Provide(staff.NewService))
	must(c.Provide(subject.NewService))
	must(c.Provide(newStudentService))
	must(c.Provide(attendance.NewService))
	must(c.Provide(newPaymentService))
	must(c.Provide(newTuitionService))

	must(c.Provide(newServerOptions))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
