package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/shuleboard/apps/api/echo"
	"github.com/trezcool/shuleboard/core"
	"github.com/trezcool/shuleboard/core/attendance"
	"github.com/trezcool/shuleboard/core/dashboard"
	"github.com/trezcool/shuleboard/core/grade"
	"github.com/trezcool/shuleboard/core/report"
	"github.com/trezcool/shuleboard/core/student"
	emailsvc "github.com/trezcool/shuleboard/services/email"
	logsvc "github.com/trezcool/shuleboard/services/logger"
	"github.com/trezcool/shuleboard/storage/database"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Repositories are the record store accessors of the configured database engine.
type Repositories struct {
	dig.Out
	Students   student.Repository
	Attendance attendance.Repository
	Grades     grade.Repository
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

func newStore(conf *core.Config, loggerParam DBLoggerParam) *database.Store {
	store, err := database.Open(context.Background(), conf)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return store
}

func newRepositories(store *database.Store) Repositories {
	return Repositories{
		Students:   store.Students,
		Attendance: store.Attendance,
		Grades:     store.Grades,
	}
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	svc, err := emailsvc.New(conf, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up email service: %v", err), err)
	}
	return svc
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	attendance.InitValidators(validate, translator)
	return validate
}

func newServerDeps(
	conf *core.Config,
	logger core.Logger,
	studentSvc *student.Service,
	attSvc *attendance.Service,
	gradeSvc *grade.Service,
	reportSvc *report.Service,
	reportMailer *report.Mailer,
	dashboardSvc *dashboard.Service,
	validate *validator.Validate,
	translator ut.Translator,
) echoapi.ServerDeps {
	return echoapi.ServerDeps{
		Conf:          conf,
		Logger:        logger,
		StudentSvc:    studentSvc,
		AttendanceSvc: attSvc,
		GradeSvc:      gradeSvc,
		ReportSvc:     reportSvc,
		ReportMailer:  reportMailer,
		DashboardSvc:  dashboardSvc,
		Validate:      validate,
		Translator:    translator,
	}
}

// New returns a new dependency injection dig.Container.
// `newConfig` defaults to core.NewConfig.
func New(newConfig ...func() *core.Config) *dig.Container {
	c := dig.New()

	confFn := core.NewConfig
	if len(newConfig) > 0 {
		confFn = newConfig[0]
	}

	must(c.Provide(confFn))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStore))
	must(c.Provide(newRepositories))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(student.NewService))
	must(c.Provide(func(repo attendance.Repository, students *student.Service, logger core.Logger) *attendance.Service {
		return attendance.NewService(repo, students, logger)
	}))
	must(c.Provide(grade.NewService))
	must(c.Provide(func(
		students *student.Service,
		grades *grade.Service,
		att *attendance.Service,
		logger core.Logger,
	) *report.Service {
		return report.NewService(students, grades, att, logger)
	}))
	must(c.Provide(newEmailService))
	must(c.Provide(report.NewMailer))
	must(c.Provide(func(students *student.Service, grades *grade.Service, att *attendance.Service) *dashboard.Service {
		return dashboard.NewService(students, grades, att)
	}))
	must(c.Provide(newServerDeps))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
