package main

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

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

func main() {
	conf := core.NewConfig()

	stdLogger := log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)

	// the CLI does not simulate network latency
	conf.Latency = core.LatencyConfig{}

	// set up DB
	store, err := database.Open(context.Background(), conf)
	if err != nil {
		stdLogger.Fatal(err)
	}

	email, err := emailsvc.New(conf, logger)
	if err != nil {
		stdLogger.Fatal(err)
	}

	translator := core.NewTranslator()
	validate := validator.New()
	core.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	attendance.InitValidators(validate, translator)

	// start CLI
	cli := newCommandLine(store, validate, logger, email, os.Stdout, int(os.Stdout.Fd()))
	code := 0
	if err = cli.run(os.Args); err != nil {
		if err != errHelp {
			stdLogger.Printf("\nerror: %s\n", err)
		}
		code = 1
	}
	emailsvc.Wait(email)
	if err = store.Close(); err != nil {
		stdLogger.Printf("closing database: %v", err)
	}
	os.Exit(code)
}

func newCommandLine(
	store *database.Store,
	validate *validator.Validate,
	logger core.Logger,
	email core.EmailService,
	out io.Writer,
	outFd int,
) *commandLine {
	studentSvc := student.NewService(store.Students)
	attSvc := attendance.NewService(store.Attendance, studentSvc, logger)
	gradeSvc := grade.NewService(store.Grades)
	reportSvc := report.NewService(studentSvc, gradeSvc, attSvc, logger)
	return &commandLine{
		studentSvc: studentSvc,
		attSvc:     attSvc,
		gradeSvc:   gradeSvc,
		reportSvc:  reportSvc,
		mailer:     report.NewMailer(reportSvc, email),
		dashSvc:    dashboard.NewService(studentSvc, gradeSvc, attSvc),
		validate:   validate,
		out:        out,
		outFd:      outFd,
	}
}
