package testutil

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shuleboard/core"
	"github.com/trezcool/shuleboard/core/attendance"
	"github.com/trezcool/shuleboard/core/grade"
	"github.com/trezcool/shuleboard/core/student"
	logsvc "github.com/trezcool/shuleboard/services/logger"
	"github.com/trezcool/shuleboard/storage/database"
)

// NewStore opens an empty in-memory record store without latency.
// The fixtures are loaded when `seed` is true.
func NewStore(t *testing.T, seed ...bool) *database.Store {
	conf := core.NewTestConfig()
	conf.Database.Seed = len(seed) > 0 && seed[0]
	store, err := database.Open(context.Background(), conf)
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// NewLogger returns a logger that discards everything.
func NewLogger() core.Logger {
	conf := core.NewTestConfig()
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)
	return logger
}

func NewValidator() (*validator.Validate, ut.Translator) {
	translator := core.NewTranslator()
	validate := validator.New()
	core.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	attendance.InitValidators(validate, translator)
	return validate, translator
}

func CreateStudent(t *testing.T, repo student.Repository, first, last, level string, status ...string) student.Student {
	s := student.Student{
		FirstName:      first,
		LastName:       last,
		Grade:          level,
		EnrollmentDate: "2024-09-02",
		Status:         student.StatusActive,
	}
	if len(status) > 0 {
		s.Status = status[0]
	}
	s, err := repo.CreateStudent(context.Background(), s)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return s
}

func CreateGrade(t *testing.T, repo grade.Repository, studentID int, subject, term string, score float64, date ...core.Date) grade.Grade {
	g := grade.Grade{
		StudentID:  studentID,
		Subject:    subject,
		Assessment: grade.DefaultAssessment,
		Score:      score,
		MaxScore:   grade.DefaultMaxScore,
		Weight:     grade.DefaultWeight,
		Term:       term,
		Date:       "2025-01-15",
	}
	if len(date) > 0 {
		g.Date = date[0]
	}
	g, err := repo.CreateGrade(context.Background(), g)
	if err != nil {
		t.Fatalf("CreateGrade() failed: %v", err)
	}
	return g
}

func CreateRecord(t *testing.T, repo attendance.Repository, studentID int, date core.Date, status string) attendance.Record {
	r, err := repo.UpsertRecord(context.Background(), attendance.Record{
		StudentID: studentID,
		Date:      date,
		Status:    status,
		MarkedBy:  attendance.DefaultMarkedBy,
		Timestamp: date.Time().Add(8 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateRecord() failed: %v", err)
	}
	return r
}
