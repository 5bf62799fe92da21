package report

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/shuleboard/core"
	"github.com/trezcool/shuleboard/core/attendance"
	"github.com/trezcool/shuleboard/core/grade"
	"github.com/trezcool/shuleboard/core/student"
)

var (
	// errors
	ErrBusy     = errors.New("a report is already being generated")
	ErrNoReport = core.NewNotFoundError("no report has been generated")
)

type (
	Students interface {
		QueryAll(ctx context.Context) ([]student.Student, error)
		GetByID(ctx context.Context, id int) (student.Student, error)
	}

	Grades interface {
		GetAll(ctx context.Context) ([]grade.Grade, error)
		GetByStudent(ctx context.Context, studentID int) ([]grade.Grade, error)
	}

	Attendance interface {
		GetByStudent(ctx context.Context, studentID int) ([]attendance.Record, error)
		Query(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Record, error)
	}

	// Service composes reports and keeps the history of the ones generated during the session.
	// It generates one report at a time.
	Service struct {
		students   Students
		grades     Grades
		attendance Attendance
		logger     core.Logger

		mu      sync.Mutex
		state   State
		last    *Report
		lastErr error
		history []HistoryEntry
	}
)

func NewService(students Students, grades Grades, att Attendance, logger core.Logger) *Service {
	return &Service{
		students:   students,
		grades:     grades,
		attendance: att,
		logger:     logger,
		state:      StateIdle,
	}
}

// Generate composes the report described by `p`.
// A missing selector leaves the Service Idle and returns a validation error;
// failing to load the report data moves it to Failed.
func (svc *Service) Generate(ctx context.Context, p Params) (Report, error) {
	p.Clean()

	svc.mu.Lock()
	if svc.state == StateGenerating {
		svc.mu.Unlock()
		return Report{}, ErrBusy
	}
	if err := p.Check(); err != nil {
		svc.state = StateIdle
		svc.mu.Unlock()
		return Report{}, err
	}
	svc.state = StateGenerating
	svc.mu.Unlock()

	rep, err := svc.compose(ctx, p)

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if err != nil {
		svc.state = StateFailed
		svc.lastErr = err
		if !core.IsNotFound(err) {
			svc.logger.Error("report generation failed", err, map[string]interface{}{"type": p.Type})
		}
		return Report{}, err
	}

	rep.ID = uuid.NewString()
	rep.GeneratedAt = core.NowFunc().UTC()
	svc.state = StateReady
	last := rep.clone()
	svc.last = &last
	svc.lastErr = nil
	svc.history = append([]HistoryEntry{rep.HistoryEntry()}, svc.history...)
	return rep, nil
}

func (svc *Service) compose(ctx context.Context, p Params) (Report, error) {
	switch p.Type {
	case TypeStudent:
		s, err := svc.students.GetByID(ctx, p.StudentID)
		if err != nil {
			return Report{}, errors.Wrap(err, "finding student by ID")
		}
		grades, err := svc.grades.GetByStudent(ctx, s.ID)
		if err != nil {
			return Report{}, errors.Wrap(err, "querying student grades")
		}
		records, err := svc.attendance.GetByStudent(ctx, s.ID)
		if err != nil {
			return Report{}, errors.Wrap(err, "querying student attendance")
		}
		return ComposeStudent(s, grades, records), nil

	case TypeClass, TypeSubject:
		students, err := svc.students.QueryAll(ctx)
		if err != nil {
			return Report{}, errors.Wrap(err, "querying students")
		}
		grades, err := svc.grades.GetAll(ctx)
		if err != nil {
			return Report{}, errors.Wrap(err, "querying grades")
		}
		if p.Type == TypeClass {
			return ComposeClass(p.GradeLevel, students, grades), nil
		}
		return ComposeSubject(p.Subject, students, grades), nil

	case TypeAttendance:
		records, err := svc.attendance.Query(ctx, attendance.QueryFilter{From: p.StartDate, To: p.EndDate})
		if err != nil {
			return Report{}, errors.Wrap(err, "querying attendance by range")
		}
		students, err := svc.students.QueryAll(ctx)
		if err != nil {
			return Report{}, errors.Wrap(err, "querying students")
		}
		return ComposeAttendance(p.StartDate, p.EndDate, students, records), nil
	}
	return Report{}, errors.Errorf("unknown report type %q", p.Type)
}

func (svc *Service) State() State {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.state
}

// Err returns the error of the last failed generation.
func (svc *Service) Err() error {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.state != StateFailed {
		return nil
	}
	return svc.lastErr
}

// Last returns a copy of the last generated report.
func (svc *Service) Last() (Report, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.last == nil {
		return Report{}, ErrNoReport
	}
	return svc.last.clone(), nil
}

// History returns the generated reports, newest first.
func (svc *Service) History() []HistoryEntry {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	history := make([]HistoryEntry, len(svc.history))
	copy(history, svc.history)
	return history
}

// Reset moves the Service back to Idle. The history is kept.
func (svc *Service) Reset() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.state != StateGenerating {
		svc.state = StateIdle
		svc.lastErr = nil
	}
}
