package attendance

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/shuleboard/core"
	"github.com/trezcool/shuleboard/core/student"
)

const markAllConcurrency = 8

var (
	// errors
	ErrNotFound = core.NewNotFoundError("attendance record not found")
)

type (
	Repository interface {
		QueryRecords(ctx context.Context, filter QueryFilter) ([]Record, error)
		GetRecordByID(ctx context.Context, id int) (Record, error)
		// UpsertRecord updates the Record matching (StudentID, Date) or creates it.
		UpsertRecord(ctx context.Context, r Record) (Record, error)
	}

	// Roster gives access to the enrolled students.
	Roster interface {
		QueryAll(ctx context.Context) ([]student.Student, error)
		GetByID(ctx context.Context, id int) (student.Student, error)
	}

	Service struct {
		repo   Repository
		roster Roster
		logger core.Logger
	}
)

func NewService(repo Repository, roster Roster, logger core.Logger) *Service {
	return &Service{repo: repo, roster: roster, logger: logger}
}

func (svc *Service) GetAll(ctx context.Context) ([]Record, error) {
	return svc.repo.QueryRecords(ctx, QueryFilter{})
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Record, error) {
	return svc.repo.QueryRecords(ctx, filter)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Record, error) {
	return svc.repo.GetRecordByID(ctx, id)
}

func (svc *Service) GetByStudent(ctx context.Context, studentID int) ([]Record, error) {
	return svc.repo.QueryRecords(ctx, QueryFilter{StudentID: studentID})
}

func (svc *Service) GetByDate(ctx context.Context, date core.Date) ([]Record, error) {
	return svc.repo.QueryRecords(ctx, QueryFilter{Date: date})
}

// DailyView returns one entry per enrolled student for `date`.
func (svc *Service) DailyView(ctx context.Context, date core.Date) ([]DailyEntry, error) {
	records, err := svc.GetByDate(ctx, date)
	if err != nil {
		return nil, errors.Wrap(err, "querying records by date")
	}
	students, err := svc.roster.QueryAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return BuildDailyView(students, records, date), nil
}

func (svc *Service) Today(ctx context.Context) ([]DailyEntry, error) {
	return svc.DailyView(ctx, core.Today())
}

// Mark records `status` for the student today, updating today's Record if there is one.
func (svc *Service) Mark(ctx context.Context, studentID int, status, reason string) (Record, error) {
	if !IsValidStatus(status) {
		return Record{}, core.NewValidationError(
			fmt.Errorf("invalid attendance status %q", status),
			core.FieldError{Field: "status", Error: statusText},
		)
	}
	if _, err := svc.roster.GetByID(ctx, studentID); err != nil {
		return Record{}, errors.Wrap(err, "finding student by ID")
	}

	rec := Record{
		StudentID: studentID,
		Date:      core.Today(),
		Status:    status,
		Reason:    reason,
		MarkedBy:  DefaultMarkedBy,
		Timestamp: core.NowFunc().UTC(),
	}
	rec, err := svc.repo.UpsertRecord(ctx, rec)
	return rec, errors.Wrap(err, "upserting attendance record")
}

// MarkAllPresent marks every unmarked student present for today.
// Marks are independent: on failure the successful ones are kept and returned with the first error.
func (svc *Service) MarkAllPresent(ctx context.Context) ([]Record, error) {
	view, err := svc.Today(ctx)
	if err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		marked = make([]Record, 0, len(view))
		g      errgroup.Group
	)
	g.SetLimit(markAllConcurrency)
	for _, entry := range view {
		if entry.IsMarked() {
			continue
		}
		studentID := entry.StudentID
		g.Go(func() error {
			rec, err := svc.Mark(ctx, studentID, StatusPresent, "")
			if err != nil {
				svc.logger.Warn(fmt.Sprintf("marking student %d present failed", studentID), err)
				return errors.Wrapf(err, "marking student %d present", studentID)
			}
			mu.Lock()
			marked = append(marked, rec)
			mu.Unlock()
			return nil
		})
	}
	err = g.Wait()
	return marked, err
}

// Stats tallies the persisted records on `date`.
func (svc *Service) Stats(ctx context.Context, date core.Date) (Stats, error) {
	records, err := svc.GetByDate(ctx, date)
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying records by date")
	}
	return Tally(records), nil
}

// Weekly summarizes the five school days starting at `from`.
func (svc *Service) Weekly(ctx context.Context, from core.Date) ([]DaySummary, error) {
	records, err := svc.repo.QueryRecords(ctx, QueryFilter{From: from, To: from.AddDays(7)})
	if err != nil {
		return nil, errors.Wrap(err, "querying records by range")
	}
	return WeeklySummary(records, from, 5), nil
}
