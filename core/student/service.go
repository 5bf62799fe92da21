package student

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/shuleboard/core"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("student not found")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, s Student) (Student, error)
		// QueryStudents applies AND operation on available QueryFilter fields.
		QueryStudents(ctx context.Context, filter QueryFilter, orderings ...core.Ordering) ([]Student, error)
		GetStudentByID(ctx context.Context, id int) (Student, error)
		UpdateStudent(ctx context.Context, s Student) (Student, error)
		// DeleteStudent removes a Student only; grades and attendance records are kept.
		DeleteStudent(ctx context.Context, id int) (Student, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	s := Student{
		FirstName:       ns.FirstName,
		LastName:        ns.LastName,
		Grade:           ns.Grade,
		Email:           ns.Email,
		Phone:           ns.Phone,
		Address:         ns.Address,
		GuardianName:    ns.GuardianName,
		GuardianContact: ns.GuardianContact,
		EnrollmentDate:  core.Today(),
		Status:          ns.Status,
	}
	if s.Status == "" {
		s.Status = StatusActive
	}
	s, err := svc.repo.CreateStudent(ctx, s)
	return s, errors.Wrap(err, "creating student")
}

func (svc *Service) QueryAll(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, QueryFilter{})
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, orderings ...core.Ordering) ([]Student, error) {
	filter.Clean()
	return svc.repo.QueryStudents(ctx, filter, orderings...)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

// Search does a case-insensitive match on names & email, or a substring match on the grade level.
// A blank query returns every student.
func (svc *Service) Search(ctx context.Context, query string) ([]Student, error) {
	return svc.Query(ctx, QueryFilter{Search: query})
}

func (svc *Service) GetByGrade(ctx context.Context, level string) ([]Student, error) {
	return svc.Query(ctx, QueryFilter{Grade: level})
}

// Update replaces the Student's editable fields; `uu` must have been validated against the original.
func (svc *Service) Update(ctx context.Context, id int, uu UpdateStudent) (Student, error) {
	s := Student{
		ID:              id,
		FirstName:       uu.FirstName,
		LastName:        uu.LastName,
		Grade:           uu.Grade,
		Email:           uu.Email,
		Phone:           uu.Phone,
		Address:         uu.Address,
		GuardianName:    uu.GuardianName,
		GuardianContact: uu.GuardianContact,
		Status:          uu.Status,
	}
	return svc.repo.UpdateStudent(ctx, s)
}

func (svc *Service) Delete(ctx context.Context, id int) (Student, error) {
	return svc.repo.DeleteStudent(ctx, id)
}
