package inmemdb

import (
	"context"

	"github.com/trezcool/shuleboard/core"
	"github.com/trezcool/shuleboard/core/student"
)

type studentRepository struct {
	db      *studentTable
	latency core.LatencyConfig
}

// interface compliance check
var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student, latency: db.latency}
}

// query returns copies of the rows matching `filter`, in ID order.
func (repo *studentRepository) query(filter student.QueryFilter) []student.Student {
	res := make([]student.Student, 0, len(repo.db.t))
	for _, s := range repo.db.t {
		if filter.Match(*s) {
			res = append(res, *s)
		}
	}
	student.Sort(res, nil)
	return res
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	if err := core.Sleep(ctx, repo.latency.Write); err != nil {
		return student.Student{}, err
	}
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.pk++
	s.ID = repo.db.pk
	repo.db.t[s.ID] = &s
	return s, nil
}

func (repo *studentRepository) QueryStudents(
	ctx context.Context,
	filter student.QueryFilter,
	orderings ...core.Ordering,
) ([]student.Student, error) {
	if err := core.Sleep(ctx, repo.latency.Read); err != nil {
		return nil, err
	}
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := repo.query(filter)
	if len(orderings) > 0 {
		student.Sort(students, orderings)
	}
	return students, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id int) (student.Student, error) {
	if err := core.Sleep(ctx, repo.latency.Lookup); err != nil {
		return student.Student{}, err
	}
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.t[id]; ok {
		return *s, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	if err := core.Sleep(ctx, repo.latency.Write); err != nil {
		return student.Student{}, err
	}
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.t[s.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	s.EnrollmentDate = orig.EnrollmentDate
	repo.db.t[s.ID] = &s
	return s, nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id int) (student.Student, error) {
	if err := core.Sleep(ctx, repo.latency.Delete); err != nil {
		return student.Student{}, err
	}
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	s, ok := repo.db.t[id]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	delete(repo.db.t, id)
	return *s, nil
}
