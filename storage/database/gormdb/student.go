package gormdb

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/trezcool/shuleboard/core"
	"github.com/trezcool/shuleboard/core/student"
)

type studentRepository struct {
	db *DB
}

// interface compliance check
var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	if err := core.Sleep(ctx, repo.db.latency.Write); err != nil {
		return student.Student{}, err
	}
	s.ID = 0
	err := repo.db.WithContext(ctx).Create(&s).Error
	return s, errors.Wrap(err, "inserting student")
}

func (repo *studentRepository) QueryStudents(
	ctx context.Context,
	filter student.QueryFilter,
	orderings ...core.Ordering,
) ([]student.Student, error) {
	if err := core.Sleep(ctx, repo.db.latency.Read); err != nil {
		return nil, err
	}
	q := repo.db.WithContext(ctx).Model(&student.Student{})
	q = applyStudentFilter(q, filter)
	for _, ord := range orderings {
		q = q.Order(studentOrder(ord))
	}
	var students []student.Student
	err := q.Order("id ASC").Find(&students).Error
	return students, errors.Wrap(err, "querying students")
}

func applyStudentFilter(q *gorm.DB, filter student.QueryFilter) *gorm.DB {
	if filter.Grade != "" {
		q = q.Where("grade = ?", filter.Grade)
	}
	if filter.Status != "" {
		q = q.Where("LOWER(status) = ?", strings.ToLower(filter.Status))
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		q = q.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR grade LIKE ?",
			like, like, like, "%"+filter.Search+"%",
		)
	}
	return q
}

// studentOrder orders grade levels numerically.
func studentOrder(ord core.Ordering) string {
	if ord.Field == "grade" {
		return "CAST(grade AS INTEGER) " + strings.SplitN(ord.String(), " ", 2)[1]
	}
	return ord.String()
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id int) (student.Student, error) {
	if err := core.Sleep(ctx, repo.db.latency.Lookup); err != nil {
		return student.Student{}, err
	}
	var s student.Student
	res := repo.db.WithContext(ctx).First(&s, id)
	if res.Error != nil {
		return student.Student{}, notFound(res, student.ErrNotFound)
	}
	return s, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	if err := core.Sleep(ctx, repo.db.latency.Write); err != nil {
		return student.Student{}, err
	}
	var updated student.Student
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.First(&updated, s.ID)
		if res.Error != nil {
			return notFound(res, student.ErrNotFound)
		}
		s.EnrollmentDate = updated.EnrollmentDate
		updated = s
		return tx.Save(&updated).Error
	})
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	return updated, nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id int) (student.Student, error) {
	if err := core.Sleep(ctx, repo.db.latency.Delete); err != nil {
		return student.Student{}, err
	}
	var s student.Student
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.First(&s, id)
		if res.Error != nil {
			return notFound(res, student.ErrNotFound)
		}
		return tx.Delete(&student.Student{}, id).Error
	})
	if err != nil {
		return student.Student{}, errors.Wrap(err, "deleting student")
	}
	return s, nil
}
