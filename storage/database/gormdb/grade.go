package gormdb

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/trezcool/shuleboard/core"
	"github.com/trezcool/shuleboard/core/grade"
)

type gradeRepository struct {
	db *DB
}

// interface compliance check
var _ grade.Repository = (*gradeRepository)(nil)

func NewGradeRepository(db *DB) grade.Repository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) CreateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	if err := core.Sleep(ctx, repo.db.latency.Write); err != nil {
		return grade.Grade{}, err
	}
	g.ID = 0
	err := repo.db.WithContext(ctx).Create(&g).Error
	return g, errors.Wrap(err, "inserting grade")
}

func (repo *gradeRepository) QueryGrades(ctx context.Context, filter grade.QueryFilter) ([]grade.Grade, error) {
	if err := core.Sleep(ctx, repo.db.latency.Read); err != nil {
		return nil, err
	}
	q := repo.db.WithContext(ctx).Model(&grade.Grade{})
	if filter.StudentID != 0 {
		q = q.Where("student_id = ?", filter.StudentID)
	}
	if filter.StudentIDs != nil {
		q = q.Where("student_id IN ?", filter.StudentIDs)
	}
	if filter.Subject != "" {
		q = q.Where("subject = ?", filter.Subject)
	}
	if filter.Term != "" {
		q = q.Where("term = ?", filter.Term)
	}
	var grades []grade.Grade
	err := q.Order("id ASC").Find(&grades).Error
	return grades, errors.Wrap(err, "querying grades")
}

func (repo *gradeRepository) GetGradeByID(ctx context.Context, id int) (grade.Grade, error) {
	if err := core.Sleep(ctx, repo.db.latency.Lookup); err != nil {
		return grade.Grade{}, err
	}
	var g grade.Grade
	res := repo.db.WithContext(ctx).First(&g, id)
	if res.Error != nil {
		return grade.Grade{}, notFound(res, grade.ErrNotFound)
	}
	return g, nil
}

func (repo *gradeRepository) UpdateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	if err := core.Sleep(ctx, repo.db.latency.Write); err != nil {
		return grade.Grade{}, err
	}
	res := repo.db.WithContext(ctx).Model(&g).Select("*").Updates(&g)
	if res.Error != nil {
		return grade.Grade{}, errors.Wrap(res.Error, "updating grade")
	}
	if res.RowsAffected == 0 {
		return grade.Grade{}, grade.ErrNotFound
	}
	return g, nil
}

func (repo *gradeRepository) DeleteGrade(ctx context.Context, id int) (grade.Grade, error) {
	if err := core.Sleep(ctx, repo.db.latency.Delete); err != nil {
		return grade.Grade{}, err
	}
	var g grade.Grade
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.First(&g, id)
		if res.Error != nil {
			return notFound(res, grade.ErrNotFound)
		}
		return tx.Delete(&grade.Grade{}, id).Error
	})
	if err != nil {
		return grade.Grade{}, errors.Wrap(err, "deleting grade")
	}
	return g, nil
}

func (repo *gradeRepository) SaveGrades(ctx context.Context, grades []grade.Grade) ([]grade.Grade, error) {
	if err := core.Sleep(ctx, repo.db.latency.Bulk); err != nil {
		return nil, err
	}
	saved := make([]grade.Grade, len(grades))
	copy(saved, grades)
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range saved {
			var err error
			if saved[i].ID != 0 {
				err = tx.Save(&saved[i]).Error
			} else {
				err = tx.Create(&saved[i]).Error
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "saving grades")
	}
	return saved, nil
}
