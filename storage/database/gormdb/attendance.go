package gormdb

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/trezcool/shuleboard/core"
	"github.com/trezcool/shuleboard/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

// interface compliance check
var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) QueryRecords(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Record, error) {
	if err := core.Sleep(ctx, repo.db.latency.Read); err != nil {
		return nil, err
	}
	q := repo.db.WithContext(ctx).Model(&attendance.Record{})
	if filter.StudentID != 0 {
		q = q.Where("student_id = ?", filter.StudentID)
	}
	if filter.Date != "" {
		q = q.Where("date = ?", filter.Date)
	}
	if filter.From != "" {
		q = q.Where("date >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("date <= ?", filter.To)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	var records []attendance.Record
	err := q.Order("id ASC").Find(&records).Error
	return records, errors.Wrap(err, "querying attendance records")
}

func (repo *attendanceRepository) GetRecordByID(ctx context.Context, id int) (attendance.Record, error) {
	if err := core.Sleep(ctx, repo.db.latency.Lookup); err != nil {
		return attendance.Record{}, err
	}
	var r attendance.Record
	res := repo.db.WithContext(ctx).First(&r, id)
	if res.Error != nil {
		return attendance.Record{}, notFound(res, attendance.ErrNotFound)
	}
	return r, nil
}

func (repo *attendanceRepository) UpsertRecord(ctx context.Context, r attendance.Record) (attendance.Record, error) {
	if err := core.Sleep(ctx, repo.db.latency.Write); err != nil {
		return attendance.Record{}, err
	}
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing attendance.Record
		res := tx.Where("student_id = ? AND date = ?", r.StudentID, r.Date).Limit(1).Find(&existing)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			r.ID = existing.ID
			return tx.Save(&r).Error
		}
		r.ID = 0
		return tx.Create(&r).Error
	})
	return r, errors.Wrap(err, "upserting attendance record")
}
