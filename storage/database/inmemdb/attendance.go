package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/shuleboard/core"
	"github.com/trezcool/shuleboard/core/attendance"
)

type attendanceRepository struct {
	db      *attendanceTable
	latency core.LatencyConfig
}

// interface compliance check
var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db.attendance, latency: db.latency}
}

func (repo *attendanceRepository) query(filter attendance.QueryFilter) []attendance.Record {
	res := make([]attendance.Record, 0)
	for _, r := range repo.db.t {
		if filter.Match(*r) {
			res = append(res, *r)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

func (repo *attendanceRepository) QueryRecords(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Record, error) {
	if err := core.Sleep(ctx, repo.latency.Read); err != nil {
		return nil, err
	}
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(filter), nil
}

func (repo *attendanceRepository) GetRecordByID(ctx context.Context, id int) (attendance.Record, error) {
	if err := core.Sleep(ctx, repo.latency.Lookup); err != nil {
		return attendance.Record{}, err
	}
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if r, ok := repo.db.t[id]; ok {
		return *r, nil
	}
	return attendance.Record{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) UpsertRecord(ctx context.Context, r attendance.Record) (attendance.Record, error) {
	if err := core.Sleep(ctx, repo.latency.Write); err != nil {
		return attendance.Record{}, err
	}
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	key := dayKey{r.StudentID, r.Date}
	if id, ok := repo.db.byDay[key]; ok {
		r.ID = id
	} else {
		repo.db.pk++
		r.ID = repo.db.pk
		repo.db.byDay[key] = r.ID
	}
	repo.db.t[r.ID] = &r
	return r, nil
}
