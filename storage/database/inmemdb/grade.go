package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/shuleboard/core"
	"github.com/trezcool/shuleboard/core/grade"
)

type gradeRepository struct {
	db      *gradeTable
	latency core.LatencyConfig
}

// interface compliance check
var _ grade.Repository = (*gradeRepository)(nil)

func NewGradeRepository(db *DB) grade.Repository {
	return &gradeRepository{db: db.grade, latency: db.latency}
}

func (repo *gradeRepository) query(filter grade.QueryFilter) []grade.Grade {
	res := make([]grade.Grade, 0)
	for _, g := range repo.db.t {
		if filter.Match(*g) {
			res = append(res, *g)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

func (repo *gradeRepository) CreateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	if err := core.Sleep(ctx, repo.latency.Write); err != nil {
		return grade.Grade{}, err
	}
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	return repo.insert(g), nil
}

func (repo *gradeRepository) insert(g grade.Grade) grade.Grade {
	repo.db.pk++
	g.ID = repo.db.pk
	repo.db.t[g.ID] = &g
	return g
}

func (repo *gradeRepository) QueryGrades(ctx context.Context, filter grade.QueryFilter) ([]grade.Grade, error) {
	if err := core.Sleep(ctx, repo.latency.Read); err != nil {
		return nil, err
	}
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(filter), nil
}

func (repo *gradeRepository) GetGradeByID(ctx context.Context, id int) (grade.Grade, error) {
	if err := core.Sleep(ctx, repo.latency.Lookup); err != nil {
		return grade.Grade{}, err
	}
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if g, ok := repo.db.t[id]; ok {
		return *g, nil
	}
	return grade.Grade{}, grade.ErrNotFound
}

func (repo *gradeRepository) UpdateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	if err := core.Sleep(ctx, repo.latency.Write); err != nil {
		return grade.Grade{}, err
	}
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.t[g.ID]; !ok {
		return grade.Grade{}, grade.ErrNotFound
	}
	repo.db.t[g.ID] = &g
	return g, nil
}

func (repo *gradeRepository) DeleteGrade(ctx context.Context, id int) (grade.Grade, error) {
	if err := core.Sleep(ctx, repo.latency.Delete); err != nil {
		return grade.Grade{}, err
	}
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	g, ok := repo.db.t[id]
	if !ok {
		return grade.Grade{}, grade.ErrNotFound
	}
	delete(repo.db.t, id)
	return *g, nil
}

func (repo *gradeRepository) SaveGrades(ctx context.Context, grades []grade.Grade) ([]grade.Grade, error) {
	if err := core.Sleep(ctx, repo.latency.Bulk); err != nil {
		return nil, err
	}
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	saved := make([]grade.Grade, 0, len(grades))
	for _, g := range grades {
		if _, ok := repo.db.t[g.ID]; ok && g.ID != 0 {
			g := g
			repo.db.t[g.ID] = &g
			saved = append(saved, g)
			continue
		}
		saved = append(saved, repo.insert(g))
	}
	return saved, nil
}
