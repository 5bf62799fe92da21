package database

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/shuleboard/core"
	"github.com/trezcool/shuleboard/core/attendance"
	"github.com/trezcool/shuleboard/core/grade"
	"github.com/trezcool/shuleboard/core/student"
	"github.com/trezcool/shuleboard/storage/database/gormdb"
	"github.com/trezcool/shuleboard/storage/database/inmemdb"
	"github.com/trezcool/shuleboard/storage/fixtures"
)

// Store gives access to the record store of the configured engine.
type Store struct {
	Students   student.Repository
	Attendance attendance.Repository
	Grades     grade.Repository

	close func() error
}

func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open opens the record store of the configured engine, then seeds it if enabled.
func Open(ctx context.Context, conf *core.Config) (*Store, error) {
	var fx fixtures.Fixtures
	if conf.Database.Seed {
		var err error
		if fx, err = fixtures.Load(); err != nil {
			return nil, errors.Wrap(err, "loading fixtures")
		}
	}

	switch conf.Database.Engine {
	case "", "inmem":
		db := inmemdb.Open(conf.Latency)
		db.Seed(fx)
		return &Store{
			Students:   inmemdb.NewStudentRepository(db),
			Attendance: inmemdb.NewAttendanceRepository(db),
			Grades:     inmemdb.NewGradeRepository(db),
		}, nil
	}

	db, err := gormdb.Open(conf)
	if err != nil {
		return nil, err
	}
	if err = db.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err = db.Seed(ctx, fx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "seeding database")
	}
	return &Store{
		Students:   gormdb.NewStudentRepository(db),
		Attendance: gormdb.NewAttendanceRepository(db),
		Grades:     gormdb.NewGradeRepository(db),
		close:      db.Close,
	}, nil
}
