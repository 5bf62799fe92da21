package gormdb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/trezcool/shuleboard/core"
	"github.com/trezcool/shuleboard/core/attendance"
	"github.com/trezcool/shuleboard/core/grade"
	"github.com/trezcool/shuleboard/core/student"
	"github.com/trezcool/shuleboard/storage/fixtures"
)

// DB is the relational record store.
type DB struct {
	*gorm.DB
	latency core.LatencyConfig
}

func Open(conf *core.Config) (*DB, error) {
	var dialector gorm.Dialector
	switch conf.Database.Engine {
	case "sqlite":
		dialector = sqlite.Open(conf.Database.DSN)
	case "postgres":
		dialector = postgres.Open(conf.Database.DSN)
	default:
		return nil, errors.Errorf("unsupported database engine %q", conf.Database.Engine)
	}

	logLevel := gormlogger.Silent
	if conf.Debug && !conf.TestMode {
		logLevel = gormlogger.Warn
	}
	gdb, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(logLevel)})
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	db := &DB{DB: gdb, latency: conf.Latency}
	if err = db.ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func (db *DB) ping() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return errors.Wrap(err, "getting sql.DB")
	}
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = sqlDB.Ping(); err == nil {
			return nil
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}
	return errors.Wrap(err, "DB ping timeout")
}

func (db *DB) Migrate() error {
	err := db.AutoMigrate(&student.Student{}, &attendance.Record{}, &grade.Grade{})
	return errors.Wrap(err, "migrating database")
}

// Seed loads the fixtures into empty tables. Tables already holding rows are left as is.
func (db *DB) Seed(ctx context.Context, fx fixtures.Fixtures) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := seed(tx, fx.Students); err != nil {
			return errors.Wrap(err, "seeding students")
		}
		if err := seed(tx, fx.Attendance); err != nil {
			return errors.Wrap(err, "seeding attendance")
		}
		if err := seed(tx, fx.Grades); err != nil {
			return errors.Wrap(err, "seeding grades")
		}
		if tx.Dialector.Name() == "postgres" {
			// seeded rows carry their IDs, move the sequences past them
			for _, table := range []string{"students", "attendance_records", "grades"} {
				q := "SELECT setval(pg_get_serial_sequence(?, 'id'), COALESCE((SELECT MAX(id) FROM " + table + "), 1))"
				if err := tx.Exec(q, table).Error; err != nil {
					return errors.Wrapf(err, "resetting %s sequence", table)
				}
			}
		}
		return nil
	})
}

func seed[T any](tx *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	var count int64
	if err := tx.Model(new(T)).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return tx.CreateInBatches(rows, 100).Error
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return errors.Wrap(err, "getting sql.DB")
	}
	return sqlDB.Close()
}

// notFound maps gorm's missing row error to `err`.
func notFound(res *gorm.DB, err error) error {
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return err
	}
	return res.Error
}
