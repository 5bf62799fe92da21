package inmemdb

import (
	"sync"

	"github.com/trezcool/shuleboard/core"
	"github.com/trezcool/shuleboard/core/attendance"
	"github.com/trezcool/shuleboard/core/grade"
	"github.com/trezcool/shuleboard/core/student"
	"github.com/trezcool/shuleboard/storage/fixtures"
)

type (
	// DB is the in-memory record store. Every table has its own lock and primary key counter.
	DB struct {
		latency    core.LatencyConfig
		student    *studentTable
		attendance *attendanceTable
		grade      *gradeTable
	}

	studentTable struct {
		t     map[int]*student.Student
		pk    int
		mutex sync.RWMutex
	}

	attendanceTable struct {
		t     map[int]*attendance.Record
		pk    int
		byDay map[dayKey]int // (student, date) -> record ID
		mutex sync.RWMutex
	}

	gradeTable struct {
		t     map[int]*grade.Grade
		pk    int
		mutex sync.RWMutex
	}

	dayKey struct {
		studentID int
		date      core.Date
	}
)

func Open(latency core.LatencyConfig) *DB {
	return &DB{
		latency:    latency,
		student:    &studentTable{t: make(map[int]*student.Student)},
		attendance: &attendanceTable{t: make(map[int]*attendance.Record), byDay: make(map[dayKey]int)},
		grade:      &gradeTable{t: make(map[int]*grade.Grade)},
	}
}

// Seed loads the fixtures into the tables. Counters resume after the highest seeded ID.
func (db *DB) Seed(fx fixtures.Fixtures) {
	db.student.mutex.Lock()
	for i := range fx.Students {
		s := fx.Students[i]
		db.student.t[s.ID] = &s
		if s.ID > db.student.pk {
			db.student.pk = s.ID
		}
	}
	db.student.mutex.Unlock()

	db.attendance.mutex.Lock()
	for i := range fx.Attendance {
		r := fx.Attendance[i]
		db.attendance.t[r.ID] = &r
		db.attendance.byDay[dayKey{r.StudentID, r.Date}] = r.ID
		if r.ID > db.attendance.pk {
			db.attendance.pk = r.ID
		}
	}
	db.attendance.mutex.Unlock()

	db.grade.mutex.Lock()
	for i := range fx.Grades {
		g := fx.Grades[i]
		db.grade.t[g.ID] = &g
		if g.ID > db.grade.pk {
			db.grade.pk = g.ID
		}
	}
	db.grade.mutex.Unlock()
}
