package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shuleboard/core"
)

// Statuses
const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
	StatusLate    = "Late"
	StatusExcused = "Excused"

	// StatusNotMarked is only synthesized for display, it is never persisted.
	StatusNotMarked = "Not Marked"

	DefaultMarkedBy = "Teacher"
)

var Statuses = []string{StatusPresent, StatusAbsent, StatusLate, StatusExcused}

// Record is a persisted attendance mark. There is at most one Record per (StudentID, Date).
type Record struct {
	ID        int       `json:"id" gorm:"primaryKey"`
	StudentID int       `json:"student_id" gorm:"uniqueIndex:idx_attendance_student_date"`
	Date      core.Date `json:"date" gorm:"uniqueIndex:idx_attendance_student_date"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason"`
	MarkedBy  string    `json:"marked_by"`
	Timestamp time.Time `json:"timestamp"`
}

func (Record) TableName() string { return "attendance_records" }

// DailyEntry is one student's attendance for a given day.
type DailyEntry struct {
	StudentID   int        `json:"student_id"`
	StudentName string     `json:"student_name"`
	Grade       string     `json:"grade"`
	Status      string     `json:"status"`
	Reason      string     `json:"reason"`
	Timestamp   *time.Time `json:"timestamp"`
}

func (e DailyEntry) IsMarked() bool {
	return e.Status != StatusNotMarked
}

type Stats struct {
	Present   int `json:"present"`
	Absent    int `json:"absent"`
	Late      int `json:"late"`
	Excused   int `json:"excused"`
	NotMarked int `json:"not_marked,omitempty"`
	Total     int `json:"total"`
}

// Rate is the percentage of Present over Total, 0 when there is nothing to count.
func (s Stats) Rate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Present) / float64(s.Total) * 100
}

type DaySummary struct {
	Date    core.Date `json:"date"`
	Present int       `json:"present"`
	Absent  int       `json:"absent"`
	Late    int       `json:"late"`
	Excused int       `json:"excused"`
}

type QueryFilter struct {
	StudentID int       `json:"student_id" query:"student_id" validate:"gte=0"`
	Date      core.Date `json:"date" query:"date" validate:"omitempty,isodate"`
	From      core.Date `json:"from" query:"from" validate:"omitempty,isodate"`
	To        core.Date `json:"to" query:"to" validate:"omitempty,isodate"`
	Status    string    `json:"status" query:"status" validate:"omitempty,attstatus"`
}

func (qf *QueryFilter) Validate(validate *validator.Validate) error {
	qf.Date = core.Date(core.CleanString(string(qf.Date)))
	qf.From = core.Date(core.CleanString(string(qf.From)))
	qf.To = core.Date(core.CleanString(string(qf.To)))
	qf.Status = core.CleanString(qf.Status)
	return validate.Struct(qf)
}

func (qf QueryFilter) Match(r Record) bool {
	if qf.StudentID != 0 && r.StudentID != qf.StudentID {
		return false
	}
	if qf.Date != "" && r.Date != qf.Date {
		return false
	}
	if qf.From != "" && r.Date < qf.From {
		return false
	}
	if qf.To != "" && r.Date > qf.To {
		return false
	}
	if qf.Status != "" && r.Status != qf.Status {
		return false
	}
	return true
}

// MarkRequest contains the information needed to mark a student for today.
type MarkRequest struct {
	StudentID int    `json:"student_id" validate:"required,gt=0"`
	Status    string `json:"status" validate:"required,attstatus"`
	Reason    string `json:"reason"`
}

func (mr *MarkRequest) Validate(validate *validator.Validate) error {
	mr.Status = core.CleanString(mr.Status)
	mr.Reason = core.CleanString(mr.Reason)
	return validate.Struct(mr)
}
