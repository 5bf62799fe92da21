package report

import (
	"fmt"
	"time"

	"github.com/trezcool/shuleboard/core"
	"github.com/trezcool/shuleboard/core/attendance"
	"github.com/trezcool/shuleboard/core/grade"
	"github.com/trezcool/shuleboard/core/student"
)

// Report types
const (
	TypeStudent    = "student"
	TypeClass      = "class"
	TypeSubject    = "subject"
	TypeAttendance = "attendance"
)

var Types = []string{TypeStudent, TypeClass, TypeSubject, TypeAttendance}

const dateText = "date must be formatted as YYYY-MM-DD"

// Params selects what a report covers. Only the selectors of the report Type are used.
type Params struct {
	Type       string    `json:"type" query:"type"`
	StudentID  int       `json:"student_id,omitempty" query:"student_id"`
	GradeLevel string    `json:"grade_level,omitempty" query:"grade_level"`
	Subject    string    `json:"subject,omitempty" query:"subject"`
	StartDate  core.Date `json:"start_date,omitempty" query:"start_date"`
	EndDate    core.Date `json:"end_date,omitempty" query:"end_date"`
}

func (p *Params) Clean() {
	p.Type = core.CleanString(p.Type, true /* lower */)
	p.GradeLevel = core.CleanString(p.GradeLevel)
	p.Subject = core.CleanString(p.Subject)
	p.StartDate = core.Date(core.CleanString(string(p.StartDate)))
	p.EndDate = core.Date(core.CleanString(string(p.EndDate)))
}

// Check reports the first missing selector of the report type.
func (p Params) Check() error {
	switch p.Type {
	case "":
		return core.NewMissingError("type")
	case TypeStudent:
		if p.StudentID <= 0 {
			return core.NewMissingError("student_id")
		}
	case TypeClass:
		if p.GradeLevel == "" {
			return core.NewMissingError("grade_level")
		}
	case TypeSubject:
		if p.Subject == "" {
			return core.NewMissingError("subject")
		}
	case TypeAttendance:
		if p.StartDate.IsZero() {
			return core.NewMissingError("start_date")
		}
		if p.EndDate.IsZero() {
			return core.NewMissingError("end_date")
		}
		if _, err := core.ParseDate(string(p.StartDate)); err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "start_date", Error: dateText})
		}
		if _, err := core.ParseDate(string(p.EndDate)); err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "end_date", Error: dateText})
		}
		if p.EndDate < p.StartDate {
			return core.NewValidationError(
				fmt.Errorf("end date %s is before start date %s", p.EndDate, p.StartDate),
				core.FieldError{Field: "end_date", Error: "end date cannot be before start date"},
			)
		}
	default:
		return core.NewValidationError(
			fmt.Errorf("unknown report type %q", p.Type),
			core.FieldError{Field: "type", Error: fmt.Sprintf("type must be one of %v", Types)},
		)
	}
	return nil
}

type (
	StudentStats struct {
		AverageGrade   float64 `json:"average_grade"`
		TotalGrades    int     `json:"total_grades"`
		AttendanceRate float64 `json:"attendance_rate"`
	}

	// GroupStats summarizes the grades of a class or a subject.
	GroupStats struct {
		TotalStudents int     `json:"total_students"`
		AverageGrade  float64 `json:"average_grade"`
		HighestGrade  float64 `json:"highest_grade"`
		LowestGrade   float64 `json:"lowest_grade"`
	}

	AttendanceStats struct {
		TotalRecords int `json:"total_records"`
		PresentCount int `json:"present_count"`
		AbsentCount  int `json:"absent_count"`
		LateCount    int `json:"late_count"`
		ExcusedCount int `json:"excused_count"`
	}
)

// StudentLine is a student row of a class or subject report.
type StudentLine struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Grade        string  `json:"grade"`
	Status       string  `json:"status"`
	GradeCount   int     `json:"grade_count"`
	AverageGrade float64 `json:"average_grade"`
}

// AttendanceLine is a record row of an attendance report.
type AttendanceLine struct {
	attendance.Record
	StudentName string `json:"student_name"`
}

type Report struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	GeneratedAt time.Time `json:"generated_at"`
	Params      Params    `json:"parameters"`

	Student    *student.Student `json:"student,omitempty"`
	Students   []StudentLine    `json:"students,omitempty"`
	Grades     []grade.Grade    `json:"grades,omitempty"`
	Attendance []AttendanceLine `json:"attendance,omitempty"`

	// Stats is one of StudentStats, GroupStats or AttendanceStats.
	Stats interface{} `json:"stats"`
}

// HistoryEntry is the lightweight trace kept for every generated report.
type HistoryEntry struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	GeneratedAt time.Time `json:"generated_at"`
	Params      Params    `json:"parameters"`
}

// clone returns a copy of `r` sharing no slice or pointer with it.
func (r Report) clone() Report {
	if r.Student != nil {
		s := *r.Student
		r.Student = &s
	}
	if r.Students != nil {
		r.Students = append([]StudentLine(nil), r.Students...)
	}
	if r.Grades != nil {
		r.Grades = append([]grade.Grade(nil), r.Grades...)
	}
	if r.Attendance != nil {
		r.Attendance = append([]AttendanceLine(nil), r.Attendance...)
	}
	return r
}

func (r Report) HistoryEntry() HistoryEntry {
	return HistoryEntry{ID: r.ID, Type: r.Type, Title: r.Title, GeneratedAt: r.GeneratedAt, Params: r.Params}
}

// State of the report Generator.
type State string

const (
	StateIdle       State = "idle"
	StateGenerating State = "generating"
	StateReady      State = "ready"
	StateFailed     State = "failed"
)
