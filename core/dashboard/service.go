package dashboard

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/shuleboard/core"
	"github.com/trezcool/shuleboard/core/attendance"
	"github.com/trezcool/shuleboard/core/grade"
	"github.com/trezcool/shuleboard/core/student"
)

type (
	Stats struct {
		Date            core.Date               `json:"date"`
		TotalStudents   int                     `json:"total_students"`
		ActiveStudents  int                     `json:"active_students"`
		Attendance      attendance.Stats        `json:"attendance"`
		AttendanceRate  float64                 `json:"attendance_rate"`
		AverageGrade    float64                 `json:"average_grade"`
		Weekly          []attendance.DaySummary `json:"weekly_attendance"`
		GradeBreakdown  []grade.Band            `json:"grade_distribution"`
		SubjectAverages []grade.SubjectSummary  `json:"subject_averages"`
	}

	// Profile is a student with their academic standing.
	Profile struct {
		Student         student.Student        `json:"student"`
		GPA             float64                `json:"gpa"`
		AttendanceRate  float64                `json:"attendance_rate"`
		Attendance      attendance.Stats       `json:"attendance"`
		SubjectAverages []grade.SubjectSummary `json:"subject_averages"`
		RecentGrades    []grade.Grade          `json:"recent_grades"`
	}

	Students interface {
		QueryAll(ctx context.Context) ([]student.Student, error)
		GetByID(ctx context.Context, id int) (student.Student, error)
	}

	Grades interface {
		GetAll(ctx context.Context) ([]grade.Grade, error)
		GetByStudent(ctx context.Context, studentID int) ([]grade.Grade, error)
	}

	Attendance interface {
		GetByStudent(ctx context.Context, studentID int) ([]attendance.Record, error)
		Stats(ctx context.Context, date core.Date) (attendance.Stats, error)
		Weekly(ctx context.Context, from core.Date) ([]attendance.DaySummary, error)
	}

	Service struct {
		students   Students
		grades     Grades
		attendance Attendance
	}
)

const recentGrades = 5

func NewService(students Students, grades Grades, att Attendance) *Service {
	return &Service{students: students, grades: grades, attendance: att}
}

// Stats computes the headline statistics for `date`. The weekly summary covers date's week.
func (svc *Service) Stats(ctx context.Context, date core.Date) (Stats, error) {
	students, err := svc.students.QueryAll(ctx)
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying students")
	}
	grades, err := svc.grades.GetAll(ctx)
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying grades")
	}
	att, err := svc.attendance.Stats(ctx, date)
	if err != nil {
		return Stats{}, errors.Wrap(err, "computing attendance stats")
	}
	weekly, err := svc.attendance.Weekly(ctx, weekStart(date))
	if err != nil {
		return Stats{}, errors.Wrap(err, "computing weekly attendance")
	}

	st := Stats{
		Date:            date,
		TotalStudents:   len(students),
		Attendance:      att,
		AttendanceRate:  core.Round(att.Rate(), 1),
		AverageGrade:    core.Round(grade.Summarize(grades).Average, 1),
		Weekly:          weekly,
		GradeBreakdown:  grade.Distribution(grades),
		SubjectAverages: grade.SubjectAverages(grades),
	}
	for _, s := range students {
		if s.IsActive() {
			st.ActiveStudents++
		}
	}
	return st, nil
}

func (svc *Service) Profile(ctx context.Context, studentID int) (Profile, error) {
	s, err := svc.students.GetByID(ctx, studentID)
	if err != nil {
		return Profile{}, err
	}
	grades, err := svc.grades.GetByStudent(ctx, studentID)
	if err != nil {
		return Profile{}, errors.Wrap(err, "querying student grades")
	}
	records, err := svc.attendance.GetByStudent(ctx, studentID)
	if err != nil {
		return Profile{}, errors.Wrap(err, "querying student attendance")
	}

	recent := make([]grade.Grade, len(grades))
	copy(recent, grades)
	sortByDateDesc(recent)
	if len(recent) > recentGrades {
		recent = recent[:recentGrades]
	}

	return Profile{
		Student:         s,
		GPA:             core.Round(grade.GPA(grades), 2),
		AttendanceRate:  core.Round(attendance.Rate(records), 1),
		Attendance:      attendance.Tally(records),
		SubjectAverages: grade.SubjectAverages(grades),
		RecentGrades:    recent,
	}, nil
}

// weekStart returns the monday of date's week.
func weekStart(date core.Date) core.Date {
	wd := int(date.Time().Weekday())
	if wd == int(time.Sunday) {
		wd = 7
	}
	return date.AddDays(1 - wd)
}

func sortByDateDesc(grades []grade.Grade) {
	sort.SliceStable(grades, func(i, j int) bool {
		if grades[i].Date != grades[j].Date {
			return grades[i].Date > grades[j].Date
		}
		return grades[i].ID > grades[j].ID
	})
}
