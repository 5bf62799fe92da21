package report

import (
	"github.com/trezcool/shuleboard/core"
	"github.com/trezcool/shuleboard/core/attendance"
	"github.com/trezcool/shuleboard/core/grade"
	"github.com/trezcool/shuleboard/core/student"
)

// averages are reported with one decimal
const precision = 1

// ComposeStudent pairs a student with their grades & attendance.
func ComposeStudent(s student.Student, grades []grade.Grade, records []attendance.Record) Report {
	lines := make([]AttendanceLine, 0, len(records))
	for _, r := range records {
		lines = append(lines, AttendanceLine{Record: r, StudentName: s.FullName()})
	}
	sum := grade.Summarize(grades)
	return Report{
		Type:       TypeStudent,
		Title:      "Student Report - " + s.FullName(),
		Params:     Params{Type: TypeStudent, StudentID: s.ID},
		Student:    &s,
		Grades:     grades,
		Attendance: lines,
		Stats: StudentStats{
			AverageGrade:   core.Round(sum.Average, precision),
			TotalGrades:    sum.Count,
			AttendanceRate: core.Round(attendance.Rate(records), precision),
		},
	}
}

// ComposeClass summarizes the grades of every student in the grade level.
// `grades` may hold grades of other students, they are ignored.
func ComposeClass(level string, students []student.Student, grades []grade.Grade) Report {
	members := make([]student.Student, 0, len(students))
	for _, s := range students {
		if s.Grade == level {
			members = append(members, s)
		}
	}
	classGrades := grade.Filter(grades, grade.QueryFilter{StudentIDs: studentIDs(members)})
	return Report{
		Type:     TypeClass,
		Title:    "Class Report - Grade " + level,
		Params:   Params{Type: TypeClass, GradeLevel: level},
		Students: studentLines(members, classGrades),
		Grades:   classGrades,
		Stats:    groupStats(len(members), classGrades),
	}
}

// ComposeSubject summarizes the grades of a subject. Its students are the ones graded in it.
func ComposeSubject(subject string, students []student.Student, grades []grade.Grade) Report {
	subjectGrades := grade.Filter(grades, grade.QueryFilter{Subject: subject})
	graded := make(map[int]struct{}, len(subjectGrades))
	for _, g := range subjectGrades {
		graded[g.StudentID] = struct{}{}
	}
	members := make([]student.Student, 0, len(graded))
	for _, s := range students {
		if _, ok := graded[s.ID]; ok {
			members = append(members, s)
		}
	}
	return Report{
		Type:     TypeSubject,
		Title:    "Subject Report - " + subject,
		Params:   Params{Type: TypeSubject, Subject: subject},
		Students: studentLines(members, subjectGrades),
		Grades:   subjectGrades,
		Stats:    groupStats(len(members), subjectGrades),
	}
}

// ComposeAttendance tallies the records dated within [from, to].
func ComposeAttendance(from, to core.Date, students []student.Student, records []attendance.Record) Report {
	names := make(map[int]string, len(students))
	for _, s := range students {
		names[s.ID] = s.FullName()
	}
	inRange := attendance.FilterRange(records, from, to)
	lines := make([]AttendanceLine, 0, len(inRange))
	for _, r := range inRange {
		lines = append(lines, AttendanceLine{Record: r, StudentName: names[r.StudentID]})
	}
	st := attendance.Tally(inRange)
	return Report{
		Type:       TypeAttendance,
		Title:      "Attendance Report - " + from.String() + " to " + to.String(),
		Params:     Params{Type: TypeAttendance, StartDate: from, EndDate: to},
		Attendance: lines,
		Stats: AttendanceStats{
			TotalRecords: st.Total,
			PresentCount: st.Present,
			AbsentCount:  st.Absent,
			LateCount:    st.Late,
			ExcusedCount: st.Excused,
		},
	}
}

func groupStats(totalStudents int, grades []grade.Grade) GroupStats {
	sum := grade.Summarize(grades)
	return GroupStats{
		TotalStudents: totalStudents,
		AverageGrade:  core.Round(sum.Average, precision),
		HighestGrade:  sum.Highest,
		LowestGrade:   sum.Lowest,
	}
}

func studentLines(students []student.Student, grades []grade.Grade) []StudentLine {
	byStudent := make(map[int][]grade.Grade)
	for _, g := range grades {
		byStudent[g.StudentID] = append(byStudent[g.StudentID], g)
	}
	lines := make([]StudentLine, 0, len(students))
	for _, s := range students {
		sum := grade.Summarize(byStudent[s.ID])
		lines = append(lines, StudentLine{
			ID:           s.ID,
			Name:         s.FullName(),
			Grade:        s.Grade,
			Status:       s.Status,
			GradeCount:   sum.Count,
			AverageGrade: core.Round(sum.Average, precision),
		})
	}
	return lines
}

func studentIDs(students []student.Student) []int {
	ids := make([]int, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}
	return ids
}
