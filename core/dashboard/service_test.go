package dashboard_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shuleboard/core"
	"github.com/trezcool/shuleboard/core/attendance"
	"github.com/trezcool/shuleboard/core/dashboard"
	"github.com/trezcool/shuleboard/core/grade"
	"github.com/trezcool/shuleboard/core/student"
	"github.com/trezcool/shuleboard/tests"
)

func TestService(t *testing.T) {
	store := testutil.NewStore(t)
	logger := testutil.NewLogger()
	students := student.NewService(store.Students)
	att := attendance.NewService(store.Attendance, students, logger)
	svc := dashboard.NewService(students, grade.NewService(store.Grades), att)
	ctx := context.Background()

	amani := testutil.CreateStudent(t, store.Students, "Amani", "Kabila", "9")
	neema := testutil.CreateStudent(t, store.Students, "Neema", "Mwangi", "9")
	testutil.CreateStudent(t, store.Students, "Baraka", "Otieno", "10", student.StatusInactive)

	for i, score := range []float64{60, 70, 80, 90, 100, 0} {
		testutil.CreateGrade(t, store.Grades, amani.ID, grade.Subjects[i], "Term 1", score, core.Date("2025-01-10").AddDays(i))
	}
	testutil.CreateGrade(t, store.Grades, neema.ID, "Mathematics", "Term 1", 85)

	testutil.CreateRecord(t, store.Attendance, amani.ID, "2025-01-13", attendance.StatusPresent)
	testutil.CreateRecord(t, store.Attendance, amani.ID, "2025-01-15", attendance.StatusAbsent)
	testutil.CreateRecord(t, store.Attendance, neema.ID, "2025-01-15", attendance.StatusPresent)
	testutil.CreateRecord(t, store.Attendance, neema.ID, "2025-01-16", attendance.StatusLate)

	t.Run("stats", func(t *testing.T) {
		st, err := svc.Stats(ctx, "2025-01-15") // wednesday
		require.NoError(t, err)

		assert.Equal(t, 3, st.TotalStudents)
		assert.Equal(t, 2, st.ActiveStudents)
		assert.Equal(t, attendance.Stats{Present: 1, Absent: 1, Total: 2}, st.Attendance)
		assert.Equal(t, 50.0, st.AttendanceRate)
		assert.Equal(t, 69.3, st.AverageGrade) // 485 / 7
		if assert.Len(t, st.Weekly, 5) {
			assert.Equal(t, core.Date("2025-01-13"), st.Weekly[0].Date)
			assert.Equal(t, 1, st.Weekly[0].Present)
			assert.Equal(t, 1, st.Weekly[3].Late)
		}
		assert.Len(t, st.GradeBreakdown, 5)
		assert.Len(t, st.SubjectAverages, 6)
	})

	t.Run("profile", func(t *testing.T) {
		p, err := svc.Profile(ctx, amani.ID)
		require.NoError(t, err)

		assert.Equal(t, amani, p.Student)
		assert.Equal(t, 80.0, p.GPA) // the 0 is ignored
		assert.Equal(t, 50.0, p.AttendanceRate)
		assert.Equal(t, attendance.Stats{Present: 1, Absent: 1, Total: 2}, p.Attendance)
		if assert.Len(t, p.RecentGrades, 5) {
			assert.Equal(t, core.Date("2025-01-15"), p.RecentGrades[0].Date)
			assert.Equal(t, core.Date("2025-01-11"), p.RecentGrades[4].Date)
		}

		_, err = svc.Profile(ctx, 999)
		assert.True(t, core.IsNotFound(err))
	})
}
