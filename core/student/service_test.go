package student_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shuleboard/core"
	"github.com/trezcool/shuleboard/core/grade"
	"github.com/trezcool/shuleboard/core/student"
	"github.com/trezcool/shuleboard/tests"
)

func TestService_Create(t *testing.T) {
	core.NowFunc = func() time.Time { return time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC) }
	defer func() { core.NowFunc = time.Now }()

	store := testutil.NewStore(t)
	svc := student.NewService(store.Students)
	validate, _ := testutil.NewValidator()
	ctx := context.Background()

	tests := []struct {
		name    string
		ns      student.NewStudent
		wantErr bool
	}{
		{name: "missing names", ns: student.NewStudent{Grade: "9"}, wantErr: true},
		{name: "unknown grade level", ns: student.NewStudent{FirstName: "A", LastName: "B", Grade: "13"}, wantErr: true},
		{name: "bad email", ns: student.NewStudent{FirstName: "A", LastName: "B", Grade: "9", Email: "lol"}, wantErr: true},
		{name: "bad status", ns: student.NewStudent{FirstName: "A", LastName: "B", Grade: "9", Status: "Expelled"}, wantErr: true},
		{name: "valid", ns: student.NewStudent{FirstName: " Amani ", LastName: "Kabila", Grade: "9", Email: "Amani@School.TEST"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ns.Validate(validate)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			s, err := svc.Create(ctx, tt.ns)
			require.NoError(t, err)
			assert.NotZero(t, s.ID)
			assert.Equal(t, "Amani", s.FirstName)
			assert.Equal(t, "amani@school.test", s.Email)
			assert.Equal(t, student.StatusActive, s.Status)
			assert.Equal(t, core.Date("2025-01-15"), s.EnrollmentDate)
		})
	}
}

func TestService_Query(t *testing.T) {
	store := testutil.NewStore(t)
	svc := student.NewService(store.Students)
	ctx := context.Background()

	amani := testutil.CreateStudent(t, store.Students, "Amani", "Kabila", "9")
	neema := testutil.CreateStudent(t, store.Students, "Neema", "Mwangi", "12")
	baraka := testutil.CreateStudent(t, store.Students, "Baraka", "Amadi", "10", student.StatusInactive)

	ids := func(students []student.Student) []int {
		res := make([]int, 0, len(students))
		for _, s := range students {
			res = append(res, s.ID)
		}
		return res
	}

	tests := []struct {
		name      string
		filter    student.QueryFilter
		orderings []core.Ordering
		want      []int
	}{
		{name: "all", want: []int{amani.ID, neema.ID, baraka.ID}},
		{name: "search is case insensitive", filter: student.QueryFilter{Search: "AMA"}, want: []int{amani.ID, baraka.ID}},
		{name: "search on grade level", filter: student.QueryFilter{Search: "12"}, want: []int{neema.ID}},
		{name: "by grade", filter: student.QueryFilter{Grade: "10"}, want: []int{baraka.ID}},
		{name: "by status", filter: student.QueryFilter{Status: " inactive "}, want: []int{baraka.ID}},
		{name: "no match", filter: student.QueryFilter{Search: "zzz"}, want: []int{}},
		{
			name:      "ordered by grade desc",
			orderings: []core.Ordering{{Field: "grade"}},
			want:      []int{neema.ID, baraka.ID, amani.ID},
		},
		{
			name:      "ordered by last name",
			orderings: []core.Ordering{{Field: "last_name", Ascending: true}},
			want:      []int{baraka.ID, amani.ID, neema.ID},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Query(ctx, tt.filter, tt.orderings...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}

	got, err := svc.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = svc.GetByGrade(ctx, "9")
	require.NoError(t, err)
	assert.Equal(t, []int{amani.ID}, ids(got))
}

func TestService_Update(t *testing.T) {
	store := testutil.NewStore(t)
	svc := student.NewService(store.Students)
	validate, _ := testutil.NewValidator()
	ctx := context.Background()
	orig := testutil.CreateStudent(t, store.Students, "Amani", "Kabila", "9")

	uu := student.UpdateStudent{Grade: "10", Phone: "+255 700 000 001"}
	require.NoError(t, uu.Validate(orig, validate))
	s, err := svc.Update(ctx, orig.ID, uu)
	require.NoError(t, err)
	assert.Equal(t, "10", s.Grade)
	assert.Equal(t, "Amani", s.FirstName)
	assert.Equal(t, orig.EnrollmentDate, s.EnrollmentDate)

	_, err = svc.Update(ctx, 999, uu)
	assert.True(t, core.IsNotFound(err))

	bad := student.UpdateStudent{Status: "Graduated"}
	assert.Error(t, bad.Validate(orig, validate))
}

func TestService_Delete(t *testing.T) {
	store := testutil.NewStore(t)
	svc := student.NewService(store.Students)
	grades := grade.NewService(store.Grades)
	ctx := context.Background()
	s := testutil.CreateStudent(t, store.Students, "Amani", "Kabila", "9")
	g := testutil.CreateGrade(t, store.Grades, s.ID, "Art", "Term 1", 77)

	deleted, err := svc.Delete(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s, deleted)

	_, err = svc.GetByID(ctx, s.ID)
	assert.Equal(t, student.ErrNotFound, err)
	_, err = svc.Delete(ctx, s.ID)
	assert.Equal(t, student.ErrNotFound, err)

	// grades are not cascaded
	orphans, err := grades.GetByStudent(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, []grade.Grade{g}, orphans)
}
