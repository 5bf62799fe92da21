package grade_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shuleboard/core"
	"github.com/trezcool/shuleboard/core/grade"
	"github.com/trezcool/shuleboard/tests"
)

func setup(t *testing.T) (*grade.Service, grade.Repository) {
	core.NowFunc = func() time.Time { return time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC) }
	t.Cleanup(func() { core.NowFunc = time.Now })

	store := testutil.NewStore(t)
	return grade.NewService(store.Grades), store.Grades
}

func TestService_BulkUpdate(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	existing := testutil.CreateGrade(t, repo, 1, "Mathematics", "Term 1", 70)
	otherTerm := testutil.CreateGrade(t, repo, 3, "Mathematics", "Term 2", 60)

	t.Run("creates missing grades with defaults", func(t *testing.T) {
		saved, err := svc.BulkUpdate(ctx, grade.BulkUpdate{
			Term:   "Term 1",
			Scores: map[string]float64{"3-Mathematics": 92},
		})
		require.NoError(t, err)
		require.Len(t, saved, 1)

		g := saved[0]
		assert.NotZero(t, g.ID)
		assert.Equal(t, 3, g.StudentID)
		assert.Equal(t, "Mathematics", g.Subject)
		assert.Equal(t, "Term 1", g.Term)
		assert.Equal(t, 92.0, g.Score)
		assert.Equal(t, float64(grade.DefaultMaxScore), g.MaxScore)
		assert.Equal(t, grade.DefaultWeight, g.Weight)
		assert.Equal(t, grade.DefaultAssessment, g.Assessment)
		assert.Equal(t, core.Date("2025-01-15"), g.Date)

		// the other term is untouched
		got, err := svc.GetByID(ctx, otherTerm.ID)
		require.NoError(t, err)
		assert.Equal(t, 60.0, got.Score)
	})

	t.Run("overwrites matching grades", func(t *testing.T) {
		saved, err := svc.BulkUpdate(ctx, grade.BulkUpdate{
			Term:   "Term 1",
			Scores: map[string]float64{"1-Mathematics": 88, "1-Art": 75},
		})
		require.NoError(t, err)
		require.Len(t, saved, 2)
		// ordered by student then subject
		assert.Equal(t, "Art", saved[0].Subject)
		assert.Equal(t, existing.ID, saved[1].ID)
		assert.Equal(t, 88.0, saved[1].Score)
		assert.Equal(t, existing.Assessment, saved[1].Assessment)

		grades, err := svc.Query(ctx, grade.QueryFilter{StudentID: 1, Subject: "Mathematics", Term: "Term 1"})
		require.NoError(t, err)
		if assert.Len(t, grades, 1) {
			assert.Equal(t, 88.0, grades[0].Score)
		}
	})

	errTests := []struct {
		name string
		bu   grade.BulkUpdate
	}{
		{name: "blank term", bu: grade.BulkUpdate{Term: "  ", Scores: map[string]float64{"1-Art": 50}}},
		{name: "malformed key", bu: grade.BulkUpdate{Term: "Term 1", Scores: map[string]float64{"Art": 50}}},
		{name: "non-numeric student", bu: grade.BulkUpdate{Term: "Term 1", Scores: map[string]float64{"abc-Art": 50}}},
	}
	for _, tt := range errTests {
		t.Run(tt.name, func(t *testing.T) {
			before, err := svc.GetAll(ctx)
			require.NoError(t, err)

			_, err = svc.BulkUpdate(ctx, tt.bu)
			assert.True(t, core.IsValidation(err), "err = %v", err)

			after, err := svc.GetAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

func TestBulkUpdate_Validate(t *testing.T) {
	validate, _ := testutil.NewValidator()
	tests := []struct {
		name    string
		bu      grade.BulkUpdate
		wantErr bool
	}{
		{name: "valid", bu: grade.BulkUpdate{Term: " Term 1 ", Scores: map[string]float64{"1-Art": 50}}},
		{name: "no scores", bu: grade.BulkUpdate{Term: "Term 1"}, wantErr: true},
		{name: "no term", bu: grade.BulkUpdate{Scores: map[string]float64{"1-Art": 50}}, wantErr: true},
		{name: "bad key", bu: grade.BulkUpdate{Term: "Term 1", Scores: map[string]float64{"1": 50}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bu.Validate(validate)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_CRUD(t *testing.T) {
	svc, _ := setup(t)
	validate, _ := testutil.NewValidator()
	ctx := context.Background()

	ng := grade.NewGrade{StudentID: 2, Subject: " Science ", Assessment: "Quiz", Score: 18, MaxScore: 20, Term: "Term 2"}
	require.NoError(t, ng.Validate(validate))
	g, err := svc.Create(ctx, ng)
	require.NoError(t, err)
	assert.Equal(t, "Science", g.Subject)
	assert.Equal(t, grade.DefaultWeight, g.Weight)
	assert.InDelta(t, 90, g.Percent(), 0.0001)

	score := 15.0
	ug := grade.UpdateGrade{Score: &score}
	require.NoError(t, ug.Validate(validate))
	g, err = svc.Update(ctx, g.ID, ug)
	require.NoError(t, err)
	assert.Equal(t, 15.0, g.Score)
	assert.Equal(t, "Quiz", g.Assessment)

	_, err = svc.Update(ctx, 999, ug)
	assert.True(t, core.IsNotFound(err))

	bySubject, err := svc.GetBySubject(ctx, "science")
	require.NoError(t, err)
	assert.Empty(t, bySubject, "subjects are matched exactly")

	subjects, err := svc.Subjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, grade.Subjects, subjects)

	_, err = svc.Create(ctx, grade.NewGrade{StudentID: 2, Subject: "Music", Assessment: "Recital", Score: 80, MaxScore: 100, Weight: 1, Term: "Term 2"})
	require.NoError(t, err)
	subjects, err = svc.Subjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Music", subjects[len(subjects)-1])

	deleted, err := svc.Delete(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.ID, deleted.ID)
	_, err = svc.GetByID(ctx, g.ID)
	assert.True(t, core.IsNotFound(err))
}
