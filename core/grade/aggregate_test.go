package grade

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func scores(vals ...float64) []Grade {
	grades := make([]Grade, len(vals))
	for i, v := range vals {
		grades[i] = Grade{ID: i + 1, Score: v, MaxScore: DefaultMaxScore}
	}
	return grades
}

func TestGPA(t *testing.T) {
	tests := []struct {
		name   string
		grades []Grade
		want   float64
	}{
		{name: "no grades", want: 0},
		{name: "only zeros", grades: scores(0, 0), want: 0},
		{name: "two grades", grades: scores(80, 90), want: 85},
		{name: "zeros are ignored", grades: scores(70, 0, 90), want: 80},
		{name: "single grade", grades: scores(67.5), want: 67.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, GPA(tt.grades), 0.0001)
		})
	}
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
	assert.Equal(t, Summary{Count: 3, Average: 80, Highest: 95, Lowest: 60}, Summarize(scores(85, 60, 95)))
	// zeros count in summaries
	assert.Equal(t, Summary{Count: 2, Average: 45, Highest: 90, Lowest: 0}, Summarize(scores(0, 90)))
}

func TestSubjectAverages(t *testing.T) {
	grades := []Grade{
		{Subject: "Science", Score: 70},
		{Subject: "Mathematics", Score: 80},
		{Subject: "Mathematics", Score: 100},
		{Subject: "Art", Score: 50},
	}
	got := SubjectAverages(grades)
	if assert.Len(t, got, 3) {
		assert.Equal(t, "Art", got[0].Subject)
		assert.Equal(t, "Mathematics", got[1].Subject)
		assert.Equal(t, 2, got[1].Count)
		assert.InDelta(t, 90, got[1].Average, 0.0001)
		assert.Equal(t, "Science", got[2].Subject)
	}
	assert.Empty(t, SubjectAverages(nil))
}

func TestDistribution(t *testing.T) {
	grades := append(scores(95, 90, 89.9, 80, 75, 61, 59, 0), Grade{Score: 45, MaxScore: 50})
	got := Distribution(grades)
	counts := make(map[string]int, len(got))
	for _, b := range got {
		counts[b.Label] = b.Count
	}
	assert.Equal(t, map[string]int{
		"A (90-100)": 3, // 45/50 is 90%
		"B (80-89)":  2,
		"C (70-79)":  1,
		"D (60-69)":  1,
		"F (0-59)":   2,
	}, counts)

	total := 0
	for _, b := range Distribution(nil) {
		total += b.Count
	}
	assert.Zero(t, total)
}

func TestParseBulkKey(t *testing.T) {
	tests := []struct {
		key     string
		want    BulkKey
		wantErr bool
	}{
		{key: "3-Mathematics", want: BulkKey{StudentID: 3, Subject: "Mathematics"}},
		{key: "12-Physical-Education", want: BulkKey{StudentID: 12, Subject: "Physical-Education"}},
		{key: " 4 - Art ", want: BulkKey{StudentID: 4, Subject: "Art"}},
		{key: "Mathematics", wantErr: true},
		{key: "x-Mathematics", wantErr: true},
		{key: "0-Mathematics", wantErr: true},
		{key: "3-", wantErr: true},
		{key: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := ParseBulkKey(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			if assert.NoError(t, err) {
				assert.Equal(t, tt.want, got)
			}
		})
	}
	assert.Equal(t, "3-Mathematics", BulkKey{StudentID: 3, Subject: "Mathematics"}.String())
}

func TestQueryFilter_Match(t *testing.T) {
	g := Grade{StudentID: 3, Subject: "Art", Term: "Term 1"}
	tests := []struct {
		name   string
		filter QueryFilter
		want   bool
	}{
		{name: "empty", want: true},
		{name: "student", filter: QueryFilter{StudentID: 3}, want: true},
		{name: "other student", filter: QueryFilter{StudentID: 4}},
		{name: "student set", filter: QueryFilter{StudentIDs: []int{1, 3}}, want: true},
		{name: "empty student set", filter: QueryFilter{StudentIDs: []int{}}},
		{name: "subject and term", filter: QueryFilter{Subject: "Art", Term: "Term 1"}, want: true},
		{name: "other term", filter: QueryFilter{Subject: "Art", Term: "Term 2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(g))
		})
	}
}
