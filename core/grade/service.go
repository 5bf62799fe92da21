package grade

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/shuleboard/core"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("grade not found")
)

type (
	Repository interface {
		CreateGrade(ctx context.Context, g Grade) (Grade, error)
		QueryGrades(ctx context.Context, filter QueryFilter) ([]Grade, error)
		GetGradeByID(ctx context.Context, id int) (Grade, error)
		UpdateGrade(ctx context.Context, g Grade) (Grade, error)
		DeleteGrade(ctx context.Context, id int) (Grade, error)
		// SaveGrades updates the given grades having an ID and creates the others, in a single write.
		SaveGrades(ctx context.Context, grades []Grade) ([]Grade, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ng NewGrade) (Grade, error) {
	g := Grade{
		StudentID:  ng.StudentID,
		Subject:    ng.Subject,
		Assessment: ng.Assessment,
		Score:      ng.Score,
		MaxScore:   ng.MaxScore,
		Weight:     ng.Weight,
		Term:       ng.Term,
		Date:       core.Today(),
	}
	g, err := svc.repo.CreateGrade(ctx, g)
	return g, errors.Wrap(err, "creating grade")
}

func (svc *Service) GetAll(ctx context.Context) ([]Grade, error) {
	return svc.repo.QueryGrades(ctx, QueryFilter{})
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Grade, error) {
	return svc.repo.QueryGrades(ctx, filter)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Grade, error) {
	return svc.repo.GetGradeByID(ctx, id)
}

func (svc *Service) GetByStudent(ctx context.Context, studentID int) ([]Grade, error) {
	return svc.repo.QueryGrades(ctx, QueryFilter{StudentID: studentID})
}

func (svc *Service) GetBySubject(ctx context.Context, subject string) ([]Grade, error) {
	return svc.repo.QueryGrades(ctx, QueryFilter{Subject: core.CleanString(subject)})
}

func (svc *Service) Update(ctx context.Context, id int, ug UpdateGrade) (Grade, error) {
	g, err := svc.repo.GetGradeByID(ctx, id)
	if err != nil {
		return Grade{}, err
	}
	g, err = svc.repo.UpdateGrade(ctx, ug.Apply(g))
	return g, errors.Wrap(err, "updating grade")
}

func (svc *Service) Delete(ctx context.Context, id int) (Grade, error) {
	return svc.repo.DeleteGrade(ctx, id)
}

// Subjects returns the subject catalogue followed by any other subject found in the grades.
func (svc *Service) Subjects(ctx context.Context) ([]string, error) {
	grades, err := svc.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(Subjects))
	subjects := make([]string, 0, len(Subjects))
	for _, s := range Subjects {
		seen[s] = struct{}{}
		subjects = append(subjects, s)
	}
	var extra []string
	for _, g := range grades {
		if _, ok := seen[g.Subject]; !ok {
			seen[g.Subject] = struct{}{}
			extra = append(extra, g.Subject)
		}
	}
	sort.Strings(extra)
	return append(subjects, extra...), nil
}

// BulkUpdate applies the grade grid scores for a term.
// A score overwrites the grade matching (student, subject, term); otherwise a new
// grade is created with the bulk defaults.
func (svc *Service) BulkUpdate(ctx context.Context, bu BulkUpdate) ([]Grade, error) {
	term := core.CleanString(bu.Term)
	if term == "" {
		return nil, core.NewMissingError("term")
	}

	scores := make(map[BulkKey]float64, len(bu.Scores))
	keys := make([]BulkKey, 0, len(bu.Scores))
	ids := make([]int, 0, len(bu.Scores))
	for k, score := range bu.Scores {
		key, err := ParseBulkKey(k)
		if err != nil {
			return nil, core.NewValidationError(err, core.FieldError{Field: "scores", Error: err.Error()})
		}
		if _, dup := scores[key]; !dup {
			keys = append(keys, key)
			ids = append(ids, key.StudentID)
		}
		scores[key] = score
	}
	// deterministic creation order
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].StudentID != keys[j].StudentID {
			return keys[i].StudentID < keys[j].StudentID
		}
		return keys[i].Subject < keys[j].Subject
	})

	existing, err := svc.repo.QueryGrades(ctx, QueryFilter{StudentIDs: ids, Term: term})
	if err != nil {
		return nil, errors.Wrap(err, "querying term grades")
	}
	byKey := make(map[BulkKey]Grade, len(existing))
	for _, g := range existing {
		k := BulkKey{StudentID: g.StudentID, Subject: g.Subject}
		if _, ok := byKey[k]; !ok {
			byKey[k] = g
		}
	}

	today := core.Today()
	batch := make([]Grade, 0, len(keys))
	for _, k := range keys {
		score := scores[k]
		if g, ok := byKey[k]; ok {
			g.Score = score
			batch = append(batch, g)
			continue
		}
		batch = append(batch, Grade{
			StudentID:  k.StudentID,
			Subject:    k.Subject,
			Assessment: DefaultAssessment,
			Score:      score,
			MaxScore:   DefaultMaxScore,
			Weight:     DefaultWeight,
			Term:       term,
			Date:       today,
		})
	}

	saved, err := svc.repo.SaveGrades(ctx, batch)
	return saved, errors.Wrap(err, "saving grades")
}
