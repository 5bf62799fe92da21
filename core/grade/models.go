package grade

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shuleboard/core"
)

// defaults for grades created by a bulk update
const (
	DefaultAssessment = "Test"
	DefaultMaxScore   = 100
	DefaultWeight     = 1.0
)

var (
	Subjects = []string{"Mathematics", "English", "Science", "History", "Geography", "Art"}
	Terms    = []string{"Term 1", "Term 2", "Term 3"}
)

type Grade struct {
	ID         int       `json:"id" gorm:"primaryKey"`
	StudentID  int       `json:"student_id" gorm:"index"`
	Subject    string    `json:"subject" gorm:"index"`
	Assessment string    `json:"assessment"`
	Score      float64   `json:"score"`
	MaxScore   float64   `json:"max_score"`
	Weight     float64   `json:"weight"`
	Term       string    `json:"term"`
	Date       core.Date `json:"date"`
}

// Percent is the score as a percentage of MaxScore (Score itself when MaxScore is unset).
func (g Grade) Percent() float64 {
	if g.MaxScore <= 0 {
		return g.Score
	}
	return g.Score / g.MaxScore * 100
}

// NewGrade contains information needed to record a Grade.
type NewGrade struct {
	StudentID  int     `json:"student_id" validate:"required,gt=0"`
	Subject    string  `json:"subject" validate:"required,notblank"`
	Assessment string  `json:"assessment" validate:"required,notblank"`
	Score      float64 `json:"score" validate:"gte=0"`
	MaxScore   float64 `json:"max_score" validate:"gte=0"`
	Weight     float64 `json:"weight" validate:"gte=0"`
	Term       string  `json:"term" validate:"required,notblank"`
}

func (ng *NewGrade) Validate(validate *validator.Validate) error {
	ng.Subject = core.CleanString(ng.Subject)
	ng.Assessment = core.CleanString(ng.Assessment)
	ng.Term = core.CleanString(ng.Term)
	if ng.MaxScore == 0 {
		ng.MaxScore = DefaultMaxScore
	}
	if ng.Weight == 0 {
		ng.Weight = DefaultWeight
	}
	return validate.Struct(ng)
}

// UpdateGrade defines what may be changed on an existing Grade. Nil fields are kept.
type UpdateGrade struct {
	Subject    *string  `json:"subject" validate:"omitempty,notblank"`
	Assessment *string  `json:"assessment" validate:"omitempty,notblank"`
	Score      *float64 `json:"score" validate:"omitempty,gte=0"`
	MaxScore   *float64 `json:"max_score" validate:"omitempty,gt=0"`
	Weight     *float64 `json:"weight" validate:"omitempty,gte=0"`
	Term       *string  `json:"term" validate:"omitempty,notblank"`
}

func (ug UpdateGrade) Validate(validate *validator.Validate) error {
	return validate.Struct(ug)
}

// Apply merges the set fields into `g`.
func (ug UpdateGrade) Apply(g Grade) Grade {
	if ug.Subject != nil {
		g.Subject = core.CleanString(*ug.Subject)
	}
	if ug.Assessment != nil {
		g.Assessment = core.CleanString(*ug.Assessment)
	}
	if ug.Score != nil {
		g.Score = *ug.Score
	}
	if ug.MaxScore != nil {
		g.MaxScore = *ug.MaxScore
	}
	if ug.Weight != nil {
		g.Weight = *ug.Weight
	}
	if ug.Term != nil {
		g.Term = core.CleanString(*ug.Term)
	}
	return g
}

type QueryFilter struct {
	StudentID  int    `query:"student_id"`
	StudentIDs []int  `query:"-"`
	Subject    string `query:"subject"`
	Term       string `query:"term"`
}

func (qf QueryFilter) Match(g Grade) bool {
	if qf.StudentID != 0 && g.StudentID != qf.StudentID {
		return false
	}
	if qf.StudentIDs != nil {
		var found bool
		for _, id := range qf.StudentIDs {
			if id == g.StudentID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if qf.Subject != "" && g.Subject != qf.Subject {
		return false
	}
	if qf.Term != "" && g.Term != qf.Term {
		return false
	}
	return true
}

// BulkKey identifies a (student, subject) cell of the grade grid, encoded "<studentId>-<subject>".
type BulkKey struct {
	StudentID int
	Subject   string
}

func ParseBulkKey(key string) (BulkKey, error) {
	parts := strings.SplitN(key, "-", 2)
	if len(parts) != 2 {
		return BulkKey{}, fmt.Errorf("invalid grade key %q", key)
	}
	id, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || id <= 0 {
		return BulkKey{}, fmt.Errorf("invalid student id in grade key %q", key)
	}
	subject := strings.TrimSpace(parts[1])
	if subject == "" {
		return BulkKey{}, fmt.Errorf("missing subject in grade key %q", key)
	}
	return BulkKey{StudentID: id, Subject: subject}, nil
}

func (k BulkKey) String() string {
	return strconv.Itoa(k.StudentID) + "-" + k.Subject
}

// BulkUpdate maps grade grid keys to scores for a term.
type BulkUpdate struct {
	Term   string             `json:"term" validate:"required,notblank"`
	Scores map[string]float64 `json:"scores" validate:"required,min=1"`
}

func (bu *BulkUpdate) Validate(validate *validator.Validate) error {
	bu.Term = core.CleanString(bu.Term)
	if err := validate.Struct(bu); err != nil {
		return err
	}
	for key := range bu.Scores {
		if _, err := ParseBulkKey(key); err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "scores", Error: err.Error()})
		}
	}
	return nil
}
