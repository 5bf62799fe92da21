package student

import (
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shuleboard/core"
)

// Statuses
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

var (
	GradeLevels = []string{"9", "10", "11", "12"}
	Statuses    = []string{StatusActive, StatusInactive}

	// OrderingFields are the fields students can be ordered by.
	OrderingFields = []string{"id", "first_name", "last_name", "grade", "enrollment_date", "status"}
)

type Student struct {
	ID              int       `json:"id" gorm:"primaryKey"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Grade           string    `json:"grade" gorm:"index"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Address         string    `json:"address"`
	GuardianName    string    `json:"guardian_name"`
	GuardianContact string    `json:"guardian_contact"`
	EnrollmentDate  core.Date `json:"enrollment_date"`
	Status          string    `json:"status"`
}

func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

func (s Student) IsActive() bool {
	return s.Status == StatusActive
}

// NewStudent contains information needed to enroll a new Student.
type NewStudent struct {
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	Grade           string `json:"grade" validate:"required,gradelevel"`
	Email           string `json:"email" validate:"omitempty,email"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	GuardianName    string `json:"guardian_name"`
	GuardianContact string `json:"guardian_contact"`
	Status          string `json:"status" validate:"omitempty,studentstatus"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.Grade = core.CleanString(ns.Grade)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Phone = core.CleanString(ns.Phone)
	ns.Address = core.CleanString(ns.Address)
	ns.GuardianName = core.CleanString(ns.GuardianName)
	ns.GuardianContact = core.CleanString(ns.GuardianContact)
	ns.Status = core.CleanString(ns.Status)
	if ns.Status == "" {
		ns.Status = StatusActive
	}
	return validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// Blank fields keep their current value.
type UpdateStudent struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Grade           string `json:"grade" validate:"omitempty,gradelevel"`
	Email           string `json:"email" validate:"omitempty,email"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	GuardianName    string `json:"guardian_name"`
	GuardianContact string `json:"guardian_contact"`
	Status          string `json:"status" validate:"omitempty,studentstatus"`
}

func (us *UpdateStudent) Validate(orig Student, validate *validator.Validate) error {
	keep := func(val, origVal string, lower ...bool) string {
		if v := core.CleanString(val, lower...); v != "" {
			return v
		}
		return origVal
	}
	us.FirstName = keep(us.FirstName, orig.FirstName)
	us.LastName = keep(us.LastName, orig.LastName)
	us.Grade = keep(us.Grade, orig.Grade)
	us.Email = keep(us.Email, orig.Email, true /* lower */)
	us.Phone = keep(us.Phone, orig.Phone)
	us.Address = keep(us.Address, orig.Address)
	us.GuardianName = keep(us.GuardianName, orig.GuardianName)
	us.GuardianContact = keep(us.GuardianContact, orig.GuardianContact)
	us.Status = keep(us.Status, orig.Status)
	return validate.Struct(us)
}

type QueryFilter struct {
	Search string `query:"search"`
	Grade  string `query:"grade"`
	Status string `query:"status"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Grade == "" && qf.Status == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Grade = core.CleanString(qf.Grade)
	qf.Status = core.CleanString(qf.Status)
}

// Match applies AND on the set fields.
// Search does a case-insensitive match on one of FirstName, LastName or Email, or a substring match on Grade.
func (qf QueryFilter) Match(s Student) bool {
	if qf.Grade != "" && s.Grade != qf.Grade {
		return false
	}
	if qf.Status != "" && !strings.EqualFold(s.Status, qf.Status) {
		return false
	}
	if qf.Search != "" {
		q := strings.ToLower(qf.Search)
		if !(strings.Contains(strings.ToLower(s.FirstName), q) ||
			strings.Contains(strings.ToLower(s.LastName), q) ||
			strings.Contains(strings.ToLower(s.Email), q) ||
			strings.Contains(s.Grade, qf.Search)) {
			return false
		}
	}
	return true
}

// Sort orders students in place by the given orderings, falling back to ID.
func Sort(students []Student, orderings []core.Ordering) {
	sort.SliceStable(students, func(i, j int) bool {
		a, b := students[i], students[j]
		for _, ord := range orderings {
			c := compare(a, b, ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return a.ID < b.ID
	})
}

func compare(a, b Student, field string) int {
	switch field {
	case "id":
		return a.ID - b.ID
	case "first_name":
		return strings.Compare(strings.ToLower(a.FirstName), strings.ToLower(b.FirstName))
	case "last_name":
		return strings.Compare(strings.ToLower(a.LastName), strings.ToLower(b.LastName))
	case "grade":
		return gradeRank(a.Grade) - gradeRank(b.Grade)
	case "enrollment_date":
		return strings.Compare(string(a.EnrollmentDate), string(b.EnrollmentDate))
	case "status":
		return strings.Compare(a.Status, b.Status)
	}
	return 0
}

func gradeRank(level string) int {
	for i, l := range GradeLevels {
		if l == level {
			return i
		}
	}
	return len(GradeLevels)
}
