// Package fixtures holds the seed data the record stores are loaded with at startup.
package fixtures

import (
	"embed"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/trezcool/shuleboard/core/attendance"
	"github.com/trezcool/shuleboard/core/grade"
	"github.com/trezcool/shuleboard/core/student"
)

//go:embed data/*.json
var data embed.FS

type Fixtures struct {
	Students   []student.Student
	Attendance []attendance.Record
	Grades     []grade.Grade
}

// Load decodes the embedded seed collections. Each call returns fresh slices.
func Load() (Fixtures, error) {
	var fx Fixtures
	if err := decode("data/students.json", &fx.Students); err != nil {
		return Fixtures{}, err
	}
	if err := decode("data/attendance.json", &fx.Attendance); err != nil {
		return Fixtures{}, err
	}
	if err := decode("data/grades.json", &fx.Grades); err != nil {
		return Fixtures{}, err
	}
	return fx, nil
}

func decode(name string, v interface{}) error {
	b, err := data.ReadFile(name)
	if err != nil {
		return errors.Wrapf(err, "reading %s", name)
	}
	return errors.Wrapf(json.Unmarshal(b, v), "decoding %s", name)
}
