package student

import (
	"fmt"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shuleboard/core"
)

var (
	gradeLevelTag  = "gradelevel"
	gradeLevelText = fmt.Sprintf("grade must be one of %s", strings.Join(GradeLevels, ", "))

	statusTag  = "studentstatus"
	statusText = fmt.Sprintf("status must be one of %s", strings.Join(Statuses, ", "))
)

// InitValidators registers the student validators on `validate`.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(gradeLevelTag, gradeLevelValidation)
	core.RegisterCustomTranslation(validate, translator, gradeLevelTag, gradeLevelText)

	_ = validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)
}

// Custom Validators

func gradeLevelValidation(fl validator.FieldLevel) bool {
	return isOneOf(fl.Field().String(), GradeLevels)
}

func statusValidation(fl validator.FieldLevel) bool {
	return isOneOf(fl.Field().String(), Statuses)
}

func isOneOf(val string, values []string) bool {
	for _, v := range values {
		if v == val {
			return true
		}
	}
	return false
}
