package attendance

import (
	"fmt"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shuleboard/core"
)

var (
	statusTag  = "attstatus"
	statusText = fmt.Sprintf("status must be one of %s", strings.Join(Statuses, ", "))
)

// InitValidators registers the attendance validators on `validate`.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(statusTag, func(fl validator.FieldLevel) bool {
		return IsValidStatus(fl.Field().String())
	})
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)
}

// IsValidStatus reports whether `status` can be persisted.
func IsValidStatus(status string) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}
