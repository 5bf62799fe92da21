package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shuleboard/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.Ordering
}

// Bind reads the `ordering` query param, dropping fields not in `allowed`.
func (ord *Ordering) Bind(ctx echo.Context, allowed ...string) {
	if val := ctx.QueryParam(orderingParam); val != "" {
		ord.Orderings = core.ParseOrderings(val, allowed...)
	}
}

// pathID parses the `:id` path param.
func pathID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		return 0, errHttpInvalidID
	}
	return id, nil
}

// dateParam parses an optional YYYY-MM-DD query param, defaulting to `def`.
func dateParam(ctx echo.Context, name string, def core.Date) (core.Date, error) {
	val := ctx.QueryParam(name)
	if val == "" {
		return def, nil
	}
	d, err := core.ParseDate(val)
	if err != nil {
		return "", core.NewValidationError(
			errors.Wrapf(err, "parsing %s", name),
			core.FieldError{Field: name, Error: "date must be formatted as YYYY-MM-DD"},
		)
	}
	return d, nil
}
