package echoapi

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shuleboard/core"
)

const objectKey = "object"

// objectMiddleware loads the object identified by the `:id` path param into the echo.Context.
func objectMiddleware[T any](getByID func(context.Context, int) (T, error)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id, err := pathID(ctx)
			if err != nil {
				return err
			}
			obj, err := getByID(ctx.Request().Context(), id)
			if err != nil {
				if core.IsNotFound(err) {
					return err
				}
				return errors.Wrap(err, "finding object by ID")
			}
			ctx.Set(objectKey, obj)
			return next(ctx)
		}
	}
}

func getContextObject[T any](ctx echo.Context) (T, error) {
	obj, ok := ctx.Get(objectKey).(T)
	if !ok {
		return obj, errors.Wrap(errObjNotFoundCtx, "retrieving object from context")
	}
	return obj, nil
}
