package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core"
)

func roleMiddleware(allowed func(core.Respondent) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			r, err := contextRespondent(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context respondent")
			}
			if allowed(r) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// authorMiddleware lets teachers and admins through.
func authorMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(core.Respondent.IsAuthor)
}

func adminMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(core.Respondent.IsAdmin)
}
