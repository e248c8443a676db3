package echomw

import (
	"github.com/labstack/echo/v4"
	serdify "github.com/reoring/serdify"
	"github.com/reoring/serdify/middleware"
)

// ValidateJSON decodes the request body into T with opt (or DefaultDecodeOpt
// when zero), stores it in the request context, or answers with the problem
// document when decoding fails.
func ValidateJSON[T any](opt serdify.DecodeOpt) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v, err := middleware.DecodeRequest[T](c.Request(), opt)
			if err != nil {
				return Problem(c, err)
			}
			ctx := middleware.ContextWithDecoded(c.Request().Context(), v)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// Problem writes err as application/problem+json.
func Problem(c echo.Context, err error) error {
	p := middleware.Problem(err)
	body, merr := p.JSON()
	if merr != nil {
		return merr
	}
	return c.Blob(p.StatusCode(), middleware.ProblemContentType, body)
}

// GetDecoded fetches the decoded T from echo.Context.
func GetDecoded[T any](c echo.Context) (T, bool) {
	return middleware.DecodedFromContext[T](c.Request().Context())
}
