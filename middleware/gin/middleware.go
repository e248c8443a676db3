package ginmw

import (
	"github.com/gin-gonic/gin"
	serdify "github.com/reoring/serdify"
	"github.com/reoring/serdify/middleware"
)

// ValidateJSON decodes the request body into T with opt (or DefaultDecodeOpt
// when zero), stores it in the request context, and on failure aborts with
// the problem document.
func ValidateJSON[T any](opt serdify.DecodeOpt) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := middleware.DecodeRequest[T](c.Request, opt)
		if err != nil {
			Problem(c, err)
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithDecoded(c.Request.Context(), v))
		c.Next()
	}
}

// Problem aborts c with err rendered as application/problem+json.
func Problem(c *gin.Context, err error) {
	p := middleware.Problem(err)
	body, merr := p.JSON()
	if merr != nil {
		_ = c.AbortWithError(p.StatusCode(), merr)
		return
	}
	c.Data(p.StatusCode(), middleware.ProblemContentType, body)
	c.Abort()
}

// GetDecoded fetches the decoded T from gin.Context.
func GetDecoded[T any](c *gin.Context) (T, bool) {
	return middleware.DecodedFromContext[T](c.Request.Context())
}
