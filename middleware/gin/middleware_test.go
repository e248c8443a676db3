package ginmw_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	serdify "github.com/reoring/serdify"
	"github.com/reoring/serdify/middleware"
	ginmw "github.com/reoring/serdify/middleware/gin"
)

type signup struct {
	Email string `json:"email"`
	Age   uint8  `json:"age"`
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/signup", ginmw.ValidateJSON[signup](serdify.DecodeOpt{}), func(c *gin.Context) {
		s, ok := ginmw.GetDecoded[signup](c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusCreated, s.Email)
	})
	return r
}

func TestValidateJSON(t *testing.T) {
	r := newRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(`{"email":"a@b.c","age":20}`)))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "a@b.c", rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(`{"email":"a@b.c","age":20,`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, middleware.ProblemContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"title":"JSON parsing error"`)
	assert.Contains(t, rec.Body.String(), `"invalid_params":[]`)
}
