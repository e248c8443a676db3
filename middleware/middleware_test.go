package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serdify "github.com/reoring/serdify"
	"github.com/reoring/serdify/middleware"
)

type order struct {
	ID       string `json:"id"`
	Quantity uint8  `json:"quantity"`
}

func handler(t *testing.T) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		o, ok := middleware.DecodedFromContext[order](r.Context())
		require.True(t, ok)
		_, _ = io.WriteString(w, o.ID)
	})
	return middleware.ValidateJSON[order](serdify.DecodeOpt{})(next)
}

func TestValidateJSON_PassesDecodedValue(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"id":"o-1","quantity":2}`))
	handler(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "o-1", rec.Body.String())
}

func TestValidateJSON_WritesProblem(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"quantity":512}`))
	handler(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, middleware.ProblemContentType, rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{
		"title": "Your request parameters didn't validate.",
		"instance": "/orders",
		"status": 400,
		"invalid_params": [
			{
				"name": "quantity",
				"reason": "Value 512 is out of range for type u8. Expected range: 0 to 255",
				"expected": {"type": "u8", "format": "integer in range 0 to 255"},
				"actual": {"type": "integer", "format": "512"},
				"pointer": "#/quantity"
			},
			{
				"name": "id",
				"reason": "missing required field",
				"expected": {"type": "required", "format": "field"},
				"actual": {"type": "missing", "format": "undefined"},
				"pointer": "#"
			}
		]
	}`, rec.Body.String())
}

func TestValidateJSON_RejectsDuplicateKeysByDefault(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"id":"a","id":"b","quantity":1}`))
	handler(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `Duplicate key \"id\"`)
	assert.Contains(t, rec.Body.String(), `"invalid_params":[]`)
}

func TestValidateJSON_BodyTooLarge(t *testing.T) {
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { t.Fatal("next must not run") })
	h := middleware.ValidateJSON[order](serdify.DecodeOpt{MaxBytes: 8})(next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"id":"long enough"}`)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestDecodeRequest_NoBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/orders", nil)
	_, err := middleware.DecodeRequest[order](req, serdify.DecodeOpt{})
	assert.ErrorIs(t, err, middleware.ErrNoBody)

	rec := httptest.NewRecorder()
	middleware.WriteProblem(rec, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "request has no body")
}
