// Package middleware adapts serdify to HTTP request bodies. Framework bindings
// live in the echo and gin submodules.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"reflect"

	serdify "github.com/reoring/serdify"
)

// ProblemContentType is the media type of RFC 7807 responses.
const ProblemContentType = "application/problem+json"

// DefaultMaxBytes caps request bodies under DefaultDecodeOpt.
const DefaultMaxBytes = 1 << 20

// ctxKeyDecoded is a typed context key for storing a decoded T.
// Using a generic struct type ensures uniqueness per T.
type ctxKeyDecoded[T any] struct{}

// ContextWithDecoded attaches v to the context.
func ContextWithDecoded[T any](ctx context.Context, v T) context.Context {
	return context.WithValue(ctx, ctxKeyDecoded[T]{}, v)
}

// DecodedFromContext retrieves the value stored by ContextWithDecoded.
func DecodedFromContext[T any](ctx context.Context) (T, bool) {
	v, ok := ctx.Value(ctxKeyDecoded[T]{}).(T)
	return v, ok
}

// DefaultDecodeOpt returns a recommended default for HTTP JSON boundaries.
// - Duplicate keys are errors
// - Bodies are limited to DefaultMaxBytes
func DefaultDecodeOpt() serdify.DecodeOpt {
	return serdify.DecodeOpt{
		OnDuplicateKey: serdify.DuplicateReject,
		MaxBytes:       DefaultMaxBytes,
	}
}

// Resolve fills the zero value with DefaultDecodeOpt and sets Instance to the
// request path when the caller left it empty.
func Resolve(r *http.Request, opt serdify.DecodeOpt) serdify.DecodeOpt {
	if reflect.ValueOf(opt).IsZero() {
		opt = DefaultDecodeOpt()
	}
	if opt.Instance == "" && r != nil && r.URL != nil {
		opt.Instance = r.URL.Path
	}
	return opt
}

// Problem converts err into a problem document. Errors that are not
// *serdify.Error become a 400 with their message as detail.
func Problem(err error) *serdify.Error {
	if e, ok := serdify.AsError(err); ok {
		return e
	}
	return &serdify.Error{
		Title:  http.StatusText(http.StatusBadRequest),
		Detail: err.Error(),
		Status: http.StatusBadRequest,
	}
}

// WriteProblem writes err as application/problem+json.
func WriteProblem(w http.ResponseWriter, err error) {
	p := Problem(err)
	body, merr := p.JSON()
	if merr != nil {
		http.Error(w, p.Title, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", ProblemContentType)
	w.WriteHeader(p.StatusCode())
	_, _ = w.Write(body)
}

// ValidateJSON decodes the request body into T with opt (or DefaultDecodeOpt
// when zero), stores it in the request context and calls next. Failures are
// answered with WriteProblem.
func ValidateJSON[T any](opt serdify.DecodeOpt) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v, err := DecodeRequest[T](r, opt)
			if err != nil {
				WriteProblem(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithDecoded(r.Context(), v)))
		})
	}
}

// ErrNoBody is returned by DecodeRequest for requests without a body.
var ErrNoBody = errors.New("middleware: request has no body")

// DecodeRequest decodes the body of r into T.
func DecodeRequest[T any](r *http.Request, opt serdify.DecodeOpt) (T, error) {
	var zero T
	if r.Body == nil || r.Body == http.NoBody {
		return zero, ErrNoBody
	}
	defer r.Body.Close()
	return serdify.FromReader[T](r.Body, Resolve(r, opt))
}
