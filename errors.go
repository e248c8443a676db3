package serdify

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	gojson "github.com/goccy/go-json"

	"github.com/reoring/serdify/i18n"
)

// ExpectedOrActual describes one side of a failed conversion: a type name and
// a format (a JSON kind, a range description or the offending literal).
type ExpectedOrActual struct {
	Type   string `json:"type"`
	Format string `json:"format"`
}

// InvalidParam is one collected failure.
type InvalidParam struct {
	Name     string           `json:"name"`
	Reason   string           `json:"reason,omitempty"`
	Expected ExpectedOrActual `json:"expected"`
	Actual   ExpectedOrActual `json:"actual"`
	Pointer  string           `json:"pointer"` // JSON Pointer, "#" for the document root
}

// ErrorKind classifies an Error.
type ErrorKind int

const (
	KindValidation ErrorKind = iota // one or more InvalidParams
	KindSyntax                      // input is not well-formed; Detail says why
	KindDepth                       // nesting limit exceeded
	KindTooLarge                    // input exceeds MaxBytes or YAML aliases expand too far
	KindConversion                  // conversion failed without a recorded cause
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindSyntax:
		return "syntax"
	case KindDepth:
		return "depth"
	case KindTooLarge:
		return "too_large"
	case KindConversion:
		return "conversion"
	}
	return "unknown"
}

// Sentinels matched by (*Error).Is, e.g. errors.Is(err, serdify.ErrSyntax).
var (
	ErrValidation = errors.New("serdify: validation failed")
	ErrSyntax     = errors.New("serdify: syntax error")
	ErrDepth      = errors.New("serdify: nesting too deep")
	ErrTooLarge   = errors.New("serdify: input too large")
	ErrConversion = errors.New("serdify: conversion failed")
)

var kindSentinels = map[ErrorKind]error{
	KindValidation: ErrValidation,
	KindSyntax:     ErrSyntax,
	KindDepth:      ErrDepth,
	KindTooLarge:   ErrTooLarge,
	KindConversion: ErrConversion,
}

// Error is an RFC 7807 problem details object. InvalidParams is always
// serialized as an array, empty for non-validation failures.
type Error struct {
	Type          string         `json:"type,omitempty"`
	Title         string         `json:"title"`
	Detail        string         `json:"detail,omitempty"`
	Instance      string         `json:"instance,omitempty"`
	InvalidParams []InvalidParam `json:"invalid_params"`
	Status        int            `json:"status,omitempty"`

	kind ErrorKind
}

// Kind reports the failure category.
func (e *Error) Kind() ErrorKind { return e.kind }

// Error summarizes the title and the first few invalid params.
func (e *Error) Error() string {
	if len(e.InvalidParams) == 0 {
		if e.Detail != "" {
			return e.Title + ": " + e.Detail
		}
		return e.Title
	}
	const maxShown = 3
	b := &strings.Builder{}
	b.WriteString(e.Title)
	b.WriteString(" ")
	n := len(e.InvalidParams)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		ip := e.InvalidParams[i]
		fmt.Fprintf(b, "%s: %s", ip.Pointer, ip.Reason)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	return kindSentinels[e.kind] == target
}

// JSON renders the problem document.
func (e *Error) JSON() ([]byte, error) {
	out := *e
	if out.InvalidParams == nil {
		out.InvalidParams = []InvalidParam{}
	}
	return gojson.Marshal(&out)
}

// StatusCode returns Status, defaulting to 400.
func (e *Error) StatusCode() int {
	if e.Status == 0 {
		return http.StatusBadRequest
	}
	return e.Status
}

// AsError extracts an *Error from err using errors.As.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func newError(kind ErrorKind, tr i18n.Translator, title, detail string, status int) *Error {
	return &Error{
		Title:         tr.Message(title),
		Detail:        detail,
		InvalidParams: []InvalidParam{},
		Status:        status,
		kind:          kind,
	}
}
