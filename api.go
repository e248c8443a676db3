package serdify

import (
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/reoring/serdify/shape"
	"github.com/reoring/serdify/value"
)

// FromString decodes JSON text into T. On failure the error is an *Error:
// a syntax error carries a Detail sentence and no InvalidParams, a
// validation error carries every InvalidParam found in the document.
func FromString[T any](s string, opts ...DecodeOpt) (T, error) {
	return FromBytes[T]([]byte(s), opts...)
}

// FromBytes decodes JSON bytes into T.
func FromBytes[T any](data []byte, opts ...DecodeOpt) (T, error) {
	c := resolve(opts)
	var zero T
	n, perr := c.parseJSON(data)
	if perr != nil {
		return zero, c.fail(perr)
	}
	return decodeTyped[T](&c, n, nil)
}

// FromReader reads r to the end and decodes it like FromBytes. When MaxBytes
// is set, a longer input fails with a KindTooLarge error (status 413). Read
// failures are returned as is.
func FromReader[T any](r io.Reader, opts ...DecodeOpt) (T, error) {
	c := resolve(opts)
	var zero T
	n, err := c.readJSON(r)
	if err != nil {
		return zero, err
	}
	return decodeTyped[T](&c, n, nil)
}

// FromYAML decodes a single YAML document into T. Pointers and reasons are the
// same as for the equivalent JSON document.
func FromYAML[T any](data []byte, opts ...DecodeOpt) (T, error) {
	c := resolve(opts)
	var zero T
	n, perr := c.parseYAML(data)
	if perr != nil {
		return zero, c.fail(perr)
	}
	return decodeTyped[T](&c, n, nil)
}

// FromValue decodes an already built value tree into T.
func FromValue[T any](n *value.Node, opts ...DecodeOpt) (T, error) {
	c := resolve(opts)
	return decodeTyped[T](&c, n, nil)
}

// DecodeWith decodes JSON bytes against an explicit shape. The shape's Go type
// must be assignable to T, otherwise a KindConversion error is returned.
func DecodeWith[T any](data []byte, s *shape.Shape, opts ...DecodeOpt) (T, error) {
	c := resolve(opts)
	var zero T
	n, perr := c.parseJSON(data)
	if perr != nil {
		return zero, c.fail(perr)
	}
	return decodeTyped[T](&c, n, s)
}

// Parse builds the value tree of JSON bytes without decoding it.
func Parse(data []byte, opts ...DecodeOpt) (*value.Node, error) {
	c := resolve(opts)
	n, perr := c.parseJSON(data)
	if perr != nil {
		return nil, c.fail(perr)
	}
	return n, nil
}

// ParseReader reads r to the end and builds its value tree, applying
// MaxBytes like FromReader.
func ParseReader(r io.Reader, opts ...DecodeOpt) (*value.Node, error) {
	c := resolve(opts)
	return c.readJSON(r)
}

// ParseYAML builds the value tree of a single YAML document.
func ParseYAML(data []byte, opts ...DecodeOpt) (*value.Node, error) {
	c := resolve(opts)
	n, perr := c.parseYAML(data)
	if perr != nil {
		return nil, c.fail(perr)
	}
	return n, nil
}

// Decode converts a value tree against s and returns the produced value as
// any (map[string]any for records built with shape.Object).
func Decode(n *value.Node, s *shape.Shape, opts ...DecodeOpt) (any, error) {
	c := resolve(opts)
	v, err := c.run(n, s)
	if err != nil {
		return nil, c.fail(err)
	}
	return v.Interface(), nil
}

func decodeTyped[T any](c *config, n *value.Node, s *shape.Shape) (T, error) {
	var zero T
	target := reflect.TypeOf((*T)(nil)).Elem()
	if s == nil {
		derived, err := shape.For(target, shape.WithNaming(c.naming))
		if err != nil {
			c.logger.Debug("serdify: no shape for target", "type", target.String(), "error", err)
			return zero, c.fail(c.conversionError())
		}
		s = derived
	} else if !s.Type.AssignableTo(target) {
		c.logger.Debug("serdify: shape does not fit target", "shape", s.Type.String(), "type", target.String())
		return zero, c.fail(c.conversionError())
	}
	v, err := c.run(n, s)
	if err != nil {
		return zero, c.fail(err)
	}
	out := reflect.New(target)
	out.Elem().Set(v)
	return *out.Interface().(*T), nil
}

// run decodes n with a fresh root collector. Collected errors always win over
// a hard failure; a hard failure alone becomes a depth or conversion error.
func (c *config) run(n *value.Node, s *shape.Shape) (reflect.Value, *Error) {
	d := decoder{tr: c.tr, maxDepth: c.maxDepth}
	v, params, err := d.decode(n, s, nil)
	switch {
	case len(params) > 0:
		return reflect.Value{}, c.validationError(params)
	case err != nil:
		var de *depthError
		if errors.As(err, &de) {
			return reflect.Value{}, c.depthError(de.pointer)
		}
		c.logger.Debug("serdify: conversion failed", "error", err)
		return reflect.Value{}, c.conversionError()
	case !v.IsValid():
		return reflect.Zero(s.Type), nil
	}
	return v, nil
}

// fail logs the failure and returns it as an error value.
func (c *config) fail(e *Error) error {
	c.logger.Debug("serdify: decode failed",
		"kind", e.Kind().String(),
		"invalid_params", len(e.InvalidParams),
		"driver", c.driver.Name(),
	)
	return e
}

// readJSON reads r under the MaxBytes limit and parses it.
func (c *config) readJSON(r io.Reader) (*value.Node, error) {
	data, err := readAll(r, c.maxBytes)
	if err != nil {
		if errors.Is(err, errTooLarge) {
			return nil, c.fail(c.tooLargeError())
		}
		return nil, fmt.Errorf("serdify: read input: %w", err)
	}
	n, perr := c.parseJSON(data)
	if perr != nil {
		return nil, c.fail(perr)
	}
	return n, nil
}

var errTooLarge = errors.New("input too large")

func readAll(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errTooLarge
	}
	return data, nil
}
