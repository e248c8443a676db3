// Package gojson is the goccy/go-json backed token driver.
package gojson

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"

	j "github.com/goccy/go-json"

	eng "github.com/reoring/serdify/internal/engine"
)

// Name identifies the driver in logs and CLI flags.
const Name = "go-json"

type source struct {
	data []byte
	dec  *j.Decoder
	keys eng.KeyTracker
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON using go-json.
func NewBytes(b []byte) eng.TokenSource {
	dec := j.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return &source{data: b, dec: dec}
}

func (s *source) NextToken() (eng.Token, error) {
	start := eng.TokenStart(s.data, s.dec.InputOffset())
	tok, err := s.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return eng.Token{}, io.EOF
		}
		return eng.Token{}, s.syntaxError(err)
	}
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			s.keys.Open(true)
			return eng.Token{Kind: eng.KindBeginObject, Offset: start}, nil
		case '[':
			s.keys.Open(false)
			return eng.Token{Kind: eng.KindBeginArray, Offset: start}, nil
		case '}':
			s.keys.Close()
			return eng.Token{Kind: eng.KindEndObject, Offset: start}, nil
		default:
			s.keys.Close()
			return eng.Token{Kind: eng.KindEndArray, Offset: start}, nil
		}
	case string:
		if s.keys.Key() {
			return eng.Token{Kind: eng.KindKey, String: v, Offset: start}, nil
		}
		return eng.Token{Kind: eng.KindString, String: v, Offset: start}, nil
	case bool:
		s.keys.Value()
		return eng.Token{Kind: eng.KindBool, Bool: v, Offset: start}, nil
	case j.Number:
		s.keys.Value()
		return eng.Token{Kind: eng.KindNumber, Number: string(v), Offset: start}, nil
	case float64:
		s.keys.Value()
		return eng.Token{Kind: eng.KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64), Offset: start}, nil
	default:
		s.keys.Value()
		return eng.Token{Kind: eng.KindNull, Offset: start}, nil
	}
}

// syntaxError rescans the whole input with Unmarshal, whose cursor is
// absolute, and falls back to the token error when that succeeds.
func (s *source) syntaxError(err error) error {
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return err
	}
	var discard any
	verr := j.Unmarshal(s.data, &discard)
	if verr == nil {
		verr = err
	}
	if strings.Contains(verr.Error(), "unexpected end of JSON input") {
		return io.ErrUnexpectedEOF
	}
	var se *j.SyntaxError
	if errors.As(verr, &se) {
		return &eng.SyntaxError{Msg: se.Error(), Offset: se.Offset}
	}
	return &eng.SyntaxError{Msg: verr.Error(), Offset: -1}
}
