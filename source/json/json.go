// Package json is the encoding/json backed token driver.
package json

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"

	eng "github.com/reoring/serdify/internal/engine"
)

// Name identifies the driver in logs and CLI flags.
const Name = "encoding/json"

type jsonSource struct {
	data []byte
	dec  *json.Decoder
	keys eng.KeyTracker
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON.
func NewBytes(b []byte) eng.TokenSource {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return &jsonSource{data: b, dec: dec}
}

func (s *jsonSource) NextToken() (eng.Token, error) {
	start := eng.TokenStart(s.data, s.dec.InputOffset())
	tok, err := s.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return eng.Token{}, io.EOF
		}
		return eng.Token{}, s.syntaxError(err)
	}
	switch v := tok.(type) {
	case json.Delim:
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
	case json.Number:
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

// syntaxError converts a decoder failure into an engine.SyntaxError. Token
// reports offsets relative to the literal being decoded, so the whole input is
// rescanned with the validating scanner to get an absolute position.
func (s *jsonSource) syntaxError(err error) error {
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return err
	}
	var raw json.RawMessage
	if verr := json.Unmarshal(s.data, &raw); verr != nil {
		var se *json.SyntaxError
		if errors.As(verr, &se) {
			if se.Error() == "unexpected end of JSON input" {
				return io.ErrUnexpectedEOF
			}
			return &eng.SyntaxError{Msg: se.Error(), Offset: se.Offset - 1}
		}
	}
	var se *json.SyntaxError
	if errors.As(err, &se) {
		return &eng.SyntaxError{Msg: se.Error(), Offset: -1}
	}
	return &eng.SyntaxError{Msg: err.Error(), Offset: -1}
}
