package engine

import (
	"errors"
	"io"
	"strconv"

	"github.com/reoring/serdify/value"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
}

// Syntax error codes assigned by the engine itself. Drivers leave Code empty
// and report the parser's own message.
const (
	CodeEmpty    = "empty"
	CodeEOF      = "eof"
	CodeTrailing = "trailing"
)

// SyntaxError is the driver-neutral form of a parser failure. Offset is the
// byte position of the problem, -1 when unknown.
type SyntaxError struct {
	Code   string
	Msg    string
	Offset int64
}

func (e *SyntaxError) Error() string { return e.Msg }

// BuildDocument reads exactly one JSON value from src and rejects anything
// but whitespace after it.
func BuildDocument(src TokenSource) (*value.Node, error) {
	tok, err := src.NextToken()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &SyntaxError{Code: CodeEmpty, Msg: "EOF while parsing a value", Offset: -1}
		}
		return nil, eofAware(err)
	}
	root, err := buildValue(src, tok)
	if err != nil {
		return nil, err
	}
	next, err := src.NextToken()
	switch {
	case err == nil:
		return nil, &SyntaxError{Code: CodeTrailing, Msg: "trailing characters", Offset: next.Offset}
	case errors.Is(err, io.EOF):
		return root, nil
	default:
		var se *SyntaxError
		if errors.As(err, &se) && se.Code == "" {
			return nil, &SyntaxError{Code: CodeTrailing, Msg: se.Msg, Offset: se.Offset}
		}
		return nil, eofAware(err)
	}
}

// eofAware maps end-of-input conditions met inside a value to CodeEOF.
func eofAware(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &SyntaxError{Code: CodeEOF, Msg: "unexpected end of JSON input", Offset: -1}
	}
	return err
}

func buildValue(src TokenSource, tok Token) (*value.Node, error) {
	switch tok.Kind {
	case KindBeginObject:
		return buildObject(src)
	case KindBeginArray:
		return buildArray(src)
	case KindString:
		return value.Str(tok.String), nil
	case KindNumber:
		return value.Num(tok.Number), nil
	case KindBool:
		return value.Bool(tok.Bool), nil
	case KindNull:
		return value.Null(), nil
	default:
		return nil, &SyntaxError{Msg: "expected value, found " + tok.Kind.describe(), Offset: tok.Offset}
	}
}

func buildObject(src TokenSource) (*value.Node, error) {
	var members []value.Member
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, eofAware(err)
		}
		if tok.Kind == KindEndObject {
			return value.Obj(members...), nil
		}
		if tok.Kind != KindKey {
			return nil, &SyntaxError{Msg: "expected object key, found " + tok.Kind.describe(), Offset: tok.Offset}
		}
		vt, err := src.NextToken()
		if err != nil {
			return nil, eofAware(err)
		}
		v, err := buildValue(src, vt)
		if err != nil {
			return nil, err
		}
		members = append(members, value.M(tok.String, v))
	}
}

func buildArray(src TokenSource) (*value.Node, error) {
	items := []*value.Node{}
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, eofAware(err)
		}
		if tok.Kind == KindEndArray {
			return value.Arr(items...), nil
		}
		v, err := buildValue(src, tok)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
}

func (k Kind) describe() string {
	switch k {
	case KindBeginObject:
		return "'{'"
	case KindEndObject:
		return "'}'"
	case KindBeginArray:
		return "'['"
	case KindEndArray:
		return "']'"
	case KindKey:
		return "key"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindNull:
		return "null"
	}
	return "token " + strconv.Itoa(int(k))
}
