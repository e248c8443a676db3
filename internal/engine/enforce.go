package engine

import (
	"strconv"
	"strings"
)

// Enforcement wrapper for TokenSource applying duplicate key handling and a
// maximum nesting depth while tokens stream into the tree builder, so that an
// adversarial document is rejected before any deep recursion happens.

// DuplicateStrictness controls what happens when an object repeats a key.
type DuplicateStrictness int

const (
	DupIgnore DuplicateStrictness = iota // last write wins
	DupError
)

// EnforceOptions controls runtime enforcement behavior.
type EnforceOptions struct {
	OnDuplicate DuplicateStrictness
	MaxDepth    int // <= 0 disables the check
}

// Issue codes carried by IssueError.
const (
	CodeMaxDepth     = "max_depth"
	CodeDuplicateKey = "duplicate_key"
)

// IssueError reports an enforcement failure. Path is a JSON Pointer without
// the leading '#' ("" for the document root).
type IssueError struct {
	Code    string
	Path    string
	Message string
	Key     string
	Depth   int
	Offset  int64
}

func (e *IssueError) Error() string { return e.Message }

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	keys         map[string]struct{}
	expectingKey bool
	path         string
	nextIndex    int
	pendingKey   string
}

// WrapWithEnforcement returns a TokenSource that enforces the duplicate key
// policy and the maximum nesting depth. It returns inner unchanged when both
// checks are disabled.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) TokenSource {
	if opt.OnDuplicate == DupIgnore && opt.MaxDepth <= 0 {
		return inner
	}
	return &enforcingTokenSource{inner: inner, opt: opt}
}

type enforcingTokenSource struct {
	inner TokenSource
	opt   EnforceOptions
	stack []frame
}

func (e *enforcingTokenSource) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}

	path := e.pathForToken(tok)

	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		f := frame{kind: kindArray, path: path}
		if tok.Kind == KindBeginObject {
			f = frame{kind: kindObject, path: path, expectingKey: true}
			if e.opt.OnDuplicate != DupIgnore {
				f.keys = make(map[string]struct{})
			}
		}
		e.stack = append(e.stack, f)
		if depth := len(e.stack); e.opt.MaxDepth > 0 && depth > e.opt.MaxDepth {
			return Token{}, &IssueError{
				Code:    CodeMaxDepth,
				Path:    path,
				Message: "maximum nesting depth of " + strconv.Itoa(e.opt.MaxDepth) + " exceeded",
				Depth:   depth,
				Offset:  tok.Offset,
			}
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
		e.valueDone()
	case KindKey:
		if n := len(e.stack); n > 0 {
			top := &e.stack[n-1]
			if top.keys != nil {
				if _, dup := top.keys[tok.String]; dup {
					return Token{}, &IssueError{
						Code:    CodeDuplicateKey,
						Path:    path,
						Message: "key '" + tok.String + "' duplicated",
						Key:     tok.String,
						Offset:  tok.Offset,
					}
				}
				top.keys[tok.String] = struct{}{}
			}
			top.expectingKey = false
			top.pendingKey = tok.String
		}
	default:
		e.valueDone()
	}
	return tok, nil
}

// valueDone flips the enclosing object back to expecting a key.
func (e *enforcingTokenSource) valueDone() {
	if n := len(e.stack); n > 0 {
		top := &e.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
			top.pendingKey = ""
		}
	}
}

func (e *enforcingTokenSource) pathForToken(tok Token) string {
	if len(e.stack) == 0 {
		return ""
	}
	top := &e.stack[len(e.stack)-1]
	switch tok.Kind {
	case KindKey:
		return JoinPointer(top.path, tok.String)
	case KindEndObject, KindEndArray:
		return top.path
	}
	if top.kind == kindArray {
		p := JoinPointer(top.path, strconv.Itoa(top.nextIndex))
		top.nextIndex++
		return p
	}
	if !top.expectingKey {
		return JoinPointer(top.path, top.pendingKey)
	}
	return top.path
}

var jsonPointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// EscapePointerToken escapes '~' and '/' per RFC 6901.
func EscapePointerToken(s string) string {
	return jsonPointerEscaper.Replace(s)
}

// JoinPointer appends an escaped reference token to a pointer.
func JoinPointer(base, token string) string {
	return base + "/" + EscapePointerToken(token)
}
