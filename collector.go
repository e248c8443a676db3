package serdify

import (
	"net/http"
	"strings"

	eng "github.com/reoring/serdify/internal/engine"
	"github.com/reoring/serdify/i18n"
)

// Path is the stack of segments leading to the node being decoded. Push and
// Pop return new paths and never modify the receiver, so a Path can be handed
// to a child scope without aliasing.
type Path []string

// Push returns a copy of p with seg appended.
func (p Path) Push(seg string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, seg)
}

// Pop returns p without its last segment; popping an empty path is a no-op.
func (p Path) Pop() Path {
	if len(p) == 0 {
		return p
	}
	return p[:len(p)-1:len(p)-1]
}

// Last returns the final segment, "" for the root.
func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Pointer renders p as a fragment JSON Pointer: "#" for the root, otherwise
// "#/" followed by the RFC 6901 escaped segments.
func (p Path) Pointer() string {
	if len(p) == 0 {
		return "#"
	}
	b := &strings.Builder{}
	b.WriteByte('#')
	for _, seg := range p {
		b.WriteByte('/')
		b.WriteString(eng.EscapePointerToken(seg))
	}
	return b.String()
}

// Collector accumulates InvalidParams for one scope of a decode, together with
// the path of that scope.
type Collector struct {
	errors []InvalidParam
	path   Path
}

// NewCollector returns an empty collector positioned at the document root.
func NewCollector() *Collector { return &Collector{} }

// NewCollectorWithPath returns an empty collector positioned at a copy of p.
func NewCollectorWithPath(p Path) *Collector {
	return &Collector{path: append(Path(nil), p...)}
}

func (c *Collector) PushPath(seg string) { c.path = c.path.Push(seg) }

func (c *Collector) PopPath() { c.path = c.path.Pop() }

// Path returns a copy of the current path.
func (c *Collector) Path() Path { return append(Path(nil), c.path...) }

func (c *Collector) CurrentPointer() string { return c.path.Pointer() }

// AddError records a failure at the current pointer.
func (c *Collector) AddError(name, reason string, expected, actual ExpectedOrActual) {
	c.errors = append(c.errors, InvalidParam{
		Name:     name,
		Reason:   reason,
		Expected: expected,
		Actual:   actual,
		Pointer:  c.CurrentPointer(),
	})
}

// Merge appends the errors of a child scope in their recording order.
func (c *Collector) Merge(child *Collector) {
	if child == nil {
		return
	}
	c.errors = append(c.errors, child.errors...)
}

func (c *Collector) HasErrors() bool { return len(c.errors) > 0 }

// Errors returns a copy of the recorded errors.
func (c *Collector) Errors() []InvalidParam {
	return append([]InvalidParam{}, c.errors...)
}

// IntoError converts the collected list into a validation Error with status
// 400.
func (c *Collector) IntoError() *Error {
	return c.intoError(i18n.Current(), http.StatusBadRequest)
}

func (c *Collector) intoError(tr i18n.Translator, status int) *Error {
	e := newError(KindValidation, tr, i18n.TitleValidation, "", status)
	e.InvalidParams = c.Errors()
	return e
}
