// Package value defines the generic JSON tree consumed by the serdify engine.
//
// A tree is produced once per call by a driver (see package source/...) and is
// never mutated afterwards. Object members keep the order in which keys first
// appeared in the input; a repeated key replaces the earlier value in place.
package value

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind enumerates JSON node kinds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Number holds the literal text of a JSON number so that no precision is lost
// before the target width is known.
type Number string

// IsInteger reports whether the literal has neither a fraction nor an exponent.
func (n Number) IsInteger() bool {
	return !strings.ContainsAny(string(n), ".eE")
}

// Int64 parses the literal as a signed integer.
func (n Number) Int64() (int64, bool) {
	if !n.IsInteger() {
		return 0, false
	}
	i, err := strconv.ParseInt(string(n), 10, 64)
	return i, err == nil
}

// Uint64 parses the literal as an unsigned integer.
func (n Number) Uint64() (uint64, bool) {
	if !n.IsInteger() {
		return 0, false
	}
	u, err := strconv.ParseUint(string(n), 10, 64)
	return u, err == nil
}

// Float64 parses the literal as a float. Out-of-range literals saturate to ±Inf.
func (n Number) Float64() float64 {
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil && !math.IsInf(f, 0) {
		return math.NaN()
	}
	return f
}

// KindName is "integer" for integral literals representable as int64 or
// uint64, "number" otherwise.
func (n Number) KindName() string {
	if _, ok := n.Int64(); ok {
		return "integer"
	}
	if _, ok := n.Uint64(); ok {
		return "integer"
	}
	return "number"
}

func (n Number) String() string { return string(n) }

// Member is a key/value pair of an object node.
type Member struct {
	Key   string
	Value *Node
}

// Node is an immutable JSON value.
type Node struct {
	kind    Kind
	b       bool
	num     Number
	str     string
	items   []*Node
	members []Member
	index   map[string]int
}

var null = &Node{kind: KindNull}

// Null returns the null node.
func Null() *Node { return null }

// Bool returns a boolean node.
func Bool(b bool) *Node { return &Node{kind: KindBool, b: b} }

// Num returns a number node from its literal text.
func Num(text string) *Node { return &Node{kind: KindNumber, num: Number(text)} }

// Int returns a number node for i.
func Int(i int64) *Node { return Num(strconv.FormatInt(i, 10)) }

// Float returns a number node for f.
func Float(f float64) *Node { return Num(strconv.FormatFloat(f, 'g', -1, 64)) }

// Str returns a string node.
func Str(s string) *Node { return &Node{kind: KindString, str: s} }

// Arr returns an array node. The slice is owned by the node afterwards.
func Arr(items ...*Node) *Node {
	for i, it := range items {
		if it == nil {
			items[i] = null
		}
	}
	return &Node{kind: KindArray, items: items}
}

// Obj returns an object node. Duplicate keys keep the position of the first
// occurrence and the value of the last one.
func Obj(members ...Member) *Node {
	n := &Node{kind: KindObject, index: make(map[string]int, len(members))}
	n.members = make([]Member, 0, len(members))
	for _, m := range members {
		v := m.Value
		if v == nil {
			v = null
		}
		if at, dup := n.index[m.Key]; dup {
			n.members[at].Value = v
			continue
		}
		n.index[m.Key] = len(n.members)
		n.members = append(n.members, Member{Key: m.Key, Value: v})
	}
	return n
}

// M is shorthand for Member{Key: k, Value: v}.
func M(k string, v *Node) Member { return Member{Key: k, Value: v} }

func (n *Node) Kind() Kind { return n.kind }

func (n *Node) IsNull() bool { return n.kind == KindNull }

// Bool returns the boolean payload; false for other kinds.
func (n *Node) Bool() bool { return n.b }

// Number returns the number payload; empty for other kinds.
func (n *Node) Number() Number { return n.num }

// Str returns the string payload; empty for other kinds.
func (n *Node) Str() string { return n.str }

// Len returns the number of array items or object members.
func (n *Node) Len() int {
	switch n.kind {
	case KindArray:
		return len(n.items)
	case KindObject:
		return len(n.members)
	}
	return 0
}

// Index returns the i-th array item.
func (n *Node) Index(i int) *Node { return n.items[i] }

// Items returns the array items. Callers must not modify the slice.
func (n *Node) Items() []*Node { return n.items }

// Members returns object members in input order. Callers must not modify the slice.
func (n *Node) Members() []Member { return n.members }

// Get looks up an object member.
func (n *Node) Get(key string) (*Node, bool) {
	if n.kind != KindObject {
		return nil, false
	}
	at, ok := n.index[key]
	if !ok {
		return nil, false
	}
	return n.members[at].Value, true
}

// Has reports whether the object contains key.
func (n *Node) Has(key string) bool {
	_, ok := n.Get(key)
	return ok
}

// KindName returns the name used for the actual side of type errors:
// numbers are split into "integer" and "number".
func (n *Node) KindName() string {
	if n.kind == KindNumber {
		return n.num.KindName()
	}
	return n.kind.String()
}

// Interface converts the tree into plain Go values: nil, bool, json.Number,
// string, []any and map[string]any.
func (n *Node) Interface() any {
	switch n.kind {
	case KindBool:
		return n.b
	case KindNumber:
		return json.Number(n.num)
	case KindString:
		return n.str
	case KindArray:
		out := make([]any, len(n.items))
		for i, it := range n.items {
			out[i] = it.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(n.members))
		for _, m := range n.members {
			out[m.Key] = m.Value.Interface()
		}
		return out
	}
	return nil
}

// Equal reports deep equality. Numbers compare by literal text and object
// members by key, regardless of order.
func Equal(a, b *Node) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.num == b.num
	case KindString:
		return a.str == b.str
	case KindArray:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.members) != len(b.members) {
			return false
		}
		for _, m := range a.members {
			o, ok := b.Get(m.Key)
			if !ok || !Equal(m.Value, o) {
				return false
			}
		}
		return true
	}
	return false
}
