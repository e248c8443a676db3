// Package shape describes the target of a decode: which JSON kind each slot
// expects, the numeric width of integer slots and the ordered field list of
// records.
//
// Shapes are built either explicitly with the constructors in this package,
// derived from Go types with For/Of, or loaded from a YAML shape document with
// ParseYAML. A Shape is read-only once built and may be shared between
// goroutines.
package shape

import (
	"math"
	"reflect"
	"strconv"
	"time"
)

// Kind is the closed set of shape kinds.
type Kind int

const (
	KindAny Kind = iota
	KindBool
	KindString
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindArray
	KindMap
	KindStruct
	KindOptional
	KindTime
)

var kindNames = [...]string{
	KindAny:      "any",
	KindBool:     "bool",
	KindString:   "string",
	KindInt8:     "i8",
	KindInt16:    "i16",
	KindInt32:    "i32",
	KindInt64:    "i64",
	KindUint8:    "u8",
	KindUint16:   "u16",
	KindUint32:   "u32",
	KindUint64:   "u64",
	KindFloat32:  "f32",
	KindFloat64:  "f64",
	KindArray:    "array",
	KindMap:      "map",
	KindStruct:   "struct",
	KindOptional: "option",
	KindTime:     "time",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return 0, false
}

// IsSigned reports whether k is a signed integer kind.
func (k Kind) IsSigned() bool { return k >= KindInt8 && k <= KindInt64 }

// IsUnsigned reports whether k is an unsigned integer kind.
func (k Kind) IsUnsigned() bool { return k >= KindUint8 && k <= KindUint64 }

// IsInteger reports whether k is any integer kind.
func (k Kind) IsInteger() bool { return k.IsSigned() || k.IsUnsigned() }

// IsFloat reports whether k is a floating point kind.
func (k Kind) IsFloat() bool { return k == KindFloat32 || k == KindFloat64 }

// Shape is one node of a target description.
type Shape struct {
	Kind Kind
	// Name is the type name reported in errors. Empty means Kind.String().
	Name string
	// Elem is the element shape of Array, Map and Optional.
	Elem *Shape
	// Fields lists the record fields of Struct in declaration order.
	Fields []Field
	// Type is the Go type a decode produces for this shape.
	Type reflect.Type
}

// Field is a named member of a Struct shape. Index is the reflect field index
// path when Type is a struct; nil for map-backed records.
type Field struct {
	Name  string
	Shape *Shape
	Index []int
}

// Optional reports whether the field may be absent or null.
func (f Field) Optional() bool { return f.Shape != nil && f.Shape.Kind == KindOptional }

// TypeName returns the name reported on the expected side of an error.
func (s *Shape) TypeName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Kind.String()
}

// Format returns the JSON kind the shape expects, as used in
// "Expected {format}, got {actual}".
func (s *Shape) Format() string {
	switch s.Kind {
	case KindBool:
		return "boolean"
	case KindString:
		return "string"
	case KindFloat32, KindFloat64:
		return "number"
	case KindArray:
		return "array"
	case KindMap, KindStruct:
		return "object"
	case KindTime:
		return "date-time"
	case KindOptional:
		if s.Elem != nil {
			return s.Elem.Format()
		}
		return "nullable"
	case KindAny:
		return "any"
	}
	if s.Kind.IsInteger() {
		return "integer"
	}
	return "unknown"
}

// Range returns the inclusive bounds of an integer kind as decimal strings.
func (s *Shape) Range() (lo, hi string, ok bool) {
	switch s.Kind {
	case KindInt8:
		return strconv.Itoa(math.MinInt8), strconv.Itoa(math.MaxInt8), true
	case KindInt16:
		return strconv.Itoa(math.MinInt16), strconv.Itoa(math.MaxInt16), true
	case KindInt32:
		return strconv.Itoa(math.MinInt32), strconv.Itoa(math.MaxInt32), true
	case KindInt64:
		return strconv.FormatInt(math.MinInt64, 10), strconv.FormatInt(math.MaxInt64, 10), true
	case KindUint8:
		return "0", strconv.Itoa(math.MaxUint8), true
	case KindUint16:
		return "0", strconv.Itoa(math.MaxUint16), true
	case KindUint32:
		return "0", strconv.FormatUint(math.MaxUint32, 10), true
	case KindUint64:
		return "0", strconv.FormatUint(math.MaxUint64, 10), true
	}
	return "", "", false
}

// Bits returns the width of numeric kinds, 0 otherwise.
func (s *Shape) Bits() int {
	switch s.Kind {
	case KindInt8, KindUint8:
		return 8
	case KindInt16, KindUint16:
		return 16
	case KindInt32, KindUint32, KindFloat32:
		return 32
	case KindInt64, KindUint64, KindFloat64:
		return 64
	}
	return 0
}

// Field looks up a record field by name.
func (s *Shape) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

var (
	anyType  = reflect.TypeOf((*any)(nil)).Elem()
	timeType = reflect.TypeOf(time.Time{})
	objType  = reflect.TypeOf(map[string]any(nil))
)

var scalarTypes = map[Kind]reflect.Type{
	KindAny:     anyType,
	KindBool:    reflect.TypeOf(false),
	KindString:  reflect.TypeOf(""),
	KindInt8:    reflect.TypeOf(int8(0)),
	KindInt16:   reflect.TypeOf(int16(0)),
	KindInt32:   reflect.TypeOf(int32(0)),
	KindInt64:   reflect.TypeOf(int64(0)),
	KindUint8:   reflect.TypeOf(uint8(0)),
	KindUint16:  reflect.TypeOf(uint16(0)),
	KindUint32:  reflect.TypeOf(uint32(0)),
	KindUint64:  reflect.TypeOf(uint64(0)),
	KindFloat32: reflect.TypeOf(float32(0)),
	KindFloat64: reflect.TypeOf(float64(0)),
	KindTime:    timeType,
}

func scalar(k Kind) *Shape { return &Shape{Kind: k, Type: scalarTypes[k]} }

func Any() *Shape     { return scalar(KindAny) }
func Bool() *Shape    { return scalar(KindBool) }
func String() *Shape  { return scalar(KindString) }
func Int8() *Shape    { return scalar(KindInt8) }
func Int16() *Shape   { return scalar(KindInt16) }
func Int32() *Shape   { return scalar(KindInt32) }
func Int64() *Shape   { return scalar(KindInt64) }
func Uint8() *Shape   { return scalar(KindUint8) }
func Uint16() *Shape  { return scalar(KindUint16) }
func Uint32() *Shape  { return scalar(KindUint32) }
func Uint64() *Shape  { return scalar(KindUint64) }
func Float32() *Shape { return scalar(KindFloat32) }
func Float64() *Shape { return scalar(KindFloat64) }

// Time expects an RFC 3339 string and produces a time.Time.
func Time() *Shape { return scalar(KindTime) }

// Array expects a JSON array of elem and produces a slice.
func Array(elem *Shape) *Shape {
	return &Shape{Kind: KindArray, Elem: elem, Type: reflect.SliceOf(elem.Type)}
}

// Map expects a JSON object with arbitrary keys and produces map[string]T.
func Map(elem *Shape) *Shape {
	return &Shape{Kind: KindMap, Elem: elem, Type: reflect.MapOf(reflect.TypeOf(""), elem.Type)}
}

// Optional accepts a missing member or null in addition to elem. Nil-able
// element types are used as is; other types are wrapped in a pointer.
func Optional(elem *Shape) *Shape {
	t := elem.Type
	switch t.Kind() {
	case reflect.Interface, reflect.Map, reflect.Slice, reflect.Pointer:
	default:
		t = reflect.PointerTo(t)
	}
	return &Shape{Kind: KindOptional, Elem: elem, Type: t}
}

// Object describes a record decoded into map[string]any. Fields not wrapped in
// Optional are required.
func Object(name string, fields ...Field) *Shape {
	return &Shape{Kind: KindStruct, Name: name, Fields: fields, Type: objType}
}

// F is shorthand for a map-backed record field.
func F(name string, s *Shape) Field { return Field{Name: name, Shape: s} }
