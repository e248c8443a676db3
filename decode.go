package serdify

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/reoring/serdify/i18n"
	"github.com/reoring/serdify/shape"
	"github.com/reoring/serdify/value"
)

// decoder walks a value tree against a shape. It holds no per-call state, so
// decode is a pure function of its arguments: errors come back by value and
// are appended by the caller.
type decoder struct {
	tr       i18n.Translator
	maxDepth int // 0 disables the check
}

// depthError is a hard failure raised when the tree nests deeper than
// maxDepth containers.
type depthError struct {
	pointer string
	limit   int
}

func (e *depthError) Error() string {
	return fmt.Sprintf("maximum nesting depth of %d exceeded at %s", e.limit, e.pointer)
}

// conversionError is a hard failure the decoder has no InvalidParam for, such
// as a shape whose Go type cannot hold the decoded value.
type conversionError struct {
	pointer string
	msg     string
}

func (e *conversionError) Error() string { return e.msg + " at " + e.pointer }

var (
	anyArray = shape.Array(shape.Any())
	anyMap   = shape.Map(shape.Any())
)

// decode converts n into a value of s.Type. The returned slice holds every
// InvalidParam found below p; the error is a hard failure that stops the walk.
func (d *decoder) decode(n *value.Node, s *shape.Shape, p Path) (reflect.Value, []InvalidParam, error) {
	v, c, err := d.decodeAt(n, s, p, 0)
	return v, c.errors, err
}

func (d *decoder) decodeAt(n *value.Node, s *shape.Shape, p Path, depth int) (reflect.Value, *Collector, error) {
	if s == nil {
		panic("serdify: nil shape at " + p.Pointer())
	}
	c := NewCollectorWithPath(p)
	v, err := d.into(c, n, s, depth)
	return v, c, err
}

// child decodes a member or element under seg with a fresh collector and
// merges its errors into c.
func (d *decoder) child(c *Collector, seg string, n *value.Node, s *shape.Shape, depth int) (reflect.Value, error) {
	c.PushPath(seg)
	defer c.PopPath()
	v, sub, err := d.decodeAt(n, s, c.Path(), depth)
	c.Merge(sub)
	return v, err
}

func (d *decoder) into(c *Collector, n *value.Node, s *shape.Shape, depth int) (reflect.Value, error) {
	switch s.Kind {
	case shape.KindBool:
		out := reflect.New(s.Type).Elem()
		if n.Kind() != value.KindBool {
			d.typeError(c, n, s)
			return out, nil
		}
		out.SetBool(n.Bool())
		return out, nil
	case shape.KindString:
		out := reflect.New(s.Type).Elem()
		if n.Kind() != value.KindString {
			d.typeError(c, n, s)
			return out, nil
		}
		out.SetString(n.Str())
		return out, nil
	case shape.KindFloat32, shape.KindFloat64:
		out := reflect.New(s.Type).Elem()
		if n.Kind() != value.KindNumber {
			d.typeError(c, n, s)
			return out, nil
		}
		out.SetFloat(n.Number().Float64())
		return out, nil
	case shape.KindTime:
		return d.timestamp(c, n, s), nil
	case shape.KindOptional:
		return d.optional(c, n, s, depth)
	case shape.KindArray:
		return d.sequence(c, n, s, depth)
	case shape.KindMap:
		return d.mapping(c, n, s, depth)
	case shape.KindStruct:
		return d.record(c, n, s, depth)
	case shape.KindAny:
		return d.dynamic(c, n, s, depth)
	}
	if s.Kind.IsInteger() {
		return d.integer(c, n, s), nil
	}
	return reflect.Value{}, &conversionError{pointer: c.CurrentPointer(), msg: "unsupported shape kind " + s.Kind.String()}
}

// typeError records a JSON kind mismatch at the current pointer.
func (d *decoder) typeError(c *Collector, n *value.Node, s *shape.Shape) {
	name := c.path.Last()
	if name == "" {
		name = "value"
	}
	actual := n.KindName()
	c.AddError(name,
		d.tr.Message(i18n.ReasonType, s.Format(), actual),
		ExpectedOrActual{Type: s.TypeName(), Format: s.Format()},
		ExpectedOrActual{Type: actual, Format: actual},
	)
}

func (d *decoder) integer(c *Collector, n *value.Node, s *shape.Shape) reflect.Value {
	out := reflect.New(s.Type).Elem()
	if n.Kind() != value.KindNumber {
		d.typeError(c, n, s)
		return out
	}
	num := n.Number()
	bits := s.Bits()
	if s.Kind.IsSigned() {
		if i, ok := signed(num); ok && (bits == 64 || (i >= -(1<<(bits-1)) && i < 1<<(bits-1))) {
			out.SetInt(i)
			return out
		}
	} else {
		if u, ok := unsigned(num); ok && (bits == 64 || u <= 1<<bits-1) {
			out.SetUint(u)
			return out
		}
	}
	d.rangeError(c, n, s)
	return out
}

// signed returns the integral value of num, accepting floats with a zero
// fraction.
func signed(num value.Number) (int64, bool) {
	if i, ok := num.Int64(); ok {
		return i, true
	}
	f := num.Float64()
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return int64(f), true
	}
	return 0, false
}

func unsigned(num value.Number) (uint64, bool) {
	if u, ok := num.Uint64(); ok {
		return u, true
	}
	f := num.Float64()
	if f == math.Trunc(f) && f >= 0 && f < math.MaxUint64 {
		return uint64(f), true
	}
	return 0, false
}

func (d *decoder) rangeError(c *Collector, n *value.Node, s *shape.Shape) {
	lo, hi, _ := s.Range()
	lit := n.Number().String()
	name := c.path.Last()
	if name == "" {
		name = "value"
	}
	c.AddError(name,
		d.tr.Message(i18n.ReasonRange, lit, s.TypeName(), lo, hi),
		ExpectedOrActual{Type: s.TypeName(), Format: "integer in range " + lo + " to " + hi},
		ExpectedOrActual{Type: n.KindName(), Format: lit},
	)
}

func (d *decoder) timestamp(c *Collector, n *value.Node, s *shape.Shape) reflect.Value {
	out := reflect.New(s.Type).Elem()
	if n.Kind() != value.KindString {
		d.typeError(c, n, s)
		return out
	}
	t, err := parseRFC3339(n.Str())
	if err != nil {
		name := c.path.Last()
		if name == "" {
			name = "value"
		}
		c.AddError(name,
			d.tr.Message(i18n.ReasonTime, n.Str()),
			ExpectedOrActual{Type: s.TypeName(), Format: s.Format()},
			ExpectedOrActual{Type: "string", Format: n.Str()},
		)
		return out
	}
	out.Set(reflect.ValueOf(t).Convert(s.Type))
	return out
}

func parseRFC3339(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// optional decodes the element in the same scope; null and absence yield the
// zero value of the optional type.
func (d *decoder) optional(c *Collector, n *value.Node, s *shape.Shape, depth int) (reflect.Value, error) {
	out := reflect.New(s.Type).Elem()
	if n.IsNull() {
		return out, nil
	}
	ev, err := d.into(c, n, s.Elem, depth)
	if err != nil {
		return out, err
	}
	if err := assign(out, ev, c); err != nil {
		return out, err
	}
	return out, nil
}

// enter checks the nesting limit before descending into a container.
func (d *decoder) enter(c *Collector, depth int) error {
	if d.maxDepth > 0 && depth+1 > d.maxDepth {
		return &depthError{pointer: c.CurrentPointer(), limit: d.maxDepth}
	}
	return nil
}

func (d *decoder) sequence(c *Collector, n *value.Node, s *shape.Shape, depth int) (reflect.Value, error) {
	if n.Kind() != value.KindArray {
		d.typeError(c, n, s)
		return reflect.Zero(s.Type), nil
	}
	if err := d.enter(c, depth); err != nil {
		return reflect.Zero(s.Type), err
	}
	out := reflect.MakeSlice(s.Type, n.Len(), n.Len())
	for i, item := range n.Items() {
		ev, err := d.child(c, strconv.Itoa(i), item, s.Elem, depth+1)
		if err != nil {
			return out, err
		}
		if err := assign(out.Index(i), ev, c); err != nil {
			return out, err
		}
	}
	return out, nil
}

func (d *decoder) mapping(c *Collector, n *value.Node, s *shape.Shape, depth int) (reflect.Value, error) {
	if n.Kind() != value.KindObject {
		d.typeError(c, n, s)
		return reflect.Zero(s.Type), nil
	}
	if err := d.enter(c, depth); err != nil {
		return reflect.Zero(s.Type), err
	}
	out := reflect.MakeMapWithSize(s.Type, n.Len())
	elemType := s.Type.Elem()
	for _, m := range n.Members() {
		ev, err := d.child(c, m.Key, m.Value, s.Elem, depth+1)
		if err != nil {
			return out, err
		}
		slot := reflect.New(elemType).Elem()
		if err := assign(slot, ev, c); err != nil {
			return out, err
		}
		out.SetMapIndex(reflect.ValueOf(m.Key).Convert(s.Type.Key()), slot)
	}
	return out, nil
}

// record decodes declared fields present in the object, then reports every
// absent required field at the record's own pointer. Unknown members are
// ignored.
func (d *decoder) record(c *Collector, n *value.Node, s *shape.Shape, depth int) (reflect.Value, error) {
	out := reflect.New(s.Type).Elem()
	if n.Kind() != value.KindObject {
		d.typeError(c, n, s)
		return out, nil
	}
	if err := d.enter(c, depth); err != nil {
		return out, err
	}
	if out.Kind() == reflect.Map {
		out.Set(reflect.MakeMapWithSize(s.Type, len(s.Fields)))
	}
	var missing []string
	for _, f := range s.Fields {
		member, ok := n.Get(f.Name)
		if !ok {
			if !f.Optional() {
				missing = append(missing, f.Name)
			}
			continue
		}
		fv, err := d.child(c, f.Name, member, f.Shape, depth+1)
		if err != nil {
			return out, err
		}
		if out.Kind() == reflect.Map {
			if f.Optional() && fv.Kind() == reflect.Pointer {
				if fv.IsNil() {
					fv = reflect.Value{}
				} else {
					fv = fv.Elem()
				}
			}
			slot := reflect.New(s.Type.Elem()).Elem()
			if err := assign(slot, fv, c); err != nil {
				return out, err
			}
			out.SetMapIndex(reflect.ValueOf(f.Name), slot)
			continue
		}
		if len(f.Index) == 0 {
			return out, &conversionError{pointer: c.CurrentPointer(), msg: "field " + f.Name + " has no index into " + s.Type.String()}
		}
		if err := assign(fieldByIndex(out, f.Index), fv, c); err != nil {
			return out, err
		}
	}
	for _, name := range missing {
		c.AddError(name,
			d.tr.Message(i18n.ReasonMissing),
			ExpectedOrActual{Type: "required", Format: "field"},
			ExpectedOrActual{Type: "missing", Format: "undefined"},
		)
	}
	return out, nil
}

// dynamic decodes without a target kind, following the node: integers become
// int64 (uint64 above its range), other numbers float64, arrays []any and
// objects map[string]any.
func (d *decoder) dynamic(c *Collector, n *value.Node, s *shape.Shape, depth int) (reflect.Value, error) {
	out := reflect.New(s.Type).Elem()
	var v reflect.Value
	switch n.Kind() {
	case value.KindNull:
		return out, nil
	case value.KindBool:
		v = reflect.ValueOf(n.Bool())
	case value.KindString:
		v = reflect.ValueOf(n.Str())
	case value.KindNumber:
		num := n.Number()
		if i, ok := num.Int64(); ok {
			v = reflect.ValueOf(i)
		} else if u, ok := num.Uint64(); ok {
			v = reflect.ValueOf(u)
		} else {
			v = reflect.ValueOf(num.Float64())
		}
	case value.KindArray:
		av, err := d.sequence(c, n, anyArray, depth)
		if err != nil {
			return out, err
		}
		v = av
	case value.KindObject:
		mv, err := d.mapping(c, n, anyMap, depth)
		if err != nil {
			return out, err
		}
		v = mv
	}
	if err := assign(out, v, c); err != nil {
		return out, err
	}
	return out, nil
}

// assign stores v into dst, dereferencing or allocating one pointer level
// when the optional wrapper requires it.
func assign(dst, v reflect.Value, c *Collector) error {
	if !v.IsValid() {
		return nil
	}
	vt, dt := v.Type(), dst.Type()
	switch {
	case vt.AssignableTo(dt):
		dst.Set(v)
	case dt.Kind() == reflect.Pointer && vt.AssignableTo(dt.Elem()):
		p := reflect.New(dt.Elem())
		p.Elem().Set(v)
		dst.Set(p)
	case vt.ConvertibleTo(dt) && vt.Kind() == dt.Kind():
		dst.Set(v.Convert(dt))
	default:
		return &conversionError{
			pointer: c.CurrentPointer(),
			msg:     fmt.Sprintf("cannot assign %s to %s", vt, dt),
		}
	}
	return nil
}

// fieldByIndex is reflect.Value.FieldByIndex that allocates nil embedded
// pointers on the way.
func fieldByIndex(v reflect.Value, index []int) reflect.Value {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v
}
