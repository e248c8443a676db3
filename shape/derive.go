package shape

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/iancoleman/strcase"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrUnsupportedType is returned when a Go type has no shape equivalent
// (channels, funcs, complex numbers, fixed-size arrays, non-string map keys,
// non-empty interfaces).
var ErrUnsupportedType = errors.New("shape: unsupported type")

// Naming selects the member name of struct fields without a json tag.
type Naming int

const (
	NamingGo    Naming = iota // Go field name as is
	NamingSnake               // snake_case
	NamingCamel               // lowerCamelCase
)

func (n Naming) apply(name string) string {
	switch n {
	case NamingSnake:
		return strcase.ToSnake(name)
	case NamingCamel:
		return strcase.ToLowerCamel(name)
	}
	return name
}

// ParseNaming maps "go", "snake" and "camel" to a Naming.
func ParseNaming(s string) (Naming, error) {
	switch strings.ToLower(s) {
	case "", "go":
		return NamingGo, nil
	case "snake":
		return NamingSnake, nil
	case "camel":
		return NamingCamel, nil
	}
	return NamingGo, fmt.Errorf("shape: unknown naming %q", s)
}

// Option tunes derivation.
type Option func(*deriveOpts)

type deriveOpts struct {
	naming Naming
}

// WithNaming sets the naming rule for untagged struct fields.
func WithNaming(n Naming) Option { return func(o *deriveOpts) { o.naming = n } }

type cacheKey struct {
	t      reflect.Type
	naming Naming
}

const cacheSize = 512

var cache = func() *lru.Cache[cacheKey, *Shape] {
	c, err := lru.New[cacheKey, *Shape](cacheSize)
	if err != nil {
		panic(err)
	}
	return c
}()

// Of derives the shape of T.
func Of[T any](opts ...Option) (*Shape, error) {
	return For(reflect.TypeOf((*T)(nil)).Elem(), opts...)
}

// For derives the shape of t. Results are cached per type and naming rule.
func For(t reflect.Type, opts ...Option) (*Shape, error) {
	var o deriveOpts
	for _, fn := range opts {
		fn(&o)
	}
	key := cacheKey{t: t, naming: o.naming}
	if s, ok := cache.Get(key); ok {
		return s, nil
	}
	d := deriver{naming: o.naming, seen: make(map[reflect.Type]*Shape)}
	s, err := d.derive(t)
	if err != nil {
		return nil, err
	}
	cache.Add(key, s)
	return s, nil
}

type deriver struct {
	naming Naming
	seen   map[reflect.Type]*Shape // structs under construction, for recursive types
}

func (d *deriver) derive(t reflect.Type) (*Shape, error) {
	if t == timeType {
		return &Shape{Kind: KindTime, Type: t}, nil
	}
	switch t.Kind() {
	case reflect.Bool:
		return &Shape{Kind: KindBool, Type: t}, nil
	case reflect.String:
		return &Shape{Kind: KindString, Type: t}, nil
	case reflect.Int8:
		return &Shape{Kind: KindInt8, Type: t}, nil
	case reflect.Int16:
		return &Shape{Kind: KindInt16, Type: t}, nil
	case reflect.Int32:
		return &Shape{Kind: KindInt32, Type: t}, nil
	case reflect.Int, reflect.Int64:
		return &Shape{Kind: KindInt64, Type: t}, nil
	case reflect.Uint8:
		return &Shape{Kind: KindUint8, Type: t}, nil
	case reflect.Uint16:
		return &Shape{Kind: KindUint16, Type: t}, nil
	case reflect.Uint32:
		return &Shape{Kind: KindUint32, Type: t}, nil
	case reflect.Uint, reflect.Uint64:
		return &Shape{Kind: KindUint64, Type: t}, nil
	case reflect.Float32:
		return &Shape{Kind: KindFloat32, Type: t}, nil
	case reflect.Float64:
		return &Shape{Kind: KindFloat64, Type: t}, nil
	case reflect.Interface:
		if t.NumMethod() != 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
		}
		return &Shape{Kind: KindAny, Type: t}, nil
	case reflect.Slice:
		elem, err := d.derive(t.Elem())
		if err != nil {
			return nil, err
		}
		return &Shape{Kind: KindArray, Elem: elem, Type: t}, nil
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: %s (map keys must be strings)", ErrUnsupportedType, t)
		}
		elem, err := d.derive(t.Elem())
		if err != nil {
			return nil, err
		}
		return &Shape{Kind: KindMap, Elem: elem, Type: t}, nil
	case reflect.Pointer:
		elem, err := d.derive(t.Elem())
		if err != nil {
			return nil, err
		}
		return &Shape{Kind: KindOptional, Elem: elem, Type: t}, nil
	case reflect.Struct:
		return d.deriveStruct(t)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
}

func (d *deriver) deriveStruct(t reflect.Type) (*Shape, error) {
	if s, ok := d.seen[t]; ok {
		return s, nil
	}
	name := t.Name()
	if name == "" {
		name = "struct"
	}
	s := &Shape{Kind: KindStruct, Name: name, Type: t}
	d.seen[t] = s
	fields, err := d.fields(t, nil, map[reflect.Type]bool{t: true})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t, err)
	}
	s.Fields = fields
	return s, nil
}

// fields walks exported fields, flattening untagged embedded structs and
// pointers to structs the way encoding/json does. Outer fields shadow promoted
// ones with the same name. An embedded pointer to an unexported struct cannot
// be allocated through reflection, so promoting fields through one is
// unsupported.
func (d *deriver) fields(t reflect.Type, prefix []int, chain map[reflect.Type]bool) ([]Field, error) {
	var out []Field
	var promoted []Field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		key, skip := d.memberName(sf)
		if skip {
			continue
		}
		index := append(append([]int(nil), prefix...), i)
		if et, ok := embeddedStruct(sf); ok {
			if chain[et] {
				continue
			}
			chain[et] = true
			inner, err := d.fields(et, index, chain)
			delete(chain, et)
			if err != nil {
				return nil, err
			}
			if sf.Type.Kind() == reflect.Pointer && !sf.IsExported() && len(inner) > 0 {
				return nil, fmt.Errorf("%w: embedded pointer to unexported struct %s", ErrUnsupportedType, sf.Type)
			}
			promoted = append(promoted, inner...)
			continue
		}
		if !sf.IsExported() {
			continue
		}
		fs, err := d.derive(sf.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", sf.Name, err)
		}
		out = append(out, Field{Name: key, Shape: fs, Index: index})
	}
	for _, p := range promoted {
		if !hasField(out, p.Name) {
			out = append(out, p)
		}
	}
	return out, nil
}

// embeddedStruct reports the struct type whose fields sf promotes.
func embeddedStruct(sf reflect.StructField) (reflect.Type, bool) {
	if !sf.Anonymous || sf.Tag.Get("json") != "" {
		return nil, false
	}
	t := sf.Type
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || t == timeType {
		return nil, false
	}
	return t, true
}

// memberName resolves the JSON member name of a struct field: json tag name,
// else the field name under the naming rule; "-" skips the field.
func (d *deriver) memberName(sf reflect.StructField) (string, bool) {
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "", true
		}
		name := jt
		if i := strings.IndexByte(jt, ','); i >= 0 {
			name = jt[:i]
		}
		if name != "" {
			return name, false
		}
	}
	return d.naming.apply(sf.Name), false
}

func hasField(fs []Field, name string) bool {
	for _, f := range fs {
		if f.Name == name {
			return true
		}
	}
	return false
}
