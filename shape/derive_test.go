package shape_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/serdify/shape"
)

type address struct {
	City string `json:"city"`
	Zip  *string
}

type person struct {
	Name     string            `json:"name"`
	Age      uint8             `json:"age,omitempty"`
	Scores   []int16           `json:"scores"`
	Labels   map[string]string `json:"labels"`
	Home     address           `json:"home"`
	Born     time.Time         `json:"born"`
	Extra    any               `json:"extra"`
	Count    int               `json:"count"`

	internal string
	Skip     bool `json:"-"`
}

func TestOf_Struct(t *testing.T) {
	s, err := shape.Of[person]()
	require.NoError(t, err)
	assert.Equal(t, shape.KindStruct, s.Kind)
	assert.Equal(t, "person", s.TypeName())
	assert.Equal(t, reflect.TypeOf(person{}), s.Type)

	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"name", "age", "scores", "labels", "home", "born", "extra", "count"}, names)

	age, ok := s.Field("age")
	require.True(t, ok)
	assert.Equal(t, shape.KindUint8, age.Shape.Kind)
	assert.False(t, age.Optional())

	scores, _ := s.Field("scores")
	assert.Equal(t, shape.KindArray, scores.Shape.Kind)
	assert.Equal(t, shape.KindInt16, scores.Shape.Elem.Kind)

	labels, _ := s.Field("labels")
	assert.Equal(t, shape.KindMap, labels.Shape.Kind)

	born, _ := s.Field("born")
	assert.Equal(t, shape.KindTime, born.Shape.Kind)

	count, _ := s.Field("count")
	assert.Equal(t, shape.KindInt64, count.Shape.Kind)
	assert.Equal(t, reflect.TypeOf(0), count.Shape.Type)

	home, _ := s.Field("home")
	zip, ok := home.Shape.Field("Zip")
	require.True(t, ok)
	assert.True(t, zip.Optional())
	assert.Equal(t, shape.KindString, zip.Shape.Elem.Kind)

	_, ok = s.Field("internal")
	assert.False(t, ok)
	_, ok = s.Field("Skip")
	assert.False(t, ok)
}

func TestOf_Naming(t *testing.T) {
	type cfg struct {
		MaxRetries int
		BaseURL    string `json:"base"`
	}
	snake, err := shape.Of[cfg](shape.WithNaming(shape.NamingSnake))
	require.NoError(t, err)
	assert.Equal(t, "max_retries", snake.Fields[0].Name)
	assert.Equal(t, "base", snake.Fields[1].Name)

	camel, err := shape.Of[cfg](shape.WithNaming(shape.NamingCamel))
	require.NoError(t, err)
	assert.Equal(t, "maxRetries", camel.Fields[0].Name)

	plain, err := shape.Of[cfg]()
	require.NoError(t, err)
	assert.Equal(t, "MaxRetries", plain.Fields[0].Name)

	n, err := shape.ParseNaming("snake")
	require.NoError(t, err)
	assert.Equal(t, shape.NamingSnake, n)
	_, err = shape.ParseNaming("kebab")
	assert.Error(t, err)
}

type node struct {
	Value    int32  `json:"value"`
	Children []node `json:"children"`
	Parent   *node  `json:"parent"`
}

func TestOf_Recursive(t *testing.T) {
	s, err := shape.Of[node]()
	require.NoError(t, err)
	children, _ := s.Field("children")
	assert.Same(t, s, children.Shape.Elem)
	parent, _ := s.Field("parent")
	assert.Same(t, s, parent.Shape.Elem)
}

func TestOf_Embedded(t *testing.T) {
	type Meta struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	type doc struct {
		Meta
		Name string `json:"name"`
	}
	s, err := shape.Of[doc]()
	require.NoError(t, err)
	require.Len(t, s.Fields, 2)
	assert.Equal(t, "name", s.Fields[0].Name)
	assert.Equal(t, []int{1}, s.Fields[0].Index)
	assert.Equal(t, "id", s.Fields[1].Name)
	assert.Equal(t, []int{0, 0}, s.Fields[1].Index)
}

type Audit struct {
	By string `json:"by"`
}

type unexportedAudit struct {
	By string `json:"by"`
}

func TestOf_EmbeddedPointer(t *testing.T) {
	type record struct {
		*Audit
		Y int
	}
	s, err := shape.Of[record]()
	require.NoError(t, err)
	by, ok := s.Field("by")
	require.True(t, ok)
	assert.Equal(t, []int{0, 0}, by.Index)
	assert.Equal(t, shape.KindString, by.Shape.Kind)

	type hidden struct {
		*unexportedAudit
		Y int
	}
	_, err = shape.Of[hidden]()
	assert.True(t, errors.Is(err, shape.ErrUnsupportedType))

	type selfEmbedding struct {
		*selfEmbedding
		Z int
	}
	s, err = shape.Of[selfEmbedding]()
	require.NoError(t, err)
	require.Len(t, s.Fields, 1)
	assert.Equal(t, "Z", s.Fields[0].Name)
}

func TestOf_Unsupported(t *testing.T) {
	for _, fn := range []func() error{
		func() error { _, err := shape.Of[map[int]string](); return err },
		func() error { _, err := shape.Of[chan int](); return err },
		func() error { _, err := shape.Of[[3]int](); return err },
		func() error { _, err := shape.Of[struct{ F func() }](); return err },
		func() error { _, err := shape.Of[interface{ M() }](); return err },
	} {
		assert.True(t, errors.Is(fn(), shape.ErrUnsupportedType))
	}
}

func TestOf_Cached(t *testing.T) {
	a, err := shape.Of[person]()
	require.NoError(t, err)
	b, err := shape.Of[person]()
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestShape_Descriptions(t *testing.T) {
	cases := []struct {
		s      *shape.Shape
		name   string
		format string
	}{
		{shape.Bool(), "bool", "boolean"},
		{shape.String(), "string", "string"},
		{shape.Uint8(), "u8", "integer"},
		{shape.Int64(), "i64", "integer"},
		{shape.Float32(), "f32", "number"},
		{shape.Array(shape.String()), "array", "array"},
		{shape.Map(shape.Bool()), "map", "object"},
		{shape.Object("User"), "User", "object"},
		{shape.Optional(shape.Uint16()), "option", "integer"},
		{shape.Time(), "time", "date-time"},
		{shape.Any(), "any", "any"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.name, tc.s.TypeName())
		assert.Equal(t, tc.format, tc.s.Format(), tc.name)
	}

	lo, hi, ok := shape.Int8().Range()
	assert.True(t, ok)
	assert.Equal(t, "-128", lo)
	assert.Equal(t, "127", hi)
	_, hi, _ = shape.Uint64().Range()
	assert.Equal(t, "18446744073709551615", hi)
	_, _, ok = shape.Float64().Range()
	assert.False(t, ok)

	assert.Equal(t, reflect.TypeOf((*uint16)(nil)), shape.Optional(shape.Uint16()).Type)
	assert.Equal(t, reflect.TypeOf([]string(nil)), shape.Optional(shape.Array(shape.String())).Type)
}

func TestParseKind(t *testing.T) {
	k, ok := shape.ParseKind("u32")
	assert.True(t, ok)
	assert.Equal(t, shape.KindUint32, k)
	assert.True(t, k.IsUnsigned())
	assert.True(t, k.IsInteger())
	assert.False(t, k.IsSigned())
	assert.True(t, shape.KindFloat64.IsFloat())
	_, ok = shape.ParseKind("decimal")
	assert.False(t, ok)
}
