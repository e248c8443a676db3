package value_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/serdify/value"
)

func TestNumber_Conversions(t *testing.T) {
	cases := []struct {
		lit      value.Number
		integer  bool
		i64      int64
		i64ok    bool
		u64ok    bool
		kindName string
	}{
		{"0", true, 0, true, true, "integer"},
		{"-1", true, -1, true, false, "integer"},
		{"9223372036854775807", true, math.MaxInt64, true, true, "integer"},
		{"18446744073709551615", true, 0, false, true, "integer"},
		{"18446744073709551616", true, 0, false, false, "number"},
		{"1.5", false, 0, false, false, "number"},
		{"1e3", false, 0, false, false, "number"},
	}
	for _, tc := range cases {
		t.Run(string(tc.lit), func(t *testing.T) {
			assert.Equal(t, tc.integer, tc.lit.IsInteger())
			i, ok := tc.lit.Int64()
			assert.Equal(t, tc.i64ok, ok)
			if ok {
				assert.Equal(t, tc.i64, i)
			}
			_, ok = tc.lit.Uint64()
			assert.Equal(t, tc.u64ok, ok)
			assert.Equal(t, tc.kindName, tc.lit.KindName())
		})
	}
	assert.Equal(t, 1000.0, value.Number("1e3").Float64())
	assert.True(t, math.IsInf(value.Number("1e400").Float64(), 1))
}

func TestObj_LastWriteWinsInFirstPosition(t *testing.T) {
	n := value.Obj(
		value.M("a", value.Int(1)),
		value.M("b", value.Str("x")),
		value.M("a", value.Int(2)),
		value.M("c", nil),
	)
	require.Equal(t, 3, n.Len())
	keys := []string{}
	for _, m := range n.Members() {
		keys = append(keys, m.Key)
	}
	assert.Equal(t, []string{"a", "b", "c"}, keys)

	a, ok := n.Get("a")
	require.True(t, ok)
	assert.Equal(t, value.Number("2"), a.Number())

	c, ok := n.Get("c")
	require.True(t, ok)
	assert.True(t, c.IsNull())

	assert.False(t, n.Has("d"))
	_, ok = value.Int(1).Get("a")
	assert.False(t, ok)
}

func TestNode_KindNames(t *testing.T) {
	assert.Equal(t, "null", value.Null().KindName())
	assert.Equal(t, "boolean", value.Bool(true).KindName())
	assert.Equal(t, "integer", value.Int(-3).KindName())
	assert.Equal(t, "number", value.Float(0.25).KindName())
	assert.Equal(t, "string", value.Str("").KindName())
	assert.Equal(t, "array", value.Arr().KindName())
	assert.Equal(t, "object", value.Obj().KindName())
}

func TestNode_Interface(t *testing.T) {
	n := value.Obj(
		value.M("list", value.Arr(value.Int(1), value.Bool(false), nil)),
		value.M("name", value.Str("x")),
	)
	assert.Equal(t, map[string]any{
		"list": []any{json.Number("1"), false, nil},
		"name": "x",
	}, n.Interface())
}

func TestEqual(t *testing.T) {
	a := value.Obj(value.M("x", value.Int(1)), value.M("y", value.Arr(value.Str("s"))))
	b := value.Obj(value.M("y", value.Arr(value.Str("s"))), value.M("x", value.Int(1)))
	assert.True(t, value.Equal(a, b))

	assert.False(t, value.Equal(value.Num("1"), value.Num("1.0")))
	assert.False(t, value.Equal(value.Arr(value.Int(1)), value.Arr(value.Int(1), value.Int(2))))
	assert.False(t, value.Equal(value.Null(), value.Bool(false)))
	assert.True(t, value.Equal(value.Null(), value.Null()))
}
