package shape_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/serdify/shape"
)

const userShape = `
type: struct
title: User
fields:
  - name: name
    type: string
  - name: age
    type: u8
  - name: tags
    type: array
    items: {type: string}
  - name: scores
    type: map
    values: {type: integer}
  - name: nickname
    type: string
    optional: true
  - name: address
    type: object
    fields:
      - name: city
        type: string
`

func TestParseYAML(t *testing.T) {
	s, err := shape.ParseYAML([]byte(userShape))
	require.NoError(t, err)
	assert.Equal(t, "User", s.TypeName())
	require.Len(t, s.Fields, 6)

	age, _ := s.Field("age")
	assert.Equal(t, shape.KindUint8, age.Shape.Kind)

	tags, _ := s.Field("tags")
	assert.Equal(t, shape.KindString, tags.Shape.Elem.Kind)

	scores, _ := s.Field("scores")
	assert.Equal(t, shape.KindInt64, scores.Shape.Elem.Kind)

	nick, _ := s.Field("nickname")
	assert.True(t, nick.Optional())

	addr, _ := s.Field("address")
	assert.Equal(t, shape.KindStruct, addr.Shape.Kind)
	assert.Equal(t, "struct", addr.Shape.TypeName())
}

func TestParseYAML_Errors(t *testing.T) {
	cases := map[string]string{
		"missing type":    "title: x",
		"unknown type":    "type: decimal",
		"array no items":  "type: array",
		"map no values":   "type: map",
		"field no name":   "type: struct\nfields:\n  - type: string",
		"duplicate field": "type: struct\nfields:\n  - {name: a, type: string}\n  - {name: a, type: bool}",
		"bad yaml":        "type: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := shape.ParseYAML([]byte(doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "shape: ")
		})
	}

	_, err := shape.ParseYAML([]byte("type: struct\nfields:\n  - {name: a, type: string}\n  - {name: b, type: nope}"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "$.fields[1]")
}
