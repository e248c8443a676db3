package json_test

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eng "github.com/reoring/serdify/internal/engine"
	jsonsrc "github.com/reoring/serdify/source/json"
)

func drain(t *testing.T, src eng.TokenSource) ([]eng.Token, error) {
	t.Helper()
	var out []eng.Token
	for {
		tok, err := src.NextToken()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return out, err
		}
		out = append(out, tok)
	}
}

func TestNextToken_KindsAndOffsets(t *testing.T) {
	data := []byte(`{"k": "v", "n": [1, 2.5e3, true, null], "s": "k"}`)
	toks, err := drain(t, jsonsrc.NewBytes(data))
	require.NoError(t, err)

	kinds := make([]eng.Kind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
		assert.GreaterOrEqual(t, tok.Offset, int64(0))
	}
	assert.Equal(t, []eng.Kind{
		eng.KindBeginObject,
		eng.KindKey, eng.KindString,
		eng.KindKey, eng.KindBeginArray, eng.KindNumber, eng.KindNumber, eng.KindBool, eng.KindNull, eng.KindEndArray,
		eng.KindKey, eng.KindString,
		eng.KindEndObject,
	}, kinds)

	assert.Equal(t, "2.5e3", toks[6].Number)
	assert.Equal(t, "k", toks[11].String)
	assert.Equal(t, int64(0), toks[0].Offset)
	assert.Equal(t, int64(1), toks[1].Offset)
	assert.Equal(t, int64(6), toks[2].Offset)
	assert.Equal(t, int64(16), toks[4].Offset)
	assert.Equal(t, int64(len(data)-1), toks[12].Offset)
}

func TestNextToken_SyntaxErrorHasAbsoluteOffset(t *testing.T) {
	_, err := drain(t, jsonsrc.NewBytes([]byte(`{"a": [1, 2,]}`)))
	var se *eng.SyntaxError
	require.True(t, errors.As(err, &se), "got %v", err)
	assert.Equal(t, int64(12), se.Offset)
	assert.Contains(t, se.Msg, "invalid character ']'")
}

func TestNextToken_TruncatedInput(t *testing.T) {
	doc, err := eng.BuildDocument(jsonsrc.NewBytes([]byte(`{"a": "b`)))
	assert.Nil(t, doc)
	var se *eng.SyntaxError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, eng.CodeEOF, se.Code)
}
