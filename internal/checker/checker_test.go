package checker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serdify "github.com/reoring/serdify"
	"github.com/reoring/serdify/shape"
)

var itemShape = shape.Object("Item",
	shape.F("sku", shape.String()),
	shape.F("qty", shape.Uint8()),
)

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestCheckFiles(t *testing.T) {
	dir := t.TempDir()
	good := write(t, dir, "good.json", `{"sku":"a","qty":1}`)
	bad := write(t, dir, "bad.yaml", "sku: b\nqty: 300\n")
	broken := write(t, dir, "broken.json", `{"sku":`)
	missing := filepath.Join(dir, "missing.json")

	c, err := New(Options{Shape: itemShape, Workers: 2})
	require.NoError(t, err)
	rs, err := c.CheckFiles(context.Background(), []string{good, bad, broken, missing})
	require.NoError(t, err)
	require.Len(t, rs, 4)

	assert.True(t, rs[0].OK)
	assert.Equal(t, good, rs[0].File)

	require.NotNil(t, rs[1].Problem)
	assert.Equal(t, "#/qty", rs[1].Problem.InvalidParams[0].Pointer)
	assert.Equal(t, bad, rs[1].Problem.Instance)

	require.NotNil(t, rs[2].Problem)
	assert.Equal(t, serdify.KindSyntax, rs[2].Problem.Kind())

	assert.False(t, rs[3].OK)
	assert.NotEmpty(t, rs[3].Error)
	assert.Nil(t, rs[3].Problem)

	assert.True(t, Failed(rs))
	assert.False(t, Failed(rs[:1]))
}

func TestCheck_Select(t *testing.T) {
	c, err := New(Options{Shape: itemShape, Select: ".items[]"})
	require.NoError(t, err)

	rs := c.Check(context.Background(), "order.json",
		[]byte(`{"items":[{"sku":"a","qty":1},{"sku":"b","qty":256},{"qty":2}]}`))
	require.Len(t, rs, 3)

	assert.True(t, rs[0].OK)
	require.NotNil(t, rs[0].Index)
	assert.Equal(t, 0, *rs[0].Index)

	require.NotNil(t, rs[1].Problem)
	assert.Equal(t, "#/qty", rs[1].Problem.InvalidParams[0].Pointer)
	assert.Equal(t, "order.json[1]", rs[1].Problem.Instance)

	require.NotNil(t, rs[2].Problem)
	assert.Equal(t, "sku", rs[2].Problem.InvalidParams[0].Name)
}

func TestCheck_SelectRuntimeError(t *testing.T) {
	c, err := New(Options{Shape: itemShape, Select: ".items[]"})
	require.NoError(t, err)
	rs := c.Check(context.Background(), "x.json", []byte(`{"items":1}`))
	require.Len(t, rs, 1)
	assert.NotEmpty(t, rs[0].Error)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
	_, err = New(Options{Shape: itemShape, Select: ".["})
	assert.ErrorContains(t, err, "invalid jq expression")
}

func TestCheckFiles_Cancelled(t *testing.T) {
	c, err := New(Options{Shape: itemShape})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.CheckFiles(ctx, []string{"a.json"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsYAML(t *testing.T) {
	assert.True(t, IsYAML("a.YML"))
	assert.True(t, IsYAML("dir/a.yaml"))
	assert.False(t, IsYAML("a.json"))
}
