package serdify_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serdify "github.com/reoring/serdify"
	"github.com/reoring/serdify/i18n"
)

func TestPath_Pointer(t *testing.T) {
	assert.Equal(t, "#", serdify.Path(nil).Pointer())
	assert.Equal(t, "#/users/2/age", serdify.Path{"users", "2", "age"}.Pointer())
	assert.Equal(t, "#/a~1b/c~0d", serdify.Path{"a/b", "c~d"}.Pointer())
	assert.Equal(t, "#/", serdify.Path{""}.Pointer())
}

func TestPath_PushDoesNotAlias(t *testing.T) {
	base := serdify.Path{"a"}
	x := base.Push("x")
	y := base.Push("y")
	assert.Equal(t, serdify.Path{"a", "x"}, x)
	assert.Equal(t, serdify.Path{"a", "y"}, y)
	assert.Equal(t, serdify.Path{"a"}, base)

	popped := x.Pop()
	again := popped.Push("z")
	assert.Equal(t, serdify.Path{"a", "x"}, x)
	assert.Equal(t, serdify.Path{"a", "z"}, again)

	assert.Empty(t, serdify.Path(nil).Pop())
	assert.Equal(t, "", serdify.Path(nil).Last())
	assert.Equal(t, "x", x.Last())
}

func TestCollector_PathStack(t *testing.T) {
	c := serdify.NewCollector()
	assert.Equal(t, "#", c.CurrentPointer())

	c.PushPath("users")
	c.PushPath("0")
	assert.Equal(t, "#/users/0", c.CurrentPointer())

	snapshot := c.Path()
	c.PopPath()
	assert.Equal(t, "#/users", c.CurrentPointer())
	assert.Equal(t, serdify.Path{"users", "0"}, snapshot)

	c.PopPath()
	c.PopPath()
	assert.Equal(t, "#", c.CurrentPointer())
}

func TestCollector_RecordsAtCurrentPointer(t *testing.T) {
	c := serdify.NewCollectorWithPath(serdify.Path{"items", "3"})
	assert.False(t, c.HasErrors())

	c.AddError("price", "Expected number, got string",
		serdify.ExpectedOrActual{Type: "f64", Format: "number"},
		serdify.ExpectedOrActual{Type: "string", Format: "string"})
	require.True(t, c.HasErrors())

	errs := c.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "#/items/3", errs[0].Pointer)
	assert.Equal(t, "price", errs[0].Name)

	errs[0].Name = "changed"
	assert.Equal(t, "price", c.Errors()[0].Name)
}

func TestCollector_MergeKeepsOrder(t *testing.T) {
	parent := serdify.NewCollector()
	parent.AddError("first", "r1", serdify.ExpectedOrActual{}, serdify.ExpectedOrActual{})

	child := serdify.NewCollectorWithPath(parent.Path().Push("nested"))
	child.AddError("second", "r2", serdify.ExpectedOrActual{}, serdify.ExpectedOrActual{})
	child.AddError("third", "r3", serdify.ExpectedOrActual{}, serdify.ExpectedOrActual{})

	parent.Merge(child)
	parent.Merge(nil)

	var names, ptrs []string
	for _, ip := range parent.Errors() {
		names = append(names, ip.Name)
		ptrs = append(ptrs, ip.Pointer)
	}
	assert.Equal(t, []string{"first", "second", "third"}, names)
	assert.Equal(t, []string{"#", "#/nested", "#/nested"}, ptrs)
}

func TestCollector_IntoError(t *testing.T) {
	t.Cleanup(func() { i18n.SetTranslator(nil) })

	c := serdify.NewCollector()
	c.AddError("age", "missing required field",
		serdify.ExpectedOrActual{Type: "required", Format: "field"},
		serdify.ExpectedOrActual{Type: "missing", Format: "undefined"})

	e := c.IntoError()
	assert.Equal(t, "Your request parameters didn't validate.", e.Title)
	assert.Equal(t, 400, e.Status)
	assert.Len(t, e.InvalidParams, 1)
	assert.True(t, errors.Is(e, serdify.ErrValidation))
	assert.False(t, errors.Is(e, serdify.ErrSyntax))

	i18n.SetLanguage("ja")
	assert.Equal(t, "リクエストパラメータの検証に失敗しました。", c.IntoError().Title)
}
