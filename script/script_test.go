package script

import (
	"context"
	"testing"

	"github.com/deepnoodle-ai/mirror/errz"
	"github.com/deepnoodle-ai/mirror/types"
	"github.com/risor-io/risor/compiler"
	"github.com/risor-io/risor/object"
	"github.com/risor-io/risor/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shapes = `
Shape := {"name": "shape", "_secret": 1, "area": func(self) { return 0 }, "describe": func(self) { return self["name"] }}
Point := {"__super__": Shape, "x": 0, "y": 0, "tags": [], "init": func(self, x=0, y=0) { self["x"] = x; self["y"] = y }, "sum": func(self) { return self["x"] + self["y"] }, "scale": func(self, k=1) { self["x"] = self["x"] * k; self["y"] = self["y"] * k; return self }, "area": func(self) { return self["x"] * self["y"] }, "_hidden": func(self) { return 1 }, "fail": func(self) { return self["x"] + "boom" }}
Loop := {"v": 1}
Loop["__super__"] = Loop
notAClass := 42
`

func run(t *testing.T, src string) *Runtime {
	t.Helper()
	ctx := context.Background()
	program, err := parser.Parse(ctx, src)
	require.NoError(t, err)
	code, err := compiler.Compile(program)
	require.NoError(t, err)
	rt, err := Run(ctx, "shapes", code, nil)
	require.NoError(t, err)
	return rt
}

func class(t *testing.T, rt *Runtime, name string) *Class {
	t.Helper()
	c, err := rt.Class(name)
	require.NoError(t, err)
	return c
}

func names[T interface{ Name() string }](items []T) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Name()
	}
	return out
}

func TestRuntimeClass(t *testing.T) {
	rt := run(t, shapes)

	point := class(t, rt, "Point")
	assert.Equal(t, "Point", point.Name())
	assert.Equal(t, "shapes.Point", point.String())
	assert.Equal(t, "shapes", point.Package())
	assert.Nil(t, point.TypeArgs())
	assert.Equal(t, types.KindScript, point.Kind())
	assert.Same(t, point, class(t, rt, "Point"))

	_, err := rt.Class("Missing")
	assert.True(t, errz.IsKind(err, errz.ClassNotFound))

	_, err = rt.Class("notAClass")
	assert.True(t, errz.IsKind(err, errz.ClassDefinition))

	assert.Equal(t, []string{"Loop", "Point", "Shape"}, rt.Classes())
}

func TestClassHierarchy(t *testing.T) {
	rt := run(t, shapes)
	point := class(t, rt, "Point")
	shape := class(t, rt, "Shape")

	require.NotNil(t, point.Super())
	assert.True(t, point.Super().Equal(shape))
	assert.Equal(t, "Shape", point.Super().Name())
	assert.Nil(t, shape.Super())

	assert.True(t, point.AssignableTo(shape))
	assert.True(t, point.AssignableTo(types.Dynamic))
	assert.False(t, shape.AssignableTo(point))

	loop := class(t, rt, "Loop")
	assert.Len(t, loop.chain(), 1)
	assert.True(t, loop.AssignableTo(loop))
}

func TestClassMembers(t *testing.T) {
	rt := run(t, shapes)
	point := class(t, rt, "Point")

	assert.Equal(t, []string{"tags", "x", "y", "name"}, names(point.Fields(types.Public)))
	assert.Equal(t, []string{"tags", "x", "y"}, names(point.Fields(types.Declared)))
	assert.Equal(t, []string{"_secret", "name"}, names(class(t, rt, "Shape").Fields(types.Declared)))

	assert.Equal(t, []string{"area", "fail", "scale", "sum", "describe"}, names(point.Methods(types.Public)))
	assert.Equal(t, []string{"_hidden", "area", "fail", "scale", "sum"}, names(point.Methods(types.Declared)))

	for _, m := range point.Methods(types.Public) {
		if m.Name() == "describe" {
			assert.Equal(t, "Shape", m.DeclaringType().Name())
		} else {
			assert.Equal(t, "Point", m.DeclaringType().Name())
		}
	}

	x := point.Fields(types.Declared)[1]
	assert.True(t, x.Type().Equal(types.For[int64]()))

	ctors := point.Constructors(types.Public)
	assert.Equal(t, []string{"new(Point)", "init"}, names(ctors))
	assert.Equal(t, []string{"int64", "int64"}, types.Strings(ctors[1].ParamTypes()))
	assert.Equal(t, []string{"new(Shape)"}, names(class(t, rt, "Shape").Constructors(types.Public)))
}

func TestConstructAndInvoke(t *testing.T) {
	ctx := context.Background()
	rt := run(t, shapes)
	point := class(t, rt, "Point")
	ctors := point.Constructors(types.Public)

	v, err := ctors[1].New(ctx, int64(3), object.NewInt(4))
	require.NoError(t, err)
	obj, ok := v.(*Object)
	require.True(t, ok)
	assert.True(t, point.IsInstance(obj))
	assert.True(t, class(t, rt, "Shape").IsInstance(obj))
	assert.Same(t, point, obj.MirrorType())
	assert.Equal(t, int64(3), obj.Get("x"))
	assert.Equal(t, "shape", obj.Get("name"))

	methods := map[string]types.Method{}
	for _, m := range point.Methods(types.Public) {
		methods[m.Name()] = m
	}

	out, err := methods["sum"].Invoke(ctx, obj)
	require.NoError(t, err)
	assert.Equal(t, int64(7), out)

	out, err = methods["describe"].Invoke(ctx, obj)
	require.NoError(t, err)
	assert.Equal(t, "shape", out)

	out, err = methods["scale"].Invoke(ctx, obj, 2)
	require.NoError(t, err)
	scaled, ok := out.(*Object)
	require.True(t, ok, "stamped maps come back as instances")
	assert.Equal(t, int64(6), scaled.Get("x"))

	_, err = methods["fail"].Invoke(ctx, obj)
	assert.True(t, errz.IsKind(err, errz.InvocationFailed))

	_, err = methods["sum"].Invoke(ctx, "not an object")
	assert.True(t, errz.IsKind(err, errz.Access))

	shape, err := class(t, rt, "Shape").Constructors(types.Public)[0].New(ctx)
	require.NoError(t, err)
	_, err = methods["sum"].Invoke(ctx, shape)
	assert.True(t, errz.IsKind(err, errz.Access))
}

func TestZeroConstructorCopiesFields(t *testing.T) {
	ctx := context.Background()
	rt := run(t, shapes)
	zero := class(t, rt, "Point").Constructors(types.Public)[0]

	a, err := zero.New(ctx)
	require.NoError(t, err)
	b, err := zero.New(ctx)
	require.NoError(t, err)

	tags := class(t, rt, "Point").Fields(types.Declared)[0]
	require.Equal(t, "tags", tags.Name())
	require.NoError(t, tags.Set(a, []any{"red"}))

	got, err := tags.Get(b)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = zero.New(ctx, 1)
	assert.True(t, errz.IsKind(err, errz.ConstructorNotFound))
}

func TestFieldAccess(t *testing.T) {
	ctx := context.Background()
	rt := run(t, shapes)
	point := class(t, rt, "Point")
	v, err := point.Constructors(types.Public)[0].New(ctx)
	require.NoError(t, err)

	name := point.Fields(types.Public)[3]
	require.Equal(t, "name", name.Name())
	assert.Equal(t, "Shape", name.DeclaringType().Name())

	require.NoError(t, name.Set(v, "pt"))
	got, err := name.Get(v)
	require.NoError(t, err)
	assert.Equal(t, "pt", got)

	_, err = name.Get(struct{}{})
	assert.True(t, errz.IsKind(err, errz.Access))

	shape, err := class(t, rt, "Shape").Constructors(types.Public)[0].New(ctx)
	require.NoError(t, err)
	x := point.Fields(types.Declared)[1]
	_, err = x.Get(shape)
	assert.True(t, errz.IsKind(err, errz.Access))
}
