package types

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/deepnoodle-ai/mirror/errz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEST TYPES
// =============================================================================

type Animal struct {
	Legs int
	name string
}

func (a *Animal) Speak() string { return "..." }

func (a Animal) LegCount() int { return a.Legs }

type Dog struct {
	Animal
	Breed string
	Tags  []string
	age   int
}

func (d *Dog) Fetch(item string) string { return d.Breed + " fetched " + item }

func (d *Dog) Rename(ctx context.Context, name string) error {
	if name == "" {
		return errors.New("empty name")
	}
	d.name = name
	return nil
}

type point struct {
	X, Y int
}

type Point struct {
	X, Y int
}

func NewPoint(x, y int) *Point { return &Point{X: x, Y: y} }

func newOrigin() Point { return Point{} }

func NewCheckedPoint(ctx context.Context, x int) (*Point, error) {
	if x < 0 {
		return nil, errors.New("negative")
	}
	return &Point{X: x}, nil
}

type Node struct {
	*Node
	Value int
}

type Box[T any] struct {
	Value T
}

type Pair[K comparable, V any] struct {
	Key K
	Val V
}

func names[T interface{ Name() string }](items []T) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Name()
	}
	return out
}

// =============================================================================
// HIERARCHY
// =============================================================================

func TestGoTypeNames(t *testing.T) {
	assert.Equal(t, "Dog", For[Dog]().Name())
	assert.Equal(t, "*Dog", For[*Dog]().Name())
	assert.Equal(t, "types.Dog", For[Dog]().String())
	assert.Equal(t, "[]string", For[[]string]().Name())
	assert.Equal(t, KindGo, For[Dog]().Kind())
}

func TestGoTypePackage(t *testing.T) {
	const pkg = "github.com/deepnoodle-ai/mirror/types"
	assert.Equal(t, pkg, For[Dog]().Package())
	assert.Equal(t, pkg, For[*Dog]().Package())
	assert.Equal(t, pkg, For[Box[int]]().Package())
	assert.Empty(t, For[int]().Package())
	assert.Empty(t, For[[]string]().Package())
	assert.Empty(t, Void.Package())
}

func TestGoTypeArgs(t *testing.T) {
	assert.Nil(t, For[Dog]().TypeArgs())
	assert.Nil(t, For[int]().TypeArgs())
	assert.Nil(t, Void.TypeArgs())
	assert.Equal(t, "Box[int]", For[Box[int]]().Name())
	assert.Equal(t, []string{"int"}, For[Box[int]]().TypeArgs())
	assert.Equal(t, []string{"int"}, For[*Box[int]]().TypeArgs())
	assert.Equal(t, []string{"string", "map[string]int"}, For[Pair[string, map[string]int]]().TypeArgs())
}

func TestTypeArgsParsing(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{"Point", nil},
		{"Box[int]", []string{"int"}},
		{"Box[github.com/acme/geo.Point]", []string{"github.com/acme/geo.Point"}},
		{"Pair[string,[]int]", []string{"string", "[]int"}},
		{"Pair[Box[int],map[string]Box[bool]]", []string{"Box[int]", "map[string]Box[bool]"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, typeArgs(tt.name))
		})
	}
}

func TestGoTypeSuper(t *testing.T) {
	sup := For[Dog]().Super()
	require.NotNil(t, sup)
	assert.True(t, sup.Equal(For[Animal]()))
	assert.Nil(t, sup.Super())
	assert.Nil(t, For[int]().Super())

	// Pointer handles walk the same chain.
	assert.True(t, For[*Dog]().Super().Equal(For[Animal]()))

	// Self embedding terminates in callers that track visited levels.
	node := For[Node]()
	assert.True(t, node.Super().Equal(node))
}

func TestGoTypeAssignable(t *testing.T) {
	assert.True(t, For[Dog]().AssignableTo(For[Animal]()))
	assert.True(t, For[*Dog]().AssignableTo(For[*Animal]()))
	assert.False(t, For[Dog]().AssignableTo(For[*Animal]()))
	assert.False(t, For[Animal]().AssignableTo(For[Dog]()))
	assert.True(t, For[int]().AssignableTo(Dynamic))
	assert.False(t, For[int]().AssignableTo(Void))
}

func TestGoTypeIsInstance(t *testing.T) {
	assert.True(t, For[*Dog]().IsInstance(&Dog{}))
	assert.True(t, For[Animal]().IsInstance(&Dog{}))
	assert.True(t, For[Animal]().IsInstance(Dog{}))
	assert.False(t, For[Dog]().IsInstance(&Animal{}))
	assert.False(t, For[Dog]().IsInstance(nil))
}

// =============================================================================
// FIELDS
// =============================================================================

func TestGoTypeFields(t *testing.T) {
	dog := For[Dog]()
	assert.Equal(t, []string{"Legs", "Breed", "Tags"}, names(dog.Fields(Public)))
	assert.Equal(t, []string{"Breed", "Tags", "age"}, names(dog.Fields(Declared)))
	assert.Equal(t, []string{"Legs", "name"}, names(For[Animal]().Fields(Declared)))
	assert.Nil(t, For[int]().Fields(Public))

	legs := dog.Fields(Public)[0]
	assert.True(t, legs.DeclaringType().Equal(For[Animal]()))
	assert.True(t, legs.Type().Equal(For[int]()))
	assert.True(t, legs.Exported())
}

func TestGoFieldGetSet(t *testing.T) {
	d := &Dog{Animal: Animal{Legs: 4}, Breed: "beagle"}

	legs := For[Dog]().Fields(Public)[0]
	v, err := legs.Get(d)
	require.NoError(t, err)
	assert.Equal(t, 4, v)

	require.NoError(t, legs.Set(d, 3))
	assert.Equal(t, 3, d.Legs)

	// A field declared on the ancestor is located inside the derived value.
	animalLegs := For[Animal]().Fields(Declared)[0]
	v, err = animalLegs.Get(d)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	// Boxed values are unboxed on assignment.
	n := 8
	require.NoError(t, animalLegs.Set(d, &n))
	assert.Equal(t, 8, d.Legs)
}

func TestGoFieldAccessRules(t *testing.T) {
	d := &Dog{age: 3}
	age := For[Dog]().Fields(Declared)[2]
	require.Equal(t, "age", age.Name())

	_, err := age.Get(d)
	assert.True(t, errz.IsKind(err, errz.Access))
	assert.True(t, errz.IsKind(age.Set(d, 4), errz.Access))

	breed := For[Dog]().Fields(Declared)[0]
	err = breed.Set(Dog{}, "pug")
	assert.True(t, errz.IsKind(err, errz.Access), "value instances are not addressable")

	_, err = breed.Get(nil)
	assert.True(t, errz.IsKind(err, errz.Access))

	_, err = breed.Get(&Point{})
	assert.True(t, errz.IsKind(err, errz.Access))

	err = breed.Set(d, 42)
	assert.True(t, errz.IsKind(err, errz.Access))
}

type Small struct {
	I8  int8
	U8  uint8
	N   int
	F32 float32
}

func TestGoFieldNumericConversion(t *testing.T) {
	s := &Small{}
	fields := map[string]Field{}
	for _, f := range For[Small]().Fields(Public) {
		fields[f.Name()] = f
	}

	tests := []struct {
		name  string
		field string
		value any
		ok    bool
	}{
		{"int fits int8", "I8", -5, true},
		{"int overflows int8", "I8", 300, false},
		{"negative into uint8", "U8", -1, false},
		{"int64 fits uint8", "U8", int64(255), true},
		{"whole float into int", "N", 2.0, true},
		{"fractional float into int", "N", 2.9, false},
		{"float64 into float32", "F32", 1.5, true},
		{"float64 overflows float32", "F32", 1e300, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fields[tt.field].Set(s, tt.value)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errz.IsKind(err, errz.Access), "got %v", err)
		})
	}
	assert.Equal(t, Small{I8: -5, U8: 255, N: 2, F32: 1.5}, *s)
}

func TestConstructorRejectsLossyArguments(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegisterConstructor(NewPoint)
	ctor := reg.Type(reflect.TypeOf(Point{})).Constructors(Public)[1]

	_, err := ctor.New(context.Background(), 1.5, 2)
	assert.True(t, errz.IsKind(err, errz.InvocationFailed))
	assert.ErrorContains(t, err, "does not fit")

	v, err := ctor.New(context.Background(), 1.0, uint8(2))
	require.NoError(t, err)
	assert.Equal(t, &Point{X: 1, Y: 2}, v)
}

// =============================================================================
// METHODS
// =============================================================================

func TestGoTypeMethods(t *testing.T) {
	dog := For[Dog]()
	assert.Equal(t, []string{"Fetch", "LegCount", "Rename", "Speak"}, names(dog.Methods(Public)))
	assert.Equal(t, []string{"Fetch", "Rename"}, names(dog.Methods(Declared)))
	assert.Equal(t, []string{"LegCount", "Speak"}, names(For[Animal]().Methods(Declared)))

	for _, m := range dog.Methods(Public) {
		switch m.Name() {
		case "Speak", "LegCount":
			assert.True(t, m.DeclaringType().Equal(For[Animal]()), m.Name())
		default:
			assert.True(t, m.DeclaringType().Equal(dog), m.Name())
		}
	}
}

func TestGoMethodSignature(t *testing.T) {
	methods := map[string]Method{}
	for _, m := range For[*Dog]().Methods(Public) {
		methods[m.Name()] = m
	}
	fetch := methods["Fetch"]
	require.NotNil(t, fetch)
	assert.Equal(t, []string{"string"}, Strings(fetch.ParamTypes()))
	assert.True(t, fetch.ReturnType().Equal(stringType))

	// The context parameter is injected, not declared.
	rename := methods["Rename"]
	assert.Equal(t, []string{"string"}, Strings(rename.ParamTypes()))
	assert.Equal(t, "error", rename.ReturnType().String())
}

func TestGoMethodInvoke(t *testing.T) {
	ctx := context.Background()
	d := &Dog{Breed: "collie"}
	methods := map[string]Method{}
	for _, m := range For[*Dog]().Methods(Public) {
		methods[m.Name()] = m
	}

	out, err := methods["Fetch"].Invoke(ctx, d, "ball")
	require.NoError(t, err)
	assert.Equal(t, "collie fetched ball", out)

	out, err = methods["Rename"].Invoke(ctx, d, "rex")
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.Equal(t, "rex", d.name)

	_, err = methods["Rename"].Invoke(ctx, d, "")
	assert.True(t, errz.IsKind(err, errz.InvocationFailed))
	assert.ErrorContains(t, err, "empty name")

	_, err = methods["Fetch"].Invoke(ctx, d)
	assert.True(t, errz.IsKind(err, errz.InvocationFailed))

	// Pointer receiver methods work on value instances through a copy.
	out, err = methods["Speak"].Invoke(ctx, Dog{})
	require.NoError(t, err)
	assert.Equal(t, "...", out)

	_, err = methods["Speak"].Invoke(ctx, nil)
	assert.True(t, errz.IsKind(err, errz.Access))
}

// =============================================================================
// CONSTRUCTORS
// =============================================================================

func TestGoTypeConstructors(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegisterConstructor(NewPoint)
	reg.MustRegisterConstructor(newOrigin)
	reg.MustRegisterConstructor(NewCheckedPoint)
	pt := reg.Type(reflect.TypeOf(Point{}))

	assert.Equal(t, []string{"new(types.Point)", "NewPoint", "NewCheckedPoint"}, names(pt.Constructors(Public)))
	assert.Equal(t, []string{"new(types.Point)", "NewPoint", "newOrigin", "NewCheckedPoint"}, names(pt.Constructors(Declared)))

	ctors := pt.Constructors(Declared)
	assert.Empty(t, ctors[0].ParamTypes())
	assert.Equal(t, []string{"int", "int"}, Strings(ctors[1].ParamTypes()))
	assert.Equal(t, []string{"int"}, Strings(ctors[3].ParamTypes()))

	ctx := context.Background()
	v, err := ctors[0].New(ctx)
	require.NoError(t, err)
	assert.Equal(t, Point{}, v)

	v, err = ctors[1].New(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, &Point{X: 1, Y: 2}, v)

	one := 1
	v, err = ctors[1].New(ctx, &one, int64(5))
	require.NoError(t, err)
	assert.Equal(t, &Point{X: 1, Y: 5}, v)

	_, err = ctors[3].New(ctx, -1)
	assert.True(t, errz.IsKind(err, errz.InvocationFailed))

	_, err = ctors[0].New(ctx, 1)
	assert.True(t, errz.IsKind(err, errz.ConstructorNotFound))
}

func TestZeroConstructorForPointer(t *testing.T) {
	ctor := For[*Point]().Constructors(Public)[0]
	v, err := ctor.New(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Point{}, v)

	assert.Empty(t, For[point]().Constructors(Public))
	assert.Len(t, For[point]().Constructors(Declared), 1)
}

func TestRegisterConstructorValidation(t *testing.T) {
	reg := NewRegistry()
	assert.Error(t, reg.RegisterConstructor(42))
	assert.Error(t, reg.RegisterConstructor(func() {}))
	assert.Error(t, reg.RegisterConstructor(func() (int, int) { return 0, 0 }))
	assert.Error(t, reg.RegisterConstructor(func() error { return nil }))
	assert.Panics(t, func() { reg.MustRegisterConstructor("nope") })
}

func TestRegistryResolve(t *testing.T) {
	reg := NewRegistry()
	reg.Define("Point", reflect.TypeOf(Point{}))

	got, err := reg.Resolve(context.Background(), "Point")
	require.NoError(t, err)
	assert.True(t, got.Equal(For[Point]()))

	_, err = reg.Resolve(context.Background(), "Missing")
	assert.True(t, errz.IsKind(err, errz.ClassNotFound))
}

func TestTypeOf(t *testing.T) {
	assert.True(t, TypeOf(Point{}).Equal(For[Point]()))
	assert.True(t, IsDynamic(TypeOf(nil)))
	assert.True(t, Void.Equal(Void))
	assert.False(t, Void.Equal(Dynamic))
}
