package types

import (
	"reflect"

	"github.com/risor-io/risor/object"
)

// The equivalence table pairs each Go basic type with its boxed forms. A Go
// box is a pointer to the basic type. Script runtime values are boxes too:
// a script integer arrives as *object.Int and is equivalent to int64.
var (
	boxedToPrimitive = map[reflect.Type]reflect.Type{}
	primitiveToBoxed = map[reflect.Type]reflect.Type{}
)

func init() {
	basics := []any{
		false, "",
		int(0), int8(0), int16(0), int32(0), int64(0),
		uint(0), uint8(0), uint16(0), uint32(0), uint64(0), uintptr(0),
		float32(0), float64(0),
		complex64(0), complex128(0),
	}
	for _, v := range basics {
		prim := reflect.TypeOf(v)
		box := reflect.PointerTo(prim)
		boxedToPrimitive[box] = prim
		primitiveToBoxed[prim] = box
	}
	scriptBoxes := map[reflect.Type]reflect.Type{
		reflect.TypeOf((*object.Int)(nil)):    reflect.TypeOf(int64(0)),
		reflect.TypeOf((*object.Float)(nil)):  reflect.TypeOf(float64(0)),
		reflect.TypeOf((*object.Bool)(nil)):   reflect.TypeOf(false),
		reflect.TypeOf((*object.String)(nil)): reflect.TypeOf(""),
		reflect.TypeOf((*object.Byte)(nil)):   reflect.TypeOf(byte(0)),
	}
	for box, prim := range scriptBoxes {
		boxedToPrimitive[box] = prim
	}
}

// Normalize maps a boxed type to its primitive counterpart. Any other type is
// returned unchanged.
func Normalize(t Type) Type {
	g, ok := t.(*GoType)
	if !ok {
		return t
	}
	if prim, ok := boxedToPrimitive[g.rt]; ok {
		return g.reg.Type(prim)
	}
	return t
}

// NormalizeAll applies Normalize to each element of ts.
func NormalizeAll(ts []Type) []Type {
	out := make([]Type, len(ts))
	for i, t := range ts {
		out[i] = Normalize(t)
	}
	return out
}

// Boxed maps a primitive type to its Go box. Any other type is returned
// unchanged.
func Boxed(t Type) Type {
	g, ok := t.(*GoType)
	if !ok {
		return t
	}
	if box, ok := primitiveToBoxed[g.rt]; ok {
		return g.reg.Type(box)
	}
	return t
}

// IsPrimitive reports whether t is a Go basic type.
func IsPrimitive(t Type) bool {
	g, ok := t.(*GoType)
	if !ok {
		return false
	}
	_, ok = primitiveToBoxed[g.rt]
	return ok
}

// IsDynamic reports whether t is the dynamic (empty interface) type.
func IsDynamic(t Type) bool {
	g, ok := t.(*GoType)
	return ok && g.rt == anyType
}

// Compare reports whether two parameter lists match exactly: same length
// and, pairwise, equal after normalization.
func Compare(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := Normalize(a[i]), Normalize(b[i])
		if x == nil || y == nil || !x.Equal(y) {
			return false
		}
	}
	return true
}

// Accepts is Compare with dynamic slots: a dynamic type on either side
// matches anything. Lookups use it only after no exact match was found.
func Accepts(params, args []Type) bool {
	if len(params) != len(args) {
		return false
	}
	for i := range params {
		x, y := Normalize(params[i]), Normalize(args[i])
		if IsDynamic(x) || IsDynamic(y) {
			continue
		}
		if x == nil || y == nil || !x.Equal(y) {
			return false
		}
	}
	return true
}
