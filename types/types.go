// Package types defines the type handle abstraction the member resolver works
// against, a reflect backed implementation for Go types, and the
// primitive/boxed equivalence table used by overload resolution.
package types

import (
	"context"
)

// Kind identifies the runtime that backs a Type.
type Kind int

const (
	// KindGo is a Go type described by package reflect.
	KindGo Kind = iota + 1
	// KindScript is a class defined by a compiled script unit.
	KindScript
	// KindVoid is the return type of a method that returns nothing.
	KindVoid
)

func (k Kind) String() string {
	switch k {
	case KindGo:
		return "go"
	case KindScript:
		return "script"
	case KindVoid:
		return "void"
	default:
		return "unknown"
	}
}

// Scope selects which members a Type reports.
type Scope int

const (
	// Public selects accessible members across the whole hierarchy.
	Public Scope = iota
	// Declared selects members introduced by the type itself, regardless of
	// visibility.
	Declared
)

func (s Scope) String() string {
	if s == Declared {
		return "declared"
	}
	return "public"
}

// Type is an opaque handle to a runtime type definition.
type Type interface {
	// Name is the simple name of the type.
	Name() string

	// String is the qualified name of the type.
	String() string

	Kind() Kind

	// Package is the import path of a Go type or the unit that defines a
	// script class. Predeclared and unnamed types have none.
	Package() string

	// TypeArgs are the type arguments of an instantiated generic type, in
	// declaration order.
	TypeArgs() []string

	// Super returns the parent type, or nil when the type is a root.
	Super() Type

	// Equal reports whether both handles denote the same runtime type.
	Equal(other Type) bool

	// AssignableTo reports whether a value of this type may be used where
	// target is expected.
	AssignableTo(target Type) bool

	// IsInstance reports whether value is an instance of this type.
	IsInstance(value any) bool

	Constructors(scope Scope) []Constructor
	Fields(scope Scope) []Field
	Methods(scope Scope) []Method
}

// Typed is implemented by values that carry their own type handle, such as
// script objects.
type Typed interface {
	MirrorType() Type
}

// Field describes a single field of a type.
type Field interface {
	Name() string
	Type() Type
	DeclaringType() Type
	Exported() bool

	// Get reads the field from instance.
	Get(instance any) (any, error)

	// Set writes value to the field of instance.
	Set(instance any, value any) error
}

// Method describes a single method of a type.
type Method interface {
	Name() string
	ParamTypes() []Type
	ReturnType() Type
	DeclaringType() Type
	Exported() bool

	// Invoke calls the method on instance.
	Invoke(ctx context.Context, instance any, args ...any) (any, error)
}

// Constructor describes a way to create instances of a type.
type Constructor interface {
	// Name identifies the constructor, e.g. the Go function name.
	Name() string
	ParamTypes() []Type
	DeclaringType() Type
	Exported() bool

	// New invokes the constructor.
	New(ctx context.Context, args ...any) (any, error)
}

// Strings renders a list of types for diagnostics.
func Strings(ts []Type) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		if t == nil {
			out[i] = "<nil>"
			continue
		}
		out[i] = t.String()
	}
	return out
}

// Void is the return type of methods that return nothing.
var Void Type = voidType{}

type voidType struct{}

func (voidType) Name() string                     { return "void" }
func (voidType) String() string                   { return "void" }
func (voidType) Kind() Kind                       { return KindVoid }
func (voidType) Package() string                  { return "" }
func (voidType) TypeArgs() []string               { return nil }
func (voidType) Super() Type                      { return nil }
func (voidType) IsInstance(any) bool              { return false }
func (voidType) Constructors(Scope) []Constructor { return nil }
func (voidType) Fields(Scope) []Field             { return nil }
func (voidType) Methods(Scope) []Method           { return nil }
func (v voidType) AssignableTo(target Type) bool  { return v.Equal(target) }

func (voidType) Equal(other Type) bool {
	_, ok := other.(voidType)
	return ok
}
