// Package errz defines the error taxonomy shared by the member resolver, the
// compile orchestrator and the dynamic loader.
package errz

import (
	"errors"
	"fmt"
	"strings"
)

// Kind represents the category of an error.
type Kind int

const (
	// FieldNotFound indicates a field lookup matched nothing.
	FieldNotFound Kind = iota + 1
	// ConstructorNotFound indicates no constructor matched the query.
	ConstructorNotFound
	// MethodNotFound indicates no method matched the query.
	MethodNotFound
	// ClassNotFound indicates a loader could not find a type by name.
	ClassNotFound
	// ClassDefinition indicates compiled bytes could not be turned into a type.
	ClassDefinition
	// CompileFailed indicates the compiler rejected a compilation unit.
	CompileFailed
	// InvocationFailed indicates a constructor or method raised an error.
	InvocationFailed
	// Access indicates the host runtime refused access to a member.
	Access
)

// String returns the string representation of the error kind.
func (k Kind) String() string {
	switch k {
	case FieldNotFound:
		return "field not found"
	case ConstructorNotFound:
		return "constructor not found"
	case MethodNotFound:
		return "method not found"
	case ClassNotFound:
		return "class not found"
	case ClassDefinition:
		return "class definition error"
	case CompileFailed:
		return "compile error"
	case InvocationFailed:
		return "invocation error"
	case Access:
		return "access error"
	default:
		return "error"
	}
}

// Code returns a short stable identifier for the kind, in the style of
// compiler diagnostics.
func (k Kind) Code() string {
	switch k {
	case FieldNotFound, ConstructorNotFound, MethodNotFound:
		return fmt.Sprintf("R%03d", int(k))
	case ClassNotFound, ClassDefinition:
		return fmt.Sprintf("L%03d", int(k))
	case CompileFailed:
		return fmt.Sprintf("C%03d", int(k))
	default:
		return fmt.Sprintf("E%03d", int(k))
	}
}

// Error is the structured error returned by every lookup, definition and
// invocation path. The context fields are optional and only set when they
// apply to the failing operation.
type Error struct {
	Kind    Kind
	Message string

	// Type is the declaring (searched) type, rendered as a string.
	Type string
	// Name is the member or class name queried, if any.
	Name string
	// Query is the queried member type, if any.
	Query string
	// Params are the queried parameter types, if any.
	Params []string
	// Position is the queried position for positional field lookups.
	Position int
	// HasPosition reports whether Position is meaningful.
	HasPosition bool

	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	b.WriteString(": ")
	if e.Message != "" {
		b.WriteString(e.Message)
	} else {
		b.WriteString(e.describe())
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) describe() string {
	var parts []string
	if e.Type != "" {
		parts = append(parts, "type "+e.Type)
	}
	if e.Name != "" {
		parts = append(parts, fmt.Sprintf("name %q", e.Name))
	}
	if e.Query != "" {
		parts = append(parts, "of type "+e.Query)
	}
	if e.Params != nil {
		parts = append(parts, "params ("+strings.Join(e.Params, ", ")+")")
	}
	if e.HasPosition {
		parts = append(parts, fmt.Sprintf("position %d", e.Position))
	}
	if len(parts) == 0 {
		return "no details"
	}
	return strings.Join(parts, ", ")
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind. This lets callers
// write errors.Is(err, errz.New(errz.FieldNotFound)).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// WithCause wraps the error with a cause.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// New creates an error of the given kind with no context.
func New(kind Kind) *Error {
	return &Error{Kind: kind}
}

// Errorf creates an error of the given kind with a formatted message.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err, or any error it wraps, is an *Error of kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Cause
	}
	return false
}

// KindOf returns the kind of the outermost *Error in err's chain, or zero.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
