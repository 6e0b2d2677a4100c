package errz

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{FieldNotFound, "field not found"},
		{ConstructorNotFound, "constructor not found"},
		{MethodNotFound, "method not found"},
		{ClassNotFound, "class not found"},
		{ClassDefinition, "class definition error"},
		{CompileFailed, "compile error"},
		{InvocationFailed, "invocation error"},
		{Access, "access error"},
		{Kind(99), "error"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.String())
		})
	}
}

func TestKindCode(t *testing.T) {
	assert.Equal(t, "R001", FieldNotFound.Code())
	assert.Equal(t, "L005", ClassDefinition.Code())
	assert.Equal(t, "C006", CompileFailed.Code())
	assert.Equal(t, "E008", Access.Code())
}

func TestFieldNotFoundMessage(t *testing.T) {
	err := NewFieldNotFound("main.Point", "", "int", 2)
	assert.Equal(t, "field not found: type main.Point, of type int, position 2", err.Error())

	err = NewFieldNotFound("main.Point", "z", "", -1)
	assert.Equal(t, `field not found: type main.Point, name "z"`, err.Error())
}

func TestConstructorNotFoundMessage(t *testing.T) {
	err := NewConstructorNotFound("main.Point", []string{"int", "string"})
	assert.Equal(t, "constructor not found: type main.Point, params (int, string)", err.Error())

	err = NewConstructorNotFound("main.Point", []string{})
	assert.Equal(t, "constructor not found: type main.Point, params ()", err.Error())
}

func TestErrorCause(t *testing.T) {
	cause := errors.New("boom")
	err := NewInvocationFailed("main.Point", "Move", cause)
	assert.Equal(t, `invocation error: type main.Point, name "Move": boom`, err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestErrorsIsByKind(t *testing.T) {
	err := fmt.Errorf("lookup: %w", NewClassNotFound("Point"))
	assert.ErrorIs(t, err, New(ClassNotFound))
	assert.NotErrorIs(t, err, New(ClassDefinition))
}

func TestIsKindFollowsCauses(t *testing.T) {
	inner := NewClassDefinition("Point", "empty artifact")
	outer := NewInvocationFailed("Point", "init", inner)
	assert.True(t, IsKind(outer, InvocationFailed))
	assert.True(t, IsKind(outer, ClassDefinition))
	assert.False(t, IsKind(outer, CompileFailed))
	assert.False(t, IsKind(errors.New("plain"), CompileFailed))
	assert.False(t, IsKind(nil, CompileFailed))
}

func TestKindOf(t *testing.T) {
	require.Equal(t, MethodNotFound, KindOf(NewMethodNotFound("T", "Foo", "", nil)))
	require.Equal(t, Kind(0), KindOf(errors.New("plain")))
}

func TestErrorf(t *testing.T) {
	err := Errorf(CompileFailed, "unit %q has %d problems", "Point", 2)
	assert.Equal(t, `compile error: unit "Point" has 2 problems`, err.Error())
}
