package descriptor

import (
	"context"

	"github.com/deepnoodle-ai/mirror/types"
)

// Field is a field descriptor carrying the instance it was produced for.
type Field struct {
	field    types.Field
	instance any
}

func (f *Field) Name() string              { return f.field.Name() }
func (f *Field) Type() types.Type          { return f.field.Type() }
func (f *Field) DeclaringType() types.Type { return f.field.DeclaringType() }
func (f *Field) Exported() bool            { return f.field.Exported() }

// Instance returns the bound instance, or nil.
func (f *Field) Instance() any {
	return f.instance
}

// Unwrap returns the underlying field.
func (f *Field) Unwrap() types.Field {
	return f.field
}

// Get reads the field from the bound instance.
func (f *Field) Get() (any, error) {
	return f.field.Get(f.instance)
}

// Set writes the field of the bound instance.
func (f *Field) Set(value any) error {
	return f.field.Set(f.instance, value)
}

// GetFrom reads the field from instance.
func (f *Field) GetFrom(instance any) (any, error) {
	return f.field.Get(instance)
}

// SetOn writes the field of instance.
func (f *Field) SetOn(instance any, value any) error {
	return f.field.Set(instance, value)
}

func (f *Field) String() string {
	return f.field.DeclaringType().Name() + "." + f.field.Name()
}

// Method is a method descriptor carrying the instance it was produced for.
type Method struct {
	method   types.Method
	instance any
}

func (m *Method) Name() string              { return m.method.Name() }
func (m *Method) ParamTypes() []types.Type  { return m.method.ParamTypes() }
func (m *Method) ReturnType() types.Type    { return m.method.ReturnType() }
func (m *Method) DeclaringType() types.Type { return m.method.DeclaringType() }
func (m *Method) Exported() bool            { return m.method.Exported() }

// Instance returns the bound instance, or nil.
func (m *Method) Instance() any {
	return m.instance
}

// Unwrap returns the underlying method.
func (m *Method) Unwrap() types.Method {
	return m.method
}

// Invoke calls the method on the bound instance.
func (m *Method) Invoke(ctx context.Context, args ...any) (any, error) {
	return m.method.Invoke(ctx, m.instance, args...)
}

// InvokeOn calls the method on instance.
func (m *Method) InvokeOn(ctx context.Context, instance any, args ...any) (any, error) {
	return m.method.Invoke(ctx, instance, args...)
}

func (m *Method) String() string {
	return m.method.DeclaringType().Name() + "." + m.method.Name()
}
