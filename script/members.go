package script

import (
	"context"
	"fmt"

	"github.com/deepnoodle-ai/mirror/errz"
	"github.com/deepnoodle-ai/mirror/types"
	"github.com/risor-io/risor/object"
)

type field struct {
	name  string
	typ   types.Type
	class *Class
}

func newField(e entry, decl *Class) *field {
	return &field{name: e.name, typ: valueType(e.value), class: decl}
}

func (f *field) Name() string              { return f.name }
func (f *field) Type() types.Type          { return f.typ }
func (f *field) DeclaringType() types.Type { return f.class }
func (f *field) Exported() bool            { return isPublic(f.name) }

func (f *field) String() string {
	return fmt.Sprintf("%s.%s %s", f.class.Name(), f.name, f.typ)
}

func (f *field) Get(instance any) (any, error) {
	obj, err := f.target(instance)
	if err != nil {
		return nil, err
	}
	return fromObject(f.class.rt, obj.m.Get(f.name)), nil
}

func (f *field) Set(instance any, value any) error {
	obj, err := f.target(instance)
	if err != nil {
		return err
	}
	v, err := toObject(value)
	if err != nil {
		return errz.NewAccess(f.class.String(), f.name, err.Error())
	}
	obj.m.Set(f.name, v)
	return nil
}

func (f *field) target(instance any) (*Object, error) {
	obj, ok := instance.(*Object)
	if !ok || obj == nil {
		return nil, errz.NewAccess(f.class.String(), f.name, fmt.Sprintf("%T is not a script object", instance))
	}
	if !f.class.IsInstance(obj) {
		return nil, errz.NewAccess(f.class.String(), f.name,
			fmt.Sprintf("instance of %s is not a %s", obj.class.Name(), f.class.Name()))
	}
	return obj, nil
}

type method struct {
	name   string
	fn     *object.Function
	class  *Class
	params []types.Type
}

func newMethod(name string, fn *object.Function, decl *Class) *method {
	return &method{name: name, fn: fn, class: decl, params: paramTypes(fn)}
}

func (m *method) Name() string              { return m.name }
func (m *method) ParamTypes() []types.Type  { return append([]types.Type(nil), m.params...) }
func (m *method) ReturnType() types.Type    { return types.Dynamic }
func (m *method) DeclaringType() types.Type { return m.class }
func (m *method) Exported() bool            { return isPublic(m.name) }

func (m *method) String() string {
	return fmt.Sprintf("%s.%s(%v)", m.class.Name(), m.name, types.Strings(m.params))
}

func (m *method) Invoke(ctx context.Context, instance any, args ...any) (any, error) {
	obj, ok := instance.(*Object)
	if !ok || obj == nil {
		return nil, errz.NewAccess(m.class.String(), m.name, fmt.Sprintf("%T is not a script object", instance))
	}
	if !m.class.IsInstance(obj) {
		return nil, errz.NewAccess(m.class.String(), m.name,
			fmt.Sprintf("instance of %s is not a %s", obj.class.Name(), m.class.Name()))
	}
	result, err := callWithReceiver(ctx, m.class.rt, m.fn, obj, args)
	if err != nil {
		return nil, errz.NewInvocationFailed(m.class.String(), m.name, err)
	}
	return fromObject(m.class.rt, result), nil
}

// callWithReceiver calls fn passing obj as the first argument. Functions
// that declare no parameters are called without a receiver.
func callWithReceiver(ctx context.Context, rt *Runtime, fn *object.Function, obj *Object, args []any) (object.Object, error) {
	converted, err := toObjects(args)
	if err != nil {
		return nil, err
	}
	if len(fn.Parameters()) > 0 {
		converted = append([]object.Object{obj.m}, converted...)
	}
	return rt.call(ctx, fn, converted)
}

// paramTypes returns the parameter types of fn after the receiver. A
// parameter with a default value takes the default's type; any other is
// dynamic.
func paramTypes(fn *object.Function) []types.Type {
	params := fn.Parameters()
	if len(params) == 0 {
		return []types.Type{}
	}
	defaults := fn.Defaults()
	out := make([]types.Type, 0, len(params)-1)
	for i := 1; i < len(params); i++ {
		var def object.Object
		if i < len(defaults) {
			def = defaults[i]
		}
		out = append(out, valueType(def))
	}
	return out
}

// zeroConstructor clones the prototype chain without running init.
type zeroConstructor struct {
	class *Class
}

func (c *zeroConstructor) Name() string              { return "new(" + c.class.Name() + ")" }
func (c *zeroConstructor) ParamTypes() []types.Type  { return []types.Type{} }
func (c *zeroConstructor) DeclaringType() types.Type { return c.class }
func (c *zeroConstructor) Exported() bool            { return isPublic(c.class.name) }

func (c *zeroConstructor) New(ctx context.Context, args ...any) (any, error) {
	if len(args) != 0 {
		return nil, errz.NewConstructorNotFound(c.class.String(), types.Strings(types.TypesOf(args...)))
	}
	return c.class.instantiate(), nil
}

// initConstructor clones the prototype chain, then runs init on the copy.
type initConstructor struct {
	class  *Class
	fn     *object.Function
	params []types.Type
}

func (c *initConstructor) Name() string              { return initKey }
func (c *initConstructor) ParamTypes() []types.Type  { return append([]types.Type(nil), c.params...) }
func (c *initConstructor) DeclaringType() types.Type { return c.class }
func (c *initConstructor) Exported() bool            { return true }

func (c *initConstructor) New(ctx context.Context, args ...any) (any, error) {
	obj := c.class.instantiate()
	if _, err := callWithReceiver(ctx, c.class.rt, c.fn, obj, args); err != nil {
		return nil, errz.NewInvocationFailed(c.class.String(), initKey, err)
	}
	return obj, nil
}
