package types

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/deepnoodle-ai/mirror/errz"
)

type goField struct {
	sf    reflect.StructField
	owner reflect.Type // struct type that sf.Index is relative to
	decl  *GoType
	typ   *GoType
}

func (f *goField) Name() string        { return f.sf.Name }
func (f *goField) Type() Type          { return f.typ }
func (f *goField) DeclaringType() Type { return f.decl }
func (f *goField) Exported() bool      { return f.sf.IsExported() }

func (f *goField) String() string {
	return fmt.Sprintf("%s.%s %s", f.decl.Name(), f.sf.Name, f.typ)
}

func (f *goField) Get(instance any) (any, error) {
	v, err := f.locate(instance)
	if err != nil {
		return nil, err
	}
	if !v.CanInterface() {
		return nil, errz.NewAccess(f.decl.String(), f.sf.Name, "field is not exported")
	}
	return v.Interface(), nil
}

func (f *goField) Set(instance any, value any) error {
	v, err := f.locate(instance)
	if err != nil {
		return err
	}
	if !v.CanSet() {
		if !f.sf.IsExported() {
			return errz.NewAccess(f.decl.String(), f.sf.Name, "field is not exported")
		}
		return errz.NewAccess(f.decl.String(), f.sf.Name, "instance is not addressable; bind a pointer")
	}
	val, err := convertArg(value, v.Type())
	if err != nil {
		return errz.NewAccess(f.decl.String(), f.sf.Name, err.Error())
	}
	v.Set(val)
	return nil
}

// locate finds the field value inside instance, walking down the embedded
// chain when instance is a more derived type than the field's owner.
func (f *goField) locate(instance any) (reflect.Value, error) {
	if instance == nil {
		return reflect.Value{}, errz.NewAccess(f.decl.String(), f.sf.Name, "no instance bound")
	}
	v := reflect.ValueOf(instance)
	for depth := 0; depth < maxEmbedDepth; depth++ {
		for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
			if v.IsNil() {
				return reflect.Value{}, errz.NewAccess(f.decl.String(), f.sf.Name, "nil instance")
			}
			v = v.Elem()
		}
		if v.Type() == f.owner {
			fv, err := v.FieldByIndexErr(f.sf.Index)
			if err != nil {
				return reflect.Value{}, errz.NewAccess(f.decl.String(), f.sf.Name, err.Error())
			}
			return fv, nil
		}
		if v.Kind() != reflect.Struct {
			break
		}
		next, ok := superField(v)
		if !ok {
			break
		}
		v = next
	}
	return reflect.Value{}, errz.NewAccess(f.decl.String(), f.sf.Name,
		fmt.Sprintf("instance of %T does not contain %s", instance, f.owner))
}

// superField returns the first embedded struct field of v.
func superField(v reflect.Value) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous && indirect(sf.Type).Kind() == reflect.Struct {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

type goMethod struct {
	m      reflect.Method
	fn     *callable
	decl   *GoType
	params []Type
	ret    Type
}

func newGoMethod(m reflect.Method, mset reflect.Type, decl *GoType, reg *Registry) *goMethod {
	ft := m.Type
	if mset.Kind() != reflect.Interface {
		ft = dropReceiver(ft)
	}
	c := newCallable(ft)
	return &goMethod{
		m:      m,
		fn:     c,
		decl:   decl,
		params: c.paramTypes(reg),
		ret:    c.returnType(reg),
	}
}

func (m *goMethod) Name() string        { return m.m.Name }
func (m *goMethod) ParamTypes() []Type  { return append([]Type(nil), m.params...) }
func (m *goMethod) ReturnType() Type    { return m.ret }
func (m *goMethod) DeclaringType() Type { return m.decl }
func (m *goMethod) Exported() bool      { return m.m.IsExported() }

func (m *goMethod) String() string {
	return fmt.Sprintf("%s.%s(%s) %s", m.decl.Name(), m.m.Name,
		strings.Join(Strings(m.params), ", "), m.ret)
}

func (m *goMethod) Invoke(ctx context.Context, instance any, args ...any) (result any, err error) {
	if instance == nil {
		return nil, errz.NewAccess(m.decl.String(), m.m.Name, "no instance bound")
	}
	rv := reflect.ValueOf(instance)
	fn := rv.MethodByName(m.m.Name)
	if !fn.IsValid() && rv.Kind() != reflect.Ptr {
		// Pointer receiver methods need an addressable copy.
		p := reflect.New(rv.Type())
		p.Elem().Set(rv)
		fn = p.MethodByName(m.m.Name)
	}
	if !fn.IsValid() {
		return nil, errz.NewMethodNotFound(fmt.Sprintf("%T", instance), m.m.Name, "", Strings(m.params))
	}
	result, err = m.fn.call(ctx, fn, args)
	if err != nil {
		return nil, errz.NewInvocationFailed(m.decl.String(), m.m.Name, err)
	}
	return result, nil
}

// dropReceiver returns the function type of a method expression without its
// receiver parameter.
func dropReceiver(ft reflect.Type) reflect.Type {
	in := make([]reflect.Type, 0, ft.NumIn()-1)
	for i := 1; i < ft.NumIn(); i++ {
		in = append(in, ft.In(i))
	}
	out := make([]reflect.Type, 0, ft.NumOut())
	for i := 0; i < ft.NumOut(); i++ {
		out = append(out, ft.Out(i))
	}
	return reflect.FuncOf(in, out, ft.IsVariadic())
}

// zeroConstructor is the implicit constructor every Go type has: it returns
// a new zero value, as a pointer when the handle is a pointer type.
type zeroConstructor struct {
	typ *GoType
}

func (c *zeroConstructor) Name() string        { return "new(" + indirect(c.typ.rt).String() + ")" }
func (c *zeroConstructor) ParamTypes() []Type  { return []Type{} }
func (c *zeroConstructor) DeclaringType() Type { return c.typ }

func (c *zeroConstructor) Exported() bool {
	name := indirect(c.typ.rt).Name()
	return name == "" || isExportedName(name)
}

func (c *zeroConstructor) New(ctx context.Context, args ...any) (any, error) {
	if len(args) != 0 {
		return nil, errz.NewConstructorNotFound(c.typ.String(), Strings(TypesOf(args...)))
	}
	if c.typ.rt.Kind() == reflect.Ptr {
		return reflect.New(c.typ.rt.Elem()).Interface(), nil
	}
	if c.typ.rt.Kind() == reflect.Interface {
		return nil, errz.NewInvocationFailed(c.typ.String(), c.Name(),
			fmt.Errorf("cannot instantiate interface type"))
	}
	return reflect.New(c.typ.rt).Elem().Interface(), nil
}

// goConstructor is a registered Go function that builds instances of a type.
type goConstructor struct {
	name   string
	fn     reflect.Value
	call   *callable
	decl   *GoType
	params []Type
}

func newGoConstructor(fn reflect.Value, decl *GoType, reg *Registry) *goConstructor {
	c := newCallable(fn.Type())
	return &goConstructor{
		name:   funcName(fn),
		fn:     fn,
		call:   c,
		decl:   decl,
		params: c.paramTypes(reg),
	}
}

func (c *goConstructor) Name() string        { return c.name }
func (c *goConstructor) ParamTypes() []Type  { return append([]Type(nil), c.params...) }
func (c *goConstructor) DeclaringType() Type { return c.decl }
func (c *goConstructor) Exported() bool      { return isExportedName(c.name) }

func (c *goConstructor) String() string {
	return fmt.Sprintf("%s(%s) %s", c.name, strings.Join(Strings(c.params), ", "), c.decl)
}

func (c *goConstructor) New(ctx context.Context, args ...any) (any, error) {
	result, err := c.call.call(ctx, c.fn, args)
	if err != nil {
		return nil, errz.NewInvocationFailed(c.decl.String(), c.name, err)
	}
	return result, nil
}

// funcName returns the unqualified name of a Go function value.
func funcName(fn reflect.Value) string {
	f := runtime.FuncForPC(fn.Pointer())
	if f == nil {
		return "func"
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
