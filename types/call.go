package types

import (
	"context"
	"fmt"
	"reflect"
)

var (
	errorInterface   = reflect.TypeOf((*error)(nil)).Elem()
	contextInterface = reflect.TypeOf((*context.Context)(nil)).Elem()
)

// callable caches the shape of a Go function signature: whether it takes a
// leading context.Context and whether its last result is an error.
type callable struct {
	ft         reflect.Type
	numIn      int // input count excluding context
	hasContext bool
	hasError   bool
}

func newCallable(ft reflect.Type) *callable {
	c := &callable{ft: ft, numIn: ft.NumIn()}
	if ft.NumIn() > 0 && ft.In(0) == contextInterface {
		c.hasContext = true
		c.numIn--
	}
	if ft.NumOut() > 0 && ft.Out(ft.NumOut()-1).Implements(errorInterface) {
		c.hasError = true
	}
	return c
}

func (c *callable) offset() int {
	if c.hasContext {
		return 1
	}
	return 0
}

func (c *callable) paramTypes(reg *Registry) []Type {
	out := make([]Type, 0, c.numIn)
	for i := c.offset(); i < c.ft.NumIn(); i++ {
		out = append(out, reg.Type(c.ft.In(i)))
	}
	return out
}

// returnType is the first non-error result, the error itself for functions
// that only return an error, or Void.
func (c *callable) returnType(reg *Registry) Type {
	if c.ft.NumOut() == 0 {
		return Void
	}
	return reg.Type(c.ft.Out(0))
}

func (c *callable) call(ctx context.Context, fn reflect.Value, args []any) (result any, err error) {
	if err := c.checkArgCount(len(args)); err != nil {
		return nil, err
	}
	in := make([]reflect.Value, 0, len(args)+1)
	if c.hasContext {
		if ctx == nil {
			ctx = context.Background()
		}
		in = append(in, reflect.ValueOf(ctx))
	}
	for i, arg := range args {
		want := c.paramType(i)
		v, err := convertArg(arg, want)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		in = append(in, v)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return c.results(fn.Call(in))
}

func (c *callable) checkArgCount(n int) error {
	if c.ft.IsVariadic() {
		if n < c.numIn-1 {
			return fmt.Errorf("takes at least %d arguments (%d given)", c.numIn-1, n)
		}
		return nil
	}
	if n != c.numIn {
		return fmt.Errorf("takes exactly %d arguments (%d given)", c.numIn, n)
	}
	return nil
}

// paramType returns the Go type expected for argument i, expanding a
// trailing variadic parameter.
func (c *callable) paramType(i int) reflect.Type {
	idx := i + c.offset()
	last := c.ft.NumIn() - 1
	if c.ft.IsVariadic() && idx >= last {
		return c.ft.In(last).Elem()
	}
	return c.ft.In(idx)
}

func (c *callable) results(out []reflect.Value) (any, error) {
	if c.hasError {
		if errVal := out[len(out)-1]; !errVal.IsNil() {
			return nil, errVal.Interface().(error)
		}
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0].Interface(), nil
}

// objectValue is satisfied by script runtime objects that can unwrap
// themselves to a Go value.
type objectValue interface {
	Interface() interface{}
}

// convertArg adapts arg to want. Besides plain assignability it boxes and
// unboxes pointers to basic kinds, unwraps script runtime objects and
// converts between numeric kinds.
func convertArg(arg any, want reflect.Type) (reflect.Value, error) {
	if arg == nil {
		return reflect.Zero(want), nil
	}
	av := reflect.ValueOf(arg)
	at := av.Type()
	if at.AssignableTo(want) {
		return av, nil
	}
	if at.Kind() == reflect.Ptr && !av.IsNil() && at.Elem().AssignableTo(want) {
		return av.Elem(), nil
	}
	if want.Kind() == reflect.Ptr && at.AssignableTo(want.Elem()) {
		p := reflect.New(want.Elem())
		p.Elem().Set(av)
		return p, nil
	}
	if obj, ok := arg.(objectValue); ok {
		if inner := obj.Interface(); inner != nil && reflect.TypeOf(inner) != at {
			return convertArg(inner, want)
		}
	}
	if isNumeric(at.Kind()) && isNumeric(want.Kind()) {
		out := av.Convert(want)
		if !preserved(av, out) {
			return reflect.Value{}, fmt.Errorf("%v does not fit in %s", arg, want)
		}
		return out, nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", at, want)
}

// preserved reports whether the numeric conversion of in to out kept its
// value. Between float kinds only overflow counts; any other conversion must
// round trip exactly.
func preserved(in, out reflect.Value) bool {
	if isFloat(in.Kind()) && isFloat(out.Kind()) {
		return !out.OverflowFloat(in.Float())
	}
	return out.Convert(in.Type()).Interface() == in.Interface()
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
