package script

import (
	"fmt"

	"github.com/deepnoodle-ai/mirror/types"
	"github.com/risor-io/risor/object"
)

// Object is an instance of a script class: a map stamped with its class.
type Object struct {
	class *Class
	m     *object.Map
}

var _ types.Typed = (*Object)(nil)

func (o *Object) MirrorType() types.Type {
	return o.class
}

// Class returns the instantiated class.
func (o *Object) Class() *Class {
	return o.class
}

// Map returns the underlying script map.
func (o *Object) Map() *object.Map {
	return o.m
}

// Get returns the Go value of the named entry, or nil.
func (o *Object) Get(name string) any {
	return fromObject(o.class.rt, o.m.Get(name))
}

func (o *Object) String() string {
	return fmt.Sprintf("%s%s", o.class.Name(), o.m.Inspect())
}

// toObject converts a Go value to a script value.
func toObject(v any) (object.Object, error) {
	switch v := v.(type) {
	case nil:
		return object.Nil, nil
	case *Object:
		return v.m, nil
	case object.Object:
		return v, nil
	}
	obj := object.FromGoType(v)
	if obj == nil {
		return nil, fmt.Errorf("cannot convert %T to a script value", v)
	}
	if e, ok := obj.(*object.Error); ok {
		return nil, e.Value()
	}
	return obj, nil
}

func toObjects(args []any) ([]object.Object, error) {
	out := make([]object.Object, len(args))
	for i, arg := range args {
		obj, err := toObject(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = obj
	}
	return out, nil
}

// fromObject converts a script value to Go. Maps stamped with a known class
// come back as instances.
func fromObject(rt *Runtime, obj object.Object) any {
	switch obj := obj.(type) {
	case nil:
		return nil
	case *object.Map:
		if name, ok := obj.Get(classKey).(*object.String); ok {
			if c := rt.byName(name.Value()); c != nil {
				return &Object{class: c, m: obj}
			}
		}
	}
	return obj.Interface()
}

// valueType is the type of a script value as seen from Go.
func valueType(obj object.Object) types.Type {
	if obj == nil || obj == object.Nil {
		return types.Dynamic
	}
	return types.TypeOf(obj.Interface())
}
