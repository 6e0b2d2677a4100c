package types

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/deepnoodle-ai/mirror/errz"
)

// Registry holds what package reflect cannot discover on its own: the
// constructor functions of each Go type and the names under which Go types
// may be resolved. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	ctors map[reflect.Type][]*goConstructor
	names map[string]reflect.Type
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process wide registry used by Go and TypeOf.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		ctors: map[reflect.Type][]*goConstructor{},
		names: map[string]reflect.Type{},
	}
}

// Type returns the handle for rt bound to this registry.
func (r *Registry) Type(rt reflect.Type) *GoType {
	return &GoType{rt: rt, reg: r}
}

// RegisterConstructor records fn as a constructor of the type it returns.
// fn must be a function whose first result is the constructed value and
// whose optional second result is an error. A leading context.Context
// parameter is supplied automatically on invocation.
func (r *Registry) RegisterConstructor(fn any) error {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return fmt.Errorf("constructor must be a function (got %T)", fn)
	}
	ft := fv.Type()
	switch ft.NumOut() {
	case 1:
	case 2:
		if !ft.Out(1).Implements(errorInterface) {
			return fmt.Errorf("constructor %s: second result must be an error", funcName(fv))
		}
	default:
		return fmt.Errorf("constructor %s: must return a value and an optional error", funcName(fv))
	}
	if ft.Out(0).Implements(errorInterface) {
		return fmt.Errorf("constructor %s: first result must not be an error", funcName(fv))
	}
	target := indirect(ft.Out(0))
	c := newGoConstructor(fv, r.Type(ft.Out(0)), r)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctors[target] = append(r.ctors[target], c)
	return nil
}

// MustRegisterConstructor is like RegisterConstructor but panics on error.
func (r *Registry) MustRegisterConstructor(fn any) {
	if err := r.RegisterConstructor(fn); err != nil {
		panic(err)
	}
}

// Define makes rt resolvable under name.
func (r *Registry) Define(name string, rt reflect.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names[name] = rt
}

// Resolve returns the Go type defined under name. It lets a Registry act as
// the parent of a dynamic loader.
func (r *Registry) Resolve(ctx context.Context, name string) (Type, error) {
	r.mu.RLock()
	rt, ok := r.names[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errz.NewClassNotFound(name)
	}
	return r.Type(rt), nil
}

func (r *Registry) constructors(rt reflect.Type) []*goConstructor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*goConstructor(nil), r.ctors[rt]...)
}
