// Package script exposes classes defined by compiled Risor units as type
// handles.
//
// A class is a top-level map, the prototype. Function entries are methods
// whose first parameter receives the instance; every other entry is a field
// whose type is taken from its value. The "init" entry is the constructor
// and "__super__" links the parent class. Names starting with an underscore
// are not public.
package script

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/deepnoodle-ai/mirror/errz"
	"github.com/risor-io/risor/compiler"
	"github.com/risor-io/risor/object"
	"github.com/risor-io/risor/vm"
	"github.com/rs/zerolog"
)

const (
	superKey = "__super__"
	classKey = "__class__"
	initKey  = "init"
)

// Runtime is an evaluated compilation unit. It owns the virtual machine the
// unit ran on; all calls into script code are serialized through it.
type Runtime struct {
	mu      sync.Mutex
	unit    string
	code    *compiler.Code
	machine *vm.VirtualMachine
	classes map[*object.Map]*Class
	log     zerolog.Logger
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger used by the runtime.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Runtime) {
		r.log = log
	}
}

// Run evaluates code with the given globals and returns the runtime holding
// the resulting top-level definitions.
func Run(ctx context.Context, unit string, code *compiler.Code, globals map[string]any, opts ...Option) (*Runtime, error) {
	r := &Runtime{
		unit:    unit,
		code:    code,
		classes: map[*object.Map]*Class{},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.machine = vm.New(code, vm.WithGlobals(globals))
	if err := r.machine.Run(ctx); err != nil {
		return nil, errz.NewClassDefinition(unit, fmt.Sprintf("evaluating unit: %v", err))
	}
	r.log.Debug().Str("unit", unit).Msg("unit evaluated")
	return r, nil
}

// Unit returns the name of the compilation unit.
func (r *Runtime) Unit() string {
	return r.unit
}

// Class returns the class defined under name. A missing global is a
// ClassNotFound error; a global that is not a map is a ClassDefinition error.
func (r *Runtime) Class(name string) (*Class, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj, err := r.machine.Get(name)
	if err != nil {
		return nil, errz.NewClassNotFound(name).WithCause(err)
	}
	proto, ok := obj.(*object.Map)
	if !ok {
		return nil, errz.NewClassDefinition(name, fmt.Sprintf("%s is a %s, not a class", name, obj.Type()))
	}
	return r.classFor(proto, name), nil
}

// Classes returns the names of the top-level maps of the unit, sorted.
func (r *Runtime) Classes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, name := range r.code.GlobalNames() {
		obj, err := r.machine.Get(name)
		if err != nil {
			continue
		}
		if _, ok := obj.(*object.Map); ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// classFor returns the handle for proto, creating it on first use. The
// caller must hold r.mu.
func (r *Runtime) classFor(proto *object.Map, name string) *Class {
	if c, ok := r.classes[proto]; ok {
		if c.name == "" && name != "" {
			c.name = name
		}
		return c
	}
	if name == "" {
		name = r.globalNameOf(proto)
	}
	c := &Class{rt: r, name: name, proto: proto}
	r.classes[proto] = c
	return c
}

func (r *Runtime) globalNameOf(proto *object.Map) string {
	for _, name := range r.code.GlobalNames() {
		if obj, err := r.machine.Get(name); err == nil && obj == proto {
			return name
		}
	}
	return ""
}

// superOf resolves the parent class of proto, if any.
func (r *Runtime) superOf(proto *object.Map) *Class {
	parent, ok := proto.Get(superKey).(*object.Map)
	if !ok {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.classFor(parent, "")
}

// byName returns an already created class handle by name.
func (r *Runtime) byName(name string) *Class {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.classes {
		if c.name == name {
			return c
		}
	}
	return nil
}

// call invokes fn on the unit's virtual machine.
func (r *Runtime) call(ctx context.Context, fn *object.Function, args []object.Object) (object.Object, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	result, err := r.machine.Call(ctx, fn, args)
	if err != nil {
		return nil, err
	}
	if e, ok := result.(*object.Error); ok {
		return nil, e.Value()
	}
	return result, nil
}
