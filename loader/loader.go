// Package loader defines types from compiled units held in memory.
package loader

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/deepnoodle-ai/mirror/artifact"
	"github.com/deepnoodle-ai/mirror/errz"
	"github.com/deepnoodle-ai/mirror/script"
	"github.com/deepnoodle-ai/mirror/types"
	"github.com/risor-io/risor/builtins"
	"github.com/risor-io/risor/compiler"
	"github.com/rs/zerolog"
)

// Resolver resolves a type by name. A *Loader and a *types.Registry are both
// resolvers, so loaders can be chained.
type Resolver interface {
	Resolve(ctx context.Context, name string) (types.Type, error)
}

// Loader turns armed artifact buffers into types. Resolution delegates to the
// parent first; only names the parent fails to resolve are defined from the
// buffers. Each name is defined at most once, so repeated resolution returns
// the identical handle. A Loader is safe for concurrent use.
type Loader struct {
	mu       sync.Mutex
	parent   Resolver
	globals  map[string]any
	log      zerolog.Logger
	fallback *artifact.Buffer
	sources  map[string]*artifact.Buffer
	units    map[*artifact.Buffer]*script.Runtime
	defined  map[string]types.Type
}

// Option configures a Loader.
type Option func(*Loader)

// WithParent sets the resolver consulted before any armed buffer.
func WithParent(parent Resolver) Option {
	return func(l *Loader) {
		l.parent = parent
	}
}

// WithGlobals sets the globals units are evaluated with. The default is the
// Risor builtins.
func WithGlobals(globals map[string]any) Option {
	return func(l *Loader) {
		l.globals = globals
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Loader) {
		l.log = log
	}
}

// New returns a loader with nothing armed.
func New(opts ...Option) *Loader {
	l := &Loader{
		log:     zerolog.Nop(),
		sources: map[string]*artifact.Buffer{},
		units:   map[*artifact.Buffer]*script.Runtime{},
		defined: map[string]types.Type{},
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.globals == nil {
		l.globals = DefaultGlobals()
	}
	return l
}

// DefaultGlobals returns the Risor builtins keyed by name.
func DefaultGlobals() map[string]any {
	out := map[string]any{}
	for name, fn := range builtins.Builtins() {
		out[name] = fn
	}
	return out
}

// GlobalNames returns the sorted names of the loader's globals, the names a
// unit must be compiled against.
func (l *Loader) GlobalNames() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, 0, len(l.globals))
	for name := range l.globals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Arm sets the buffer used for any name without a dedicated buffer. The
// buffer is not read until a name is resolved.
func (l *Loader) Arm(buf *artifact.Buffer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fallback = buf
}

// ArmNamed sets the buffer used for name.
func (l *Loader) ArmNamed(name string, buf *artifact.Buffer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sources[name] = buf
}

// Resolve returns the type named name.
func (l *Loader) Resolve(ctx context.Context, name string) (types.Type, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if t, ok := l.defined[name]; ok {
		return t, nil
	}
	var parentErr error
	if l.parent != nil {
		t, err := l.parent.Resolve(ctx, name)
		if err == nil {
			l.log.Debug().Str("class", name).Msg("resolved by parent")
			return t, nil
		}
		parentErr = err
	}
	buf := l.sources[name]
	if buf == nil {
		buf = l.fallback
	}
	if buf == nil {
		if parentErr != nil && !errz.IsKind(parentErr, errz.ClassNotFound) {
			return nil, parentErr
		}
		return nil, errz.NewClassNotFound(name)
	}
	t, err := l.define(ctx, name, buf)
	if err != nil {
		l.log.Debug().Err(err).Str("class", name).Msg("define failed")
		return nil, err
	}
	l.defined[name] = t
	l.log.Debug().Str("class", name).Str("type", t.String()).Msg("class defined")
	return t, nil
}

// Defined returns the sorted names of the classes this loader has defined.
func (l *Loader) Defined() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, 0, len(l.defined))
	for name := range l.defined {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (l *Loader) define(ctx context.Context, name string, buf *artifact.Buffer) (types.Type, error) {
	rt, err := l.evaluate(ctx, name, buf)
	if err != nil {
		return nil, err
	}
	class, err := rt.Class(name)
	if err != nil {
		if errz.IsKind(err, errz.ClassNotFound) {
			return nil, errz.NewClassDefinition(name,
				fmt.Sprintf("unit %s does not define %s", rt.Unit(), name))
		}
		return nil, err
	}
	return class, nil
}

// evaluate decodes and runs the unit held by buf, once per buffer.
func (l *Loader) evaluate(ctx context.Context, name string, buf *artifact.Buffer) (*script.Runtime, error) {
	if rt, ok := l.units[buf]; ok {
		return rt, nil
	}
	data := buf.Bytes()
	if len(data) == 0 {
		return nil, errz.NewClassDefinition(name, "no compiled output for "+name)
	}
	unit, err := artifact.Decode(data)
	if err != nil {
		return nil, errz.NewClassDefinition(name, "reading compiled output").WithCause(err)
	}
	for _, g := range unit.Globals {
		if _, ok := l.globals[g]; !ok {
			return nil, errz.NewClassDefinition(name, fmt.Sprintf("unit %s needs global %q", unit.Name, g))
		}
	}
	code, err := compiler.UnmarshalCode(unit.Code)
	if err != nil {
		return nil, errz.NewClassDefinition(name, "decoding compiled code").WithCause(err)
	}
	rt, err := script.Run(ctx, unit.Name, code, l.globals, script.WithLogger(l.log))
	if err != nil {
		return nil, err
	}
	l.units[buf] = rt
	return rt, nil
}
