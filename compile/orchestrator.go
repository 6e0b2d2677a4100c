package compile

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/deepnoodle-ai/mirror/artifact"
	"github.com/deepnoodle-ai/mirror/errz"
	"github.com/deepnoodle-ai/mirror/loader"
	"github.com/deepnoodle-ai/mirror/store"
	"github.com/deepnoodle-ai/mirror/types"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
)

// State is the lifecycle state of an Orchestrator.
type State int

const (
	Configured State = iota
	Compiling
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Configured:
		return "configured"
	case Compiling:
		return "compiling"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrAlreadyUsed is returned by Compile on an orchestrator that has already
// compiled its unit.
var ErrAlreadyUsed = errors.New("compile: orchestrator already used")

// Orchestrator drives one compilation unit through a compiler into memory.
// It is the compiler's FileManager: every output the compiler opens is an
// artifact buffer armed on the loader, so the compiled unit can be loaded
// without touching the filesystem.
//
// An Orchestrator is single use.
type Orchestrator struct {
	mu       sync.Mutex
	id       uuid.UUID
	state    State
	compiler Compiler
	buffer   *artifact.Buffer
	loader   *loader.Loader
	outputs  map[string]*artifact.Buffer
	order    []string
	multiple bool
	cache    store.Store
	log      zerolog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(o *Orchestrator) {
		o.log = log
	}
}

// WithCache makes Compile consult and fill an artifact cache.
func WithCache(s store.Store) Option {
	return func(o *Orchestrator) {
		o.cache = s
	}
}

// WithMultipleOutputs gives each requested output name its own buffer.
// By default every name shares the injected buffer.
func WithMultipleOutputs() Option {
	return func(o *Orchestrator) {
		o.multiple = true
	}
}

// NewOrchestrator returns an orchestrator writing to buf and arms l with it.
func NewOrchestrator(c Compiler, buf *artifact.Buffer, l *loader.Loader, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		id:       uuid.Must(uuid.NewV4()),
		compiler: c,
		buffer:   buf,
		loader:   l,
		outputs:  map[string]*artifact.Buffer{},
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.log = o.log.With().Str("unit_id", o.id.String()).Logger()
	l.Arm(buf)
	return o
}

// ID identifies the compilation unit.
func (o *Orchestrator) ID() uuid.UUID {
	return o.id
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Outputs returns the output names requested so far, in request order.
func (o *Orchestrator) Outputs() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.order...)
}

// OutputFor implements FileManager. The location is not consulted: every
// output goes to the orchestrator's buffer, or to its own buffer per class
// name with WithMultipleOutputs.
func (o *Orchestrator) OutputFor(location Location, className string, kind Kind, sibling *Source) (*artifact.Buffer, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if buf, ok := o.outputs[className]; ok {
		return buf, nil
	}
	buf := o.buffer
	switch {
	case len(o.outputs) == 0:
		buf.SetName(className)
	case o.multiple:
		buf = artifact.NewBuffer(className)
		o.loader.ArmNamed(className, buf)
	}
	o.outputs[className] = buf
	o.order = append(o.order, className)
	o.log.Debug().Str("class", className).Str("kind", kind.String()).Str("location", location.String()).Msg("output opened")
	return buf, nil
}

// LoaderFor implements FileManager.
func (o *Orchestrator) LoaderFor(location Location) *loader.Loader {
	return o.loader
}

// Compile compiles src into memory. It blocks until the compiler returns.
// Rejected sources yield a CompileFailed error and leave the orchestrator
// Failed; the loader is not consulted either way.
func (o *Orchestrator) Compile(ctx context.Context, src Source) error {
	o.mu.Lock()
	if o.state != Configured {
		o.mu.Unlock()
		return ErrAlreadyUsed
	}
	o.state = Compiling
	o.mu.Unlock()

	err := o.compile(ctx, src)

	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.state = Failed
		o.log.Error().Err(err).Str("unit", src.Name).Msg("compilation failed")
		return err
	}
	o.state = Loaded
	o.log.Debug().Str("unit", src.Name).Msg("compilation finished")
	return nil
}

func (o *Orchestrator) compile(ctx context.Context, src Source) error {
	var key string
	if o.cache != nil {
		key = store.Key(src.Name, src.Text)
		if ok := o.fromCache(ctx, key, src); ok {
			return nil
		}
	}
	err := o.compiler.Compile(ctx, &Task{ID: o.id, Source: src, Files: o})
	if err != nil {
		if !errz.IsKind(err, errz.CompileFailed) {
			err = errz.NewCompileFailed(src.Name, err)
		}
		return err
	}
	if o.cache != nil {
		o.toCache(ctx, key, src)
	}
	return nil
}

func (o *Orchestrator) fromCache(ctx context.Context, key string, src Source) bool {
	data, err := o.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			o.log.Warn().Err(err).Msg("artifact cache lookup failed")
		}
		return false
	}
	out, err := o.OutputFor(ClassOutput, src.Name, KindClass, &src)
	if err != nil {
		return false
	}
	if _, err := out.Write(data); err != nil {
		out.Reset()
		return false
	}
	o.log.Debug().Str("unit", src.Name).Str("key", key).Msg("artifact cache hit")
	return true
}

func (o *Orchestrator) toCache(ctx context.Context, key string, src Source) {
	o.mu.Lock()
	buf := o.outputs[src.Name]
	o.mu.Unlock()
	if buf == nil {
		return
	}
	if err := o.cache.Put(ctx, key, buf.Bytes()); err != nil {
		o.log.Warn().Err(err).Msg("artifact cache store failed")
	}
}

// Load resolves name through the loader. It is only valid after a
// successful Compile.
func (o *Orchestrator) Load(ctx context.Context, name string) (types.Type, error) {
	if s := o.State(); s != Loaded {
		return nil, fmt.Errorf("compile: cannot load %q while %s", name, s)
	}
	return o.loader.Resolve(ctx, name)
}
