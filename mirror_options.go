package mirror

import (
	"github.com/deepnoodle-ai/mirror/compile"
	"github.com/deepnoodle-ai/mirror/loader"
	"github.com/deepnoodle-ai/mirror/store"
	"github.com/rs/zerolog"
)

// Option configures a compilation.
type Option func(*options)

type options struct {
	log      *zerolog.Logger
	cache    store.Store
	parent   loader.Resolver
	globals  map[string]any
	multiple bool
	compiler compile.Compiler
}

func collectOptions(opts ...Option) *options {
	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (o *options) loaderOpts() []loader.Option {
	var opts []loader.Option
	if o.log != nil {
		opts = append(opts, loader.WithLogger(*o.log))
	}
	if o.parent != nil {
		opts = append(opts, loader.WithParent(o.parent))
	}
	if o.globals != nil {
		opts = append(opts, loader.WithGlobals(o.globals))
	}
	return opts
}

func (o *options) orchestratorOpts() []compile.Option {
	var opts []compile.Option
	if o.log != nil {
		opts = append(opts, compile.WithLogger(*o.log))
	}
	if o.cache != nil {
		opts = append(opts, compile.WithCache(o.cache))
	}
	if o.multiple {
		opts = append(opts, compile.WithMultipleOutputs())
	}
	return opts
}

// WithLogger sets the logger of the orchestrator and loader.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) {
		o.log = &log
	}
}

// WithCache consults s for compiled units before compiling, and stores new
// ones in it.
func WithCache(s store.Store) Option {
	return func(o *options) {
		o.cache = s
	}
}

// WithParent sets the resolver the loader delegates to first. A Unit's
// Loader or a types.Registry both qualify.
func WithParent(parent loader.Resolver) Option {
	return func(o *options) {
		o.parent = parent
	}
}

// WithGlobals replaces the globals units are compiled against and run
// with. The default is the script builtins.
func WithGlobals(globals map[string]any) Option {
	return func(o *options) {
		o.globals = globals
	}
}

// WithMultipleOutputs gives each requested output its own buffer.
func WithMultipleOutputs() Option {
	return func(o *options) {
		o.multiple = true
	}
}

// WithCompiler replaces the script compiler.
func WithCompiler(c compile.Compiler) Option {
	return func(o *options) {
		o.compiler = c
	}
}
