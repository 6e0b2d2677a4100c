// Package mirror resolves the members of Go types and compiled script
// classes through one descriptor API, and compiles script source straight
// into a loader without touching the filesystem.
package mirror

import (
	"context"
	"reflect"

	"github.com/deepnoodle-ai/mirror/artifact"
	"github.com/deepnoodle-ai/mirror/compile"
	"github.com/deepnoodle-ai/mirror/descriptor"
	"github.com/deepnoodle-ai/mirror/loader"
	"github.com/deepnoodle-ai/mirror/types"
	lru "github.com/hashicorp/golang-lru"
)

// DescriptorCacheSize bounds the number of descriptors Class keeps.
const DescriptorCacheSize = 512

var descriptors, _ = lru.New(DescriptorCacheSize)

type goKey struct {
	rt  reflect.Type
	reg *types.Registry
}

func cacheKey(t types.Type) any {
	if g, ok := t.(*types.GoType); ok {
		return goKey{rt: g.Reflect(), reg: g.Registry()}
	}
	return t
}

// Class returns the unbound descriptor of t. Descriptors are indexed once
// and shared; use Bind to attach an instance.
func Class(t types.Type) (*descriptor.Descriptor, error) {
	if t == nil {
		return descriptor.New(nil)
	}
	key := cacheKey(t)
	if d, ok := descriptors.Get(key); ok {
		return d.(*descriptor.Descriptor), nil
	}
	d, err := descriptor.New(t)
	if err != nil {
		return nil, err
	}
	descriptors.Add(key, d)
	return d, nil
}

// Of returns a descriptor bound to v.
func Of(v any) (*descriptor.Descriptor, error) {
	if v == nil {
		return descriptor.Of(nil)
	}
	d, err := Class(types.TypeOf(v))
	if err != nil {
		return nil, err
	}
	return d.Bind(v), nil
}

// TypeOf returns the type handle of v.
func TypeOf(v any) types.Type {
	return types.TypeOf(v)
}

// Unit is a compiled unit whose classes can be loaded.
type Unit struct {
	orchestrator *compile.Orchestrator
	loader       *loader.Loader
}

// CompileUnit compiles source in memory and arms a fresh loader with the
// result.
func CompileUnit(ctx context.Context, name, source string, opts ...Option) (*Unit, error) {
	cfg := collectOptions(opts...)
	l := loader.New(cfg.loaderOpts()...)
	c := cfg.compiler
	if c == nil {
		c = compile.NewRisorCompiler(l.GlobalNames())
	}
	o := compile.NewOrchestrator(c, artifact.NewBuffer(name), l, cfg.orchestratorOpts()...)
	if err := o.Compile(ctx, compile.Source{Name: name, Text: source}); err != nil {
		return nil, err
	}
	return &Unit{orchestrator: o, loader: l}, nil
}

// Compile compiles source as a unit called name and loads the class of the
// same name.
func Compile(ctx context.Context, name, source string, opts ...Option) (types.Type, error) {
	u, err := CompileUnit(ctx, name, source, opts...)
	if err != nil {
		return nil, err
	}
	return u.Load(ctx, name)
}

// Load resolves a class of the unit.
func (u *Unit) Load(ctx context.Context, class string) (types.Type, error) {
	return u.orchestrator.Load(ctx, class)
}

// Outputs returns the names of the unit's in-memory outputs.
func (u *Unit) Outputs() []string {
	return u.orchestrator.Outputs()
}

// Loader returns the loader armed with the unit. It can serve as the parent
// of further compilations.
func (u *Unit) Loader() *loader.Loader {
	return u.loader
}
