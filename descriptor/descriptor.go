// Package descriptor indexes the members of a type once and resolves field,
// constructor and method lookups against that index.
//
// A Descriptor is built from a type handle, or from an instance whose type
// is used and whose value is bound to every field and method descriptor.
// The index holds, in order:
//
//   - the public constructors, then the declared constructors
//   - the public methods and fields of the whole hierarchy
//   - the declared methods and fields of each level, from the type itself
//     up to its root
//
// Members that are both public and declared appear twice. The index is
// never mutated after construction, so a Descriptor is safe for concurrent
// use.
package descriptor

import (
	"errors"
	"fmt"

	"github.com/deepnoodle-ai/mirror/types"
	"github.com/rs/zerolog"
)

// maxLevels bounds the walk up a type hierarchy.
const maxLevels = 64

// Descriptor is the member index of one type, optionally bound to an
// instance of it.
type Descriptor struct {
	typ      types.Type
	instance any
	log      zerolog.Logger

	ctors   []types.Constructor
	fields  []*Field
	methods []*Method
}

// Option configures a Descriptor.
type Option func(*Descriptor)

// WithInstance binds instance to the descriptor's fields and methods.
func WithInstance(instance any) Option {
	return func(d *Descriptor) {
		d.instance = instance
	}
}

// WithLogger sets the logger used to report failed instantiations.
func WithLogger(log zerolog.Logger) Option {
	return func(d *Descriptor) {
		d.log = log
	}
}

// New indexes the members of t.
func New(t types.Type, opts ...Option) (*Descriptor, error) {
	if t == nil {
		return nil, errors.New("descriptor: nil type")
	}
	d := &Descriptor{typ: t, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(d)
	}
	d.index()
	return d, nil
}

// Of indexes the members of the dynamic type of instance and binds them to
// it.
func Of(instance any, opts ...Option) (*Descriptor, error) {
	if instance == nil {
		return nil, errors.New("descriptor: nil instance")
	}
	opts = append(opts, WithInstance(instance))
	return New(types.TypeOf(instance), opts...)
}

func (d *Descriptor) index() {
	t := d.typ
	d.ctors = append(d.ctors, t.Constructors(types.Public)...)
	d.ctors = append(d.ctors, t.Constructors(types.Declared)...)

	d.methods = append(d.methods, d.bindMethods(t.Methods(types.Public))...)
	d.fields = append(d.fields, d.bindFields(t.Fields(types.Public))...)

	for _, level := range Levels(t) {
		d.methods = append(d.methods, d.bindMethods(level.Methods(types.Declared))...)
		d.fields = append(d.fields, d.bindFields(level.Fields(types.Declared))...)
	}
	d.log.Debug().
		Str("type", t.String()).
		Int("constructors", len(d.ctors)).
		Int("fields", len(d.fields)).
		Int("methods", len(d.methods)).
		Msg("indexed type")
}

// Levels returns t followed by its super types, nearest first. A level seen
// before ends the walk.
func Levels(t types.Type) []types.Type {
	var out []types.Type
	for level := t; level != nil && len(out) < maxLevels; level = level.Super() {
		for _, seen := range out {
			if seen.Equal(level) {
				return out
			}
		}
		out = append(out, level)
	}
	return out
}

func (d *Descriptor) bindFields(fields []types.Field) []*Field {
	out := make([]*Field, len(fields))
	for i, f := range fields {
		out[i] = &Field{field: f, instance: d.instance}
	}
	return out
}

func (d *Descriptor) bindMethods(methods []types.Method) []*Method {
	out := make([]*Method, len(methods))
	for i, m := range methods {
		out[i] = &Method{method: m, instance: d.instance}
	}
	return out
}

// Bind returns a descriptor of the same type bound to instance. The member
// index is shared, not rebuilt.
func (d *Descriptor) Bind(instance any) *Descriptor {
	b := &Descriptor{typ: d.typ, instance: instance, log: d.log, ctors: d.ctors}
	b.fields = make([]*Field, len(d.fields))
	for i, f := range d.fields {
		b.fields[i] = &Field{field: f.field, instance: instance}
	}
	b.methods = make([]*Method, len(d.methods))
	for i, m := range d.methods {
		b.methods[i] = &Method{method: m.method, instance: instance}
	}
	return b
}

// Type returns the described type.
func (d *Descriptor) Type() types.Type {
	return d.typ
}

// Instance returns the bound instance, or nil.
func (d *Descriptor) Instance() any {
	return d.instance
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("descriptor(%s)", d.typ)
}

// IsInstance reports whether x is an instance of the described type.
func (d *Descriptor) IsInstance(x any) bool {
	return d.typ.IsInstance(x)
}

// IsTypeEqual reports whether other denotes the described type.
func (d *Descriptor) IsTypeEqual(other types.Type) bool {
	return other != nil && d.typ.Equal(other)
}

// AllConstructors returns the indexed constructors.
func (d *Descriptor) AllConstructors() []types.Constructor {
	return append([]types.Constructor(nil), d.ctors...)
}

// AllFields returns the indexed fields, duplicates included.
func (d *Descriptor) AllFields() []*Field {
	return append([]*Field(nil), d.fields...)
}

// AllMethods returns the indexed methods, duplicates included.
func (d *Descriptor) AllMethods() []*Method {
	return append([]*Method(nil), d.methods...)
}

// Fields rescans the public fields of the type.
func (d *Descriptor) Fields() []*Field {
	return d.bindFields(d.typ.Fields(types.Public))
}

// Methods rescans the public methods of the type.
func (d *Descriptor) Methods() []*Method {
	return d.bindMethods(d.typ.Methods(types.Public))
}

// DeclaredFields rescans the fields the type itself declares.
func (d *Descriptor) DeclaredFields() []*Field {
	return d.bindFields(d.typ.Fields(types.Declared))
}

// DeclaredMethods rescans the methods the type itself declares.
func (d *Descriptor) DeclaredMethods() []*Method {
	return d.bindMethods(d.typ.Methods(types.Declared))
}
