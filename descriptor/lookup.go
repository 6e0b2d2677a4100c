package descriptor

import (
	"context"

	"github.com/deepnoodle-ai/mirror/errz"
	"github.com/deepnoodle-ai/mirror/types"
)

// Field searches the indexed fields. A field named name wins outright.
// Otherwise the fields whose type is assignable to t are counted in index
// order and the one at position pos is returned. An empty name or a nil t
// skips that part of the search.
func (d *Descriptor) Field(name string, t types.Type, pos int) (*Field, error) {
	if name != "" {
		for _, f := range d.fields {
			if f.Name() == name {
				return f, nil
			}
		}
	}
	if t != nil {
		index := -1
		for _, f := range d.fields {
			if f.Type().AssignableTo(t) {
				index++
				if index == pos {
					return f, nil
				}
			}
		}
	}
	query := ""
	if t != nil {
		query = t.String()
	}
	return nil, errz.NewFieldNotFound(d.typ.String(), name, query, pos)
}

// FieldByName returns the first indexed field named name.
func (d *Descriptor) FieldByName(name string) (*Field, error) {
	return d.Field(name, nil, -1)
}

// FieldByType returns the pos-th indexed field assignable to t, counting
// from zero.
func (d *Descriptor) FieldByType(t types.Type, pos int) (*Field, error) {
	return d.Field("", t, pos)
}

// FieldByTypeAndName returns the field named name. The type only qualifies
// the error reported when no such field exists.
func (d *Descriptor) FieldByTypeAndName(t types.Type, name string) (*Field, error) {
	return d.Field(name, t, -1)
}

// ConstructorAt returns the i-th indexed constructor.
func (d *Descriptor) ConstructorAt(i int) (types.Constructor, error) {
	if i < 0 || i >= len(d.ctors) {
		return nil, errz.NewConstructorIndexNotFound(d.typ.String(), i)
	}
	return d.ctors[i], nil
}

// Constructor returns the first indexed constructor whose parameter types
// equal params after primitive normalization. Only when none does is the
// first constructor accepting params through dynamic slots returned.
func (d *Descriptor) Constructor(params ...types.Type) (types.Constructor, error) {
	want := types.NormalizeAll(params)
	var loose types.Constructor
	for _, c := range d.ctors {
		have := types.NormalizeAll(c.ParamTypes())
		if types.Compare(have, want) {
			return c, nil
		}
		if loose == nil && types.Accepts(have, want) {
			loose = c
		}
	}
	if loose != nil {
		return loose, nil
	}
	return nil, errz.NewConstructorNotFound(d.typ.String(), types.Strings(want))
}

// New resolves a constructor from the dynamic types of args and invokes it.
// Failures are logged and returned.
func (d *Descriptor) New(ctx context.Context, args ...any) (any, error) {
	c, err := d.Constructor(types.TypesOf(args...)...)
	if err != nil {
		d.log.Error().Err(err).Str("type", d.typ.String()).Msg("no constructor for arguments")
		return nil, err
	}
	v, err := c.New(ctx, args...)
	if err != nil {
		d.log.Error().Err(err).Str("type", d.typ.String()).Str("constructor", c.Name()).Msg("instantiation failed")
		return nil, err
	}
	return v, nil
}

// MethodByReturnType returns the first indexed method whose return type is
// exactly t.
func (d *Descriptor) MethodByReturnType(t types.Type) (*Method, error) {
	if t == nil {
		return nil, errz.NewMethodNotFound(d.typ.String(), "", "", nil)
	}
	for _, m := range d.methods {
		if m.ReturnType().Equal(t) {
			return m, nil
		}
	}
	return nil, errz.NewMethodNotFound(d.typ.String(), "", t.String(), nil)
}

// MethodBySignature scans the public methods for one whose parameter types
// equal params after primitive normalization, falling back to the first
// one accepting them through dynamic slots. A non-empty name must match
// too. Unlike constructor resolution, no match is not an error.
func (d *Descriptor) MethodBySignature(name string, params ...types.Type) (*Method, bool) {
	want := types.NormalizeAll(params)
	var loose *Method
	for _, m := range d.Methods() {
		if name != "" && m.Name() != name {
			continue
		}
		have := types.NormalizeAll(m.ParamTypes())
		if types.Compare(have, want) {
			return m, true
		}
		if loose == nil && types.Accepts(have, want) {
			loose = m
		}
	}
	return loose, loose != nil
}

// MethodByName returns the first public method named name.
func (d *Descriptor) MethodByName(name string) (*Method, bool) {
	for _, m := range d.Methods() {
		if m.Name() == name {
			return m, true
		}
	}
	return nil, false
}
