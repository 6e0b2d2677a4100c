package script

import (
	"sort"
	"strings"

	"github.com/deepnoodle-ai/mirror/types"
	"github.com/risor-io/risor/object"
)

// maxDepth bounds walks along __super__ chains.
const maxDepth = 64

// Class is a types.Type backed by a prototype map of an evaluated unit.
// Handles compare equal when they share the prototype.
type Class struct {
	rt    *Runtime
	name  string
	proto *object.Map
}

var _ types.Type = (*Class)(nil)

func (c *Class) Name() string {
	if c.name == "" {
		return "<anonymous>"
	}
	return c.name
}

func (c *Class) String() string {
	return c.rt.unit + "." + c.Name()
}

func (c *Class) Kind() types.Kind {
	return types.KindScript
}

// Package returns the name of the unit that defines the class.
func (c *Class) Package() string {
	return c.rt.unit
}

// TypeArgs returns nil; script classes are not generic.
func (c *Class) TypeArgs() []string {
	return nil
}

// Runtime returns the runtime the class was defined by.
func (c *Class) Runtime() *Runtime {
	return c.rt
}

func (c *Class) Super() types.Type {
	if sup := c.super(); sup != nil {
		return sup
	}
	return nil
}

func (c *Class) super() *Class {
	return c.rt.superOf(c.proto)
}

func (c *Class) Equal(other types.Type) bool {
	o, ok := other.(*Class)
	return ok && o.proto == c.proto
}

// AssignableTo reports whether target is this class, one of its ancestors
// or the dynamic type.
func (c *Class) AssignableTo(target types.Type) bool {
	if types.IsDynamic(target) {
		return true
	}
	for _, level := range c.chain() {
		if level.Equal(target) {
			return true
		}
	}
	return false
}

func (c *Class) IsInstance(value any) bool {
	obj, ok := value.(*Object)
	return ok && obj.class.AssignableTo(c)
}

// chain returns the class followed by its ancestors, stopping at the first
// repeated prototype.
func (c *Class) chain() []*Class {
	var out []*Class
	seen := map[*object.Map]bool{}
	for level := c; level != nil && len(out) < maxDepth; level = level.super() {
		if seen[level.proto] {
			break
		}
		seen[level.proto] = true
		out = append(out, level)
	}
	return out
}

// entries returns the prototype's member entries sorted by name, without
// the reserved keys.
func (c *Class) entries() []entry {
	items := c.proto.Value()
	out := make([]entry, 0, len(items))
	for name, value := range items {
		if name == superKey || name == classKey {
			continue
		}
		out = append(out, entry{name: name, value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

type entry struct {
	name  string
	value object.Object
}

func isPublic(name string) bool {
	return !strings.HasPrefix(name, "_")
}

func (c *Class) Constructors(scope types.Scope) []types.Constructor {
	out := []types.Constructor{&zeroConstructor{class: c}}
	if scope == types.Public && !isPublic(c.name) {
		out = out[:0]
	}
	if fn, ok := c.proto.Get(initKey).(*object.Function); ok {
		out = append(out, &initConstructor{class: c, fn: fn, params: paramTypes(fn)})
	}
	return out
}

func (c *Class) Fields(scope types.Scope) []types.Field {
	var out []types.Field
	if scope == types.Declared {
		for _, e := range c.entries() {
			if _, ok := e.value.(*object.Function); ok {
				continue
			}
			out = append(out, newField(e, c))
		}
		return out
	}
	seen := map[string]bool{}
	for _, level := range c.chain() {
		for _, e := range level.entries() {
			if seen[e.name] {
				continue
			}
			seen[e.name] = true
			if _, ok := e.value.(*object.Function); ok || !isPublic(e.name) {
				continue
			}
			out = append(out, newField(e, level))
		}
	}
	return out
}

func (c *Class) Methods(scope types.Scope) []types.Method {
	var out []types.Method
	if scope == types.Declared {
		for _, e := range c.entries() {
			if fn, ok := e.value.(*object.Function); ok && e.name != initKey {
				out = append(out, newMethod(e.name, fn, c))
			}
		}
		return out
	}
	seen := map[string]bool{}
	for _, level := range c.chain() {
		for _, e := range level.entries() {
			if seen[e.name] {
				continue
			}
			seen[e.name] = true
			fn, ok := e.value.(*object.Function)
			if !ok || e.name == initKey || !isPublic(e.name) {
				continue
			}
			out = append(out, newMethod(e.name, fn, level))
		}
	}
	return out
}

// instantiate builds an instance holding a copy of every field along the
// chain, the nearest definition winning.
func (c *Class) instantiate() *Object {
	values := map[string]object.Object{}
	chain := c.chain()
	for i := len(chain) - 1; i >= 0; i-- {
		for _, e := range chain[i].entries() {
			if _, ok := e.value.(*object.Function); ok {
				continue
			}
			values[e.name] = cloneValue(e.value)
		}
	}
	values[classKey] = object.NewString(c.Name())
	return &Object{class: c, m: object.NewMap(values)}
}

func cloneValue(v object.Object) object.Object {
	switch v := v.(type) {
	case *object.List:
		return object.NewList(append([]object.Object(nil), v.Value()...))
	case *object.Map:
		items := make(map[string]object.Object, len(v.Value()))
		for k, item := range v.Value() {
			items[k] = item
		}
		return object.NewMap(items)
	default:
		return v
	}
}
