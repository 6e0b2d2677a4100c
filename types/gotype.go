package types

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxEmbedDepth bounds walks along embedded struct chains.
const maxEmbedDepth = 64

var anyType = reflect.TypeOf((*any)(nil)).Elem()

// Dynamic is the type of values whose type is only known at run time. It is
// the Go empty interface, and it matches any type during overload resolution.
var Dynamic Type = &GoType{rt: anyType, reg: defaultRegistry}

// GoType is a Type backed by a reflect.Type.
//
// The super type of a struct is its first embedded struct field. Methods are
// taken from the pointer method set, so value and pointer receivers are both
// reported.
type GoType struct {
	rt  reflect.Type
	reg *Registry
}

// Go returns the handle for rt using the default registry.
func Go(rt reflect.Type) *GoType {
	return defaultRegistry.Type(rt)
}

// For returns the handle for the type parameter T.
func For[T any]() *GoType {
	return Go(reflect.TypeOf((*T)(nil)).Elem())
}

// TypeOf returns the handle for the dynamic type of v. Values implementing
// Typed report their own handle; a nil value is Dynamic.
func TypeOf(v any) Type {
	switch v := v.(type) {
	case nil:
		return Dynamic
	case Typed:
		return v.MirrorType()
	}
	return Go(reflect.TypeOf(v))
}

// TypesOf returns the dynamic types of args.
func TypesOf(args ...any) []Type {
	out := make([]Type, len(args))
	for i, arg := range args {
		out[i] = TypeOf(arg)
	}
	return out
}

// Reflect returns the underlying reflect.Type.
func (t *GoType) Reflect() reflect.Type {
	return t.rt
}

// Registry returns the registry the handle takes constructors from.
func (t *GoType) Registry() *Registry {
	return t.reg
}

func (t *GoType) Name() string {
	if name := t.rt.Name(); name != "" {
		return name
	}
	if t.rt.Kind() == reflect.Ptr && t.rt.Elem().Name() != "" {
		return "*" + t.rt.Elem().Name()
	}
	return t.rt.String()
}

func (t *GoType) String() string {
	return t.rt.String()
}

func (t *GoType) Kind() Kind {
	return KindGo
}

func (t *GoType) Package() string {
	return indirect(t.rt).PkgPath()
}

func (t *GoType) TypeArgs() []string {
	return typeArgs(indirect(t.rt).Name())
}

// typeArgs splits the bracketed argument list of an instantiated type name
// such as "Pair[string,map[string]int]".
func typeArgs(name string) []string {
	open := strings.IndexByte(name, '[')
	if open < 0 || !strings.HasSuffix(name, "]") {
		return nil
	}
	inner := name[open+1 : len(name)-1]
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	return append(out, strings.TrimSpace(inner[start:]))
}

func (t *GoType) Super() Type {
	s := structOf(t.rt)
	if s == nil {
		return nil
	}
	if sup := superStruct(s); sup != nil {
		return t.reg.Type(sup)
	}
	return nil
}

func (t *GoType) Equal(other Type) bool {
	o, ok := other.(*GoType)
	return ok && o.rt == t.rt
}

// AssignableTo follows Go assignability, extended along embedded struct
// chains so that a struct is assignable to each struct it embeds.
func (t *GoType) AssignableTo(target Type) bool {
	o, ok := target.(*GoType)
	if !ok {
		return false
	}
	if t.rt.AssignableTo(o.rt) {
		return true
	}
	from, to := t.rt, o.rt
	if from.Kind() == reflect.Ptr && to.Kind() == reflect.Ptr {
		from, to = from.Elem(), to.Elem()
	} else if from.Kind() == reflect.Ptr || to.Kind() == reflect.Ptr {
		return false
	}
	return embeds(from, to)
}

func (t *GoType) IsInstance(value any) bool {
	if value == nil {
		return false
	}
	vt := reflect.TypeOf(value)
	if vt.AssignableTo(t.rt) {
		return true
	}
	return embeds(indirect(vt), indirect(t.rt))
}

func (t *GoType) Constructors(scope Scope) []Constructor {
	var out []Constructor
	zero := &zeroConstructor{typ: t}
	if scope == Declared || zero.Exported() {
		out = append(out, zero)
	}
	for _, c := range t.reg.constructors(indirect(t.rt)) {
		if scope == Declared || c.Exported() {
			out = append(out, c)
		}
	}
	return out
}

func (t *GoType) Fields(scope Scope) []Field {
	s := structOf(t.rt)
	if s == nil {
		return nil
	}
	var out []Field
	if scope == Public {
		for _, sf := range reflect.VisibleFields(s) {
			if sf.Anonymous || !sf.IsExported() {
				continue
			}
			out = append(out, &goField{
				sf:    sf,
				owner: s,
				decl:  t.reg.Type(declaringStruct(s, sf.Index)),
				typ:   t.reg.Type(sf.Type),
			})
		}
		return out
	}
	decl := t.reg.Type(s)
	for i := 0; i < s.NumField(); i++ {
		sf := s.Field(i)
		if sf.Anonymous {
			continue
		}
		out = append(out, &goField{sf: sf, owner: s, decl: decl, typ: t.reg.Type(sf.Type)})
	}
	return out
}

func (t *GoType) Methods(scope Scope) []Method {
	mset := methodSet(t.rt)
	s := structOf(t.rt)
	var hidden map[string]bool
	if scope == Declared && s != nil {
		hidden = promotedMethods(s)
	}
	var out []Method
	for i := 0; i < mset.NumMethod(); i++ {
		m := mset.Method(i)
		if hidden[m.Name] {
			continue
		}
		decl := t.reg.Type(t.rt)
		if s != nil {
			decl = t.reg.Type(declaringLevel(s, m.Name))
		}
		out = append(out, newGoMethod(m, mset, decl, t.reg))
	}
	return out
}

// structOf returns the struct type behind rt, looking through one pointer.
func structOf(rt reflect.Type) reflect.Type {
	rt = indirect(rt)
	if rt.Kind() != reflect.Struct {
		return nil
	}
	return rt
}

func indirect(rt reflect.Type) reflect.Type {
	if rt.Kind() == reflect.Ptr {
		return rt.Elem()
	}
	return rt
}

// superStruct returns the struct type of the first embedded struct field.
func superStruct(s reflect.Type) reflect.Type {
	for i := 0; i < s.NumField(); i++ {
		f := s.Field(i)
		if !f.Anonymous {
			continue
		}
		if et := indirect(f.Type); et.Kind() == reflect.Struct {
			return et
		}
	}
	return nil
}

// embeds reports whether to appears on the embedded super chain of from.
func embeds(from, to reflect.Type) bool {
	cur := from
	for depth := 0; cur != nil && depth < maxEmbedDepth; depth++ {
		if cur == to {
			return true
		}
		if cur.Kind() != reflect.Struct {
			return false
		}
		cur = superStruct(cur)
	}
	return false
}

// declaringStruct follows a promoted field index path to the struct that
// declares the field.
func declaringStruct(s reflect.Type, index []int) reflect.Type {
	cur := s
	for _, i := range index[:len(index)-1] {
		cur = indirect(cur.Field(i).Type)
	}
	return cur
}

// methodSet returns the type whose method set describes rt's methods.
func methodSet(rt reflect.Type) reflect.Type {
	switch {
	case rt.Kind() == reflect.Interface, rt.Kind() == reflect.Ptr:
		return rt
	default:
		return reflect.PointerTo(rt)
	}
}

// promotedMethods returns the names of methods that s only has because one of
// its embedded fields has them.
func promotedMethods(s reflect.Type) map[string]bool {
	out := map[string]bool{}
	for i := 0; i < s.NumField(); i++ {
		f := s.Field(i)
		if !f.Anonymous {
			continue
		}
		mset := methodSet(indirect(f.Type))
		for j := 0; j < mset.NumMethod(); j++ {
			out[mset.Method(j).Name] = true
		}
	}
	return out
}

// declaringLevel attributes a method to the deepest struct on the super chain
// whose method set still has it. Go reflection cannot tell a shadowing
// method from a promoted one, so shadowed names land on the ancestor.
func declaringLevel(s reflect.Type, name string) reflect.Type {
	level := s
	for depth := 0; depth < maxEmbedDepth; depth++ {
		sup := superStruct(level)
		if sup == nil || sup == level {
			break
		}
		if _, ok := reflect.PointerTo(sup).MethodByName(name); !ok {
			break
		}
		level = sup
	}
	return level
}

func isExportedName(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}
