package main

import (
	"encoding/json"
	"strings"

	"github.com/deepnoodle-ai/mirror/descriptor"
	"github.com/deepnoodle-ai/mirror/types"
	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
)

var (
	red   = color.New(color.FgRed).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
	faint = color.New(color.Faint).SprintFunc()
)

var outputFormatsCompletion = []string{"json", "text"}

type member struct {
	Name       string   `json:"name"`
	Type       string   `json:"type,omitempty"`
	Params     []string `json:"params,omitempty"`
	Returns    string   `json:"returns,omitempty"`
	DeclaredBy string   `json:"declared_by"`
}

type report struct {
	Class        string   `json:"class"`
	Qualified    string   `json:"qualified"`
	Kind         string   `json:"kind"`
	Package      string   `json:"package,omitempty"`
	TypeArgs     []string `json:"type_args,omitempty"`
	Supers       []string `json:"supers,omitempty"`
	Constructors []member `json:"constructors"`
	Fields       []member `json:"fields"`
	Methods      []member `json:"methods"`
}

func typeName(t types.Type) string {
	switch {
	case t == nil:
		return ""
	case types.IsDynamic(t):
		return "any"
	}
	return t.String()
}

func typeNames(ts []types.Type) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = typeName(t)
	}
	return out
}

func newReport(d *descriptor.Descriptor) report {
	t := d.Type()
	r := report{
		Class:        t.Name(),
		Qualified:    t.String(),
		Kind:         t.Kind().String(),
		Package:      t.Package(),
		TypeArgs:     t.TypeArgs(),
		Constructors: []member{},
		Fields:       []member{},
		Methods:      []member{},
	}
	for _, level := range descriptor.Levels(t)[1:] {
		r.Supers = append(r.Supers, level.String())
	}
	for _, c := range t.Constructors(types.Public) {
		r.Constructors = append(r.Constructors, member{
			Name:       c.Name(),
			Params:     typeNames(c.ParamTypes()),
			DeclaredBy: typeName(c.DeclaringType()),
		})
	}
	for _, f := range d.Fields() {
		r.Fields = append(r.Fields, member{
			Name:       f.Name(),
			Type:       typeName(f.Type()),
			DeclaredBy: typeName(f.DeclaringType()),
		})
	}
	for _, m := range d.Methods() {
		r.Methods = append(r.Methods, member{
			Name:       m.Name(),
			Params:     typeNames(m.ParamTypes()),
			Returns:    typeName(m.ReturnType()),
			DeclaredBy: typeName(m.DeclaringType()),
		})
	}
	return r
}

func (r report) text() string {
	var b strings.Builder
	b.WriteString(bold("class "+r.Class) + " " + faint("("+r.Kind+")") + "\n")
	if r.Package != "" {
		b.WriteString("  package " + r.Package + "\n")
	}
	if len(r.TypeArgs) > 0 {
		b.WriteString("  type args " + strings.Join(r.TypeArgs, ", ") + "\n")
	}
	for _, s := range r.Supers {
		b.WriteString("  extends " + s + "\n")
	}
	section := func(title string, items []member, line func(member) string) {
		b.WriteString(cyan(title) + "\n")
		if len(items) == 0 {
			b.WriteString("  " + faint("none") + "\n")
		}
		for _, m := range items {
			b.WriteString("  " + line(m) + "\n")
		}
	}
	section("constructors", r.Constructors, func(m member) string {
		return m.Name + "(" + strings.Join(m.Params, ", ") + ")"
	})
	section("fields", r.Fields, func(m member) string {
		return m.Name + " " + m.Type + faint(" from "+m.DeclaredBy)
	})
	section("methods", r.Methods, func(m member) string {
		return m.Name + "(" + strings.Join(m.Params, ", ") + ") " + m.Returns + faint(" from "+m.DeclaredBy)
	})
	return b.String()
}

func marshal(v any, noColor bool) ([]byte, error) {
	if noColor || color.NoColor {
		return json.MarshalIndent(v, "", "  ")
	}
	return prettyjson.Marshal(v)
}
