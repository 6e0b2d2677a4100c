package compile

import (
	"context"

	"github.com/deepnoodle-ai/mirror/artifact"
	"github.com/deepnoodle-ai/mirror/errz"
	"github.com/hashicorp/go-multierror"
	"github.com/risor-io/risor/compiler"
	"github.com/risor-io/risor/parser"
)

// RisorCompiler compiles Risor source into artifact units.
type RisorCompiler struct {
	globals []string
}

// NewRisorCompiler returns a compiler that resolves the given global names.
// They must match the globals of the loader that will evaluate the output.
func NewRisorCompiler(globalNames []string) *RisorCompiler {
	return &RisorCompiler{globals: append([]string(nil), globalNames...)}
}

func (c *RisorCompiler) Compile(ctx context.Context, task *Task) error {
	src := task.Source
	code, err := c.build(ctx, src)
	if err != nil {
		return errz.NewCompileFailed(src.Name, err)
	}
	data, err := compiler.MarshalCode(code)
	if err != nil {
		return errz.NewCompileFailed(src.Name, err)
	}
	encoded, err := artifact.NewUnit(task.ID, src.Name, c.globals, data).Encode()
	if err != nil {
		return errz.NewCompileFailed(src.Name, err)
	}
	out, err := task.Files.OutputFor(ClassOutput, src.Name, KindClass, &src)
	if err != nil {
		return err
	}
	_, err = out.Write(encoded)
	return err
}

func (c *RisorCompiler) build(ctx context.Context, src Source) (*compiler.Code, error) {
	program, err := parser.Parse(ctx, src.Text)
	if err != nil {
		return nil, diagnostics(err)
	}
	code, err := compiler.Compile(program, compiler.WithGlobalNames(c.globals))
	if err != nil {
		return nil, diagnostics(err)
	}
	return code, nil
}

// diagnostics collects the errors reported by the parser or compiler.
func diagnostics(err error) *multierror.Error {
	var result *multierror.Error
	if joined, ok := err.(interface{ Unwrap() []error }); ok && len(joined.Unwrap()) > 0 {
		return multierror.Append(result, joined.Unwrap()...)
	}
	return multierror.Append(result, err)
}
