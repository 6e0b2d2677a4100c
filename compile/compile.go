// Package compile runs a compiler against an in-memory file manager, so the
// compiled output of a unit lands in an artifact buffer a loader can read
// without touching the filesystem.
package compile

import (
	"context"

	"github.com/deepnoodle-ai/mirror/artifact"
	"github.com/deepnoodle-ai/mirror/loader"
	"github.com/gofrs/uuid"
)

// Location identifies where a compiler wants to read or write files.
type Location int

const (
	// ClassOutput is where compiled units are written.
	ClassOutput Location = iota + 1
	// SourcePath is where sources are read from.
	SourcePath
)

func (l Location) String() string {
	switch l {
	case ClassOutput:
		return "class-output"
	case SourcePath:
		return "source-path"
	default:
		return "unknown"
	}
}

// Kind identifies the kind of file a compiler asks for.
type Kind int

const (
	KindClass Kind = iota + 1
	KindSource
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindSource:
		return "source"
	default:
		return "unknown"
	}
}

// Source is one compilation unit.
type Source struct {
	Name string
	Text string
}

// FileManager hands a compiler the buffers to write to and the loader that
// will read them.
type FileManager interface {
	// OutputFor returns the buffer compiled output for className is written
	// to. In-memory managers may ignore location.
	OutputFor(location Location, className string, kind Kind, sibling *Source) (*artifact.Buffer, error)

	// LoaderFor returns the loader that reads what was written to location.
	LoaderFor(location Location) *loader.Loader
}

// Task is one invocation of a compiler.
type Task struct {
	ID     uuid.UUID
	Source Source
	Files  FileManager
}

// Compiler is a compiler service. Compile must write its output through
// task.Files and report rejected sources as an error.
type Compiler interface {
	Compile(ctx context.Context, task *Task) error
}

// CompilerFunc adapts a function to the Compiler interface.
type CompilerFunc func(ctx context.Context, task *Task) error

func (f CompilerFunc) Compile(ctx context.Context, task *Task) error {
	return f(ctx, task)
}
