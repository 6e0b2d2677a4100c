// Package artifact holds compiled output in memory: a Buffer the compiler
// writes into and the Unit envelope that wraps compiled code.
package artifact

import (
	"bytes"
	"sync"
)

// Buffer is an in-memory sink for compiler output. It replaces the file a
// compiler would normally write, so a unit can be compiled and loaded without
// touching the filesystem. A Buffer is safe for concurrent use.
type Buffer struct {
	mu   sync.Mutex
	name string
	buf  bytes.Buffer
}

// NewBuffer returns an empty buffer. The name is informational and is set by
// whoever requests the output.
func NewBuffer(name string) *Buffer {
	return &Buffer{name: name}
}

// Name returns the name of the unit this buffer was opened for.
func (b *Buffer) Name() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.name
}

// SetName records the name of the unit written to the buffer.
func (b *Buffer) SetName(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.name = name
}

func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// Bytes returns a copy of the accumulated output.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Clone(b.buf.Bytes())
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

// Reset discards the accumulated output.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}
