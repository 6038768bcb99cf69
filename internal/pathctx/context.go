// Package pathctx holds the compile-time state threaded through the validator
// compiler: the path of the node being compiled, debug tracing and the table of
// external values that compiled closures reference instead of rebuilding.
package pathctx

import (
	"strings"

	"github.com/go-logr/logr"
)

// Context is immutable: every method that changes state returns a copy and
// leaves the receiver untouched, so sibling fields never see each other's
// segments. Only the externals table is shared, and it is append-only.
type Context struct {
	path   Path
	debug  bool
	indent int
	ext    *externals
	log    logr.Logger
}

type externals struct {
	values []any
}

// New returns a root context.
func New(log logr.Logger, debug bool) Context {
	return Context{debug: debug, ext: &externals{}, log: log}
}

// PushPath returns a context whose path has seg appended.
func (c Context) PushPath(seg any) Context {
	c.path = c.path.Append(seg)
	return c
}

// Nest returns a context one indentation level deeper for tracing.
func (c Context) Nest() Context {
	c.indent++
	return c
}

// Path returns the current path. Callers must not modify it.
func (c Context) Path() Path { return c.path }

// Trace emits one V(1) log line per compiled node when debug is enabled.
func (c Context) Trace(msg string, kv ...any) {
	if !c.debug {
		return
	}
	args := make([]any, 0, len(kv)+2)
	args = append(args, "path", c.path.String())
	args = append(args, kv...)
	c.log.V(1).Info(strings.Repeat("  ", c.indent)+msg, args...)
}

// Register stores v in the externals table and returns its slot.
func (c Context) Register(v any) int {
	if c.ext == nil {
		panic("pathctx: context was not created with New")
	}
	c.ext.values = append(c.ext.values, v)
	return len(c.ext.values) - 1
}

// External returns the value stored at slot i.
func (c Context) External(i int) any { return c.ext.values[i] }

// Externals returns a copy of the externals table.
func (c Context) Externals() []any {
	if c.ext == nil {
		return nil
	}
	return append([]any(nil), c.ext.values...)
}
