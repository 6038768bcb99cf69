package pathctx

import (
	"strconv"
	"strings"
)

// AnyIndex stands for "some element index" in paths built at compile time.
// Array validators substitute the real index when an element fails.
const AnyIndex = -1

// Path is an ordered list of segments: string field names and int indexes.
// A Path is never modified after it has been handed out; Append copies.
type Path []any

// Append returns a new Path with seg added. Segments other than string and int
// are rejected because they cannot be rendered.
func (p Path) Append(seg any) Path {
	switch seg.(type) {
	case string, int:
	default:
		panic("pathctx: path segment must be a string or an int")
	}
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, seg)
}

// Prepend returns a new Path with seg in front of p.
func (p Path) Prepend(seg any) Path {
	out := make(Path, 0, len(p)+1)
	out = append(out, seg)
	return append(out, p...)
}

// Clone copies p. An empty path clones to nil so root paths compare equal
// regardless of how they were built.
func (p Path) Clone() Path {
	if len(p) == 0 {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// String renders the path as a.b[0].c; the root renders as "".
func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	b := &strings.Builder{}
	for i, seg := range p {
		switch s := seg.(type) {
		case string:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(s)
		case int:
			b.WriteByte('[')
			if s == AnyIndex {
				b.WriteByte('*')
			} else {
				b.WriteString(strconv.Itoa(s))
			}
			b.WriteByte(']')
		}
	}
	return b.String()
}

// Pointer renders the path as an RFC 6901 JSON Pointer; the root renders as "/".
func (p Path) Pointer() string {
	if len(p) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, seg := range p {
		b.WriteByte('/')
		switch s := seg.(type) {
		case string:
			// escape '~' -> '~0', '/' -> '~1'
			b.WriteString(strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1"))
		case int:
			if s == AnyIndex {
				b.WriteByte('*')
			} else {
				b.WriteString(strconv.Itoa(s))
			}
		}
	}
	return b.String()
}

// Equal reports whether p and q hold the same segments.
func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}
