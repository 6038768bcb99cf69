// Package engine holds the token-level JSON helpers used before decoded values
// reach a validator.
package engine

import (
	"bytes"
	"io"

	j "github.com/goccy/go-json"

	"github.com/reoring/skema/internal/pathctx"
)

// DuplicateKey locates an object key that appears twice in the same object.
type DuplicateKey struct {
	Path pathctx.Path // path of the repeated member, ending with its key
	Key  string
}

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type dupFrame struct {
	kind         containerKind
	keys         map[string]struct{}
	expectingKey bool
	key          string // current member key (objects)
	index        int    // current element index (arrays)
}

func (f *dupFrame) segment() any {
	if f.kind == kindObject {
		return f.key
	}
	return f.index
}

// FirstDuplicateKey scans data token by token and returns the first repeated
// object key, or nil. Syntax errors are returned as is.
func FirstDuplicateKey(data []byte) (*DuplicateKey, error) {
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var stack []dupFrame

	// valueDone advances the enclosing container after a complete value.
	valueDone := func() {
		if n := len(stack); n > 0 {
			top := &stack[n-1]
			if top.kind == kindObject {
				top.expectingKey = true
			} else {
				top.index++
			}
		}
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		switch v := tok.(type) {
		case j.Delim:
			switch v {
			case '{':
				stack = append(stack, dupFrame{kind: kindObject, keys: make(map[string]struct{}), expectingKey: true})
			case '[':
				stack = append(stack, dupFrame{kind: kindArray})
			case '}', ']':
				if n := len(stack); n > 0 {
					stack = stack[:n-1]
				}
				valueDone()
			}
		case string:
			if n := len(stack); n > 0 {
				top := &stack[n-1]
				if top.kind == kindObject && top.expectingKey {
					if _, dup := top.keys[v]; dup {
						path := make(pathctx.Path, 0, n)
						for i := range stack[:n-1] {
							path = append(path, stack[i].segment())
						}
						return &DuplicateKey{Path: append(path, v), Key: v}, nil
					}
					top.keys[v] = struct{}{}
					top.key = v
					top.expectingKey = false
					continue
				}
			}
			valueDone()
		default:
			valueDone()
		}
	}
}
