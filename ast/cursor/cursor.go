// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package cursor implements traversal over a materialized JSON value.
package cursor

import (
	"fmt"
	"strconv"

	"github.com/creachadair/rtjson/ast"
)

// A Cursor is a pointer that navigates into the structure of an ast.Value.
type Cursor struct {
	cur ast.Value
	err error
}

// New constructs a new Cursor positioned at origin.
func New(origin ast.Value) *Cursor { return &Cursor{cur: origin} }

// Value reports the current value under the cursor.
func (c *Cursor) Value() ast.Value { return c.cur }

// Err reports the error from the most recent traversal, if any.
func (c *Cursor) Err() error { return c.err }

// Down traverses a path into the structure of c starting from the current
// value, and returns c. Each element of path is either a string or an int.
//
// A string selects the member of an object with that key. If the current
// value is an array and the string is a decimal integer, it is used as an
// index, so that paths split from dotted text like "items.0.name" work.
//
// An int selects an element of an array. Negative indices count backward from
// the end (-1 is last, -2 second last).
//
// If the path cannot be completely consumed, traversal stops where it failed
// and an error is recorded. Use Err to recover the error.
func (c *Cursor) Down(path ...any) *Cursor {
	c.err = nil
	for _, elt := range path {
		if s, ok := elt.(string); ok {
			if _, isArray := c.cur.(ast.Array); isArray {
				if i, err := strconv.Atoi(s); err == nil {
					elt = i
				}
			}
		}

		switch t := elt.(type) {
		case string:
			obj, ok := c.cur.(ast.Object)
			if !ok {
				return c.setErrorf("cannot traverse %T with %q", c.cur, t)
			}
			m := obj.Find(t)
			if m == nil {
				return c.setErrorf("key %q not found", t)
			}
			c.cur = m.Value

		case int:
			arr, ok := c.cur.(ast.Array)
			if !ok {
				return c.setErrorf("cannot traverse %T with %d", c.cur, t)
			}
			i := t
			if i < 0 {
				i += len(arr)
			}
			if i < 0 || i >= len(arr) {
				return c.setErrorf("array index %d out of bounds (n=%d)", t, len(arr))
			}
			c.cur = arr[i]

		default:
			return c.setErrorf("invalid path element %T", elt)
		}
	}
	return c
}

func (c *Cursor) setErrorf(msg string, args ...any) *Cursor {
	c.err = fmt.Errorf(msg, args...)
	return c
}
