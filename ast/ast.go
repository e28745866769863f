// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package ast defines the values materialized by the streaming parser.
//
// A document is a tree of Object, Array, String, and Number values. Objects
// preserve the order in which their members appeared in the input. Numbers
// are kept as their source text; bare lexemes that are not numbers (such as
// true or null) are materialized as strings holding the raw text.
package ast

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/creachadair/rtjson/internal/escape"
	"go4.org/mem"
)

// A Value is an arbitrary materialized JSON value.
// The concrete type is one of Object, Array, String, or Number.
type Value interface {
	// JSON renders the value as compact JSON text.
	JSON() string

	// Plain converts the value to plain Go values: map[string]any for
	// objects, []any for arrays, and string for strings and numbers.
	Plain() any
}

// An Object is an ordered collection of key-value members.
type Object []*Member

// Find returns the first member of o with the given key, or nil.
func (o Object) Find(key string) *Member {
	for _, m := range o {
		if m.Key == key {
			return m
		}
	}
	return nil
}

// Set returns o with the value of key set to v. If o already has a member
// with that key, its value is replaced in place; otherwise a new member is
// appended.
func (o Object) Set(key string, v Value) Object {
	if m := o.Find(key); m != nil {
		m.Value = v
		return o
	}
	return append(o, Field(key, v))
}

// Len reports the number of members in o.
func (o Object) Len() int { return len(o) }

// JSON satisfies the Value interface.
func (o Object) JSON() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(m.JSON())
	}
	sb.WriteByte('}')
	return sb.String()
}

// Plain satisfies the Value interface.
func (o Object) Plain() any {
	out := make(map[string]any, len(o))
	for _, m := range o {
		out[m.Key] = m.Value.Plain()
	}
	return out
}

// A Member is a single key-value pair belonging to an Object.
type Member struct {
	Key   string
	Value Value
}

// Field constructs an object member with the given key and value.
func Field(key string, v Value) *Member { return &Member{Key: key, Value: v} }

// JSON renders m as a "key":value pair.
func (m *Member) JSON() string { return String(m.Key).JSON() + ":" + m.Value.JSON() }

// An Array is a sequence of values.
type Array []Value

// Len reports the number of elements in a.
func (a Array) Len() int { return len(a) }

// JSON satisfies the Value interface.
func (a Array) JSON() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range a {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(v.JSON())
	}
	sb.WriteByte(']')
	return sb.String()
}

// Plain satisfies the Value interface.
func (a Array) Plain() any {
	out := make([]any, len(a))
	for i, v := range a {
		out[i] = v.Plain()
	}
	return out
}

// A String is a decoded string value.
type String string

// Decode constructs a String from the raw contents of a JSON string literal,
// without its quotation marks. Escape sequences are undone; if raw contains an
// incomplete or invalid escape sequence, it is returned verbatim.
func Decode(raw string) String {
	dec, err := escape.Unquote(mem.S(raw))
	if err != nil {
		return String(raw)
	}
	return String(dec)
}

// JSON satisfies the Value interface.
func (s String) JSON() string { return string(escape.AppendQuote(nil, mem.S(string(s)))) }

// Plain satisfies the Value interface.
func (s String) Plain() any { return string(s) }

// A Number is the source text of a numeric lexeme.
type Number string

// numberRE matches the shape of a decimal numeral, which is more permissive
// than JSON: a leading plus sign and a bare leading or trailing decimal point
// are allowed.
var numberRE = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?$`)

// ParseNumber reports whether text denotes a finite decimal number, and if so
// returns it as a Number.
func ParseNumber(text string) (Number, bool) {
	if !numberRE.MatchString(text) {
		return "", false
	}
	return Number(text), true
}

// Text returns the source text of n.
func (n Number) Text() string { return string(n) }

// Decimal returns the exact decimal value of n.
func (n Number) Decimal() (*apd.Decimal, error) {
	d, _, err := apd.NewFromString(string(n))
	return d, err
}

// Int64 returns n as an integer. It panics if n is not an integer in range.
func (n Number) Int64() int64 {
	v, err := strconv.ParseInt(string(n), 10, 64)
	if err != nil {
		panic(err)
	}
	return v
}

// Float64 returns n as a floating-point value. It panics if n cannot be
// represented as a float64.
func (n Number) Float64() float64 {
	v, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		panic(err)
	}
	return v
}

// JSON satisfies the Value interface.
func (n Number) JSON() string { return string(n) }

// Plain satisfies the Value interface. Numbers are rendered as their text.
func (n Number) Plain() any { return string(n) }
