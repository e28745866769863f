// Package testutil defines support code for unit tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tailscale/hujson"
	"github.com/theory/jsonpath"
)

// Decode parses src as a JSON value, allowing trailing commas and comments,
// and returns its plain form as the parser materializes it: objects are
// map[string]any, arrays are []any, and every scalar is the string of its
// source text (so 1.50 is "1.50", true is "true", and null is "null").
func Decode(src string) (any, error) {
	std, err := hujson.Standardize([]byte(src))
	if err != nil {
		return nil, fmt.Errorf("standardize: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(std))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return plain(v), nil
}

// MustDecode is as Decode, but panics on error.
func MustDecode(src string) any {
	v, err := Decode(src)
	if err != nil {
		panic(err)
	}
	return v
}

// Select returns the values selected by the JSONPath expression expr from
// doc, which is a value returned by Decode.
func Select(doc any, expr string) ([]any, error) {
	p, err := jsonpath.Parse(expr)
	if err != nil {
		return nil, err
	}
	return p.Select(doc), nil
}

func plain(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = plain(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = plain(e)
		}
		return t
	case json.Number:
		return string(t)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return "null"
	default:
		return v
	}
}
