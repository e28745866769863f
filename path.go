// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package rtjson

import (
	"fmt"
	"regexp"
	"strings"
)

// A Path is a sequence of object keys leading from the root of a document to
// a value. The empty path denotes the root itself.
type Path []string

// String renders p in the dotted form accepted by ParsePath. If any key is
// not a simple word, the path is rendered in $ form instead.
func (p Path) String() string {
	for _, key := range p {
		if !isWord(key) {
			return p.expr()
		}
	}
	return strings.Join(p, ".")
}

func (p Path) expr() string {
	var buf strings.Builder
	buf.WriteString("$")
	for _, key := range p {
		if isWord(key) {
			buf.WriteString("." + key)
		} else {
			fmt.Fprintf(&buf, "['%s']", key)
		}
	}
	return buf.String()
}

func isWord(s string) bool {
	m := wordRE.FindString(s)
	return m != "" && m == s
}

/*
ParsePath parses s as a path.

The empty string is the root. A string that is exactly "$", or that begins
with "$." or "$[", is a JSONPath expression (see below). Any other string is
split on "." into keys, so "a.b" is Path{"a", "b"} and "$ref.x" is
Path{"$ref", "x"}. A JSONPath expression is restricted to member steps:

	 path = "$" { step }
	 step = "." WORD
	 step = "['" QTEXT "']"

	 WORD = RE `\w+`
	QTEXT = RE `[^']*`

so keys that contain dots or other punctuation can be named, as in
$['a.b'].c. Wildcards, indices, slices, recursive descent, filters, and
scripts report an error wrapping ErrUnsupportedPath.
*/
func ParsePath(s string) (Path, error) {
	if s == "" {
		return Path{}, nil
	}
	if s != "$" && !strings.HasPrefix(s, "$.") && !strings.HasPrefix(s, "$[") {
		return Path(strings.Split(s, ".")), nil
	}
	t := s[1:]
	var out Path
	for t != "" {
		key, rest, err := parseMember(t)
		if err != nil {
			return nil, fmt.Errorf("path %q: %w", s, err)
		}
		out = append(out, key)
		t = rest
	}
	return out, nil
}

// MustParsePath is as ParsePath, but panics if s is not a valid path.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

func parseMember(s string) (key, rest string, _ error) {
	if strings.HasPrefix(s, "..") {
		return "", s, fmt.Errorf("recursive descent: %w", ErrUnsupportedPath)
	}
	if t, ok := strings.CutPrefix(s, "."); ok {
		if strings.HasPrefix(t, "*") {
			return "", s, fmt.Errorf("wildcard: %w", ErrUnsupportedPath)
		}
		if m := wordRE.FindStringSubmatch(t); m != nil {
			return m[1], t[len(m[0]):], nil
		}
		return "", s, fmt.Errorf("invalid .name at %q", s)
	}
	if t, ok := strings.CutPrefix(s, "["); ok {
		m := quoteRE.FindStringSubmatch(t)
		if m == nil {
			return "", s, fmt.Errorf("index %q: %w", s, ErrUnsupportedPath)
		}
		u, ok := strings.CutPrefix(t[len(m[0]):], "]")
		if !ok {
			return "", s, fmt.Errorf("missing close bracket at %q", s)
		}
		return m[1], u, nil
	}
	return "", s, fmt.Errorf("invalid path step at %q", s)
}

var (
	wordRE  = regexp.MustCompile(`^(\w+)`)
	quoteRE = regexp.MustCompile(`^'([^']*)'`)
)
