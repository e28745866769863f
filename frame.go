// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package rtjson

import (
	"fmt"
	"slices"
	"strings"

	"github.com/creachadair/rtjson/ast"
)

// A kind identifies the type of value a frame is parsing.
type kind byte

const (
	objectKind kind = iota + 1
	arrayKind
	stringKind
	numberKind
)

var kindText = [...]string{
	objectKind: "object",
	arrayKind:  "array",
	stringKind: "string",
	numberKind: "number",
}

func (k kind) String() string { return kindText[k] }

// A mode is the grammatical state of a frame.
type mode byte

const (
	expectOpen  mode = iota // awaiting the opening byte
	beforeKey               // object: awaiting a key or "}"
	inKey                   // object: a key string is being parsed
	beforeColon             // object: awaiting ":"
	beforeValue             // awaiting a member or element value
	inValue                 // a child value is being parsed
	afterValue              // awaiting "," or a closing bracket
	inText                  // string or number: accumulating text
	closed                  // the value is complete
)

// A frame is the parse state of one open value. Frames are kept on a stack
// by the Parser; the parent of a frame is the one below it.
type frame struct {
	kind   kind
	mode   mode
	texts  textSet      // text listeners interested in this value
	values []valueRoute // value listeners routed to this value
	result ast.Value    // the completed value, once mode == closed

	// The set of text listeners entered on behalf of the current child, to be
	// exited when the child passes its value back.
	held textSet

	// Containers.
	obj    ast.Object
	arr    ast.Array
	key    string // the most recent object key
	comma  bool   // the most recent token was a comma
	traded bool   // array: the listener trade is in effect

	// Strings and numbers.
	buf    strings.Builder
	quoted textSet // string: listeners that see the quotation marks
	esc    int     // string: length of the current run of backslashes
	bare   bool    // number: accept letters and underscores too
}

// routesFor returns the value routes of f that continue through the member
// with the given key, with that key removed from their remaining path.
func (f *frame) routesFor(key string) []valueRoute {
	var out []valueRoute
	for _, r := range f.values {
		if !r.local() && r.rest[0] == key {
			out = append(out, valueRoute{r.valueListener, r.rest[1:]})
		}
	}
	return out
}

// forwarded returns the value routes of f that pass through to its elements.
func (f *frame) forwarded() []valueRoute {
	var out []valueRoute
	for _, r := range f.values {
		if !r.local() {
			out = append(out, r)
		}
	}
	return out
}

// release undoes the listener bookkeeping f is responsible for. It is used to
// unwind the stack when parsing fails.
func (f *frame) release() {
	f.held.exit()
	f.held = nil
	if f.traded {
		f.texts.untrade(nil)
		for _, r := range f.forwarded() {
			r.arrayDepth--
		}
		f.traded = false
	}
}

// joinText adds a text listener subscribed mid-document to the open frames
// that lie strictly above its target, adjusting its depths as if it had been
// present when those frames were opened. A value that has already begun is not
// joined, since its text has been partly delivered.
func (p *Parser) joinText(l *textListener) {
	for i, f := range p.stk {
		if f.kind == stringKind || f.kind == numberKind || l.atTarget() {
			return
		}
		f.texts = append(slices.Clip(f.texts), l)
		if f.traded {
			l.depth--
			l.arrayDepth++
		}
		if i+1 == len(p.stk) {
			return
		}

		// The frame above f is the child f is parsing.
		if f.kind == objectKind && (f.mode != inValue || !l.follows(f.key)) {
			return
		}
		f.held = append(slices.Clip(f.held), l)
		l.depth++
	}
}

// joinValue adds a value listener subscribed mid-document to the open frames
// along its path. Values are materialized in full, so a listener may join a
// value that has already begun.
func (p *Parser) joinValue(l *valueListener) {
	r := valueRoute{l, l.path}
	for i, f := range p.stk {
		f.values = append(slices.Clip(f.values), r)
		if r.local() {
			return
		}
		if f.traded {
			l.arrayDepth++
		}
		if i+1 == len(p.stk) {
			return
		}
		if f.kind == objectKind {
			if f.mode != inValue || r.rest[0] != f.key {
				return
			}
			r = valueRoute{l, r.rest[1:]}
		}
	}
}

// step advances the top frame f over s, and returns the unconsumed remainder.
func (p *Parser) step(f *frame, s string) (string, error) {
	switch f.kind {
	case objectKind:
		return p.stepObject(f, s)
	case arrayKind:
		return p.stepArray(f, s)
	case stringKind:
		return p.stepString(f, s)
	case numberKind:
		return p.stepNumber(f, s)
	}
	return s, fmt.Errorf("%w: unknown frame kind %d", ErrInvalidState, f.kind)
}

// pass delivers the completed value v of a child to its parent f.
func (p *Parser) pass(f *frame, v ast.Value) error {
	switch {
	case f.kind == objectKind && f.mode == inKey:
		key, ok := v.(ast.String)
		if !ok {
			return fmt.Errorf("%w: object key is %T", ErrInvalidState, v)
		}
		f.key = string(key)
		f.comma = false
		f.mode = beforeColon
	case f.kind == objectKind && f.mode == inValue:
		f.obj = f.obj.Set(f.key, v)
		f.mode = afterValue
	case f.kind == arrayKind && f.mode == inValue:
		f.arr = append(f.arr, v)
		f.comma = false
		f.mode = afterValue
	default:
		return fmt.Errorf("%w: %s frame cannot accept a value", ErrInvalidState, f.kind)
	}
	f.held.exit()
	f.held = nil
	return nil
}

func (p *Parser) stepObject(f *frame, s string) (string, error) {
	for s = skipSpace(s); s != ""; s = skipSpace(s) {
		c := s[0]
		switch f.mode {
		case expectOpen:
			f.texts.sendScoped("{")
			f.mode = beforeKey
			s = s[1:]

		case beforeKey:
			switch {
			case c == '"':
				f.held = f.texts.filter((*textListener).atTarget).enter()
				f.mode = inKey
				return s, p.open(s, f.held, nil, false)
			case c == '}' && f.comma && !p.tcomma:
				return s, p.syntaxError(s, `unexpected %q after ","`, '}')
			case c == '}':
				return p.closeObject(f, s[1:]), nil
			}
			return s, p.syntaxError(s, `unexpected %q, expected string or "}"`, firstRune(s))

		case beforeColon:
			if c != ':' {
				return s, p.syntaxError(s, `unexpected %q, expected ":"`, firstRune(s))
			}
			f.texts.sendScoped(":")
			f.mode = beforeValue
			s = s[1:]

		case beforeValue:
			key := f.key
			f.held = f.texts.filter(func(l *textListener) bool { return l.follows(key) }).enter()
			f.mode = inValue
			return s, p.open(s, f.held, f.routesFor(key), true)

		case afterValue:
			switch {
			case c == ',':
				f.texts.sendScoped(",")
				f.comma = true
				f.mode = beforeKey
				s = s[1:]
			case c == '}':
				return p.closeObject(f, s[1:]), nil
			case c == '"' && !p.rcomma:
				// A missing comma is supplied.
				f.texts.sendScoped(",")
				f.comma = true
				f.mode = beforeKey
			default:
				return s, p.syntaxError(s, `unexpected %q, expected "," or "}"`, firstRune(s))
			}

		default:
			return s, fmt.Errorf("%w: object frame in mode %d", ErrInvalidState, f.mode)
		}
	}
	return s, nil
}

func (p *Parser) closeObject(f *frame, rest string) string {
	f.texts.sendScoped("}")
	f.texts.completeExact()
	obj := f.obj
	if obj == nil {
		obj = ast.Object{}
	}
	p.deliver(f, obj)
	return rest
}

func (p *Parser) stepArray(f *frame, s string) (string, error) {
	for s = skipSpace(s); s != ""; s = skipSpace(s) {
		c := s[0]
		switch f.mode {
		case expectOpen:
			f.texts.send("[")
			f.texts.trade()
			for _, r := range f.forwarded() {
				r.arrayDepth++
			}
			f.traded = true
			f.mode = beforeValue
			s = s[1:]

		case beforeValue:
			if c == ']' {
				if f.comma && !p.tcomma {
					return s, p.syntaxError(s, `unexpected %q after ","`, ']')
				}
				return p.closeArray(f, s[1:]), nil
			}
			f.held = f.texts.enter()
			f.mode = inValue
			return s, p.open(s, f.held, f.forwarded(), true)

		case afterValue:
			switch c {
			case ',':
				f.texts.send(",")
				f.comma = true
				f.mode = beforeValue
				s = s[1:]
			case ']':
				return p.closeArray(f, s[1:]), nil
			default:
				return s, p.syntaxError(s, `unexpected %q, expected "," or "]"`, firstRune(s))
			}

		default:
			return s, fmt.Errorf("%w: array frame in mode %d", ErrInvalidState, f.mode)
		}
	}
	return s, nil
}

func (p *Parser) closeArray(f *frame, rest string) string {
	f.texts.send("]")
	f.texts.untrade(func(l *textListener) {
		if l.depth < len(l.path) {
			l.sink.Complete()
		}
	})
	f.traded = false

	arr := f.arr
	if arr == nil {
		arr = ast.Array{}
	}
	f.result, f.mode = arr, closed
	for _, r := range f.values {
		if r.local() {
			r.sink.Next(arr)
		} else {
			r.arrayDepth--
		}
		if r.arrayDepth == 0 {
			r.sink.Complete()
		}
	}
	return rest
}

func (p *Parser) stepString(f *frame, s string) (string, error) {
	if f.mode == expectOpen {
		f.texts = p.scope(f, f.texts)
		f.quoted = f.texts.filter(func(l *textListener) bool {
			return l.beyond() || l.arrayDepth > 0
		})
		f.quoted.send(`"`)
		f.mode = inText
		s = s[1:]
	}

	i := 0
	for ; i < len(s); i++ {
		c := s[i]
		if c == '"' && f.esc%2 == 0 {
			break
		} else if c == '\\' {
			f.esc++
		} else {
			f.esc = 0
		}
	}
	if i > 0 {
		f.texts.send(s[:i])
		f.buf.WriteString(s[:i])
	}
	if i == len(s) {
		return "", nil
	}

	f.quoted.send(`"`)
	f.texts.completeExact()
	p.deliver(f, ast.Decode(f.buf.String()))
	return s[i+1:], nil
}

func (p *Parser) stepNumber(f *frame, s string) (string, error) {
	if f.mode == expectOpen {
		f.texts = p.scope(f, f.texts)
		f.mode = inText
	}
	i := 0
	for i < len(s) && isNumberByte(s[i], f.bare) {
		i++
	}
	f.buf.WriteString(s[:i])
	if i == len(s) {
		return "", nil
	}
	p.closeNumber(f)
	return s[i:], nil
}

// closeNumber completes the pending lexeme of f, whose end has been found.
func (p *Parser) closeNumber(f *frame) {
	text := f.buf.String()
	var v ast.Value
	if n, ok := ast.ParseNumber(text); ok {
		f.texts.send(text)
		v = n
	} else {
		// A bare word is rendered as a string inside its enclosing value.
		for _, l := range f.texts {
			if l.beyond() {
				l.sink.Next(`"` + text + `"`)
			} else if l.exact() {
				l.sink.Next(text)
			}
		}
		v = ast.String(text)
	}
	f.texts.completeExact()
	p.deliver(f, v)
}

// deliver records v as the result of f, and delivers it to the value
// listeners whose routes end at f.
func (p *Parser) deliver(f *frame, v ast.Value) {
	f.result, f.mode = v, closed
	leaf := f.kind == stringKind || f.kind == numberKind
	for _, r := range f.values {
		if r.local() {
			r.sink.Next(v)
		} else if leaf {
			p.log.Warn("value listener path descends into a leaf",
				"id", r.id, "path", r.path.String(), "kind", f.kind.String(), "rest", r.rest.String())
		}
		if r.arrayDepth == 0 {
			r.sink.Complete()
		}
	}
}

// scope returns the text listeners of ts positioned at or below their target
// in a leaf value f. The others can never be satisfied by f, and are logged.
func (p *Parser) scope(f *frame, ts textSet) textSet {
	return ts.filter(func(l *textListener) bool {
		if l.atTarget() {
			return true
		}
		p.log.Warn("text listener path descends into a leaf",
			"id", l.id, "path", l.path.String(), "kind", f.kind.String())
		return false
	})
}

func skipSpace(s string) string {
	return strings.TrimLeft(s, " \t\r\n")
}

// isNumberByte reports whether c may occur in a numeric lexeme. If bare is
// true, ASCII letters and underscores are also allowed, so that bare words
// like true and null are scanned as lexemes.
func isNumberByte(c byte, bare bool) bool {
	switch {
	case '0' <= c && c <= '9', c == '+', c == '-', c == '.', c == 'e', c == 'E':
		return true
	case bare:
		return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '_'
	}
	return false
}
