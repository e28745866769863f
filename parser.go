// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package rtjson

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/creachadair/rtjson/ast"
	"github.com/creachadair/rtjson/observe"
	"github.com/google/uuid"
)

// DefaultMaxDepth is the default bound on the nesting depth of values.
const DefaultMaxDepth = 10000

// Parser is an incremental parser for a single JSON document. Input is
// delivered in arbitrary chunks by calling Feed, and results are delivered to
// subscribers as soon as they are known.
//
// A Parser is not safe for concurrent use by multiple goroutines.
type Parser struct {
	tcomma   bool // allow trailing commas in objects and arrays
	rcomma   bool // require commas between object members
	maxDepth int
	log      *slog.Logger

	texts  []*textListener
	values []*valueListener

	stk    []*frame // open values, innermost last
	pos    position // location of the start of cur
	cur    string   // the chunk being processed
	fence  bool     // a backtick was seen on the current line before the value
	info   bool     // skipping the info string of a code fence
	done   bool     // no further input is accepted
	closed bool     // Close has been called
	err    error    // the error that ended parsing, if any
}

// New constructs a new Parser with default settings.
func New() *Parser {
	return &Parser{
		tcomma:   true,
		maxDepth: DefaultMaxDepth,
		log:      slog.Default(),
		pos:      startPosition(),
	}
}

// AllowTrailingCommas configures the parser to allow (true) or reject (false)
// a comma after the last member of an object or element of an array.
// The default is true.
func (p *Parser) AllowTrailingCommas(ok bool) { p.tcomma = ok }

// RequireCommas configures the parser to require (true) commas between the
// members of an object, or to supply a missing comma (false) when a key
// follows a value directly. The default is false.
func (p *Parser) RequireCommas(ok bool) { p.rcomma = ok }

// SetMaxDepth sets the maximum nesting depth of values. If n <= 0, the limit
// is reset to DefaultMaxDepth.
func (p *Parser) SetMaxDepth(n int) {
	if n <= 0 {
		n = DefaultMaxDepth
	}
	p.maxDepth = n
}

// SetLogger sets the logger used for diagnostics. If lg == nil, diagnostics
// are discarded.
func (p *Parser) SetLogger(lg *slog.Logger) {
	if lg == nil {
		lg = slog.New(slog.DiscardHandler)
	}
	p.log = lg
}

// Err returns the error that ended parsing, or nil.
func (p *Parser) Err() error { return p.err }

// Done reports whether the parser has stopped accepting input, either because
// the document is complete or because parsing failed.
func (p *Parser) Done() bool { return p.done }

// SubscribeText returns an observable that delivers the raw text of the value
// at path as it arrives. The concatenation of the deltas is the source text
// of the value without insignificant whitespace.
//
// If the value is inside one or more arrays, the text of each matching value
// is delivered, along with the punctuation of the arrays. The observable
// completes when the value (or its outermost enclosing array) is complete, or
// when the document ends.
//
// A subscription made while the document is being parsed sees the values at
// path that begin after it is made.
func (p *Parser) SubscribeText(path Path) observe.Observable[string] {
	l := &textListener{
		id:   uuid.NewString(),
		path: slices.Clone(path),
		sink: new(observe.Subject[string]),
	}
	p.log.Debug("subscribe text", "id", l.id, "path", l.path.String())
	switch {
	case p.err != nil:
		l.sink.Error(p.err)
	case p.done:
		l.sink.Complete()
	default:
		p.texts = append(p.texts, l)
		p.joinText(l)
	}
	return l.sink
}

// SubscribeValue returns an observable that delivers the materialized value
// at path once it is complete. If the path passes through arrays, one value
// is delivered for each matching element.
//
// A subscription whose path descends into a string or number is never
// satisfied; it completes without delivering a value. A subscription made
// while the document is being parsed also receives a matching value that is
// still open when it is made.
func (p *Parser) SubscribeValue(path Path) observe.Observable[ast.Value] {
	l := &valueListener{
		id:   uuid.NewString(),
		path: slices.Clone(path),
		sink: new(observe.Subject[ast.Value]),
	}
	p.log.Debug("subscribe value", "id", l.id, "path", l.path.String())
	switch {
	case p.err != nil:
		l.sink.Error(p.err)
	case p.done:
		l.sink.Complete()
	default:
		p.values = append(p.values, l)
		p.joinValue(l)
	}
	return l.sink
}

// Feed delivers the next chunk of input to the parser. Chunk boundaries are
// not significant. An empty chunk has no effect.
//
// If the chunk is malformed, Feed reports an error, which is also delivered
// to every subscriber, and the parser stops accepting input. After the
// document is complete or parsing has failed, Feed reports ErrClosed.
func (p *Parser) Feed(chunk string) error {
	if p.done {
		return ErrClosed
	}
	if chunk == "" {
		return nil
	}
	if err := p.run(chunk); err != nil {
		p.fail(err)
		return err
	}
	return nil
}

// Close reports that no further input is available. A numeric value pending
// at the end of the input is completed. If the document is incomplete, Close
// reports a *SyntaxError wrapping io.ErrUnexpectedEOF, which is also delivered
// to every subscriber. If no value was begun, all subscribers complete with no
// values.
//
// If parsing had already failed, Close returns the error that ended it.
// Calling Close more than once reports ErrClosed.
func (p *Parser) Close() error {
	if p.closed {
		return ErrClosed
	}
	p.closed = true
	if p.err != nil {
		return p.err
	} else if p.done {
		return nil
	}

	p.cur = ""
	if n := len(p.stk); n != 0 && p.stk[n-1].kind == numberKind {
		p.closeNumber(p.stk[n-1])
		if err := p.settle(); err != nil {
			p.fail(err)
			return err
		}
	}
	if len(p.stk) != 0 {
		err := &SyntaxError{
			Location: p.pos.lineCol(),
			Offset:   p.pos.offset,
			Message:  fmt.Sprintf("unexpected end of input in %s", p.stk[len(p.stk)-1].kind),
			err:      io.ErrUnexpectedEOF,
		}
		p.fail(err)
		return err
	}
	if !p.done {
		p.log.Debug("input ended without a value")
		p.finish()
	}
	return nil
}

// Consume subscribes p to a stream of input chunks. Each value from src is
// passed to Feed; an error from src ends parsing with that error, and
// completion of src calls Close. Errors from Feed and Close are delivered to
// the subscribers of p. Consume returns a function that unsubscribes p from
// src.
func (p *Parser) Consume(src observe.Observable[string]) (unsubscribe func()) {
	return src.Subscribe(observe.Funcs[string]{
		OnNext: func(chunk string) {
			if err := p.Feed(chunk); err != nil {
				p.log.Debug("input rejected", "error", err)
			}
		},
		OnError: func(err error) {
			if !p.done {
				p.fail(err)
			}
		},
		OnComplete: func() {
			if err := p.Close(); err != nil {
				p.log.Debug("close failed", "error", err)
			}
		},
	})
}

// run processes a chunk of input.
func (p *Parser) run(chunk string) error {
	p.cur = chunk
	defer func() { p.pos.advance(chunk); p.cur = "" }()

	s := chunk
	for s != "" && !p.done {
		var err error
		if len(p.stk) == 0 {
			s, err = p.begin(s)
		} else {
			s, err = p.step(p.stk[len(p.stk)-1], s)
		}
		if err == nil {
			err = p.settle()
		}
		if err != nil {
			return err
		}
	}
	if p.done && strings.Trim(s, " \t\r\n`") != "" {
		p.log.Debug("discarding text after end of document", "length", len(s))
	}
	return nil
}

// begin skips the leading matter of the document and opens the top-level
// value. Whitespace and backticks are skipped, as are the words of a
// Markdown code fence info string, so that a fenced code block is accepted.
func (p *Parser) begin(s string) (string, error) {
	for s != "" {
		c := s[0]
		switch {
		case p.info:
			switch c {
			case '\n':
				p.info, p.fence = false, false
			case ' ', '\t', '\r':
				p.info = false
			}
		case c == '`':
			p.fence = true
		case c == '\n':
			p.fence = false
		case c == ' ' || c == '\t' || c == '\r':
			// skip
		case p.fence && isLetter(c):
			p.info = true
		default:
			p.log.Debug("begin document", "texts", len(p.texts), "values", len(p.values))
			routes := make([]valueRoute, len(p.values))
			for i, l := range p.values {
				routes[i] = valueRoute{l, l.path}
			}
			return s, p.open(s, slices.Clone(p.texts), routes, false)
		}
		s = s[1:]
	}
	return s, nil
}

// open pushes a new frame for the value beginning at s.
func (p *Parser) open(s string, texts textSet, routes []valueRoute, bare bool) error {
	if len(p.stk) >= p.maxDepth {
		return p.syntaxError(s, "nesting depth exceeds %d", p.maxDepth)
	}
	var k kind
	switch c := s[0]; {
	case c == '{':
		k = objectKind
	case c == '[':
		k = arrayKind
	case c == '"':
		k = stringKind
	case isNumberByte(c, bare):
		k = numberKind
	default:
		return p.syntaxError(s, "unexpected %q, expected value", firstRune(s))
	}
	p.stk = append(p.stk, &frame{kind: k, texts: texts, values: routes, bare: bare})
	return nil
}

// settle pops completed frames from the stack and passes their values to
// their parents. Completion of the top-level value ends the document.
func (p *Parser) settle() error {
	for len(p.stk) != 0 {
		n := len(p.stk) - 1
		f := p.stk[n]
		if f.mode != closed {
			break
		}
		p.stk[n] = nil
		p.stk = p.stk[:n]
		if n == 0 {
			p.log.Debug("document complete", "kind", f.kind.String())
			p.finish()
			break
		}
		if err := p.pass(p.stk[n-1], f.result); err != nil {
			return err
		}
	}
	return nil
}

// finish completes every subscriber and stops accepting input.
func (p *Parser) finish() {
	p.done = true
	for _, l := range p.texts {
		l.sink.Complete()
	}
	for _, l := range p.values {
		l.sink.Complete()
	}
}

// fail unwinds the stack, delivers err to every subscriber, and stops
// accepting input.
func (p *Parser) fail(err error) {
	for i := len(p.stk) - 1; i >= 0; i-- {
		p.stk[i].release()
	}
	p.stk = nil
	p.done, p.err = true, err
	p.log.Debug("parse failed", "error", err)
	for _, l := range p.texts {
		l.sink.Error(err)
	}
	for _, l := range p.values {
		l.sink.Error(err)
	}
}

// syntaxError constructs a syntax error located at rest, which must be a
// suffix of the current chunk.
func (p *Parser) syntaxError(rest, msg string, args ...any) error {
	at := p.pos.at(p.cur[:len(p.cur)-len(rest)])
	return &SyntaxError{
		Location: at.lineCol(),
		Offset:   at.offset,
		Message:  fmt.Sprintf(msg, args...),
	}
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func isLetter(c byte) bool { return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' }
