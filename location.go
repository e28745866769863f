// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package rtjson

import "fmt"

// A LineCol describes the line number and column offset of a location in
// source text.
type LineCol struct {
	Line   int // line number, 1-based
	Column int // byte offset of column in line, 0-based
}

func (lc LineCol) String() string { return fmt.Sprintf("%d:%d", lc.Line, lc.Column) }

// A position tracks the location of the next unconsumed byte of input across
// all the chunks fed to a parser.
type position struct {
	offset int // total bytes consumed, 0-based
	line   int // 1-based
	col    int // 0-based
}

func startPosition() position { return position{line: 1} }

// advance updates p to account for the consumption of text.
func (p *position) advance(text string) {
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			p.line++
			p.col = 0
		} else {
			p.col++
		}
	}
	p.offset += len(text)
}

// at returns a copy of p advanced over text.
func (p position) at(text string) position {
	p.advance(text)
	return p
}

func (p position) lineCol() LineCol { return LineCol{Line: p.line, Column: p.col} }
