// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package chunker splits text into pseudo-random chunks, to simulate input
// that arrives a few tokens at a time.
package chunker

import (
	"context"
	"iter"
	"strings"

	"golang.org/x/time/rate"
)

// DefaultChaos is the default selection of chunk lengths.
var DefaultChaos = []int{1, 2, 5, 7, 10, 11, 20}

// DefaultSeed is the default generator seed.
const DefaultSeed = 123

// A Generator yields successive chunks of an input string. The length of each
// chunk is chosen from a list of candidate lengths (the "chaos") by a simple
// deterministic generator, so a given input, chaos, and seed always produce
// the same chunks.
type Generator struct {
	input string
	chaos []int
	seed  int64
	pos   int
}

// New constructs a Generator over input. If chaos is empty, DefaultChaos is
// used. Lengths less than 1 in chaos are treated as 1.
func New(input string, chaos []int, seed int64) *Generator {
	if len(chaos) == 0 {
		chaos = DefaultChaos
	}
	return &Generator{input: input, chaos: chaos, seed: seed}
}

func (g *Generator) random() int {
	v := (1103515245*g.seed + int64(g.pos)) % 39916801
	g.seed++
	if v < 0 {
		v = -v
	}
	return max(g.chaos[v%int64(len(g.chaos))], 1)
}

// Next returns the next chunk of input, and reports whether it is valid.
// It returns "", false once the input is exhausted.
func (g *Generator) Next() (string, bool) {
	if g.Done() {
		return "", false
	}
	start := g.pos
	g.pos = min(g.pos+g.random(), len(g.input))
	return g.input[start:g.pos], true
}

// Done reports whether the input is exhausted.
func (g *Generator) Done() bool { return g.pos >= len(g.input) }

// All returns an iterator over the remaining chunks of g.
func (g *Generator) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			chunk, ok := g.Next()
			if !ok || !yield(chunk) {
				return
			}
		}
	}
}

// Split returns the chunks of input generated by New(input, chaos, seed).
func Split(input string, chaos []int, seed int64) []string {
	var out []string
	for chunk := range New(input, chaos, seed).All() {
		out = append(out, chunk)
	}
	return out
}

// Chars splits s into chunks of one rune each.
func Chars(s string) []string { return strings.Split(s, "") }

// Replay calls feed with each chunk in turn, waiting for lim before each
// call. It stops and reports the first error from feed, or the error from lim
// if ctx ends first.
func Replay(ctx context.Context, lim *rate.Limiter, chunks iter.Seq[string], feed func(string) error) error {
	for chunk := range chunks {
		if err := lim.Wait(ctx); err != nil {
			return err
		}
		if err := feed(chunk); err != nil {
			return err
		}
	}
	return nil
}
