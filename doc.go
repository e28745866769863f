// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package rtjson implements an incremental parser for JSON documents that
// arrive a piece at a time, such as the output of a language model.
//
// # Feeding
//
// Construct a Parser with New, and deliver the input to it in chunks of any
// size by calling Feed. When the input is exhausted, call Close:
//
//	p := rtjson.New()
//	for chunk := range input {
//	   if err := p.Feed(chunk); err != nil {
//	      log.Fatalf("Feed: %v", err)
//	   }
//	}
//	if err := p.Close(); err != nil {
//	   log.Fatalf("Close: %v", err)
//	}
//
// The parser reads a single value. Leading whitespace and the opening marker
// of a Markdown code fence are skipped, and any text following the value in
// the same chunk is discarded. Once the value is complete, Feed reports
// ErrClosed.
//
// The parser is deliberately lenient: numbers are not validated, bare words
// such as true or null inside containers are accepted as strings, a trailing
// comma is allowed before a closing bracket, and a missing comma between
// object members is supplied. The latter two can be disabled with the
// AllowTrailingCommas and RequireCommas methods. Malformed input that cannot
// be recovered is reported as a *SyntaxError.
//
// # Subscribing
//
// Callers subscribe to parts of the document by path. A Path is a sequence
// of object keys; the empty path denotes the whole document:
//
//	name := p.SubscribeText(rtjson.MustParsePath("user.name"))
//	name.Subscribe(observe.Funcs[string]{
//	   OnNext: func(delta string) { fmt.Print(delta) },
//	})
//
// A text subscription delivers the source text of the value as it arrives, in
// deltas, without insignificant whitespace. A value subscription, made with
// SubscribeValue, delivers the materialized ast.Value once it is complete.
//
// Paths do not include array indices. A path that passes through an array
// matches the corresponding value in every element: a text subscription
// receives the array punctuation along with each match, and a value
// subscription receives each match separately. A value subscription whose
// path ends at an array receives the whole array once.
//
// All subscriptions complete when the document is complete. If parsing fails,
// the error is delivered to every subscription.
package rtjson
