// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package observe implements a minimal push-based publish/subscribe channel.
//
// A Subject has a single writer and any number of readers. The writer calls
// Next to deliver values, and Error or Complete to terminate the stream.
// Readers register an Observer with Subscribe and may unsubscribe at any time:
//
//	s := new(observe.Subject[string])
//	stop := s.Subscribe(observe.Funcs[string]{
//	   OnNext: func(v string) { fmt.Print(v) },
//	})
//	defer stop()
//
// Termination is idempotent: once Error or Complete has been called, further
// calls to Next, Error, and Complete have no effect. An observer that
// subscribes to a terminated subject immediately receives the terminal
// signal.
package observe

import (
	"slices"
	"sync"
)

// An Observer receives the signals delivered by a Subject.
type Observer[T any] interface {
	// Next delivers a value.
	Next(T)

	// Error reports that the stream ended with an error.
	Error(error)

	// Complete reports that the stream ended normally.
	Complete()
}

// Funcs adapts a collection of functions to the Observer interface.
// A nil function ignores the corresponding signal.
type Funcs[T any] struct {
	OnNext     func(T)
	OnError    func(error)
	OnComplete func()
}

// Next satisfies the Observer interface.
func (f Funcs[T]) Next(v T) {
	if f.OnNext != nil {
		f.OnNext(v)
	}
}

// Error satisfies the Observer interface.
func (f Funcs[T]) Error(err error) {
	if f.OnError != nil {
		f.OnError(err)
	}
}

// Complete satisfies the Observer interface.
func (f Funcs[T]) Complete() {
	if f.OnComplete != nil {
		f.OnComplete()
	}
}

// An Observable is the read side of a Subject.
type Observable[T any] interface {
	// Subscribe registers o to receive signals, and returns a function that
	// unregisters it. The function is safe to call more than once.
	Subscribe(o Observer[T]) (unsubscribe func())

	// Closed reports whether the stream has terminated.
	Closed() bool
}

// A Subject is a single-writer, multi-reader push stream.
// The zero value is ready for use. A Subject must not be copied after use.
type Subject[T any] struct {
	mu   sync.Mutex
	subs []*entry[T] // copy-on-write; see Subscribe
	done bool
	err  error
}

type entry[T any] struct{ o Observer[T] }

// Subscribe satisfies the Observable interface.
func (s *Subject[T]) Subscribe(o Observer[T]) func() {
	s.mu.Lock()
	if s.done {
		err := s.err
		s.mu.Unlock()
		if err != nil {
			o.Error(err)
		} else {
			o.Complete()
		}
		return func() {}
	}
	e := &entry[T]{o: o}
	s.subs = append(slices.Clip(s.subs), e)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.subs = slices.DeleteFunc(slices.Clone(s.subs), func(x *entry[T]) bool { return x == e })
	}
}

// Closed satisfies the Observable interface.
func (s *Subject[T]) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Err reports the error that terminated s, or nil.
func (s *Subject[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Next delivers v to each current subscriber. It has no effect after s has
// terminated.
func (s *Subject[T]) Next(v T) {
	s.mu.Lock()
	subs, done := s.subs, s.done
	s.mu.Unlock()
	if done {
		return
	}
	for _, e := range subs {
		e.o.Next(v)
	}
}

// Error terminates s with err, which must be non-nil.
func (s *Subject[T]) Error(err error) {
	for _, e := range s.terminate(err) {
		e.o.Error(err)
	}
}

// Complete terminates s normally.
func (s *Subject[T]) Complete() {
	for _, e := range s.terminate(nil) {
		e.o.Complete()
	}
}

// terminate marks s as done and returns the subscribers to notify. It returns
// nil if s was already done.
func (s *Subject[T]) terminate(err error) []*entry[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil
	}
	subs := s.subs
	s.subs, s.done, s.err = nil, true, err
	return subs
}
