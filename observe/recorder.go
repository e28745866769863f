// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package observe

import "sync"

// A Recorder is an Observer that keeps a record of the signals it receives.
type Recorder[T any] struct {
	mu     sync.Mutex
	values []T
	err    error
	done   bool
}

// Record subscribes a new Recorder to o and returns it.
func Record[T any](o Observable[T]) *Recorder[T] {
	r := new(Recorder[T])
	o.Subscribe(r)
	return r
}

// Next satisfies the Observer interface.
func (r *Recorder[T]) Next(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
}

// Error satisfies the Observer interface.
func (r *Recorder[T]) Error(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err, r.done = err, true
}

// Complete satisfies the Observer interface.
func (r *Recorder[T]) Complete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done = true
}

// Values returns a copy of the values recorded so far.
func (r *Recorder[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.values...)
}

// Err returns the error recorded, or nil.
func (r *Recorder[T]) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Done reports whether a terminal signal has been recorded.
func (r *Recorder[T]) Done() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}
