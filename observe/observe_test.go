// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package observe_test

import (
	"errors"
	"testing"

	"github.com/creachadair/rtjson/observe"
	"github.com/google/go-cmp/cmp"
)

func TestSubject(t *testing.T) {
	s := new(observe.Subject[int])
	a := observe.Record[int](s)
	b := observe.Record[int](s)

	s.Next(1)
	s.Next(2)
	if s.Closed() {
		t.Error("Closed: got true before termination")
	}
	s.Complete()
	s.Next(3)
	s.Error(errors.New("ignored"))

	for _, r := range []*observe.Recorder[int]{a, b} {
		if diff := cmp.Diff([]int{1, 2}, r.Values()); diff != "" {
			t.Errorf("Values (-want, +got):\n%s", diff)
		}
		if !r.Done() || r.Err() != nil {
			t.Errorf("Recorder: got done=%v err=%v, want done, no error", r.Done(), r.Err())
		}
	}
	if !s.Closed() || s.Err() != nil {
		t.Errorf("Subject: got closed=%v err=%v", s.Closed(), s.Err())
	}
}

func TestSubjectError(t *testing.T) {
	s := new(observe.Subject[string])
	r := observe.Record[string](s)
	want := errors.New("bad")

	s.Next("a")
	s.Error(want)
	s.Error(errors.New("again"))
	s.Complete()
	s.Next("b")

	if diff := cmp.Diff([]string{"a"}, r.Values()); diff != "" {
		t.Errorf("Values (-want, +got):\n%s", diff)
	}
	if got := r.Err(); got != want {
		t.Errorf("Err: got %v, want %v", got, want)
	}
	if got := s.Err(); got != want {
		t.Errorf("Subject Err: got %v, want %v", got, want)
	}

	// A late subscriber sees the terminal signal.
	late := observe.Record[string](s)
	if got := late.Err(); got != want {
		t.Errorf("Late Err: got %v, want %v", got, want)
	}
	if got := late.Values(); len(got) != 0 {
		t.Errorf("Late Values: got %q, want none", got)
	}
}

func TestUnsubscribe(t *testing.T) {
	s := new(observe.Subject[int])
	var got []int
	stop := s.Subscribe(observe.Funcs[int]{
		OnNext: func(v int) { got = append(got, v) },
	})
	keep := observe.Record[int](s)

	s.Next(1)
	stop()
	stop() // safe to repeat
	s.Next(2)
	s.Complete()

	if diff := cmp.Diff([]int{1}, got); diff != "" {
		t.Errorf("Unsubscribed (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2}, keep.Values()); diff != "" {
		t.Errorf("Kept (-want, +got):\n%s", diff)
	}
}

func TestUnsubscribeDuringNext(t *testing.T) {
	s := new(observe.Subject[int])
	var stop func()
	var got []int
	stop = s.Subscribe(observe.Funcs[int]{
		OnNext: func(v int) {
			got = append(got, v)
			stop()
		},
	})
	other := observe.Record[int](s)

	s.Next(1)
	s.Next(2)
	if diff := cmp.Diff([]int{1}, got); diff != "" {
		t.Errorf("Self-unsubscribed (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2}, other.Values()); diff != "" {
		t.Errorf("Other (-want, +got):\n%s", diff)
	}
}

func TestFuncsNil(t *testing.T) {
	s := new(observe.Subject[int])
	s.Subscribe(observe.Funcs[int]{})
	s.Next(1)
	s.Error(errors.New("no handler"))
}

func TestSubscribeAfterComplete(t *testing.T) {
	s := new(observe.Subject[int])
	s.Complete()

	var completed bool
	stop := s.Subscribe(observe.Funcs[int]{OnComplete: func() { completed = true }})
	stop()
	if !completed {
		t.Error("Subscribe after Complete: observer was not completed")
	}
}
