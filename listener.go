// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package rtjson

import (
	"github.com/creachadair/rtjson/ast"
	"github.com/creachadair/rtjson/observe"
)

// A textListener is a subscription to the raw text of the value at path.
//
// As the parser descends into the document, depth counts the number of key
// levels the listener has followed, and arrayDepth counts the arrays open
// along the way. The listener has reached its target when depth equals
// len(path); while arrayDepth > 0 the target may recur once per element, so
// the sink stays open until the enclosing array closes.
type textListener struct {
	id         string
	path       Path
	depth      int
	arrayDepth int
	sink       *observe.Subject[string]
}

// atTarget reports whether l is at or below its target value.
func (l *textListener) atTarget() bool { return l.depth >= len(l.path) }

// exact reports whether l is positioned exactly at its target value.
func (l *textListener) exact() bool { return l.depth == len(l.path) }

// beyond reports whether l is strictly inside its target value.
func (l *textListener) beyond() bool { return l.depth > len(l.path) }

// follows reports whether the value of the named member is of interest to l.
func (l *textListener) follows(key string) bool {
	return l.atTarget() || (l.depth >= 0 && l.path[l.depth] == key)
}

// A valueListener is a subscription to the materialized value at path.
type valueListener struct {
	id         string
	path       Path
	arrayDepth int
	sink       *observe.Subject[ast.Value]
}

// A valueRoute carries a value listener into a frame, along with the part of
// its path that remains to be matched below that frame. A route whose rest is
// empty targets the frame's own value.
type valueRoute struct {
	*valueListener
	rest Path
}

func (r valueRoute) local() bool { return len(r.rest) == 0 }

// textSet is a collection of text listeners handled together.
type textSet []*textListener

// send delivers text to each listener in ts.
func (ts textSet) send(text string) {
	for _, l := range ts {
		l.sink.Next(text)
	}
}

// sendScoped delivers text to each listener in ts that is at or below its
// target.
func (ts textSet) sendScoped(text string) {
	for _, l := range ts {
		if l.atTarget() {
			l.sink.Next(text)
		}
	}
}

// filter returns the listeners of ts for which keep reports true.
func (ts textSet) filter(keep func(*textListener) bool) textSet {
	var out textSet
	for _, l := range ts {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}

// enter descends each listener of ts by one level, and returns ts.
func (ts textSet) enter() textSet {
	for _, l := range ts {
		l.depth++
	}
	return ts
}

// exit undoes a previous enter.
func (ts textSet) exit() {
	for _, l := range ts {
		l.depth--
	}
}

// trade exchanges one level of depth for one level of array depth in each
// listener of ts, as when an array is opened.
func (ts textSet) trade() {
	for _, l := range ts {
		l.depth--
		l.arrayDepth++
	}
}

// untrade undoes a previous trade. If done is non-nil, it is called for each
// listener whose array depth has returned to zero, before its depth is
// restored.
func (ts textSet) untrade(done func(*textListener)) {
	for _, l := range ts {
		l.arrayDepth--
		if l.arrayDepth == 0 && done != nil {
			done(l)
		}
		l.depth++
	}
}

// completeExact completes each listener of ts that sits exactly at its target
// outside of any array.
func (ts textSet) completeExact() {
	for _, l := range ts {
		if l.exact() && l.arrayDepth == 0 {
			l.sink.Complete()
		}
	}
}
