// Package flagtracker implements the abstract interpretation lattice over
// per-block boolean guard flags (C6): an immutable, three-valued state
// (must-true / must-false / unknown) that the CFG assembler consults to
// elide redundant runtime guards.
//
// Grounded on the teacher's own small hand-rolled two-valued lattice in
// internal/semantic/flow_analyzer.go (hasReturn/afterReturn tracked through
// a statement sequence) and cross-checked against uber-go/nilaway's
// inference package, which independently confirms the shape of an immutable
// lattice value updated by pure "join" operations rather than mutation.
package flagtracker

import (
	"sort"

	"dagcfg/diagnostic"
)

// Flag names a per-block guard variable.
type Flag string

// Tracker is an immutable value carrying the flag universe plus the
// disjoint must-be-true/must-be-false subsets; a flag absent from both is
// "unknown" (spec §3 Flag/FlagTracker, §4.6).
type Tracker struct {
	universe map[Flag]struct{}
	true_    map[Flag]struct{}
	false_   map[Flag]struct{}
}

// New creates a tracker over the given flag universe with every flag
// unknown.
func New(universe []Flag) Tracker {
	u := make(map[Flag]struct{}, len(universe))
	for _, f := range universe {
		u[f] = struct{}{}
	}
	return Tracker{universe: u, true_: map[Flag]struct{}{}, false_: map[Flag]struct{}{}}
}

// NewAllFalse creates a tracker over the given flag universe with every flag
// in must-be-false — the state of a CFG assembler's entry block, where
// every guard has just been zero-initialized.
func NewAllFalse(universe []Flag) Tracker {
	t := New(universe)
	f := make(map[Flag]struct{}, len(universe))
	for _, fl := range universe {
		f[fl] = struct{}{}
	}
	t.false_ = f
	return t
}

// SetTrue returns a new tracker with flag set to must-be-true; other flags
// are unchanged.
func (t Tracker) SetTrue(flag Flag) Tracker {
	out := t.clone()
	delete(out.false_, flag)
	out.true_[flag] = struct{}{}
	return out
}

// SetFalse returns a new tracker with flag set to must-be-false; other
// flags are unchanged.
func (t Tracker) SetFalse(flag Flag) Tracker {
	out := t.clone()
	delete(out.true_, flag)
	out.false_[flag] = struct{}{}
	return out
}

// IsDefinitelyTrue reports whether flag must be true on every path reaching
// this state. Panics (via diagnostic.Abort) if flag is outside the
// tracker's universe, per spec §4.6's precondition.
func (t Tracker) IsDefinitelyTrue(flag Flag) bool {
	t.requireInUniverse(flag)
	_, ok := t.true_[flag]
	return ok
}

// IsDefinitelyFalse reports whether flag must be false on every path
// reaching this state.
func (t Tracker) IsDefinitelyFalse(flag Flag) bool {
	t.requireInUniverse(flag)
	_, ok := t.false_[flag]
	return ok
}

// Meet returns the conjunction of t and other, used at control-flow joins:
// a flag remains must-be-true (or must-be-false) only if both branches agree
// it is. Information may only be lost at a join, never gained (the tracker
// is monotone). Both trackers must share the same flag universe.
func (t Tracker) Meet(other Tracker) Tracker {
	if !sameUniverse(t.universe, other.universe) {
		diagnostic.Abort(diagnostic.New(diagnostic.CodeFlagUniverseMismatch,
			"flag tracker meet over mismatched flag universes"))
	}
	out := Tracker{
		universe: t.universe,
		true_:    intersect(t.true_, other.true_),
		false_:   intersect(t.false_, other.false_),
	}
	return out
}

func (t Tracker) clone() Tracker {
	out := Tracker{
		universe: t.universe,
		true_:    make(map[Flag]struct{}, len(t.true_)),
		false_:   make(map[Flag]struct{}, len(t.false_)),
	}
	for f := range t.true_ {
		out.true_[f] = struct{}{}
	}
	for f := range t.false_ {
		out.false_[f] = struct{}{}
	}
	return out
}

func (t Tracker) requireInUniverse(flag Flag) {
	if _, ok := t.universe[flag]; !ok {
		diagnostic.Abort(diagnostic.New(diagnostic.CodeFlagUniverseMismatch,
			"flag queried outside tracker's universe", string(flag)))
	}
}

func intersect(a, b map[Flag]struct{}) map[Flag]struct{} {
	out := make(map[Flag]struct{})
	for f := range a {
		if _, ok := b[f]; ok {
			out[f] = struct{}{}
		}
	}
	return out
}

func sameUniverse(a, b map[Flag]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for f := range a {
		if _, ok := b[f]; !ok {
			return false
		}
	}
	return true
}

// Flags returns the tracker's flag universe, sorted, for diagnostics and
// deterministic test output.
func (t Tracker) Flags() []Flag {
	out := make([]Flag, 0, len(t.universe))
	for f := range t.universe {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
