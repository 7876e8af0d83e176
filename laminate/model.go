// lamina.go - a composite laminate stacking-sequence generator.
// Copyright (C) 2016 Daniel C. Brotsky.
//
// This program is free software; you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation; either version 2 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License along
// with this program; if not, write to the Free Software Foundation, Inc.,
// 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
// Licensed under the LGPL v3.  See the LICENSE file for details

package laminate

/*

Stacking-sequence representation

*/

// A sequence is a design-vector prefix with its derived
// bookkeeping: the weighted orientation counts, the last
// physical ply, the sign of the last +/-45 ply, and the run
// length of the trailing repeat.  The bookkeeping deliberately
// skips Absent positions, because an empty slot leaves the
// physical plies on either side of it adjacent: runs continue
// and angular jumps are measured across arbitrary gaps.
//
// Each sequence owns its vector.  Extension copies, so sibling
// branches of the search never share mutable state; that is what
// lets subtrees be explored concurrently without locks.
type sequence struct {
	lam    *Laminate
	angles []Angle        // the prefix; len(angles) is the fill position
	counts [Ninety + 1]int // weighted counts, indexed by Angle (Absent included)
	last   Angle          // most recent physical angle, Absent if none yet
	lastAt int            // its position, -1 if none
	sign   Angle          // most recent +/-45 angle, Absent if none yet
	signAt int            // its position, -1 if none
	run    int            // run length ending in last
}

// newSequence starts an empty sequence for a laminate.
func newSequence(lam *Laminate) *sequence {
	return &sequence{
		lam:    lam,
		angles: make([]Angle, 0, lam.capacity),
		last:   Absent,
		lastAt: -1,
		sign:   Absent,
		signAt: -1,
	}
}

// pos is the next position to be filled.
func (s *sequence) pos() int {
	return len(s.angles)
}

// complete reports whether every generated position is filled.
func (s *sequence) complete() bool {
	return len(s.angles) == s.lam.capacity
}

// extend returns a new sequence with the candidate placed at the
// next position.  The receiver is not modified.
func (s *sequence) extend(a Angle) *sequence {
	pos := s.pos()
	if pos >= s.lam.capacity {
		panic(internalError("sequence.extend", GeneralCondition,
			"Extension past sequence capacity"))
	}
	n := &sequence{
		lam:    s.lam,
		angles: make([]Angle, pos+1),
		counts: s.counts,
		last:   s.last,
		lastAt: s.lastAt,
		sign:   s.sign,
		signAt: s.signAt,
		run:    s.run,
	}
	copy(n.angles, s.angles)
	n.angles[pos] = a
	n.counts[a] += s.lam.weight(pos)
	if a != Absent {
		if a == s.last {
			n.run = s.run + 1
		} else {
			n.run = 1
		}
		n.last, n.lastAt = a, pos
		if a == Plus45 || a == Minus45 {
			n.sign, n.signAt = a, pos
		}
	}
	return n
}

// cost is the gauge deviation of the full-sequence equivalent of
// the prefix: weighted counts against the full gauge target.  On
// a complete prefix this equals Cost of the expanded vector.
func (s *sequence) cost() int {
	cost := 0
	for _, a := range physicalAngles {
		d := s.counts[a] - s.lam.summary.Target.Count(a)
		if d < 0 {
			d = -d
		}
		cost += d
	}
	return cost
}

// feasible reports whether the prefix can still be completed to
// a zero-cost sequence.  Three things can rule that out: an
// orientation already over its gauge (surplus can never be
// corrected), a gauge deficit bigger than the remaining
// positions can hold, or too few remaining positions left over
// for the empty slots the length demands.
func (s *sequence) feasible() bool {
	surplus, deficit := 0, 0
	for _, a := range physicalAngles {
		d := s.counts[a] - s.lam.summary.Target.Count(a)
		if d > 0 {
			surplus += d
		} else {
			deficit -= d
		}
	}
	if surplus > 0 {
		return false
	}
	used := s.counts[Absent]
	for _, a := range physicalAngles {
		used += s.counts[a]
	}
	remaining := s.lam.length - used
	if deficit > remaining {
		return false
	}
	// whatever the deficit doesn't claim must be fillable as
	// absent plies
	return remaining-deficit <= s.lam.absents-s.counts[Absent]
}

// full expands the prefix to the complete stacking sequence.
func (s *sequence) full() []Angle {
	return s.lam.expand(s.angles)
}

// verify recomputes the derived bookkeeping from the design
// vector and panics if it disagrees with the tracked state.  A
// mismatch means a bookkeeping defect somewhere in the search,
// and aborting beats silently reporting a wrong solution.  It is
// called once per accepted solution, where it is cheap.
func (s *sequence) verify() {
	r := newSequence(s.lam)
	for _, a := range s.angles {
		r = r.extend(a)
	}
	if r.counts != s.counts || r.last != s.last || r.lastAt != s.lastAt ||
		r.sign != s.sign || r.signAt != s.signAt || r.run != s.run {
		panic(internalError("sequence.verify", StateMismatchCondition))
	}
	if s.lastAt >= 0 && s.angles[s.lastAt] == Absent {
		panic(internalError("sequence.verify", StateMismatchCondition))
	}
}
