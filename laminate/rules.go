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

Design rules

Each rule that constrains a single placement gets a predicate
over (sequence state, candidate angle), and the branch oracle is
just their conjunction over the candidate domain.  Rules that
only make sense on a finished vector (balance, the damage
tolerance tail, anything the symmetry fold can disturb) are
enforced by the completion gate instead.

All the per-step predicates compare against the last physical
ply, never the last array slot.  With absent plies enabled those
are different things, and using the array slot is exactly the
bug that lets a 0-degree ply sit two empty positions away from a
90-degree ply under a 45-degree disorientation limit.

*/

// branch returns the legal next angles for a sequence, in
// candidate order: the four physical orientations, then Absent
// when empty positions are in play.  An empty return means the
// sequence is a dead end.
func (s *sequence) branch() []Angle {
	cands := make([]Angle, 0, len(physicalAngles)+1)
	for _, a := range physicalAngles {
		if s.admits(a) {
			cands = append(cands, a)
		}
	}
	if s.admitsAbsent() {
		cands = append(cands, Absent)
	}
	return cands
}

// admits applies every enabled per-step rule to a physical
// candidate.
func (s *sequence) admits(a Angle) bool {
	return s.damageToleranceOK(a) && s.contiguityOK(a) &&
		s.alternationOK(a) && s.disorientationOK(a)
}

// damageToleranceOK forces the first placed ply to be +/-45.
// The matching constraint on the final physical ply cannot be
// decided mid-sequence (trailing absences may still follow), so
// the completion gate owns it.  Under symmetry the mirror makes
// the first ply also the last, and this one check covers both
// ends.
func (s *sequence) damageToleranceOK(a Angle) bool {
	if !s.lam.summary.Rules.DamageTolerance || s.pos() != 0 {
		return true
	}
	return a == Plus45 || a == Minus45
}

// contiguityOK rejects a candidate that would stretch the
// current run of identical physical plies past the limit.  The
// run survives absent positions: removing material does not
// separate the plies around it.
func (s *sequence) contiguityOK(a Angle) bool {
	r := &s.lam.summary.Rules
	if !r.Contiguity || a != s.last {
		return true
	}
	return s.run < r.MaxRun
}

// alternationOK rejects a +/-45 candidate whose sign repeats the
// most recent +/-45 ply.  The one exception is the midplane
// window: a same-sign pair exactly at the sequence center is
// what symmetry produces, and it is allowed there.
func (s *sequence) alternationOK(a Angle) bool {
	r := &s.lam.summary.Rules
	if !r.PlusMinus45 || (a != Plus45 && a != Minus45) {
		return true
	}
	if a != s.sign {
		return true
	}
	// the prior ply of the pair sits strictly earlier, so both
	// being in the window puts them exactly at the central pair
	return s.lam.midplane(s.signAt) && s.lam.midplane(s.pos())
}

// disorientationOK rejects a candidate whose angular jump from
// the last physical ply exceeds the limit, no matter how many
// absent positions lie between them.
func (s *sequence) disorientationOK(a Angle) bool {
	r := &s.lam.summary.Rules
	if !r.Disorientation || s.last == Absent {
		return true
	}
	return angleDelta(s.last, a) <= r.MaxDelta
}

// admitsAbsent decides whether an empty position may be placed
// next: there must be empty positions left in the budget, and
// the outermost ply of a damage-tolerant laminate must be
// material.
func (s *sequence) admitsAbsent() bool {
	lam := s.lam
	if lam.absents == 0 {
		return false
	}
	if lam.summary.Rules.DamageTolerance && s.pos() == 0 {
		return false
	}
	return s.counts[Absent]+lam.weight(s.pos()) <= lam.absents
}

/*

Completion gate

*/

// checkComplete decides whether a finished full-length vector
// satisfies every enabled rule.  The per-step predicates already
// pruned most violations, but the gate is what makes the
// guarantees: it sees the mirrored half (where a fold can double
// a run at the center), the final physical ply, and the global
// balance count, none of which a per-step check can rule on.
func (lam *Laminate) checkComplete(full []Angle) bool {
	r := &lam.summary.Rules

	if r.Symmetry {
		for i, j := 0, len(full)-1; i < j; i, j = i+1, j-1 {
			if full[i] != full[j] {
				return false
			}
		}
	}

	last := Absent
	first := Absent
	sign, signAt := Absent, -1
	run := 0
	var counts [Ninety + 1]int
	for i, a := range full {
		if a == Absent {
			continue
		}
		counts[a]++
		if first == Absent {
			first = a
		}
		if a == last {
			run++
		} else {
			run = 1
		}
		if r.Contiguity && run > r.MaxRun {
			return false
		}
		if r.Disorientation && last != Absent && angleDelta(last, a) > r.MaxDelta {
			return false
		}
		if a == Plus45 || a == Minus45 {
			if r.PlusMinus45 && a == sign {
				if !lam.midplane(signAt) || !lam.midplane(i) {
					return false
				}
			}
			sign, signAt = a, i
		}
		last = a
	}

	if r.DamageTolerance {
		if first != Plus45 && first != Minus45 {
			return false
		}
		if last != Plus45 && last != Minus45 {
			return false
		}
	}
	if r.Balance && counts[Plus45] != counts[Minus45] {
		return false
	}
	return true
}
