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

Sequence geometry

The geometry of a stacking sequence covers everything that
depends only on positions and orientations, not on the search:
the angular distance between orientations, the midplane window,
and the folding arithmetic used when symmetry lets us generate
only the first half of the vector.

*/

// deltaTable gives the angular difference in degrees between two
// physical orientations.  Ninety is 45 degrees from either
// +/-45 and 90 from Zero; the two 45s are 90 degrees apart
// (rotating through vertical), which is what makes a direct
// +45 to -45 transition illegal under the usual 45-degree
// disorientation limit.
var deltaTable = map[Angle]map[Angle]int{
	Zero:    {Zero: 0, Plus45: 45, Minus45: 45, Ninety: 90},
	Plus45:  {Zero: 45, Plus45: 0, Minus45: 90, Ninety: 45},
	Minus45: {Zero: 45, Plus45: 90, Minus45: 0, Ninety: 45},
	Ninety:  {Zero: 90, Plus45: 45, Minus45: 45, Ninety: 0},
}

// angleDelta returns the angular difference between two physical
// orientations.  Calling it with an Absent angle is a
// programming error: absences have no orientation, and the
// callers are required to skip them.
func angleDelta(a, b Angle) int {
	row, ok := deltaTable[a]
	if !ok {
		panic(internalError("angleDelta", GeneralCondition,
			"No angular difference defined for "+a.String()))
	}
	d, ok := row[b]
	if !ok {
		panic(internalError("angleDelta", GeneralCondition,
			"No angular difference defined for "+b.String()))
	}
	return d
}

// weight returns how many plies of the full sequence a generated
// position stands for: 2 when the position mirrors to a distinct
// partner, 1 when there is no mirroring or the position is the
// odd-length center that mirrors onto itself.
func (lam *Laminate) weight(pos int) int {
	if !lam.mirror {
		return 1
	}
	if lam.oddMid && pos == lam.capacity-1 {
		return 1
	}
	return 2
}

// midplane reports whether a full-vector position lies in the
// midplane window: the central position of an odd-length
// sequence, or the central pair of an even-length one.
func (lam *Laminate) midplane(pos int) bool {
	return pos >= lam.midLo && pos <= lam.midHi
}

// expand mirrors a generated prefix out to the full sequence
// length.  Without symmetry this is just a copy.  With symmetry,
// position i reflects to position length-1-i; for odd lengths
// the center position is written once by both sides, which is
// harmless because the values agree.
func (lam *Laminate) expand(prefix []Angle) []Angle {
	full := make([]Angle, lam.length)
	copy(full, prefix)
	if lam.mirror {
		for i := 0; i < lam.capacity; i++ {
			full[lam.length-1-i] = prefix[i]
		}
	}
	return full
}

// Cost is the gauge-deviation oracle: the sum over the four
// physical orientations of the absolute difference between the
// orientation's count in the vector and its gauge target.
// Absent positions contribute to no orientation.  The cost is 0
// exactly when every count matches its target, which is the sole
// gauge-feasibility criterion for a complete sequence.
func Cost(vector []Angle, target GaugeTarget) int {
	var counts [Ninety + 1]int
	for _, a := range vector {
		counts[a]++
	}
	cost := 0
	for _, a := range physicalAngles {
		d := counts[a] - target.Count(a)
		if d < 0 {
			d = -d
		}
		cost += d
	}
	return cost
}
