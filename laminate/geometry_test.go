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

import (
	"reflect"
	"testing"
)

/*

Angular differences

*/

func TestAngleDelta(t *testing.T) {
	inputs := [][2]Angle{
		{Zero, Zero}, {Zero, Plus45}, {Zero, Minus45}, {Zero, Ninety},
		{Plus45, Minus45}, {Plus45, Ninety}, {Minus45, Ninety}, {Ninety, Ninety},
	}
	outputs := []int{0, 45, 45, 90, 90, 45, 45, 0}
	for i, pair := range inputs {
		if d := angleDelta(pair[0], pair[1]); d != outputs[i] {
			t.Errorf("angleDelta(%v, %v) = %d but expected %d",
				pair[0], pair[1], d, outputs[i])
		}
		if d := angleDelta(pair[1], pair[0]); d != outputs[i] {
			t.Errorf("angleDelta(%v, %v) = %d but expected %d",
				pair[1], pair[0], d, outputs[i])
		}
	}
}

func TestAngleDeltaAbsentPanics(t *testing.T) {
	defer (func() {
		if e := recover(); e == nil {
			t.Errorf("angleDelta(Absent, Zero) did not panic")
		}
	})()
	angleDelta(Absent, Zero)
}

/*

Symmetry folding

*/

func TestWeightAndExpand(t *testing.T) {
	even, err := New(&Summary{Length: 8, Target: GaugeTarget{2, 2, 2, 2}, Rules: RuleSet{Symmetry: true}})
	if err != nil {
		t.Fatalf("Failed to create even symmetric laminate: %v", err)
	}
	if even.capacity != 4 || even.oddMid {
		t.Errorf("Even fold gave capacity %d, oddMid %v", even.capacity, even.oddMid)
	}
	for i := 0; i < even.capacity; i++ {
		if w := even.weight(i); w != 2 {
			t.Errorf("Even fold weight(%d) = %d, expected 2", i, w)
		}
	}
	full := even.expand([]Angle{Plus45, Zero, Minus45, Ninety})
	expected := []Angle{Plus45, Zero, Minus45, Ninety, Ninety, Minus45, Zero, Plus45}
	if !reflect.DeepEqual(full, expected) {
		t.Errorf("Even expansion gave %v, expected %v", full, expected)
	}

	odd, err := New(&Summary{Length: 9, Target: GaugeTarget{3, 2, 2, 2}, Rules: RuleSet{Symmetry: true}})
	if err != nil {
		t.Fatalf("Failed to create odd symmetric laminate: %v", err)
	}
	if odd.capacity != 5 || !odd.oddMid {
		t.Errorf("Odd fold gave capacity %d, oddMid %v", odd.capacity, odd.oddMid)
	}
	if w := odd.weight(4); w != 1 {
		t.Errorf("Odd fold center weight = %d, expected 1", w)
	}
	if w := odd.weight(3); w != 2 {
		t.Errorf("Odd fold weight(3) = %d, expected 2", w)
	}
	full = odd.expand([]Angle{Plus45, Zero, Minus45, Ninety, Zero})
	expected = []Angle{Plus45, Zero, Minus45, Ninety, Zero, Ninety, Minus45, Zero, Plus45}
	if !reflect.DeepEqual(full, expected) {
		t.Errorf("Odd expansion gave %v, expected %v", full, expected)
	}

	flat, err := New(&Summary{Length: 4, Target: GaugeTarget{1, 1, 1, 1}})
	if err != nil {
		t.Fatalf("Failed to create unfolded laminate: %v", err)
	}
	if flat.capacity != 4 || flat.mirror {
		t.Errorf("Unfolded laminate gave capacity %d, mirror %v", flat.capacity, flat.mirror)
	}
	if w := flat.weight(2); w != 1 {
		t.Errorf("Unfolded weight(2) = %d, expected 1", w)
	}
}

func TestMidplane(t *testing.T) {
	even, err := New(&Summary{Length: 8, Target: GaugeTarget{2, 2, 2, 2}})
	if err != nil {
		t.Fatalf("Failed to create laminate: %v", err)
	}
	wants := []bool{false, false, false, true, true, false, false, false}
	for i, want := range wants {
		if got := even.midplane(i); got != want {
			t.Errorf("Length 8 midplane(%d) = %v, expected %v", i, got, want)
		}
	}
	odd, err := New(&Summary{Length: 9, Target: GaugeTarget{3, 2, 2, 2}})
	if err != nil {
		t.Fatalf("Failed to create laminate: %v", err)
	}
	wants = []bool{false, false, false, false, true, false, false, false, false}
	for i, want := range wants {
		if got := odd.midplane(i); got != want {
			t.Errorf("Length 9 midplane(%d) = %v, expected %v", i, got, want)
		}
	}
}

/*

The cost oracle

*/

func TestCostScenario(t *testing.T) {
	// a 10-ply working vector against gauges (3, 5, 2, 8)
	target := GaugeTarget{Zero: 3, Plus45: 5, Minus45: 2, Ninety: 8}
	theta := []Angle{
		Zero, Zero, Zero, Zero,
		Plus45, Plus45,
		Minus45,
		Ninety, Ninety, Ninety,
	}
	if c := Cost(theta, target); c != 10 {
		t.Errorf("Cost of working vector = %d, expected 10", c)
	}
}

func TestCostZeroIffExact(t *testing.T) {
	target := GaugeTarget{Zero: 1, Plus45: 2, Minus45: 1, Ninety: 0}
	exact := []Angle{Plus45, Zero, Minus45, Plus45}
	if c := Cost(exact, target); c != 0 {
		t.Errorf("Cost of exact vector = %d, expected 0", c)
	}
	for i := range exact {
		off := append([]Angle(nil), exact...)
		off[i] = Ninety
		if c := Cost(off, target); c == 0 {
			t.Errorf("Cost of mismatched vector %v = 0, expected non-zero", off)
		}
	}
}

func TestCostIgnoresAbsents(t *testing.T) {
	target := GaugeTarget{Zero: 2, Plus45: 1, Minus45: 1, Ninety: 1}
	physical := []Angle{Plus45, Zero, Ninety, Zero, Minus45}
	base := Cost(physical, target)
	// inserting empty positions anywhere must not move the cost
	for at := 0; at <= len(physical); at++ {
		padded := make([]Angle, 0, len(physical)+2)
		padded = append(padded, physical[:at]...)
		padded = append(padded, Absent, Absent)
		padded = append(padded, physical[at:]...)
		if c := Cost(padded, target); c != base {
			t.Errorf("Cost with absents at %d = %d, expected %d", at, c, base)
		}
	}
}
