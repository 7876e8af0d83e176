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

func mustNew(t *testing.T, summary *Summary) *Laminate {
	t.Helper()
	lam, err := New(summary)
	if err != nil {
		t.Fatalf("Failed to create laminate: %v", err)
	}
	return lam
}

/*

Per-step rules

*/

func TestBranchNoRules(t *testing.T) {
	lam := mustNew(t, &Summary{Length: 4, Target: GaugeTarget{1, 1, 1, 1}})
	cands := newSequence(lam).branch()
	expected := []Angle{Zero, Plus45, Minus45, Ninety}
	if !reflect.DeepEqual(cands, expected) {
		t.Errorf("Unconstrained branch gave %v, expected %v", cands, expected)
	}

	gapped := mustNew(t, &Summary{Length: 6, Target: GaugeTarget{1, 1, 1, 1}})
	cands = newSequence(gapped).branch()
	expected = []Angle{Zero, Plus45, Minus45, Ninety, Absent}
	if !reflect.DeepEqual(cands, expected) {
		t.Errorf("Branch with absent budget gave %v, expected %v", cands, expected)
	}
}

func TestDamageToleranceOuterPly(t *testing.T) {
	lam := mustNew(t, &Summary{
		Length: 6, Target: GaugeTarget{1, 1, 1, 1},
		Rules: RuleSet{DamageTolerance: true},
	})
	cands := newSequence(lam).branch()
	expected := []Angle{Plus45, Minus45}
	if !reflect.DeepEqual(cands, expected) {
		t.Errorf("Damage-tolerant root branch gave %v, expected %v", cands, expected)
	}
	// once the outer ply is placed the other orientations open up
	cands = newSequence(lam).extend(Plus45).branch()
	expected = []Angle{Zero, Plus45, Minus45, Ninety, Absent}
	if !reflect.DeepEqual(cands, expected) {
		t.Errorf("Damage-tolerant inner branch gave %v, expected %v", cands, expected)
	}
}

func TestContiguityAcrossAbsents(t *testing.T) {
	lam := mustNew(t, &Summary{
		Length: 5, Target: GaugeTarget{Ninety: 3},
		Rules: RuleSet{Contiguity: true, MaxRun: 2},
	})
	s := newSequence(lam).extend(Ninety).extend(Ninety)
	if s.contiguityOK(Ninety) {
		t.Errorf("Run of 3 was admitted under a limit of 2")
	}
	// the run is not broken by removing material
	if s.extend(Absent).contiguityOK(Ninety) {
		t.Errorf("Run of 3 across an absent was admitted under a limit of 2")
	}
	if !s.extend(Zero).contiguityOK(Ninety) {
		t.Errorf("Fresh run was rejected")
	}
}

func TestDisorientationAcrossAbsents(t *testing.T) {
	lam := mustNew(t, &Summary{
		Length: 4, Target: GaugeTarget{Zero: 1, Ninety: 1},
		Rules: RuleSet{Disorientation: true, MaxDelta: 45},
	})
	s := newSequence(lam).extend(Zero).extend(Absent).extend(Absent)
	cands := s.branch()
	// 90 is two empty positions away from the 0 ply but the jump
	// still counts; the absent budget is spent, so no fifth option
	expected := []Angle{Zero, Plus45, Minus45}
	if !reflect.DeepEqual(cands, expected) {
		t.Errorf("Branch across absents gave %v, expected %v", cands, expected)
	}
	if lam.checkComplete([]Angle{Zero, Absent, Absent, Ninety}) {
		t.Errorf("Completion gate passed a 90-degree jump across absents")
	}
	if !lam.checkComplete([]Angle{Zero, Absent, Absent, Plus45}) {
		t.Errorf("Completion gate rejected a 45-degree jump across absents")
	}
}

func TestAlternationMidplaneException(t *testing.T) {
	lam := mustNew(t, &Summary{
		Length: 8, Target: GaugeTarget{Plus45: 4, Minus45: 4},
		Rules: RuleSet{PlusMinus45: true},
	})
	s := newSequence(lam).extend(Plus45)
	if s.alternationOK(Plus45) {
		t.Errorf("Same-sign pair away from the midplane was admitted")
	}
	if !s.alternationOK(Minus45) {
		t.Errorf("Alternating sign was rejected")
	}
	center := s.extend(Minus45).extend(Plus45).extend(Minus45)
	if !center.alternationOK(Minus45) {
		t.Errorf("Same-sign pair straddling the midplane was rejected")
	}

	good := []Angle{Plus45, Minus45, Plus45, Minus45, Minus45, Plus45, Minus45, Plus45}
	if !lam.checkComplete(good) {
		t.Errorf("Completion gate rejected %v", SequenceString(good))
	}
	bad := []Angle{Plus45, Minus45, Minus45, Plus45, Minus45, Plus45, Minus45, Plus45}
	if lam.checkComplete(bad) {
		t.Errorf("Completion gate passed %v", SequenceString(bad))
	}
}

/*

The completion gate

*/

func TestCheckCompleteDamageTail(t *testing.T) {
	lam := mustNew(t, &Summary{
		Length: 4, Target: GaugeTarget{Plus45: 1, Minus45: 1, Ninety: 1},
		Rules: RuleSet{DamageTolerance: true},
	})
	// the last physical ply governs, not the last position
	if !lam.checkComplete([]Angle{Plus45, Ninety, Minus45, Absent}) {
		t.Errorf("Gate rejected a sequence whose physical tail is -45")
	}
	if lam.checkComplete([]Angle{Plus45, Minus45, Ninety, Absent}) {
		t.Errorf("Gate passed a sequence whose physical tail is 90")
	}
}

func TestCheckCompleteSymmetry(t *testing.T) {
	lam := mustNew(t, &Summary{
		Length: 4, Target: GaugeTarget{Zero: 2, Ninety: 2},
		Rules: RuleSet{Symmetry: true},
	})
	if !lam.checkComplete([]Angle{Zero, Ninety, Ninety, Zero}) {
		t.Errorf("Gate rejected a mirrored sequence")
	}
	if lam.checkComplete([]Angle{Zero, Ninety, Zero, Ninety}) {
		t.Errorf("Gate passed an unmirrored sequence")
	}
}

func TestCheckCompleteBalance(t *testing.T) {
	lam := mustNew(t, &Summary{
		Length: 4, Target: GaugeTarget{Plus45: 2, Minus45: 2},
		Rules: RuleSet{Balance: true},
	})
	if !lam.checkComplete([]Angle{Plus45, Plus45, Minus45, Minus45}) {
		t.Errorf("Gate rejected a balanced sequence")
	}
	if lam.checkComplete([]Angle{Plus45, Plus45, Plus45, Minus45}) {
		t.Errorf("Gate passed an unbalanced sequence")
	}
}
