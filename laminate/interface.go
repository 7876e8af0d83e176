// Copyright 2016 Daniel C. Brotsky.  All rights reserved.

// Package laminate provides a model for composite-laminate
// stacking sequences and a generator that produces sequences
// satisfying a set of manufacturing design rules.  It supports
// both a golang interface and a web interface to the generator.
//
// In this package, a stacking sequence is an ordered vector of
// ply orientations.  Each position either holds material at one
// of the four standard orientations (0, +45, -45, 90 degrees) or
// is reserved empty (an absent ply).  The generator is given a
// gauge target (how many plies of each orientation the finished
// laminate needs), a total sequence length, and a rule set, and
// searches for a sequence whose orientation counts exactly match
// the target while every enabled rule holds.
//
// The rules are the usual laminate design rules: symmetry about
// the midplane, balance of +45 against -45 plies, a minimum
// percentage of each orientation, damage tolerance (outer plies
// at +/-45), contiguity (a cap on consecutive identical plies),
// +/-45 alternation, and disorientation (a cap on the angular
// jump between adjacent physical plies).  When the sequence
// length exceeds the gauge total, the leftover positions must be
// filled with absent plies, and the adjacency-sensitive rules
// are evaluated across those empty positions as if the physical
// plies on either side touched.
//
// Sequences that satisfy every enabled rule and match the gauge
// target exactly are reported as solutions.  A search that
// exhausts its tree reports Infeasible; one that exhausts its
// node budget reports Timeout.  Both are normal outcomes, not
// errors.  Errors are reserved for invalid problem statements,
// which are detected before any search begins.
package laminate

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

/*

Angles

*/

// An Angle is the orientation of one ply position.  Absent marks
// a reserved empty position; it is only legal in sequences whose
// length exceeds the gauge total.
type Angle int

// The ply orientations.  The zero value is Absent so that a
// freshly allocated vector reads as all-empty.
const (
	Absent Angle = iota
	Zero
	Plus45
	Minus45
	Ninety
)

// physicalAngles are the orientations that place material, in
// the order candidates are generated.
var physicalAngles = [4]Angle{Zero, Plus45, Minus45, Ninety}

// Angles implement Stringer.
func (a Angle) String() string {
	switch a {
	case Absent:
		return "--"
	case Zero:
		return "0"
	case Plus45:
		return "+45"
	case Minus45:
		return "-45"
	case Ninety:
		return "90"
	}
	return fmt.Sprintf("<angle %d>", int(a))
}

// SequenceString formats a stacking sequence the way laminate
// engineers write them: orientations separated by slashes.
func SequenceString(angles []Angle) string {
	parts := make([]string, len(angles))
	for i, a := range angles {
		parts[i] = a.String()
	}
	return "[" + strings.Join(parts, "/") + "]"
}

/*

Problem statements

*/

// A GaugeTarget gives the required ply count for each physical
// orientation.
type GaugeTarget struct {
	Zero    int `json:"zero"`
	Plus45  int `json:"plus45"`
	Minus45 int `json:"minus45"`
	Ninety  int `json:"ninety"`
}

// Count returns the target count for an orientation.  Absent has
// no target; asking for it is a programming error.
func (t GaugeTarget) Count(a Angle) int {
	switch a {
	case Zero:
		return t.Zero
	case Plus45:
		return t.Plus45
	case Minus45:
		return t.Minus45
	case Ninety:
		return t.Ninety
	}
	panic(internalError("GaugeTarget.Count", GeneralCondition,
		fmt.Sprintf("No gauge count for angle %v", a)))
}

// Total returns the number of physical plies the target requires.
func (t GaugeTarget) Total() int {
	return t.Zero + t.Plus45 + t.Minus45 + t.Ninety
}

// A RuleSet selects which design rules the generator enforces,
// with their parameters.  Balance and PlusMinus45 are mutually
// exclusive: the alternation rule subsumes balance, so enabling
// both is a configuration error.
type RuleSet struct {
	Symmetry        bool    `json:"symmetry,omitempty"`
	Balance         bool    `json:"balance,omitempty"`
	MinPercentage   bool    `json:"minPercentage,omitempty"`
	MinFraction     float64 `json:"minFraction,omitempty"`
	DamageTolerance bool    `json:"damageTolerance,omitempty"`
	Contiguity      bool    `json:"contiguity,omitempty"`
	MaxRun          int     `json:"maxRun,omitempty"`
	PlusMinus45     bool    `json:"plusMinus45,omitempty"`
	Disorientation  bool    `json:"disorientation,omitempty"`
	MaxDelta        int     `json:"maxDelta,omitempty"`
}

// A Summary is a complete problem statement: everything needed
// to reproduce a generation run.  Summaries are what clients
// post to the web interface and what sessions persist, so all
// the fields are JSON-serializable.
//
// Seed controls tie-breaking and retry reproducibility; a zero
// seed means "pick one from the clock".  Attempts bounds greedy
// construction retries, NodeBudget bounds branch-and-bound node
// expansions, and Workers sets the number of concurrent subtree
// explorers; zero values select the package defaults.
type Summary struct {
	Name       string      `json:"name,omitempty"`
	Length     int         `json:"length"`
	Target     GaugeTarget `json:"target"`
	Rules      RuleSet     `json:"rules"`
	Seed       int64       `json:"seed,omitempty"`
	Attempts   int         `json:"attempts,omitempty"`
	NodeBudget int64       `json:"nodeBudget,omitempty"`
	Workers    int         `json:"workers,omitempty"`
}

// Hash returns a stable hex signature for the search problem a
// summary poses.  The name and search knobs are excluded, so a
// renamed or re-seeded copy of a layup hashes the same and finds
// the same stored solutions.
func (s *Summary) Hash() string {
	shape := Summary{Length: s.Length, Target: s.Target, Rules: s.Rules}
	bytes, err := json.Marshal(&shape)
	if err != nil {
		panic(internalError("Summary.Hash", GeneralCondition, err.Error()))
	}
	return fmt.Sprintf("%x", sha256.Sum256(bytes))
}

// Defaults for the Summary search knobs.
const (
	DefaultAttempts   = 20
	DefaultNodeBudget = 1 << 20
)

/*

Outcomes

*/

// An Outcome classifies how a generation run ended.
type Outcome int

// The generation outcomes.  Infeasible means the search tree was
// exhausted; Timeout means the node budget ran out first.
const (
	Solved Outcome = iota
	Infeasible
	Timeout
)

// Outcomes implement Stringer.
func (o Outcome) String() string {
	switch o {
	case Solved:
		return "solved"
	case Infeasible:
		return "infeasible"
	case Timeout:
		return "timeout"
	}
	return fmt.Sprintf("<outcome %d>", int(o))
}

// A Result reports a generation run.  When the Outcome is
// Solved, Sequence holds the complete stacking sequence (full
// length, mirrored if symmetry was enabled) and BestCost is 0.
// Otherwise Sequence is empty and BestCost is the lowest gauge
// deviation seen among completed candidates, or -1 when the
// search never completed a candidate.  Nodes counts
// branch-and-bound node expansions; Attempts counts greedy
// construction tries.
type Result struct {
	Outcome  Outcome `json:"outcome"`
	Sequence []Angle `json:"sequence,omitempty"`
	BestCost int     `json:"bestCost"`
	Nodes    int64   `json:"nodes"`
	Attempts int     `json:"attempts,omitempty"`
}

/*

Laminate construction

*/

// A Laminate is a validated problem instance.  Construction
// performs all the configuration checks, so a Laminate in hand
// is always searchable.  Under symmetry only the first half of
// the vector is generated and the summary's length is reached by
// mirroring; the derived fields record that folding.
type Laminate struct {
	summary  Summary
	length   int  // full sequence length
	capacity int  // positions actually generated
	mirror   bool // generated prefix mirrors to full length
	oddMid   bool // last generated position is its own mirror
	total    int  // physical plies required by the target
	absents  int  // positions that must stay empty
	midLo    int  // first midplane position (full-vector index)
	midHi    int  // last midplane position (full-vector index)
}

// New validates a Summary and returns the Laminate for it.  All
// the configuration errors of the problem statement are caught
// here: gauge counts that overflow the length, conflicting
// rules, non-positive rule parameters, and gauge targets that
// violate the minimum-percentage rule.  When an error is
// returned it is always an Error value.
func New(summary *Summary) (*Laminate, error) {
	if summary == nil {
		return nil, Error{
			Scope:     ArgumentScope,
			Structure: AttributeStructure,
			Attribute: SummaryAttribute,
			Condition: InvalidArgumentCondition,
		}
	}
	if summary.Length < 1 {
		return nil, rangeError(LengthAttribute, summary.Length, 1, maxLength)
	}
	if summary.Length > maxLength {
		return nil, rangeError(LengthAttribute, summary.Length, 1, maxLength)
	}
	t := summary.Target
	for _, a := range physicalAngles {
		if t.Count(a) < 0 {
			return nil, Error{
				Scope:     GaugeScope,
				Structure: AttributeValueStructure,
				Attribute: GaugeAttribute,
				Condition: TooSmallCondition,
				Values:    ErrorData{a.String(), 0},
			}
		}
	}
	total := t.Total()
	if total > summary.Length {
		return nil, Error{
			Scope:     GaugeScope,
			Structure: ScopeStructure,
			Condition: GaugeOverflowCondition,
			Values:    ErrorData{total, summary.Length},
		}
	}
	r := summary.Rules
	if r.Balance && r.PlusMinus45 {
		return nil, Error{
			Scope:     RuleScope,
			Structure: ScopeStructure,
			Condition: ConflictingRulesCondition,
			Values:    ErrorData{"plusMinus45", "balance"},
		}
	}
	if r.Balance && t.Plus45 != t.Minus45 {
		// no zero-cost sequence can balance unequal gauges
		return nil, Error{
			Scope:     RuleScope,
			Structure: ScopeStructure,
			Condition: GeneralCondition,
			Values: ErrorData{fmt.Sprintf(
				"Balance requires equal +45/-45 gauges, have %d/%d", t.Plus45, t.Minus45)},
		}
	}
	if r.Contiguity && r.MaxRun < 1 {
		return nil, ruleError(MaxRunAttribute, TooSmallCondition, r.MaxRun, 1)
	}
	if r.Disorientation && r.MaxDelta < 1 {
		return nil, ruleError(MaxDeltaAttribute, TooSmallCondition, r.MaxDelta, 1)
	}
	if r.MinPercentage {
		if r.MinFraction <= 0 || r.MinFraction >= 1 {
			return nil, ruleError(MinFractionAttribute, InvalidArgumentCondition, r.MinFraction)
		}
		// the smallest count that is at least the fraction; a
		// truncating conversion would admit counts just under it
		need := int(math.Ceil(r.MinFraction * float64(summary.Length)))
		for _, a := range physicalAngles {
			if t.Count(a) < need {
				return nil, Error{
					Scope:     GaugeScope,
					Structure: AttributeValueStructure,
					Attribute: GaugeAttribute,
					Condition: MinPercentageCondition,
					Values:    ErrorData{a.String(), need},
				}
			}
		}
	}
	if r.DamageTolerance && t.Plus45+t.Minus45 == 0 {
		return nil, Error{
			Scope:     RuleScope,
			Structure: ScopeStructure,
			Condition: GeneralCondition,
			Values:    ErrorData{"Damage tolerance requires at least one +/-45 ply in the gauge target"},
		}
	}

	lam := &Laminate{
		summary: *summary,
		length:  summary.Length,
		total:   total,
		absents: summary.Length - total,
		midLo:   (summary.Length - 1) / 2,
		midHi:   summary.Length / 2,
	}
	if r.Symmetry {
		lam.mirror = true
		lam.capacity = (summary.Length + 1) / 2
		lam.oddMid = summary.Length%2 == 1
	} else {
		lam.capacity = summary.Length
	}
	if lam.summary.Attempts == 0 {
		lam.summary.Attempts = DefaultAttempts
	}
	if lam.summary.NodeBudget == 0 {
		lam.summary.NodeBudget = DefaultNodeBudget
	}
	if lam.summary.Workers < 1 {
		lam.summary.Workers = 1
	}
	return lam, nil
}

// the longest sequence we are willing to search
const maxLength = 512

// Summary returns a copy of the laminate's problem statement,
// with the search knobs normalized to their effective values.
func (lam *Laminate) Summary() *Summary {
	s := lam.summary
	return &s
}
