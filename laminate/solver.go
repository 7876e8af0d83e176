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
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
)

/*

Stacking-sequence search

Two searches share the branch and cost oracles.

The greedy construction imitates how a layup engineer drafts a
sequence by hand: place the forced outer ply, then at every
position extend with whichever legal orientation brings the
gauge counts closest to target, flipping a coin on ties.  It is
fast and usually enough when every position holds material, but
it cannot look ahead, so it fails on some feasible instances and
on most instances with absent plies.  Failed drafts are retried
with fresh coin flips up to the configured attempt budget.

The complete search is a depth-first search that uses a stack
for backtracking.  It is called Ariadne's thread, after the
mythical heroine who used a ball of yarn as a stack in her
depth-first search for an exit from the minotaur's maze.

1. Ask the branch oracle for the legal next plies, drop any that
can no longer reach a zero-cost completion, and order the rest
by the gauge deviation they leave.

2. If there are none, "rewind the thread": pop the stack until
an entry has untried plies, take the next one, and go to 1.  An
empty stack means the tree is exhausted and the instance is
infeasible.

3. Otherwise push the remaining choices on the stack, place the
best ply, and go to 1.  A completed vector that passes the
completion gate at cost zero is the solution.

Every node expansion spends one unit of the node budget; when
the budget runs out the search reports a timeout instead of an
answer.  Sibling subtrees share nothing but the budget counter
and the finished-solution flag, so the top-level subtrees can be
handed to concurrent workers unchanged.

*/

// A choice is a sequence, the ply just tried from it, and the
// remaining plies to try after that.
type choice struct {
	seq   *sequence
	cnext []Angle
}

// A thread is a stack of choices.
type thread []choice

const maxInt = int(^uint(0) >> 1)

// A searchOutcome accumulates one worker's traversal: the
// solution if one was found, the lowest completed cost seen,
// the node expansions spent, and whether the budget ran out.
type searchOutcome struct {
	solution []Angle
	best     int
	nodes    int64
	timedOut bool
}

/*

Greedy construction

*/

// Construct runs one greedy construction pass with the given
// random source and returns the full sequence it reached, plus
// whether that sequence is a valid zero-cost solution.  A false
// return is a failed attempt, not an error; callers retry with
// the same source to get different tie-breaks.
func (lam *Laminate) Construct(rng *rand.Rand) ([]Angle, bool) {
	seq := newSequence(lam)
	for !seq.complete() {
		cands := seq.branch()
		if len(cands) == 0 {
			return nil, false
		}
		// keep the extensions with the lowest gauge deviation,
		// then break the tie uniformly at random
		var best []*sequence
		bestCost := maxInt
		for _, a := range cands {
			ext := seq.extend(a)
			switch c := ext.cost(); {
			case c < bestCost:
				bestCost = c
				best = append(best[:0], ext)
			case c == bestCost:
				best = append(best, ext)
			}
		}
		seq = best[rng.Intn(len(best))]
	}
	full := seq.full()
	if Cost(full, lam.summary.Target) != 0 || !lam.checkComplete(full) {
		return nil, false
	}
	seq.verify()
	return full, true
}

/*

Branch-and-bound search

*/

// orderCandidates asks the branch oracle for the legal next
// plies, prunes the ones whose extension cannot reach cost zero,
// and returns the survivors ordered by ascending extension cost.
// The order is stable over the oracle's candidate order, so runs
// are deterministic.
func (lam *Laminate) orderCandidates(seq *sequence) []Angle {
	cands := seq.branch()
	angles := make([]Angle, 0, len(cands))
	costs := make([]int, 0, len(cands))
	for _, a := range cands {
		ext := seq.extend(a)
		if !ext.feasible() {
			continue
		}
		angles = append(angles, a)
		costs = append(costs, ext.cost())
	}
	for i := 1; i < len(angles); i++ {
		for j := i; j > 0 && costs[j] < costs[j-1]; j-- {
			costs[j], costs[j-1] = costs[j-1], costs[j]
			angles[j], angles[j-1] = angles[j-1], angles[j]
		}
	}
	return angles
}

// popChoice rewinds the thread to the next untried choice after
// the current branch has failed.  The boolean return is false
// when the thread is exhausted.
func popChoice(t thread) (*sequence, thread, bool) {
	for len(t) > 0 {
		top := &t[len(t)-1]
		if len(top.cnext) == 0 {
			*top = choice{} // release storage held in choice before pop
			t = t[:len(t)-1]
			continue
		}
		next := top.cnext[0]
		top.cnext = top.cnext[1:]
		return top.seq.extend(next), t, true
	}
	return nil, t, false
}

// search explores the subtree rooted at seq using Ariadne's
// thread.  The budget counter is shared and decremented
// atomically, so concurrent workers draw from one pool; the
// cancel channel, when non-nil, tells this worker some other
// worker already finished.
func (lam *Laminate) search(seq *sequence, budget *int64, cancel <-chan struct{}) searchOutcome {
	out := searchOutcome{best: maxInt}
	var t thread
	for {
		if cancel != nil {
			select {
			case <-cancel:
				return out
			default:
			}
		}
		if atomic.AddInt64(budget, -1) < 0 {
			out.timedOut = true
			return out
		}
		out.nodes++
		if seq.complete() {
			full := seq.full()
			if c := Cost(full, lam.summary.Target); c < out.best {
				out.best = c
			}
			if lam.checkComplete(full) && Cost(full, lam.summary.Target) == 0 {
				seq.verify()
				out.solution = full
				return out
			}
		} else {
			if cands := lam.orderCandidates(seq); len(cands) > 0 {
				t = append(t, choice{seq: seq, cnext: cands[1:]})
				seq = seq.extend(cands[0])
				continue
			}
		}
		var ok bool
		seq, t, ok = popChoice(t)
		if !ok {
			return out
		}
	}
}

// searchParallel fans the root's candidate subtrees out to
// worker goroutines.  The workers share the node budget, a
// cancellation channel closed by whichever worker finds a
// solution first, and a mutex-guarded merge of their outcomes.
// Forking deeper than the root never pays for itself at
// laminate-sized capacities.
func (lam *Laminate) searchParallel(budget *int64, workers int) searchOutcome {
	merged := searchOutcome{best: maxInt}
	// the root expansion draws on the budget like any other node,
	// so serial and parallel runs account the same tree alike
	if atomic.AddInt64(budget, -1) < 0 {
		merged.timedOut = true
		return merged
	}
	merged.nodes = 1
	root := newSequence(lam)
	cands := lam.orderCandidates(root)
	if len(cands) == 0 {
		return merged
	}
	if workers > len(cands) {
		workers = len(cands)
	}

	work := make(chan Angle, len(cands))
	for _, a := range cands {
		work <- a
	}
	close(work)

	cancel := make(chan struct{})
	var once sync.Once
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for a := range work {
				sub := lam.search(root.extend(a), budget, cancel)
				mu.Lock()
				merged.nodes += sub.nodes
				if sub.best < merged.best {
					merged.best = sub.best
				}
				if sub.timedOut {
					merged.timedOut = true
				}
				if sub.solution != nil && merged.solution == nil {
					merged.solution = sub.solution
					once.Do(func() { close(cancel) })
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return merged
}

/*

The generation entry point

*/

// Solve runs the configured searches and reports the outcome.
// When no absent plies are in play it first drafts greedily up
// to the attempt budget; if the drafts fail (or absences make
// drafting pointless) it falls back to the complete
// branch-and-bound search.  Configuration problems were already
// caught by New, so every return is a Result, never an error.
func (lam *Laminate) Solve() Result {
	seed := lam.summary.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	res := Result{Outcome: Infeasible, BestCost: -1}
	if lam.absents == 0 {
		for i := 0; i < lam.summary.Attempts; i++ {
			res.Attempts = i + 1
			if full, ok := lam.Construct(rng); ok {
				res.Outcome = Solved
				res.Sequence = full
				res.BestCost = 0
				return res
			}
		}
	}

	budget := lam.summary.NodeBudget
	var out searchOutcome
	if lam.summary.Workers > 1 {
		out = lam.searchParallel(&budget, lam.summary.Workers)
	} else {
		out = lam.search(newSequence(lam), &budget, nil)
	}
	res.Nodes = out.nodes
	if out.best < maxInt {
		res.BestCost = out.best
	}
	switch {
	case out.solution != nil:
		res.Outcome = Solved
		res.Sequence = out.solution
		res.BestCost = 0
	case out.timedOut:
		res.Outcome = Timeout
	default:
		res.Outcome = Infeasible
	}
	return res
}
