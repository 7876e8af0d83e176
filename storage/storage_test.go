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

package storage

import (
	"encoding/json"
	"os"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/ancientHacker/lamina.go/laminate"
)

/*

key generation

*/

func TestSessionKeys(t *testing.T) {
	oldEnv := os.Getenv("LAMINA_ENV")
	defer os.Setenv("LAMINA_ENV", oldEnv)

	os.Setenv("LAMINA_ENV", "")
	rdInit()
	session := &Session{SID: "test-session"}
	if key := session.key(); key != "lamina:SID:test-session" {
		t.Errorf("Default session key is %q", key)
	}
	if key := session.attemptsKey(); key != "lamina:SID:test-session:Attempts" {
		t.Errorf("Default attempts key is %q", key)
	}

	os.Setenv("LAMINA_ENV", "staging")
	rdInit()
	if key := session.key(); key != "staging:SID:test-session" {
		t.Errorf("Deployment-scoped session key is %q", key)
	}
	le := &layupEntry{LayupId: "quasi-isotropic-8"}
	if key := le.key(); key != "staging:LID:quasi-isotropic-8" {
		t.Errorf("Layup key is %q", key)
	}
	se := &solutionEntry{Signature: "abc123"}
	if key := se.key(); key != "staging:SIG:abc123" {
		t.Errorf("Solution key is %q", key)
	}
}

/*

attempt serialization

*/

func TestAttemptRoundTrip(t *testing.T) {
	summary := &laminate.Summary{
		Name:   "round trip",
		Length: 8,
		Target: laminate.GaugeTarget{Zero: 2, Plus45: 2, Minus45: 2, Ninety: 2},
		Rules:  laminate.RuleSet{Symmetry: true},
		Seed:   42,
	}
	result := &laminate.Result{
		Outcome:  laminate.Solved,
		Sequence: []laminate.Angle{laminate.Plus45, laminate.Zero, laminate.Minus45, laminate.Ninety, laminate.Ninety, laminate.Minus45, laminate.Zero, laminate.Plus45},
		BestCost: 0,
		Nodes:    12,
	}
	session := &Session{SID: "rt", LID: "lid", Attempt: 2, Summary: summary, Result: result}
	bytes := session.marshalAttempt()

	restored := &Session{SID: "rt", LID: "lid", Attempt: 2}
	restored.unmarshalAttempt(bytes)
	if !reflect.DeepEqual(restored.Summary, summary) {
		t.Errorf("Attempt summary restored as %+v, expected %+v", restored.Summary, summary)
	}
	if !reflect.DeepEqual(restored.Result, result) {
		t.Errorf("Attempt result restored as %+v, expected %+v", restored.Result, result)
	}
}

func TestAttemptRoundTripNoResult(t *testing.T) {
	summary := &laminate.Summary{
		Length: 4,
		Target: laminate.GaugeTarget{Zero: 1, Plus45: 1, Minus45: 1, Ninety: 1},
	}
	session := &Session{SID: "rt2", Summary: summary}
	restored := &Session{SID: "rt2"}
	restored.unmarshalAttempt(session.marshalAttempt())
	if !reflect.DeepEqual(restored.Summary, summary) {
		t.Errorf("Attempt summary restored as %+v, expected %+v", restored.Summary, summary)
	}
	if restored.Result != nil {
		t.Errorf("Attempt with no result restored result %+v", restored.Result)
	}
}

func TestUnmarshalRejectsInvalidAttempt(t *testing.T) {
	// a saved attempt whose statement no longer validates must
	// not load silently
	bad := &attemptRecord{Summary: &laminate.Summary{Length: 2,
		Target: laminate.GaugeTarget{Zero: 4}}}
	bytes, err := json.Marshal(bad)
	if err != nil {
		t.Fatalf("Couldn't marshal attempt record: %v", err)
	}
	session := &Session{SID: "bad"}
	defer (func() {
		if e := recover(); e == nil {
			t.Errorf("Loading an invalid saved attempt did not panic")
		}
	})()
	session.unmarshalAttempt(bytes)
}

/*

layup entries

*/

func TestLayupEntrySummary(t *testing.T) {
	summary := &laminate.Summary{
		Length: 8,
		Target: laminate.GaugeTarget{Zero: 2, Plus45: 2, Minus45: 2, Ninety: 2},
	}
	bytes, err := json.Marshal(summary)
	if err != nil {
		t.Fatalf("Couldn't marshal summary: %v", err)
	}
	le := &layupEntry{LayupId: summary.Hash(), Name: "stored name", Summary: string(bytes)}
	restored := le.makeSummary()
	// a nameless stored statement picks up the preset's name
	if restored.Name != "stored name" {
		t.Errorf("Restored summary name %q, expected %q", restored.Name, "stored name")
	}
	restored.Name = ""
	if !reflect.DeepEqual(restored, summary) {
		t.Errorf("Restored summary %+v, expected %+v", restored, summary)
	}
}

func TestLayupInfoSorting(t *testing.T) {
	now := time.Now()
	infos := []*LayupInfo{
		{LayupId: "c", Name: "charlie", Created: now.Add(-time.Hour)},
		{LayupId: "a", Name: "alpha", Created: now},
		{LayupId: "b", Name: "bravo", Created: now.Add(-2 * time.Hour)},
	}
	sort.Sort(ByName(infos))
	if infos[0].Name != "alpha" || infos[2].Name != "charlie" {
		t.Errorf("ByName order: %q, %q, %q", infos[0].Name, infos[1].Name, infos[2].Name)
	}
	sort.Sort(ByLatest(infos))
	if infos[0].LayupId != "a" || infos[2].LayupId != "b" {
		t.Errorf("ByLatest order: %q, %q, %q",
			infos[0].LayupId, infos[1].LayupId, infos[2].LayupId)
	}
}
