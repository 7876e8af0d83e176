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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func postLaminate(t *testing.T, body string) (*httptest.ResponseRecorder, *Laminate, error) {
	t.Helper()
	r, e := http.NewRequest("POST", "/api/laminates", strings.NewReader(body))
	if e != nil {
		t.Fatalf("Failed to create request: %v", e)
	}
	w := httptest.NewRecorder()
	lam, err := NewHandler(w, r)
	return w, lam, err
}

func TestNewHandler(t *testing.T) {
	w, lam, err := postLaminate(t,
		`{"length": 4, "target": {"zero": 1, "plus45": 1, "minus45": 1, "ninety": 1}}`)
	if err != nil {
		t.Fatalf("NewHandler failed: %v", err)
	}
	if lam == nil {
		t.Fatalf("NewHandler returned no laminate")
	}
	if w.Code != http.StatusOK {
		t.Errorf("Response status %d, expected %d", w.Code, http.StatusOK)
	}
	var summary Summary
	if e := json.NewDecoder(w.Body).Decode(&summary); e != nil {
		t.Fatalf("Failed to decode response summary: %v", e)
	}
	if summary.Length != 4 || summary.Attempts != DefaultAttempts {
		t.Errorf("Response summary %+v not normalized", summary)
	}
}

func TestNewHandlerBadJSON(t *testing.T) {
	w, lam, err := postLaminate(t, `this is not JSON`)
	if err == nil || lam != nil {
		t.Fatalf("NewHandler accepted a malformed body")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("Response status %d, expected %d", w.Code, http.StatusBadRequest)
	}
}

func TestNewHandlerBadSummary(t *testing.T) {
	w, lam, err := postLaminate(t,
		`{"length": 4, "target": {"zero": 4, "plus45": 4, "minus45": 4, "ninety": 4}}`)
	if err == nil || lam != nil {
		t.Fatalf("NewHandler accepted an overflowing gauge target")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("Response status %d, expected %d", w.Code, http.StatusBadRequest)
	}
	e, ok := err.(Error)
	if !ok || e.Condition != GaugeOverflowCondition {
		t.Errorf("NewHandler returned %v, expected a gauge overflow Error", err)
	}
	var echoed Error
	if e := json.NewDecoder(w.Body).Decode(&echoed); e != nil {
		t.Fatalf("Failed to decode response error: %v", e)
	}
	if echoed.Condition != GaugeOverflowCondition || len(echoed.Message) == 0 {
		t.Errorf("Response error %+v missing condition or message", echoed)
	}
}

func TestSolveHandler(t *testing.T) {
	lam := mustNew(t, &Summary{Length: 4, Target: GaugeTarget{1, 1, 1, 1}, Seed: 1})
	r, e := http.NewRequest("POST", "/api/laminates/solve", nil)
	if e != nil {
		t.Fatalf("Failed to create request: %v", e)
	}
	w := httptest.NewRecorder()
	result, err := lam.SolveHandler(w, r)
	if err != nil {
		t.Fatalf("SolveHandler failed: %v", err)
	}
	if w.Code != http.StatusOK {
		t.Errorf("Response status %d, expected %d", w.Code, http.StatusOK)
	}
	if result == nil || result.Outcome != Solved {
		t.Fatalf("SolveHandler returned %+v, expected a solved result", result)
	}
	var echoed Result
	if e := json.NewDecoder(w.Body).Decode(&echoed); e != nil {
		t.Fatalf("Failed to decode response result: %v", e)
	}
	if echoed.Outcome != Solved || len(echoed.Sequence) != 4 {
		t.Errorf("Response result %+v, expected the solved sequence", echoed)
	}
}

func TestHandlersNilLaminate(t *testing.T) {
	var lam *Laminate
	r, e := http.NewRequest("GET", "/api/laminates/summary", nil)
	if e != nil {
		t.Fatalf("Failed to create request: %v", e)
	}
	w := httptest.NewRecorder()
	if err := lam.SummaryHandler(w, r); err == nil {
		t.Errorf("SummaryHandler accepted a nil laminate")
	}
	if w.Code != http.StatusNotFound {
		t.Errorf("Response status %d, expected %d", w.Code, http.StatusNotFound)
	}
	w = httptest.NewRecorder()
	if _, err := lam.SolveHandler(w, r); err == nil {
		t.Errorf("SolveHandler accepted a nil laminate")
	}
	if w.Code != http.StatusNotFound {
		t.Errorf("Response status %d, expected %d", w.Code, http.StatusNotFound)
	}
}
