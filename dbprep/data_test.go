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

package dbprep

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/ancientHacker/lamina.go/laminate"
)

func TestPresetLayupsValid(t *testing.T) {
	if len(presetLayups) == 0 {
		t.Fatalf("No preset layups to seed")
	}
	for id, summary := range presetLayups {
		if _, err := laminate.New(summary); err != nil {
			t.Errorf("Preset %q does not validate: %v", id, err)
		}
		if summary.Name == "" {
			t.Errorf("Preset %q has no user-facing name", id)
		}
	}
}

func TestPresetLayupsRoundTrip(t *testing.T) {
	for id, summary := range presetLayups {
		bytes, err := json.Marshal(summary)
		if err != nil {
			t.Fatalf("Couldn't marshal preset %q: %v", id, err)
		}
		var restored *laminate.Summary
		if err := json.Unmarshal(bytes, &restored); err != nil {
			t.Fatalf("Couldn't unmarshal preset %q: %v", id, err)
		}
		if !reflect.DeepEqual(summary, restored) {
			t.Errorf("Preset %q round-tripped to %+v, expected %+v", id, restored, summary)
		}
	}
}

func TestPresetDefaultExists(t *testing.T) {
	// sessions with no layup selection fall back to this preset
	if _, ok := presetLayups["quasi-isotropic-8"]; !ok {
		t.Errorf("No quasi-isotropic-8 preset for default sessions")
	}
}
