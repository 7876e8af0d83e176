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
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx"

	"github.com/ancientHacker/lamina.go/laminate"
)

/*

entries

*/

type dataFunction func(*pgx.Tx) error

var (
	upFunctions = []dataFunction{
		insertPresets,
	}
	downFunctions = []dataFunction{
		deletePresets,
	}
)

// DataUp: load the preset layups into the database.  You should
// do this after you get the schema up!
func DataUp() error {
	return applyFunctions(upFunctions)
}

// DataDown: remove the preset layups from the database.  You
// should do this before you tear the schema down!
func DataDown() error {
	return applyFunctions(downFunctions)
}

// apply dataFunctions to the database.  Each is applied in a
// separate transaction, so later ones can rely on the effect of
// earlier ones having been committed.
func applyFunctions(fns []dataFunction) error {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		url = "postgres://localhost/lamina?sslmode=disable"
	}

	// open the database, defer the close
	cfg, err := pgx.ParseURI(url)
	if err != nil {
		return err
	}
	conn, err := pgx.Connect(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	// helper that runs each function inside a transaction, and
	// ensures that any problems are rolled back.
	runFunc := func(fn dataFunction) error {
		tx, err := conn.Begin()
		if err != nil {
			return err
		}
		defer func() {
			if e := recover(); e != nil {
				tx.Rollback()
				panic(e)
			}
		}()
		if err := fn(tx); err != nil {
			tx.Rollback()
			return err
		}
		return tx.Commit()
	}

	// run the functions
	for _, fn := range fns {
		if err := runFunc(fn); err != nil {
			return fmt.Errorf("%v failed: %v", fn, err)
		}
	}
	return nil
}

/*

insert the preset layups

*/

// The preset layups every deployment starts with.  The well-known
// IDs are what sessions and the CLI select by; each must validate
// against laminate.New, which the init hook enforces at startup.
var presetLayups = map[string]*laminate.Summary{
	"quasi-isotropic-8": {
		Name:   "Quasi-isotropic 8-ply",
		Length: 8,
		Target: laminate.GaugeTarget{Zero: 2, Plus45: 2, Minus45: 2, Ninety: 2},
		Rules: laminate.RuleSet{
			DamageTolerance: true,
			Contiguity:      true, MaxRun: 2,
			Disorientation: true, MaxDelta: 45,
			PlusMinus45: true,
		},
	},
	"symmetric-16": {
		Name:   "Symmetric 16-ply skin",
		Length: 16,
		Target: laminate.GaugeTarget{Zero: 4, Plus45: 4, Minus45: 4, Ninety: 4},
		Rules: laminate.RuleSet{
			Symmetry:        true,
			DamageTolerance: true,
			Contiguity:      true, MaxRun: 2,
			Disorientation: true, MaxDelta: 45,
		},
	},
	"balanced-weave-12": {
		Name:   "Balanced 12-ply weave",
		Length: 12,
		Target: laminate.GaugeTarget{Zero: 4, Plus45: 3, Minus45: 3, Ninety: 2},
		Rules: laminate.RuleSet{
			Balance:    true,
			Contiguity: true, MaxRun: 3,
		},
	},
	"lightweight-12": {
		Name:   "Lightweight 12-position panel",
		Length: 12,
		Target: laminate.GaugeTarget{Zero: 2, Plus45: 3, Minus45: 3, Ninety: 2},
		Rules: laminate.RuleSet{
			Disorientation: true, MaxDelta: 45,
		},
	},
	"thick-spar-24": {
		Name:   "Thick 24-ply spar cap",
		Length: 24,
		Target: laminate.GaugeTarget{Zero: 6, Plus45: 6, Minus45: 6, Ninety: 6},
		Rules: laminate.RuleSet{
			Symmetry:      true,
			Contiguity:    true, MaxRun: 4,
			MinPercentage: true, MinFraction: 0.2,
		},
	},
}

// refuse to seed a statement the generator would reject
func init() {
	for id, summary := range presetLayups {
		if _, err := laminate.New(summary); err != nil {
			panic(fmt.Errorf("Can't happen! Preset layup %q is invalid: %v", id, err))
		}
	}
}

// Create and insert the preset layups
func insertPresets(tx *pgx.Tx) error {
	// get the timestamp of this load
	now := time.Now()

	for id, summary := range presetLayups {
		// idempotency: skip presets that are already there
		var count int64
		row := tx.QueryRow("SELECT COUNT(*) FROM layups WHERE layupId = $1", id)
		if err := row.Scan(&count); err != nil {
			return fmt.Errorf("Database error looking for layup %q: %v", id, err)
		}
		if count > 0 {
			continue
		}
		bytes, err := json.Marshal(summary)
		if err != nil {
			return fmt.Errorf("Couldn't marshal preset layup %q: %v", id, err)
		}
		_, err = tx.Exec(
			"INSERT INTO layups (layupId, name, summary, created) "+
				"VALUES ($1, $2, $3, $4)",
			id, summary.Name, string(bytes), now)
		if err != nil {
			return fmt.Errorf("Database error saving preset layup %q: %v", id, err)
		}
	}
	return nil
}

// Delete the preset layups
func deletePresets(tx *pgx.Tx) error {
	for id := range presetLayups {
		_, err := tx.Exec("DELETE from layups where layupId = $1", id)
		if err != nil {
			return fmt.Errorf("Database error deleting preset layup %q: %v", id, err)
		}
	}
	return nil
}
