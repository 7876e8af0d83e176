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
	"fmt"
	"time"

	"github.com/garyburd/redigo/redis"
	"github.com/jackc/pgx"

	"github.com/ancientHacker/lamina.go/laminate"
)

/*

layup presets

*/

// the layup offered to sessions that don't name one
const defaultLayupID = "quasi-isotropic-8"

// lookupLayupSummary finds the problem statement for a layup ID,
// checking the preset store.  Returns nil when the ID is unknown.
// Callers get a copy, so session edits never bleed into the
// stored preset.
func lookupLayupSummary(lid string) *laminate.Summary {
	le, ok := loadLayupEntry(lid)
	if !ok {
		return nil
	}
	return le.makeSummary()
}

// A LayupInfo is the exported form of a stored layup preset.
type LayupInfo struct {
	LayupId string            // unique ID for this layup
	Name    string            // user-facing name
	Summary *laminate.Summary // the problem statement
	Created time.Time         // time when the preset was stored
}

// ListLayups returns the stored layup presets.
func ListLayups() []*LayupInfo {
	var infos []*LayupInfo
	body := func(tx *pgx.Tx) error {
		rows, err := tx.Query("SELECT layupId, name, summary, created FROM layups")
		if err != nil {
			return fmt.Errorf("Database error listing layups: %v", err)
		}
		defer rows.Close()
		for rows.Next() {
			le := &layupEntry{}
			var created time.Time
			if err := rows.Scan(&le.LayupId, &le.Name, &le.Summary, &created); err != nil {
				return fmt.Errorf("Database error reading layup row: %v", err)
			}
			infos = append(infos, &LayupInfo{
				LayupId: le.LayupId,
				Name:    le.Name,
				Summary: le.makeSummary(),
				Created: created,
			})
		}
		return rows.Err()
	}
	pgExecute(body)
	return infos
}

// SaveLayup stores a named preset for later sessions.  The ID is
// the summary's shape hash, so saving the same problem twice is
// detected rather than duplicated.
func SaveLayup(name string, summary *laminate.Summary) (string, error) {
	if _, err := laminate.New(summary); err != nil {
		return "", err
	}
	bytes, err := json.Marshal(summary)
	if err != nil {
		panic(fmt.Errorf("Failed to marshal layup %q: %v", name, err))
	}
	le := &layupEntry{LayupId: summary.Hash(), Name: name, Summary: string(bytes)}
	le.databaseInsert()
	le.cacheInsert()
	return le.LayupId, nil
}

// sorting of info sequences by layup name
type ByName []*LayupInfo

func (li ByName) Len() int           { return len(li) }
func (li ByName) Swap(i, j int)      { li[i], li[j] = li[j], li[i] }
func (li ByName) Less(i, j int) bool { return li[i].Name < li[j].Name }

// sorting of info sequences by storage time, newest first
type ByLatest []*LayupInfo

func (li ByLatest) Len() int           { return len(li) }
func (li ByLatest) Swap(i, j int)      { li[i], li[j] = li[j], li[i] }
func (li ByLatest) Less(i, j int) bool { return li[i].Created.After(li[j].Created) }

/*

layup entries

*/

// A layupEntry represents the stored form of a layup preset.  It
// is JSON serializable so it can go into the cache as well as the
// database; the problem statement itself travels as a JSON
// string, so the schema never chases the Summary shape.
type layupEntry struct {
	LayupId string // the summary's shape hash, or a well-known name
	Name    string
	Summary string // JSON-encoded laminate.Summary
}

// loadLayupEntry first checks the cache, then the database, to
// find the layup's entry.  If it loads from the database, it
// caches the result.
func loadLayupEntry(id string) (*layupEntry, bool) {
	le := &layupEntry{LayupId: id}
	if le.cacheLoad() {
		return le, true
	}
	// cache miss, load from database and save to cache
	if !le.databaseLoad() {
		return nil, false
	}
	le.cacheInsert()
	return le, true
}

// makeSummary: make the problem statement stored in a layup entry
func (le *layupEntry) makeSummary() *laminate.Summary {
	var summary *laminate.Summary
	if err := json.Unmarshal([]byte(le.Summary), &summary); err != nil {
		panic(fmt.Errorf("Failed to unmarshal layup %q: %v", le.LayupId, err))
	}
	if summary.Name == "" {
		summary.Name = le.Name
	}
	return summary
}

// key: compute the cache key for a layupEntry.
func (le *layupEntry) key() string {
	return rdEnv + ":LID:" + le.LayupId
}

// cacheLoad: load an already cached layup entry.  Returns whether
// the entry was found in the cache.
func (le *layupEntry) cacheLoad() bool {
	var bytes []byte
	body := func(tx redis.Conn) (err error) {
		bytes, err = redis.Bytes(tx.Do("GET", le.key()))
		if err == redis.ErrNil {
			return nil
		}
		if err != nil {
			err = fmt.Errorf("Cache failure loading layupEntry %q: %v", le.LayupId, err)
		}
		return
	}
	rdExecute(body)
	if len(bytes) == 0 {
		return false
	}
	var sle *layupEntry
	err := json.Unmarshal(bytes, &sle)
	if err != nil {
		panic(fmt.Errorf("Failed to unmarshal layupEntry %q: %v", le.LayupId, err))
	}
	if sle.LayupId != le.LayupId {
		panic(fmt.Errorf("Cached layupEntry (id: %q) found for layup %q!",
			sle.LayupId, le.LayupId))
	}
	*le = *sle
	return true
}

// databaseLoad: load a layup entry from the database.  Returns
// whether there is a saved entry with the given id.
func (le *layupEntry) databaseLoad() (found bool) {
	body := func(tx *pgx.Tx) error {
		row := tx.QueryRow(
			"SELECT name, summary FROM layups WHERE layupId = $1", le.LayupId)
		err := row.Scan(&le.Name, &le.Summary)
		if err == pgx.ErrNoRows {
			return nil
		}
		if err != nil {
			return fmt.Errorf("Failure looking up layup %q: %v", le.LayupId, err)
		}
		found = true
		return nil
	}
	pgExecute(body)
	return
}

// cacheInsert: insert a layup entry into the cache. Replaces any
// existing entry with the same id.
func (le *layupEntry) cacheInsert() {
	bytes, e := json.Marshal(le)
	if e != nil {
		panic(fmt.Errorf("Failed to marshal layupEntry %q: %v", le.LayupId, e))
	}
	body := func(tx redis.Conn) (err error) {
		_, err = tx.Do("SET", le.key(), bytes)
		if err != nil {
			err = fmt.Errorf("Cache failure saving layup entry %q: %v", le.LayupId, err)
		}
		return
	}
	rdExecute(body)
}

// databaseInsert: insert a layup entry into the database.  An
// entry with the same id is left untouched.
func (le *layupEntry) databaseInsert() {
	body := func(tx *pgx.Tx) (err error) {
		_, err = tx.Exec(
			"INSERT INTO layups (layupId, name, summary, created) "+
				"VALUES ($1, $2, $3, $4) ON CONFLICT (layupId) DO NOTHING",
			le.LayupId, le.Name, le.Summary, time.Now())
		if err != nil {
			err = fmt.Errorf("Database error saving layup entry %q: %v", le.LayupId, err)
		}
		return
	}
	pgExecute(body)
}

/*

stored solutions

*/

// A solutionEntry represents the stored form of a generation
// result, keyed by the shape hash of the problem statement that
// produced it.  Only settled outcomes are stored: a solved
// sequence stays valid no matter what knobs produced it, and an
// exhausted tree stays infeasible.  Timeouts are never stored.
type solutionEntry struct {
	Signature string // shape hash of the problem statement
	Summary   string // JSON-encoded laminate.Summary
	Result    string // JSON-encoded laminate.Result
}

// LookupSolution finds a stored result for a problem statement.
// It first checks the cache, then the database (caching on a
// database hit).
func LookupSolution(summary *laminate.Summary) (*laminate.Result, bool) {
	se := &solutionEntry{Signature: summary.Hash()}
	if !se.cacheLoad() && !se.databaseLoad() {
		return nil, false
	}
	var result *laminate.Result
	if err := json.Unmarshal([]byte(se.Result), &result); err != nil {
		panic(fmt.Errorf("Failed to unmarshal stored solution %q: %v", se.Signature, err))
	}
	return result, true
}

// SaveSolution stores a settled result for a problem statement.
// Timeout results are dropped: a bigger budget might settle them.
func SaveSolution(summary *laminate.Summary, result *laminate.Result) {
	if result.Outcome == laminate.Timeout {
		return
	}
	sumBytes, err := json.Marshal(summary)
	if err != nil {
		panic(fmt.Errorf("Failed to marshal summary for solution store: %v", err))
	}
	resBytes, err := json.Marshal(result)
	if err != nil {
		panic(fmt.Errorf("Failed to marshal result for solution store: %v", err))
	}
	se := &solutionEntry{
		Signature: summary.Hash(),
		Summary:   string(sumBytes),
		Result:    string(resBytes),
	}
	se.databaseInsert()
	se.cacheInsert()
}

// key: compute the cache key for a solutionEntry.
func (se *solutionEntry) key() string {
	return rdEnv + ":SIG:" + se.Signature
}

// cacheLoad: load an already cached solution entry.
func (se *solutionEntry) cacheLoad() bool {
	var bytes []byte
	body := func(tx redis.Conn) (err error) {
		bytes, err = redis.Bytes(tx.Do("GET", se.key()))
		if err == redis.ErrNil {
			return nil
		}
		if err != nil {
			err = fmt.Errorf("Cache failure loading solution %q: %v", se.Signature, err)
		}
		return
	}
	rdExecute(body)
	if len(bytes) == 0 {
		return false
	}
	var sse *solutionEntry
	if err := json.Unmarshal(bytes, &sse); err != nil {
		panic(fmt.Errorf("Failed to unmarshal solutionEntry %q: %v", se.Signature, err))
	}
	*se = *sse
	return true
}

// databaseLoad: load a solution entry from the database, caching
// it on a hit.
func (se *solutionEntry) databaseLoad() (found bool) {
	body := func(tx *pgx.Tx) error {
		row := tx.QueryRow(
			"SELECT summary, result FROM solutions WHERE signature = $1", se.Signature)
		err := row.Scan(&se.Summary, &se.Result)
		if err == pgx.ErrNoRows {
			return nil
		}
		if err != nil {
			return fmt.Errorf("Failure looking up solution %q: %v", se.Signature, err)
		}
		found = true
		return nil
	}
	pgExecute(body)
	if found {
		se.cacheInsert()
	}
	return
}

// cacheInsert: insert a solution entry into the cache.
func (se *solutionEntry) cacheInsert() {
	bytes, e := json.Marshal(se)
	if e != nil {
		panic(fmt.Errorf("Failed to marshal solutionEntry %q: %v", se.Signature, e))
	}
	body := func(tx redis.Conn) (err error) {
		_, err = tx.Do("SET", se.key(), bytes)
		if err != nil {
			err = fmt.Errorf("Cache failure saving solution entry %q: %v", se.Signature, err)
		}
		return
	}
	rdExecute(body)
}

// databaseInsert: insert a solution entry into the database.  A
// prior entry for the same signature is left untouched.
func (se *solutionEntry) databaseInsert() {
	body := func(tx *pgx.Tx) (err error) {
		_, err = tx.Exec(
			"INSERT INTO solutions (signature, summary, result, created) "+
				"VALUES ($1, $2, $3, $4) ON CONFLICT (signature) DO NOTHING",
			se.Signature, se.Summary, se.Result, time.Now())
		if err != nil {
			err = fmt.Errorf("Database error saving solution entry %q: %v", se.Signature, err)
		}
		return
	}
	pgExecute(body)
}
