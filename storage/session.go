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
	"log"
	"time"

	"github.com/garyburd/redigo/redis"

	"github.com/ancientHacker/lamina.go/laminate"
)

// A Session tracks the user's current attempt at a layup design.
// Behind the scenes, we persist all the prior attempts the user
// has made on this layup, so he can go back (undo) to an earlier
// problem statement after tightening a rule too far.
type Session struct {
	// these elements are persisted as part of the session
	SID     string // session ID
	LID     string // ID of the layup being designed
	Attempt int    // current attempt
	Created string // RFC3339 time when the session was created
	Saved   string // RFC3339 time when the session was last saved

	// these elements are persisted in the attempts, serialized as JSON
	Summary *laminate.Summary `redis:"-"` // problem statement of the current attempt
	Result  *laminate.Result  `redis:"-"` // generation result, if the attempt was run
}

// an attemptRecord is the serialized form of one attempt
type attemptRecord struct {
	Summary *laminate.Summary `json:"summary"`
	Result  *laminate.Result  `json:"result,omitempty"`
}

/*

session manipulation

*/

// StartLayup: set the layup ID for the current session and clear
// any existing attempts on that layup.  If the given layup ID is
// empty, try using the session's current layup ID.  If the given
// layup ID is the special value "default" (or unknown), use the
// default layup ID.
func (session *Session) StartLayup(lid string) {
	// change to the given lid, making sure it's valid
	if lid == "" {
		lid = session.LID
	} else if lid == "default" {
		lid = defaultLayupID
	}
	session.Summary = lookupLayupSummary(lid)
	if session.Summary != nil {
		session.LID = lid
	} else {
		session.LID = defaultLayupID
		session.Summary = lookupLayupSummary(defaultLayupID)
	}
	session.Result = nil

	// make sure the statement is actually solvable-looking
	if _, e := laminate.New(session.Summary); e != nil {
		log.Printf("Failed to validate layup %q: %v", lid, e)
		panic(e)
	}

	// update the cache
	session.Saved = time.Now().Format(time.RFC3339)
	session.Attempt = 1
	bytes := session.marshalAttempt()
	body := func(tx redis.Conn) (err error) {
		tx.Send("HMSET", redis.Args{}.Add(session.key()).AddFlat(session)...)
		tx.Send("DEL", session.attemptsKey())
		_, err = tx.Do("RPUSH", session.attemptsKey(), bytes)
		if err != nil {
			log.Printf("Redis error on save of session %q after reset: %v", session.SID, err)
		}
		return
	}
	rdExecute(body)
	log.Printf("Reset session %v to start layup %q.", session.SID, session.LID)
}

// AddAttempt: add a new current attempt with the given problem
// statement.  This is how a rule or gauge change is recorded: the
// prior statement stays on the undo stack.
func (session *Session) AddAttempt(summary *laminate.Summary) {
	if _, e := laminate.New(summary); e != nil {
		log.Printf("Rejected invalid attempt on %s:%q: %v", session.SID, session.LID, e)
		panic(e)
	}
	session.Summary = summary
	session.Result = nil

	// update the cache
	session.Saved = time.Now().Format(time.RFC3339)
	session.Attempt++
	bytes := session.marshalAttempt()
	body := func(tx redis.Conn) (err error) {
		tx.Send("HMSET", redis.Args{}.Add(session.key()).AddFlat(session)...)
		_, err = tx.Do("RPUSH", session.attemptsKey(), bytes)
		if err != nil {
			log.Printf("Redis error on save of %s:%q attempt %d: %v",
				session.SID, session.LID, session.Attempt, err)
		}
		return
	}
	rdExecute(body)
	log.Printf("Added session %v:%v attempt %d.", session.SID, session.LID, session.Attempt)
}

// RecordResult: attach a generation result to the current
// attempt, so a reloaded session shows the sequence without
// re-running the search.
func (session *Session) RecordResult(result *laminate.Result) {
	session.Result = result
	session.Saved = time.Now().Format(time.RFC3339)
	bytes := session.marshalAttempt()
	body := func(tx redis.Conn) (err error) {
		tx.Send("HMSET", redis.Args{}.Add(session.key()).AddFlat(session)...)
		_, err = tx.Do("LSET", session.attemptsKey(), -1, bytes)
		if err != nil {
			log.Printf("Redis error on result save of %s:%q attempt %d: %v",
				session.SID, session.LID, session.Attempt, err)
		}
		return
	}
	rdExecute(body)
	log.Printf("Recorded %v outcome for session %v:%v attempt %d.",
		result.Outcome, session.SID, session.LID, session.Attempt)
}

// RemoveAttempt: remove the last attempt and restore the prior
// attempt's problem statement and result.
func (session *Session) RemoveAttempt() {
	if session.Attempt <= 1 {
		// nothing to do
		return
	}

	// load the prior attempt from the cache
	var bytes []byte
	session.Saved = time.Now().Format(time.RFC3339)
	session.Attempt--
	session.Summary = nil // free the current attempt's statement
	session.Result = nil
	body := func(tx redis.Conn) (err error) {
		tx.Send("HMSET", redis.Args{}.Add(session.key()).AddFlat(session)...)
		tx.Send("LTRIM", session.attemptsKey(), 0, -2)
		bytes, err = redis.Bytes(tx.Do("LINDEX", session.attemptsKey(), -1))
		if err != nil {
			log.Printf("Error on remove to %s:%q attempt %d: %v",
				session.SID, session.LID, session.Attempt, err)
		}
		return
	}
	rdExecute(body)
	session.unmarshalAttempt(bytes)
	log.Printf("Reverted session %v:%v to attempt %d.", session.SID, session.LID, session.Attempt)
}

// Lookup: lookup a session for an ID
func (session *Session) Lookup() (found bool) {
	body := func(tx redis.Conn) error {
		vals, err := redis.Values(tx.Do("HGETALL", session.key()))
		if len(vals) > 0 {
			if err := redis.ScanStruct(vals, session); err != nil {
				log.Printf("Redis error on parse of saved session %q: %v", session.SID, err)
				return err
			}
			found = true
			return nil
		}
		if err != nil {
			log.Printf("Redis error on GET of session %q: %v", session.SID, err)
			return err
		}
		log.Printf("No saved session %q in cache", session.SID)
		return nil
	}
	rdExecute(body)
	return
}

// LoadAttempt: load the current attempt from the saved record
func (session *Session) LoadAttempt() {
	var bytes []byte
	body := func(tx redis.Conn) (err error) {
		bytes, err = redis.Bytes(tx.Do("LINDEX", session.attemptsKey(), -1))
		if err != nil {
			log.Printf("Error on load of %s:%q attempt %d: %v",
				session.SID, session.LID, session.Attempt, err)
		}
		return
	}
	rdExecute(body)
	session.unmarshalAttempt(bytes)
}

/*

serialization of attempt state into and out of the cache

*/

// marshalAttempt - get JSON for the current attempt
func (session *Session) marshalAttempt() []byte {
	bytes, err := json.Marshal(&attemptRecord{Summary: session.Summary, Result: session.Result})
	if err != nil {
		log.Printf("Failed to marshal %s:%q attempt %d (%+v) as JSON: %v",
			session.SID, session.LID, session.Attempt, *session.Summary, err)
		panic(err)
	}
	return bytes
}

// unmarshalAttempt - restore the attempt from its saved record
func (session *Session) unmarshalAttempt(bytes []byte) {
	var record attemptRecord
	err := json.Unmarshal(bytes, &record)
	if err != nil {
		log.Printf("Failed to unmarshal saved JSON of %s:%q attempt %d: %v",
			session.SID, session.LID, session.Attempt, err)
		panic(err)
	}
	session.Summary = record.Summary
	session.Result = record.Result
	if _, err := laminate.New(session.Summary); err != nil {
		log.Printf("Saved attempt of %s:%q is invalid (%+v): %v",
			session.SID, session.LID, *session.Summary, err)
		panic(err)
	}
}

/*

session key generation

*/

// key - returns the session key
func (session *Session) key() string {
	return rdEnv + ":SID:" + session.SID
}

// attemptsKey - returns the key for the session's attempt array
func (session *Session) attemptsKey() string {
	return session.key() + ":Attempts"
}
