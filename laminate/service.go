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
	"fmt"
	"net/http"
)

/*

Laminate creation

*/

// NewHandler is a POST handler that reads a JSON-encoded Summary
// from the request body and calls New on it.  The validated
// Summary (with search knobs normalized) is sent as a 200
// response, and the new Laminate is returned to the golang
// caller.  If New returns an error, the error is sent as a 400
// response and also returned to the caller.
//
// If we can't decode the posted Summary, we send a 400 response
// and return the error to the caller.
//
// If we can't encode the response to the client (which should
// never happen), then the client gets an error response and the
// golang caller gets both the laminate and the encoding Error
// (as a signal that the client didn't get the correct response).
func NewHandler(w http.ResponseWriter, r *http.Request) (*Laminate, error) {
	dec := json.NewDecoder(r.Body)
	var summary Summary
	e := dec.Decode(&summary)
	if e != nil {
		return nil, writeError(requestDecodingError, ErrorData{e.Error()}, w, r)
	}
	lam, e := New(&summary)
	if e != nil {
		err, ok := e.(Error)
		if !ok {
			return nil, writeError(errorFormatError, ErrorData{"NewHandler", e.Error()}, w, r)
		}
		err.Message = err.Error()
		return nil, writeJSON(err, http.StatusBadRequest, w, r)
	}
	return lam, lam.SummaryHandler(w, r)
}

/*

Laminate operations

*/

// SummaryHandler responds with the laminate's problem statement.
// If we can't encode the response to the client successfully, we
// give both the client and the golang caller an Error response.
func (lam *Laminate) SummaryHandler(w http.ResponseWriter, r *http.Request) error {
	if lam == nil {
		return writeError(noLaminateError, ErrorData{r.URL.Path, "No laminate"}, w, r)
	}
	return writeJSON(lam.Summary(), http.StatusOK, w, r)
}

// SolveHandler runs the configured search and responds with the
// Result.  The Result is also returned to the golang caller so
// servers can persist it.  Invariant violations inside the
// search panic with an Error; those are reported as 500s rather
// than crashing the server.
func (lam *Laminate) SolveHandler(w http.ResponseWriter, r *http.Request) (result *Result, err error) {
	if lam == nil {
		return nil, writeError(noLaminateError, ErrorData{r.URL.Path, "No laminate"}, w, r)
	}
	defer func() {
		if p := recover(); p != nil {
			err = writeError(searchPanicError, ErrorData{"SolveHandler", fmt.Sprint(p)}, w, r)
		}
	}()
	res := lam.Solve()
	return &res, writeJSON(res, http.StatusOK, w, r)
}

/*

Utilities

*/

type handlerError int

const (
	requestDecodingError handlerError = iota
	responseEncodingError
	noLaminateError
	errorFormatError
	searchPanicError
)

// writeError sends back a server error of the given type, sort
// of like http.Error, but it sends the JSON form of an
// appropriate Error.
func writeError(et handlerError, ed ErrorData,
	w http.ResponseWriter, r *http.Request) error {
	var err Error
	var status int
	switch et {
	case requestDecodingError:
		status = http.StatusBadRequest
		err = Error{
			Scope:     RequestScope,
			Structure: AttributeStructure,
			Attribute: DecodeAttribute,
			Condition: GeneralCondition,
			Values:    ed,
		}
	case responseEncodingError:
		status = http.StatusInternalServerError
		err = Error{
			Scope:     InternalScope,
			Structure: AttributeStructure,
			Attribute: EncodeAttribute,
			Condition: GeneralCondition,
			Values:    ed,
		}
	case noLaminateError:
		status = http.StatusNotFound
		err = Error{
			Scope:     RequestScope,
			Structure: AttributeValueStructure,
			Attribute: URLAttribute,
			Condition: GeneralCondition,
			Values:    ed,
		}
	case errorFormatError, searchPanicError:
		status = http.StatusInternalServerError
		err = Error{
			Scope:     InternalScope,
			Structure: AttributeStructure,
			Attribute: LocationAttribute,
			Condition: GeneralCondition,
			Values:    ed,
		}
	default:
		status = http.StatusInternalServerError
		err = Error{
			Scope:     InternalScope,
			Structure: AttributeStructure,
			Attribute: LocationAttribute,
			Condition: GeneralCondition,
			Values: ErrorData{
				"writeError",
				fmt.Sprintf("Unknown handler error type (%v)", et),
			},
		}
	}
	err.Message = err.Error()
	return writeJSON(err, status, w, r)
}

// writeJSON is called by handlers to encode and send the client
// response.  It returns an appropriate error status for the
// handler to return to its caller, as follows:
//
// 1. If writeJSON encounters an encoding error sending the
// response, it will create an Error object describing the
// failure, encode that Error as a 500-series response to the
// client, and return that Error to the handler.
//
// 2. If no encoding error occurs, but the handler is sending an
// Error object as the response to the client, writeJSON will
// return that same Error to the handler.
//
// 3. If no encoding error occurs, and the handler is sending a
// non-Error object as the response to the client, writeJSON will
// return nil to the handler.
func writeJSON(obj interface{}, status int, w http.ResponseWriter, r *http.Request) error {
	err, isErr := obj.(Error)
	bytes, e := json.Marshal(obj)
	if e != nil {
		if isErr && err.Scope == InternalScope && err.Attribute == EncodeAttribute {
			// We just failed to encode an Encoding error.  This
			// should never happen!!  If it did, it almost
			// certainly means that the JSON encoding system is
			// dead, so pseudo-encode the error by hand by
			// returning the Error's summary as a quoted string.
			status = http.StatusInternalServerError // probably was already!
			bytes = []byte(fmt.Sprintf("%q", err.Error()))
		} else {
			// generate, send, and return an encoding error
			return writeError(responseEncodingError, ErrorData{e.Error()}, w, r)
		}
	}
	hs := w.Header()
	hs.Add("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(bytes)
	if isErr {
		return err
	}
	return nil
}
