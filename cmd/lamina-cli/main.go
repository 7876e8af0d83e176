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

// Command-line client for the lamina layup generator
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ancientHacker/lamina.go/laminate"
	"github.com/ancientHacker/lamina.go/storage"
)

func main() {
	// establish storage connections
	cacheId, databaseId, err := storage.Connect()
	if err != nil {
		log.Printf("Storage connection failure: %v", err)
		shutdown(startupFailureShutdown)
	}
	defer storage.Close()
	log.Printf("Connected to cache at %q and database at %q.", cacheId, databaseId)

	// catch signals
	shutdownOnSignal()

	// serve
	if err := listener(os.Stdout, os.Stdin); err != nil {
		log.Printf("CLI failure: %v", err)
		shutdown(listenerFailureShutdown)
	}
}

/*

CLI listener

*/

type request struct {
	inline  string
	command string
	args    []string
}

// listener reads lines and dispatches them to handlers
func listener(out *os.File, in *os.File) error {
	// if we are on a terminal, we do prompting
	// (see http://stackoverflow.com/questions/22744443/ for source)
	prompt := false
	if stat, _ := out.Stat(); (stat.Mode() & os.ModeCharDevice) != 0 {
		prompt = true
	}

	input := make([]byte, 4096)
	for {
		if prompt {
			fmt.Fprintf(out, "lamina> ")
		}
		n, err := in.Read(input)
		switch err {
		case nil:
			r := &request{inline: strings.Trim(string(input[:n]), " \t\r\n")}
			args := strings.Split(r.inline, " ")
			r.command = strings.ToLower(args[0])
			switch r.command {
			case "":
				continue
			case "quit":
				fallthrough
			case "exit":
				return nil
			}
			for _, arg := range args[1:] {
				if len(arg) > 0 {
					r.args = append(r.args, strings.ToLower(arg))
				}
			}
			dispatchCommand(out, r)
		case io.EOF:
			// ignore any input before the EOF
			if prompt {
				fmt.Fprintf(out, " (EOF)\n")
			}
			return nil
		default:
			if prompt {
				fmt.Fprintf(out, " (read error)\n")
			}
			return err
		}
	}
}

// command dispatching
type commandInfo struct {
	command     string
	argInfo     string
	description string
	handler     func(*storage.Session, *os.File, *request)
}

// the command dispatch info is sorted for easy usage printing,
// and then hashed for rapid dispatching
var (
	dispatchInfo  []commandInfo
	dispatchTable map[string]*commandInfo
)

func init() {
	dispatchInfo = []commandInfo{
		{"back", "", "undo the last statement change", backHandler},
		{"budget", "nodes", "set the search node budget", budgetHandler},
		{"layups", "", "list the stored layup presets", layupsHandler},
		{"length", "plies", "set the sequence length", lengthHandler},
		{"reset", "[layupID]", "restart this or another layup", stateHandler},
		{"rule", "name setting", "enable, disable, or tune a rule", ruleHandler},
		{"save", "name", "store the current statement as a preset", saveHandler},
		{"seed", "value", "set the random seed", seedHandler},
		{"session", "[sessionID]", "get/set session info", summaryHandler},
		{"solve", "", "generate a stacking sequence", solveHandler},
		{"state", "", "show the current statement and result", stateHandler},
		{"summary", "", "show current session summary", summaryHandler},
		{"target", "z p m n", "set the gauge target counts", targetHandler},
		{"workers", "count", "set the concurrent subtree explorers", workersHandler},
	}
	dispatchTable = make(map[string]*commandInfo, len(dispatchInfo))
	for i := range dispatchInfo {
		dispatchTable[dispatchInfo[i].command] = &dispatchInfo[i]
	}
}

func dispatchCommand(w *os.File, r *request) {
	defer func() {
		if err := recover(); err != nil {
			errorHandler(err, w, r)
		}
	}()

	session := sessionSelect(w, r)
	ci := dispatchTable[r.command]
	if ci == nil {
		usageHandler(fmt.Sprintf("%q is not a known command", r.command), w, r)
	} else {
		ci.handler(session, w, r)
	}
}

/*

request handlers

*/

func backHandler(session *storage.Session, w *os.File, r *request) {
	session.RemoveAttempt()
	stateHandler(session, w, r)
}

func targetHandler(session *storage.Session, w *os.File, r *request) {
	if len(r.args) != 4 {
		usageHandler(fmt.Sprintf("%s requires four ply counts (0 +45 -45 90)", r.command), w, r)
		return
	}
	var counts [4]int
	for i, arg := range r.args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			usageHandler(fmt.Sprintf("%s count (%s) must be a number", r.command, arg), w, r)
			return
		}
		counts[i] = n
	}
	summary := *session.Summary
	summary.Target = laminate.GaugeTarget{
		Zero: counts[0], Plus45: counts[1], Minus45: counts[2], Ninety: counts[3]}
	applyStatement(session, &summary, w, r)
}

func lengthHandler(session *storage.Session, w *os.File, r *request) {
	n, ok := oneNumber(w, r)
	if !ok {
		return
	}
	summary := *session.Summary
	summary.Length = n
	applyStatement(session, &summary, w, r)
}

func seedHandler(session *storage.Session, w *os.File, r *request) {
	n, ok := oneNumber(w, r)
	if !ok {
		return
	}
	summary := *session.Summary
	summary.Seed = int64(n)
	applyStatement(session, &summary, w, r)
}

func budgetHandler(session *storage.Session, w *os.File, r *request) {
	n, ok := oneNumber(w, r)
	if !ok {
		return
	}
	summary := *session.Summary
	summary.NodeBudget = int64(n)
	applyStatement(session, &summary, w, r)
}

func workersHandler(session *storage.Session, w *os.File, r *request) {
	n, ok := oneNumber(w, r)
	if !ok {
		return
	}
	summary := *session.Summary
	summary.Workers = n
	applyStatement(session, &summary, w, r)
}

func ruleHandler(session *storage.Session, w *os.File, r *request) {
	if len(r.args) != 2 {
		usageHandler(fmt.Sprintf("%s requires a rule name and a setting", r.command), w, r)
		return
	}
	name, setting := r.args[0], r.args[1]
	summary := *session.Summary

	// the on/off rules
	var flag *bool
	switch name {
	case "symmetry":
		flag = &summary.Rules.Symmetry
	case "balance":
		flag = &summary.Rules.Balance
	case "damage":
		flag = &summary.Rules.DamageTolerance
	case "plusminus45":
		flag = &summary.Rules.PlusMinus45
	}
	if flag != nil {
		switch setting {
		case "on":
			*flag = true
		case "off":
			*flag = false
		default:
			usageHandler(fmt.Sprintf("setting for %s must be 'on' or 'off'", name), w, r)
			return
		}
		applyStatement(session, &summary, w, r)
		return
	}

	// the parameterized rules, where the setting is 'off' or the parameter
	switch name {
	case "contiguity":
		if setting == "off" {
			summary.Rules.Contiguity = false
		} else if n, err := strconv.Atoi(setting); err == nil {
			summary.Rules.Contiguity, summary.Rules.MaxRun = true, n
		} else {
			usageHandler(fmt.Sprintf("setting for %s must be 'off' or a run limit", name), w, r)
			return
		}
	case "disorientation":
		if setting == "off" {
			summary.Rules.Disorientation = false
		} else if n, err := strconv.Atoi(setting); err == nil {
			summary.Rules.Disorientation, summary.Rules.MaxDelta = true, n
		} else {
			usageHandler(fmt.Sprintf("setting for %s must be 'off' or a degree limit", name), w, r)
			return
		}
	case "minpct":
		if setting == "off" {
			summary.Rules.MinPercentage = false
		} else if f, err := strconv.ParseFloat(setting, 64); err == nil {
			summary.Rules.MinPercentage, summary.Rules.MinFraction = true, f
		} else {
			usageHandler(fmt.Sprintf("setting for %s must be 'off' or a fraction", name), w, r)
			return
		}
	default:
		usageHandler(fmt.Sprintf("%q is not a known rule", name), w, r)
		return
	}
	applyStatement(session, &summary, w, r)
}

func solveHandler(session *storage.Session, w *os.File, r *request) {
	if result, ok := storage.LookupSolution(session.Summary); ok {
		fmt.Fprintf(w, "Found a stored result:\n")
		session.RecordResult(result)
		printResult(result, w)
		return
	}
	lam, e := laminate.New(session.Summary)
	if e != nil {
		panic(e)
	}
	result := lam.Solve()
	storage.SaveSolution(session.Summary, &result)
	session.RecordResult(&result)
	printResult(&result, w)
}

func printResult(result *laminate.Result, w *os.File) {
	switch result.Outcome {
	case laminate.Solved:
		fmt.Fprintf(w, "Solved: %s\n", laminate.SequenceString(result.Sequence))
	case laminate.Infeasible:
		fmt.Fprintf(w, "Infeasible: no sequence satisfies the rules")
		if result.BestCost > 0 {
			fmt.Fprintf(w, " (best gauge deviation %d)", result.BestCost)
		}
		fmt.Fprintf(w, "\n")
	case laminate.Timeout:
		fmt.Fprintf(w, "Timeout: node budget exhausted before the tree settled\n")
	}
	fmt.Fprintf(w, "  %d nodes expanded, %d greedy attempts\n", result.Nodes, result.Attempts)
}

func stateHandler(session *storage.Session, w *os.File, r *request) {
	s := session.Summary
	fmt.Fprintf(w, "Length %d plies; gauge target 0:%d +45:%d -45:%d 90:%d; empty positions: %d\n",
		s.Length, s.Target.Zero, s.Target.Plus45, s.Target.Minus45, s.Target.Ninety,
		s.Length-s.Target.Total())
	fmt.Fprintf(w, "Rules: %s\n", ruleString(s.Rules))
	fmt.Fprintf(w, "Knobs: seed %d, attempts %d, node budget %d, workers %d\n",
		s.Seed, s.Attempts, s.NodeBudget, s.Workers)
	if session.Result != nil {
		printResult(session.Result, w)
	}
}

// ruleString formats the enabled rules of a statement
func ruleString(rules laminate.RuleSet) string {
	var parts []string
	if rules.Symmetry {
		parts = append(parts, "symmetry")
	}
	if rules.Balance {
		parts = append(parts, "balance")
	}
	if rules.MinPercentage {
		parts = append(parts, fmt.Sprintf("minpct %.2f", rules.MinFraction))
	}
	if rules.DamageTolerance {
		parts = append(parts, "damage")
	}
	if rules.Contiguity {
		parts = append(parts, fmt.Sprintf("contiguity %d", rules.MaxRun))
	}
	if rules.PlusMinus45 {
		parts = append(parts, "plusminus45")
	}
	if rules.Disorientation {
		parts = append(parts, fmt.Sprintf("disorientation %d", rules.MaxDelta))
	}
	if parts == nil {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func summaryHandler(session *storage.Session, w *os.File, r *request) {
	fmt.Fprintf(w, "Session %q designing layup %q on attempt %d\n",
		session.SID, session.LID, session.Attempt)
	s := session.Summary
	fmt.Fprintf(w, "Name: %q; Length: %d; Physical plies: %d; Empty positions: %d\n",
		s.Name, s.Length, s.Target.Total(), s.Length-s.Target.Total())
}

func layupsHandler(session *storage.Session, w *os.File, r *request) {
	infos := storage.ListLayups()
	sort.Sort(storage.ByName(infos))
	for _, info := range infos {
		fmt.Fprintf(w, "%-24s %3d plies\t%s\n",
			info.Name, info.Summary.Length, info.LayupId)
	}
	fmt.Fprintf(w, "%d stored layups.\n", len(infos))
}

func saveHandler(session *storage.Session, w *os.File, r *request) {
	if len(r.args) == 0 {
		usageHandler(fmt.Sprintf("%s requires a preset name", r.command), w, r)
		return
	}
	name := strings.Join(r.args, " ")
	id, e := storage.SaveLayup(name, session.Summary)
	if e != nil {
		fmt.Fprintf(w, "Save failed: %v\n", e)
		return
	}
	fmt.Fprintf(w, "Saved layup %q with ID %s\n", name, id)
}

// applyStatement validates a changed statement and, if it's
// good, makes it the session's current attempt.
func applyStatement(session *storage.Session, summary *laminate.Summary, w *os.File, r *request) {
	if _, e := laminate.New(summary); e != nil {
		fmt.Fprintf(w, "Change rejected: %v\n", e)
		return
	}
	session.AddAttempt(summary)
	fmt.Fprintf(w, "Change accepted:\n")
	stateHandler(session, w, r)
}

// oneNumber reads the single numeric argument of a request
func oneNumber(w *os.File, r *request) (int, bool) {
	if len(r.args) != 1 {
		usageHandler(fmt.Sprintf("%s requires one numeric argument", r.command), w, r)
		return 0, false
	}
	n, err := strconv.Atoi(r.args[0])
	if err != nil {
		usageHandler(fmt.Sprintf("%s argument (%s) must be a number", r.command, r.args[0]), w, r)
		return 0, false
	}
	return n, true
}

func usageHandler(msg string, w *os.File, r *request) {
	fmt.Fprintf(w, "Error: %s\nUsage:\n", msg)
	for _, ci := range dispatchInfo {
		fmt.Fprintf(w, "    %8s %-11s\t%s\n", ci.command, ci.argInfo, ci.description)
	}
	fmt.Fprintf(w, "  and 'quit' or EOF to exit.\n")
}

func errorHandler(err interface{}, w *os.File, r *request) {
	fmt.Fprintf(w, "Panic executing %q: %v\n", r.inline, err)
	log.Printf("Server error executing %q: %v\n", r.inline, err)
}

/*

session handling

*/

// cookie for the command line
var defaultCookie string

var (
	startTime = time.Now() // instance start-up time
)

// getCookie gets the session cookie, or sets a new one.  It
// returns the session ID associated with the cookie.
func getCookie(w *os.File, r *request) string {
	// look to see if the user is specifying a cookie
	if r.command == "session" && len(r.args) > 0 {
		defaultCookie = r.args[0]
	}

	// look for an existing session cookie
	if len(defaultCookie) != 0 {
		return defaultCookie
	}

	// no session cookie: start a new session with a new ID
	// poor man's UUID for the session in local mode: time since startup.
	sid := strconv.FormatInt(int64(time.Now().Sub(startTime)), 36)
	log.Printf("No session cookie found, created new session ID %q", sid)
	defaultCookie = sid
	return sid
}

// sessionSelect: find or create the session for the current connection.
func sessionSelect(w *os.File, r *request) *storage.Session {
	id := getCookie(w, r)
	// check to see if this is a force reset of the session
	forceReset, resetID := r.command == "reset", ""
	if forceReset && len(r.args) > 0 {
		resetID = r.args[0]
	}
	// create an in-memory session with this cookie
	session := &storage.Session{SID: id, Created: time.Now().Format(time.RFC3339)}
	// load session from storage if possible, otherwise just initialize it
	if session.Lookup() {
		log.Printf("Found session %v, layup %q, on attempt %d.",
			session.SID, session.LID, session.Attempt)
		if forceReset {
			session.StartLayup(resetID)
		} else {
			session.LoadAttempt()
		}
	} else if forceReset {
		session.StartLayup(resetID)
	} else {
		session.StartLayup("default")
	}
	return session
}

/*

coordinate shutdown across goroutines and top-level server

*/

type shutdownCause int

const (
	unknownShutdown = iota
	runtimeFailureShutdown
	startupFailureShutdown
	storageFailureShutdown
	caughtSignalShutdown
	listenerFailureShutdown
)

// for testing, allow alternate forms of shutdown
var alternateShutdown func(reason shutdownCause)

// shutdown: process exit with logging.
func shutdown(reason shutdownCause) {
	// release the storage connections before exit
	storage.Close()

	// for testing: run alternateShutdown instead, if defined
	if alternateShutdown != nil {
		alternateShutdown(reason)
		panic(reason) // shouldn't get here
	}

	// log reason for shutdown and exit
	switch reason {
	case unknownShutdown:
		log.Fatal("Exiting: normal shutdown.")
	case startupFailureShutdown:
		log.Fatal("Exiting: initialization failure.")
	case runtimeFailureShutdown:
		log.Fatal("Exiting: runtime failure.")
	case caughtSignalShutdown:
		log.Fatal("Exiting: caught signal.")
	case listenerFailureShutdown:
		log.Fatal("Exiting: command listener failed.")
	case storageFailureShutdown:
		log.Fatal("Exiting: storage failure.")
	default:
		log.Fatal("Exiting: unknown cause.")
	}
}

// shutdownOnSignal: catch signals and exit.
func shutdownOnSignal() {
	// based on example in os.signal godoc
	c := make(chan os.Signal, 1)
	signal.Notify(c) // die on all signals

	go func() {
		s := <-c
		log.Printf("Received OS-level signal: %v", s)
		shutdown(caughtSignalShutdown)
	}()
}
