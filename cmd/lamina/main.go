package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ancientHacker/lamina.go/laminate"
	"github.com/ancientHacker/lamina.go/storage"
)

const cookieName = "laminaID"
const cookiePath = "/"

var startTime = time.Now()

// getCookie gets the session cookie, or sets a new one.  It
// returns the session ID associated with the cookie.
//
// Each browser gets a cookie based on the time (to the
// nanosecond) of the first request we received from it, so the
// browser's notion of cookie lifetime controls the extent of the
// session.  Heroku-served instances get both HTTP and HTTPS
// traffic on the same endpoint, and browsers will hand an HTTP
// cookie to the HTTPS endpoint, so the transported protocol (from
// the X-Forwarded-Proto header) is folded into the session ID to
// keep tabs on different source protocols in different sessions.
func getCookie(w http.ResponseWriter, r *http.Request) string {
	proto := "httpx" // absent other indicators, protocol is unknown

	// Heroku-transported protocols are specified in a header
	if herokuProtocol := r.Header.Get("X-Forwarded-Proto"); herokuProtocol != "" {
		proto = herokuProtocol
	}

	// check for an existing cookie whose value matches the protocol
	if sc, e := r.Cookie(cookieName); e == nil {
		if m, e := regexp.MatchString(proto+"-[0-9a-z]{3,}", sc.Value); e == nil && m {
			return sc.Value
		}
	}

	// no session cookie or not a valid session cookie,
	// start a new session with a new cookie
	sid := proto + "-" + strconv.FormatInt(int64(time.Now().Sub(startTime)), 36)
	sc := &http.Cookie{Name: cookieName, Value: sid, Path: cookiePath}
	http.SetCookie(w, sc)
	return sid
}

// Session selection can happen concurrently from simultaneous
// goroutines, but the interlock lives in the storage layer:
// every mutation is written through before the response goes
// out, so the cache is the one source of session truth.
func sessionSelect(w http.ResponseWriter, r *http.Request) *storage.Session {
	sessionID := getCookie(w, r)
	session := &storage.Session{SID: sessionID}
	if session.Lookup() {
		session.LoadAttempt()
		return session
	}
	// no saved session; start a fresh one on the default layup
	session.Created = time.Now().Format(time.RFC3339)
	session.StartLayup("default")
	return session
}

// The session's current statement was validated when it was
// saved, so a failure here means the saved state is corrupt.
func sessionLaminate(session *storage.Session) *laminate.Laminate {
	lam, e := laminate.New(session.Summary)
	if e != nil {
		log.Printf("Saved statement of session %v no longer validates: %v", session.SID, e)
		panic(e)
	}
	return lam
}

func apiHandler(session *storage.Session, w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasPrefix(r.URL.Path, "/api/layups"):
		infos := storage.ListLayups()
		sort.Sort(storage.ByName(infos))
		sendJSON(infos, w)
		log.Printf("Returned %d stored layups.", len(infos))
	case strings.HasPrefix(r.URL.Path, "/api/summary"):
		sessionLaminate(session).SummaryHandler(w, r)
		log.Printf("Returned current problem statement.")
	case strings.HasPrefix(r.URL.Path, "/api/attempt"):
		lam, e := laminate.NewHandler(w, r)
		if e != nil {
			log.Printf("Attempt rejected, returned error, no session change.")
		} else {
			session.AddAttempt(lam.Summary())
			log.Printf("Attempt accepted, returned normalized statement.")
		}
	case strings.HasPrefix(r.URL.Path, "/api/solve"):
		solveHandler(session, w, r)
	case strings.HasPrefix(r.URL.Path, "/api/back"):
		session.RemoveAttempt()
		sessionLaminate(session).SummaryHandler(w, r)
	default:
		http.NotFound(w, r)
	}
}

// solveHandler answers from the solution store when it can;
// otherwise it runs the search and stores the settled result.
func solveHandler(session *storage.Session, w http.ResponseWriter, r *http.Request) {
	if result, ok := storage.LookupSolution(session.Summary); ok {
		session.RecordResult(result)
		sendJSON(result, w)
		log.Printf("Returned stored %v result for session %v.", result.Outcome, session.SID)
		return
	}
	result, e := sessionLaminate(session).SolveHandler(w, r)
	if e != nil {
		log.Printf("Search failed, returned error, no session change.")
		return
	}
	storage.SaveSolution(session.Summary, result)
	session.RecordResult(result)
}

func sendJSON(obj interface{}, w http.ResponseWriter) {
	bytes, e := json.Marshal(obj)
	if e != nil {
		panic(fmt.Errorf("Failed to encode response: %v", e))
	}
	hs := w.Header()
	hs.Add("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(bytes)
}

func main() {
	cacheId, databaseId, err := storage.Connect()
	if err != nil {
		log.Fatal("Storage connection failure: ", err)
	}
	defer storage.Close()
	log.Printf("Connected to cache at %q and database at %q.", cacheId, databaseId)

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		log.Printf("Handling %s %s...", r.Method, r.URL.Path)
		// storage failures panic out of the handlers; report
		// them rather than dropping the connection
		defer func() {
			if p := recover(); p != nil {
				log.Printf("Handler panic on %s: %v", r.URL.Path, p)
				http.Error(w, fmt.Sprintf("Server error: %v", p),
					http.StatusInternalServerError)
			}
		}()
		session := sessionSelect(w, r)
		switch {
		case strings.HasPrefix(r.URL.Path, "/reset/"):
			session.StartLayup(r.URL.Path[len("/reset/"):])
			sessionLaminate(session).SummaryHandler(w, r)
		case strings.HasPrefix(r.URL.Path, "/api/"):
			apiHandler(session, w, r)
		default:
			http.Redirect(w, r, "/api/summary/", http.StatusFound)
		}
	})

	// Heroku environment port sensing
	port := os.Getenv("PORT")
	if port == "" {
		// running locally in dev mode
		port = "localhost:8080"
	} else {
		// running as a true server
		port = ":" + port
	}

	log.Printf("Listening on %s...", port)
	err = http.ListenAndServe(port, nil)
	if err != nil {
		log.Fatal("Listener failure: ", err)
	}
}
