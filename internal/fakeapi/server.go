// Package fakeapi implements an in-process CodeDump.io compatible API for tests.
package fakeapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/tombowditch/codedump/internal/util/randutil"
)

const idLength = 8

// Config describes the accounts and accepted values of a fake API.
type Config struct {
	Key       string
	Secret    string
	Languages []string
	Access    []string
	// DumpURL prefixes the identifiers of created dumps.
	DumpURL string
}

// Request is one call received by the server.
type Request struct {
	Command string
	Form    url.Values
}

type failure struct {
	status int
	body   string
}

// Server holds the state behind the HTTP handlers.
type Server struct {
	cfg   Config
	store Store

	mu       sync.Mutex
	requests []Request
	failures []failure
}

// New creates a server with an empty in-memory store. Zero fields of cfg get
// working defaults.
func New(cfg Config) *Server {
	if cfg.Key == "" {
		cfg.Key = "test-key"
	}
	if cfg.Secret == "" {
		cfg.Secret = "test-secret"
	}
	if cfg.Languages == nil {
		cfg.Languages = []string{"php", "python", "go"}
	}
	if cfg.Access == nil {
		cfg.Access = []string{"public", "private"}
	}
	if cfg.DumpURL == "" {
		cfg.DumpURL = "https://codedump.io/"
	}
	return &Server{cfg: cfg, store: NewMemoryStore()}
}

// Start serves the API on a local httptest server. The client base URL is
// the returned server's URL + "/api".
func (s *Server) Start() *httptest.Server {
	return httptest.NewServer(s.Handler())
}

// Handler returns an HTTP handler with all routes configured.
func (s *Server) Handler() http.Handler {
	r := httprouter.New()
	r.POST("/api/languages/get", s.record(s.getLanguages))
	r.POST("/api/access/get", s.record(s.getAccess))
	r.POST("/api/dumps/get", s.record(s.getDumps))
	r.POST("/api/code/add", s.record(s.addCode))
	return r
}

// Requests returns the calls received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

// Commands returns the command of every call received so far.
func (s *Server) Commands() []string {
	reqs := s.Requests()
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = r.Command
	}
	return out
}

// FailNext makes the next call answer status with body verbatim.
// Calls queue up in order.
func (s *Server) FailNext(status int, body string) {
	s.mu.Lock()
	s.failures = append(s.failures, failure{status: status, body: body})
	s.mu.Unlock()
}

// Dumps returns the dumps stored for key.
func (s *Server) Dumps(key string) []Dump {
	return s.store.ByOwner(key)
}

func (s *Server) record(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if err := r.ParseForm(); err != nil {
			writeEnvelope(w, http.StatusBadRequest, false, nil, "malformed form")
			return
		}
		cmd := strings.TrimPrefix(r.URL.Path, "/api/")

		s.mu.Lock()
		s.requests = append(s.requests, Request{Command: cmd, Form: r.PostForm})
		var forced *failure
		if len(s.failures) > 0 {
			forced = &s.failures[0]
			s.failures = s.failures[1:]
		}
		s.mu.Unlock()

		if forced != nil {
			w.WriteHeader(forced.status)
			w.Write([]byte(forced.body))
			return
		}

		if r.PostForm.Get("token_key") != s.cfg.Key || r.PostForm.Get("token_secret") != s.cfg.Secret {
			writeEnvelope(w, http.StatusUnauthorized, false, nil, "Unauthorized")
			return
		}
		next(w, r, ps)
	}
}

func (s *Server) getLanguages(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeEnvelope(w, http.StatusOK, true, []any{s.cfg.Languages}, "")
}

func (s *Server) getAccess(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeEnvelope(w, http.StatusOK, true, []any{s.cfg.Access}, "")
}

func (s *Server) getDumps(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeEnvelope(w, http.StatusOK, true, []any{s.store.ByOwner(s.cfg.Key)}, "")
}

func (s *Server) addCode(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	form := r.PostForm
	for _, field := range []string{"title", "code", "access", "language"} {
		if form.Get(field) == "" {
			writeEnvelope(w, http.StatusNotAcceptable, false, nil, "Missing parameter: "+field)
			return
		}
	}
	if !slices.Contains(s.cfg.Access, form.Get("access")) || !slices.Contains(s.cfg.Languages, form.Get("language")) {
		writeEnvelope(w, http.StatusProxyAuthRequired, false, nil, "Incorrect parameter value")
		return
	}

	// Generate unique identifier and store atomically
	for tried := 0; tried < 10; tried++ {
		id, err := randutil.RandString(idLength)
		if err != nil {
			slog.Error("generating dump id failed", "error", err)
			writeEnvelope(w, http.StatusInternalServerError, false, nil, "error")
			return
		}
		d := Dump{
			ID:          id,
			Owner:       s.cfg.Key,
			Code:        form.Get("code"),
			URL:         s.cfg.DumpURL + id,
			Title:       form.Get("title"),
			Description: form.Get("description"),
			Language:    form.Get("language"),
			Access:      form.Get("access"),
			Created:     time.Now().UTC().Format(time.RFC3339),
		}
		if s.store.Create(d) {
			slog.Debug("created dump", "id", id, "language", d.Language)
			writeEnvelope(w, http.StatusOK, true, []any{d.URL}, "")
			return
		}
		// Collision, try again
	}

	writeEnvelope(w, http.StatusInternalServerError, false, nil, "could not generate identifier")
}

func writeEnvelope(w http.ResponseWriter, status int, success bool, data []any, message string) {
	if data == nil {
		data = []any{}
	}
	body := map[string]any{"success": success, "data": data}
	if message != "" {
		body["message"] = message
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
