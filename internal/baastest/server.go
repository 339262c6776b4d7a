// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftstore Authors

// Package baastest is an in-memory stand-in for the backend's appdata REST
// surface, for tests that want to exercise the full client stack over real
// HTTP. It implements the collection CRUD routes and the delta-set endpoint
// with the same envelope and status codes the production backend uses.
//
// The query dialect is deliberately reduced: the filter supports top-level
// equality matching only, plus the skip and limit modifiers. Sort and field
// projection are accepted and ignored.
package baastest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const wireTimeFormat = "2006-01-02T15:04:05.000Z"

// Server is the fake backend. All state is in memory and guarded by one
// mutex; construct a fresh Server per test.
type Server struct {
	appKey    string
	appSecret string
	router    *chi.Mux

	mu          sync.Mutex
	collections map[string]map[string]map[string]any
	updated     map[string]map[string]time.Time
	deleted     map[string]map[string]time.Time
	seq         int
}

// NewServer builds a fake backend for one application. Requests must carry
// either basic auth matching appKey/appSecret or any non-empty bearer token.
func NewServer(appKey, appSecret string) *Server {
	s := &Server{
		appKey:      appKey,
		appSecret:   appSecret,
		collections: make(map[string]map[string]map[string]any),
		updated:     make(map[string]map[string]time.Time),
		deleted:     make(map[string]map[string]time.Time),
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(s.requireAuth)

	router.Route("/appdata/{appKey}/{collection}", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Get("/_deltaset", s.handleDelta)
		r.Get("/_count", s.handleCount)
		r.Get("/{id}", s.handleGet)
		r.Put("/{id}", s.handleUpdate)
		r.Delete("/{id}", s.handleDelete)
	})

	s.router = router
	return s
}

// Handler returns the HTTP surface, ready for httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Seed inserts docs directly into a collection, bypassing HTTP. Documents
// without an _id get a generated one. Returns the ids in insertion order.
func (s *Server) Seed(collection string, docs ...map[string]any) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		id, _ := doc["_id"].(string)
		if id == "" {
			id = s.nextID()
			doc["_id"] = id
		}
		s.putLocked(collection, id, doc)
		ids = append(ids, id)
	}
	return ids
}

// Doc returns a stored document by id.
func (s *Server) Doc(collection, id string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	return doc, ok
}

// Count returns the number of documents in a collection.
func (s *Server) Count(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.collections[collection])
}

func (s *Server) nextID() string {
	s.seq++
	return fmt.Sprintf("srv_%d", s.seq)
}

func (s *Server) putLocked(collection, id string, doc map[string]any) {
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]map[string]any)
		s.updated[collection] = make(map[string]time.Time)
		s.deleted[collection] = make(map[string]time.Time)
	}
	s.collections[collection][id] = doc
	s.updated[collection][id] = time.Now().UTC()
	delete(s.deleted[collection], id)
}

// requireAuth admits basic auth with the app credentials or any non-empty
// bearer token, the two schemes real clients present.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, pass, ok := r.BasicAuth(); ok {
			if user != s.appKey || pass != s.appSecret {
				writeError(w, http.StatusUnauthorized, "invalid app credentials")
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if token, found := strings.CutPrefix(header, "Bearer "); found && token != "" {
			next.ServeHTTP(w, r)
			return
		}

		writeError(w, http.StatusUnauthorized, "missing credentials")
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	filter, err := parseFilter(r.URL.Query().Get("query"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	skip, limit, err := parseWindow(r.URL.Query().Get("skip"), r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	docs := make([]map[string]any, 0)
	for _, id := range s.sortedIDsLocked(collection) {
		doc := s.collections[collection][id]
		if matches(doc, filter) {
			docs = append(docs, doc)
		}
	}
	s.mu.Unlock()

	if skip < len(docs) {
		docs = docs[skip:]
	} else {
		docs = docs[:0]
	}
	if limit > 0 && limit < len(docs) {
		docs = docs[:limit]
	}

	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleCount(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	filter, err := parseFilter(r.URL.Query().Get("query"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	count := 0
	for _, doc := range s.collections[collection] {
		if matches(doc, filter) {
			count++
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	doc, ok := s.collections[collection][id]
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "entity not found")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	doc, err := decodeDoc(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	id, _ := doc["_id"].(string)
	if id == "" {
		id = s.nextID()
		doc["_id"] = id
	}
	s.putLocked(collection, id, doc)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")

	doc, err := decodeDoc(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	doc["_id"] = id

	s.mu.Lock()
	s.putLocked(collection, id, doc)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	_, ok := s.collections[collection][id]
	if ok {
		delete(s.collections[collection], id)
		delete(s.updated[collection], id)
		s.deleted[collection][id] = time.Now().UTC()
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "entity not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": 1})
}

func (s *Server) handleDelta(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	since, err := time.Parse(wireTimeFormat, r.URL.Query().Get("since"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid since timestamp")
		return
	}

	type deltaResponse struct {
		Changed []map[string]any    `json:"changed"`
		Deleted []map[string]string `json:"deleted"`
	}
	delta := deltaResponse{
		Changed: make([]map[string]any, 0),
		Deleted: make([]map[string]string, 0),
	}

	s.mu.Lock()
	for _, id := range s.sortedIDsLocked(collection) {
		if !s.updated[collection][id].Before(since) {
			delta.Changed = append(delta.Changed, s.collections[collection][id])
		}
	}
	for id, at := range s.deleted[collection] {
		if !at.Before(since) {
			delta.Deleted = append(delta.Deleted, map[string]string{"_id": id})
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, delta)
}

// sortedIDsLocked returns the collection's ids in lexical order so list
// responses are deterministic.
func (s *Server) sortedIDsLocked(collection string) []string {
	ids := make([]string, 0, len(s.collections[collection]))
	for id := range s.collections[collection] {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
	return ids
}

func decodeDoc(r *http.Request) (map[string]any, error) {
	var doc map[string]any
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid document body: %w", err)
	}
	return doc, nil
}

// parseFilter decodes the query filter and rejects anything beyond
// top-level equality, the only dialect this fake implements.
func parseFilter(raw string) (map[string]any, error) {
	if raw == "" || raw == "{}" {
		return nil, nil
	}

	var filter map[string]any
	if err := json.Unmarshal([]byte(raw), &filter); err != nil {
		return nil, fmt.Errorf("invalid query filter: %w", err)
	}
	for field, value := range filter {
		if _, ok := value.(map[string]any); ok {
			return nil, fmt.Errorf("unsupported filter operator on %q", field)
		}
	}
	return filter, nil
}

func parseWindow(rawSkip, rawLimit string) (skip, limit int, err error) {
	if rawSkip != "" {
		if skip, err = strconv.Atoi(rawSkip); err != nil || skip < 0 {
			return 0, 0, fmt.Errorf("invalid skip %q", rawSkip)
		}
	}
	if rawLimit != "" {
		if limit, err = strconv.Atoi(rawLimit); err != nil || limit < 0 {
			return 0, 0, fmt.Errorf("invalid limit %q", rawLimit)
		}
	}
	return skip, limit, nil
}

func matches(doc, filter map[string]any) bool {
	for field, want := range filter {
		if doc[field] != want {
			return false
		}
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	http.Error(w, message, status)
}
