package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// FakeBackend is an httptest server standing in for the analysis API.
// Routes use net/http method patterns, e.g. "GET /api/chat/sessions/{id}/messages".
type FakeBackend struct {
	*httptest.Server

	mux   *http.ServeMux
	mu    sync.Mutex
	calls map[string]int
}

// NewFakeBackend starts a FakeBackend that is closed when the test ends
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	b := &FakeBackend{
		mux:   http.NewServeMux(),
		calls: make(map[string]int),
	}
	b.Server = httptest.NewServer(b.mux)
	t.Cleanup(b.Close)
	return b
}

// Handle registers h for pattern and counts every request it receives
func (b *FakeBackend) Handle(pattern string, h http.HandlerFunc) {
	b.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls[pattern]++
		b.mu.Unlock()
		h(w, r)
	})
}

// Calls returns how many requests pattern has served
func (b *FakeBackend) Calls(pattern string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[pattern]
}

// WriteJSON writes v as a JSON response with status
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteDetail writes a FastAPI-style {"detail": msg} error
func WriteDetail(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"detail": msg})
}

// RequireBearer rejects requests without the expected bearer token
func RequireBearer(token string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			WriteDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		h(w, r)
	}
}
