package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"

	"github.com/terra-dev/terra/internal/cli/auth"
	"github.com/terra-dev/terra/internal/cli/config"
)

const (
	testOTAC = "abcde"
	testKey  = "server-key"
)

// fakeAPI imitates the Terra API with in-memory state
type fakeAPI struct {
	*httptest.Server

	mu       sync.Mutex
	tiers    map[string]int // user -> tier granted at login
	sessions map[string]int // token -> tier
	projects []map[string]any
	tension  [][2]int32
	dirs     []string
	writes   []string
	failWith int
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	api := &fakeAPI{
		tiers:    map[string]int{"player": 1, "leader": 2, "admin": 3},
		sessions: map[string]int{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/auth/status", func(w http.ResponseWriter, r *http.Request) {
		tier, ok := api.session(r)
		writeJSON(w, map[string]any{"auth": ok, "tier": tier})
	})
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ User, Otac string }
		_ = json.NewDecoder(r.Body).Decode(&req)

		api.mu.Lock()
		defer api.mu.Unlock()
		tier, ok := api.tiers[req.User]
		if !ok || req.Otac != testOTAC {
			http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
			return
		}
		token := "tok-" + req.User
		api.sessions[token] = tier
		http.SetCookie(w, &http.Cookie{Name: "_auth", Value: token, HttpOnly: true})
	})
	mux.HandleFunc("POST /api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("_auth"); err == nil {
			api.mu.Lock()
			delete(api.sessions, c.Value)
			api.mu.Unlock()
		}
	})
	mux.HandleFunc("POST /api/v1/auth/otac", api.bearer(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"otac": testOTAC})
	}))
	mux.HandleFunc("GET /api/v1/projects", api.tier(1, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, api.projects)
	}))
	mux.HandleFunc("POST /api/v1/projects", api.tier(3, api.record))
	mux.HandleFunc("DELETE /api/v1/projects", api.tier(3, api.record))
	mux.HandleFunc("GET /api/v1/tension", api.tier(1, func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		api.dirs = append(api.dirs, r.URL.Query().Get("dir"))
		api.mu.Unlock()
		writeJSON(w, api.tension)
	}))
	mux.HandleFunc("POST /api/v1/tension", api.bearer(api.record))
	mux.HandleFunc("DELETE /api/v1/tension", api.bearer(api.record))

	api.Server = httptest.NewServer(mux)
	t.Cleanup(api.Close)
	return api
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (a *fakeAPI) session(r *http.Request) (int, bool) {
	c, err := r.Cookie("_auth")
	if err != nil {
		return 0, false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	tier, ok := a.sessions[c.Value]
	return tier, ok
}

func (a *fakeAPI) tier(need int, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tier, ok := a.session(r)
		switch {
		case !ok:
			http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		case tier < need:
			http.Error(w, `{"error":"Forbidden"}`, http.StatusForbidden)
		default:
			next(w, r)
		}
	}
}

func (a *fakeAPI) bearer(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testKey {
			http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// record stores a write as "METHOD path body"
func (a *fakeAPI) record(w http.ResponseWriter, r *http.Request) {
	var body bytes.Buffer
	_, _ = body.ReadFrom(r.Body)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failWith != 0 {
		w.WriteHeader(a.failWith)
		return
	}
	a.writes = append(a.writes, fmt.Sprintf("%s %s %s", r.Method, r.URL.Path, strings.TrimSpace(body.String())))
}

// mockTokenStore is a simple in-memory token store for testing
type mockTokenStore struct {
	tokens map[string]string
}

func newMockTokenStore() *mockTokenStore {
	return &mockTokenStore{tokens: make(map[string]string)}
}

func (m *mockTokenStore) SaveToken(serverURL, token string) error {
	m.tokens[serverURL] = token
	return nil
}

func (m *mockTokenStore) LoadToken(serverURL string) (string, error) {
	token, exists := m.tokens[serverURL]
	if !exists {
		return "", auth.ErrNotLoggedIn
	}
	return token, nil
}

func (m *mockTokenStore) DeleteToken(serverURL string) error {
	delete(m.tokens, serverURL)
	return nil
}

// setupTestEnvironment points the CLI at api from a temp project directory
func setupTestEnvironment(t *testing.T, api *fakeAPI) (*Globals, *mockTokenStore) {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("TERRA_USER", "")
	t.Setenv("TERRA_OTAC", "")
	t.Setenv("TERRA_TEST_KEY", "")

	dir := t.TempDir()
	cfg := &config.Config{Servers: []config.Server{{URL: api.URL, Alias: "test", Web: "https://terra.example.com"}}}
	if err := config.Save(filepath.Join(dir, config.ConfigFileName), cfg); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Chdir(dir)

	tokens := newMockTokenStore()
	return &Globals{
		Tokens:      tokens,
		Interactive: func() bool { return false },
	}, tokens
}

// loginAs stores a session token for user as if 'terra login' had run
func loginAs(t *testing.T, api *fakeAPI, tokens *mockTokenStore, user string) {
	t.Helper()

	api.mu.Lock()
	api.sessions["tok-"+user] = api.tiers[user]
	api.mu.Unlock()
	tokens.tokens[api.URL] = "tok-" + user
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}
