package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-dev/terra/internal/auth"
	"github.com/terra-dev/terra/internal/config"
	"github.com/terra-dev/terra/internal/database"
	"github.com/terra-dev/terra/internal/models"
	"github.com/terra-dev/terra/internal/tasks"
)

const testKey = "server-test-key"

type fakeQueue struct {
	mu    sync.Mutex
	tasks []*asynq.Task
	err   error
}

func (q *fakeQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return nil, q.err
	}
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Type: task.Type(), Queue: "default"}, nil
}

type testEnv struct {
	server *Server
	queue  *fakeQueue
}

func newTestEnv(t *testing.T, loginRate int) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{FrontendOrigin: "http://localhost:10001"},
		Auth: config.AuthConfig{
			SessionSecret:      "secret",
			SessionTTL:         time.Hour,
			OTACTTL:            5 * time.Minute,
			TestKey:            testKey,
			LoginRatePerMinute: loginRate,
		},
	}

	db, err := database.Open(config.DatabaseConfig{
		Driver: "sqlite",
		URL:    filepath.Join(t.TempDir(), "terra.sqlite"),
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	roster := &auth.Roster{Admins: []string{"admin"}, Leaders: []string{"leader"}}
	manager := auth.NewManager(auth.NewMemoryStore(), auth.NewSigner("secret", time.Hour), roster, testKey, 5*time.Minute, zerolog.Nop())

	queue := &fakeQueue{}
	srv, err := New(cfg, zerolog.Nop(), Dependencies{DB: db, Auth: manager, Queue: queue}, "test")
	require.NoError(t, err)

	return &testEnv{server: srv, queue: queue}
}

type request struct {
	method string
	path   string
	body   any
	cookie *http.Cookie
	bearer string
}

func (e *testEnv) do(t *testing.T, r request) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if r.body != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(r.body))
	}

	req := httptest.NewRequest(r.method, r.path, &body)
	req.Header.Set("Content-Type", "application/json")
	if r.cookie != nil {
		req.AddCookie(r.cookie)
	}
	if r.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+r.bearer)
	}

	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

// login issues a code with the test key and exchanges it for a session cookie
func (e *testEnv) login(t *testing.T, user string) *http.Cookie {
	t.Helper()

	rec := e.do(t, request{method: "POST", path: "/api/v1/auth/otac", body: OTACRequest{User: user}, bearer: testKey})
	require.Equal(t, http.StatusOK, rec.Code)

	var otac OTACResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &otac))

	rec = e.do(t, request{method: "POST", path: "/api/v1/auth/login", body: LoginRequest{User: user, Otac: otac.Otac}})
	require.Equal(t, http.StatusOK, rec.Code)

	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			assert.True(t, c.HttpOnly)
			assert.True(t, c.Secure)
			return c
		}
	}
	t.Fatal("login did not set the session cookie")
	return nil
}

func decodeStatus(t *testing.T, rec *httptest.ResponseRecorder) StatusResponse {
	t.Helper()
	var status StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	return status
}

func TestAuthStatus_NoSession(t *testing.T) {
	env := newTestEnv(t, 0)

	rec := env.do(t, request{method: "GET", path: "/api/v1/auth/status"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"auth":false,"tier":0}`, rec.Body.String())

	// the bearer key grants access but is not a session
	rec = env.do(t, request{method: "GET", path: "/api/v1/auth/status", bearer: testKey})
	assert.Equal(t, StatusResponse{Auth: false, Tier: auth.NotAuthorized}, decodeStatus(t, rec))
}

func TestLoginStatusLogout(t *testing.T) {
	env := newTestEnv(t, 0)
	cookie := env.login(t, "leader")

	rec := env.do(t, request{method: "GET", path: "/api/v1/auth/status", cookie: cookie})
	assert.Equal(t, StatusResponse{Auth: true, Tier: auth.FactionLeader}, decodeStatus(t, rec))

	rec = env.do(t, request{method: "POST", path: "/api/v1/auth/logout", cookie: cookie})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, request{method: "GET", path: "/api/v1/auth/status", cookie: cookie})
	assert.Equal(t, StatusResponse{Auth: false, Tier: auth.NotAuthorized}, decodeStatus(t, rec))
}

func TestLogin_InvalidCode(t *testing.T) {
	env := newTestEnv(t, 0)

	rec := env.do(t, request{method: "POST", path: "/api/v1/auth/login", body: LoginRequest{User: "alice", Otac: "abcde"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, request{method: "POST", path: "/api/v1/auth/login", body: LoginRequest{User: "alice", Otac: "1"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_RateLimited(t *testing.T) {
	env := newTestEnv(t, 2)

	codes := make([]int, 0, 3)
	for range 3 {
		rec := env.do(t, request{method: "POST", path: "/api/v1/auth/login", body: LoginRequest{User: "alice", Otac: "abcde"}})
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}

func TestIssueOTAC_RequiresServerTier(t *testing.T) {
	env := newTestEnv(t, 0)

	rec := env.do(t, request{method: "POST", path: "/api/v1/auth/otac", body: OTACRequest{User: "alice"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, request{method: "POST", path: "/api/v1/auth/otac", body: OTACRequest{User: "alice"}, bearer: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	admin := env.login(t, "admin")
	rec = env.do(t, request{method: "POST", path: "/api/v1/auth/otac", body: OTACRequest{User: "alice"}, cookie: admin})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProjects_TierGates(t *testing.T) {
	env := newTestEnv(t, 0)
	player := env.login(t, "player")
	admin := env.login(t, "admin")

	rec := env.do(t, request{method: "GET", path: "/api/v1/projects"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, request{method: "GET", path: "/api/v1/projects", cookie: player})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	add := AddProjectRequest{Name: "walls", Description: "Build walls", Weight: 4}
	rec = env.do(t, request{method: "POST", path: "/api/v1/projects", body: add, cookie: player})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, env.queue.tasks)

	rec = env.do(t, request{method: "POST", path: "/api/v1/projects", body: add, cookie: admin})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, request{method: "DELETE", path: "/api/v1/projects", body: DeleteProjectRequest{Name: "walls"}, cookie: admin})
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, env.queue.tasks, 2)
	assert.Equal(t, tasks.TypeProjectAdd, env.queue.tasks[0].Type())
	assert.Equal(t, tasks.TypeProjectDelete, env.queue.tasks[1].Type())

	payload, err := tasks.ParseProjectPayload(env.queue.tasks[1])
	require.NoError(t, err)
	assert.Equal(t, "walls", payload.Name)
}

func TestProjects_Validation(t *testing.T) {
	env := newTestEnv(t, 0)
	admin := env.login(t, "admin")

	bad := []AddProjectRequest{
		{Name: "", Description: "d", Weight: 1},
		{Name: "x", Description: "", Weight: 1},
		{Name: "x", Description: "d", Weight: 0},
		{Name: " padded", Description: "d", Weight: 1},
	}
	for _, body := range bad {
		rec := env.do(t, request{method: "POST", path: "/api/v1/projects", body: body, cookie: admin})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %+v", body)
	}
	assert.Empty(t, env.queue.tasks)
}

func TestProjects_AddExistingIsConflict(t *testing.T) {
	env := newTestEnv(t, 0)
	admin := env.login(t, "admin")
	require.NoError(t, env.server.projects.Add(context.Background(), models.Project{Name: "walls", Description: "Build walls", Weight: 2}))

	add := AddProjectRequest{Name: "walls", Description: "Taller walls", Weight: 4}
	rec := env.do(t, request{method: "POST", path: "/api/v1/projects", body: add, cookie: admin})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, env.queue.tasks)
}

func TestNewValidator_ProjectName(t *testing.T) {
	validate, err := newValidator()
	require.NoError(t, err)

	assert.NoError(t, validate.Struct(AddProjectRequest{Name: "Great Wall", Description: "d", Weight: 1}))
	assert.Error(t, validate.Struct(AddProjectRequest{Name: "tab\tname", Description: "d", Weight: 1}))
	assert.Error(t, validate.Struct(AddProjectRequest{Name: "trailing ", Description: "d", Weight: 1}))
}

func TestProjects_EnqueueFailure(t *testing.T) {
	env := newTestEnv(t, 0)
	env.queue.err = errors.New("redis down")
	admin := env.login(t, "admin")

	rec := env.do(t, request{method: "DELETE", path: "/api/v1/projects", body: DeleteProjectRequest{Name: "walls"}, cookie: admin})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestTension_LeaderboardPairs(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()
	require.NoError(t, env.server.tension.Set(ctx, 1, 5))
	require.NoError(t, env.server.tension.Set(ctx, 2, 9))

	player := env.login(t, "player")

	rec := env.do(t, request{method: "GET", path: "/api/v1/tension", cookie: player})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[[2,9],[1,5]]`, rec.Body.String())

	rec = env.do(t, request{method: "GET", path: "/api/v1/tension?dir=asc", cookie: player})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[[1,5],[2,9]]`, rec.Body.String())

	rec = env.do(t, request{method: "GET", path: "/api/v1/tension?dir=up", cookie: player})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTension_WritesRequireServerTier(t *testing.T) {
	env := newTestEnv(t, 0)
	admin := env.login(t, "admin")

	rec := env.do(t, request{method: "POST", path: "/api/v1/tension", body: SetTensionRequest{ID: 3, Tension: 12}, cookie: admin})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, request{method: "POST", path: "/api/v1/tension", body: SetTensionRequest{ID: 3, Tension: 12}, bearer: testKey})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, request{method: "DELETE", path: "/api/v1/tension", body: DeleteTensionRequest{ID: 0}, bearer: testKey})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	require.Len(t, env.queue.tasks, 1)
	payload, err := tasks.ParseTensionPayload(env.queue.tasks[0])
	require.NoError(t, err)
	assert.Equal(t, tasks.TensionPayload{ID: 3, Tension: 12}, payload)
}

func TestHealthAndInfo(t *testing.T) {
	env := newTestEnv(t, 0)

	rec := env.do(t, request{method: "GET", path: "/health"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, request{method: "GET", path: "/api/v1/system/info"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"version":"test","tls":false}`, rec.Body.String())
}
