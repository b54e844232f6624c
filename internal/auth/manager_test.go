package auth

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, roster *Roster) (*Manager, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	signer := NewSigner("test-secret", time.Hour)
	return NewManager(store, signer, roster, "test-key", 5*time.Minute, zerolog.Nop()), store
}

func TestManager_LoginConsumesCode(t *testing.T) {
	m, _ := newTestManager(t, &Roster{Admins: []string{"Alice"}})
	ctx := context.Background()

	code, err := m.IssueOTAC(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, code, OTACLength)

	token, session, err := m.Login(ctx, "ALICE", code)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, Admin, session.Tier)
	assert.Equal(t, "ALICE", session.User)

	_, _, err = m.Login(ctx, "alice", code)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestManager_ConcurrentLoginsShareOneCode(t *testing.T) {
	m, _ := newTestManager(t, nil)
	ctx := context.Background()

	code, err := m.IssueOTAC(ctx, "alice")
	require.NoError(t, err)

	var wg sync.WaitGroup
	var succeeded atomic.Int32
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := m.Login(ctx, "alice", code); err == nil {
				succeeded.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
}

func TestMemoryStore_ConsumeOTAC(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.PutOTAC(ctx, "Alice", "hash", time.Minute))

	ok, err := store.ConsumeOTAC(ctx, "alice", "other")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.ConsumeOTAC(ctx, "alice", "hash")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.ConsumeOTAC(ctx, "alice", "hash")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManager_LoginRejectsWrongCode(t *testing.T) {
	m, _ := newTestManager(t, nil)
	ctx := context.Background()

	_, err := m.IssueOTAC(ctx, "bob")
	require.NoError(t, err)

	_, _, err = m.Login(ctx, "bob", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = m.Login(ctx, "nobody", "abcde")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = m.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestManager_ExpiredCode(t *testing.T) {
	m, store := newTestManager(t, nil)
	ctx := context.Background()

	now := time.Now()
	store.now = func() time.Time { return now }

	code, err := m.IssueOTAC(ctx, "carol")
	require.NoError(t, err)

	store.now = func() time.Time { return now.Add(6 * time.Minute) }
	_, _, err = m.Login(ctx, "carol", code)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestManager_LogoutRevokesSession(t *testing.T) {
	m, _ := newTestManager(t, nil)
	ctx := context.Background()

	code, err := m.IssueOTAC(ctx, "dave")
	require.NoError(t, err)
	token, _, err := m.Login(ctx, "dave", code)
	require.NoError(t, err)

	session, err := m.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, Player, session.Tier)
	assert.Equal(t, MethodCookie, session.Method)

	require.NoError(t, m.Logout(ctx, session))

	_, err = m.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrSessionRevoked)
}

func TestManager_BearerValid(t *testing.T) {
	m, _ := newTestManager(t, nil)
	assert.True(t, m.BearerValid("test-key"))
	assert.False(t, m.BearerValid("other"))
	assert.False(t, m.BearerValid(""))

	noKey := NewManager(NewMemoryStore(), NewSigner("s", time.Hour), nil, "", time.Minute, zerolog.Nop())
	assert.False(t, noKey.BearerValid(""))
}

func TestSigner_RejectsForeignSecret(t *testing.T) {
	token, _, err := NewSigner("one", time.Hour).GenerateToken("eve", Admin)
	require.NoError(t, err)

	_, err = NewSigner("two", time.Hour).ValidateToken(token)
	assert.Error(t, err)

	_, _, err = NewSigner("", time.Hour).GenerateToken("eve", Admin)
	assert.ErrorIs(t, err, ErrSecretNotInitialized)
}

func TestSigner_ExpiredToken(t *testing.T) {
	signer := NewSigner("secret", time.Minute)
	issued := time.Now().Add(-time.Hour)
	signer.now = func() time.Time { return issued }
	token, _, err := signer.GenerateToken("frank", Player)
	require.NoError(t, err)

	signer.now = time.Now
	_, err = signer.ValidateToken(token)
	assert.Error(t, err)
}

func TestRoster_TierFor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte("admins:\n  - Alice\nleaders:\n  - bob\n  - alice\n"), 0644))

	roster, err := LoadRoster(path)
	require.NoError(t, err)

	assert.Equal(t, Admin, roster.TierFor("alice"))
	assert.Equal(t, FactionLeader, roster.TierFor("BOB"))
	assert.Equal(t, Player, roster.TierFor("carol"))

	missing, err := LoadRoster(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Player, missing.TierFor("alice"))
}

func TestParseTier(t *testing.T) {
	tests := []struct {
		in      string
		want    Tier
		wantErr bool
	}{
		{in: "admin", want: Admin},
		{in: "Faction-Leader", want: FactionLeader},
		{in: "2", want: FactionLeader},
		{in: "7", want: Tier(7)},
		{in: "-1", wantErr: true},
		{in: "emperor", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTier(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
