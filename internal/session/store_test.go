package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DipuTony/trulyhelp-portal/internal/common"
)

type memoryStorage struct {
	mu    sync.Mutex
	token string
}

func (m *memoryStorage) SaveCredential(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *memoryStorage) LoadCredential(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memoryStorage) ClearCredential(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

func loginBackend(t *testing.T, status int, body any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
}

func TestLoginSuccessActivatesSession(t *testing.T) {
	srv := loginBackend(t, http.StatusOK, map[string]any{
		"token": "tok-123",
		"user": map[string]any{
			"userId":            "u1",
			"name":              "Asha",
			"email":             "asha@example.org",
			"role":              "admin",
			"emailVerifyStatus": true,
		},
	})
	defer srv.Close()

	storage := &memoryStorage{}
	store := NewStore(srv.URL, storage)

	sess, err := store.Login(context.Background(), "asha@example.org", "secret")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, sess.Status)
	assert.Equal(t, RoleAdmin, sess.Identity.Role)
	assert.Equal(t, "tok-123", sess.Credential)
	assert.Equal(t, "tok-123", storage.token, "credential should be persisted")
}

func TestLoginInvalidCredentials(t *testing.T) {
	srv := loginBackend(t, http.StatusUnauthorized, map[string]any{"message": "bad credentials"})
	defer srv.Close()

	store := NewStore(srv.URL, nil)
	_, err := store.Login(context.Background(), "asha@example.org", "wrong")

	var authErr *common.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, common.ReasonInvalidCredentials, authErr.Reason)
	assert.False(t, store.Current().Active())
}

func TestLoginUnverifiedEmailIsDistinct(t *testing.T) {
	srv := loginBackend(t, http.StatusForbidden, map[string]any{
		"user": map[string]any{"emailVerifyStatus": false},
	})
	defer srv.Close()

	store := NewStore(srv.URL, nil)
	_, err := store.Login(context.Background(), "new@example.org", "secret")

	var authErr *common.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, common.ReasonEmailUnverified, authErr.Reason)
}

func TestLoginForbiddenTopLevelFlagIsUnverified(t *testing.T) {
	srv := loginBackend(t, http.StatusForbidden, map[string]any{
		"emailVerifyStatus": false,
		"message":           "please verify your email",
	})
	defer srv.Close()

	store := NewStore(srv.URL, nil)
	_, err := store.Login(context.Background(), "new@example.org", "secret")

	var authErr *common.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, common.ReasonEmailUnverified, authErr.Reason)
}

func TestLoginForbiddenWithoutFlagIsNotUnverified(t *testing.T) {
	// A 403 for some other reason must not be mistaken for an unverified
	// account just because the flag's zero value is false.
	srv := loginBackend(t, http.StatusForbidden, map[string]any{
		"message": "account suspended",
	})
	defer srv.Close()

	store := NewStore(srv.URL, nil)
	_, err := store.Login(context.Background(), "asha@example.org", "secret")

	var authErr *common.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, common.ReasonInvalidCredentials, authErr.Reason)
}

func TestLoginBackendDownIsTransportError(t *testing.T) {
	srv := loginBackend(t, http.StatusInternalServerError, map[string]any{})
	defer srv.Close()

	store := NewStore(srv.URL, nil)
	_, err := store.Login(context.Background(), "asha@example.org", "secret")

	var te *common.TransportError
	assert.ErrorAs(t, err, &te)
}

func TestLogoutIsIdempotentAndNeedsNoNetwork(t *testing.T) {
	// Deliberately no reachable backend: logout must still work.
	store := NewStore("http://127.0.0.1:1", &memoryStorage{token: "tok"})
	store.mu.Lock()
	store.session = Session{Identity: Identity{UserID: "u1"}, Credential: "tok", Status: StatusActive}
	store.mu.Unlock()

	store.Logout()
	assert.Equal(t, StatusAnonymous, store.Current().Status)

	store.Logout()
	assert.Equal(t, StatusAnonymous, store.Current().Status)
}

func TestExpireIfCurrentOnlyOnceForSameGeneration(t *testing.T) {
	store := NewStore("http://127.0.0.1:1", nil)
	store.mu.Lock()
	store.session = Session{Identity: Identity{UserID: "u1"}, Credential: "tok", Status: StatusActive}
	store.mu.Unlock()

	_, gen, ok := store.Credential()
	require.True(t, ok)

	first := store.ExpireIfCurrent(gen, "session expired")
	second := store.ExpireIfCurrent(gen, "session expired again")

	assert.True(t, first)
	assert.False(t, second, "stale generation must not expire twice")
	assert.Equal(t, StatusExpired, store.Current().Status)
	assert.Equal(t, "session expired", store.Notice())
}

func TestExpireIfCurrentConcurrentExactlyOneWins(t *testing.T) {
	store := NewStore("http://127.0.0.1:1", nil)
	store.mu.Lock()
	store.session = Session{Identity: Identity{UserID: "u1"}, Credential: "tok", Status: StatusActive}
	store.mu.Unlock()

	_, gen, ok := store.Credential()
	require.True(t, ok)

	var wg sync.WaitGroup
	results := make([]bool, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = store.ExpireIfCurrent(gen, "expired")
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, won := range results {
		if won {
			wins++
		}
	}
	assert.Equal(t, 1, wins, "exactly one concurrent expiry must win")
	assert.Equal(t, StatusExpired, store.Current().Status)
}

func TestExpireIfCurrentIgnoresAnonymousSession(t *testing.T) {
	store := NewStore("http://127.0.0.1:1", nil)
	assert.False(t, store.ExpireIfCurrent(0, "expired"))
	assert.Equal(t, StatusAnonymous, store.Current().Status)
}

func TestCredentialUnavailableWhenInactive(t *testing.T) {
	store := NewStore("http://127.0.0.1:1", nil)
	_, _, ok := store.Credential()
	assert.False(t, ok)
}

func TestRestoreWithEmptyStorageIsNoop(t *testing.T) {
	store := NewStore("http://127.0.0.1:1", &memoryStorage{})
	require.NoError(t, store.Restore(context.Background()))
	assert.Equal(t, StatusAnonymous, store.Current().Status)
}

func TestRestoreRejectsGarbageToken(t *testing.T) {
	storage := &memoryStorage{token: "not-a-jwt"}
	store := NewStore("http://127.0.0.1:1", storage)

	err := store.Restore(context.Background())
	assert.Error(t, err)
	assert.Equal(t, StatusAnonymous, store.Current().Status)
	assert.Empty(t, storage.token, "stale credential should be cleared")
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole(" admin "))
	assert.Equal(t, RoleVolunteer, ParseRole("Volunteer"))
	assert.Equal(t, RoleDonor, ParseRole("DONOR"))
	assert.Equal(t, RoleGuest, ParseRole("superuser"))
	assert.Equal(t, RoleGuest, ParseRole(""))
}
