package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DipuTony/trulyhelp-portal/internal/access"
	"github.com/DipuTony/trulyhelp-portal/internal/session"
)

type staticStorage struct{ token string }

func (s *staticStorage) SaveCredential(context.Context, string) error { return nil }
func (s *staticStorage) LoadCredential(context.Context) (string, error) {
	return s.token, nil
}
func (s *staticStorage) ClearCredential(context.Context) error { return nil }

func signedToken(t *testing.T, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"userId": "u1",
		"name":   "Asha",
		"email":  "asha@example.org",
		"role":   role,
		"exp":    time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func storeWithRole(t *testing.T, role string) *session.Store {
	t.Helper()
	store := session.NewStore("http://127.0.0.1:1", &staticStorage{token: signedToken(t, role)})
	require.NoError(t, store.Restore(context.Background()))
	require.True(t, store.Current().Active())
	return store
}

func guardedRouter(sessions *session.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin-only", RequireRole(sessions, session.RoleAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/any", RequireAuthenticated(sessions), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestRequireRoleRedirectsAnonymousToLogin(t *testing.T) {
	sessions := session.NewStore("http://127.0.0.1:1", nil)
	r := guardedRouter(sessions)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin-only", nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, access.PathLogin, w.Header().Get("Location"))
}

func TestRequireRoleAllowsMatchingRole(t *testing.T) {
	r := guardedRouter(storeWithRole(t, "admin"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin-only", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRoleBouncesWrongRoleToOwnHome(t *testing.T) {
	r := guardedRouter(storeWithRole(t, "donor"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin-only", nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, access.PathDonorHome, w.Header().Get("Location"))
}

func TestRequireAuthenticatedAcceptsAnyRole(t *testing.T) {
	for _, role := range []string{"admin", "volunteer", "donor"} {
		r := guardedRouter(storeWithRole(t, role))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/any", nil))
		assert.Equal(t, http.StatusOK, w.Code, "role %s", role)
	}
}
