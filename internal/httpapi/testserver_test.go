package httpapi

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/anchorvcs/anchor/internal/authtoken"
	"github.com/anchorvcs/anchor/internal/objectstore"
	"github.com/anchorvcs/anchor/internal/ratelimit"
	"github.com/anchorvcs/anchor/internal/rbac"
	"github.com/anchorvcs/anchor/internal/sshauth"
	"github.com/anchorvcs/anchor/internal/userstore"
)

const testAdminUsername = "admin"

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	dir := t.TempDir()

	backend, err := objectstore.NewLocalBackend(filepath.Join(dir, "objects"))
	require.NoError(t, err)
	objects, err := objectstore.New(backend)
	require.NoError(t, err)

	accessTokens, err := authtoken.NewManager([]byte("test-secret-key-not-for-production"), "anchor-test")
	require.NoError(t, err)

	refreshStore, err := authtoken.NewJSONFileStore(filepath.Join(dir, "refresh.json"))
	require.NoError(t, err)
	refreshTokens := authtoken.NewRefreshManager(refreshStore)

	users := userstore.New(dir)
	hash, err := userstore.HashPassword("correct-horse-battery-staple")
	require.NoError(t, err)
	require.NoError(t, users.SetPasswordHash(testAdminUsername, hash))

	srv := &Server{
		ReposRoot:     filepath.Join(dir, "repos"),
		AdminUsername: testAdminUsername,
		AccessTokens:  accessTokens,
		RefreshTokens: refreshTokens,
		RBAC:          rbac.NewManager(testAdminUsername),
		Users:         users,
		Objects:       objects,
		Limiter:       ratelimit.New(1000, 1000),
		Challenges:    sshauth.NewChallengeStore(),
	}
	t.Cleanup(func() { srv.Limiter.Close() })

	return srv, NewRouter(srv)
}

// loginAsAdmin logs in with the standard test password and returns the
// bearer access token.
func loginAsAdmin(t *testing.T, handler http.Handler) string {
	t.Helper()
	rr := doJSON(t, handler, http.MethodPost, "/auth/login", map[string]string{
		"username": testAdminUsername,
		"password": "correct-horse-battery-staple",
	}, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp tokenResponse
	decodeBody(t, rr, &resp)
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := jsonRequest(t, method, path, body)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}
