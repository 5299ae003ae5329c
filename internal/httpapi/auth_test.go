package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchorvcs/anchor/internal/userstore"
)

func serve(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestLoginSucceedsWithCorrectPassword(t *testing.T) {
	_, handler := newTestServer(t)

	rr := doJSON(t, handler, http.MethodPost, "/auth/login", map[string]string{
		"username": testAdminUsername,
		"password": "correct-horse-battery-staple",
	}, "")

	require.Equal(t, http.StatusOK, rr.Code)
	var resp tokenResponse
	decodeBody(t, rr, &resp)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, refreshCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	_, handler := newTestServer(t)

	rr := doJSON(t, handler, http.MethodPost, "/auth/login", map[string]string{
		"username": testAdminUsername,
		"password": "not-the-password",
	}, "")

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLoginRejectsUnknownUser(t *testing.T) {
	_, handler := newTestServer(t)

	rr := doJSON(t, handler, http.MethodPost, "/auth/login", map[string]string{
		"username": "nobody",
		"password": "whatever",
	}, "")

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLoginReturns2FARequiredWhenEnabled(t *testing.T) {
	srv, handler := newTestServer(t)

	setup, err := srv.Users.GenerateTwoFactorSetup(testAdminUsername)
	require.NoError(t, err)
	require.NoError(t, srv.Users.SetTwoFactor(testAdminUsername, userstore.TwoFactor{Enabled: true, Secret: setup.Secret}))

	rr := doJSON(t, handler, http.MethodPost, "/auth/login", map[string]string{
		"username": testAdminUsername,
		"password": "correct-horse-battery-staple",
	}, "")

	require.Equal(t, http.StatusOK, rr.Code)
	var resp twoFactorRequiredResponse
	decodeBody(t, rr, &resp)
	assert.Equal(t, "2fa_required", resp.Status)
}

func TestRequireAuthRejectsMissingBearerToken(t *testing.T) {
	_, handler := newTestServer(t)

	rr := doJSON(t, handler, http.MethodGet, "/repos/", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	_, handler := newTestServer(t)

	loginRR := doJSON(t, handler, http.MethodPost, "/auth/login", map[string]string{
		"username": testAdminUsername,
		"password": "correct-horse-battery-staple",
	}, "")
	require.Equal(t, http.StatusOK, loginRR.Code)
	cookie := loginRR.Result().Cookies()[0]

	req := jsonRequest(t, http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(cookie)
	rr := serve(handler, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp tokenResponse
	decodeBody(t, rr, &resp)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestRefreshRejectsReuseOfRotatedToken(t *testing.T) {
	_, handler := newTestServer(t)

	loginRR := doJSON(t, handler, http.MethodPost, "/auth/login", map[string]string{
		"username": testAdminUsername,
		"password": "correct-horse-battery-staple",
	}, "")
	cookie := loginRR.Result().Cookies()[0]

	req1 := jsonRequest(t, http.MethodPost, "/auth/refresh", nil)
	req1.AddCookie(cookie)
	rr1 := serve(handler, req1)
	require.Equal(t, http.StatusOK, rr1.Code)

	// Reuse the same, now-rotated cookie: must be rejected as replay.
	req2 := jsonRequest(t, http.MethodPost, "/auth/refresh", nil)
	req2.AddCookie(cookie)
	rr2 := serve(handler, req2)
	assert.Equal(t, http.StatusUnauthorized, rr2.Code)
}

func TestStepUpRequiresCorrectPassword(t *testing.T) {
	_, handler := newTestServer(t)
	token := loginAsAdmin(t, handler)

	rr := doJSON(t, handler, http.MethodPost, "/auth/step-up", map[string]string{
		"password": "wrong",
	}, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = doJSON(t, handler, http.MethodPost, "/auth/step-up", map[string]string{
		"password": "correct-horse-battery-staple",
	}, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var resp tokenResponse
	decodeBody(t, rr, &resp)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestLogoutSucceeds(t *testing.T) {
	_, handler := newTestServer(t)
	token := loginAsAdmin(t, handler)

	rr := doJSON(t, handler, http.MethodPost, "/auth/logout", nil, token)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestSSHChallengeRejectsNonAdminUser(t *testing.T) {
	_, handler := newTestServer(t)

	req := jsonRequest(t, http.MethodGet, "/auth/ssh-challenge?username=someoneelse", nil)
	rr := serve(handler, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSSHLoginSucceedsWithRegisteredKey(t *testing.T) {
	srv, handler := newTestServer(t)

	pub, priv, err := ed25519Pair()
	require.NoError(t, err)
	keys, err := srv.Users.AddKey(testAdminUsername, "laptop", pub)
	require.NoError(t, err)
	require.Len(t, keys, 1)

	challengeReq := jsonRequest(t, http.MethodGet, "/auth/ssh-challenge?username="+testAdminUsername, nil)
	challengeRR := serve(handler, challengeReq)
	require.Equal(t, http.StatusOK, challengeRR.Code)
	var challengeResp map[string]string
	decodeBody(t, challengeRR, &challengeResp)

	sig := signEd25519(priv, []byte(challengeResp["challenge"]))
	rr := doJSON(t, handler, http.MethodPost, "/auth/ssh-login", map[string]string{
		"username":  testAdminUsername,
		"signature": sig,
		"key_id":    keys[0].ID,
	}, "")

	require.Equal(t, http.StatusOK, rr.Code)
	var resp tokenResponse
	decodeBody(t, rr, &resp)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestSSHLoginRejectsConsumedChallenge(t *testing.T) {
	srv, handler := newTestServer(t)

	pub, priv, err := ed25519Pair()
	require.NoError(t, err)
	keys, err := srv.Users.AddKey(testAdminUsername, "laptop", pub)
	require.NoError(t, err)

	challengeReq := jsonRequest(t, http.MethodGet, "/auth/ssh-challenge?username="+testAdminUsername, nil)
	challengeRR := serve(handler, challengeReq)
	var challengeResp map[string]string
	decodeBody(t, challengeRR, &challengeResp)

	sig := signEd25519(priv, []byte(challengeResp["challenge"]))
	body := map[string]string{"username": testAdminUsername, "signature": sig, "key_id": keys[0].ID}

	rr1 := doJSON(t, handler, http.MethodPost, "/auth/ssh-login", body, "")
	require.Equal(t, http.StatusOK, rr1.Code)

	rr2 := doJSON(t, handler, http.MethodPost, "/auth/ssh-login", body, "")
	assert.Equal(t, http.StatusBadRequest, rr2.Code)
}
