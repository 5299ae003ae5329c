package httpapi

import (
	"net/http"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTwoFactorSetupEnableDisableLifecycle(t *testing.T) {
	_, handler := newTestServer(t)
	token := loginAsAdmin(t, handler)

	statusRR := doJSON(t, handler, http.MethodGet, "/user/2fa/status", nil, token)
	require.Equal(t, http.StatusOK, statusRR.Code)
	var status map[string]bool
	decodeBody(t, statusRR, &status)
	assert.False(t, status["enabled"])

	setupRR := doJSON(t, handler, http.MethodPost, "/user/2fa/setup", nil, token)
	require.Equal(t, http.StatusOK, setupRR.Code)
	var setup struct {
		Secret string `json:"secret"`
		URL    string `json:"url"`
	}
	decodeBody(t, setupRR, &setup)
	require.NotEmpty(t, setup.Secret)

	code, err := totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)

	enableRR := doJSON(t, handler, http.MethodPost, "/user/2fa/enable", map[string]string{"code": code}, token)
	require.Equal(t, http.StatusOK, enableRR.Code)

	statusRR = doJSON(t, handler, http.MethodGet, "/user/2fa/status", nil, token)
	decodeBody(t, statusRR, &status)
	assert.True(t, status["enabled"])

	disableRR := doJSON(t, handler, http.MethodPost, "/user/2fa/disable", nil, token)
	assert.Equal(t, http.StatusForbidden, disableRR.Code, "disabling 2FA requires a fresh step-up token")

	stepUp := stepUpTokenWithCode(t, handler, token, setup.Secret)
	disableRR = doJSON(t, handler, http.MethodPost, "/user/2fa/disable", nil, stepUp)
	require.Equal(t, http.StatusOK, disableRR.Code)

	statusRR = doJSON(t, handler, http.MethodGet, "/user/2fa/status", nil, token)
	decodeBody(t, statusRR, &status)
	assert.False(t, status["enabled"])
}

func TestSetupRejectsWhenAlreadyEnabled(t *testing.T) {
	_, handler := newTestServer(t)
	token := loginAsAdmin(t, handler)

	setupRR := doJSON(t, handler, http.MethodPost, "/user/2fa/setup", nil, token)
	var setup struct {
		Secret string `json:"secret"`
	}
	decodeBody(t, setupRR, &setup)
	code, err := totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)
	enableRR := doJSON(t, handler, http.MethodPost, "/user/2fa/enable", map[string]string{"code": code}, token)
	require.Equal(t, http.StatusOK, enableRR.Code)

	rr := doJSON(t, handler, http.MethodPost, "/user/2fa/setup", nil, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func stepUpTokenWithCode(t *testing.T, handler http.Handler, accessToken, secret string) string {
	t.Helper()
	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	rr := doJSON(t, handler, http.MethodPost, "/auth/step-up", map[string]string{
		"password": "correct-horse-battery-staple",
		"code":     code,
	}, accessToken)
	require.Equal(t, http.StatusOK, rr.Code)
	var resp tokenResponse
	decodeBody(t, rr, &resp)
	return resp.AccessToken
}
