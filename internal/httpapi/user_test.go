package httpapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchorvcs/anchor/internal/userstore"
)

func TestGetProfileReturnsDefaultForNewUser(t *testing.T) {
	_, handler := newTestServer(t)
	token := loginAsAdmin(t, handler)

	rr := doJSON(t, handler, http.MethodGet, "/user/profile", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var profile userstore.Profile
	decodeBody(t, rr, &profile)
	assert.Equal(t, testAdminUsername, profile.Username)
}

func TestUpdateProfileBioWithoutStepUp(t *testing.T) {
	_, handler := newTestServer(t)
	token := loginAsAdmin(t, handler)

	rr := doJSON(t, handler, http.MethodPatch, "/user/profile", map[string]string{
		"bio": "hacking on anchor",
	}, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var profile userstore.Profile
	decodeBody(t, rr, &profile)
	assert.Equal(t, "hacking on anchor", profile.Bio)
}

func TestUpdateProfileUsernameRequiresStepUp(t *testing.T) {
	_, handler := newTestServer(t)
	token := loginAsAdmin(t, handler)

	rr := doJSON(t, handler, http.MethodPatch, "/user/profile", map[string]string{
		"username": "renamed-admin",
	}, token)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestUpdateProfileUsernameSucceedsAfterStepUp(t *testing.T) {
	_, handler := newTestServer(t)
	token := loginAsAdmin(t, handler)
	stepUp := stepUpToken(t, handler, token)

	rr := doJSON(t, handler, http.MethodPatch, "/user/profile", map[string]string{
		"username": "renamed-admin",
	}, stepUp)
	require.Equal(t, http.StatusOK, rr.Code)
	var profile userstore.Profile
	decodeBody(t, rr, &profile)
	assert.Equal(t, "renamed-admin", profile.Username)
}

func TestAddKeyRequiresStepUp(t *testing.T) {
	_, handler := newTestServer(t)
	token := loginAsAdmin(t, handler)

	pub, _, err := ed25519Pair()
	require.NoError(t, err)

	rr := doJSON(t, handler, http.MethodPost, "/user/keys", map[string]string{
		"title": "laptop",
		"key":   pub,
	}, token)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestAddThenDeleteKey(t *testing.T) {
	_, handler := newTestServer(t)
	token := loginAsAdmin(t, handler)
	stepUp := stepUpToken(t, handler, token)

	pub, _, err := ed25519Pair()
	require.NoError(t, err)

	addRR := doJSON(t, handler, http.MethodPost, "/user/keys", map[string]string{
		"title": "laptop",
		"key":   pub,
	}, stepUp)
	require.Equal(t, http.StatusOK, addRR.Code)
	var keys []userstore.SSHKey
	decodeBody(t, addRR, &keys)
	require.Len(t, keys, 1)

	delRR := doJSON(t, handler, http.MethodDelete, "/user/keys/"+keys[0].ID, nil, stepUp)
	require.Equal(t, http.StatusOK, delRR.Code)
	var remaining []userstore.SSHKey
	decodeBody(t, delRR, &remaining)
	assert.Empty(t, remaining)
}
