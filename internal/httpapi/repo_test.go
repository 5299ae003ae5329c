package httpapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchorvcs/anchor/internal/objectstore"
	"github.com/anchorvcs/anchor/internal/snapshot"
)

func TestCreateRepoRequiresStepUp(t *testing.T) {
	_, handler := newTestServer(t)
	token := loginAsAdmin(t, handler)

	rr := doJSON(t, handler, http.MethodPost, "/repos/", map[string]string{"name": "demo"}, token)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestCreateRepoSucceedsAfterStepUp(t *testing.T) {
	_, handler := newTestServer(t)
	token := loginAsAdmin(t, handler)
	stepUp := stepUpToken(t, handler, token)

	rr := doJSON(t, handler, http.MethodPost, "/repos/", map[string]string{"name": "demo"}, stepUp)
	require.Equal(t, http.StatusCreated, rr.Code)

	listRR := doJSON(t, handler, http.MethodGet, "/repos/", nil, token)
	require.Equal(t, http.StatusOK, listRR.Code)
	var metas []snapshot.Meta
	decodeBody(t, listRR, &metas)
	require.Len(t, metas, 1)
	assert.Equal(t, "demo", metas[0].Name)
}

func TestCreateRepoRejectsDuplicateName(t *testing.T) {
	_, handler := newTestServer(t)
	token := loginAsAdmin(t, handler)
	stepUp := stepUpToken(t, handler, token)

	rr1 := doJSON(t, handler, http.MethodPost, "/repos/", map[string]string{"name": "demo"}, stepUp)
	require.Equal(t, http.StatusCreated, rr1.Code)

	rr2 := doJSON(t, handler, http.MethodPost, "/repos/", map[string]string{"name": "demo"}, stepUp)
	assert.Equal(t, http.StatusConflict, rr2.Code)
}

func TestGetRepoNotFound(t *testing.T) {
	_, handler := newTestServer(t)
	token := loginAsAdmin(t, handler)

	rr := doJSON(t, handler, http.MethodGet, "/repos/nonexistent", nil, token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRepoNameWithTraversalIsRejected(t *testing.T) {
	_, handler := newTestServer(t)
	token := loginAsAdmin(t, handler)

	rr := doJSON(t, handler, http.MethodGet, "/repos/..%2f..%2fetc", nil, token)
	assert.NotEqual(t, http.StatusOK, rr.Code)
}

func TestSaveSnapshotThenHistoryAndStats(t *testing.T) {
	_, handler := newTestServer(t)
	token := loginAsAdmin(t, handler)
	stepUp := stepUpToken(t, handler, token)

	rr := doJSON(t, handler, http.MethodPost, "/repos/", map[string]string{"name": "demo"}, stepUp)
	require.Equal(t, http.StatusCreated, rr.Code)

	saveRR := doJSON(t, handler, http.MethodPost, "/repos/demo/save", map[string]string{"message": "first"}, token)
	require.Equal(t, http.StatusOK, saveRR.Code)
	var saveResp snapshotResponse
	decodeBody(t, saveRR, &saveResp)
	assert.NotEmpty(t, saveResp.SnapshotID)

	historyRR := doJSON(t, handler, http.MethodGet, "/repos/demo/history", nil, token)
	require.Equal(t, http.StatusOK, historyRR.Code)
	var history []objectstore.Snapshot
	decodeBody(t, historyRR, &history)
	require.Len(t, history, 1)
	assert.Equal(t, saveResp.SnapshotID, history[0].SnapshotID)

	statsRR := doJSON(t, handler, http.MethodGet, "/repos/demo/stats", nil, token)
	require.Equal(t, http.StatusOK, statsRR.Code)
	var stats repoStatsResponse
	decodeBody(t, statsRR, &stats)
	assert.Equal(t, 1, stats.SnapshotCount)
}

func TestFavoriteTogglesMeta(t *testing.T) {
	_, handler := newTestServer(t)
	token := loginAsAdmin(t, handler)
	stepUp := stepUpToken(t, handler, token)

	rr := doJSON(t, handler, http.MethodPost, "/repos/", map[string]string{"name": "demo"}, stepUp)
	require.Equal(t, http.StatusCreated, rr.Code)

	favRR := doJSON(t, handler, http.MethodPatch, "/repos/demo/favorite?is_favorite=true", nil, token)
	require.Equal(t, http.StatusOK, favRR.Code)

	getRR := doJSON(t, handler, http.MethodGet, "/repos/demo", nil, token)
	require.Equal(t, http.StatusOK, getRR.Code)
	var meta snapshot.Meta
	decodeBody(t, getRR, &meta)
	assert.True(t, meta.IsFavorite)
}

func TestPrivateRepoRejectsAnonymousRead(t *testing.T) {
	_, handler := newTestServer(t)
	token := loginAsAdmin(t, handler)
	stepUp := stepUpToken(t, handler, token)

	rr := doJSON(t, handler, http.MethodPost, "/repos/", map[string]string{"name": "demo"}, stepUp)
	require.Equal(t, http.StatusCreated, rr.Code)

	anonRR := doJSON(t, handler, http.MethodGet, "/repos/demo", nil, "")
	assert.Equal(t, http.StatusUnauthorized, anonRR.Code)
}

func TestVisibilityTogglePermitsAnonymousRead(t *testing.T) {
	_, handler := newTestServer(t)
	token := loginAsAdmin(t, handler)
	stepUp := stepUpToken(t, handler, token)

	rr := doJSON(t, handler, http.MethodPost, "/repos/", map[string]string{"name": "demo"}, stepUp)
	require.Equal(t, http.StatusCreated, rr.Code)

	visRR := doJSON(t, handler, http.MethodPatch, "/repos/demo/visibility", map[string]bool{"is_public": true}, token)
	require.Equal(t, http.StatusOK, visRR.Code)

	anonRR := doJSON(t, handler, http.MethodGet, "/repos/demo", nil, "")
	require.Equal(t, http.StatusOK, anonRR.Code)
	var meta snapshot.Meta
	decodeBody(t, anonRR, &meta)
	assert.True(t, meta.IsPublic)

	anonSaveRR := doJSON(t, handler, http.MethodPost, "/repos/demo/save", map[string]string{"message": "x"}, "")
	assert.Equal(t, http.StatusUnauthorized, anonSaveRR.Code)
}

// stepUpToken logs in and performs step-up, returning a fresh step-up
// access token for use on sensitive endpoints.
func stepUpToken(t *testing.T, handler http.Handler, accessToken string) string {
	t.Helper()
	rr := doJSON(t, handler, http.MethodPost, "/auth/step-up", map[string]string{
		"password": "correct-horse-battery-staple",
	}, accessToken)
	require.Equal(t, http.StatusOK, rr.Code)
	var resp tokenResponse
	decodeBody(t, rr, &resp)
	return resp.AccessToken
}
