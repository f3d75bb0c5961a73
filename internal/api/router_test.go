package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modvault/internal/cache"
	"modvault/internal/registry"
	"modvault/internal/store"
	"modvault/internal/webhooks"
)

var testSigningKey = []byte("test-signing-key")

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.DB.Close() })

	c, err := cache.New(64)
	require.NoError(t, err)

	log := logrus.New()
	log.SetOutput(io.Discard)

	svc := registry.New(st, c, &webhooks.LogDispatcher{Log: log}, log, registry.Site{
		Protocol:   "http://",
		ServerName: "mods.example.test",
	})
	return SetupRouter(svc, testSigningKey)
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func registerAndLogin(t *testing.T, r *gin.Engine, username string) (token, refresh string) {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/register", "", gin.H{
		"username": username, "email": username + "@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/login", "", gin.H{
		"username": username, "password": "hunter22",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	return body["token"].(string), body["refresh_token"].(string)
}

func publishMod(t *testing.T, r *gin.Engine, token, name, versionNumber string) map[string]interface{} {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/v1/packages", token, gin.H{
		"manifest": gin.H{
			"Name":         name,
			"Url":          "https://example.com/" + name,
			"Version":      versionNumber,
			"Description":  "a mod",
			"Targets":      gin.H{},
			"ContentTypes": 1,
		},
		"file": "/media/" + name + ".zip",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	r := newTestRouter(t)
	registerAndLogin(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/login", "", gin.H{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPublishRequiresMaintainScope(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/packages", "", gin.H{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPublishAndBrowse(t *testing.T) {
	r := newTestRouter(t)
	token, _ := registerAndLogin(t, r, "Alice")

	created := publishMod(t, r, token, "CoolMod", "1.0.0")
	assert.Equal(t, "Alice-CoolMod-1.0.0", created["full_name"])

	w := doJSON(t, r, http.MethodGet, "/api/v1/packages", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 1, body["count"])

	w = doJSON(t, r, http.MethodGet, "/api/v1/packages/alice/coolmod", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/packages/alice/coolmod/versions/1.0.0", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, "1.0.0", body["version_number"])

	w = doJSON(t, r, http.MethodGet, "/api/v1/packages/alice/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListingSearchAndPagination(t *testing.T) {
	r := newTestRouter(t)
	token, _ := registerAndLogin(t, r, "alice")
	publishMod(t, r, token, "Alpha", "1.0.0")
	publishMod(t, r, token, "Beta", "1.0.0")

	w := doJSON(t, r, http.MethodGet, "/api/v1/packages?q=alpha", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 1, body["count"])

	w = doJSON(t, r, http.MethodGet, "/api/v1/packages?page=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Empty(t, body["results"])
	assert.EqualValues(t, 2, body["count"])
	assert.EqualValues(t, 1, body["page_count"])
}

func TestInvalidManifestReportsField(t *testing.T) {
	r := newTestRouter(t)
	token, _ := registerAndLogin(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/v1/packages", token, gin.H{
		"manifest": gin.H{
			"Name":         "Mod",
			"Url":          "https://example.com/mod",
			"Version":      "not-a-version",
			"Description":  "a mod",
			"Targets":      gin.H{},
			"ContentTypes": 1,
		},
		"file": "/media/mod.zip",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Version", body["field"])
}

func TestDownloadRedirects(t *testing.T) {
	r := newTestRouter(t)
	token, _ := registerAndLogin(t, r, "alice")
	publishMod(t, r, token, "CoolMod", "1.0.0")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/packages/alice/coolmod/versions/1.0.0/download", nil)
	req.RemoteAddr = "10.1.2.3:5000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://mods.example.test/media/CoolMod.zip", w.Header().Get("Location"))

	// the counted download is visible on the version afterwards
	w2 := doJSON(t, r, http.MethodGet, "/api/v1/packages/alice/coolmod/versions/1.0.0", "", nil)
	require.Equal(t, http.StatusOK, w2.Code)
	body := decode(t, w2)
	assert.EqualValues(t, 1, body["downloads"])
}

func TestRefreshRotatesToken(t *testing.T) {
	r := newTestRouter(t)
	_, refresh := registerAndLogin(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/refresh", "", gin.H{"refresh_token": refresh})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	newRefresh := body["refresh_token"].(string)
	require.NotEqual(t, refresh, newRefresh)

	// the old refresh token is revoked by rotation
	w = doJSON(t, r, http.MethodPost, "/refresh", "", gin.H{"refresh_token": refresh})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/refresh", "", gin.H{"refresh_token": newRefresh})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServiceTokenLifecycle(t *testing.T) {
	r := newTestRouter(t)
	token, _ := registerAndLogin(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/tokens", token, gin.H{"scopes": []string{"read", "maintain"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	serviceTok := decode(t, w)["token"].(string)

	// the service token can publish
	publishMod(t, r, serviceTok, "CiMod", "1.0.0")

	w = doJSON(t, r, http.MethodPost, "/tokens/revoke", token, gin.H{"token": serviceTok})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/me", serviceTok, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIdentityEndpoint(t *testing.T) {
	r := newTestRouter(t)
	token, _ := registerAndLogin(t, r, "Alice")

	w := doJSON(t, r, http.MethodGet, "/api/v1/identity", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "Alice", body["name"])
	assert.Equal(t, "alice", body["slug"])
}
