package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github-proxy-go/internal/config"
	"github-proxy-go/internal/model"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, http.NoBody))
	return rec
}

func TestBuild_Status(t *testing.T) {
	path := writeConfig(t, "[log]\nlevel = \"error\"\n")
	h := build(&config.CLI{Config: path, Token: "ghp_secret"})

	rec := serve(h, http.MethodGet, "/proxy/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "present", rec.Header().Get("X-Proxy-Credential"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "serverless", body["version"])
	assert.Equal(t, config.DefaultBaseURL, body["upstream_url"])
	assert.NotContains(t, rec.Body.String(), "ghp_secret")
}

func TestBuild_NoMetricsRoute(t *testing.T) {
	path := writeConfig(t, "[metrics]\nenabled = true\npath = \"/metrics\"\n[log]\nlevel = \"error\"\n")
	h := build(&config.CLI{Config: path})

	rec := serve(h, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "missing", rec.Header().Get("X-Proxy-Credential"))
}

func TestBuild_Misconfigured(t *testing.T) {
	h := build(&config.CLI{Config: filepath.Join(t.TempDir(), "absent.toml")})

	rec := serve(h, http.MethodGet, "/api/users/octocat")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var body model.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Internal Server Error", body.Error)
	assert.Equal(t, "proxy is misconfigured", body.Message)
}

func TestBuild_PlaceholderToken(t *testing.T) {
	h := build(&config.CLI{Config: writeConfig(t, ""), Token: "YOUR_TOKEN_HERE"})

	rec := serve(h, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
