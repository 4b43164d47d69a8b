// ABOUTME: Tests for the embedded client assets and the about page.
// ABOUTME: Verifies the entry page, static files, and markdown rendering.

package assets

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_ServesIndex(t *testing.T) {
	ts := httptest.NewServer(Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "duochat")
	assert.Contains(t, string(body), "client.js")
}

func TestHandler_ServesStaticFiles(t *testing.T) {
	ts := httptest.NewServer(Handler())
	defer ts.Close()

	for _, path := range []string{"/client.js", "/style.css"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, "path %s", path)
	}
}

func TestConfigScript_EmitsConfiguredValues(t *testing.T) {
	ts := httptest.NewServer(ConfigScript(5*time.Second, 42))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/config.js")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "javascript")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "pollIntervalMs: 5000")
	assert.Contains(t, string(body), "historyLimit: 42")
}

func TestAboutHandler_RendersMarkdown(t *testing.T) {
	ts := httptest.NewServer(AboutHandler(nil))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/about")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "<h1>About duochat</h1>")
	assert.Contains(t, string(body), "poll")
}
