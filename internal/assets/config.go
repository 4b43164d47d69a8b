// ABOUTME: Serves the browser client settings as a generated script.
// ABOUTME: Loaded by index.html before client.js; values come from the server config.

package assets

import (
	"fmt"
	"net/http"
	"time"
)

// ConfigScript returns a handler serving the client settings as a small
// script. The browser client falls back to its built-in defaults when
// the values are absent, so serving public/ straight from disk during
// development still works.
func ConfigScript(pollInterval time.Duration, historyLimit int) http.HandlerFunc {
	body := []byte(fmt.Sprintf(
		"window.DUOCHAT = { pollIntervalMs: %d, historyLimit: %d };\n",
		pollInterval.Milliseconds(), historyLimit))
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Write(body)
	}
}
