// ABOUTME: About page handler rendering embedded markdown via goldmark.
// ABOUTME: Serves GET /about with usage notes for the demo.

package assets

import (
	"bytes"
	"embed"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/yuin/goldmark"
)

//go:embed docs/about.md
var docsFS embed.FS

const aboutShell = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>About duochat</title>
<link rel="stylesheet" href="/style.css">
</head>
<body class="about">
<main>
%s
<p><a href="/">back to the chat</a></p>
</main>
</body>
</html>
`

// AboutHandler renders docs/about.md as HTML.
func AboutHandler(logger *slog.Logger) http.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		mdContent, err := docsFS.ReadFile("docs/about.md")
		if err != nil {
			logger.Error("failed to read about page", "error", err)
			http.Error(w, "about page unavailable", http.StatusInternalServerError)
			return
		}

		var htmlBuf bytes.Buffer
		if err := goldmark.Convert(mdContent, &htmlBuf); err != nil {
			logger.Error("failed to convert markdown", "error", err)
			htmlBuf.WriteString("<p>Failed to render about content.</p>")
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, aboutShell, htmlBuf.String())
	}
}
