// Package assets serves the embedded browser client and the about page.
// The client under public/ is plain HTML/JS/CSS compiled into the binary
// via go:embed, so the server ships as a single file.
package assets

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed all:public
var publicFS embed.FS

// Handler returns an http.Handler serving the embedded browser client.
// "/" resolves to public/index.html.
func Handler() http.Handler {
	sub, err := fs.Sub(publicFS, "public")
	if err != nil {
		// The embed directive guarantees the directory exists.
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
