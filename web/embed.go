package web

import (
	"embed"
	"io/fs"
)

// staticFS holds the browser UI (web/dist) so the server ships as a single binary.
//
//go:embed all:dist
var staticFS embed.FS

// FS returns the UI files rooted at dist, so index.html is at the top level.
func FS() (fs.FS, error) {
	return fs.Sub(staticFS, "dist")
}
