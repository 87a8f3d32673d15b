package api

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/teamcal/internal/middleware"
)

const indexFile = "index.html"

// staticHandler serves the embedded UI for unmatched GET requests. Unknown paths fall back
// to index.html so client-side routes such as /join/ROBOT1 resolve. API paths and other
// methods keep the JSON 404.
func staticHandler(files fs.FS) gin.HandlerFunc {
	if files == nil {
		return middleware.NotFoundHandler
	}
	fileServer := http.FileServer(http.FS(files))

	return func(c *gin.Context) {
		reqPath := c.Request.URL.Path
		if (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) ||
			reqPath == "/api" || strings.HasPrefix(reqPath, "/api/") {
			middleware.NotFoundHandler(c)
			return
		}

		name := strings.TrimPrefix(path.Clean(reqPath), "/")
		if name == "" {
			name = indexFile
		}
		if _, err := fs.Stat(files, name); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				middleware.NotFoundHandler(c)
				return
			}
			name = indexFile
		}

		if name == indexFile {
			serveIndex(c, files)
			return
		}
		fileServer.ServeHTTP(c.Writer, c.Request)
	}
}

// serveIndex writes index.html directly; http.FileServer would redirect /index.html to /.
func serveIndex(c *gin.Context, files fs.FS) {
	body, err := fs.ReadFile(files, indexFile)
	if err != nil {
		middleware.NotFoundHandler(c)
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "text/html; charset=utf-8", body)
}
