// Package web serves the embedded single-page panel.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed static
var staticFS embed.FS

//go:embed static/index.html
var indexHTML []byte

// Register mounts the panel at / and its assets under /static.
func Register(r *gin.Engine) {
	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
	})

	assets, err := fs.Sub(staticFS, "static")
	if err != nil {
		// The subtree is compiled in, so this only fires on a broken build.
		panic(err)
	}
	r.StaticFS("/static", http.FS(assets))
}
