package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/osa911/portfolio/internal/utils"

	"github.com/gin-gonic/gin"
)

// EntryDocument bootstraps the single-page application
const EntryDocument = "index.html"

// StaticHandler serves the built SPA, falling back to the entry document so
// client-side routes resolve
type StaticHandler struct {
	root string
}

func NewStaticHandler(root string) *StaticHandler {
	return &StaticHandler{root: root}
}

// Serve handles every request no API route matched
func (h *StaticHandler) Serve(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		utils.HandleError(c, http.StatusNotFound, "Not found")
		return
	}

	c.File(ResolveStaticPath(h.root, c.Request.URL.Path))
}

// ResolveStaticPath maps a request path to the file to serve: the matching
// regular file under root, or the entry document.
func ResolveStaticPath(root, requestPath string) string {
	entry := filepath.Join(root, EntryDocument)

	// path.Clean on a rooted path removes every ".." that would escape root
	cleaned := strings.TrimPrefix(path.Clean("/"+requestPath), "/")
	if cleaned == "" {
		return entry
	}

	candidate := filepath.Join(root, filepath.FromSlash(cleaned))
	info, err := os.Stat(candidate)
	if err != nil || !info.Mode().IsRegular() {
		return entry
	}
	return candidate
}
