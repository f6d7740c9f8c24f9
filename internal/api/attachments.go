package api

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

// AssetHandler serves static images below a public directory. It is
// read-only; assets are deployed with the content.
type AssetHandler struct {
	root string
}

// NewAssetHandler creates a handler rooted at the public images directory.
func NewAssetHandler(root string) *AssetHandler {
	return &AssetHandler{root: filepath.Clean(root)}
}

// safePath validates that rel stays below the asset root and names no
// hidden file, and returns the absolute path.
func (h *AssetHandler) safePath(rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("asset path is required")
	}
	if strings.Contains(rel, "\\") {
		return "", fmt.Errorf("invalid asset path: %s", rel)
	}
	// Reject traversal and hidden files instead of cleaning them away.
	for _, seg := range strings.Split(rel, "/") {
		if seg == ".." || strings.HasPrefix(seg, ".") {
			return "", fmt.Errorf("invalid asset path: %s", rel)
		}
	}
	cleaned := strings.TrimPrefix(path.Clean("/"+rel), "/")
	if cleaned == "" {
		return "", fmt.Errorf("asset path is required")
	}
	abs := filepath.Join(h.root, filepath.FromSlash(cleaned))
	// Double-check the resolved path is under the asset root.
	if !strings.HasPrefix(abs, h.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("path escapes asset directory")
	}
	return abs, nil
}

// ServeFile handles GET /images/*.
func (h *AssetHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	abs, err := h.safePath(chi.URLParam(r, "*"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	info, statErr := os.Stat(abs)
	if statErr != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}
