package handler

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// PagesConfig holds configuration for the PagesHandler.
type PagesConfig struct {
	// SiteDir is the directory holding index.html, admin/ and other assets.
	// Corresponds to the SITE_DIR environment variable.
	SiteDir string
}

// PagesHandler serves the public site and the admin panel pages.
type PagesHandler struct {
	cfg      PagesConfig
	notFound http.HandlerFunc
}

// NewPagesHandler creates a PagesHandler. notFound answers requests that do
// not resolve to a file.
func NewPagesHandler(cfg PagesConfig, notFound http.HandlerFunc) *PagesHandler {
	return &PagesHandler{cfg: cfg, notFound: notFound}
}

// Page returns a handler that always serves the file at rel inside SiteDir.
func (h *PagesHandler) Page(rel string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.serveFile(w, r, rel)
	}
}

// Static serves any other GET/HEAD request from SiteDir when it names a
// regular file. Dot-files, directories and other methods fall through to
// the not-found handler.
func (h *PagesHandler) Static(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		h.notFound(w, r)
		return
	}
	rel := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if rel == "" || hasHiddenSegment(rel) {
		h.notFound(w, r)
		return
	}
	h.serveFile(w, r, rel)
}

func (h *PagesHandler) serveFile(w http.ResponseWriter, r *http.Request, rel string) {
	absDir, err := filepath.Abs(h.cfg.SiteDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	filePath := filepath.Join(absDir, filepath.FromSlash(rel))

	// Confirm the resolved path is still within SiteDir.
	if !strings.HasPrefix(filePath, absDir+string(filepath.Separator)) {
		h.notFound(w, r)
		return
	}

	f, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			h.notFound(w, r)
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		h.notFound(w, r)
		return
	}

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func hasHiddenSegment(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}
