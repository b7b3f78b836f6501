// internal/fileserver/fileserver.go
package fileserver

import (
	"log"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Handler serves files from a single root directory. Requests that resolve
// outside the root are rejected before any filesystem access happens.
type Handler struct {
	root string
}

// New returns a handler serving the tree rooted at root. The root is resolved
// to an absolute path once, at construction time.
func New(root string) (*Handler, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &Handler{root: abs}, nil
}

// Root returns the absolute directory the handler serves from.
func (h *Handler) Root() string { return h.root }

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	upath := r.URL.Path
	if !strings.HasPrefix(upath, "/") {
		upath = "/" + upath
	}
	if containsDotDot(upath) {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}

	name := filepath.Join(h.root, filepath.FromSlash(path.Clean(upath)))
	if !h.within(name) {
		http.NotFound(w, r)
		return
	}

	info, err := os.Stat(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if info.IsDir() {
		h.serveDir(w, r, name, upath)
		return
	}
	h.serveFile(w, r, name, info)
}

func (h *Handler) serveDir(w http.ResponseWriter, r *http.Request, name, upath string) {
	// Directories are always addressed with a trailing slash so that
	// relative links in the listing resolve correctly.
	if !strings.HasSuffix(r.URL.Path, "/") {
		http.Redirect(w, r, path.Clean(upath)+"/", http.StatusMovedPermanently)
		return
	}

	for _, index := range []string{"index.html", "index.htm"} {
		candidate := filepath.Join(name, index)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			h.serveFile(w, r, candidate, info)
			return
		}
	}

	entries, err := os.ReadDir(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := writeListing(w, path.Clean(upath), entries); err != nil {
		log.Printf("error writing directory listing for %s: %v", upath, err)
	}
}

func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request, name string, info os.FileInfo) {
	f, err := os.Open(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	ctype := mime.TypeByExtension(filepath.Ext(name))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ctype)
	http.ServeContent(w, r, name, info.ModTime(), f)
}

// within reports whether name sits at or beneath the handler's root.
func (h *Handler) within(name string) bool {
	rel, err := filepath.Rel(h.root, name)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel))
}

func containsDotDot(p string) bool {
	if !strings.Contains(p, "..") {
		return false
	}
	for _, part := range strings.FieldsFunc(p, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return true
		}
	}
	return false
}
