// Package static serves site assets from the site root.
package static

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/storage"
)

const fallbackType = "application/octet-stream"

var contentTypes = map[string]string{
	".html": "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".json": "application/json",
	".svg":  "image/svg+xml",
}

// ContentType returns the MIME type for name from the fixed extension table.
func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return fallbackType
}

// Resolver maps request paths to files under the site root.
type Resolver struct {
	fs         storage.Provider
	defaultDoc string
}

// New creates a Resolver. defaultDoc is served for "/".
func New(fs storage.Provider, defaultDoc string) *Resolver {
	return &Resolver{fs: fs, defaultDoc: defaultDoc}
}

// Resolve turns a request URI into a path relative to the site root.
// The query string is dropped and the path is URL-decoded and cleaned, so
// ".." segments cannot climb above the root.
func (r *Resolver) Resolve(requestURI string) (string, error) {
	p, _, _ := strings.Cut(requestURI, "?")
	decoded, err := url.PathUnescape(p)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrNotFound, err)
	}
	if decoded == "/" {
		decoded = "/" + r.defaultDoc
	}
	rel := strings.TrimPrefix(path.Clean("/"+decoded), "/")
	return filepath.FromSlash(rel), nil
}

// ServeHTTP streams the resolved file, or answers 404 in plain text.
func (r *Resolver) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	rel, err := r.Resolve(req.URL.RequestURI())
	if err != nil {
		notFound(w)
		return
	}
	f, info, err := r.fs.Open(rel)
	if err != nil {
		notFound(w)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", ContentType(rel))
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.WriteHeader(http.StatusOK)
	if req.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, f); err != nil {
		slog.Debug("static: copy aborted", slog.String("path", rel), slog.String("error", err.Error()))
	}
}

func notFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte("Not found"))
}
