package app

import (
	"net/http"
	"os"
	"path"
	"path/filepath"

	apperrors "officehub/pkg/errors"
	httputil "officehub/pkg/http"
)

func notFound(w http.ResponseWriter, _ *http.Request) {
	_ = httputil.WriteError(w, apperrors.NotFound("Route"))
}

func uploadsHandler(dir string) http.Handler {
	if dir == "" {
		return http.HandlerFunc(notFound)
	}
	return http.FileServer(noListingFS{http.Dir(dir)})
}

// frontendHandler serves the built single page app from dir and falls back to
// index.html for client side routes.
func frontendHandler(dir string) http.Handler {
	if dir == "" {
		return http.HandlerFunc(notFound)
	}
	files := http.FileServer(noListingFS{http.Dir(dir)})
	index := filepath.Join(dir, "index.html")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			notFound(w, r)
			return
		}

		name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			files.ServeHTTP(w, r)
			return
		}
		if _, err := os.Stat(index); err != nil {
			notFound(w, r)
			return
		}
		http.ServeFile(w, r, index)
	})
}

// noListingFS hides directory listings.
type noListingFS struct {
	fs http.FileSystem
}

func (n noListingFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		index, err := n.fs.Open(path.Join(name, "index.html"))
		if err != nil {
			_ = f.Close()
			return nil, os.ErrNotExist
		}
		_ = index.Close()
	}
	return f, nil
}
