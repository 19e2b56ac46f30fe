// Package server serves the local visualization page and the mock artifacts
// it reads.
package server

import (
	"net/http"
	"time"

	"github.com/rs/cors"
)

// IndexFile is served for "/".
const IndexFile = "visualize_data.html"

const cacheControl = "no-store, no-cache, must-revalidate"

// noCacheWriter sets Cache-Control again when the status is written, since
// http.FileServer drops it from error responses.
type noCacheWriter struct {
	http.ResponseWriter
}

func (w noCacheWriter) WriteHeader(code int) {
	w.Header().Set("Cache-Control", cacheControl)
	w.ResponseWriter.WriteHeader(code)
}

// NewStaticHandler serves files under dir with caching disabled and CORS
// open to every origin, so the page always shows the latest mock run.
func NewStaticHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", cacheControl)
		if r.URL.Path == "/" || r.URL.Path == "" {
			r = r.Clone(r.Context())
			r.URL.Path = "/" + IndexFile
		}
		files.ServeHTTP(noCacheWriter{w}, r)
	})

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(h)
}

// NewStaticServer returns the http.Server for the static handler.
func NewStaticServer(addr, dir string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewStaticHandler(dir),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
