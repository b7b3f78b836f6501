// internal/fileserver/middleware.go
package fileserver

import (
	"net/http"
	"time"
)

// NoCache wraps a handler and marks every response as uncacheable. Useful
// when the served tree is edited live and stale browser caches get in the way.
func NoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", time.Now().UTC().Format(http.TimeFormat))
		next.ServeHTTP(w, r)
	})
}
