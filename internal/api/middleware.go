// Package api implements the scenaview REST API using chi.
package api

import (
	"net/http"
	"strings"

	"github.com/starford/scenaview/internal/catalog"
)

// ETagMiddleware tags responses derived only from catalog content with the
// catalog checksum and answers matching If-None-Match requests with 304.
// The tag includes the negotiated encoding.
func ETagMiddleware(cat *catalog.Catalog) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			enc := "json"
			if wantsMsgpack(r) {
				enc = "msgpack"
			}
			tag := `"` + cat.Checksum() + "-" + enc + `"`

			w.Header().Set("ETag", tag)
			w.Header().Add("Vary", "Accept")
			if etagMatches(r.Header.Get("If-None-Match"), tag) {
				w.WriteHeader(http.StatusNotModified)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func etagMatches(header, tag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		c := strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if c == tag || c == "*" {
			return true
		}
	}
	return false
}
