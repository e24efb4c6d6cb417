package middleware

import (
	"net/http"
	"strings"
)

// CORS limits browser access to the configured widget origins. An entry
// of "*" admits any Origin, echoed back rather than wildcarded.
func CORS(allowed []string) func(http.Handler) http.Handler {
	any := false
	origins := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		switch o = strings.TrimSpace(o); o {
		case "":
		case "*":
			any = true
		default:
			origins[o] = struct{}{}
		}
	}

	const allowHeaders = "Content-Type, X-Session-Id"
	const allowMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if _, ok := origins[origin]; origin != "" && (any || ok) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Headers", allowHeaders)
				w.Header().Set("Access-Control-Allow-Methods", allowMethods)
				w.Header().Set("Access-Control-Max-Age", "600")
			}

			// Preflight requests end here.
			if r.Method == http.MethodOptions && origin != "" && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
