package middleware

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	gateway "github.com/danilofalcao/torchserve-gateway/internal/api/gateway/v1"
)

// withCors answers preflight requests and adds CORS headers. An empty origin
// list allows any origin.
func withCors(next http.Handler, allowedOrigins []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, origin)) {
			h := w.Header()
			if len(allowedOrigins) == 0 {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Allow-Methods", strings.Join([]string{http.MethodGet, http.MethodPost, http.MethodOptions}, ", "))
			h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-API-Key, "+RequestIDHeader)
			h.Set("Access-Control-Expose-Headers", RequestIDHeader)
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(gateway.ErrorResponse{Detail: detail})
}
