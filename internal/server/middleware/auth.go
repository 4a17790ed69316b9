package middleware

import (
	"net/http"
	"strings"

	logutils "github.com/danilofalcao/torchserve-gateway/internal/utils/logger"
)

func withApiKeyAuth(next http.Handler, apikeyValidation ApiKeyValidationFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		// preflight requests never carry credentials
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		apiKey := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if apiKey == "" {
			apiKey = r.Header.Get("X-API-Key")
		}

		if apiKey == "" {
			logutils.FromContext(ctx).Warn(ctx, "No API Key provided")
			writeError(w, http.StatusUnauthorized, "Missing API key")
			return
		}

		if !apikeyValidation(apiKey) {
			logutils.FromContext(ctx).Warn(ctx, "Invalid API Key provided")
			writeError(w, http.StatusForbidden, "Invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}
