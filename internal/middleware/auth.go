package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/getpassword/getpassword-go/internal/crypto"
)

type contextKey string

const sessionIDKey contextKey = "sessionID"

// SessionAuth returns middleware that validates a Bearer session token from the
// Authorization header. Browsers cannot set headers on WebSocket upgrades, so a
// "token" query parameter is accepted as well.
func SessionAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := tokenFromRequest(r)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "missing session token")
				return
			}

			claims, err := crypto.ValidateToken(token, secret)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := WithSessionID(r.Context(), claims.SessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) (string, bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		token, found := strings.CutPrefix(authHeader, "Bearer ")
		return token, found && token != ""
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token, true
	}
	return "", false
}

// WithSessionID stores a session ID in ctx.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// SessionIDFromContext extracts the authenticated session ID from the request context.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok && id != ""
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
