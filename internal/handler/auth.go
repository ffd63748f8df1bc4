package handler

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// DefaultAPIKeyHeader is the request header carrying the API key.
const DefaultAPIKeyHeader = "castrumai-apikey"

// AuthConfig configures the API-key middleware. Exactly one of Key and
// KeyHash should be set; KeyHash wins when both are. KeyHash is a bcrypt
// hash, so the plaintext key never has to appear in config.
type AuthConfig struct {
	Header  string
	Key     string
	KeyHash string
}

func (c AuthConfig) header() string {
	if c.Header == "" {
		return DefaultAPIKeyHeader
	}
	return c.Header
}

// requireAPIKey rejects requests whose API-key header does not match the
// configured key.
func (h *Handler) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		presented := r.Header.Get(h.auth.header())
		if presented == "" || !h.auth.matches(presented) {
			slog.Warn("rejected request with invalid API key", "path", r.URL.Path, "remote", r.RemoteAddr)
			respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid API key"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (c AuthConfig) matches(presented string) bool {
	if c.KeyHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(c.KeyHash), []byte(presented)) == nil
	}
	if c.Key == "" {
		return false
	}
	return len(presented) == len(c.Key) &&
		subtle.ConstantTimeCompare([]byte(presented), []byte(c.Key)) == 1
}
