package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Gate decides whether a presented credential grants admin access.
// Swap the implementation to plug in a real token system.
type Gate interface {
	Authorize(credential string) bool
}

// StaticGate accepts exactly one shared secret.
type StaticGate struct {
	secret string
}

// NewStaticGate returns a Gate accepting only secret. An empty secret
// rejects every credential.
func NewStaticGate(secret string) *StaticGate {
	return &StaticGate{secret: secret}
}

// Authorize reports whether credential equals the configured secret.
func (g *StaticGate) Authorize(credential string) bool {
	if g.secret == "" || credential == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(credential), []byte(g.secret)) == 1
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. ok is false for a missing header, another scheme or an empty token.
func BearerToken(r *http.Request) (token string, ok bool) {
	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}
