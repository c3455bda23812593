// Package auth resolves HTTP requests to sessions. Identity itself is
// owned by an external provider; trackd only consumes "is there a valid
// session" plus the session's email for comment attribution.
package auth

import (
	"net/http"
	"strings"
)

// Session is the caller's authenticated identity.
type Session struct {
	Email string `yaml:"email"`
	Name  string `yaml:"name,omitempty"`
}

// Resolver maps a request to a session. A nil session with nil error
// means the request is unauthenticated.
type Resolver interface {
	Resolve(r *http.Request) (*Session, error)
}

// Static resolves bearer tokens from a fixed map. Used in tests and for
// single-user deployments configured entirely by environment.
type Static map[string]*Session

// Resolve implements Resolver.
func (s Static) Resolve(r *http.Request) (*Session, error) {
	token := BearerToken(r)
	if token == "" {
		return nil, nil
	}
	return s[token], nil
}

// BearerToken extracts the token from an Authorization: Bearer header.
// Returns "" when the header is absent or malformed.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}
