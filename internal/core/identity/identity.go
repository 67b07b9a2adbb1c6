// Package identity resolves the signed-in user from the corporate security
// service, with a mock provider for offline use and a KV-backed cache.
package identity

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

// ErrUnavailable is returned when no identity can be resolved.
var ErrUnavailable = errors.New("identity unavailable")

// UnknownDomain is used when a user's domain cannot be derived.
const UnknownDomain = "UNKNOWN"

// User is the identity of the signed-in user.
type User struct {
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	DisplayName string   `json:"display_name"`
	Department  string   `json:"department"`
	Domain      string   `json:"domain"`
	Groups      []string `json:"groups"`
}

// Name returns the display name, falling back to the username.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// Provider resolves the current user.
type Provider interface {
	// CurrentUser returns the signed-in user.
	CurrentUser(ctx context.Context) (User, error)
	// Available reports whether the provider can currently be reached.
	Available(ctx context.Context) bool
	// Logout ends the remote session. Implementations log remote failures
	// instead of returning them so local logout always proceeds.
	Logout(ctx context.Context) error
}

var dcPart = regexp.MustCompile(`DC=([^,]+)`)

// DomainFromDN derives an upper-cased dotted domain from the DC= components of
// a distinguished name, e.g. "CN=x,DC=corp,DC=example" -> "CORP.EXAMPLE".
func DomainFromDN(dn string) string {
	matches := dcPart.FindAllStringSubmatch(dn, -1)
	if len(matches) == 0 {
		return UnknownDomain
	}

	parts := make([]string, len(matches))
	for i, m := range matches {
		parts[i] = m[1]
	}
	return strings.ToUpper(strings.Join(parts, "."))
}
