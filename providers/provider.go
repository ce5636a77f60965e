// Package providers defines the interface for external login providers and
// implements provider-specific logic for Strava, Slack, TripIt, and Jawbone.
package providers

import (
	"context"

	"golang.org/x/oauth2"
)

// Provider defines the interface for an external login provider.
// Every provider performs the same authorization-code handshake; only the
// endpoints, scope conventions, and claim mappings differ. The orchestrator
// in the root package is parameterized by this interface.
type Provider interface {
	// Name returns the provider name (e.g., "strava", "slack")
	Name() string

	// CallbackPath returns the application-relative path the provider
	// redirects back to after the user authenticates. Always begins with "/".
	CallbackPath() string

	// AuthorizationURL generates the URL to redirect users for authentication.
	// redirectURI is the absolute callback URL computed from the current
	// request. scopeOverride, when non-empty, is used verbatim as the scope
	// parameter instead of the provider's configured scopes.
	AuthorizationURL(redirectURI, state, scopeOverride string) string

	// ExchangeCode exchanges an authorization code for tokens.
	// Returns standard oauth2.Token. Failures are *TokenExchangeError.
	ExchangeCode(ctx context.Context, code, redirectURI string) (*oauth2.Token, error)

	// FetchProfile retrieves the user's profile document using the token
	// obtained from ExchangeCode. Failures are *ProfileFetchError.
	FetchProfile(ctx context.Context, token *oauth2.Token) (Profile, error)

	// MapClaims converts a raw profile document into a normalized identity.
	// It is a pure function: missing optional fields become absent, never
	// errors. A missing user identifier yields an identity with an empty ID,
	// which the orchestrator treats as a failed handshake.
	MapClaims(profile Profile) *Identity
}

// Identity is the normalized result of a completed handshake.
// It is handed to the host application, which owns it from then on.
type Identity struct {
	// Provider is the name of the provider that authenticated the user
	Provider string

	// UserID is the unique user identifier from the provider
	UserID string

	// Name is the user's display name
	Name string

	// Email is the user's email address, when the provider exposes one
	Email string

	// AvatarURL is the URL of the user's profile picture
	AvatarURL string

	// Claims holds provider-specific attributes as extra claims
	Claims map[string]string

	// Raw is the profile payload the identity was mapped from
	Raw Profile
}

// SetClaim records an extra claim, dropping empty values so that absent
// provider fields never materialize as empty claims.
func (i *Identity) SetClaim(name, value string) {
	if value == "" {
		return
	}
	if i.Claims == nil {
		i.Claims = make(map[string]string)
	}
	i.Claims[name] = value
}

// Claim returns the named extra claim, reporting whether it is present.
func (i *Identity) Claim(name string) (string, bool) {
	v, ok := i.Claims[name]
	return v, ok
}
