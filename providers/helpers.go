package providers

import (
	"strings"

	"golang.org/x/oauth2"
)

// AuthCodeURL builds the provider authorize URL for a challenge:
// response_type=code, client_id, redirect_uri, state, and a single scope
// parameter joined with the provider's separator. The scope is attached as a
// literal parameter rather than through cfg.Scopes because oauth2.Config
// always joins scopes with spaces and several providers (Strava) expect
// commas.
func AuthCodeURL(cfg *oauth2.Config, redirectURI, state, scope string) string {
	c := *cfg
	c.RedirectURL = redirectURI
	c.Scopes = nil

	var opts []oauth2.AuthCodeOption
	if scope != "" {
		opts = append(opts, oauth2.SetAuthURLParam("scope", scope))
	}

	return c.AuthCodeURL(state, opts...)
}

// JoinScopes joins a scope list with the provider's separator convention
// (comma for Strava, space for Jawbone).
func JoinScopes(scopes []string, separator string) string {
	return strings.Join(scopes, separator)
}

// NormalizeCallbackPath applies the provider default when path is empty and
// rejects anything that is not an absolute path. Callback paths carrying a
// scheme or host would let configuration redirect the handshake off-site.
func NormalizeCallbackPath(path, fallback string) (string, error) {
	if path == "" {
		path = fallback
	}
	if !strings.HasPrefix(path, "/") {
		return "", NewConfigurationError("callback path %q must begin with '/'", path)
	}
	if strings.HasPrefix(path, "//") {
		return "", NewConfigurationError("callback path %q must not begin with '//'", path)
	}
	return path, nil
}

// ValidateCredentials checks the client id and secret shared by every
// provider constructor. Missing credentials are a fatal startup error.
func ValidateCredentials(clientID, clientSecret string) error {
	if clientID == "" {
		return NewConfigurationError("client ID is required")
	}
	if clientSecret == "" {
		return NewConfigurationError("client secret is required")
	}
	return nil
}
