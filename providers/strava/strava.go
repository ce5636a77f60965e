package strava

import (
	"context"
	"strings"

	"golang.org/x/oauth2"

	"github.com/extlogin/extlogin/providers"
)

// Compile-time check that Provider implements the providers.Provider interface.
var _ providers.Provider = (*Provider)(nil)

// providerName is the name returned by Provider.Name().
const providerName = "strava"

// Strava API endpoints
const (
	authorizeEndpoint = "https://www.strava.com/oauth/authorize"
	tokenEndpoint     = "https://www.strava.com/oauth/token"
	athleteEndpoint   = "https://www.strava.com/api/v3/athlete"
)

// DefaultCallbackPath is the application-relative path Strava redirects back to.
const DefaultCallbackPath = "/signin-strava"

// Strava expects the scope parameter comma separated.
const scopeSeparator = ","

// Provider implements the providers.Provider interface for Strava.
type Provider struct {
	*oauth2.Config
	backchannel  *providers.Backchannel
	callbackPath string
	profileURL   string
}

// Config holds Strava login configuration.
type Config struct {
	// ClientID is the Strava supplied client ID (required).
	ClientID string

	// ClientSecret is the Strava supplied client secret (required).
	ClientSecret string

	// CallbackPath overrides the default "/signin-strava" callback path.
	CallbackPath string

	// Scopes are optional custom scopes (defaults to ["view_private"]).
	Scopes []string

	// Backchannel configures the outbound transport (timeout, response
	// buffer cap, certificate pinning).
	Backchannel providers.BackchannelConfig
}

// NewProvider creates a new Strava login provider.
func NewProvider(cfg *Config) (*Provider, error) {
	if err := providers.ValidateCredentials(cfg.ClientID, cfg.ClientSecret); err != nil {
		return nil, err
	}

	callbackPath, err := providers.NormalizeCallbackPath(cfg.CallbackPath, DefaultCallbackPath)
	if err != nil {
		return nil, err
	}

	// Default scopes if none provided
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{"view_private"}
	}
	scopesCopy := make([]string, len(scopes))
	copy(scopesCopy, scopes)

	backchannel, err := providers.NewBackchannel(cfg.Backchannel)
	if err != nil {
		return nil, err
	}

	return &Provider{
		Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       scopesCopy,
			Endpoint: oauth2.Endpoint{
				AuthURL:  authorizeEndpoint,
				TokenURL: tokenEndpoint,
			},
		},
		backchannel:  backchannel,
		callbackPath: callbackPath,
		profileURL:   athleteEndpoint,
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return providerName
}

// CallbackPath returns the configured callback path.
func (p *Provider) CallbackPath() string {
	return p.callbackPath
}

// AuthorizationURL generates the Strava authorize URL. When scopeOverride is
// set it is used verbatim; otherwise the configured scopes are comma joined.
func (p *Provider) AuthorizationURL(redirectURI, state, scopeOverride string) string {
	scope := scopeOverride
	if scope == "" {
		scope = providers.JoinScopes(p.Scopes, scopeSeparator)
	}
	return providers.AuthCodeURL(p.Config, redirectURI, state, scope)
}

// ExchangeCode exchanges an authorization code for tokens.
func (p *Provider) ExchangeCode(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
	return p.backchannel.Exchange(ctx, p.Config, code, redirectURI)
}

// FetchProfile retrieves the authenticated athlete.
func (p *Provider) FetchProfile(ctx context.Context, token *oauth2.Token) (providers.Profile, error) {
	return p.backchannel.FetchProfile(ctx, p.profileURL, token)
}

// MapClaims maps a Strava athlete document to a normalized identity.
// The athlete id is the external user id; first and last name form the
// display name; the profile picture URLs become the avatar and an extra claim.
func (p *Provider) MapClaims(profile providers.Profile) *providers.Identity {
	identity := &providers.Identity{Provider: providerName, Raw: profile}

	identity.UserID, _ = profile.String("id")

	first, _ := profile.String("firstname")
	last, _ := profile.String("lastname")
	identity.Name = strings.TrimSpace(first + " " + last)

	if username, ok := profile.String("username"); ok {
		identity.SetClaim("username", username)
	}
	if avatar, ok := profile.String("profile"); ok {
		identity.AvatarURL = avatar
	}
	if medium, ok := profile.String("profile_medium"); ok {
		identity.SetClaim("avatar_url_medium", medium)
	}
	if email, ok := profile.String("email"); ok {
		identity.Email = email
	}

	return identity
}
