package slack

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/extlogin/extlogin/providers"
)

// Compile-time check that Provider implements the providers.Provider interface.
var _ providers.Provider = (*Provider)(nil)

// providerName is the name returned by Provider.Name().
const providerName = "slack"

// Slack API endpoints
const (
	authorizeEndpoint = "https://slack.com/oauth/authorize"
	tokenEndpoint     = "https://slack.com/api/oauth.access"
	identityEndpoint  = "https://slack.com/api/auth.test"
)

// DefaultCallbackPath is the application-relative path Slack redirects back to.
const DefaultCallbackPath = "/signin-slack"

const scopeSeparator = ","

// Provider implements the providers.Provider interface for Slack.
type Provider struct {
	*oauth2.Config
	backchannel  *providers.Backchannel
	callbackPath string
	profileURL   string
}

// Config holds Slack login configuration.
type Config struct {
	// ClientID is the Slack app client ID (required).
	ClientID string

	// ClientSecret is the Slack app client secret (required).
	ClientSecret string

	// CallbackPath overrides the default "/signin-slack" callback path.
	CallbackPath string

	// Scopes are optional custom scopes (defaults to ["identify"]).
	Scopes []string

	// Backchannel configures the outbound transport.
	Backchannel providers.BackchannelConfig
}

// NewProvider creates a new Slack login provider.
func NewProvider(cfg *Config) (*Provider, error) {
	if err := providers.ValidateCredentials(cfg.ClientID, cfg.ClientSecret); err != nil {
		return nil, err
	}

	callbackPath, err := providers.NormalizeCallbackPath(cfg.CallbackPath, DefaultCallbackPath)
	if err != nil {
		return nil, err
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{"identify"}
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
		profileURL:   identityEndpoint,
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

// AuthorizationURL generates the Slack authorize URL.
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

// FetchProfile retrieves the authenticated user via auth.test.
func (p *Provider) FetchProfile(ctx context.Context, token *oauth2.Token) (providers.Profile, error) {
	return p.backchannel.FetchProfile(ctx, p.profileURL, token)
}

// MapClaims maps a Slack auth.test document to a normalized identity:
// user_id becomes the external id, user the display name, and the team
// attributes become extra claims.
func (p *Provider) MapClaims(profile providers.Profile) *providers.Identity {
	identity := &providers.Identity{Provider: providerName, Raw: profile}

	identity.UserID, _ = profile.String("user_id")
	identity.Name, _ = profile.String("user")

	if teamID, ok := profile.String("team_id"); ok {
		identity.SetClaim("team_id", teamID)
	}
	if team, ok := profile.String("team"); ok {
		identity.SetClaim("team", team)
	}
	if teamURL, ok := profile.String("url"); ok {
		identity.SetClaim("team_url", teamURL)
	}

	return identity
}
