package jawbone

import (
	"context"
	"strings"

	"golang.org/x/oauth2"

	"github.com/extlogin/extlogin/providers"
)

// Compile-time check that Provider implements the providers.Provider interface.
var _ providers.Provider = (*Provider)(nil)

// providerName is the name returned by Provider.Name().
const providerName = "jawbone"

// Jawbone API endpoints
const (
	authorizeEndpoint = "https://jawbone.com/auth/oauth2/auth"
	tokenEndpoint     = "https://jawbone.com/auth/oauth2/token"
	userEndpoint      = "https://jawbone.com/nudge/api/v.1.1/users/@me"
)

// DefaultCallbackPath is the application-relative path Jawbone redirects back to.
const DefaultCallbackPath = "/signin-jawbone"

// Jawbone expects the scope parameter space separated.
const scopeSeparator = " "

// Provider implements the providers.Provider interface for Jawbone UP.
type Provider struct {
	*oauth2.Config
	backchannel  *providers.Backchannel
	callbackPath string
	profileURL   string
}

// Config holds Jawbone login configuration.
type Config struct {
	// ClientID is the Jawbone app key (required).
	ClientID string

	// ClientSecret is the Jawbone app secret (required).
	ClientSecret string

	// CallbackPath overrides the default "/signin-jawbone" callback path.
	CallbackPath string

	// Scopes are optional custom scopes (defaults to ["basic_read"]).
	Scopes []string

	// Backchannel configures the outbound transport.
	Backchannel providers.BackchannelConfig
}

// NewProvider creates a new Jawbone login provider.
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
		scopes = []string{"basic_read"}
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
		profileURL:   userEndpoint,
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

// AuthorizationURL generates the Jawbone authorize URL with space-joined scopes.
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

// FetchProfile retrieves the authenticated user.
func (p *Provider) FetchProfile(ctx context.Context, token *oauth2.Token) (providers.Profile, error) {
	return p.backchannel.FetchProfile(ctx, p.profileURL, token)
}

// MapClaims maps a Jawbone user document to a normalized identity.
// Jawbone wraps every response in a "data" envelope; the xid inside it is the
// external user id.
func (p *Provider) MapClaims(profile providers.Profile) *providers.Identity {
	if data, ok := profile.Object("data"); ok {
		profile = data
	}

	identity := &providers.Identity{Provider: providerName, Raw: profile}

	identity.UserID, _ = profile.String("xid")

	first, _ := profile.String("first")
	last, _ := profile.String("last")
	identity.Name = strings.TrimSpace(first + " " + last)

	if image, ok := profile.String("image"); ok {
		identity.AvatarURL = image
	}
	if weight, ok := profile.String("weight"); ok {
		identity.SetClaim("weight", weight)
	}
	if height, ok := profile.String("height"); ok {
		identity.SetClaim("height", height)
	}

	return identity
}
