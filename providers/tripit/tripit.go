package tripit

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/extlogin/extlogin/providers"
)

// Compile-time check that Provider implements the providers.Provider interface.
var _ providers.Provider = (*Provider)(nil)

// providerName is the name returned by Provider.Name().
const providerName = "tripit"

// TripIt API endpoints
const (
	authorizeEndpoint = "https://www.tripit.com/oauth/authorize"
	tokenEndpoint     = "https://api.tripit.com/oauth2/token"
	profileEndpoint   = "https://api.tripit.com/v1/get/profile?format=json"
)

// DefaultCallbackPath is the application-relative path TripIt redirects back to.
const DefaultCallbackPath = "/signin-tripit"

const scopeSeparator = ","

// Provider implements the providers.Provider interface for TripIt.
type Provider struct {
	*oauth2.Config
	backchannel  *providers.Backchannel
	callbackPath string
	profileURL   string
}

// Config holds TripIt login configuration.
type Config struct {
	// ClientID is the TripIt API client ID (required).
	ClientID string

	// ClientSecret is the TripIt API client secret (required).
	ClientSecret string

	// CallbackPath overrides the default "/signin-tripit" callback path.
	CallbackPath string

	// Scopes are optional; TripIt grants profile access without any.
	Scopes []string

	// Backchannel configures the outbound transport.
	Backchannel providers.BackchannelConfig
}

// NewProvider creates a new TripIt login provider.
func NewProvider(cfg *Config) (*Provider, error) {
	if err := providers.ValidateCredentials(cfg.ClientID, cfg.ClientSecret); err != nil {
		return nil, err
	}

	callbackPath, err := providers.NormalizeCallbackPath(cfg.CallbackPath, DefaultCallbackPath)
	if err != nil {
		return nil, err
	}

	scopesCopy := make([]string, len(cfg.Scopes))
	copy(scopesCopy, cfg.Scopes)

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
		profileURL:   profileEndpoint,
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

// AuthorizationURL generates the TripIt authorize URL.
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

// FetchProfile retrieves the traveler profile.
func (p *Provider) FetchProfile(ctx context.Context, token *oauth2.Token) (providers.Profile, error) {
	return p.backchannel.FetchProfile(ctx, p.profileURL, token)
}

// MapClaims maps a TripIt profile document to a normalized identity.
// TripIt nests the user id under "@attributes"/"ref" and renders email
// addresses either as a single object or an array; a missing email is an
// absent optional, never a mapping failure.
func (p *Provider) MapClaims(profile providers.Profile) *providers.Identity {
	// Responses may wrap the profile in a "Profile" envelope.
	if inner, ok := profile.Object("Profile"); ok {
		profile = inner
	}

	identity := &providers.Identity{Provider: providerName, Raw: profile}

	identity.UserID, _ = profile.StringAt("@attributes", "ref")
	identity.Name, _ = profile.String("public_display_name")

	if screenName, ok := profile.String("screen_name"); ok {
		identity.SetClaim("screen_name", screenName)
	}
	if photoURL, ok := profile.String("photo_url"); ok {
		identity.AvatarURL = photoURL
	}
	if email, ok := primaryEmail(profile); ok {
		identity.Email = email
	}

	return identity
}

// primaryEmail extracts the traveler's email address, preferring the one
// flagged is_primary and falling back to the first listed.
func primaryEmail(profile providers.Profile) (string, bool) {
	addresses, ok := profile.Object("ProfileEmailAddresses")
	if !ok {
		return "", false
	}
	entries, ok := addresses.Objects("ProfileEmailAddress")
	if !ok {
		return "", false
	}

	for _, entry := range entries {
		if primary, _ := entry.String("is_primary"); primary == "true" {
			if address, ok := entry.String("address"); ok && address != "" {
				return address, true
			}
		}
	}

	for _, entry := range entries {
		if address, ok := entry.String("address"); ok && address != "" {
			return address, true
		}
	}

	return "", false
}
