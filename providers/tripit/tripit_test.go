package tripit

import (
	"net/url"
	"strings"
	"testing"

	"github.com/extlogin/extlogin/providers"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := NewProvider(&Config{ClientID: "client-123", ClientSecret: "secret-456"})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	return p
}

func TestProviderDefaults(t *testing.T) {
	p := newTestProvider(t)

	if p.Name() != "tripit" {
		t.Errorf("Name() = %q", p.Name())
	}
	if p.CallbackPath() != "/signin-tripit" {
		t.Errorf("CallbackPath() = %q", p.CallbackPath())
	}
	if len(p.Scopes) != 0 {
		t.Errorf("Scopes = %v, want none", p.Scopes)
	}
}

func TestAuthorizationURLWithoutScopes(t *testing.T) {
	p := newTestProvider(t)

	raw := p.AuthorizationURL("https://app.example.com/signin-tripit", "state-abc", "")

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse() error = %v", err)
	}
	if u.Host != "www.tripit.com" || u.Path != "/oauth/authorize" {
		t.Errorf("authorize endpoint = %s%s", u.Host, u.Path)
	}
	// No configured scopes means no scope parameter at all.
	if strings.Contains(raw, "scope=") {
		t.Errorf("URL should carry no scope parameter: %s", raw)
	}
}

func TestMapClaims(t *testing.T) {
	p := newTestProvider(t)

	tests := []struct {
		name      string
		payload   string
		wantID    string
		wantEmail string
	}{
		{
			name: "enveloped profile with email array",
			payload: `{"Profile": {
				"@attributes": {"ref": "ref-123"},
				"public_display_name": "Alice Doe",
				"screen_name": "alice",
				"ProfileEmailAddresses": {"ProfileEmailAddress": [
					{"address": "old@example.com", "is_primary": "false"},
					{"address": "alice@example.com", "is_primary": "true"}
				]}
			}}`,
			wantID:    "ref-123",
			wantEmail: "alice@example.com",
		},
		{
			name: "single email object",
			payload: `{"Profile": {
				"@attributes": {"ref": "ref-123"},
				"ProfileEmailAddresses": {"ProfileEmailAddress": {"address": "alice@example.com"}}
			}}`,
			wantID:    "ref-123",
			wantEmail: "alice@example.com",
		},
		{
			name: "no primary falls back to first",
			payload: `{"Profile": {
				"@attributes": {"ref": "ref-123"},
				"ProfileEmailAddresses": {"ProfileEmailAddress": [
					{"address": "first@example.com"},
					{"address": "second@example.com"}
				]}
			}}`,
			wantID:    "ref-123",
			wantEmail: "first@example.com",
		},
		{
			name:      "missing email is not an error",
			payload:   `{"Profile": {"@attributes": {"ref": "ref-123"}}}`,
			wantID:    "ref-123",
			wantEmail: "",
		},
		{
			name:      "unwrapped profile",
			payload:   `{"@attributes": {"ref": "ref-456"}}`,
			wantID:    "ref-456",
			wantEmail: "",
		},
		{
			name:    "missing ref",
			payload: `{"Profile": {"public_display_name": "Alice"}}`,
			wantID:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile, err := providers.ParseProfile([]byte(tt.payload))
			if err != nil {
				t.Fatalf("ParseProfile() error = %v", err)
			}

			id := p.MapClaims(profile)
			if id.UserID != tt.wantID {
				t.Errorf("UserID = %q, want %q", id.UserID, tt.wantID)
			}
			if id.Email != tt.wantEmail {
				t.Errorf("Email = %q, want %q", id.Email, tt.wantEmail)
			}
		})
	}
}

func TestMapClaimsOptionalFields(t *testing.T) {
	p := newTestProvider(t)

	profile, err := providers.ParseProfile([]byte(`{"Profile": {
		"@attributes": {"ref": "ref-123"},
		"public_display_name": "Alice Doe",
		"screen_name": "alice",
		"photo_url": "https://pics.example.com/alice.jpg"
	}}`))
	if err != nil {
		t.Fatalf("ParseProfile() error = %v", err)
	}

	id := p.MapClaims(profile)
	if id.Name != "Alice Doe" {
		t.Errorf("Name = %q", id.Name)
	}
	if id.AvatarURL != "https://pics.example.com/alice.jpg" {
		t.Errorf("AvatarURL = %q", id.AvatarURL)
	}
	if v, _ := id.Claim("screen_name"); v != "alice" {
		t.Errorf("screen_name claim = %q", v)
	}
}
