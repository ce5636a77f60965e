// Package mock provides a mock implementation of the Provider interface for testing.
package mock

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"golang.org/x/oauth2"

	"github.com/extlogin/extlogin/providers"
)

// Compile-time check that MockProvider implements the providers.Provider interface.
var _ providers.Provider = (*MockProvider)(nil)

// MockProvider is a mock implementation of the Provider interface for testing
type MockProvider struct {
	// NameFunc is called when Name() is invoked
	NameFunc func() string

	// CallbackPathFunc is called when CallbackPath() is invoked
	CallbackPathFunc func() string

	// AuthorizationURLFunc is called when AuthorizationURL() is invoked
	AuthorizationURLFunc func(redirectURI, state, scopeOverride string) string

	// ExchangeCodeFunc is called when ExchangeCode() is invoked
	ExchangeCodeFunc func(ctx context.Context, code, redirectURI string) (*oauth2.Token, error)

	// FetchProfileFunc is called when FetchProfile() is invoked
	FetchProfileFunc func(ctx context.Context, token *oauth2.Token) (providers.Profile, error)

	// MapClaimsFunc is called when MapClaims() is invoked
	MapClaimsFunc func(profile providers.Profile) *providers.Identity

	// CallCounts tracks how many times each method was called
	CallCounts map[string]int

	// mu protects CallCounts from concurrent access
	mu sync.RWMutex
}

// NewMockProvider creates a new mock provider with default implementations
func NewMockProvider() *MockProvider {
	return &MockProvider{
		CallCounts: make(map[string]int),
		NameFunc: func() string {
			return "mock"
		},
		CallbackPathFunc: func() string {
			return "/signin-mock"
		},
		AuthorizationURLFunc: func(redirectURI, state, scopeOverride string) string {
			return fmt.Sprintf("https://mock.example.com/authorize?response_type=code&redirect_uri=%s&scope=%s&state=%s",
				url.QueryEscape(redirectURI), url.QueryEscape(scopeOverride), url.QueryEscape(state))
		},
		ExchangeCodeFunc: func(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
			return &oauth2.Token{
				AccessToken: "mock-access-token",
				TokenType:   "Bearer",
			}, nil
		},
		FetchProfileFunc: func(ctx context.Context, token *oauth2.Token) (providers.Profile, error) {
			return providers.Profile{
				"id":   "mock-user-123",
				"name": "Mock User",
			}, nil
		},
		MapClaimsFunc: func(profile providers.Profile) *providers.Identity {
			identity := &providers.Identity{Provider: "mock", Raw: profile}
			identity.UserID, _ = profile.String("id")
			identity.Name, _ = profile.String("name")
			return identity
		},
	}
}

// Name implements providers.Provider
func (m *MockProvider) Name() string {
	m.recordCall("Name")
	return m.NameFunc()
}

// CallbackPath implements providers.Provider
func (m *MockProvider) CallbackPath() string {
	m.recordCall("CallbackPath")
	return m.CallbackPathFunc()
}

// AuthorizationURL implements providers.Provider
func (m *MockProvider) AuthorizationURL(redirectURI, state, scopeOverride string) string {
	m.recordCall("AuthorizationURL")
	return m.AuthorizationURLFunc(redirectURI, state, scopeOverride)
}

// ExchangeCode implements providers.Provider
func (m *MockProvider) ExchangeCode(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
	m.recordCall("ExchangeCode")
	return m.ExchangeCodeFunc(ctx, code, redirectURI)
}

// FetchProfile implements providers.Provider
func (m *MockProvider) FetchProfile(ctx context.Context, token *oauth2.Token) (providers.Profile, error) {
	m.recordCall("FetchProfile")
	return m.FetchProfileFunc(ctx, token)
}

// MapClaims implements providers.Provider
func (m *MockProvider) MapClaims(profile providers.Profile) *providers.Identity {
	m.recordCall("MapClaims")
	return m.MapClaimsFunc(profile)
}

// CallCount returns how many times the named method was called
func (m *MockProvider) CallCount(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.CallCounts[method]
}

func (m *MockProvider) recordCall(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCounts[method]++
}
