package providers

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const (
	// DefaultTimeout is the default timeout for back channel communications
	// with a provider.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxResponseBytes caps how much of a provider response is read.
	// Hostile or broken endpoints must not be able to exhaust memory.
	DefaultMaxResponseBytes = 10 * 1024 * 1024
)

// CertificateValidator pins the certificates used in back channel
// communications with a provider. It has the signature of
// tls.Config.VerifyPeerCertificate and runs in addition to the standard
// chain validation.
type CertificateValidator func(rawCerts [][]byte, verifiedChains [][]*x509.Certificate) error

// BackchannelConfig configures the transport used for the two outbound calls
// of a handshake: the code exchange and the profile fetch.
type BackchannelConfig struct {
	// Timeout bounds each outbound call (default: 60s).
	Timeout time.Duration

	// MaxResponseBytes caps the profile response size (default: 10MB).
	MaxResponseBytes int64

	// CertificateValidator optionally pins provider certificates.
	CertificateValidator CertificateValidator

	// Transport is an optional custom transport. When a CertificateValidator
	// is configured the transport must be an *http.Transport so the validator
	// can be applied; anything else fails construction.
	Transport http.RoundTripper
}

// Backchannel performs the outbound HTTP calls of a handshake. The underlying
// client and its connection pool are created once and shared by every
// concurrent handshake; nothing is reconfigured per request.
type Backchannel struct {
	client           *http.Client
	maxResponseBytes int64
}

// NewBackchannel creates a backchannel client from cfg.
// A certificate validator that cannot be applied to the configured transport
// is a ConfigurationError, never silently ignored.
func NewBackchannel(cfg BackchannelConfig) (*Backchannel, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	maxBytes := cfg.MaxResponseBytes
	if maxBytes == 0 {
		maxBytes = DefaultMaxResponseBytes
	}

	transport := cfg.Transport
	if cfg.CertificateValidator != nil {
		if transport == nil {
			transport = http.DefaultTransport
		}
		base, ok := transport.(*http.Transport)
		if !ok {
			return nil, NewConfigurationError(
				"certificate validator cannot be applied to transport of type %T", transport)
		}

		pinned := base.Clone()
		if pinned.TLSClientConfig == nil {
			pinned.TLSClientConfig = &tls.Config{}
		} else {
			pinned.TLSClientConfig = pinned.TLSClientConfig.Clone()
		}
		pinned.TLSClientConfig.VerifyPeerCertificate = cfg.CertificateValidator
		transport = pinned
	}

	return &Backchannel{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		maxResponseBytes: maxBytes,
	}, nil
}

// HTTPClient exposes the shared client so providers can route the oauth2
// exchange through the same pinned, bounded transport.
func (b *Backchannel) HTTPClient() *http.Client {
	return b.client
}

// Exchange performs the authorization-code exchange at cfg's token endpoint.
// The request is a form-encoded POST carrying grant_type, code, redirect_uri,
// and the client credentials; golang.org/x/oauth2 accepts both JSON and
// form-encoded token responses. The exchange is never retried: authorization
// codes are single use.
func (b *Backchannel) Exchange(ctx context.Context, cfg *oauth2.Config, code, redirectURI string) (*oauth2.Token, error) {
	c := *cfg
	c.RedirectURL = redirectURI

	ctx = context.WithValue(ctx, oauth2.HTTPClient, b.client)

	token, err := c.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			status := 0
			if retrieveErr.Response != nil {
				status = retrieveErr.Response.StatusCode
			}
			return nil, &TokenExchangeError{Status: status, Body: string(retrieveErr.Body), Err: err}
		}
		return nil, &TokenExchangeError{Err: err}
	}

	if token.AccessToken == "" {
		return nil, &TokenExchangeError{Err: errors.New("token response missing access_token")}
	}

	return token, nil
}

// FetchProfile performs an authenticated GET against the profile endpoint.
// The Authorization header uses the token type returned by the exchange
// (Bearer when the provider omitted one).
func (b *Backchannel) FetchProfile(ctx context.Context, endpoint string, token *oauth2.Token) (Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &ProfileFetchError{Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("Authorization", token.Type()+" "+token.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, &ProfileFetchError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, b.maxResponseBytes+1))
	if err != nil {
		return nil, &ProfileFetchError{Status: resp.StatusCode, Err: err}
	}
	if int64(len(body)) > b.maxResponseBytes {
		return nil, &ProfileFetchError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("response exceeds %d bytes", b.maxResponseBytes),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProfileFetchError{Status: resp.StatusCode, Body: string(body)}
	}

	profile, err := ParseProfile(body)
	if err != nil {
		return nil, &ProfileFetchError{Status: resp.StatusCode, Err: err}
	}

	return profile, nil
}
