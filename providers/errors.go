package providers

import "fmt"

// ConfigurationError indicates a provider or backchannel was constructed with
// invalid configuration. It is fatal: constructors return it instead of
// degrading (a certificate validator that cannot be applied to the configured
// transport fails construction rather than being silently skipped).
type ConfigurationError struct {
	Reason string
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	return "provider configuration error: " + e.Reason
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// TokenExchangeError indicates the code-for-token exchange failed: a transport
// error, a non-2xx response from the token endpoint, or a response missing the
// access token. Status and Body are zero when the call never reached the
// endpoint.
type TokenExchangeError struct {
	Status int
	Body   string
	Err    error
}

// Error implements the error interface
func (e *TokenExchangeError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("token exchange failed with status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("token exchange failed: %v", e.Err)
}

// Unwrap returns the underlying error
func (e *TokenExchangeError) Unwrap() error { return e.Err }

// ProfileFetchError indicates the authenticated profile fetch failed.
type ProfileFetchError struct {
	Status int
	Body   string
	Err    error
}

// Error implements the error interface
func (e *ProfileFetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("profile fetch failed with status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("profile fetch failed: %v", e.Err)
}

// Unwrap returns the underlying error
func (e *ProfileFetchError) Unwrap() error { return e.Err }
