package extlogin

import (
	"fmt"

	"github.com/extlogin/extlogin/providers"
)

// Flow error codes. These classify where a handshake ended; the descriptive
// detail stays in server-side logs and never reaches the user agent.
const (
	// ErrCodeMalformedCallback: the callback request did not carry exactly
	// one code and exactly one state value.
	ErrCodeMalformedCallback = "malformed_callback"

	// ErrCodeInvalidState: the state value failed to decode or verify.
	ErrCodeInvalidState = "invalid_state"

	// ErrCodeCorrelationMismatch: the correlation token in the state did not
	// match the pending token for this user agent.
	ErrCodeCorrelationMismatch = "correlation_mismatch"

	// ErrCodeStateReplayed: the state value was already consumed by an
	// earlier callback.
	ErrCodeStateReplayed = "state_replayed"

	// ErrCodeTokenExchangeFailed: the code-for-token exchange with the
	// provider failed.
	ErrCodeTokenExchangeFailed = "token_exchange_failed"

	// ErrCodeProfileFetchFailed: the authenticated profile fetch failed.
	ErrCodeProfileFetchFailed = "profile_fetch_failed"

	// ErrCodeNoUserID: the provider's profile carried no user identifier.
	ErrCodeNoUserID = "no_user_id"

	// ErrCodeHookRejected: the OnAuthenticated hook vetoed the identity.
	ErrCodeHookRejected = "hook_rejected"

	// ErrCodeServerError: an internal failure unrelated to the protocol.
	ErrCodeServerError = "server_error"
)

// FlowError describes why a handshake ended without an identity.
type FlowError struct {
	// Code is one of the ErrCode constants
	Code string

	// Description is server-side detail. It is logged, never surfaced.
	Description string

	// Err is the underlying error, if any
	Err error
}

// Error implements the error interface.
func (e *FlowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Description, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Unwrap returns the underlying error.
func (e *FlowError) Unwrap() error {
	return e.Err
}

func newFlowError(code, description string, err error) *FlowError {
	return &FlowError{Code: code, Description: description, Err: err}
}

// ConfigurationError indicates the handler was constructed with settings that
// can never work. It is returned from NewHandler, never during a handshake.
type ConfigurationError = providers.ConfigurationError
