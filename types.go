package extlogin

import (
	"golang.org/x/oauth2"

	"github.com/extlogin/extlogin/providers"
)

// OutcomeKind classifies how a handshake ended.
type OutcomeKind string

const (
	// OutcomeSucceeded means an identity was produced and accepted
	OutcomeSucceeded OutcomeKind = "succeeded"

	// OutcomeDenied means the handshake was rejected: a correlation
	// mismatch, a replayed state, or an extension hook veto
	OutcomeDenied OutcomeKind = "denied"

	// OutcomeFailed means a protocol stage failed: a malformed callback,
	// an undecodable state, a token exchange or profile fetch error
	OutcomeFailed OutcomeKind = "failed"
)

// Outcome is the terminal result of one callback, handed to the OnCompleted
// hook. Exactly one is produced per callback that reaches the handshake.
type Outcome struct {
	// Kind classifies the result
	Kind OutcomeKind

	// Provider is the name of the provider involved
	Provider string

	// Identity is the accepted identity. Set only when Kind is
	// OutcomeSucceeded.
	Identity *providers.Identity

	// Token is the token obtained from the provider. Set only when Kind is
	// OutcomeSucceeded.
	Token *oauth2.Token

	// State is the decoded round-trip state, when it was decodable
	State *AuthState

	// Err describes the denial or failure. Nil when Kind is
	// OutcomeSucceeded.
	Err *FlowError
}
