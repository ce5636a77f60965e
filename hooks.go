package extlogin

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/extlogin/extlogin/providers"
)

// Hooks are the extension points of the handshake. OnSignIn is required;
// the others default to no-ops.
type Hooks struct {
	// OnAuthenticated runs after claims mapping, before sign-in. It may
	// inspect and enrich the identity, or return an error to veto it, which
	// denies the handshake. Returning a nil identity keeps the mapped one.
	OnAuthenticated func(ctx context.Context, identity *providers.Identity, state *AuthState) (*providers.Identity, error)

	// OnSignIn establishes the application session for an accepted
	// identity. The handler owns the redirect that follows; OnSignIn should
	// write session state (cookies, storage) but not the response body.
	// An error here fails the handshake.
	OnSignIn func(ctx context.Context, w http.ResponseWriter, r *http.Request, identity *providers.Identity, token *oauth2.Token) error

	// OnCompleted runs for every terminal outcome, success or not. Return
	// true to take over the response; the handler then writes nothing
	// further.
	OnCompleted func(w http.ResponseWriter, r *http.Request, outcome *Outcome) bool
}
