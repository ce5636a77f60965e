package extlogin

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/extlogin/extlogin/instrumentation"
	"github.com/extlogin/extlogin/providers"
	"github.com/extlogin/extlogin/storage"
)

// DefaultReplayTTL is how long a consumed state value is remembered by the
// replay store. It matches the correlation cookie lifetime: a state older
// than that fails correlation anyway.
const DefaultReplayTTL = 15 * time.Minute

// RateLimitConfig bounds the request rate on the callback path per client IP.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained allowance per client IP
	RequestsPerSecond int

	// Burst is the instantaneous allowance per client IP
	Burst int
}

// Config holds the settings for a login handler.
type Config struct {
	// Provider performs the provider-specific parts of the handshake.
	// Required.
	Provider providers.Provider

	// StateKey is the 32-byte master key material for sealing round-trip
	// state. Handlers for different providers may share it; each derives
	// its own codec key. When nil, an ephemeral key is generated and
	// pending handshakes will not survive a process restart.
	StateKey []byte

	// Hooks are the extension points. Hooks.OnSignIn is required.
	Hooks Hooks

	// RateLimit enables per-IP rate limiting on the callback path when
	// non-nil.
	RateLimit *RateLimitConfig

	// TrustProxy enables X-Forwarded-For and X-Real-IP as the client
	// identity and X-Forwarded-Proto for redirect URI construction.
	// Enable only behind a reverse proxy that overwrites those headers.
	TrustProxy bool

	// Replay enables cross-instance single-use enforcement of state values
	// when non-nil.
	Replay storage.ReplayStore

	// ReplayTTL overrides how long consumed state values are remembered.
	// Defaults to DefaultReplayTTL.
	ReplayTTL time.Duration

	// Logger for structured logging. Defaults to slog.Default().
	Logger *slog.Logger

	// EnableAuditLogging turns on security audit events
	EnableAuditLogging bool

	// Instrumentation enables metrics and tracing when non-nil
	Instrumentation *instrumentation.Instrumentation

	// Next receives requests that are not for the callback path. When nil,
	// those requests get 404.
	Next http.Handler

	// BasePath is prepended to the provider's callback path, for
	// applications mounted below the host root (e.g. "/auth").
	BasePath string
}
