package security

// Event type constants for security audit logging.
// These constants ensure consistency across the codebase and prevent typos
// when logging security-relevant events.
const (
	// EventChallengeIssued is logged when a challenge redirect is issued
	EventChallengeIssued = "challenge_issued"

	// EventHandshakeSucceeded is logged when a handshake produces an identity
	EventHandshakeSucceeded = "handshake_succeeded"

	// EventHandshakeDenied is logged when a handshake is rejected: a failed
	// correlation check, a replayed state, or an extension hook veto
	EventHandshakeDenied = "handshake_denied"

	// EventHandshakeFailed is logged when a handshake fails at a protocol
	// stage (malformed callback, state decode, exchange, profile fetch)
	EventHandshakeFailed = "handshake_failed"

	// EventRateLimitExceeded is logged when a callback is rate limited
	EventRateLimitExceeded = "rate_limit_exceeded"
)
