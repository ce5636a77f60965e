package security

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Auditor handles security event logging with PII protection.
type Auditor struct {
	logger  *slog.Logger
	enabled bool
}

// NewAuditor creates a new security auditor
func NewAuditor(logger *slog.Logger, enabled bool) *Auditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auditor{
		logger:  logger,
		enabled: enabled,
	}
}

// Event represents a security audit event
type Event struct {
	Type      string
	Provider  string
	UserID    string
	IPAddress string
	AttemptID string
	Details   map[string]any
	Timestamp time.Time
}

// LogEvent logs a security event with hashed PII
func (a *Auditor) LogEvent(event Event) {
	if !a.enabled {
		return
	}

	event.Timestamp = time.Now()

	a.logger.Info("security_audit",
		"event_id", uuid.NewString(),
		"event_type", event.Type,
		"provider", event.Provider,
		"user_id_hash", hashForLogging(event.UserID),
		"ip_address", event.IPAddress,
		"attempt_id", event.AttemptID,
		"details", event.Details,
		"timestamp", event.Timestamp,
	)
}

// LogChallengeIssued logs the start of a handshake attempt
func (a *Auditor) LogChallengeIssued(provider, ipAddress, attemptID string) {
	a.LogEvent(Event{
		Type:      EventChallengeIssued,
		Provider:  provider,
		IPAddress: ipAddress,
		AttemptID: attemptID,
	})
}

// LogHandshakeSucceeded logs a completed handshake
func (a *Auditor) LogHandshakeSucceeded(provider, userID, ipAddress, attemptID string) {
	a.LogEvent(Event{
		Type:      EventHandshakeSucceeded,
		Provider:  provider,
		UserID:    userID,
		IPAddress: ipAddress,
		AttemptID: attemptID,
	})
}

// LogHandshakeDenied logs a handshake rejected by correlation or policy
func (a *Auditor) LogHandshakeDenied(provider, ipAddress, attemptID, reason string) {
	a.LogEvent(Event{
		Type:      EventHandshakeDenied,
		Provider:  provider,
		IPAddress: ipAddress,
		AttemptID: attemptID,
		Details: map[string]any{
			"reason": reason,
		},
	})
}

// LogHandshakeFailed logs a handshake that failed at a protocol stage
func (a *Auditor) LogHandshakeFailed(provider, ipAddress, attemptID, stage, reason string) {
	a.LogEvent(Event{
		Type:      EventHandshakeFailed,
		Provider:  provider,
		IPAddress: ipAddress,
		AttemptID: attemptID,
		Details: map[string]any{
			"stage":  stage,
			"reason": reason,
		},
	})
}

// LogRateLimitExceeded logs a rate limit violation
func (a *Auditor) LogRateLimitExceeded(provider, ipAddress string) {
	a.LogEvent(Event{
		Type:      EventRateLimitExceeded,
		Provider:  provider,
		IPAddress: ipAddress,
	})
}

// hashForLogging creates a SHA256 hash of sensitive data for logging
func hashForLogging(sensitive string) string {
	if sensitive == "" {
		return "<empty>"
	}
	hash := sha256.Sum256([]byte(sensitive))
	return hex.EncodeToString(hash[:])[:16]
}
