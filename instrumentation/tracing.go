package instrumentation

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Common span attribute keys.
//
// Never put credential material (authorization codes, access tokens, raw
// state values) into traces or metrics. Only metadata belongs here: provider
// names, outcomes, status codes, attempt identifiers.
const (
	// Handshake attributes
	AttrHandshakeOutcome = "handshake.outcome" // succeeded, denied, failed
	AttrHandshakeStage   = "handshake.stage"   // stage at which a handshake ended
	AttrAttemptID        = "handshake.attempt_id"
	AttrUserID           = "handshake.user_id"

	// Provider attributes
	AttrProviderName      = "provider.name"
	AttrProviderOperation = "provider.operation" // exchange_code, fetch_profile
	AttrProviderStatus    = "provider.status"
	AttrProviderErrorType = "provider.error_type"

	// Security attributes
	AttrAuditEventType = "security.audit.event_type"
)

// RecordError records an error on a span with proper status codes (nil-safe).
func RecordError(span trace.Span, err error) {
	if span != nil && err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess marks a span as successful (nil-safe).
func SetSpanSuccess(span trace.Span) {
	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
}

// SetSpanAttributes sets attributes on a span (nil-safe).
func SetSpanAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	if span != nil {
		span.SetAttributes(attrs...)
	}
}

// AddProviderAttributes adds provider attributes to a span (nil-safe).
func AddProviderAttributes(span trace.Span, providerName, operation string) {
	SetSpanAttributes(span,
		attribute.String(AttrProviderName, providerName),
		attribute.String(AttrProviderOperation, operation),
	)
}

// AddHandshakeAttributes adds handshake attributes to a span (nil-safe).
func AddHandshakeAttributes(span trace.Span, provider, outcome string) {
	SetSpanAttributes(span,
		attribute.String(AttrProviderName, provider),
		attribute.String(AttrHandshakeOutcome, outcome),
	)
}
