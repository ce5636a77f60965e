package instrumentation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all metric instruments for the login handlers.
type Metrics struct {
	// Handshake metrics
	ChallengesIssued   metric.Int64Counter
	CallbacksProcessed metric.Int64Counter

	// Provider back-channel metrics
	ProviderCallsTotal   metric.Int64Counter
	ProviderCallDuration metric.Float64Histogram
	ProviderCallErrors   metric.Int64Counter

	// Security metrics
	RateLimitExceeded metric.Int64Counter
	ReplaysDetected   metric.Int64Counter
	AuditEventsTotal  metric.Int64Counter
}

// newMetrics creates and registers all metric instruments.
func newMetrics(inst *Instrumentation) (*Metrics, error) {
	m := &Metrics{}

	handshakeMeter := inst.Meter("handshake")
	providerMeter := inst.Meter("provider")
	securityMeter := inst.Meter("security")

	var err error
	m.ChallengesIssued, err = handshakeMeter.Int64Counter(
		"login.challenges.issued",
		metric.WithDescription("Number of challenge redirects issued"),
		metric.WithUnit("{challenge}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create challenges.issued counter: %w", err)
	}

	m.CallbacksProcessed, err = handshakeMeter.Int64Counter(
		"login.callbacks.processed",
		metric.WithDescription("Number of provider callbacks processed"),
		metric.WithUnit("{callback}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create callbacks.processed counter: %w", err)
	}

	m.ProviderCallsTotal, err = providerMeter.Int64Counter(
		"provider.api.calls.total",
		metric.WithDescription("Total number of provider API calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider.api.calls.total counter: %w", err)
	}

	m.ProviderCallDuration, err = providerMeter.Float64Histogram(
		"provider.api.duration",
		metric.WithDescription("Provider API call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider.api.duration histogram: %w", err)
	}

	m.ProviderCallErrors, err = providerMeter.Int64Counter(
		"provider.api.errors.total",
		metric.WithDescription("Total number of provider API errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider.api.errors.total counter: %w", err)
	}

	m.RateLimitExceeded, err = securityMeter.Int64Counter(
		"login.rate_limit.exceeded",
		metric.WithDescription("Number of rate limit violations on the callback path"),
		metric.WithUnit("{violation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate_limit.exceeded counter: %w", err)
	}

	m.ReplaysDetected, err = securityMeter.Int64Counter(
		"login.state.replays_detected",
		metric.WithDescription("Number of replayed state values detected"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create state.replays_detected counter: %w", err)
	}

	m.AuditEventsTotal, err = securityMeter.Int64Counter(
		"login.audit.events.total",
		metric.WithDescription("Total number of audit events"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit.events.total counter: %w", err)
	}

	return m, nil
}

// RecordChallengeIssued records a challenge redirect.
func (m *Metrics) RecordChallengeIssued(ctx context.Context, provider string) {
	m.ChallengesIssued.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrProviderName, provider),
	))
}

// RecordCallbackProcessed records a processed callback with its outcome
// (succeeded, denied, or failed).
func (m *Metrics) RecordCallbackProcessed(ctx context.Context, provider, outcome string) {
	m.CallbacksProcessed.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrProviderName, provider),
		attribute.String(AttrHandshakeOutcome, outcome),
	))
}

// RecordProviderCall records a back-channel call to a provider endpoint.
func (m *Metrics) RecordProviderCall(ctx context.Context, provider, operation string, statusCode int, durationMs float64, err error) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrProviderName, provider),
		attribute.String(AttrProviderOperation, operation),
		attribute.Int(AttrProviderStatus, statusCode),
	}

	m.ProviderCallsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.ProviderCallDuration.Record(ctx, durationMs, metric.WithAttributes(
		attribute.String(AttrProviderName, provider),
		attribute.String(AttrProviderOperation, operation),
	))

	if err != nil {
		errorType := "unknown"
		if statusCode >= 400 && statusCode < 500 {
			errorType = "client_error"
		} else if statusCode >= 500 {
			errorType = "server_error"
		}

		m.ProviderCallErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String(AttrProviderName, provider),
			attribute.String(AttrProviderOperation, operation),
			attribute.String(AttrProviderErrorType, errorType),
		))
	}
}

// RecordRateLimitExceeded records a rate limit violation.
func (m *Metrics) RecordRateLimitExceeded(ctx context.Context, provider string) {
	m.RateLimitExceeded.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrProviderName, provider),
	))
}

// RecordReplayDetected records a replayed state value.
func (m *Metrics) RecordReplayDetected(ctx context.Context, provider string) {
	m.ReplaysDetected.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrProviderName, provider),
	))
}

// RecordAuditEvent records an audit event.
func (m *Metrics) RecordAuditEvent(ctx context.Context, eventType string) {
	m.AuditEventsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrAuditEventType, eventType),
	))
}
