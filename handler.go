package extlogin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"

	"github.com/extlogin/extlogin/instrumentation"
	"github.com/extlogin/extlogin/providers"
	"github.com/extlogin/extlogin/security"
	"github.com/extlogin/extlogin/storage"
)

// Handler orchestrates the authorization-code handshake for one provider.
// It serves the provider's callback path and passes everything else to the
// configured next handler.
type Handler struct {
	provider     providers.Provider
	codec        *security.StateCodec
	correlation  *security.CorrelationStore
	auditor      *security.Auditor
	limiter      *security.RateLimiter
	trustProxy   bool
	replay       storage.ReplayStore
	replayTTL    time.Duration
	hooks        Hooks
	logger       *slog.Logger
	inst         *instrumentation.Instrumentation
	tracer       trace.Tracer
	next         http.Handler
	callbackPath string
}

// Compile-time check that Handler implements http.Handler.
var _ http.Handler = (*Handler)(nil)

// NewHandler creates a login handler from the given configuration.
func NewHandler(cfg *Config) (*Handler, error) {
	if cfg == nil {
		return nil, providers.NewConfigurationError("config is required")
	}
	if cfg.Provider == nil {
		return nil, providers.NewConfigurationError("provider is required")
	}
	if cfg.Hooks.OnSignIn == nil {
		return nil, providers.NewConfigurationError("the OnSignIn hook is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	key := cfg.StateKey
	if key == nil {
		generated, err := security.GenerateStateKey()
		if err != nil {
			return nil, fmt.Errorf("failed to generate state key: %w", err)
		}
		key = generated
		logger.Warn("No state key configured; generated an ephemeral key. Pending handshakes will not survive a restart and cannot be shared across instances.",
			"provider", cfg.Provider.Name(),
		)
	}

	codec, err := security.NewStateCodec(key, cfg.Provider.Name())
	if err != nil {
		return nil, providers.NewConfigurationError("invalid state key: %v", err)
	}

	inst := cfg.Instrumentation
	if inst == nil {
		inst, err = instrumentation.New(instrumentation.Config{Enabled: false})
		if err != nil {
			return nil, fmt.Errorf("failed to create instrumentation: %w", err)
		}
	}

	h := &Handler{
		provider:     cfg.Provider,
		trustProxy:   cfg.TrustProxy,
		codec:        codec,
		correlation:  security.NewCorrelationStore(cfg.Provider.Name()),
		auditor:      security.NewAuditor(logger, cfg.EnableAuditLogging),
		replay:       cfg.Replay,
		replayTTL:    cfg.ReplayTTL,
		hooks:        cfg.Hooks,
		logger:       logger,
		inst:         inst,
		tracer:       inst.Tracer("handshake"),
		next:         cfg.Next,
		callbackPath: strings.TrimSuffix(cfg.BasePath, "/") + cfg.Provider.CallbackPath(),
	}

	if h.replayTTL <= 0 {
		h.replayTTL = DefaultReplayTTL
	}

	if cfg.RateLimit != nil {
		h.limiter = security.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, logger)
	}

	return h, nil
}

// ChallengeOptions customizes a challenge redirect.
type ChallengeOptions struct {
	// RedirectTarget is where the user agent goes after the handshake.
	// Defaults to the URI of the request that triggered the challenge.
	RedirectTarget string

	// Scope overrides the provider's configured scopes. The value is used
	// verbatim, so it must already use the provider's scope separator.
	Scope string

	// Extras are carried through the handshake and returned in the decoded
	// state.
	Extras []Field
}

// Challenge starts a handshake attempt: it issues a correlation token, seals
// the round-trip state, and redirects the user agent to the provider's
// authorization endpoint.
func (h *Handler) Challenge(w http.ResponseWriter, r *http.Request, opts ChallengeOptions) error {
	attemptID := uuid.NewString()

	token, err := h.correlation.Issue(w, r)
	if err != nil {
		return err
	}

	target := opts.RedirectTarget
	if target == "" {
		target = r.URL.RequestURI()
	}

	state := &AuthState{Correlation: token, RedirectTarget: target}
	if opts.Scope != "" {
		state.SetExtra("scope", opts.Scope)
	}
	for _, f := range opts.Extras {
		state.SetExtra(f.Name, f.Value)
	}

	encoded, err := EncodeState(h.codec, state)
	if err != nil {
		return err
	}

	// The effective override comes from the state extras, so a scope supplied
	// through Extras behaves exactly like one supplied through opts.Scope.
	scope, _ := state.Extra("scope")
	authURL := h.provider.AuthorizationURL(h.callbackURL(r), encoded, scope)

	h.logger.Debug("Issuing challenge redirect",
		"provider", h.provider.Name(),
		"attempt_id", attemptID,
	)
	h.auditor.LogChallengeIssued(h.provider.Name(), security.GetClientIP(r, h.trustProxy), attemptID)
	h.inst.Metrics().RecordChallengeIssued(r.Context(), h.provider.Name())

	http.Redirect(w, r, authURL, http.StatusFound)
	return nil
}

// ServeHTTP implements http.Handler. GET requests for the callback path run
// the handshake; everything else goes to the next handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == h.callbackPath && r.Method == http.MethodGet {
		h.handleCallback(w, r)
		return
	}

	if h.next != nil {
		h.next.ServeHTTP(w, r)
		return
	}
	http.NotFound(w, r)
}

func (h *Handler) handleCallback(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "handshake.callback")
	defer span.End()

	clientIP := security.GetClientIP(r, h.trustProxy)
	attemptID := uuid.NewString()

	if h.limiter != nil && !h.limiter.Allow(clientIP) {
		h.auditor.LogRateLimitExceeded(h.provider.Name(), clientIP)
		h.inst.Metrics().RecordRateLimitExceeded(ctx, h.provider.Name())
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		return
	}

	query := r.URL.Query()
	codes, states := query["code"], query["state"]
	if len(codes) != 1 || len(states) != 1 {
		// Provider error callbacks (error=access_denied and friends) land
		// here too: no code means no handshake to finish.
		h.finish(w, r, attemptID, clientIP, nil, newFlowError(ErrCodeMalformedCallback,
			fmt.Sprintf("expected exactly one code and one state, got %d and %d", len(codes), len(states)), nil))
		return
	}

	// The state must verify before anything touches the network. A forged
	// callback costs us a single AEAD open, nothing more.
	state, err := DecodeState(h.codec, states[0])
	if err != nil {
		h.finish(w, r, attemptID, clientIP, nil, newFlowError(ErrCodeInvalidState, "state failed verification", err))
		return
	}

	if !h.correlation.Validate(w, r, state.Correlation) {
		h.deny(w, r, attemptID, clientIP, state, newFlowError(ErrCodeCorrelationMismatch,
			"correlation token does not match the pending attempt", nil))
		return
	}

	if h.replay != nil {
		first, err := h.replay.MarkUsed(ctx, state.Correlation, h.replayTTL)
		if err != nil {
			// Fail closed: an unreachable replay store must not open a
			// replay window.
			h.finish(w, r, attemptID, clientIP, state, newFlowError(ErrCodeServerError, "replay store unavailable", err))
			return
		}
		if !first {
			h.inst.Metrics().RecordReplayDetected(ctx, h.provider.Name())
			h.deny(w, r, attemptID, clientIP, state, newFlowError(ErrCodeStateReplayed, "state value already consumed", nil))
			return
		}
	}

	token, err := h.exchangeCode(ctx, codes[0], h.callbackURL(r))
	if err != nil {
		h.finish(w, r, attemptID, clientIP, state, newFlowError(ErrCodeTokenExchangeFailed, "code exchange failed", err))
		return
	}

	profile, err := h.fetchProfile(ctx, token)
	if err != nil {
		h.finish(w, r, attemptID, clientIP, state, newFlowError(ErrCodeProfileFetchFailed, "profile fetch failed", err))
		return
	}

	identity := h.provider.MapClaims(profile)
	if identity == nil || identity.UserID == "" {
		h.finish(w, r, attemptID, clientIP, state, newFlowError(ErrCodeNoUserID, "profile carries no user identifier", nil))
		return
	}

	if h.hooks.OnAuthenticated != nil {
		enriched, err := h.hooks.OnAuthenticated(ctx, identity, state)
		if err != nil {
			h.deny(w, r, attemptID, clientIP, state, newFlowError(ErrCodeHookRejected, "identity rejected by application", err))
			return
		}
		if enriched != nil {
			identity = enriched
		}
	}

	h.succeed(ctx, w, r, attemptID, clientIP, state, identity, token)
}

func (h *Handler) succeed(ctx context.Context, w http.ResponseWriter, r *http.Request, attemptID, clientIP string, state *AuthState, identity *providers.Identity, token *oauth2.Token) {
	outcome := &Outcome{
		Kind:     OutcomeSucceeded,
		Provider: h.provider.Name(),
		Identity: identity,
		Token:    token,
		State:    state,
	}

	h.auditor.LogHandshakeSucceeded(h.provider.Name(), identity.UserID, clientIP, attemptID)
	h.inst.Metrics().RecordCallbackProcessed(ctx, h.provider.Name(), string(OutcomeSucceeded))

	if h.hooks.OnCompleted != nil && h.hooks.OnCompleted(w, r, outcome) {
		return
	}

	if err := h.hooks.OnSignIn(ctx, w, r, identity, token); err != nil {
		h.logger.Error("Sign-in hook failed",
			"provider", h.provider.Name(),
			"attempt_id", attemptID,
			"error", err,
		)
		h.redirectFailure(w, r, state)
		return
	}

	target := state.RedirectTarget
	if target == "" {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// deny ends the handshake as rejected and finish ends it as failed. Both
// funnel into the same terminal handling; the split keeps the audit trail
// distinguishing active rejection from protocol failure.
func (h *Handler) deny(w http.ResponseWriter, r *http.Request, attemptID, clientIP string, state *AuthState, flowErr *FlowError) {
	h.logger.Warn("Handshake denied",
		"provider", h.provider.Name(),
		"attempt_id", attemptID,
		"code", flowErr.Code,
		"error", flowErr.Error(),
	)
	h.auditor.LogHandshakeDenied(h.provider.Name(), clientIP, attemptID, flowErr.Code)
	h.terminate(w, r, state, OutcomeDenied, flowErr)
}

func (h *Handler) finish(w http.ResponseWriter, r *http.Request, attemptID, clientIP string, state *AuthState, flowErr *FlowError) {
	h.logger.Warn("Handshake failed",
		"provider", h.provider.Name(),
		"attempt_id", attemptID,
		"code", flowErr.Code,
		"error", flowErr.Error(),
	)
	h.auditor.LogHandshakeFailed(h.provider.Name(), clientIP, attemptID, flowErr.Code, flowErr.Description)
	h.terminate(w, r, state, OutcomeFailed, flowErr)
}

func (h *Handler) terminate(w http.ResponseWriter, r *http.Request, state *AuthState, kind OutcomeKind, flowErr *FlowError) {
	h.inst.Metrics().RecordCallbackProcessed(r.Context(), h.provider.Name(), string(kind))

	outcome := &Outcome{
		Kind:     kind,
		Provider: h.provider.Name(),
		State:    state,
		Err:      flowErr,
	}
	if h.hooks.OnCompleted != nil && h.hooks.OnCompleted(w, r, outcome) {
		return
	}

	h.redirectFailure(w, r, state)
}

// redirectFailure sends the user agent back to the redirect target with a
// generic error marker. The specific reason stays server-side. With no
// target to go back to, the response is a plain 500.
func (h *Handler) redirectFailure(w http.ResponseWriter, r *http.Request, state *AuthState) {
	if state == nil || state.RedirectTarget == "" {
		http.Error(w, "External login failed", http.StatusInternalServerError)
		return
	}

	target, err := url.Parse(state.RedirectTarget)
	if err != nil {
		http.Error(w, "External login failed", http.StatusInternalServerError)
		return
	}
	q := target.Query()
	q.Set("error", "access_denied")
	target.RawQuery = q.Encode()

	http.Redirect(w, r, target.String(), http.StatusFound)
}

func (h *Handler) exchangeCode(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
	start := time.Now()
	token, err := h.provider.ExchangeCode(ctx, code, redirectURI)

	status := 0
	var exchangeErr *providers.TokenExchangeError
	if errors.As(err, &exchangeErr) {
		status = exchangeErr.Status
	}
	h.inst.Metrics().RecordProviderCall(ctx, h.provider.Name(), "exchange_code", status,
		float64(time.Since(start).Milliseconds()), err)

	return token, err
}

func (h *Handler) fetchProfile(ctx context.Context, token *oauth2.Token) (providers.Profile, error) {
	start := time.Now()
	profile, err := h.provider.FetchProfile(ctx, token)

	status := 0
	var fetchErr *providers.ProfileFetchError
	if errors.As(err, &fetchErr) {
		status = fetchErr.Status
	}
	h.inst.Metrics().RecordProviderCall(ctx, h.provider.Name(), "fetch_profile", status,
		float64(time.Since(start).Milliseconds()), err)

	return profile, err
}

// callbackURL computes the absolute redirect URI for the current request.
// The same value must be sent on the challenge and the exchange; providers
// verify they match.
func (h *Handler) callbackURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if h.trustProxy {
		if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" {
			scheme = "https"
		}
	}
	return scheme + "://" + r.Host + h.callbackPath
}

// Close releases background resources (the rate limiter's sweeper).
func (h *Handler) Close() {
	if h.limiter != nil {
		h.limiter.Stop()
	}
}
