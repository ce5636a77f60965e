package extlogin

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"golang.org/x/oauth2"

	"github.com/extlogin/extlogin/providers"
	"github.com/extlogin/extlogin/providers/mock"
	"github.com/extlogin/extlogin/security"
	"github.com/extlogin/extlogin/storage/memory"
)

func testStateKey() []byte {
	return bytes.Repeat([]byte("k"), 32)
}

type handlerFixture struct {
	handler  *Handler
	provider *mock.MockProvider
	signedIn []*providers.Identity
	outcomes []*Outcome
}

func newHandlerFixture(t *testing.T, mutate func(*Config)) *handlerFixture {
	t.Helper()

	f := &handlerFixture{provider: mock.NewMockProvider()}

	cfg := &Config{
		Provider: f.provider,
		StateKey: testStateKey(),
		Hooks: Hooks{
			OnSignIn: func(ctx context.Context, w http.ResponseWriter, r *http.Request, identity *providers.Identity, token *oauth2.Token) error {
				f.signedIn = append(f.signedIn, identity)
				return nil
			},
			OnCompleted: func(w http.ResponseWriter, r *http.Request, outcome *Outcome) bool {
				f.outcomes = append(f.outcomes, outcome)
				return false
			},
		},
	}
	if mutate != nil {
		mutate(cfg)
	}

	handler, err := NewHandler(cfg)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	t.Cleanup(handler.Close)
	f.handler = handler

	return f
}

// runChallenge issues a challenge and returns the sealed state from the
// authorize redirect plus the correlation cookie.
func (f *handlerFixture) runChallenge(t *testing.T, opts ChallengeOptions) (string, *http.Cookie) {
	t.Helper()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "http://app.example.com/login", nil)

	if err := f.handler.Challenge(w, r, opts); err != nil {
		t.Fatalf("Challenge() error = %v", err)
	}
	if w.Code != http.StatusFound {
		t.Fatalf("Challenge() status = %d, want 302", w.Code)
	}

	location, err := url.Parse(w.Header().Get("Location"))
	if err != nil {
		t.Fatalf("challenge Location parse error = %v", err)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("challenge set %d cookies, want 1", len(cookies))
	}

	return location.Query().Get("state"), cookies[0]
}

func (f *handlerFixture) runCallback(t *testing.T, rawQuery string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "http://app.example.com/signin-mock?"+rawQuery, nil)
	if cookie != nil {
		r.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}

	f.handler.ServeHTTP(w, r)
	return w
}

func (f *handlerFixture) lastOutcome(t *testing.T) *Outcome {
	t.Helper()
	if len(f.outcomes) == 0 {
		t.Fatal("no outcome recorded")
	}
	return f.outcomes[len(f.outcomes)-1]
}

func TestNewHandlerValidation(t *testing.T) {
	signIn := func(ctx context.Context, w http.ResponseWriter, r *http.Request, identity *providers.Identity, token *oauth2.Token) error {
		return nil
	}

	tests := []struct {
		name string
		cfg  *Config
	}{
		{name: "nil config", cfg: nil},
		{name: "missing provider", cfg: &Config{Hooks: Hooks{OnSignIn: signIn}}},
		{name: "missing sign-in hook", cfg: &Config{Provider: mock.NewMockProvider()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHandler(tt.cfg)

			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Errorf("NewHandler() error = %v, want *ConfigurationError", err)
			}
		})
	}
}

func TestChallengeRedirect(t *testing.T) {
	f := newHandlerFixture(t, nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "http://app.example.com/protected?tab=1", nil)

	if err := f.handler.Challenge(w, r, ChallengeOptions{Scope: "read,write"}); err != nil {
		t.Fatalf("Challenge() error = %v", err)
	}

	location, err := url.Parse(w.Header().Get("Location"))
	if err != nil {
		t.Fatalf("Location parse error = %v", err)
	}
	q := location.Query()

	if got := q.Get("redirect_uri"); got != "http://app.example.com/signin-mock" {
		t.Errorf("redirect_uri = %q", got)
	}
	if got := q.Get("scope"); got != "read,write" {
		t.Errorf("scope = %q", got)
	}

	// The sealed state decodes with the same key and purpose, and defaults
	// the redirect target to the request that triggered the challenge.
	codec, err := security.NewStateCodec(testStateKey(), "mock")
	if err != nil {
		t.Fatalf("NewStateCodec() error = %v", err)
	}
	state, err := DecodeState(codec, q.Get("state"))
	if err != nil {
		t.Fatalf("DecodeState() error = %v", err)
	}
	if state.RedirectTarget != "/protected?tab=1" {
		t.Errorf("RedirectTarget = %q", state.RedirectTarget)
	}
	if scope, _ := state.Extra("scope"); scope != "read,write" {
		t.Errorf("scope extra = %q", scope)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != state.Correlation {
		t.Error("correlation cookie does not match the sealed state")
	}
}

func TestChallengeScopeViaExtras(t *testing.T) {
	// A scope supplied through the extras must behave exactly like one
	// supplied through ChallengeOptions.Scope: used verbatim in the
	// authorize URL and carried in the sealed state.
	f := newHandlerFixture(t, nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "http://app.example.com/login", nil)

	opts := ChallengeOptions{Extras: []Field{{Name: "scope", Value: "read,activity"}}}
	if err := f.handler.Challenge(w, r, opts); err != nil {
		t.Fatalf("Challenge() error = %v", err)
	}

	location, err := url.Parse(w.Header().Get("Location"))
	if err != nil {
		t.Fatalf("Location parse error = %v", err)
	}
	if got := location.Query().Get("scope"); got != "read,activity" {
		t.Errorf("authorize URL scope = %q, want %q", got, "read,activity")
	}

	codec, err := security.NewStateCodec(testStateKey(), "mock")
	if err != nil {
		t.Fatalf("NewStateCodec() error = %v", err)
	}
	state, err := DecodeState(codec, location.Query().Get("state"))
	if err != nil {
		t.Fatalf("DecodeState() error = %v", err)
	}
	if scope, _ := state.Extra("scope"); scope != "read,activity" {
		t.Errorf("scope extra = %q, want %q", scope, "read,activity")
	}
}

func TestChallengeExtrasScopeOverridesOption(t *testing.T) {
	// Extras are applied after opts.Scope, so an extras entry wins and the
	// authorize URL matches the sealed state.
	f := newHandlerFixture(t, nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "http://app.example.com/login", nil)

	opts := ChallengeOptions{
		Scope:  "identify",
		Extras: []Field{{Name: "scope", Value: "identify,admin"}},
	}
	if err := f.handler.Challenge(w, r, opts); err != nil {
		t.Fatalf("Challenge() error = %v", err)
	}

	location, err := url.Parse(w.Header().Get("Location"))
	if err != nil {
		t.Fatalf("Location parse error = %v", err)
	}
	if got := location.Query().Get("scope"); got != "identify,admin" {
		t.Errorf("authorize URL scope = %q, want %q", got, "identify,admin")
	}
}

func TestConcurrentChallengesGetDistinctTokens(t *testing.T) {
	f := newHandlerFixture(t, nil)

	stateA, _ := f.runChallenge(t, ChallengeOptions{})
	stateB, _ := f.runChallenge(t, ChallengeOptions{})

	if stateA == stateB {
		t.Error("two challenges produced identical sealed states")
	}
}

func TestCallbackHappyPath(t *testing.T) {
	f := newHandlerFixture(t, nil)

	state, cookie := f.runChallenge(t, ChallengeOptions{RedirectTarget: "/dashboard"})
	w := f.runCallback(t, "code=code-xyz&state="+url.QueryEscape(state), cookie)

	if w.Code != http.StatusFound {
		t.Fatalf("callback status = %d, want 302", w.Code)
	}
	if got := w.Header().Get("Location"); got != "/dashboard" {
		t.Errorf("Location = %q, want /dashboard", got)
	}

	if len(f.signedIn) != 1 {
		t.Fatalf("OnSignIn called %d times, want 1", len(f.signedIn))
	}
	if f.signedIn[0].UserID != "mock-user-123" {
		t.Errorf("signed-in UserID = %q", f.signedIn[0].UserID)
	}

	outcome := f.lastOutcome(t)
	if outcome.Kind != OutcomeSucceeded {
		t.Errorf("outcome = %s, want succeeded", outcome.Kind)
	}
	if outcome.Identity == nil || outcome.Token == nil {
		t.Error("succeeded outcome is missing identity or token")
	}
	if outcome.Err != nil {
		t.Errorf("succeeded outcome carries error %v", outcome.Err)
	}

	if got := f.provider.CallCount("ExchangeCode"); got != 1 {
		t.Errorf("ExchangeCode calls = %d, want 1", got)
	}
	if got := f.provider.CallCount("FetchProfile"); got != 1 {
		t.Errorf("FetchProfile calls = %d, want 1", got)
	}
}

func TestCallbackMalformedQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "missing code", query: "state=abc"},
		{name: "missing state", query: "code=abc"},
		{name: "duplicate code", query: "code=a&code=b&state=abc"},
		{name: "duplicate state", query: "code=a&state=x&state=y"},
		{name: "provider error callback", query: "error=access_denied&state=abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture(t, nil)
			_, cookie := f.runChallenge(t, ChallengeOptions{RedirectTarget: "/dashboard"})

			w := f.runCallback(t, tt.query, cookie)

			outcome := f.lastOutcome(t)
			if outcome.Kind != OutcomeFailed {
				t.Errorf("outcome = %s, want failed", outcome.Kind)
			}
			if outcome.Err.Code != ErrCodeMalformedCallback {
				t.Errorf("error code = %q, want %q", outcome.Err.Code, ErrCodeMalformedCallback)
			}
			// A malformed callback never reaches the network.
			if got := f.provider.CallCount("ExchangeCode"); got != 0 {
				t.Errorf("ExchangeCode calls = %d, want 0", got)
			}
			// With no decodable redirect target, the response is a plain 500.
			if w.Code != http.StatusInternalServerError {
				t.Errorf("status = %d, want 500", w.Code)
			}
		})
	}
}

func TestCallbackForgedState(t *testing.T) {
	f := newHandlerFixture(t, nil)
	_, cookie := f.runChallenge(t, ChallengeOptions{RedirectTarget: "/dashboard"})

	w := f.runCallback(t, "code=abc&state=forged-garbage", cookie)

	outcome := f.lastOutcome(t)
	if outcome.Kind != OutcomeFailed || outcome.Err.Code != ErrCodeInvalidState {
		t.Errorf("outcome = %s/%s, want failed/%s", outcome.Kind, outcome.Err.Code, ErrCodeInvalidState)
	}
	if got := f.provider.CallCount("ExchangeCode"); got != 0 {
		t.Errorf("ExchangeCode calls = %d, want 0 (state must verify before any network call)", got)
	}
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestCallbackCorrelationMismatch(t *testing.T) {
	f := newHandlerFixture(t, nil)
	state, _ := f.runChallenge(t, ChallengeOptions{RedirectTarget: "/dashboard"})

	// Same sealed state, but presented by a user agent holding no pending
	// correlation cookie. Classic login CSRF shape.
	w := f.runCallback(t, "code=abc&state="+url.QueryEscape(state), nil)

	outcome := f.lastOutcome(t)
	if outcome.Kind != OutcomeDenied || outcome.Err.Code != ErrCodeCorrelationMismatch {
		t.Errorf("outcome = %s/%s, want denied/%s", outcome.Kind, outcome.Err.Code, ErrCodeCorrelationMismatch)
	}
	if got := f.provider.CallCount("ExchangeCode"); got != 0 {
		t.Errorf("ExchangeCode calls = %d, want 0", got)
	}

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	location, err := url.Parse(w.Header().Get("Location"))
	if err != nil {
		t.Fatalf("Location parse error = %v", err)
	}
	if location.Path != "/dashboard" || location.Query().Get("error") != "access_denied" {
		t.Errorf("Location = %q, want /dashboard with error=access_denied", w.Header().Get("Location"))
	}
	if len(f.signedIn) != 0 {
		t.Error("OnSignIn must not run for a denied handshake")
	}
}

func TestCallbackReplayDetection(t *testing.T) {
	store := memory.NewStore(nil)
	t.Cleanup(store.Close)

	f := newHandlerFixture(t, func(cfg *Config) {
		cfg.Replay = store
	})

	state, cookie := f.runChallenge(t, ChallengeOptions{RedirectTarget: "/dashboard"})

	if w := f.runCallback(t, "code=abc&state="+url.QueryEscape(state), cookie); w.Code != http.StatusFound {
		t.Fatalf("first callback status = %d, want 302", w.Code)
	}

	// Replaying the same state with a re-presented cookie passes correlation
	// but trips the replay store.
	f.runCallback(t, "code=abc&state="+url.QueryEscape(state), cookie)

	outcome := f.lastOutcome(t)
	if outcome.Kind != OutcomeDenied || outcome.Err.Code != ErrCodeStateReplayed {
		t.Errorf("outcome = %s/%s, want denied/%s", outcome.Kind, outcome.Err.Code, ErrCodeStateReplayed)
	}
	if len(f.signedIn) != 1 {
		t.Errorf("OnSignIn called %d times, want 1", len(f.signedIn))
	}
}

func TestCallbackExchangeFailure(t *testing.T) {
	f := newHandlerFixture(t, nil)
	f.provider.ExchangeCodeFunc = func(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
		return nil, &providers.TokenExchangeError{Status: http.StatusBadRequest, Body: `{"error":"invalid_grant"}`}
	}

	state, cookie := f.runChallenge(t, ChallengeOptions{RedirectTarget: "/dashboard"})
	f.runCallback(t, "code=bad&state="+url.QueryEscape(state), cookie)

	outcome := f.lastOutcome(t)
	if outcome.Kind != OutcomeFailed || outcome.Err.Code != ErrCodeTokenExchangeFailed {
		t.Errorf("outcome = %s/%s, want failed/%s", outcome.Kind, outcome.Err.Code, ErrCodeTokenExchangeFailed)
	}
	if got := f.provider.CallCount("FetchProfile"); got != 0 {
		t.Errorf("FetchProfile calls = %d, want 0 after a failed exchange", got)
	}
}

func TestCallbackProfileFetchFailure(t *testing.T) {
	f := newHandlerFixture(t, nil)
	f.provider.FetchProfileFunc = func(ctx context.Context, token *oauth2.Token) (providers.Profile, error) {
		return nil, &providers.ProfileFetchError{Status: http.StatusUnauthorized}
	}

	state, cookie := f.runChallenge(t, ChallengeOptions{RedirectTarget: "/dashboard"})
	f.runCallback(t, "code=abc&state="+url.QueryEscape(state), cookie)

	outcome := f.lastOutcome(t)
	if outcome.Kind != OutcomeFailed || outcome.Err.Code != ErrCodeProfileFetchFailed {
		t.Errorf("outcome = %s/%s, want failed/%s", outcome.Kind, outcome.Err.Code, ErrCodeProfileFetchFailed)
	}
}

func TestCallbackMissingUserID(t *testing.T) {
	f := newHandlerFixture(t, nil)
	f.provider.FetchProfileFunc = func(ctx context.Context, token *oauth2.Token) (providers.Profile, error) {
		return providers.Profile{"name": "Anonymous"}, nil
	}

	state, cookie := f.runChallenge(t, ChallengeOptions{RedirectTarget: "/dashboard"})
	f.runCallback(t, "code=abc&state="+url.QueryEscape(state), cookie)

	outcome := f.lastOutcome(t)
	if outcome.Kind != OutcomeFailed || outcome.Err.Code != ErrCodeNoUserID {
		t.Errorf("outcome = %s/%s, want failed/%s", outcome.Kind, outcome.Err.Code, ErrCodeNoUserID)
	}
	if len(f.signedIn) != 0 {
		t.Error("OnSignIn must not run without a user id")
	}
}

func TestOnAuthenticatedHook(t *testing.T) {
	t.Run("enriches identity", func(t *testing.T) {
		f := newHandlerFixture(t, func(cfg *Config) {
			cfg.Hooks.OnAuthenticated = func(ctx context.Context, identity *providers.Identity, state *AuthState) (*providers.Identity, error) {
				identity.SetClaim("role", "member")
				return identity, nil
			}
		})

		state, cookie := f.runChallenge(t, ChallengeOptions{RedirectTarget: "/dashboard"})
		f.runCallback(t, "code=abc&state="+url.QueryEscape(state), cookie)

		if len(f.signedIn) != 1 {
			t.Fatalf("OnSignIn called %d times, want 1", len(f.signedIn))
		}
		if role, _ := f.signedIn[0].Claim("role"); role != "member" {
			t.Errorf("role claim = %q, want member", role)
		}
	})

	t.Run("veto denies the handshake", func(t *testing.T) {
		f := newHandlerFixture(t, func(cfg *Config) {
			cfg.Hooks.OnAuthenticated = func(ctx context.Context, identity *providers.Identity, state *AuthState) (*providers.Identity, error) {
				return nil, errors.New("not on the allowlist")
			}
		})

		state, cookie := f.runChallenge(t, ChallengeOptions{RedirectTarget: "/dashboard"})
		w := f.runCallback(t, "code=abc&state="+url.QueryEscape(state), cookie)

		outcome := f.lastOutcome(t)
		if outcome.Kind != OutcomeDenied || outcome.Err.Code != ErrCodeHookRejected {
			t.Errorf("outcome = %s/%s, want denied/%s", outcome.Kind, outcome.Err.Code, ErrCodeHookRejected)
		}
		if len(f.signedIn) != 0 {
			t.Error("OnSignIn must not run after a veto")
		}
		if w.Code != http.StatusFound {
			t.Errorf("status = %d, want 302 back to the redirect target", w.Code)
		}
	})
}

func TestOnCompletedTakesOverResponse(t *testing.T) {
	f := newHandlerFixture(t, func(cfg *Config) {
		cfg.Hooks.OnCompleted = func(w http.ResponseWriter, r *http.Request, outcome *Outcome) bool {
			w.WriteHeader(http.StatusTeapot)
			return true
		}
	})

	state, cookie := f.runChallenge(t, ChallengeOptions{RedirectTarget: "/dashboard"})
	w := f.runCallback(t, "code=abc&state="+url.QueryEscape(state), cookie)

	if w.Code != http.StatusTeapot {
		t.Errorf("status = %d, want the hook's response", w.Code)
	}
	if len(f.signedIn) != 0 {
		t.Error("OnSignIn must not run once OnCompleted handled the response")
	}
}

func TestNonCallbackRequestsPassThrough(t *testing.T) {
	t.Run("with next handler", func(t *testing.T) {
		var nextCalled bool
		f := newHandlerFixture(t, func(cfg *Config) {
			cfg.Next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				w.WriteHeader(http.StatusNoContent)
			})
		})

		w := httptest.NewRecorder()
		f.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://app.example.com/other", nil))

		if !nextCalled {
			t.Error("next handler was not called")
		}
		if w.Code != http.StatusNoContent {
			t.Errorf("status = %d", w.Code)
		}
	})

	t.Run("without next handler", func(t *testing.T) {
		f := newHandlerFixture(t, nil)

		w := httptest.NewRecorder()
		f.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://app.example.com/other", nil))

		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})

	t.Run("non-GET methods are not callbacks", func(t *testing.T) {
		// The callback leg consumes GET only; providers redirect with GET.
		for _, method := range []string{http.MethodPost, http.MethodHead, http.MethodPut} {
			f := newHandlerFixture(t, nil)

			w := httptest.NewRecorder()
			f.handler.ServeHTTP(w, httptest.NewRequest(method, "http://app.example.com/signin-mock", nil))

			if w.Code != http.StatusNotFound {
				t.Errorf("%s status = %d, want 404", method, w.Code)
			}
			if len(f.outcomes) != 0 {
				t.Errorf("%s produced %d outcomes, want 0", method, len(f.outcomes))
			}
		}
	})
}

func TestCallbackRateLimit(t *testing.T) {
	f := newHandlerFixture(t, func(cfg *Config) {
		cfg.RateLimit = &RateLimitConfig{RequestsPerSecond: 1, Burst: 1}
	})

	state, cookie := f.runChallenge(t, ChallengeOptions{RedirectTarget: "/dashboard"})

	if w := f.runCallback(t, "code=abc&state="+url.QueryEscape(state), cookie); w.Code != http.StatusFound {
		t.Fatalf("first callback status = %d, want 302", w.Code)
	}

	w := f.runCallback(t, "code=abc&state="+url.QueryEscape(state), cookie)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("second callback status = %d, want 429", w.Code)
	}
	if len(f.outcomes) != 1 {
		t.Errorf("outcomes = %d, want 1 (rate-limited requests never reach the handshake)", len(f.outcomes))
	}
}

func TestHandlerWithBasePath(t *testing.T) {
	f := newHandlerFixture(t, func(cfg *Config) {
		cfg.BasePath = "/auth/"
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "http://app.example.com/login", nil)
	if err := f.handler.Challenge(w, r, ChallengeOptions{}); err != nil {
		t.Fatalf("Challenge() error = %v", err)
	}

	location, err := url.Parse(w.Header().Get("Location"))
	if err != nil {
		t.Fatalf("Location parse error = %v", err)
	}
	if got := location.Query().Get("redirect_uri"); got != "http://app.example.com/auth/signin-mock" {
		t.Errorf("redirect_uri = %q", got)
	}

	// The callback is only served under the base path.
	w2 := httptest.NewRecorder()
	f.handler.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "http://app.example.com/signin-mock", nil))
	if w2.Code != http.StatusNotFound {
		t.Errorf("bare callback path status = %d, want 404", w2.Code)
	}
}

func TestTrustProxyForwardedProto(t *testing.T) {
	// Behind a TLS-terminating proxy the handler sees plain HTTP, so the
	// forwarded scheme must drive the redirect URI. Proxy trust is
	// independent of rate limiting.
	tests := []struct {
		name       string
		trustProxy bool
		want       string
	}{
		{name: "trusted proxy", trustProxy: true, want: "https://app.example.com/signin-mock"},
		{name: "untrusted header ignored", trustProxy: false, want: "http://app.example.com/signin-mock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture(t, func(cfg *Config) {
				cfg.TrustProxy = tt.trustProxy
			})

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "http://app.example.com/login", nil)
			r.Header.Set("X-Forwarded-Proto", "https")

			if err := f.handler.Challenge(w, r, ChallengeOptions{}); err != nil {
				t.Fatalf("Challenge() error = %v", err)
			}

			location, err := url.Parse(w.Header().Get("Location"))
			if err != nil {
				t.Fatalf("Location parse error = %v", err)
			}
			if got := location.Query().Get("redirect_uri"); got != tt.want {
				t.Errorf("redirect_uri = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEphemeralStateKey(t *testing.T) {
	// With no key configured the handler still works within one process.
	f := newHandlerFixture(t, func(cfg *Config) {
		cfg.StateKey = nil
	})

	state, cookie := f.runChallenge(t, ChallengeOptions{RedirectTarget: "/dashboard"})
	w := f.runCallback(t, "code=abc&state="+url.QueryEscape(state), cookie)

	if w.Code != http.StatusFound || w.Header().Get("Location") != "/dashboard" {
		t.Errorf("callback = %d %q", w.Code, w.Header().Get("Location"))
	}
}
