package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"
)

// CookieNamePrefix is the prefix of the per-provider correlation cookie.
const CookieNamePrefix = "extlogin.correlation."

// DefaultCorrelationMaxAge bounds how long a pending attempt stays valid.
// A user who parks on the provider's consent screen longer than this has to
// start over.
const DefaultCorrelationMaxAge = 15 * time.Minute

// CorrelationStore issues and validates the anti-CSRF correlation token for a
// handshake attempt. The pending token lives in a client-side cookie keyed by
// the provider name, so no server-side state is shared across requests.
type CorrelationStore struct {
	cookieName string
	maxAge     time.Duration
}

// NewCorrelationStore creates a correlation store for the named provider.
func NewCorrelationStore(providerName string) *CorrelationStore {
	return &CorrelationStore{
		cookieName: CookieNamePrefix + providerName,
		maxAge:     DefaultCorrelationMaxAge,
	}
}

// CookieName returns the name of the correlation cookie.
func (s *CorrelationStore) CookieName() string {
	return s.cookieName
}

// GenerateCorrelationToken generates a 128-bit random token encoded as a
// 22-character unpadded base64url string.
func GenerateCorrelationToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate correlation token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Issue mints a fresh correlation token and records it as the pending token
// for this attempt. Concurrent challenges from the same client each get an
// independent token; only the most recently issued one survives in the cookie.
func (s *CorrelationStore) Issue(w http.ResponseWriter, r *http.Request) (string, error) {
	token, err := GenerateCorrelationToken()
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	return token, nil
}

// Validate compares the token embedded in the returned state against the
// pending one. The cookie is cleared no matter the result: correlation tokens
// are single use, and a failed validation must not leave a token behind for a
// second try.
func (s *CorrelationStore) Validate(w http.ResponseWriter, r *http.Request, presented string) bool {
	cookie, err := r.Cookie(s.cookieName)
	s.clear(w, r)

	if err != nil || cookie.Value == "" || presented == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(presented)) == 1
}

func (s *CorrelationStore) clear(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}
