package extlogin

import (
	"encoding/json"
	"fmt"

	"github.com/extlogin/extlogin/security"
)

// Field is a single named value carried through the handshake.
type Field struct {
	Name  string
	Value string
}

// AuthState is the property bag that rides through the provider as the OAuth
// state parameter. It is sealed by the state codec before leaving the
// application, so the provider and the user agent see only opaque bytes.
type AuthState struct {
	// Correlation is the anti-CSRF token bound to this attempt
	Correlation string

	// RedirectTarget is where the user agent goes after the handshake
	RedirectTarget string

	// Extras are caller-supplied values, preserved in insertion order
	Extras []Field
}

// SetExtra records a value, replacing an existing field of the same name.
func (s *AuthState) SetExtra(name, value string) {
	for i := range s.Extras {
		if s.Extras[i].Name == name {
			s.Extras[i].Value = value
			return
		}
	}
	s.Extras = append(s.Extras, Field{Name: name, Value: value})
}

// Extra returns the named value, reporting whether it is present.
func (s *AuthState) Extra(name string) (string, bool) {
	for i := range s.Extras {
		if s.Extras[i].Name == name {
			return s.Extras[i].Value, true
		}
	}
	return "", false
}

// wireState is the serialized form. Short keys keep the sealed state, which
// travels in a query string, as small as possible.
type wireState struct {
	C string      `json:"c"`
	R string      `json:"r,omitempty"`
	X [][2]string `json:"x,omitempty"`
}

// EncodeState seals the state for the round trip through the provider.
// The correlation token must be set; an attempt without one could never
// validate on return.
func EncodeState(codec *security.StateCodec, state *AuthState) (string, error) {
	if state.Correlation == "" {
		return "", fmt.Errorf("state has no correlation token")
	}

	w := wireState{C: state.Correlation, R: state.RedirectTarget}
	for _, f := range state.Extras {
		w.X = append(w.X, [2]string{f.Name, f.Value})
	}

	plaintext, err := json.Marshal(w)
	if err != nil {
		return "", fmt.Errorf("failed to serialize state: %w", err)
	}

	return codec.Encode(plaintext)
}

// DecodeState unseals a returned state value. It returns
// security.ErrEmptyState for empty input and security.ErrInvalidState for
// anything that fails verification, including the malformed-payload case
// that only a key-holder could produce.
func DecodeState(codec *security.StateCodec, encoded string) (*AuthState, error) {
	plaintext, err := codec.Decode(encoded)
	if err != nil {
		return nil, err
	}

	var w wireState
	if err := json.Unmarshal(plaintext, &w); err != nil {
		return nil, security.ErrInvalidState
	}
	if w.C == "" {
		return nil, security.ErrInvalidState
	}

	state := &AuthState{Correlation: w.C, RedirectTarget: w.R}
	for _, kv := range w.X {
		state.Extras = append(state.Extras, Field{Name: kv[0], Value: kv[1]})
	}

	return state, nil
}
