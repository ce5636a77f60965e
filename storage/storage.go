// Package storage defines the interface for replay protection of handshake
// state. It supports in-memory and Valkey backend implementations.
package storage

import (
	"context"
	"time"
)

// ReplayStore enforces single use of correlation tokens across instances.
//
// The correlation cookie already gives single-use semantics for one browser:
// validation clears it. A replay store additionally rejects a state value
// captured in flight and replayed through a different user agent, and keeps
// single-use semantics intact when several instances serve the callback path
// behind a load balancer. Configuring one is optional.
type ReplayStore interface {
	// MarkUsed records the token as consumed, expiring the record after ttl.
	// It returns true on first use and false when the token was seen before.
	MarkUsed(ctx context.Context, token string, ttl time.Duration) (bool, error)
}
