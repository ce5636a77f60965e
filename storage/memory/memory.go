// Package memory provides an in-memory implementation of the replay store.
// It is suitable for development, testing, and single-instance deployments.
package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/extlogin/extlogin/storage"
)

// defaultCleanupInterval is how often expired entries are swept.
const defaultCleanupInterval = time.Minute

// Compile-time check that Store implements the storage.ReplayStore interface.
var _ storage.ReplayStore = (*Store)(nil)

// Store is an in-memory replay store.
type Store struct {
	mu   sync.Mutex
	used map[string]time.Time // token -> expiry

	logger      *slog.Logger
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewStore creates an in-memory replay store with a background sweeper.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		used:        make(map[string]time.Time),
		logger:      logger,
		stopCleanup: make(chan struct{}),
	}

	go s.cleanupLoop(defaultCleanupInterval)

	return s
}

// MarkUsed implements storage.ReplayStore.
func (s *Store) MarkUsed(_ context.Context, token string, ttl time.Duration) (bool, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if expiry, exists := s.used[token]; exists && now.Before(expiry) {
		return false, nil
	}

	s.used[token] = now.Add(ttl)
	return true, nil
}

// Close terminates the background sweeper.
func (s *Store) Close() {
	s.stopOnce.Do(func() {
		close(s.stopCleanup)
	})
}

func (s *Store) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *Store) cleanup() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, expiry := range s.used {
		if now.After(expiry) {
			delete(s.used, token)
			removed++
		}
	}

	if removed > 0 {
		s.logger.Debug("Cleaned up expired replay entries",
			"removed", removed,
			"remaining", len(s.used),
		)
	}
}
