// Package valkey provides a Valkey-backed implementation of the replay
// store, suitable for multi-instance deployments where callbacks for the
// same handshake may land on different instances.
package valkey

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"time"

	valkeygo "github.com/valkey-io/valkey-go"

	"github.com/extlogin/extlogin/storage"
)

const (
	// defaultKeyPrefix namespaces replay keys in a shared Valkey instance.
	defaultKeyPrefix = "extlogin:replay:"

	// connectionVerifyTimeout is the timeout for the initial PING.
	connectionVerifyTimeout = 5 * time.Second
)

// Compile-time check that Store implements the storage.ReplayStore interface.
var _ storage.ReplayStore = (*Store)(nil)

// Config holds Valkey connection settings for the replay store.
type Config struct {
	// Address is the Valkey server address (host:port).
	Address string

	// Password for AUTH. Empty means no authentication.
	Password string

	// DB is the database number to SELECT.
	DB int

	// KeyPrefix namespaces all keys. Defaults to "extlogin:replay:".
	KeyPrefix string

	// TLSConfig enables TLS when non-nil.
	TLSConfig *tls.Config

	// Logger for connection lifecycle messages. Defaults to slog.Default().
	Logger *slog.Logger
}

// Store is a Valkey-backed replay store.
type Store struct {
	client valkeygo.Client
	prefix string
	logger *slog.Logger
}

// NewStore creates a Valkey replay store and verifies the connection.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("valkey address is required")
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = defaultKeyPrefix
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	opts := valkeygo.ClientOption{
		InitAddress: []string{cfg.Address},
		SelectDB:    cfg.DB,
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.TLSConfig != nil {
		opts.TLSConfig = cfg.TLSConfig
	}

	client, err := valkeygo.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create valkey client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectionVerifyTimeout)
	defer cancel()

	if err := client.Do(pingCtx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to valkey: %w", err)
	}

	cfg.Logger.Info("Connected to Valkey replay store",
		"address", cfg.Address,
		"db", cfg.DB,
	)

	return &Store{
		client: client,
		prefix: cfg.KeyPrefix,
		logger: cfg.Logger,
	}, nil
}

// MarkUsed implements storage.ReplayStore. SET NX EX makes the check-and-set
// atomic across instances.
func (s *Store) MarkUsed(ctx context.Context, token string, ttl time.Duration) (bool, error) {
	key := s.prefix + token

	err := s.client.Do(ctx, s.client.B().Set().Key(key).Value("1").Nx().Ex(ttl).Build()).Error()
	if err != nil {
		// SET NX replies nil when the key already exists.
		if valkeygo.IsValkeyNil(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to mark token as used: %w", err)
	}

	return true, nil
}

// Close releases the underlying client connection.
func (s *Store) Close() {
	s.client.Close()
}
