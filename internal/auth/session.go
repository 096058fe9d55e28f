package auth

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"cityMover/internal/config"
)

// Store tracks revoked session token ids until the token would have expired anyway.
type Store interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	Close() error
}

// StoreType represents the type of session store.
type StoreType string

const (
	StoreMemory StoreType = "memory"
	StoreRedis  StoreType = "redis"
)

// NewStore creates a session store based on configuration.
func NewStore(logger *zap.Logger, cfg config.SessionConfig) (Store, error) {
	logger.Info("initializing session store", zap.String("type", cfg.Type))
	switch StoreType(cfg.Type) {
	case StoreMemory, "":
		return NewMemoryStore(), nil
	case StoreRedis:
		return NewRedisStore(cfg.Redis)
	default:
		return nil, fmt.Errorf("unsupported session store type: %s", cfg.Type)
	}
}
