package popularity

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/arcade-pulse/backend/internal/models"
	"github.com/arcade-pulse/backend/pkg/apperr"
)

// snapshotKey holds the latest published snapshot in Redis so instances
// without a local scheduler can serve it.
const snapshotKey = "ranking:snapshot"

// RedisMirror stores and loads the published snapshot in Redis.
type RedisMirror struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisMirror creates a Redis-backed snapshot mirror.
func NewRedisMirror(client *redis.Client, logger *zap.Logger) *RedisMirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisMirror{client: client, logger: logger}
}

// Store replaces the mirrored snapshot.
func (m *RedisMirror) Store(ctx context.Context, snap *models.PopularitySnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if err := m.client.Set(ctx, snapshotKey, raw, 0).Err(); err != nil {
		return apperr.Wrapf(apperr.ErrPersistence, err, "mirror snapshot")
	}
	return nil
}

// Load returns the mirrored snapshot, or nil when none has been stored yet.
func (m *RedisMirror) Load(ctx context.Context) (*models.PopularitySnapshot, error) {
	raw, err := m.client.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, apperr.Wrapf(apperr.ErrPersistence, err, "load mirrored snapshot")
	}
	var snap models.PopularitySnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		m.logger.Warn("mirrored snapshot is corrupt", zap.Error(err))
		return nil, nil
	}
	return &snap, nil
}
