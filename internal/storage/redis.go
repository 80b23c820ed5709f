package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/feed-engine/pkg/state"
)

// DefaultSnapshotTTL is how long a snapshot outlives its last save
const DefaultSnapshotTTL = time.Hour

// Snapshot is the game state of a session at a point in the feed
type Snapshot struct {
	SessionID uuid.UUID        `json:"session_id"`
	Lines     int64            `json:"lines"`
	Game      *state.GameState `json:"game"`
	SavedAt   time.Time        `json:"saved_at"`
}

// Store persists session snapshots
type Store interface {
	SaveSnapshot(ctx context.Context, snap *Snapshot) error
	LoadSnapshot(ctx context.Context, sessionID uuid.UUID) (*Snapshot, error)
	DeleteSnapshot(ctx context.Context, sessionID uuid.UUID) error
}

// RedisStorage keeps snapshots in Redis with a TTL
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// Ensure RedisStorage implements Store interface
var _ Store = (*RedisStorage)(nil)

// NewRedisStorage wraps an existing client. A ttl of zero uses DefaultSnapshotTTL.
func NewRedisStorage(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisStorage {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &RedisStorage{
		client: client,
		logger: logger,
		ttl:    ttl,
	}
}

func snapshotKey(id uuid.UUID) string {
	return "feed-state:" + id.String()
}

func (r *RedisStorage) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	if snap.Game == nil {
		return fmt.Errorf("snapshot for %s has no game state", snap.SessionID)
	}
	snap.SavedAt = time.Now().UTC()

	data, err := json.Marshal(snap)
	if err != nil {
		r.logger.Error("Failed to marshal snapshot", "uuid", snap.SessionID, "error", err)
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := r.client.Set(ctx, snapshotKey(snap.SessionID), data, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save snapshot", "uuid", snap.SessionID, "error", err)
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns nil, nil when no snapshot exists
func (r *RedisStorage) LoadSnapshot(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	data, err := r.client.Get(ctx, snapshotKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Debug("Snapshot not found", "uuid", id)
			return nil, nil
		}
		r.logger.Error("Failed to load snapshot", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		r.logger.Error("Failed to unmarshal snapshot", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	if snap.Game == nil {
		return nil, fmt.Errorf("snapshot for %s has no game state", id)
	}
	return &snap, nil
}

func (r *RedisStorage) DeleteSnapshot(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, snapshotKey(id)).Err(); err != nil {
		r.logger.Error("Failed to delete snapshot", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}
