// Package session keeps the transient checkout state that the source system
// kept in browser storage: the pre-login cart snapshot and the per-user
// submit lock. All keys are JSON strings in redis with bounded TTLs.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/NidinaKoirala/artisan-market/internal/domain"
)

var ErrSnapshotNotFound = errors.New("session snapshot not found")

const (
	snapshotTTL = 24 * time.Hour
	lockTTL     = 30 * time.Second
)

type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// SaveSnapshot persists the pre-login checkout state under the visitor key.
func (s *Store) SaveSnapshot(ctx context.Context, visitorID string, snap domain.SessionSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot failed: %w", err)
	}
	if err := s.client.Set(ctx, snapshotKey(visitorID), data, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// ConsumeSnapshot loads and deletes the snapshot in one pass. The snapshot
// is single-use: the first checkout resume after login takes it.
func (s *Store) ConsumeSnapshot(ctx context.Context, visitorID string) (*domain.SessionSnapshot, error) {
	data, err := s.client.GetDel(ctx, snapshotKey(visitorID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis getdel failed: %w", err)
	}

	var snap domain.SessionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot failed: %w", err)
	}
	return &snap, nil
}

// ClearSnapshot discards a snapshot without consuming it.
func (s *Store) ClearSnapshot(ctx context.Context, visitorID string) error {
	if err := s.client.Del(ctx, snapshotKey(visitorID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// AcquireSubmitLock takes the per-user in-flight lock guarding order
// submission. It reports false when a submit is already running. The lock
// expires on its own if the holder dies mid-submit.
func (s *Store) AcquireSubmitLock(ctx context.Context, userID string) (bool, error) {
	ok, err := s.client.SetNX(ctx, lockKey(userID), "1", lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx failed: %w", err)
	}
	return ok, nil
}

// ReleaseSubmitLock frees the submit lock.
func (s *Store) ReleaseSubmitLock(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, lockKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func snapshotKey(visitorID string) string {
	return fmt.Sprintf("checkout:snapshot:%s", visitorID)
}

func lockKey(userID string) string {
	return fmt.Sprintf("checkout:lock:%s", userID)
}
