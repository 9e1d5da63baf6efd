package store

import (
	"context"
	"encoding/json"
	"fmt"
	"killboard"

	"github.com/redis/go-redis/v9"
)

func rawKey(killmailID int32) string {
	return fmt.Sprintf("killmail:raw:%d", killmailID)
}

// SaveRawKillmail caches the untouched upstream killmail. Raw
// killmails never change, so the cache has no expiry.
func (s *Store) SaveRawKillmail(ctx context.Context, killmailID int32, raw killboard.RawKillmail) error {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to encode raw killmail: %w", err)
	}

	if err := s.rdb.Set(ctx, rawKey(killmailID), encoded, 0).Err(); err != nil {
		return fmt.Errorf("failed to store raw killmail: %w", err)
	}

	return nil
}

// RawKillmail loads a cached upstream killmail.
func (s *Store) RawKillmail(ctx context.Context, killmailID int32) (killboard.RawKillmail, bool, error) {
	encoded, err := s.rdb.Get(ctx, rawKey(killmailID)).Result()
	if err == redis.Nil {
		return killboard.RawKillmail{}, false, nil
	}

	if err != nil {
		return killboard.RawKillmail{}, false, fmt.Errorf("failed to load raw killmail: %w", err)
	}

	var raw killboard.RawKillmail
	if err := json.Unmarshal([]byte(encoded), &raw); err != nil {
		return killboard.RawKillmail{}, false, fmt.Errorf("failed to decode raw killmail: %w", err)
	}

	return raw, true, nil
}
