package store

import (
	"context"
	"encoding/json"
	"fmt"
	"killboard"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the redis document store. Every write is an upsert by
// natural key; the only consistency primitives in use are per-key
// atomicity, SETNX and HINCRBY.
type Store struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func killmailKey(killmailID int32, hash string) string {
	return fmt.Sprintf("killmail:%d:%s", killmailID, hash)
}

func systemIndexKey(systemID int32) string {
	return fmt.Sprintf("system:%d:killmails", systemID)
}

// SaveKillmail replaces the enriched killmail document and indexes it
// by (system, time). Re-running the same normalization lands on the
// same keys, so at-least-once delivery is safe.
func (s *Store) SaveKillmail(ctx context.Context, killmail killboard.Killmail) error {
	encoded, err := json.Marshal(killmail)
	if err != nil {
		return fmt.Errorf("failed to encode killmail: %w", err)
	}

	if err := s.rdb.Set(ctx, killmailKey(killmail.ID, killmail.Hash), encoded, 0).Err(); err != nil {
		return fmt.Errorf("failed to store killmail: %w", err)
	}

	if err := s.rdb.Set(ctx, fmt.Sprintf("killmail:hash:%d", killmail.ID), killmail.Hash, 0).Err(); err != nil {
		return fmt.Errorf("failed to store killmail hash: %w", err)
	}

	member := killmailKey(killmail.ID, killmail.Hash)
	if err := s.rdb.ZAdd(ctx, systemIndexKey(killmail.SolarSystemID), redis.Z{
		Score:  float64(killmail.Time.Unix()),
		Member: member,
	}).Err(); err != nil {
		return fmt.Errorf("failed to index killmail: %w", err)
	}

	return nil
}

// Killmail loads an enriched killmail by its primary key.
func (s *Store) Killmail(ctx context.Context, killmailID int32, hash string) (killboard.Killmail, bool, error) {
	return s.killmailByKey(ctx, killmailKey(killmailID, hash))
}

// KillmailByID resolves the stored hash for the id first.
func (s *Store) KillmailByID(ctx context.Context, killmailID int32) (killboard.Killmail, bool, error) {
	hash, err := s.rdb.Get(ctx, fmt.Sprintf("killmail:hash:%d", killmailID)).Result()
	if err == redis.Nil {
		return killboard.Killmail{}, false, nil
	}

	if err != nil {
		return killboard.Killmail{}, false, fmt.Errorf("failed to look up killmail hash: %w", err)
	}

	return s.Killmail(ctx, killmailID, hash)
}

func (s *Store) killmailByKey(ctx context.Context, key string) (killboard.Killmail, bool, error) {
	encoded, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return killboard.Killmail{}, false, nil
	}

	if err != nil {
		return killboard.Killmail{}, false, fmt.Errorf("failed to load killmail: %w", err)
	}

	var killmail killboard.Killmail
	if err := json.Unmarshal([]byte(encoded), &killmail); err != nil {
		return killboard.Killmail{}, false, fmt.Errorf("failed to decode killmail: %w", err)
	}

	return killmail, true, nil
}

// CountKillmails counts persisted killmails for a system in [from, to).
func (s *Store) CountKillmails(ctx context.Context, systemID int32, from, to time.Time) (int64, error) {
	count, err := s.rdb.ZCount(ctx, systemIndexKey(systemID),
		strconv.FormatInt(from.Unix(), 10),
		"("+strconv.FormatInt(to.Unix(), 10)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count killmails: %w", err)
	}

	return count, nil
}

// KillmailsInRange loads all killmails for a system in [from, to],
// oldest first. Index entries whose document has gone missing are
// skipped.
func (s *Store) KillmailsInRange(ctx context.Context, systemID int32, from, to time.Time) ([]killboard.Killmail, error) {
	keys, err := s.rdb.ZRangeByScore(ctx, systemIndexKey(systemID), &redis.ZRangeBy{
		Min: strconv.FormatInt(from.Unix(), 10),
		Max: strconv.FormatInt(to.Unix(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to query killmail index: %w", err)
	}

	killmails := make([]killboard.Killmail, 0, len(keys))

	for _, key := range keys {
		killmail, ok, err := s.killmailByKey(ctx, key)
		if err != nil {
			return nil, err
		}

		if ok {
			killmails = append(killmails, killmail)
		}
	}

	return killmails, nil
}

// MarkEmitted flips the once-only fan-out flag for a killmail. The
// first caller gets true; everyone after that false.
func (s *Store) MarkEmitted(ctx context.Context, killmailID int32, hash string) (bool, error) {
	fresh, err := s.rdb.SetNX(ctx, fmt.Sprintf("killmail:emitted:%d:%s", killmailID, hash), "1", 0).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark killmail emitted: %w", err)
	}

	return fresh, nil
}
