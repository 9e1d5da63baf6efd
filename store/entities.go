package store

import (
	"context"
	"encoding/json"
	"fmt"
	"killboard"
	"strconv"

	"github.com/redis/go-redis/v9"
)

func entityKey(kind killboard.EntityKind, id int32) string {
	return fmt.Sprintf("entity:%s:%d", kind, id)
}

// Entity loads a cached entity document.
func (s *Store) Entity(ctx context.Context, kind killboard.EntityKind, id int32) (killboard.Entity, bool, error) {
	encoded, err := s.rdb.Get(ctx, entityKey(kind, id)).Result()
	if err == redis.Nil {
		return killboard.Entity{}, false, nil
	}

	if err != nil {
		return killboard.Entity{}, false, fmt.Errorf("failed to load entity: %w", err)
	}

	var entity killboard.Entity
	if err := json.Unmarshal([]byte(encoded), &entity); err != nil {
		return killboard.Entity{}, false, fmt.Errorf("failed to decode entity: %w", err)
	}

	return entity, true, nil
}

// SaveEntity replaces the cached entity document wholesale. Concurrent
// writers for the same id race harmlessly, last writer wins.
func (s *Store) SaveEntity(ctx context.Context, entity killboard.Entity) error {
	encoded, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to encode entity: %w", err)
	}

	if err := s.rdb.Set(ctx, entityKey(entity.Kind, entity.ID), encoded, 0).Err(); err != nil {
		return fmt.Errorf("failed to store entity: %w", err)
	}

	return nil
}

func statsKey(kind killboard.EntityKind, id int32) string {
	return fmt.Sprintf("stats:%s:%d", kind, id)
}

// AddStats applies the running-counter deltas with atomic increments,
// never read-modify-write.
func (s *Store) AddStats(ctx context.Context, kind killboard.EntityKind, id int32, delta killboard.Stats) error {
	key := statsKey(kind, id)

	for field, value := range map[string]int64{
		"kills":  delta.Kills,
		"losses": delta.Losses,
		"points": delta.Points,
	} {
		if value == 0 {
			continue
		}

		if err := s.rdb.HIncrBy(ctx, key, field, value).Err(); err != nil {
			return fmt.Errorf("failed to increment %s %s: %w", kind, field, err)
		}
	}

	return nil
}

// Stats reads the running counters for an entity.
func (s *Store) Stats(ctx context.Context, kind killboard.EntityKind, id int32) (killboard.Stats, error) {
	values, err := s.rdb.HGetAll(ctx, statsKey(kind, id)).Result()
	if err != nil {
		return killboard.Stats{}, fmt.Errorf("failed to load stats: %w", err)
	}

	var stats killboard.Stats

	for field, raw := range values {
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return killboard.Stats{}, fmt.Errorf("failed to decode stats field %s: %w", field, err)
		}

		switch field {
		case "kills":
			stats.Kills = value
		case "losses":
			stats.Losses = value
		case "points":
			stats.Points = value
		}
	}

	return stats, nil
}

func celestialsKey(systemID int32) string {
	return fmt.Sprintf("system:%d:celestials", systemID)
}

// SystemCelestials loads the cached celestial sheet for a system.
func (s *Store) SystemCelestials(ctx context.Context, systemID int32) ([]killboard.Celestial, bool, error) {
	encoded, err := s.rdb.Get(ctx, celestialsKey(systemID)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("failed to load celestials: %w", err)
	}

	var celestials []killboard.Celestial
	if err := json.Unmarshal([]byte(encoded), &celestials); err != nil {
		return nil, false, fmt.Errorf("failed to decode celestials: %w", err)
	}

	return celestials, true, nil
}

// SaveSystemCelestials caches the celestial sheet. Systems do not move,
// so there is no expiry.
func (s *Store) SaveSystemCelestials(ctx context.Context, systemID int32, celestials []killboard.Celestial) error {
	encoded, err := json.Marshal(celestials)
	if err != nil {
		return fmt.Errorf("failed to encode celestials: %w", err)
	}

	if err := s.rdb.Set(ctx, celestialsKey(systemID), encoded, 0).Err(); err != nil {
		return fmt.Errorf("failed to store celestials: %w", err)
	}

	return nil
}
