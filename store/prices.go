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

func priceKey(typeID, regionID int32) string {
	return fmt.Sprintf("prices:%d:%d", typeID, regionID)
}

func day(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

// SavePricePoint upserts one day of market history for a type. The day
// slot is replaced, not merged.
func (s *Store) SavePricePoint(ctx context.Context, point killboard.PricePoint) error {
	point.Date = day(point.Date)

	encoded, err := json.Marshal(point)
	if err != nil {
		return fmt.Errorf("failed to encode price point: %w", err)
	}

	key := priceKey(point.TypeID, point.RegionID)
	score := strconv.FormatInt(point.Date.Unix(), 10)

	if err := s.rdb.ZRemRangeByScore(ctx, key, score, score).Err(); err != nil {
		return fmt.Errorf("failed to clear price slot: %w", err)
	}

	if err := s.rdb.ZAdd(ctx, key, redis.Z{
		Score:  float64(point.Date.Unix()),
		Member: encoded,
	}).Err(); err != nil {
		return fmt.Errorf("failed to store price point: %w", err)
	}

	return nil
}

// PricePoint looks up the exact day slot for a type in a region.
func (s *Store) PricePoint(ctx context.Context, typeID, regionID int32, at time.Time) (killboard.PricePoint, bool, error) {
	score := strconv.FormatInt(day(at).Unix(), 10)

	members, err := s.rdb.ZRangeByScore(ctx, priceKey(typeID, regionID), &redis.ZRangeBy{
		Min: score,
		Max: score,
	}).Result()
	if err != nil {
		return killboard.PricePoint{}, false, fmt.Errorf("failed to query price history: %w", err)
	}

	return decodePricePoint(members)
}

// LatestPricePoint returns the most recent day slot for a type,
// whatever its date.
func (s *Store) LatestPricePoint(ctx context.Context, typeID, regionID int32) (killboard.PricePoint, bool, error) {
	members, err := s.rdb.ZRevRangeByScore(ctx, priceKey(typeID, regionID), &redis.ZRangeBy{
		Min:    "-inf",
		Max:    "+inf",
		Offset: 0,
		Count:  1,
	}).Result()
	if err != nil {
		return killboard.PricePoint{}, false, fmt.Errorf("failed to query price history: %w", err)
	}

	return decodePricePoint(members)
}

func decodePricePoint(members []string) (killboard.PricePoint, bool, error) {
	if len(members) == 0 {
		return killboard.PricePoint{}, false, nil
	}

	var point killboard.PricePoint
	if err := json.Unmarshal([]byte(members[0]), &point); err != nil {
		return killboard.PricePoint{}, false, fmt.Errorf("failed to decode price point: %w", err)
	}

	return point, true, nil
}

const unpricedKey = "prices:unpriced"

// MarkUnpriced records a type the resolver had to value nominally so
// the pricer can backfill its market history.
func (s *Store) MarkUnpriced(ctx context.Context, typeID int32) error {
	if err := s.rdb.SAdd(ctx, unpricedKey, typeID).Err(); err != nil {
		return fmt.Errorf("failed to mark type unpriced: %w", err)
	}

	return nil
}

// PopUnpricedTypes takes up to count types off the backfill set.
func (s *Store) PopUnpricedTypes(ctx context.Context, count int64) ([]int32, error) {
	members, err := s.rdb.SPopN(ctx, unpricedKey, count).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to pop unpriced types: %w", err)
	}

	typeIDs := make([]int32, 0, len(members))

	for _, member := range members {
		typeID, err := strconv.ParseInt(member, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("failed to decode unpriced type %q: %w", member, err)
		}

		typeIDs = append(typeIDs, int32(typeID))
	}

	return typeIDs, nil
}
