package prices

import (
	"context"
	"killboard"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRegionID = int32(10000002)

type fakeStore struct {
	points map[int32]map[time.Time]killboard.PricePoint

	unpriced   []int32
	lastLookup time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{points: map[int32]map[time.Time]killboard.PricePoint{}}
}

func (s *fakeStore) add(typeID int32, date time.Time, average float64) {
	if s.points[typeID] == nil {
		s.points[typeID] = map[time.Time]killboard.PricePoint{}
	}

	date = date.UTC().Truncate(24 * time.Hour)
	s.points[typeID][date] = killboard.PricePoint{
		TypeID:   typeID,
		RegionID: testRegionID,
		Date:     date,
		Average:  average,
	}
}

func (s *fakeStore) PricePoint(_ context.Context, typeID, _ int32, at time.Time) (killboard.PricePoint, bool, error) {
	s.lastLookup = at

	point, ok := s.points[typeID][at.UTC().Truncate(24*time.Hour)]
	return point, ok, nil
}

func (s *fakeStore) LatestPricePoint(_ context.Context, typeID, _ int32) (killboard.PricePoint, bool, error) {
	var latest killboard.PricePoint
	found := false

	for _, point := range s.points[typeID] {
		if !found || point.Date.After(latest.Date) {
			latest = point
			found = true
		}
	}

	return latest, found, nil
}

func (s *fakeStore) MarkUnpriced(_ context.Context, typeID int32) error {
	s.unpriced = append(s.unpriced, typeID)
	return nil
}

func newTestResolver(store Store) *Resolver {
	return NewResolver(store, testRegionID, zerolog.Nop())
}

func TestValueExactDay(t *testing.T) {
	store := newFakeStore()
	at := time.Date(2024, 3, 14, 18, 30, 0, 0, time.UTC)
	store.add(587, at, 1_000_000)
	store.add(587, at.AddDate(0, 0, -1), 900_000)

	resolver := newTestResolver(store)

	assert.Equal(t, 1_000_000.0, resolver.Value(context.Background(), 587, at))
}

func TestValueFallsBackToLatest(t *testing.T) {
	store := newFakeStore()
	store.add(587, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 800_000)
	store.add(587, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), 850_000)

	resolver := newTestResolver(store)

	at := time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 850_000.0, resolver.Value(context.Background(), 587, at))
}

func TestValueDegradesToNominal(t *testing.T) {
	store := newFakeStore()
	resolver := newTestResolver(store)

	value := resolver.Value(context.Background(), 587, time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, NominalValue, value)
	assert.Equal(t, []int32{587}, store.unpriced, "unpriced type should be queued for backfill")
}

func TestValueClampsToEarliestDate(t *testing.T) {
	store := newFakeStore()
	resolver := newTestResolver(store)

	resolver.Value(context.Background(), 587, time.Date(2003, 5, 6, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, earliestDate, store.lastLookup)
}

func TestOverrideBeatsMarketData(t *testing.T) {
	store := newFakeStore()
	at := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)

	// A price point exists, the override must win anyway.
	store.add(2834, at, 5)

	resolver := newTestResolver(store)

	assert.Equal(t, 80_000_000_000.0, resolver.Value(context.Background(), 2834, at))
}

func TestDateGatedOverride(t *testing.T) {
	store := newFakeStore()

	before := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	after := time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)
	store.add(34559, before, 350_000_000)

	resolver := newTestResolver(store)

	assert.Equal(t, 350_000_000.0, resolver.Value(context.Background(), 34559, before),
		"market data applies before the gate date")
	assert.Equal(t, 500_000_000.0, resolver.Value(context.Background(), 34559, after),
		"override applies from the gate date on")
}

func TestItemValueBlueprintCopy(t *testing.T) {
	store := newFakeStore()
	at := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	store.add(787, at, 1_000_000)

	resolver := newTestResolver(store)

	require.Equal(t, 1_000_000.0, resolver.ItemValue(context.Background(), 787, 5, false, at))
	assert.Equal(t, 10_000.0, resolver.ItemValue(context.Background(), 787, 5, true, at))
}

func TestItemValueCollectorPin(t *testing.T) {
	store := newFakeStore()
	at := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	store.add(collectorTypeID, at, 9_999_999_999)

	resolver := newTestResolver(store)

	assert.Equal(t, NominalValue, resolver.ItemValue(context.Background(), collectorTypeID, collectorFlag, false, at))
	assert.Equal(t, 9_999_999_999.0, resolver.ItemValue(context.Background(), collectorTypeID, 5, false, at),
		"the pin only applies to the collector slot")
}
