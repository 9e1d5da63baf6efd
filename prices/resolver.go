// Package prices resolves ISK values for item types at a point in
// time. Resolution never fails: absent market data degrades to a
// nominal value so downstream arithmetic never divides by zero.
package prices

import (
	"context"
	"killboard"
	"time"

	"github.com/rs/zerolog"
)

// NominalValue is returned when nothing better is known. Non-zero on
// purpose.
const NominalValue = 0.01

// earliestDate is the first day of recorded market history. Lookups
// before it are clamped to it.
var earliestDate = time.Date(2007, 12, 5, 0, 0, 0, 0, time.UTC)

// The one "collector" fit slot combination whose market data is never
// trusted.
const (
	collectorTypeID = 33329 // Genolution 'Auroral' AU-79
	collectorFlag   = 89    // implant slot
)

type Store interface {
	PricePoint(ctx context.Context, typeID, regionID int32, at time.Time) (killboard.PricePoint, bool, error)
	LatestPricePoint(ctx context.Context, typeID, regionID int32) (killboard.PricePoint, bool, error)
	MarkUnpriced(ctx context.Context, typeID int32) error
}

type Resolver struct {
	store    Store
	regionID int32
	logger   zerolog.Logger
}

func NewResolver(store Store, regionID int32, logger zerolog.Logger) *Resolver {
	return &Resolver{store: store, regionID: regionID, logger: logger}
}

// Value resolves the unit price of a type at a point in time: override
// table first, then the day slot, then the latest known slot, then the
// nominal floor.
func (r *Resolver) Value(ctx context.Context, typeID int32, at time.Time) float64 {
	if value, ok := overrideValue(typeID, at); ok {
		return value
	}

	if at.Before(earliestDate) {
		at = earliestDate
	}

	point, ok, err := r.store.PricePoint(ctx, typeID, r.regionID, at)
	if err != nil {
		r.logger.Warn().Err(err).Int32("type-id", typeID).Msg("price lookup failed, degrading to latest")
	}

	if !ok || point.Average <= 0 {
		point, ok, err = r.store.LatestPricePoint(ctx, typeID, r.regionID)
		if err != nil {
			r.logger.Warn().Err(err).Int32("type-id", typeID).Msg("latest price lookup failed, degrading to nominal")
		}
	}

	if !ok || point.Average <= 0 {
		if err := r.store.MarkUnpriced(ctx, typeID); err != nil {
			r.logger.Warn().Err(err).Int32("type-id", typeID).Msg("failed to queue type for price backfill")
		}

		return NominalValue
	}

	return point.Average
}

// ItemValue resolves the unit price of a victim item. Blueprint copies
// are worth a hundredth of the original, and the collector combination
// is pinned to the nominal value no matter what the market says.
func (r *Resolver) ItemValue(ctx context.Context, typeID, flag int32, blueprintCopy bool, at time.Time) float64 {
	if typeID == collectorTypeID && flag == collectorFlag {
		return NominalValue
	}

	value := r.Value(ctx, typeID, at)

	if blueprintCopy {
		value /= 100
	}

	return value
}
