package esi

import (
	"context"
	"fmt"
	"killboard"
	"time"
)

// MarketHistory fetches the day-granular market history of a type in a
// region, oldest first.
func (c *Client) MarketHistory(ctx context.Context, regionID, typeID int32) ([]killboard.PricePoint, error) {
	entries, res, err := c.esi.ESI.MarketApi.GetMarketsRegionIdHistory(ctx, regionID, typeID, nil)
	if err != nil {
		// Types without a market (rookie items, some structures) are
		// not an error, just an empty history.
		if notFound(res) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch market history for type %d: %w", typeID, err)
	}

	points := make([]killboard.PricePoint, 0, len(entries))

	for _, entry := range entries {
		date, err := time.Parse("2006-01-02", entry.Date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse market history date %q: %w", entry.Date, err)
		}

		points = append(points, killboard.PricePoint{
			TypeID:   typeID,
			RegionID: regionID,
			Date:     date,
			Average:  entry.Average,
			Highest:  entry.Highest,
			Lowest:   entry.Lowest,
		})
	}

	return points, nil
}
