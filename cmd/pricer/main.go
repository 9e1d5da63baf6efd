package main

import (
	"context"
	"killboard"
	"killboard/esi"
	"killboard/store"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	batchSize = 50
	interval  = 5 * time.Minute
)

// The pricer backfills market history for types the normalization
// workers had to value nominally.
func main() {
	ctx := context.Background()

	config, err := killboard.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read config")
	}

	log.Logger = killboard.NewLogger(config.Environment)

	rdb := redis.NewClient(&redis.Options{Addr: config.RedisURL})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	defer rdb.Close()

	httpClient := &http.Client{Timeout: 30 * time.Second}

	esiClient := esi.NewClient(httpClient, config.EsiContactInformation)
	documents := store.New(rdb)

	for {
		backfill(ctx, log.Logger, documents, esiClient, config.PriceRegionID)

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}

func backfill(ctx context.Context, logger zerolog.Logger, documents *store.Store, esiClient *esi.Client, regionID int32) {
	typeIDs, err := documents.PopUnpricedTypes(ctx, batchSize)
	if err != nil {
		logger.Error().Err(err).Msg("failed to pop unpriced types")
		return
	}

	for _, typeID := range typeIDs {
		points, err := esiClient.MarketHistory(ctx, regionID, typeID)
		if err != nil {
			logger.Error().Err(err).Int32("type-id", typeID).Msg("failed to fetch market history")
			continue
		}

		for _, point := range points {
			if err := documents.SavePricePoint(ctx, point); err != nil {
				logger.Error().Err(err).Int32("type-id", typeID).Msg("failed to store price point")
				break
			}
		}

		logger.Info().Int32("type-id", typeID).Int("days", len(points)).Msg("backfilled market history")
	}
}
