package main

import (
	"context"
	"encoding/json"
	"killboard"
	"killboard/esi"
	"killboard/store"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

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

	httpClient := &http.Client{Timeout: 10 * time.Second}

	esiClient := esi.NewClient(httpClient, config.EsiContactInformation)
	documents := store.New(rdb)

	go watchRedisQ(ctx, log.With().Str("source", "redisq").Logger(), rdb, documents, esiClient, config.ZkillboardQueueID)

	<-make(chan bool, 1)
}

// processKillmail pulls the raw killmail from ESI, caches it and hands
// it to the normalization workers over the raw stream.
func processKillmail(ctx context.Context, logger zerolog.Logger, rdb *redis.Client, documents *store.Store, esiClient *esi.Client, killmailID int32, hash string, warID int32) {
	raw, err := esiClient.Killmail(ctx, killmailID, hash)
	if err != nil {
		logger.Error().Err(err).Msg("failed to fetch killmail from ESI")
		return
	}

	if err := documents.SaveRawKillmail(ctx, killmailID, raw); err != nil {
		logger.Error().Err(err).Msg("failed to cache raw killmail")
		return
	}

	encodedKillmail, err := json.Marshal(raw)
	if err != nil {
		logger.Error().Err(err).Msg("failed to encode killmail")
		return
	}

	encodedEvent, err := json.Marshal(killboard.RawEventMessage{
		KillmailID: killmailID,
		Hash:       hash,
		WarID:      warID,
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to encode event")
		return
	}

	args := &redis.XAddArgs{
		Stream: killboard.StreamRawKillmails,
		ID:     "*",
		MaxLen: killboard.StreamMaxLength,
		Approx: true,
		Values: map[string]any{
			"event":    string(encodedEvent),
			"killmail": string(encodedKillmail),
		},
	}

	if err := rdb.XAdd(ctx, args).Err(); err != nil {
		logger.Error().Err(err).Msg("failed to add killmail to queue")
	}
}
