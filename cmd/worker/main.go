package main

import (
	"context"
	"encoding/json"
	"errors"
	"killboard"
	"killboard/entities"
	"killboard/esi"
	"killboard/normalize"
	"killboard/prices"
	"killboard/store"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const GroupID = "killboard:worker"
const ConsumerID = "any"

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

	priceResolver := prices.NewResolver(documents, config.PriceRegionID, log.With().Str("component", "prices").Logger())
	entityResolver := entities.NewResolver(documents, esiClient, log.With().Str("component", "entities").Logger())
	normalizer := normalize.NewNormalizer(priceResolver, entityResolver, documents, log.With().Str("component", "normalize").Logger())

	if err := rdb.XGroupCreate(ctx, killboard.StreamRawKillmails, GroupID, "$").Err(); err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		log.Fatal().Err(err).Msg("failed to create consumer group")
	}

	if err := rdb.XGroupCreateConsumer(ctx, killboard.StreamRawKillmails, GroupID, ConsumerID).Err(); err != nil {
		log.Fatal().Err(err).Msg("failed to create consumer")
	}

	args := &redis.XReadGroupArgs{
		Group:    GroupID,
		Consumer: ConsumerID,
		Streams:  []string{killboard.StreamRawKillmails, ">"},
		Count:    1,
		Block:    0,
		NoAck:    true,
	}

	for {
		responses, err := rdb.XReadGroup(ctx, args).Result()
		if err != nil {
			log.Error().Err(err).Msg("failed to read stream")
			time.Sleep(1 * time.Second)
			continue
		}

		for _, response := range responses {
			for _, message := range response.Messages {
				go processMessage(ctx, log.With().Str("message-id", message.ID).Logger(), rdb, normalizer, message)
			}
		}
	}
}

// processMessage normalizes one raw killmail. The work is idempotent:
// redelivery re-upserts the same record, and the emitted flag keeps
// the fan-out to exactly one publish.
func processMessage(ctx context.Context, logger zerolog.Logger, rdb *redis.Client, normalizer *normalize.Normalizer, message redis.XMessage) {
	encodedEvent, ok := message.Values["event"].(string)
	if !ok {
		logger.Error().Msg("invalid message, missing event")
		return
	}

	encodedKillmail, ok := message.Values["killmail"].(string)
	if !ok {
		logger.Error().Msg("invalid message, missing killmail")
		return
	}

	var event killboard.RawEventMessage
	if err := json.Unmarshal([]byte(encodedEvent), &event); err != nil {
		logger.Error().Err(err).Msg("failed to decode event")
		return
	}

	var raw killboard.RawKillmail
	if err := json.Unmarshal([]byte(encodedKillmail), &raw); err != nil {
		logger.Error().Err(err).Msg("failed to decode raw killmail")
		return
	}

	logger = logger.With().Int32("killmail-id", event.KillmailID).Logger()

	killmail, fresh, err := normalizer.Normalize(ctx, raw, event.Hash, event.WarID)
	if err != nil {
		var validationErr *entities.ValidationError
		if errors.As(err, &validationErr) {
			// Nothing was persisted; the queue's redelivery policy
			// decides whether to try again.
			logger.Warn().Err(err).Msg("dropped killmail with invalid upstream data")
			return
		}

		logger.Error().Err(err).Msg("failed to normalize killmail")
		return
	}

	if !fresh {
		logger.Debug().Msg("killmail already emitted")
		return
	}

	encoded, err := json.Marshal(killmail)
	if err != nil {
		logger.Error().Err(err).Msg("failed to encode enriched killmail")
		return
	}

	args := &redis.XAddArgs{
		Stream: killboard.StreamKillmails,
		ID:     "*",
		MaxLen: killboard.StreamMaxLength,
		Approx: true,
		Values: map[string]any{
			"killmail": string(encoded),
		},
	}

	if err := rdb.XAdd(ctx, args).Err(); err != nil {
		logger.Error().Err(err).Msg("failed to publish enriched killmail")
		return
	}

	logger.Info().
		Float64("total-value", killmail.TotalValue).
		Int("points", killmail.Points).
		Bool("npc", killmail.NPC).
		Bool("solo", killmail.Solo).
		Msg("normalized killmail")
}
