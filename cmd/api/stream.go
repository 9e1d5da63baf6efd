package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"killboard"
	"time"

	"github.com/redis/go-redis/v9"
)

var errStreamEmpty = errors.New("stream empty")

// fetchKillmails tails the enriched stream from the caller's last seen
// id, kept per queue in redis. Messages already hold fully encoded
// killmails, so payloads pass through untouched.
func fetchKillmails(ctx context.Context, rdb *redis.Client, latestIDKey string, count int64, block time.Duration) ([][]byte, error) {
	latestID, err := rdb.Get(ctx, latestIDKey).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get latest ID from redis: %w", err)
	}

	if latestID == "" {
		latestID = "$"
	}

	args := &redis.XReadArgs{
		ID:      latestID,
		Streams: []string{killboard.StreamKillmails},
		Count:   count,
		Block:   block,
	}

	streams, err := rdb.XRead(ctx, args).Result()
	if err == redis.Nil {
		return nil, errStreamEmpty
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read from redis stream: %w", err)
	}

	killmails := [][]byte{}

	for _, stream := range streams {
		for _, message := range stream.Messages {
			latestID = message.ID

			encoded, ok := message.Values["killmail"].(string)
			if !ok {
				return nil, fmt.Errorf("invalid killmail message %s", message.ID)
			}

			killmails = append(killmails, []byte(encoded))
		}
	}

	if err := rdb.Set(ctx, latestIDKey, latestID, 24*time.Hour).Err(); err != nil {
		return nil, fmt.Errorf("failed to store latest ID to redis: %w", err)
	}

	return killmails, nil
}

func joinJSONArray(messages [][]byte) []byte {
	var buf bytes.Buffer

	buf.WriteByte('[')

	for i, message := range messages {
		if i > 0 {
			buf.WriteByte(',')
		}

		buf.Write(message)
	}

	buf.WriteByte(']')

	return buf.Bytes()
}
