package killboard

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Environment           string
	Port                  int
	EsiContactInformation string

	RedisURL string

	ZkillboardQueueID string

	// PriceRegionID is the region of record for market valuation.
	PriceRegionID int32
}

const (
	EnvironmentProduction = "production"

	// The Forge, home of the reference market hub.
	DefaultPriceRegionID = 10000002
)

func NewConfig() (Config, error) {
	config := Config{
		Environment:           os.Getenv("ENVIRONMENT"),
		Port:                  8081,
		EsiContactInformation: os.Getenv("ESI_CONTACT_INFORMATION"),
		RedisURL:              os.Getenv("REDIS_URL"),
		ZkillboardQueueID:     os.Getenv("ZKILLBOARD_QUEUE_ID"),
		PriceRegionID:         DefaultPriceRegionID,
	}

	if config.RedisURL == "" {
		return config, errors.New("missing redis url")
	}

	if config.EsiContactInformation == "" {
		return config, errors.New("missing ESI contact information")
	}

	if config.ZkillboardQueueID == "" {
		return config, errors.New("missing zkillboard queue ID")
	}

	if raw := os.Getenv("PRICE_REGION_ID"); raw != "" {
		regionID, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return config, fmt.Errorf("invalid price region ID: %w", err)
		}

		config.PriceRegionID = int32(regionID)
	}

	return config, nil
}
