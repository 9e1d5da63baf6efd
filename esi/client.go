// Package esi wraps the generated goesi client behind the handful of
// upstream lookups the pipeline needs, mapped onto the killboard
// domain types. A missing upstream entity is reported as found=false,
// never as an error.
package esi

import (
	"context"
	"fmt"
	"killboard"
	"net/http"

	"github.com/antihax/goesi"
)

type Client struct {
	esi *goesi.APIClient
}

func NewClient(httpClient *http.Client, contactInformation string) *Client {
	userAgent := fmt.Sprintf("Killboard/%s (%s)", killboard.Version, contactInformation)

	return &Client{esi: goesi.NewAPIClient(httpClient, userAgent)}
}

func notFound(res *http.Response) bool {
	return res != nil && res.StatusCode == http.StatusNotFound
}

// Killmail fetches one raw killmail by id and hash.
func (c *Client) Killmail(ctx context.Context, killmailID int32, hash string) (killboard.RawKillmail, error) {
	killmail, _, err := c.esi.ESI.KillmailsApi.GetKillmailsKillmailIdKillmailHash(ctx, hash, killmailID, nil)
	if err != nil {
		return killboard.RawKillmail{}, fmt.Errorf("failed to fetch killmail %d: %w", killmailID, err)
	}

	return killmail, nil
}

// Character fetches character metadata; found=false for characters the
// upstream no longer serves (biomassed, DOOMHEIM).
func (c *Client) Character(ctx context.Context, characterID int32) (killboard.Entity, bool, error) {
	character, res, err := c.esi.ESI.CharacterApi.GetCharactersCharacterId(ctx, characterID, nil)
	if err != nil {
		if notFound(res) {
			return killboard.Entity{}, false, nil
		}

		return killboard.Entity{}, false, fmt.Errorf("failed to fetch character %d: %w", characterID, err)
	}

	return killboard.Entity{
		Kind:          killboard.KindCharacter,
		ID:            characterID,
		Name:          character.Name,
		CorporationID: character.CorporationId,
		AllianceID:    character.AllianceId,
		FactionID:     character.FactionId,
	}, true, nil
}

// Corporation fetches corporation metadata.
func (c *Client) Corporation(ctx context.Context, corporationID int32) (killboard.Entity, bool, error) {
	corporation, res, err := c.esi.ESI.CorporationApi.GetCorporationsCorporationId(ctx, corporationID, nil)
	if err != nil {
		if notFound(res) {
			return killboard.Entity{}, false, nil
		}

		return killboard.Entity{}, false, fmt.Errorf("failed to fetch corporation %d: %w", corporationID, err)
	}

	return killboard.Entity{
		Kind:       killboard.KindCorporation,
		ID:         corporationID,
		Name:       corporation.Name,
		Ticker:     corporation.Ticker,
		AllianceID: corporation.AllianceId,
		FactionID:  corporation.FactionId,
	}, true, nil
}

// AllianceHistory fetches a corporation's alliance membership log.
func (c *Client) AllianceHistory(ctx context.Context, corporationID int32) ([]killboard.AllianceRecord, error) {
	entries, _, err := c.esi.ESI.CorporationApi.GetCorporationsCorporationIdAlliancehistory(ctx, corporationID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch alliance history for corporation %d: %w", corporationID, err)
	}

	records := make([]killboard.AllianceRecord, 0, len(entries))

	for _, entry := range entries {
		records = append(records, killboard.AllianceRecord{
			RecordID:   entry.RecordId,
			AllianceID: entry.AllianceId,
			StartDate:  entry.StartDate,
		})
	}

	return records, nil
}

// Alliance fetches alliance metadata.
func (c *Client) Alliance(ctx context.Context, allianceID int32) (killboard.Entity, bool, error) {
	alliance, res, err := c.esi.ESI.AllianceApi.GetAlliancesAllianceId(ctx, allianceID, nil)
	if err != nil {
		if notFound(res) {
			return killboard.Entity{}, false, nil
		}

		return killboard.Entity{}, false, fmt.Errorf("failed to fetch alliance %d: %w", allianceID, err)
	}

	return killboard.Entity{
		Kind:      killboard.KindAlliance,
		ID:        allianceID,
		Name:      alliance.Name,
		Ticker:    alliance.Ticker,
		FactionID: alliance.FactionId,
	}, true, nil
}

// Factions fetches the full (small, static) faction list.
func (c *Client) Factions(ctx context.Context) ([]killboard.Entity, error) {
	factions, _, err := c.esi.ESI.UniverseApi.GetUniverseFactions(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch factions: %w", err)
	}

	entities := make([]killboard.Entity, 0, len(factions))

	for _, faction := range factions {
		entities = append(entities, killboard.Entity{
			Kind:          killboard.KindFaction,
			ID:            faction.FactionId,
			Name:          faction.Name,
			CorporationID: faction.CorporationId,
		})
	}

	return entities, nil
}
