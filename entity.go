package killboard

import (
	"fmt"
	"time"
)

type EntityKind string

const (
	KindCharacter     EntityKind = "character"
	KindCorporation   EntityKind = "corporation"
	KindAlliance      EntityKind = "alliance"
	KindFaction       EntityKind = "faction"
	KindSystem        EntityKind = "system"
	KindConstellation EntityKind = "constellation"
	KindRegion        EntityKind = "region"
	KindItemType      EntityKind = "type"
	KindItemGroup     EntityKind = "group"
)

// Entity is the cached metadata document for any resolvable entity.
// A refetch replaces the document wholesale, except History, which is
// carried over from the previous document unless the caller asks for
// a history refresh.
type Entity struct {
	Kind EntityKind `json:"kind"`
	ID   int32      `json:"id"`
	Name string     `json:"name"`

	Ticker        string `json:"ticker,omitempty"`
	CorporationID int32  `json:"corporation_id,omitempty"`
	AllianceID    int32  `json:"alliance_id,omitempty"`
	FactionID     int32  `json:"faction_id,omitempty"`

	// Universe kinds.
	ConstellationID int32   `json:"constellation_id,omitempty"`
	RegionID        int32   `json:"region_id,omitempty"`
	Security        float64 `json:"security,omitempty"`

	// Item type and group kinds.
	GroupID    int32 `json:"group_id,omitempty"`
	CategoryID int32 `json:"category_id,omitempty"`

	// Deleted marks a terminal record for an entity the upstream no
	// longer serves. Name and affiliations are best-effort leftovers
	// from the last good fetch.
	Deleted bool `json:"deleted,omitempty"`

	History []AllianceRecord `json:"history,omitempty"`

	FetchedAt time.Time `json:"fetched_at"`
}

// AllianceRecord is one entry of a corporation's alliance history.
type AllianceRecord struct {
	RecordID   int32     `json:"record_id"`
	AllianceID int32     `json:"alliance_id,omitempty"`
	StartDate  time.Time `json:"start_date"`
}

// Image returns the image-server URL for the entity, empty for kinds
// without portraits or icons.
func (e Entity) Image() string {
	switch e.Kind {
	case KindCharacter:
		return fmt.Sprintf("https://images.evetech.net/characters/%d/portrait", e.ID)
	case KindCorporation:
		return fmt.Sprintf("https://images.evetech.net/corporations/%d/logo", e.ID)
	case KindAlliance:
		return fmt.Sprintf("https://images.evetech.net/alliances/%d/logo", e.ID)
	case KindFaction:
		return fmt.Sprintf("https://images.evetech.net/corporations/%d/logo", e.ID)
	case KindItemType:
		return fmt.Sprintf("https://images.evetech.net/types/%d/icon", e.ID)
	}

	return ""
}

// Ref returns the entity as a denormalized killmail reference.
func (e Entity) Ref() Identity {
	return Identity{ID: e.ID, Name: e.Name, Image: e.Image()}
}

// Stats are the running counters accumulated on characters,
// corporations and alliances as killmails are normalized. They live in
// a redis hash and are only ever changed by atomic increments.
type Stats struct {
	Kills  int64 `json:"kills"`
	Losses int64 `json:"losses"`
	Points int64 `json:"points"`
}

// Celestial categories, in the order the near-label walk prefers them.
const (
	CelestialStargate = "Stargate"
	CelestialMoon     = "Moon"
	CelestialPlanet   = "Planet"
	CelestialBelt     = "Asteroid Belt"
	CelestialSun      = "Sun"
)

// Celestial is one positioned object of a solar system, used for the
// "near" label on killmails.
type Celestial struct {
	Category string  `json:"category"`
	Name     string  `json:"name"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Z        float64 `json:"z"`
}
