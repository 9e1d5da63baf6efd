// Package entities resolves entity metadata through a cache-or-fetch
// strategy: a cached document is served while fresh, otherwise the
// upstream is consulted, validated and the document replaced
// wholesale.
package entities

import (
	"context"
	"fmt"
	"killboard"
	"time"

	"github.com/rs/zerolog"
)

// StalenessWindow is how long a cached entity document is trusted.
const StalenessWindow = 30 * 24 * time.Hour

// ValidationError reports upstream data missing a mandatory field. It
// aborts the normalization that triggered the lookup.
type ValidationError struct {
	Kind  killboard.EntityKind
	ID    int32
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %d: missing %s", e.Kind, e.ID, e.Field)
}

// Cache is the document-store side of the resolver.
type Cache interface {
	Entity(ctx context.Context, kind killboard.EntityKind, id int32) (killboard.Entity, bool, error)
	SaveEntity(ctx context.Context, entity killboard.Entity) error
	AddStats(ctx context.Context, kind killboard.EntityKind, id int32, delta killboard.Stats) error
	SystemCelestials(ctx context.Context, systemID int32) ([]killboard.Celestial, bool, error)
	SaveSystemCelestials(ctx context.Context, systemID int32, celestials []killboard.Celestial) error
}

// Upstream is the authoritative source, one synchronous fetch per
// entity. found=false means the upstream no longer serves the entity.
type Upstream interface {
	Character(ctx context.Context, id int32) (killboard.Entity, bool, error)
	Corporation(ctx context.Context, id int32) (killboard.Entity, bool, error)
	AllianceHistory(ctx context.Context, corporationID int32) ([]killboard.AllianceRecord, error)
	Alliance(ctx context.Context, id int32) (killboard.Entity, bool, error)
	Factions(ctx context.Context) ([]killboard.Entity, error)
	System(ctx context.Context, id int32) (killboard.Entity, bool, error)
	Constellation(ctx context.Context, id int32) (killboard.Entity, bool, error)
	Region(ctx context.Context, id int32) (killboard.Entity, bool, error)
	ItemType(ctx context.Context, id int32) (killboard.Entity, bool, error)
	ItemGroup(ctx context.Context, id int32) (killboard.Entity, bool, error)
	Celestials(ctx context.Context, systemID int32) ([]killboard.Celestial, error)
}

type Resolver struct {
	cache    Cache
	upstream Upstream
	logger   zerolog.Logger

	// now is swapped in tests.
	now func() time.Time
}

func NewResolver(cache Cache, upstream Upstream, logger zerolog.Logger) *Resolver {
	return &Resolver{
		cache:    cache,
		upstream: upstream,
		logger:   logger,
		now:      time.Now,
	}
}

// Resolve returns the cached entity while fresh, otherwise refetches.
func (r *Resolver) Resolve(ctx context.Context, kind killboard.EntityKind, id int32) (killboard.Entity, error) {
	return r.resolve(ctx, kind, id, false)
}

// Refresh refetches unconditionally. With refreshHistory the preserved
// history sub-field is refetched too instead of being carried over.
func (r *Resolver) Refresh(ctx context.Context, kind killboard.EntityKind, id int32, refreshHistory bool) (killboard.Entity, error) {
	return r.fetch(ctx, kind, id, refreshHistory)
}

func (r *Resolver) resolve(ctx context.Context, kind killboard.EntityKind, id int32, refreshHistory bool) (killboard.Entity, error) {
	cached, ok, err := r.cache.Entity(ctx, kind, id)
	if err != nil {
		return killboard.Entity{}, err
	}

	if ok && r.fresh(cached) {
		return cached, nil
	}

	return r.fetch(ctx, kind, id, refreshHistory)
}

// fresh requires the identity fields and a recent enough fetch. A
// deleted record is terminal and never refetched.
func (r *Resolver) fresh(entity killboard.Entity) bool {
	if entity.Deleted {
		return true
	}

	if entity.Name == "" {
		return false
	}

	if entity.Kind == killboard.KindCharacter && entity.CorporationID == 0 {
		return false
	}

	return r.now().Sub(entity.FetchedAt) < StalenessWindow
}

func (r *Resolver) fetch(ctx context.Context, kind killboard.EntityKind, id int32, refreshHistory bool) (killboard.Entity, error) {
	previous, hadPrevious, err := r.cache.Entity(ctx, kind, id)
	if err != nil {
		return killboard.Entity{}, err
	}

	entity, found, err := r.fetchUpstream(ctx, kind, id)
	if err != nil {
		return killboard.Entity{}, err
	}

	if !found {
		// Terminal record. Whatever we knew before is the best
		// metadata we will ever have.
		entity = previous
		entity.Kind = kind
		entity.ID = id
		entity.Deleted = true
		entity.FetchedAt = r.now()

		if err := r.cache.SaveEntity(ctx, entity); err != nil {
			return killboard.Entity{}, err
		}

		return entity, nil
	}

	if err := validate(entity); err != nil {
		return killboard.Entity{}, err
	}

	if kind == killboard.KindCorporation {
		if refreshHistory {
			history, err := r.upstream.AllianceHistory(ctx, id)
			if err != nil {
				return killboard.Entity{}, err
			}

			entity.History = history
		} else if hadPrevious {
			entity.History = previous.History
		}
	}

	entity.FetchedAt = r.now()

	if err := r.cache.SaveEntity(ctx, entity); err != nil {
		return killboard.Entity{}, err
	}

	if entity.FactionID != 0 {
		if _, err := r.Resolve(ctx, killboard.KindFaction, entity.FactionID); err != nil {
			return killboard.Entity{}, err
		}
	}

	return entity, nil
}

func (r *Resolver) fetchUpstream(ctx context.Context, kind killboard.EntityKind, id int32) (killboard.Entity, bool, error) {
	switch kind {
	case killboard.KindCharacter:
		return r.upstream.Character(ctx, id)
	case killboard.KindCorporation:
		return r.upstream.Corporation(ctx, id)
	case killboard.KindAlliance:
		return r.upstream.Alliance(ctx, id)
	case killboard.KindFaction:
		return r.fetchFaction(ctx, id)
	case killboard.KindSystem:
		return r.upstream.System(ctx, id)
	case killboard.KindConstellation:
		return r.upstream.Constellation(ctx, id)
	case killboard.KindRegion:
		return r.upstream.Region(ctx, id)
	case killboard.KindItemType:
		return r.upstream.ItemType(ctx, id)
	case killboard.KindItemGroup:
		return r.upstream.ItemGroup(ctx, id)
	}

	return killboard.Entity{}, false, fmt.Errorf("unknown entity kind %q", kind)
}

// fetchFaction resolves through the full faction list, caching every
// faction on the way since the list is one upstream call.
func (r *Resolver) fetchFaction(ctx context.Context, id int32) (killboard.Entity, bool, error) {
	factions, err := r.upstream.Factions(ctx)
	if err != nil {
		return killboard.Entity{}, false, err
	}

	var match killboard.Entity
	found := false

	for _, faction := range factions {
		faction.FetchedAt = r.now()

		if faction.ID == id {
			match = faction
			found = true
			continue
		}

		if err := r.cache.SaveEntity(ctx, faction); err != nil {
			return killboard.Entity{}, false, err
		}
	}

	return match, found, nil
}

func validate(entity killboard.Entity) error {
	if entity.Name == "" {
		return &ValidationError{Kind: entity.Kind, ID: entity.ID, Field: "name"}
	}

	if entity.Kind == killboard.KindCharacter && entity.CorporationID == 0 {
		return &ValidationError{Kind: entity.Kind, ID: entity.ID, Field: "corporation_id"}
	}

	if entity.Kind == killboard.KindItemType && entity.GroupID == 0 {
		return &ValidationError{Kind: entity.Kind, ID: entity.ID, Field: "group_id"}
	}

	return nil
}

// AddStats forwards the running-counter increments for a resolved
// entity.
func (r *Resolver) AddStats(ctx context.Context, kind killboard.EntityKind, id int32, delta killboard.Stats) error {
	return r.cache.AddStats(ctx, kind, id, delta)
}

// Celestials returns the cached celestial sheet of a system, building
// it from the upstream on first use.
func (r *Resolver) Celestials(ctx context.Context, systemID int32) ([]killboard.Celestial, error) {
	celestials, ok, err := r.cache.SystemCelestials(ctx, systemID)
	if err != nil {
		return nil, err
	}

	if ok {
		return celestials, nil
	}

	celestials, err = r.upstream.Celestials(ctx, systemID)
	if err != nil {
		return nil, err
	}

	if err := r.cache.SaveSystemCelestials(ctx, systemID, celestials); err != nil {
		return nil, err
	}

	return celestials, nil
}
