// Package normalize turns raw killmails into fully enriched,
// self-contained records: resolved location and participants, market
// valuation, classification flags and the fit fingerprint. A killmail
// is computed in full and persisted in one write, or not at all.
package normalize

import (
	"context"
	"killboard"
	"killboard/entities"
	"killboard/prices"
	"math"
	"strings"

	"github.com/antihax/goesi/esi"
	"github.com/rs/zerolog"
)

// pointDivisor scales ISK into points.
const pointDivisor = 10000

type Store interface {
	SaveKillmail(ctx context.Context, killmail killboard.Killmail) error
	MarkEmitted(ctx context.Context, killmailID int32, hash string) (bool, error)
}

type Normalizer struct {
	prices   *prices.Resolver
	entities *entities.Resolver
	store    Store
	logger   zerolog.Logger
}

func NewNormalizer(priceResolver *prices.Resolver, entityResolver *entities.Resolver, store Store, logger zerolog.Logger) *Normalizer {
	return &Normalizer{
		prices:   priceResolver,
		entities: entityResolver,
		store:    store,
		logger:   logger,
	}
}

// Normalize enriches one raw killmail and persists it as a single
// replace-by-primary-key write. The returned flag is true when this
// call was the first to persist the killmail, i.e. when the caller
// should fan it out.
//
// Re-running the same raw killmail produces the same record and a
// false flag; a validation failure aborts with nothing persisted.
func (n *Normalizer) Normalize(ctx context.Context, raw killboard.RawKillmail, hash string, warID int32) (killboard.Killmail, bool, error) {
	if warID == 0 {
		warID = raw.WarId
	}

	killmail := killboard.Killmail{
		ID:            raw.KillmailId,
		Hash:          hash,
		Time:          raw.KillmailTime,
		SolarSystemID: raw.SolarSystemId,
		WarID:         warID,
	}

	if err := n.enrichLocation(ctx, &killmail); err != nil {
		return killboard.Killmail{}, false, err
	}

	items, categories, err := n.enrichItems(ctx, convertItems(raw.Victim.Items), raw.KillmailTime.UTC(), false)
	if err != nil {
		return killboard.Killmail{}, false, err
	}

	killmail.Items = items
	killmail.ShipValue = n.prices.Value(ctx, raw.Victim.ShipTypeId, raw.KillmailTime.UTC())
	killmail.FittedValue = sumItemValues(items)
	killmail.TotalValue = killmail.ShipValue + killmail.FittedValue
	killmail.Points = killPoints(killmail.TotalValue, len(raw.Attackers))
	killmail.DNA = fingerprint(raw.Victim.ShipTypeId, items, categories)
	killmail.NPC = isNPCKill(raw.Attackers)
	killmail.Solo = isSoloKill(raw.Attackers)

	if err := n.enrichVictim(ctx, &killmail, raw.Victim); err != nil {
		return killboard.Killmail{}, false, err
	}

	if err := n.enrichAttackers(ctx, &killmail, raw.Attackers); err != nil {
		return killboard.Killmail{}, false, err
	}

	if err := n.resolveNear(ctx, &killmail, raw.Victim.Position); err != nil {
		return killboard.Killmail{}, false, err
	}

	if err := n.accumulateStats(ctx, killmail); err != nil {
		return killboard.Killmail{}, false, err
	}

	if err := n.store.SaveKillmail(ctx, killmail); err != nil {
		return killboard.Killmail{}, false, err
	}

	fresh, err := n.store.MarkEmitted(ctx, killmail.ID, killmail.Hash)
	if err != nil {
		return killboard.Killmail{}, false, err
	}

	return killmail, fresh, nil
}

func (n *Normalizer) enrichLocation(ctx context.Context, killmail *killboard.Killmail) error {
	system, err := n.entities.Resolve(ctx, killboard.KindSystem, killmail.SolarSystemID)
	if err != nil {
		return err
	}

	killmail.SolarSystemName = system.Name
	killmail.Security = system.Security

	if system.ConstellationID == 0 {
		return nil
	}

	constellation, err := n.entities.Resolve(ctx, killboard.KindConstellation, system.ConstellationID)
	if err != nil {
		return err
	}

	if constellation.RegionID == 0 {
		return nil
	}

	region, err := n.entities.Resolve(ctx, killboard.KindRegion, constellation.RegionID)
	if err != nil {
		return err
	}

	killmail.RegionID = region.ID
	killmail.RegionName = region.Name

	return nil
}

func (n *Normalizer) resolveNear(ctx context.Context, killmail *killboard.Killmail, position esi.GetKillmailsKillmailIdKillmailHashPosition) error {
	if position.X == 0 && position.Y == 0 && position.Z == 0 {
		return nil
	}

	celestials, err := n.entities.Celestials(ctx, killmail.SolarSystemID)
	if err != nil {
		// Missing celestial data degrades to an empty label.
		n.logger.Warn().Err(err).Int32("system-id", killmail.SolarSystemID).Msg("failed to resolve celestials")
		return nil
	}

	killmail.Near = nearLabel(celestials, position.X, position.Y, position.Z)

	return nil
}

// accumulateStats applies one increment per non-zero participant
// entity: a kill plus the attacker's points on the attacker side, a
// loss on the victim side.
func (n *Normalizer) accumulateStats(ctx context.Context, killmail killboard.Killmail) error {
	for _, attacker := range killmail.Attackers {
		delta := killboard.Stats{Kills: 1, Points: int64(attacker.Points)}

		for kind, id := range map[killboard.EntityKind]int32{
			killboard.KindCharacter:   attacker.Character.ID,
			killboard.KindCorporation: attacker.Corporation.ID,
			killboard.KindAlliance:    attacker.Alliance.ID,
		} {
			if id == 0 {
				continue
			}

			if err := n.entities.AddStats(ctx, kind, id, delta); err != nil {
				return err
			}
		}
	}

	delta := killboard.Stats{Losses: 1}

	for kind, id := range map[killboard.EntityKind]int32{
		killboard.KindCharacter:   killmail.Victim.Character.ID,
		killboard.KindCorporation: killmail.Victim.Corporation.ID,
		killboard.KindAlliance:    killmail.Victim.Alliance.ID,
	} {
		if id == 0 {
			continue
		}

		if err := n.entities.AddStats(ctx, kind, id, delta); err != nil {
			return err
		}
	}

	return nil
}

// killPoints is ceil(totalValue / 10000 / attackerCount), zero for a
// worthless kill.
func killPoints(totalValue float64, attackerCount int) int {
	if totalValue <= 0 || attackerCount == 0 {
		return 0
	}

	return int(math.Ceil(totalValue / pointDivisor / float64(attackerCount)))
}

// attackerPoints is the damage-proportional share of the killmail's
// points, rounded up, zero when nobody dealt damage.
func attackerPoints(points int, damageDone, totalDamage int32) int {
	if totalDamage == 0 {
		return 0
	}

	return int(math.Ceil(float64(points) * float64(damageDone) / float64(totalDamage)))
}

func sumItemValues(items []killboard.Item) float64 {
	var total float64

	for _, item := range items {
		total += item.Value * float64(item.Quantity())
		total += sumItemValues(item.Items)
	}

	return total
}

func convertItems(raw []esi.GetKillmailsKillmailIdKillmailHashItem) []killboard.Item {
	items := make([]killboard.Item, 0, len(raw))

	for _, entry := range raw {
		item := killboard.Item{
			TypeID:    entry.ItemTypeId,
			Flag:      entry.Flag,
			Singleton: entry.Singleton,
			Dropped:   entry.QuantityDropped,
			Destroyed: entry.QuantityDestroyed,
		}

		for _, nested := range entry.Items {
			item.Items = append(item.Items, killboard.Item{
				TypeID:    nested.ItemTypeId,
				Flag:      nested.Flag,
				Singleton: nested.Singleton,
				Dropped:   nested.QuantityDropped,
				Destroyed: nested.QuantityDestroyed,
			})
		}

		items = append(items, item)
	}

	return items
}

// blueprintCopy decides the copy discount for an item. Inside a
// container the type name is trusted over the singleton flag, some
// copies are hauled with the flag unset.
func blueprintCopy(item killboard.Item, contained bool) bool {
	if item.Singleton == killboard.SingletonBlueprintCopy {
		return true
	}

	return contained && strings.Contains(item.TypeName, "Blueprint")
}
