package normalize

import (
	"context"
	"killboard"
	"time"

	"github.com/antihax/goesi/esi"
)

// enrichItems resolves names and groups for an item tree and prices
// every entry. The returned map carries the category id per type id,
// the fingerprint needs it.
func (n *Normalizer) enrichItems(ctx context.Context, items []killboard.Item, at time.Time, contained bool) ([]killboard.Item, map[int32]int32, error) {
	categories := map[int32]int32{}

	enriched, err := n.enrichItemTree(ctx, items, at, contained, categories)
	if err != nil {
		return nil, nil, err
	}

	return enriched, categories, nil
}

func (n *Normalizer) enrichItemTree(ctx context.Context, items []killboard.Item, at time.Time, contained bool, categories map[int32]int32) ([]killboard.Item, error) {
	for i := range items {
		item := &items[i]
		if item.TypeID == 0 {
			continue
		}

		itemType, err := n.entities.Resolve(ctx, killboard.KindItemType, item.TypeID)
		if err != nil {
			return nil, err
		}

		item.TypeName = itemType.Name
		item.GroupID = itemType.GroupID

		if itemType.GroupID != 0 {
			group, err := n.entities.Resolve(ctx, killboard.KindItemGroup, itemType.GroupID)
			if err != nil {
				return nil, err
			}

			item.GroupName = group.Name
			categories[item.TypeID] = group.CategoryID
		}

		item.Value = n.prices.ItemValue(ctx, item.TypeID, item.Flag, blueprintCopy(*item, contained), at)

		if len(item.Items) > 0 {
			nested, err := n.enrichItemTree(ctx, item.Items, at, true, categories)
			if err != nil {
				return nil, err
			}

			item.Items = nested
		}
	}

	return items, nil
}

// participant resolves the character/corporation/alliance/faction
// identity block shared by victims and attackers.
func (n *Normalizer) participant(ctx context.Context, characterID, corporationID, allianceID, factionID int32) (character, corporation, alliance, faction killboard.Identity, err error) {
	if characterID != 0 {
		entity, resolveErr := n.entities.Resolve(ctx, killboard.KindCharacter, characterID)
		if resolveErr != nil {
			err = resolveErr
			return
		}

		character = entity.Ref()
	}

	if corporationID != 0 {
		entity, resolveErr := n.entities.Resolve(ctx, killboard.KindCorporation, corporationID)
		if resolveErr != nil {
			err = resolveErr
			return
		}

		corporation = entity.Ref()
	}

	if allianceID != 0 {
		entity, resolveErr := n.entities.Resolve(ctx, killboard.KindAlliance, allianceID)
		if resolveErr != nil {
			err = resolveErr
			return
		}

		alliance = entity.Ref()
	}

	if factionID != 0 {
		entity, resolveErr := n.entities.Resolve(ctx, killboard.KindFaction, factionID)
		if resolveErr != nil {
			err = resolveErr
			return
		}

		faction = entity.Ref()
	}

	return
}

// ship resolves a hull's name and group label.
func (n *Normalizer) ship(ctx context.Context, shipTypeID int32) (name string, groupID int32, groupName string, err error) {
	if shipTypeID == 0 {
		return
	}

	shipType, resolveErr := n.entities.Resolve(ctx, killboard.KindItemType, shipTypeID)
	if resolveErr != nil {
		err = resolveErr
		return
	}

	name = shipType.Name
	groupID = shipType.GroupID

	if shipType.GroupID != 0 {
		group, resolveErr := n.entities.Resolve(ctx, killboard.KindItemGroup, shipType.GroupID)
		if resolveErr != nil {
			err = resolveErr
			return
		}

		groupName = group.Name
	}

	return
}

func (n *Normalizer) enrichVictim(ctx context.Context, killmail *killboard.Killmail, raw esi.GetKillmailsKillmailIdKillmailHashVictim) error {
	character, corporation, alliance, faction, err := n.participant(ctx, raw.CharacterId, raw.CorporationId, raw.AllianceId, raw.FactionId)
	if err != nil {
		return err
	}

	shipName, shipGroupID, shipGroupName, err := n.ship(ctx, raw.ShipTypeId)
	if err != nil {
		return err
	}

	killmail.Victim = killboard.Victim{
		Character:     character,
		Corporation:   corporation,
		Alliance:      alliance,
		Faction:       faction,
		ShipTypeID:    raw.ShipTypeId,
		ShipName:      shipName,
		ShipGroupID:   shipGroupID,
		ShipGroupName: shipGroupName,
		DamageTaken:   raw.DamageTaken,
	}

	return nil
}

func (n *Normalizer) enrichAttackers(ctx context.Context, killmail *killboard.Killmail, raw []esi.GetKillmailsKillmailIdKillmailHashAttacker) error {
	var totalDamage int32
	for _, attacker := range raw {
		totalDamage += attacker.DamageDone
	}

	killmail.Attackers = make([]killboard.Attacker, 0, len(raw))

	for _, rawAttacker := range raw {
		character, corporation, alliance, faction, err := n.participant(ctx, rawAttacker.CharacterId, rawAttacker.CorporationId, rawAttacker.AllianceId, rawAttacker.FactionId)
		if err != nil {
			return err
		}

		shipName, shipGroupID, shipGroupName, err := n.ship(ctx, rawAttacker.ShipTypeId)
		if err != nil {
			return err
		}

		var weaponName string
		if rawAttacker.WeaponTypeId != 0 {
			weapon, err := n.entities.Resolve(ctx, killboard.KindItemType, rawAttacker.WeaponTypeId)
			if err != nil {
				return err
			}

			weaponName = weapon.Name
		}

		killmail.Attackers = append(killmail.Attackers, killboard.Attacker{
			Character:     character,
			Corporation:   corporation,
			Alliance:      alliance,
			Faction:       faction,
			ShipTypeID:    rawAttacker.ShipTypeId,
			ShipName:      shipName,
			ShipGroupID:   shipGroupID,
			ShipGroupName: shipGroupName,
			WeaponTypeID:  rawAttacker.WeaponTypeId,
			WeaponName:    weaponName,
			DamageDone:    rawAttacker.DamageDone,
			FinalBlow:     rawAttacker.FinalBlow,
			Points:        attackerPoints(killmail.Points, rawAttacker.DamageDone, totalDamage),
		})
	}

	return nil
}
