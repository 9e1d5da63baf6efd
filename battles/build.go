package battles

import (
	"context"
	"killboard"
	"sort"
	"time"
)

const (
	sideNone = iota
	sideRed
	sideBlue
)

// Build aggregates the battle for a resolved window. Corporations are
// partitioned into two sides with a single greedy pass over the
// attacker-victim pairs: the first unseen pair seeds victim side red
// and attacker side blue's opponent, later pairs put the unassigned
// corporation opposite the assigned one, and alliances inherit their
// corporation's side on first sight. The pass never backtracks, so
// cyclic interaction graphs can end up mis-partitioned; that is the
// accepted behavior.
func (r *Reconstructor) Build(ctx context.Context, systemID int32, start, end time.Time) (killboard.Battle, error) {
	killmails, err := r.store.KillmailsInRange(ctx, systemID, start, end)
	if err != nil {
		return killboard.Battle{}, err
	}

	corporationSides := map[int32]int{}
	allianceSides := map[int32]int{}

	assignAlliance := func(allianceID int32, side int) {
		if allianceID == 0 {
			return
		}

		if _, seen := allianceSides[allianceID]; !seen {
			allianceSides[allianceID] = side
		}
	}

	for _, killmail := range killmails {
		victimCorporation := killmail.Victim.Corporation.ID

		for _, attacker := range killmail.Attackers {
			attackerCorporation := attacker.Corporation.ID
			if victimCorporation == 0 || attackerCorporation == 0 {
				continue
			}

			victimSide, victimSeen := corporationSides[victimCorporation]
			attackerSide, attackerSeen := corporationSides[attackerCorporation]

			switch {
			case !victimSeen && !attackerSeen:
				corporationSides[victimCorporation] = sideRed
				corporationSides[attackerCorporation] = sideBlue
			case victimSeen && !attackerSeen:
				corporationSides[attackerCorporation] = opposite(victimSide)
			case attackerSeen && !victimSeen:
				corporationSides[victimCorporation] = opposite(attackerSide)
			}

			assignAlliance(killmail.Victim.Alliance.ID, corporationSides[victimCorporation])
			assignAlliance(attacker.Alliance.ID, corporationSides[attackerCorporation])
		}
	}

	red := r.buildTeam(killmails, corporationSides, allianceSides, sideRed, nil)
	blue := r.buildTeam(killmails, corporationSides, allianceSides, sideBlue, red.KillIDs)

	battle := killboard.Battle{
		SolarSystemID: systemID,
		Start:         start,
		End:           end,
		Red:           red,
		Blue:          blue,
		Characters:    len(red.Characters) + len(blue.Characters),
		TotalValue:    red.TotalValue + blue.TotalValue,
		TotalPoints:   red.TotalPoints + blue.TotalPoints,
	}

	// Kill totals are deduplicated across the two sides; blue already
	// dropped the shared ids.
	battle.Kills = len(red.KillIDs) + len(blue.KillIDs)

	return battle, nil
}

func opposite(side int) int {
	if side == sideRed {
		return sideBlue
	}

	return sideRed
}

// buildTeam walks all kills once for one side. excluded carries the
// other side's kill set: a kill with attackers on both sides counts
// only once.
func (r *Reconstructor) buildTeam(killmails []killboard.Killmail, corporationSides map[int32]int, allianceSides map[int32]int, side int, excluded []int32) killboard.Team {
	team := killboard.Team{}

	excludedIDs := map[int32]bool{}
	for _, killmailID := range excluded {
		excludedIDs[killmailID] = true
	}

	corporations := map[int32]killboard.Identity{}
	alliances := map[int32]killboard.Identity{}
	characters := map[int32]killboard.Identity{}
	ships := map[int32]*killboard.ShipUsage{}
	killIDs := map[int32]bool{}

	for _, killmail := range killmails {
		onTeam := false

		for _, attacker := range killmail.Attackers {
			if corporationSides[attacker.Corporation.ID] != side {
				continue
			}

			onTeam = true

			corporations[attacker.Corporation.ID] = attacker.Corporation

			if attacker.Alliance.ID != 0 && allianceSides[attacker.Alliance.ID] == side {
				alliances[attacker.Alliance.ID] = attacker.Alliance
			}

			if attacker.Character.ID != 0 {
				characters[attacker.Character.ID] = attacker.Character
			}

			if attacker.ShipTypeID != 0 {
				usage, ok := ships[attacker.ShipTypeID]
				if !ok {
					usage = &killboard.ShipUsage{TypeID: attacker.ShipTypeID, Name: attacker.ShipName}
					ships[attacker.ShipTypeID] = usage
				}

				usage.Count++
			}
		}

		if onTeam && !killIDs[killmail.ID] && !excludedIDs[killmail.ID] {
			killIDs[killmail.ID] = true
			team.TotalValue += killmail.TotalValue
			team.TotalPoints += killmail.Points
		}
	}

	team.Corporations = sortedIdentities(corporations)
	team.Alliances = sortedIdentities(alliances)
	team.Characters = sortedIdentities(characters)

	for _, usage := range ships {
		team.Ships = append(team.Ships, *usage)
	}

	sort.Slice(team.Ships, func(i, j int) bool {
		if team.Ships[i].Count != team.Ships[j].Count {
			return team.Ships[i].Count > team.Ships[j].Count
		}

		return team.Ships[i].TypeID < team.Ships[j].TypeID
	})

	for killmailID := range killIDs {
		team.KillIDs = append(team.KillIDs, killmailID)
	}

	sort.Slice(team.KillIDs, func(i, j int) bool { return team.KillIDs[i] < team.KillIDs[j] })

	return team
}

func sortedIdentities(byID map[int32]killboard.Identity) []killboard.Identity {
	identities := make([]killboard.Identity, 0, len(byID))

	for _, identity := range byID {
		identities = append(identities, identity)
	}

	sort.Slice(identities, func(i, j int) bool { return identities[i].ID < identities[j].ID })

	return identities
}
