package normalize

import "github.com/antihax/goesi/esi"

const (
	// Corporation ids below this are environment-owned.
	npcCorporationCeiling = 1999999

	// CONCORD assists player kills and must not count as an
	// environment attacker.
	reservedCorporationID = 1000125
)

// npcAttacker is the environment-attacker heuristic: no pilot, and a
// corporation id in the environment range.
func npcAttacker(attacker esi.GetKillmailsKillmailIdKillmailHashAttacker) bool {
	return attacker.CharacterId == 0 &&
		attacker.CorporationId < npcCorporationCeiling &&
		attacker.CorporationId != reservedCorporationID
}

func countNPCAttackers(attackers []esi.GetKillmailsKillmailIdKillmailHashAttacker) int {
	count := 0

	for _, attacker := range attackers {
		if npcAttacker(attacker) {
			count++
		}
	}

	return count
}

// isNPCKill is true when every attacker matches the environment
// heuristic.
func isNPCKill(attackers []esi.GetKillmailsKillmailIdKillmailHashAttacker) bool {
	return len(attackers) > 0 && countNPCAttackers(attackers) == len(attackers)
}

// isSoloKill attributes the kill to a single player-controlled actor.
// The two-attacker branch counts a pilot assisted by exactly one
// environment attacker as solo.
func isSoloKill(attackers []esi.GetKillmailsKillmailIdKillmailHashAttacker) bool {
	switch len(attackers) {
	case 1:
		return true
	case 2:
		return countNPCAttackers(attackers) == 1
	default:
		return false
	}
}
