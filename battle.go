package killboard

import "time"

// Battle is a reconstructed engagement: a dense cluster of killmails in
// one system, split into two opposing teams. Battles are derived data,
// recomputed on demand and safe to discard.
type Battle struct {
	SolarSystemID int32     `json:"solar_system_id"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`

	Red  Team `json:"red_team"`
	Blue Team `json:"blue_team"`

	Characters  int     `json:"characters"`
	Kills       int     `json:"kills"`
	TotalValue  float64 `json:"total_value"`
	TotalPoints int     `json:"total_points"`
}

type Team struct {
	Corporations []Identity `json:"corporations,omitempty"`
	Alliances    []Identity `json:"alliances,omitempty"`

	KillIDs     []int32 `json:"kill_ids,omitempty"`
	TotalValue  float64 `json:"total_value"`
	TotalPoints int     `json:"total_points"`

	// Ships is the per-hull usage histogram, most used first.
	Ships      []ShipUsage `json:"ships,omitempty"`
	Characters []Identity  `json:"characters,omitempty"`
}

type ShipUsage struct {
	TypeID int32  `json:"type_id"`
	Name   string `json:"name,omitempty"`
	Count  int    `json:"count"`
}
