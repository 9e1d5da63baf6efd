package killboard

import (
	"time"

	"github.com/antihax/goesi/esi"
)

// RawKillmail is the upstream killmail exactly as ESI returns it. Raw
// killmails are immutable and cached indefinitely by killmail id.
type RawKillmail = esi.GetKillmailsKillmailIdKillmailHashOk

// RawEventMessage is the unit of work handed to normalization workers
// over the raw-killmail stream.
type RawEventMessage struct {
	KillmailID int32  `json:"killmail_id"`
	Hash       string `json:"hash"`
	WarID      int32  `json:"war_id,omitempty"`
}

// Identity is a resolved entity reference denormalized onto killmails.
type Identity struct {
	ID    int32  `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Image string `json:"image,omitempty"`
}

type Victim struct {
	Character   Identity `json:"character,omitzero"`
	Corporation Identity `json:"corporation,omitzero"`
	Alliance    Identity `json:"alliance,omitzero"`
	Faction     Identity `json:"faction,omitzero"`

	ShipTypeID    int32  `json:"ship_type_id,omitempty"`
	ShipName      string `json:"ship_name,omitempty"`
	ShipGroupID   int32  `json:"ship_group_id,omitempty"`
	ShipGroupName string `json:"ship_group_name,omitempty"`

	DamageTaken int32 `json:"damage_taken"`
}

type Attacker struct {
	Character   Identity `json:"character,omitzero"`
	Corporation Identity `json:"corporation,omitzero"`
	Alliance    Identity `json:"alliance,omitzero"`
	Faction     Identity `json:"faction,omitzero"`

	ShipTypeID    int32  `json:"ship_type_id,omitempty"`
	ShipName      string `json:"ship_name,omitempty"`
	ShipGroupID   int32  `json:"ship_group_id,omitempty"`
	ShipGroupName string `json:"ship_group_name,omitempty"`
	WeaponTypeID  int32  `json:"weapon_type_id,omitempty"`
	WeaponName    string `json:"weapon_name,omitempty"`

	DamageDone int32 `json:"damage_done"`
	FinalBlow  bool  `json:"final_blow,omitempty"`
	Points     int   `json:"points,omitempty"`
}

// Singleton states on victim items.
const (
	SingletonPlain             = 0
	SingletonBlueprintOriginal = 1
	SingletonBlueprintCopy     = 2
)

// Item is one victim item. Containers carry their cargo in Items, same
// shape all the way down.
type Item struct {
	TypeID    int32  `json:"type_id"`
	TypeName  string `json:"type_name,omitempty"`
	GroupID   int32  `json:"group_id,omitempty"`
	GroupName string `json:"group_name,omitempty"`

	Flag      int32 `json:"flag"`
	Singleton int32 `json:"singleton,omitempty"`
	Dropped   int64 `json:"quantity_dropped,omitempty"`
	Destroyed int64 `json:"quantity_destroyed,omitempty"`

	// Value is the resolved unit price at killmail time.
	Value float64 `json:"value,omitzero"`

	Items []Item `json:"items,omitempty"`
}

// Quantity is the combined dropped plus destroyed count.
func (i Item) Quantity() int64 {
	return i.Dropped + i.Destroyed
}

// Killmail is the fully enriched record written back to the store,
// keyed by (id, hash). It is computed in full before it is persisted.
type Killmail struct {
	ID   int32     `json:"killmail_id"`
	Hash string    `json:"hash"`
	Time time.Time `json:"killmail_time"`

	SolarSystemID   int32   `json:"solar_system_id"`
	SolarSystemName string  `json:"solar_system_name,omitempty"`
	Security        float64 `json:"security"`
	RegionID        int32   `json:"region_id,omitempty"`
	RegionName      string  `json:"region_name,omitempty"`
	Near            string  `json:"near,omitempty"`

	ShipValue   float64 `json:"ship_value"`
	FittedValue float64 `json:"fitted_value"`
	TotalValue  float64 `json:"total_value"`
	Points      int     `json:"points"`
	DNA         string  `json:"dna,omitempty"`
	NPC         bool    `json:"npc,omitempty"`
	Solo        bool    `json:"solo,omitempty"`
	WarID       int32   `json:"war_id,omitempty"`

	Victim    Victim     `json:"victim"`
	Attackers []Attacker `json:"attackers"`
	Items     []Item     `json:"items,omitempty"`
}
