package prices

import "time"

// override pins a type to a fixed value. Entries with a non-zero
// `after` only apply from that date on.
type override struct {
	value float64
	after time.Time
}

// Hand-maintained table for items whose market data is useless:
// tournament prize hulls that trade once a year, and types whose order
// books were deliberately squeezed. Values are curated, not observed.
var overrides = map[int32]override{
	670:   {value: 10_000},          // Capsule
	33328: {value: 10_000},          // Capsule - Genolution 'Auroral' 197-variant
	588:   {value: 10_000},          // Reaper (rookie ship)
	596:   {value: 10_000},          // Impairor
	601:   {value: 10_000},          // Velator
	606:   {value: 10_000},          // Ibis

	// Alliance Tournament prize hulls.
	2834:  {value: 80_000_000_000},  // Utu
	2836:  {value: 120_000_000_000}, // Adrestia
	3516:  {value: 80_000_000_000},  // Malice
	3518:  {value: 100_000_000_000}, // Vangel
	11375: {value: 80_000_000_000},  // Freki
	32207: {value: 60_000_000_000},  // Freki (reissue)
	32209: {value: 60_000_000_000},  // Mimir
	32788: {value: 100_000_000_000}, // Cambion
	32790: {value: 100_000_000_000}, // Etana
	33673: {value: 140_000_000_000}, // Whiptail
	35781: {value: 120_000_000_000}, // Fiend

	// Squeezed order books, pinned from the date the squeeze started.
	34559: {value: 500_000_000, after: time.Date(2016, 4, 27, 0, 0, 0, 0, time.UTC)},  // Victorieux Luxury Yacht
	44992: {value: 2_500_000, after: time.Date(2017, 7, 11, 0, 0, 0, 0, time.UTC)},    // PLEX (denomination change)
}

func overrideValue(typeID int32, at time.Time) (float64, bool) {
	entry, ok := overrides[typeID]
	if !ok {
		return 0, false
	}

	if !entry.after.IsZero() && at.Before(entry.after) {
		return 0, false
	}

	return entry.value, true
}
