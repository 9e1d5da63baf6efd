package normalize

import (
	"fmt"
	"killboard"
	"strings"
)

// droneCategoryID covers drone-bay contents, which belong on the
// fingerprint even though they sit in no fit slot.
const droneCategoryID = 8

// fittedFlag covers the low, mid and high racks, rigs and subsystems.
func fittedFlag(flag int32) bool {
	switch {
	case flag >= 11 && flag <= 34:
		return true
	case flag >= 92 && flag <= 98:
		return true
	case flag >= 125 && flag <= 132:
		return true
	}

	return false
}

// fingerprint encodes hull plus fitted and drone-bay contents as a
// colon-delimited string, in original item order, so identical builds
// collapse onto one key.
func fingerprint(shipTypeID int32, items []killboard.Item, categories map[int32]int32) string {
	if shipTypeID == 0 {
		return ""
	}

	// The same module shows up as separate dropped and destroyed rows;
	// quantities are combined per type, keeping first-seen order.
	order := make([]int32, 0, len(items))
	quantities := map[int32]int64{}

	for _, item := range items {
		if !fittedFlag(item.Flag) && categories[item.TypeID] != droneCategoryID {
			continue
		}

		if _, seen := quantities[item.TypeID]; !seen {
			order = append(order, item.TypeID)
		}

		quantities[item.TypeID] += item.Quantity()
	}

	parts := make([]string, 0, len(order)+1)
	parts = append(parts, fmt.Sprintf("%d", shipTypeID))

	for _, typeID := range order {
		parts = append(parts, fmt.Sprintf("%d;%d", typeID, quantities[typeID]))
	}

	return strings.Join(parts, ":")
}
