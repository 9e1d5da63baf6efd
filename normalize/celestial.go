package normalize

import (
	"fmt"
	"killboard"
	"math"
)

// celestialPriority is the type preference for the near label.
var celestialPriority = []string{
	killboard.CelestialStargate,
	killboard.CelestialMoon,
	killboard.CelestialPlanet,
	killboard.CelestialBelt,
	killboard.CelestialSun,
}

// nearLabel picks the celestial for the killmail's "near" field and
// formats it as "<Type> (<name>)". Candidates are compared with >=,
// which keeps the last qualifying, farthest celestial.
func nearLabel(celestials []killboard.Celestial, x, y, z float64) string {
	if x == 0 && y == 0 && z == 0 {
		return ""
	}

	var best killboard.Celestial
	bestDistance := -1.0

	for _, category := range celestialPriority {
		for _, celestial := range celestials {
			if celestial.Category != category {
				continue
			}

			distance := math.Sqrt(
				(celestial.X-x)*(celestial.X-x) +
					(celestial.Y-y)*(celestial.Y-y) +
					(celestial.Z-z)*(celestial.Z-z))

			if distance >= bestDistance {
				best = celestial
				bestDistance = distance
			}
		}
	}

	if bestDistance < 0 {
		return ""
	}

	return fmt.Sprintf("%s (%s)", best.Category, best.Name)
}
