package esi

import (
	"context"
	"fmt"
	"killboard"
)

// System fetches solar system metadata.
func (c *Client) System(ctx context.Context, systemID int32) (killboard.Entity, bool, error) {
	system, res, err := c.esi.ESI.UniverseApi.GetUniverseSystemsSystemId(ctx, systemID, nil)
	if err != nil {
		if notFound(res) {
			return killboard.Entity{}, false, nil
		}

		return killboard.Entity{}, false, fmt.Errorf("failed to fetch system %d: %w", systemID, err)
	}

	return killboard.Entity{
		Kind:            killboard.KindSystem,
		ID:              systemID,
		Name:            system.Name,
		ConstellationID: system.ConstellationId,
		Security:        float64(system.SecurityStatus),
	}, true, nil
}

// Constellation fetches constellation metadata.
func (c *Client) Constellation(ctx context.Context, constellationID int32) (killboard.Entity, bool, error) {
	constellation, res, err := c.esi.ESI.UniverseApi.GetUniverseConstellationsConstellationId(ctx, constellationID, nil)
	if err != nil {
		if notFound(res) {
			return killboard.Entity{}, false, nil
		}

		return killboard.Entity{}, false, fmt.Errorf("failed to fetch constellation %d: %w", constellationID, err)
	}

	return killboard.Entity{
		Kind:     killboard.KindConstellation,
		ID:       constellationID,
		Name:     constellation.Name,
		RegionID: constellation.RegionId,
	}, true, nil
}

// Region fetches region metadata.
func (c *Client) Region(ctx context.Context, regionID int32) (killboard.Entity, bool, error) {
	region, res, err := c.esi.ESI.UniverseApi.GetUniverseRegionsRegionId(ctx, regionID, nil)
	if err != nil {
		if notFound(res) {
			return killboard.Entity{}, false, nil
		}

		return killboard.Entity{}, false, fmt.Errorf("failed to fetch region %d: %w", regionID, err)
	}

	return killboard.Entity{
		Kind: killboard.KindRegion,
		ID:   regionID,
		Name: region.Name,
	}, true, nil
}

// ItemType fetches inventory type metadata.
func (c *Client) ItemType(ctx context.Context, typeID int32) (killboard.Entity, bool, error) {
	itemType, res, err := c.esi.ESI.UniverseApi.GetUniverseTypesTypeId(ctx, typeID, nil)
	if err != nil {
		if notFound(res) {
			return killboard.Entity{}, false, nil
		}

		return killboard.Entity{}, false, fmt.Errorf("failed to fetch type %d: %w", typeID, err)
	}

	return killboard.Entity{
		Kind:    killboard.KindItemType,
		ID:      typeID,
		Name:    itemType.Name,
		GroupID: itemType.GroupId,
	}, true, nil
}

// ItemGroup fetches inventory group metadata.
func (c *Client) ItemGroup(ctx context.Context, groupID int32) (killboard.Entity, bool, error) {
	group, res, err := c.esi.ESI.UniverseApi.GetUniverseGroupsGroupId(ctx, groupID, nil)
	if err != nil {
		if notFound(res) {
			return killboard.Entity{}, false, nil
		}

		return killboard.Entity{}, false, fmt.Errorf("failed to fetch group %d: %w", groupID, err)
	}

	return killboard.Entity{
		Kind:       killboard.KindItemGroup,
		ID:         groupID,
		Name:       group.Name,
		CategoryID: group.CategoryId,
	}, true, nil
}

// Celestials fans out over every positioned object of a system. This
// is expensive, callers cache the sheet.
func (c *Client) Celestials(ctx context.Context, systemID int32) ([]killboard.Celestial, error) {
	system, _, err := c.esi.ESI.UniverseApi.GetUniverseSystemsSystemId(ctx, systemID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch system %d: %w", systemID, err)
	}

	var celestials []killboard.Celestial

	for _, stargateID := range system.Stargates {
		stargate, _, err := c.esi.ESI.UniverseApi.GetUniverseStargatesStargateId(ctx, stargateID, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch stargate %d: %w", stargateID, err)
		}

		celestials = append(celestials, killboard.Celestial{
			Category: killboard.CelestialStargate,
			Name:     stargate.Name,
			X:        stargate.Position.X,
			Y:        stargate.Position.Y,
			Z:        stargate.Position.Z,
		})
	}

	for _, planetRef := range system.Planets {
		planet, _, err := c.esi.ESI.UniverseApi.GetUniversePlanetsPlanetId(ctx, planetRef.PlanetId, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch planet %d: %w", planetRef.PlanetId, err)
		}

		celestials = append(celestials, killboard.Celestial{
			Category: killboard.CelestialPlanet,
			Name:     planet.Name,
			X:        planet.Position.X,
			Y:        planet.Position.Y,
			Z:        planet.Position.Z,
		})

		for _, moonID := range planetRef.Moons {
			moon, _, err := c.esi.ESI.UniverseApi.GetUniverseMoonsMoonId(ctx, moonID, nil)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch moon %d: %w", moonID, err)
			}

			celestials = append(celestials, killboard.Celestial{
				Category: killboard.CelestialMoon,
				Name:     moon.Name,
				X:        moon.Position.X,
				Y:        moon.Position.Y,
				Z:        moon.Position.Z,
			})
		}

		for _, beltID := range planetRef.AsteroidBelts {
			belt, _, err := c.esi.ESI.UniverseApi.GetUniverseAsteroidBeltsAsteroidBeltId(ctx, beltID, nil)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch asteroid belt %d: %w", beltID, err)
			}

			celestials = append(celestials, killboard.Celestial{
				Category: killboard.CelestialBelt,
				Name:     belt.Name,
				X:        belt.Position.X,
				Y:        belt.Position.Y,
				Z:        belt.Position.Z,
			})
		}
	}

	if system.StarId != 0 {
		star, _, err := c.esi.ESI.UniverseApi.GetUniverseStarsStarId(ctx, system.StarId, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch star %d: %w", system.StarId, err)
		}

		// Stars sit at the system origin; ESI serves no position for
		// them.
		celestials = append(celestials, killboard.Celestial{
			Category: killboard.CelestialSun,
			Name:     star.Name,
		})
	}

	return celestials, nil
}
