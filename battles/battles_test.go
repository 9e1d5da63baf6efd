package battles

import (
	"context"
	"killboard"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var probeTime = time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC)

type fakeStore struct {
	killmails []killboard.Killmail
}

func (s *fakeStore) CountKillmails(_ context.Context, systemID int32, from, to time.Time) (int64, error) {
	var count int64

	for _, killmail := range s.killmails {
		if killmail.SolarSystemID != systemID {
			continue
		}

		if !killmail.Time.Before(from) && killmail.Time.Before(to) {
			count++
		}
	}

	return count, nil
}

func (s *fakeStore) KillmailsInRange(_ context.Context, systemID int32, from, to time.Time) ([]killboard.Killmail, error) {
	var result []killboard.Killmail

	for _, killmail := range s.killmails {
		if killmail.SolarSystemID != systemID {
			continue
		}

		if !killmail.Time.Before(from) && !killmail.Time.After(to) {
			result = append(result, killmail)
		}
	}

	return result, nil
}

// burst drops count kills into the five-minute segment starting at
// segmentStart.
func (s *fakeStore) burst(systemID int32, segmentStart time.Time, count int) {
	for i := 0; i < count; i++ {
		s.killmails = append(s.killmails, killboard.Killmail{
			ID:            int32(len(s.killmails) + 1),
			SolarSystemID: systemID,
			Time:          segmentStart.Add(2 * time.Minute),
		})
	}
}

func TestDetectFindsCluster(t *testing.T) {
	store := &fakeStore{}
	store.burst(30000142, probeTime, 30)

	reconstructor := NewReconstructor(store)

	start, end, ok, err := reconstructor.Detect(context.Background(), 30000142, probeTime)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, probeTime, start)
	assert.Equal(t, probeTime.Add(segment), end, "the battle ends at the first cold segment")
}

func TestDetectNoCluster(t *testing.T) {
	store := &fakeStore{}
	store.burst(30000142, probeTime, hotThreshold-1)

	reconstructor := NewReconstructor(store)

	_, _, ok, err := reconstructor.Detect(context.Background(), 30000142, probeTime)
	require.NoError(t, err)
	assert.False(t, ok, "a segment below the threshold is not a battle")
}

func TestDetectExtendsHotBoundary(t *testing.T) {
	store := &fakeStore{}

	// Hot in the last segment of the probe window and beyond; only an
	// extended scan can see the second segment.
	store.burst(30000142, probeTime.Add(55*time.Minute), 30)
	store.burst(30000142, probeTime.Add(60*time.Minute), 30)

	reconstructor := NewReconstructor(store)

	start, end, ok, err := reconstructor.Detect(context.Background(), 30000142, probeTime)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, probeTime.Add(55*time.Minute), start)
	assert.Equal(t, probeTime.Add(65*time.Minute), end)
}

func TestDetectIgnoresOtherSystems(t *testing.T) {
	store := &fakeStore{}
	store.burst(30000144, probeTime, 30)

	reconstructor := NewReconstructor(store)

	_, _, ok, err := reconstructor.Detect(context.Background(), 30000142, probeTime)
	require.NoError(t, err)
	assert.False(t, ok)
}

func identity(id int32, name string) killboard.Identity {
	return killboard.Identity{ID: id, Name: name}
}

// Three corporations in a chain: redfall kills bluewing, stoneworks
// kills redfall. One kill has attackers from both sides.
func chainKillmails() []killboard.Killmail {
	return []killboard.Killmail{
		{
			ID:            1,
			SolarSystemID: 30000142,
			Time:          probeTime.Add(1 * time.Minute),
			TotalValue:    100,
			Points:        1,
			Victim: killboard.Victim{
				Character:   identity(90000022, "Bluewing Victim"),
				Corporation: identity(98000002, "Bluewing"),
				Alliance:    identity(99000002, "Bluewing Alliance"),
			},
			Attackers: []killboard.Attacker{
				{
					Character:   identity(90000011, "Redfall Hunter"),
					Corporation: identity(98000001, "Redfall"),
					Alliance:    identity(99000001, "Redfall Alliance"),
					ShipTypeID:  17738,
					ShipName:    "Machariel",
				},
			},
		},
		{
			ID:            2,
			SolarSystemID: 30000142,
			Time:          probeTime.Add(2 * time.Minute),
			TotalValue:    200,
			Points:        2,
			Victim: killboard.Victim{
				Character:   identity(90000031, "Stoneworks Victim"),
				Corporation: identity(98000003, "Stoneworks"),
			},
			Attackers: []killboard.Attacker{
				{
					Character:   identity(90000021, "Bluewing Avenger"),
					Corporation: identity(98000002, "Bluewing"),
					Alliance:    identity(99000002, "Bluewing Alliance"),
					ShipTypeID:  587,
					ShipName:    "Rifter",
				},
			},
		},
		{
			ID:            3,
			SolarSystemID: 30000142,
			Time:          probeTime.Add(3 * time.Minute),
			TotalValue:    300,
			Points:        3,
			Victim: killboard.Victim{
				Corporation: identity(98000003, "Stoneworks"),
			},
			Attackers: []killboard.Attacker{
				{
					Character:   identity(90000021, "Bluewing Avenger"),
					Corporation: identity(98000002, "Bluewing"),
					Alliance:    identity(99000002, "Bluewing Alliance"),
					ShipTypeID:  587,
					ShipName:    "Rifter",
				},
				{
					Character:   identity(90000011, "Redfall Hunter"),
					Corporation: identity(98000001, "Redfall"),
					ShipTypeID:  587,
					ShipName:    "Rifter",
				},
			},
		},
		{
			ID:            4,
			SolarSystemID: 30000142,
			Time:          probeTime.Add(4 * time.Minute),
			TotalValue:    400,
			Points:        4,
			Victim: killboard.Victim{
				Character:   identity(90000023, "Bluewing Scout"),
				Corporation: identity(98000002, "Bluewing"),
				Alliance:    identity(99000002, "Bluewing Alliance"),
			},
			Attackers: []killboard.Attacker{
				{
					Character:   identity(90000032, "Stoneworks Avenger"),
					Corporation: identity(98000003, "Stoneworks"),
					ShipTypeID:  622,
					ShipName:    "Stabber",
				},
			},
		},
	}
}

func TestBuildPartitionsChain(t *testing.T) {
	store := &fakeStore{killmails: chainKillmails()}
	reconstructor := NewReconstructor(store)

	battle, err := reconstructor.Build(context.Background(), 30000142, probeTime, probeTime.Add(5*time.Minute))
	require.NoError(t, err)

	// The first pair seeds the sides: the first victim is red, their
	// attacker blue. Attacking a red corporation then makes the third
	// corporation blue, even though it never touched the first one.
	assert.Equal(t, []killboard.Identity{identity(98000002, "Bluewing")}, battle.Red.Corporations)
	assert.Equal(t, []killboard.Identity{
		identity(98000001, "Redfall"),
		identity(98000003, "Stoneworks"),
	}, battle.Blue.Corporations)

	assert.Equal(t, []killboard.Identity{identity(99000002, "Bluewing Alliance")}, battle.Red.Alliances)
	assert.Equal(t, []killboard.Identity{identity(99000001, "Redfall Alliance")}, battle.Blue.Alliances)
}

func TestBuildDeduplicatesSharedKills(t *testing.T) {
	store := &fakeStore{killmails: chainKillmails()}
	reconstructor := NewReconstructor(store)

	battle, err := reconstructor.Build(context.Background(), 30000142, probeTime, probeTime.Add(5*time.Minute))
	require.NoError(t, err)

	// Kill 3 has attackers on both sides; it lands in the red set and
	// is dropped from blue.
	assert.Equal(t, []int32{2, 3}, battle.Red.KillIDs)
	assert.Equal(t, []int32{1, 4}, battle.Blue.KillIDs)
	assert.Equal(t, 4, battle.Kills)

	assert.Equal(t, 500.0, battle.Red.TotalValue)
	assert.Equal(t, 500.0, battle.Blue.TotalValue)
	assert.Equal(t, 1000.0, battle.TotalValue)
	assert.Equal(t, 10, battle.TotalPoints)
}

func TestBuildShipHistogram(t *testing.T) {
	store := &fakeStore{killmails: chainKillmails()}
	reconstructor := NewReconstructor(store)

	battle, err := reconstructor.Build(context.Background(), 30000142, probeTime, probeTime.Add(5*time.Minute))
	require.NoError(t, err)

	assert.Equal(t, []killboard.ShipUsage{{TypeID: 587, Name: "Rifter", Count: 2}}, battle.Red.Ships)

	// Equal counts fall back to ascending type id.
	assert.Equal(t, []killboard.ShipUsage{
		{TypeID: 587, Name: "Rifter", Count: 1},
		{TypeID: 622, Name: "Stabber", Count: 1},
		{TypeID: 17738, Name: "Machariel", Count: 1},
	}, battle.Blue.Ships)

	assert.Equal(t, 3, battle.Characters)
}

func TestBuildSingleSidedCluster(t *testing.T) {
	// Every attacker is corporation-less, no pair ever forms.
	store := &fakeStore{killmails: []killboard.Killmail{
		{
			ID:            1,
			SolarSystemID: 30000142,
			Time:          probeTime,
			TotalValue:    100,
			Victim:        killboard.Victim{Corporation: identity(98000002, "Bluewing")},
			Attackers:     []killboard.Attacker{{Character: identity(90000011, "Lone Rat")}},
		},
	}}

	reconstructor := NewReconstructor(store)

	battle, err := reconstructor.Build(context.Background(), 30000142, probeTime, probeTime.Add(5*time.Minute))
	require.NoError(t, err)

	assert.Empty(t, battle.Red.Corporations)
	assert.Empty(t, battle.Blue.Corporations)
	assert.Zero(t, battle.Kills)
	assert.Zero(t, battle.TotalValue)
}

func TestReportNoBattle(t *testing.T) {
	reconstructor := NewReconstructor(&fakeStore{})

	_, ok, err := reconstructor.Report(context.Background(), 30000142, probeTime)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReportBuildsDetectedWindow(t *testing.T) {
	store := &fakeStore{killmails: chainKillmails()}
	store.burst(30000142, probeTime, 27)

	reconstructor := NewReconstructor(store)

	battle, ok, err := reconstructor.Report(context.Background(), 30000142, probeTime)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, probeTime, battle.Start)
	assert.Equal(t, probeTime.Add(segment), battle.End)
	assert.Equal(t, 4, battle.Kills, "only the paired kills count, the filler has no sides")
}

func TestTeamCharactersAreAttackersOnly(t *testing.T) {
	store := &fakeStore{killmails: chainKillmails()}
	reconstructor := NewReconstructor(store)

	battle, err := reconstructor.Build(context.Background(), 30000142, probeTime, probeTime.Add(5*time.Minute))
	require.NoError(t, err)

	assert.Equal(t, []killboard.Identity{identity(90000021, "Bluewing Avenger")}, battle.Red.Characters)
	assert.Equal(t, []killboard.Identity{
		identity(90000011, "Redfall Hunter"),
		identity(90000032, "Stoneworks Avenger"),
	}, battle.Blue.Characters)
}
