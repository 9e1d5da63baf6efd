// Package battles reconstructs engagements from persisted killmails:
// a segment scan finds the dense window, a greedy two-team partition
// splits the participants. Battles are derived data, rebuilt on demand
// over already-committed killmails; nothing here writes.
package battles

import (
	"context"
	"killboard"
	"time"
)

const (
	// probeWindow is scanned around the triggering kill.
	probeWindow = time.Hour

	// segment is the scan granularity.
	segment = 5 * time.Minute

	// hotThreshold is the kill count that makes a segment part of a
	// battle.
	hotThreshold = 25

	// graceSegments is how many cold segments are tolerated before the
	// battle is considered over.
	graceSegments = 5

	// extension pushes the scan boundary while the fight is still hot
	// at its edge.
	extension = 1600 * time.Second
)

type Store interface {
	CountKillmails(ctx context.Context, systemID int32, from, to time.Time) (int64, error)
	KillmailsInRange(ctx context.Context, systemID int32, from, to time.Time) ([]killboard.Killmail, error)
}

type Reconstructor struct {
	store Store
}

func NewReconstructor(store Store) *Reconstructor {
	return &Reconstructor{store: store}
}

// Detect scans the probe window around a kill for a dense cluster in
// its system. ok is false when no segment ever gets hot; that is a
// defined empty result, not an error.
func (r *Reconstructor) Detect(ctx context.Context, systemID int32, at time.Time) (start, end time.Time, ok bool, err error) {
	cursor := at.Add(-probeWindow)
	boundary := at.Add(probeWindow)
	misses := 0

	for cursor.Before(boundary) {
		count, countErr := r.store.CountKillmails(ctx, systemID, cursor, cursor.Add(segment))
		if countErr != nil {
			return time.Time{}, time.Time{}, false, countErr
		}

		if count >= hotThreshold {
			if start.IsZero() {
				start = cursor
			}

			misses = 0

			// Still hot at the edge of the scan, keep looking.
			if !cursor.Add(segment).Before(boundary) {
				boundary = boundary.Add(extension)
			}
		} else if !start.IsZero() {
			// The battle ends at the first segment of the losing
			// streak; the streak itself just decides when to stop
			// scanning.
			if misses == 0 {
				end = cursor
			}

			misses++
			if misses > graceSegments {
				break
			}
		}

		cursor = cursor.Add(segment)
	}

	if start.IsZero() {
		return time.Time{}, time.Time{}, false, nil
	}

	if end.IsZero() {
		end = cursor
	}

	if !end.After(start) {
		return time.Time{}, time.Time{}, false, nil
	}

	return start, end, true, nil
}

// Report runs detection and, when a cluster exists, builds the battle.
func (r *Reconstructor) Report(ctx context.Context, systemID int32, at time.Time) (killboard.Battle, bool, error) {
	start, end, ok, err := r.Detect(ctx, systemID, at)
	if err != nil || !ok {
		return killboard.Battle{}, false, err
	}

	battle, err := r.Build(ctx, systemID, start, end)
	if err != nil {
		return killboard.Battle{}, false, err
	}

	return battle, true, nil
}
