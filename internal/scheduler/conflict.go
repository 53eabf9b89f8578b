package scheduler

import (
	"sort"
	"time"
)

// Event is a committed calendar entry considered during conflict detection.
type Event struct {
	ID      string
	OwnerID string
	Title   string
	Start   time.Time
	End     time.Time
}

// Window is a half-open candidate interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether the window intersects [start, end) in the
// half-open sense: touching boundaries do not overlap.
func (w Window) Overlaps(start, end time.Time) bool {
	return start.Before(w.End) && w.Start.Before(end)
}

// DetectConflicts returns the existing events whose windows overlap the
// candidate window, ordered by start time then event ID. An empty result
// means the candidate window is free to book.
func DetectConflicts(existing []Event, candidate Window) []Event {
	if candidate.Start.IsZero() || !candidate.Start.Before(candidate.End) {
		return nil
	}

	var conflicts []Event
	for _, event := range existing {
		if candidate.Overlaps(event.Start, event.End) {
			conflicts = append(conflicts, event)
		}
	}

	sort.Slice(conflicts, func(i, j int) bool {
		if conflicts[i].Start.Equal(conflicts[j].Start) {
			return conflicts[i].ID < conflicts[j].ID
		}
		return conflicts[i].Start.Before(conflicts[j].Start)
	})

	return conflicts
}
