// ABOUTME: Pure rollup recomputation over a contact's activity set
// ABOUTME: Derives touchpoint count, last-contact date, and revenue totals
package engine

import (
	"time"

	"github.com/harperreed/touchbase/models"
)

// Rollup holds the derived contact fields recomputed from the full
// activity set.
type Rollup struct {
	TotalTouchpoints int
	LastContactDate  *time.Time
}

// RecomputeRollup derives the touchpoint count and last-contact date from
// a contact's complete current activity set. This is the only derivation
// path for those fields; there is no incremental counting anywhere, so
// deleting an out-of-order record self-heals. Idempotent over the same
// input set.
func RecomputeRollup(activities []models.Activity) Rollup {
	rollup := Rollup{TotalTouchpoints: len(activities)}

	for i := range activities {
		effective := activities[i].EffectiveTime()
		if rollup.LastContactDate == nil || effective.After(*rollup.LastContactDate) {
			t := effective
			rollup.LastContactDate = &t
		}
	}

	return rollup
}

// RecomputeRevenue sums the amounts of revenue-typed activities, in
// cents. Same full-set discipline as RecomputeRollup.
func RecomputeRevenue(activities []models.Activity) int64 {
	var total int64
	for i := range activities {
		if activities[i].Type == models.ActivityRevenue {
			total += activities[i].Amount
		}
	}
	return total
}
