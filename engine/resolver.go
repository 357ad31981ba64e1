// ABOUTME: Pure cadence resolution for next follow-up dates
// ABOUTME: Applies relationship, status, and fallback rules with calendar offsets
package engine

import (
	"time"

	"github.com/harperreed/touchbase/models"
)

// ResolveNextFollowUp returns the next eligible follow-up instant for a
// contact, or nil when no enabled rule applies. The relationship-intent
// rule takes precedence over the status rule; the fallback applies last.
// Pure function: no clock access, no I/O.
func ResolveNextFollowUp(contact *models.Contact, cfg *models.CadenceConfig, reference time.Time) *time.Time {
	if cfg == nil || !cfg.AutoFollowupEnabled {
		return nil
	}

	if rule, ok := cfg.ByRelationship[contact.Intent()]; ok && rule.Enabled {
		next := applyOffset(reference, rule.Offset)
		return &next
	}

	if rule, ok := cfg.ByStatus[contact.Status]; ok && rule.Enabled {
		next := applyOffset(reference, rule.Offset)
		return &next
	}

	if cfg.Fallback.Enabled {
		next := applyOffset(reference, cfg.Fallback.Offset)
		return &next
	}

	return nil
}

// applyOffset advances reference by a calendar offset. Days and weeks use
// plain calendar-day arithmetic; months clamp to the last valid day of
// the target month (Jan 31 + 1 month lands on Feb 28 or 29, never
// overflows into March).
func applyOffset(reference time.Time, offset models.CadenceOffset) time.Time {
	switch offset.Unit {
	case models.UnitWeeks:
		return reference.AddDate(0, 0, offset.Value*7)
	case models.UnitMonths:
		return addMonthsClamped(reference, offset.Value)
	default:
		return reference.AddDate(0, 0, offset.Value)
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()

	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}

	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day,
		hour, minute, sec, t.Nanosecond(), t.Location())
}
