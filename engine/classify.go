/*
classify.go - Booking lifecycle classification

PURPOSE:
  Resolves each booking into exactly one of five categories:

    test                 non-production artifact, excluded from all totals
    fully_cancelled      every participant-activity unit cancelled
    partially_cancelled  some but not all units cancelled
    finished             all occurrences in the past, not cancelled
    active               default

  The categories form a disjoint, exhaustive partition; aggregation
  additivity depends on it.

RESOLUTION ORDER:
  The test check runs first and short-circuits everything else: a booking
  flagged test with medium or high confidence is never also counted as
  active/finished/cancelled. Then the per-unit cancellation signal decides
  among the remaining four. Unrecognized legacy status codes fall back to
  active with a logged warning; nothing is silently dropped.

SEE ALSO:
  - testdetect.go: the pre-filter
  - analyze.go: turns the category into financial treatment
*/
package engine

import "time"

// Classify resolves the booking's category. Excluded courses contribute no
// units; a booking whose activities are all excluded has no cancellation
// signal and defaults to active.
func Classify(b Booking, cfg Config, now time.Time) (Category, TestInfo) {
	ti := DetectTest(b, cfg)
	if ti.Actionable() {
		return CategoryTest, ti
	}

	switch b.Status {
	case BookingStatusActive, BookingStatusCancelled, BookingStatusPartial:
		// recognized codes: the per-unit signal below decides
	default:
		warnf("booking %s: unrecognized status code %d, treating as active", b.ID, b.Status)
	}

	total, cancelled := 0, 0
	hasDates := false
	last := time.Time{}
	for _, a := range b.Activities {
		if cfg.courseExcluded(a.Course.ID) {
			continue
		}
		total += a.TotalUnits()
		cancelled += a.CancelledUnits()
		for _, d := range a.Dates {
			hasDates = true
			if d.Date.After(last) {
				last = d.Date
			}
		}
	}

	switch {
	case total > 0 && cancelled == total:
		return CategoryFullyCancelled, ti
	case b.Status == BookingStatusCancelled && total > 0:
		// Booking-level cancellation with stale unit rows still counts.
		return CategoryFullyCancelled, ti
	case cancelled > 0:
		return CategoryPartiallyCancelled, ti
	case hasDates && last.Before(now):
		return CategoryFinished, ti
	default:
		return CategoryActive, ti
	}
}
