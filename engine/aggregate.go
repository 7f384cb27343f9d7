/*
aggregate.go - Portfolio rollups over analyzed bookings

PURPOSE:
  Rolls the per-booking results up into the figures dashboards consume:
  per-category counts and sums, per-course revenue and unit counts,
  per-source counts, collection efficiency and a bounded list of the worst
  discrepancies.

ADDITIVITY:
  Category totals are fully additive because the classifier partitions
  bookings: no booking is ever counted in two categories. Test bookings are
  excluded from production expected/received sums; fully cancelled bookings
  contribute received money (it is real) but no expected revenue.
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CategoryStats aggregates one classification bucket.
type CategoryStats struct {
	Count    int
	Expected decimal.Decimal
	Received decimal.Decimal
}

// CourseStats aggregates one course across the analyzed bookings.
type CourseStats struct {
	CourseID     string
	CourseName   string
	Mode         PricingMode
	Revenue      decimal.Decimal // expected production revenue
	Participants int
	UnitsSold    int
}

// SourceStats aggregates one booking channel.
type SourceStats struct {
	Count    int
	Expected decimal.Decimal
	Received decimal.Decimal
}

// DiscrepancyEntry is one row of the top-discrepancy list.
type DiscrepancyEntry struct {
	BookingID string
	Issue     Issue
}

// Report is the aggregate output of an analysis pass.
type Report struct {
	Analyzed int
	Errored  int

	Categories map[Category]CategoryStats
	Courses    []CourseStats
	Sources    map[BookingSource]SourceStats

	// Production totals: test bookings excluded, cancelled bookings
	// contribute received money only.
	TotalExpected decimal.Decimal
	TotalReceived decimal.Decimal
	TotalPending  decimal.Decimal

	// CollectionEfficiency is received/expected x 100. Zero when nothing
	// was expected; can exceed 100 when overcollected.
	CollectionEfficiency decimal.Decimal

	IssueCounts      map[IssueType]int
	TopDiscrepancies []DiscrepancyEntry
}

// Aggregate builds the report. Pure; ordering of the input does not change
// any total, only tie-breaks in the course listing are fixed by sorting.
func Aggregate(results []ClassificationResult, cfg Config) Report {
	rep := Report{
		Analyzed:      len(results),
		Categories:    map[Category]CategoryStats{},
		Sources:       map[BookingSource]SourceStats{},
		IssueCounts:   map[IssueType]int{},
		TotalExpected: decimal.Zero,
		TotalReceived: decimal.Zero,
		TotalPending:  decimal.Zero,
	}
	courses := map[string]*CourseStats{}

	for _, r := range results {
		if r.AnalysisError != "" {
			rep.Errored++
		}

		cs := rep.Categories[r.Category]
		cs.Count++
		cs.Expected = cs.Expected.Add(r.Expected.Total)
		cs.Received = cs.Received.Add(r.Received)
		rep.Categories[r.Category] = cs

		for _, is := range r.Issues {
			rep.IssueCounts[is.Type]++
			if is.Difference.IsPositive() {
				rep.TopDiscrepancies = append(rep.TopDiscrepancies, DiscrepancyEntry{BookingID: r.BookingID, Issue: is})
			}
		}

		if r.Category == CategoryTest {
			continue
		}

		rep.TotalExpected = rep.TotalExpected.Add(r.Expected.Total)
		rep.TotalReceived = rep.TotalReceived.Add(r.Received)
		rep.TotalPending = rep.TotalPending.Add(r.Pending)

		src := rep.Sources[r.Source]
		src.Count++
		src.Expected = src.Expected.Add(r.Expected.Total)
		src.Received = src.Received.Add(r.Received)
		rep.Sources[r.Source] = src

		if !isProduction(r.Category) {
			continue
		}
		for _, ap := range r.ActivityPrices {
			if ap.Excluded {
				continue
			}
			c, ok := courses[ap.CourseID]
			if !ok {
				c = &CourseStats{CourseID: ap.CourseID, CourseName: ap.CourseName, Mode: ap.Mode}
				courses[ap.CourseID] = c
			}
			c.Revenue = c.Revenue.Add(ap.Price.Total)
			c.Participants += ap.Participants
			c.UnitsSold += ap.Units
		}
	}

	if rep.TotalExpected.IsPositive() {
		rep.CollectionEfficiency = rep.TotalReceived.
			Div(rep.TotalExpected).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}

	rep.Courses = make([]CourseStats, 0, len(courses))
	for _, c := range courses {
		rep.Courses = append(rep.Courses, *c)
	}
	sort.Slice(rep.Courses, func(i, j int) bool {
		if !rep.Courses[i].Revenue.Equal(rep.Courses[j].Revenue) {
			return rep.Courses[i].Revenue.GreaterThan(rep.Courses[j].Revenue)
		}
		return rep.Courses[i].CourseID < rep.Courses[j].CourseID
	})

	sort.SliceStable(rep.TopDiscrepancies, func(i, j int) bool {
		ri, rj := severityRank(rep.TopDiscrepancies[i].Issue.Severity), severityRank(rep.TopDiscrepancies[j].Issue.Severity)
		if ri != rj {
			return ri > rj
		}
		return rep.TopDiscrepancies[i].Issue.Difference.GreaterThan(rep.TopDiscrepancies[j].Issue.Difference)
	})
	if n := cfg.TopDiscrepancies; n > 0 && len(rep.TopDiscrepancies) > n {
		rep.TopDiscrepancies = rep.TopDiscrepancies[:n]
	}

	return rep
}
