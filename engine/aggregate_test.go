package engine_test

import (
	"testing"
	"time"

	"github.com/alpine/booking-finance/engine"
)

// analyzeAll runs a batch and aggregates it with the given config.
func analyzeAll(cfg engine.Config, bookings ...engine.Booking) engine.Report {
	an := engine.NewAnalyzer(cfg).WithClock(func() time.Time { return analysisTime })
	return engine.Aggregate(an.AnalyzeBatch(bookings), cfg)
}

func mixedPopulation() []engine.Booking {
	cancelled := futureActivity(2)
	cancelled.Status = engine.UnitCancelled
	cancelledBooking := prodBooking("b-cancelled", cancelled)
	cancelledBooking.Payments = []engine.Payment{paidPayment("p1", 50)}

	active := prodBooking("b-active", futureActivity(2)) // expected 200
	active.Payments = []engine.Payment{paidPayment("p2", 200)}

	finished := prodBooking("b-finished", pastActivity(1)) // expected 100
	finished.Payments = []engine.Payment{paidPayment("p3", 40)}

	testBooking := prodBooking("b-test", futureActivity(3))
	testBooking.Payments = []engine.Payment{gatewayPayment("p4", 10, "TEST-1")}

	return []engine.Booking{cancelledBooking, active, finished, testBooking}
}

func TestAggregate_CategoryTotalsAreAdditive(t *testing.T) {
	// GIVEN: a mixed population across four categories
	// WHEN: aggregating
	// THEN: category counts sum to the number analyzed; no double counting

	rep := analyzeAll(engine.DefaultConfig(), mixedPopulation()...)

	total := 0
	for _, cs := range rep.Categories {
		total += cs.Count
	}
	if total != rep.Analyzed || rep.Analyzed != 4 {
		t.Errorf("expected 4 bookings across categories, got analyzed=%d summed=%d", rep.Analyzed, total)
	}
}

func TestAggregate_TestBookingsExcludedFromProductionTotals(t *testing.T) {
	// GIVEN: the mixed population (test booking holds 10.00)
	// WHEN: aggregating
	// THEN: expected = 200 + 100, received = 200 + 40 + 50 (cancelled money
	//       is real), and the test booking's 10.00 appears nowhere

	rep := analyzeAll(engine.DefaultConfig(), mixedPopulation()...)

	if !rep.TotalExpected.Equal(dec(300)) {
		t.Errorf("expected total 300, got %v", rep.TotalExpected)
	}
	if !rep.TotalReceived.Equal(dec(290)) {
		t.Errorf("received total: expected 290, got %v", rep.TotalReceived)
	}
}

func TestAggregate_CollectionEfficiency(t *testing.T) {
	// GIVEN: expected 200, received 100
	// WHEN: aggregating
	// THEN: efficiency 50.00

	b := prodBooking("b1", futureActivity(2))
	b.Payments = []engine.Payment{paidPayment("p1", 100)}

	rep := analyzeAll(engine.DefaultConfig(), b)
	if !rep.CollectionEfficiency.Equal(dec(50)) {
		t.Errorf("expected 50, got %v", rep.CollectionEfficiency)
	}
}

func TestAggregate_CourseRollups(t *testing.T) {
	// GIVEN: two active bookings of the same collective course
	// WHEN: aggregating
	// THEN: one course row with summed revenue, participants and units

	b1 := prodBooking("b1", futureActivity(2))
	b2 := prodBooking("b2", futureActivity(3))

	rep := analyzeAll(engine.DefaultConfig(), b1, b2)
	if len(rep.Courses) != 1 {
		t.Fatalf("expected 1 course row, got %d", len(rep.Courses))
	}
	c := rep.Courses[0]
	if !c.Revenue.Equal(dec(500)) {
		t.Errorf("revenue: expected 500, got %v", c.Revenue)
	}
	if c.Participants != 5 || c.UnitsSold != 5 {
		t.Errorf("expected 5 participants / 5 units, got %d / %d", c.Participants, c.UnitsSold)
	}
	if c.Mode != engine.ModeCollectiveFixed {
		t.Errorf("expected collective_fixed, got %s", c.Mode)
	}
}

func TestAggregate_TopDiscrepanciesBoundedAndOrdered(t *testing.T) {
	// GIVEN: more discrepant bookings than the configured bound
	// WHEN: aggregating with TopDiscrepancies = 2
	// THEN: only the two worst entries remain, highest severity first

	cfg := engine.DefaultConfig()
	cfg.TopDiscrepancies = 2

	critical := prodBooking("b-critical", futureActivity(3)) // expected 300, diff 300
	high := prodBooking("b-high", futureActivity(1))         // expected 100, diff 60
	high.Payments = []engine.Payment{paidPayment("p1", 40)}
	medium := prodBooking("b-medium", futureActivity(1)) // expected 100, diff 15
	medium.Payments = []engine.Payment{paidPayment("p2", 85)}

	rep := analyzeAll(cfg, medium, high, critical)
	if len(rep.TopDiscrepancies) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(rep.TopDiscrepancies))
	}
	if rep.TopDiscrepancies[0].BookingID != "b-critical" {
		t.Errorf("expected b-critical first, got %s", rep.TopDiscrepancies[0].BookingID)
	}
	if rep.TopDiscrepancies[0].Issue.Severity != engine.SeverityCritical {
		t.Errorf("expected critical severity first, got %s", rep.TopDiscrepancies[0].Issue.Severity)
	}
}

func TestAggregate_SourceBreakdown(t *testing.T) {
	// GIVEN: one web and one admin booking
	// WHEN: aggregating
	// THEN: each channel is counted separately

	web := prodBooking("b-web", futureActivity(1))
	admin := prodBooking("b-admin", futureActivity(2))
	admin.Source = engine.SourceAdmin

	rep := analyzeAll(engine.DefaultConfig(), web, admin)
	if rep.Sources[engine.SourceWeb].Count != 1 || rep.Sources[engine.SourceAdmin].Count != 1 {
		t.Errorf("expected one booking per source, got %+v", rep.Sources)
	}
	if !rep.Sources[engine.SourceAdmin].Expected.Equal(dec(200)) {
		t.Errorf("admin expected: want 200, got %v", rep.Sources[engine.SourceAdmin].Expected)
	}
}

func TestAggregate_ErroredBookingsCounted(t *testing.T) {
	// GIVEN: a batch containing a malformed booking
	// WHEN: aggregating
	// THEN: the errored count reflects it and the record is not lost

	rep := analyzeAll(engine.DefaultConfig(), prodBooking("ok", futureActivity(1)), engine.Booking{ID: "bad", Activities: []engine.BookingActivity{{ID: "a"}}})
	if rep.Analyzed != 2 {
		t.Errorf("expected 2 analyzed, got %d", rep.Analyzed)
	}
	if rep.Errored != 1 {
		t.Errorf("expected 1 errored, got %d", rep.Errored)
	}
	if rep.IssueCounts[engine.IssueAnalysisError] != 1 {
		t.Errorf("expected 1 analysis_error issue, got %d", rep.IssueCounts[engine.IssueAnalysisError])
	}
}
