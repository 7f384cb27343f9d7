/*
analyze.go - Per-booking orchestration and batch isolation

PURPOSE:
  The Analyzer ties the components together for one booking:

    validate -> classify (test pre-filter) -> price -> reconcile -> flag

  and for a batch, runs them sequentially with per-booking failure
  isolation: a panic or validation failure marks that one booking with an
  analysis_error issue and zeroed financials, and the batch continues.

FINANCIAL TREATMENT PER CATEGORY:
  test                 expected = 0, excluded from every production total;
                       prices retained in the audit fields
  fully_cancelled      expected = 0, original pre-cancellation value kept
                       for audit
  partially_cancelled  expected prorated per activity by the active share
                       of its participant-units
  finished / active    full expected value

CONCURRENCY:
  Pure and single-threaded per invocation. No shared mutable state between
  bookings, no locking, no I/O: callers pre-load aggregates and may shard a
  batch across goroutines themselves if they want to.
*/
package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Analyzer runs the full reconciliation pipeline. Safe to reuse across
// batches; it holds only configuration.
type Analyzer struct {
	cfg  Config
	calc *Calculator

	// now is injectable for deterministic "finished" classification.
	now func() time.Time
}

// NewAnalyzer builds an analyzer with the given configuration.
func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg, calc: NewCalculator(cfg), now: time.Now}
}

// WithClock fixes the reference time. Snapshot analyses and tests use this
// to keep classification deterministic.
func (an *Analyzer) WithClock(now func() time.Time) *Analyzer {
	an.now = now
	return an
}

// WithCumulativeDays injects a cross-booking purchased-day counter for
// flexible collective pricing.
func (an *Analyzer) WithCumulativeDays(days CumulativeDayCounter) *Analyzer {
	an.calc.Days = days
	return an
}

// Config returns the analyzer's configuration.
func (an *Analyzer) Config() Config { return an.cfg }

// validate rejects aggregates the pipeline cannot price safely.
func (an *Analyzer) validate(b Booking) error {
	if b.ID == "" {
		return &ValidationError{Field: "id", Reason: "empty booking identifier"}
	}
	for _, a := range b.Activities {
		if a.Course.ID == "" {
			return &ValidationError{BookingID: b.ID, Field: "activities", Reason: "activity without course"}
		}
	}
	for _, p := range b.Payments {
		if p.Amount.IsNegative() {
			return &ValidationError{BookingID: b.ID, Field: "payments", Reason: fmt.Sprintf("negative amount on payment %s", p.ID)}
		}
	}
	return nil
}

// AnalyzeBooking runs the pipeline for one booking. The returned result is
// freshly built and never aliased; re-running on the same snapshot yields
// an identical value.
func (an *Analyzer) AnalyzeBooking(b Booking) (ClassificationResult, error) {
	if err := an.validate(b); err != nil {
		return ClassificationResult{}, err
	}

	category, testInfo := Classify(b, an.cfg, an.now())

	result := ClassificationResult{
		BookingID: b.ID,
		SchoolID:  b.SchoolID,
		Source:    b.Source,
		Category:  category,
		Test:      testInfo,
	}

	// Price every activity at full value; cancellation and exclusion only
	// decide how much of it counts below.
	original := Breakdown{}
	prorated := Breakdown{}
	for _, a := range b.Activities {
		ap := ActivityPrice{
			ActivityID: a.ID,
			CourseID:   a.Course.ID,
			CourseName: a.Course.Name,
			Mode:       PricingModeFor(a.Course),
			Cancelled:  a.CancelledUnits() == a.TotalUnits(),
		}
		if an.cfg.courseExcluded(a.Course.ID) {
			ap.Excluded = true
			result.ActivityPrices = append(result.ActivityPrices, ap)
			continue
		}
		ap.Price = an.calc.ActivityPrice(a)
		ap.Participants = a.TotalUnits()
		ap.Units = UnitsSold(a)
		result.ActivityPrices = append(result.ActivityPrices, ap)

		original = original.Add(ap.Price)
		prorated = prorated.Add(prorateBreakdown(ap.Price, a))
	}
	result.OriginalExpected = original

	switch category {
	case CategoryTest, CategoryFullyCancelled:
		// Zero expected production revenue; audit value kept above.
	case CategoryPartiallyCancelled:
		result.Expected = prorated
	case CategoryFinished, CategoryActive:
		result.Expected = original
	}

	result.Received = ReceivedAmount(b, an.cfg)
	result.Pending = clampZero(result.Expected.Total.Sub(result.Received))

	if category != CategoryTest {
		vouchers := ResolveVoucherPortions(b.VoucherLogs, an.cfg)
		result.Issues = DetectDiscrepancies(category, result.Expected, result.Received, vouchers, an.cfg)
	}

	return result, nil
}

// prorateBreakdown scales an activity's full price by its active share of
// participant-units. A fully active activity passes through unchanged.
func prorateBreakdown(full Breakdown, a BookingActivity) Breakdown {
	total := a.TotalUnits()
	active := total - a.CancelledUnits()
	if active == total {
		return full
	}
	if active <= 0 {
		return Breakdown{}
	}
	ratio := decimal.NewFromInt(int64(active)).Div(decimal.NewFromInt(int64(total)))
	return Breakdown{
		Base:   full.Base.Mul(ratio),
		Extras: full.Extras.Mul(ratio),
		Total:  full.Total.Mul(ratio),
	}
}

// AnalyzeBatch processes bookings sequentially with per-booking failure
// isolation. Every input booking appears in the output exactly once:
// failures yield a zero-financial result flagged analysis_error so
// downstream dashboards degrade gracefully instead of dropping records.
func (an *Analyzer) AnalyzeBatch(bookings []Booking) []ClassificationResult {
	results := make([]ClassificationResult, 0, len(bookings))
	for _, b := range bookings {
		results = append(results, an.analyzeIsolated(b))
	}
	return results
}

func (an *Analyzer) analyzeIsolated(b Booking) (result ClassificationResult) {
	defer func() {
		if r := recover(); r != nil {
			err := &AnalysisError{BookingID: b.ID, Cause: fmt.Sprint(r)}
			warnf("%v", err)
			result = errorResult(b, err.Cause)
		}
	}()

	result, err := an.AnalyzeBooking(b)
	if err != nil {
		warnf("%v", err)
		return errorResult(b, err.Error())
	}
	return result
}

// errorResult is the degraded output for a booking that could not be
// analyzed: zeroed financials, default category, explicit error flag.
func errorResult(b Booking, cause string) ClassificationResult {
	return ClassificationResult{
		BookingID:     b.ID,
		SchoolID:      b.SchoolID,
		Source:        b.Source,
		Category:      CategoryActive,
		AnalysisError: cause,
		Issues: []Issue{{
			Type:        IssueAnalysisError,
			Severity:    SeverityHigh,
			Description: cause,
		}},
	}
}
