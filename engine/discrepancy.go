/*
discrepancy.go - Expected-vs-received comparison

PURPOSE:
  Flags material mismatches between what a booking should have produced and
  what was collected, plus a handful of amount-independent anomalies. A
  difference inside the configured tolerance is rounding noise, not an
  issue.

ISSUE TYPES:
  payment_mismatch          |expected - received| above tolerance
  cancelled_with_payments   fully cancelled booking still holding money
  voucher_exceeds_expected  voucher usage larger than expected revenue
  pricing_anomaly           expected revenue outside the sane band
  no_payments               production booking with nothing collected
  analysis_error            the booking could not be analyzed at all

SEVERITY:
  Sized from the amount at stake against the configured bands
  (critical > 100, high > 30, medium > 10, low otherwise by default).
*/
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// IssueType names a discrepancy class. Stable: dashboards group on them.
type IssueType string

const (
	IssuePaymentMismatch        IssueType = "payment_mismatch"
	IssueCancelledWithPayments  IssueType = "cancelled_with_payments"
	IssueVoucherExceedsExpected IssueType = "voucher_exceeds_expected"
	IssuePricingAnomaly         IssueType = "pricing_anomaly"
	IssueNoPayments             IssueType = "no_payments"
	IssueAnalysisError          IssueType = "analysis_error"
)

// Severity grades how urgently an issue needs a human.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// severityRank orders severities for top-N reporting.
func severityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}

// Issue is one flagged problem on one booking.
type Issue struct {
	Type        IssueType
	Severity    Severity
	Description string
	Difference  decimal.Decimal
}

// DiffSeverity sizes a severity from the amount at stake.
func DiffSeverity(diff decimal.Decimal, cfg Config) Severity {
	switch {
	case diff.GreaterThan(cfg.CriticalDiffThreshold):
		return SeverityCritical
	case diff.GreaterThan(cfg.HighDiffThreshold):
		return SeverityHigh
	case diff.GreaterThan(cfg.MediumDiffThreshold):
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// DetectDiscrepancies compares expected production revenue against the
// received amount and raises the amount-independent anomalies. Not called
// for test bookings; they are outside the financial books entirely.
func DetectDiscrepancies(category Category, expected Breakdown, received decimal.Decimal, vouchers VoucherPortions, cfg Config) []Issue {
	var issues []Issue

	diff := expected.Total.Sub(received)
	if diff.Abs().GreaterThan(cfg.DiscrepancyTolerance) {
		direction := "underpaid"
		if diff.IsNegative() {
			direction = "overpaid"
		}
		issues = append(issues, Issue{
			Type:        IssuePaymentMismatch,
			Severity:    DiffSeverity(diff.Abs(), cfg),
			Description: fmt.Sprintf("%s: expected %s, received %s", direction, expected.Total, received),
			Difference:  diff.Abs(),
		})
	}

	if category == CategoryFullyCancelled && received.IsPositive() {
		issues = append(issues, Issue{
			Type:        IssueCancelledWithPayments,
			Severity:    DiffSeverity(received, cfg),
			Description: fmt.Sprintf("fully cancelled booking still holds %s", received),
			Difference:  received,
		})
	}

	voucherUsed := vouchers.Paid.Add(vouchers.Refunded)
	if voucherUsed.GreaterThan(expected.Total) && voucherUsed.IsPositive() {
		issues = append(issues, Issue{
			Type:        IssueVoucherExceedsExpected,
			Severity:    SeverityMedium,
			Description: fmt.Sprintf("voucher usage %s exceeds expected revenue %s", voucherUsed, expected.Total),
			Difference:  voucherUsed.Sub(expected.Total),
		})
	}

	if expected.Total.GreaterThan(cfg.AnomalyHighPrice) {
		issues = append(issues, Issue{
			Type:        IssuePricingAnomaly,
			Severity:    SeverityHigh,
			Description: fmt.Sprintf("expected revenue %s above sane band", expected.Total),
		})
	} else if expected.Total.IsPositive() && expected.Total.LessThan(cfg.AnomalyLowPrice) {
		issues = append(issues, Issue{
			Type:        IssuePricingAnomaly,
			Severity:    SeverityLow,
			Description: fmt.Sprintf("expected revenue %s suspiciously low", expected.Total),
		})
	}

	if isProduction(category) && expected.Total.IsPositive() && received.IsZero() {
		issues = append(issues, Issue{
			Type:        IssueNoPayments,
			Severity:    SeverityLow,
			Description: "nothing collected for a production booking",
			Difference:  expected.Total,
		})
	}

	return issues
}

// isProduction reports whether the category counts toward expected
// production revenue.
func isProduction(c Category) bool {
	switch c {
	case CategoryActive, CategoryFinished, CategoryPartiallyCancelled:
		return true
	default:
		return false
	}
}
