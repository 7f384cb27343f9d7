/*
config.go - Injected engine configuration

PURPOSE:
  Externalizes every magic value the computation depends on: test-amount
  lists, detection thresholds, discrepancy tolerances, severity bands and
  the excluded-course set. The engine never embeds these as literals, so
  each environment (and each test) supplies its own.

USAGE:
  cfg := engine.DefaultConfig()
  cfg.ExcludedCourses["course-legacy-1"] = true
  analyzer := engine.NewAnalyzer(cfg)
*/
package engine

import "github.com/shopspring/decimal"

// Config bundles all tunable engine parameters. Zero values are not usable;
// start from DefaultConfig.
type Config struct {
	// ExcludedCourses are skipped entirely: their activities contribute
	// no units, no revenue and no aggregation rows.
	ExcludedCourses map[string]bool

	// TestAmounts is the closed set of canonical gateway test amounts.
	TestAmounts []decimal.Decimal

	// TestAmountRatio is the fraction of gateway-payment value that must be
	// flagged test before the whole booking is (decision rule b).
	TestAmountRatio decimal.Decimal

	// TestClientIDs is the allow-list of confirmed test accounts.
	TestClientIDs map[string]bool

	// BusinessHourStart/End bound the usual local creation window; bookings
	// created outside it pick up a weak test indicator.
	BusinessHourStart int
	BusinessHourEnd   int

	// DiscrepancyTolerance absorbs rounding noise between expected and
	// received amounts.
	DiscrepancyTolerance decimal.Decimal

	// Severity bands for payment mismatches, strictly decreasing.
	CriticalDiffThreshold decimal.Decimal
	HighDiffThreshold     decimal.Decimal
	MediumDiffThreshold   decimal.Decimal

	// Sane expected-revenue band; values outside it raise pricing_anomaly.
	AnomalyHighPrice decimal.Decimal
	AnomalyLowPrice  decimal.Decimal

	// VoucherBalanceTolerance pads the consumed-vs-usage comparison when
	// inferring whether a voucher usage was paid through.
	VoucherBalanceTolerance decimal.Decimal

	// TopDiscrepancies bounds the aggregate report's discrepancy list.
	TopDiscrepancies int
}

// DefaultConfig returns the production defaults. Callers adjust fields
// before constructing the Analyzer.
func DefaultConfig() Config {
	return Config{
		ExcludedCourses: map[string]bool{},
		TestAmounts: []decimal.Decimal{
			decimal.NewFromInt(1),
			decimal.NewFromInt(5),
			decimal.NewFromInt(10),
			decimal.NewFromInt(50),
			decimal.NewFromInt(100),
		},
		TestAmountRatio:         decimal.NewFromFloat(0.80),
		TestClientIDs:           map[string]bool{},
		BusinessHourStart:       8,
		BusinessHourEnd:         22,
		DiscrepancyTolerance:    decimal.NewFromFloat(0.50),
		CriticalDiffThreshold:   decimal.NewFromInt(100),
		HighDiffThreshold:       decimal.NewFromInt(30),
		MediumDiffThreshold:     decimal.NewFromInt(10),
		AnomalyHighPrice:        decimal.NewFromInt(2000),
		AnomalyLowPrice:         decimal.NewFromInt(5),
		VoucherBalanceTolerance: decimal.NewFromFloat(0.01),
		TopDiscrepancies:        10,
	}
}

// isTestAmount reports whether amt is one of the canonical test amounts.
func (c Config) isTestAmount(amt decimal.Decimal) bool {
	for _, t := range c.TestAmounts {
		if amt.Equal(t) {
			return true
		}
	}
	return false
}

// courseExcluded reports whether the course is globally excluded.
func (c Config) courseExcluded(courseID string) bool {
	return c.ExcludedCourses[courseID]
}
