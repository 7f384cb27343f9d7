/*
testdetect.go - Heuristic test-booking detector

PURPOSE:
  Decides whether a booking is a non-production artifact (developer or QA
  transaction) so it can be excluded from every financial total. The
  detector is a weighted rule engine: an ordered list of independent rules,
  each emitting named indicators with a strong or weak weight, followed by
  a fixed decision cascade.

DECISION CASCADE (first match wins):
  a. every gateway payment individually flagged test    -> test
  b. >80% of gateway-payment value flagged test         -> test
  c. any strong indicator present                       -> test
  d. two or more weak indicators present                -> test
  e. otherwise                                          -> not test

CONFIDENCE:
  high   - a strong indicator fired, or all gateway payments were test
  medium - the value-ratio rule fired without a strong indicator
  low    - weak indicators only

  Low-confidence verdicts are deliberately treated as "not test" by the
  classifier: a false positive here silently removes real revenue from
  reports, which is worse than a stray test booking inflating them.

SEE ALSO:
  - classify.go: short-circuits classification on medium/high verdicts
  - config.go: test amounts, client allow-list, business-hours window
*/
package engine

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Indicator names exposed in TestInfo. Stable: dashboards filter on them.
const (
	IndicatorReferenceContainsTest = "reference_contains_test"
	IndicatorCommonTestAmount      = "common_test_amount"
	IndicatorTestClient            = "test_client"
	IndicatorTestCourseName        = "test_course_name"
	IndicatorUnusualCreationTime   = "unusual_creation_time"
)

// indicatorWeight grades how much an indicator counts toward the verdict.
type indicatorWeight int

const (
	weightWeak indicatorWeight = iota
	weightStrong
)

// indicator is one named detection signal with its weight.
type indicator struct {
	name   string
	weight indicatorWeight
}

// testRule is one independent heuristic. Rules never see each other's
// output; the cascade in detectTest combines them.
type testRule struct {
	name string
	eval func(b Booking, cfg Config) []indicator
}

// testMarkers are the substrings that mark a client identity as synthetic.
var testMarkers = []string{"test", "demo", "example", "fake"}

func containsTestMarker(s string) bool {
	return strings.Contains(strings.ToLower(s), "test")
}

func containsAnyMarker(s string) bool {
	low := strings.ToLower(s)
	for _, m := range testMarkers {
		if strings.Contains(low, m) {
			return true
		}
	}
	return false
}

// paymentFlaggedTest reports whether one gateway payment is individually
// suspicious: a test marker in its reference or notes, or a canonical
// test amount.
func paymentFlaggedTest(p Payment, cfg Config) bool {
	if containsTestMarker(p.GatewayReference) || containsTestMarker(p.Notes) {
		return true
	}
	return cfg.isTestAmount(p.Amount)
}

// defaultTestRules is the ordered rule set. Each rule is unit-testable in
// isolation; adding a heuristic means appending a rule, not threading a
// new branch through a conditional cascade.
var defaultTestRules = []testRule{
	{
		name: "gateway_payment_markers",
		eval: func(b Booking, cfg Config) []indicator {
			var out []indicator
			for _, p := range b.GatewayPayments() {
				if containsTestMarker(p.GatewayReference) || containsTestMarker(p.Notes) {
					out = append(out, indicator{IndicatorReferenceContainsTest, weightStrong})
				}
				if cfg.isTestAmount(p.Amount) {
					out = append(out, indicator{IndicatorCommonTestAmount, weightWeak})
				}
			}
			return out
		},
	},
	{
		name: "client_identity",
		eval: func(b Booking, cfg Config) []indicator {
			if cfg.TestClientIDs[b.Client.ID] {
				return []indicator{{IndicatorTestClient, weightStrong}}
			}
			if containsAnyMarker(b.Client.Email) || containsAnyMarker(b.Client.Name) {
				return []indicator{{IndicatorTestClient, weightWeak}}
			}
			return nil
		},
	},
	{
		name: "course_name",
		eval: func(b Booking, cfg Config) []indicator {
			for _, a := range b.Activities {
				if containsTestMarker(a.Course.Name) {
					return []indicator{{IndicatorTestCourseName, weightStrong}}
				}
			}
			return nil
		},
	},
	{
		name: "creation_time",
		eval: func(b Booking, cfg Config) []indicator {
			h := b.CreatedAt.Hour()
			if h < cfg.BusinessHourStart || h >= cfg.BusinessHourEnd {
				return []indicator{{IndicatorUnusualCreationTime, weightWeak}}
			}
			return nil
		},
	},
}

// DetectTest evaluates the rule set against one booking and applies the
// decision cascade. Pure: same booking and config, same verdict.
func DetectTest(b Booking, cfg Config) TestInfo {
	// Collect indicators, keeping the strongest weight per name.
	weights := map[string]indicatorWeight{}
	var order []string
	for _, rule := range defaultTestRules {
		for _, ind := range rule.eval(b, cfg) {
			w, seen := weights[ind.name]
			if !seen {
				order = append(order, ind.name)
				weights[ind.name] = ind.weight
			} else if ind.weight > w {
				weights[ind.name] = ind.weight
			}
		}
	}

	strongFired := false
	weakCount := 0
	for _, w := range weights {
		if w == weightStrong {
			strongFired = true
		} else {
			weakCount++
		}
	}

	// Gateway-payment value analysis for rules a and b.
	gateway := b.GatewayPayments()
	flaggedValue := decimal.Zero
	totalValue := decimal.Zero
	allFlagged := len(gateway) > 0
	for _, p := range gateway {
		totalValue = totalValue.Add(p.Amount.Abs())
		if paymentFlaggedTest(p, cfg) {
			flaggedValue = flaggedValue.Add(p.Amount.Abs())
		} else {
			allFlagged = false
		}
	}
	ratioFired := false
	if totalValue.IsPositive() {
		ratioFired = flaggedValue.Div(totalValue).GreaterThan(cfg.TestAmountRatio)
	}

	info := TestInfo{Indicators: order, Confidence: ConfidenceLow}

	switch {
	case allFlagged:
		info.IsTest = true
	case ratioFired:
		info.IsTest = true
	case strongFired:
		info.IsTest = true
	case weakCount >= 2:
		info.IsTest = true
	default:
		return info
	}

	switch {
	case strongFired || allFlagged:
		info.Confidence = ConfidenceHigh
	case ratioFired:
		info.Confidence = ConfidenceMedium
	default:
		info.Confidence = ConfidenceLow
	}
	return info
}

// Actionable reports whether a verdict is trusted enough to exclude the
// booking from production totals.
func (ti TestInfo) Actionable() bool {
	return ti.IsTest && ti.Confidence != ConfidenceLow
}
