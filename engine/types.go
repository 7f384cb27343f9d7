/*
Package engine implements the booking financial reconciliation and revenue
classification engine.

PURPOSE:
  Given a fully-loaded booking aggregate (booking -> activities -> payments /
  voucher logs), the engine classifies the booking into a lifecycle category,
  computes the revenue the school is entitled to expect under four pricing
  models, computes what was actually collected, and flags discrepancies
  between the two.

KEY CONCEPTS IN THIS FILE (types.go):
  - Booking / BookingActivity / SessionDate / Utilizer: the input aggregate
  - Course: pricing metadata (type x flexibility selects the strategy)
  - Payment / VoucherUsageLog: collected-money records
  - ClassificationResult: the per-booking output, derived and never persisted

DESIGN PRINCIPLES:
  1. Purity: the engine never fetches or persists data; callers pre-load
     the aggregate and consume structured results
  2. Precision: decimal.Decimal for every amount, no float arithmetic
  3. Determinism: the same booking snapshot always yields the same result
  4. Isolation: one malformed booking never aborts a batch

SEE ALSO:
  - config.go: injected thresholds and exclusion lists
  - classify.go: lifecycle category resolution
  - pricing.go: the four pricing strategies plus extras
  - reconcile.go: net received amount
  - analyze.go: the orchestrating Analyzer
*/
package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// COURSE - Pricing metadata
// =============================================================================

// CourseType mirrors the persisted numeric codes.
type CourseType int

const (
	CourseCollective CourseType = 1
	CourseActivity   CourseType = 3
	CoursePrivate    CourseType = 2
)

func (t CourseType) String() string {
	switch t {
	case CourseCollective:
		return "collective"
	case CoursePrivate:
		return "private"
	case CourseActivity:
		return "activity"
	default:
		return fmt.Sprintf("course_type(%d)", int(t))
	}
}

// PriceRange is one row of the school-defined price matrix for flexible
// private courses: a duration label mapped to per-participant-count prices.
// Example: {Interval: "1h", ByParticipants: {1: 55, 2: 40, 3: 30}}.
type PriceRange struct {
	Interval       string
	ByParticipants map[int]decimal.Decimal
}

// FlexDiscount grants a marginal percentage discount on the Nth cumulative
// purchased day of a flexible collective course. Day is 1-based.
type FlexDiscount struct {
	Day     int
	Percent decimal.Decimal
}

// Course carries the pricing metadata the calculator dispatches on.
type Course struct {
	ID            string
	Name          string
	Type          CourseType
	Flexible      bool
	Price         decimal.Decimal
	Currency      string
	PriceRanges   []PriceRange
	FlexDiscounts []FlexDiscount
}

// =============================================================================
// BOOKING AGGREGATE
// =============================================================================

// BookingSource is the channel the booking was created through.
type BookingSource string

const (
	SourceWeb     BookingSource = "web"
	SourceAdmin   BookingSource = "admin"
	SourceUnknown BookingSource = "unknown"
)

// UnitStatus is the per-activity / per-utilizer lifecycle code.
type UnitStatus int

const (
	UnitActive    UnitStatus = 1
	UnitCancelled UnitStatus = 2
)

// Client is the booking owner. Email and name feed the test detector.
type Client struct {
	ID    string
	Name  string
	Email string
}

// Extra is an add-on product attached to a participant (equipment rental,
// insurance, lunch). Priced separately from the course base price.
type Extra struct {
	Name  string
	Price decimal.Decimal
}

// Utilizer is a participant attending a booking activity. Its Status is the
// unit-level cancellation signal: a booking can cancel one participant out
// of three without cancelling the activity.
type Utilizer struct {
	ID     string
	Name   string
	Status UnitStatus
	Extras []Extra
}

// SessionDate is one participant row for one course occurrence. Several rows
// sharing (Date, StartTime, EndTime, MonitorID) describe the same physical
// session; flexible private pricing dedupes on that key.
type SessionDate struct {
	Date       time.Time
	StartTime  string // "15:04"
	EndTime    string // "15:04"
	MonitorID  string
	GroupID    string
	UtilizerID string
}

// BookingActivity is one course engagement within a booking.
type BookingActivity struct {
	ID        string
	Course    Course
	Dates     []SessionDate
	Utilizers []Utilizer
	Price     decimal.Decimal // aggregate price recorded at booking time
	Status    UnitStatus
}

// TotalUnits counts the participant-activity units of the activity.
// An activity with no utilizer rows still counts as one unit.
func (a BookingActivity) TotalUnits() int {
	if len(a.Utilizers) == 0 {
		return 1
	}
	return len(a.Utilizers)
}

// CancelledUnits counts cancelled participant-activity units. Cancelling the
// whole activity cancels every unit regardless of utilizer status.
func (a BookingActivity) CancelledUnits() int {
	if a.Status == UnitCancelled {
		return a.TotalUnits()
	}
	n := 0
	for _, u := range a.Utilizers {
		if u.Status == UnitCancelled {
			n++
		}
	}
	return n
}

// ActiveUtilizers returns the participants whose unit is not cancelled.
func (a BookingActivity) ActiveUtilizers() []Utilizer {
	if a.Status == UnitCancelled {
		return nil
	}
	var out []Utilizer
	for _, u := range a.Utilizers {
		if u.Status != UnitCancelled {
			out = append(out, u)
		}
	}
	return out
}

// PaymentStatus is the persisted payment lifecycle code.
type PaymentStatus string

const (
	PaymentPaid          PaymentStatus = "paid"
	PaymentRefund        PaymentStatus = "refund"
	PaymentPartialRefund PaymentStatus = "partial_refund"
	PaymentNoRefund      PaymentStatus = "no_refund"
)

// Payment is one money movement recorded against a booking. Notes carry
// free-text used to infer method or test markers when no structured field
// is present.
type Payment struct {
	ID               string
	Amount           decimal.Decimal
	Status           PaymentStatus
	GatewayReference string
	Notes            string
}

// IsGateway reports whether the payment went through the external gateway.
func (p Payment) IsGateway() bool { return p.GatewayReference != "" }

// Voucher is a stored-value instrument. Quantity is the issued total;
// RemainingBalance is what is left after all consumptions.
type Voucher struct {
	ID               string
	Quantity         decimal.Decimal
	RemainingBalance decimal.Decimal
}

// VoucherRefundEvent marks a usage log as explicitly refunded.
const VoucherRefundEvent = "refund"

// VoucherUsageLog records a voucher being applied toward a booking's cost.
type VoucherUsageLog struct {
	ID      string
	Amount  decimal.Decimal
	Event   string // VoucherRefundEvent when the usage was reversed
	Voucher Voucher
}

// Booking is the root of the aggregate the engine consumes. All nested data
// must be pre-loaded by the caller; the engine performs no I/O.
type Booking struct {
	ID          string
	Status      int
	CreatedAt   time.Time
	SchoolID    string
	Client      Client
	Source      BookingSource
	Currency    string
	Activities  []BookingActivity
	Payments    []Payment
	VoucherLogs []VoucherUsageLog
}

// Booking status codes as persisted. Anything else is a legacy code and
// falls back to active with a logged warning.
const (
	BookingStatusActive    = 1
	BookingStatusCancelled = 2
	BookingStatusPartial   = 3
)

// GatewayPayments returns the subset of payments with a gateway reference.
func (b Booking) GatewayPayments() []Payment {
	var out []Payment
	for _, p := range b.Payments {
		if p.IsGateway() {
			out = append(out, p)
		}
	}
	return out
}

// =============================================================================
// CLASSIFICATION RESULT - Derived output, never persisted
// =============================================================================

// Category is the lifecycle/authenticity bucket. The five categories form a
// disjoint, exhaustive partition: every booking lands in exactly one.
type Category string

const (
	CategoryTest               Category = "test"
	CategoryFullyCancelled     Category = "fully_cancelled"
	CategoryPartiallyCancelled Category = "partially_cancelled"
	CategoryFinished           Category = "finished"
	CategoryActive             Category = "active"
)

// Confidence grades a test-detection verdict. Low-confidence flags are
// treated as "not test" downstream; the safety margin keeps false positives
// out of the financial totals.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// TestInfo is the test detector's verdict for one booking.
type TestInfo struct {
	IsTest     bool
	Confidence Confidence
	Indicators []string
}

// Breakdown splits an expected-revenue figure into its components.
type Breakdown struct {
	Base   decimal.Decimal
	Extras decimal.Decimal
	Total  decimal.Decimal
}

func (br Breakdown) Add(other Breakdown) Breakdown {
	return Breakdown{
		Base:   br.Base.Add(other.Base),
		Extras: br.Extras.Add(other.Extras),
		Total:  br.Total.Add(other.Total),
	}
}

// ActivityPrice retains the full (pre-cancellation) price of one activity
// for audit reporting, alongside the strategy that produced it and the
// counts course rollups aggregate over.
type ActivityPrice struct {
	ActivityID   string
	CourseID     string
	CourseName   string
	Mode         PricingMode
	Price        Breakdown
	Participants int
	Units        int
	Cancelled    bool
	Excluded     bool
}

// ClassificationResult is the per-booking output of an analysis pass.
// Created fresh on every run, never mutated in place, and fully derivable
// from the booking's persisted state.
type ClassificationResult struct {
	BookingID string
	SchoolID  string
	Source    BookingSource
	Category  Category
	Test      TestInfo

	// Expected is production expected revenue: zero for test and fully
	// cancelled bookings, prorated for partially cancelled ones.
	Expected Breakdown

	// OriginalExpected is the pre-cancellation value, kept for audit.
	OriginalExpected Breakdown

	Received decimal.Decimal
	Pending  decimal.Decimal

	Issues []Issue

	// ActivityPrices carries the per-activity audit detail.
	ActivityPrices []ActivityPrice

	// AnalysisError is set when the booking could not be analyzed; the
	// financial fields are zeroed and an analysis_error issue is attached.
	AnalysisError string
}

// HasIssue reports whether the result carries an issue of the given type.
func (r ClassificationResult) HasIssue(t IssueType) bool {
	for _, is := range r.Issues {
		if is.Type == t {
			return true
		}
	}
	return false
}

// =============================================================================
// MONEY HELPERS
// =============================================================================

// Dec builds a decimal from a float literal. Test and seed convenience.
func Dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// MustParseDecimal parses s, returning zero on malformed input.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// clampZero floors a decimal at zero.
func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
