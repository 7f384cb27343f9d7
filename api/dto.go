/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures decoupling the engine's decimal-based domain model from
  the API contract. Amounts become float64 here and only here; everything
  upstream stays decimal.

NAMING CONVENTION:
  - *DTO: response types returned to clients
  - *Request: request body types from clients

SEE ALSO:
  - handlers.go: builds these from engine results
*/
package api

import (
	"github.com/alpine/booking-finance/engine"
	"github.com/shopspring/decimal"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// BreakdownDTO mirrors engine.Breakdown.
type BreakdownDTO struct {
	Base   float64 `json:"base"`
	Extras float64 `json:"extras"`
	Total  float64 `json:"total"`
}

// IssueDTO is one flagged problem on one booking.
type IssueDTO struct {
	Type        string  `json:"type"`
	Severity    string  `json:"severity"`
	Description string  `json:"description"`
	Difference  float64 `json:"difference,omitempty"`
}

// TestInfoDTO is the test detector verdict.
type TestInfoDTO struct {
	IsTest     bool     `json:"is_test"`
	Confidence string   `json:"confidence"`
	Indicators []string `json:"indicators,omitempty"`
}

// BookingResultDTO is the per-booking analysis output.
type BookingResultDTO struct {
	BookingID        string       `json:"booking_id"`
	Category         string       `json:"category"`
	Source           string       `json:"source"`
	Test             TestInfoDTO  `json:"test"`
	Expected         BreakdownDTO `json:"expected"`
	OriginalExpected BreakdownDTO `json:"original_expected"`
	Received         float64      `json:"received"`
	Pending          float64      `json:"pending"`
	Issues           []IssueDTO   `json:"issues,omitempty"`
	AnalysisError    string       `json:"analysis_error,omitempty"`
}

// CategoryStatsDTO is one classification bucket in the report.
type CategoryStatsDTO struct {
	Count    int     `json:"count"`
	Expected float64 `json:"expected"`
	Received float64 `json:"received"`
}

// CourseStatsDTO is one course rollup row.
type CourseStatsDTO struct {
	CourseID     string  `json:"course_id"`
	CourseName   string  `json:"course_name"`
	PricingMode  string  `json:"pricing_mode"`
	Revenue      float64 `json:"revenue"`
	Participants int     `json:"participants"`
	UnitsSold    int     `json:"units_sold"`
}

// DiscrepancyDTO is one row of the top-discrepancy list.
type DiscrepancyDTO struct {
	BookingID string   `json:"booking_id"`
	Issue     IssueDTO `json:"issue"`
}

// ReportDTO is the aggregate analysis response.
type ReportDTO struct {
	RunID    string `json:"run_id"`
	SchoolID string `json:"school_id"`
	From     string `json:"from"`
	To       string `json:"to"`

	Analyzed int `json:"analyzed"`
	Errored  int `json:"errored"`

	Categories map[string]CategoryStatsDTO `json:"categories"`
	Courses    []CourseStatsDTO            `json:"courses"`
	Sources    map[string]CategoryStatsDTO `json:"sources"`

	TotalExpected        float64 `json:"total_expected"`
	TotalReceived        float64 `json:"total_received"`
	TotalPending         float64 `json:"total_pending"`
	CollectionEfficiency float64 `json:"collection_efficiency"`

	IssueCounts      map[string]int   `json:"issue_counts"`
	TopDiscrepancies []DiscrepancyDTO `json:"top_discrepancies,omitempty"`
}

// BookingListDTO wraps the per-booking results of one analysis pass.
type BookingListDTO struct {
	RunID    string             `json:"run_id"`
	Bookings []BookingResultDTO `json:"bookings"`
}

// GatewayCheckRequest supplies the gateway-side transaction list.
type GatewayCheckRequest struct {
	Transactions []GatewayTransactionDTO `json:"transactions"`
}

// GatewayTransactionDTO is one gateway-side transaction.
type GatewayTransactionDTO struct {
	Reference string  `json:"reference"`
	Amount    float64 `json:"amount"`
}

// GatewayVerdictDTO is the cross-check outcome for one payment.
type GatewayVerdictDTO struct {
	PaymentID string  `json:"payment_id"`
	Reference string  `json:"reference,omitempty"`
	Status    string  `json:"status"`
	Diff      float64 `json:"diff,omitempty"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func f64(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func toBreakdownDTO(b engine.Breakdown) BreakdownDTO {
	return BreakdownDTO{Base: f64(b.Base), Extras: f64(b.Extras), Total: f64(b.Total)}
}

func toIssueDTO(is engine.Issue) IssueDTO {
	return IssueDTO{
		Type:        string(is.Type),
		Severity:    string(is.Severity),
		Description: is.Description,
		Difference:  f64(is.Difference),
	}
}

func toBookingResultDTO(r engine.ClassificationResult) BookingResultDTO {
	dto := BookingResultDTO{
		BookingID: r.BookingID,
		Category:  string(r.Category),
		Source:    string(r.Source),
		Test: TestInfoDTO{
			IsTest:     r.Test.IsTest,
			Confidence: string(r.Test.Confidence),
			Indicators: r.Test.Indicators,
		},
		Expected:         toBreakdownDTO(r.Expected),
		OriginalExpected: toBreakdownDTO(r.OriginalExpected),
		Received:         f64(r.Received),
		Pending:          f64(r.Pending),
		AnalysisError:    r.AnalysisError,
	}
	for _, is := range r.Issues {
		dto.Issues = append(dto.Issues, toIssueDTO(is))
	}
	return dto
}

func toReportDTO(rep engine.Report) ReportDTO {
	dto := ReportDTO{
		Analyzed:             rep.Analyzed,
		Errored:              rep.Errored,
		Categories:           map[string]CategoryStatsDTO{},
		Sources:              map[string]CategoryStatsDTO{},
		IssueCounts:          map[string]int{},
		TotalExpected:        f64(rep.TotalExpected),
		TotalReceived:        f64(rep.TotalReceived),
		TotalPending:         f64(rep.TotalPending),
		CollectionEfficiency: f64(rep.CollectionEfficiency),
	}
	for cat, cs := range rep.Categories {
		dto.Categories[string(cat)] = CategoryStatsDTO{Count: cs.Count, Expected: f64(cs.Expected), Received: f64(cs.Received)}
	}
	for src, ss := range rep.Sources {
		dto.Sources[string(src)] = CategoryStatsDTO{Count: ss.Count, Expected: f64(ss.Expected), Received: f64(ss.Received)}
	}
	for _, c := range rep.Courses {
		dto.Courses = append(dto.Courses, CourseStatsDTO{
			CourseID:     c.CourseID,
			CourseName:   c.CourseName,
			PricingMode:  c.Mode.String(),
			Revenue:      f64(c.Revenue),
			Participants: c.Participants,
			UnitsSold:    c.UnitsSold,
		})
	}
	for t, n := range rep.IssueCounts {
		dto.IssueCounts[string(t)] = n
	}
	for _, d := range rep.TopDiscrepancies {
		dto.TopDiscrepancies = append(dto.TopDiscrepancies, DiscrepancyDTO{BookingID: d.BookingID, Issue: toIssueDTO(d.Issue)})
	}
	return dto
}

func toVerdictDTOs(verdicts []engine.GatewayVerdict) []GatewayVerdictDTO {
	out := make([]GatewayVerdictDTO, len(verdicts))
	for i, v := range verdicts {
		out[i] = GatewayVerdictDTO{
			PaymentID: v.PaymentID,
			Reference: v.Reference,
			Status:    string(v.Status),
			Diff:      f64(v.Diff),
		}
	}
	return out
}
