/*
seed.go - Demo dataset

PURPOSE:
  Populates a fresh store with a small but representative booking population
  for school "demo-school": every lifecycle category, every pricing model,
  vouchers, and a test booking, so the analysis endpoints return something
  meaningful out of the box.
*/
package sqlite

import (
	"context"
	"time"

	"github.com/alpine/booking-finance/engine"
	"github.com/shopspring/decimal"
)

// DemoSchoolID is the school the seed data belongs to.
const DemoSchoolID = "demo-school"

// Seed loads the demo dataset. Call on an empty database only; booking IDs
// are fixed and a second call fails on primary keys.
func Seed(ctx context.Context, s *Store) error {
	courses := []engine.Course{
		{
			ID: "crs-group", Name: "Group Beginners", Type: engine.CourseCollective,
			Price: engine.Dec(100), Currency: "EUR",
		},
		{
			ID: "crs-flexgroup", Name: "Flexible Group", Type: engine.CourseCollective, Flexible: true,
			Price: engine.Dec(50), Currency: "EUR",
			FlexDiscounts: []engine.FlexDiscount{
				{Day: 2, Percent: engine.Dec(10)},
				{Day: 4, Percent: engine.Dec(20)},
			},
		},
		{
			ID: "crs-private", Name: "Private Lesson", Type: engine.CoursePrivate,
			Price: engine.Dec(70), Currency: "EUR",
		},
		{
			ID: "crs-flexprivate", Name: "Flexible Private", Type: engine.CoursePrivate, Flexible: true,
			Price: engine.Dec(55), Currency: "EUR",
			PriceRanges: []engine.PriceRange{
				{Interval: "1h", ByParticipants: map[int]decimal.Decimal{
					1: engine.Dec(55), 2: engine.Dec(40), 3: engine.Dec(32),
				}},
				{Interval: "2h", ByParticipants: map[int]decimal.Decimal{
					1: engine.Dec(100), 2: engine.Dec(75),
				}},
			},
		},
		{
			ID: "crs-rental", Name: "Equipment Rental", Type: engine.CourseActivity,
			Price: engine.Dec(25), Currency: "EUR",
		},
	}
	for _, c := range courses {
		if err := s.SaveCourse(ctx, c); err != nil {
			return err
		}
	}

	day := func(d int) time.Time { return time.Date(2025, 2, d, 0, 0, 0, 0, time.UTC) }

	bookings := []engine.Booking{
		// Finished collective booking, fully paid through the gateway.
		{
			ID: "bk-1001", SchoolID: DemoSchoolID, Status: engine.BookingStatusActive,
			CreatedAt: time.Date(2025, 1, 10, 14, 20, 0, 0, time.UTC),
			Client:    engine.Client{ID: "cl-1", Name: "Claire Fontaine", Email: "claire.fontaine@example.com"},
			Source:    engine.SourceWeb, Currency: "EUR",
			Activities: []engine.BookingActivity{{
				ID: "act-1001", Course: engine.Course{ID: "crs-group"},
				Status: engine.UnitActive,
				Utilizers: []engine.Utilizer{
					{ID: "ut-1001a", Name: "Claire Fontaine", Status: engine.UnitActive},
					{ID: "ut-1001b", Name: "Hugo Fontaine", Status: engine.UnitActive},
				},
				Dates: []engine.SessionDate{
					{Date: day(1), StartTime: "09:00", EndTime: "12:00", MonitorID: "mon-1", UtilizerID: "ut-1001a"},
					{Date: day(1), StartTime: "09:00", EndTime: "12:00", MonitorID: "mon-1", UtilizerID: "ut-1001b"},
				},
			}},
			Payments: []engine.Payment{{
				ID: "pay-1001", Amount: engine.Dec(200), Status: engine.PaymentPaid,
				GatewayReference: "ch_demo_1001",
			}},
		},
		// Active private booking with an extra, partially paid.
		{
			ID: "bk-1002", SchoolID: DemoSchoolID, Status: engine.BookingStatusActive,
			CreatedAt: time.Date(2025, 2, 5, 10, 45, 0, 0, time.UTC),
			Client:    engine.Client{ID: "cl-2", Name: "Jonas Weber", Email: "jonas.weber@example.com"},
			Source:    engine.SourceAdmin, Currency: "EUR",
			Activities: []engine.BookingActivity{{
				ID: "act-1002", Course: engine.Course{ID: "crs-private"},
				Status: engine.UnitActive,
				Utilizers: []engine.Utilizer{{
					ID: "ut-1002a", Name: "Jonas Weber", Status: engine.UnitActive,
					Extras: []engine.Extra{{Name: "helmet rental", Price: engine.Dec(12)}},
				}},
				Dates: []engine.SessionDate{
					{Date: day(20), StartTime: "10:00", EndTime: "11:00", MonitorID: "mon-2", UtilizerID: "ut-1002a"},
					{Date: day(21), StartTime: "10:00", EndTime: "11:00", MonitorID: "mon-2", UtilizerID: "ut-1002a"},
				},
			}},
			Payments: []engine.Payment{{
				ID: "pay-1002", Amount: engine.Dec(80), Status: engine.PaymentPaid, Notes: "cash deposit",
			}},
		},
		// Partially cancelled booking: one of two participants dropped out,
		// part of the money came back.
		{
			ID: "bk-1003", SchoolID: DemoSchoolID, Status: engine.BookingStatusPartial,
			CreatedAt: time.Date(2025, 1, 22, 16, 5, 0, 0, time.UTC),
			Client:    engine.Client{ID: "cl-3", Name: "Ana Oliveira", Email: "ana.oliveira@example.com"},
			Source:    engine.SourceWeb, Currency: "EUR",
			Activities: []engine.BookingActivity{{
				ID: "act-1003", Course: engine.Course{ID: "crs-group"},
				Status: engine.UnitActive,
				Utilizers: []engine.Utilizer{
					{ID: "ut-1003a", Name: "Ana Oliveira", Status: engine.UnitActive},
					{ID: "ut-1003b", Name: "Rui Oliveira", Status: engine.UnitCancelled},
				},
				Dates: []engine.SessionDate{
					{Date: day(25), StartTime: "14:00", EndTime: "17:00", MonitorID: "mon-1", UtilizerID: "ut-1003a"},
				},
			}},
			Payments: []engine.Payment{
				{ID: "pay-1003a", Amount: engine.Dec(200), Status: engine.PaymentPaid, GatewayReference: "ch_demo_1003"},
				{ID: "pay-1003b", Amount: engine.Dec(100), Status: engine.PaymentRefund},
			},
		},
		// Fully cancelled booking that still holds money.
		{
			ID: "bk-1004", SchoolID: DemoSchoolID, Status: engine.BookingStatusCancelled,
			CreatedAt: time.Date(2025, 1, 30, 9, 15, 0, 0, time.UTC),
			Client:    engine.Client{ID: "cl-4", Name: "Tomasz Kowalski", Email: "t.kowalski@example.com"},
			Source:    engine.SourceWeb, Currency: "EUR",
			Activities: []engine.BookingActivity{{
				ID: "act-1004", Course: engine.Course{ID: "crs-rental"},
				Status: engine.UnitCancelled,
				Utilizers: []engine.Utilizer{
					{ID: "ut-1004a", Name: "Tomasz Kowalski", Status: engine.UnitCancelled},
				},
				Dates: []engine.SessionDate{
					{Date: day(12), UtilizerID: "ut-1004a"},
				},
			}},
			Payments: []engine.Payment{{
				ID: "pay-1004", Amount: engine.Dec(25), Status: engine.PaymentPaid,
			}},
		},
		// Voucher-funded flexible group booking.
		{
			ID: "bk-1005", SchoolID: DemoSchoolID, Status: engine.BookingStatusActive,
			CreatedAt: time.Date(2025, 2, 14, 11, 30, 0, 0, time.UTC),
			Client:    engine.Client{ID: "cl-5", Name: "Ines Laurent", Email: "ines.laurent@example.com"},
			Source:    engine.SourceWeb, Currency: "EUR",
			Activities: []engine.BookingActivity{{
				ID: "act-1005", Course: engine.Course{ID: "crs-flexgroup"},
				Status: engine.UnitActive,
				Utilizers: []engine.Utilizer{
					{ID: "ut-1005a", Name: "Ines Laurent", Status: engine.UnitActive},
				},
				Dates: []engine.SessionDate{
					{Date: day(22), StartTime: "09:00", EndTime: "12:00", MonitorID: "mon-3", UtilizerID: "ut-1005a"},
					{Date: day(23), StartTime: "09:00", EndTime: "12:00", MonitorID: "mon-3", UtilizerID: "ut-1005a"},
				},
			}},
			VoucherLogs: []engine.VoucherUsageLog{{
				ID: "vl-1005", Amount: engine.Dec(95),
				Voucher: engine.Voucher{ID: "vch-77", Quantity: engine.Dec(150), RemainingBalance: engine.Dec(55)},
			}},
		},
		// Obvious test booking: canonical amount plus marker reference.
		{
			ID: "bk-1006", SchoolID: DemoSchoolID, Status: engine.BookingStatusActive,
			CreatedAt: time.Date(2025, 2, 1, 3, 12, 0, 0, time.UTC),
			Client:    engine.Client{ID: "cl-6", Name: "Test User", Email: "qa+test@example.com"},
			Source:    engine.SourceAdmin, Currency: "EUR",
			Activities: []engine.BookingActivity{{
				ID: "act-1006", Course: engine.Course{ID: "crs-group"},
				Status: engine.UnitActive,
				Utilizers: []engine.Utilizer{
					{ID: "ut-1006a", Name: "Test User", Status: engine.UnitActive},
				},
			}},
			Payments: []engine.Payment{{
				ID: "pay-1006", Amount: engine.Dec(1), Status: engine.PaymentPaid,
				GatewayReference: "TEST-checkout-demo",
			}},
		},
	}

	for _, b := range bookings {
		if err := s.SaveBooking(ctx, b); err != nil {
			return err
		}
	}
	return nil
}
