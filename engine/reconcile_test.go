package engine_test

import (
	"testing"

	"github.com/alpine/booking-finance/engine"
)

func received(b engine.Booking) float64 {
	f, _ := engine.ReceivedAmount(b, engine.DefaultConfig()).Float64()
	return f
}

func voucherLog(amount, issued, remaining float64, event string) engine.VoucherUsageLog {
	return engine.VoucherUsageLog{
		ID:     "vl-1",
		Amount: dec(amount),
		Event:  event,
		Voucher: engine.Voucher{
			ID:               "v-1",
			Quantity:         dec(issued),
			RemainingBalance: dec(remaining),
		},
	}
}

// =============================================================================
// PAYMENT ARITHMETIC
// =============================================================================

func TestReceived_PaidMinusRefunds(t *testing.T) {
	// GIVEN: 200 paid, 30 refunded, 20 partially refunded
	// WHEN: reconciling
	// THEN: net 150

	b := prodBooking("b1", futureActivity(1))
	b.Payments = []engine.Payment{
		paidPayment("p1", 200),
		refundPayment("p2", 30),
		{ID: "p3", Amount: dec(20), Status: engine.PaymentPartialRefund},
	}

	if got := received(b); got != 150 {
		t.Errorf("expected 150, got %v", got)
	}
}

func TestReceived_NoRefundEntriesAreNeutral(t *testing.T) {
	// GIVEN: a no_refund marker next to a paid entry
	// WHEN: reconciling
	// THEN: only the paid entry counts; no_refund records the decision,
	//       not a movement

	b := prodBooking("b2", futureActivity(1))
	b.Payments = []engine.Payment{
		paidPayment("p1", 120),
		{ID: "p2", Amount: dec(120), Status: engine.PaymentNoRefund},
	}

	if got := received(b); got != 120 {
		t.Errorf("expected 120, got %v", got)
	}
}

func TestReceived_NeverNegative(t *testing.T) {
	// GIVEN: refunds exceeding payments (data entry drift)
	// WHEN: reconciling
	// THEN: clamped at zero

	b := prodBooking("b3", futureActivity(1))
	b.Payments = []engine.Payment{
		paidPayment("p1", 50),
		refundPayment("p2", 80),
	}

	if got := received(b); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}

// =============================================================================
// VOUCHER RESOLUTION
// =============================================================================

func TestReceived_VoucherInferredPaid(t *testing.T) {
	// GIVEN: a 60 voucher usage; the voucher's consumed value (100-40)
	//        covers it
	// WHEN: reconciling
	// THEN: the usage counts as paid

	b := prodBooking("b4", futureActivity(1))
	b.VoucherLogs = []engine.VoucherUsageLog{voucherLog(60, 100, 40, "")}

	if got := received(b); got != 60 {
		t.Errorf("expected 60, got %v", got)
	}
}

func TestReceived_VoucherInferredRefunded(t *testing.T) {
	// GIVEN: a 50 usage against a voucher whose balance was fully restored
	// WHEN: reconciling
	// THEN: the usage counts as refunded, clamped result zero

	b := prodBooking("b5", futureActivity(1))
	b.VoucherLogs = []engine.VoucherUsageLog{voucherLog(50, 100, 100, "")}

	if got := received(b); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}

func TestReceived_VoucherExplicitRefundWinsOverBalance(t *testing.T) {
	// GIVEN: a usage with an explicit refund event even though the balance
	//        says consumed
	// WHEN: reconciling
	// THEN: the explicit log wins; the whole usage is refunded

	b := prodBooking("b6", futureActivity(1))
	b.Payments = []engine.Payment{paidPayment("p1", 100)}
	b.VoucherLogs = []engine.VoucherUsageLog{voucherLog(40, 100, 40, engine.VoucherRefundEvent)}

	if got := received(b); got != 60 {
		t.Errorf("expected 60, got %v", got)
	}
}

func TestReceived_MixedPaymentsAndVouchers(t *testing.T) {
	// GIVEN: card payment plus a paid-through voucher usage
	// WHEN: reconciling
	// THEN: both count

	b := prodBooking("b7", futureActivity(1))
	b.Payments = []engine.Payment{paidPayment("p1", 90)}
	b.VoucherLogs = []engine.VoucherUsageLog{voucherLog(30, 50, 20, "")}

	if got := received(b); got != 120 {
		t.Errorf("expected 120, got %v", got)
	}
}

func TestVoucherPortions_SplitAcrossLogs(t *testing.T) {
	// GIVEN: one paid-through usage and one explicitly refunded usage
	// WHEN: resolving portions
	// THEN: each lands on its side

	cfg := engine.DefaultConfig()
	logs := []engine.VoucherUsageLog{
		voucherLog(30, 50, 20, ""),
		voucherLog(25, 80, 55, engine.VoucherRefundEvent),
	}

	vp := engine.ResolveVoucherPortions(logs, cfg)
	if !vp.Paid.Equal(dec(30)) {
		t.Errorf("paid: expected 30, got %v", vp.Paid)
	}
	if !vp.Refunded.Equal(dec(25)) {
		t.Errorf("refunded: expected 25, got %v", vp.Refunded)
	}
}
