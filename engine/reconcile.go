/*
reconcile.go - Net received amount

PURPOSE:
  Computes what was actually collected for a booking:

    sum(paid) - sum(refund) - sum(partial_refund)
      + voucher paid portion - voucher refunded portion

  clamped at zero.

VOUCHER RESOLUTION:
  Vouchers are partially consumed across many bookings, so a usage log does
  not record on its own whether the money ultimately stayed. Two paths:

    1. Explicit: a log entry carrying a refund event marks the whole usage
       as refunded.
    2. Inferred: compare the voucher's issued quantity against its remaining
       balance; when the consumed amount covers this usage (within a small
       tolerance) the usage was paid through, otherwise it bounced back.

SEE ALSO:
  - discrepancy.go: compares this against expected revenue
  - gateway.go: optional cross-check against gateway-side transactions
*/
package engine

import "github.com/shopspring/decimal"

// VoucherPortions splits a booking's voucher usage into paid-through and
// refunded value.
type VoucherPortions struct {
	Paid     decimal.Decimal
	Refunded decimal.Decimal
}

// ResolveVoucherPortions applies the dual-path voucher resolution to all
// usage logs of a booking.
func ResolveVoucherPortions(logs []VoucherUsageLog, cfg Config) VoucherPortions {
	vp := VoucherPortions{Paid: decimal.Zero, Refunded: decimal.Zero}
	for _, l := range logs {
		if voucherUsagePaid(l, cfg) {
			vp.Paid = vp.Paid.Add(l.Amount)
		} else {
			vp.Refunded = vp.Refunded.Add(l.Amount)
		}
	}
	return vp
}

func voucherUsagePaid(l VoucherUsageLog, cfg Config) bool {
	if l.Event == VoucherRefundEvent {
		return false
	}
	consumed := l.Voucher.Quantity.Sub(l.Voucher.RemainingBalance)
	// Paid through when the voucher's consumed value covers this usage.
	return consumed.Add(cfg.VoucherBalanceTolerance).GreaterThanOrEqual(l.Amount)
}

// ReceivedAmount computes the net value actually collected for a booking.
// Never negative: over-refunds clamp to zero rather than reporting the
// school as owing money through this metric.
func ReceivedAmount(b Booking, cfg Config) decimal.Decimal {
	total := decimal.Zero
	for _, p := range b.Payments {
		switch p.Status {
		case PaymentPaid:
			total = total.Add(p.Amount)
		case PaymentRefund, PaymentPartialRefund:
			total = total.Sub(p.Amount)
		case PaymentNoRefund:
			// Cancellation kept the money; the paid entry already counted it.
		}
	}

	vp := ResolveVoucherPortions(b.VoucherLogs, cfg)
	total = total.Add(vp.Paid).Sub(vp.Refunded)

	return clampZero(total)
}
