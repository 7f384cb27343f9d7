/*
gateway.go - Optional gateway-side cross-check

PURPOSE:
  Compares a booking's recorded gateway payments against a caller-supplied
  list of gateway-side transactions and returns a verdict per payment. The
  engine never talks to the gateway itself; this is a pure comparison hook
  used only when cross-checking is requested.

MATCHING:
  Two passes, mirroring classic bank reconciliation:
    1. Reference match - same gateway reference; amounts compared within
       the discrepancy tolerance.
    2. Amount match    - leftover payments paired with leftover gateway
       transactions of the same amount.
  Payments left unmatched after both passes are missing on the gateway side.
*/
package engine

import "github.com/shopspring/decimal"

// GatewayTransaction is one transaction as reported by the payment gateway.
type GatewayTransaction struct {
	Reference string
	Amount    decimal.Decimal
}

// GatewayMatch is the verdict for one payment.
type GatewayMatch string

const (
	GatewayMatched          GatewayMatch = "matched"
	GatewayAmountMismatch   GatewayMatch = "amount_mismatch"
	GatewayMissingInGateway GatewayMatch = "missing_in_gateway"
)

// GatewayVerdict pairs one recorded payment with its cross-check outcome.
type GatewayVerdict struct {
	PaymentID string
	Reference string
	Status    GatewayMatch
	Diff      decimal.Decimal
}

// CheckGateway reconciles the booking's gateway payments against the
// supplied gateway transactions.
func CheckGateway(b Booking, gatewayTxs []GatewayTransaction, cfg Config) []GatewayVerdict {
	used := make([]bool, len(gatewayTxs))
	payments := b.GatewayPayments()
	verdicts := make([]GatewayVerdict, len(payments))
	matched := make([]bool, len(payments))

	// Pass 1: reference match.
	for i, p := range payments {
		for j, tx := range gatewayTxs {
			if used[j] || tx.Reference != p.GatewayReference {
				continue
			}
			used[j] = true
			matched[i] = true
			diff := p.Amount.Sub(tx.Amount).Abs()
			status := GatewayMatched
			if diff.GreaterThan(cfg.DiscrepancyTolerance) {
				status = GatewayAmountMismatch
			}
			verdicts[i] = GatewayVerdict{PaymentID: p.ID, Reference: p.GatewayReference, Status: status, Diff: diff}
			break
		}
	}

	// Pass 2: amount match for payments whose reference never appeared.
	for i, p := range payments {
		if matched[i] {
			continue
		}
		for j, tx := range gatewayTxs {
			if used[j] {
				continue
			}
			if p.Amount.Sub(tx.Amount).Abs().LessThanOrEqual(cfg.DiscrepancyTolerance) {
				used[j] = true
				matched[i] = true
				verdicts[i] = GatewayVerdict{PaymentID: p.ID, Reference: p.GatewayReference, Status: GatewayMatched}
				break
			}
		}
		if !matched[i] {
			verdicts[i] = GatewayVerdict{PaymentID: p.ID, Reference: p.GatewayReference, Status: GatewayMissingInGateway, Diff: p.Amount}
		}
	}

	return verdicts
}
