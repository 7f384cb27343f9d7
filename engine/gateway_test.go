package engine_test

import (
	"testing"

	"github.com/alpine/booking-finance/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatewayTx(ref string, amount float64) engine.GatewayTransaction {
	return engine.GatewayTransaction{Reference: ref, Amount: dec(amount)}
}

func TestGateway_ReferenceMatch(t *testing.T) {
	// GIVEN: a gateway payment whose reference and amount both appear
	//        gateway-side
	// WHEN: cross-checking
	// THEN: matched

	b := prodBooking("b1", futureActivity(1))
	b.Payments = []engine.Payment{gatewayPayment("p1", 120, "ch_abc")}

	verdicts := engine.CheckGateway(b, []engine.GatewayTransaction{gatewayTx("ch_abc", 120)}, engine.DefaultConfig())
	require.Len(t, verdicts, 1)
	assert.Equal(t, engine.GatewayMatched, verdicts[0].Status)
	assert.Equal(t, "p1", verdicts[0].PaymentID)
}

func TestGateway_AmountMismatchOnSameReference(t *testing.T) {
	// GIVEN: the reference matches but the gateway recorded 20 less
	// WHEN: cross-checking
	// THEN: amount_mismatch with the difference reported

	b := prodBooking("b2", futureActivity(1))
	b.Payments = []engine.Payment{gatewayPayment("p1", 120, "ch_abc")}

	verdicts := engine.CheckGateway(b, []engine.GatewayTransaction{gatewayTx("ch_abc", 100)}, engine.DefaultConfig())
	require.Len(t, verdicts, 1)
	assert.Equal(t, engine.GatewayAmountMismatch, verdicts[0].Status)
	assert.True(t, verdicts[0].Diff.Equal(dec(20)), "diff should be 20, got %v", verdicts[0].Diff)
}

func TestGateway_AmountFallbackWhenReferencesDiverge(t *testing.T) {
	// GIVEN: references never line up but one gateway transaction carries
	//        the same amount
	// WHEN: cross-checking
	// THEN: matched through the amount pass

	b := prodBooking("b3", futureActivity(1))
	b.Payments = []engine.Payment{gatewayPayment("p1", 95.50, "internal-0042")}

	verdicts := engine.CheckGateway(b, []engine.GatewayTransaction{gatewayTx("ch_zzz", 95.50)}, engine.DefaultConfig())
	require.Len(t, verdicts, 1)
	assert.Equal(t, engine.GatewayMatched, verdicts[0].Status)
}

func TestGateway_MissingInGateway(t *testing.T) {
	// GIVEN: nothing gateway-side resembles the recorded payment
	// WHEN: cross-checking
	// THEN: missing_in_gateway

	b := prodBooking("b4", futureActivity(1))
	b.Payments = []engine.Payment{gatewayPayment("p1", 150, "ch_lost")}

	verdicts := engine.CheckGateway(b, []engine.GatewayTransaction{gatewayTx("ch_other", 47)}, engine.DefaultConfig())
	require.Len(t, verdicts, 1)
	assert.Equal(t, engine.GatewayMissingInGateway, verdicts[0].Status)
}

func TestGateway_EachGatewayTransactionConsumedOnce(t *testing.T) {
	// GIVEN: two recorded payments of the same amount but only one
	//        gateway transaction
	// WHEN: cross-checking
	// THEN: one matches, the other is missing

	b := prodBooking("b5", futureActivity(1))
	b.Payments = []engine.Payment{
		gatewayPayment("p1", 80, "ref-a"),
		gatewayPayment("p2", 80, "ref-b"),
	}

	verdicts := engine.CheckGateway(b, []engine.GatewayTransaction{gatewayTx("ref-a", 80)}, engine.DefaultConfig())
	require.Len(t, verdicts, 2)
	assert.Equal(t, engine.GatewayMatched, verdicts[0].Status)
	assert.Equal(t, engine.GatewayMissingInGateway, verdicts[1].Status)
}

func TestGateway_NonGatewayPaymentsIgnored(t *testing.T) {
	// GIVEN: a cash payment without a gateway reference
	// WHEN: cross-checking
	// THEN: no verdict for it; only gateway payments are compared

	b := prodBooking("b6", futureActivity(1))
	b.Payments = []engine.Payment{paidPayment("p1", 60)}

	verdicts := engine.CheckGateway(b, nil, engine.DefaultConfig())
	assert.Empty(t, verdicts)
}
