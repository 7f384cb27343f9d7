package engine_test

import (
	"testing"
	"time"

	"github.com/alpine/booking-finance/engine"
)

// =============================================================================
// SHARED BOOKING BUILDERS
// =============================================================================
// Used by the classifier, detector, analyzer and aggregation tests.

var analysisTime = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

// prodBooking builds a plausible production booking: created mid-morning,
// real-looking client, web channel.
func prodBooking(id string, activities ...engine.BookingActivity) engine.Booking {
	return engine.Booking{
		ID:        id,
		Status:    engine.BookingStatusActive,
		CreatedAt: time.Date(2025, time.January, 20, 10, 30, 0, 0, time.UTC),
		SchoolID:  "school-1",
		Client:    engine.Client{ID: "client-7", Name: "Marie Dupont", Email: "marie.dupont@gmail.com"},
		Source:    engine.SourceWeb,
		Currency:  "EUR",
		Activities: activities,
	}
}

func paidPayment(id string, amount float64) engine.Payment {
	return engine.Payment{ID: id, Amount: dec(amount), Status: engine.PaymentPaid}
}

func gatewayPayment(id string, amount float64, ref string) engine.Payment {
	return engine.Payment{ID: id, Amount: dec(amount), Status: engine.PaymentPaid, GatewayReference: ref}
}

func refundPayment(id string, amount float64) engine.Payment {
	return engine.Payment{ID: id, Amount: dec(amount), Status: engine.PaymentRefund}
}

// futureActivity has one occurrence after analysisTime, all units active.
func futureActivity(participants int) engine.BookingActivity {
	return engine.BookingActivity{
		ID:        "act-1",
		Course:    collectiveFixedCourse(100),
		Utilizers: utilizers(participants),
		Dates:     []engine.SessionDate{sessionRow(time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC), "10:00", "12:00", "m1", "")},
	}
}

// pastActivity has every occurrence before analysisTime.
func pastActivity(participants int) engine.BookingActivity {
	a := futureActivity(participants)
	a.Dates = []engine.SessionDate{sessionRow(day(3), "10:00", "12:00", "m1", "")}
	return a
}

func classify(b engine.Booking) engine.Category {
	cat, _ := engine.Classify(b, engine.DefaultConfig(), analysisTime)
	return cat
}

// =============================================================================
// CATEGORY RESOLUTION
// =============================================================================

func TestClassify_ActiveByDefault(t *testing.T) {
	// GIVEN: a booking with future occurrences and no cancellations
	// WHEN: classifying
	// THEN: active

	if got := classify(prodBooking("b1", futureActivity(2))); got != engine.CategoryActive {
		t.Errorf("expected active, got %s", got)
	}
}

func TestClassify_Finished_AllOccurrencesPast(t *testing.T) {
	// GIVEN: every occurrence before the analysis time, nothing cancelled
	// WHEN: classifying
	// THEN: finished

	if got := classify(prodBooking("b2", pastActivity(2))); got != engine.CategoryFinished {
		t.Errorf("expected finished, got %s", got)
	}
}

func TestClassify_FullyCancelled_AllUnits(t *testing.T) {
	// GIVEN: the only activity is cancelled outright
	// WHEN: classifying
	// THEN: fully cancelled

	a := futureActivity(3)
	a.Status = engine.UnitCancelled
	if got := classify(prodBooking("b3", a)); got != engine.CategoryFullyCancelled {
		t.Errorf("expected fully_cancelled, got %s", got)
	}
}

func TestClassify_FullyCancelled_BookingLevelStatus(t *testing.T) {
	// GIVEN: booking-level cancelled status with stale active unit rows
	// WHEN: classifying
	// THEN: fully cancelled; the booking-level signal wins

	b := prodBooking("b4", futureActivity(2))
	b.Status = engine.BookingStatusCancelled
	if got := classify(b); got != engine.CategoryFullyCancelled {
		t.Errorf("expected fully_cancelled, got %s", got)
	}
}

func TestClassify_PartiallyCancelled_SomeUnits(t *testing.T) {
	// GIVEN: one of three participant-units cancelled
	// WHEN: classifying
	// THEN: partially cancelled, even when all dates are past

	a := pastActivity(3)
	a.Utilizers[1].Status = engine.UnitCancelled
	if got := classify(prodBooking("b5", a)); got != engine.CategoryPartiallyCancelled {
		t.Errorf("expected partially_cancelled, got %s", got)
	}
}

func TestClassify_UnknownStatusCode_FallsBackToActive(t *testing.T) {
	// GIVEN: a legacy status code the engine does not recognize
	// WHEN: classifying
	// THEN: active (with a logged warning), never dropped

	b := prodBooking("b6", futureActivity(1))
	b.Status = 77
	if got := classify(b); got != engine.CategoryActive {
		t.Errorf("expected active, got %s", got)
	}
}

func TestClassify_TestShortCircuitsCancellation(t *testing.T) {
	// GIVEN: a booking that is both clearly a test and fully cancelled
	// WHEN: classifying
	// THEN: test wins; it is never also counted as cancelled

	a := futureActivity(1)
	a.Status = engine.UnitCancelled
	b := prodBooking("b7", a)
	b.Payments = []engine.Payment{gatewayPayment("p1", 10, "TEST-checkout-1")}

	cat, ti := engine.Classify(b, engine.DefaultConfig(), analysisTime)
	if cat != engine.CategoryTest {
		t.Fatalf("expected test, got %s", cat)
	}
	if ti.Confidence != engine.ConfidenceHigh {
		t.Errorf("expected high confidence, got %s", ti.Confidence)
	}
}

func TestClassify_ExcludedCoursesContributeNoSignal(t *testing.T) {
	// GIVEN: the booking's only activity belongs to an excluded course,
	//        and that activity is cancelled
	// WHEN: classifying
	// THEN: active; excluded courses are skipped uniformly

	cfg := engine.DefaultConfig()
	cfg.ExcludedCourses["c-collective"] = true

	a := futureActivity(2)
	a.Status = engine.UnitCancelled
	cat, _ := engine.Classify(prodBooking("b8", a), cfg, analysisTime)
	if cat != engine.CategoryActive {
		t.Errorf("expected active, got %s", cat)
	}
}

// =============================================================================
// PARTITION INVARIANT
// =============================================================================

func TestClassify_PartitionIsExhaustiveAndDisjoint(t *testing.T) {
	// GIVEN: a mixed population covering every category
	// WHEN: classifying each booking
	// THEN: every booking lands in exactly one of the five categories

	cancelled := futureActivity(2)
	cancelled.Status = engine.UnitCancelled
	partial := pastActivity(3)
	partial.Utilizers[0].Status = engine.UnitCancelled
	testBooking := prodBooking("t1", futureActivity(1))
	testBooking.Payments = []engine.Payment{gatewayPayment("p1", 10, "TEST-1")}

	population := []engine.Booking{
		prodBooking("p-active", futureActivity(2)),
		prodBooking("p-finished", pastActivity(1)),
		prodBooking("p-cancelled", cancelled),
		prodBooking("p-partial", partial),
		testBooking,
	}

	known := map[engine.Category]bool{
		engine.CategoryTest:               true,
		engine.CategoryFullyCancelled:     true,
		engine.CategoryPartiallyCancelled: true,
		engine.CategoryFinished:           true,
		engine.CategoryActive:             true,
	}

	seen := map[engine.Category]int{}
	for _, b := range population {
		cat := classify(b)
		if !known[cat] {
			t.Fatalf("booking %s: unknown category %q", b.ID, cat)
		}
		seen[cat]++
	}

	total := 0
	for _, n := range seen {
		total += n
	}
	if total != len(population) {
		t.Errorf("partition not exhaustive: %d bookings, %d categorized", len(population), total)
	}
	for cat, n := range seen {
		if n != 1 {
			t.Errorf("category %s: expected 1 booking, got %d", cat, n)
		}
	}
}
