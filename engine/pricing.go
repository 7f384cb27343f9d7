/*
pricing.go - Expected-revenue calculation (the four pricing strategies)

PURPOSE:
  Computes the price a school is entitled to expect for one booking
  activity. Dispatch is purely a function of (course type, flexibility),
  modeled as a closed enum so every strategy is visible in one exhaustive
  switch.

STRATEGIES:
  CollectiveFixed   flat course price once per participant
  CollectiveFlex    per-day price with marginal discounts on each
                    participant's cumulative purchased days
  PrivateFixed      flat course price per physical session
  PrivateFlex       price-range matrix lookup by duration bucket and
                    participant count, after deduplicating participant rows
                    into physical sessions
  ActivityFlat      flat price per scheduled occurrence

  Extras are summed separately and added on top in every strategy.

CANCELLATION BLINDNESS:
  The calculator always computes the full, pre-cancellation price. The
  analyzer decides what fraction counts toward expected production revenue.
  One pricing code path serves both "expected" and "original value of a
  cancelled booking" reporting.

SEE ALSO:
  - analyze.go: proration of partially cancelled bookings
  - aggregate.go: type-specific "units sold" counting
*/
package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PRICING MODE - Closed dispatch enum
// =============================================================================

// PricingMode is the closed set of pricing strategies. Derived from course
// metadata, never stored.
type PricingMode int

const (
	ModeUnknown PricingMode = iota
	ModeCollectiveFixed
	ModeCollectiveFlex
	ModePrivateFixed
	ModePrivateFlex
	ModeActivityFlat
)

func (m PricingMode) String() string {
	switch m {
	case ModeCollectiveFixed:
		return "collective_fixed"
	case ModeCollectiveFlex:
		return "collective_flexible"
	case ModePrivateFixed:
		return "private_fixed"
	case ModePrivateFlex:
		return "private_flexible"
	case ModeActivityFlat:
		return "activity_flat"
	default:
		return "unknown"
	}
}

// PricingModeFor maps course metadata to a strategy. Unknown combinations
// map to ModeUnknown, which prices at zero with a logged warning.
func PricingModeFor(c Course) PricingMode {
	switch c.Type {
	case CourseCollective:
		if c.Flexible {
			return ModeCollectiveFlex
		}
		return ModeCollectiveFixed
	case CoursePrivate:
		if c.Flexible {
			return ModePrivateFlex
		}
		return ModePrivateFixed
	case CourseActivity:
		return ModeActivityFlat
	default:
		return ModeUnknown
	}
}

// =============================================================================
// DURATION BUCKETS - Minutes to price-range labels
// =============================================================================

// durationBuckets maps the exact minute durations schools configure to the
// labels used as price-range keys.
var durationBuckets = map[int]string{
	15:  "15m",
	30:  "30m",
	45:  "45m",
	60:  "1h",
	75:  "1h 15m",
	90:  "1h 30m",
	120: "2h",
	180: "3h",
	240: "4h",
}

// DurationLabel converts a session length in minutes to its price-range
// label. Unlisted durations are formatted generically so a misconfigured
// matrix still produces a deterministic (if unmatched) key.
func DurationLabel(minutes int) string {
	if label, ok := durationBuckets[minutes]; ok {
		return label
	}
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	if minutes%60 == 0 {
		return fmt.Sprintf("%dh", minutes/60)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// sessionMinutes computes the length of a session from its "15:04" bounds.
// Malformed or inverted bounds yield zero.
func sessionMinutes(start, end string) int {
	s, err1 := time.Parse("15:04", start)
	e, err2 := time.Parse("15:04", end)
	if err1 != nil || err2 != nil || !e.After(s) {
		return 0
	}
	return int(e.Sub(s).Minutes())
}

// =============================================================================
// CUMULATIVE DAY CONTEXT - Collective-flexible cross-booking lookups
// =============================================================================

// CumulativeDayCounter supplies the number of days a participant has
// already purchased for a course across earlier bookings. The flexible
// collective discount schedule applies to cumulative day indexes, so the
// third day bought in a second booking is still the client's fifth day.
type CumulativeDayCounter interface {
	PriorDays(courseID, utilizerID string) int
}

// zeroPriorDays is the default counter: cumulative counting starts fresh
// inside each booking. Callers with full purchase history inject their own.
type zeroPriorDays struct{}

func (zeroPriorDays) PriorDays(string, string) int { return 0 }

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculator prices booking activities. Pure given a fixed Days counter.
type Calculator struct {
	cfg  Config
	Days CumulativeDayCounter
}

// NewCalculator builds a calculator with the default (per-booking)
// cumulative day counter.
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg, Days: zeroPriorDays{}}
}

// ActivityPrice computes the full expected price of one activity: base
// price under the course's strategy plus participant extras. Blind to
// cancellation status on purpose.
func (c *Calculator) ActivityPrice(a BookingActivity) Breakdown {
	mode := PricingModeFor(a.Course)

	var base decimal.Decimal
	switch mode {
	case ModeCollectiveFixed:
		base = c.collectiveFixed(a)
	case ModeCollectiveFlex:
		base = c.collectiveFlexible(a)
	case ModePrivateFixed:
		base = c.privateFixed(a)
	case ModePrivateFlex:
		base = c.privateFlexible(a)
	case ModeActivityFlat:
		base = c.activityFlat(a)
	case ModeUnknown:
		warnf("course %s: unknown type/flexibility combination (%d, flexible=%t), pricing at zero",
			a.Course.ID, int(a.Course.Type), a.Course.Flexible)
		base = decimal.Zero
	}

	extras := sumExtras(a)
	return Breakdown{Base: base, Extras: extras, Total: base.Add(extras)}
}

// collectiveFixed: one flat fee per participant, independent of how many
// dates each attends.
func (c *Calculator) collectiveFixed(a BookingActivity) decimal.Decimal {
	return a.Course.Price.Mul(decimal.NewFromInt(int64(a.TotalUnits())))
}

// collectiveFlexible: each participant pays per day, with the discount
// schedule applied to their cumulative day index (prior purchases included).
func (c *Calculator) collectiveFlexible(a BookingActivity) decimal.Decimal {
	total := decimal.Zero
	for _, u := range a.Utilizers {
		days := participantDates(a, u.ID)
		prior := c.Days.PriorDays(a.Course.ID, u.ID)
		for k := range days {
			dayIndex := prior + k + 1
			total = total.Add(flexDayPrice(a.Course, dayIndex))
		}
	}
	return total
}

// flexDayPrice prices one cumulative day of a flexible collective course.
// The schedule entry with the largest Day <= dayIndex applies; discounts
// persist for later days, so more days mean a cheaper marginal day.
func flexDayPrice(course Course, dayIndex int) decimal.Decimal {
	percent := decimal.Zero
	bestDay := 0
	for _, d := range course.FlexDiscounts {
		if d.Day <= dayIndex && d.Day > bestDay {
			bestDay = d.Day
			percent = d.Percent
		}
	}
	if percent.IsZero() {
		return course.Price
	}
	factor := decimal.NewFromInt(1).Sub(percent.Div(decimal.NewFromInt(100)))
	return course.Price.Mul(factor)
}

// privateFixed: one flat fee per physical session, independent of how many
// participants attend it.
func (c *Calculator) privateFixed(a BookingActivity) decimal.Decimal {
	n := len(physicalSessions(a))
	return a.Course.Price.Mul(decimal.NewFromInt(int64(n)))
}

// privateFlexible: physical sessions priced from the course's range matrix
// by duration bucket and participant count.
func (c *Calculator) privateFlexible(a BookingActivity) decimal.Decimal {
	total := decimal.Zero
	for _, s := range physicalSessions(a) {
		total = total.Add(c.privateSessionPrice(a.Course, s))
	}
	return total
}

func (c *Calculator) privateSessionPrice(course Course, s physicalSession) decimal.Decimal {
	label := DurationLabel(sessionMinutes(s.start, s.end))
	for _, pr := range course.PriceRanges {
		if pr.Interval != label {
			continue
		}
		if price, ok := pr.ByParticipants[s.participants]; ok {
			return price
		}
	}
	warnf("course %s: no price-range entry for duration %q with %d participants, falling back to base price",
		course.ID, label, s.participants)
	return course.Price
}

// activityFlat: flat price per scheduled occurrence.
func (c *Calculator) activityFlat(a BookingActivity) decimal.Decimal {
	n := len(distinctDates(a))
	return a.Course.Price.Mul(decimal.NewFromInt(int64(n)))
}

// =============================================================================
// SESSION / DATE HELPERS
// =============================================================================

// physicalSession is a deduplicated occurrence: several participant rows
// sharing date, time bounds and monitor are one session on the slope.
type physicalSession struct {
	date         string
	start, end   string
	monitorID    string
	participants int
}

func sessionKey(d SessionDate) string {
	return d.Date.Format("2006-01-02") + "|" + d.StartTime + "|" + d.EndTime + "|" + d.MonitorID
}

// physicalSessions groups participant rows into physical sessions, counting
// distinct participants per session. Ordered by key for determinism.
func physicalSessions(a BookingActivity) []physicalSession {
	type group struct {
		row   SessionDate
		users map[string]bool
		rows  int
	}
	groups := map[string]*group{}
	for _, d := range a.Dates {
		k := sessionKey(d)
		g, ok := groups[k]
		if !ok {
			g = &group{row: d, users: map[string]bool{}}
			groups[k] = g
		}
		g.rows++
		if d.UtilizerID != "" {
			g.users[d.UtilizerID] = true
		}
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]physicalSession, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		n := len(g.users)
		if n == 0 {
			// Rows without participant attribution: each row is one seat.
			n = g.rows
		}
		out = append(out, physicalSession{
			date:         g.row.Date.Format("2006-01-02"),
			start:        g.row.StartTime,
			end:          g.row.EndTime,
			monitorID:    g.row.MonitorID,
			participants: n,
		})
	}
	return out
}

// distinctDates returns the activity's calendar dates, deduplicated.
func distinctDates(a BookingActivity) []string {
	seen := map[string]bool{}
	var out []string
	for _, d := range a.Dates {
		k := d.Date.Format("2006-01-02")
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// participantDates returns the distinct dates attributed to one utilizer.
// Rows without attribution count for every participant.
func participantDates(a BookingActivity, utilizerID string) []string {
	seen := map[string]bool{}
	var out []string
	for _, d := range a.Dates {
		if d.UtilizerID != "" && d.UtilizerID != utilizerID {
			continue
		}
		k := d.Date.Format("2006-01-02")
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

func sumExtras(a BookingActivity) decimal.Decimal {
	total := decimal.Zero
	for _, u := range a.Utilizers {
		for _, e := range u.Extras {
			total = total.Add(e.Price)
		}
	}
	return total
}

// UnitsSold counts sellable units under the strategy-specific rule used by
// course rollups: collective courses sell participant seats, private
// courses sell sessions, activities sell occurrences. Deliberately
// independent from expected revenue; divergence between the two metrics is
// a data-quality signal, not an error to reconcile away.
func UnitsSold(a BookingActivity) int {
	switch PricingModeFor(a.Course) {
	case ModeCollectiveFixed, ModeCollectiveFlex:
		return a.TotalUnits()
	case ModePrivateFixed, ModePrivateFlex:
		return len(physicalSessions(a))
	case ModeActivityFlat:
		return len(distinctDates(a))
	default:
		return 0
	}
}
