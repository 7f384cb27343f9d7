/*
Package sqlite provides the SQLite-backed booking aggregate store.

PURPOSE:
  Persists the booking domain (courses, bookings, activities, participants,
  session dates, payments, voucher usage) and reassembles it into the
  engine.Booking aggregate the analysis pipeline consumes. In production the
  same patterns apply to PostgreSQL - only minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  api.BookingLoader: LoadBookings / LoadBooking

KEY TABLES:
  courses:               pricing metadata per course
  course_price_ranges:   flexible private price matrix rows
  course_flex_discounts: cumulative-day discounts for flexible collectives
  bookings:              booking roots with client and source
  booking_activities:    course engagements within a booking
  activity_utilizers:    participants per activity (unit-level status)
  utilizer_extras:       add-on products per participant
  activity_dates:        per-participant session rows
  payments:              money movements per booking
  voucher_logs:          voucher consumption per booking, with voucher state

AMOUNT STORAGE:
  Every monetary column is TEXT holding a decimal string. Amounts are parsed
  with decimal.NewFromString on load; float columns never enter the pipeline.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/bookings.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  bookings, err := store.LoadBookings(ctx, schoolID, from, to)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - seed.go: demo dataset
  - api/handlers.go: the BookingLoader consumer
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/alpine/booking-finance/engine"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

const (
	dayLayout  = "2006-01-02"
	timeLayout = "15:04"
)

// Store persists and reassembles booking aggregates using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Courses (pricing metadata)
	CREATE TABLE IF NOT EXISTS courses (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		course_type INTEGER NOT NULL,
		flexible BOOLEAN NOT NULL DEFAULT FALSE,
		price TEXT NOT NULL DEFAULT '0',
		currency TEXT NOT NULL DEFAULT 'EUR'
	);

	-- Flexible private price matrix: one row per (interval, participants)
	CREATE TABLE IF NOT EXISTS course_price_ranges (
		course_id TEXT NOT NULL REFERENCES courses(id),
		interval TEXT NOT NULL,
		participants INTEGER NOT NULL,
		price TEXT NOT NULL,
		PRIMARY KEY (course_id, interval, participants)
	);

	-- Flexible collective cumulative-day discounts
	CREATE TABLE IF NOT EXISTS course_flex_discounts (
		course_id TEXT NOT NULL REFERENCES courses(id),
		day INTEGER NOT NULL,
		percent TEXT NOT NULL,
		PRIMARY KEY (course_id, day)
	);

	-- Bookings
	CREATE TABLE IF NOT EXISTS bookings (
		id TEXT PRIMARY KEY,
		school_id TEXT NOT NULL,
		status INTEGER NOT NULL,
		source TEXT NOT NULL DEFAULT 'unknown',
		currency TEXT NOT NULL DEFAULT 'EUR',
		client_id TEXT NOT NULL DEFAULT '',
		client_name TEXT NOT NULL DEFAULT '',
		client_email TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_bookings_school_created
		ON bookings(school_id, created_at);

	-- Booking activities
	CREATE TABLE IF NOT EXISTS booking_activities (
		id TEXT PRIMARY KEY,
		booking_id TEXT NOT NULL REFERENCES bookings(id),
		course_id TEXT NOT NULL REFERENCES courses(id),
		price TEXT NOT NULL DEFAULT '0',
		status INTEGER NOT NULL DEFAULT 1
	);

	CREATE INDEX IF NOT EXISTS idx_activities_booking
		ON booking_activities(booking_id);

	-- Participants
	CREATE TABLE IF NOT EXISTS activity_utilizers (
		id TEXT PRIMARY KEY,
		activity_id TEXT NOT NULL REFERENCES booking_activities(id),
		name TEXT NOT NULL DEFAULT '',
		status INTEGER NOT NULL DEFAULT 1
	);

	CREATE INDEX IF NOT EXISTS idx_utilizers_activity
		ON activity_utilizers(activity_id);

	-- Participant add-ons
	CREATE TABLE IF NOT EXISTS utilizer_extras (
		utilizer_id TEXT NOT NULL REFERENCES activity_utilizers(id),
		name TEXT NOT NULL,
		price TEXT NOT NULL,
		PRIMARY KEY (utilizer_id, name)
	);

	-- Session rows: one per participant per occurrence
	CREATE TABLE IF NOT EXISTS activity_dates (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		activity_id TEXT NOT NULL REFERENCES booking_activities(id),
		date TEXT NOT NULL,
		start_time TEXT NOT NULL DEFAULT '',
		end_time TEXT NOT NULL DEFAULT '',
		monitor_id TEXT NOT NULL DEFAULT '',
		group_id TEXT NOT NULL DEFAULT '',
		utilizer_id TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_dates_activity
		ON activity_dates(activity_id, date);

	-- Payments
	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		booking_id TEXT NOT NULL REFERENCES bookings(id),
		amount TEXT NOT NULL,
		status TEXT NOT NULL,
		gateway_reference TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_payments_booking
		ON payments(booking_id);

	-- Voucher consumption, denormalized with the voucher state at load time
	CREATE TABLE IF NOT EXISTS voucher_logs (
		id TEXT PRIMARY KEY,
		booking_id TEXT NOT NULL REFERENCES bookings(id),
		amount TEXT NOT NULL,
		event TEXT NOT NULL DEFAULT '',
		voucher_id TEXT NOT NULL,
		voucher_quantity TEXT NOT NULL,
		voucher_remaining TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_voucher_logs_booking
		ON voucher_logs(booking_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// WRITE PATH
// =============================================================================

// SaveCourse upserts a course and replaces its price matrix and discounts.
func (s *Store) SaveCourse(ctx context.Context, c engine.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO courses (id, name, course_type, flexible, price, currency)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			course_type = excluded.course_type,
			flexible = excluded.flexible,
			price = excluded.price,
			currency = excluded.currency
	`, c.ID, c.Name, int(c.Type), c.Flexible, c.Price.String(), c.Currency)
	if err != nil {
		return fmt.Errorf("failed to save course: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM course_price_ranges WHERE course_id = ?", c.ID); err != nil {
		return err
	}
	for _, pr := range c.PriceRanges {
		for participants, price := range pr.ByParticipants {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO course_price_ranges (course_id, interval, participants, price) VALUES (?, ?, ?, ?)",
				c.ID, pr.Interval, participants, price.String()); err != nil {
				return err
			}
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM course_flex_discounts WHERE course_id = ?", c.ID); err != nil {
		return err
	}
	for _, fd := range c.FlexDiscounts {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO course_flex_discounts (course_id, day, percent) VALUES (?, ?, ?)",
			c.ID, fd.Day, fd.Percent.String()); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveBooking persists a full booking aggregate atomically. Courses must be
// saved beforehand; activities reference them by ID.
func (s *Store) SaveBooking(ctx context.Context, b engine.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bookings
		(id, school_id, status, source, currency, client_id, client_name, client_email, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.SchoolID, b.Status, string(b.Source), b.Currency,
		b.Client.ID, b.Client.Name, b.Client.Email,
		b.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save booking %s: %w", b.ID, err)
	}

	for _, a := range b.Activities {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO booking_activities (id, booking_id, course_id, price, status) VALUES (?, ?, ?, ?, ?)",
			a.ID, b.ID, a.Course.ID, a.Price.String(), int(a.Status))
		if err != nil {
			return fmt.Errorf("failed to save activity %s: %w", a.ID, err)
		}

		for _, u := range a.Utilizers {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO activity_utilizers (id, activity_id, name, status) VALUES (?, ?, ?, ?)",
				u.ID, a.ID, u.Name, int(u.Status))
			if err != nil {
				return fmt.Errorf("failed to save utilizer %s: %w", u.ID, err)
			}
			for _, e := range u.Extras {
				if _, err := tx.ExecContext(ctx,
					"INSERT INTO utilizer_extras (utilizer_id, name, price) VALUES (?, ?, ?)",
					u.ID, e.Name, e.Price.String()); err != nil {
					return err
				}
			}
		}

		for _, d := range a.Dates {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO activity_dates
				(activity_id, date, start_time, end_time, monitor_id, group_id, utilizer_id)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, a.ID, d.Date.Format(dayLayout), d.StartTime, d.EndTime, d.MonitorID, d.GroupID, d.UtilizerID)
			if err != nil {
				return err
			}
		}
	}

	for _, p := range b.Payments {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO payments (id, booking_id, amount, status, gateway_reference, notes) VALUES (?, ?, ?, ?, ?, ?)",
			p.ID, b.ID, p.Amount.String(), string(p.Status), p.GatewayReference, p.Notes)
		if err != nil {
			return fmt.Errorf("failed to save payment %s: %w", p.ID, err)
		}
	}

	for _, v := range b.VoucherLogs {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO voucher_logs
			(id, booking_id, amount, event, voucher_id, voucher_quantity, voucher_remaining)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, v.ID, b.ID, v.Amount.String(), v.Event,
			v.Voucher.ID, v.Voucher.Quantity.String(), v.Voucher.RemainingBalance.String())
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// =============================================================================
// READ PATH (api.BookingLoader)
// =============================================================================

// LoadBookings returns the full aggregates for a school's bookings created
// within [from, to], ordered by creation time.
func (s *Store) LoadBookings(ctx context.Context, schoolID string, from, to time.Time) ([]engine.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// The range is inclusive on whole days.
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, school_id, status, source, currency, client_id, client_name, client_email, created_at
		FROM bookings
		WHERE school_id = ? AND created_at >= ? AND created_at < ?
		ORDER BY created_at ASC, id ASC
	`, schoolID,
		from.UTC().Format(time.RFC3339),
		to.UTC().AddDate(0, 0, 1).Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []engine.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range bookings {
		if err := s.loadChildren(ctx, &bookings[i]); err != nil {
			return nil, err
		}
	}
	return bookings, nil
}

// LoadBooking returns one full aggregate by ID.
func (s *Store) LoadBooking(ctx context.Context, id string) (engine.Booking, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, school_id, status, source, currency, client_id, client_name, client_email, created_at
		FROM bookings WHERE id = ?
	`, id)
	if err != nil {
		return engine.Booking{}, false, fmt.Errorf("failed to query booking: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return engine.Booking{}, false, rows.Err()
	}
	b, err := scanBooking(rows)
	if err != nil {
		return engine.Booking{}, false, err
	}
	rows.Close()

	if err := s.loadChildren(ctx, &b); err != nil {
		return engine.Booking{}, false, err
	}
	return b, true, nil
}

func scanBooking(rows *sql.Rows) (engine.Booking, error) {
	var (
		b         engine.Booking
		source    string
		createdAt string
	)
	err := rows.Scan(&b.ID, &b.SchoolID, &b.Status, &source, &b.Currency,
		&b.Client.ID, &b.Client.Name, &b.Client.Email, &createdAt)
	if err != nil {
		return b, fmt.Errorf("failed to scan booking: %w", err)
	}
	b.Source = engine.BookingSource(source)
	b.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return b, nil
}

// loadChildren fills in activities, payments and voucher logs.
func (s *Store) loadChildren(ctx context.Context, b *engine.Booking) error {
	activities, err := s.loadActivities(ctx, b.ID)
	if err != nil {
		return err
	}
	b.Activities = activities

	b.Payments, err = s.loadPayments(ctx, b.ID)
	if err != nil {
		return err
	}

	b.VoucherLogs, err = s.loadVoucherLogs(ctx, b.ID)
	return err
}

func (s *Store) loadActivities(ctx context.Context, bookingID string) ([]engine.BookingActivity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.price, a.status,
		       c.id, c.name, c.course_type, c.flexible, c.price, c.currency
		FROM booking_activities a
		JOIN courses c ON c.id = a.course_id
		WHERE a.booking_id = ?
		ORDER BY a.id ASC
	`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var activities []engine.BookingActivity
	for rows.Next() {
		var (
			a          engine.BookingActivity
			aPrice     string
			aStatus    int
			courseType int
			cPrice     string
		)
		err := rows.Scan(&a.ID, &aPrice, &aStatus,
			&a.Course.ID, &a.Course.Name, &courseType, &a.Course.Flexible, &cPrice, &a.Course.Currency)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		a.Price = mustDecimal(aPrice)
		a.Status = engine.UnitStatus(aStatus)
		a.Course.Type = engine.CourseType(courseType)
		a.Course.Price = mustDecimal(cPrice)
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range activities {
		a := &activities[i]
		if a.Course.PriceRanges, err = s.loadPriceRanges(ctx, a.Course.ID); err != nil {
			return nil, err
		}
		if a.Course.FlexDiscounts, err = s.loadFlexDiscounts(ctx, a.Course.ID); err != nil {
			return nil, err
		}
		if a.Utilizers, err = s.loadUtilizers(ctx, a.ID); err != nil {
			return nil, err
		}
		if a.Dates, err = s.loadDates(ctx, a.ID); err != nil {
			return nil, err
		}
	}
	return activities, nil
}

func (s *Store) loadPriceRanges(ctx context.Context, courseID string) ([]engine.PriceRange, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT interval, participants, price
		FROM course_price_ranges
		WHERE course_id = ?
		ORDER BY interval ASC, participants ASC
	`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byInterval := map[string]map[int]decimal.Decimal{}
	var order []string
	for rows.Next() {
		var (
			interval     string
			participants int
			price        string
		)
		if err := rows.Scan(&interval, &participants, &price); err != nil {
			return nil, err
		}
		if byInterval[interval] == nil {
			byInterval[interval] = map[int]decimal.Decimal{}
			order = append(order, interval)
		}
		byInterval[interval][participants] = mustDecimal(price)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var ranges []engine.PriceRange
	for _, interval := range order {
		ranges = append(ranges, engine.PriceRange{Interval: interval, ByParticipants: byInterval[interval]})
	}
	return ranges, nil
}

func (s *Store) loadFlexDiscounts(ctx context.Context, courseID string) ([]engine.FlexDiscount, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT day, percent FROM course_flex_discounts WHERE course_id = ? ORDER BY day ASC", courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var discounts []engine.FlexDiscount
	for rows.Next() {
		var (
			fd      engine.FlexDiscount
			percent string
		)
		if err := rows.Scan(&fd.Day, &percent); err != nil {
			return nil, err
		}
		fd.Percent = mustDecimal(percent)
		discounts = append(discounts, fd)
	}
	return discounts, rows.Err()
}

func (s *Store) loadUtilizers(ctx context.Context, activityID string) ([]engine.Utilizer, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, status FROM activity_utilizers WHERE activity_id = ? ORDER BY id ASC", activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var utilizers []engine.Utilizer
	for rows.Next() {
		var (
			u      engine.Utilizer
			status int
		)
		if err := rows.Scan(&u.ID, &u.Name, &status); err != nil {
			return nil, err
		}
		u.Status = engine.UnitStatus(status)
		utilizers = append(utilizers, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range utilizers {
		extras, err := s.loadExtras(ctx, utilizers[i].ID)
		if err != nil {
			return nil, err
		}
		utilizers[i].Extras = extras
	}
	return utilizers, nil
}

func (s *Store) loadExtras(ctx context.Context, utilizerID string) ([]engine.Extra, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, price FROM utilizer_extras WHERE utilizer_id = ? ORDER BY name ASC", utilizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var extras []engine.Extra
	for rows.Next() {
		var (
			e     engine.Extra
			price string
		)
		if err := rows.Scan(&e.Name, &price); err != nil {
			return nil, err
		}
		e.Price = mustDecimal(price)
		extras = append(extras, e)
	}
	return extras, rows.Err()
}

func (s *Store) loadDates(ctx context.Context, activityID string) ([]engine.SessionDate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, start_time, end_time, monitor_id, group_id, utilizer_id
		FROM activity_dates
		WHERE activity_id = ?
		ORDER BY date ASC, start_time ASC, id ASC
	`, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []engine.SessionDate
	for rows.Next() {
		var (
			d       engine.SessionDate
			dateStr string
		)
		if err := rows.Scan(&dateStr, &d.StartTime, &d.EndTime, &d.MonitorID, &d.GroupID, &d.UtilizerID); err != nil {
			return nil, err
		}
		d.Date, _ = time.Parse(dayLayout, dateStr)
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func (s *Store) loadPayments(ctx context.Context, bookingID string) ([]engine.Payment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, amount, status, gateway_reference, notes
		FROM payments
		WHERE booking_id = ?
		ORDER BY id ASC
	`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []engine.Payment
	for rows.Next() {
		var (
			p      engine.Payment
			amount string
			status string
		)
		if err := rows.Scan(&p.ID, &amount, &status, &p.GatewayReference, &p.Notes); err != nil {
			return nil, err
		}
		p.Amount = mustDecimal(amount)
		p.Status = engine.PaymentStatus(status)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (s *Store) loadVoucherLogs(ctx context.Context, bookingID string) ([]engine.VoucherUsageLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, amount, event, voucher_id, voucher_quantity, voucher_remaining
		FROM voucher_logs
		WHERE booking_id = ?
		ORDER BY id ASC
	`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []engine.VoucherUsageLog
	for rows.Next() {
		var (
			v         engine.VoucherUsageLog
			amount    string
			quantity  string
			remaining string
		)
		if err := rows.Scan(&v.ID, &amount, &v.Event, &v.Voucher.ID, &quantity, &remaining); err != nil {
			return nil, err
		}
		v.Amount = mustDecimal(amount)
		v.Voucher.Quantity = mustDecimal(quantity)
		v.Voucher.RemainingBalance = mustDecimal(remaining)
		logs = append(logs, v)
	}
	return logs, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"voucher_logs", "payments", "activity_dates", "utilizer_extras",
		"activity_utilizers", "booking_activities", "bookings",
		"course_flex_discounts", "course_price_ranges", "courses",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// CountBookings returns the number of stored bookings for a school.
func (s *Store) CountBookings(ctx context.Context, schoolID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bookings WHERE school_id = ?", schoolID).Scan(&count)
	return count, err
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
