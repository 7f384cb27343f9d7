package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alpine/booking-finance/api"
	"github.com/alpine/booking-finance/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLoader serves a fixed booking set without a database.
type fakeLoader struct {
	bookings []engine.Booking
	err      error
}

func (f *fakeLoader) LoadBookings(ctx context.Context, schoolID string, from, to time.Time) ([]engine.Booking, error) {
	return f.bookings, f.err
}

func (f *fakeLoader) LoadBooking(ctx context.Context, id string) (engine.Booking, bool, error) {
	for _, b := range f.bookings {
		if b.ID == id {
			return b, true, f.err
		}
	}
	return engine.Booking{}, false, f.err
}

func testBooking(id string) engine.Booking {
	return engine.Booking{
		ID:        id,
		Status:    engine.BookingStatusActive,
		CreatedAt: time.Date(2025, 2, 10, 11, 0, 0, 0, time.UTC),
		SchoolID:  "school-1",
		Client:    engine.Client{ID: "c1", Name: "Laura Meier", Email: "laura@example.com"},
		Source:    engine.SourceWeb,
		Currency:  "EUR",
		Activities: []engine.BookingActivity{{
			ID: id + "-a1",
			Course: engine.Course{
				ID: "course-1", Name: "Group Beginners", Type: engine.CourseCollective,
				Price: engine.Dec(100),
			},
			Utilizers: []engine.Utilizer{{ID: "u1", Name: "Laura Meier", Status: engine.UnitActive}},
			Status:    engine.UnitActive,
		}},
		Payments: []engine.Payment{{
			ID: id + "-p1", Amount: engine.Dec(100), Status: engine.PaymentPaid,
			GatewayReference: "ch_" + id,
		}},
	}
}

func newServer(t *testing.T, loader api.BookingLoader, cache api.Cache) *httptest.Server {
	t.Helper()
	analyzer := engine.NewAnalyzer(engine.DefaultConfig()).
		WithClock(func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) })
	srv := httptest.NewServer(api.NewRouter(api.NewHandler(loader, analyzer, cache, time.Minute)))
	t.Cleanup(srv.Close)
	return srv
}

func TestAPI_Health(t *testing.T) {
	srv := newServer(t, &fakeLoader{}, nil)

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_GetReport(t *testing.T) {
	// GIVEN: two clean active bookings worth 100 each, fully paid
	// WHEN: requesting the aggregate report
	// THEN: totals reflect both and the run carries an identifier

	loader := &fakeLoader{bookings: []engine.Booking{testBooking("b1"), testBooking("b2")}}
	srv := newServer(t, loader, nil)

	resp, err := http.Get(srv.URL + "/api/analysis?school=school-1&from=2025-01-01&to=2025-06-01")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var dto api.ReportDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&dto))
	assert.NotEmpty(t, dto.RunID)
	assert.Equal(t, "school-1", dto.SchoolID)
	assert.Equal(t, 2, dto.Analyzed)
	assert.Equal(t, 200.0, dto.TotalExpected)
	assert.Equal(t, 200.0, dto.TotalReceived)
}

func TestAPI_GetReport_CacheHit(t *testing.T) {
	// GIVEN: a memory cache and an identical repeated query
	// WHEN: requesting the report twice
	// THEN: the second response is served from cache, byte for byte

	loader := &fakeLoader{bookings: []engine.Booking{testBooking("b1")}}
	srv := newServer(t, loader, api.NewMemoryCache())

	url := srv.URL + "/api/analysis?school=school-1&from=2025-01-01&to=2025-06-01"

	first, err := http.Get(url)
	require.NoError(t, err)
	firstBody := readAll(t, first)
	assert.Empty(t, first.Header.Get("X-Cache"))

	second, err := http.Get(url)
	require.NoError(t, err)
	secondBody := readAll(t, second)
	assert.Equal(t, "hit", second.Header.Get("X-Cache"))
	assert.Equal(t, firstBody, secondBody)
}

func TestAPI_GetReport_MissingSchool(t *testing.T) {
	srv := newServer(t, &fakeLoader{}, nil)

	resp, err := http.Get(srv.URL + "/api/analysis")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_GetReport_InvalidRange(t *testing.T) {
	srv := newServer(t, &fakeLoader{}, nil)

	resp, err := http.Get(srv.URL + "/api/analysis?school=s1&from=2025-06-01&to=2025-01-01")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_GetReport_LoaderFailure(t *testing.T) {
	srv := newServer(t, &fakeLoader{err: errors.New("db gone")}, nil)

	resp, err := http.Get(srv.URL + "/api/analysis?school=s1")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestAPI_ListBookingResults(t *testing.T) {
	loader := &fakeLoader{bookings: []engine.Booking{testBooking("b1"), testBooking("b2")}}
	srv := newServer(t, loader, nil)

	resp, err := http.Get(srv.URL + "/api/analysis/bookings?school=school-1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var dto api.BookingListDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&dto))
	require.Len(t, dto.Bookings, 2)
	assert.Equal(t, "b1", dto.Bookings[0].BookingID)
	assert.Equal(t, "active", dto.Bookings[0].Category)
}

func TestAPI_GatewayCheck(t *testing.T) {
	// GIVEN: a booking with one gateway payment of 100 under ch_b1
	// WHEN: posting the matching gateway transaction
	// THEN: the verdict is matched

	loader := &fakeLoader{bookings: []engine.Booking{testBooking("b1")}}
	srv := newServer(t, loader, nil)

	body, _ := json.Marshal(api.GatewayCheckRequest{
		Transactions: []api.GatewayTransactionDTO{{Reference: "ch_b1", Amount: 100}},
	})
	resp, err := http.Post(srv.URL+"/api/bookings/b1/gateway-check", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var verdicts []api.GatewayVerdictDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&verdicts))
	require.Len(t, verdicts, 1)
	assert.Equal(t, "matched", verdicts[0].Status)
}

func TestAPI_GatewayCheck_UnknownBooking(t *testing.T) {
	srv := newServer(t, &fakeLoader{}, nil)

	body, _ := json.Marshal(api.GatewayCheckRequest{})
	resp, err := http.Post(srv.URL+"/api/bookings/nope/gateway-check", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return buf.String()
}
