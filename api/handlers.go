/*
handlers.go - HTTP handlers for the analysis API

PURPOSE:
  Thin translation layer between HTTP and the engine: parse query
  parameters, load pre-built booking aggregates through the BookingLoader,
  run the analyzer, and serialize results. All business logic lives in the
  engine package; handlers only orchestrate.

ENDPOINTS:
  GET  /api/analysis                      aggregate report (cached)
  GET  /api/analysis/bookings             per-booking results
  POST /api/bookings/{id}/gateway-check   gateway cross-check
  GET  /api/health

SEE ALSO:
  - server.go: router wiring
  - store/sqlite: the production BookingLoader
*/
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/alpine/booking-finance/engine"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingLoader supplies fully-loaded booking aggregates. The engine never
// touches storage; this is the seam between them.
type BookingLoader interface {
	LoadBookings(ctx context.Context, schoolID string, from, to time.Time) ([]engine.Booking, error)
	LoadBooking(ctx context.Context, id string) (engine.Booking, bool, error)
}

// Handler bundles the API dependencies.
type Handler struct {
	loader   BookingLoader
	analyzer *engine.Analyzer
	cache    Cache
	cacheTTL time.Duration
}

// NewHandler builds a handler. A nil cache disables report caching.
func NewHandler(loader BookingLoader, analyzer *engine.Analyzer, cache Cache, cacheTTL time.Duration) *Handler {
	return &Handler{loader: loader, analyzer: analyzer, cache: cache, cacheTTL: cacheTTL}
}

// =============================================================================
// HANDLERS
// =============================================================================

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetReport runs (or serves from cache) a full analysis pass and returns
// the aggregate report.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	schoolID, from, to, ok := h.analysisParams(w, r)
	if !ok {
		return
	}

	key := cacheKey(schoolID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if h.cache != nil {
		if cached, hit := h.cache.Get(r.Context(), key); hit {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "hit")
			w.WriteHeader(http.StatusOK)
			w.Write(cached)
			return
		}
	}

	bookings, err := h.loader.LoadBookings(r.Context(), schoolID, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load_failed", err.Error())
		return
	}

	results := h.analyzer.AnalyzeBatch(bookings)
	report := engine.Aggregate(results, h.analyzer.Config())

	dto := toReportDTO(report)
	dto.RunID = uuid.NewString()
	dto.SchoolID = schoolID
	dto.From = from.Format("2006-01-02")
	dto.To = to.Format("2006-01-02")

	body, err := json.Marshal(dto)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode_failed", err.Error())
		return
	}
	if h.cache != nil {
		h.cache.Set(r.Context(), key, body, h.cacheTTL)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// ListBookingResults returns the per-booking analysis detail, uncached.
func (h *Handler) ListBookingResults(w http.ResponseWriter, r *http.Request) {
	schoolID, from, to, ok := h.analysisParams(w, r)
	if !ok {
		return
	}

	bookings, err := h.loader.LoadBookings(r.Context(), schoolID, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load_failed", err.Error())
		return
	}

	results := h.analyzer.AnalyzeBatch(bookings)
	dto := BookingListDTO{RunID: uuid.NewString()}
	for _, res := range results {
		dto.Bookings = append(dto.Bookings, toBookingResultDTO(res))
	}
	writeJSON(w, http.StatusOK, dto)
}

// GatewayCheck compares a booking's recorded payments against a
// caller-supplied gateway transaction list.
func (h *Handler) GatewayCheck(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "id")

	var req GatewayCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	booking, found, err := h.loader.LoadBooking(r.Context(), bookingID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load_failed", err.Error())
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "not_found", "booking not found")
		return
	}

	txs := make([]engine.GatewayTransaction, len(req.Transactions))
	for i, t := range req.Transactions {
		txs[i] = engine.GatewayTransaction{
			Reference: t.Reference,
			Amount:    decimal.NewFromFloat(t.Amount),
		}
	}

	verdicts := engine.CheckGateway(booking, txs, h.analyzer.Config())
	writeJSON(w, http.StatusOK, toVerdictDTOs(verdicts))
}

// =============================================================================
// HELPERS
// =============================================================================

// analysisParams parses school/from/to. The school is required; the range
// defaults to the trailing year.
func (h *Handler) analysisParams(w http.ResponseWriter, r *http.Request) (schoolID string, from, to time.Time, ok bool) {
	schoolID = r.URL.Query().Get("school")
	if schoolID == "" {
		writeError(w, http.StatusBadRequest, "missing_school", "query parameter 'school' is required")
		return "", time.Time{}, time.Time{}, false
	}

	now := time.Now().UTC()
	from = now.AddDate(-1, 0, 0)
	to = now

	var err error
	if s := r.URL.Query().Get("from"); s != "" {
		if from, err = time.Parse("2006-01-02", s); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_from", "expected YYYY-MM-DD")
			return "", time.Time{}, time.Time{}, false
		}
	}
	if s := r.URL.Query().Get("to"); s != "" {
		if to, err = time.Parse("2006-01-02", s); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_to", "expected YYYY-MM-DD")
			return "", time.Time{}, time.Time{}, false
		}
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "invalid_range", "'to' precedes 'from'")
		return "", time.Time{}, time.Time{}, false
	}
	return schoolID, from, to, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code})
}
