package httpx

import (
	"context"
	"errors"
	"io"
	"net/http"

	"log/slog"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TaraScho/gameday-demo-app-services/internal/service/reservation"
)

const maxReservationBody = 1 << 20

// ReservationProcessor extracts and stores one reservation per request.
type ReservationProcessor interface {
	Process(ctx context.Context, raw []byte) (string, error)
}

// ReservationsRouter serves the reservation intake endpoint. Responses carry
// a fixed permissive CORS set because the website posts to it directly.
type ReservationsRouter struct {
	base
	reservations ReservationProcessor
	dbHealth     func(context.Context) error
}

// NewReservationsRouter wires the reservation routes.
func NewReservationsRouter(svc ReservationProcessor, limiter RateLimiter, dbHealth func(context.Context) error, logger *slog.Logger) *ReservationsRouter {
	r := &ReservationsRouter{
		base:         newBase(logger, limiter, nil, "reservations"),
		reservations: svc,
		dbHealth:     dbHealth,
	}
	r.routes()
	return r
}

func (r *ReservationsRouter) routes() {
	r.mux.HandleFunc("/reservations", r.audit(r.handleReserve))
	r.mux.HandleFunc("/healthz", r.handleHealthz(r.dbHealth))
	r.mux.Handle("/metrics", promhttp.Handler())
}

func (r *ReservationsRouter) handleReserve(w http.ResponseWriter, req *http.Request) {
	setCORSHeaders(w)
	switch req.Method {
	case http.MethodOptions:
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodPost:
	default:
		r.methodNotAllowed(w)
		return
	}

	raw, err := io.ReadAll(io.LimitReader(req.Body, maxReservationBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable request body")
		return
	}

	message, err := r.reservations.Process(req.Context(), raw)
	switch {
	case err == nil:
		// The confirmation is a bare JSON-encoded string; the website
		// parses the body as a string, not an object.
		writeJSON(w, http.StatusOK, message)
	case errors.Is(err, reservation.ErrUnrecognizedSource):
		writeError(w, http.StatusBadRequest, "Event source not recognized.")
	case errors.Is(err, reservation.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Invalid reservation request.")
	default:
		r.logger.Error("reservation write failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error adding penpal reservation.")
	}
}
