// Package reservation processes penpal reservations arriving either as
// forwarded retail-store events or as direct website submissions.
package reservation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/TaraScho/gameday-demo-app-services/internal/domain"
	"github.com/TaraScho/gameday-demo-app-services/internal/repository"
)

// ErrUnrecognizedSource indicates the event shape matched neither known
// source.
var ErrUnrecognizedSource = errors.New("reservation: event source not recognized")

// ErrInvalidInput indicates missing or inconsistent reservation fields.
var ErrInvalidInput = errors.New("reservation: invalid reservation data")

// Payload is the wire form of a reservation, shared by both event sources.
type Payload struct {
	CustomerID      string `json:"customer_id"`
	PenpalEmail     string `json:"penpal_email"`
	PenpalType      string `json:"penpal_type"`
	UnicornType     string `json:"unicorn_type,omitempty"`
	UnicornSecretID string `json:"unicorn_secret_id,omitempty"`
	PuppyType       string `json:"puppy_type,omitempty"`
	PuppySecretID   string `json:"puppy_secret_id,omitempty"`
}

// Service validates and stores reservations.
type Service struct {
	reservations repository.ReservationRepository
	logger       *slog.Logger
	now          func() time.Time
}

// New constructs a Service.
func New(reservations repository.ReservationRepository, logger *slog.Logger) *Service {
	return &Service{reservations: reservations, logger: logger, now: time.Now}
}

// Extract pulls the reservation payload out of a raw event. Retail-store
// events arrive wrapped in an envelope with a structured "detail" field;
// website submissions arrive either as an envelope with a JSON-encoded
// "body" string or as the bare reservation object.
func Extract(raw []byte) (Payload, error) {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
		Body   string          `json:"body"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return Payload{}, ErrUnrecognizedSource
	}

	var payload Payload
	switch {
	case len(envelope.Detail) > 0:
		if err := json.Unmarshal(envelope.Detail, &payload); err != nil {
			return Payload{}, ErrUnrecognizedSource
		}
	case envelope.Body != "":
		if err := json.Unmarshal([]byte(envelope.Body), &payload); err != nil {
			return Payload{}, ErrUnrecognizedSource
		}
	default:
		if err := json.Unmarshal(raw, &payload); err != nil || payload.CustomerID == "" {
			return Payload{}, ErrUnrecognizedSource
		}
	}
	return payload, nil
}

// Process validates the payload, writes exactly one reservation record, and
// returns the confirmation message shown to the customer.
func (s *Service) Process(ctx context.Context, raw []byte) (string, error) {
	payload, err := Extract(raw)
	if err != nil {
		s.logger.Warn("reservation event not recognized")
		return "", err
	}

	reservation, err := toReservation(payload, s.now().UTC())
	if err != nil {
		return "", err
	}

	s.logger.Info("logging customer reservation",
		"customer_id", reservation.CustomerID, "penpal_type", reservation.PenpalType)

	if err := s.reservations.PutReservation(ctx, reservation); err != nil {
		return "", fmt.Errorf("store reservation: %w", err)
	}

	msg := fmt.Sprintf("We have reserved a %s penpal for you!  Write them today at %s. Your new bestie can't wait to hear from you.",
		reservation.Kind(), reservation.PenpalEmail)
	return msg, nil
}

// toReservation validates the payload and keeps only the attribute pair
// matching the penpal type.
func toReservation(p Payload, createdAt time.Time) (*domain.Reservation, error) {
	if p.CustomerID == "" || p.PenpalEmail == "" || p.PenpalType == "" {
		return nil, ErrInvalidInput
	}
	r := &domain.Reservation{
		CustomerID:  p.CustomerID,
		PenpalEmail: p.PenpalEmail,
		PenpalType:  p.PenpalType,
		CreatedAt:   createdAt,
	}
	switch p.PenpalType {
	case domain.PenpalTypeUnicorn:
		if p.UnicornType == "" || p.UnicornSecretID == "" {
			return nil, ErrInvalidInput
		}
		r.UnicornType = p.UnicornType
		r.UnicornSecretID = p.UnicornSecretID
	case domain.PenpalTypePuppy:
		if p.PuppyType == "" || p.PuppySecretID == "" {
			return nil, ErrInvalidInput
		}
		r.PuppyType = p.PuppyType
		r.PuppySecretID = p.PuppySecretID
	default:
		return nil, ErrInvalidInput
	}
	return r, nil
}
