package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flight-slot-booking/internal/booking"
	"github.com/iliyamo/flight-slot-booking/internal/model"
	"github.com/iliyamo/flight-slot-booking/internal/queue"
	"github.com/iliyamo/flight-slot-booking/internal/repository"
	"github.com/iliyamo/flight-slot-booking/internal/slot"
)

// PublicEventHandler serves the unauthenticated pilot-facing routes:
// browsing events, listing open slots and submitting registrations.
// Publish is called after a registration commits; a nil Publish (or a
// broker failure) never fails the request.
type PublicEventHandler struct {
	Ledger    *booking.Ledger
	Admission *booking.Admission
	Publish   func(ctx context.Context, ev queue.RegistrationConfirmedEvent) error
}

func NewPublicEventHandler(l *booking.Ledger, a *booking.Admission,
	publish func(ctx context.Context, ev queue.RegistrationConfirmedEvent) error) *PublicEventHandler {
	return &PublicEventHandler{Ledger: l, Admission: a, Publish: publish}
}

// ----- DTOs -----

type routeResp struct {
	From              string  `json:"from"`
	To                string  `json:"to"`
	Aircraft          string  `json:"aircraft"`
	FlightLevel       *string `json:"flight_level,omitempty"`
	EstimatedDuration *string `json:"estimated_duration,omitempty"`
}

type eventResp struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	Date                string    `json:"date"`
	StartTime           string    `json:"start_time"`
	EndTime             string    `json:"end_time"`
	SlotDurationMinutes int       `json:"slot_duration_minutes"`
	Route               routeResp `json:"route"`
	Status              string    `json:"status"`
	TotalSlots          int       `json:"total_slots"`
	AvailableSlots      int       `json:"available_slots"`
	CreatedAt           time.Time `json:"created_at"`
}

type registrationReq struct {
	Name         string  `json:"name"`
	VatsimCID    string  `json:"vatsim_cid"`
	Email        string  `json:"email"`
	AircraftType string  `json:"aircraft_type"`
	Route        string  `json:"route"`
	Notes        *string `json:"notes,omitempty"`
	SelectedTime string  `json:"selected_time"`
}

type registrationResp struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	Name         string    `json:"name"`
	VatsimCID    string    `json:"vatsim_cid"`
	Email        string    `json:"email"`
	AircraftType string    `json:"aircraft_type"`
	Route        string    `json:"route"`
	Notes        *string   `json:"notes,omitempty"`
	SelectedTime string    `json:"selected_time"`
	Status       string    `json:"status"`
	RegisteredAt time.Time `json:"registered_at"`
}

func toEventResp(ev *model.Event) eventResp {
	return eventResp{
		ID:                  ev.ID,
		Title:               ev.Title,
		Description:         ev.Description,
		Date:                ev.Date,
		StartTime:           ev.StartTime,
		EndTime:             ev.EndTime,
		SlotDurationMinutes: ev.SlotDurationMinutes,
		Route: routeResp{
			From:              ev.Route.FromICAO,
			To:                ev.Route.ToICAO,
			Aircraft:          ev.Route.Aircraft,
			FlightLevel:       ev.Route.FlightLevel,
			EstimatedDuration: ev.Route.EstimatedDuration,
		},
		Status:         ev.Status,
		TotalSlots:     ev.TotalSlots,
		AvailableSlots: ev.AvailableSlots,
		CreatedAt:      ev.CreatedAt,
	}
}

func toRegistrationResp(r *model.Registration) registrationResp {
	return registrationResp{
		ID:           r.ID,
		EventID:      r.EventID,
		Name:         r.Name,
		VatsimCID:    r.VatsimCID,
		Email:        r.Email,
		AircraftType: r.AircraftType,
		Route:        r.Route,
		Notes:        r.Notes,
		SelectedTime: r.SelectedTime,
		Status:       r.Status,
		RegisteredAt: r.RegisteredAt,
	}
}

// ListEvents returns every published event, newest first as stored.
func (h *PublicEventHandler) ListEvents(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	events, err := h.Ledger.ListEvents(ctx)
	if err != nil {
		return bookingErrJSON(c, err)
	}
	out := make([]eventResp, 0, len(events))
	for i := range events {
		out = append(out, toEventResp(&events[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"events": out})
}

// GetEvent returns one event by id.
func (h *PublicEventHandler) GetEvent(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev, err := h.Ledger.GetEvent(ctx, c.Param("id"))
	if err != nil {
		return bookingErrJSON(c, err)
	}
	return c.JSON(http.StatusOK, toEventResp(ev))
}

// GetSlots returns the event's current availability: every generated
// slot label not held by a non-cancelled registration.
func (h *PublicEventHandler) GetSlots(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	open, err := h.Admission.AvailableSlots(ctx, c.Param("id"))
	if err != nil {
		return bookingErrJSON(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"slots": open})
}

// SubmitRegistration runs a booking attempt through the admission
// controller and publishes a confirmation message when it commits.
func (h *PublicEventHandler) SubmitRegistration(c echo.Context) error {
	var req registrationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.VatsimCID = strings.TrimSpace(req.VatsimCID)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.SelectedTime = strings.TrimSpace(req.SelectedTime)
	if req.Name == "" || req.VatsimCID == "" || req.Email == "" || req.SelectedTime == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, vatsim_cid, email and selected_time required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	eventID := c.Param("id")
	reg, err := h.Admission.Register(ctx, eventID, booking.Draft{
		Name:         req.Name,
		VatsimCID:    req.VatsimCID,
		Email:        req.Email,
		AircraftType: req.AircraftType,
		Route:        req.Route,
		Notes:        req.Notes,
		SelectedTime: req.SelectedTime,
	})
	if err != nil {
		return bookingErrJSON(c, err)
	}

	if h.Publish != nil {
		ev, gerr := h.Ledger.GetEvent(ctx, eventID)
		msg := queue.RegistrationConfirmedEvent{
			RegistrationID: reg.ID,
			EventID:        reg.EventID,
			Name:           reg.Name,
			VatsimCID:      reg.VatsimCID,
			Email:          reg.Email,
			AircraftType:   reg.AircraftType,
			SelectedTime:   reg.SelectedTime,
			RegisteredAt:   reg.RegisteredAt.UTC().Format(time.RFC3339),
		}
		if gerr == nil {
			msg.EventDate = ev.Date
			msg.Departure = ev.Route.FromICAO
			msg.Destination = ev.Route.ToICAO
		}
		if perr := h.Publish(context.Background(), msg); perr != nil {
			log.Printf("registration publish failed: %v", perr)
		}
	}

	return c.JSON(http.StatusCreated, toRegistrationResp(reg))
}

// bookingErrJSON maps booking and repository errors onto HTTP statuses.
// Not-found is 404, admission rejections are 409 except bans which are
// 403, validation problems are 400 and store failures are 500.
func bookingErrJSON(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrEventNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	case errors.Is(err, booking.ErrRegistrationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "registration not found"})
	case errors.Is(err, booking.ErrRegistrantBanned):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "registrant banned"})
	case errors.Is(err, booking.ErrEventNotBookable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "event not bookable"})
	case errors.Is(err, booking.ErrSlotUnavailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "slot unavailable"})
	case errors.Is(err, booking.ErrCapacityExhausted):
		return c.JSON(http.StatusConflict, echo.Map{"error": "event full"})
	case errors.Is(err, repository.ErrVersionConflict), errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
	case errors.Is(err, slot.ErrInvalidWindow), errors.Is(err, booking.ErrInvalidStatus):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		c.Logger().Errorf("booking failure: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
