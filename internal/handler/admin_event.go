package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flight-slot-booking/internal/booking"
	"github.com/iliyamo/flight-slot-booking/internal/model"
)

// AdminEventHandler serves the authenticated event management routes.
// All writes go through the ledger so the available-slot counter and
// version stay consistent with the registrations list.
type AdminEventHandler struct {
	Ledger *booking.Ledger
}

func NewAdminEventHandler(l *booking.Ledger) *AdminEventHandler {
	return &AdminEventHandler{Ledger: l}
}

// ----- DTOs -----

type createEventReq struct {
	Title               string  `json:"title"`
	Description         string  `json:"description"`
	Date                string  `json:"date"`
	StartTime           string  `json:"start_time"`
	EndTime             string  `json:"end_time"`
	SlotDurationMinutes int     `json:"slot_duration_minutes"`
	FromICAO            string  `json:"from_icao"`
	ToICAO              string  `json:"to_icao"`
	Aircraft            string  `json:"aircraft"`
	FlightLevel         *string `json:"flight_level,omitempty"`
	EstimatedDuration   *string `json:"estimated_duration,omitempty"`
	TotalSlots          int     `json:"total_slots"`
}

type updateEventReq struct {
	Title               *string `json:"title,omitempty"`
	Description         *string `json:"description,omitempty"`
	Date                *string `json:"date,omitempty"`
	StartTime           *string `json:"start_time,omitempty"`
	EndTime             *string `json:"end_time,omitempty"`
	SlotDurationMinutes *int    `json:"slot_duration_minutes,omitempty"`
	FromICAO            *string `json:"from_icao,omitempty"`
	ToICAO              *string `json:"to_icao,omitempty"`
	Aircraft            *string `json:"aircraft,omitempty"`
	FlightLevel         *string `json:"flight_level,omitempty"`
	EstimatedDuration   *string `json:"estimated_duration,omitempty"`
	Status              *string `json:"status,omitempty"`
	TotalSlots          *int    `json:"total_slots,omitempty"`
}

type statusReq struct {
	Status string `json:"status"`
}

// CreateEvent publishes a new event. Missing capacity and slot duration
// fall back to the documented defaults inside the ledger.
func (h *AdminEventHandler) CreateEvent(c echo.Context) error {
	var req createEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.Date == "" || req.StartTime == "" || req.EndTime == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title, date, start_time and end_time required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev, err := h.Ledger.CreateEvent(ctx, booking.EventDraft{
		Title:               req.Title,
		Description:         req.Description,
		Date:                req.Date,
		StartTime:           req.StartTime,
		EndTime:             req.EndTime,
		SlotDurationMinutes: req.SlotDurationMinutes,
		Route: model.Route{
			FromICAO:          strings.ToUpper(strings.TrimSpace(req.FromICAO)),
			ToICAO:            strings.ToUpper(strings.TrimSpace(req.ToICAO)),
			Aircraft:          req.Aircraft,
			FlightLevel:       req.FlightLevel,
			EstimatedDuration: req.EstimatedDuration,
		},
		TotalSlots: req.TotalSlots,
	})
	if err != nil {
		return bookingErrJSON(c, err)
	}
	return c.JSON(http.StatusCreated, toEventResp(ev))
}

// UpdateEvent overwrites only the fields present in the request body.
func (h *AdminEventHandler) UpdateEvent(c echo.Context) error {
	var req updateEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev, err := h.Ledger.UpdateEvent(ctx, c.Param("id"), booking.EventUpdate{
		Title:               req.Title,
		Description:         req.Description,
		Date:                req.Date,
		StartTime:           req.StartTime,
		EndTime:             req.EndTime,
		SlotDurationMinutes: req.SlotDurationMinutes,
		FromICAO:            req.FromICAO,
		ToICAO:              req.ToICAO,
		Aircraft:            req.Aircraft,
		FlightLevel:         req.FlightLevel,
		EstimatedDuration:   req.EstimatedDuration,
		Status:              req.Status,
		TotalSlots:          req.TotalSlots,
	})
	if err != nil {
		return bookingErrJSON(c, err)
	}
	return c.JSON(http.StatusOK, toEventResp(ev))
}

// SetStatus transitions an event's lifecycle status.
func (h *AdminEventHandler) SetStatus(c echo.Context) error {
	var req statusReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Status) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev, err := h.Ledger.SetStatus(ctx, c.Param("id"), strings.ToLower(strings.TrimSpace(req.Status)))
	if err != nil {
		return bookingErrJSON(c, err)
	}
	return c.JSON(http.StatusOK, toEventResp(ev))
}

// DeleteEvent removes an event and its registrations.
func (h *AdminEventHandler) DeleteEvent(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Ledger.DeleteEvent(ctx, c.Param("id")); err != nil {
		return bookingErrJSON(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListRegistrations returns every registration placed against an event,
// including cancelled ones.
func (h *AdminEventHandler) ListRegistrations(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev, err := h.Ledger.GetEvent(ctx, c.Param("id"))
	if err != nil {
		return bookingErrJSON(c, err)
	}
	out := make([]registrationResp, 0, len(ev.Registrations))
	for i := range ev.Registrations {
		out = append(out, toRegistrationResp(&ev.Registrations[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"registrations": out})
}

// SetRegistrationStatus confirms or cancels a registration. Cancelling
// frees the slot and the counter is repaired in the same commit.
func (h *AdminEventHandler) SetRegistrationStatus(c echo.Context) error {
	var req statusReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Status) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev, err := h.Ledger.SetRegistrationStatus(ctx, c.Param("id"), c.Param("regID"),
		strings.ToLower(strings.TrimSpace(req.Status)))
	if err != nil {
		return bookingErrJSON(c, err)
	}
	return c.JSON(http.StatusOK, toEventResp(ev))
}
