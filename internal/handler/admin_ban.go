package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flight-slot-booking/internal/model"
	"github.com/iliyamo/flight-slot-booking/internal/repository"
)

// AdminBanHandler manages the ban list consulted at admission time.
type AdminBanHandler struct {
	Bans *repository.BannedUserRepo
}

func NewAdminBanHandler(b *repository.BannedUserRepo) *AdminBanHandler {
	return &AdminBanHandler{Bans: b}
}

type banReq struct {
	VatsimCID   string     `json:"vatsim_cid"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Reason      string     `json:"reason"`
	BannedUntil *time.Time `json:"banned_until,omitempty"` // omit for a permanent ban
}

type banResp struct {
	ID          string     `json:"id"`
	VatsimCID   string     `json:"vatsim_cid"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Reason      string     `json:"reason"`
	BannedAt    time.Time  `json:"banned_at"`
	BannedUntil *time.Time `json:"banned_until,omitempty"`
	Active      bool       `json:"active"`
}

func toBanResp(b *model.BannedUser, now time.Time) banResp {
	return banResp{
		ID:          b.ID,
		VatsimCID:   b.VatsimCID,
		Name:        b.Name,
		Email:       b.Email,
		Reason:      b.Reason,
		BannedAt:    b.BannedAt,
		BannedUntil: b.BannedUntil,
		Active:      b.Active(now),
	}
}

// Ban records a ban for an identity code. Registrations from that code
// are rejected while the ban is active.
func (h *AdminBanHandler) Ban(c echo.Context) error {
	var req banReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.VatsimCID = strings.TrimSpace(req.VatsimCID)
	if req.VatsimCID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "vatsim_cid required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ban := &model.BannedUser{
		VatsimCID:   req.VatsimCID,
		Name:        req.Name,
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Reason:      req.Reason,
		BannedUntil: req.BannedUntil,
	}
	if err := h.Bans.Ban(ctx, ban); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save ban failed"})
	}
	return c.JSON(http.StatusCreated, toBanResp(ban, time.Now().UTC()))
}

// Unban removes a ban record by id.
func (h *AdminBanHandler) Unban(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Bans.Unban(ctx, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrBanNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ban not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete ban failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// List returns every ban record, expired ones included, newest first.
func (h *AdminBanHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bans, err := h.Bans.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	now := time.Now().UTC()
	out := make([]banResp, 0, len(bans))
	for i := range bans {
		out = append(out, toBanResp(&bans[i], now))
	}
	return c.JSON(http.StatusOK, echo.Map{"bans": out})
}
