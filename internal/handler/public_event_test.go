package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flight-slot-booking/internal/booking"
	"github.com/iliyamo/flight-slot-booking/internal/model"
	"github.com/iliyamo/flight-slot-booking/internal/queue"
	"github.com/iliyamo/flight-slot-booking/internal/repository"
)

// memStore is an in-memory EventStore with the same conditional-update
// contract as the MySQL repository.
type memStore struct {
	events map[string]*model.Event
}

func newMemStore() *memStore { return &memStore{events: map[string]*model.Event{}} }

func (s *memStore) ListEvents(ctx context.Context) ([]model.Event, error) {
	out := make([]model.Event, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, *ev)
	}
	return out, nil
}

func (s *memStore) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	ev, ok := s.events[id]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	cp := *ev
	cp.Registrations = append([]model.Registration(nil), ev.Registrations...)
	return &cp, nil
}

func (s *memStore) CreateEvent(ctx context.Context, ev *model.Event) error {
	cp := *ev
	cp.Registrations = append([]model.Registration(nil), ev.Registrations...)
	s.events[ev.ID] = &cp
	return nil
}

func (s *memStore) UpdateEventIf(ctx context.Context, ev *model.Event, expectedVersion uint32) error {
	cur, ok := s.events[ev.ID]
	if !ok {
		return repository.ErrEventNotFound
	}
	if cur.Version != expectedVersion {
		return repository.ErrVersionConflict
	}
	ev.Version = expectedVersion + 1
	cp := *ev
	cp.Registrations = append([]model.Registration(nil), ev.Registrations...)
	s.events[ev.ID] = &cp
	return nil
}

func (s *memStore) DeleteEvent(ctx context.Context, id string) error {
	if _, ok := s.events[id]; !ok {
		return repository.ErrEventNotFound
	}
	delete(s.events, id)
	return nil
}

type memBanGate struct{ banned map[string]bool }

func (g *memBanGate) IsBanned(ctx context.Context, cid string) (bool, error) {
	return g.banned[cid], nil
}

func seedEvent(store *memStore) *model.Event {
	ev := &model.Event{
		ID:                  "ev-1",
		Title:               "Cross the Pond Warmup",
		Date:                "2026-10-10",
		StartTime:           "18:00",
		EndTime:             "19:00",
		SlotDurationMinutes: 30,
		Route:               model.Route{FromICAO: "EDDF", ToICAO: "EGLL", Aircraft: "A320"},
		Status:              model.EventStatusUpcoming,
		TotalSlots:          2,
		AvailableSlots:      2,
		Version:             1,
		CreatedAt:           time.Now().UTC(),
		Registrations:       []model.Registration{},
	}
	store.events[ev.ID] = ev
	return ev
}

func setupPublic(t *testing.T, store *memStore, gate booking.BanGate) *PublicEventHandler {
	t.Helper()
	ledger := booking.NewLedger(store, time.Minute)
	admission := booking.NewAdmission(ledger, gate)
	return NewPublicEventHandler(ledger, admission, nil)
}

func postRegistration(t *testing.T, h *PublicEventHandler, eventID, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/events/"+eventID+"/registrations", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/events/:id/registrations")
	c.SetParamNames("id")
	c.SetParamValues(eventID)
	if err := h.SubmitRegistration(c); err != nil {
		t.Fatalf("SubmitRegistration returned error: %v", err)
	}
	return rec
}

func TestSubmitRegistration_Created(t *testing.T) {
	store := newMemStore()
	seedEvent(store)
	h := setupPublic(t, store, &memBanGate{banned: map[string]bool{}})

	rec := postRegistration(t, h, "ev-1",
		`{"name":"Jo Pilot","vatsim_cid":"1234567","email":"jo@example.com","aircraft_type":"A320","selected_time":"18:30Z"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}
	var got registrationResp
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if got.ID == "" || got.Status != model.RegistrationStatusPending {
		t.Errorf("got id=%q status=%q, want generated id and pending", got.ID, got.Status)
	}
	if store.events["ev-1"].AvailableSlots != 1 {
		t.Errorf("available slots = %d, want 1", store.events["ev-1"].AvailableSlots)
	}
}

func TestSubmitRegistration_EventNotFound(t *testing.T) {
	h := setupPublic(t, newMemStore(), &memBanGate{banned: map[string]bool{}})

	rec := postRegistration(t, h, "missing",
		`{"name":"Jo","vatsim_cid":"1234567","email":"jo@example.com","selected_time":"18:00Z"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestSubmitRegistration_SlotTaken(t *testing.T) {
	store := newMemStore()
	ev := seedEvent(store)
	ev.Registrations = []model.Registration{
		{ID: "r1", SelectedTime: "18:00Z", Status: model.RegistrationStatusPending},
	}
	ev.AvailableSlots = 1
	h := setupPublic(t, store, &memBanGate{banned: map[string]bool{}})

	rec := postRegistration(t, h, "ev-1",
		`{"name":"Jo","vatsim_cid":"1234567","email":"jo@example.com","selected_time":"18:00Z"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestSubmitRegistration_NotBookable(t *testing.T) {
	store := newMemStore()
	seedEvent(store).Status = model.EventStatusCompleted
	h := setupPublic(t, store, &memBanGate{banned: map[string]bool{}})

	rec := postRegistration(t, h, "ev-1",
		`{"name":"Jo","vatsim_cid":"1234567","email":"jo@example.com","selected_time":"18:00Z"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestSubmitRegistration_Banned(t *testing.T) {
	store := newMemStore()
	seedEvent(store)
	h := setupPublic(t, store, &memBanGate{banned: map[string]bool{"1234567": true}})

	rec := postRegistration(t, h, "ev-1",
		`{"name":"Jo","vatsim_cid":"1234567","email":"jo@example.com","selected_time":"18:00Z"}`)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestSubmitRegistration_MissingFields(t *testing.T) {
	store := newMemStore()
	seedEvent(store)
	h := setupPublic(t, store, &memBanGate{banned: map[string]bool{}})

	rec := postRegistration(t, h, "ev-1", `{"name":"Jo"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSubmitRegistration_PublishesConfirmation(t *testing.T) {
	store := newMemStore()
	seedEvent(store)
	ledger := booking.NewLedger(store, time.Minute)
	admission := booking.NewAdmission(ledger, &memBanGate{banned: map[string]bool{}})

	var published []queue.RegistrationConfirmedEvent
	h := NewPublicEventHandler(ledger, admission, func(ctx context.Context, ev queue.RegistrationConfirmedEvent) error {
		published = append(published, ev)
		return nil
	})

	rec := postRegistration(t, h, "ev-1",
		`{"name":"Jo Pilot","vatsim_cid":"1234567","email":"jo@example.com","selected_time":"18:30Z"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if len(published) != 1 {
		t.Fatalf("published %d messages, want 1", len(published))
	}
	msg := published[0]
	if msg.EventID != "ev-1" || msg.SelectedTime != "18:30Z" || msg.Departure != "EDDF" {
		t.Errorf("unexpected message: %+v", msg)
	}
}

func TestGetSlots_ListsOpenSlots(t *testing.T) {
	store := newMemStore()
	ev := seedEvent(store)
	ev.Registrations = []model.Registration{
		{ID: "r1", SelectedTime: "18:00Z", Status: model.RegistrationStatusPending},
	}
	h := setupPublic(t, store, &memBanGate{banned: map[string]bool{}})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/events/ev-1/slots", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/events/:id/slots")
	c.SetParamNames("id")
	c.SetParamValues("ev-1")
	if err := h.GetSlots(c); err != nil {
		t.Fatalf("GetSlots returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got struct {
		Slots []string `json:"slots"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	want := []string{"18:30Z"}
	if len(got.Slots) != len(want) || got.Slots[0] != want[0] {
		t.Errorf("slots = %v, want %v", got.Slots, want)
	}
}
