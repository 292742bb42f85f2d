package booking

import (
    "context"
    "errors"
    "fmt"
    "sync"
    "time"

    "github.com/iliyamo/flight-slot-booking/internal/model"
    "github.com/iliyamo/flight-slot-booking/internal/repository"
    "github.com/iliyamo/flight-slot-booking/internal/slot"
)

// DefaultCacheTTL bounds how stale a cached event may be served to
// readers that have not mutated it themselves.
const DefaultCacheTTL = 30 * time.Second

// Ledger owns all event mutation: create, update, delete, status
// transitions and registration commits. Every successful mutation
// updates an in-memory cache alongside the store write, so the issuing
// caller reads its own writes while other readers are at most one TTL
// behind. The stored available-slot counter is re-derived from the
// registrations list inside every commit; a client-supplied value is
// never trusted.
type Ledger struct {
    store EventStore
    ttl   time.Duration

    mu     sync.RWMutex
    cache  map[string]cachedEvent
    listAt time.Time
}

type cachedEvent struct {
    ev model.Event
    at time.Time
}

// NewLedger returns a Ledger backed by the given store. A non-positive
// ttl falls back to DefaultCacheTTL.
func NewLedger(store EventStore, ttl time.Duration) *Ledger {
    if store == nil {
        panic("nil store passed to NewLedger")
    }
    if ttl <= 0 {
        ttl = DefaultCacheTTL
    }
    return &Ledger{
        store: store,
        ttl:   ttl,
        cache: make(map[string]cachedEvent),
    }
}

// cloneEvent copies an event including its registrations slice so cached
// state never aliases what callers hold.
func cloneEvent(ev *model.Event) *model.Event {
    cp := *ev
    cp.Registrations = make([]model.Registration, len(ev.Registrations))
    copy(cp.Registrations, ev.Registrations)
    return &cp
}

// put stores a fresh copy of the event in the cache.
func (l *Ledger) put(ev *model.Event) {
    l.mu.Lock()
    l.cache[ev.ID] = cachedEvent{ev: *cloneEvent(ev), at: time.Now()}
    l.mu.Unlock()
}

// ListEvents returns all events. A full listing is served from the cache
// while it is within the TTL; otherwise the store is refetched and the
// cache rebuilt.
func (l *Ledger) ListEvents(ctx context.Context) ([]model.Event, error) {
    l.mu.RLock()
    if time.Since(l.listAt) < l.ttl {
        out := make([]model.Event, 0, len(l.cache))
        for _, ce := range l.cache {
            out = append(out, *cloneEvent(&ce.ev))
        }
        l.mu.RUnlock()
        return out, nil
    }
    l.mu.RUnlock()

    events, err := l.store.ListEvents(ctx)
    if err != nil {
        return nil, storeErr("list events", err)
    }
    now := time.Now()
    l.mu.Lock()
    l.cache = make(map[string]cachedEvent, len(events))
    for i := range events {
        l.cache[events[i].ID] = cachedEvent{ev: *cloneEvent(&events[i]), at: now}
    }
    l.listAt = now
    l.mu.Unlock()
    return events, nil
}

// GetEvent returns one event, serving from the cache while the entry is
// within the TTL.
func (l *Ledger) GetEvent(ctx context.Context, id string) (*model.Event, error) {
    l.mu.RLock()
    if ce, ok := l.cache[id]; ok && time.Since(ce.at) < l.ttl {
        ev := cloneEvent(&ce.ev)
        l.mu.RUnlock()
        return ev, nil
    }
    l.mu.RUnlock()
    return l.Refresh(ctx, id)
}

// Refresh always reads the event from the store, bypassing the cache,
// and updates the cached entry. Admission uses it so a booking decision
// is never made from a stale snapshot.
func (l *Ledger) Refresh(ctx context.Context, id string) (*model.Event, error) {
    ev, err := l.store.GetEvent(ctx, id)
    if err != nil {
        return nil, storeErr("get event", err)
    }
    l.put(ev)
    return ev, nil
}

// EventDraft carries the admin-supplied fields for a new event. Numeric
// fields are coerced at this boundary: non-positive totals and durations
// fall back to the documented defaults.
type EventDraft struct {
    Title               string
    Description         string
    Date                string
    StartTime           string
    EndTime             string
    SlotDurationMinutes int
    Route               model.Route
    TotalSlots          int
}

// CreateEvent normalizes the draft, validates its slot window and
// persists the new event. Defaults are applied here once, not scattered
// across read sites: status upcoming, empty registrations, 20 slots and
// 2 minute spacing when unspecified.
func (l *Ledger) CreateEvent(ctx context.Context, d EventDraft) (*model.Event, error) {
    total := d.TotalSlots
    if total <= 0 {
        total = model.DefaultTotalSlots
    }
    duration := d.SlotDurationMinutes
    if duration <= 0 {
        duration = model.DefaultSlotDurationMinutes
    }
    if _, err := slot.Generate(d.StartTime, d.EndTime, duration); err != nil {
        return nil, err
    }
    ev := &model.Event{
        Title:               d.Title,
        Description:         d.Description,
        Date:                d.Date,
        StartTime:           d.StartTime,
        EndTime:             d.EndTime,
        SlotDurationMinutes: duration,
        Route:               d.Route,
        Status:              model.EventStatusUpcoming,
        TotalSlots:          total,
        AvailableSlots:      total,
        Version:             1,
        CreatedAt:           time.Now().UTC(),
        Registrations:       []model.Registration{},
    }
    if err := l.store.CreateEvent(ctx, ev); err != nil {
        return nil, storeErr("create event", err)
    }
    l.put(ev)
    return cloneEvent(ev), nil
}

// EventUpdate lists the fields an update may overwrite. Nil pointers
// leave the stored value untouched.
type EventUpdate struct {
    Title               *string
    Description         *string
    Date                *string
    StartTime           *string
    EndTime             *string
    SlotDurationMinutes *int
    FromICAO            *string
    ToICAO              *string
    Aircraft            *string
    FlightLevel         *string
    EstimatedDuration   *string
    Status              *string
    TotalSlots          *int
}

// UpdateEvent overwrites only the supplied fields of an event, repairs
// the available-slot counter from the registrations list, and writes the
// record conditionally on its version. A lost race surfaces as
// repository.ErrVersionConflict.
func (l *Ledger) UpdateEvent(ctx context.Context, id string, upd EventUpdate) (*model.Event, error) {
    ev, err := l.Refresh(ctx, id)
    if err != nil {
        return nil, err
    }
    expected := ev.Version
    if upd.Title != nil {
        ev.Title = *upd.Title
    }
    if upd.Description != nil {
        ev.Description = *upd.Description
    }
    if upd.Date != nil {
        ev.Date = *upd.Date
    }
    if upd.StartTime != nil {
        ev.StartTime = *upd.StartTime
    }
    if upd.EndTime != nil {
        ev.EndTime = *upd.EndTime
    }
    if upd.SlotDurationMinutes != nil {
        ev.SlotDurationMinutes = *upd.SlotDurationMinutes
    }
    if upd.FromICAO != nil {
        ev.Route.FromICAO = *upd.FromICAO
    }
    if upd.ToICAO != nil {
        ev.Route.ToICAO = *upd.ToICAO
    }
    if upd.Aircraft != nil {
        ev.Route.Aircraft = *upd.Aircraft
    }
    if upd.FlightLevel != nil {
        ev.Route.FlightLevel = upd.FlightLevel
    }
    if upd.EstimatedDuration != nil {
        ev.Route.EstimatedDuration = upd.EstimatedDuration
    }
    if upd.Status != nil {
        if !validStatus(*upd.Status) {
            return nil, fmt.Errorf("%w: %q is not an event status", ErrInvalidStatus, *upd.Status)
        }
        ev.Status = *upd.Status
    }
    if upd.TotalSlots != nil && *upd.TotalSlots > 0 {
        ev.TotalSlots = *upd.TotalSlots
    }
    if _, err := slot.Generate(ev.StartTime, ev.EndTime, ev.SlotDurationMinutes); err != nil {
        return nil, err
    }
    repairCounter(ev)
    if err := l.store.UpdateEventIf(ctx, ev, expected); err != nil {
        return nil, storeErr("update event", err)
    }
    l.put(ev)
    return cloneEvent(ev), nil
}

// SetStatus transitions the event's lifecycle status.
func (l *Ledger) SetStatus(ctx context.Context, id, status string) (*model.Event, error) {
    return l.UpdateEvent(ctx, id, EventUpdate{Status: &status})
}

func validStatus(s string) bool {
    switch s {
    case model.EventStatusUpcoming, model.EventStatusCompleted, model.EventStatusCancelled:
        return true
    }
    return false
}

// DeleteEvent removes the event and its registrations.
func (l *Ledger) DeleteEvent(ctx context.Context, id string) error {
    if err := l.store.DeleteEvent(ctx, id); err != nil {
        return storeErr("delete event", err)
    }
    l.mu.Lock()
    delete(l.cache, id)
    l.mu.Unlock()
    return nil
}

// repairCounter re-derives the stored available-slot counter from the
// registrations list, clamped to [0, TotalSlots]. Called inside every
// commit so counter drift cannot survive a write.
func repairCounter(ev *model.Event) {
    avail := ev.TotalSlots - ev.ActiveRegistrations()
    if avail < 0 {
        avail = 0
    }
    if avail > ev.TotalSlots {
        avail = ev.TotalSlots
    }
    ev.AvailableSlots = avail
}

// CommitRegistration is the sole path that appends a registration and
// decrements the available-slot counter. It re-reads the event from the
// store, re-verifies that the slot is still free and capacity remains,
// and writes the updated registrations list together with the repaired
// counter as one conditional update. If the version moved between read
// and write, the commit lost a race and is rejected with
// ErrSlotUnavailable rather than overwriting the winner.
func (l *Ledger) CommitRegistration(ctx context.Context, eventID string, reg model.Registration) (*model.Registration, error) {
    ev, err := l.Refresh(ctx, eventID)
    if err != nil {
        return nil, err
    }
    if ev.Status != model.EventStatusUpcoming {
        return nil, ErrEventNotBookable
    }
    free, err := slot.Available(ev)
    if err != nil {
        return nil, err
    }
    if !contains(free, reg.SelectedTime) {
        return nil, ErrSlotUnavailable
    }
    if ev.AvailableSlots <= 0 {
        return nil, ErrCapacityExhausted
    }

    expected := ev.Version
    reg.EventID = ev.ID
    ev.Registrations = append(ev.Registrations, reg)
    repairCounter(ev)

    if err := l.store.UpdateEventIf(ctx, ev, expected); err != nil {
        err = storeErr("commit registration", err)
        if errors.Is(err, repository.ErrVersionConflict) {
            // another commit won the race for this record
            return nil, ErrSlotUnavailable
        }
        return nil, err
    }
    l.put(ev)
    committed := ev.Registrations[len(ev.Registrations)-1]
    return &committed, nil
}

// SetRegistrationStatus transitions one registration's status, the only
// in-place mutation registrations allow. Cancelling frees the slot for
// rebooking; the counter is repaired within the same conditional commit.
func (l *Ledger) SetRegistrationStatus(ctx context.Context, eventID, regID, status string) (*model.Event, error) {
    switch status {
    case model.RegistrationStatusPending, model.RegistrationStatusConfirmed, model.RegistrationStatusCancelled:
    default:
        return nil, fmt.Errorf("%w: %q is not a registration status", ErrInvalidStatus, status)
    }
    ev, err := l.Refresh(ctx, eventID)
    if err != nil {
        return nil, err
    }
    expected := ev.Version
    found := false
    for i := range ev.Registrations {
        if ev.Registrations[i].ID == regID {
            ev.Registrations[i].Status = status
            found = true
            break
        }
    }
    if !found {
        return nil, ErrRegistrationNotFound
    }
    repairCounter(ev)
    if err := l.store.UpdateEventIf(ctx, ev, expected); err != nil {
        return nil, storeErr("set registration status", err)
    }
    l.put(ev)
    return cloneEvent(ev), nil
}

func contains(labels []string, want string) bool {
    for _, l := range labels {
        if l == want {
            return true
        }
    }
    return false
}
