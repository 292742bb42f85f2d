package booking

import (
    "context"
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/flight-slot-booking/internal/model"
    "github.com/iliyamo/flight-slot-booking/internal/slot"
)

// Draft is a booking attempt as submitted by a pilot. SelectedTime must
// name one of the event's generated slot labels.
type Draft struct {
    Name         string
    VatsimCID    string
    Email        string
    AircraftType string
    Route        string
    Notes        *string
    SelectedTime string
}

// Admission validates booking attempts and commits them through the
// ledger. Availability is always recomputed from the store at admission
// time: the client's earlier view of the slot list is advisory only,
// which is the system's defense against double-booking when two pilots
// submit the same slot concurrently.
type Admission struct {
    ledger *Ledger
    bans   BanGate
    now    func() time.Time
}

// NewAdmission constructs the admission controller.
func NewAdmission(ledger *Ledger, bans BanGate) *Admission {
    if ledger == nil || bans == nil {
        panic("nil dependency passed to NewAdmission")
    }
    return &Admission{ledger: ledger, bans: bans, now: time.Now}
}

// Register runs the admission sequence for one booking attempt and
// commits on success. The checks short-circuit in order:
//
//  1. the event exists and is upcoming
//  2. the requested slot is in the current availability set
//  3. the registrant is not actively banned
//  4. the stored available-slot counter is positive
//
// The committed registration is returned with its assigned id, pending
// status and registration timestamp. Failed attempts return immediately
// with a typed rejection; nothing is retried here.
func (a *Admission) Register(ctx context.Context, eventID string, d Draft) (*model.Registration, error) {
    ev, err := a.ledger.Refresh(ctx, eventID)
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
    if !contains(free, d.SelectedTime) {
        return nil, ErrSlotUnavailable
    }

    banned, err := a.bans.IsBanned(ctx, d.VatsimCID)
    if err != nil {
        return nil, &PersistenceError{Op: "ban lookup", Err: err}
    }
    if banned {
        return nil, ErrRegistrantBanned
    }

    // The stored counter guards against drift: even if a slot looks
    // open, a zero counter rejects the attempt.
    if ev.AvailableSlots <= 0 {
        return nil, ErrCapacityExhausted
    }

    reg := model.Registration{
        ID:           uuid.NewString(),
        EventID:      ev.ID,
        Name:         d.Name,
        VatsimCID:    d.VatsimCID,
        Email:        d.Email,
        AircraftType: d.AircraftType,
        Route:        d.Route,
        Notes:        d.Notes,
        SelectedTime: d.SelectedTime,
        Status:       model.RegistrationStatusPending,
        RegisteredAt: a.now().UTC(),
    }
    return a.ledger.CommitRegistration(ctx, eventID, reg)
}

// AvailableSlots returns the event's currently bookable slot labels in
// chronological order.
func (a *Admission) AvailableSlots(ctx context.Context, eventID string) ([]string, error) {
    ev, err := a.ledger.GetEvent(ctx, eventID)
    if err != nil {
        return nil, err
    }
    return slot.Available(ev)
}
