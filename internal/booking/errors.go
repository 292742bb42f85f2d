package booking

import (
    "errors"
    "fmt"

    "github.com/iliyamo/flight-slot-booking/internal/repository"
)

// Typed admission outcomes. Handlers translate these into HTTP statuses;
// none of them is ever silently swallowed.
var (
    // ErrEventNotBookable means the event exists but its lifecycle
    // status no longer accepts registrations.
    ErrEventNotBookable = errors.New("event not bookable")

    // ErrSlotUnavailable means the requested slot is taken, or the
    // commit lost a race against a concurrent registration. Retryable:
    // re-fetch availability and resubmit with a different slot.
    ErrSlotUnavailable = errors.New("slot unavailable")

    // ErrRegistrantBanned means the registrant's identity code is
    // actively banned. Terminal.
    ErrRegistrantBanned = errors.New("registrant banned")

    // ErrCapacityExhausted means the event's stored available-slot
    // counter is zero. Terminal for this event.
    ErrCapacityExhausted = errors.New("capacity exhausted")

    // ErrRegistrationNotFound means the referenced registration does not
    // exist on the event.
    ErrRegistrationNotFound = errors.New("registration not found")

    // ErrInvalidStatus means a lifecycle transition named a status
    // outside the allowed set.
    ErrInvalidStatus = errors.New("invalid status")
)

// PersistenceError wraps a store failure (network, driver, broker). The
// ledger guarantees that in-memory state is untouched when one occurs.
type PersistenceError struct {
    Op  string
    Err error
}

func (e *PersistenceError) Error() string {
    return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// storeErr classifies an error coming back from the EventStore. The
// repository sentinels pass through so callers can dispatch on them;
// anything else becomes a PersistenceError.
func storeErr(op string, err error) error {
    if err == nil {
        return nil
    }
    if errors.Is(err, repository.ErrEventNotFound) ||
        errors.Is(err, repository.ErrVersionConflict) {
        return err
    }
    return &PersistenceError{Op: op, Err: err}
}
