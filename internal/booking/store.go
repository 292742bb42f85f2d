// Package booking implements the registration admission controller and
// the event capacity ledger. The ledger is the sole mutation point for
// events and their registrations; the admission controller validates a
// booking attempt and commits it through the ledger. Both depend only on
// the narrow store and ban gate contracts below, not on any particular
// storage protocol.
package booking

import (
    "context"

    "github.com/iliyamo/flight-slot-booking/internal/model"
)

// EventStore is the persistence collaborator the ledger requires. A
// conforming implementation must provide an atomic conditional update:
// UpdateEventIf writes the whole event record (row plus registrations
// list) only when the stored version still equals expectedVersion, and
// returns repository.ErrVersionConflict otherwise. GetEvent and
// DeleteEvent return repository.ErrEventNotFound for missing ids.
type EventStore interface {
    ListEvents(ctx context.Context) ([]model.Event, error)
    GetEvent(ctx context.Context, id string) (*model.Event, error)
    CreateEvent(ctx context.Context, ev *model.Event) error
    UpdateEventIf(ctx context.Context, ev *model.Event, expectedVersion uint32) error
    DeleteEvent(ctx context.Context, id string) error
}

// BanGate is the external authority consulted during admission. An
// identity is banned when an active ban record exists for it.
type BanGate interface {
    IsBanned(ctx context.Context, vatsimCID string) (bool, error)
}
