package model

import "time"

// Registration statuses.  A cancelled registration frees its slot for
// rebooking; pending and confirmed registrations both occupy one.
const (
    RegistrationStatusPending   = "pending"
    RegistrationStatusConfirmed = "confirmed"
    RegistrationStatusCancelled = "cancelled"
)

// Registration records a pilot's claim on exactly one slot of one event.
// Registrations are created only through the admission controller and
// are never mutated in place afterwards except for status transitions.
//
// Fields:
//  ID           – primary key identifier (UUID).
//  EventID      – event this registration belongs to.
//  Name         – registrant's full name.
//  VatsimCID    – external identity code used by the ban gate.
//  Email        – contact email address.
//  AircraftType – aircraft the registrant intends to fly.
//  Route        – filed route string.
//  Notes        – optional remarks from the registrant.
//  SelectedTime – the claimed slot label (e.g. "06:30Z").  Within one
//                 event no two non-cancelled registrations share it.
//  Status       – pending, confirmed or cancelled.
//  RegisteredAt – timestamp assigned at admission.
type Registration struct {
    ID           string    // registrations.id
    EventID      string    // registrations.event_id
    Name         string    // registrations.name
    VatsimCID    string    // registrations.vatsim_cid
    Email        string    // registrations.email
    AircraftType string    // registrations.aircraft_type
    Route        string    // registrations.route
    Notes        *string   // registrations.notes (nullable)
    SelectedTime string    // registrations.selected_time
    Status       string    // registrations.status
    RegisteredAt time.Time // registrations.registered_at
}
