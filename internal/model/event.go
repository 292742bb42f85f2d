package model

import "time"

// Event statuses describe where an event sits in its lifecycle.  Only
// upcoming events accept registrations.
const (
    EventStatusUpcoming  = "upcoming"
    EventStatusCompleted = "completed"
    EventStatusCancelled = "cancelled"
)

// Default capacity values applied when an admin creates an event without
// specifying them.  Twenty slots at two minute spacing mirrors a typical
// departure window.
const (
    DefaultTotalSlots          = 20
    DefaultSlotDurationMinutes = 2
)

// Route describes the fixed flight pairing attached to an event.  Every
// registrant flies the same origin/destination with the published aircraft.
//
// Fields:
//  FromICAO          – departure airport ICAO code.
//  ToICAO            – arrival airport ICAO code.
//  Aircraft          – aircraft type(s) flown on the event.
//  FlightLevel       – optional planned cruise level (e.g. "FL310").
//  EstimatedDuration – optional human readable flight time (e.g. "2h 5m").
type Route struct {
    FromICAO          string  // events.from_icao
    ToICAO            string  // events.to_icao
    Aircraft          string  // events.aircraft
    FlightLevel       *string // events.flight_level (nullable)
    EstimatedDuration *string // events.estimated_duration (nullable)
}

// Event represents a published flight event with a bookable departure
// window.  Slots are not stored: they are derived from Date, StartTime,
// EndTime and SlotDurationMinutes by the slot generator, and a slot is
// taken when a non-cancelled registration carries its label.
//
// Invariants:
//  0 <= AvailableSlots <= TotalSlots, and at rest the counter equals
//  TotalSlots minus the number of non-cancelled registrations.  The
//  Version field implements optimistic locking: every successful write
//  increments it, and conditional updates compare against it so that
//  two concurrent commits can never both apply.
//
// Fields:
//  ID                  – opaque identifier assigned at creation (UUID).
//  Title               – event name shown to pilots.
//  Description         – free-form event description.
//  Date                – calendar date of the event ("2006-01-02").
//  StartTime           – first bookable time of day ("15:04", UTC).
//  EndTime             – end of the window, exclusive ("15:04", UTC).
//  SlotDurationMinutes – spacing between consecutive slots, minutes.
//  Route               – fixed departure/arrival pairing for the event.
//  Status              – lifecycle status (upcoming, completed, cancelled).
//  TotalSlots          – registration capacity of the event.
//  AvailableSlots      – stored remaining-capacity counter.
//  Version             – optimistic locking counter.
//  CreatedAt           – creation timestamp.
//  Registrations       – registrations placed against this event.
type Event struct {
    ID                  string         // events.id
    Title               string         // events.title
    Description         string         // events.description
    Date                string         // events.event_date
    StartTime           string         // events.start_time
    EndTime             string         // events.end_time
    SlotDurationMinutes int            // events.slot_duration_minutes
    Route               Route          // embedded route columns
    Status              string         // events.status
    TotalSlots          int            // events.total_slots
    AvailableSlots      int            // events.available_slots
    Version             uint32         // events.version
    CreatedAt           time.Time      // events.created_at
    Registrations       []Registration // rows from registrations joined by event_id
}

// ActiveRegistrations returns how many registrations currently occupy a
// slot, i.e. all registrations that are not cancelled.
func (e *Event) ActiveRegistrations() int {
    n := 0
    for _, r := range e.Registrations {
        if r.Status != RegistrationStatusCancelled {
            n++
        }
    }
    return n
}
