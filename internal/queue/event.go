// Package queue defines message payloads exchanged over the message broker.
package queue

// RegistrationConfirmedEvent is published when a pilot registration is
// accepted for a departure slot. It carries enough detail for downstream
// consumers to log or notify without querying the primary database.
type RegistrationConfirmedEvent struct {
	RegistrationID string `json:"registration_id"`
	EventID        string `json:"event_id"`
	EventDate      string `json:"event_date"`
	Name           string `json:"name"`
	VatsimCID      string `json:"vatsim_cid"`
	Email          string `json:"email"`
	AircraftType   string `json:"aircraft_type"`
	Departure      string `json:"departure"`
	Destination    string `json:"destination"`
	SelectedTime   string `json:"selected_time"`
	RegisteredAt   string `json:"registered_at"`
}
