// Package repository contains data access logic for events and their
// registrations. The event row carries the denormalized available_slots
// counter and a version column; every write goes through a conditional
// UPDATE guarded by the version so that concurrent commits against the
// same event cannot both apply.
package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/google/uuid"

    "github.com/iliyamo/flight-slot-booking/internal/model"
)

// EventRepo manages persistence for events and registrations. All
// timestamp columns are stored in UTC.
type EventRepo struct {
    db *sql.DB
}

// NewEventRepo constructs an EventRepo with the given DB handle.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// DB exposes the underlying sql.DB. It allows callers to begin
// transactions spanning multiple repositories when fine-grained
// transaction control is needed.
func (r *EventRepo) DB() *sql.DB { return r.db }

const eventColumns = `id, title, description, event_date, start_time, end_time,
       slot_duration_minutes, from_icao, to_icao, aircraft, flight_level,
       estimated_duration, status, total_slots, available_slots, version, created_at`

// scanEvent reads one event row into a model.Event. Registrations are
// loaded separately.
func scanEvent(row interface{ Scan(...any) error }) (*model.Event, error) {
    var ev model.Event
    var flightLevel, estDuration sql.NullString
    err := row.Scan(
        &ev.ID, &ev.Title, &ev.Description, &ev.Date, &ev.StartTime, &ev.EndTime,
        &ev.SlotDurationMinutes, &ev.Route.FromICAO, &ev.Route.ToICAO, &ev.Route.Aircraft,
        &flightLevel, &estDuration, &ev.Status, &ev.TotalSlots, &ev.AvailableSlots,
        &ev.Version, &ev.CreatedAt,
    )
    if err != nil {
        return nil, err
    }
    if flightLevel.Valid {
        fl := flightLevel.String
        ev.Route.FlightLevel = &fl
    }
    if estDuration.Valid {
        ed := estDuration.String
        ev.Route.EstimatedDuration = &ed
    }
    return &ev, nil
}

// ListEvents returns all events with their registrations populated.
// Events are ordered by date and start time; registrations within an
// event by registration time. When no events exist, an empty slice is
// returned.
func (r *EventRepo) ListEvents(ctx context.Context) ([]model.Event, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT `+eventColumns+` FROM events ORDER BY event_date, start_time`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    events := make([]model.Event, 0)
    index := make(map[string]int)
    for rows.Next() {
        ev, err := scanEvent(rows)
        if err != nil {
            return nil, err
        }
        ev.Registrations = []model.Registration{}
        index[ev.ID] = len(events)
        events = append(events, *ev)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    if len(events) == 0 {
        return events, nil
    }
    // Populate registrations for all events in a single query.
    ids := make([]interface{}, 0, len(events))
    placeholders := make([]string, 0, len(events))
    for _, ev := range events {
        ids = append(ids, ev.ID)
        placeholders = append(placeholders, "?")
    }
    regQuery := `SELECT id, event_id, name, vatsim_cid, email, aircraft_type, route, notes,
                        selected_time, status, registered_at
                 FROM registrations
                 WHERE event_id IN (` + strings.Join(placeholders, ",") + `)
                 ORDER BY event_id, registered_at`
    rrows, err := r.db.QueryContext(ctx, regQuery, ids...)
    if err != nil {
        return nil, err
    }
    defer rrows.Close()
    for rrows.Next() {
        reg, err := scanRegistration(rrows)
        if err != nil {
            return nil, err
        }
        idx, ok := index[reg.EventID]
        if !ok {
            continue
        }
        events[idx].Registrations = append(events[idx].Registrations, *reg)
    }
    if err := rrows.Err(); err != nil {
        return nil, err
    }
    return events, nil
}

func scanRegistration(row interface{ Scan(...any) error }) (*model.Registration, error) {
    var reg model.Registration
    var notes sql.NullString
    err := row.Scan(
        &reg.ID, &reg.EventID, &reg.Name, &reg.VatsimCID, &reg.Email,
        &reg.AircraftType, &reg.Route, &notes, &reg.SelectedTime,
        &reg.Status, &reg.RegisteredAt,
    )
    if err != nil {
        return nil, err
    }
    if notes.Valid {
        n := notes.String
        reg.Notes = &n
    }
    return &reg, nil
}

// GetEvent returns a single event with its registrations. It returns
// ErrEventNotFound when no event with the given id exists.
func (r *EventRepo) GetEvent(ctx context.Context, id string) (*model.Event, error) {
    ev, err := scanEvent(r.db.QueryRowContext(ctx,
        `SELECT `+eventColumns+` FROM events WHERE id = ?`, id))
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, ErrEventNotFound
        }
        return nil, err
    }
    ev.Registrations = []model.Registration{}
    rows, err := r.db.QueryContext(ctx,
        `SELECT id, event_id, name, vatsim_cid, email, aircraft_type, route, notes,
                selected_time, status, registered_at
         FROM registrations WHERE event_id = ? ORDER BY registered_at`, id)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    for rows.Next() {
        reg, err := scanRegistration(rows)
        if err != nil {
            return nil, err
        }
        ev.Registrations = append(ev.Registrations, *reg)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return ev, nil
}

// CreateEvent inserts a new event row and assigns a generated id back to
// the struct. Registrations present on the struct are ignored: events
// are created empty and registrations only enter through the conditional
// update path.
func (r *EventRepo) CreateEvent(ctx context.Context, ev *model.Event) error {
    if ev.ID == "" {
        ev.ID = uuid.NewString()
    }
    const q = `INSERT INTO events
        (id, title, description, event_date, start_time, end_time, slot_duration_minutes,
         from_icao, to_icao, aircraft, flight_level, estimated_duration,
         status, total_slots, available_slots, version, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    _, err := r.db.ExecContext(ctx, q,
        ev.ID, ev.Title, ev.Description, ev.Date, ev.StartTime, ev.EndTime,
        ev.SlotDurationMinutes, ev.Route.FromICAO, ev.Route.ToICAO, ev.Route.Aircraft,
        ev.Route.FlightLevel, ev.Route.EstimatedDuration, ev.Status,
        ev.TotalSlots, ev.AvailableSlots, ev.Version, ev.CreatedAt.UTC(),
    )
    return err
}

// UpdateEventIf overwrites the event record only when the stored version
// still equals expectedVersion, incrementing the version in the same
// statement. The event row and its registrations list are written inside
// one transaction so a commit can never append a registration without
// the matching counter change. It returns ErrVersionConflict when
// another writer got there first and ErrEventNotFound when the event no
// longer exists. On success ev.Version holds the new version.
func (r *EventRepo) UpdateEventIf(ctx context.Context, ev *model.Event, expectedVersion uint32) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    const upd = `UPDATE events
        SET title = ?, description = ?, event_date = ?, start_time = ?, end_time = ?,
            slot_duration_minutes = ?, from_icao = ?, to_icao = ?, aircraft = ?,
            flight_level = ?, estimated_duration = ?, status = ?,
            total_slots = ?, available_slots = ?, version = version + 1
        WHERE id = ? AND version = ?`
    res, err := tx.ExecContext(ctx, upd,
        ev.Title, ev.Description, ev.Date, ev.StartTime, ev.EndTime,
        ev.SlotDurationMinutes, ev.Route.FromICAO, ev.Route.ToICAO, ev.Route.Aircraft,
        ev.Route.FlightLevel, ev.Route.EstimatedDuration, ev.Status,
        ev.TotalSlots, ev.AvailableSlots,
        ev.ID, expectedVersion,
    )
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        // Either the event is gone or the version moved. Look once to
        // tell the two apart.
        var cur uint32
        err := tx.QueryRowContext(ctx, `SELECT version FROM events WHERE id = ?`, ev.ID).Scan(&cur)
        if err == sql.ErrNoRows {
            return ErrEventNotFound
        }
        if err != nil {
            return err
        }
        return ErrVersionConflict
    }

    // Replace the registrations list to match the record being written.
    if _, err := tx.ExecContext(ctx, `DELETE FROM registrations WHERE event_id = ?`, ev.ID); err != nil {
        return err
    }
    if len(ev.Registrations) > 0 {
        query := `INSERT INTO registrations
            (id, event_id, name, vatsim_cid, email, aircraft_type, route, notes,
             selected_time, status, registered_at) VALUES `
        args := make([]interface{}, 0, len(ev.Registrations)*11)
        for i := range ev.Registrations {
            reg := &ev.Registrations[i]
            if reg.ID == "" {
                reg.ID = uuid.NewString()
            }
            if i > 0 {
                query += ","
            }
            query += "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
            args = append(args,
                reg.ID, ev.ID, reg.Name, reg.VatsimCID, reg.Email,
                reg.AircraftType, reg.Route, reg.Notes, reg.SelectedTime,
                reg.Status, reg.RegisteredAt.UTC(),
            )
        }
        if _, err := tx.ExecContext(ctx, query, args...); err != nil {
            return err
        }
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    ev.Version = expectedVersion + 1
    return nil
}

// DeleteEvent removes the event and, through the FK cascade, its
// registrations. It returns ErrEventNotFound when nothing was deleted.
func (r *EventRepo) DeleteEvent(ctx context.Context, id string) error {
    res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrEventNotFound
    }
    return nil
}
