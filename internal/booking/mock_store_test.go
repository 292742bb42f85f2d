package booking

import (
    "context"
    "sync"

    "github.com/google/uuid"

    "github.com/iliyamo/flight-slot-booking/internal/model"
    "github.com/iliyamo/flight-slot-booking/internal/repository"
)

// mockStore is an in-memory EventStore honoring the same conditional
// update contract as the MySQL repository: UpdateEventIf applies only
// when the stored version matches, so concurrency tests exercise the
// real commit discipline.
type mockStore struct {
    mu       sync.Mutex
    events   map[string]*model.Event
    failWith error  // when set, every call fails with this error
    onUpdate func() // runs once at the next UpdateEventIf, before the version check
    getCalls int
}

func newMockStore() *mockStore {
    return &mockStore{events: make(map[string]*model.Event)}
}

func copyOf(ev *model.Event) *model.Event {
    cp := *ev
    cp.Registrations = make([]model.Registration, len(ev.Registrations))
    copy(cp.Registrations, ev.Registrations)
    return &cp
}

func (m *mockStore) ListEvents(_ context.Context) ([]model.Event, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.failWith != nil {
        return nil, m.failWith
    }
    out := make([]model.Event, 0, len(m.events))
    for _, ev := range m.events {
        out = append(out, *copyOf(ev))
    }
    return out, nil
}

func (m *mockStore) GetEvent(_ context.Context, id string) (*model.Event, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.getCalls++
    if m.failWith != nil {
        return nil, m.failWith
    }
    ev, ok := m.events[id]
    if !ok {
        return nil, repository.ErrEventNotFound
    }
    return copyOf(ev), nil
}

func (m *mockStore) CreateEvent(_ context.Context, ev *model.Event) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.failWith != nil {
        return m.failWith
    }
    if ev.ID == "" {
        ev.ID = uuid.NewString()
    }
    m.events[ev.ID] = copyOf(ev)
    return nil
}

func (m *mockStore) UpdateEventIf(_ context.Context, ev *model.Event, expectedVersion uint32) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.failWith != nil {
        return m.failWith
    }
    if m.onUpdate != nil {
        hook := m.onUpdate
        m.onUpdate = nil
        m.mu.Unlock()
        hook()
        m.mu.Lock()
    }
    cur, ok := m.events[ev.ID]
    if !ok {
        return repository.ErrEventNotFound
    }
    if cur.Version != expectedVersion {
        return repository.ErrVersionConflict
    }
    ev.Version = expectedVersion + 1
    m.events[ev.ID] = copyOf(ev)
    return nil
}

func (m *mockStore) DeleteEvent(_ context.Context, id string) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.failWith != nil {
        return m.failWith
    }
    if _, ok := m.events[id]; !ok {
        return repository.ErrEventNotFound
    }
    delete(m.events, id)
    return nil
}

// seed installs an event directly, bypassing ledger normalization, so
// tests can set up drifted or mid-lifecycle states.
func (m *mockStore) seed(ev *model.Event) {
    m.mu.Lock()
    defer m.mu.Unlock()
    if ev.ID == "" {
        ev.ID = uuid.NewString()
    }
    if ev.Version == 0 {
        ev.Version = 1
    }
    if ev.Registrations == nil {
        ev.Registrations = []model.Registration{}
    }
    m.events[ev.ID] = copyOf(ev)
}

// mockBanGate is an in-memory BanGate.
type mockBanGate struct {
    banned  map[string]bool
    failErr error
}

func newMockBanGate() *mockBanGate {
    return &mockBanGate{banned: make(map[string]bool)}
}

func (m *mockBanGate) IsBanned(_ context.Context, cid string) (bool, error) {
    if m.failErr != nil {
        return false, m.failErr
    }
    return m.banned[cid], nil
}
