package booking

import (
    "context"
    "errors"
    "fmt"
    "sync"
    "testing"

    "github.com/iliyamo/flight-slot-booking/internal/model"
    "github.com/iliyamo/flight-slot-booking/internal/repository"
)

func setupAdmission(t *testing.T, d EventDraft) (*Admission, *Ledger, *mockStore, *mockBanGate, string) {
    t.Helper()
    store := newMockStore()
    gate := newMockBanGate()
    l := NewLedger(store, 0)
    a := NewAdmission(l, gate)
    ev, err := l.CreateEvent(context.Background(), d)
    if err != nil {
        t.Fatalf("CreateEvent failed: %v", err)
    }
    return a, l, store, gate, ev.ID
}

func draftFor(cid, slotLabel string) Draft {
    return Draft{
        Name:         "Jane Pilot",
        VatsimCID:    cid,
        Email:        cid + "@example.org",
        AircraftType: "A320",
        Route:        "EDDF DCT LEPA",
        SelectedTime: slotLabel,
    }
}

func TestAdmission_Register_Success(t *testing.T) {
    a, l, _, _, id := setupAdmission(t, testDraft())

    reg, err := a.Register(context.Background(), id, draftFor("1300001", "06:30Z"))
    if err != nil {
        t.Fatalf("Register failed: %v", err)
    }
    if reg.ID == "" {
        t.Error("expected a generated registration id")
    }
    if reg.Status != model.RegistrationStatusPending {
        t.Errorf("status = %q, want pending", reg.Status)
    }
    if reg.RegisteredAt.IsZero() {
        t.Error("expected a registration timestamp")
    }
    ev, err := l.GetEvent(context.Background(), id)
    if err != nil {
        t.Fatalf("GetEvent failed: %v", err)
    }
    if ev.AvailableSlots != ev.TotalSlots-1 {
        t.Errorf("availableSlots = %d, want %d", ev.AvailableSlots, ev.TotalSlots-1)
    }
    if len(ev.Registrations) != 1 || ev.Registrations[0].SelectedTime != "06:30Z" {
        t.Errorf("registrations = %+v", ev.Registrations)
    }
}

func TestAdmission_Register_EventNotFound(t *testing.T) {
    a, _, _, _, _ := setupAdmission(t, testDraft())
    if _, err := a.Register(context.Background(), "missing", draftFor("1300001", "06:30Z")); !errors.Is(err, repository.ErrEventNotFound) {
        t.Errorf("expected ErrEventNotFound, got %v", err)
    }
}

func TestAdmission_Register_EventNotBookable(t *testing.T) {
    for _, status := range []string{model.EventStatusCompleted, model.EventStatusCancelled} {
        t.Run(status, func(t *testing.T) {
            a, l, _, _, id := setupAdmission(t, testDraft())
            if _, err := l.SetStatus(context.Background(), id, status); err != nil {
                t.Fatalf("SetStatus failed: %v", err)
            }
            if _, err := a.Register(context.Background(), id, draftFor("1300001", "06:30Z")); !errors.Is(err, ErrEventNotBookable) {
                t.Errorf("expected ErrEventNotBookable, got %v", err)
            }
        })
    }
}

func TestAdmission_Register_SlotNotInWindow(t *testing.T) {
    a, _, _, _, id := setupAdmission(t, testDraft())
    // 06:10Z is not a generated label for a 30 minute grid
    if _, err := a.Register(context.Background(), id, draftFor("1300001", "06:10Z")); !errors.Is(err, ErrSlotUnavailable) {
        t.Errorf("expected ErrSlotUnavailable, got %v", err)
    }
}

func TestAdmission_Register_SlotAlreadyTaken(t *testing.T) {
    a, _, _, _, id := setupAdmission(t, testDraft())
    if _, err := a.Register(context.Background(), id, draftFor("1300001", "06:30Z")); err != nil {
        t.Fatalf("first registration failed: %v", err)
    }
    if _, err := a.Register(context.Background(), id, draftFor("1300002", "06:30Z")); !errors.Is(err, ErrSlotUnavailable) {
        t.Errorf("expected ErrSlotUnavailable, got %v", err)
    }
}

func TestAdmission_Register_BannedIdentity(t *testing.T) {
    a, _, _, gate, id := setupAdmission(t, testDraft())
    gate.banned["1300001"] = true
    // slot is free and capacity remains; the ban alone rejects
    if _, err := a.Register(context.Background(), id, draftFor("1300001", "06:30Z")); !errors.Is(err, ErrRegistrantBanned) {
        t.Errorf("expected ErrRegistrantBanned, got %v", err)
    }
}

func TestAdmission_Register_BanGateFailure(t *testing.T) {
    a, _, _, gate, id := setupAdmission(t, testDraft())
    gate.failErr = errors.New("gate unreachable")
    _, err := a.Register(context.Background(), id, draftFor("1300001", "06:30Z"))
    var pe *PersistenceError
    if !errors.As(err, &pe) {
        t.Errorf("expected PersistenceError, got %v", err)
    }
}

func TestAdmission_Register_CounterDriftGuard(t *testing.T) {
    store := newMockStore()
    gate := newMockBanGate()
    l := NewLedger(store, 0)
    a := NewAdmission(l, gate)
    // drifted low: slots look open but the stored counter says none left
    store.seed(&model.Event{
        ID:                  "ev-zero",
        StartTime:           "06:00",
        EndTime:             "08:00",
        SlotDurationMinutes: 30,
        Status:              model.EventStatusUpcoming,
        TotalSlots:          4,
        AvailableSlots:      0,
    })
    if _, err := a.Register(context.Background(), "ev-zero", draftFor("1300001", "06:30Z")); !errors.Is(err, ErrCapacityExhausted) {
        t.Errorf("expected ErrCapacityExhausted, got %v", err)
    }
}

func TestAdmission_Register_CapacityExhausted(t *testing.T) {
    // 8 labels on a 15 minute grid, but only 2 registrations of capacity
    d := testDraft()
    d.SlotDurationMinutes = 15
    d.TotalSlots = 2
    a, _, _, _, id := setupAdmission(t, d)

    if _, err := a.Register(context.Background(), id, draftFor("1300001", "06:00Z")); err != nil {
        t.Fatalf("registration 1 failed: %v", err)
    }
    if _, err := a.Register(context.Background(), id, draftFor("1300002", "06:15Z")); err != nil {
        t.Fatalf("registration 2 failed: %v", err)
    }
    // a free label remains, yet capacity is spent
    if _, err := a.Register(context.Background(), id, draftFor("1300003", "06:45Z")); !errors.Is(err, ErrCapacityExhausted) {
        t.Errorf("expected ErrCapacityExhausted, got %v", err)
    }
}

func TestAdmission_Register_ConcurrentSameSlot(t *testing.T) {
    a, _, _, _, id := setupAdmission(t, testDraft())

    var wg sync.WaitGroup
    errs := make([]error, 2)
    for i := 0; i < 2; i++ {
        wg.Add(1)
        go func(i int) {
            defer wg.Done()
            _, errs[i] = a.Register(context.Background(), id, draftFor(fmt.Sprintf("13000%02d", i), "07:00Z"))
        }(i)
    }
    wg.Wait()

    successes, rejections := 0, 0
    for _, err := range errs {
        switch {
        case err == nil:
            successes++
        case errors.Is(err, ErrSlotUnavailable):
            rejections++
        default:
            t.Errorf("unexpected error: %v", err)
        }
    }
    if successes != 1 || rejections != 1 {
        t.Errorf("got %d successes and %d rejections, want exactly 1 and 1", successes, rejections)
    }
}

func TestAdmission_Register_LostRaceViaVersionConflict(t *testing.T) {
    a, _, store, _, id := setupAdmission(t, testDraft())

    // a competing commit lands between this attempt's read and write
    store.onUpdate = func() {
        store.mu.Lock()
        ev := store.events[id]
        ev.Registrations = append(ev.Registrations, model.Registration{
            ID: "rival", SelectedTime: "07:00Z", Status: model.RegistrationStatusPending,
        })
        ev.AvailableSlots--
        ev.Version++
        store.mu.Unlock()
    }
    if _, err := a.Register(context.Background(), id, draftFor("1300001", "07:00Z")); !errors.Is(err, ErrSlotUnavailable) {
        t.Errorf("expected ErrSlotUnavailable after losing the race, got %v", err)
    }
}

func TestAdmission_FullWindowScenario(t *testing.T) {
    // window 10:00-11:00 at 20 minute spacing: slots 10:00Z 10:20Z 10:40Z
    d := testDraft()
    d.StartTime = "10:00"
    d.EndTime = "11:00"
    d.SlotDurationMinutes = 20
    d.TotalSlots = 3
    a, _, _, _, id := setupAdmission(t, d)

    slots, err := a.AvailableSlots(context.Background(), id)
    if err != nil {
        t.Fatalf("AvailableSlots failed: %v", err)
    }
    want := []string{"10:00Z", "10:20Z", "10:40Z"}
    if len(slots) != len(want) {
        t.Fatalf("slots = %v, want %v", slots, want)
    }
    for i := range want {
        if slots[i] != want[i] {
            t.Fatalf("slots = %v, want %v", slots, want)
        }
    }

    for i, label := range want {
        if _, err := a.Register(context.Background(), id, draftFor(fmt.Sprintf("140000%d", i), label)); err != nil {
            t.Fatalf("registration for %s failed: %v", label, err)
        }
    }
    // the fourth attempt must fail whichever slot it names
    _, err = a.Register(context.Background(), id, draftFor("1400009", "10:20Z"))
    if !errors.Is(err, ErrSlotUnavailable) && !errors.Is(err, ErrCapacityExhausted) {
        t.Errorf("expected SlotUnavailable or CapacityExhausted, got %v", err)
    }
}

func TestAdmission_AvailableSlots_AfterCancellation(t *testing.T) {
    a, l, _, _, id := setupAdmission(t, testDraft())
    reg, err := a.Register(context.Background(), id, draftFor("1300001", "06:30Z"))
    if err != nil {
        t.Fatalf("Register failed: %v", err)
    }
    before, err := a.AvailableSlots(context.Background(), id)
    if err != nil {
        t.Fatalf("AvailableSlots failed: %v", err)
    }
    for _, label := range before {
        if label == "06:30Z" {
            t.Fatal("06:30Z should be taken before cancellation")
        }
    }
    if _, err := l.SetRegistrationStatus(context.Background(), id, reg.ID, model.RegistrationStatusCancelled); err != nil {
        t.Fatalf("SetRegistrationStatus failed: %v", err)
    }
    after, err := a.AvailableSlots(context.Background(), id)
    if err != nil {
        t.Fatalf("AvailableSlots failed: %v", err)
    }
    found := false
    for _, label := range after {
        if label == "06:30Z" {
            found = true
        }
    }
    if !found {
        t.Errorf("06:30Z did not reappear after cancellation: %v", after)
    }
}
