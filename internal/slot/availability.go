package slot

import "github.com/iliyamo/flight-slot-booking/internal/model"

// Available returns the subset of the event's generated slots that no
// non-cancelled registration currently claims.  Cancelled registrations
// are excluded from the taken set, so a cancelled slot becomes bookable
// again.  The output preserves the generator's chronological order and
// the function has no side effects.
func Available(ev *model.Event) ([]string, error) {
    labels, err := Generate(ev.StartTime, ev.EndTime, ev.SlotDurationMinutes)
    if err != nil {
        return nil, err
    }
    taken := make(map[string]struct{}, len(ev.Registrations))
    for _, r := range ev.Registrations {
        if r.Status == model.RegistrationStatusCancelled {
            continue
        }
        taken[r.SelectedTime] = struct{}{}
    }
    free := make([]string, 0, len(labels))
    for _, l := range labels {
        if _, ok := taken[l]; !ok {
            free = append(free, l)
        }
    }
    return free, nil
}
