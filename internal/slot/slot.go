// Package slot derives the finite set of bookable departure slots for an
// event from its time window and slot duration.  Slot labels are pure
// values: two events with identical windows and durations produce
// identical label sequences, and a label carries no identity beyond its
// text.
package slot

import (
    "errors"
    "fmt"
    "time"
)

// ErrInvalidWindow indicates bad slot-window parameters: an end time at
// or before the start time, a non-positive duration, or a time string
// that does not parse as 24-hour "HH:MM".  It is a caller error and not
// retryable.
var ErrInvalidWindow = errors.New("invalid slot window")

// timeLayout is the wire format of event start and end times.
const timeLayout = "15:04"

// Generate returns the ordered sequence of slot labels for the half-open
// window [startTime, endTime) stepped by durationMin minutes.  Labels
// are formatted as 24-hour "HH:MM" with a trailing "Z" marker; a slot
// exactly equal to endTime is never emitted.  The result degenerates to
// an empty sequence when the duration meets or exceeds the window.  The
// function is deterministic: calling it twice with the same arguments
// yields identical output.
func Generate(startTime, endTime string, durationMin int) ([]string, error) {
    if durationMin <= 0 {
        return nil, fmt.Errorf("%w: slot duration must be positive, got %d", ErrInvalidWindow, durationMin)
    }
    start, err := time.Parse(timeLayout, startTime)
    if err != nil {
        return nil, fmt.Errorf("%w: bad start time %q", ErrInvalidWindow, startTime)
    }
    end, err := time.Parse(timeLayout, endTime)
    if err != nil {
        return nil, fmt.Errorf("%w: bad end time %q", ErrInvalidWindow, endTime)
    }
    if !end.After(start) {
        return nil, fmt.Errorf("%w: end %q not after start %q", ErrInvalidWindow, endTime, startTime)
    }

    step := time.Duration(durationMin) * time.Minute
    if step >= end.Sub(start) {
        // the duration covers the whole window: nothing fits
        return []string{}, nil
    }
    labels := make([]string, 0, int(end.Sub(start)/step))
    for cursor := start; cursor.Before(end); cursor = cursor.Add(step) {
        labels = append(labels, cursor.Format(timeLayout)+"Z")
    }
    return labels, nil
}
