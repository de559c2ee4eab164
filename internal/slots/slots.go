// Package slots turns a day's operating hours into fixed-length bookable slots.
package slots

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultSlotMinutes is the slot length used when none is configured.
const DefaultSlotMinutes = 30

var (
	// ErrInvalidSlotLength is returned by Generate for a non-positive slot length.
	ErrInvalidSlotLength = errors.New("slots: slot length must be positive")
	// ErrInvalidClock is returned when a wall-clock value is not HH:MM.
	ErrInvalidClock = errors.New("slots: invalid clock time")
	// ErrInvalidLabel is returned when a slot label is not "HH:MM - HH:MM".
	ErrInvalidLabel = errors.New("slots: invalid slot label")
)

// ClockTime is a wall-clock time of day stored as minutes since midnight.
type ClockTime int

// Clock builds a ClockTime from an hour and minute.
func Clock(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// ParseClock parses "HH:MM" (a single-digit hour is accepted).
func ParseClock(value string) (ClockTime, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	return Clock(hour, minute), nil
}

// Hour returns the hour component.
func (c ClockTime) Hour() int { return int(c) / 60 }

// Minute returns the minute component.
func (c ClockTime) Minute() int { return int(c) % 60 }

// String formats the time as zero-padded HH:MM.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// Slot is a half-open interval [Start, End) within one day.
type Slot struct {
	Start ClockTime
	End   ClockTime
}

// Label renders the slot the way it is shown to customers and stored.
func (s Slot) Label() string {
	return s.Start.String() + " - " + s.End.String()
}

func (s Slot) String() string { return s.Label() }

// Minutes reports the slot length.
func (s Slot) Minutes() int { return int(s.End - s.Start) }

// ParseSlot parses a label produced by Slot.Label.
func ParseSlot(label string) (Slot, error) {
	startRaw, endRaw, ok := strings.Cut(strings.TrimSpace(label), " - ")
	if !ok {
		return Slot{}, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	start, err := ParseClock(startRaw)
	if err != nil {
		return Slot{}, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	end, err := ParseClock(endRaw)
	if err != nil {
		return Slot{}, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	if end <= start {
		return Slot{}, fmt.Errorf("%w: %q ends before it starts", ErrInvalidLabel, label)
	}
	return Slot{Start: start, End: end}, nil
}

// Generate walks from start in steps of slotMinutes and returns every slot that
// ends at or before end. A trailing partial slot is dropped and start >= end
// yields no slots.
func Generate(start, end ClockTime, slotMinutes int) ([]Slot, error) {
	if slotMinutes <= 0 {
		return nil, ErrInvalidSlotLength
	}
	if start >= end {
		return []Slot{}, nil
	}

	out := make([]Slot, 0, int(end-start)/slotMinutes)
	for cursor := start; int(cursor)+slotMinutes <= int(end); cursor += ClockTime(slotMinutes) {
		out = append(out, Slot{Start: cursor, End: cursor + ClockTime(slotMinutes)})
	}
	return out, nil
}

// Labels renders every slot label in order.
func Labels(list []Slot) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.Label()
	}
	return out
}
