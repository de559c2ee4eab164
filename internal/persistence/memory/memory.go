// Package memory provides a map-backed implementation of the booking
// repositories. It keeps the same uniqueness rules as the SQLite store and is
// used by handler and service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/example/barbershop-booking/internal/calendar"
	"github.com/example/barbershop-booking/internal/persistence"
	"github.com/example/barbershop-booking/internal/slots"
)

type slotKey struct {
	date calendar.Date
	slot slots.Slot
}

// Storage holds schedules and bookings in memory.
type Storage struct {
	mu        sync.RWMutex
	schedules map[string]persistence.DaySchedule
	bookings  []persistence.Booking
	taken     map[slotKey]int64
	nextID    int64
	now       func() time.Time
}

// New returns an empty Storage. Call EnsureDefaultSchedules to seed the week.
func New() *Storage {
	return &Storage{
		schedules: make(map[string]persistence.DaySchedule),
		taken:     make(map[slotKey]int64),
		now:       time.Now,
	}
}

// Close is a no-op.
func (s *Storage) Close() error { return nil }

// Ping always succeeds.
func (s *Storage) Ping(context.Context) error { return nil }

// EnsureDefaultSchedules seeds missing weekdays without touching existing rows.
func (s *Storage) EnsureDefaultSchedules(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, schedule := range persistence.DefaultDaySchedules() {
		if _, ok := s.schedules[schedule.DayName]; ok {
			continue
		}
		s.schedules[schedule.DayName] = schedule
	}
	return nil
}

// GetDaySchedule returns the schedule for one weekday.
func (s *Storage) GetDaySchedule(ctx context.Context, dayName string) (persistence.DaySchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schedule, ok := s.schedules[dayName]
	if !ok {
		return persistence.DaySchedule{}, persistence.ErrNotFound
	}
	return schedule, nil
}

// ListDaySchedules returns every stored schedule in week order.
func (s *Storage) ListDaySchedules(ctx context.Context) ([]persistence.DaySchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]persistence.DaySchedule, 0, len(s.schedules))
	for _, schedule := range s.schedules {
		out = append(out, schedule)
	}
	sort.Slice(out, func(i, j int) bool {
		return calendar.WeekdayPosition(out[i].DayName) < calendar.WeekdayPosition(out[j].DayName)
	})
	return out, nil
}

// UpdateDaySchedule replaces an existing weekday schedule.
func (s *Storage) UpdateDaySchedule(ctx context.Context, schedule persistence.DaySchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.schedules[schedule.DayName]; !ok {
		return persistence.ErrNotFound
	}
	if schedule.StartTime >= schedule.EndTime {
		return persistence.ErrConstraintViolation
	}
	s.schedules[schedule.DayName] = schedule
	return nil
}

// CountBookings reports how many bookings hold the slot on date.
func (s *Storage) CountBookings(ctx context.Context, date calendar.Date, slot slots.Slot) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.taken[slotKey{date: date, slot: slot}]; ok {
		return 1, nil
	}
	return 0, nil
}

// CreateBooking stores a booking and assigns the next identifier.
func (s *Storage) CreateBooking(ctx context.Context, booking persistence.Booking) (persistence.Booking, error) {
	if booking.CustomerName == "" || booking.CustomerPhone == "" || booking.Date.IsZero() {
		return persistence.Booking{}, persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := slotKey{date: booking.Date, slot: booking.Slot}
	if id, ok := s.taken[key]; ok {
		return persistence.Booking{}, fmt.Errorf("%w: slot %s %s already held by booking %d",
			persistence.ErrDuplicate, booking.Date, booking.Slot, id)
	}

	s.nextID++
	booking.ID = s.nextID
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = s.now().UTC()
	}
	s.bookings = append(s.bookings, booking)
	s.taken[key] = booking.ID
	return booking, nil
}

// ListBookings returns bookings ordered by date, slot and identifier.
func (s *Storage) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]persistence.Booking, 0, len(s.bookings))
	for _, booking := range s.bookings {
		if filter.Date != nil && booking.Date != *filter.Date {
			continue
		}
		out = append(out, booking)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Date != b.Date {
			return a.Date.Before(b.Date)
		}
		if a.Slot.Start != b.Slot.Start {
			return a.Slot.Start < b.Slot.Start
		}
		if a.Slot.End != b.Slot.End {
			return a.Slot.End < b.Slot.End
		}
		return a.ID < b.ID
	})
	return out, nil
}
