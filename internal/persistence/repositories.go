package persistence

import (
	"context"

	"github.com/example/barbershop-booking/internal/calendar"
	"github.com/example/barbershop-booking/internal/slots"
)

// ScheduleRepository stores the weekly opening schedule.
type ScheduleRepository interface {
	// EnsureDefaultSchedules inserts the default row for every weekday that has none.
	EnsureDefaultSchedules(ctx context.Context) error
	GetDaySchedule(ctx context.Context, dayName string) (DaySchedule, error)
	ListDaySchedules(ctx context.Context) ([]DaySchedule, error)
	UpdateDaySchedule(ctx context.Context, schedule DaySchedule) error
}

// BookingFilter narrows booking listings.
type BookingFilter struct {
	Date *calendar.Date
}

// BookingRepository stores bookings. Bookings are never updated or deleted.
type BookingRepository interface {
	CountBookings(ctx context.Context, date calendar.Date, slot slots.Slot) (int, error)
	// CreateBooking assigns the identifier and returns the stored booking.
	// A second booking for the same date and slot fails with ErrDuplicate.
	CreateBooking(ctx context.Context, booking Booking) (Booking, error)
	ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error)
}
