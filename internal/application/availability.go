package application

import (
	"context"

	"github.com/example/barbershop-booking/internal/calendar"
	"github.com/example/barbershop-booking/internal/slots"
)

// BookingCounter counts the bookings that hold a slot.
type BookingCounter interface {
	CountBookings(ctx context.Context, date calendar.Date, slot slots.Slot) (int, error)
}

// Availability answers whether a slot on a date is still free.
type Availability struct {
	bookings BookingCounter
}

// NewAvailability returns an Availability over bookings.
func NewAvailability(bookings BookingCounter) *Availability {
	return &Availability{bookings: bookings}
}

// IsAvailable reports true when no booking holds slot on date.
func (a *Availability) IsAvailable(ctx context.Context, date calendar.Date, slot slots.Slot) (bool, error) {
	count, err := a.bookings.CountBookings(ctx, date, slot)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
