package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/barbershop-booking/internal/application"
	"github.com/example/barbershop-booking/internal/calendar"
	"github.com/example/barbershop-booking/internal/persistence"
	"github.com/example/barbershop-booking/internal/slots"
)

var bookingCounter uint64

// Wednesday 2024-10-16 noon UTC, which is 1403/07/25 in the Persian calendar.
var referenceTime = time.Date(2024, time.October, 16, 12, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ReferenceDate is the Jalali date of ReferenceTime.
func ReferenceDate() calendar.Date {
	return calendar.Date{Year: 1403, Month: 7, Day: 25}
}

// ReferenceWeekStart is the Saturday of the week containing ReferenceTime.
func ReferenceWeekStart() calendar.Date {
	return calendar.Date{Year: 1403, Month: 7, Day: 21}
}

// BookingFixture is a deterministic booking that can be materialised for
// persistence tests or submitted through the service.
type BookingFixture struct {
	CustomerName  string
	CustomerPhone string
	Date          calendar.Date
	Slot          slots.Slot
	CreatedAt     time.Time
}

// BookingOption configures the generated booking fixture.
type BookingOption func(*BookingFixture)

// NewBookingFixture returns a booking on ReferenceDate. Each call gets a
// distinct name and phone number and the next half hour slot from 09:00.
func NewBookingFixture(opts ...BookingOption) BookingFixture {
	idx := atomic.AddUint64(&bookingCounter, 1)
	start := slots.Clock(9, 0) + slots.ClockTime(int((idx-1)%16)*slots.DefaultSlotMinutes)
	fixture := BookingFixture{
		CustomerName:  fmt.Sprintf("Customer %03d", idx),
		CustomerPhone: fmt.Sprintf("0912%07d", idx),
		Date:          ReferenceDate(),
		Slot:          slots.Slot{Start: start, End: start + slots.DefaultSlotMinutes},
		CreatedAt:     referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithCustomerName overrides the generated name.
func WithCustomerName(name string) BookingOption {
	return func(f *BookingFixture) {
		f.CustomerName = name
	}
}

// WithCustomerPhone overrides the generated phone number.
func WithCustomerPhone(phone string) BookingOption {
	return func(f *BookingFixture) {
		f.CustomerPhone = phone
	}
}

// WithDate overrides the booking date.
func WithDate(date calendar.Date) BookingOption {
	return func(f *BookingFixture) {
		f.Date = date
	}
}

// WithSlot overrides the slot.
func WithSlot(slot slots.Slot) BookingOption {
	return func(f *BookingFixture) {
		f.Slot = slot
	}
}

// WithCreatedAt sets the created timestamp on the fixture.
func WithCreatedAt(t time.Time) BookingOption {
	return func(f *BookingFixture) {
		f.CreatedAt = t
	}
}

// Persistence returns the fixture as a persistence.Booking without an ID.
func (f BookingFixture) Persistence() persistence.Booking {
	return persistence.Booking{
		CustomerName:  f.CustomerName,
		CustomerPhone: f.CustomerPhone,
		Date:          f.Date,
		Slot:          f.Slot,
		CreatedAt:     f.CreatedAt,
	}
}

// SubmitParams returns the raw form values the service would receive.
func (f BookingFixture) SubmitParams() application.SubmitBookingParams {
	return application.SubmitBookingParams{
		Name:     f.CustomerName,
		Phone:    f.CustomerPhone,
		Date:     f.Date.String(),
		TimeSlot: f.Slot.Label(),
	}
}

// DaySchedule returns an open schedule for dayName between start and end,
// given as HH:MM.
func DaySchedule(dayName, start, end string) persistence.DaySchedule {
	return persistence.DaySchedule{
		DayName:   dayName,
		IsOpen:    true,
		StartTime: mustClock(start),
		EndTime:   mustClock(end),
	}
}

// ClosedDay returns a closed schedule with the default hours.
func ClosedDay(dayName string) persistence.DaySchedule {
	return persistence.DaySchedule{
		DayName:   dayName,
		IsOpen:    false,
		StartTime: persistence.DefaultOpeningTime,
		EndTime:   persistence.DefaultClosingTime,
	}
}

func mustClock(value string) slots.ClockTime {
	clock, err := slots.ParseClock(value)
	if err != nil {
		panic(fmt.Sprintf("testfixtures: invalid clock %q: %v", value, err))
	}
	return clock
}
