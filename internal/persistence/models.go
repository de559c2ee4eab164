package persistence

import (
	"time"

	"github.com/example/barbershop-booking/internal/calendar"
	"github.com/example/barbershop-booking/internal/slots"
)

// Default operating hours for a freshly seeded weekday.
var (
	DefaultOpeningTime = slots.Clock(9, 0)
	DefaultClosingTime = slots.Clock(17, 0)
)

// DaySchedule is the opening state and hours of one Persian weekday.
type DaySchedule struct {
	DayName   string
	IsOpen    bool
	StartTime slots.ClockTime
	EndTime   slots.ClockTime
}

// Booking is a reserved slot on a Jalali date.
type Booking struct {
	ID            int64
	CustomerName  string
	CustomerPhone string
	Date          calendar.Date
	Slot          slots.Slot
	CreatedAt     time.Time
}

// DefaultDaySchedules returns one open 09:00-17:00 schedule per weekday in
// week order.
func DefaultDaySchedules() []DaySchedule {
	names := calendar.WeekdayNames()
	out := make([]DaySchedule, 0, len(names))
	for _, name := range names {
		out = append(out, DaySchedule{
			DayName:   name,
			IsOpen:    true,
			StartTime: DefaultOpeningTime,
			EndTime:   DefaultClosingTime,
		})
	}
	return out
}
