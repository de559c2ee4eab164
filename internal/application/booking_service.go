package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/barbershop-booking/internal/calendar"
	"github.com/example/barbershop-booking/internal/metrics"
	"github.com/example/barbershop-booking/internal/persistence"
	"github.com/example/barbershop-booking/internal/slots"
)

// ScheduleReader loads one weekday's schedule.
type ScheduleReader interface {
	GetDaySchedule(ctx context.Context, dayName string) (persistence.DaySchedule, error)
}

// BookingWriter is the booking storage the service needs.
type BookingWriter interface {
	BookingCounter
	CreateBooking(ctx context.Context, booking persistence.Booking) (persistence.Booking, error)
}

// WeekProvider supplies the displayed week.
type WeekProvider interface {
	WeekDates() []calendar.WeekDay
}

// BookingNotifier is told about every booking that was stored.
type BookingNotifier interface {
	BookingCreated(ctx context.Context, booking persistence.Booking) error
}

// BookingServiceOptions holds the optional collaborators of BookingService.
type BookingServiceOptions struct {
	// SlotMinutes defaults to slots.DefaultSlotMinutes.
	SlotMinutes int
	Notifier    BookingNotifier
	Logger      *slog.Logger
}

// SubmitBookingParams is the raw customer submission.
type SubmitBookingParams struct {
	Name     string
	Phone    string
	Date     string
	TimeSlot string
}

// BookingService lists the week, computes free slots and accepts bookings.
type BookingService struct {
	schedules    ScheduleReader
	bookings     BookingWriter
	availability *Availability
	week         WeekProvider
	now          func() time.Time
	slotMinutes  int
	notifier     BookingNotifier
	logger       *slog.Logger
}

// NewBookingService constructs a booking service.
func NewBookingService(schedules ScheduleReader, bookings BookingWriter, week WeekProvider, now func() time.Time, opts BookingServiceOptions) *BookingService {
	if now == nil {
		now = time.Now
	}
	if opts.SlotMinutes <= 0 {
		opts.SlotMinutes = slots.DefaultSlotMinutes
	}
	return &BookingService{
		schedules:    schedules,
		bookings:     bookings,
		availability: NewAvailability(bookings),
		week:         week,
		now:          now,
		slotMinutes:  opts.SlotMinutes,
		notifier:     opts.Notifier,
		logger:       defaultLogger(opts.Logger),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// ListWeek returns the seven days of the current week, Saturday first.
func (s *BookingService) ListWeek(ctx context.Context) []calendar.WeekDay {
	return s.week.WeekDates()
}

// SlotsForDay returns the free slots of dayName on date in chronological
// order. It fails with ErrDayClosed when the weekday is unknown or closed and
// with ErrFullyBooked when nothing is left.
func (s *BookingService) SlotsForDay(ctx context.Context, date, dayName string) (available []slots.Slot, err error) {
	logger := s.loggerWith(ctx, "SlotsForDay", "date", date, "day_name", dayName)
	defer func() {
		metrics.RecordSlotQuery(outcomeLabel(err, "ok"))
		switch {
		case err == nil:
			logger.DebugContext(ctx, "slots listed", "available", len(available))
		case errors.Is(err, ErrDayClosed), errors.Is(err, ErrFullyBooked), errors.Is(err, ErrInvalidSlot):
			logger.InfoContext(ctx, "no slots offered", "error_kind", ErrorKind(err))
		default:
			logger.ErrorContext(ctx, "failed to list slots", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	schedule, err := s.schedules.GetDaySchedule(ctx, dayName)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrDayClosed
		}
		return nil, err
	}
	if !schedule.IsOpen {
		return nil, ErrDayClosed
	}

	day, err := calendar.ParseDate(date)
	if err != nil {
		err = newValidationError(ErrInvalidSlot, "date", MessageInvalidSlot)
		return nil, err
	}

	generated, err := slots.Generate(schedule.StartTime, schedule.EndTime, s.slotMinutes)
	if err != nil {
		return nil, fmt.Errorf("generate slots: %w", err)
	}

	available = make([]slots.Slot, 0, len(generated))
	for _, slot := range generated {
		free, checkErr := s.availability.IsAvailable(ctx, day, slot)
		if checkErr != nil {
			err = fmt.Errorf("check slot %s: %w", slot, checkErr)
			return nil, err
		}
		if free {
			available = append(available, slot)
		}
	}
	if len(available) == 0 {
		return nil, ErrFullyBooked
	}
	return available, nil
}

// Submit validates and stores a booking. Name is checked before phone, then
// the date and slot are parsed, then availability is checked. A concurrent
// booking that wins the race surfaces as ErrSlotTaken.
func (s *BookingService) Submit(ctx context.Context, params SubmitBookingParams) (booking persistence.Booking, err error) {
	logger := s.loggerWith(ctx, "Submit", "date", params.Date, "time_slot", params.TimeSlot)
	defer func() {
		metrics.RecordBookingSubmission(outcomeLabel(err, "created"))
		if err != nil {
			var vErr *ValidationError
			if errors.As(err, &vErr) || errors.Is(err, ErrSlotTaken) {
				logger.InfoContext(ctx, "booking rejected", "error_kind", ErrorKind(err))
				return
			}
			logger.ErrorContext(ctx, "failed to create booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("booking_id", booking.ID).InfoContext(ctx, "booking created")
	}()

	name := strings.TrimSpace(params.Name)
	phone := calendar.NormalizeDigits(strings.TrimSpace(params.Phone))
	if vErr := validateBookingForm(name, phone); vErr != nil {
		err = vErr
		return
	}

	date, parseErr := calendar.ParseDate(params.Date)
	if parseErr != nil {
		err = newValidationError(ErrInvalidSlot, "date", MessageInvalidSlot)
		return
	}
	slot, parseErr := slots.ParseSlot(params.TimeSlot)
	if parseErr != nil {
		err = newValidationError(ErrInvalidSlot, "time_slot", MessageInvalidSlot)
		return
	}

	free, err := s.availability.IsAvailable(ctx, date, slot)
	if err != nil {
		err = fmt.Errorf("check availability: %w", err)
		return
	}
	if !free {
		err = ErrSlotTaken
		return
	}

	booking, err = s.bookings.CreateBooking(ctx, persistence.Booking{
		CustomerName:  name,
		CustomerPhone: phone,
		Date:          date,
		Slot:          slot,
		CreatedAt:     s.now(),
	})
	if err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			err = ErrSlotTaken
		}
		return persistence.Booking{}, err
	}

	s.notify(ctx, logger, booking)
	return booking, nil
}

// notify never fails the booking; delivery problems are only logged.
func (s *BookingService) notify(ctx context.Context, logger *slog.Logger, booking persistence.Booking) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.BookingCreated(ctx, booking); err != nil {
		logger.WarnContext(ctx, "booking notification failed", "booking_id", booking.ID, "error", err)
	}
}

func outcomeLabel(err error, success string) string {
	if err == nil {
		return success
	}
	return ErrorKind(err)
}
