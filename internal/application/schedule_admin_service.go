package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/example/barbershop-booking/internal/calendar"
	"github.com/example/barbershop-booking/internal/persistence"
	"github.com/example/barbershop-booking/internal/slots"
)

// ScheduleStore is the schedule persistence used by the admin service.
type ScheduleStore interface {
	ListDaySchedules(ctx context.Context) ([]persistence.DaySchedule, error)
	UpdateDaySchedule(ctx context.Context, schedule persistence.DaySchedule) error
}

// BookingLister lists stored bookings.
type BookingLister interface {
	ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error)
}

// UpdateScheduleParams is the raw admin input for one weekday.
type UpdateScheduleParams struct {
	DayName   string
	IsOpen    bool
	StartTime string
	EndTime   string
}

// ScheduleAdminService lets the shop owner change opening hours and read
// bookings.
type ScheduleAdminService struct {
	schedules ScheduleStore
	bookings  BookingLister
	logger    *slog.Logger
}

// NewScheduleAdminService constructs the admin service.
func NewScheduleAdminService(schedules ScheduleStore, bookings BookingLister, logger *slog.Logger) *ScheduleAdminService {
	return &ScheduleAdminService{schedules: schedules, bookings: bookings, logger: defaultLogger(logger)}
}

func (s *ScheduleAdminService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ScheduleAdminService", operation, attrs...)
}

// ListSchedules returns the seven weekday schedules in week order.
func (s *ScheduleAdminService) ListSchedules(ctx context.Context) ([]persistence.DaySchedule, error) {
	schedules, err := s.schedules.ListDaySchedules(ctx)
	if err != nil {
		s.loggerWith(ctx, "ListSchedules").ErrorContext(ctx, "failed to list schedules", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	return schedules, nil
}

// UpdateSchedule validates the hours and stores them for the weekday.
func (s *ScheduleAdminService) UpdateSchedule(ctx context.Context, params UpdateScheduleParams) (schedule persistence.DaySchedule, err error) {
	logger := s.loggerWith(ctx, "UpdateSchedule", "day_name", params.DayName)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update schedule", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "schedule updated",
			"is_open", schedule.IsOpen,
			"start_time", schedule.StartTime.String(),
			"end_time", schedule.EndTime.String(),
		)
	}()

	dayName := strings.TrimSpace(params.DayName)
	if !calendar.IsWeekdayName(dayName) {
		err = ErrNotFound
		return
	}

	vErr := &ValidationError{Kind: ErrInvalidSchedule}
	start, startErr := slots.ParseClock(params.StartTime)
	if startErr != nil {
		vErr.add("start_time", "ساعت شروع باید به شکل HH:MM باشد")
	}
	end, endErr := slots.ParseClock(params.EndTime)
	if endErr != nil {
		vErr.add("end_time", "ساعت پایان باید به شکل HH:MM باشد")
	}
	if startErr == nil && endErr == nil && start >= end {
		vErr.add("end_time", "ساعت پایان باید بعد از ساعت شروع باشد")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	schedule = persistence.DaySchedule{DayName: dayName, IsOpen: params.IsOpen, StartTime: start, EndTime: end}
	if err = s.schedules.UpdateDaySchedule(ctx, schedule); err != nil {
		switch {
		case errors.Is(err, persistence.ErrNotFound):
			err = ErrNotFound
		case errors.Is(err, persistence.ErrConstraintViolation):
			err = newValidationError(ErrInvalidSchedule, "end_time", "ساعت پایان باید بعد از ساعت شروع باشد")
		}
		return persistence.DaySchedule{}, err
	}
	return schedule, nil
}

// ListBookings returns every booking, or only those on date when it is not
// empty.
func (s *ScheduleAdminService) ListBookings(ctx context.Context, date string) ([]persistence.Booking, error) {
	var filter persistence.BookingFilter
	if strings.TrimSpace(date) != "" {
		parsed, err := calendar.ParseDate(date)
		if err != nil {
			return nil, newValidationError(ErrInvalidSlot, "date", MessageInvalidSlot)
		}
		filter.Date = &parsed
	}

	bookings, err := s.bookings.ListBookings(ctx, filter)
	if err != nil {
		s.loggerWith(ctx, "ListBookings", "date", date).ErrorContext(ctx, "failed to list bookings", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	return bookings, nil
}
