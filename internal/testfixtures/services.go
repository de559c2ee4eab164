package testfixtures

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/example/barbershop-booking/internal/application"
	"github.com/example/barbershop-booking/internal/persistence/memory"
)

// ServiceFactory assists tests with constructing application services using a
// deterministic clock.
type ServiceFactory struct {
	Clock    *Clock
	Location *time.Location
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:    NewClock(time.Time{}),
		Location: time.UTC,
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.Location == nil {
		factory.Location = time.UTC
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithLocation overrides the time zone of the displayed week.
func WithLocation(loc *time.Location) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Location = loc
	}
}

// NewMemoryStore returns an in-memory store seeded with the default week.
func NewMemoryStore(tb testing.TB) *memory.Storage {
	tb.Helper()

	store := memory.New()
	if err := store.EnsureDefaultSchedules(context.Background()); err != nil {
		tb.Fatalf("failed to seed schedules: %v", err)
	}
	return store
}

// BookingServiceDeps captures dependencies for constructing a booking service.
type BookingServiceDeps struct {
	Schedules   application.ScheduleReader
	Bookings    application.BookingWriter
	SlotMinutes int
	Notifier    application.BookingNotifier
	Logger      *slog.Logger
}

// NewBookingService builds a booking service whose week and timestamps follow
// the factory clock.
func (f *ServiceFactory) NewBookingService(deps BookingServiceDeps) *application.BookingService {
	return application.NewBookingService(
		deps.Schedules,
		deps.Bookings,
		f.Clock.Provider(f.Location),
		f.Clock.NowFunc(),
		application.BookingServiceOptions{
			SlotMinutes: deps.SlotMinutes,
			Notifier:    deps.Notifier,
			Logger:      deps.Logger,
		},
	)
}

// ScheduleAdminServiceDeps captures dependencies for the admin service.
type ScheduleAdminServiceDeps struct {
	Schedules application.ScheduleStore
	Bookings  application.BookingLister
	Logger    *slog.Logger
}

// NewScheduleAdminService builds the admin service.
func (f *ServiceFactory) NewScheduleAdminService(deps ScheduleAdminServiceDeps) *application.ScheduleAdminService {
	return application.NewScheduleAdminService(deps.Schedules, deps.Bookings, deps.Logger)
}
