package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/barbershop-booking/internal/calendar"
	"github.com/example/barbershop-booking/internal/persistence"
	"github.com/example/barbershop-booking/internal/persistence/sqlite/migration"
	"github.com/example/barbershop-booking/internal/slots"
)

func openTestStorage(t *testing.T) *Storage {
	t.Helper()

	storage, err := Open(migration.TempFileTestSQLiteConfig(filepath.Join(t.TempDir(), "booking.db")))
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })
	require.NoError(t, storage.Migrate(context.Background(), nil))
	return storage
}

func TestMigrateIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storage := openTestStorage(t)

	closed := persistence.DaySchedule{DayName: "جمعه", IsOpen: false, StartTime: slots.Clock(10, 0), EndTime: slots.Clock(14, 0)}
	require.NoError(t, storage.UpdateDaySchedule(ctx, closed))

	require.NoError(t, storage.Migrate(ctx, nil))

	got, err := storage.GetDaySchedule(ctx, "جمعه")
	require.NoError(t, err)
	assert.Equal(t, closed, got, "re-seeding must not overwrite existing rows")

	all, err := storage.ListDaySchedules(ctx)
	require.NoError(t, err)
	require.Len(t, all, 7)
	for i, schedule := range all {
		assert.Equal(t, calendar.WeekdayNames()[i], schedule.DayName)
	}
}

func TestBookingUniqueSlot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storage := openTestStorage(t)
	date := calendar.Date{Year: 1404, Month: 1, Day: 1}
	slot := slots.Slot{Start: slots.Clock(9, 0), End: slots.Clock(9, 30)}

	created, err := storage.CreateBooking(ctx, persistence.Booking{
		CustomerName:  "Ali Rezaei",
		CustomerPhone: "09121234567",
		Date:          date,
		Slot:          slot,
		CreatedAt:     time.Date(2025, 3, 21, 8, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Positive(t, created.ID)

	_, err = storage.CreateBooking(ctx, persistence.Booking{
		CustomerName:  "Sara Ahmadi",
		CustomerPhone: "09351234567",
		Date:          date,
		Slot:          slot,
	})
	assert.ErrorIs(t, err, persistence.ErrDuplicate)

	count, err := storage.CountBookings(ctx, date, slot)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	listed, err := storage.ListBookings(ctx, persistence.BookingFilter{Date: &date})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, created, listed[0])
}

func TestConcurrentBookingsForOneSlot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storage := openTestStorage(t)
	date := calendar.Date{Year: 1404, Month: 2, Day: 10}
	slot := slots.Slot{Start: slots.Clock(11, 0), End: slots.Clock(11, 30)}

	const attempts = 8
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		succeeded  int
		unexpected []error
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := storage.CreateBooking(ctx, persistence.Booking{
				CustomerName:  fmt.Sprintf("Customer Number%d", i),
				CustomerPhone: fmt.Sprintf("0912000000%d", i),
				Date:          date,
				Slot:          slot,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case !errors.Is(err, persistence.ErrDuplicate):
				unexpected = append(unexpected, err)
			}
		}(i)
	}
	wg.Wait()

	assert.Empty(t, unexpected)
	assert.Equal(t, 1, succeeded)
}

func TestErrorMapper(t *testing.T) {
	t.Parallel()

	mapper := NewErrorMapper()
	assert.Nil(t, mapper.MapError(nil))
	assert.ErrorIs(t, mapper.MapError(errors.New("UNIQUE constraint failed: bookings.booking_date")), persistence.ErrDuplicate)
	assert.ErrorIs(t, mapper.MapError(errors.New("NOT NULL constraint failed: bookings.customer_name")), persistence.ErrConstraintViolation)
	assert.ErrorIs(t, mapper.MapError(errors.New("database is locked")), errLocked)

	other := errors.New("disk I/O error")
	assert.Equal(t, other, mapper.MapError(other))
}

func TestRetryHelperStopsOnPermanentError(t *testing.T) {
	t.Parallel()

	helper := NewRetryHelper(RetryConfig{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 1})

	calls := 0
	err := helper.WithRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = helper.WithRetry(context.Background(), func() error {
		calls++
		return errors.New("UNIQUE constraint failed: x")
	})
	assert.ErrorIs(t, err, persistence.ErrDuplicate)
	assert.Equal(t, 1, calls)
}
