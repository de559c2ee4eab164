package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/barbershop-booking/internal/calendar"
	"github.com/example/barbershop-booking/internal/persistence"
	"github.com/example/barbershop-booking/internal/slots"
)

// BookingRepository implements persistence.BookingRepository on the bookings
// table. Dates are stored as YYYY/MM/DD and slots as their labels.
type BookingRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
	retry  *RetryHelper
	now    func() time.Time
}

// NewBookingRepository returns a repository backed by pool.
func NewBookingRepository(pool *ConnectionPool) *BookingRepository {
	return &BookingRepository{
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		retry:  NewRetryHelper(DefaultRetryConfig()),
		now:    time.Now,
	}
}

// CountBookings counts bookings holding slot on date.
func (r *BookingRepository) CountBookings(ctx context.Context, date calendar.Date, slot slots.Slot) (int, error) {
	const query = `SELECT COUNT(*) FROM bookings WHERE booking_date = ? AND booking_time = ?`

	var count int
	if err := r.helper.QueryRow(ctx, query, date.String(), slot.Label()).Scan(&count); err != nil {
		return 0, r.mapper.MapError(err)
	}
	return count, nil
}

// CreateBooking inserts the booking. The unique index on (booking_date,
// booking_time) turns a concurrent double booking into persistence.ErrDuplicate.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking persistence.Booking) (persistence.Booking, error) {
	if booking.CustomerName == "" || booking.CustomerPhone == "" || booking.Date.IsZero() {
		return persistence.Booking{}, persistence.ErrConstraintViolation
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = r.now()
	}
	booking.CreatedAt = booking.CreatedAt.UTC().Truncate(time.Second)

	const query = `
		INSERT INTO bookings (customer_name, customer_phone, booking_date, booking_time, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	err := r.retry.WithRetry(ctx, func() error {
		result, err := r.helper.Exec(ctx, query,
			booking.CustomerName,
			booking.CustomerPhone,
			booking.Date.String(),
			booking.Slot.Label(),
			booking.CreatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return err
		}
		booking.ID, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return persistence.Booking{}, err
	}
	return booking, nil
}

// ListBookings returns bookings ordered by date, slot and identifier.
func (r *BookingRepository) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	query := `SELECT id, customer_name, customer_phone, booking_date, booking_time, created_at FROM bookings`
	var args []any
	if filter.Date != nil {
		query += ` WHERE booking_date = ?`
		args = append(args, filter.Date.String())
	}
	query += ` ORDER BY booking_date, booking_time, id`

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return bookings, nil
}

func scanBooking(row rowScanner) (persistence.Booking, error) {
	var (
		booking                     persistence.Booking
		dateStr, slotStr, createdAt string
	)
	if err := row.Scan(&booking.ID, &booking.CustomerName, &booking.CustomerPhone, &dateStr, &slotStr, &createdAt); err != nil {
		return persistence.Booking{}, err
	}

	var err error
	if booking.Date, err = calendar.ParseDate(dateStr); err != nil {
		return persistence.Booking{}, fmt.Errorf("booking %d date: %w", booking.ID, err)
	}
	if booking.Slot, err = slots.ParseSlot(slotStr); err != nil {
		return persistence.Booking{}, fmt.Errorf("booking %d slot: %w", booking.ID, err)
	}
	if booking.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.Booking{}, fmt.Errorf("booking %d created_at: %w", booking.ID, err)
	}
	return booking, nil
}

// parseTimestamp accepts RFC 3339 and the CURRENT_TIMESTAMP column default.
func parseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateTime, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
