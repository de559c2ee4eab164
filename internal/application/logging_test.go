package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/example/barbershop-booking/internal/logging"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}

	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestServiceLoggerPrefersContextLogger(t *testing.T) {
	t.Parallel()

	var base, scoped bytes.Buffer
	baseLogger := slog.New(slog.NewTextHandler(&base, nil))
	ctx := logging.ContextWithLogger(context.Background(), slog.New(slog.NewTextHandler(&scoped, nil)))

	serviceLogger(ctx, baseLogger, "BookingService", "Submit", "date", "1403/07/25").Info("hello")

	if base.Len() != 0 {
		t.Fatalf("expected base logger to stay unused, got %q", base.String())
	}
	line := scoped.String()
	for _, want := range []string{"service=BookingService", "operation=Submit", "date=1403/07/25"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{err: nil, want: ""},
		{err: ErrDayClosed, want: "day_closed"},
		{err: ErrFullyBooked, want: "fully_booked"},
		{err: newValidationError(ErrInvalidName, "name", MessageInvalidName), want: "invalid_name"},
		{err: newValidationError(ErrInvalidPhone, "phone", MessageInvalidPhone), want: "invalid_phone"},
		{err: newValidationError(ErrInvalidSlot, "time_slot", MessageInvalidSlot), want: "invalid_slot"},
		{err: fmt.Errorf("insert: %w", ErrSlotTaken), want: "slot_taken"},
		{err: &ValidationError{Kind: ErrInvalidSchedule}, want: "invalid_schedule"},
		{err: &ValidationError{}, want: "validation"},
		{err: ErrNotFound, want: "not_found"},
		{err: ErrInvalidCredentials, want: "unauthorized"},
		{err: errors.New("disk full"), want: "unexpected"},
	}

	for _, tc := range tests {
		if got := ErrorKind(tc.err); got != tc.want {
			t.Fatalf("ErrorKind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
