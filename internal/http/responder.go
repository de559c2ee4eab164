package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/example/barbershop-booking/internal/application"
)

var (
	errBadRequestBody = errors.New(msgBadRequest)
	errMissingDayName = errors.New("نام روز را مشخص کنید.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	var vErr *application.ValidationError
	switch {
	case errors.Is(err, application.ErrDayClosed):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{ErrorCode: "DAY_CLOSED", Message: "این روز تعطیل است."})
	case errors.Is(err, application.ErrFullyBooked):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{ErrorCode: "FULLY_BOOKED", Message: "همه زمان‌های این روز پر هستند."})
	case errors.Is(err, application.ErrSlotTaken):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{ErrorCode: "SLOT_TAKEN", Message: msgSlotTaken})
	case errors.As(err, &vErr):
		message := msgInvalidInput
		if text, ok := submitFailureMessage(err); ok {
			message = text
		}
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: validationErrorCode(err),
			Message:   message,
			Errors:    vErr.FieldErrors,
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{ErrorCode: "NOT_FOUND", Message: msgNotFound})
	case errors.Is(err, application.ErrUnauthorized), errors.Is(err, application.ErrInvalidCredentials):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{ErrorCode: "UNAUTHORIZED", Message: msgUnauthorized})
	default:
		r.loggerFor(ctx).ErrorContext(ctx, "unexpected service error", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: msgInternalError})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, application.ErrInvalidName):
		return "INVALID_NAME"
	case errors.Is(err, application.ErrInvalidPhone):
		return "INVALID_PHONE"
	case errors.Is(err, application.ErrInvalidSlot):
		return "INVALID_SLOT"
	case errors.Is(err, application.ErrInvalidSchedule):
		return "INVALID_SCHEDULE"
	default:
		return "VALIDATION_FAILED"
	}
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return msgBadRequest
	case http.StatusUnauthorized:
		return msgUnauthorized
	case http.StatusNotFound:
		return msgNotFound
	case http.StatusUnprocessableEntity:
		return msgInvalidInput
	case http.StatusTooManyRequests:
		return msgTooManyRequest
	default:
		return msgInternalError
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
