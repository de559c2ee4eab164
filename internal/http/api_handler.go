package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/example/barbershop-booking/internal/application"
	"github.com/example/barbershop-booking/internal/persistence"
	"github.com/example/barbershop-booking/internal/slots"
)

// APIHandler exposes the customer flow as JSON.
type APIHandler struct {
	service   bookingService
	responder responder
	logger    *slog.Logger
}

func NewAPIHandler(service bookingService, logger *slog.Logger) *APIHandler {
	base := defaultLogger(logger)
	return &APIHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *APIHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "APIHandler", operation, attrs...)
}

// Week returns the seven days of the current week.
func (h *APIHandler) Week(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	week := h.service.ListWeek(r.Context())
	days := make([]weekDayDTO, 0, len(week))
	for _, day := range week {
		days = append(days, weekDayDTO{Name: day.Name, Date: day.Date.String()})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, weekResponse{Days: days})
}

// Slots lists the free slots for ?date=&day=.
func (h *APIHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	date := query.Get("date")
	dayName := query.Get("day")
	if dayName == "" {
		h.log(r.Context(), "Slots", "error_kind", "bad_request").WarnContext(r.Context(), "missing day name")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingDayName)
		return
	}

	available, err := h.service.SlotsForDay(r.Context(), date, dayName)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	labels := slots.Labels(available)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, slotsResponse{Date: date, DayName: dayName, Slots: labels})
}

// CreateBooking stores a booking from a JSON body.
func (h *APIHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "CreateBooking", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "CreateBooking", "date", req.Date, "time_slot", req.TimeSlot)
	booking, err := h.service.Submit(r.Context(), application.SubmitBookingParams{
		Name:     req.Name,
		Phone:    req.Phone,
		Date:     req.Date,
		TimeSlot: req.TimeSlot,
	})
	if err != nil {
		logger.InfoContext(r.Context(), "booking rejected", "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("booking_id", booking.ID).InfoContext(r.Context(), "booking created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, bookingResponse{
		Booking: toBookingDTO(booking),
		Message: bookingCreatedMessage(booking.ID),
	})
}

type weekDayDTO struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

type weekResponse struct {
	Days []weekDayDTO `json:"days"`
}

type slotsResponse struct {
	Date    string   `json:"date"`
	DayName string   `json:"day_name"`
	Slots   []string `json:"slots"`
}

type bookingRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Date     string `json:"date"`
	TimeSlot string `json:"time_slot"`
}

type bookingDTO struct {
	ID            int64     `json:"id"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	Date          string    `json:"date"`
	TimeSlot      string    `json:"time_slot"`
	CreatedAt     time.Time `json:"created_at"`
}

type bookingResponse struct {
	Booking bookingDTO `json:"booking"`
	Message string     `json:"message,omitempty"`
}

type bookingListResponse struct {
	Bookings []bookingDTO `json:"bookings"`
}

func toBookingDTO(b persistence.Booking) bookingDTO {
	return bookingDTO{
		ID:            b.ID,
		CustomerName:  b.CustomerName,
		CustomerPhone: b.CustomerPhone,
		Date:          b.Date.String(),
		TimeSlot:      b.Slot.Label(),
		CreatedAt:     b.CreatedAt,
	}
}
