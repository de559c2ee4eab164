package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/barbershop-booking/internal/application"
	"github.com/example/barbershop-booking/internal/calendar"
	"github.com/example/barbershop-booking/internal/persistence"
	"github.com/example/barbershop-booking/internal/slots"
)

type bookingService interface {
	ListWeek(ctx context.Context) []calendar.WeekDay
	SlotsForDay(ctx context.Context, date, dayName string) ([]slots.Slot, error)
	Submit(ctx context.Context, params application.SubmitBookingParams) (persistence.Booking, error)
}

// PageHandler serves the customer facing HTML routes.
type PageHandler struct {
	service  bookingService
	renderer *Renderer
	flashes  *FlashStore
	logger   *slog.Logger
}

func NewPageHandler(service bookingService, renderer *Renderer, flashes *FlashStore, logger *slog.Logger) *PageHandler {
	return &PageHandler{service: service, renderer: renderer, flashes: flashes, logger: defaultLogger(logger)}
}

func (h *PageHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "PageHandler", operation, attrs...)
}

// Index renders the current week.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil || h.renderer == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	page := IndexPage{
		Week:    h.service.ListWeek(r.Context()),
		Flashes: h.flashes.Pop(w, r),
	}
	h.render(w, r, "Index", page)
}

// Book renders the free slots of one day. The wildcard holds
// "<date>/<day name>" where the date itself may contain slashes.
func (h *PageHandler) Book(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil || h.renderer == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	date, dayName, ok := splitBookPath(chi.URLParam(r, "*"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	logger := h.log(r.Context(), "Book", "date", date, "day_name", dayName)
	available, err := h.service.SlotsForDay(r.Context(), date, dayName)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrDayClosed):
			h.redirectWithFlash(w, r, Flash{Message: dayClosedMessage(dayName)})
		case errors.Is(err, application.ErrFullyBooked):
			h.redirectWithFlash(w, r, Flash{Message: fullyBookedMessage(dayName, date)})
		case errors.Is(err, application.ErrInvalidSlot):
			h.redirectWithFlash(w, r, Flash{Message: application.MessageInvalidSlot})
		default:
			logger.ErrorContext(r.Context(), "failed to load slots", "error", err, "error_kind", application.ErrorKind(err))
			http.Error(w, msgInternalError, http.StatusInternalServerError)
		}
		return
	}

	selected := date
	if parsed, parseErr := calendar.ParseDate(date); parseErr == nil {
		selected = parsed.String()
	}
	h.render(w, r, "Book", IndexPage{
		Week:         h.service.ListWeek(r.Context()),
		SelectedDate: selected,
		DayName:      dayName,
		Slots:        available,
		Flashes:      h.flashes.Pop(w, r),
	})
}

// Submit accepts the booking form and always redirects back to the index.
func (h *PageHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.log(r.Context(), "Submit", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to parse booking form", "error", err)
		http.Error(w, msgBadRequest, http.StatusBadRequest)
		return
	}

	params := application.SubmitBookingParams{
		Name:     r.PostFormValue("name"),
		Phone:    r.PostFormValue("phone"),
		Date:     r.PostFormValue("date"),
		TimeSlot: r.PostFormValue("time_slot"),
	}
	logger := h.log(r.Context(), "Submit", "date", params.Date, "time_slot", params.TimeSlot)

	booking, err := h.service.Submit(r.Context(), params)
	if err != nil {
		if msg, ok := submitFailureMessage(err); ok {
			h.redirectWithFlash(w, r, Flash{Message: msg})
			return
		}
		logger.ErrorContext(r.Context(), "booking submission failed", "error", err, "error_kind", application.ErrorKind(err))
		http.Error(w, msgInternalError, http.StatusInternalServerError)
		return
	}

	logger.With("booking_id", booking.ID).InfoContext(r.Context(), "booking submitted")
	h.redirectWithFlash(w, r, Flash{Category: FlashCategorySuccess, Message: bookingCreatedMessage(booking.ID)})
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, operation string, page IndexPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.RenderIndex(w, page); err != nil {
		h.log(r.Context(), operation).ErrorContext(r.Context(), "failed to render page", "error", err)
		http.Error(w, msgInternalError, http.StatusInternalServerError)
	}
}

func (h *PageHandler) redirectWithFlash(w http.ResponseWriter, r *http.Request, flash Flash) {
	h.flashes.Add(w, r, flash)
	http.Redirect(w, r, "/", http.StatusFound)
}

func splitBookPath(raw string) (date, dayName string, ok bool) {
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	raw = strings.TrimPrefix(raw, "/")
	idx := strings.LastIndex(raw, "/")
	if idx <= 0 || idx == len(raw)-1 {
		return "", "", false
	}
	return raw[:idx], raw[idx+1:], true
}
