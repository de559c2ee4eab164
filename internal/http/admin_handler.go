package http

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/example/barbershop-booking/internal/application"
	"github.com/example/barbershop-booking/internal/export"
	"github.com/example/barbershop-booking/internal/persistence"
)

type scheduleAdminService interface {
	ListSchedules(ctx context.Context) ([]persistence.DaySchedule, error)
	UpdateSchedule(ctx context.Context, params application.UpdateScheduleParams) (persistence.DaySchedule, error)
	ListBookings(ctx context.Context, date string) ([]persistence.Booking, error)
}

// AdminHandler serves the owner endpoints mounted behind RequireAdmin.
type AdminHandler struct {
	service   scheduleAdminService
	location  *time.Location
	responder responder
	logger    *slog.Logger
}

// NewAdminHandler builds the handler. loc is used for timestamps in exports.
func NewAdminHandler(service scheduleAdminService, loc *time.Location, logger *slog.Logger) *AdminHandler {
	base := defaultLogger(logger)
	if loc == nil {
		loc = time.UTC
	}
	return &AdminHandler{service: service, location: loc, responder: newResponder(base), logger: base}
}

func (h *AdminHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AdminHandler", operation, attrs...)
}

func (h *AdminHandler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	schedules, err := h.service.ListSchedules(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]scheduleDTO, 0, len(schedules))
	for _, schedule := range schedules {
		dtos = append(dtos, toScheduleDTO(schedule))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, scheduleListResponse{Schedules: dtos})
}

func (h *AdminHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	dayName := chi.URLParam(r, "day")
	if unescaped, err := url.PathUnescape(dayName); err == nil {
		dayName = unescaped
	}
	if strings.TrimSpace(dayName) == "" {
		h.log(r.Context(), "UpdateSchedule", "error_kind", "bad_request").ErrorContext(r.Context(), "missing day name for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingDayName)
		return
	}

	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "UpdateSchedule", "day_name", dayName, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode schedule update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	schedule, err := h.service.UpdateSchedule(r.Context(), application.UpdateScheduleParams{
		DayName:   dayName,
		IsOpen:    req.IsOpen,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "UpdateSchedule", "day_name", dayName).InfoContext(r.Context(), "schedule updated by admin")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, scheduleResponse{Schedule: toScheduleDTO(schedule)})
}

// ListBookings returns all bookings, or those on ?date= when given.
func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookings, err := h.service.ListBookings(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]bookingDTO, 0, len(bookings))
	for _, booking := range bookings {
		dtos = append(dtos, toBookingDTO(booking))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingListResponse{Bookings: dtos})
}

// ExportBookings streams the bookings, optionally filtered by ?date=, as an
// Excel workbook.
func (h *AdminHandler) ExportBookings(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "ExportBookings")
	bookings, err := h.service.ListBookings(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteBookings(&buf, bookings, h.location); err != nil {
		logger.ErrorContext(r.Context(), "failed to build workbook", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="bookings.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.WarnContext(r.Context(), "failed to write workbook", "error", err)
		return
	}
	logger.InfoContext(r.Context(), "bookings exported", "count", len(bookings))
}

type scheduleDTO struct {
	DayName   string `json:"day_name"`
	IsOpen    bool   `json:"is_open"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type scheduleRequest struct {
	IsOpen    bool   `json:"is_open"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type scheduleResponse struct {
	Schedule scheduleDTO `json:"schedule"`
}

type scheduleListResponse struct {
	Schedules []scheduleDTO `json:"schedules"`
}

func toScheduleDTO(s persistence.DaySchedule) scheduleDTO {
	return scheduleDTO{
		DayName:   s.DayName,
		IsOpen:    s.IsOpen,
		StartTime: s.StartTime.String(),
		EndTime:   s.EndTime.String(),
	}
}
