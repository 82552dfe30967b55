package get_client_bookings

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/velvetspa/SPA-BookingService/internal/api/handlers"
	"github.com/velvetspa/SPA-BookingService/internal/api/middleware"
	"github.com/velvetspa/SPA-BookingService/internal/domain"
	bookingsService "github.com/velvetspa/SPA-BookingService/internal/service/bookings"
	"github.com/velvetspa/SPA-BookingService/internal/service/bookings/models"
)

const (
	msgInvalidClientID  = "некорректный ID клиента"
	msgInvalidStatus    = "некорректный статус бронирования"
	msgInvalidStartDate = "некорректный формат startDate, ожидается YYYY-MM-DD"
	msgInvalidEndDate   = "некорректный формат endDate, ожидается YYYY-MM-DD"
	msgUnauthorized     = "требуется авторизация"
	msgAccessDenied     = "нет доступа к бронированиям этого клиента"
)

type Handler struct {
	service BookingsService
	logger  Logger
}

func NewHandler(service BookingsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/clients/{clientId}/bookings?status=&startDate=&endDate=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}
	role := middleware.GetUserRole(r.Context())

	clientID, err := strconv.ParseInt(mux.Vars(r)["clientId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /clients/{id}/bookings - Invalid client ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidClientID)
		return
	}

	req := &models.GetClientBookingsRequest{
		ClientID:      clientID,
		RequesterID:   userID,
		RequesterRole: role,
	}

	query := r.URL.Query()
	if status := query.Get("status"); status != "" {
		req.Status = &status
	}
	if raw := query.Get("startDate"); raw != "" {
		startDate, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			h.logger.Warn("GET /clients/{id}/bookings - Invalid start date: %v", err)
			handlers.RespondBadRequest(w, msgInvalidStartDate)
			return
		}
		req.StartDate = &startDate
	}
	if raw := query.Get("endDate"); raw != "" {
		endDate, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			h.logger.Warn("GET /clients/{id}/bookings - Invalid end date: %v", err)
			handlers.RespondBadRequest(w, msgInvalidEndDate)
			return
		}
		req.EndDate = &endDate
	}

	result, err := h.service.GetClientBookings(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, bookingsService.ErrAccessDenied):
			h.logger.Warn("GET /clients/{id}/bookings - Access denied: client_id=%d, user_id=%d", clientID, userID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, bookingsService.ErrInvalidInput):
			h.logger.Warn("GET /clients/{id}/bookings - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		default:
			h.logger.Error("GET /clients/{id}/bookings - Failed: client_id=%d, error=%v", clientID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /clients/{id}/bookings - %d bookings returned: client_id=%d", len(result.Bookings), clientID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
