package transition_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/velvetspa/SPA-BookingService/internal/api/handlers"
	"github.com/velvetspa/SPA-BookingService/internal/api/middleware"
	bookingsService "github.com/velvetspa/SPA-BookingService/internal/service/bookings"
	"github.com/velvetspa/SPA-BookingService/internal/service/bookings/models"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgInvalidBody      = "некорректное тело запроса"
	msgUnknownAction    = "неизвестное действие"
	msgUnauthorized     = "требуется авторизация"
	msgStaffOnly        = "действие доступно только персоналу"
	msgBookingNotFound  = "бронирование не найдено"
	msgCannotCheckIn    = "нельзя отметить приход для этого бронирования"
	msgCannotCheckOut   = "нельзя отметить завершение визита для этого бронирования"
	msgCannotComplete   = "нельзя завершить это бронирование"
	msgCannotMarkNoShow = "нельзя отметить неявку для этого бронирования"
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

// Handle PATCH /api/v1/bookings/{bookingId}/transition
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}
	role := middleware.GetUserRole(r.Context())

	bookingID, err := strconv.ParseInt(mux.Vars(r)["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/transition - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req TransitionBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /bookings/{id}/transition - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBody)
		return
	}

	switch req.Action {
	case ActionCheckIn:
		err = h.service.CheckIn(r.Context(), bookingID, &models.CheckInRequest{
			RequesterID:   userID,
			RequesterRole: role,
		})
	case ActionCheckOut:
		err = h.service.CheckOut(r.Context(), bookingID, &models.CheckOutRequest{
			RequesterID:       userID,
			RequesterRole:     role,
			AdditionalCharges: req.AdditionalCharges,
			Tips:              req.Tips,
		})
	case ActionComplete:
		err = h.service.Complete(r.Context(), bookingID, &models.CompleteRequest{
			RequesterID:   userID,
			RequesterRole: role,
		})
	case ActionMarkNoShow:
		err = h.service.MarkNoShow(r.Context(), bookingID, &models.MarkNoShowRequest{
			RequesterID:   userID,
			RequesterRole: role,
		})
	default:
		h.logger.Warn("PATCH /bookings/{id}/transition - Unknown action: %s", req.Action)
		handlers.RespondBadRequest(w, msgUnknownAction)
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, bookingsService.ErrBookingNotFound):
			h.logger.Warn("PATCH /bookings/{id}/transition - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, bookingsService.ErrStaffOnly):
			h.logger.Warn("PATCH /bookings/{id}/transition - Staff only: booking_id=%d, user_id=%d", bookingID, userID)
			handlers.RespondForbidden(w, msgStaffOnly)

		case errors.Is(err, bookingsService.ErrCannotCheckIn):
			h.logger.Warn("PATCH /bookings/{id}/transition - Cannot check in: booking_id=%d", bookingID)
			handlers.RespondUnprocessable(w, msgCannotCheckIn)

		case errors.Is(err, bookingsService.ErrCannotCheckOut):
			h.logger.Warn("PATCH /bookings/{id}/transition - Cannot check out: booking_id=%d", bookingID)
			handlers.RespondUnprocessable(w, msgCannotCheckOut)

		case errors.Is(err, bookingsService.ErrCannotComplete):
			h.logger.Warn("PATCH /bookings/{id}/transition - Cannot complete: booking_id=%d", bookingID)
			handlers.RespondUnprocessable(w, msgCannotComplete)

		case errors.Is(err, bookingsService.ErrCannotMarkNoShow):
			h.logger.Warn("PATCH /bookings/{id}/transition - Cannot mark no-show: booking_id=%d", bookingID)
			handlers.RespondUnprocessable(w, msgCannotMarkNoShow)

		case errors.Is(err, bookingsService.ErrInvalidInput):
			h.logger.Warn("PATCH /bookings/{id}/transition - Invalid input: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("PATCH /bookings/{id}/transition - Failed: booking_id=%d, action=%s, error=%v",
				bookingID, req.Action, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	result, err := h.service.GetByID(r.Context(), bookingID, userID, role)
	if err != nil {
		h.logger.Error("PATCH /bookings/{id}/transition - Transitioned but failed to reload: booking_id=%d, error=%v",
			bookingID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("PATCH /bookings/{id}/transition - Booking transitioned: booking_id=%d, action=%s", bookingID, req.Action)
	handlers.RespondJSON(w, http.StatusOK, result)
}
