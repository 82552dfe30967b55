package reschedule_booking

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/velvetspa/SPA-BookingService/internal/api/handlers"
	"github.com/velvetspa/SPA-BookingService/internal/api/middleware"
	"github.com/velvetspa/SPA-BookingService/internal/domain"
	rescheduleBooking "github.com/velvetspa/SPA-BookingService/internal/usecase/reschedule_booking"
	"github.com/velvetspa/SPA-BookingService/pkg/types"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidBody        = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidTime        = "некорректный формат времени, ожидается HH:MM"
	msgUnauthorized       = "требуется авторизация"
	msgBookingNotFound    = "бронирование не найдено"
	msgAccessDenied       = "нет доступа к этому бронированию"
	msgInvalidStatus      = "бронирование в этом статусе нельзя перенести"
	msgTooLate            = "перенос возможен не позднее чем за 12 часов до визита"
	msgLimitReached       = "исчерпан лимит переносов бронирования"
	msgEmployeeNotWorking = "мастер не работает в выбранную дату"
	msgOutsideHours       = "выбранное время вне рабочих часов мастера"
	msgSlotTaken          = "выбранное время уже занято"
)

type Handler struct {
	useCase RescheduleBookingUseCase
	logger  Logger
}

func NewHandler(useCase RescheduleBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{bookingId}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}
	role := middleware.GetUserRole(r.Context())

	bookingID, err := strconv.ParseInt(mux.Vars(r)["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/reschedule - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req RescheduleBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /bookings/{id}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBody)
		return
	}

	newDate, err := time.Parse(domain.DateFormat, req.NewDate)
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/reschedule - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	newStartTime, err := types.NewTimeStringFromString(req.NewStartTime)
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/reschedule - Invalid time: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &rescheduleBooking.Request{
		BookingID:     bookingID,
		RequesterID:   userID,
		RequesterRole: role,
		NewDate:       newDate,
		NewStartTime:  newStartTime,
		Reason:        req.Reason,
	})
	if err != nil {
		switch {
		case errors.Is(err, rescheduleBooking.ErrBookingNotFound):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, rescheduleBooking.ErrForbidden):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Access denied: booking_id=%d, user_id=%d", bookingID, userID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, rescheduleBooking.ErrInvalidStatus):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Invalid status: booking_id=%d", bookingID)
			handlers.RespondUnprocessable(w, msgInvalidStatus)

		case errors.Is(err, rescheduleBooking.ErrTooLateToReschedule):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Too late: booking_id=%d", bookingID)
			handlers.RespondUnprocessable(w, msgTooLate)

		case errors.Is(err, rescheduleBooking.ErrRescheduleLimitReached):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Limit reached: booking_id=%d", bookingID)
			handlers.RespondUnprocessable(w, msgLimitReached)

		case errors.Is(err, rescheduleBooking.ErrEmployeeNotWorking):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Employee not working: booking_id=%d", bookingID)
			handlers.RespondUnprocessable(w, msgEmployeeNotWorking)

		case errors.Is(err, rescheduleBooking.ErrOutsideWorkingHours):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Outside working hours: booking_id=%d", bookingID)
			handlers.RespondUnprocessable(w, msgOutsideHours)

		case errors.Is(err, rescheduleBooking.ErrSlotNotAvailable):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Slot not available: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgSlotTaken)

		case errors.Is(err, rescheduleBooking.ErrDateInPast),
			errors.Is(err, rescheduleBooking.ErrInvalidInput):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Invalid input: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("PATCH /bookings/{id}/reschedule - Failed: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{id}/reschedule - Booking rescheduled: booking_id=%d, count=%d",
		bookingID, result.RescheduleCount)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
