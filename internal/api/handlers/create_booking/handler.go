package create_booking

import (
	"errors"
	"net/http"

	"github.com/velvetspa/SPA-BookingService/internal/api/handlers"
	"github.com/velvetspa/SPA-BookingService/internal/api/middleware"
	"github.com/velvetspa/SPA-BookingService/internal/service/bookings/models"
	createBooking "github.com/velvetspa/SPA-BookingService/internal/usecase/create_booking"
)

const (
	msgInvalidBody        = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgUnauthorized       = "требуется авторизация"
	msgForbiddenClient    = "нельзя создать бронирование для другого клиента"
	msgEmployeeNotFound   = "мастер не найден"
	msgEmployeeInactive   = "мастер недоступен для записи"
	msgServiceNotFound    = "услуга не найдена"
	msgServiceInactive    = "услуга недоступна для записи"
	msgEmployeeNotWorking = "мастер не работает в выбранную дату"
	msgOutsideHours       = "выбранное время вне рабочих часов мастера"
	msgSlotTaken          = "выбранное время уже занято"
	msgTryAgainLater      = "не удалось создать бронирование, попробуйте ещё раз"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}
	role := middleware.GetUserRole(r.Context())

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBody)
		return
	}

	// Клиент создаёт бронирования только на себя, персонал - на любого клиента
	if req.ClientID == 0 {
		req.ClientID = userID
	}
	if req.ClientID != userID && !models.IsStaffRole(role) {
		h.logger.Warn("POST /bookings - Client %d attempted to book for client %d", userID, req.ClientID)
		handlers.RespondForbidden(w, msgForbiddenClient)
		return
	}

	ucReq, err := req.ToUseCaseRequest(role)
	if err != nil {
		h.logger.Warn("POST /bookings - Invalid date or time format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), ucReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrEmployeeNotFound):
			h.logger.Warn("POST /bookings - Employee not found: %v", err)
			handlers.RespondNotFound(w, msgEmployeeNotFound)

		case errors.Is(err, createBooking.ErrServiceNotFound):
			h.logger.Warn("POST /bookings - Service not found: %v", err)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createBooking.ErrEmployeeInactive):
			h.logger.Warn("POST /bookings - Employee inactive: %v", err)
			handlers.RespondUnprocessable(w, msgEmployeeInactive)

		case errors.Is(err, createBooking.ErrServiceInactive):
			h.logger.Warn("POST /bookings - Service inactive: %v", err)
			handlers.RespondUnprocessable(w, msgServiceInactive)

		case errors.Is(err, createBooking.ErrEmployeeNotWorking):
			h.logger.Warn("POST /bookings - Employee not working: %v", err)
			handlers.RespondUnprocessable(w, msgEmployeeNotWorking)

		case errors.Is(err, createBooking.ErrOutsideWorkingHours):
			h.logger.Warn("POST /bookings - Outside working hours: %v", err)
			handlers.RespondUnprocessable(w, msgOutsideHours)

		case errors.Is(err, createBooking.ErrSlotNotAvailable):
			h.logger.Warn("POST /bookings - Slot not available: client_id=%d", req.ClientID)
			handlers.RespondConflict(w, msgSlotTaken)

		case errors.Is(err, createBooking.ErrNumberRetriesExhausted):
			h.logger.Error("POST /bookings - Number retries exhausted: client_id=%d", req.ClientID)
			handlers.RespondConflict(w, msgTryAgainLater)

		case errors.Is(err, createBooking.ErrDateInPast),
			errors.Is(err, createBooking.ErrLinesOverlap),
			errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /bookings - Failed to create booking: client_id=%d, error=%v", req.ClientID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created: id=%d, number=%s, client_id=%d",
		result.ID, result.BookingNumber, result.ClientID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
