package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/velvetspa/SPA-BookingService/internal/domain"
	bookingRepo "github.com/velvetspa/SPA-BookingService/internal/infra/storage/booking"
	"github.com/velvetspa/SPA-BookingService/internal/integrations/payments"
	"github.com/velvetspa/SPA-BookingService/internal/service/bookings/models"
)

// Service сервис жизненного цикла бронирований: чтение, отмена
// и операционные переходы (приход, завершение визита, неявка)
type Service struct {
	bookingRepo    BookingRepository
	paymentsClient PaymentsClient
	txManager      TransactionManager
	timeProvider   TimeProvider
	logger         Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	paymentsClient PaymentsClient,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:    bookingRepo,
		paymentsClient: paymentsClient,
		txManager:      txManager,
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
	}
}

// GetByID получает бронирование по ID
// Клиент может видеть только своё бронирование, персонал - любое
func (s *Service) GetByID(ctx context.Context, id int64, requesterID int64, requesterRole string) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, requesterID)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	forStaff := models.IsStaffRole(requesterRole)
	if !forStaff && booking.ClientID != requesterID {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", requesterID, id)
		return nil, ErrAccessDenied
	}

	s.logger.Info("GetByID: successfully fetched booking id=%d", id)
	return models.FromDomainBooking(booking, forStaff), nil
}

// GetClientBookings получает историю бронирований клиента с фильтрацией
// по статусу и периоду. Клиент видит только свою историю
func (s *Service) GetClientBookings(ctx context.Context, req *models.GetClientBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetClientBookings: fetching bookings for client=%d, requester=%d", req.ClientID, req.RequesterID)

	forStaff := models.IsStaffRole(req.RequesterRole)
	if !forStaff && req.ClientID != req.RequesterID {
		s.logger.Warn("GetClientBookings: access denied for user=%d to client=%d history", req.RequesterID, req.ClientID)
		return nil, ErrAccessDenied
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetClientBookings: invalid status filter for client=%d: %v", req.ClientID, err)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidStatus)
	}

	bookings, err := s.bookingRepo.GetByClientWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetClientBookings: repository error for client=%d: %v", req.ClientID, err)
		return nil, fmt.Errorf("%w: GetClientBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetClientBookings: successfully fetched %d bookings for client=%d", len(bookings), req.ClientID)
	return models.FromDomainBookingList(bookings, forStaff), nil
}

// Cancel отменяет бронирование
// Клиент может отменить только своё бронирование, персонал - любое.
// Отмена возможна из статусов pending/confirmed строго больше чем за 24 часа
// до визита. Суммы возврата и сбора приходят от вызывающей стороны
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) error {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d", bookingID, req.RequesterID)

	if req.RefundAmount < 0 || req.CancellationFee < 0 {
		return fmt.Errorf("%w: refundAmount and cancellationFee must not be negative", ErrInvalidInput)
	}

	now := s.timeProvider.Now()
	var cancelled *domain.Booking

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		booking, err := s.getForUpdate(txCtx, bookingID, "Cancel")
		if err != nil {
			return err
		}

		if !models.IsStaffRole(req.RequesterRole) && booking.ClientID != req.RequesterID {
			s.logger.Warn("Cancel: access denied for user=%d to booking id=%d", req.RequesterID, bookingID)
			return ErrAccessDenied
		}

		if !booking.CanBeCancelledAt(now) {
			s.logger.Warn("Cancel: booking id=%d cannot be cancelled, status=%s, hours until appointment=%.1f",
				bookingID, booking.Status, booking.HoursUntilAppointment(now))
			return ErrCannotCancel
		}

		// Возврат не может превышать итоговую сумму бронирования
		if req.RefundAmount > booking.FinalAmount {
			s.logger.Warn("Cancel: refund %.2f exceeds final amount %.2f for booking id=%d",
				req.RefundAmount, booking.FinalAmount, bookingID)
			return fmt.Errorf("%w: refundAmount exceeds final amount", ErrInvalidInput)
		}

		cancellation := domain.Cancellation{
			CancelledAt:     now,
			CancelledBy:     req.RequesterID,
			Reason:          req.Reason,
			RefundAmount:    req.RefundAmount,
			CancellationFee: req.CancellationFee,
		}

		if err := s.bookingRepo.Cancel(txCtx, bookingID, cancellation); err != nil {
			s.logger.Error("Cancel: repository error for booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
		}

		cancelled = booking
		return nil
	})

	if err != nil {
		return err
	}

	s.logger.Info("Cancel: successfully cancelled booking id=%d", bookingID)

	// Возврат средств по оплаченному бронированию - через платежный сервис
	// Его недоступность отмену не ломает
	if req.RefundAmount > 0 && (cancelled.PaymentStatus == domain.PaymentPaid || cancelled.PaymentStatus == domain.PaymentPartial) {
		refundErr := s.paymentsClient.RequestRefundWithGracefulDegradation(ctx, payments.RefundRequest{
			BookingID:     cancelled.ID,
			BookingNumber: cancelled.BookingNumber,
			Amount:        req.RefundAmount,
			Reason:        req.Reason,
		})
		if refundErr != nil {
			s.logger.Warn("Cancel: refund degraded for booking id=%d: %v", bookingID, refundErr)
		}
	}

	return nil
}

// CheckIn отмечает приход клиента. Только персонал
// Фиксирует ранний приход и время ожидания, переводит бронирование в in_progress
func (s *Service) CheckIn(ctx context.Context, bookingID int64, req *models.CheckInRequest) error {
	s.logger.Info("CheckIn: booking id=%d by user=%d", bookingID, req.RequesterID)

	if !models.IsStaffRole(req.RequesterRole) {
		s.logger.Warn("CheckIn: user=%d is not staff", req.RequesterID)
		return ErrStaffOnly
	}

	now := s.timeProvider.Now()

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		booking, err := s.getForUpdate(txCtx, bookingID, "CheckIn")
		if err != nil {
			return err
		}

		if !booking.CanCheckIn() {
			s.logger.Warn("CheckIn: booking id=%d cannot be checked in, status=%s", bookingID, booking.Status)
			return ErrCannotCheckIn
		}

		rec := domain.CheckInRecord{
			CheckedInAt: now,
			CheckedInBy: req.RequesterID,
		}

		// Приход раньше назначенного времени: фиксируем ожидание в минутах
		if now.Before(booking.AppointmentDate) {
			rec.IsEarlyArrival = true
			rec.WaitTimeMinutes = int(booking.AppointmentDate.Sub(now).Minutes())
		}

		if err := s.bookingRepo.SetCheckIn(txCtx, bookingID, rec, domain.StatusInProgress); err != nil {
			s.logger.Error("CheckIn: repository error for booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: CheckIn - repository error: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		return err
	}

	s.logger.Info("CheckIn: successfully checked in booking id=%d", bookingID)
	return nil
}

// CheckOut отмечает завершение визита. Только персонал
// Доп. услуги складываются в общую сумму, итоговая сумма пересчитывается
// и сохраняется тем же обновлением
func (s *Service) CheckOut(ctx context.Context, bookingID int64, req *models.CheckOutRequest) error {
	s.logger.Info("CheckOut: booking id=%d by user=%d", bookingID, req.RequesterID)

	if !models.IsStaffRole(req.RequesterRole) {
		s.logger.Warn("CheckOut: user=%d is not staff", req.RequesterID)
		return ErrStaffOnly
	}

	if req.AdditionalCharges < 0 || req.Tips < 0 {
		return fmt.Errorf("%w: additionalCharges and tips must not be negative", ErrInvalidInput)
	}

	now := s.timeProvider.Now()

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		booking, err := s.getForUpdate(txCtx, bookingID, "CheckOut")
		if err != nil {
			return err
		}

		if !booking.CanCheckOut() {
			s.logger.Warn("CheckOut: booking id=%d cannot be checked out, status=%s", bookingID, booking.Status)
			return ErrCannotCheckOut
		}

		rec := domain.CheckOutRecord{
			CheckedOutAt:          now,
			CheckedOutBy:          req.RequesterID,
			ActualDurationMinutes: int(now.Sub(booking.CheckIn.CheckedInAt).Minutes()),
			AdditionalCharges:     req.AdditionalCharges,
			Tips:                  req.Tips,
		}

		booking.TotalAmount += req.AdditionalCharges
		booking.RecalculateFinalAmount()

		if err := s.bookingRepo.SetCheckOut(txCtx, bookingID, rec, booking.TotalAmount, booking.FinalAmount); err != nil {
			s.logger.Error("CheckOut: repository error for booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: CheckOut - repository error: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		return err
	}

	s.logger.Info("CheckOut: successfully checked out booking id=%d", bookingID)
	return nil
}

// Complete завершает бронирование. Только персонал
// Разрешено из статусов confirmed и in_progress
func (s *Service) Complete(ctx context.Context, bookingID int64, req *models.CompleteRequest) error {
	s.logger.Info("Complete: booking id=%d by user=%d", bookingID, req.RequesterID)

	if !models.IsStaffRole(req.RequesterRole) {
		s.logger.Warn("Complete: user=%d is not staff", req.RequesterID)
		return ErrStaffOnly
	}

	var completed *domain.Booking

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		booking, err := s.getForUpdate(txCtx, bookingID, "Complete")
		if err != nil {
			return err
		}

		if !booking.CanBeCompleted() {
			s.logger.Warn("Complete: booking id=%d cannot be completed, status=%s", bookingID, booking.Status)
			return ErrCannotComplete
		}

		if err := s.bookingRepo.UpdateStatus(txCtx, bookingID, domain.StatusCompleted); err != nil {
			s.logger.Error("Complete: repository error for booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: Complete - repository error: %v", ErrInternal, err)
		}

		completed = booking
		return nil
	})

	if err != nil {
		return err
	}

	s.logger.Info("Complete: successfully completed booking id=%d", bookingID)

	// Оплаченное завершенное бронирование регистрируется в платежном сервисе
	if completed.PaymentStatus == domain.PaymentPaid {
		_, invErr := s.paymentsClient.CreateInvoiceWithGracefulDegradation(ctx, payments.Invoice{
			BookingID:     completed.ID,
			BookingNumber: completed.BookingNumber,
			ClientID:      completed.ClientID,
			Amount:        completed.FinalAmount,
			Currency:      "RUB",
		})
		if invErr != nil {
			s.logger.Warn("Complete: invoice registration degraded for booking id=%d: %v", bookingID, invErr)
		}
	}

	return nil
}

// MarkNoShow отмечает неявку клиента. Только персонал
// Разрешено из статусов pending/confirmed, без отметки прихода и только
// после наступления времени визита
func (s *Service) MarkNoShow(ctx context.Context, bookingID int64, req *models.MarkNoShowRequest) error {
	s.logger.Info("MarkNoShow: booking id=%d by user=%d", bookingID, req.RequesterID)

	if !models.IsStaffRole(req.RequesterRole) {
		s.logger.Warn("MarkNoShow: user=%d is not staff", req.RequesterID)
		return ErrStaffOnly
	}

	now := s.timeProvider.Now()

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		booking, err := s.getForUpdate(txCtx, bookingID, "MarkNoShow")
		if err != nil {
			return err
		}

		if !booking.CanBeMarkedNoShow(now) {
			s.logger.Warn("MarkNoShow: booking id=%d cannot be marked as no-show, status=%s", bookingID, booking.Status)
			return ErrCannotMarkNoShow
		}

		if err := s.bookingRepo.UpdateStatus(txCtx, bookingID, domain.StatusNoShow); err != nil {
			s.logger.Error("MarkNoShow: repository error for booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: MarkNoShow - repository error: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		return err
	}

	s.logger.Info("MarkNoShow: successfully marked booking id=%d as no-show", bookingID)
	return nil
}

// getForUpdate перечитывает бронирование внутри транзакции (FOR UPDATE)
func (s *Service) getForUpdate(ctx context.Context, bookingID int64, method string) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", method, bookingID)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", method, bookingID, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, method, err)
	}
	return booking, nil
}
