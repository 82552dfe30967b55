package reschedule_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/velvetspa/SPA-BookingService/internal/domain"
	bookingRepo "github.com/velvetspa/SPA-BookingService/internal/infra/storage/booking"
	employeeRepo "github.com/velvetspa/SPA-BookingService/internal/infra/storage/employee"
	"github.com/velvetspa/SPA-BookingService/internal/service/bookings/models"
)

// UseCase use case для переноса бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	employeeRepo EmployeeRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	employeeRepo EmployeeRepository,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		employeeRepo: employeeRepo,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case переноса бронирования
// Проверка доступности нового окна и сдвиг строк выполняются в одной
// сериализуемой транзакции; бронирование перечитывается под блокировкой,
// условия переноса проверяются заново по свежему состоянию
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleBooking: booking=%d, requester=%d, newDate=%s %s",
		req.BookingID, req.RequesterID, req.NewDate.Format(domain.DateFormat), req.NewStartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Новая дата не в прошлом
	if err := validateDateNotInPast(req.NewDate, now); err != nil {
		uc.logger.Warn("RescheduleBooking: date validation failed: %v", err)
		return nil, err
	}

	var result *domain.Booking

	// 4. Переносим в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 4.1. Перечитываем бронирование под блокировкой
		booking, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				uc.logger.Warn("RescheduleBooking: booking id=%d not found", req.BookingID)
				return ErrBookingNotFound
			}
			uc.logger.Error("RescheduleBooking: failed to get booking id=%d: %v", req.BookingID, err)
			return fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
		}

		// 4.2. Переносить чужое бронирование может только персонал
		if !models.IsStaffRole(req.RequesterRole) && booking.ClientID != req.RequesterID {
			uc.logger.Warn("RescheduleBooking: client id=%d tried to reschedule booking id=%d of client id=%d",
				req.RequesterID, booking.ID, booking.ClientID)
			return ErrForbidden
		}

		// 4.3. Условия переноса: статус, лимит переносов, строго больше 12 часов до визита
		if err := validateGuards(booking, now); err != nil {
			uc.logger.Warn("RescheduleBooking: guard failed for booking id=%d: %v", booking.ID, err)
			return err
		}

		// 4.4. Вычисляем сдвиг и новые времена строк
		newAppointmentAt, err := req.NewStartTime.At(req.NewDate)
		if err != nil {
			return fmt.Errorf("%w: newStartTime: %v", ErrInvalidInput, err)
		}
		delta := newAppointmentAt.Sub(booking.AppointmentDate)

		shifted := make([]domain.ServiceLine, len(booking.Services))
		for i, line := range booking.Services {
			line.StartTime = line.StartTime.Add(delta)
			line.EndTime = line.EndTime.Add(delta)
			shifted[i] = line
		}

		// 4.5. Проверяем новые времена против рабочих окон мастеров
		if err := uc.validateAgainstWindows(txCtx, req.NewDate, shifted); err != nil {
			return err
		}

		// 4.6. Проверяем занятость новых окон под блокировкой, строки самого
		// переносимого бронирования не считаются конфликтом
		if err := uc.checkAvailability(txCtx, booking.ID, req.NewDate, shifted); err != nil {
			return err
		}

		// 4.7. Собираем запись о переносе и применяем изменения
		originalDate := booking.AppointmentDate
		booking.Services = shifted
		booking.AppointmentDate = newAppointmentAt
		booking.Reschedule = &domain.Reschedule{
			OriginalDate:    originalDate,
			RescheduledAt:   now,
			RescheduledBy:   req.RequesterID,
			Reason:          req.Reason,
			RescheduleCount: booking.RescheduleCount() + 1,
		}

		if err := uc.bookingRepo.ApplyReschedule(txCtx, booking); err != nil {
			uc.logger.Error("RescheduleBooking: failed to apply reschedule for booking id=%d: %v", booking.ID, err)
			return fmt.Errorf("%w: failed to apply reschedule: %v", ErrInternal, err)
		}

		result = booking
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("RescheduleBooking: booking id=%d rescheduled to %s, count=%d",
		result.ID, result.AppointmentDate.Format(domain.DateFormat), result.Reschedule.RescheduleCount)

	return &Response{
		ID:              result.ID,
		BookingNumber:   result.BookingNumber,
		AppointmentDate: result.AppointmentDate,
		OriginalDate:    result.Reschedule.OriginalDate,
		RescheduleCount: result.Reschedule.RescheduleCount,
		Status:          string(result.Status),
		UpdatedAt:       result.UpdatedAt,
	}, nil
}

// validateAgainstWindows проверяет, что сдвинутые строки лежат в рабочих окнах
// мастеров на новую дату
func (uc *UseCase) validateAgainstWindows(ctx context.Context, date time.Time, lines []domain.ServiceLine) error {
	windows := make(map[int64]*domain.WorkingWindow)

	for i := range lines {
		line := &lines[i]

		window, ok := windows[line.EmployeeID]
		if !ok {
			emp, err := uc.employeeRepo.GetByID(ctx, line.EmployeeID)
			if err != nil {
				if errors.Is(err, employeeRepo.ErrEmployeeNotFound) {
					uc.logger.Warn("RescheduleBooking: employee id=%d not found", line.EmployeeID)
					return ErrEmployeeNotFound
				}
				uc.logger.Error("RescheduleBooking: failed to get employee id=%d: %v", line.EmployeeID, err)
				return fmt.Errorf("%w: failed to get employee: %v", ErrInternal, err)
			}

			window, err = domain.WorkingWindowFor(emp, date)
			if err != nil {
				uc.logger.Error("RescheduleBooking: corrupt schedule for employee id=%d, date=%s: %v",
					line.EmployeeID, date.Format(domain.DateFormat), err)
				return ErrScheduleCorrupt
			}
			if window == nil {
				uc.logger.Warn("RescheduleBooking: employee id=%d does not work on %s",
					line.EmployeeID, date.Format(domain.DateFormat))
				return ErrEmployeeNotWorking
			}

			windows[line.EmployeeID] = window
		}

		if line.StartTime.Before(window.Start) || line.EndTime.After(window.End) {
			uc.logger.Warn("RescheduleBooking: line %s-%s is outside working hours of employee id=%d",
				line.StartTime.Format(domain.TimeFormat), line.EndTime.Format(domain.TimeFormat), line.EmployeeID)
			return ErrOutsideWorkingHours
		}
	}

	return nil
}

// checkAvailability проверяет занятость новых окон, игнорируя строки
// самого переносимого бронирования
func (uc *UseCase) checkAvailability(ctx context.Context, bookingID int64, date time.Time, lines []domain.ServiceLine) error {
	seen := make(map[int64]bool)

	for i := range lines {
		employeeID := lines[i].EmployeeID
		if seen[employeeID] {
			continue
		}
		seen[employeeID] = true

		committed, err := uc.bookingRepo.GetCommittedLines(ctx, employeeID, date)
		if err != nil {
			uc.logger.Error("RescheduleBooking: failed to get committed lines for employee id=%d: %v", employeeID, err)
			return fmt.Errorf("%w: failed to get committed lines: %v", ErrInternal, err)
		}

		// Строки переносимого бронирования не блокируют его же перенос
		others := committed[:0:0]
		for _, c := range committed {
			if c.BookingID != bookingID {
				others = append(others, c)
			}
		}

		if !committedLinesConsistent(others) {
			uc.logger.Error("RescheduleBooking: committed lines overlap for employee id=%d, date=%s",
				employeeID, date.Format(domain.DateFormat))
			return ErrDataIntegrity
		}

		for j := range lines {
			line := &lines[j]
			if line.EmployeeID != employeeID {
				continue
			}
			if overlapsCommitted(line.StartTime, line.EndTime, others) {
				uc.logger.Warn("RescheduleBooking: slot %s-%s already taken for employee id=%d",
					line.StartTime.Format(domain.TimeFormat), line.EndTime.Format(domain.TimeFormat), employeeID)
				return ErrSlotNotAvailable
			}
		}
	}

	return nil
}
