package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/velvetspa/SPA-BookingService/internal/domain"
	bookingRepo "github.com/velvetspa/SPA-BookingService/internal/infra/storage/booking"
	employeeRepo "github.com/velvetspa/SPA-BookingService/internal/infra/storage/employee"
	"github.com/velvetspa/SPA-BookingService/internal/integrations/payments"
)

// maxNumberAttempts количество попыток создать бронирование при коллизии номера
// Номер берется заново у нумератора, вся транзакция повторяется
const maxNumberAttempts = 3

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo    BookingRepository
	employeeRepo   EmployeeRepository
	catalogRepo    CatalogRepository
	sequencer      Sequencer
	paymentsClient PaymentsClient
	txManager      TransactionManager
	timeProvider   TimeProvider
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	employeeRepo EmployeeRepository,
	catalogRepo CatalogRepository,
	sequencer Sequencer,
	paymentsClient PaymentsClient,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:    bookingRepo,
		employeeRepo:   employeeRepo,
		catalogRepo:    catalogRepo,
		sequencer:      sequencer,
		paymentsClient: paymentsClient,
		txManager:      txManager,
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
	}
}

// Execute выполняет use case создания бронирования
// Проверка доступности окон и вставка выполняются в одной сериализуемой
// транзакции: два конкурентных запроса на пересекающиеся окна одного мастера
// не могут оба завершиться успехом
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: client=%d, date=%s, lines=%d",
		req.ClientID, req.AppointmentDate.Format(domain.DateFormat), len(req.Lines))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Дата визита не в прошлом
	if err := validateDateNotInPast(req.AppointmentDate, now); err != nil {
		uc.logger.Warn("CreateBooking: date validation failed: %v", err)
		return nil, err
	}

	// 4. Получаем услуги из каталога
	servicesByID, err := uc.loadServices(ctx, req)
	if err != nil {
		return nil, err
	}

	// 5. Получаем мастеров и резолвим их рабочие окна на дату
	windowsByEmployee, err := uc.loadWorkingWindows(ctx, req)
	if err != nil {
		return nil, err
	}

	// 6. Строим строки бронирования и проверяем их против рабочих окон
	lines, err := uc.buildLines(req, servicesByID, windowsByEmployee)
	if err != nil {
		return nil, err
	}

	// 7. Строки одного запроса не должны пересекаться между собой
	if err := validateLinesDoNotOverlap(lines); err != nil {
		uc.logger.Warn("CreateBooking: requested lines overlap each other")
		return nil, err
	}

	// 8. Собираем бронирование
	booking := buildBooking(req, lines)
	booking.RecalculateFinalAmount()

	// 9. Создаем бронирование в сериализуемой транзакции
	// При коллизии номера бронирования транзакция повторяется с новым номером
	var result *domain.Booking
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		result, err = uc.createInTx(ctx, booking, now)
		if err == nil {
			break
		}
		if errors.Is(err, bookingRepo.ErrBookingNumberTaken) {
			uc.logger.Warn("CreateBooking: booking number collision, attempt %d/%d", attempt, maxNumberAttempts)
			if attempt == maxNumberAttempts {
				return nil, ErrNumberRetriesExhausted
			}
			continue
		}
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d, number=%s",
		result.ID, result.BookingNumber)

	// 10. Оплаченное при создании бронирование регистрируется в платежном сервисе
	// Недоступность платежного сервиса бронирование не ломает
	if result.Status == domain.StatusConfirmed && result.PaymentStatus == domain.PaymentPaid {
		_, invErr := uc.paymentsClient.CreateInvoiceWithGracefulDegradation(ctx, payments.Invoice{
			BookingID:     result.ID,
			BookingNumber: result.BookingNumber,
			ClientID:      result.ClientID,
			Amount:        result.FinalAmount,
			Currency:      "RUB",
		})
		if invErr != nil {
			uc.logger.Warn("CreateBooking: invoice registration degraded for booking id=%d: %v", result.ID, invErr)
		}
	}

	return toResponse(result), nil
}

// createInTx выполняет повторную проверку доступности и вставку в одной
// сериализуемой транзакции
func (uc *UseCase) createInTx(ctx context.Context, booking *domain.Booking, now time.Time) (*domain.Booking, error) {
	var created *domain.Booking

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// Повторная проверка занятости окон под блокировкой (FOR UPDATE)
		for _, employeeID := range distinctEmployeeIDs(booking.Services) {
			committed, err := uc.bookingRepo.GetCommittedLines(txCtx, employeeID, booking.AppointmentDate)
			if err != nil {
				uc.logger.Error("CreateBooking: failed to get committed lines for employee id=%d: %v", employeeID, err)
				return fmt.Errorf("%w: failed to get committed lines: %v", ErrInternal, err)
			}

			if !committedLinesConsistent(committed) {
				uc.logger.Error("CreateBooking: committed lines overlap for employee id=%d, date=%s",
					employeeID, booking.AppointmentDate.Format(domain.DateFormat))
				return ErrDataIntegrity
			}

			for i := range booking.Services {
				line := &booking.Services[i]
				if line.EmployeeID != employeeID {
					continue
				}
				if overlapsCommitted(line.StartTime, line.EndTime, committed) {
					uc.logger.Warn("CreateBooking: slot %s-%s already taken for employee id=%d",
						line.StartTime.Format(domain.TimeFormat), line.EndTime.Format(domain.TimeFormat), employeeID)
					return ErrSlotNotAvailable
				}
			}
		}

		// Номер бронирования скоупится на дату СОЗДАНИЯ, не визита
		number, err := uc.sequencer.Next(txCtx, now)
		if err != nil {
			uc.logger.Error("CreateBooking: sequencer failed: %v", err)
			return fmt.Errorf("%w: failed to get booking number: %v", ErrInternal, err)
		}
		booking.BookingNumber = number

		result, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNumberTaken) {
				return err
			}
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		created = result
		return nil
	})

	if err != nil {
		return nil, err
	}

	return created, nil
}

// loadServices получает услуги каталога для всех строк запроса
func (uc *UseCase) loadServices(ctx context.Context, req *Request) (map[int64]*domain.Service, error) {
	ids := make([]int64, 0, len(req.Lines))
	seen := make(map[int64]bool)
	for _, line := range req.Lines {
		if !seen[line.ServiceID] {
			seen[line.ServiceID] = true
			ids = append(ids, line.ServiceID)
		}
	}

	services, err := uc.catalogRepo.GetByIDs(ctx, ids)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get services: %v", err)
		return nil, fmt.Errorf("%w: failed to get services: %v", ErrInternal, err)
	}

	byID := make(map[int64]*domain.Service, len(services))
	for _, svc := range services {
		byID[svc.ID] = svc
	}

	for _, id := range ids {
		svc, ok := byID[id]
		if !ok {
			uc.logger.Warn("CreateBooking: service id=%d not found", id)
			return nil, ErrServiceNotFound
		}
		if !svc.IsActive {
			uc.logger.Warn("CreateBooking: service id=%d is not active", id)
			return nil, ErrServiceInactive
		}
		if err := validateServiceDuration(svc); err != nil {
			uc.logger.Warn("CreateBooking: %v", err)
			return nil, err
		}
	}

	return byID, nil
}

// loadWorkingWindows получает мастеров из строк запроса и резолвит их
// рабочие окна на дату визита
func (uc *UseCase) loadWorkingWindows(ctx context.Context, req *Request) (map[int64]*domain.WorkingWindow, error) {
	windows := make(map[int64]*domain.WorkingWindow)

	for _, line := range req.Lines {
		if _, ok := windows[line.EmployeeID]; ok {
			continue
		}

		emp, err := uc.employeeRepo.GetByID(ctx, line.EmployeeID)
		if err != nil {
			if errors.Is(err, employeeRepo.ErrEmployeeNotFound) {
				uc.logger.Warn("CreateBooking: employee id=%d not found", line.EmployeeID)
				return nil, ErrEmployeeNotFound
			}
			uc.logger.Error("CreateBooking: failed to get employee id=%d: %v", line.EmployeeID, err)
			return nil, fmt.Errorf("%w: failed to get employee: %v", ErrInternal, err)
		}

		if !emp.IsActive {
			uc.logger.Warn("CreateBooking: employee id=%d is not active", line.EmployeeID)
			return nil, ErrEmployeeInactive
		}

		window, err := domain.WorkingWindowFor(emp, req.AppointmentDate)
		if err != nil {
			uc.logger.Error("CreateBooking: corrupt schedule for employee id=%d, date=%s: %v",
				line.EmployeeID, req.AppointmentDate.Format(domain.DateFormat), err)
			return nil, ErrScheduleCorrupt
		}
		if window == nil {
			uc.logger.Warn("CreateBooking: employee id=%d does not work on %s",
				line.EmployeeID, req.AppointmentDate.Format(domain.DateFormat))
			return nil, ErrEmployeeNotWorking
		}

		windows[line.EmployeeID] = window
	}

	return windows, nil
}

// buildLines строит доменные строки бронирования из запроса
func (uc *UseCase) buildLines(
	req *Request,
	servicesByID map[int64]*domain.Service,
	windowsByEmployee map[int64]*domain.WorkingWindow,
) ([]domain.ServiceLine, error) {
	lines := make([]domain.ServiceLine, 0, len(req.Lines))

	for i, lr := range req.Lines {
		svc := servicesByID[lr.ServiceID]

		start, err := lr.StartTime.At(req.AppointmentDate)
		if err != nil {
			return nil, fmt.Errorf("%w: lines[%d].startTime: %v", ErrInvalidInput, i, err)
		}
		end := start.Add(time.Duration(svc.DurationMinutes) * time.Minute)

		if err := validateLineWithinWindow(windowsByEmployee[lr.EmployeeID], start, end); err != nil {
			uc.logger.Warn("CreateBooking: line %d (%s-%s) is outside working hours of employee id=%d",
				i, start.Format(domain.TimeFormat), end.Format(domain.TimeFormat), lr.EmployeeID)
			return nil, err
		}

		lines = append(lines, domain.ServiceLine{
			ServiceID:       lr.ServiceID,
			EmployeeID:      lr.EmployeeID,
			ServiceName:     svc.Name,
			Price:           svc.EffectivePrice(),
			DurationMinutes: svc.DurationMinutes,
			StartTime:       start,
			EndTime:         end,
			Status:          domain.LineScheduled,
		})
	}

	return lines, nil
}

// buildBooking собирает агрегат бронирования из строк
// Дата визита - время начала самой ранней строки
func buildBooking(req *Request, lines []domain.ServiceLine) *domain.Booking {
	totalAmount := 0.0
	totalDuration := 0
	appointmentAt := lines[0].StartTime

	for _, line := range lines {
		totalAmount += line.Price
		totalDuration += line.DurationMinutes
		if line.StartTime.Before(appointmentAt) {
			appointmentAt = line.StartTime
		}
	}

	status := domain.StatusPending
	paymentStatus := domain.PaymentPending
	if req.CreatedByStaff && req.MarkPaid {
		status = domain.StatusConfirmed
		paymentStatus = domain.PaymentPaid
	}

	return &domain.Booking{
		ClientID:             req.ClientID,
		AppointmentDate:      appointmentAt,
		Services:             lines,
		TotalDurationMinutes: totalDuration,
		TotalAmount:          totalAmount,
		DiscountAmount:       req.DiscountAmount,
		TaxAmount:            req.TaxAmount,
		Status:               status,
		PaymentStatus:        paymentStatus,
		PaymentMethod:        req.PaymentMethod,
		Source:               req.Source,
		ClientNotes:          req.ClientNotes,
		InternalNotes:        req.InternalNotes,
	}
}

// distinctEmployeeIDs возвращает уникальные ID мастеров из строк
func distinctEmployeeIDs(lines []domain.ServiceLine) []int64 {
	seen := make(map[int64]bool)
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		if !seen[line.EmployeeID] {
			seen[line.EmployeeID] = true
			ids = append(ids, line.EmployeeID)
		}
	}
	return ids
}

// toResponse конвертирует доменное бронирование в ответ usecase
func toResponse(b *domain.Booking) *Response {
	lines := make([]LineResponse, len(b.Services))
	for i, line := range b.Services {
		lines[i] = LineResponse{
			ID:              line.ID,
			ServiceID:       line.ServiceID,
			EmployeeID:      line.EmployeeID,
			ServiceName:     line.ServiceName,
			Price:           line.Price,
			DurationMinutes: line.DurationMinutes,
			StartTime:       line.StartTime,
			EndTime:         line.EndTime,
			Status:          string(line.Status),
		}
	}

	return &Response{
		ID:                   b.ID,
		BookingNumber:        b.BookingNumber,
		ClientID:             b.ClientID,
		AppointmentDate:      b.AppointmentDate,
		Services:             lines,
		TotalDurationMinutes: b.TotalDurationMinutes,
		TotalAmount:          b.TotalAmount,
		DiscountAmount:       b.DiscountAmount,
		TaxAmount:            b.TaxAmount,
		FinalAmount:          b.FinalAmount,
		Status:               string(b.Status),
		PaymentStatus:        string(b.PaymentStatus),
		Source:               string(b.Source),
		ClientNotes:          b.ClientNotes,
		CreatedAt:            b.CreatedAt,
		UpdatedAt:            b.UpdatedAt,
	}
}
