package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/velvetspa/SPA-BookingService/internal/domain"
	catalogRepo "github.com/velvetspa/SPA-BookingService/internal/infra/storage/catalog"
	employeeRepo "github.com/velvetspa/SPA-BookingService/internal/infra/storage/employee"
	"github.com/velvetspa/SPA-BookingService/pkg/types"
)

// UseCase use case для получения доступных слотов мастера
type UseCase struct {
	bookingRepo  BookingRepository
	employeeRepo EmployeeRepository
	catalogRepo  CatalogRepository
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	employeeRepo EmployeeRepository,
	catalogRepo CatalogRepository,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		employeeRepo: employeeRepo,
		catalogRepo:  catalogRepo,
		logger:       logger,
	}
}

// Execute выполняет use case получения доступных слотов
// Результат детерминирован: для одинаковых (мастер, услуга, дата, бронирования)
// список слотов всегда одинаков, текущее время не читается
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: employee=%d, service=%d, date=%s",
		req.EmployeeID, req.ServiceID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем мастера вместе с расписанием и исключениями
	employee, err := uc.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, employeeRepo.ErrEmployeeNotFound) {
			uc.logger.Warn("GetAvailableSlots: employee id=%d not found", req.EmployeeID)
			return nil, ErrEmployeeNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get employee id=%d: %v", req.EmployeeID, err)
		return nil, fmt.Errorf("%w: failed to get employee: %v", ErrInternal, err)
	}

	if !employee.IsActive {
		uc.logger.Warn("GetAvailableSlots: employee id=%d is not active", req.EmployeeID)
		return nil, ErrEmployeeInactive
	}

	// 3. Получаем услугу
	service, err := uc.catalogRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	if !service.IsActive {
		uc.logger.Warn("GetAvailableSlots: service id=%d is not active", req.ServiceID)
		return nil, ErrServiceInactive
	}

	// 4. Резолвим рабочее окно мастера на дату
	window, err := domain.WorkingWindowFor(employee, req.Date)
	if err != nil {
		// Расписание повреждено - день закрывается, а не выдает невалидные слоты
		uc.logger.Error("GetAvailableSlots: corrupt schedule for employee id=%d, date=%s: %v",
			req.EmployeeID, req.Date.Format(domain.DateFormat), err)
		return nil, ErrScheduleCorrupt
	}

	if window == nil {
		uc.logger.Info("GetAvailableSlots: employee id=%d does not work on %s",
			req.EmployeeID, req.Date.Format(domain.DateFormat))
		return &Response{
			Date:            req.Date,
			EmployeeID:      req.EmployeeID,
			ServiceID:       req.ServiceID,
			DurationMinutes: service.DurationMinutes,
			Slots:           []Slot{},
		}, nil
	}

	// 5. Генерируем кандидатные слоты
	candidates := generateCandidateSlots(window, service.DurationMinutes, domain.DefaultTickMinutes)

	// 6. Получаем подтвержденные строки бронирований мастера на дату
	committed, err := uc.bookingRepo.GetCommittedLines(ctx, req.EmployeeID, req.Date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get committed lines for employee id=%d: %v",
			req.EmployeeID, err)
		return nil, fmt.Errorf("%w: failed to get committed lines: %v", ErrInternal, err)
	}

	// 7. Вычисляем доступность каждого слота
	timeSlots, err := resolveAvailability(candidates, committed)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: data integrity violation for employee id=%d, date=%s: %v",
			req.EmployeeID, req.Date.Format(domain.DateFormat), err)
		return nil, err
	}

	// 8. Собираем ответ
	slots := make([]Slot, len(timeSlots))
	for i, ts := range timeSlots {
		slots[i] = Slot{
			StartTime: types.NewTimeString(ts.StartTime),
			EndTime:   types.NewTimeString(ts.EndTime),
			Available: ts.Available,
		}
	}

	resp := &Response{
		Date:            req.Date,
		EmployeeID:      req.EmployeeID,
		ServiceID:       req.ServiceID,
		DurationMinutes: service.DurationMinutes,
		Slots:           slots,
	}

	// Перерыв мастера отдаем как аннотацию, слоты из-за него не выбрасываются
	if window.BreakStart != nil && window.BreakEnd != nil {
		bs := types.NewTimeString(*window.BreakStart)
		be := types.NewTimeString(*window.BreakEnd)
		resp.BreakStart = &bs
		resp.BreakEnd = &be
	}

	uc.logger.Info("GetAvailableSlots: generated %d slots for employee=%d, service=%d, date=%s",
		len(slots), req.EmployeeID, req.ServiceID, req.Date.Format(domain.DateFormat))

	return resp, nil
}
