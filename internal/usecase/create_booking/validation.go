package create_booking

import (
	"fmt"
	"time"

	"github.com/velvetspa/SPA-BookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ClientID <= 0 {
		return fmt.Errorf("%w: clientID must be positive", ErrInvalidInput)
	}

	if req.AppointmentDate.IsZero() {
		return fmt.Errorf("%w: appointmentDate is required", ErrInvalidInput)
	}

	if len(req.Lines) == 0 {
		return fmt.Errorf("%w: at least one service line is required", ErrInvalidInput)
	}

	for i, line := range req.Lines {
		if line.ServiceID <= 0 {
			return fmt.Errorf("%w: lines[%d].serviceID must be positive", ErrInvalidInput, i)
		}
		if line.EmployeeID <= 0 {
			return fmt.Errorf("%w: lines[%d].employeeID must be positive", ErrInvalidInput, i)
		}
		if err := line.StartTime.Validate(); err != nil {
			return fmt.Errorf("%w: lines[%d].startTime: %v", ErrInvalidInput, i, err)
		}
	}

	if req.DiscountAmount < 0 {
		return fmt.Errorf("%w: discountAmount must not be negative", ErrInvalidInput)
	}
	if req.TaxAmount < 0 {
		return fmt.Errorf("%w: taxAmount must not be negative", ErrInvalidInput)
	}

	if req.ClientNotes != nil && len(*req.ClientNotes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: clientNotes exceeds %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}
	if req.InternalNotes != nil && len(*req.InternalNotes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: internalNotes exceeds %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	switch req.Source {
	case domain.SourceWebsite, domain.SourcePhone, domain.SourceWalkIn, domain.SourceAdmin:
	case "":
		return fmt.Errorf("%w: source is required", ErrInvalidInput)
	default:
		return fmt.Errorf("%w: unknown source %q", ErrInvalidInput, req.Source)
	}

	if req.MarkPaid && !req.CreatedByStaff {
		return fmt.Errorf("%w: only staff can mark a booking as paid on creation", ErrInvalidInput)
	}

	return nil
}

// validateDateNotInPast проверяет, что дата визита не в прошлом (по дням)
func validateDateNotInPast(date, now time.Time) error {
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if dateOnly.Before(nowOnly) {
		return ErrDateInPast
	}
	return nil
}

// validateServiceDuration проверяет длительность услуги против бизнес-границ
func validateServiceDuration(svc *domain.Service) error {
	if svc.DurationMinutes < domain.MinServiceDurationMinutes {
		return fmt.Errorf("%w: service %d duration %d is below the minimum of %d minutes",
			ErrInvalidInput, svc.ID, svc.DurationMinutes, domain.MinServiceDurationMinutes)
	}
	if svc.DurationMinutes > domain.MaxServiceDurationMinutes {
		return fmt.Errorf("%w: service %d duration %d exceeds the maximum of %d minutes",
			ErrInvalidInput, svc.ID, svc.DurationMinutes, domain.MaxServiceDurationMinutes)
	}
	return nil
}

// validateLineWithinWindow проверяет, что строка целиком лежит в рабочем окне мастера
func validateLineWithinWindow(window *domain.WorkingWindow, start, end time.Time) error {
	if start.Before(window.Start) || end.After(window.End) {
		return ErrOutsideWorkingHours
	}
	return nil
}

// validateLinesDoNotOverlap проверяет, что строки одного запроса не пересекаются
// между собой у одного мастера (полуоткрытые интервалы)
func validateLinesDoNotOverlap(lines []domain.ServiceLine) error {
	for i := range lines {
		for j := i + 1; j < len(lines); j++ {
			if lines[i].EmployeeID != lines[j].EmployeeID {
				continue
			}
			if lines[i].Overlaps(lines[j].StartTime, lines[j].EndTime) {
				return ErrLinesOverlap
			}
		}
	}
	return nil
}

// overlapsCommitted проверяет, пересекается ли интервал [start, end) хотя бы
// с одной подтвержденной строкой. Граничащие интервалы пересечением не считаются
func overlapsCommitted(start, end time.Time, committed []domain.ServiceLine) bool {
	for i := range committed {
		if committed[i].Overlaps(start, end) {
			return true
		}
	}
	return false
}

// committedLinesConsistent проверяет, что существующие подтвержденные строки
// не пересекаются между собой. Пересечение означает повреждение данных
func committedLinesConsistent(committed []domain.ServiceLine) bool {
	for i := range committed {
		for j := i + 1; j < len(committed); j++ {
			if committed[i].Overlaps(committed[j].StartTime, committed[j].EndTime) {
				return false
			}
		}
	}
	return true
}
