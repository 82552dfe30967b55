package reschedule_booking

import (
	"fmt"
	"time"

	"github.com/velvetspa/SPA-BookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}

	if req.RequesterID <= 0 {
		return fmt.Errorf("%w: requesterID must be positive", ErrInvalidInput)
	}

	if req.NewDate.IsZero() {
		return fmt.Errorf("%w: newDate is required", ErrInvalidInput)
	}

	if err := req.NewStartTime.Validate(); err != nil {
		return fmt.Errorf("%w: newStartTime: %v", ErrInvalidInput, err)
	}

	if len(req.Reason) > domain.MaxNotesLength {
		return fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// validateGuards проверяет доменные условия переноса, возвращая точную
// причину отказа. Порядок проверок: статус, лимит переносов, время до визита
func validateGuards(b *domain.Booking, now time.Time) error {
	if b.Status != domain.StatusPending && b.Status != domain.StatusConfirmed {
		return ErrInvalidStatus
	}

	if b.RescheduleCount() >= domain.MaxReschedules {
		return ErrRescheduleLimitReached
	}

	if b.HoursUntilAppointment(now) <= domain.RescheduleNoticeHours {
		return ErrTooLateToReschedule
	}

	return nil
}

// validateDateNotInPast проверяет, что новая дата не в прошлом (по дням)
func validateDateNotInPast(date, now time.Time) error {
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if dateOnly.Before(nowOnly) {
		return ErrDateInPast
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

// committedLinesConsistent проверяет, что подтвержденные строки не пересекаются
// между собой
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
