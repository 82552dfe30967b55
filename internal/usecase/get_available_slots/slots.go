package get_available_slots

import (
	"time"

	"github.com/velvetspa/SPA-BookingService/internal/domain"
)

// generateCandidateSlots генерирует список кандидатных слотов внутри рабочего окна
// Слоты идут с фиксированным шагом tickMinutes от начала окна; слот, чей конец
// выходит за конец окна, отбрасывается целиком (никогда не обрезается).
// Функция детерминирована: результат зависит только от окна, длительности и шага
func generateCandidateSlots(window *domain.WorkingWindow, serviceDurationMinutes, tickMinutes int) []domain.TimeSlot {
	slots := make([]domain.TimeSlot, 0)

	if window == nil || serviceDurationMinutes <= 0 || tickMinutes <= 0 {
		return slots
	}

	cursor := window.Start
	for cursor.Before(window.End) {
		slotEnd := cursor.Add(time.Duration(serviceDurationMinutes) * time.Minute)
		if slotEnd.After(window.End) {
			break
		}

		slots = append(slots, domain.TimeSlot{
			StartTime: cursor,
			EndTime:   slotEnd,
			Available: true,
		})

		cursor = cursor.Add(time.Duration(tickMinutes) * time.Minute)
	}

	return slots
}

// resolveAvailability помечает кандидатные слоты занятыми, если они пересекаются
// хотя бы с одной подтвержденной строкой бронирования. Входы не считаются
// отсортированными.
//
// Если подтвержденные строки пересекаются МЕЖДУ СОБОЙ - данные повреждены,
// возвращается ErrDataIntegrity
func resolveAvailability(candidates []domain.TimeSlot, committed []domain.ServiceLine) ([]domain.TimeSlot, error) {
	for i := range committed {
		for j := i + 1; j < len(committed); j++ {
			if committed[i].Overlaps(committed[j].StartTime, committed[j].EndTime) {
				return nil, ErrDataIntegrity
			}
		}
	}

	result := make([]domain.TimeSlot, len(candidates))
	for i, slot := range candidates {
		slot.Available = !overlapsCommitted(slot.StartTime, slot.EndTime, committed)
		result[i] = slot
	}

	return result, nil
}

// overlapsCommitted проверяет, пересекается ли интервал [start, end) хотя бы
// с одной подтвержденной строкой. Интервалы полуоткрытые: одно бронирование
// заканчивается ровно там, где начинается другое - это НЕ пересечение
//
// Примеры:
// - Слот 11:30-12:00, строка 11:20-11:40 → ЕСТЬ пересечение (11:30-11:40)
// - Слот 11:30-12:00, строка 11:00-11:30 → НЕТ пересечения (граничат)
// - Слот 11:30-12:00, строка 12:00-12:30 → НЕТ пересечения (граничат)
func overlapsCommitted(start, end time.Time, committed []domain.ServiceLine) bool {
	for i := range committed {
		if committed[i].Overlaps(start, end) {
			return true
		}
	}
	return false
}
