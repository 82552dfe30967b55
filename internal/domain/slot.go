package domain

import "time"

// TimeSlot кандидат на окно записи, полуоткрытый интервал [StartTime, EndTime)
// Value type, не персистится
type TimeSlot struct {
	StartTime time.Time
	EndTime   time.Time
	Available bool
}

// Overlaps проверяет реальное пересечение слота с интервалом [start, end)
// Граничащие интервалы (конец одного равен началу другого) НЕ пересекаются
func (s *TimeSlot) Overlaps(start, end time.Time) bool {
	return s.StartTime.Before(end) && s.EndTime.After(start)
}
