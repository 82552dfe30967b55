package get_available_slots

import (
	"time"

	"github.com/velvetspa/SPA-BookingService/pkg/types"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	EmployeeID int64     // ID мастера
	ServiceID  int64     // ID услуги
	Date       time.Time // Дата для получения слотов (без времени)
}

// Response модель ответа со списком слотов
type Response struct {
	Date            time.Time        // Дата, на которую запрашивались слоты
	EmployeeID      int64            // ID мастера
	ServiceID       int64            // ID услуги
	DurationMinutes int              // Длительность услуги в минутах
	BreakStart      *types.TimeString // Начало перерыва мастера (аннотация для клиента)
	BreakEnd        *types.TimeString // Конец перерыва мастера
	Slots           []Slot           // Все кандидатные слоты с признаком доступности
}

// Slot модель временного слота
type Slot struct {
	StartTime types.TimeString // Время начала слота (например, "10:00")
	EndTime   types.TimeString // Время конца слота
	Available bool             // Свободен ли слот
}
