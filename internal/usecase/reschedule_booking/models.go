package reschedule_booking

import (
	"time"

	"github.com/velvetspa/SPA-BookingService/pkg/types"
)

// Request модель запроса на перенос бронирования
type Request struct {
	BookingID     int64            // ID бронирования
	RequesterID   int64            // Кто переносит
	RequesterRole string           // client | staff | admin
	NewDate       time.Time        // Новая дата визита (без времени)
	NewStartTime  types.TimeString // Новое время начала самой ранней услуги
	Reason        string           // Причина переноса
}

// Response модель ответа на перенос бронирования
type Response struct {
	ID              int64
	BookingNumber   string
	AppointmentDate time.Time
	OriginalDate    time.Time
	RescheduleCount int
	Status          string
	UpdatedAt       time.Time
}
