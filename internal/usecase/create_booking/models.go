package create_booking

import (
	"time"

	"github.com/velvetspa/SPA-BookingService/internal/domain"
	"github.com/velvetspa/SPA-BookingService/pkg/types"
)

// LineRequest одна услуга в запросе на создание бронирования
type LineRequest struct {
	ServiceID  int64            // ID услуги
	EmployeeID int64            // ID мастера
	StartTime  types.TimeString // Время начала (например, "10:00")
}

// Request модель запроса на создание бронирования
type Request struct {
	ClientID        int64                // ID клиента
	AppointmentDate time.Time            // Дата визита (без времени)
	Lines           []LineRequest        // Услуги бронирования (минимум одна)
	Source          domain.BookingSource // Откуда пришло бронирование
	DiscountAmount  float64              // Скидка
	TaxAmount       float64              // Налог
	ClientNotes     *string              // Заметки клиента
	InternalNotes   *string              // Внутренние заметки (только персонал)

	// Персонал может создать сразу подтвержденное и оплаченное бронирование
	CreatedByStaff bool
	MarkPaid       bool
	PaymentMethod  *string
}

// LineResponse одна услуга в ответе
type LineResponse struct {
	ID              int64
	ServiceID       int64
	EmployeeID      int64
	ServiceName     string
	Price           float64
	DurationMinutes int
	StartTime       time.Time
	EndTime         time.Time
	Status          string
}

// Response модель ответа на создание бронирования
type Response struct {
	ID                   int64
	BookingNumber        string
	ClientID             int64
	AppointmentDate      time.Time
	Services             []LineResponse
	TotalDurationMinutes int
	TotalAmount          float64
	DiscountAmount       float64
	TaxAmount            float64
	FinalAmount          float64
	Status               string
	PaymentStatus        string
	Source               string
	ClientNotes          *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
