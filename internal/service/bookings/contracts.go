package bookings

import (
	"context"
	"time"

	"github.com/velvetspa/SPA-BookingService/internal/domain"
	"github.com/velvetspa/SPA-BookingService/internal/integrations/payments"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByClientWithFilter(ctx context.Context, filter domain.ClientBookingsFilter) ([]*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
	Cancel(ctx context.Context, id int64, c domain.Cancellation) error
	SetCheckIn(ctx context.Context, id int64, rec domain.CheckInRecord, status domain.BookingStatus) error
	SetCheckOut(ctx context.Context, id int64, rec domain.CheckOutRecord, totalAmount, finalAmount float64) error
}

// PaymentsClient интерфейс клиента платежного сервиса
type PaymentsClient interface {
	CreateInvoiceWithGracefulDegradation(ctx context.Context, inv payments.Invoice) (*payments.InvoiceResult, error)
	RequestRefundWithGracefulDegradation(ctx context.Context, req payments.RefundRequest) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
