package get_available_slots

import (
	"context"
	"time"

	"github.com/velvetspa/SPA-BookingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// GetCommittedLines получает строки услуг мастера на дату,
	// чьи бронирования занимают временные окна
	GetCommittedLines(ctx context.Context, employeeID int64, date time.Time) ([]domain.ServiceLine, error)
}

// EmployeeRepository интерфейс репозитория мастеров
type EmployeeRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
}

// CatalogRepository интерфейс репозитория каталога услуг
type CatalogRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
