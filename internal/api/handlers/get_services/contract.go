package get_services

import (
	"context"

	catalogService "github.com/velvetspa/SPA-BookingService/internal/service/catalog"
)

type CatalogService interface {
	ListActive(ctx context.Context, category *string) (*catalogService.ServiceListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
