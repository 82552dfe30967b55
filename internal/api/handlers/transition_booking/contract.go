package transition_booking

import (
	"context"

	"github.com/velvetspa/SPA-BookingService/internal/service/bookings/models"
)

type BookingsService interface {
	CheckIn(ctx context.Context, bookingID int64, req *models.CheckInRequest) error
	CheckOut(ctx context.Context, bookingID int64, req *models.CheckOutRequest) error
	Complete(ctx context.Context, bookingID int64, req *models.CompleteRequest) error
	MarkNoShow(ctx context.Context, bookingID int64, req *models.MarkNoShowRequest) error
	GetByID(ctx context.Context, id int64, requesterID int64, requesterRole string) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
