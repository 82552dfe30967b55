package reschedule_booking

import (
	"time"

	rescheduleBooking "github.com/velvetspa/SPA-BookingService/internal/usecase/reschedule_booking"
)

// RescheduleBookingRequest HTTP request model
type RescheduleBookingRequest struct {
	NewDate      string `json:"newDate"`      // "2025-10-20"
	NewStartTime string `json:"newStartTime"` // "14:00"
	Reason       string `json:"reason"`
}

// RescheduleBookingResponse HTTP response model
type RescheduleBookingResponse struct {
	ID              int64  `json:"id"`
	BookingNumber   string `json:"bookingNumber"`
	AppointmentDate string `json:"appointmentDate"` // ISO 8601
	OriginalDate    string `json:"originalDate"`    // ISO 8601
	RescheduleCount int    `json:"rescheduleCount"`
	Status          string `json:"status"`
	UpdatedAt       string `json:"updatedAt"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *rescheduleBooking.Response) *RescheduleBookingResponse {
	return &RescheduleBookingResponse{
		ID:              resp.ID,
		BookingNumber:   resp.BookingNumber,
		AppointmentDate: resp.AppointmentDate.Format(time.RFC3339),
		OriginalDate:    resp.OriginalDate.Format(time.RFC3339),
		RescheduleCount: resp.RescheduleCount,
		Status:          resp.Status,
		UpdatedAt:       resp.UpdatedAt.Format(time.RFC3339),
	}
}
