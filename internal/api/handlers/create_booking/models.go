package create_booking

import (
	"time"

	"github.com/velvetspa/SPA-BookingService/internal/domain"
	"github.com/velvetspa/SPA-BookingService/internal/service/bookings/models"
	createBooking "github.com/velvetspa/SPA-BookingService/internal/usecase/create_booking"
	"github.com/velvetspa/SPA-BookingService/pkg/types"
)

// LineRequest HTTP модель одной услуги бронирования
type LineRequest struct {
	ServiceID  int64  `json:"serviceId"`
	EmployeeID int64  `json:"employeeId"`
	StartTime  string `json:"startTime"` // "10:00"
}

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ClientID        int64         `json:"clientId"`
	AppointmentDate string        `json:"appointmentDate"` // "2025-10-15"
	Services        []LineRequest `json:"services"`
	Source          string        `json:"source"` // website | phone | walk_in | admin
	DiscountAmount  float64       `json:"discountAmount"`
	TaxAmount       float64       `json:"taxAmount"`
	ClientNotes     *string       `json:"clientNotes,omitempty"`
	InternalNotes   *string       `json:"internalNotes,omitempty"`
	MarkPaid        bool          `json:"markPaid,omitempty"`
	PaymentMethod   *string       `json:"paymentMethod,omitempty"`
}

// LineResponse HTTP модель одной услуги в ответе
type LineResponse struct {
	ID              int64   `json:"id"`
	ServiceID       int64   `json:"serviceId"`
	EmployeeID      int64   `json:"employeeId"`
	ServiceName     string  `json:"serviceName"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"durationMinutes"`
	StartTime       string  `json:"startTime"` // ISO 8601
	EndTime         string  `json:"endTime"`   // ISO 8601
	Status          string  `json:"status"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID                   int64          `json:"id"`
	BookingNumber        string         `json:"bookingNumber"`
	ClientID             int64          `json:"clientId"`
	AppointmentDate      string         `json:"appointmentDate"` // ISO 8601
	Services             []LineResponse `json:"services"`
	TotalDurationMinutes int            `json:"totalDurationMinutes"`
	TotalAmount          float64        `json:"totalAmount"`
	DiscountAmount       float64        `json:"discountAmount"`
	TaxAmount            float64        `json:"taxAmount"`
	FinalAmount          float64        `json:"finalAmount"`
	Status               string         `json:"status"`
	PaymentStatus        string         `json:"paymentStatus"`
	Source               string         `json:"source"`
	ClientNotes          *string        `json:"clientNotes,omitempty"`
	CreatedAt            string         `json:"createdAt"`
	UpdatedAt            string         `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
// Роль запрашивающего приходит из middleware, а не из тела
func (r *CreateBookingRequest) ToUseCaseRequest(requesterRole string) (*createBooking.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.AppointmentDate)
	if err != nil {
		return nil, err
	}

	lines := make([]createBooking.LineRequest, len(r.Services))
	for i, line := range r.Services {
		startTime, err := types.NewTimeStringFromString(line.StartTime)
		if err != nil {
			return nil, err
		}
		lines[i] = createBooking.LineRequest{
			ServiceID:  line.ServiceID,
			EmployeeID: line.EmployeeID,
			StartTime:  startTime,
		}
	}

	return &createBooking.Request{
		ClientID:        r.ClientID,
		AppointmentDate: date,
		Lines:           lines,
		Source:          domain.BookingSource(r.Source),
		DiscountAmount:  r.DiscountAmount,
		TaxAmount:       r.TaxAmount,
		ClientNotes:     r.ClientNotes,
		InternalNotes:   r.InternalNotes,
		CreatedByStaff:  models.IsStaffRole(requesterRole),
		MarkPaid:        r.MarkPaid,
		PaymentMethod:   r.PaymentMethod,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	lines := make([]LineResponse, len(resp.Services))
	for i, line := range resp.Services {
		lines[i] = LineResponse{
			ID:              line.ID,
			ServiceID:       line.ServiceID,
			EmployeeID:      line.EmployeeID,
			ServiceName:     line.ServiceName,
			Price:           line.Price,
			DurationMinutes: line.DurationMinutes,
			StartTime:       line.StartTime.Format(time.RFC3339),
			EndTime:         line.EndTime.Format(time.RFC3339),
			Status:          line.Status,
		}
	}

	return &BookingResponse{
		ID:                   resp.ID,
		BookingNumber:        resp.BookingNumber,
		ClientID:             resp.ClientID,
		AppointmentDate:      resp.AppointmentDate.Format(time.RFC3339),
		Services:             lines,
		TotalDurationMinutes: resp.TotalDurationMinutes,
		TotalAmount:          resp.TotalAmount,
		DiscountAmount:       resp.DiscountAmount,
		TaxAmount:            resp.TaxAmount,
		FinalAmount:          resp.FinalAmount,
		Status:               resp.Status,
		PaymentStatus:        resp.PaymentStatus,
		Source:               resp.Source,
		ClientNotes:          resp.ClientNotes,
		CreatedAt:            resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            resp.UpdatedAt.Format(time.RFC3339),
	}
}
