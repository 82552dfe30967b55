package models

import (
	"errors"
	"time"

	"github.com/velvetspa/SPA-BookingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Роли запрашивающего, приходят из заголовка X-User-Role
const (
	RoleClient = "client"
	RoleStaff  = "staff"
	RoleAdmin  = "admin"
)

// IsStaffRole возвращает true для ролей персонала
func IsStaffRole(role string) bool {
	return role == RoleStaff || role == RoleAdmin
}

// Request модели

// CancelBookingRequest запрос на отмену бронирования
// RefundAmount и CancellationFee считает вызывающая сторона (политика возвратов)
type CancelBookingRequest struct {
	RequesterID     int64   `json:"requesterId"`
	RequesterRole   string  `json:"requesterRole"`
	Reason          string  `json:"reason"`
	RefundAmount    float64 `json:"refundAmount"`
	CancellationFee float64 `json:"cancellationFee"`
}

// CheckInRequest запрос на отметку прихода клиента
type CheckInRequest struct {
	RequesterID   int64  `json:"requesterId"`
	RequesterRole string `json:"requesterRole"`
}

// CheckOutRequest запрос на отметку завершения визита
type CheckOutRequest struct {
	RequesterID       int64   `json:"requesterId"`
	RequesterRole     string  `json:"requesterRole"`
	AdditionalCharges float64 `json:"additionalCharges"`
	Tips              float64 `json:"tips"`
}

// CompleteRequest запрос на завершение бронирования
type CompleteRequest struct {
	RequesterID   int64  `json:"requesterId"`
	RequesterRole string `json:"requesterRole"`
}

// MarkNoShowRequest запрос на отметку неявки
type MarkNoShowRequest struct {
	RequesterID   int64  `json:"requesterId"`
	RequesterRole string `json:"requesterRole"`
}

// GetClientBookingsRequest запрос на получение бронирований клиента
type GetClientBookingsRequest struct {
	ClientID      int64      `json:"clientId"`
	RequesterID   int64      `json:"requesterId"`
	RequesterRole string     `json:"requesterRole"`
	Status        *string    `json:"status,omitempty"`    // Фильтр по статусу (опционально)
	StartDate     *time.Time `json:"startDate,omitempty"` // Начало периода (опционально)
	EndDate       *time.Time `json:"endDate,omitempty"`   // Конец периода (опционально)
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetClientBookingsRequest) ToDomainFilter() (domain.ClientBookingsFilter, error) {
	filter := domain.ClientBookingsFilter{
		ClientID:  r.ClientID,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// ServiceLineResponse одна услуга бронирования
type ServiceLineResponse struct {
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

// CancellationResponse запись об отмене
type CancellationResponse struct {
	CancelledAt     string  `json:"cancelledAt"` // ISO 8601
	CancelledBy     int64   `json:"cancelledBy"`
	Reason          string  `json:"reason"`
	RefundAmount    float64 `json:"refundAmount"`
	CancellationFee float64 `json:"cancellationFee"`
}

// RescheduleResponse запись о переносе
type RescheduleResponse struct {
	OriginalDate    string `json:"originalDate"` // ISO 8601
	RescheduledAt   string `json:"rescheduledAt"`
	RescheduledBy   int64  `json:"rescheduledBy"`
	Reason          string `json:"reason"`
	RescheduleCount int    `json:"rescheduleCount"`
}

// CheckInResponse отметка прихода
type CheckInResponse struct {
	CheckedInAt     string `json:"checkedInAt"` // ISO 8601
	CheckedInBy     int64  `json:"checkedInBy"`
	IsEarlyArrival  bool   `json:"isEarlyArrival"`
	WaitTimeMinutes int    `json:"waitTimeMinutes"`
}

// CheckOutResponse отметка завершения визита
type CheckOutResponse struct {
	CheckedOutAt          string  `json:"checkedOutAt"` // ISO 8601
	CheckedOutBy          int64   `json:"checkedOutBy"`
	ActualDurationMinutes int     `json:"actualDurationMinutes"`
	AdditionalCharges     float64 `json:"additionalCharges"`
	Tips                  float64 `json:"tips"`
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID              int64                 `json:"id"`
	BookingNumber   string                `json:"bookingNumber"`
	ClientID        int64                 `json:"clientId"`
	AppointmentDate string                `json:"appointmentDate"` // ISO 8601
	Services        []ServiceLineResponse `json:"services"`

	TotalDurationMinutes int     `json:"totalDurationMinutes"`
	TotalAmount          float64 `json:"totalAmount"`
	DiscountAmount       float64 `json:"discountAmount"`
	TaxAmount            float64 `json:"taxAmount"`
	FinalAmount          float64 `json:"finalAmount"`

	Status        string  `json:"status"`
	PaymentStatus string  `json:"paymentStatus"`
	PaymentMethod *string `json:"paymentMethod,omitempty"`
	Source        string  `json:"source"`

	ClientNotes   *string `json:"clientNotes,omitempty"`
	InternalNotes *string `json:"internalNotes,omitempty"`

	Cancellation *CancellationResponse `json:"cancellation,omitempty"`
	Reschedule   *RescheduleResponse   `json:"reschedule,omitempty"`
	CheckIn      *CheckInResponse      `json:"checkIn,omitempty"`
	CheckOut     *CheckOutResponse     `json:"checkOut,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
// forStaff управляет видимостью внутренних заметок
func FromDomainBooking(b *domain.Booking, forStaff bool) *BookingResponse {
	if b == nil {
		return nil
	}

	lines := make([]ServiceLineResponse, len(b.Services))
	for i, line := range b.Services {
		lines[i] = ServiceLineResponse{
			ID:              line.ID,
			ServiceID:       line.ServiceID,
			EmployeeID:      line.EmployeeID,
			ServiceName:     line.ServiceName,
			Price:           line.Price,
			DurationMinutes: line.DurationMinutes,
			StartTime:       line.StartTime.Format(time.RFC3339),
			EndTime:         line.EndTime.Format(time.RFC3339),
			Status:          string(line.Status),
		}
	}

	resp := &BookingResponse{
		ID:                   b.ID,
		BookingNumber:        b.BookingNumber,
		ClientID:             b.ClientID,
		AppointmentDate:      b.AppointmentDate.Format(time.RFC3339),
		Services:             lines,
		TotalDurationMinutes: b.TotalDurationMinutes,
		TotalAmount:          b.TotalAmount,
		DiscountAmount:       b.DiscountAmount,
		TaxAmount:            b.TaxAmount,
		FinalAmount:          b.FinalAmount,
		Status:               string(b.Status),
		PaymentStatus:        string(b.PaymentStatus),
		PaymentMethod:        b.PaymentMethod,
		Source:               string(b.Source),
		ClientNotes:          b.ClientNotes,
		CreatedAt:            b.CreatedAt,
		UpdatedAt:            b.UpdatedAt,
	}

	// Внутренние заметки видит только персонал
	if forStaff {
		resp.InternalNotes = b.InternalNotes
	}

	if b.Cancellation != nil {
		resp.Cancellation = &CancellationResponse{
			CancelledAt:     b.Cancellation.CancelledAt.Format(time.RFC3339),
			CancelledBy:     b.Cancellation.CancelledBy,
			Reason:          b.Cancellation.Reason,
			RefundAmount:    b.Cancellation.RefundAmount,
			CancellationFee: b.Cancellation.CancellationFee,
		}
	}

	if b.Reschedule != nil {
		resp.Reschedule = &RescheduleResponse{
			OriginalDate:    b.Reschedule.OriginalDate.Format(time.RFC3339),
			RescheduledAt:   b.Reschedule.RescheduledAt.Format(time.RFC3339),
			RescheduledBy:   b.Reschedule.RescheduledBy,
			Reason:          b.Reschedule.Reason,
			RescheduleCount: b.Reschedule.RescheduleCount,
		}
	}

	if b.CheckIn != nil {
		resp.CheckIn = &CheckInResponse{
			CheckedInAt:     b.CheckIn.CheckedInAt.Format(time.RFC3339),
			CheckedInBy:     b.CheckIn.CheckedInBy,
			IsEarlyArrival:  b.CheckIn.IsEarlyArrival,
			WaitTimeMinutes: b.CheckIn.WaitTimeMinutes,
		}
	}

	if b.CheckOut != nil {
		resp.CheckOut = &CheckOutResponse{
			CheckedOutAt:          b.CheckOut.CheckedOutAt.Format(time.RFC3339),
			CheckedOutBy:          b.CheckOut.CheckedOutBy,
			ActualDurationMinutes: b.CheckOut.ActualDurationMinutes,
			AdditionalCharges:     b.CheckOut.AdditionalCharges,
			Tips:                  b.CheckOut.Tips,
		}
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking, forStaff bool) *BookingListResponse {
	if bookings == nil {
		return &BookingListResponse{
			Bookings: []BookingResponse{},
		}
	}

	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, len(bookings)),
	}

	for i, booking := range bookings {
		if bookingResp := FromDomainBooking(booking, forStaff); bookingResp != nil {
			resp.Bookings[i] = *bookingResp
		}
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)

	validStatuses := []domain.BookingStatus{
		domain.StatusPending,
		domain.StatusConfirmed,
		domain.StatusInProgress,
		domain.StatusCompleted,
		domain.StatusCancelled,
		domain.StatusNoShow,
	}

	for _, valid := range validStatuses {
		if s == valid {
			return s, nil
		}
	}

	return "", ErrInvalidStatus
}
