package domain

import "time"

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
	StatusNoShow     BookingStatus = "no_show"
)

// PaymentStatus represents the payment status of a booking
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPartial  PaymentStatus = "partial"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentFailed   PaymentStatus = "failed"
)

// LineStatus represents the status of a single service line
type LineStatus string

const (
	LineScheduled  LineStatus = "scheduled"
	LineInProgress LineStatus = "in_progress"
	LineCompleted  LineStatus = "completed"
	LineCancelled  LineStatus = "cancelled"
	LineNoShow     LineStatus = "no_show"
)

// BookingSource источник создания бронирования
type BookingSource string

const (
	SourceWebsite BookingSource = "website"
	SourcePhone   BookingSource = "phone"
	SourceWalkIn  BookingSource = "walk_in"
	SourceAdmin   BookingSource = "admin"
)

// ServiceLine одна услуга внутри бронирования: мастер + временное окно
// Инвариант: EndTime строго позже StartTime
type ServiceLine struct {
	ID              int64
	BookingID       int64
	ServiceID       int64
	EmployeeID      int64
	ServiceName     string // денормализация для истории
	Price           float64
	DurationMinutes int
	StartTime       time.Time
	EndTime         time.Time
	Status          LineStatus
}

// Overlaps проверяет пересечение строки с полуоткрытым интервалом [start, end)
// Граничащие интервалы пересечением не считаются
func (l *ServiceLine) Overlaps(start, end time.Time) bool {
	return l.StartTime.Before(end) && l.EndTime.After(start)
}

// Cancellation запись об отмене бронирования
// RefundAmount и CancellationFee приходят извне (политика возвратов - внешний коллаборатор)
type Cancellation struct {
	CancelledAt     time.Time
	CancelledBy     int64
	Reason          string
	RefundAmount    float64
	CancellationFee float64
}

// Reschedule запись о переносе бронирования
type Reschedule struct {
	OriginalDate    time.Time
	RescheduledAt   time.Time
	RescheduledBy   int64
	Reason          string
	RescheduleCount int
}

// CheckInRecord операционная отметка прихода клиента
type CheckInRecord struct {
	CheckedInAt     time.Time
	CheckedInBy     int64
	IsEarlyArrival  bool
	WaitTimeMinutes int
}

// CheckOutRecord операционная отметка завершения визита
type CheckOutRecord struct {
	CheckedOutAt          time.Time
	CheckedOutBy          int64
	ActualDurationMinutes int
	AdditionalCharges     float64
	Tips                  float64
}

// Booking represents a spa booking (aggregate root)
type Booking struct {
	ID              int64
	BookingNumber   string // уникальный, BK + YYMMDD + seq
	ClientID        int64
	AppointmentDate time.Time
	Services        []ServiceLine

	TotalDurationMinutes int
	TotalAmount          float64
	DiscountAmount       float64
	TaxAmount            float64
	FinalAmount          float64

	Status        BookingStatus
	PaymentStatus PaymentStatus
	PaymentMethod *string
	Source        BookingSource

	ClientNotes   *string
	InternalNotes *string

	Cancellation *Cancellation
	Reschedule   *Reschedule
	CheckIn      *CheckInRecord
	CheckOut     *CheckOutRecord

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RecalculateFinalAmount пересчитывает итоговую сумму
// Инвариант: FinalAmount == TotalAmount - DiscountAmount + TaxAmount
// Вызывается перед КАЖДЫМ сохранением после изменения сумм - значение из
// входных данных никогда не используется напрямую
func (b *Booking) RecalculateFinalAmount() {
	b.FinalAmount = b.TotalAmount - b.DiscountAmount + b.TaxAmount
}

// IsCommitted returns true if the booking blocks its time windows
func (b *Booking) IsCommitted() bool {
	return b.Status == StatusPending ||
		b.Status == StatusConfirmed ||
		b.Status == StatusInProgress
}

// IsTerminal returns true if no further transitions are allowed
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCompleted ||
		b.Status == StatusCancelled ||
		b.Status == StatusNoShow
}

// HoursUntilAppointment возвращает количество часов до визита (может быть отрицательным)
func (b *Booking) HoursUntilAppointment(now time.Time) float64 {
	return b.AppointmentDate.Sub(now).Hours()
}

// CanBeCancelledAt returns true if the booking can be cancelled at the given moment:
// status pending/confirmed and strictly more than 24h before the appointment.
// Ровно на границе 24 часов отмена уже запрещена
func (b *Booking) CanBeCancelledAt(now time.Time) bool {
	if b.Status != StatusPending && b.Status != StatusConfirmed {
		return false
	}
	return b.HoursUntilAppointment(now) > CancellationNoticeHours
}

// CanBeRescheduledAt returns true if the booking can be rescheduled at the given moment:
// status pending/confirmed, strictly more than 12h before the appointment
// and fewer than MaxReschedules previous reschedules
func (b *Booking) CanBeRescheduledAt(now time.Time) bool {
	if b.Status != StatusPending && b.Status != StatusConfirmed {
		return false
	}
	if b.RescheduleCount() >= MaxReschedules {
		return false
	}
	return b.HoursUntilAppointment(now) > RescheduleNoticeHours
}

// RescheduleCount возвращает количество уже выполненных переносов
func (b *Booking) RescheduleCount() int {
	if b.Reschedule == nil {
		return 0
	}
	return b.Reschedule.RescheduleCount
}

// CanCheckIn returns true if the client can be checked in
func (b *Booking) CanCheckIn() bool {
	return (b.Status == StatusConfirmed || b.Status == StatusPending) && b.CheckIn == nil
}

// CanCheckOut returns true if the visit can be checked out
func (b *Booking) CanCheckOut() bool {
	return b.CheckIn != nil && b.CheckOut == nil && !b.IsTerminal()
}

// CanBeCompleted returns true if the booking can transition to completed
func (b *Booking) CanBeCompleted() bool {
	return b.Status == StatusInProgress || b.Status == StatusConfirmed
}

// CanBeMarkedNoShow returns true if the booking can be marked as no-show:
// статус pending/confirmed, время визита прошло и клиент не отмечался
func (b *Booking) CanBeMarkedNoShow(now time.Time) bool {
	if b.Status != StatusPending && b.Status != StatusConfirmed {
		return false
	}
	if b.CheckIn != nil {
		return false
	}
	return now.After(b.AppointmentDate)
}

// ClientBookingsFilter фильтр для получения бронирований клиента
type ClientBookingsFilter struct {
	ClientID  int64
	Status    *BookingStatus
	StartDate *time.Time
	EndDate   *time.Time
}
