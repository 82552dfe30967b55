package domain

// Business policy constants
const (
	// CancellationNoticeHours минимальное время до визита для отмены (строго больше)
	CancellationNoticeHours = 24

	// RescheduleNoticeHours минимальное время до визита для переноса (строго больше)
	RescheduleNoticeHours = 12

	// MaxReschedules максимальное количество переносов одного бронирования
	MaxReschedules = 2

	// DefaultTickMinutes шаг генерации слотов
	DefaultTickMinutes = 30

	// MinServiceDurationMinutes минимальная длительность услуги
	MinServiceDurationMinutes = 15

	// MaxServiceDurationMinutes максимальная длительность услуги (8 часов)
	MaxServiceDurationMinutes = 480

	// MaxNotesLength максимальная длина заметок
	MaxNotesLength = 500
)

// Booking number format: BK + YYMMDD + 4-значный дневной порядковый номер,
// например BK2507050001. Дата - дата СОЗДАНИЯ бронирования, не визита.
const (
	BookingNumberPrefix     = "BK"
	BookingNumberDateFormat = "060102"
	BookingNumberSeqDigits  = 4
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// CommittedStatuses статусы, при которых строки бронирования занимают
// временные окна мастера (блокируют слоты)
var CommittedStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusInProgress,
}

// TerminalStatuses статусы, из которых нет переходов
var TerminalStatuses = []BookingStatus{
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
}
