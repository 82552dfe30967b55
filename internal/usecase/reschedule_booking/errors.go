package reschedule_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrForbidden возвращается, когда клиент пытается перенести чужое бронирование
	ErrForbidden = errors.New("booking belongs to another client")

	// ErrInvalidStatus возвращается, когда бронирование не в статусе,
	// допускающем перенос (только pending и confirmed)
	ErrInvalidStatus = errors.New("booking status does not allow reschedule")

	// ErrTooLateToReschedule возвращается, когда до визита осталось 12 часов
	// или меньше. Ровно на границе перенос уже запрещен
	ErrTooLateToReschedule = errors.New("too late to reschedule the booking")

	// ErrRescheduleLimitReached возвращается после исчерпания лимита переносов
	ErrRescheduleLimitReached = errors.New("reschedule limit reached")

	// ErrEmployeeNotFound возвращается, когда мастер не найден
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrEmployeeNotWorking возвращается, когда мастер не работает в новую дату
	ErrEmployeeNotWorking = errors.New("employee does not work on this date")

	// ErrOutsideWorkingHours возвращается, когда новое время выходит
	// за рабочее окно мастера
	ErrOutsideWorkingHours = errors.New("requested time is outside working hours")

	// ErrSlotNotAvailable возвращается, когда новое окно пересекается
	// с подтвержденным бронированием
	ErrSlotNotAvailable = errors.New("slot is not available")

	// ErrDateInPast возвращается, когда новая дата визита в прошлом
	ErrDateInPast = errors.New("appointment date is in the past")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrScheduleCorrupt возвращается при повреждённом расписании мастера
	ErrScheduleCorrupt = errors.New("employee schedule is corrupt")

	// ErrDataIntegrity возвращается, когда существующие подтвержденные
	// бронирования мастера пересекаются между собой
	ErrDataIntegrity = errors.New("committed bookings overlap each other")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
