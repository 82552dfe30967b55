package create_booking

import "errors"

var (
	// ErrEmployeeNotFound возвращается, когда мастер не найден
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrEmployeeInactive возвращается, когда мастер деактивирован
	ErrEmployeeInactive = errors.New("employee is not active")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("service not found")

	// ErrServiceInactive возвращается, когда услуга отключена в каталоге
	ErrServiceInactive = errors.New("service is not active")

	// ErrEmployeeNotWorking возвращается, когда мастер не работает в указанную дату
	ErrEmployeeNotWorking = errors.New("employee does not work on this date")

	// ErrOutsideWorkingHours возвращается, когда запрошенное время выходит
	// за рабочее окно мастера
	ErrOutsideWorkingHours = errors.New("requested time is outside working hours")

	// ErrSlotNotAvailable возвращается, когда запрошенное окно пересекается
	// с подтвержденным бронированием (обнаружено на повторной проверке в транзакции)
	ErrSlotNotAvailable = errors.New("slot is not available")

	// ErrLinesOverlap возвращается, когда строки одного запроса пересекаются
	// между собой у одного мастера
	ErrLinesOverlap = errors.New("requested services overlap each other")

	// ErrDateInPast возвращается, когда дата визита в прошлом
	ErrDateInPast = errors.New("appointment date is in the past")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrScheduleCorrupt возвращается при повреждённом расписании мастера
	ErrScheduleCorrupt = errors.New("employee schedule is corrupt")

	// ErrDataIntegrity возвращается, когда существующие подтвержденные
	// бронирования мастера пересекаются между собой
	ErrDataIntegrity = errors.New("committed bookings overlap each other")

	// ErrNumberRetriesExhausted возвращается, когда не удалось получить
	// уникальный номер бронирования за отведенное число попыток
	ErrNumberRetriesExhausted = errors.New("booking number retries exhausted")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
