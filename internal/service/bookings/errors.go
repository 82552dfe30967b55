package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrStaffOnly возвращается, когда операция доступна только персоналу
	ErrStaffOnly = errors.New("operation is allowed for staff only")

	// ErrCannotCancel возвращается, когда бронирование не может быть отменено:
	// неподходящий статус или до визита осталось 24 часа и меньше
	ErrCannotCancel = errors.New("booking cannot be cancelled")

	// ErrCannotCheckIn возвращается, когда отметка прихода невозможна
	ErrCannotCheckIn = errors.New("booking cannot be checked in")

	// ErrCannotCheckOut возвращается, когда отметка завершения визита невозможна
	ErrCannotCheckOut = errors.New("booking cannot be checked out")

	// ErrCannotComplete возвращается, когда бронирование нельзя завершить
	ErrCannotComplete = errors.New("booking cannot be completed")

	// ErrCannotMarkNoShow возвращается, когда неявку отметить нельзя:
	// неподходящий статус, клиент уже отмечался или время визита еще не прошло
	ErrCannotMarkNoShow = errors.New("booking cannot be marked as no-show")

	// ErrInvalidStatus возвращается при некорректном значении статуса в фильтре
	ErrInvalidStatus = errors.New("invalid booking status")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
