package get_available_slots

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

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrScheduleCorrupt возвращается, когда расписание мастера на рабочий день
	// содержит некорректные границы. День закрывается, ошибка логируется как data error
	ErrScheduleCorrupt = errors.New("employee schedule is corrupt")

	// ErrDataIntegrity возвращается, когда подтвержденные бронирования мастера
	// уже пересекаются между собой. Данные не чинятся, ошибка поднимается наверх
	ErrDataIntegrity = errors.New("committed bookings overlap each other")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
