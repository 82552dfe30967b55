package payments

import "errors"

var (
	// ErrInvoiceNotFound возвращается, когда у бронирования нет счета в платежном сервисе
	ErrInvoiceNotFound = errors.New("booking has no invoice")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("payments client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("payments client: invalid response")

	// ErrServiceDegraded возвращается при применении graceful degradation
	// Указывает, что платежный сервис недоступен и событие нужно залогировать, а не ронять операцию
	ErrServiceDegraded = errors.New("payments service unavailable: graceful degradation applied")
)
