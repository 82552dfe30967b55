package payments

// Invoice счет на оплату бронирования
type Invoice struct {
	BookingID     int64   `json:"booking_id"`
	BookingNumber string  `json:"booking_number"`
	ClientID      int64   `json:"client_id"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
}

// InvoiceResult результат регистрации счета в платежном сервисе
type InvoiceResult struct {
	InvoiceID  string `json:"invoice_id"`
	PaymentURL string `json:"payment_url"`
	Status     string `json:"status"`
}

// RefundRequest запрос на возврат средств при отмене бронирования
type RefundRequest struct {
	BookingID     int64   `json:"booking_id"`
	BookingNumber string  `json:"booking_number"`
	Amount        float64 `json:"amount"`
	Reason        string  `json:"reason"`
}

// ErrorResponse модель ошибки от платежного сервиса
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
