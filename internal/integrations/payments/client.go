package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client клиент для работы с платежным сервисом
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента платежного сервиса
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// CreateInvoice регистрирует счет на оплату бронирования
func (c *Client) CreateInvoice(ctx context.Context, inv Invoice) (*InvoiceResult, error) {
	url := fmt.Sprintf("%s/internal/invoices", c.baseURL)

	resp, err := c.post(ctx, url, inv)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		// Продолжаем обработку
	case http.StatusBadRequest:
		return nil, fmt.Errorf("%w: invalid invoice payload", ErrInvalidResponse)
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var result InvoiceResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return &result, nil
}

// RequestRefund инициирует возврат средств при отмене бронирования
func (c *Client) RequestRefund(ctx context.Context, req RefundRequest) error {
	url := fmt.Sprintf("%s/internal/refunds", c.baseURL)

	resp, err := c.post(ctx, url, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted:
		return nil
	case http.StatusNotFound:
		return ErrInvoiceNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}
}

// CreateInvoiceWithGracefulDegradation регистрирует счет с graceful degradation
// При недоступности платежного сервиса возвращает ErrServiceDegraded -
// бронирование создается, счет выставляется позже вручную
func (c *Client) CreateInvoiceWithGracefulDegradation(ctx context.Context, inv Invoice) (*InvoiceResult, error) {
	c.log.Info("Creating invoice for booking_number=%s, amount=%.2f", inv.BookingNumber, inv.Amount)

	result, err := c.CreateInvoice(ctx, inv)
	if err != nil {
		// Повышаем уровень логирования до ERROR, чтобы быстрее заметить проблему
		c.log.Error("Payment service unavailable, applying graceful degradation for booking_number=%s: %v", inv.BookingNumber, err)
		return nil, fmt.Errorf("%w: booking_number=%s, error=%v", ErrServiceDegraded, inv.BookingNumber, err)
	}

	c.log.Info("Invoice created for booking_number=%s, invoice_id=%s", inv.BookingNumber, result.InvoiceID)
	return result, nil
}

// RequestRefundWithGracefulDegradation инициирует возврат с graceful degradation
// Отмена бронирования не должна падать из-за недоступности платежного сервиса
func (c *Client) RequestRefundWithGracefulDegradation(ctx context.Context, req RefundRequest) error {
	c.log.Info("Requesting refund for booking_number=%s, amount=%.2f", req.BookingNumber, req.Amount)

	if err := c.RequestRefund(ctx, req); err != nil {
		// Отсутствие счета - бизнес-факт (бронирование не оплачивалось), пробрасываем дальше
		if err == ErrInvoiceNotFound {
			c.log.Info("No invoice found for booking_number=%s", req.BookingNumber)
			return err
		}

		c.log.Error("Payment service unavailable, applying graceful degradation for booking_number=%s: %v", req.BookingNumber, err)
		return fmt.Errorf("%w: booking_number=%s, error=%v", ErrServiceDegraded, req.BookingNumber, err)
	}

	c.log.Info("Refund requested for booking_number=%s", req.BookingNumber)
	return nil
}

func (c *Client) post(ctx context.Context, url string, payload interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}

	return resp, nil
}
