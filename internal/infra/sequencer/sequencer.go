package sequencer

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/velvetspa/SPA-BookingService/internal/domain"
)

// keyTTL - ключ счетчика живет двое суток после последнего инкремента,
// чтобы пережить границу дня в любой таймзоне
const keyTTL = 48 * time.Hour

// Logger интерфейс логирования
type Logger interface {
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// Sequencer выдает номера бронирований вида BK + YYMMDD + порядковый номер
// Счетчик атомарный (Redis INCR) и скоупится на дату создания бронирования
type Sequencer struct {
	client *redis.Client
	logger Logger
}

// New создает новый нумератор бронирований
func New(client *redis.Client, logger Logger) *Sequencer {
	return &Sequencer{
		client: client,
		logger: logger,
	}
}

// Next возвращает следующий номер бронирования для даты createdAt
// Конкурентные вызовы для одной даты получают различные последовательные номера
func (s *Sequencer) Next(ctx context.Context, createdAt time.Time) (string, error) {
	dateKey := createdAt.Format(domain.BookingNumberDateFormat)
	counterKey := fmt.Sprintf("seq:bookings:%s", dateKey)

	seq, err := s.client.Incr(ctx, counterKey).Result()
	if err != nil {
		s.logger.Error("Sequencer.Next: redis INCR failed for key %s: %v", counterKey, err)
		return "", fmt.Errorf("%w: %v", ErrSequencerUnavailable, err)
	}

	// TTL продлевается на каждом инкременте; ошибка не критична -
	// ключ в худшем случае проживет дольше
	if err := s.client.Expire(ctx, counterKey, keyTTL).Err(); err != nil {
		s.logger.Warn("Sequencer.Next: failed to set TTL for key %s: %v", counterKey, err)
	}

	return fmt.Sprintf("%s%s%0*d", domain.BookingNumberPrefix, dateKey, domain.BookingNumberSeqDigits, seq), nil
}
