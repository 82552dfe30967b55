package sequencer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newTestSequencer(t *testing.T) (*Sequencer, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return New(client, nopLogger{}), mr
}

func TestSequencer_Next(t *testing.T) {
	seq, _ := newTestSequencer(t)
	createdAt := time.Date(2025, 7, 5, 12, 0, 0, 0, time.UTC)

	first, err := seq.Next(context.Background(), createdAt)
	require.NoError(t, err)
	assert.Equal(t, "BK2507050001", first)

	second, err := seq.Next(context.Background(), createdAt)
	require.NoError(t, err)
	assert.Equal(t, "BK2507050002", second)
}

func TestSequencer_Next_CounterScopedToCreationDate(t *testing.T) {
	seq, _ := newTestSequencer(t)

	day1 := time.Date(2025, 7, 5, 23, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 7, 6, 1, 0, 0, 0, time.UTC)

	n1, err := seq.Next(context.Background(), day1)
	require.NoError(t, err)
	n2, err := seq.Next(context.Background(), day2)
	require.NoError(t, err)

	// Счетчик каждого дня начинается с единицы
	assert.Equal(t, "BK2507050001", n1)
	assert.Equal(t, "BK2507060001", n2)
}

func TestSequencer_Next_ConcurrentCallsGetDistinctNumbers(t *testing.T) {
	seq, _ := newTestSequencer(t)
	createdAt := time.Date(2025, 7, 5, 12, 0, 0, 0, time.UTC)

	const workers = 20

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = make(map[string]bool)
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := seq.Next(context.Background(), createdAt)
			assert.NoError(t, err)

			mu.Lock()
			numbers[n] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, numbers, workers)
	assert.True(t, numbers["BK2507050001"])
	assert.True(t, numbers["BK2507050020"])
}

func TestSequencer_Next_SetsTTL(t *testing.T) {
	seq, mr := newTestSequencer(t)
	createdAt := time.Date(2025, 7, 5, 12, 0, 0, 0, time.UTC)

	_, err := seq.Next(context.Background(), createdAt)
	require.NoError(t, err)

	ttl := mr.TTL("seq:bookings:250705")
	assert.Equal(t, keyTTL, ttl)
}

func TestSequencer_Next_RedisDownFailsClosed(t *testing.T) {
	seq, mr := newTestSequencer(t)
	mr.Close()

	_, err := seq.Next(context.Background(), time.Now())
	assert.ErrorIs(t, err, ErrSequencerUnavailable)
}
