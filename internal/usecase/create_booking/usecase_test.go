package create_booking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velvetspa/SPA-BookingService/internal/domain"
	bookingRepo "github.com/velvetspa/SPA-BookingService/internal/infra/storage/booking"
	"github.com/velvetspa/SPA-BookingService/internal/integrations/payments"
	"github.com/velvetspa/SPA-BookingService/pkg/ptr"
)

// Среда 2025-10-15, запрос создается за сутки до визита
var (
	testDate = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)
	testNow  = time.Date(2025, 10, 14, 10, 0, 0, 0, time.UTC)
)

type fakeBookingRepo struct {
	committed     []domain.ServiceLine
	nextID        int64
	collisions    int // сколько первых Create завершаются коллизией номера
	createCalls   int
	createdNumber string
}

func (f *fakeBookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	f.createCalls++
	if f.createCalls <= f.collisions {
		return nil, bookingRepo.ErrBookingNumberTaken
	}
	f.nextID++
	b.ID = f.nextID
	b.CreatedAt = testNow
	b.UpdatedAt = testNow
	f.createdNumber = b.BookingNumber
	return b, nil
}

func (f *fakeBookingRepo) GetCommittedLines(_ context.Context, employeeID int64, _ time.Time) ([]domain.ServiceLine, error) {
	lines := make([]domain.ServiceLine, 0)
	for _, line := range f.committed {
		if line.EmployeeID == employeeID {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

type fakeEmployeeRepo struct {
	employees map[int64]*domain.Employee
}

func (f *fakeEmployeeRepo) GetByID(_ context.Context, id int64) (*domain.Employee, error) {
	emp, ok := f.employees[id]
	if !ok {
		return nil, fmt.Errorf("employee storage: employee not found")
	}
	return emp, nil
}

type fakeCatalogRepo struct {
	services map[int64]*domain.Service
}

func (f *fakeCatalogRepo) GetByIDs(_ context.Context, ids []int64) ([]*domain.Service, error) {
	result := make([]*domain.Service, 0, len(ids))
	for _, id := range ids {
		if svc, ok := f.services[id]; ok {
			result = append(result, svc)
		}
	}
	return result, nil
}

type fakeSequencer struct {
	calls int
}

func (f *fakeSequencer) Next(_ context.Context, createdAt time.Time) (string, error) {
	f.calls++
	return fmt.Sprintf("%s%s%04d", domain.BookingNumberPrefix,
		createdAt.Format(domain.BookingNumberDateFormat), f.calls), nil
}

type fakePaymentsClient struct {
	invoices []payments.Invoice
	err      error
}

func (f *fakePaymentsClient) CreateInvoiceWithGracefulDegradation(_ context.Context, inv payments.Invoice) (*payments.InvoiceResult, error) {
	f.invoices = append(f.invoices, inv)
	if f.err != nil {
		return nil, f.err
	}
	return &payments.InvoiceResult{InvoiceID: "inv-1"}, nil
}

type fakeTxManager struct {
	calls int
}

func (f *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fixedTimeProvider struct {
	now time.Time
}

func (p *fixedTimeProvider) Now() time.Time { return p.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type testEnv struct {
	uc        *UseCase
	bookings  *fakeBookingRepo
	sequencer *fakeSequencer
	payments  *fakePaymentsClient
	txManager *fakeTxManager
}

func newTestEnv() *testEnv {
	bookings := &fakeBookingRepo{}
	employees := &fakeEmployeeRepo{employees: map[int64]*domain.Employee{
		1: {
			ID:       1,
			IsActive: true,
			WorkSchedule: domain.WorkSchedule{
				Wednesday: domain.DaySchedule{IsWorking: true, StartTime: "09:00", EndTime: "18:00"},
			},
		},
	}}
	catalog := &fakeCatalogRepo{services: map[int64]*domain.Service{
		5: {ID: 5, Name: "Массаж спины", DurationMinutes: 60, Price: 3000, IsActive: true},
		6: {ID: 6, Name: "Маникюр", DurationMinutes: 30, Price: 1500, IsActive: true},
	}}
	seq := &fakeSequencer{}
	pay := &fakePaymentsClient{}
	tx := &fakeTxManager{}

	uc := NewUseCase(bookings, employees, catalog, seq, pay, tx, nopLogger{})
	uc.timeProvider = &fixedTimeProvider{now: testNow}

	return &testEnv{uc: uc, bookings: bookings, sequencer: seq, payments: pay, txManager: tx}
}

func validRequest() *Request {
	return &Request{
		ClientID:        42,
		AppointmentDate: testDate,
		Lines: []LineRequest{
			{ServiceID: 5, EmployeeID: 1, StartTime: "10:00"},
		},
		Source: domain.SourceWebsite,
	}
}

func TestUseCase_Execute_CreatesPendingBooking(t *testing.T) {
	env := newTestEnv()

	resp, err := env.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, "BK2510140001", resp.BookingNumber)
	assert.Equal(t, int64(42), resp.ClientID)
	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.Equal(t, string(domain.PaymentPending), resp.PaymentStatus)
	assert.Equal(t, 60, resp.TotalDurationMinutes)
	assert.Equal(t, 3000.0, resp.TotalAmount)
	assert.Equal(t, 3000.0, resp.FinalAmount)
	assert.Equal(t, time.Date(2025, 10, 15, 10, 0, 0, 0, time.UTC), resp.AppointmentDate)

	// Оплата при создании не отмечалась - инвойс не регистрируется
	assert.Empty(t, env.payments.invoices)
	assert.Equal(t, 1, env.txManager.calls)
}

func TestUseCase_Execute_FinalAmountLaw(t *testing.T) {
	env := newTestEnv()

	req := validRequest()
	req.Lines = append(req.Lines, LineRequest{ServiceID: 6, EmployeeID: 1, StartTime: "11:00"})
	req.DiscountAmount = 500
	req.TaxAmount = 200

	resp, err := env.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 4500.0, resp.TotalAmount)
	assert.Equal(t, 4200.0, resp.FinalAmount) // 4500 - 500 + 200
	assert.Equal(t, 90, resp.TotalDurationMinutes)
}

func TestUseCase_Execute_AppointmentDateIsEarliestLine(t *testing.T) {
	env := newTestEnv()

	req := validRequest()
	req.Lines = []LineRequest{
		{ServiceID: 6, EmployeeID: 1, StartTime: "14:00"},
		{ServiceID: 5, EmployeeID: 1, StartTime: "09:30"},
	}

	resp, err := env.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 10, 15, 9, 30, 0, 0, time.UTC), resp.AppointmentDate)
}

func TestUseCase_Execute_StaffMarkPaidRegistersInvoice(t *testing.T) {
	env := newTestEnv()

	req := validRequest()
	req.CreatedByStaff = true
	req.MarkPaid = true
	req.PaymentMethod = ptr.Ptr("card")
	req.Source = domain.SourceAdmin

	resp, err := env.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, string(domain.PaymentPaid), resp.PaymentStatus)

	require.Len(t, env.payments.invoices, 1)
	assert.Equal(t, resp.ID, env.payments.invoices[0].BookingID)
	assert.Equal(t, resp.FinalAmount, env.payments.invoices[0].Amount)
}

func TestUseCase_Execute_PaymentDegradationDoesNotFailBooking(t *testing.T) {
	env := newTestEnv()
	env.payments.err = payments.ErrServiceDegraded

	req := validRequest()
	req.CreatedByStaff = true
	req.MarkPaid = true
	req.Source = domain.SourceAdmin

	resp, err := env.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.NotZero(t, resp.ID)
}

func TestUseCase_Execute_MarkPaidByClientRejected(t *testing.T) {
	env := newTestEnv()

	req := validRequest()
	req.MarkPaid = true

	_, err := env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUseCase_Execute_SlotConflictInsideTx(t *testing.T) {
	env := newTestEnv()
	env.bookings.committed = []domain.ServiceLine{
		{
			EmployeeID: 1,
			StartTime:  time.Date(2025, 10, 15, 10, 30, 0, 0, time.UTC),
			EndTime:    time.Date(2025, 10, 15, 11, 30, 0, 0, time.UTC),
		},
	}

	_, err := env.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Zero(t, env.bookings.createCalls)
}

func TestUseCase_Execute_TouchingCommittedLineIsNotConflict(t *testing.T) {
	env := newTestEnv()
	env.bookings.committed = []domain.ServiceLine{
		{
			EmployeeID: 1,
			StartTime:  time.Date(2025, 10, 15, 9, 0, 0, 0, time.UTC),
			EndTime:    time.Date(2025, 10, 15, 10, 0, 0, 0, time.UTC),
		},
	}

	resp, err := env.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	assert.NotZero(t, resp.ID)
}

func TestUseCase_Execute_NumberCollisionRetriesWholeTx(t *testing.T) {
	env := newTestEnv()
	env.bookings.collisions = 2

	resp, err := env.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	// Две коллизии, третья попытка успешна: каждая попытка - новая
	// транзакция и новый номер
	assert.Equal(t, 3, env.txManager.calls)
	assert.Equal(t, 3, env.sequencer.calls)
	assert.Equal(t, "BK2510140003", resp.BookingNumber)
}

func TestUseCase_Execute_NumberRetriesExhausted(t *testing.T) {
	env := newTestEnv()
	env.bookings.collisions = maxNumberAttempts

	_, err := env.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrNumberRetriesExhausted)
	assert.Equal(t, maxNumberAttempts, env.txManager.calls)
}

func TestUseCase_Execute_CorruptCommittedDataIsIntegrityError(t *testing.T) {
	env := newTestEnv()
	env.bookings.committed = []domain.ServiceLine{
		{
			EmployeeID: 1,
			StartTime:  time.Date(2025, 10, 15, 14, 0, 0, 0, time.UTC),
			EndTime:    time.Date(2025, 10, 15, 15, 0, 0, 0, time.UTC),
		},
		{
			EmployeeID: 1,
			StartTime:  time.Date(2025, 10, 15, 14, 30, 0, 0, time.UTC),
			EndTime:    time.Date(2025, 10, 15, 15, 30, 0, 0, time.UTC),
		},
	}

	_, err := env.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrDataIntegrity)
}

func TestUseCase_Execute_Guards(t *testing.T) {
	t.Run("date in past", func(t *testing.T) {
		env := newTestEnv()
		req := validRequest()
		req.AppointmentDate = testNow.AddDate(0, 0, -1)

		_, err := env.uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrDateInPast)
	})

	t.Run("employee not working on date", func(t *testing.T) {
		env := newTestEnv()
		req := validRequest()
		// Четверг не входит в недельный шаблон мастера
		req.AppointmentDate = testDate.AddDate(0, 0, 1)

		_, err := env.uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrEmployeeNotWorking)
	})

	t.Run("line outside working hours", func(t *testing.T) {
		env := newTestEnv()
		req := validRequest()
		req.Lines[0].StartTime = "17:30" // 17:30 + 60 минут выходит за 18:00

		_, err := env.uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrOutsideWorkingHours)
	})

	t.Run("lines overlap each other", func(t *testing.T) {
		env := newTestEnv()
		req := validRequest()
		req.Lines = []LineRequest{
			{ServiceID: 5, EmployeeID: 1, StartTime: "10:00"},
			{ServiceID: 6, EmployeeID: 1, StartTime: "10:30"},
		}

		_, err := env.uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrLinesOverlap)
	})

	t.Run("unknown service", func(t *testing.T) {
		env := newTestEnv()
		req := validRequest()
		req.Lines[0].ServiceID = 999

		_, err := env.uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrServiceNotFound)
	})

	t.Run("empty lines", func(t *testing.T) {
		env := newTestEnv()
		req := validRequest()
		req.Lines = nil

		_, err := env.uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
