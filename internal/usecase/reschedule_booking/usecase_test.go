package reschedule_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velvetspa/SPA-BookingService/internal/domain"
	bookingRepo "github.com/velvetspa/SPA-BookingService/internal/infra/storage/booking"
	employeeRepo "github.com/velvetspa/SPA-BookingService/internal/infra/storage/employee"
)

// Визит в среду 2025-10-15 10:00, перенос запрашивается за двое суток
var (
	oldDate = time.Date(2025, 10, 15, 10, 0, 0, 0, time.UTC)
	newDate = time.Date(2025, 10, 22, 0, 0, 0, 0, time.UTC)
	testNow = time.Date(2025, 10, 13, 9, 0, 0, 0, time.UTC)
)

type fakeBookingRepo struct {
	booking   *domain.Booking
	committed []domain.ServiceLine
	applied   *domain.Booking
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	if f.booking == nil || f.booking.ID != id {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return f.booking, nil
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

func (f *fakeBookingRepo) ApplyReschedule(_ context.Context, b *domain.Booking) error {
	f.applied = b
	return nil
}

type fakeEmployeeRepo struct {
	employees map[int64]*domain.Employee
}

func (f *fakeEmployeeRepo) GetByID(_ context.Context, id int64) (*domain.Employee, error) {
	emp, ok := f.employees[id]
	if !ok {
		return nil, employeeRepo.ErrEmployeeNotFound
	}
	return emp, nil
}

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
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

func testBooking() *domain.Booking {
	return &domain.Booking{
		ID:              7,
		BookingNumber:   "BK2510100001",
		ClientID:        42,
		AppointmentDate: oldDate,
		Status:          domain.StatusConfirmed,
		Services: []domain.ServiceLine{
			{
				ID:         70,
				BookingID:  7,
				ServiceID:  5,
				EmployeeID: 1,
				StartTime:  oldDate,
				EndTime:    oldDate.Add(time.Hour),
				Status:     domain.LineScheduled,
			},
		},
	}
}

func newTestEnv() (*UseCase, *fakeBookingRepo) {
	bookings := &fakeBookingRepo{booking: testBooking()}
	employees := &fakeEmployeeRepo{employees: map[int64]*domain.Employee{
		1: {
			ID:       1,
			IsActive: true,
			WorkSchedule: domain.WorkSchedule{
				Wednesday: domain.DaySchedule{IsWorking: true, StartTime: "09:00", EndTime: "18:00"},
			},
		},
	}}

	uc := NewUseCase(bookings, employees, fakeTxManager{}, nopLogger{})
	uc.timeProvider = &fixedTimeProvider{now: testNow}

	return uc, bookings
}

func validRequest() *Request {
	return &Request{
		BookingID:     7,
		RequesterID:   42,
		RequesterRole: "client",
		NewDate:       newDate,
		NewStartTime:  "14:00",
		Reason:        "не успеваю",
	}
}

func TestUseCase_Execute_ShiftsAllLines(t *testing.T) {
	uc, bookings := newTestEnv()

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 10, 22, 14, 0, 0, 0, time.UTC), resp.AppointmentDate)
	assert.Equal(t, oldDate, resp.OriginalDate)
	assert.Equal(t, 1, resp.RescheduleCount)

	require.NotNil(t, bookings.applied)
	line := bookings.applied.Services[0]
	assert.Equal(t, time.Date(2025, 10, 22, 14, 0, 0, 0, time.UTC), line.StartTime)
	assert.Equal(t, time.Date(2025, 10, 22, 15, 0, 0, 0, time.UTC), line.EndTime)
}

func TestUseCase_Execute_IncrementsRescheduleCount(t *testing.T) {
	uc, bookings := newTestEnv()
	bookings.booking.Reschedule = &domain.Reschedule{
		OriginalDate:    oldDate.AddDate(0, 0, -3),
		RescheduleCount: 1,
	}

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, resp.RescheduleCount)
	// Первоначальная дата записи о переносе - дата ДО текущего переноса
	assert.Equal(t, oldDate, resp.OriginalDate)
}

func TestUseCase_Execute_OwnLinesDoNotBlockReschedule(t *testing.T) {
	uc, bookings := newTestEnv()
	// Строка самого переносимого бронирования уже стоит на новом месте
	// (например, перенос на тот же день): конфликтом не считается
	bookings.committed = []domain.ServiceLine{
		{
			BookingID:  7,
			EmployeeID: 1,
			StartTime:  time.Date(2025, 10, 22, 14, 0, 0, 0, time.UTC),
			EndTime:    time.Date(2025, 10, 22, 15, 0, 0, 0, time.UTC),
		},
	}

	_, err := uc.Execute(context.Background(), validRequest())
	assert.NoError(t, err)
}

func TestUseCase_Execute_ForeignLinesBlockReschedule(t *testing.T) {
	uc, bookings := newTestEnv()
	bookings.committed = []domain.ServiceLine{
		{
			BookingID:  99,
			EmployeeID: 1,
			StartTime:  time.Date(2025, 10, 22, 14, 30, 0, 0, time.UTC),
			EndTime:    time.Date(2025, 10, 22, 15, 30, 0, 0, time.UTC),
		},
	}

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
}

func TestUseCase_Execute_Guards(t *testing.T) {
	t.Run("booking not found", func(t *testing.T) {
		uc, _ := newTestEnv()
		req := validRequest()
		req.BookingID = 404

		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})

	t.Run("client cannot reschedule foreign booking", func(t *testing.T) {
		uc, _ := newTestEnv()
		req := validRequest()
		req.RequesterID = 777

		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unrecognized role cannot reschedule foreign booking", func(t *testing.T) {
		uc, _ := newTestEnv()
		req := validRequest()
		req.RequesterID = 999
		req.RequesterRole = "manager"

		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("staff can reschedule foreign booking", func(t *testing.T) {
		uc, _ := newTestEnv()
		req := validRequest()
		req.RequesterID = 777
		req.RequesterRole = "staff"

		_, err := uc.Execute(context.Background(), req)
		assert.NoError(t, err)
	})

	t.Run("in_progress cannot be rescheduled", func(t *testing.T) {
		uc, bookings := newTestEnv()
		bookings.booking.Status = domain.StatusInProgress

		_, err := uc.Execute(context.Background(), validRequest())
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("reschedule limit reached", func(t *testing.T) {
		uc, bookings := newTestEnv()
		bookings.booking.Reschedule = &domain.Reschedule{RescheduleCount: domain.MaxReschedules}

		_, err := uc.Execute(context.Background(), validRequest())
		assert.ErrorIs(t, err, ErrRescheduleLimitReached)
	})

	t.Run("exactly 12 hours before is too late", func(t *testing.T) {
		uc, _ := newTestEnv()
		uc.timeProvider = &fixedTimeProvider{now: oldDate.Add(-12 * time.Hour)}

		_, err := uc.Execute(context.Background(), validRequest())
		assert.ErrorIs(t, err, ErrTooLateToReschedule)
	})

	t.Run("just over 12 hours before is allowed", func(t *testing.T) {
		uc, _ := newTestEnv()
		uc.timeProvider = &fixedTimeProvider{now: oldDate.Add(-12*time.Hour - time.Minute)}

		_, err := uc.Execute(context.Background(), validRequest())
		assert.NoError(t, err)
	})

	t.Run("employee not working on new date", func(t *testing.T) {
		uc, _ := newTestEnv()
		req := validRequest()
		req.NewDate = newDate.AddDate(0, 0, 1) // четверг вне шаблона

		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrEmployeeNotWorking)
	})

	t.Run("shifted line outside working hours", func(t *testing.T) {
		uc, _ := newTestEnv()
		req := validRequest()
		req.NewStartTime = "17:30"

		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrOutsideWorkingHours)
	})
}
