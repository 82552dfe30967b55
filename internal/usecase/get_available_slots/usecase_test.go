package get_available_slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velvetspa/SPA-BookingService/internal/domain"
	"github.com/velvetspa/SPA-BookingService/pkg/types"
)

// Среда 2025-10-15
var testDate = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)

type fakeBookingRepo struct {
	lines []domain.ServiceLine
	err   error
}

func (f *fakeBookingRepo) GetCommittedLines(_ context.Context, _ int64, _ time.Time) ([]domain.ServiceLine, error) {
	return f.lines, f.err
}

type fakeEmployeeRepo struct {
	employee *domain.Employee
	err      error
}

func (f *fakeEmployeeRepo) GetByID(_ context.Context, _ int64) (*domain.Employee, error) {
	return f.employee, f.err
}

type fakeCatalogRepo struct {
	service *domain.Service
	err     error
}

func (f *fakeCatalogRepo) GetByID(_ context.Context, _ int64) (*domain.Service, error) {
	return f.service, f.err
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func testEmployee() *domain.Employee {
	return &domain.Employee{
		ID:       1,
		IsActive: true,
		WorkSchedule: domain.WorkSchedule{
			Wednesday: domain.DaySchedule{
				IsWorking: true,
				StartTime: "09:00",
				EndTime:   "18:00",
			},
		},
	}
}

func testService(durationMinutes int) *domain.Service {
	return &domain.Service{
		ID:              5,
		Name:            "Массаж спины",
		DurationMinutes: durationMinutes,
		Price:           3000,
		IsActive:        true,
	}
}

func lineAt(start, end string) domain.ServiceLine {
	st, _ := types.TimeString(start).At(testDate)
	en, _ := types.TimeString(end).At(testDate)
	return domain.ServiceLine{
		EmployeeID: 1,
		StartTime:  st,
		EndTime:    en,
		Status:     domain.LineScheduled,
	}
}

func newTestUseCase(b *fakeBookingRepo, e *fakeEmployeeRepo, c *fakeCatalogRepo) *UseCase {
	return NewUseCase(b, e, c, nopLogger{})
}

func TestUseCase_Execute_SlotGrid(t *testing.T) {
	// Смена 09:00-18:00, услуга 60 минут, шаг 30 минут:
	// кандидаты 09:00, 09:30, ..., 17:00 - всего 17 слотов,
	// слот 17:30-18:30 отбрасывается целиком
	uc := newTestUseCase(
		&fakeBookingRepo{},
		&fakeEmployeeRepo{employee: testEmployee()},
		&fakeCatalogRepo{service: testService(60)},
	)

	resp, err := uc.Execute(context.Background(), &Request{EmployeeID: 1, ServiceID: 5, Date: testDate})
	require.NoError(t, err)
	require.Len(t, resp.Slots, 17)

	assert.Equal(t, types.TimeString("09:00"), resp.Slots[0].StartTime)
	assert.Equal(t, types.TimeString("10:00"), resp.Slots[0].EndTime)
	assert.Equal(t, types.TimeString("17:00"), resp.Slots[16].StartTime)
	assert.Equal(t, types.TimeString("18:00"), resp.Slots[16].EndTime)

	for _, slot := range resp.Slots {
		assert.True(t, slot.Available)
	}
}

func TestUseCase_Execute_CommittedLinesBlockSlots(t *testing.T) {
	// Строка 11:20-11:40: полуоткрытые интервалы, занят каждый слот,
	// который реально пересекает строку
	uc := newTestUseCase(
		&fakeBookingRepo{lines: []domain.ServiceLine{lineAt("11:20", "11:40")}},
		&fakeEmployeeRepo{employee: testEmployee()},
		&fakeCatalogRepo{service: testService(30)},
	)

	resp, err := uc.Execute(context.Background(), &Request{EmployeeID: 1, ServiceID: 5, Date: testDate})
	require.NoError(t, err)

	availability := make(map[types.TimeString]bool, len(resp.Slots))
	for _, slot := range resp.Slots {
		availability[slot.StartTime] = slot.Available
	}

	assert.False(t, availability["11:00"]) // 11:00-11:30 пересекает 11:20-11:40
	assert.False(t, availability["11:30"]) // 11:30-12:00 пересекает 11:20-11:40
	assert.True(t, availability["10:30"])  // 10:30-11:00 граничит, не пересекает
	assert.True(t, availability["12:00"])
}

func TestUseCase_Execute_TouchingIntervalsAreFree(t *testing.T) {
	uc := newTestUseCase(
		&fakeBookingRepo{lines: []domain.ServiceLine{lineAt("11:00", "11:30")}},
		&fakeEmployeeRepo{employee: testEmployee()},
		&fakeCatalogRepo{service: testService(30)},
	)

	resp, err := uc.Execute(context.Background(), &Request{EmployeeID: 1, ServiceID: 5, Date: testDate})
	require.NoError(t, err)

	for _, slot := range resp.Slots {
		switch slot.StartTime {
		case "11:00":
			assert.False(t, slot.Available)
		case "10:30", "11:30":
			// граничащие слоты свободны
			assert.True(t, slot.Available)
		}
	}
}

func TestUseCase_Execute_UnsortedCommittedLines(t *testing.T) {
	// Порядок строк на входе не влияет на результат
	linesA := []domain.ServiceLine{lineAt("10:00", "10:30"), lineAt("14:00", "15:00")}
	linesB := []domain.ServiceLine{lineAt("14:00", "15:00"), lineAt("10:00", "10:30")}

	run := func(lines []domain.ServiceLine) *Response {
		uc := newTestUseCase(
			&fakeBookingRepo{lines: lines},
			&fakeEmployeeRepo{employee: testEmployee()},
			&fakeCatalogRepo{service: testService(30)},
		)
		resp, err := uc.Execute(context.Background(), &Request{EmployeeID: 1, ServiceID: 5, Date: testDate})
		require.NoError(t, err)
		return resp
	}

	assert.Equal(t, run(linesA), run(linesB))
}

func TestUseCase_Execute_Deterministic(t *testing.T) {
	uc := newTestUseCase(
		&fakeBookingRepo{lines: []domain.ServiceLine{lineAt("12:00", "13:00")}},
		&fakeEmployeeRepo{employee: testEmployee()},
		&fakeCatalogRepo{service: testService(45)},
	)

	first, err := uc.Execute(context.Background(), &Request{EmployeeID: 1, ServiceID: 5, Date: testDate})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		next, err := uc.Execute(context.Background(), &Request{EmployeeID: 1, ServiceID: 5, Date: testDate})
		require.NoError(t, err)
		assert.Equal(t, first, next)
	}
}

func TestUseCase_Execute_NonWorkingDayReturnsEmpty(t *testing.T) {
	emp := testEmployee()
	emp.WorkSchedule.Wednesday.IsWorking = false

	uc := newTestUseCase(
		&fakeBookingRepo{},
		&fakeEmployeeRepo{employee: emp},
		&fakeCatalogRepo{service: testService(60)},
	)

	resp, err := uc.Execute(context.Background(), &Request{EmployeeID: 1, ServiceID: 5, Date: testDate})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
	assert.Equal(t, 60, resp.DurationMinutes)
}

func TestUseCase_Execute_BreakAnnotation(t *testing.T) {
	emp := testEmployee()
	emp.WorkSchedule.Wednesday.BreakStart = "13:00"
	emp.WorkSchedule.Wednesday.BreakEnd = "14:00"

	uc := newTestUseCase(
		&fakeBookingRepo{},
		&fakeEmployeeRepo{employee: emp},
		&fakeCatalogRepo{service: testService(30)},
	)

	resp, err := uc.Execute(context.Background(), &Request{EmployeeID: 1, ServiceID: 5, Date: testDate})
	require.NoError(t, err)
	require.NotNil(t, resp.BreakStart)
	require.NotNil(t, resp.BreakEnd)
	assert.Equal(t, types.TimeString("13:00"), *resp.BreakStart)
	assert.Equal(t, types.TimeString("14:00"), *resp.BreakEnd)

	// Перерыв - аннотация, слоты внутри перерыва не выбрасываются
	starts := make(map[types.TimeString]bool)
	for _, slot := range resp.Slots {
		starts[slot.StartTime] = true
	}
	assert.True(t, starts["13:00"])
	assert.True(t, starts["13:30"])
}

func TestUseCase_Execute_CorruptScheduleFailsClosed(t *testing.T) {
	emp := testEmployee()
	emp.WorkSchedule.Wednesday.EndTime = ""

	uc := newTestUseCase(
		&fakeBookingRepo{},
		&fakeEmployeeRepo{employee: emp},
		&fakeCatalogRepo{service: testService(60)},
	)

	_, err := uc.Execute(context.Background(), &Request{EmployeeID: 1, ServiceID: 5, Date: testDate})
	assert.ErrorIs(t, err, ErrScheduleCorrupt)
}

func TestUseCase_Execute_OverlappingCommittedLinesIsIntegrityError(t *testing.T) {
	uc := newTestUseCase(
		&fakeBookingRepo{lines: []domain.ServiceLine{
			lineAt("10:00", "11:00"),
			lineAt("10:30", "11:30"),
		}},
		&fakeEmployeeRepo{employee: testEmployee()},
		&fakeCatalogRepo{service: testService(30)},
	)

	_, err := uc.Execute(context.Background(), &Request{EmployeeID: 1, ServiceID: 5, Date: testDate})
	assert.ErrorIs(t, err, ErrDataIntegrity)
}

func TestUseCase_Execute_InactiveGuards(t *testing.T) {
	t.Run("inactive employee", func(t *testing.T) {
		emp := testEmployee()
		emp.IsActive = false

		uc := newTestUseCase(
			&fakeBookingRepo{},
			&fakeEmployeeRepo{employee: emp},
			&fakeCatalogRepo{service: testService(60)},
		)

		_, err := uc.Execute(context.Background(), &Request{EmployeeID: 1, ServiceID: 5, Date: testDate})
		assert.ErrorIs(t, err, ErrEmployeeInactive)
	})

	t.Run("inactive service", func(t *testing.T) {
		svc := testService(60)
		svc.IsActive = false

		uc := newTestUseCase(
			&fakeBookingRepo{},
			&fakeEmployeeRepo{employee: testEmployee()},
			&fakeCatalogRepo{service: svc},
		)

		_, err := uc.Execute(context.Background(), &Request{EmployeeID: 1, ServiceID: 5, Date: testDate})
		assert.ErrorIs(t, err, ErrServiceInactive)
	})
}

func TestGenerateCandidateSlots_ServiceLongerThanShift(t *testing.T) {
	start, _ := types.TimeString("09:00").At(testDate)
	end, _ := types.TimeString("10:00").At(testDate)
	window := &domain.WorkingWindow{Start: start, End: end}

	slots := generateCandidateSlots(window, 90, domain.DefaultTickMinutes)
	assert.Empty(t, slots)
}
