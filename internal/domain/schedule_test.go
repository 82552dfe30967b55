package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velvetspa/SPA-BookingService/pkg/types"
)

// Среда 2025-10-15
var testDate = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)

func workingDay(start, end string) DaySchedule {
	return DaySchedule{
		IsWorking: true,
		StartTime: types.TimeString(start),
		EndTime:   types.TimeString(end),
	}
}

func employeeWithWednesday(day DaySchedule) *Employee {
	return &Employee{
		ID:           1,
		IsActive:     true,
		WorkSchedule: WorkSchedule{Wednesday: day},
	}
}

func TestWorkingWindowFor(t *testing.T) {
	t.Run("working day resolves to window", func(t *testing.T) {
		emp := employeeWithWednesday(workingDay("09:00", "18:00"))

		window, err := WorkingWindowFor(emp, testDate)
		require.NoError(t, err)
		require.NotNil(t, window)
		assert.Equal(t, time.Date(2025, 10, 15, 9, 0, 0, 0, time.UTC), window.Start)
		assert.Equal(t, time.Date(2025, 10, 15, 18, 0, 0, 0, time.UTC), window.End)
		assert.Nil(t, window.BreakStart)
		assert.Nil(t, window.BreakEnd)
	})

	t.Run("non-working day resolves to nil", func(t *testing.T) {
		emp := employeeWithWednesday(DaySchedule{IsWorking: false})

		window, err := WorkingWindowFor(emp, testDate)
		require.NoError(t, err)
		assert.Nil(t, window)
	})

	t.Run("break is surfaced on the window", func(t *testing.T) {
		day := workingDay("09:00", "18:00")
		day.BreakStart = "13:00"
		day.BreakEnd = "14:00"
		emp := employeeWithWednesday(day)

		window, err := WorkingWindowFor(emp, testDate)
		require.NoError(t, err)
		require.NotNil(t, window)
		require.NotNil(t, window.BreakStart)
		require.NotNil(t, window.BreakEnd)
		assert.Equal(t, time.Date(2025, 10, 15, 13, 0, 0, 0, time.UTC), *window.BreakStart)
		assert.Equal(t, time.Date(2025, 10, 15, 14, 0, 0, 0, time.UTC), *window.BreakEnd)
	})

	t.Run("inverted break is dropped but day stays open", func(t *testing.T) {
		day := workingDay("09:00", "18:00")
		day.BreakStart = "15:00"
		day.BreakEnd = "14:00"
		emp := employeeWithWednesday(day)

		window, err := WorkingWindowFor(emp, testDate)
		require.NoError(t, err)
		require.NotNil(t, window)
		assert.Nil(t, window.BreakStart)
		assert.Nil(t, window.BreakEnd)
	})

	t.Run("exception closes a working day", func(t *testing.T) {
		emp := employeeWithWednesday(workingDay("09:00", "18:00"))
		emp.Exceptions = []UnavailabilityException{
			{
				StartDate: time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC),
				EndDate:   time.Date(2025, 10, 17, 0, 0, 0, 0, time.UTC),
				Kind:      ExceptionVacation,
			},
		}

		window, err := WorkingWindowFor(emp, testDate)
		require.NoError(t, err)
		assert.Nil(t, window)
	})

	t.Run("exception boundaries are inclusive", func(t *testing.T) {
		emp := employeeWithWednesday(workingDay("09:00", "18:00"))
		emp.Exceptions = []UnavailabilityException{
			{
				StartDate: testDate,
				EndDate:   testDate,
				Kind:      ExceptionSickLeave,
			},
		}

		window, err := WorkingWindowFor(emp, testDate)
		require.NoError(t, err)
		assert.Nil(t, window)
	})

	t.Run("exception outside the date does not close the day", func(t *testing.T) {
		emp := employeeWithWednesday(workingDay("09:00", "18:00"))
		emp.Exceptions = []UnavailabilityException{
			{
				StartDate: time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC),
				EndDate:   time.Date(2025, 10, 25, 0, 0, 0, 0, time.UTC),
				Kind:      ExceptionVacation,
			},
		}

		window, err := WorkingWindowFor(emp, testDate)
		require.NoError(t, err)
		assert.NotNil(t, window)
	})

	t.Run("working day without boundaries fails closed", func(t *testing.T) {
		emp := employeeWithWednesday(DaySchedule{IsWorking: true})

		window, err := WorkingWindowFor(emp, testDate)
		assert.ErrorIs(t, err, ErrCorruptSchedule)
		assert.Nil(t, window)
	})

	t.Run("inverted shift boundaries fail closed", func(t *testing.T) {
		emp := employeeWithWednesday(workingDay("18:00", "09:00"))

		window, err := WorkingWindowFor(emp, testDate)
		assert.ErrorIs(t, err, ErrCorruptSchedule)
		assert.Nil(t, window)
	})

	t.Run("zero-length shift fails closed", func(t *testing.T) {
		emp := employeeWithWednesday(workingDay("09:00", "09:00"))

		window, err := WorkingWindowFor(emp, testDate)
		assert.ErrorIs(t, err, ErrCorruptSchedule)
		assert.Nil(t, window)
	})

	t.Run("unparseable boundary fails closed", func(t *testing.T) {
		day := DaySchedule{
			IsWorking: true,
			StartTime: "garbage",
			EndTime:   "18:00",
		}
		emp := employeeWithWednesday(day)

		window, err := WorkingWindowFor(emp, testDate)
		assert.ErrorIs(t, err, ErrCorruptSchedule)
		assert.Nil(t, window)
	})
}
