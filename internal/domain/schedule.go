package domain

import (
	"errors"
	"time"

	"github.com/velvetspa/SPA-BookingService/pkg/types"
)

// ErrCorruptSchedule возвращается, когда у рабочего дня некорректные или
// отсутствующие границы смены. Резолвер обязан "падать закрыто":
// такой день считается нерабочим, а не источником невалидных слотов
var ErrCorruptSchedule = errors.New("domain: corrupt work schedule")

// DaySchedule рабочий шаблон одного дня недели
// Времена - wall-clock (HH:MM) в локальном времени салона
type DaySchedule struct {
	IsWorking  bool
	StartTime  types.TimeString
	EndTime    types.TimeString
	BreakStart types.TimeString // опционально
	BreakEnd   types.TimeString // опционально
}

// WorkSchedule недельный повторяющийся шаблон работы мастера
type WorkSchedule struct {
	Monday    DaySchedule
	Tuesday   DaySchedule
	Wednesday DaySchedule
	Thursday  DaySchedule
	Friday    DaySchedule
	Saturday  DaySchedule
	Sunday    DaySchedule
}

// ForWeekday возвращает шаблон для дня недели
func (ws *WorkSchedule) ForWeekday(weekday time.Weekday) DaySchedule {
	switch weekday {
	case time.Monday:
		return ws.Monday
	case time.Tuesday:
		return ws.Tuesday
	case time.Wednesday:
		return ws.Wednesday
	case time.Thursday:
		return ws.Thursday
	case time.Friday:
		return ws.Friday
	case time.Saturday:
		return ws.Saturday
	case time.Sunday:
		return ws.Sunday
	default:
		return DaySchedule{IsWorking: false}
	}
}

// ExceptionKind тип исключения из расписания
type ExceptionKind string

const (
	ExceptionVacation  ExceptionKind = "vacation"
	ExceptionSickLeave ExceptionKind = "sick_leave"
	ExceptionTraining  ExceptionKind = "training"
	ExceptionPersonal  ExceptionKind = "personal"
	ExceptionOther     ExceptionKind = "other"
)

// UnavailabilityException диапазон дат, в котором мастер не работает
// независимо от недельного шаблона
type UnavailabilityException struct {
	ID         int64
	EmployeeID int64
	StartDate  time.Time
	EndDate    time.Time
	Reason     string
	Kind       ExceptionKind
}

// Covers проверяет, попадает ли дата в диапазон исключения (включительно по датам)
func (e *UnavailabilityException) Covers(date time.Time) bool {
	d := truncateToDay(date)
	start := truncateToDay(e.StartDate)
	end := truncateToDay(e.EndDate)
	return !d.Before(start) && !d.After(end)
}

// WorkingWindow открытый рабочий интервал мастера на конкретную дату
type WorkingWindow struct {
	Start      time.Time
	End        time.Time
	BreakStart *time.Time
	BreakEnd   *time.Time
}

// WorkingWindowFor резолвит рабочее окно мастера на дату
// Чистая функция от (employee, date):
//   - день по недельному шаблону нерабочий -> (nil, nil)
//   - дата попадает в UnavailabilityException -> (nil, nil) независимо от шаблона
//   - рабочий день с некорректными границами -> (nil, ErrCorruptSchedule)
func WorkingWindowFor(emp *Employee, date time.Time) (*WorkingWindow, error) {
	day := emp.WorkSchedule.ForWeekday(date.Weekday())
	if !day.IsWorking {
		return nil, nil
	}

	for i := range emp.Exceptions {
		if emp.Exceptions[i].Covers(date) {
			return nil, nil
		}
	}

	if day.StartTime.IsZero() || day.EndTime.IsZero() {
		return nil, ErrCorruptSchedule
	}

	start, err := day.StartTime.At(date)
	if err != nil {
		return nil, ErrCorruptSchedule
	}

	end, err := day.EndTime.At(date)
	if err != nil {
		return nil, ErrCorruptSchedule
	}

	if !start.Before(end) {
		return nil, ErrCorruptSchedule
	}

	window := &WorkingWindow{Start: start, End: end}

	// Перерыв опционален; битые значения перерыва день не закрывают
	if !day.BreakStart.IsZero() && !day.BreakEnd.IsZero() {
		if bs, err := day.BreakStart.At(date); err == nil {
			if be, err := day.BreakEnd.At(date); err == nil && bs.Before(be) {
				window.BreakStart = &bs
				window.BreakEnd = &be
			}
		}
	}

	return window, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
