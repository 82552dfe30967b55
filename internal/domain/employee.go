package domain

import "time"

// Employee мастер салона с рабочим расписанием
type Employee struct {
	ID           int64
	UserID       int64
	EmployeeCode string // например "EMP-0012"
	DisplayName  string
	Position     string
	IsActive     bool
	WorkSchedule WorkSchedule
	Exceptions   []UnavailabilityException
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
