package employee

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/velvetspa/SPA-BookingService/internal/domain"
	"github.com/velvetspa/SPA-BookingService/pkg/dbmetrics"
	"github.com/velvetspa/SPA-BookingService/pkg/psqlbuilder"
)

// Repository репозиторий для работы с мастерами и их расписаниями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория мастеров
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает мастера вместе с недельным расписанием и исключениями
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"user_id",
		"employee_code",
		"display_name",
		"position",
		"is_active",
		"created_at",
		"updated_at",
	).
		From("employees").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var (
		emp       domain.Employee
		createdAt sql.NullTime
		updatedAt sql.NullTime
	)

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&emp.ID,
		&emp.UserID,
		&emp.EmployeeCode,
		&emp.DisplayName,
		&emp.Position,
		&emp.IsActive,
		&createdAt,
		&updatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan employee: %v", ErrScanRow, err)
	}

	emp.CreatedAt = createdAt.Time
	emp.UpdatedAt = updatedAt.Time

	if err := r.loadSchedule(ctx, executor, &emp); err != nil {
		return nil, err
	}
	if err := r.loadExceptions(ctx, executor, &emp); err != nil {
		return nil, err
	}

	return &emp, nil
}

// loadSchedule загружает строки недельного шаблона (по одной на день недели)
// Отсутствующая строка дня трактуется как нерабочий день
func (r *Repository) loadSchedule(ctx context.Context, executor DBExecutor, emp *domain.Employee) error {
	query, args, err := psqlbuilder.Select(
		"weekday",
		"is_working",
		"start_time",
		"end_time",
		"break_start",
		"break_end",
	).
		From("employee_schedules").
		Where(squirrel.Eq{"employee_id": emp.ID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: loadSchedule - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: loadSchedule - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			weekday int
			day     domain.DaySchedule
		)

		err := rows.Scan(
			&weekday,
			&day.IsWorking,
			&day.StartTime,
			&day.EndTime,
			&day.BreakStart,
			&day.BreakEnd,
		)
		if err != nil {
			return fmt.Errorf("%w: loadSchedule - scan day: %v", ErrScanRow, err)
		}

		setWeekday(&emp.WorkSchedule, time.Weekday(weekday), day)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: loadSchedule - rows error: %v", ErrScanRow, err)
	}

	return nil
}

func (r *Repository) loadExceptions(ctx context.Context, executor DBExecutor, emp *domain.Employee) error {
	query, args, err := psqlbuilder.Select(
		"id",
		"employee_id",
		"start_date",
		"end_date",
		"reason",
		"kind",
	).
		From("employee_unavailability").
		Where(squirrel.Eq{"employee_id": emp.ID}).
		OrderBy("start_date ASC").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: loadExceptions - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: loadExceptions - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	exceptions := make([]domain.UnavailabilityException, 0)
	for rows.Next() {
		var (
			exc    domain.UnavailabilityException
			reason sql.NullString
		)

		err := rows.Scan(
			&exc.ID,
			&exc.EmployeeID,
			&exc.StartDate,
			&exc.EndDate,
			&reason,
			&exc.Kind,
		)
		if err != nil {
			return fmt.Errorf("%w: loadExceptions - scan exception: %v", ErrScanRow, err)
		}

		exc.Reason = reason.String
		exceptions = append(exceptions, exc)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: loadExceptions - rows error: %v", ErrScanRow, err)
	}

	emp.Exceptions = exceptions
	return nil
}

// setWeekday раскладывает строку расписания в поле недельного шаблона
// weekday хранится в БД как time.Weekday (0 = воскресенье)
func setWeekday(ws *domain.WorkSchedule, weekday time.Weekday, day domain.DaySchedule) {
	switch weekday {
	case time.Monday:
		ws.Monday = day
	case time.Tuesday:
		ws.Tuesday = day
	case time.Wednesday:
		ws.Wednesday = day
	case time.Thursday:
		ws.Thursday = day
	case time.Friday:
		ws.Friday = day
	case time.Saturday:
		ws.Saturday = day
	case time.Sunday:
		ws.Sunday = day
	}
}
