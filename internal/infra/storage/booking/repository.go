package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/velvetspa/SPA-BookingService/internal/domain"
	"github.com/velvetspa/SPA-BookingService/pkg/dbmetrics"
	"github.com/velvetspa/SPA-BookingService/pkg/psqlbuilder"
)

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

var bookingColumns = []string{
	"id",
	"booking_number",
	"client_id",
	"appointment_date",
	"total_duration_minutes",
	"total_amount",
	"discount_amount",
	"tax_amount",
	"final_amount",
	"status",
	"payment_status",
	"payment_method",
	"source",
	"client_notes",
	"internal_notes",
	"cancelled_at",
	"cancelled_by",
	"cancellation_reason",
	"refund_amount",
	"cancellation_fee",
	"original_date",
	"rescheduled_at",
	"rescheduled_by",
	"reschedule_reason",
	"reschedule_count",
	"checked_in_at",
	"checked_in_by",
	"is_early_arrival",
	"wait_time_minutes",
	"checked_out_at",
	"checked_out_by",
	"actual_duration_minutes",
	"additional_charges",
	"tips",
	"created_at",
	"updated_at",
}

var lineColumns = []string{
	"id",
	"booking_id",
	"service_id",
	"employee_id",
	"service_name",
	"price",
	"duration_minutes",
	"start_time",
	"end_time",
	"status",
}

// Create создает бронирование вместе со строками услуг
// Вызывается внутри сериализуемой транзакции usecase создания бронирования
// (проверка доступности слота + вставка должны быть атомарны).
// Коллизия номера бронирования (unique index) маппится в ErrBookingNumberTaken
func (r *Repository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"booking_number",
			"client_id",
			"appointment_date",
			"total_duration_minutes",
			"total_amount",
			"discount_amount",
			"tax_amount",
			"final_amount",
			"status",
			"payment_status",
			"payment_method",
			"source",
			"client_notes",
			"internal_notes",
		).
		Values(
			b.BookingNumber,
			b.ClientID,
			b.AppointmentDate,
			b.TotalDurationMinutes,
			b.TotalAmount,
			b.DiscountAmount,
			b.TaxAmount,
			b.FinalAmount,
			b.Status,
			b.PaymentStatus,
			b.PaymentMethod,
			b.Source,
			b.ClientNotes,
			b.InternalNotes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, "bookings_booking_number_key") {
			return nil, ErrBookingNumberTaken
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	for i := range b.Services {
		line := &b.Services[i]
		line.BookingID = b.ID

		lineQuery, lineArgs, err := psqlbuilder.Insert("booking_services").
			Columns(
				"booking_id",
				"service_id",
				"employee_id",
				"service_name",
				"price",
				"duration_minutes",
				"start_time",
				"end_time",
				"status",
			).
			Values(
				line.BookingID,
				line.ServiceID,
				line.EmployeeID,
				line.ServiceName,
				line.Price,
				line.DurationMinutes,
				line.StartTime,
				line.EndTime,
				line.Status,
			).
			Suffix("RETURNING id").
			ToSql()

		if err != nil {
			return nil, fmt.Errorf("%w: Create - build line insert query: %v", ErrBuildQuery, err)
		}

		if err := executor.QueryRowContext(ctx, lineQuery, lineArgs...).Scan(&line.ID); err != nil {
			return nil, fmt.Errorf("%w: Create - execute line insert: %v", ErrExecQuery, err)
		}
	}

	return b, nil
}

// GetByID получает бронирование по ID вместе со строками услуг
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	// Внутри транзакции блокируем строку - переходы статуса делаются
	// по схеме read-check-update
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	b, err := r.scanBookingRow(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}

	if err := r.loadLines(ctx, executor, b); err != nil {
		return nil, err
	}

	return b, nil
}

// GetByClientWithFilter получает бронирования клиента с фильтрацией
// по статусу и периоду, отсортированные по дате визита (сначала новые)
func (r *Repository) GetByClientWithFilter(ctx context.Context, filter domain.ClientBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"client_id": filter.ClientID}).
		OrderBy("appointment_date DESC")

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"appointment_date": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"appointment_date": *filter.EndDate})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByClientWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByClientWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings, err := r.scanBookings(rows)
	if err != nil {
		return nil, err
	}

	for _, b := range bookings {
		if err := r.loadLines(ctx, executor, b); err != nil {
			return nil, err
		}
	}

	return bookings, nil
}

// GetCommittedLines получает строки услуг мастера на дату, чьи бронирования
// находятся в статусах pending/confirmed/in_progress (занимают слоты).
// Строки отменённых, завершённых и no-show бронирований слоты не блокируют.
//
// Внутри транзакции добавляет FOR UPDATE OF bs - usecase создания бронирования
// держит блокировку на время проверки пересечений и вставки
func (r *Repository) GetCommittedLines(ctx context.Context, employeeID int64, date time.Time) ([]domain.ServiceLine, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	committed := make([]string, len(domain.CommittedStatuses))
	for i, s := range domain.CommittedStatuses {
		committed[i] = string(s)
	}

	selectBuilder := psqlbuilder.Select(
		"bs.id",
		"bs.booking_id",
		"bs.service_id",
		"bs.employee_id",
		"bs.service_name",
		"bs.price",
		"bs.duration_minutes",
		"bs.start_time",
		"bs.end_time",
		"bs.status",
	).
		From("booking_services bs").
		Join("bookings b ON b.id = bs.booking_id").
		Where(squirrel.Eq{"bs.employee_id": employeeID}).
		Where(squirrel.GtOrEq{"bs.start_time": dayStart}).
		Where(squirrel.Lt{"bs.start_time": dayEnd}).
		Where(squirrel.Eq{"b.status": committed}).
		OrderBy("bs.start_time ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE OF bs")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetCommittedLines - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetCommittedLines - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	lines := make([]domain.ServiceLine, 0)
	for rows.Next() {
		var line domain.ServiceLine
		err := rows.Scan(
			&line.ID,
			&line.BookingID,
			&line.ServiceID,
			&line.EmployeeID,
			&line.ServiceName,
			&line.Price,
			&line.DurationMinutes,
			&line.StartTime,
			&line.EndTime,
			&line.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: GetCommittedLines - scan line: %v", ErrScanRow, err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetCommittedLines - rows error: %v", ErrScanRow, err)
	}

	return lines, nil
}

// UpdateStatus обновляет статус бронирования
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, "UpdateStatus", query, args)
}

// Cancel отменяет бронирование: терминальный статус cancelled + запись об отмене
// Строки услуг тоже помечаются отменёнными, чтобы они перестали блокировать слоты
func (r *Repository) Cancel(ctx context.Context, id int64, c domain.Cancellation) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancelled_at", c.CancelledAt).
		Set("cancelled_by", c.CancelledBy).
		Set("cancellation_reason", c.Reason).
		Set("refund_amount", c.RefundAmount).
		Set("cancellation_fee", c.CancellationFee).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	if err := r.execExpectingRow(ctx, executor, "Cancel", query, args); err != nil {
		return err
	}

	lineQuery, lineArgs, err := psqlbuilder.Update("booking_services").
		Set("status", domain.LineCancelled).
		Where(squirrel.Eq{"booking_id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build line update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, lineQuery, lineArgs...); err != nil {
		return fmt.Errorf("%w: Cancel - execute line update: %v", ErrExecQuery, err)
	}

	return nil
}

// ApplyReschedule переносит бронирование: новая дата визита, сдвинутые
// строки услуг и запись о переносе. Вызывается внутри сериализуемой
// транзакции usecase переноса после повторной проверки доступности
func (r *Repository) ApplyReschedule(ctx context.Context, b *domain.Booking) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if b.Reschedule == nil {
		return fmt.Errorf("%w: ApplyReschedule - booking has no reschedule record", ErrExecQuery)
	}

	query, args, err := psqlbuilder.Update("bookings").
		Set("appointment_date", b.AppointmentDate).
		Set("status", b.Status).
		Set("original_date", b.Reschedule.OriginalDate).
		Set("rescheduled_at", b.Reschedule.RescheduledAt).
		Set("rescheduled_by", b.Reschedule.RescheduledBy).
		Set("reschedule_reason", b.Reschedule.Reason).
		Set("reschedule_count", b.Reschedule.RescheduleCount).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": b.ID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: ApplyReschedule - build update query: %v", ErrBuildQuery, err)
	}

	if err := r.execExpectingRow(ctx, executor, "ApplyReschedule", query, args); err != nil {
		return err
	}

	for i := range b.Services {
		line := &b.Services[i]

		lineQuery, lineArgs, err := psqlbuilder.Update("booking_services").
			Set("start_time", line.StartTime).
			Set("end_time", line.EndTime).
			Where(squirrel.Eq{"id": line.ID}).
			ToSql()

		if err != nil {
			return fmt.Errorf("%w: ApplyReschedule - build line update query: %v", ErrBuildQuery, err)
		}

		if _, err := executor.ExecContext(ctx, lineQuery, lineArgs...); err != nil {
			return fmt.Errorf("%w: ApplyReschedule - execute line update: %v", ErrExecQuery, err)
		}
	}

	return nil
}

// SetCheckIn сохраняет отметку прихода клиента
func (r *Repository) SetCheckIn(ctx context.Context, id int64, rec domain.CheckInRecord, status domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("checked_in_at", rec.CheckedInAt).
		Set("checked_in_by", rec.CheckedInBy).
		Set("is_early_arrival", rec.IsEarlyArrival).
		Set("wait_time_minutes", rec.WaitTimeMinutes).
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetCheckIn - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, "SetCheckIn", query, args)
}

// SetCheckOut сохраняет отметку завершения визита вместе с пересчитанными
// суммами (доп. услуги входят в totalAmount, finalAmount пересчитан доменом).
// Суммы и отметка пишутся одним UPDATE - частичное состояние невозможно
func (r *Repository) SetCheckOut(ctx context.Context, id int64, rec domain.CheckOutRecord, totalAmount, finalAmount float64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("checked_out_at", rec.CheckedOutAt).
		Set("checked_out_by", rec.CheckedOutBy).
		Set("actual_duration_minutes", rec.ActualDurationMinutes).
		Set("additional_charges", rec.AdditionalCharges).
		Set("tips", rec.Tips).
		Set("total_amount", totalAmount).
		Set("final_amount", finalAmount).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetCheckOut - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, "SetCheckOut", query, args)
}

// UpdatePaymentStatus обновляет платёжный статус бронирования
func (r *Repository) UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus, method *string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("bookings").
		Set("payment_status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	if method != nil {
		updateBuilder = updateBuilder.Set("payment_method", *method)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdatePaymentStatus - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, "UpdatePaymentStatus", query, args)
}

// UpdateAmounts обновляет суммы бронирования
// finalAmount обязан быть пересчитан доменной моделью ДО вызова
func (r *Repository) UpdateAmounts(ctx context.Context, b *domain.Booking) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("total_amount", b.TotalAmount).
		Set("discount_amount", b.DiscountAmount).
		Set("tax_amount", b.TaxAmount).
		Set("final_amount", b.FinalAmount).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": b.ID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateAmounts - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, "UpdateAmounts", query, args)
}

// Вспомогательные методы

func (r *Repository) execExpectingRow(ctx context.Context, executor DBExecutor, method, query string, args []interface{}) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, method, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, method, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

func (r *Repository) loadLines(ctx context.Context, executor DBExecutor, b *domain.Booking) error {
	query, args, err := psqlbuilder.Select(lineColumns...).
		From("booking_services").
		Where(squirrel.Eq{"booking_id": b.ID}).
		OrderBy("start_time ASC").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: loadLines - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: loadLines - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	lines := make([]domain.ServiceLine, 0)
	for rows.Next() {
		var line domain.ServiceLine
		err := rows.Scan(
			&line.ID,
			&line.BookingID,
			&line.ServiceID,
			&line.EmployeeID,
			&line.ServiceName,
			&line.Price,
			&line.DurationMinutes,
			&line.StartTime,
			&line.EndTime,
			&line.Status,
		)
		if err != nil {
			return fmt.Errorf("%w: loadLines - scan line: %v", ErrScanRow, err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: loadLines - rows error: %v", ErrScanRow, err)
	}

	b.Services = lines
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) scanBookingRow(row rowScanner) (*domain.Booking, error) {
	var (
		b         domain.Booking
		createdAt sql.NullTime
		updatedAt sql.NullTime

		cancelledAt        sql.NullTime
		cancelledBy        sql.NullInt64
		cancellationReason sql.NullString
		refundAmount       sql.NullFloat64
		cancellationFee    sql.NullFloat64

		originalDate     sql.NullTime
		rescheduledAt    sql.NullTime
		rescheduledBy    sql.NullInt64
		rescheduleReason sql.NullString
		rescheduleCount  sql.NullInt64

		checkedInAt     sql.NullTime
		checkedInBy     sql.NullInt64
		isEarlyArrival  sql.NullBool
		waitTimeMinutes sql.NullInt64

		checkedOutAt       sql.NullTime
		checkedOutBy       sql.NullInt64
		actualDuration     sql.NullInt64
		additionalCharges  sql.NullFloat64
		tips               sql.NullFloat64
	)

	err := row.Scan(
		&b.ID,
		&b.BookingNumber,
		&b.ClientID,
		&b.AppointmentDate,
		&b.TotalDurationMinutes,
		&b.TotalAmount,
		&b.DiscountAmount,
		&b.TaxAmount,
		&b.FinalAmount,
		&b.Status,
		&b.PaymentStatus,
		&b.PaymentMethod,
		&b.Source,
		&b.ClientNotes,
		&b.InternalNotes,
		&cancelledAt,
		&cancelledBy,
		&cancellationReason,
		&refundAmount,
		&cancellationFee,
		&originalDate,
		&rescheduledAt,
		&rescheduledBy,
		&rescheduleReason,
		&rescheduleCount,
		&checkedInAt,
		&checkedInBy,
		&isEarlyArrival,
		&waitTimeMinutes,
		&checkedOutAt,
		&checkedOutBy,
		&actualDuration,
		&additionalCharges,
		&tips,
		&createdAt,
		&updatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scan booking: %v", ErrScanRow, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	if cancelledAt.Valid {
		b.Cancellation = &domain.Cancellation{
			CancelledAt:     cancelledAt.Time,
			CancelledBy:     cancelledBy.Int64,
			Reason:          cancellationReason.String,
			RefundAmount:    refundAmount.Float64,
			CancellationFee: cancellationFee.Float64,
		}
	}

	if rescheduledAt.Valid {
		b.Reschedule = &domain.Reschedule{
			OriginalDate:    originalDate.Time,
			RescheduledAt:   rescheduledAt.Time,
			RescheduledBy:   rescheduledBy.Int64,
			Reason:          rescheduleReason.String,
			RescheduleCount: int(rescheduleCount.Int64),
		}
	}

	if checkedInAt.Valid {
		b.CheckIn = &domain.CheckInRecord{
			CheckedInAt:     checkedInAt.Time,
			CheckedInBy:     checkedInBy.Int64,
			IsEarlyArrival:  isEarlyArrival.Bool,
			WaitTimeMinutes: int(waitTimeMinutes.Int64),
		}
	}

	if checkedOutAt.Valid {
		b.CheckOut = &domain.CheckOutRecord{
			CheckedOutAt:          checkedOutAt.Time,
			CheckedOutBy:          checkedOutBy.Int64,
			ActualDurationMinutes: int(actualDuration.Int64),
			AdditionalCharges:     additionalCharges.Float64,
			Tips:                  tips.Float64,
		}
	}

	return &b, nil
}

func (r *Repository) scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		b, err := r.scanBookingRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanBookings: %w", err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

// isUniqueViolation проверяет нарушение конкретного unique constraint (SQLSTATE 23505)
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" && pqErr.Constraint == constraint
	}
	return false
}
