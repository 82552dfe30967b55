package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velvetspa/SPA-BookingService/internal/domain"
	bookingRepo "github.com/velvetspa/SPA-BookingService/internal/infra/storage/booking"
	"github.com/velvetspa/SPA-BookingService/internal/integrations/payments"
	"github.com/velvetspa/SPA-BookingService/internal/service/bookings/models"
	"github.com/velvetspa/SPA-BookingService/pkg/ptr"
)

var (
	appointmentAt = time.Date(2025, 10, 15, 10, 0, 0, 0, time.UTC)
	testNow       = time.Date(2025, 10, 13, 9, 0, 0, 0, time.UTC)
)

type fakeBookingRepo struct {
	booking *domain.Booking

	cancelledWith   *domain.Cancellation
	updatedStatus   *domain.BookingStatus
	checkInRec      *domain.CheckInRecord
	checkInStatus   domain.BookingStatus
	checkOutRec     *domain.CheckOutRecord
	checkOutTotal   float64
	checkOutFinal   float64
	listFilter      *domain.ClientBookingsFilter
	listResult      []*domain.Booking
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	if f.booking == nil || f.booking.ID != id {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return f.booking, nil
}

func (f *fakeBookingRepo) GetByClientWithFilter(_ context.Context, filter domain.ClientBookingsFilter) ([]*domain.Booking, error) {
	f.listFilter = &filter
	return f.listResult, nil
}

func (f *fakeBookingRepo) UpdateStatus(_ context.Context, _ int64, status domain.BookingStatus) error {
	f.updatedStatus = &status
	return nil
}

func (f *fakeBookingRepo) Cancel(_ context.Context, _ int64, c domain.Cancellation) error {
	f.cancelledWith = &c
	return nil
}

func (f *fakeBookingRepo) SetCheckIn(_ context.Context, _ int64, rec domain.CheckInRecord, status domain.BookingStatus) error {
	f.checkInRec = &rec
	f.checkInStatus = status
	return nil
}

func (f *fakeBookingRepo) SetCheckOut(_ context.Context, _ int64, rec domain.CheckOutRecord, totalAmount, finalAmount float64) error {
	f.checkOutRec = &rec
	f.checkOutTotal = totalAmount
	f.checkOutFinal = finalAmount
	return nil
}

type fakePaymentsClient struct {
	invoices []payments.Invoice
	refunds  []payments.RefundRequest
}

func (f *fakePaymentsClient) CreateInvoiceWithGracefulDegradation(_ context.Context, inv payments.Invoice) (*payments.InvoiceResult, error) {
	f.invoices = append(f.invoices, inv)
	return &payments.InvoiceResult{InvoiceID: "inv-1"}, nil
}

func (f *fakePaymentsClient) RequestRefundWithGracefulDegradation(_ context.Context, req payments.RefundRequest) error {
	f.refunds = append(f.refunds, req)
	return nil
}

type fakeTxManager struct{}

func (fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (fakeTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
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
		AppointmentDate: appointmentAt,
		Status:          domain.StatusConfirmed,
		PaymentStatus:   domain.PaymentPending,
		Source:          domain.SourceWebsite,
		TotalAmount:     3000,
		FinalAmount:     3000,
		ClientNotes:     ptr.Ptr("аллергия на лаванду"),
		InternalNotes:   ptr.Ptr("постоянный клиент"),
	}
}

func newTestService(booking *domain.Booking) (*Service, *fakeBookingRepo, *fakePaymentsClient) {
	repo := &fakeBookingRepo{booking: booking}
	pay := &fakePaymentsClient{}

	svc := NewService(repo, pay, fakeTxManager{}, nopLogger{})
	svc.timeProvider = &fixedTimeProvider{now: testNow}

	return svc, repo, pay
}

func TestService_GetByID(t *testing.T) {
	t.Run("owner sees own booking without internal notes", func(t *testing.T) {
		svc, _, _ := newTestService(testBooking())

		resp, err := svc.GetByID(context.Background(), 7, 42, models.RoleClient)
		require.NoError(t, err)
		assert.Equal(t, "BK2510100001", resp.BookingNumber)
		assert.Nil(t, resp.InternalNotes)
		assert.NotNil(t, resp.ClientNotes)
	})

	t.Run("staff sees internal notes", func(t *testing.T) {
		svc, _, _ := newTestService(testBooking())

		resp, err := svc.GetByID(context.Background(), 7, 1, models.RoleStaff)
		require.NoError(t, err)
		require.NotNil(t, resp.InternalNotes)
		assert.Equal(t, "постоянный клиент", *resp.InternalNotes)
	})

	t.Run("foreign client is denied", func(t *testing.T) {
		svc, _, _ := newTestService(testBooking())

		_, err := svc.GetByID(context.Background(), 7, 777, models.RoleClient)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("not found", func(t *testing.T) {
		svc, _, _ := newTestService(testBooking())

		_, err := svc.GetByID(context.Background(), 404, 42, models.RoleClient)
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})
}

func TestService_GetClientBookings(t *testing.T) {
	t.Run("client cannot read foreign history", func(t *testing.T) {
		svc, _, _ := newTestService(testBooking())

		_, err := svc.GetClientBookings(context.Background(), &models.GetClientBookingsRequest{
			ClientID:      42,
			RequesterID:   777,
			RequesterRole: models.RoleClient,
		})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("filters are passed to repository", func(t *testing.T) {
		svc, repo, _ := newTestService(testBooking())
		repo.listResult = []*domain.Booking{testBooking()}

		resp, err := svc.GetClientBookings(context.Background(), &models.GetClientBookingsRequest{
			ClientID:      42,
			RequesterID:   42,
			RequesterRole: models.RoleClient,
			Status:        ptr.Ptr("confirmed"),
		})
		require.NoError(t, err)
		assert.Len(t, resp.Bookings, 1)

		require.NotNil(t, repo.listFilter)
		require.NotNil(t, repo.listFilter.Status)
		assert.Equal(t, domain.StatusConfirmed, *repo.listFilter.Status)
	})

	t.Run("unknown status filter is rejected", func(t *testing.T) {
		svc, _, _ := newTestService(testBooking())

		_, err := svc.GetClientBookings(context.Background(), &models.GetClientBookingsRequest{
			ClientID:      42,
			RequesterID:   42,
			RequesterRole: models.RoleClient,
			Status:        ptr.Ptr("broken"),
		})
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}

func TestService_Cancel(t *testing.T) {
	cancelReq := func() *models.CancelBookingRequest {
		return &models.CancelBookingRequest{
			RequesterID:   42,
			RequesterRole: models.RoleClient,
			Reason:        "изменились планы",
		}
	}

	t.Run("owner cancels in advance", func(t *testing.T) {
		svc, repo, _ := newTestService(testBooking())

		err := svc.Cancel(context.Background(), 7, cancelReq())
		require.NoError(t, err)

		require.NotNil(t, repo.cancelledWith)
		assert.Equal(t, testNow, repo.cancelledWith.CancelledAt)
		assert.Equal(t, int64(42), repo.cancelledWith.CancelledBy)
	})

	t.Run("exactly 24h before is too late", func(t *testing.T) {
		svc, _, _ := newTestService(testBooking())
		svc.timeProvider = &fixedTimeProvider{now: appointmentAt.Add(-24 * time.Hour)}

		err := svc.Cancel(context.Background(), 7, cancelReq())
		assert.ErrorIs(t, err, ErrCannotCancel)
	})

	t.Run("in_progress cannot be cancelled", func(t *testing.T) {
		b := testBooking()
		b.Status = domain.StatusInProgress
		svc, _, _ := newTestService(b)

		err := svc.Cancel(context.Background(), 7, cancelReq())
		assert.ErrorIs(t, err, ErrCannotCancel)
	})

	t.Run("foreign client is denied", func(t *testing.T) {
		svc, _, _ := newTestService(testBooking())

		req := cancelReq()
		req.RequesterID = 777
		err := svc.Cancel(context.Background(), 7, req)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("refund is requested for paid booking", func(t *testing.T) {
		b := testBooking()
		b.PaymentStatus = domain.PaymentPaid
		svc, _, pay := newTestService(b)

		req := cancelReq()
		req.RequesterRole = models.RoleStaff
		req.RequesterID = 1
		req.RefundAmount = 3000

		err := svc.Cancel(context.Background(), 7, req)
		require.NoError(t, err)

		require.Len(t, pay.refunds, 1)
		assert.Equal(t, 3000.0, pay.refunds[0].Amount)
	})

	t.Run("no refund for unpaid booking", func(t *testing.T) {
		svc, _, pay := newTestService(testBooking())

		req := cancelReq()
		req.RefundAmount = 3000
		err := svc.Cancel(context.Background(), 7, req)
		require.NoError(t, err)
		assert.Empty(t, pay.refunds)
	})

	t.Run("negative refund is rejected", func(t *testing.T) {
		svc, repo, _ := newTestService(testBooking())

		req := cancelReq()
		req.RefundAmount = -100
		err := svc.Cancel(context.Background(), 7, req)
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Nil(t, repo.cancelledWith)
	})

	t.Run("negative cancellation fee is rejected", func(t *testing.T) {
		svc, repo, _ := newTestService(testBooking())

		req := cancelReq()
		req.CancellationFee = -1
		err := svc.Cancel(context.Background(), 7, req)
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Nil(t, repo.cancelledWith)
	})

	t.Run("refund exceeding final amount is rejected", func(t *testing.T) {
		b := testBooking()
		b.PaymentStatus = domain.PaymentPaid
		svc, repo, pay := newTestService(b)

		req := cancelReq()
		req.RefundAmount = b.FinalAmount + 0.01
		err := svc.Cancel(context.Background(), 7, req)
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Nil(t, repo.cancelledWith)
		assert.Empty(t, pay.refunds)
	})
}

func TestService_CheckIn(t *testing.T) {
	staffReq := &models.CheckInRequest{RequesterID: 1, RequesterRole: models.RoleStaff}

	t.Run("client is not allowed", func(t *testing.T) {
		svc, _, _ := newTestService(testBooking())

		err := svc.CheckIn(context.Background(), 7, &models.CheckInRequest{RequesterID: 42, RequesterRole: models.RoleClient})
		assert.ErrorIs(t, err, ErrStaffOnly)
	})

	t.Run("early arrival records wait time", func(t *testing.T) {
		svc, repo, _ := newTestService(testBooking())
		svc.timeProvider = &fixedTimeProvider{now: appointmentAt.Add(-20 * time.Minute)}

		err := svc.CheckIn(context.Background(), 7, staffReq)
		require.NoError(t, err)

		require.NotNil(t, repo.checkInRec)
		assert.True(t, repo.checkInRec.IsEarlyArrival)
		assert.Equal(t, 20, repo.checkInRec.WaitTimeMinutes)
		assert.Equal(t, domain.StatusInProgress, repo.checkInStatus)
	})

	t.Run("late arrival is not early", func(t *testing.T) {
		svc, repo, _ := newTestService(testBooking())
		svc.timeProvider = &fixedTimeProvider{now: appointmentAt.Add(10 * time.Minute)}

		err := svc.CheckIn(context.Background(), 7, staffReq)
		require.NoError(t, err)

		assert.False(t, repo.checkInRec.IsEarlyArrival)
		assert.Zero(t, repo.checkInRec.WaitTimeMinutes)
	})

	t.Run("double check-in is rejected", func(t *testing.T) {
		b := testBooking()
		b.CheckIn = &domain.CheckInRecord{CheckedInAt: appointmentAt}
		svc, _, _ := newTestService(b)

		err := svc.CheckIn(context.Background(), 7, staffReq)
		assert.ErrorIs(t, err, ErrCannotCheckIn)
	})
}

func TestService_CheckOut(t *testing.T) {
	staffReq := func() *models.CheckOutRequest {
		return &models.CheckOutRequest{RequesterID: 1, RequesterRole: models.RoleStaff}
	}

	checkedInBooking := func() *domain.Booking {
		b := testBooking()
		b.Status = domain.StatusInProgress
		b.CheckIn = &domain.CheckInRecord{CheckedInAt: appointmentAt}
		return b
	}

	t.Run("records actual duration and recomputes amounts", func(t *testing.T) {
		svc, repo, _ := newTestService(checkedInBooking())
		svc.timeProvider = &fixedTimeProvider{now: appointmentAt.Add(75 * time.Minute)}

		req := staffReq()
		req.AdditionalCharges = 500
		req.Tips = 300

		err := svc.CheckOut(context.Background(), 7, req)
		require.NoError(t, err)

		require.NotNil(t, repo.checkOutRec)
		assert.Equal(t, 75, repo.checkOutRec.ActualDurationMinutes)
		assert.Equal(t, 500.0, repo.checkOutRec.AdditionalCharges)
		assert.Equal(t, 300.0, repo.checkOutRec.Tips)

		// Доп. услуги входят в общую сумму, итог пересчитан
		assert.Equal(t, 3500.0, repo.checkOutTotal)
		assert.Equal(t, 3500.0, repo.checkOutFinal)
	})

	t.Run("check-out without check-in is rejected", func(t *testing.T) {
		svc, _, _ := newTestService(testBooking())

		err := svc.CheckOut(context.Background(), 7, staffReq())
		assert.ErrorIs(t, err, ErrCannotCheckOut)
	})

	t.Run("negative charges are rejected", func(t *testing.T) {
		svc, _, _ := newTestService(checkedInBooking())

		req := staffReq()
		req.AdditionalCharges = -100
		err := svc.CheckOut(context.Background(), 7, req)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("client is not allowed", func(t *testing.T) {
		svc, _, _ := newTestService(checkedInBooking())

		err := svc.CheckOut(context.Background(), 7, &models.CheckOutRequest{RequesterID: 42, RequesterRole: models.RoleClient})
		assert.ErrorIs(t, err, ErrStaffOnly)
	})
}

func TestService_Complete(t *testing.T) {
	staffReq := &models.CompleteRequest{RequesterID: 1, RequesterRole: models.RoleStaff}

	t.Run("in_progress booking completes", func(t *testing.T) {
		b := testBooking()
		b.Status = domain.StatusInProgress
		svc, repo, _ := newTestService(b)

		err := svc.Complete(context.Background(), 7, staffReq)
		require.NoError(t, err)

		require.NotNil(t, repo.updatedStatus)
		assert.Equal(t, domain.StatusCompleted, *repo.updatedStatus)
	})

	t.Run("paid booking registers invoice", func(t *testing.T) {
		b := testBooking()
		b.Status = domain.StatusInProgress
		b.PaymentStatus = domain.PaymentPaid
		svc, _, pay := newTestService(b)

		err := svc.Complete(context.Background(), 7, staffReq)
		require.NoError(t, err)

		require.Len(t, pay.invoices, 1)
		assert.Equal(t, 3000.0, pay.invoices[0].Amount)
	})

	t.Run("cancelled booking cannot complete", func(t *testing.T) {
		b := testBooking()
		b.Status = domain.StatusCancelled
		svc, _, _ := newTestService(b)

		err := svc.Complete(context.Background(), 7, staffReq)
		assert.ErrorIs(t, err, ErrCannotComplete)
	})
}

func TestService_MarkNoShow(t *testing.T) {
	staffReq := &models.MarkNoShowRequest{RequesterID: 1, RequesterRole: models.RoleStaff}

	t.Run("past appointment without check-in", func(t *testing.T) {
		svc, repo, _ := newTestService(testBooking())
		svc.timeProvider = &fixedTimeProvider{now: appointmentAt.Add(30 * time.Minute)}

		err := svc.MarkNoShow(context.Background(), 7, staffReq)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusNoShow, *repo.updatedStatus)
	})

	t.Run("before appointment is rejected", func(t *testing.T) {
		svc, _, _ := newTestService(testBooking())

		err := svc.MarkNoShow(context.Background(), 7, staffReq)
		assert.ErrorIs(t, err, ErrCannotMarkNoShow)
	})

	t.Run("checked-in client is not a no-show", func(t *testing.T) {
		b := testBooking()
		b.CheckIn = &domain.CheckInRecord{CheckedInAt: appointmentAt}
		svc, _, _ := newTestService(b)
		svc.timeProvider = &fixedTimeProvider{now: appointmentAt.Add(30 * time.Minute)}

		err := svc.MarkNoShow(context.Background(), 7, staffReq)
		assert.ErrorIs(t, err, ErrCannotMarkNoShow)
	})
}
