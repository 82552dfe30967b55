package cancel_booking

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	Reason          string  `json:"reason"`
	RefundAmount    float64 `json:"refundAmount"`
	CancellationFee float64 `json:"cancellationFee"`
}
