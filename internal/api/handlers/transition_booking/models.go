package transition_booking

// Поддерживаемые действия над бронированием
const (
	ActionCheckIn    = "checkIn"
	ActionCheckOut   = "checkOut"
	ActionComplete   = "complete"
	ActionMarkNoShow = "markNoShow"
)

// TransitionBookingRequest HTTP request model
type TransitionBookingRequest struct {
	Action            string  `json:"action"`
	AdditionalCharges float64 `json:"additionalCharges,omitempty"` // Только для checkOut
	Tips              float64 `json:"tips,omitempty"`              // Только для checkOut
}
