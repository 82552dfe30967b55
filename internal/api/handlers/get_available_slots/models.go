package get_available_slots

import (
	"github.com/velvetspa/SPA-BookingService/internal/domain"
	getAvailableSlots "github.com/velvetspa/SPA-BookingService/internal/usecase/get_available_slots"
)

// SlotResponse HTTP модель одного слота
type SlotResponse struct {
	StartTime string `json:"startTime"` // "10:00"
	EndTime   string `json:"endTime"`   // "11:00"
	Available bool   `json:"available"`
}

// AvailableSlotsResponse HTTP модель ответа со слотами
type AvailableSlotsResponse struct {
	Date            string         `json:"date"` // "2025-10-15"
	EmployeeID      int64          `json:"employeeId"`
	ServiceID       int64          `json:"serviceId"`
	DurationMinutes int            `json:"durationMinutes"`
	BreakStart      *string        `json:"breakStart,omitempty"`
	BreakEnd        *string        `json:"breakEnd,omitempty"`
	Slots           []SlotResponse `json:"slots"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]SlotResponse, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = SlotResponse{
			StartTime: slot.StartTime.String(),
			EndTime:   slot.EndTime.String(),
			Available: slot.Available,
		}
	}

	out := &AvailableSlotsResponse{
		Date:            resp.Date.Format(domain.DateFormat),
		EmployeeID:      resp.EmployeeID,
		ServiceID:       resp.ServiceID,
		DurationMinutes: resp.DurationMinutes,
		Slots:           slots,
	}

	if resp.BreakStart != nil && resp.BreakEnd != nil {
		bs := resp.BreakStart.String()
		be := resp.BreakEnd.String()
		out.BreakStart = &bs
		out.BreakEnd = &be
	}

	return out
}
