package domain

import "time"

// Service услуга салона (read-only вход для планирования)
type Service struct {
	ID              int64
	Name            string
	Category        string
	DurationMinutes int // >= MinServiceDurationMinutes
	Price           float64
	DiscountPrice   *float64
	IsActive        bool
	IsPopular       bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// EffectivePrice возвращает цену с учетом скидки
func (s *Service) EffectivePrice() float64 {
	if s.DiscountPrice != nil && *s.DiscountPrice > 0 && *s.DiscountPrice < s.Price {
		return *s.DiscountPrice
	}
	return s.Price
}
