package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	catalogRepo "github.com/velvetspa/SPA-BookingService/internal/infra/storage/catalog"

	"github.com/velvetspa/SPA-BookingService/internal/domain"
)

// ServiceResponse услуга каталога для выдачи клиенту
type ServiceResponse struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	DurationMinutes int       `json:"durationMinutes"`
	Price           float64   `json:"price"`
	DiscountPrice   *float64  `json:"discountPrice,omitempty"`
	EffectivePrice  float64   `json:"effectivePrice"`
	IsPopular       bool      `json:"isPopular"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ServiceListResponse список услуг каталога
type ServiceListResponse struct {
	Services []ServiceResponse `json:"services"`
}

// Service сервис каталога услуг (read-only)
type Service struct {
	catalogRepo CatalogRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса каталога
func NewService(catalogRepo CatalogRepository, logger Logger) *Service {
	return &Service{
		catalogRepo: catalogRepo,
		logger:      logger,
	}
}

// ListActive возвращает активные услуги, опционально отфильтрованные по категории
func (s *Service) ListActive(ctx context.Context, category *string) (*ServiceListResponse, error) {
	if category != nil {
		s.logger.Info("ListActive: fetching services for category=%s", *category)
	} else {
		s.logger.Info("ListActive: fetching all active services")
	}

	services, err := s.catalogRepo.ListActive(ctx, category)
	if err != nil {
		s.logger.Error("ListActive: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListActive - repository error: %v", ErrInternal, err)
	}

	resp := &ServiceListResponse{
		Services: make([]ServiceResponse, len(services)),
	}
	for i, svc := range services {
		resp.Services[i] = fromDomainService(svc)
	}

	s.logger.Info("ListActive: successfully fetched %d services", len(resp.Services))
	return resp, nil
}

// GetByID возвращает услугу по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*ServiceResponse, error) {
	s.logger.Info("GetByID: fetching service id=%d", id)

	svc, err := s.catalogRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			s.logger.Warn("GetByID: service id=%d not found", id)
			return nil, ErrServiceNotFound
		}
		s.logger.Error("GetByID: repository error for service id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	resp := fromDomainService(svc)
	return &resp, nil
}

func fromDomainService(svc *domain.Service) ServiceResponse {
	return ServiceResponse{
		ID:              svc.ID,
		Name:            svc.Name,
		Category:        svc.Category,
		DurationMinutes: svc.DurationMinutes,
		Price:           svc.Price,
		DiscountPrice:   svc.DiscountPrice,
		EffectivePrice:  svc.EffectivePrice(),
		IsPopular:       svc.IsPopular,
		CreatedAt:       svc.CreatedAt,
		UpdatedAt:       svc.UpdatedAt,
	}
}
