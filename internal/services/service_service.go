package services

import (
	"context"

	"khidmaBack/internal/models"
	"khidmaBack/internal/repositories"
)

type ServiceService struct {
	ServiceRepo *repositories.ServiceRepository
}

func (s *ServiceService) CreateService(ctx context.Context, svc models.Service) (models.Service, error) {
	if svc.Status == "" {
		svc.Status = "active"
	}
	return s.ServiceRepo.CreateService(ctx, svc)
}

func (s *ServiceService) GetServiceByID(ctx context.Context, id int) (models.Service, error) {
	return s.ServiceRepo.GetServiceByID(ctx, id)
}

func (s *ServiceService) ListByProvider(ctx context.Context, providerID int) ([]models.Service, error) {
	return s.ServiceRepo.ListByProvider(ctx, providerID)
}
