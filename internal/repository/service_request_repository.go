package repository

import (
	"context"

	"app/internal/domain/model"
)

type ServiceRequestRepository interface {
	FindByID(ctx context.Context, id string) (model.ServiceRequest, error)
	ListByUserID(ctx context.Context, userID int64) ([]model.ServiceRequest, error)
	ListAll(ctx context.Context) ([]model.ServiceRequest, error)
	Create(ctx context.Context, sr model.ServiceRequest) error
	Update(ctx context.Context, sr model.ServiceRequest) error
}
