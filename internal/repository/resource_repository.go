package repository

import (
	"context"

	"app/internal/domain/model"
)

type ResourceRepository interface {
	List(ctx context.Context, category string) ([]model.Resource, error)
	FindByID(ctx context.Context, id int64) (model.Resource, error)
	Create(ctx context.Context, r model.Resource) (model.Resource, error)
	Update(ctx context.Context, r model.Resource) error
	Delete(ctx context.Context, id int64) error
}
