package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type ServiceRequestGormRepository struct {
	db *gorm.DB
}

func NewServiceRequestGormRepository(db *gorm.DB) *ServiceRequestGormRepository {
	return &ServiceRequestGormRepository{db: db}
}

func (r *ServiceRequestGormRepository) FindByID(ctx context.Context, id string) (model.ServiceRequest, error) {
	var sr model.ServiceRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&sr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ServiceRequest{}, repo.ErrNotFound
	}
	if err != nil {
		return model.ServiceRequest{}, err
	}
	return sr, nil
}

func (r *ServiceRequestGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.ServiceRequest, error) {
	var items []model.ServiceRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&items).Error
	if err != nil {
		return []model.ServiceRequest{}, err
	}
	return items, nil
}

func (r *ServiceRequestGormRepository) ListAll(ctx context.Context) ([]model.ServiceRequest, error) {
	var items []model.ServiceRequest
	err := r.db.WithContext(ctx).Order("created_at desc").Find(&items).Error
	if err != nil {
		return []model.ServiceRequest{}, err
	}
	return items, nil
}

func (r *ServiceRequestGormRepository) Create(ctx context.Context, sr model.ServiceRequest) error {
	return r.db.WithContext(ctx).Create(&sr).Error
}

func (r *ServiceRequestGormRepository) Update(ctx context.Context, sr model.ServiceRequest) error {
	res := r.db.WithContext(ctx).Model(&model.ServiceRequest{}).
		Where("id = ?", sr.ID).
		Updates(map[string]interface{}{
			"status":        sr.Status,
			"admin_comment": sr.AdminComment,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
