package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type ResourceGormRepository struct {
	db *gorm.DB
}

func NewResourceGormRepository(db *gorm.DB) *ResourceGormRepository {
	return &ResourceGormRepository{db: db}
}

func (r *ResourceGormRepository) List(ctx context.Context, category string) ([]model.Resource, error) {
	q := r.db.WithContext(ctx).Model(&model.Resource{})
	if category != "" {
		q = q.Where("category = ?", category)
	}

	var items []model.Resource
	if err := q.Order("id desc").Find(&items).Error; err != nil {
		return []model.Resource{}, err
	}
	return items, nil
}

func (r *ResourceGormRepository) FindByID(ctx context.Context, id int64) (model.Resource, error) {
	var res model.Resource
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Resource{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Resource{}, err
	}
	return res, nil
}

func (r *ResourceGormRepository) Create(ctx context.Context, res model.Resource) (model.Resource, error) {
	if err := r.db.WithContext(ctx).Create(&res).Error; err != nil {
		return model.Resource{}, err
	}
	return res, nil
}

func (r *ResourceGormRepository) Update(ctx context.Context, res model.Resource) error {
	result := r.db.WithContext(ctx).Model(&model.Resource{}).
		Where("id = ?", res.ID).
		Updates(map[string]interface{}{
			"title":       res.Title,
			"description": res.Description,
			"url":         res.URL,
			"category":    res.Category,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ResourceGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Resource{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
