package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type TicketGormRepository struct {
	db *gorm.DB
}

func NewTicketGormRepository(db *gorm.DB) *TicketGormRepository {
	return &TicketGormRepository{db: db}
}

func (r *TicketGormRepository) FindByID(ctx context.Context, ticketID string) (model.Ticket, error) {
	var t model.Ticket
	err := r.db.WithContext(ctx).Where("id = ?", ticketID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Ticket{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Ticket{}, err
	}
	return t, nil
}

func (r *TicketGormRepository) ListByOwnerID(ctx context.Context, ownerID int64) ([]model.Ticket, error) {
	var items []model.Ticket
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at desc").
		Find(&items).Error
	if err != nil {
		return []model.Ticket{}, err
	}
	return items, nil
}

func (r *TicketGormRepository) ListAll(ctx context.Context) ([]model.Ticket, error) {
	var items []model.Ticket
	err := r.db.WithContext(ctx).Order("created_at desc").Find(&items).Error
	if err != nil {
		return []model.Ticket{}, err
	}
	return items, nil
}

func (r *TicketGormRepository) Create(ctx context.Context, t model.Ticket) error {
	return r.db.WithContext(ctx).Create(&t).Error
}

func (r *TicketGormRepository) UpdateStatus(ctx context.Context, ticketID string, status model.TicketStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("id = ?", ticketID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *TicketGormRepository) CountNotResolved(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("status <> ?", model.TicketStatusResolved).
		Count(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
