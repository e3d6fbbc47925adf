package repository

import (
	"context"

	"app/internal/domain/model"

	"gorm.io/gorm"
)

type TicketMessageGormRepository struct {
	db *gorm.DB
}

func NewTicketMessageGormRepository(db *gorm.DB) *TicketMessageGormRepository {
	return &TicketMessageGormRepository{db: db}
}

func (r *TicketMessageGormRepository) Create(ctx context.Context, m model.TicketMessage) error {
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *TicketMessageGormRepository) ListByTicketID(ctx context.Context, ticketID string) ([]model.TicketMessage, error) {
	var items []model.TicketMessage
	err := r.db.WithContext(ctx).
		Where("ticket_id = ?", ticketID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.TicketMessage{}, err
	}
	return items, nil
}

func (r *TicketMessageGormRepository) MarkReadBySender(ctx context.Context, ticketID string, sender model.MessageSender) error {
	return r.db.WithContext(ctx).Model(&model.TicketMessage{}).
		Where("ticket_id = ? AND sender = ? AND is_read = ?", ticketID, sender, false).
		Update("is_read", true).Error
}

func (r *TicketMessageGormRepository) CountUnreadForOwner(ctx context.Context, ownerID int64) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.TicketMessage{}).
		Joins("JOIN tickets ON tickets.id = ticket_messages.ticket_id").
		Where("tickets.owner_id = ? AND ticket_messages.sender = ? AND ticket_messages.is_read = ?",
			ownerID, model.MessageSenderAdmin, false).
		Count(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
