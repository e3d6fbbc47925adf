package repository

import (
	"context"

	"app/internal/domain/model"
)

type TicketRepository interface {
	FindByID(ctx context.Context, ticketID string) (model.Ticket, error)
	ListByOwnerID(ctx context.Context, ownerID int64) ([]model.Ticket, error)
	ListAll(ctx context.Context) ([]model.Ticket, error)
	Create(ctx context.Context, t model.Ticket) error
	UpdateStatus(ctx context.Context, ticketID string, status model.TicketStatus) error

	//通知バッジ用（RESOLVED以外の件数）
	CountNotResolved(ctx context.Context) (int64, error)
}
