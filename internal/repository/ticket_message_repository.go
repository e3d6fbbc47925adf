package repository

import (
	"context"

	"app/internal/domain/model"
)

type TicketMessageRepository interface {
	Create(ctx context.Context, m model.TicketMessage) error
	ListByTicketID(ctx context.Context, ticketID string) ([]model.TicketMessage, error)

	//スレッドを開いた側から見て「相手が書いた未読」をまとめて既読にする
	MarkReadBySender(ctx context.Context, ticketID string, sender model.MessageSender) error

	//オーナー宛て未読（sender=ADMIN, read=false）の件数
	CountUnreadForOwner(ctx context.Context, ownerID int64) (int64, error)
}
