package usecase

import (
	"context"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"go.uber.org/zap"
)

// 通知バッジは永続化しない導出ビュー。呼ばれるたびにCOUNTし直す。
// 「最後に見た位置」のような状態はメッセージのread以外に持たない。
type NotificationUsecase struct {
	orders   repo.OrderRepository
	tickets  repo.TicketRepository
	messages repo.TicketMessageRepository
	logger   *zap.Logger
}

func NewNotificationUsecase(
	orders repo.OrderRepository,
	tickets repo.TicketRepository,
	messages repo.TicketMessageRepository,
	logger *zap.Logger,
) *NotificationUsecase {
	return &NotificationUsecase{orders: orders, tickets: tickets, messages: messages, logger: logger}
}

type BadgesOutput struct {
	//購入者向け：自分のチケットにある管理者発の未読
	UnreadMessages int64 `json:"unread_messages"`

	//管理者向け：レビュー待ちの注文と未解決チケット。
	//0件でも出す。nilは「管理者ではない」の意味。
	ProcessingOrders  *int64 `json:"processing_orders,omitempty"`
	UnresolvedTickets *int64 `json:"unresolved_tickets,omitempty"`
}

func (u *NotificationUsecase) Badges(ctx context.Context, caller Caller) (BadgesOutput, error) {
	if caller.UserID <= 0 {
		return BadgesOutput{}, NewNotAuthorizedError("not authorized")
	}

	unread, err := u.messages.CountUnreadForOwner(ctx, caller.UserID)
	if err != nil {
		return BadgesOutput{}, u.storage("count unread", err)
	}

	out := BadgesOutput{UnreadMessages: unread}

	if caller.IsAdmin() {
		processing, err := u.orders.CountByStatus(ctx, model.OrderStatusProcessing)
		if err != nil {
			return BadgesOutput{}, u.storage("count processing orders", err)
		}
		unresolved, err := u.tickets.CountNotResolved(ctx)
		if err != nil {
			return BadgesOutput{}, u.storage("count unresolved tickets", err)
		}
		out.ProcessingOrders = &processing
		out.UnresolvedTickets = &unresolved
	}

	return out, nil
}

func (u *NotificationUsecase) storage(op string, err error) error {
	u.logger.Error("notification storage failure", zap.String("op", op), zap.Error(err))
	return NewStorageError()
}
