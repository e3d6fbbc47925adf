package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page    int
	Limit   int
	Status  string
	BuyerID *int64
	From    *time.Time
	To      *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID string) (model.Order, error)
	ListByBuyerID(ctx context.Context, buyerID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) error

	// 現在ステータスが from のときだけ to へ更新する（条件付きUPDATE）。
	// extra には payment_method / rejection_reason など同時に書く列を渡す。
	// 行が更新できなかったら false（＝誰かが先に遷移させたか、存在しない）。
	UpdateStatusIfCurrent(ctx context.Context, orderID string, from model.OrderStatus, to model.OrderStatus, extra map[string]interface{}) (bool, error)

	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)

	//通知バッジ用
	CountByStatus(ctx context.Context, status model.OrderStatus) (int64, error)
}
