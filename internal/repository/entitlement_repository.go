package repository

import (
	"context"
	"time"
)

// COMPLETED注文から導出される「この商品をDLしてよい」という権利。
// 別テーブルは持たず (buyer_id, product_id) で注文を引くビュー。
type Entitlement struct {
	ProductID        int64
	OrderID          string
	FirstCompletedAt time.Time
}

type EntitlementRepository interface {
	//購入者のCOMPLETED注文に含まれる商品（重複なし・最初に完了した注文つき）
	ListByBuyerID(ctx context.Context, buyerID int64) ([]Entitlement, error)

	//単品のO(1)チェック（DL直前の確認用）
	HasCompleted(ctx context.Context, buyerID int64, productID int64) (bool, error)
}
