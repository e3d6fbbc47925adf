package repository

import (
	"context"
	"sort"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type EntitlementGormRepository struct {
	db *gorm.DB
}

func NewEntitlementGormRepository(db *gorm.DB) *EntitlementGormRepository {
	return &EntitlementGormRepository{db: db}
}

type entitlementRow struct {
	ProductID   int64
	OrderID     string
	CompletedAt time.Time
}

// 注文全件を舐めずにbuyer_idで引けるようにしておく。
// 同じ商品を複数回買っていても最初に完了した注文を1行だけ返す。
func (r *EntitlementGormRepository) ListByBuyerID(ctx context.Context, buyerID int64) ([]repo.Entitlement, error) {
	var rows []entitlementRow
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select("order_items.product_id AS product_id, orders.id AS order_id, orders.created_at AS completed_at").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.buyer_id = ? AND orders.status = ?", buyerID, model.OrderStatusCompleted).
		Scan(&rows).Error
	if err != nil {
		return []repo.Entitlement{}, err
	}
	return earliestPerProduct(rows), nil
}

// 商品ごとに最初に完了した注文の行だけを残す。
// order_idとcompleted_atは必ず同じ注文のペアで返す。
// 同時刻ならIDの小さい方をとって結果を安定させる。
func earliestPerProduct(rows []entitlementRow) []repo.Entitlement {
	earliest := make(map[int64]entitlementRow, len(rows))
	for _, row := range rows {
		cur, ok := earliest[row.ProductID]
		if !ok {
			earliest[row.ProductID] = row
			continue
		}
		if row.CompletedAt.Before(cur.CompletedAt) ||
			(row.CompletedAt.Equal(cur.CompletedAt) && row.OrderID < cur.OrderID) {
			earliest[row.ProductID] = row
		}
	}

	outs := make([]repo.Entitlement, 0, len(earliest))
	for _, row := range earliest {
		outs = append(outs, repo.Entitlement{
			ProductID:        row.ProductID,
			OrderID:          row.OrderID,
			FirstCompletedAt: row.CompletedAt,
		})
	}

	sort.Slice(outs, func(i, j int) bool {
		if !outs[i].FirstCompletedAt.Equal(outs[j].FirstCompletedAt) {
			return outs[i].FirstCompletedAt.Before(outs[j].FirstCompletedAt)
		}
		return outs[i].ProductID < outs[j].ProductID
	})
	return outs
}

func (r *EntitlementGormRepository) HasCompleted(ctx context.Context, buyerID int64, productID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("order_items").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.buyer_id = ? AND orders.status = ? AND order_items.product_id = ?",
			buyerID, model.OrderStatusCompleted, productID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
