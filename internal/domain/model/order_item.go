package model

import "time"

// 注文明細。
// 価格とタイトルは作成時点のスナップショットで、カタログを後から
// 変更しても過去の注文には影響しない。
type OrderItem struct {
	ID                   int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID              string    `gorm:"type:varchar(36);not null;index" json:"order_id"`
	ProductID            int64     `gorm:"not null;index" json:"product_id"`
	ProductTitleSnapshot string    `gorm:"type:varchar(255);not null" json:"product_title_snapshot"`
	PriceAtPurchase      int64     `gorm:"not null" json:"price_at_purchase"`
	CreatedAt            time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
