package model

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusFailed     OrderStatus = "FAILED"
)

// IsTerminalはこれ以上遷移できないステータスかどうか
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusFailed
}

// 注文。
// 遷移は PENDING -> PROCESSING -> COMPLETED/FAILED の一方向のみ。
// mysqlでも使うためIDはuuid型ではなくvarchar(36)。
type Order struct {
	ID      string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	BuyerID int64       `gorm:"not null;index" json:"buyer_id"`
	Status  OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	//明細スナップショットの合計。作成時に確定し、以後再計算しない。
	Total int64 `gorm:"not null" json:"total"`

	//購入者が「支払った」と申告したときの支払い手段ラベル（PENDING中は空）
	PaymentMethod string `gorm:"type:varchar(100)" json:"payment_method,omitempty"`

	//FAILEDのときだけ管理者が入れる却下理由
	RejectionReason string `gorm:"type:varchar(500)" json:"rejection_reason,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
