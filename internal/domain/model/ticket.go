package model

import "time"

type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
)

// サポートチケット。メッセージは追記専用。
type Ticket struct {
	ID        string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	OwnerID   int64        `gorm:"not null;index" json:"owner_id"`
	Subject   string       `gorm:"type:varchar(255);not null" json:"subject"`
	Status    TicketStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt time.Time    `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
