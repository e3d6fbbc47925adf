package model

import "time"

type ServiceRequestStatus string

const (
	ServiceRequestStatusNew        ServiceRequestStatus = "NEW"
	ServiceRequestStatusInProgress ServiceRequestStatus = "IN_PROGRESS"
	ServiceRequestStatusCompleted  ServiceRequestStatus = "COMPLETED"
	ServiceRequestStatusRejected   ServiceRequestStatus = "REJECTED"
)

func (s ServiceRequestStatus) IsTerminal() bool {
	return s == ServiceRequestStatusCompleted || s == ServiceRequestStatusRejected
}

// カスタム作業の依頼（見積もり依頼など）
type ServiceRequest struct {
	ID           string               `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID       int64                `gorm:"not null;index" json:"user_id"`
	Subject      string               `gorm:"type:varchar(255);not null" json:"subject"`
	Details      string               `gorm:"type:text;not null" json:"details"`
	Status       ServiceRequestStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	AdminComment string               `gorm:"type:text" json:"admin_comment,omitempty"`
	CreatedAt    time.Time            `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt    time.Time            `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
