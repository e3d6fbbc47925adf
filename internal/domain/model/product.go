package model

import (
	"time"

	"gorm.io/gorm"
)

// 商品の種別（買い切り商品か、作業を伴うサービスか）
type ProductKind string

const (
	ProductKindProduct ProductKind = "PRODUCT"
	ProductKindService ProductKind = "SERVICE"
)

type Product struct {
	ID          int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string      `gorm:"type:varchar(255);not null" json:"title"`
	Description string      `gorm:"type:text" json:"description"`
	Price       int64       `gorm:"not null" json:"price"`
	Image       string      `gorm:"type:varchar(500)" json:"image"`
	Kind        ProductKind `gorm:"type:varchar(20);not null;default:'PRODUCT'" json:"kind"`

	//購入者だけに渡す配布物の参照（URLやファイルキー）
	DownloadKey string `gorm:"type:varchar(500)" json:"-"`

	IsActive  bool           `gorm:"not null;default:false" json:"is_active"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
