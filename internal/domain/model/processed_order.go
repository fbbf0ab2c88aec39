package model

import "time"

// 在庫に反映済みの注文。order_numberのユニーク制約が二重適用のガード
type ProcessedOrder struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"order_number"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (ProcessedOrder) TableName() string { return "t_processed_orders" }
