package model

import (
	"fmt"
	"time"
)

//在庫調整の履歴

type InventoryAdjustment struct {
	ID      int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	SkuCode string `gorm:"type:varchar(100);not null;index" json:"sku_code"`
	Delta   int    `gorm:"not null" json:"delta"`
	//seed / admin:<ユーザーID>:<理由> / order:<注文番号>
	Reason    string    `gorm:"type:varchar(255);not null;index" json:"reason"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (InventoryAdjustment) TableName() string { return "t_inventory_adjustments" }

const (
	AdjustmentReasonSeed = "seed"
)

// 注文による減算の理由文字列
func OrderAdjustmentReason(orderNumber string) string {
	return "order:" + orderNumber
}

// 管理者による更新の理由文字列
func AdminAdjustmentReason(adminUserID int64, reason string) string {
	return fmt.Sprintf("admin:%d:%s", adminUserID, reason)
}
