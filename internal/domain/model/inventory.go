package model

import "time"

// SKUごとの在庫（1行＝1SKU）
type Inventory struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SkuCode   string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"sku_code"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Inventory) TableName() string { return "t_inventory" }

// 在庫が1以上あるか
func (i Inventory) InStock() bool {
	return i.Quantity > 0
}

// 在庫確認の結果（存在しないSKUは在庫なし・数量0）
type StockStatus struct {
	SkuCode   string `json:"sku_code"`
	IsInStock bool   `json:"is_in_stock"`
	Quantity  int    `json:"quantity"`
}
