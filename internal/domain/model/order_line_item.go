package model

import "github.com/shopspring/decimal"

// 1明細あたりの数量上限
const MaxLineQuantity = 1_000_000

// 注文明細。OrderIDはDB上の外部キーのみでJSONには出さない
type OrderLineItem struct {
	ID       int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID  int64           `gorm:"not null;index" json:"-"`
	SkuCode  string          `gorm:"type:varchar(100);not null" json:"sku_code"`
	Price    decimal.Decimal `gorm:"type:decimal(19,2);not null" json:"price"`
	Quantity int             `gorm:"not null" json:"quantity"`
}

func (OrderLineItem) TableName() string { return "t_order_line_items" }

func (li OrderLineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}
