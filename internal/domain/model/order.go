package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文。明細は注文に従属する（注文削除で明細も消える）
type Order struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber string          `gorm:"type:varchar(64);not null;uniqueIndex" json:"order_number"`
	LineItems   []OrderLineItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_line_items"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Order) TableName() string { return "t_orders" }

// 明細の合計金額（price * quantity の総和）
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, li := range o.LineItems {
		total = total.Add(li.Subtotal())
	}
	return total
}
