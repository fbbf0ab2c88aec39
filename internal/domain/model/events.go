package model

import "time"

// 注文確定イベント（order-service -> inventory-service）
type OrderPlacedEvent struct {
	OrderNumber string                `json:"order_number"`
	LineItems   []OrderPlacedLineItem `json:"line_items"`
	PlacedAt    time.Time             `json:"placed_at"`
}

type OrderPlacedLineItem struct {
	SkuCode  string `json:"sku_code"`
	Quantity int    `json:"quantity"`
}

// 注文から確定イベントを組み立てる
func NewOrderPlacedEvent(o Order) OrderPlacedEvent {
	items := make([]OrderPlacedLineItem, 0, len(o.LineItems))
	for _, li := range o.LineItems {
		items = append(items, OrderPlacedLineItem{SkuCode: li.SkuCode, Quantity: li.Quantity})
	}
	return OrderPlacedEvent{
		OrderNumber: o.OrderNumber,
		LineItems:   items,
		PlacedAt:    o.CreatedAt,
	}
}

// SKUごとの数量を合算する（同じSKUが複数行あってもまとめる）
func (e OrderPlacedEvent) QuantityBySku() map[string]int {
	out := make(map[string]int, len(e.LineItems))
	for _, li := range e.LineItems {
		out[li.SkuCode] += li.Quantity
	}
	return out
}
