package repository

import (
	"context"

	"shop/internal/domain/model"
)

type OrderRepository interface {
	// 明細を含めて取得
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (model.Order, error)
	// 新しい順。明細も含める
	List(ctx context.Context, page int, limit int) ([]model.Order, int64, error)
	// 注文ヘッダのみ作成（明細はOrderLineItemRepository）
	Create(ctx context.Context, order model.Order) (model.Order, error)
	Delete(ctx context.Context, orderID int64) error
}
