package repository

import (
	"context"

	"shop/internal/domain/model"
)

type OrderLineItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderLineItem) ([]model.OrderLineItem, error)
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderLineItem, error)
	DeleteByOrderID(ctx context.Context, orderID int64) error
}
