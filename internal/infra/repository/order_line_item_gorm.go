package repository

import (
	"context"

	"shop/internal/domain/model"

	"gorm.io/gorm"
)

type OrderLineItemGormRepository struct {
	db *gorm.DB
}

func NewOrderLineItemGormRepository(db *gorm.DB) *OrderLineItemGormRepository {
	return &OrderLineItemGormRepository{db: db}
}

func (r *OrderLineItemGormRepository) CreateBulk(ctx context.Context, orderID int64, items []model.OrderLineItem) ([]model.OrderLineItem, error) {
	if len(items) == 0 {
		return []model.OrderLineItem{}, nil
	}
	out := make([]model.OrderLineItem, len(items))
	copy(out, items)
	for i := range out {
		out[i].OrderID = orderID
	}
	if err := r.db.WithContext(ctx).Create(&out).Error; err != nil {
		return []model.OrderLineItem{}, err
	}
	return out, nil
}

func (r *OrderLineItemGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderLineItem, error) {
	var items []model.OrderLineItem
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id asc").Find(&items).Error
	if err != nil {
		return []model.OrderLineItem{}, err
	}
	return items, nil
}

// 注文の明細をまとめて削除
func (r *OrderLineItemGormRepository) DeleteByOrderID(ctx context.Context, orderID int64) error {
	return r.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&model.OrderLineItem{}).Error
}
