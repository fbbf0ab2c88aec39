package repository

import (
	"context"
	"errors"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

func (r *InventoryGormRepository) FindBySkuCode(ctx context.Context, skuCode string) (model.Inventory, error) {
	var inv model.Inventory
	err := r.db.WithContext(ctx).Where("sku_code = ?", skuCode).First(&inv).Error
	if isNotFound(err) {
		return model.Inventory{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Inventory{}, err
	}
	return inv, nil
}

func (r *InventoryGormRepository) FindBySkuCodes(ctx context.Context, skuCodes []string) ([]model.Inventory, error) {
	if len(skuCodes) == 0 {
		return []model.Inventory{}, nil
	}
	var items []model.Inventory
	err := r.db.WithContext(ctx).
		Where("sku_code IN ?", skuCodes).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.Inventory{}, err
	}
	return items, nil
}

func (r *InventoryGormRepository) List(ctx context.Context, page int, limit int) ([]model.Inventory, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Inventory{}).Count(&total).Error; err != nil {
		return []model.Inventory{}, 0, err
	}

	var items []model.Inventory
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).
		Order("sku_code asc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return []model.Inventory{}, 0, err
	}
	return items, total, nil
}

// sku_codeのユニーク制約に任せて、既存なら何もしない
func (r *InventoryGormRepository) CreateIfAbsent(ctx context.Context, inv model.Inventory) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sku_code"}},
			DoNothing: true,
		}).
		Create(&inv)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// 在庫の現在値を設定（行ロックしてから更新）
func (r *InventoryGormRepository) SetQuantity(ctx context.Context, skuCode string, quantity int) (int, error) {
	var inv model.Inventory
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("sku_code = ?", skuCode).
		First(&inv).Error

	if isNotFound(err) {
		created := model.Inventory{SkuCode: skuCode, Quantity: quantity}
		if err := r.db.WithContext(ctx).Create(&created).Error; err != nil {
			return 0, err
		}
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	res := r.db.WithContext(ctx).
		Model(&model.Inventory{}).
		Where("id = ?", inv.ID).
		Update("quantity", quantity)
	// 値が同じだとMySQLはRowsAffected=0を返すので件数は見ない（行はロック済み）
	if res.Error != nil {
		return 0, res.Error
	}
	return inv.Quantity, nil
}

// 在庫が足りるときだけ減らす
func (r *InventoryGormRepository) DecreaseIfEnough(ctx context.Context, skuCode string, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Inventory{}).
		Where("sku_code = ? AND quantity >= ?", skuCode, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

// 調整履歴作成
func (r *InventoryGormRepository) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	if err := r.db.WithContext(ctx).Create(&adj).Error; err != nil {
		return err
	}
	return nil
}

// 同じ注文番号の同時insertは後から来た方が先のtx完了を待ち、衝突して0件になる
func (r *InventoryGormRepository) MarkOrderApplied(ctx context.Context, orderNumber string) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_number"}},
			DoNothing: true,
		}).
		Create(&model.ProcessedOrder{OrderNumber: orderNumber})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
