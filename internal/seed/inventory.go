package seed

import (
	"context"
	"fmt"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"go.uber.org/zap"
)

// 起動時に必ず存在させる在庫
var DefaultInventory = []model.Inventory{
	{SkuCode: "iphone_14", Quantity: 100},
	{SkuCode: "iphone_14_red", Quantity: 2},
}

// Inventory は初期在庫を投入する。既にある行は触らない（再起動で在庫を戻さない）
func Inventory(ctx context.Context, tx repo.TransactionManager, rows []model.Inventory, logger *zap.Logger) error {
	for _, row := range rows {
		created := false
		err := tx.WithinTx(ctx, func(r repo.TxRepos) error {
			ok, err := r.Inventory().CreateIfAbsent(ctx, model.Inventory{
				SkuCode:  row.SkuCode,
				Quantity: row.Quantity,
			})
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			created = true
			return r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
				SkuCode: row.SkuCode,
				Delta:   row.Quantity,
				Reason:  model.AdjustmentReasonSeed,
			})
		})
		if err != nil {
			return fmt.Errorf("seed %s: %w", row.SkuCode, err)
		}

		if created {
			logger.Info("inventory seeded", zap.String("sku_code", row.SkuCode), zap.Int("quantity", row.Quantity))
		} else {
			logger.Debug("inventory already present", zap.String("sku_code", row.SkuCode))
		}
	}
	return nil
}
