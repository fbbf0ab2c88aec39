package repository

import (
	"context"

	"shop/internal/domain/model"
)

type InventoryRepository interface {
	// SKUで1件取得
	FindBySkuCode(ctx context.Context, skuCode string) (model.Inventory, error)

	// 複数SKUをまとめて取得（存在しないSKUは結果に含まれない）
	FindBySkuCodes(ctx context.Context, skuCodes []string) ([]model.Inventory, error)

	List(ctx context.Context, page int, limit int) ([]model.Inventory, int64, error)

	// 無ければ作成（既存行は変更しない）。作成したらtrue
	CreateIfAbsent(ctx context.Context, inv model.Inventory) (bool, error)

	// 在庫の現在値を設定（無ければ作成）。変更前の数量を返す
	SetQuantity(ctx context.Context, skuCode string, quantity int) (int, error)

	// 在庫が足りるときだけ減算
	DecreaseIfEnough(ctx context.Context, skuCode string, qty int) (bool, error)

	// 調整履歴
	CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error
	// 注文を反映済みとして記録。初回だけtrue（同じ注文番号が既にあればfalse）
	MarkOrderApplied(ctx context.Context, orderNumber string) (bool, error)
}
