package usecase

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"shop/internal/domain/model"
	"shop/internal/observability"
	repo "shop/internal/repository"
	"shop/internal/validator"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var inventoryTracer = otel.Tracer("shop/usecase/inventory")

// 在庫数のキャッシュ。ヒットしたSKUだけ返す
type StockCache interface {
	GetMany(ctx context.Context, skuCodes []string) (map[string]int, error)
	SetMany(ctx context.Context, quantities map[string]int) error
	Invalidate(ctx context.Context, skuCodes ...string) error
}

type InventoryUsecase struct {
	tx        repo.TransactionManager
	inventory repo.InventoryRepository
	cache     StockCache
	metrics   *observability.Metrics
	logger    *zap.Logger
}

func NewInventoryUsecase(
	tx repo.TransactionManager,
	inventory repo.InventoryRepository,
	cache StockCache,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *InventoryUsecase {
	return &InventoryUsecase{
		tx:        tx,
		inventory: inventory,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
	}
}

type InventoryListOutput struct {
	Items []model.Inventory `json:"items"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// 複数SKUの在庫確認。結果は最初に出てきた順、重複はまとめる
func (u *InventoryUsecase) CheckStock(ctx context.Context, skuCodes []string) ([]model.StockStatus, error) {
	ctx, span := inventoryTracer.Start(ctx, "InventoryUsecase.CheckStock")
	defer span.End()

	skus, ok := dedupeSkus(skuCodes)
	if !ok {
		return []model.StockStatus{}, NewHTTPError(http.StatusBadRequest, "invalid sku_code")
	}
	if len(skus) == 0 {
		return []model.StockStatus{}, NewHTTPError(http.StatusBadRequest, "skuCode required")
	}
	if len(skus) > maxBatchSize {
		return []model.StockStatus{}, NewHTTPError(http.StatusBadRequest, "too many skuCode")
	}
	span.SetAttributes(attribute.StringSlice("inventory.skus", skus))

	quantities, err := u.cache.GetMany(ctx, skus)
	if err != nil {
		u.logger.Warn("stock cache read failed", zap.Error(err))
		quantities = map[string]int{}
	}

	misses := make([]string, 0, len(skus))
	for _, sku := range skus {
		if _, ok := quantities[sku]; !ok {
			misses = append(misses, sku)
		}
	}
	u.metrics.StockChecks.WithLabelValues("cache").Add(float64(len(skus) - len(misses)))
	u.metrics.StockChecks.WithLabelValues("db").Add(float64(len(misses)))

	if len(misses) > 0 {
		rows, err := u.inventory.FindBySkuCodes(ctx, misses)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "db error")
			return []model.StockStatus{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}

		fresh := make(map[string]int, len(rows))
		for _, row := range rows {
			fresh[row.SkuCode] = row.Quantity
			quantities[row.SkuCode] = row.Quantity
		}
		if len(fresh) > 0 {
			if err := u.cache.SetMany(ctx, fresh); err != nil {
				u.logger.Warn("stock cache write failed", zap.Error(err))
			}
		}
	}

	out := make([]model.StockStatus, 0, len(skus))
	for _, sku := range skus {
		qty := quantities[sku]
		out = append(out, model.StockStatus{
			SkuCode:   sku,
			IsInStock: qty > 0,
			Quantity:  qty,
		})
	}
	return out, nil
}

func (u *InventoryUsecase) GetInventory(ctx context.Context, skuCode string) (model.Inventory, error) {
	sku, ok := validator.NormalizeSkuCode(skuCode)
	if !ok {
		return model.Inventory{}, NewHTTPError(http.StatusBadRequest, "invalid sku_code")
	}

	inv, err := u.inventory.FindBySkuCode(ctx, sku)
	if err == repo.ErrNotFound {
		return model.Inventory{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Inventory{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return inv, nil
}

func (u *InventoryUsecase) ListInventory(ctx context.Context, page int, limit int) (InventoryListOutput, error) {
	if page < 1 || page > maxPage {
		return InventoryListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > maxPageLimit {
		return InventoryListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.inventory.List(ctx, page, limit)
	if err != nil {
		return InventoryListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return InventoryListOutput{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

// 管理者による在庫の現在値設定（無ければ作成）。差分は調整履歴に残す
func (u *InventoryUsecase) SetQuantity(ctx context.Context, adminUserID int64, skuCode string, quantity int, reason string) (model.Inventory, error) {
	if adminUserID <= 0 {
		return model.Inventory{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	sku, ok := validator.NormalizeSkuCode(skuCode)
	if !ok {
		return model.Inventory{}, NewHTTPError(http.StatusBadRequest, "invalid sku_code")
	}
	if quantity < 0 {
		return model.Inventory{}, NewHTTPError(http.StatusBadRequest, "quantity must be >= 0")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return model.Inventory{}, NewHTTPError(http.StatusBadRequest, "reason required")
	}

	ctx, span := inventoryTracer.Start(ctx, "InventoryUsecase.SetQuantity")
	defer span.End()
	span.SetAttributes(attribute.String("inventory.sku", sku), attribute.Int("inventory.quantity", quantity))

	var out model.Inventory
	var before int

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		prev, err := r.Inventory().SetQuantity(ctx, sku, quantity)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		before = prev

		if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
			SkuCode: sku,
			Delta:   quantity - prev,
			Reason:  model.AdminAdjustmentReason(adminUserID, reason),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		inv, err := r.Inventory().FindBySkuCode(ctx, sku)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = inv
		return nil
	})
	if err != nil {
		return model.Inventory{}, err
	}

	u.invalidate(ctx, sku)
	u.logger.Info("inventory updated",
		zap.Int64("admin_user_id", adminUserID),
		zap.String("sku_code", sku),
		zap.Int("before", before),
		zap.Int("after", quantity),
	)
	return out, nil
}

// 注文確定イベントを在庫に反映する。
// 全SKUが足りるときだけ減算し、同じ注文番号の2回目以降は何もしない。
func (u *InventoryUsecase) ApplyOrderPlaced(ctx context.Context, event model.OrderPlacedEvent) error {
	orderNumber := strings.TrimSpace(event.OrderNumber)
	if orderNumber == "" || len(event.LineItems) == 0 || len(event.LineItems) > maxBatchSize {
		return ErrInvalidEvent
	}
	//合算前に1行ずつ範囲チェック（合計がintを溢れないように）
	for _, li := range event.LineItems {
		if li.Quantity <= 0 || li.Quantity > model.MaxLineQuantity {
			return ErrInvalidEvent
		}
	}

	ctx, span := inventoryTracer.Start(ctx, "InventoryUsecase.ApplyOrderPlaced")
	defer span.End()
	span.SetAttributes(attribute.String("order.number", orderNumber))

	qtyBySku := event.QuantityBySku()
	skus := make([]string, 0, len(qtyBySku))
	for sku, qty := range qtyBySku {
		if strings.TrimSpace(sku) == "" || qty <= 0 {
			return ErrInvalidEvent
		}
		skus = append(skus, sku)
	}
	//ロック順を固定する
	sort.Strings(skus)

	reason := model.OrderAdjustmentReason(orderNumber)
	applied := false

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//注文番号のユニーク制約で二重適用を防ぐ（同時配信でも片方だけ通る）
		first, err := r.Inventory().MarkOrderApplied(ctx, orderNumber)
		if err != nil {
			return err
		}
		if !first {
			return nil
		}

		for _, sku := range skus {
			qty := qtyBySku[sku]
			ok, err := r.Inventory().DecreaseIfEnough(ctx, sku, qty)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", ErrInsufficientStock, sku)
			}
			if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
				SkuCode: sku,
				Delta:   -qty,
				Reason:  reason,
			}); err != nil {
				return err
			}
		}
		applied = true
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "apply order failed")
		return err
	}

	if !applied {
		u.logger.Info("order already applied", zap.String("order_number", orderNumber))
		return nil
	}

	u.invalidate(ctx, skus...)
	u.logger.Info("inventory decreased for order",
		zap.String("order_number", orderNumber),
		zap.Strings("skus", skus),
	)
	return nil
}

func (u *InventoryUsecase) invalidate(ctx context.Context, skus ...string) {
	if err := u.cache.Invalidate(ctx, skus...); err != nil {
		u.logger.Warn("stock cache invalidate failed", zap.Strings("skus", skus), zap.Error(err))
	}
}

// 空要素は無視、形式違反が1つでもあればfalse
func dedupeSkus(in []string) ([]string, bool) {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, raw := range in {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		s, ok := validator.NormalizeSkuCode(raw)
		if !ok {
			return nil, false
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out, true
}
