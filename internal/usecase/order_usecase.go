package usecase

import (
	"context"
	"net/http"
	"time"

	"shop/internal/domain/model"
	"shop/internal/observability"
	repo "shop/internal/repository"
	"shop/internal/validator"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var orderTracer = otel.Tracer("shop/usecase/order")

// 在庫サービスへの問い合わせ
type StockChecker interface {
	CheckStock(ctx context.Context, skuCodes []string) ([]model.StockStatus, error)
}

// 注文確定イベントの送信
type OrderEventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event model.OrderPlacedEvent) error
}

type OrderUsecase struct {
	tx        repo.TransactionManager
	stock     StockChecker
	publisher OrderEventPublisher
	ids       IDGenerator
	clock     Clock
	metrics   *observability.Metrics
	logger    *zap.Logger
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	stock StockChecker,
	publisher OrderEventPublisher,
	ids IDGenerator,
	clock Clock,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *OrderUsecase {
	return &OrderUsecase{
		tx:        tx,
		stock:     stock,
		publisher: publisher,
		ids:       ids,
		clock:     clock,
		metrics:   metrics,
		logger:    logger,
	}
}

type LineItemInput struct {
	SkuCode  string
	Price    decimal.Decimal
	Quantity int
}

type PlaceOrderInput struct {
	LineItems []LineItemInput
}

type LineItemOutput struct {
	ID       int64           `json:"id"`
	SkuCode  string          `json:"sku_code"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type OrderOutput struct {
	ID          int64            `json:"id"`
	OrderNumber string           `json:"order_number"`
	TotalPrice  decimal.Decimal  `json:"total_price"`
	CreatedAt   time.Time        `json:"created_at"`
	LineItems   []LineItemOutput `json:"order_line_items"`
}

type OrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func (u *OrderUsecase) PlaceOrder(ctx context.Context, in PlaceOrderInput) (OrderOutput, error) {
	ctx, span := orderTracer.Start(ctx, "OrderUsecase.PlaceOrder")
	defer span.End()

	lines, err := normalizeLineItems(in.LineItems)
	if err != nil {
		u.metrics.OrdersRejected.WithLabelValues("invalid").Inc()
		return OrderOutput{}, err
	}

	//SKUごとの必要数（同じSKUの複数行は合算）
	skus := make([]string, 0, len(lines))
	required := make(map[string]int, len(lines))
	for _, li := range lines {
		if _, seen := required[li.SkuCode]; !seen {
			skus = append(skus, li.SkuCode)
		}
		required[li.SkuCode] += li.Quantity
	}
	span.SetAttributes(attribute.Int("order.line_items", len(lines)), attribute.StringSlice("order.skus", skus))

	//在庫確認
	statuses, err := u.stock.CheckStock(ctx, skus)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "stock check failed")
		u.logger.Error("stock check failed", zap.Strings("skus", skus), zap.Error(err))
		u.metrics.OrdersRejected.WithLabelValues("inventory_unavailable").Inc()
		return OrderOutput{}, NewHTTPError(http.StatusServiceUnavailable, "inventory service unavailable")
	}
	available := make(map[string]model.StockStatus, len(statuses))
	for _, st := range statuses {
		available[st.SkuCode] = st
	}
	for _, sku := range skus {
		st, ok := available[sku]
		if !ok || !st.IsInStock || st.Quantity < required[sku] {
			u.logger.Info("order rejected: out of stock",
				zap.String("sku_code", sku),
				zap.Int("required", required[sku]),
				zap.Int("available", st.Quantity),
			)
			u.metrics.OrdersRejected.WithLabelValues("out_of_stock").Inc()
			return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "product is not in stock")
		}
	}

	//注文と明細は同一トランザクション
	now := u.clock.Now()
	order := model.Order{
		OrderNumber: u.ids.NewID(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		created, err := r.Orders().Create(ctx, order)
		if err != nil {
			u.logger.Error("create order failed", zap.Error(err))
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items, err := r.OrderLineItems().CreateBulk(ctx, created.ID, lines)
		if err != nil {
			u.logger.Error("create order line items failed", zap.Int64("order_id", created.ID), zap.Error(err))
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		created.LineItems = items
		order = created
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist order failed")
		return OrderOutput{}, err
	}

	u.metrics.OrdersPlaced.Inc()
	span.SetAttributes(attribute.String("order.number", order.OrderNumber))
	u.logger.Info("order placed",
		zap.Int64("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Int("line_items", len(order.LineItems)),
	)

	//送信失敗しても注文は確定済み（ログだけ残す）
	if err := u.publisher.PublishOrderPlaced(ctx, model.NewOrderPlacedEvent(order)); err != nil {
		span.RecordError(err)
		u.logger.Error("publish order placed failed", zap.String("order_number", order.OrderNumber), zap.Error(err))
	}

	return toOrderOutput(order), nil
}

func (u *OrderUsecase) GetOrder(ctx context.Context, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = toOrderOutput(o)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func (u *OrderUsecase) ListOrders(ctx context.Context, page int, limit int) (OrderListOutput, error) {
	if page < 1 || page > maxPage {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > maxPageLimit {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	out := OrderListOutput{Page: page, Limit: limit}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().List(ctx, page, limit)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out.Total = total
		out.Items = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			out.Items = append(out.Items, toOrderOutput(o))
		}
		return nil
	})

	if err != nil {
		return OrderListOutput{}, err
	}
	return out, nil
}

// 注文削除（明細も一緒に消す）
func (u *OrderUsecase) DeleteOrder(ctx context.Context, orderID int64) error {
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	ctx, span := orderTracer.Start(ctx, "OrderUsecase.DeleteOrder")
	defer span.End()
	span.SetAttributes(attribute.Int64("order.id", orderID))

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Orders().FindByID(ctx, orderID); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.OrderLineItems().DeleteByOrderID(ctx, orderID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		err := r.Orders().Delete(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
	if err != nil {
		return err
	}

	u.logger.Info("order deleted", zap.Int64("order_id", orderID))
	return nil
}

// 入力チェックと正規化（SKUの前後空白は落とす）
func normalizeLineItems(in []LineItemInput) ([]model.OrderLineItem, error) {
	if len(in) == 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "order line items required")
	}
	if len(in) > maxBatchSize {
		return nil, NewHTTPError(http.StatusBadRequest, "too many order line items")
	}

	out := make([]model.OrderLineItem, 0, len(in))
	for _, li := range in {
		sku, ok := validator.NormalizeSkuCode(li.SkuCode)
		if !ok {
			return nil, NewHTTPError(http.StatusBadRequest, "invalid sku_code")
		}
		if li.Quantity <= 0 {
			return nil, NewHTTPError(http.StatusBadRequest, "quantity must be > 0")
		}
		if li.Quantity > model.MaxLineQuantity {
			return nil, NewHTTPError(http.StatusBadRequest, "quantity too large")
		}
		if li.Price.IsNegative() {
			return nil, NewHTTPError(http.StatusBadRequest, "price must be >= 0")
		}
		out = append(out, model.OrderLineItem{
			SkuCode:  sku,
			Price:    li.Price.Round(2),
			Quantity: li.Quantity,
		})
	}
	return out, nil
}

func toOrderOutput(o model.Order) OrderOutput {
	items := make([]LineItemOutput, 0, len(o.LineItems))
	for _, li := range o.LineItems {
		items = append(items, LineItemOutput{
			ID:       li.ID,
			SkuCode:  li.SkuCode,
			Price:    li.Price,
			Quantity: li.Quantity,
		})
	}

	return OrderOutput{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		TotalPrice:  o.Total(),
		CreatedAt:   o.CreatedAt,
		LineItems:   items,
	}
}
