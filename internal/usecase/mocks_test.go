package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"shop/internal/domain/model"
	repo "shop/internal/repository"
	"shop/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders    repo.OrderRepository
	lineItems repo.OrderLineItemRepository
	inventory repo.InventoryRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository                 { return r.orders }
func (r *TxReposMock) OrderLineItems() repo.OrderLineItemRepository { return r.lineItems }
func (r *TxReposMock) Inventory() repo.InventoryRepository          { return r.inventory }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindByOrderNumber(ctx context.Context, orderNumber string) (model.Order, error) {
	args := m.Called(ctx, orderNumber)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) List(ctx context.Context, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, page, limit)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (model.Order, error) {
	args := m.Called(ctx, order)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) Delete(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type LineItemRepoMock struct{ mock.Mock }

func (m *LineItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderLineItem) ([]model.OrderLineItem, error) {
	args := m.Called(ctx, orderID, items)
	out, _ := args.Get(0).([]model.OrderLineItem)
	return out, args.Error(1)
}

func (m *LineItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderLineItem, error) {
	args := m.Called(ctx, orderID)
	out, _ := args.Get(0).([]model.OrderLineItem)
	return out, args.Error(1)
}

func (m *LineItemRepoMock) DeleteByOrderID(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) FindBySkuCode(ctx context.Context, skuCode string) (model.Inventory, error) {
	args := m.Called(ctx, skuCode)
	inv, _ := args.Get(0).(model.Inventory)
	return inv, args.Error(1)
}

func (m *InventoryRepoMock) FindBySkuCodes(ctx context.Context, skuCodes []string) ([]model.Inventory, error) {
	args := m.Called(ctx, skuCodes)
	items, _ := args.Get(0).([]model.Inventory)
	return items, args.Error(1)
}

func (m *InventoryRepoMock) List(ctx context.Context, page int, limit int) ([]model.Inventory, int64, error) {
	args := m.Called(ctx, page, limit)
	items, _ := args.Get(0).([]model.Inventory)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *InventoryRepoMock) CreateIfAbsent(ctx context.Context, inv model.Inventory) (bool, error) {
	args := m.Called(ctx, inv)
	return args.Bool(0), args.Error(1)
}

func (m *InventoryRepoMock) SetQuantity(ctx context.Context, skuCode string, quantity int) (int, error) {
	args := m.Called(ctx, skuCode, quantity)
	return args.Int(0), args.Error(1)
}

func (m *InventoryRepoMock) DecreaseIfEnough(ctx context.Context, skuCode string, qty int) (bool, error) {
	args := m.Called(ctx, skuCode, qty)
	return args.Bool(0), args.Error(1)
}

func (m *InventoryRepoMock) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	args := m.Called(ctx, adj)
	return args.Error(0)
}

func (m *InventoryRepoMock) MarkOrderApplied(ctx context.Context, orderNumber string) (bool, error) {
	args := m.Called(ctx, orderNumber)
	return args.Bool(0), args.Error(1)
}

var (
	_ repo.OrderRepository         = (*OrderRepoMock)(nil)
	_ repo.OrderLineItemRepository = (*LineItemRepoMock)(nil)
	_ repo.InventoryRepository     = (*InventoryRepoMock)(nil)
)

// =====================
// Port mocks
// =====================

type StockCheckerMock struct{ mock.Mock }

func (m *StockCheckerMock) CheckStock(ctx context.Context, skuCodes []string) ([]model.StockStatus, error) {
	args := m.Called(ctx, skuCodes)
	out, _ := args.Get(0).([]model.StockStatus)
	return out, args.Error(1)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) PublishOrderPlaced(ctx context.Context, event model.OrderPlacedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type StockCacheMock struct{ mock.Mock }

func (m *StockCacheMock) GetMany(ctx context.Context, skuCodes []string) (map[string]int, error) {
	args := m.Called(ctx, skuCodes)
	out, _ := args.Get(0).(map[string]int)
	return out, args.Error(1)
}

func (m *StockCacheMock) SetMany(ctx context.Context, quantities map[string]int) error {
	args := m.Called(ctx, quantities)
	return args.Error(0)
}

func (m *StockCacheMock) Invalidate(ctx context.Context, skuCodes ...string) error {
	args := m.Called(ctx, skuCodes)
	return args.Error(0)
}

var (
	_ usecase.StockChecker        = (*StockCheckerMock)(nil)
	_ usecase.OrderEventPublisher = (*PublisherMock)(nil)
	_ usecase.StockCache          = (*StockCacheMock)(nil)
)

type fixedIDs struct{ id string }

func (f fixedIDs) NewID() string { return f.id }

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

// =====================
// Helper
// =====================

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}

func assertHTTPStatus(t *testing.T, err error, want int) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	if assert.True(t, ok, "want HTTPError, got %v", err) {
		assert.Equal(t, want, he.Status)
	}
}
