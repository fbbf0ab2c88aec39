package handler_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"shop/internal/domain/model"
	repo "shop/internal/repository"
)

// memStore はハンドラテスト用のインメモリ実装（ロールバックはしない）
type memStore struct {
	mu sync.Mutex

	nextOrderID int64
	nextItemID  int64
	nextInvID   int64

	orders      map[int64]model.Order
	lineItems   map[int64][]model.OrderLineItem
	inventory   map[string]model.Inventory
	adjustments []model.InventoryAdjustment
	processed   map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		orders:    map[int64]model.Order{},
		lineItems: map[int64][]model.OrderLineItem{},
		inventory: map[string]model.Inventory{},
		processed: map[string]bool{},
	}
}

func (s *memStore) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(s)
}

func (s *memStore) Orders() repo.OrderRepository                 { return memOrders{s} }
func (s *memStore) OrderLineItems() repo.OrderLineItemRepository { return memLineItems{s} }
func (s *memStore) Inventory() repo.InventoryRepository          { return memInventory{s} }

// =====================
// orders
// =====================

type memOrders struct{ s *memStore }

func (r memOrders) withItems(o model.Order) model.Order {
	o.LineItems = append([]model.OrderLineItem(nil), r.s.lineItems[o.ID]...)
	return o
}

func (r memOrders) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[orderID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return r.withItems(o), nil
}

func (r memOrders) FindByOrderNumber(ctx context.Context, orderNumber string) (model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orders {
		if o.OrderNumber == orderNumber {
			return r.withItems(o), nil
		}
	}
	return model.Order{}, repo.ErrNotFound
}

func (r memOrders) List(ctx context.Context, page int, limit int) ([]model.Order, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := make([]int64, 0, len(r.s.orders))
	for id := range r.s.orders {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	out := []model.Order{}
	for i := (page - 1) * limit; i < len(ids) && len(out) < limit; i++ {
		out = append(out, r.withItems(r.s.orders[ids[i]]))
	}
	return out, int64(len(ids)), nil
}

func (r memOrders) Create(ctx context.Context, order model.Order) (model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextOrderID++
	order.ID = r.s.nextOrderID
	order.LineItems = nil
	r.s.orders[order.ID] = order
	return order, nil
}

func (r memOrders) Delete(ctx context.Context, orderID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[orderID]; !ok {
		return repo.ErrNotFound
	}
	delete(r.s.orders, orderID)
	delete(r.s.lineItems, orderID)
	return nil
}

// =====================
// line items
// =====================

type memLineItems struct{ s *memStore }

func (r memLineItems) CreateBulk(ctx context.Context, orderID int64, items []model.OrderLineItem) ([]model.OrderLineItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.OrderLineItem, 0, len(items))
	for _, li := range items {
		r.s.nextItemID++
		li.ID = r.s.nextItemID
		li.OrderID = orderID
		out = append(out, li)
	}
	r.s.lineItems[orderID] = append(r.s.lineItems[orderID], out...)
	return out, nil
}

func (r memLineItems) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderLineItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]model.OrderLineItem(nil), r.s.lineItems[orderID]...), nil
}

func (r memLineItems) DeleteByOrderID(ctx context.Context, orderID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.lineItems, orderID)
	return nil
}

// =====================
// inventory
// =====================

type memInventory struct{ s *memStore }

func (r memInventory) FindBySkuCode(ctx context.Context, skuCode string) (model.Inventory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.inventory[skuCode]
	if !ok {
		return model.Inventory{}, repo.ErrNotFound
	}
	return inv, nil
}

func (r memInventory) FindBySkuCodes(ctx context.Context, skuCodes []string) ([]model.Inventory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Inventory{}
	for _, sku := range skuCodes {
		if inv, ok := r.s.inventory[sku]; ok {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r memInventory) List(ctx context.Context, page int, limit int) ([]model.Inventory, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]model.Inventory, 0, len(r.s.inventory))
	for _, inv := range r.s.inventory {
		all = append(all, inv)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].SkuCode < all[j].SkuCode })

	out := []model.Inventory{}
	for i := (page - 1) * limit; i < len(all) && len(out) < limit; i++ {
		out = append(out, all[i])
	}
	return out, int64(len(all)), nil
}

func (r memInventory) CreateIfAbsent(ctx context.Context, inv model.Inventory) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.inventory[inv.SkuCode]; ok {
		return false, nil
	}
	r.s.nextInvID++
	inv.ID = r.s.nextInvID
	inv.CreatedAt = time.Now()
	inv.UpdatedAt = inv.CreatedAt
	r.s.inventory[inv.SkuCode] = inv
	return true, nil
}

func (r memInventory) SetQuantity(ctx context.Context, skuCode string, quantity int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.inventory[skuCode]
	if !ok {
		r.s.nextInvID++
		inv = model.Inventory{ID: r.s.nextInvID, SkuCode: skuCode}
	}
	before := inv.Quantity
	inv.Quantity = quantity
	r.s.inventory[skuCode] = inv
	return before, nil
}

func (r memInventory) DecreaseIfEnough(ctx context.Context, skuCode string, qty int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.inventory[skuCode]
	if !ok || inv.Quantity < qty {
		return false, nil
	}
	inv.Quantity -= qty
	r.s.inventory[skuCode] = inv
	return true, nil
}

func (r memInventory) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.adjustments = append(r.s.adjustments, adj)
	return nil
}

func (r memInventory) MarkOrderApplied(ctx context.Context, orderNumber string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.processed[orderNumber] {
		return false, nil
	}
	r.s.processed[orderNumber] = true
	return true, nil
}

var (
	_ repo.TransactionManager = (*memStore)(nil)
	_ repo.TxRepos            = (*memStore)(nil)
)
