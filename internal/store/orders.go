package store

import (
	"sync"

	"github.com/quantgate/binance-gateway/pkg/schema"
)

// OrderStore is the gateway-owned order table (order_id -> Order). It is
// written only by the gateway's acknowledgment and execution-report paths and
// read by query operations, so writes funnel through a single lock while any
// number of readers share it.
type OrderStore struct {
	mu     sync.RWMutex
	orders map[string]schema.Order
}

func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[string]schema.Order)}
}

// Upsert inserts or updates an order. Orders already in a terminal state are
// never mutated; the update is discarded and false is returned.
func (s *OrderStore) Upsert(order schema.Order) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.orders[order.OrderID]; ok && existing.Status.IsTerminal() {
		return false
	}
	s.orders[order.OrderID] = order
	return true
}

// Get returns the order with the given exchange order id.
func (s *OrderStore) Get(orderID string) (schema.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[orderID]
	return order, ok
}

// GetByClientOrderID returns the order with the given client order id.
func (s *OrderStore) GetByClientOrderID(clientOrderID string) (schema.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, order := range s.orders {
		if order.ClientOrderID == clientOrderID {
			return order, true
		}
	}
	return schema.Order{}, false
}

// Snapshot returns a copy of all orders.
func (s *OrderStore) Snapshot() []schema.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]schema.Order, 0, len(s.orders))
	for _, order := range s.orders {
		out = append(out, order)
	}
	return out
}

// Len returns the number of tracked orders.
func (s *OrderStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}
