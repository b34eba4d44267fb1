package store

import (
	"sync"

	"github.com/quantgate/binance-gateway/pkg/schema"
)

// ContractStore holds the trading rules loaded from the exchange at connect
// time. It is owned by the gateway instance, not shared process-wide, so
// connection lifecycles stay independent.
type ContractStore struct {
	mu        sync.RWMutex
	contracts map[string]schema.Contract
}

func NewContractStore() *ContractStore {
	return &ContractStore{contracts: make(map[string]schema.Contract)}
}

// Load replaces the stored contract set.
func (s *ContractStore) Load(contracts []schema.Contract) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contracts = make(map[string]schema.Contract, len(contracts))
	for _, c := range contracts {
		s.contracts[c.Symbol] = c
	}
}

// Get returns the contract for a symbol.
func (s *ContractStore) Get(symbol string) (schema.Contract, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contracts[symbol]
	return c, ok
}

// Has reports whether the symbol is tradeable.
func (s *ContractStore) Has(symbol string) bool {
	_, ok := s.Get(symbol)
	return ok
}

// Len returns the number of stored contracts.
func (s *ContractStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contracts)
}
