package store

import (
	"context"
	"sync"

	"github.com/musibs/quickpay/internal/payment/entity"
	"github.com/musibs/quickpay/internal/pkg/pkgerror"
)

// InMemoryStore keeps processed payments keyed by transaction ID. It exists
// for local runs and tests; a durable store would implement the same usecase
// interface.
type InMemoryStore struct {
	mu       sync.RWMutex
	payments map[string]entity.Payment
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		payments: make(map[string]entity.Payment),
	}
}

func (s *InMemoryStore) Create(ctx context.Context, p entity.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.payments[p.TransactionID]; exists {
		return pkgerror.NewBusiness("payment already exists", pkgerror.CodeConflict)
	}

	s.payments[p.TransactionID] = p

	return nil
}

func (s *InMemoryStore) Get(ctx context.Context, transactionID string) (entity.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.payments[transactionID]
	if !exists {
		return entity.Payment{}, pkgerror.NewNotFound("payment not found")
	}

	return p, nil
}
