package store

import (
	"context"
	"errors"
	"testing"

	"github.com/musibs/quickpay/internal/payment/entity"
	"github.com/musibs/quickpay/internal/pkg/pkgerror"
)

func TestCreateAndGet(t *testing.T) {
	s := NewInMemoryStore()

	payment := entity.Payment{
		TransactionID: "txn_1_a",
		Reference:     "ref-1",
		Amount:        100,
		Currency:      "USD",
		Method:        entity.PaymentMethodCard,
		Status:        entity.PaymentStatusSuccess,
	}

	if err := s.Create(context.Background(), payment); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.Get(context.Background(), "txn_1_a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != payment {
		t.Fatalf("unexpected payment: %+v", got)
	}
}

func TestCreateConflict(t *testing.T) {
	s := NewInMemoryStore()

	payment := entity.Payment{TransactionID: "txn_1_a"}
	if err := s.Create(context.Background(), payment); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := s.Create(context.Background(), payment)
	var gerr *pkgerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != pkgerror.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestGetMissing(t *testing.T) {
	s := NewInMemoryStore()

	_, err := s.Get(context.Background(), "txn_missing")
	if !errors.Is(err, pkgerror.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
