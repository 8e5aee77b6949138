package inbound

import (
	"context"

	"github.com/musibs/quickpay/internal/payment/entity"
	"github.com/musibs/quickpay/internal/payment/usecase"
	"github.com/musibs/quickpay/internal/pkg/pkgrouter"
)

type uc interface {
	ProcessPayment(ctx context.Context, in usecase.ProcessInput) (usecase.ProcessResult, error)
	GetPayment(ctx context.Context, transactionID string) (entity.Payment, error)
}

func RegisterHTTPEndpoint(r *pkgrouter.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/payments", end.CreatePayment)
	r.GET("/api/payments/:transaction_id", end.GetPayment)
}
