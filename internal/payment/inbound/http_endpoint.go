package inbound

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/musibs/quickpay/internal/payment/entity"
	"github.com/musibs/quickpay/internal/payment/usecase"
	"github.com/musibs/quickpay/internal/pkg/pkgerror"
	"github.com/musibs/quickpay/internal/pkg/pkgrouter"
	"github.com/musibs/quickpay/internal/pkg/pkgtxctx"
)

const maxRequestBodyBytes = 1 << 20

type HTTPEndpoint struct {
	uc uc
}

func (h *HTTPEndpoint) CreatePayment(ctx context.Context, r *http.Request) (any, error) {
	var req PaymentRequest
	body := io.LimitReader(r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return nil, pkgerror.NewInvalidFormat()
	}

	// A caller-identified payment enriches the bound transaction with the
	// user, so every record downstream of here carries user.id.
	if req.UserID != "" {
		if txn, ok := pkgtxctx.Current(ctx); ok {
			ctx = pkgtxctx.Bind(ctx, txn.WithUser(req.UserID))
		}
	}

	result, err := h.uc.ProcessPayment(ctx, usecase.ProcessInput{
		Amount:      req.Amount,
		Currency:    req.Currency,
		Method:      entity.PaymentMethod(req.Method),
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}

	return toPaymentResponse(result), nil
}

func (h *HTTPEndpoint) GetPayment(ctx context.Context, r *http.Request) (any, error) {
	transactionID := pkgrouter.GetParam(ctx, "transaction_id")

	payment, err := h.uc.GetPayment(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	return PaymentResponse{
		TransactionID: payment.TransactionID,
		Reference:     payment.Reference,
		Status:        payment.Status,
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		CreatedAt:     payment.CreatedAt,
	}, nil
}
