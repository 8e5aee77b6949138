package inbound

import (
	"net/http"

	"github.com/musibs/quickpay/internal/payment/entity"
	"github.com/musibs/quickpay/internal/payment/usecase"
)

type PaymentRequest struct {
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Method      string `json:"method"`
	Description string `json:"description"`
	UserID      string `json:"user_id"`
}

type PaymentResponse struct {
	TransactionID string               `json:"transaction_id"`
	Reference     string               `json:"reference"`
	Status        entity.PaymentStatus `json:"status"`
	Amount        int64                `json:"amount"`
	Currency      string               `json:"currency"`
	CreatedAt     int64                `json:"created_at"`
}

type CreatePaymentResponse struct {
	PaymentResponse
	message string
}

func (r CreatePaymentResponse) StatusCode() int {
	if r.Status == entity.PaymentStatusDeclined {
		return http.StatusUnprocessableEntity
	}
	return http.StatusCreated
}

func (r CreatePaymentResponse) Message() string {
	return r.message
}

func toPaymentResponse(res usecase.ProcessResult) CreatePaymentResponse {
	return CreatePaymentResponse{
		PaymentResponse: PaymentResponse{
			TransactionID: res.TransactionID,
			Reference:     res.Reference,
			Status:        res.Status,
			Amount:        res.Amount,
			Currency:      res.Currency,
			CreatedAt:     res.CreatedAt,
		},
		message: res.Message,
	}
}
