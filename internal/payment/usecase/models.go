package usecase

import "github.com/musibs/quickpay/internal/payment/entity"

type ProcessInput struct {
	Amount      int64
	Currency    string
	Method      entity.PaymentMethod
	Description string
}

type ProcessResult struct {
	TransactionID string
	Reference     string
	Status        entity.PaymentStatus
	Message       string
	Amount        int64
	Currency      string
	CreatedAt     int64
}
