package entity

type Payment struct {
	TransactionID string
	Reference     string
	Amount        int64 // minor units
	Currency      string
	Method        PaymentMethod
	Status        PaymentStatus
	Description   string
	CreatedAt     int64
}
