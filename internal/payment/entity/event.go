package entity

// PaymentEvent is the audit event emitted for every processed payment.
// SequenceID makes redelivery detectable; CorrelationID links the event back
// to the request that produced it.
type PaymentEvent struct {
	SequenceID    int64
	CorrelationID string
	TransactionID string
	Status        PaymentStatus
	Provider      string
	Currency      string
	Amount        int64
	Reason        string
	LatencyMS     int64
	OccurredAt    int64
}
