package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/musibs/quickpay/internal/payment/entity"
	"github.com/musibs/quickpay/internal/pkg/pkgerror"
	"github.com/musibs/quickpay/internal/pkg/pkglog"
	"github.com/musibs/quickpay/internal/pkg/pkgtxctx"
	"github.com/musibs/quickpay/internal/pkg/pkgtxid"
	"github.com/musibs/quickpay/internal/pkg/pkguid"
)

type Store interface {
	Create(ctx context.Context, p entity.Payment) error
	Get(ctx context.Context, transactionID string) (entity.Payment, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event entity.PaymentEvent) error
}

type Runner interface {
	Go(ctx context.Context, f func(ctx context.Context) error)
}

type Clock interface {
	Now() time.Time
}

type Dependency struct {
	Store     Store
	Events    EventPublisher
	Runner    Runner
	Clock     Clock
	Reference pkguid.StringID
	Sequence  pkguid.NumberID
	RootCtx   context.Context
	MaxAmount int64
	Provider  string
}

type Usecase struct {
	store     Store
	events    EventPublisher
	runner    Runner
	clock     Clock
	reference pkguid.StringID
	sequence  pkguid.NumberID
	rootCtx   context.Context
	maxAmount int64
	provider  string
	logger    *pkglog.Logger
}

func New(dep Dependency) *Usecase {
	root := dep.RootCtx
	if root == nil {
		root = context.Background()
	}

	clock := dep.Clock
	if clock == nil {
		clock = realClock{}
	}

	maxAmount := dep.MaxAmount
	if maxAmount <= 0 {
		maxAmount = 1_000_000
	}

	provider := dep.Provider
	if provider == "" {
		provider = "sample-provider"
	}

	return &Usecase{
		store:     dep.Store,
		events:    dep.Events,
		runner:    dep.Runner,
		clock:     clock,
		reference: dep.Reference,
		sequence:  dep.Sequence,
		rootCtx:   root,
		maxAmount: maxAmount,
		provider:  provider,
		logger:    pkglog.NewLogger("payment"),
	}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// ProcessPayment runs one payment through validation, the provider decision,
// storage, and audit-event publication. The transaction ID is the bound
// correlation ID when the request carried one, so a caller can look up the
// payment with the same ID it finds in its own logs.
func (u *Usecase) ProcessPayment(ctx context.Context, in ProcessInput) (ProcessResult, error) {
	if u.store == nil || u.runner == nil || u.reference == nil {
		return ProcessResult{}, pkgerror.NewServer(errors.New("missing dependency"))
	}

	if err := validate(in); err != nil {
		return ProcessResult{}, err
	}

	txnID := pkgtxctx.CorrelationID(ctx)
	if txnID == "" {
		txnID = pkgtxid.Generate()
	}

	start := u.clock.Now()
	payment := entity.Payment{
		TransactionID: txnID,
		Reference:     u.reference.Generate(),
		Amount:        in.Amount,
		Currency:      strings.ToUpper(in.Currency),
		Method:        in.Method,
		Status:        entity.PaymentStatusSuccess,
		Description:   in.Description,
		CreatedAt:     start.UnixMilli(),
	}

	reason := ""
	if in.Amount > u.maxAmount {
		payment.Status = entity.PaymentStatusDeclined
		reason = "amount exceeds processing limit"
	}

	if err := u.store.Create(ctx, payment); err != nil {
		u.publishEvent(ctx, payment, entity.PaymentStatusFailed, "storage failure", start)
		return ProcessResult{}, err
	}

	u.publishEvent(ctx, payment, payment.Status, reason, start)

	amount := strconv.FormatInt(payment.Amount, 10)
	if payment.Status == entity.PaymentStatusSuccess {
		u.logger.Info(ctx, "payment {} processed: {} {}", txnID, amount, payment.Currency)
	} else {
		u.logger.Warn(ctx, "payment {} declined: {}", txnID, reason)
	}

	message := "payment processed successfully"
	if payment.Status != entity.PaymentStatusSuccess {
		message = "payment declined: " + reason
	}

	return ProcessResult{
		TransactionID: payment.TransactionID,
		Reference:     payment.Reference,
		Status:        payment.Status,
		Message:       message,
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		CreatedAt:     payment.CreatedAt,
	}, nil
}

// GetPayment looks up a processed payment by its transaction ID.
func (u *Usecase) GetPayment(ctx context.Context, transactionID string) (entity.Payment, error) {
	if strings.TrimSpace(transactionID) == "" {
		return entity.Payment{}, pkgerror.NewInvalidInput(errors.New("transaction_id is required"))
	}

	return u.store.Get(ctx, transactionID)
}

// publishEvent hands the audit event to the bus on a managed goroutine. The
// background context keeps the request's transaction binding via Transfer so
// the audit record stays correlated after the request completes.
func (u *Usecase) publishEvent(ctx context.Context, payment entity.Payment, status entity.PaymentStatus, reason string, start time.Time) {
	if u.events == nil {
		return
	}

	var seq int64
	if u.sequence != nil {
		seq = u.sequence.Generate()
	}

	event := entity.PaymentEvent{
		SequenceID:    seq,
		CorrelationID: pkgtxctx.CorrelationID(ctx),
		TransactionID: payment.TransactionID,
		Status:        status,
		Provider:      u.provider,
		Currency:      payment.Currency,
		Amount:        payment.Amount,
		Reason:        reason,
		LatencyMS:     u.clock.Now().Sub(start).Milliseconds(),
		OccurredAt:    u.clock.Now().UnixMilli(),
	}

	u.runner.Go(pkgtxctx.Transfer(u.rootCtx, ctx), func(ctx context.Context) error {
		return u.events.Publish(ctx, event)
	})
}

func validate(in ProcessInput) error {
	if in.Amount <= 0 {
		return pkgerror.NewInvalidInput(errors.New("amount must be positive"))
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if len(currency) != 3 {
		return pkgerror.NewInvalidInput(errors.New("currency must be a 3-letter code"))
	}
	for _, r := range currency {
		if r < 'A' || r > 'Z' {
			return pkgerror.NewInvalidInput(errors.New("currency must be a 3-letter code"))
		}
	}

	if !in.Method.Known() {
		return pkgerror.NewInvalidInput(errors.New("unsupported payment method"))
	}

	return nil
}
