package event

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/musibs/quickpay/internal/payment/entity"
	"github.com/musibs/quickpay/internal/pkg/pkgerror"
	"github.com/musibs/quickpay/internal/pkg/pkglog"
	"github.com/musibs/quickpay/internal/pkg/pkgtxctx"
)

type Handler interface {
	Handle(ctx context.Context, event entity.PaymentEvent) error
}

type ConsumerConfig struct {
	Workers     int
	MaxRetries  int
	BaseBackoff time.Duration
}

// AuditConsumer drains the payment event bus and hands each event to a
// handler, with bounded retries and at-most-once handling per sequence ID.
type AuditConsumer struct {
	bus         *Bus
	handler     Handler
	workers     int
	maxRetries  int
	baseBackoff time.Duration
	seen        sync.Map
	wg          sync.WaitGroup
}

func NewAuditConsumer(bus *Bus, handler Handler, cfg ConsumerConfig) *AuditConsumer {
	workers := cfg.Workers
	if workers < 1 {
		workers = 4
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	baseBackoff := cfg.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = 100 * time.Millisecond
	}

	return &AuditConsumer{
		bus:         bus,
		handler:     handler,
		workers:     workers,
		maxRetries:  maxRetries,
		baseBackoff: baseBackoff,
	}
}

func (c *AuditConsumer) Start() {
	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker()
	}
}

func (c *AuditConsumer) Stop(ctx context.Context) error {
	if c.bus != nil {
		c.bus.Close()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *AuditConsumer) worker() {
	defer c.wg.Done()

	for event := range c.bus.Subscribe() {
		c.processEvent(event)
	}
}

func (c *AuditConsumer) processEvent(event entity.PaymentEvent) {
	if c.handler == nil {
		return
	}

	if event.SequenceID != 0 {
		if _, loaded := c.seen.LoadOrStore(event.SequenceID, struct{}{}); loaded {
			slog.Info("skip duplicate payment event",
				"sequence_id", event.SequenceID, "transaction_id", event.TransactionID)
			return
		}
	}

	backoff := c.baseBackoff
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		err := c.handler.Handle(context.Background(), event)
		if err == nil {
			return
		}

		if attempt == c.maxRetries {
			slog.Error("failed to record payment audit event after retries",
				"sequence_id", event.SequenceID, "transaction_id", event.TransactionID, "error", err)
			return
		}

		if !sleepBackoff(backoff) {
			return
		}
		backoff *= 2
	}
}

func sleepBackoff(d time.Duration) bool {
	if d <= 0 {
		return false
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	<-timer.C
	return true
}

// AuditLogger writes one structured audit record per payment event. The
// record is bound to the originating request's correlation ID, so the audit
// trail and the request trail join up in the log store.
type AuditLogger struct {
	serviceID string
	logger    *pkglog.Logger
}

func NewAuditLogger(serviceID string) *AuditLogger {
	return &AuditLogger{
		serviceID: serviceID,
		logger:    pkglog.NewLogger("payment-audit"),
	}
}

func (a *AuditLogger) Handle(ctx context.Context, event entity.PaymentEvent) error {
	if event.TransactionID == "" {
		return pkgerror.NewValidation(errors.New("missing transaction id"))
	}

	if event.CorrelationID != "" {
		txn, err := pkgtxctx.Of(event.CorrelationID, a.serviceID)
		if err == nil {
			txn, err = txn.WithAnnotation("provider", event.Provider)
		}
		if err == nil {
			ctx = pkgtxctx.Bind(ctx, txn)
		}
	}

	amount := strconv.FormatInt(event.Amount, 10)
	switch event.Status {
	case entity.PaymentStatusSuccess:
		a.logger.Info(ctx, "payment {} settled: {} {} in {}ms",
			event.TransactionID, amount, event.Currency, event.LatencyMS)
	default:
		a.logger.Error(ctx, "payment {} not settled ({}): {}",
			event.TransactionID, string(event.Status), event.Reason)
	}

	return nil
}
