package inbound

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/musibs/quickpay/internal/payment/entity"
	"github.com/musibs/quickpay/internal/payment/event"
	"github.com/musibs/quickpay/internal/payment/store"
	"github.com/musibs/quickpay/internal/payment/usecase"
	"github.com/musibs/quickpay/internal/pkg/pkgmask"
	"github.com/musibs/quickpay/internal/pkg/pkgrouter"
	"github.com/musibs/quickpay/internal/pkg/pkgroutine"
	"github.com/musibs/quickpay/internal/pkg/pkgtxid"
	"github.com/musibs/quickpay/internal/pkg/pkguid"
)

type envelope[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type fixture struct {
	router *pkgrouter.Router
	runner *pkgroutine.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	runner := pkgroutine.NewManager(10)
	storage := store.NewInMemoryStore()
	bus := event.NewBus(10)

	consumer := event.NewAuditConsumer(bus, event.NewAuditLogger("quickpay-service"), event.ConsumerConfig{
		Workers:     1,
		MaxRetries:  1,
		BaseBackoff: time.Millisecond,
	})
	consumer.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := consumer.Stop(ctx); err != nil {
			t.Errorf("stop consumer: %v", err)
		}
	})

	uc := usecase.New(usecase.Dependency{
		Store:     storage,
		Events:    bus,
		Runner:    runner,
		Reference: pkguid.NewUUID(),
		RootCtx:   context.Background(),
		MaxAmount: 1000,
		Provider:  "test-provider",
	})

	router := pkgrouter.NewRouter(pkgtxid.New(), pkgrouter.CorrelationOptions{
		ServiceID:         "quickpay-service",
		GenerateIfMissing: true,
		AddToResponse:     true,
	}, pkgmask.Default())
	RegisterHTTPEndpoint(router, uc)

	return &fixture{router: router, runner: runner}
}

func (f *fixture) createPayment(t *testing.T, body string, headers map[string]string) (*httptest.ResponseRecorder, envelope[PaymentResponse]) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/payments", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var env envelope[PaymentResponse]
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v\n%s", err, rec.Body.String())
	}
	return rec, env
}

func TestCreatePaymentEchoesInboundTransactionID(t *testing.T) {
	f := newFixture(t)

	rec, env := f.createPayment(t,
		`{"amount":100,"currency":"USD","method":"CARD","description":"order-9"}`,
		map[string]string{pkgrouter.HeaderTransactionID: "txn_1700000000000_abc123"},
	)

	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status: %d\n%s", rec.Code, rec.Body.String())
	}
	if env.Data.TransactionID != "txn_1700000000000_abc123" {
		t.Fatalf("transaction id does not follow the inbound header: %q", env.Data.TransactionID)
	}
	if got := rec.Header().Get(pkgrouter.HeaderTransactionID); got != "txn_1700000000000_abc123" {
		t.Fatalf("response header missing inbound id: %q", got)
	}
	if env.Data.Status != entity.PaymentStatusSuccess {
		t.Fatalf("unexpected status: %s", env.Data.Status)
	}
	if env.Data.Reference == "" {
		t.Fatal("reference is empty")
	}

	if err := f.runner.Wait(); err != nil {
		t.Fatalf("runner wait: %v", err)
	}
}

func TestCreatePaymentGeneratesDistinctIDs(t *testing.T) {
	f := newFixture(t)

	_, first := f.createPayment(t, `{"amount":100,"currency":"USD","method":"CARD"}`, nil)
	_, second := f.createPayment(t, `{"amount":100,"currency":"USD","method":"CARD"}`, nil)

	if !pkgtxid.IsValidFormat(first.Data.TransactionID) {
		t.Fatalf("expected generated transaction id, got %q", first.Data.TransactionID)
	}
	if first.Data.TransactionID == second.Data.TransactionID {
		t.Fatalf("two requests share one transaction id: %q", first.Data.TransactionID)
	}
}

func TestCreatePaymentFallbackHeaders(t *testing.T) {
	f := newFixture(t)

	_, env := f.createPayment(t,
		`{"amount":100,"currency":"USD","method":"CARD"}`,
		map[string]string{pkgrouter.HeaderCorrelationID: "txn_2_corr"},
	)
	if env.Data.TransactionID != "txn_2_corr" {
		t.Fatalf("correlation header not honored: %q", env.Data.TransactionID)
	}

	_, env = f.createPayment(t,
		`{"amount":100,"currency":"USD","method":"CARD"}`,
		map[string]string{pkgrouter.HeaderTraceID: "txn_3_trace"},
	)
	if env.Data.TransactionID != "txn_3_trace" {
		t.Fatalf("trace header not honored: %q", env.Data.TransactionID)
	}
}

func TestCreatePaymentDeclined(t *testing.T) {
	f := newFixture(t)

	rec, env := f.createPayment(t, `{"amount":999999,"currency":"USD","method":"CARD"}`, nil)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if env.Data.Status != entity.PaymentStatusDeclined {
		t.Fatalf("unexpected payment status: %s", env.Data.Status)
	}
	if !strings.Contains(env.Message, "declined") {
		t.Fatalf("unexpected message: %q", env.Message)
	}
}

func TestCreatePaymentInvalidBody(t *testing.T) {
	f := newFixture(t)

	rec, _ := f.createPayment(t, `{not json`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	rec, _ = f.createPayment(t, `{"amount":-1,"currency":"USD","method":"CARD"}`, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestGetPaymentRoundTrip(t *testing.T) {
	f := newFixture(t)

	_, created := f.createPayment(t,
		`{"amount":100,"currency":"USD","method":"WALLET","user_id":"user-42"}`,
		map[string]string{pkgrouter.HeaderTransactionID: "txn_1700000000000_abc123"},
	)

	req := httptest.NewRequest(http.MethodGet, "/api/payments/"+created.Data.TransactionID, nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d\n%s", rec.Code, rec.Body.String())
	}

	var env envelope[PaymentResponse]
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if env.Data.TransactionID != created.Data.TransactionID {
		t.Fatalf("unexpected transaction id: %q", env.Data.TransactionID)
	}
	if env.Data.Amount != 100 || env.Data.Currency != "USD" {
		t.Fatalf("unexpected payment: %+v", env.Data)
	}
}

func TestGetPaymentNotFound(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/payments/txn_missing_x", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}
