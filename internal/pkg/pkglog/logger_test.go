package pkglog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/musibs/quickpay/internal/pkg/pkgmask"
	"github.com/musibs/quickpay/internal/pkg/pkgtxctx"
)

func initTestLogging(t *testing.T) *bytes.Buffer {
	t.Helper()

	buf := &bytes.Buffer{}
	prev := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(prev)
		activeMasker.Store(pkgmask.Default())
	})

	InitLogging(Options{
		Level:  slog.LevelDebug,
		Writer: buf,
	})
	return buf
}

func TestLoggerInterpolation(t *testing.T) {
	buf := initTestLogging(t)

	NewLogger("payment").Info(context.Background(), "payment {} processed: {} {}", "txn_1_a", 100, "USD")

	m := decodeLine(t, buf)
	if m["message"] != "payment txn_1_a processed: 100 USD" {
		t.Fatalf("unexpected message: %v", m["message"])
	}

	logGroup := m["log"].(map[string]any)
	if logGroup["logger"] != "payment" {
		t.Fatalf("unexpected logger name: %v", logGroup["logger"])
	}
}

func TestLoggerInterpolationLeftoverAndSurplus(t *testing.T) {
	buf := initTestLogging(t)
	logger := NewLogger("payment")

	logger.Info(context.Background(), "a {} b {}", "one")
	if m := decodeLine(t, buf); m["message"] != "a one b {}" {
		t.Fatalf("leftover placeholder handling wrong: %v", m["message"])
	}

	buf.Reset()
	logger.Info(context.Background(), "a {}", "one", "two")
	if m := decodeLine(t, buf); m["message"] != "a one" {
		t.Fatalf("surplus argument handling wrong: %v", m["message"])
	}

	buf.Reset()
	logger.Info(context.Background(), "no placeholders", "ignored")
	if m := decodeLine(t, buf); m["message"] != "no placeholders" {
		t.Fatalf("placeholder-free message altered: %v", m["message"])
	}
}

func TestLoggerMasksSensitiveArguments(t *testing.T) {
	buf := initTestLogging(t)

	NewLogger("auth").Warn(context.Background(), "rejected {}", "secrettoken123")

	m := decodeLine(t, buf)
	if m["message"] != "rejected se**********23" {
		t.Fatalf("sensitive argument not masked: %v", m["message"])
	}
}

func TestLoggerNilArgumentBecomesMarker(t *testing.T) {
	buf := initTestLogging(t)

	NewLogger("payment").Info(context.Background(), "value {}", nil)

	if m := decodeLine(t, buf); m["message"] != "value ***" {
		t.Fatalf("nil argument handling wrong: %v", m["message"])
	}
}

func TestLoggerCarriesBoundCorrelation(t *testing.T) {
	buf := initTestLogging(t)

	txn, err := pkgtxctx.Of("txn_1700000000000_abc123", "svc")
	if err != nil {
		t.Fatalf("of: %v", err)
	}
	ctx := pkgtxctx.Bind(context.Background(), txn)

	NewLogger("payment").Info(ctx, "processed order-9")

	m := decodeLine(t, buf)
	correlation, ok := m["correlation"].(map[string]any)
	if !ok || correlation["id"] != "txn_1700000000000_abc123" {
		t.Fatalf("record missing bound correlation: %v", m["correlation"])
	}
}

func TestLoggerLevels(t *testing.T) {
	buf := initTestLogging(t)
	logger := NewLogger("payment")
	ctx := context.Background()

	for _, c := range []struct {
		log  func(context.Context, string, ...any)
		want string
	}{
		{logger.Debug, "DEBUG"},
		{logger.Info, "INFO"},
		{logger.Warn, "WARN"},
		{logger.Error, "ERROR"},
	} {
		buf.Reset()
		c.log(ctx, "hi")
		logGroup := decodeLine(t, buf)["log"].(map[string]any)
		if logGroup["level"] != c.want {
			t.Fatalf("expected level %s, got %v", c.want, logGroup["level"])
		}
	}
}
