package pkgtxctx

import (
	"strings"
	"testing"

	"github.com/musibs/quickpay/internal/pkg/pkgtxid"
)

func TestNewGeneratesCorrelationID(t *testing.T) {
	txn, err := New("quickpay-service")
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if !pkgtxid.IsValidFormat(txn.CorrelationID()) {
		t.Fatalf("correlation id is not a transaction id: %q", txn.CorrelationID())
	}
	if txn.ServiceID() != "quickpay-service" {
		t.Fatalf("unexpected service id: %q", txn.ServiceID())
	}
	if txn.CreatedAt().IsZero() {
		t.Fatal("created at is zero")
	}
	if _, ok := txn.UserID(); ok {
		t.Fatal("fresh context must not carry a user")
	}
}

func TestOfValidatesBlanks(t *testing.T) {
	if _, err := Of("  ", "svc"); err != ErrBlankCorrelationID {
		t.Fatalf("expected ErrBlankCorrelationID, got %v", err)
	}
	if _, err := Of("txn_1_a", ""); err != ErrBlankServiceID {
		t.Fatalf("expected ErrBlankServiceID, got %v", err)
	}
	if _, err := New("\t"); err != ErrBlankServiceID {
		t.Fatalf("expected ErrBlankServiceID, got %v", err)
	}
}

func TestWithUserReturnsCopy(t *testing.T) {
	base, err := Of("txn_1_a", "svc")
	if err != nil {
		t.Fatalf("of: %v", err)
	}

	derived := base.WithUser("user-42")

	if _, ok := base.UserID(); ok {
		t.Fatal("WithUser mutated the receiver")
	}
	userID, ok := derived.UserID()
	if !ok || userID != "user-42" {
		t.Fatalf("unexpected derived user: %q ok=%v", userID, ok)
	}
	if derived.CorrelationID() != base.CorrelationID() {
		t.Fatal("derived context lost its correlation id")
	}
}

func TestWithAnnotation(t *testing.T) {
	base, err := Of("txn_1_a", "svc")
	if err != nil {
		t.Fatalf("of: %v", err)
	}

	first, err := base.WithAnnotation("order", "order-9")
	if err != nil {
		t.Fatalf("with annotation: %v", err)
	}
	second, err := first.WithAnnotation("channel", "web")
	if err != nil {
		t.Fatalf("with annotation: %v", err)
	}

	if _, ok := base.Annotation("order"); ok {
		t.Fatal("WithAnnotation mutated the receiver")
	}
	if _, ok := first.Annotation("channel"); ok {
		t.Fatal("WithAnnotation mutated an earlier derivation")
	}

	v, ok := second.Annotation("order")
	if !ok || v != "order-9" {
		t.Fatalf("unexpected annotation: %q ok=%v", v, ok)
	}
	if got := second.Annotations(); len(got) != 2 {
		t.Fatalf("expected 2 annotations, got %d", len(got))
	}

	if _, err := base.WithAnnotation("  ", "v"); err != ErrBlankAnnotationKey {
		t.Fatalf("expected ErrBlankAnnotationKey, got %v", err)
	}
}

func TestAnnotationsReturnsDefensiveCopy(t *testing.T) {
	txn, err := Of("txn_1_a", "svc")
	if err != nil {
		t.Fatalf("of: %v", err)
	}
	txn, err = txn.WithAnnotation("order", "order-9")
	if err != nil {
		t.Fatalf("with annotation: %v", err)
	}

	copied := txn.Annotations()
	copied["order"] = "tampered"
	copied["injected"] = "x"

	v, _ := txn.Annotation("order")
	if v != "order-9" {
		t.Fatalf("annotations copy leaked back into the context: %q", v)
	}
	if _, ok := txn.Annotation("injected"); ok {
		t.Fatal("annotations copy leaked a new key into the context")
	}
}

func TestOverwriteAnnotation(t *testing.T) {
	txn, err := Of("txn_1_a", "svc")
	if err != nil {
		t.Fatalf("of: %v", err)
	}

	txn, _ = txn.WithAnnotation("retry", "1")
	txn, _ = txn.WithAnnotation("retry", "2")

	v, _ := txn.Annotation("retry")
	if v != "2" {
		t.Fatalf("expected latest annotation value, got %q", v)
	}
	if strings.Count(strings.Join(keys(txn.Annotations()), ","), "retry") != 1 {
		t.Fatal("annotation key duplicated")
	}
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
