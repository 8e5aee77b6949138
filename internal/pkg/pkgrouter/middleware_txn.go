package pkgrouter

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/musibs/quickpay/internal/pkg/pkgtxctx"
)

// Generator generates a unique string (used for transaction/correlation IDs).
type Generator interface {
	Generate() string
}

// Inbound correlation carriers, checked in this priority order. The primary
// header name is configurable; the two fallbacks are fixed well-known names.
const (
	HeaderTransactionID = "X-Transaction-ID"
	HeaderCorrelationID = "X-Correlation-ID"
	HeaderTraceID       = "X-Trace-ID"
)

// CorrelationOptions configures the transaction-context middleware.
type CorrelationOptions struct {
	// Header is the primary inbound carrier, also echoed outbound.
	// Defaults to HeaderTransactionID.
	Header string
	// ServiceID stamps every bound transaction context.
	ServiceID string
	// GenerateIfMissing synthesizes an ID when no carrier matched. When false
	// and no carrier matched, the request proceeds without a binding.
	GenerateIfMissing bool
	// AddToResponse echoes the transaction ID in the response carrier.
	AddToResponse bool
}

func normalizeTxnID(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if strings.ContainsAny(v, "\r\n") {
		return ""
	}
	const maxLen = 128
	if len(v) > maxLen {
		v = v[:maxLen]
	}
	return v
}

// middlewareTransactionContext resolves a transaction context per request and
// binds it for the request's lifetime. The binding rides on the request
// context, so it is released on every exit path (handler return, panic,
// client disconnect) and can never bleed into the next request.
func middlewareTransactionContext(gen Generator, opts CorrelationOptions) Middleware {
	header := opts.Header
	if header == "" {
		header = HeaderTransactionID
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := normalizeTxnID(r.Header.Get(header))
			if id == "" {
				id = normalizeTxnID(r.Header.Get(HeaderCorrelationID))
			}
			if id == "" {
				id = normalizeTxnID(r.Header.Get(HeaderTraceID))
			}
			if id == "" && opts.GenerateIfMissing && gen != nil {
				id = gen.Generate()
			}

			if id == "" {
				next.ServeHTTP(w, r)
				return
			}

			txn, err := pkgtxctx.Of(id, opts.ServiceID)
			if err != nil {
				slog.WarnContext(r.Context(), "skipping transaction binding", "because", err)
				next.ServeHTTP(w, r)
				return
			}

			if opts.AddToResponse {
				w.Header().Set(header, id)
			}

			next.ServeHTTP(w, r.WithContext(pkgtxctx.Bind(r.Context(), txn)))
		})
	}
}
