package pkgtxctx

import "context"

// Metadata keys projected by Bind for the log-record assembler.
const (
	MetaCorrelationID    = "correlation.id"
	MetaUserID           = "user.id"
	MetaServiceID        = "service.id"
	MetaAnnotationPrefix = "ctx."
)

type bindingContextKey struct{}

type binding struct {
	txn      Context
	metadata map[string]string
}

// Bind attaches txn to the returned context, replacing any previous binding.
// The transaction's identifying fields are projected once into an ambient
// metadata map carried alongside; log calls made with the returned context
// observe that metadata until the context goes out of scope or Clear is used.
func Bind(ctx context.Context, txn Context) context.Context {
	metadata := make(map[string]string, 3+len(txn.annotations))
	metadata[MetaCorrelationID] = txn.correlationID
	metadata[MetaServiceID] = txn.serviceID
	if txn.userID != "" {
		metadata[MetaUserID] = txn.userID
	}
	for k, v := range txn.annotations {
		metadata[MetaAnnotationPrefix+k] = v
	}

	return context.WithValue(ctx, bindingContextKey{}, &binding{txn: txn, metadata: metadata})
}

// Current returns the transaction bound to ctx, if any.
func Current(ctx context.Context) (Context, bool) {
	b, ok := ctx.Value(bindingContextKey{}).(*binding)
	if !ok || b == nil {
		return Context{}, false
	}
	return b.txn, true
}

// Clear returns a context without a transaction binding or projected
// metadata. Clearing an unbound context is a no-op.
func Clear(ctx context.Context) context.Context {
	if _, ok := Current(ctx); !ok {
		return ctx
	}
	return context.WithValue(ctx, bindingContextKey{}, (*binding)(nil))
}

// RunScoped runs body with txn bound. The caller's own context is untouched,
// so the previous binding is observed again after RunScoped returns on every
// exit path, including a panic inside body. This is the supported way to nest
// transaction scopes.
func RunScoped(ctx context.Context, txn Context, body func(ctx context.Context) error) error {
	return body(Bind(ctx, txn))
}

// Transfer copies the binding of from onto base. It is meant for background
// work that must outlive the request: derive from a long-lived base context
// while keeping the spawning request's correlation.
func Transfer(base, from context.Context) context.Context {
	txn, ok := Current(from)
	if !ok {
		return base
	}
	return Bind(base, txn)
}

// Metadata returns the ambient metadata projected by Bind, or nil when ctx is
// unbound. The returned map is shared and must not be modified.
func Metadata(ctx context.Context) map[string]string {
	b, ok := ctx.Value(bindingContextKey{}).(*binding)
	if !ok || b == nil {
		return nil
	}
	return b.metadata
}

// CorrelationID returns the bound correlation ID, or "" when ctx is unbound.
func CorrelationID(ctx context.Context) string {
	txn, ok := Current(ctx)
	if !ok {
		return ""
	}
	return txn.correlationID
}
