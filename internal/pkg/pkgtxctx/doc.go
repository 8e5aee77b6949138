// Package pkgtxctx holds the transaction context for one logical operation
// and propagates it through context.Context.
//
// A Context value is immutable: derivations (WithUser, WithAnnotation) return
// copies, so a bound value can be read concurrently without locking. Binding
// rides on context.Context, which means it follows the request or task it
// belongs to (including across goroutine hand-offs) and can never leak into a
// sibling request. Bind also projects the identifying fields into an ambient
// metadata map that the log handler reads when it assembles a record.
package pkgtxctx
