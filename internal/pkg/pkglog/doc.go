// Package pkglog emits structured log records in the quickpay schema.
//
// It is built around slog: InitLogging installs a Handler that renders every
// record as one newline-delimited JSON object with a fixed field order
// (@timestamp, host, process, log, service, correlation, user, message,
// labels). The handler reads the transaction metadata bound by pkgtxctx, runs
// label values and message arguments through the PII masking engine, and
// degrades to a plain-text line instead of failing the caller when a record
// cannot be serialized.
package pkglog
