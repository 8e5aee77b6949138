package pkglog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/musibs/quickpay/internal/pkg/pkgmask"
)

//nolint:gochecknoglobals // process-wide masker installed by InitLogging
var activeMasker atomic.Pointer[pkgmask.Engine]

//nolint:gochecknoinits // guarantees a usable masker before InitLogging runs
func init() {
	activeMasker.Store(pkgmask.Default())
}

// InitLogging installs the quickpay structured handler as the slog default.
// Call it once at process start, before anything logs.
func InitLogging(opts Options) {
	handler := NewHandler(opts)
	activeMasker.Store(handler.opts.Masker)
	slog.SetDefault(slog.New(handler))
}

// Logger is a named event logger. Messages use "{}" placeholders; positional
// arguments whose string form classifies as sensitive are masked before they
// are interpolated, so a secret never reaches the record in the clear.
type Logger struct {
	name string
}

// NewLogger returns a Logger that stamps name into the log.logger field.
func NewLogger(name string) *Logger {
	return &Logger{name: name}
}

// Debug logs at debug level.
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelDebug, msg, args)
}

// Info logs at info level.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelInfo, msg, args)
}

// Warn logs at warn level.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelWarn, msg, args)
}

// Error logs at error level.
func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelError, msg, args)
}

func (l *Logger) log(ctx context.Context, level slog.Level, msg string, args []any) {
	masker := activeMasker.Load()

	rendered := make([]string, len(args))
	for i, arg := range args {
		if arg == nil {
			rendered[i] = pkgmask.Marker
			continue
		}
		s := fmt.Sprint(arg)
		if masker.Enabled() && masker.Classify(s) {
			s = masker.Mask(s)
		}
		rendered[i] = s
	}

	slog.Default().LogAttrs(ctx, level, interpolate(msg, rendered),
		slog.String(attrLoggerName, l.name))
}

// interpolate substitutes "{}" placeholders left to right. Leftover
// placeholders stay in place and surplus arguments are dropped, mirroring the
// forgiving behavior callers expect from a logging facade.
func interpolate(msg string, args []string) string {
	if len(args) == 0 || !strings.Contains(msg, "{}") {
		return msg
	}

	var sb strings.Builder
	rest := msg
	for _, arg := range args {
		i := strings.Index(rest, "{}")
		if i < 0 {
			break
		}
		sb.WriteString(rest[:i])
		sb.WriteString(arg)
		rest = rest[i+2:]
	}
	sb.WriteString(rest)
	return sb.String()
}
