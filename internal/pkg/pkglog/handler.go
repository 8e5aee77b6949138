package pkglog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/musibs/quickpay/internal/pkg/pkgmask"
	"github.com/musibs/quickpay/internal/pkg/pkgtxctx"
)

// attrLoggerName is the reserved attribute key carrying the logger name. It is
// lifted into the log.logger field instead of becoming a label.
const attrLoggerName = "logger"

// ServiceInfo identifies the emitting service in every record.
type ServiceInfo struct {
	Name        string
	Version     string
	Environment string
}

// Options configures the Handler.
type Options struct {
	// Level is the minimum level to emit. Defaults to slog.LevelInfo.
	Level slog.Leveler
	// Service identity stamped on every record. Empty fields fall back to
	// "quickpay-service" / "unknown".
	Service ServiceInfo
	// Masker sanitizes label values. Defaults to pkgmask.Default().
	Masker *pkgmask.Engine
	// Writer receives the NDJSON stream. Defaults to os.Stdout.
	Writer io.Writer
}

// Handler is a slog.Handler that writes one JSON object per record with a
// fixed, append-only field order:
//
//	@timestamp, host, process, log, service, correlation, user, message, labels
//
// The correlation, user, and labels groups are present as a whole or absent as
// a whole, never partially filled.
type Handler struct {
	opts   Options
	mu     *sync.Mutex
	out    io.Writer
	attrs  []slog.Attr
	groups []string
}

// NewHandler builds a Handler, filling unset options with defaults.
func NewHandler(opts Options) *Handler {
	if opts.Level == nil {
		opts.Level = slog.LevelInfo
	}
	if opts.Masker == nil {
		opts.Masker = pkgmask.Default()
	}
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	if opts.Service.Name == "" {
		opts.Service.Name = "quickpay-service"
	}
	if opts.Service.Version == "" {
		opts.Service.Version = "unknown"
	}
	if opts.Service.Environment == "" {
		opts.Service.Environment = "unknown"
	}

	return &Handler{
		opts: opts,
		mu:   &sync.Mutex{},
		out:  opts.Writer,
	}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

// Handle assembles and writes one record. A failure inside assembly must not
// reach the application code issuing the log call, so any panic degrades to a
// best-effort plain-text line.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	defer func() {
		if rvr := recover(); rvr != nil {
			h.writeFallback(r, rvr)
		}
	}()

	buf := &bytes.Buffer{}
	h.assemble(buf, ctx, r)

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(buf.Bytes())
	return err
}

func (h *Handler) assemble(buf *bytes.Buffer, ctx context.Context, r slog.Record) {
	meta := pkgtxctx.Metadata(ctx)

	loggerName := h.opts.Service.Name
	labels := make(map[string]string)

	for key, value := range meta {
		if strings.HasPrefix(key, pkgtxctx.MetaAnnotationPrefix) {
			name := strings.TrimPrefix(key, pkgtxctx.MetaAnnotationPrefix)
			labels[name] = h.maskLabel(name, value)
		}
	}

	collect := func(a slog.Attr) {
		if a.Equal(slog.Attr{}) {
			return
		}
		if a.Key == attrLoggerName && len(h.groups) == 0 {
			loggerName = a.Value.String()
			return
		}
		key := a.Key
		if len(h.groups) > 0 {
			key = strings.Join(h.groups, ".") + "." + key
		}
		labels[key] = h.maskLabel(key, a.Value.String())
	}

	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		collect(a)
		return true
	})

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	hostname, hostIP := hostIdentity()

	buf.WriteByte('{')
	writeStringField(buf, "@timestamp", ts.UTC().Format(time.RFC3339Nano), true)

	buf.WriteString(`,"host":{`)
	writeStringField(buf, "hostname", hostname, true)
	writeStringField(buf, "ip", hostIP, false)
	buf.WriteByte('}')

	buf.WriteString(`,"process":{"pid":`)
	buf.WriteString(strconv.Itoa(os.Getpid()))
	buf.WriteString(`,"thread":{`)
	writeStringField(buf, "name", goroutineName(), true)
	buf.WriteString(`}}`)

	buf.WriteString(`,"log":{`)
	writeStringField(buf, "level", r.Level.String(), true)
	writeStringField(buf, "logger", loggerName, false)
	buf.WriteByte('}')

	buf.WriteString(`,"service":{`)
	writeStringField(buf, "name", h.opts.Service.Name, true)
	writeStringField(buf, "version", h.opts.Service.Version, false)
	writeStringField(buf, "environment", h.opts.Service.Environment, false)
	buf.WriteByte('}')

	if id, ok := meta[pkgtxctx.MetaCorrelationID]; ok && id != "" {
		buf.WriteString(`,"correlation":{`)
		writeStringField(buf, "id", id, true)
		buf.WriteByte('}')
	}

	if id, ok := meta[pkgtxctx.MetaUserID]; ok && id != "" {
		buf.WriteString(`,"user":{`)
		writeStringField(buf, "id", id, true)
		buf.WriteByte('}')
	}

	writeStringField(buf, "message", r.Message, false)

	if len(labels) > 0 {
		keys := make([]string, 0, len(labels))
		for k := range labels {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		buf.WriteString(`,"labels":{`)
		for i, k := range keys {
			writeStringField(buf, k, labels[k], i == 0)
		}
		buf.WriteByte('}')
	}

	buf.WriteString("}\n")
}

func (h *Handler) maskLabel(key, value string) string {
	masker := h.opts.Masker
	if !masker.Enabled() {
		return value
	}
	if masker.Classify(key) || masker.Classify(value) {
		return masker.Mask(value)
	}
	return value
}

// writeFallback emits a plain-text line when structured assembly blew up.
func (h *Handler) writeFallback(r slog.Record, reason any) {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	//nolint:errcheck // best effort, nothing left to degrade to
	fmt.Fprintf(h.out, "%s %s %s (log record degraded: %v)\n",
		ts.UTC().Format(time.RFC3339Nano), r.Level.String(), r.Message, reason)
}

// writeStringField appends "key":"escaped-value" to buf, with a leading comma
// unless first. json.Marshal on a string cannot fail.
func writeStringField(buf *bytes.Buffer, key, value string, first bool) {
	if !first {
		buf.WriteByte(',')
	}
	k, _ := json.Marshal(key)
	v, _ := json.Marshal(value)
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
}

// goroutineName derives a stable per-goroutine name from the runtime stack
// header ("goroutine 12 [running]: ..."). Goroutines have no real names, but
// the schema wants a thread identity and this one is greppable.
func goroutineName() string {
	var buf [32]byte
	n := runtime.Stack(buf[:], false)
	fields := strings.Fields(string(buf[:n]))
	if len(fields) >= 2 {
		return "goroutine-" + fields[1]
	}
	return "goroutine-0"
}
