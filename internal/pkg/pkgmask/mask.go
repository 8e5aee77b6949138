package pkgmask

import "strings"

// Marker replaces values too short to partially reveal. It is also what
// callers should log for values that are absent entirely.
const Marker = "***"

//nolint:gochecknoglobals // read-only after init
var defaultSensitive = []string{
	"password", "token", "secret", "key", "credential", "authorization",
	"card", "account", "ssn", "email", "phone",
}

// Engine masks sensitive values. Safe for concurrent use: the name set is
// read-only after construction.
type Engine struct {
	enabled bool
	names   []string
}

// New builds an Engine from the default sensitive-name set unioned with extra
// caller-supplied names. Extra names are trimmed and lower-cased; blanks are
// dropped. The default set cannot be removed, only extended.
func New(enabled bool, extra []string) *Engine {
	names := make([]string, 0, len(defaultSensitive)+len(extra))
	seen := make(map[string]struct{}, len(defaultSensitive)+len(extra))

	add := func(name string) {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	for _, name := range defaultSensitive {
		add(name)
	}
	for _, name := range extra {
		add(name)
	}

	return &Engine{enabled: enabled, names: names}
}

// Default returns an enabled Engine with only the default sensitive names.
func Default() *Engine {
	return New(true, nil)
}

// Enabled reports whether masking is active.
func (e *Engine) Enabled() bool {
	return e.enabled
}

// Classify reports whether s matches any sensitive name, case-insensitively.
// It matches both exact names and substrings ("user_email" is sensitive).
func (e *Engine) Classify(s string) bool {
	if s == "" {
		return false
	}

	lower := strings.ToLower(s)
	for _, name := range e.names {
		if strings.Contains(lower, name) {
			return true
		}
	}
	return false
}

// Mask obfuscates value. Values of four characters or fewer collapse to the
// fixed marker; longer values keep their first and last two characters with
// asterisks in between. When the engine is disabled the value passes through.
func (e *Engine) Mask(value string) string {
	if !e.enabled {
		return value
	}

	runes := []rune(value)
	if len(runes) <= 4 {
		return Marker
	}

	var sb strings.Builder
	sb.WriteString(string(runes[:2]))
	sb.WriteString(strings.Repeat("*", len(runes)-4))
	sb.WriteString(string(runes[len(runes)-2:]))
	return sb.String()
}

// MaskIfSensitive masks value only when field classifies as sensitive.
func (e *Engine) MaskIfSensitive(field, value string) string {
	if !e.enabled {
		return value
	}
	if e.Classify(field) {
		return e.Mask(value)
	}
	return value
}
