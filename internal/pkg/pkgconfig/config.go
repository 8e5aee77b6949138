package pkgconfig

// Config is the read surface business code depends on. Implementations decide
// where values come from (file, env, locked defaults).
type Config interface {
	GetInt(key string) int64
	GetBool(key string) bool
	GetFloat(key string) float64
	GetString(key string) string
	GetBinary(key string) []byte
	GetArray(key string) []string
	GetMap(key string) map[string]string
	Close() error
}
