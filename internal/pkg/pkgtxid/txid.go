package pkgtxid

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"
)

// DefaultPrefix is used when the caller does not choose a prefix.
const DefaultPrefix = "txn"

const randomLen = 12 // 96 bits

// ErrBlankPrefix is returned when a caller asks for an ID with an empty or
// whitespace-only prefix.
var ErrBlankPrefix = errors.New("transaction id prefix cannot be blank")

// Generator produces transaction IDs with a fixed prefix.
//
// The zero value is not usable; construct with New or NewWithPrefix. A single
// Generator is safe for concurrent use, crypto/rand needs no external locking.
type Generator struct {
	prefix string
}

// New returns a Generator using the default "txn" prefix.
func New() *Generator {
	return &Generator{prefix: DefaultPrefix}
}

// NewWithPrefix returns a Generator using a custom prefix.
func NewWithPrefix(prefix string) (*Generator, error) {
	if strings.TrimSpace(prefix) == "" {
		return nil, ErrBlankPrefix
	}
	return &Generator{prefix: prefix}, nil
}

// Generate returns a new unique transaction ID.
func (g *Generator) Generate() string {
	id, _ := GenerateWithPrefix(g.prefix)
	return id
}

// Generate returns a new unique transaction ID with the default prefix.
func Generate() string {
	id, _ := GenerateWithPrefix(DefaultPrefix)
	return id
}

// GenerateWithPrefix returns a new unique transaction ID with the given prefix.
func GenerateWithPrefix(prefix string) (string, error) {
	if strings.TrimSpace(prefix) == "" {
		return "", ErrBlankPrefix
	}

	buf := make([]byte, randomLen)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand is documented to never fail on supported platforms.
		panic(err)
	}

	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteByte('_')
	sb.WriteString(strconv.FormatInt(time.Now().UnixMilli(), 10))
	sb.WriteByte('_')
	sb.WriteString(base64.RawURLEncoding.EncodeToString(buf))

	return sb.String(), nil
}

// IsValidFormat reports whether id looks like <prefix>_<epochMillis>_<random>.
//
// Only the structure is checked: three non-empty segments with a non-negative
// integer timestamp in the middle. The random segment may itself contain
// underscores (they are part of the URL-safe base64 alphabet), so everything
// after the second separator counts as one segment.
func IsValidFormat(id string) bool {
	if strings.TrimSpace(id) == "" {
		return false
	}

	parts := strings.SplitN(id, "_", 3)
	if len(parts) != 3 {
		return false
	}
	if parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return false
	}

	ts, err := strconv.ParseInt(parts[1], 10, 64)
	return err == nil && ts >= 0
}
