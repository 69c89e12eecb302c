// Package reqid generates and checks request identifiers.
//
// Generated IDs are "req_" followed by a ULID, so they sort by creation
// time in logs. Incoming IDs set by a trusted proxy are accepted when they
// are short printable tokens.
package reqid

import (
	"crypto/rand"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Prefix is prepended to generated IDs.
const Prefix = "req_"

// MaxLength bounds IDs accepted from clients.
const MaxLength = 128

// Generator produces monotonically increasing request IDs.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

// NewGenerator creates a Generator backed by crypto/rand.
func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// New returns a fresh ID.
func (g *Generator) New() string {
	g.mu.Lock()
	id, err := ulid.New(ulid.Timestamp(g.now()), g.entropy)
	g.mu.Unlock()
	if err != nil {
		// Monotonic entropy overflows only after 2^80 IDs in one millisecond.
		id = ulid.Make()
	}
	return Prefix + id.String()
}

var defaultGenerator = NewGenerator()

// New returns a fresh ID from the package generator.
func New() string {
	return defaultGenerator.New()
}

// Time extracts the creation time of a generated ID.
func Time(id string) (time.Time, bool) {
	raw, ok := strings.CutPrefix(id, Prefix)
	if !ok {
		return time.Time{}, false
	}
	u, err := ulid.ParseStrict(raw)
	if err != nil {
		return time.Time{}, false
	}
	return ulid.Time(u.Time()), true
}

// Valid reports whether id may be echoed back and logged as a request ID.
func Valid(id string) bool {
	if id == "" || len(id) > MaxLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.', c == ':':
		default:
			return false
		}
	}
	return true
}
