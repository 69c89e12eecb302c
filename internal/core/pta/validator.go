package pta

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yndnr/ptagate/internal/core/domain"
	"github.com/yndnr/ptagate/pkg/hexcodec"
)

// AuthMethod is a set of token sources.
type AuthMethod uint8

const (
	// QueryString reads the token from the pta query argument.
	QueryString AuthMethod = 1 << iota

	// Cookie reads the token from pta cookies.
	Cookie

	// BothMethods tries the query string first and falls back to cookies
	// when the query argument is absent.
	BothMethods = QueryString | Cookie
)

// String returns the method name used in logs and metric labels.
func (m AuthMethod) String() string {
	switch m {
	case QueryString:
		return "qs"
	case Cookie:
		return "cookie"
	case BothMethods:
		return "both"
	default:
		return "none"
	}
}

// ParseAuthMethod parses a single method name.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "qs", "query", "querystring", "query_string":
		return QueryString, nil
	case "cookie":
		return Cookie, nil
	case "both":
		return BothMethods, nil
	}
	return 0, fmt.Errorf("pta: unknown auth method %q", s)
}

// ParseAuthMethods combines a list of method names. An empty list means
// QueryString.
func ParseAuthMethods(names []string) (AuthMethod, error) {
	if len(names) == 0 {
		return QueryString, nil
	}
	var m AuthMethod
	for _, n := range names {
		one, err := ParseAuthMethod(n)
		if err != nil {
			return 0, err
		}
		m |= one
	}
	return m, nil
}

var (
	// ErrNoToken means the selected source carried no token at all.
	ErrNoToken = errors.New("pta: no token in request")

	// ErrURLMismatch means the payload does not authorize the request path.
	ErrURLMismatch = errors.New("pta: url does not match")
)

// Decision describes how a request was (or was not) authorized. It is for
// operator logs and metrics and must not be sent to clients.
type Decision struct {
	// Method is the source the candidates came from.
	Method AuthMethod

	// Candidate is the index of the last candidate tried, or -1.
	Candidate int

	// KeySlot is the pair that opened the last candidate, or NoSlot.
	KeySlot KeySlot

	// Deadline is the last opened payload's deadline, or 0.
	Deadline int64
}

// Observer receives one call per decryption attempt.
type Observer interface {
	ObserveDecrypt(slot KeySlot, ok bool)
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		v.now = now
	}
}

// WithStrictHex rejects tokens containing non-hex characters as malformed
// instead of decoding those characters as zero.
func WithStrictHex(strict bool) Option {
	return func(v *Validator) {
		v.strictHex = strict
	}
}

// WithObserver sets the decryption attempt observer.
func WithObserver(o Observer) Option {
	return func(v *Validator) {
		v.observer = o
	}
}

// Validator checks PTA tokens against a fixed Keyring. It holds no mutable
// state and is safe for concurrent use.
type Validator struct {
	keys      *Keyring
	now       func() time.Time
	strictHex bool
	observer  Observer
}

// NewValidator creates a Validator.
func NewValidator(keys *Keyring, opts ...Option) (*Validator, error) {
	if keys == nil || keys.Len() == 0 {
		return nil, domain.ErrConfigInvalid.WithDetails("no key pairs configured")
	}

	v := &Validator{
		keys: keys,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Keyring returns the key pairs the validator tries.
func (v *Validator) Keyring() *Keyring {
	return v.keys
}

// Validate authorizes req using the given sources (QueryString if zero).
//
// The returned error is nil, or a copy of domain.ErrTokenMalformed,
// domain.ErrTokenForbidden or domain.ErrTokenExpired carrying the precise
// reason as its cause.
//
// In query string mode the single candidate decides. In cookie mode every
// candidate is tried in order until one succeeds, except that a candidate
// that is not valid hex stops the search as malformed. When all candidates
// fail, the last failure is reported.
func (v *Validator) Validate(req Request, methods AuthMethod) (Decision, error) {
	if methods&BothMethods == 0 {
		methods = QueryString
	}

	d := Decision{Method: QueryString, Candidate: -1, KeySlot: NoSlot}

	var candidates []string
	if methods&QueryString != 0 {
		if tok, ok := QueryToken(req.RawQuery); ok {
			candidates = []string{tok}
		} else if methods&Cookie == 0 {
			return d, domain.ErrTokenMalformed.WithCause(ErrNoToken)
		}
	}
	if candidates == nil {
		d.Method = Cookie
		candidates = CookieTokens(req.Cookies)
		if len(candidates) == 0 {
			return d, domain.ErrTokenMalformed.WithCause(ErrNoToken)
		}
	}

	retry := d.Method == Cookie

	var lastErr error
	for i, tok := range candidates {
		d.Candidate = i
		d.KeySlot = NoSlot
		d.Deadline = 0

		ciphertext, err := v.decodeHex(tok)
		if err != nil {
			return d, domain.ErrTokenMalformed.WithCause(err)
		}

		payload, slot, err := v.open(ciphertext)
		if err != nil {
			lastErr = domain.ErrTokenForbidden.WithCause(err)
			if retry {
				continue
			}
			return d, lastErr
		}
		d.KeySlot = slot
		d.Deadline = payload.Deadline()

		if payload.Expired(v.now()) {
			lastErr = domain.ErrTokenExpired.WithDetails(fmt.Sprintf("deadline=%d", d.Deadline))
			if retry {
				continue
			}
			return d, lastErr
		}

		if !MatchPayload(payload, req.Path) {
			lastErr = domain.ErrTokenForbidden.WithCause(ErrURLMismatch)
			if retry {
				continue
			}
			return d, lastErr
		}

		return d, nil
	}

	return d, lastErr
}

func (v *Validator) decodeHex(tok string) ([]byte, error) {
	if v.strictHex {
		return hexcodec.DecodeStrict([]byte(tok))
	}
	return hexcodec.DecodeString(tok)
}

// open tries each key pair in order and returns the first payload that
// passes the integrity check. Cipher and integrity failures are treated the
// same way.
func (v *Validator) open(ciphertext []byte) (*Payload, KeySlot, error) {
	var lastErr error
	for _, e := range v.keys.entries {
		plaintext, err := e.cipher.Decrypt(ciphertext)
		if err == nil {
			var p *Payload
			if p, err = ParsePayload(plaintext); err == nil {
				v.observe(e.slot, true)
				return p, e.slot, nil
			}
		}
		v.observe(e.slot, false)
		lastErr = err
	}
	return nil, NoSlot, lastErr
}

func (v *Validator) observe(slot KeySlot, ok bool) {
	if v.observer != nil {
		v.observer.ObserveDecrypt(slot, ok)
	}
}
