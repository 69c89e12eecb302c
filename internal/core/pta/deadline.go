package pta

import (
	"encoding/binary"
	"time"
)

// Deadline returns the expiry as a Unix timestamp.
//
// The checksum covers the eight deadline bytes exactly as they arrive, so
// the byte order only matters here. Issuers write it big-endian.
func (p *Payload) Deadline() int64 {
	return int64(binary.BigEndian.Uint64(p.deadline[:]))
}

// Expired reports whether now is past the deadline. A token is still valid
// during the deadline second itself.
func (p *Payload) Expired(now time.Time) bool {
	return now.Unix() > p.Deadline()
}
