package httpserver

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/ptagate/pkg/cmap"
)

// DefaultLimiterIdle is how long a client bucket survives without traffic.
const DefaultLimiterIdle = 10 * time.Minute

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

// ClientLimiter keeps one token bucket per client address.
type ClientLimiter struct {
	limit   rate.Limit
	burst   int
	buckets *cmap.Map[*clientBucket]
	now     func() time.Time
}

// NewClientLimiter creates a limiter allowing rps requests per second per
// client with the given burst. A burst below 1 is raised to ceil(rps).
func NewClientLimiter(rps float64, burst int) *ClientLimiter {
	if burst < 1 {
		burst = int(rps)
		if float64(burst) < rps {
			burst++
		}
		if burst < 1 {
			burst = 1
		}
	}
	return &ClientLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		buckets: cmap.New[*clientBucket](),
		now:     time.Now,
	}
}

// Allow reports whether a request from client may proceed now.
func (l *ClientLimiter) Allow(client string) bool {
	b, _ := l.buckets.GetOrCreate(client, func() *clientBucket {
		return &clientBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
	})

	now := l.now()
	b.lastSeen.Store(now.UnixNano())
	return b.limiter.AllowN(now, 1)
}

// Clients returns the number of tracked clients.
func (l *ClientLimiter) Clients() int {
	return l.buckets.Count()
}

// Sweep forgets clients idle for longer than idle and returns how many
// were removed.
func (l *ClientLimiter) Sweep(idle time.Duration) int {
	cutoff := l.now().Add(-idle).UnixNano()
	return l.buckets.RemoveIf(func(_ string, b *clientBucket) bool {
		return b.lastSeen.Load() < cutoff
	})
}

// RunSweeper calls Sweep every interval until ctx is done.
func (l *ClientLimiter) RunSweeper(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep(idle)
		}
	}
}
