package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/yndnr/ptagate/internal/core/domain"
	"github.com/yndnr/ptagate/internal/core/pta"
	"github.com/yndnr/ptagate/internal/server/config"
	"github.com/yndnr/ptagate/internal/server/httpserver/handler"
	"github.com/yndnr/ptagate/internal/telemetry/logger"
	"github.com/yndnr/ptagate/internal/telemetry/metric"
)

// Location enables or disables validation below a path prefix.
type Location struct {
	Prefix  string
	Enabled bool
	Methods pta.AuthMethod
}

// Locations resolves a request path to its Location by longest prefix.
// An empty table guards every path with query string tokens.
type Locations struct {
	entries []Location // longest prefix first
}

// NewLocations builds a table from configuration.
func NewLocations(cfgs []config.LocationConfig) (*Locations, error) {
	t := &Locations{entries: make([]Location, 0, len(cfgs))}
	for _, c := range cfgs {
		methods, err := pta.ParseAuthMethods(c.AuthMethods)
		if err != nil {
			return nil, domain.ErrConfigInvalid.WithDetails(c.PathPrefix).WithCause(err)
		}
		t.entries = append(t.entries, Location{
			Prefix:  c.PathPrefix,
			Enabled: c.Enabled,
			Methods: methods,
		})
	}
	sort.SliceStable(t.entries, func(i, j int) bool {
		return len(t.entries[i].Prefix) > len(t.entries[j].Prefix)
	})
	return t, nil
}

// Lookup returns the Location governing path. The boolean is false when no
// configured prefix matches, in which case the request is not guarded.
func (t *Locations) Lookup(path string) (Location, bool) {
	if len(t.entries) == 0 {
		return Location{Prefix: "/", Enabled: true, Methods: pta.QueryString}, true
	}
	for _, loc := range t.entries {
		if strings.HasPrefix(path, loc.Prefix) {
			return loc, true
		}
	}
	return Location{}, false
}

// Guard authorizes requests with PTA tokens. The validator and the location
// table can both be replaced while requests are in flight.
type Guard struct {
	store     *pta.Store
	locations atomic.Pointer[Locations]
	metrics   *metric.Registry
	logger    *slog.Logger
}

// NewGuard creates a Guard.
func NewGuard(store *pta.Store, locations *Locations, metrics *metric.Registry, log *slog.Logger) *Guard {
	g := &Guard{
		store:   store,
		metrics: metrics,
		logger:  log,
	}
	g.SetLocations(locations)
	return g
}

// SetLocations installs a new location table.
func (g *Guard) SetLocations(t *Locations) {
	if t == nil {
		t = &Locations{}
	}
	g.locations.Store(t)
}

// Middleware returns the guard as a Middleware. Authorized requests reach
// next with the pta query argument removed; everything else is answered
// with the error envelope.
func (g *Guard) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loc, ok := g.locations.Load().Lookup(r.URL.Path)
			if !ok || !loc.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			v := g.store.Load()
			if v == nil {
				handler.WriteError(w, r, domain.ErrServiceUnavailable)
				return
			}

			start := time.Now()
			decision, err := v.Validate(pta.RequestFromHTTP(r), loc.Methods)
			g.metrics.ObserveValidationDuration(time.Since(start).Seconds())

			outcome := pta.OutcomeOf(err)
			g.metrics.RecordValidation(outcome, decision.Method)
			if state := stateFrom(r.Context()); state != nil {
				state.guarded = true
				state.outcome = outcome
				state.decision = decision
			}

			if err != nil {
				logger.L(logger.WithAttrs(r.Context(), "location", loc.Prefix)).Debug("request rejected",
					"outcome", outcome,
					"source", decision.Method.String(),
					"candidate", decision.Candidate,
					"slot", decision.KeySlot.String(),
					"error", err,
					"cause", errors.Unwrap(err),
				)
				handler.WriteError(w, r, err)
				return
			}

			if _, present := pta.QueryToken(r.URL.RawQuery); present {
				r2 := r.Clone(r.Context())
				r2.URL.RawQuery = pta.StripQueryToken(r.URL.RawQuery)
				r2.RequestURI = ""
				r = r2
			}
			next.ServeHTTP(w, r)
		})
	}
}
