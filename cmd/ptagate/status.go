package main

import (
	"time"

	"github.com/yndnr/ptagate/internal/core/pta"
	"github.com/yndnr/ptagate/internal/infra/buildinfo"
	"github.com/yndnr/ptagate/internal/server/httpserver"
	"github.com/yndnr/ptagate/internal/telemetry/logger"
)

// gateStatus is the reply to the admin status command.
type gateStatus struct {
	Version     string   `json:"version"`
	Uptime      string   `json:"uptime"`
	Config      string   `json:"config,omitempty"`
	LastReload  string   `json:"last_reload,omitempty"`
	KeySlots    []string `json:"key_slots"`
	StrictHex   bool     `json:"strict_hex"`
	LogLevel    string   `json:"log_level"`
	Locations   int      `json:"locations"`
	RateLimited int      `json:"rate_limited_clients"`
}

func newGateStatus(started time.Time, rl *reloader, store *pta.Store, limiter *httpserver.ClientLimiter) gateStatus {
	cfg := rl.Current()
	st := gateStatus{
		Version:   buildinfo.Version,
		Uptime:    time.Since(started).Truncate(time.Second).String(),
		Config:    rl.path,
		KeySlots:  []string{},
		StrictHex: cfg.PTA.StrictHex,
		LogLevel:  logger.GetLevel(),
		Locations: len(cfg.PTA.Locations),
	}
	if t := rl.LastReload(); !t.IsZero() {
		st.LastReload = t.UTC().Format(time.RFC3339)
	}
	if v := store.Load(); v != nil {
		for _, slot := range v.Keyring().Slots() {
			st.KeySlots = append(st.KeySlots, slot.String())
		}
	}
	if limiter != nil {
		st.RateLimited = limiter.Clients()
	}
	return st
}
