// Package metric provides Prometheus metrics for ptagate.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: Prometheus registry and HTTP handler
//   - collector.go: scrape-time collector for validator state
//
// Metrics include validation outcomes by token source, decryption attempts
// by key slot, request counts and latencies, rate limiting, upstream
// failures and configuration reloads.
//
// Metrics are exposed at /-/metrics in Prometheus format.
package metric
