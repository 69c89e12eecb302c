// Package main provides the entry point for ptagate.
//
// ptagate is a reverse proxy that admits a request only when it carries a
// valid PTA token for its path. Rejected requests never reach the upstream.
//
// Usage:
//
//	ptagate -config /etc/ptagate/config.yaml
//
// The configuration file is watched; key, location and log level changes
// are applied without a restart, as is a reload on SIGHUP. A file that fails
// verification is logged and the running configuration is kept.
package main
