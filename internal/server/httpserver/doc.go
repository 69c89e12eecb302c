// Package httpserver is the gate's HTTP front end.
//
// Requests under /-/ are served by the gate itself (health, readiness,
// metrics). Every other request passes the PTA guard according to the
// location table and is then forwarded upstream with the pta query
// argument removed.
//
// Middleware order, outermost first: Recover, RequestID, Audit, RateLimit,
// Guard.
package httpserver
