// Package metric provides Prometheus metrics for the gateway.
//
// It exposes request counts and latencies, upstream call outcomes, and
// session-token cache behavior in Prometheus format.
package metric
