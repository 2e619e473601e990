// Package middleware provides HTTP middleware for the clip relay.
//
// It includes:
//   - Request logging in W3C Extended Log Format with field sanitization
//   - Prometheus request metrics with relay-path cardinality collapsing
package middleware
