// Package server exposes the draft state over HTTP and WebSocket.
package server

import "time"

// Server configuration constants
const (
	// Per-connection inbound rate limiting; corrections are manual actions
	// and never legitimately arrive in bursts.
	RateLimitMessages = 10
	RateLimitWindow   = time.Second

	// writeTimeout bounds a single outbound WebSocket write.
	writeTimeout = 5 * time.Second
)
