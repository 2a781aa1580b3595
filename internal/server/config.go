package server

import "github.com/raysh454/webshot/internal/interfaces"

// Config holds server configuration
type Config struct {
	ListenAddr string

	// RateLimitRPS caps capture creations per second across all clients.
	// Zero disables the limiter. Burst is at least 1 when the limiter is on.
	RateLimitRPS   float64
	RateLimitBurst int

	// MaxConcurrentCaptures bounds in-flight browser sessions; requests
	// beyond it are rejected rather than queued.
	MaxConcurrentCaptures int

	Logger interfaces.Logger
}
