package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrRateLimited  = errors.New("rate limited")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAllSourcesFailed is returned by a fetch cycle when every upstream
	// source failed. A cycle with at least one successful source completes in
	// degraded form instead.
	ErrAllSourcesFailed = errors.New("all upstream sources failed")

	// ErrNoSnapshot is returned when no fetch cycle has completed yet.
	ErrNoSnapshot = errors.New("no snapshot available")
)
