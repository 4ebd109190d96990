package queue

import "errors"

// Sentinel kinds for enqueue failures.
var (
	ErrQueueFull = errors.New("report queue full")
	ErrClosed    = errors.New("report queue closed")
)
