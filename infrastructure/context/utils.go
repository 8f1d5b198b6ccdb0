// Package context provides shared timeout helpers.
package context

import (
	"context"
	"time"
)

const (
	// DefaultShutdownTimeout bounds graceful shutdown and the final cache flush.
	DefaultShutdownTimeout = 10 * time.Second

	// DefaultPingTimeout bounds connectivity checks against backing stores.
	DefaultPingTimeout = 5 * time.Second
)

// WithPingTimeout derives a context bounded by DefaultPingTimeout.
func WithPingTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, DefaultPingTimeout)
}

// WithShutdownTimeout derives a context for cleanup work that must run even
// after parent has been cancelled.
func WithShutdownTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(parent), DefaultShutdownTimeout)
}
