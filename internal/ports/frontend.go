package ports

import (
	"context"
)

// Frontend is a long-running surface that accepts scan submissions
type Frontend interface {
	// Start begins accepting submissions without blocking
	Start() error

	// Stop stops accepting submissions and waits for in-flight ones
	Stop(ctx context.Context) error
}
