// Package delivery defines the contract every inbound transport implements.
package delivery

import "context"

// Delivery is a long-running inbound adapter, e.g. an HTTP server. Serve
// blocks until the adapter stops or fails.
type Delivery interface {
	Serve(ctx context.Context) error
}
