// package driver defines interfaces to be used by driver implementations.
package driver

import (
	"context"
	"encoding/json"
)

type Driver interface {
	Open(ctx context.Context, dsn string) (Driver, error)
	Collection(ctx context.Context, name string) (Collection, error)
}

// Collection is an ordered list of encoded nodes addressed by zero based offset.
type Collection interface {
	Len(ctx context.Context) (int, error)
	// Slice returns the nodes at offsets [start, end), clamped to the collection.
	Slice(ctx context.Context, start, end int) ([]json.RawMessage, error)
	Append(ctx context.Context, nodes ...json.RawMessage) (int, error)
}
