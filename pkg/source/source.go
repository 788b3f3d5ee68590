// Package source pages stored collections as Relay connections.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sour-is/relay/internal/lg"
	"github.com/sour-is/relay/pkg/gql"
	"github.com/sour-is/relay/pkg/locker"
	"github.com/sour-is/relay/pkg/slice"
	"github.com/sour-is/relay/pkg/source/driver"
)

type config struct {
	drivers map[string]driver.Driver
}

var (
	drivers = locker.New(&config{drivers: make(map[string]driver.Driver)})
)

var (
	ErrNoDriver  = errors.New("no driver")
	ErrDriverSet = errors.New("driver already set")
	ErrNotFound  = errors.New("not found")
)

func Register(ctx context.Context, name string, d driver.Driver) error {
	return drivers.Modify(ctx, func(ctx context.Context, c *config) error {
		if _, set := c.drivers[name]; set {
			return fmt.Errorf("%w: %s", ErrDriverSet, name)
		}
		c.drivers[name] = d
		return nil
	})
}

type Store struct {
	driver.Driver
}

// Open connects to the store named by dsn. The scheme before the first colon
// selects a registered driver.
func Open(ctx context.Context, dsn string) (*Store, error) {
	ctx, span := lg.Span(ctx)
	defer span.End()

	name, _, ok := strings.Cut(dsn, ":")
	if !ok {
		return nil, fmt.Errorf("%w: no scheme", ErrNoDriver)
	}

	c, err := drivers.Copy(ctx)
	if err != nil {
		return nil, err
	}

	d, ok := c.drivers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s not registered", ErrNoDriver, name)
	}

	conn, err := d.Open(ctx, dsn)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return &Store{Driver: conn}, nil
}

// Append adds nodes to the end of the named collection.
func (s *Store) Append(ctx context.Context, name string, nodes ...json.RawMessage) (int, error) {
	ctx, span := lg.Span(ctx)
	defer span.End()

	c, err := s.Collection(ctx, name)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	return c.Append(ctx, nodes...)
}

// Len returns the number of nodes in the named collection.
func (s *Store) Len(ctx context.Context, name string) (int, error) {
	ctx, span := lg.Span(ctx)
	defer span.End()

	c, err := s.Collection(ctx, name)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	return c.Len(ctx)
}

// Page returns the connection selected by args over the named collection.
// Only the selected range is read from the driver. The length read at the
// start of the call is taken as the length of the collection.
func (s *Store) Page(ctx context.Context, name string, args gql.ConnectionArgs) (*gql.Connection[json.RawMessage], error) {
	ctx, span := lg.Span(ctx)
	defer span.End()

	c, err := s.Collection(ctx, name)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	length, err := c.Len(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	start, end, err := gql.Bounds(args, length)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.AddEvent(fmt.Sprintf("read %d to %d of %d", start, end, length))

	nodes, err := c.Slice(ctx, start, end)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return gql.ConnectionFromSlice(nodes, args, gql.ArraySliceMetaInfo{
		SliceStart:  start,
		ArrayLength: length,
	})
}

// Close releases driver resources, if the driver holds any.
func (s *Store) Close(ctx context.Context) error {
	if c, ok := slice.Find[interface{ Close(context.Context) error }](s.Driver); ok {
		return c.Close(ctx)
	}
	return nil
}
