// package memstore provides a driver that keeps collections in memory.
// Each Open starts empty and nothing outlives the process.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sour-is/relay/internal/lg"
	"github.com/sour-is/relay/pkg/locker"
	"github.com/sour-is/relay/pkg/math"
	"github.com/sour-is/relay/pkg/source"
	"github.com/sour-is/relay/pkg/source/driver"
)

type state struct {
	collections map[string]*locker.Locked[[]json.RawMessage]
}
type collection struct {
	name  string
	nodes *locker.Locked[[]json.RawMessage]
}
type memstore struct {
	state *locker.Locked[state]
}

func Init(ctx context.Context) error {
	ctx, span := lg.Span(ctx)
	defer span.End()

	return source.Register(ctx, "mem", &memstore{})
}

var _ driver.Driver = (*memstore)(nil)

func (memstore) Open(ctx context.Context, dsn string) (driver.Driver, error) {
	_, span := lg.Span(ctx)
	defer span.End()

	s := &state{collections: make(map[string]*locker.Locked[[]json.RawMessage])}
	return &memstore{locker.New(s)}, nil
}
func (m *memstore) Collection(ctx context.Context, name string) (driver.Collection, error) {
	ctx, span := lg.Span(ctx)
	defer span.End()

	c := &collection{name: name}

	err := m.state.Modify(ctx, func(ctx context.Context, state *state) error {
		l, ok := state.collections[name]
		if !ok {
			l = locker.New(&[]json.RawMessage{})
			state.collections[name] = l
		}
		c.nodes = l
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return c, nil
}

var _ driver.Collection = (*collection)(nil)

func (c *collection) Len(ctx context.Context) (int, error) {
	ctx, span := lg.Span(ctx)
	defer span.End()

	var n int
	err := c.nodes.Modify(ctx, func(ctx context.Context, nodes *[]json.RawMessage) error {
		n = len(*nodes)
		return nil
	})
	return n, err
}

func (c *collection) Slice(ctx context.Context, start, end int) ([]json.RawMessage, error) {
	ctx, span := lg.Span(ctx)
	defer span.End()

	var lis []json.RawMessage
	err := c.nodes.Modify(ctx, func(ctx context.Context, nodes *[]json.RawMessage) error {
		start := math.Clamp(0, start, len(*nodes))
		end := math.Clamp(start, end, len(*nodes))

		span.AddEvent(fmt.Sprintf("slice %s[%d:%d]", c.name, start, end))
		lis = make([]json.RawMessage, end-start)
		copy(lis, (*nodes)[start:end])
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return lis, nil
}

func (c *collection) Append(ctx context.Context, nodes ...json.RawMessage) (int, error) {
	ctx, span := lg.Span(ctx)
	defer span.End()

	err := c.nodes.Modify(ctx, func(ctx context.Context, lis *[]json.RawMessage) error {
		*lis = append(*lis, nodes...)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	return len(nodes), nil
}
