// package diskstore provides a driver that keeps collections on disk as
// write ahead logs.
package diskstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/wal"
	"go.opentelemetry.io/otel/metric/instrument/syncint64"
	"go.uber.org/multierr"

	"github.com/sour-is/relay/internal/lg"
	"github.com/sour-is/relay/pkg/locker"
	"github.com/sour-is/relay/pkg/math"
	"github.com/sour-is/relay/pkg/source"
	"github.com/sour-is/relay/pkg/source/driver"
)

type openlogs struct {
	logs map[string]*locker.Locked[wal.Log]
}
type diskStore struct {
	path     string
	openlogs *locker.Locked[openlogs]

	m_disk_open  syncint64.Counter
	m_disk_read  syncint64.Counter
	m_disk_write syncint64.Counter
}

func Init(ctx context.Context) error {
	ctx, span := lg.Span(ctx)
	defer span.End()

	d := &diskStore{}

	m := lg.Meter(ctx)
	var err, errs error

	d.m_disk_open, err = m.SyncInt64().Counter("disk_open")
	errs = multierr.Append(errs, err)

	d.m_disk_read, err = m.SyncInt64().Counter("disk_read")
	errs = multierr.Append(errs, err)

	d.m_disk_write, err = m.SyncInt64().Counter("disk_write")
	errs = multierr.Append(errs, err)

	return multierr.Append(errs, source.Register(ctx, "file", d))
}

var _ driver.Driver = (*diskStore)(nil)

func (d *diskStore) Open(ctx context.Context, dsn string) (driver.Driver, error) {
	_, span := lg.Span(ctx)
	defer span.End()

	scheme, path, ok := strings.Cut(dsn, ":")
	if !ok {
		return nil, fmt.Errorf("expected scheme")
	}

	if scheme != "file" {
		return nil, fmt.Errorf("expeted scheme=file, got=%s", scheme)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		err = os.MkdirAll(path, 0700)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	return &diskStore{
		path:         path,
		openlogs:     locker.New(&openlogs{logs: make(map[string]*locker.Locked[wal.Log])}),
		m_disk_open:  d.m_disk_open,
		m_disk_read:  d.m_disk_read,
		m_disk_write: d.m_disk_write,
	}, nil
}
func (d *diskStore) Collection(ctx context.Context, name string) (driver.Collection, error) {
	ctx, span := lg.Span(ctx)
	defer span.End()

	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		err := fmt.Errorf("%w: invalid collection name %q", source.ErrNotFound, name)
		span.RecordError(err)
		return nil, err
	}

	c := &collection{name: name, diskStore: d}

	return c, d.openlogs.Modify(ctx, func(ctx context.Context, openlogs *openlogs) error {
		if l, ok := openlogs.logs[name]; ok {
			c.log = l
			return nil
		}

		d.m_disk_open.Add(ctx, 1)

		l, err := wal.Open(filepath.Join(d.path, name), wal.DefaultOptions)
		if err != nil {
			span.RecordError(err)
			return err
		}

		c.log = locker.New(l)
		openlogs.logs[name] = c.log
		return nil
	})
}

// Close closes every open log.
func (d *diskStore) Close(ctx context.Context) error {
	ctx, span := lg.Span(ctx)
	defer span.End()

	return d.openlogs.Modify(ctx, func(ctx context.Context, openlogs *openlogs) error {
		var errs error
		for name, l := range openlogs.logs {
			errs = multierr.Append(errs, l.Modify(ctx, func(ctx context.Context, w *wal.Log) error {
				return w.Close()
			}))
			delete(openlogs.logs, name)
		}
		if errs != nil {
			span.RecordError(errs)
		}
		return errs
	})
}

type collection struct {
	name      string
	log       *locker.Locked[wal.Log]
	diskStore *diskStore
}

var _ driver.Collection = (*collection)(nil)

func (c *collection) Len(ctx context.Context) (int, error) {
	ctx, span := lg.Span(ctx)
	defer span.End()

	var n int
	err := c.log.Modify(ctx, func(ctx context.Context, l *wal.Log) error {
		first, last, err := bounds(l)
		if err != nil {
			return err
		}
		if last > 0 {
			n = int(last - first + 1)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
	}
	return n, err
}

// Slice reads offsets [start, end). Offset i is stored at log index first+i.
func (c *collection) Slice(ctx context.Context, start, end int) ([]json.RawMessage, error) {
	ctx, span := lg.Span(ctx)
	defer span.End()

	var nodes []json.RawMessage
	err := c.log.Modify(ctx, func(ctx context.Context, l *wal.Log) error {
		first, last, err := bounds(l)
		if err != nil {
			return err
		}

		length := 0
		if last > 0 {
			length = int(last - first + 1)
		}
		start := math.Clamp(0, start, length)
		end := math.Clamp(start, end, length)

		nodes = make([]json.RawMessage, end-start)
		for i := range nodes {
			idx := first + uint64(start+i)
			b, err := l.Read(idx)
			if err != nil {
				if errors.Is(err, wal.ErrNotFound) || errors.Is(err, wal.ErrOutOfRange) {
					err = fmt.Errorf("%w: %s index %d", source.ErrNotFound, c.name, idx)
				}
				return err
			}
			nodes[i] = b
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	c.diskStore.m_disk_read.Add(ctx, int64(len(nodes)))

	return nodes, nil
}

func (c *collection) Append(ctx context.Context, nodes ...json.RawMessage) (int, error) {
	ctx, span := lg.Span(ctx)
	defer span.End()

	if len(nodes) == 0 {
		return 0, nil
	}

	err := c.log.Modify(ctx, func(ctx context.Context, l *wal.Log) error {
		last, err := l.LastIndex()
		if err != nil {
			return err
		}

		batch := &wal.Batch{}
		for i, n := range nodes {
			if !json.Valid(n) {
				return fmt.Errorf("node %d of %d is not valid json", i, len(nodes))
			}
			batch.Write(last+uint64(i)+1, n)
		}

		return l.WriteBatch(batch)
	})
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	c.diskStore.m_disk_write.Add(ctx, int64(len(nodes)))

	return len(nodes), nil
}

func bounds(l *wal.Log) (first, last uint64, err error) {
	if first, err = l.FirstIndex(); err != nil {
		return 0, 0, err
	}
	if last, err = l.LastIndex(); err != nil {
		return 0, 0, err
	}
	return first, last, nil
}
