package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/docopt/docopt-go"
	"gopkg.in/yaml.v3"

	"github.com/sour-is/relay/internal/lg"
	"github.com/sour-is/relay/pkg/cursor"
	"github.com/sour-is/relay/pkg/gql"
	"github.com/sour-is/relay/pkg/source"
	diskstore "github.com/sour-is/relay/pkg/source/driver/disk-store"
	memstore "github.com/sour-is/relay/pkg/source/driver/mem-store"
)

var usage = `Relay connection tool.
usage:
  relay encode <offset>...
  relay decode <cursor>...
  relay global-id <type> <id>
  relay from-global-id <gid>
  relay page [--first N] [--last N] [--after C] [--before C] <file>
  relay load [--data DSN] <collection> <file>
  relay list [--data DSN] [--first N] [--last N] [--after C] [--before C] <collection>

Options:
  --first <N>      Return at most N edges from the start of the window
  --last <N>       Return at most N edges from the end of the window
  --after <C>      Start after cursor C
  --before <C>     End before cursor C
  --data <DSN>     Collection store, file:<dir> or mem: (empty per run) [default: ` + env("RELAY_DATA", "mem:") + `]
`

// errEphemeral rejects loads into a store that is gone when relay exits.
var errEphemeral = errors.New("store does not outlive the process, load into a file: store")

type opts struct {
	Encode       bool
	Decode       bool
	GlobalID     bool
	FromGlobalID bool
	Page         bool
	Load         bool
	List         bool

	Offsets    []string
	Cursors    []string
	Type       string
	ID         string
	GID        string
	File       string
	Collection string
	Data       string

	Args gql.ConnectionArgs
}

func main() {
	o, err := parse(os.Args[1:])
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	go func() {
		<-ctx.Done()
		defer cancel() // restore interrupt function
	}()

	ctx, stop := lg.Init(ctx, "relay")
	err = run(ctx, o, os.Stdout)
	if serr := stop(); serr != nil {
		log.Println(serr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parse(argv []string) (opts, error) {
	p := &docopt.Parser{
		HelpHandler: docopt.NoHelpHandler,
	}
	o, err := p.ParseArgs(usage, argv, "")
	if err != nil {
		return opts{}, err
	}

	var opts opts
	opts.Encode, _ = o.Bool("encode")
	opts.Decode, _ = o.Bool("decode")
	opts.GlobalID, _ = o.Bool("global-id")
	opts.FromGlobalID, _ = o.Bool("from-global-id")
	opts.Page, _ = o.Bool("page")
	opts.Load, _ = o.Bool("load")
	opts.List, _ = o.Bool("list")

	opts.Offsets = stringList(o, "<offset>")
	opts.Cursors = stringList(o, "<cursor>")
	opts.Type, _ = o.String("<type>")
	opts.ID, _ = o.String("<id>")
	opts.GID, _ = o.String("<gid>")
	opts.File, _ = o.String("<file>")
	opts.Collection, _ = o.String("<collection>")
	opts.Data, _ = o.String("--data")

	if s, err := o.String("--after"); err == nil {
		opts.Args.After = cursor.Cursor(s).Ptr()
	}
	if s, err := o.String("--before"); err == nil {
		opts.Args.Before = cursor.Cursor(s).Ptr()
	}
	if s, err := o.String("--first"); err == nil {
		i, err := strconv.Atoi(s)
		if err != nil {
			return opts, fmt.Errorf("--first: %w", err)
		}
		opts.Args.First = &i
	}
	if s, err := o.String("--last"); err == nil {
		i, err := strconv.Atoi(s)
		if err != nil {
			return opts, fmt.Errorf("--last: %w", err)
		}
		opts.Args.Last = &i
	}

	return opts, nil
}

func run(ctx context.Context, opts opts, w io.Writer) error {
	ctx, span := lg.Span(ctx)
	defer span.End()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	switch {
	case opts.Encode:
		lis := make([]cursor.Cursor, len(opts.Offsets))
		for i, s := range opts.Offsets {
			offset, err := strconv.Atoi(s)
			if err != nil {
				return fmt.Errorf("offset %q: %w", s, err)
			}
			lis[i] = cursor.OffsetToCursor(offset)
		}
		return enc.Encode(lis)

	case opts.Decode:
		lis := make([]int, len(opts.Cursors))
		for i, s := range opts.Cursors {
			offset, ok := cursor.CursorToOffset(cursor.Cursor(s))
			if !ok {
				return fmt.Errorf("%w: cursor %q", gql.ErrInvalidArgument, s)
			}
			lis[i] = offset
		}
		return enc.Encode(lis)

	case opts.GlobalID:
		return enc.Encode(gql.ToGlobalID(opts.Type, opts.ID))

	case opts.FromGlobalID:
		id, err := gql.FromGlobalID(opts.GID)
		if err != nil {
			return err
		}
		return enc.Encode(id)

	case opts.Page:
		nodes, err := readNodes(opts.File)
		if err != nil {
			return err
		}
		c, err := gql.ConnectionFromArray(nodes, opts.Args)
		if err != nil {
			return err
		}
		return enc.Encode(c)

	case opts.Load, opts.List:
		if opts.Load && strings.HasPrefix(opts.Data, "mem:") {
			return fmt.Errorf("%w: %s", errEphemeral, opts.Data)
		}

		s, err := openStore(ctx, opts.Data)
		if err != nil {
			return err
		}
		defer s.Close(ctx)

		if opts.Load {
			nodes, err := readNodes(opts.File)
			if err != nil {
				return err
			}
			n, err := s.Append(ctx, opts.Collection, nodes...)
			if err != nil {
				return err
			}
			return enc.Encode(map[string]any{"collection": opts.Collection, "appended": n})
		}

		c, err := s.Page(ctx, opts.Collection, opts.Args)
		if err != nil {
			return err
		}
		return enc.Encode(c)
	}

	return errors.New("no command")
}

func openStore(ctx context.Context, dsn string) (*source.Store, error) {
	for _, err := range []error{
		memstore.Init(ctx),
		diskstore.Init(ctx),
	} {
		if err != nil && !errors.Is(err, source.ErrDriverSet) {
			return nil, err
		}
	}

	return source.Open(ctx, dsn)
}

// readNodes decodes a YAML (or JSON) sequence into one raw JSON node per item.
func readNodes(path string) ([]json.RawMessage, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var items []any
	if err := yaml.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	nodes := make([]json.RawMessage, len(items))
	for i, item := range items {
		nodes[i], err = json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("%s item %d: %w", path, i, err)
		}
	}
	return nodes, nil
}

func stringList(o docopt.Opts, key string) []string {
	if lis, ok := o[key].([]string); ok {
		return lis
	}
	return nil
}

func env(name, defaultValue string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return defaultValue
}
