package gql

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/sour-is/relay/internal/lg"
)

// ConnectionFromPromisedArray resolves the collection with fetch and then
// pages it as ConnectionFromArray does.
func ConnectionFromPromisedArray[T any](
	ctx context.Context,
	fetch func(context.Context) ([]T, error),
	args ConnectionArgs,
) (*Connection[T], error) {
	ctx, span := lg.Span(ctx)
	defer span.End()

	if err := args.Validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	data, err := fetch(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return ConnectionFromArray(data, args)
}

// ConnectionFromPromisedSlice resolves a slice and its placement concurrently
// and then pages them as ConnectionFromSlice does. If either fetch fails the
// other is canceled and the first error is returned.
func ConnectionFromPromisedSlice[T any](
	ctx context.Context,
	fetch func(context.Context) ([]T, error),
	args ConnectionArgs,
	fetchMeta func(context.Context) (ArraySliceMetaInfo, error),
) (*Connection[T], error) {
	ctx, span := lg.Span(ctx)
	defer span.End()

	if err := args.Validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	var data []T
	var meta ArraySliceMetaInfo

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		data, err = fetch(ctx)
		return
	})
	g.Go(func() (err error) {
		meta, err = fetchMeta(ctx)
		return
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.AddEvent("window slice")
	return ConnectionFromSlice(data, args, meta)
}
