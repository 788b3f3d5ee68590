// Package gql builds Relay style connections from in memory collections.
//
// Offsets are used as cursors, so paging is only stable while the underlying
// collection does not change between requests.
package gql

import (
	"errors"
	stdmath "math"

	"github.com/sour-is/relay/pkg/cursor"
	"github.com/sour-is/relay/pkg/math"
	"github.com/sour-is/relay/pkg/slice"
)

// Cursor is an opaque position within a connection.
type Cursor = cursor.Cursor

var ErrInvalidArgument = errors.New("invalid argument")

type Connection[T any] struct {
	Edges    []*Edge[T] `json:"edges"`
	PageInfo PageInfo   `json:"pageInfo"`
}

type Edge[T any] struct {
	Node   T      `json:"node"`
	Cursor Cursor `json:"cursor"`
}

// IsEdge marks Edge for gqlgen edge interfaces.
func (Edge[T]) IsEdge() {}

type PageInfo struct {
	StartCursor     *Cursor `json:"startCursor"`
	EndCursor       *Cursor `json:"endCursor"`
	HasPreviousPage bool    `json:"hasPreviousPage"`
	HasNextPage     bool    `json:"hasNextPage"`
}

// ArraySliceMetaInfo places a slice within the full collection it was cut from.
type ArraySliceMetaInfo struct {
	SliceStart  int `json:"sliceStart"`
	ArrayLength int `json:"arrayLength"`
}

// EmptyConnection returns a connection with no edges and no further pages.
func EmptyConnection[T any]() *Connection[T] {
	return &Connection[T]{Edges: []*Edge[T]{}}
}

// ConnectionFromArray accepts a full collection and connection arguments and
// returns the page they select.
func ConnectionFromArray[T any](data []T, args ConnectionArgs) (*Connection[T], error) {
	return ConnectionFromSlice(data, args, ArraySliceMetaInfo{
		SliceStart:  0,
		ArrayLength: len(data),
	})
}

// ConnectionFromSlice is like ConnectionFromArray for callers that know the
// length of the collection but only hold part of it. The slice must cover
// the range selected by args for the result to be complete.
func ConnectionFromSlice[T any](arraySlice []T, args ConnectionArgs, meta ArraySliceMetaInfo) (*Connection[T], error) {
	if err := args.Validate(); err != nil {
		return nil, err
	}

	sliceStart := meta.SliceStart
	sliceEnd := sliceStart + len(arraySlice)
	startOffset, endOffset := window(args, sliceStart, sliceEnd, meta.ArrayLength)

	var trimmed []T
	if startOffset < endOffset {
		lo := math.Clamp(0, startOffset-sliceStart, len(arraySlice))
		hi := math.Clamp(lo, endOffset-sliceStart, len(arraySlice))
		trimmed = arraySlice[lo:hi]
	}

	edges := make([]*Edge[T], len(trimmed))
	for i := range trimmed {
		edges[i] = &Edge[T]{
			Node:   trimmed[i],
			Cursor: cursor.OffsetToCursor(startOffset + i),
		}
	}

	var pageInfo PageInfo
	if first, ok := slice.First(edges...); ok {
		pageInfo.StartCursor = first.Cursor.Ptr()
	}
	if last, ok := slice.Last(edges...); ok {
		pageInfo.EndCursor = last.Cursor.Ptr()
	}

	beforeOffset := cursor.GetOffsetWithDefault(args.Before, meta.ArrayLength)
	afterOffset := cursor.GetOffsetWithDefault(args.After, -1)

	lowerBound := 0
	if args.After != nil {
		lowerBound = inc(afterOffset)
	}
	upperBound := meta.ArrayLength
	if args.Before != nil {
		upperBound = beforeOffset
	}

	// Each flag only answers for the direction that was asked for.
	pageInfo.HasPreviousPage = args.Last != nil && startOffset > lowerBound
	pageInfo.HasNextPage = args.First != nil && endOffset < upperBound

	return &Connection[T]{Edges: edges, PageInfo: pageInfo}, nil
}

// Bounds returns the offsets [start, end) of the full collection selected by
// args. A caller backed by a remote store can fetch exactly that range and
// pass it to ConnectionFromSlice with SliceStart set to start.
func Bounds(args ConnectionArgs, arrayLength int) (start, end int, err error) {
	if err = args.Validate(); err != nil {
		return 0, 0, err
	}

	start, end = window(args, 0, arrayLength, arrayLength)
	start = math.Clamp(0, start, arrayLength)
	end = math.Clamp(start, end, arrayLength)

	return start, end, nil
}

func window(args ConnectionArgs, sliceStart, sliceEnd, arrayLength int) (startOffset, endOffset int) {
	beforeOffset := cursor.GetOffsetWithDefault(args.Before, arrayLength)
	afterOffset := cursor.GetOffsetWithDefault(args.After, -1)

	startOffset = inc(math.Max(sliceStart-1, afterOffset, -1))
	endOffset = math.Min(sliceEnd, beforeOffset, arrayLength)

	// Trims apply only to a non-empty window and never exceed its width.
	if args.First != nil && startOffset < endOffset && *args.First < endOffset-startOffset {
		endOffset = startOffset + *args.First
	}
	if args.Last != nil && startOffset < endOffset && *args.Last < endOffset-startOffset {
		startOffset = endOffset - *args.Last
	}

	return startOffset, endOffset
}

// inc adds one to i, saturating at the largest int.
func inc(i int) int {
	if i == stdmath.MaxInt {
		return i
	}
	return i + 1
}

// CursorForObjectInConnection returns the cursor of the first element of
// data equal to obj, or nil if there is none.
func CursorForObjectInConnection[T comparable](data []T, obj T) *Cursor {
	return cursorForIndex(slice.Index(data, obj))
}

// CursorForObjectInConnectionFunc returns the cursor of the first element of
// data that satisfies match, or nil if there is none.
func CursorForObjectInConnectionFunc[T any](data []T, match func(T) bool) *Cursor {
	return cursorForIndex(slice.IndexFunc(data, match))
}

func cursorForIndex(offset int) *Cursor {
	if offset < 0 {
		return nil
	}
	return cursor.OffsetToCursor(offset).Ptr()
}

// ToMap renders the connection with its wire field names.
func (c *Connection[T]) ToMap() map[string]any {
	return map[string]any{
		"edges": slice.Map(c.Edges, func(e *Edge[T]) map[string]any {
			return e.ToMap()
		}),
		"pageInfo": c.PageInfo.ToMap(),
	}
}

func (e *Edge[T]) ToMap() map[string]any {
	return map[string]any{
		"node":   e.Node,
		"cursor": string(e.Cursor),
	}
}

func (p PageInfo) ToMap() map[string]any {
	return map[string]any{
		"startCursor":     cursorValue(p.StartCursor),
		"endCursor":       cursorValue(p.EndCursor),
		"hasPreviousPage": p.HasPreviousPage,
		"hasNextPage":     p.HasNextPage,
	}
}

func cursorValue(c *Cursor) any {
	if c == nil {
		return nil
	}
	return string(*c)
}
