package gql_test

import (
	"encoding/json"
	"errors"
	"fmt"
	stdmath "math"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/sour-is/relay/pkg/cursor"
	"github.com/sour-is/relay/pkg/gql"
)

var arrayABCDE = []string{"A", "B", "C", "D", "E"}

func at(offset int) *gql.Cursor {
	return cursor.OffsetToCursor(offset).Ptr()
}

func invalid(s string) *gql.Cursor {
	c := gql.Cursor(s)
	return &c
}

// page builds the expected connection holding nodes, the first of which sits
// at offset.
func page(offset int, nodes string, hasPrev, hasNext bool) *gql.Connection[string] {
	c := &gql.Connection[string]{
		Edges: make([]*gql.Edge[string], 0, len(nodes)),
		PageInfo: gql.PageInfo{
			HasPreviousPage: hasPrev,
			HasNextPage:     hasNext,
		},
	}
	for i, n := range nodes {
		c.Edges = append(c.Edges, &gql.Edge[string]{Node: string(n), Cursor: cursor.OffsetToCursor(offset + i)})
	}
	if len(nodes) > 0 {
		c.PageInfo.StartCursor = at(offset)
		c.PageInfo.EndCursor = at(offset + len(nodes) - 1)
	}
	return c
}

func TestConnectionFromArray(t *testing.T) {
	tests := []struct {
		name   string
		args   gql.ConnectionArgs
		expect *gql.Connection[string]
	}{
		{"returns all elements without filters", gql.ConnectionArgs{},
			page(0, "ABCDE", false, false)},
		{"respects a smaller first", gql.ConnectionArgs{First: gql.Int(2)},
			page(0, "AB", false, true)},
		{"respects an overly large first", gql.ConnectionArgs{First: gql.Int(10)},
			page(0, "ABCDE", false, false)},
		{"respects a smaller last", gql.ConnectionArgs{Last: gql.Int(2)},
			page(3, "DE", true, false)},
		{"respects an overly large last", gql.ConnectionArgs{Last: gql.Int(10)},
			page(0, "ABCDE", false, false)},

		{"respects first and after", gql.ConnectionArgs{First: gql.Int(2), After: at(1)},
			page(2, "CD", false, true)},
		{"respects first and after with long first", gql.ConnectionArgs{First: gql.Int(10), After: at(1)},
			page(2, "CDE", false, false)},
		{"respects last and before", gql.ConnectionArgs{Last: gql.Int(2), Before: at(3)},
			page(1, "BC", true, false)},
		{"respects last and before with long last", gql.ConnectionArgs{Last: gql.Int(10), Before: at(3)},
			page(0, "ABC", false, false)},

		{"respects first and after and before, too few", gql.ConnectionArgs{First: gql.Int(2), After: at(0), Before: at(4)},
			page(1, "BC", false, true)},
		{"respects first and after and before, too many", gql.ConnectionArgs{First: gql.Int(4), After: at(0), Before: at(4)},
			page(1, "BCD", false, false)},
		{"respects first and after and before, exactly right", gql.ConnectionArgs{First: gql.Int(3), After: at(0), Before: at(4)},
			page(1, "BCD", false, false)},
		{"respects last and after and before, too few", gql.ConnectionArgs{Last: gql.Int(2), After: at(0), Before: at(4)},
			page(2, "CD", true, false)},
		{"respects last and after and before, too many", gql.ConnectionArgs{Last: gql.Int(4), After: at(0), Before: at(4)},
			page(1, "BCD", false, false)},
		{"respects last and after and before, exactly right", gql.ConnectionArgs{Last: gql.Int(3), After: at(0), Before: at(4)},
			page(1, "BCD", false, false)},
		{"respects first and last together", gql.ConnectionArgs{First: gql.Int(3), Last: gql.Int(2)},
			page(1, "BC", true, true)},

		{"returns all elements if cursors are invalid", gql.ConnectionArgs{Before: invalid("InvalidBase64"), After: invalid("InvalidBase64")},
			page(0, "ABCDE", false, false)},
		{"returns all elements if cursors hold invalid unicode", gql.ConnectionArgs{Before: invalid("9JCAgA=="), After: invalid("9JCAgA==")},
			page(0, "ABCDE", false, false)},
		{"returns all elements if cursors are empty", gql.ConnectionArgs{Before: invalid(""), After: invalid("")},
			page(0, "ABCDE", false, false)},
		{"returns all elements if before is past the end", gql.ConnectionArgs{Before: at(6)},
			page(0, "ABCDE", false, false)},
		{"returns all elements if after is before the start", gql.ConnectionArgs{After: at(-1)},
			page(0, "ABCDE", false, false)},
		{"returns no elements if after is past the end", gql.ConnectionArgs{After: at(6)},
			page(0, "", false, false)},
		{"returns no elements if before is before the start", gql.ConnectionArgs{Before: at(-1)},
			page(0, "", false, false)},
		{"returns no elements if cursors cross", gql.ConnectionArgs{Before: at(2), After: at(4)},
			page(0, "", false, false)},
		{"returns no elements if cursors meet", gql.ConnectionArgs{Before: at(2), After: at(2)},
			page(0, "", false, false)},

		{"first zero is not an error", gql.ConnectionArgs{First: gql.Int(0)},
			page(0, "", false, true)},
		{"last zero is not an error", gql.ConnectionArgs{Last: gql.Int(0)},
			page(0, "", true, false)},
		{"first zero after the last element", gql.ConnectionArgs{First: gql.Int(0), After: at(4)},
			page(0, "", false, false)},

		{"returns no elements if after is the largest offset", gql.ConnectionArgs{After: at(stdmath.MaxInt)},
			page(0, "", false, false)},
		{"returns no elements if after is the largest offset with last", gql.ConnectionArgs{Last: gql.Int(2), After: at(stdmath.MaxInt)},
			page(0, "", false, false)},
		{"returns no elements if before is the smallest offset", gql.ConnectionArgs{First: gql.Int(2), Last: gql.Int(2), Before: at(stdmath.MinInt)},
			page(0, "", false, false)},
		{"respects the largest first with after", gql.ConnectionArgs{First: gql.Int(stdmath.MaxInt), After: at(0)},
			page(1, "BCDE", false, false)},
		{"respects the largest last with before", gql.ConnectionArgs{Last: gql.Int(stdmath.MaxInt), Before: at(4)},
			page(0, "ABCD", false, false)},
		{"respects the largest first and last with both cursors", gql.ConnectionArgs{First: gql.Int(stdmath.MaxInt), Last: gql.Int(stdmath.MaxInt), After: at(0), Before: at(4)},
			page(1, "BCD", false, false)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)

			c, err := gql.ConnectionFromArray(arrayABCDE, tt.args)
			is.NoErr(err)
			is.Equal(c, tt.expect)
		})
	}
}

// hasPreviousPage is only computed when last is given and hasNextPage only
// when first is given, as Relay cursor connections
// define them. An older revision derived both flags from offsets alone and
// would report hasPreviousPage for the first/after request below. The gated
// form is intended.
func TestPageFlagsOnlyReportRequestedDirection(t *testing.T) {
	is := is.New(t)

	c, err := gql.ConnectionFromArray(arrayABCDE, gql.ConnectionArgs{First: gql.Int(2), After: at(1)})
	is.NoErr(err)
	is.Equal(len(c.Edges), 2)
	is.True(c.PageInfo.HasNextPage)
	is.True(!c.PageInfo.HasPreviousPage) // items A and B exist, but last was not given

	c, err = gql.ConnectionFromArray(arrayABCDE, gql.ConnectionArgs{Last: gql.Int(2), Before: at(3)})
	is.NoErr(err)
	is.Equal(len(c.Edges), 2)
	is.True(c.PageInfo.HasPreviousPage)
	is.True(!c.PageInfo.HasNextPage) // items D and E exist, but first was not given
}

func TestNegativeArguments(t *testing.T) {
	tests := []struct {
		name string
		args gql.ConnectionArgs
		msgs []string
	}{
		{"first", gql.ConnectionArgs{First: gql.Int(-1)},
			[]string{"invalid argument: argument 'first' must be a non-negative integer"}},
		{"last", gql.ConnectionArgs{Last: gql.Int(-1)},
			[]string{"invalid argument: argument 'last' must be a non-negative integer"}},
		{"both", gql.ConnectionArgs{First: gql.Int(-3), Last: gql.Int(-2)},
			[]string{
				"invalid argument: argument 'first' must be a non-negative integer",
				"invalid argument: argument 'last' must be a non-negative integer",
			}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)

			data := append([]string(nil), arrayABCDE...)

			c, err := gql.ConnectionFromArray(data, tt.args)
			is.True(errors.Is(err, gql.ErrInvalidArgument))
			is.True(c == nil)
			for _, msg := range tt.msgs {
				is.True(strings.Contains(err.Error(), msg))
			}
			is.Equal(data, arrayABCDE) // input untouched

			_, _, err = gql.Bounds(tt.args, len(data))
			is.True(errors.Is(err, gql.ErrInvalidArgument))
		})
	}
}

func TestConnectionFromSlice(t *testing.T) {
	tests := []struct {
		name       string
		slice      []string
		args       gql.ConnectionArgs
		sliceStart int
		expect     *gql.Connection[string]
	}{
		{"works with a just right array slice", arrayABCDE[1:3],
			gql.ConnectionArgs{First: gql.Int(2), After: at(0)}, 1,
			page(1, "BC", false, true)},
		{"works with an oversized array slice, left side", arrayABCDE[0:3],
			gql.ConnectionArgs{First: gql.Int(2), After: at(0)}, 0,
			page(1, "BC", false, true)},
		{"works with an oversized array slice, right side", arrayABCDE[2:4],
			gql.ConnectionArgs{First: gql.Int(1), After: at(1)}, 2,
			page(2, "C", false, true)},
		{"works with an oversized array slice, both sides", arrayABCDE[1:4],
			gql.ConnectionArgs{First: gql.Int(1), After: at(1)}, 1,
			page(2, "C", false, true)},
		{"works with an undersized array slice, left side", arrayABCDE[3:5],
			gql.ConnectionArgs{First: gql.Int(3), After: at(1)}, 3,
			page(3, "DE", false, false)},
		{"works with an undersized array slice, right side", arrayABCDE[2:4],
			gql.ConnectionArgs{First: gql.Int(3), After: at(1)}, 2,
			page(2, "CD", false, true)},
		{"works with an undersized array slice, both sides", arrayABCDE[3:4],
			gql.ConnectionArgs{First: gql.Int(3), After: at(1)}, 3,
			page(3, "D", false, true)},
		{"returns no elements when before precedes the slice", arrayABCDE[2:5],
			gql.ConnectionArgs{Before: at(0)}, 2,
			page(0, "", false, false)},
		{"returns no elements when after follows the slice", arrayABCDE[0:2],
			gql.ConnectionArgs{After: at(3)}, 0,
			page(0, "", false, false)},
		{"does not require args", arrayABCDE, gql.ConnectionArgs{}, 0,
			page(0, "ABCDE", false, false)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)

			c, err := gql.ConnectionFromSlice(tt.slice, tt.args, gql.ArraySliceMetaInfo{
				SliceStart:  tt.sliceStart,
				ArrayLength: 5,
			})
			is.NoErr(err)
			is.Equal(c, tt.expect)
		})
	}
}

func TestConnectionFromSliceArrayLength(t *testing.T) {
	is := is.New(t)

	// a prefix of a longer collection
	c, err := gql.ConnectionFromSlice(arrayABCDE[:1], gql.ConnectionArgs{First: gql.Int(1)}, gql.ArraySliceMetaInfo{ArrayLength: 5})
	is.NoErr(err)
	is.Equal(c, page(0, "A", false, true))

	// the slice is the whole collection
	c, err = gql.ConnectionFromSlice(arrayABCDE[:1], gql.ConnectionArgs{First: gql.Int(1)}, gql.ArraySliceMetaInfo{ArrayLength: 1})
	is.NoErr(err)
	is.Equal(c, page(0, "A", false, false))
}

func TestFullWindowIdentity(t *testing.T) {
	is := is.New(t)

	for n := 0; n < 20; n++ {
		data := make([]int, n)
		for i := range data {
			data[i] = i * 10
		}

		c, err := gql.ConnectionFromArray(data, gql.ConnectionArgs{})
		is.NoErr(err)
		is.Equal(len(c.Edges), n)
		for i, e := range c.Edges {
			is.Equal(e.Node, data[i])
			is.Equal(e.Cursor, cursor.OffsetToCursor(i))
		}
		is.True(!c.PageInfo.HasPreviousPage)
		is.True(!c.PageInfo.HasNextPage)
		is.Equal(c.PageInfo.StartCursor == nil, n == 0)
		is.Equal(c.PageInfo.EndCursor == nil, n == 0)

		for k := 0; k < n; k++ {
			c, err = gql.ConnectionFromArray(data, gql.ConnectionArgs{First: gql.Int(k)})
			is.NoErr(err)
			is.Equal(len(c.Edges), k)
			is.True(c.PageInfo.HasNextPage)
			is.True(!c.PageInfo.HasPreviousPage)
			if k > 0 {
				is.Equal(c.Edges[0].Node, data[0])
			}

			c, err = gql.ConnectionFromArray(data, gql.ConnectionArgs{Last: gql.Int(k)})
			is.NoErr(err)
			is.Equal(len(c.Edges), k)
			is.True(c.PageInfo.HasPreviousPage)
			is.True(!c.PageInfo.HasNextPage)
			if k > 0 {
				is.Equal(c.Edges[k-1].Node, data[n-1])
			}
		}
	}
}

func TestCrossedCursorsYieldEmpty(t *testing.T) {
	is := is.New(t)

	for after := 0; after < 5; after++ {
		for before := 0; before <= after; before++ {
			c, err := gql.ConnectionFromArray(arrayABCDE, gql.ConnectionArgs{After: at(after), Before: at(before)})
			is.NoErr(err)
			is.Equal(len(c.Edges), 0)
			is.True(c.PageInfo.StartCursor == nil)
			is.True(c.PageInfo.EndCursor == nil)
		}
	}
}

// Bounds selects a range that, passed back as a slice, pages identically to
// the full collection.
func TestBounds(t *testing.T) {
	counts := []*int{nil, gql.Int(0), gql.Int(1), gql.Int(2), gql.Int(10), gql.Int(stdmath.MaxInt)}
	cursors := []*gql.Cursor{nil, at(stdmath.MinInt), at(-1), at(0), at(1), at(3), at(4), at(5), at(6), at(stdmath.MaxInt), invalid("bogus")}

	for _, first := range counts {
		for _, last := range counts {
			for _, after := range cursors {
				for _, before := range cursors {
					args := gql.ConnectionArgs{First: first, Last: last, After: after, Before: before}
					t.Run(fmt.Sprintf("%+v", argsString(args)), func(t *testing.T) {
						is := is.New(t)

						expect, err := gql.ConnectionFromArray(arrayABCDE, args)
						is.NoErr(err)

						start, end, err := gql.Bounds(args, len(arrayABCDE))
						is.NoErr(err)
						is.True(0 <= start && start <= end && end <= len(arrayABCDE))
						is.Equal(end-start, len(expect.Edges))

						c, err := gql.ConnectionFromSlice(arrayABCDE[start:end], args, gql.ArraySliceMetaInfo{
							SliceStart:  start,
							ArrayLength: len(arrayABCDE),
						})
						is.NoErr(err)
						is.Equal(c, expect)
					})
				}
			}
		}
	}
}

func argsString(args gql.ConnectionArgs) string {
	b, _ := json.Marshal(args)
	return string(b)
}

func TestCursorForObjectInConnection(t *testing.T) {
	is := is.New(t)

	is.Equal(gql.CursorForObjectInConnection(arrayABCDE, "B"), at(1))
	is.True(gql.CursorForObjectInConnection(arrayABCDE, "Z") == nil)
	is.True(gql.CursorForObjectInConnection([]string(nil), "A") == nil)

	// first match wins
	is.Equal(gql.CursorForObjectInConnection([]string{"A", "B", "A"}, "A"), at(0))

	type letter struct {
		Name  string
		Other []string
	}
	letters := []letter{{Name: "A"}, {Name: "B"}, {Name: "C"}}
	is.Equal(gql.CursorForObjectInConnectionFunc(letters, func(l letter) bool { return l.Name == "C" }), at(2))
	is.True(gql.CursorForObjectInConnectionFunc(letters, func(l letter) bool { return l.Name == "Z" }) == nil)
}

func TestEmptyConnection(t *testing.T) {
	is := is.New(t)

	is.Equal(gql.EmptyConnection[string](), page(0, "", false, false))
}

func TestWireNames(t *testing.T) {
	is := is.New(t)

	c, err := gql.ConnectionFromArray(arrayABCDE, gql.ConnectionArgs{First: gql.Int(1)})
	is.NoErr(err)

	b, err := json.Marshal(c)
	is.NoErr(err)
	is.Equal(string(b), `{"edges":[{"node":"A","cursor":"YXJyYXljb25uZWN0aW9uOjA="}],`+
		`"pageInfo":{"startCursor":"YXJyYXljb25uZWN0aW9uOjA=","endCursor":"YXJyYXljb25uZWN0aW9uOjA=",`+
		`"hasPreviousPage":false,"hasNextPage":true}}`)

	m := c.ToMap()
	is.Equal(m["edges"], []map[string]any{{"node": "A", "cursor": "YXJyYXljb25uZWN0aW9uOjA="}})
	is.Equal(m["pageInfo"], map[string]any{
		"startCursor":     "YXJyYXljb25uZWN0aW9uOjA=",
		"endCursor":       "YXJyYXljb25uZWN0aW9uOjA=",
		"hasPreviousPage": false,
		"hasNextPage":     true,
	})

	empty := gql.EmptyConnection[string]().ToMap()
	is.Equal(empty["pageInfo"].(map[string]any)["startCursor"], nil)

	b, err = json.Marshal(gql.EmptyConnection[string]())
	is.NoErr(err)
	is.Equal(string(b), `{"edges":[],"pageInfo":{"startCursor":null,"endCursor":null,"hasPreviousPage":false,"hasNextPage":false}}`)
}
