package gql

import (
	"encoding/json"
	"fmt"
	stdmath "math"
	"strconv"

	"go.uber.org/multierr"

	"github.com/sour-is/relay/pkg/set"
)

// ConnectionArgs are the pagination arguments of a connection field. A nil
// field was not supplied.
type ConnectionArgs struct {
	Before *Cursor `json:"before,omitempty"`
	After  *Cursor `json:"after,omitempty"`
	First  *int    `json:"first,omitempty"`
	Last   *int    `json:"last,omitempty"`
}

var (
	// ForwardConnectionArgs are the arguments of a connection paged forwards.
	ForwardConnectionArgs = set.New("after", "first")
	// BackwardConnectionArgs are the arguments of a connection paged backwards.
	BackwardConnectionArgs = set.New("before", "last")
	// ConnectionArgNames are all arguments understood by ConnectionArgs.
	ConnectionArgNames = ForwardConnectionArgs.Union(BackwardConnectionArgs)
)

// Int returns a pointer to i, for building ConnectionArgs literals.
func Int(i int) *int { return &i }

// Validate reports a negative first or last as ErrInvalidArgument.
func (args ConnectionArgs) Validate() error {
	var errs error
	if args.First != nil && *args.First < 0 {
		errs = multierr.Append(errs, fmt.Errorf("%w: argument 'first' must be a non-negative integer", ErrInvalidArgument))
	}
	if args.Last != nil && *args.Last < 0 {
		errs = multierr.Append(errs, fmt.Errorf("%w: argument 'last' must be a non-negative integer", ErrInvalidArgument))
	}
	return errs
}

// ArgsFromMap reads connection arguments from a loosely typed argument map,
// as handed to resolvers by most GraphQL executors. Keys other than those in
// ConnectionArgNames are ignored and nil values count as absent.
func ArgsFromMap(m map[string]any) (ConnectionArgs, error) {
	var args ConnectionArgs
	var errs, err error

	for name, v := range m {
		if !ConnectionArgNames.Has(name) || v == nil {
			continue
		}

		switch name {
		case "before":
			args.Before, err = toCursor(name, v)
		case "after":
			args.After, err = toCursor(name, v)
		case "first":
			args.First, err = toInt(name, v)
		case "last":
			args.Last, err = toInt(name, v)
		}
		errs = multierr.Append(errs, err)
	}

	return args, errs
}

func toCursor(name string, v any) (*Cursor, error) {
	switch c := v.(type) {
	case string:
		return (*Cursor)(&c), nil
	case Cursor:
		return &c, nil
	case *string:
		return (*Cursor)(c), nil
	case *Cursor:
		return c, nil
	}
	return nil, fmt.Errorf("%w: argument '%s' must be a string, got %T", ErrInvalidArgument, name, v)
}

func toInt(name string, v any) (*int, error) {
	var i int
	switch n := v.(type) {
	case int:
		i = n
	case int8:
		i = int(n)
	case int16:
		i = int(n)
	case int32:
		i = int(n)
	case int64:
		if n < stdmath.MinInt || n > stdmath.MaxInt {
			return nil, errRange(name, n)
		}
		i = int(n)
	case uint:
		return toInt(name, uint64(n))
	case uint8:
		i = int(n)
	case uint16:
		i = int(n)
	case uint32:
		return toInt(name, uint64(n))
	case uint64:
		if n > stdmath.MaxInt {
			return nil, errRange(name, n)
		}
		i = int(n)
	case float32:
		return toInt(name, float64(n))
	case float64:
		if n != stdmath.Trunc(n) {
			return nil, fmt.Errorf("%w: argument '%s' must be an integer, got %v", ErrInvalidArgument, name, n)
		}
		// float64(MinInt) is exact; MaxInt rounds up to -MinInt.
		if n < float64(stdmath.MinInt) || n >= -float64(stdmath.MinInt) {
			return nil, errRange(name, n)
		}
		i = int(n)
	case json.Number:
		v, err := n.Int64()
		if err != nil {
			return nil, fmt.Errorf("%w: argument '%s' must be an integer: %v", ErrInvalidArgument, name, err)
		}
		return toInt(name, v)
	case string:
		v, err := strconv.Atoi(n)
		if err != nil {
			return nil, fmt.Errorf("%w: argument '%s' must be an integer: %v", ErrInvalidArgument, name, err)
		}
		i = v
	case *int:
		return n, nil
	default:
		return nil, fmt.Errorf("%w: argument '%s' must be an integer, got %T", ErrInvalidArgument, name, v)
	}
	return &i, nil
}

func errRange(name string, v any) error {
	return fmt.Errorf("%w: argument '%s' is out of range: %v", ErrInvalidArgument, name, v)
}
