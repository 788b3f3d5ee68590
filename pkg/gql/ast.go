package gql

import (
	"errors"
	"fmt"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

var ErrFieldNotFound = errors.New("field not found")

// MarshalCursor lets gqlgen bind Cursor to a schema scalar.
func MarshalCursor(c Cursor) graphql.Marshaler {
	return graphql.MarshalString(string(c))
}

// UnmarshalCursor lets gqlgen bind Cursor to a schema scalar.
func UnmarshalCursor(v interface{}) (Cursor, error) {
	s, err := graphql.UnmarshalString(v)
	return Cursor(s), err
}

// ArgsFromField reads the connection arguments given to a parsed field,
// resolving variables from vars.
func ArgsFromField(field *ast.Field, vars map[string]interface{}) (ConnectionArgs, error) {
	m := make(map[string]any, len(field.Arguments))
	for _, arg := range field.Arguments {
		if !ConnectionArgNames.Has(arg.Name) {
			continue
		}
		v, err := arg.Value.Value(vars)
		if err != nil {
			return ConnectionArgs{}, fmt.Errorf("%w: argument '%s': %v", ErrInvalidArgument, arg.Name, err)
		}
		m[arg.Name] = v
	}
	return ArgsFromMap(m)
}

// ArgsFromQuery parses query and returns the connection arguments of the
// first field whose alias or name is fieldName.
func ArgsFromQuery(query, fieldName string, vars map[string]interface{}) (ConnectionArgs, error) {
	doc, gerr := parser.ParseQuery(&ast.Source{Input: query})
	if gerr != nil {
		return ConnectionArgs{}, gerr
	}

	for _, op := range doc.Operations {
		if field := findField(op.SelectionSet, fieldName); field != nil {
			return ArgsFromField(field, vars)
		}
	}
	for _, frag := range doc.Fragments {
		if field := findField(frag.SelectionSet, fieldName); field != nil {
			return ArgsFromField(field, vars)
		}
	}

	return ConnectionArgs{}, fmt.Errorf("%w: %s", ErrFieldNotFound, fieldName)
}

func findField(set ast.SelectionSet, name string) *ast.Field {
	for _, sel := range set {
		switch sel := sel.(type) {
		case *ast.Field:
			if sel.Alias == name || sel.Name == name {
				return sel
			}
			if f := findField(sel.SelectionSet, name); f != nil {
				return f
			}
		case *ast.InlineFragment:
			if f := findField(sel.SelectionSet, name); f != nil {
				return f
			}
		}
	}
	return nil
}
