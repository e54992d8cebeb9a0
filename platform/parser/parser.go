// Package parser turns call syntax such as `now("test")` or
// `concat("a", last())` into expression trees.
//
// Only function calls, string literals and integer literals are accepted.
// Function names resolve through a registry at parse time; names containing
// '-' are reachable through their registered identifier-safe aliases.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/expr-lang/expr/ast"
	exprParser "github.com/expr-lang/expr/parser"

	"github.com/robbyt/go-xfn/platform/expr"
	"github.com/robbyt/go-xfn/platform/registry"
	"github.com/robbyt/go-xfn/platform/value"
)

var (
	ErrSyntax            = errors.New("syntax error")
	ErrUnsupportedSyntax = errors.New("unsupported syntax")
	ErrUnknownFunction   = registry.ErrUnknownFunction
)

// Resolver looks up functions by name. *registry.Registry implements it.
type Resolver interface {
	Lookup(name string) (expr.Function, error)
}

// Parse parses source into an expression tree.
func Parse(source string, r Resolver) (expr.Expression, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrSyntax)
	}
	if r == nil {
		return nil, fmt.Errorf("resolver is nil")
	}

	tree, err := exprParser.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	return convert(tree.Node, r)
}

func convert(node ast.Node, r Resolver) (expr.Expression, error) {
	switch n := node.(type) {
	case *ast.StringNode:
		return expr.NewLiteral(value.Str(n.Value)), nil
	case *ast.IntegerNode:
		return expr.NewLiteral(value.Integer(int64(n.Value))), nil
	case *ast.UnaryNode:
		if n.Operator == "-" {
			if i, ok := n.Node.(*ast.IntegerNode); ok {
				return expr.NewLiteral(value.Integer(-int64(i.Value))), nil
			}
		}
		return nil, fmt.Errorf("%w: unary %q", ErrUnsupportedSyntax, n.Operator)
	case *ast.CallNode:
		callee, ok := n.Callee.(*ast.IdentifierNode)
		if !ok {
			return nil, fmt.Errorf("%w: callee %T", ErrUnsupportedSyntax, n.Callee)
		}
		return call(callee.Value, n.Arguments, r)
	case *ast.BuiltinNode:
		// names shared with the expr-lang builtins (now, last, concat)
		// are parsed as builtin nodes but resolve like any other call
		return call(n.Name, n.Arguments, r)
	case *ast.IdentifierNode:
		return nil, fmt.Errorf("%w: bare identifier %q, expected a call", ErrUnsupportedSyntax, n.Value)
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedSyntax, node)
}

func call(name string, argNodes []ast.Node, r Resolver) (expr.Expression, error) {
	fn, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	args := make([]expr.Expression, len(argNodes))
	for i, a := range argNodes {
		arg, err := convert(a, r)
		if err != nil {
			return nil, fmt.Errorf("argument %d of %s(): %w", i+1, name, err)
		}
		args[i] = arg
	}
	return expr.NewCall(fn, args...), nil
}
