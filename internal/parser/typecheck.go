package parser

import (
	"github.com/musinux/intech/internal/ast"
	"github.com/musinux/intech/internal/diag"
)

// typeOf computes the type of an expression node, checking every binary
// operator's operand types as it descends. The checker is deliberately
// non-inferring: every leaf already carries its type (a literal is always
// entier, a VariableRef carries the type it was declared with, a FnCall
// carries its callee's declared return type), so typeOf only ever
// combines known types, never guesses one.
func (p *Parser) typeOf(n ast.Node) (ast.Type, error) {
	switch v := n.(type) {
	case *ast.IntegerLit:
		return ast.Integer, nil

	case *ast.VariableRef:
		return v.Typ, nil

	case *ast.FnCall:
		return v.ResultType, nil

	case *ast.Paren:
		return p.typeOf(v.Inner)

	case *ast.Binary:
		return p.typeOfBinary(v)

	default:
		return 0, p.errorf(diag.Type, "cannot determine the type of this expression")
	}
}

func (p *Parser) typeOfBinary(b *ast.Binary) (ast.Type, error) {
	lt, err := p.typeOf(b.Left)
	if err != nil {
		return 0, err
	}
	rt, err := p.typeOf(b.Right)
	if err != nil {
		return 0, err
	}

	switch {
	case b.Op.IsArithmetic():
		if lt != ast.Integer || rt != ast.Integer {
			return 0, p.errorf(diag.Type, "operator %s requires entier operands, got %s and %s", b.Op, lt, rt)
		}
		return ast.Integer, nil

	case b.Op.IsComparison():
		if lt != ast.Integer || rt != ast.Integer {
			return 0, p.errorf(diag.Type, "operator %s requires entier operands, got %s and %s", b.Op, lt, rt)
		}
		return ast.Boolean, nil

	default: // logical: ET, OU
		if lt != ast.Boolean || rt != ast.Boolean {
			return 0, p.errorf(diag.Type, "operator %s requires boolean operands, got %s and %s", b.Op, lt, rt)
		}
		return ast.Boolean, nil
	}
}

// stmtsAlwaysReturn reports whether every control path through stmts ends
// in a Return, the structural check required before an entier function's
// body is accepted.
func stmtsAlwaysReturn(stmts []ast.Node) bool {
	for _, s := range stmts {
		if stmtAlwaysReturns(s) {
			return true
		}
	}
	return false
}

func stmtAlwaysReturns(s ast.Node) bool {
	switch n := s.(type) {
	case *ast.Return:
		return true
	case *ast.CompoundStmt:
		return stmtsAlwaysReturn(n.Stmts)
	case *ast.Branch:
		if n.Invalid == nil {
			return false
		}
		return stmtAlwaysReturns(n.Valid) && stmtAlwaysReturns(n.Invalid)
	default:
		// Loop bodies are never guaranteed to execute (the condition may
		// be false on entry), so a while loop never satisfies the check
		// by itself.
		return false
	}
}
