package tac

import (
	"github.com/pkg/errors"

	"github.com/musinux/intech/internal/ast"
	"github.com/musinux/intech/internal/symtab"
)

func (c *Context) lowerFunction(fn *ast.Function, ftab *symtab.Table) error {
	c.ftab = ftab
	c.emit("%s:", fn.Name)

	syms := ftab.InOrder()
	total := 8 * (len(syms) + 1)
	c.emit("ADD_STACK $%d", total)

	for i, sym := range syms {
		off := 8 + 8*i
		sym.RelPos = uint64(off)
		switch sym.Kind {
		case symtab.KindParam:
			c.emit("LOAD_ARG $%d %s", off, sym.Name)
		case symtab.KindVar:
			c.emit("DECL_LOCAL $%d %s", off, sym.Name)
		}
	}

	for _, stmt := range fn.Body {
		if err := c.lowerStmt(stmt); err != nil {
			return errors.Wrapf(err, "function %q", fn.Name)
		}
	}
	return nil
}

func (c *Context) lowerStmt(stmt ast.Node) error {
	switch n := stmt.(type) {
	case *ast.Declaration:
		return c.lowerDeclaration(n)

	case *ast.Assignment:
		return c.lowerAssignment(n.LValue.Name, n.RValue)

	case *ast.Return:
		if n.Expr == nil {
			c.emit("RETURN")
			return nil
		}
		t, err := c.lowerExpr(n.Expr)
		if err != nil {
			return err
		}
		c.emit("RETURN %s", t)
		c.release(t)
		return nil

	case *ast.Branch:
		return c.lowerBranch(n)

	case *ast.Loop:
		return c.lowerLoop(n)

	case *ast.CompoundStmt:
		for _, child := range n.Stmts {
			if err := c.lowerStmt(child); err != nil {
				return err
			}
		}
		return nil

	default:
		// A bare expression statement: lower it and discard the result.
		t, err := c.lowerExpr(stmt)
		if err != nil {
			return err
		}
		c.release(t)
		return nil
	}
}

func (c *Context) lowerDeclaration(decl *ast.Declaration) error {
	if decl.RValue == nil {
		return nil
	}
	return c.lowerAssignment(decl.LValue.Name, decl.RValue)
}

// lowerAssignment lowers rvalue and stores it into the local/param named
// lvalue. If rvalue lowers directly to a bare memory name (no computation
// happened, e.g. "x = y;"), it is routed through a fresh temporary first:
// an ASSIGN whose source and destination are both stack slots cannot be
// translated to a single movq (§4.3.3 forbids stack-to-stack moves).
func (c *Context) lowerAssignment(lvalue string, rvalue ast.Node) error {
	t, err := c.lowerExpr(rvalue)
	if err != nil {
		return err
	}

	if c.isMemory(t) {
		tmp := c.newTemp()
		c.emit("%s = %s", tmp, t)
		t = tmp
	}

	c.emit("ASSIGN %s %s", t, lvalue)
	c.release(t)
	return nil
}

func (c *Context) lowerExpr(node ast.Node) (string, error) {
	switch n := node.(type) {
	case *ast.IntegerLit:
		return immediate(n.Value), nil

	case *ast.VariableRef:
		return n.Name, nil

	case *ast.Paren:
		return c.lowerExpr(n.Inner)

	case *ast.Binary:
		return c.lowerBinaryExpr(n)

	case *ast.FnCall:
		return c.lowerCall(n)

	default:
		return "", errors.Errorf("cannot lower expression node %T", node)
	}
}

func (c *Context) lowerBinaryExpr(b *ast.Binary) (string, error) {
	if !b.Op.IsArithmetic() {
		return "", errors.Errorf("operator %s cannot appear outside a condition", b.Op)
	}

	a, err := c.lowerExpr(b.Left)
	if err != nil {
		return "", err
	}
	rhs, err := c.lowerExpr(b.Right)
	if err != nil {
		return "", err
	}

	t := c.newTemp()
	c.emit("%s = %s %s %s", t, a, b.Op, rhs)
	c.release(a)
	c.release(rhs)
	return t, nil
}

func (c *Context) lowerCall(call *ast.FnCall) (string, error) {
	args := make([]string, len(call.Args))
	for i, arg := range call.Args {
		a, err := c.lowerExpr(arg)
		if err != nil {
			return "", err
		}
		args[i] = a
	}
	for _, a := range args {
		c.emit("PARAM %s", a)
	}

	dest := ""
	if call.ResultType != ast.Void {
		dest = c.newTemp()
		c.emit("CALL %s %s", call.Name, dest)
	} else {
		c.emit("CALL %s", call.Name)
	}

	for _, a := range args {
		c.release(a)
	}
	return dest, nil
}
