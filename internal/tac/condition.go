package tac

import (
	"github.com/pkg/errors"

	"github.com/musinux/intech/internal/ast"
)

// condKind records which logical connective enclosed the node currently
// being lowered, needed only to resolve the asymmetry in OR's
// right-child-leaf rule (see lowerOr).
type condKind int

const (
	condAnd condKind = iota
	condOr
)

func (c *Context) lowerBranch(branch *ast.Branch) error {
	lAfter := c.newLabel()
	if err := c.lowerBranchArm(branch, lAfter); err != nil {
		return err
	}
	c.emit("%s:", lAfter)
	return nil
}

// lowerBranchArm lowers one "si"/"sinon si" arm and, if its invalid side
// is itself a Branch (an "sinon si" chain), recurses into it.
func (c *Context) lowerBranchArm(branch *ast.Branch, lAfter string) error {
	lTrue := c.newLabel()
	lFalse := lAfter
	if branch.Invalid != nil {
		lFalse = c.newLabel()
	}

	if err := c.lowerCond(branch.Condition, &lTrue, &lFalse, condAnd); err != nil {
		return err
	}

	c.emit("%s:", lTrue)
	if err := c.lowerStmt(branch.Valid); err != nil {
		return err
	}

	if branch.Invalid == nil {
		return nil
	}

	c.emit("JUMP %s", lAfter)
	c.emit("%s:", lFalse)

	if chained, ok := branch.Invalid.(*ast.Branch); ok {
		return c.lowerBranchArm(chained, lAfter)
	}
	return c.lowerStmt(branch.Invalid)
}

func (c *Context) lowerLoop(loop *ast.Loop) error {
	lStart := c.newLabel()
	lTrue := c.newLabel()
	lFalse := c.newLabel()

	c.emit("%s:", lStart)
	if err := c.lowerCond(loop.Condition, &lTrue, &lFalse, condAnd); err != nil {
		return err
	}
	c.emit("%s:", lTrue)
	if err := c.lowerStmt(loop.Body); err != nil {
		return err
	}
	c.emit("JUMP %s", lStart)
	c.emit("%s:", lFalse)
	return nil
}

// isLeafCond reports whether node is a comparison — the base case of
// condition lowering — as opposed to an ET/OU combinator.
func isLeafCond(node ast.Node) bool {
	if p, ok := node.(*ast.Paren); ok {
		return isLeafCond(p.Inner)
	}
	b, ok := node.(*ast.Binary)
	return ok && b.Op.IsComparison()
}

// lowerCond implements the recursive short-circuit condition lowering of
// §4.2.5. At most one of lt/lf is nil at a leaf call: the nil side is
// the fall-through outcome, reached by placing no jump and relying on the
// caller to emit that label's code immediately next. When a comparison is
// the whole condition both are set, and the leaf jumps to lf on failure.
func (c *Context) lowerCond(node ast.Node, lt, lf *string, parent condKind) error {
	if p, ok := node.(*ast.Paren); ok {
		return c.lowerCond(p.Inner, lt, lf, parent)
	}

	b, ok := node.(*ast.Binary)
	if !ok {
		return errors.Errorf("condition lowering reached a non-boolean node %T", node)
	}

	switch {
	case b.Op.IsComparison():
		return c.lowerComparisonLeaf(b, lt, lf)
	case b.Op == ast.And:
		return c.lowerAnd(b, lt, lf)
	case b.Op == ast.Or:
		return c.lowerOr(b, lt, lf, parent)
	default:
		return errors.Errorf("operator %s cannot appear in a condition", b.Op)
	}
}

func (c *Context) lowerAnd(b *ast.Binary, lt, lf *string) error {
	lBetween := c.newLabel()

	if isLeafCond(b.Left) {
		if err := c.lowerCond(b.Left, nil, lf, condAnd); err != nil {
			return err
		}
	} else if err := c.lowerCond(b.Left, &lBetween, lf, condAnd); err != nil {
		return err
	}
	c.emit("%s:", lBetween)

	if isLeafCond(b.Right) {
		return c.lowerCond(b.Right, nil, lf, condAnd)
	}
	return c.lowerCond(b.Right, lt, lf, condAnd)
}

func (c *Context) lowerOr(b *ast.Binary, lt, lf *string, parent condKind) error {
	lBetween := c.newLabel()

	if isLeafCond(b.Left) {
		if err := c.lowerCond(b.Left, lt, nil, condOr); err != nil {
			return err
		}
	} else if err := c.lowerCond(b.Left, lt, &lBetween, condOr); err != nil {
		return err
	}
	c.emit("%s:", lBetween)

	if isLeafCond(b.Right) {
		if parent == condOr {
			return c.lowerCond(b.Right, lt, nil, condOr)
		}
		return c.lowerCond(b.Right, nil, lf, condOr)
	}
	return c.lowerCond(b.Right, lt, lf, condOr)
}

// lowerComparisonLeaf emits the normalized COMPARE for a leaf comparison
// and the single jump the §4.2.5 leaf rule calls for.
func (c *Context) lowerComparisonLeaf(b *ast.Binary, lt, lf *string) error {
	a, err := c.lowerExpr(b.Left)
	if err != nil {
		return err
	}
	rhs, err := c.lowerExpr(b.Right)
	if err != nil {
		return err
	}

	op := b.Op
	opA, opB := a, rhs
	extra := "" // a temp minted solely to satisfy operand-form rules

	switch {
	case !c.isMemory(a) && isImmediate(rhs):
		extra = c.newTemp()
		c.emit("%s = %s", extra, rhs)
		opB = extra
	case !c.isMemory(a):
		// a is already immediate-or-temporary and b needs no rewriting.
	case !c.isMemory(rhs):
		opA, opB = rhs, a
		op = op.Swap()
	default:
		extra = c.newTemp()
		c.emit("%s = %s", extra, a)
		opA = extra
	}

	c.emit("COMPARE %s %s", opA, opB)
	c.release(a)
	c.release(rhs)
	if extra != "" {
		c.release(extra)
	}

	if lf != nil {
		c.emit("JUMP_%s %s", jumpCond(op.Negate()), *lf)
	} else {
		c.emit("JUMP_%s %s", jumpCond(op), *lt)
	}
	return nil
}

func jumpCond(op ast.BinOp) string {
	switch op {
	case ast.Lt:
		return "LT"
	case ast.Lte:
		return "LTE"
	case ast.Gt:
		return "GT"
	case ast.Gte:
		return "GTE"
	case ast.Eq:
		return "EQ"
	case ast.Neq:
		return "NEQ"
	default:
		panic("jumpCond: not a comparison operator: " + op.String())
	}
}
