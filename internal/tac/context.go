// Package tac lowers a checked AST into the compiler's three-address-code
// text form: one function at a time, allocating temporaries and labels
// and threading jumps for short-circuit boolean conditions.
package tac

import (
	"container/list"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/musinux/intech/internal/ast"
	"github.com/musinux/intech/internal/symtab"
)

// Context carries the state threaded through lowering of an entire
// program: label numbering is global (so emitted .L<k> symbols never
// collide across functions sharing one assembly file), while temporary
// numbering and the release queue are reset per function, since two
// functions never execute concurrently and can safely reuse the same
// register indices.
type Context struct {
	tmpCounter   int
	labelCounter int
	free         *list.List // FIFO of released tmp<k> names, oldest first

	// ftab is the symbol table of the function currently being lowered,
	// re-pointed at the top of each lowerFunction call. isMemory
	// resolves operand names against it rather than against a naming
	// convention, matching spec.md §4.2.6's definition: "a memory
	// operand is one whose name resolves to a symbol in the enclosing
	// function table" — a variable legally named "tmp0" must still
	// resolve as memory, not as a compiler-allocated temporary.
	ftab *symtab.Table

	out *strings.Builder
	log *zap.SugaredLogger
}

// NewContext returns a Context ready to lower a program. A nil logger is
// replaced with a no-op one.
func NewContext(log *zap.SugaredLogger) *Context {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Context{free: list.New(), out: &strings.Builder{}, log: log}
}

// Lower lowers every function in fns, in order, and returns the
// concatenated TAC text. global is the parser's function table, used to
// recover each function's per-function symbol table for prologue
// emission.
func Lower(fns []*ast.Function, global *symtab.Table, log *zap.SugaredLogger) (string, error) {
	c := NewContext(log)
	for _, fn := range fns {
		sym, ok := global.Lookup(fn.Name)
		if !ok || sym.FuncTable == nil {
			return "", fmt.Errorf("internal error: no function table recorded for %q", fn.Name)
		}

		c.tmpCounter = 0
		c.free.Init()

		if err := c.lowerFunction(fn, sym.FuncTable); err != nil {
			return "", err
		}
		c.log.Debugw("lowered function to TAC", "function", fn.Name)
	}
	return c.out.String(), nil
}

func (c *Context) emit(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

// newTemp allocates a temporary name, preferring a previously released
// one (oldest first) over minting a new index. A freshly minted name is
// checked against the current function's symbol table: a user local or
// parameter is free to be named e.g. "tmp0", and if the counter would
// mint that exact string the two would be indistinguishable once both
// appear as bare text in the same TAC stream, so the counter is advanced
// past any index that collides with a real declared name.
func (c *Context) newTemp() string {
	if front := c.free.Front(); front != nil {
		c.free.Remove(front)
		return front.Value.(string)
	}
	t := c.mintTemp()
	for c.ftab != nil {
		if _, ok := c.ftab.Lookup(t); !ok {
			break
		}
		t = c.mintTemp()
	}
	return t
}

func (c *Context) mintTemp() string {
	t := fmt.Sprintf("tmp%d", c.tmpCounter)
	c.tmpCounter++
	return t
}

// release returns a lowered operand to the pool if it names a temporary;
// variable names, immediates and the empty result of a void call are
// simply discarded, matching §4.2.2's release rule.
func (c *Context) release(name string) {
	if name == "" || isImmediate(name) || c.isMemory(name) {
		return
	}
	c.free.PushBack(name)
}

// isMemory reports whether operand names a symbol declared in the
// function currently being lowered (a local or a parameter), as opposed
// to an immediate or a compiler-allocated temporary. Per spec.md
// §4.2.6, this is a symbol-table lookup, not a naming convention: a
// local legally named "tmp0" must still resolve as memory.
func (c *Context) isMemory(operand string) bool {
	if isImmediate(operand) {
		return false
	}
	_, ok := c.ftab.Lookup(operand)
	return ok
}

func (c *Context) newLabel() string {
	l := fmt.Sprintf("L%d", c.labelCounter)
	c.labelCounter++
	return l
}
