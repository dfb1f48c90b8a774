// Package symtab implements the two symbol-table scopes the parser
// builds: a single global table of functions, and one function table per
// Function symbol holding its parameters and locals in declaration order.
package symtab

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/musinux/intech/internal/ast"
)

// Kind identifies what a Symbol denotes.
type Kind int

const (
	KindFunction Kind = iota
	KindVar
	KindParam
)

// Symbol is one entry in a Table.
type Symbol struct {
	Name string
	Kind Kind

	// Attributes points at the AST node the symbol was declared from: a
	// *ast.Function for KindFunction, a *ast.VariableRef for the others.
	Attributes ast.Node

	// RelPos is the byte offset from the frame base. It is zero until
	// the TAC lowerer assigns it; symbol tables are built at parse
	// time, before any notion of a stack frame exists.
	RelPos uint64

	// FuncTable holds the Param/Var symbols of this function. Only
	// non-nil when Kind == KindFunction.
	FuncTable *Table
}

// Table is an insertion-ordered, name-unique symbol scope.
type Table struct {
	order   []string
	symbols map[string]*Symbol
}

// New returns an empty table.
func New() *Table {
	return &Table{symbols: make(map[string]*Symbol)}
}

// Insert adds sym to the table. It is an error to insert a symbol whose
// name already exists in this table.
func (t *Table) Insert(sym *Symbol) error {
	if _, exists := t.symbols[sym.Name]; exists {
		return fmt.Errorf("%q is already declared in this scope", sym.Name)
	}
	t.symbols[sym.Name] = sym
	t.order = append(t.order, sym.Name)
	return nil
}

// Lookup returns the symbol named name and true, or (nil, false) if no
// such symbol exists in this table.
func (t *Table) Lookup(name string) (*Symbol, bool) {
	sym, ok := t.symbols[name]
	return sym, ok
}

// InOrder returns the table's symbols in declaration order.
func (t *Table) InOrder() []*Symbol {
	return lo.Map(t.order, func(name string, _ int) *Symbol {
		return t.symbols[name]
	})
}

// Len reports the number of symbols in the table.
func (t *Table) Len() int {
	return len(t.order)
}
