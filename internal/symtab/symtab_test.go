package symtab

import (
	"testing"

	"github.com/musinux/intech/internal/ast"
)

func TestInsertAndLookup(t *testing.T) {
	tab := New()

	ref := &ast.VariableRef{Name: "x", Typ: ast.Integer}
	if err := tab.Insert(&Symbol{Name: "x", Kind: KindVar, Attributes: ref}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	sym, ok := tab.Lookup("x")
	if !ok {
		t.Fatalf("Lookup(%q) failed", "x")
	}
	if sym.Kind != KindVar {
		t.Errorf("Kind = %v, want KindVar", sym.Kind)
	}

	if _, ok := tab.Lookup("y"); ok {
		t.Errorf("Lookup(%q) unexpectedly succeeded", "y")
	}
}

func TestInsertDuplicateFails(t *testing.T) {
	tab := New()
	sym := &Symbol{Name: "x", Kind: KindVar, Attributes: &ast.VariableRef{Name: "x", Typ: ast.Integer}}

	if err := tab.Insert(sym); err != nil {
		t.Fatalf("first Insert: %v", err)
	}
	if err := tab.Insert(sym); err == nil {
		t.Fatalf("second Insert of %q succeeded, want an error", "x")
	}
}

func TestInOrderPreservesDeclarationOrder(t *testing.T) {
	tab := New()
	names := []string{"c", "a", "b"}
	for _, n := range names {
		if err := tab.Insert(&Symbol{Name: n, Kind: KindParam, Attributes: &ast.VariableRef{Name: n}}); err != nil {
			t.Fatalf("Insert(%q): %v", n, err)
		}
	}

	got := tab.InOrder()
	if len(got) != len(names) {
		t.Fatalf("InOrder() returned %d symbols, want %d", len(got), len(names))
	}
	for i, want := range names {
		if got[i].Name != want {
			t.Errorf("InOrder()[%d].Name = %q, want %q", i, got[i].Name, want)
		}
	}
	if tab.Len() != len(names) {
		t.Errorf("Len() = %d, want %d", tab.Len(), len(names))
	}
}
