package ast

import "testing"

func TestBinOpNegate(t *testing.T) {
	tests := []struct {
		op   BinOp
		want BinOp
	}{
		{Lt, Gte},
		{Lte, Gt},
		{Gt, Lte},
		{Gte, Lt},
		{Eq, Neq},
		{Neq, Eq},
	}
	for _, tt := range tests {
		if got := tt.op.Negate(); got != tt.want {
			t.Errorf("%s.Negate() = %s, want %s", tt.op, got, tt.want)
		}
	}
	if Lt.Negate().Negate() != Lt {
		t.Errorf("Negate is not its own inverse")
	}
}

func TestBinOpSwap(t *testing.T) {
	tests := []struct {
		op   BinOp
		want BinOp
	}{
		{Lt, Gt},
		{Gt, Lt},
		{Lte, Gte},
		{Gte, Lte},
		{Eq, Eq},
		{Neq, Neq},
	}
	for _, tt := range tests {
		if got := tt.op.Swap(); got != tt.want {
			t.Errorf("%s.Swap() = %s, want %s", tt.op, got, tt.want)
		}
	}
}

func TestBinOpClassification(t *testing.T) {
	arithmetic := []BinOp{Add, Sub, Mul, Div}
	for _, op := range arithmetic {
		if !op.IsArithmetic() || op.IsComparison() || op.IsLogical() {
			t.Errorf("%s misclassified", op)
		}
	}

	comparisons := []BinOp{Lt, Lte, Gt, Gte, Eq, Neq}
	for _, op := range comparisons {
		if !op.IsComparison() || op.IsArithmetic() || op.IsLogical() {
			t.Errorf("%s misclassified", op)
		}
	}

	logical := []BinOp{And, Or}
	for _, op := range logical {
		if !op.IsLogical() || op.IsArithmetic() || op.IsComparison() {
			t.Errorf("%s misclassified", op)
		}
	}
}

func TestTypeString(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{Integer, "entier"},
		{Void, "rien"},
		{Boolean, "boolean"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("%v.String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}
