package tac

import (
	"strings"
	"testing"

	"github.com/musinux/intech/internal/lexer"
	"github.com/musinux/intech/internal/parser"
)

func lower(t *testing.T, src string) []string {
	t.Helper()
	p := parser.New(lexer.New(src))
	fns, global, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	out, err := Lower(fns, global, nil)
	if err != nil {
		t.Fatalf("Lower: unexpected error: %v", err)
	}
	var lines []string
	for _, l := range strings.Split(out, "\n") {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func containsLine(lines []string, substr string) bool {
	for _, l := range lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

func TestPrologueEmitsFrameAndArgs(t *testing.T) {
	lines := lower(t, `fonction carre(entier x): entier { retourner x * x; }`)

	if lines[0] != "carre:" {
		t.Fatalf("lines[0] = %q, want %q", lines[0], "carre:")
	}
	if !containsLine(lines, "ADD_STACK $16") {
		t.Errorf("expected an ADD_STACK $16 line, got %v", lines)
	}
	if !containsLine(lines, "LOAD_ARG $8 x") {
		t.Errorf("expected LOAD_ARG $8 x, got %v", lines)
	}
}

func TestDeclarationWithoutInitializerEmitsNothing(t *testing.T) {
	lines := lower(t, `fonction f(): entier { entier x; retourner 0; }`)
	if containsLine(lines, "ASSIGN") {
		t.Errorf("declaration without initializer must not emit ASSIGN, got %v", lines)
	}
}

func TestAssignmentOfBareVariableGoesThroughATemp(t *testing.T) {
	// "y = x;" lowers x to the bare name "x"; ASSIGN x y would be an
	// illegal stack-to-stack move, so a temp must be interposed.
	lines := lower(t, `fonction f(entier x): entier {
		entier y = 0;
		y = x;
		retourner y;
	}`)

	for i, l := range lines {
		if strings.HasPrefix(l, "ASSIGN ") {
			fields := strings.Fields(l)
			if fields[1] == "x" {
				t.Fatalf("line %d: ASSIGN source is a bare memory name: %q", i, l)
			}
		}
	}
}

func TestArithmeticAllocatesATemp(t *testing.T) {
	lines := lower(t, `fonction f(): entier { retourner 1 + 2; }`)
	if !containsLine(lines, "tmp0 = $1 + $2") {
		t.Errorf("expected tmp0 = $1 + $2, got %v", lines)
	}
	if !containsLine(lines, "RETURN tmp0") {
		t.Errorf("expected RETURN tmp0, got %v", lines)
	}
}

func TestFunctionCallLoweringOrder(t *testing.T) {
	lines := lower(t, `
		fonction carre(entier x): entier { retourner x * x; }
		fonction principal(): entier { retourner carre(4); }
	`)

	var paramIdx, callIdx int = -1, -1
	for i, l := range lines {
		if strings.HasPrefix(l, "PARAM") {
			paramIdx = i
		}
		if strings.HasPrefix(l, "CALL") {
			callIdx = i
		}
	}
	if paramIdx == -1 || callIdx == -1 || paramIdx >= callIdx {
		t.Fatalf("expected PARAM before CALL, got %v", lines)
	}
}

func TestVoidCallOmitsDestination(t *testing.T) {
	lines := lower(t, `
		fonction bruit(): rien { retourner; }
		fonction principal(): entier { bruit(); retourner 0; }
	`)
	if !containsLine(lines, "CALL bruit") {
		t.Errorf("expected a bare CALL bruit, got %v", lines)
	}
	for _, l := range lines {
		if strings.HasPrefix(l, "CALL bruit ") {
			t.Errorf("void call must not carry a destination: %q", l)
		}
	}
}

func TestCompareOperandFormBothMemoryRewritesLeft(t *testing.T) {
	lines := lower(t, `fonction f(entier a, entier b): entier {
		si (a < b) { retourner 1; }
		retourner 0;
	}`)

	for _, l := range lines {
		if strings.HasPrefix(l, "COMPARE") {
			fields := strings.Fields(l)
			y := fields[2]
			if !strings.HasPrefix(y, "tmp") && !strings.HasPrefix(y, "$") {
				// y resolving to a bare name is fine only if x is a temp;
				// the both-memory case must have rewritten x into a temp.
				x := fields[1]
				if !strings.HasPrefix(x, "tmp") {
					t.Errorf("COMPARE %s %s: both operands are memory, want the left rewritten to a temp", x, y)
				}
			}
		}
	}
}

func TestShortCircuitAndSkipsSecondComparisonStructurally(t *testing.T) {
	lines := lower(t, `fonction f(entier a, entier b, entier c): entier {
		si (a < b ET b < c) { retourner 1; }
		retourner 0;
	}`)

	compareCount := 0
	for _, l := range lines {
		if strings.HasPrefix(l, "COMPARE") {
			compareCount++
		}
	}
	if compareCount != 2 {
		t.Fatalf("expected exactly 2 COMPARE instructions (one per operand), got %d: %v", compareCount, lines)
	}
	// The first comparison's false jump must target the same label as the
	// second comparison's false jump, proving the first failure
	// short-circuits directly to the overall else branch rather than
	// falling into the second comparison.
	var jumps []string
	for _, l := range lines {
		if strings.HasPrefix(l, "JUMP_") {
			jumps = append(jumps, strings.Fields(l)[1])
		}
	}
	if len(jumps) < 2 {
		t.Fatalf("expected at least 2 conditional jumps, got %v", jumps)
	}
	if jumps[0] != jumps[1] {
		t.Errorf("expected both comparisons' false jumps to target the same label %q, got %v", jumps[0], jumps)
	}
}

func TestVariableNamedLikeATempIsNotTreatedAsOne(t *testing.T) {
	// A user variable legally named "tmp0" must still be routed through
	// the stack-to-stack ASSIGN avoidance, just like any other variable.
	lines := lower(t, `fonction f(entier tmp0): entier {
		entier y = 0;
		y = tmp0;
		retourner y;
	}`)

	for i, l := range lines {
		if strings.HasPrefix(l, "ASSIGN ") {
			fields := strings.Fields(l)
			if fields[1] == "tmp0" {
				t.Fatalf("line %d: ASSIGN source is the bare memory name %q, should have gone through a temp: %q", i, "tmp0", l)
			}
		}
	}
}

func TestNewTempSkipsNamesThatCollideWithADeclaredLocal(t *testing.T) {
	// The first temp the counter would mint is "tmp0", which collides
	// with the parameter's own name here; the mediating temp introduced
	// for "y = tmp0;" must not reuse that exact string, or it would be
	// indistinguishable from the parameter once both are bare text in
	// the same TAC stream.
	lines := lower(t, `fonction f(entier tmp0): entier {
		entier y = 0;
		y = tmp0;
		retourner y;
	}`)

	for _, l := range lines {
		if strings.HasPrefix(l, "tmp0 = ") {
			t.Fatalf("a temp named tmp0 was minted despite colliding with the parameter tmp0: %q", l)
		}
	}
}

func TestLoopLowersStartTrueFalseLabels(t *testing.T) {
	lines := lower(t, `fonction f(entier n): entier {
		entier acc = 1;
		tantque (n > 0) {
			acc = acc * n;
			n = n - 1;
		}
		retourner acc;
	}`)

	if !containsLine(lines, "JUMP L") {
		t.Errorf("expected a backward JUMP to the loop start, got %v", lines)
	}
}
