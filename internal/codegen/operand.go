package codegen

import (
	"fmt"
	"strings"

	"github.com/musinux/intech/internal/diag"
)

// resolveOperand turns a TAC-level operand ($imm, tmp<k>, or a bare
// local/param name) into its AT&T assembly form. Memory is resolved
// against offsets (collected from DECL_LOCAL/LOAD_ARG by
// collectOffsets) first, so a local legally named "tmp0" is still
// translated to its own stack slot rather than mistaken for a
// compiler-allocated temporary of the same name; the TAC lowerer
// already guarantees no temp it mints collides with a declared name in
// the same function, so this ordering is never itself a source of
// ambiguity.
func resolveOperand(operand string, offsets map[string]int) (string, error) {
	if strings.HasPrefix(operand, "$") {
		return operand, nil
	}
	if off, ok := offsets[operand]; ok {
		return fmt.Sprintf("-%d(%%rbp)", off), nil
	}
	return regOf(operand)
}

// movInstr renders a movq, or "" if source and destination are the same
// register (§4.3.3: "omit entirely if source and destination are
// identical").
func movInstr(src, dst string) string {
	if src == dst {
		return ""
	}
	return fmt.Sprintf("movq %s, %s", src, dst)
}

func jumpMnemonic(cond string) (string, error) {
	switch cond {
	case "LT":
		return "jl", nil
	case "LTE":
		return "jle", nil
	case "GT":
		return "jg", nil
	case "GTE":
		return "jge", nil
	case "EQ":
		return "je", nil
	case "NEQ":
		return "jne", nil
	default:
		return "", diag.New(diag.Syntax, 0, "", "unknown jump condition %q", cond)
	}
}

func arithOpcode(op string) (string, error) {
	switch op {
	case "+":
		return "addq", nil
	case "-":
		return "subq", nil
	case "*":
		return "mulq", nil
	case "/":
		return "divq", nil
	default:
		return "", diag.New(diag.Syntax, 0, "", "unknown binary operator %q", op)
	}
}

// callTarget renames a call to the user's main, whose label was renamed
// to real_main during prologue emission (§4.3.1).
func callTarget(fn string) string {
	if fn == "main" {
		return "real_main"
	}
	return fn
}
