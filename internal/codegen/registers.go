package codegen

import (
	"strconv"
	"strings"

	"github.com/musinux/intech/internal/diag"
)

// tmpRegisters is the fixed tmp<k> -> machine register mapping; index k
// maps to tmpRegisters[k]. More than len(tmpRegisters) simultaneously
// live temporaries is a Resource error.
var tmpRegisters = [...]string{
	"%rax", "%rbx", "%r10", "%r11", "%r12", "%r13", "%r14", "%r15",
}

// regOf maps a compiler-allocated temporary name to its fixed machine
// register. emitTempAssign calls it directly for the destination of a
// "tmp_k = ..." line, which is always a minted temporary; every other
// caller reaches it only once resolveOperand has already failed to
// resolve the operand as a declared local/param, and the TAC
// lowerer never mints a temp name that collides with one (see
// tac.Context.newTemp), so there is no ambiguity between a real
// temporary and a same-shaped identifier here.
func regOf(tmpName string) (string, error) {
	idx, err := strconv.Atoi(strings.TrimPrefix(tmpName, "tmp"))
	if err != nil {
		return "", diag.New(diag.Syntax, 0, "", "malformed temporary name %q", tmpName)
	}
	if idx < 0 || idx >= len(tmpRegisters) {
		return "", diag.New(diag.Resource, 0, "", "more than %d live temporaries (%s)", len(tmpRegisters), tmpName)
	}
	return tmpRegisters[idx], nil
}
