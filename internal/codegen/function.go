package codegen

import (
	"strconv"
	"strings"

	"github.com/musinux/intech/internal/diag"
)

// emitFunction runs the two-pass translation of §4.3: first it walks
// LOAD_ARG/DECL_LOCAL to build the offset table, then it translates
// every instruction, now able to resolve any local/param reference
// regardless of where it appears in the function body.
func (e *Emitter) emitFunction(b functionBlock) error {
	offsets, paramCount, err := collectOffsets(b.body)
	if err != nil {
		return err
	}
	if paramCount > len(e.platform.CallRegs) {
		return diag.New(diag.Resource, 0, "",
			"function %q has %d parameters, more than the %d the %s convention supports",
			b.name, paramCount, len(e.platform.CallRegs), e.platform.Name)
	}

	label := b.name
	if b.name == "main" {
		label = "real_main"
		e.sawMain = true
		e.mainParamCount = paramCount
	}

	e.line("%s:", label)
	e.line("    pushq %%rbp")
	e.line("    movq %%rsp, %%rbp")

	argIdx := 0
	callArgIdx := 0

	for _, l := range b.body {
		fields := strings.Fields(l)
		if len(fields) == 0 {
			continue
		}

		switch {
		case internalLabelRe.MatchString(l):
			e.line(".%s", strings.TrimSuffix(l, ":"))

		case fields[0] == "ADD_STACK":
			e.line("    subq %s, %%rsp", fields[1])

		case fields[0] == "LOAD_ARG":
			if argIdx >= len(e.platform.CallRegs) {
				return diag.New(diag.Resource, 0, "", "function %q has more parameters than available argument registers", b.name)
			}
			off := strings.TrimPrefix(fields[1], "$")
			e.line("    movq %s, -%s(%%rbp)", e.platform.CallRegs[argIdx], off)
			argIdx++

		case fields[0] == "DECL_LOCAL":
			// recorded in the offset pass; no code.

		case fields[0] == "ASSIGN":
			src, err := resolveOperand(fields[1], offsets)
			if err != nil {
				return err
			}
			dst, err := resolveOperand(fields[2], offsets)
			if err != nil {
				return err
			}
			if mov := movInstr(src, dst); mov != "" {
				e.line("    %s", mov)
			}

		case fields[0] == "COMPARE":
			// COMPARE a b means "compare a to b" (flags set on a-b);
			// AT&T cmpq src, dst computes dst-src, so operands swap.
			a, err := resolveOperand(fields[1], offsets)
			if err != nil {
				return err
			}
			bb, err := resolveOperand(fields[2], offsets)
			if err != nil {
				return err
			}
			e.line("    cmpq %s, %s", bb, a)

		case fields[0] == "PARAM":
			if callArgIdx >= len(e.platform.CallRegs) {
				return diag.New(diag.Resource, 0, "", "call in %q passes more arguments than available registers", b.name)
			}
			src, err := resolveOperand(fields[1], offsets)
			if err != nil {
				return err
			}
			e.line("    movq %s, %s", src, e.platform.CallRegs[callArgIdx])
			callArgIdx++

		case fields[0] == "CALL":
			e.line("    call %s", callTarget(fields[1]))
			if len(fields) > 2 {
				dst, err := resolveOperand(fields[2], offsets)
				if err != nil {
					return err
				}
				if mov := movInstr("%rax", dst); mov != "" {
					e.line("    %s", mov)
				}
			}
			callArgIdx = 0

		case fields[0] == "RETURN":
			if len(fields) > 1 {
				src, err := resolveOperand(fields[1], offsets)
				if err != nil {
					return err
				}
				if mov := movInstr(src, "%rax"); mov != "" {
					e.line("    %s", mov)
				}
			}
			e.line("    leave")
			e.line("    ret")

		case fields[0] == "JUMP":
			e.line("    jmp .%s", fields[1])

		case strings.HasPrefix(fields[0], "JUMP_"):
			mnemonic, err := jumpMnemonic(strings.TrimPrefix(fields[0], "JUMP_"))
			if err != nil {
				return err
			}
			e.line("    %s .%s", mnemonic, fields[1])

		case len(fields) >= 2 && fields[1] == "=":
			// The only instruction shape left: "tmp_k = src" or
			// "tmp_k = a op b". A local/param is only ever written via
			// ASSIGN, never this "name = ..." shape, so fields[0] is
			// always a temp here.
			if err := e.emitTempAssign(fields, offsets); err != nil {
				return err
			}

		default:
			return diag.New(diag.Syntax, 0, "", "unrecognized TAC instruction %q", l)
		}
	}

	return nil
}

// emitTempAssign handles "tmp_k = src" and "tmp_k = a <op> b".
func (e *Emitter) emitTempAssign(fields []string, offsets map[string]int) error {
	reg, err := regOf(fields[0])
	if err != nil {
		return err
	}

	switch len(fields) {
	case 3: // tmp_k = src
		src, err := resolveOperand(fields[2], offsets)
		if err != nil {
			return err
		}
		if mov := movInstr(src, reg); mov != "" {
			e.line("    %s", mov)
		}
		return nil

	case 5: // tmp_k = a op b
		a, err := resolveOperand(fields[2], offsets)
		if err != nil {
			return err
		}
		bOperand, err := resolveOperand(fields[4], offsets)
		if err != nil {
			return err
		}
		opcode, err := arithOpcode(fields[3])
		if err != nil {
			return err
		}
		if mov := movInstr(a, reg); mov != "" {
			e.line("    %s", mov)
		}
		e.line("    %s %s, %s", opcode, bOperand, reg)
		return nil

	default:
		return diag.New(diag.Syntax, 0, "", "malformed temporary assignment %q", strings.Join(fields, " "))
	}
}

// collectOffsets is the first of the two passes: it records every
// LOAD_ARG/DECL_LOCAL offset before any instruction referencing those
// names is translated, and counts the function's parameters.
func collectOffsets(body []string) (map[string]int, int, error) {
	offsets := make(map[string]int)
	paramCount := 0

	for _, l := range body {
		fields := strings.Fields(l)
		if len(fields) < 3 {
			continue
		}
		switch fields[0] {
		case "LOAD_ARG", "DECL_LOCAL":
			off, err := strconv.Atoi(strings.TrimPrefix(fields[1], "$"))
			if err != nil {
				return nil, 0, diag.New(diag.Syntax, 0, "", "malformed offset in %q", l)
			}
			offsets[fields[2]] = off
			if fields[0] == "LOAD_ARG" {
				paramCount++
			}
		}
	}
	return offsets, paramCount, nil
}
