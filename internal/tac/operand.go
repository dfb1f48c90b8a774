package tac

import (
	"fmt"
	"strings"
)

// immediate renders an integer literal as a TAC immediate operand.
func immediate(v int64) string {
	return fmt.Sprintf("$%d", v)
}

// isImmediate reports whether operand is a literal of the form "$n".
func isImmediate(operand string) bool {
	return strings.HasPrefix(operand, "$")
}
