package diag

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorFormatsWithSnapshot(t *testing.T) {
	err := New(Syntax, 12, "x = <<HERE>>3;", "unexpected token %q", ";")
	msg := err.Error()

	if !strings.Contains(msg, "syntax error") {
		t.Errorf("Error() = %q, want it to mention the kind", msg)
	}
	if !strings.Contains(msg, "<<HERE>>") {
		t.Errorf("Error() = %q, want it to include the snapshot", msg)
	}
	if err.Pos != 12 {
		t.Errorf("Pos = %d, want 12", err.Pos)
	}
}

func TestErrorFormatsWithoutSnapshot(t *testing.T) {
	err := New(Resource, 0, "", "ran out of temporary registers")
	if strings.Contains(err.Error(), "near:") {
		t.Errorf("Error() = %q, want no 'near:' clause for an empty snapshot", err.Error())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("permission denied")
	err := Wrap(Resource, 0, "", cause, "opening output file")

	if !strings.Contains(err.Error(), "permission denied") {
		t.Errorf("Error() = %q, want it to include the wrapped cause", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(err, cause) = false, want true")
	}
}
