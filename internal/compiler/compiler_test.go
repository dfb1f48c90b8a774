package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/musinux/intech/internal/codegen"
)

func TestCompileFileRejectsWrongSuffix(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "source.txt")
	if err := os.WriteFile(path, []byte("fonction z(): entier { retourner 0; }"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CompileFile(path, Options{Platform: codegen.SysV}); err == nil {
		t.Fatal("expected an error for a non-.intech suffix")
	}
}

func TestCompileFileProducesIntermAndAssembly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "identite.intech")
	src := `fonction identite(entier n): entier { retourner n; }`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CompileFile(path, Options{Platform: codegen.SysV}); err != nil {
		t.Fatalf("CompileFile: %v", err)
	}

	interm, err := os.ReadFile(path + ".interm")
	if err != nil {
		t.Fatalf("reading .interm: %v", err)
	}
	if !strings.Contains(string(interm), "identite:") {
		t.Errorf(".interm missing function label, got:\n%s", interm)
	}

	asm, err := os.ReadFile(path + ".S")
	if err != nil {
		t.Fatalf("reading .S: %v", err)
	}
	if !strings.Contains(string(asm), ".globl main") {
		t.Errorf(".S missing .globl main header, got:\n%s", asm)
	}
}

func TestCompileFilePropagatesParseErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.intech")
	if err := os.WriteFile(path, []byte("fonction bad(: entier { retourner 0; }"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CompileFile(path, Options{Platform: codegen.SysV}); err == nil {
		t.Fatal("expected a parse error to propagate")
	}
}

func TestCompileFileReportsMissingSource(t *testing.T) {
	err := CompileFile(filepath.Join(t.TempDir(), "missing.intech"), Options{Platform: codegen.SysV})
	if err == nil {
		t.Fatal("expected an error for a missing source file")
	}
}
