// Package compiler orchestrates the lexer/parser, TAC lowerer and
// assembly emitter behind the two-phase file contract described for the
// driver: a .intech source produces a .intech.interm file, closed, then
// reopened to produce a .intech.S file. Nothing runs concurrently and no
// stage keeps a file open past its own step.
package compiler

import (
	"os"
	"strings"

	"github.com/kr/pretty"
	"go.uber.org/zap"

	"github.com/musinux/intech/internal/codegen"
	"github.com/musinux/intech/internal/diag"
	"github.com/musinux/intech/internal/lexer"
	"github.com/musinux/intech/internal/parser"
	"github.com/musinux/intech/internal/tac"
)

// Options configures a single compilation run.
type Options struct {
	Platform codegen.Platform
	Debug    bool
	// KeepInterm is accepted for CLI parity with the two-phase file
	// contract but is a no-op: the .interm file is always written and
	// never cleaned up by this driver.
	KeepInterm bool
	DumpAST    bool
	Logger     *zap.SugaredLogger
}

const sourceSuffix = ".intech"

// CompileFile reads path, an .intech source file, and writes
// path+".interm" (TAC text) and path+".S" (assembly) alongside it.
func CompileFile(path string, opts Options) error {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	if !strings.HasSuffix(path, sourceSuffix) {
		return diag.New(diag.Syntax, 0, "", "%q does not have a %q suffix", path, sourceSuffix)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return diag.Wrap(diag.Syntax, 0, "", err, "reading source file")
	}

	log.Debugw("compiling", "path", path, "platform", opts.Platform.Name)

	lex := lexer.New(string(src))
	p := parser.New(lex)
	if opts.Debug {
		p.SetLogger(log)
	}

	fns, global, err := p.Parse()
	if err != nil {
		return err
	}
	log.Debugw("parsed", "functions", len(fns))

	if opts.DumpAST {
		pretty.Fprintf(os.Stderr, "%# v\n", fns)
	}

	tacText, err := tac.Lower(fns, global, log)
	if err != nil {
		return err
	}

	intermPath := path + ".interm"
	if err := writeInterm(intermPath, tacText); err != nil {
		return diag.Wrap(diag.Syntax, 0, "", err, "writing intermediate file")
	}
	log.Debugw("wrote intermediate representation", "path", intermPath)

	asm, err := codegen.Emit(tacText, opts.Platform, log)
	if err != nil {
		return err
	}

	asmPath := path + ".S"
	if err := writeAsm(asmPath, asm); err != nil {
		return diag.Wrap(diag.Syntax, 0, "", err, "writing assembly file")
	}
	log.Debugw("wrote assembly", "path", asmPath)

	return nil
}

// writeInterm opens, writes and closes the .interm file before any later
// stage runs, matching the synchronous single-stage-at-a-time model.
func writeInterm(path, text string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeAsm(path, text string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
