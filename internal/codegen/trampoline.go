package codegen

// emitTrampoline synthesizes the entry point described in §4.3.4: a real
// main that converts its argv strings to integers with strtol, calls the
// user's real_main with them, and prints the result with printf. The
// converted arguments are loaded into real_main's argument registers from
// e.platform.CallRegs; reading argc/argv and calling strtol and printf use
// the System V registers whichever platform is selected.
//
// Nothing is emitted if the program defines no main function: a library
// of helper functions with no entry point is a legal compilation unit.
func (e *Emitter) emitTrampoline() error {
	if !e.sawMain {
		return nil
	}

	e.line("")
	e.line(".section .rodata")
	e.line(".LC_fmt:")
	e.line("    .string \"%%d\\n\"")
	e.line(".text")
	e.line("main:")
	e.line("    pushq %%rbp")
	e.line("    movq %%rsp, %%rbp")
	e.line("    subq $%d, %%rsp", 8*(e.mainParamCount+3))
	// argc/argv are read from %rdi/%rsi (System V) for every platform.
	e.line("    movq %%rdi, -8(%%rbp)")
	e.line("    movq %%rsi, -16(%%rbp)")

	// First pass: convert every argv[i+1] with strtol and stash the
	// result in its own stack slot. Doing this in one combined
	// convert-then-load loop would have each strtol@PLT call clobber
	// the argument registers a prior iteration had already populated.
	for i := 0; i < e.mainParamCount; i++ {
		// argv[i+1]: skip argv[0], the program name.
		e.line("    movq -16(%%rbp), %%rax")
		e.line("    movq %d(%%rax), %%rdi", (i+1)*8)
		e.line("    movq $0, %%rsi")
		e.line("    movq $10, %%rdx")
		e.line("    call strtol@PLT")
		e.line("    movq %%rax, -%d(%%rbp)", 8*(i+3))
	}

	// Second pass: now that every conversion is done, load the saved
	// slots into the platform's call registers without further calls
	// in between to clobber them.
	for i := 0; i < e.mainParamCount && i < len(e.platform.CallRegs); i++ {
		e.line("    movq -%d(%%rbp), %s", 8*(i+3), e.platform.CallRegs[i])
	}

	e.line("    call real_main")
	e.line("    movq %%rax, %%rsi")
	e.line("    leaq .LC_fmt(%%rip), %%rdi")
	e.line("    movq $0, %%rax")
	e.line("    call printf@PLT")
	e.line("    movq $0, %%rax")
	e.line("    leave")
	e.line("    ret")
	return nil
}
