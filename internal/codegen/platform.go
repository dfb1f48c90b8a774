// Package codegen translates TAC text into AT&T-syntax x86-64 assembly:
// a fixed register mapping for temporaries, a per-function two-pass
// translator (collect stack offsets, then emit instructions), and the
// entry-point trampoline that adapts CLI integer arguments into a call
// to the user's main.
package codegen

import (
	"fmt"
	"runtime"
	"strings"
)

// Platform selects the calling convention the emitted assembly targets.
type Platform struct {
	Name        string
	CallRegs    []string
	MaxCallArgs int
}

// SysV is the System V AMD64 calling convention (Linux, macOS, *BSD).
var SysV = Platform{
	Name:        "sysv",
	CallRegs:    []string{"%rdi", "%rsi", "%rdx", "%rcx", "%r8", "%r9"},
	MaxCallArgs: 6,
}

// Win64 is the Microsoft x64 calling convention.
var Win64 = Platform{
	Name:        "win64",
	CallRegs:    []string{"%rcx", "%rdx", "%r8", "%r9"},
	MaxCallArgs: 4,
}

// ParsePlatform parses a --platform flag value. An empty value selects
// DefaultPlatform.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultPlatform(), nil
	case "sysv":
		return SysV, nil
	case "win64":
		return Win64, nil
	default:
		return Platform{}, fmt.Errorf("unknown platform %q (want %q or %q)", s, "sysv", "win64")
	}
}

// DefaultPlatform picks System V everywhere except when cross-building on
// a Windows host, matching the corpus's convention of a host-appropriate
// but overridable default.
func DefaultPlatform() Platform {
	if runtime.GOOS == "windows" {
		return Win64
	}
	return SysV
}
