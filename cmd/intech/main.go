// Command intech compiles a single .intech source file to x86-64 AT&T
// assembly, via an intermediate three-address-code file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/musinux/intech/internal/codegen"
	"github.com/musinux/intech/internal/compiler"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		platformFlag string
		keepInterm   bool
		debug        bool
		dumpAST      bool
	)

	cmd := &cobra.Command{
		Use:   "intech <source.intech>",
		Short: "Compile an intech source file to x86-64 assembly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			platform, err := codegen.ParsePlatform(platformFlag)
			if err != nil {
				return err
			}

			opts := compiler.Options{
				Platform:   platform,
				Debug:      debug,
				KeepInterm: keepInterm,
				DumpAST:    dumpAST,
				Logger:     newLogger(debug),
			}
			return compiler.CompileFile(args[0], opts)
		},
	}

	cmd.Flags().StringVar(&platformFlag, "platform", "", "target calling convention (sysv|win64), default host-appropriate")
	cmd.Flags().BoolVarP(&keepInterm, "keep-interm", "k", false, "retain the .interm file after assembly (always written; no-op)")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "verbose structured logging of each pipeline stage")
	cmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "pretty-print the parsed AST to stderr before lowering")

	return cmd
}

// newLogger builds the SugaredLogger threaded through the compiler
// context: warn level by default, debug level under --debug.
func newLogger(debug bool) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = ""

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}
