package codegen

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/musinux/intech/internal/diag"
)

var (
	funcLabelRe     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*:$`)
	internalLabelRe = regexp.MustCompile(`^L[0-9]+:$`)
)

type functionBlock struct {
	name string
	body []string
}

// splitFunctions partitions TAC text into one block per function, each
// keyed by its function label.
func splitFunctions(tac string) []functionBlock {
	var blocks []functionBlock
	var cur *functionBlock

	for _, line := range strings.Split(tac, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if funcLabelRe.MatchString(line) && !internalLabelRe.MatchString(line) {
			blocks = append(blocks, functionBlock{name: strings.TrimSuffix(line, ":")})
			cur = &blocks[len(blocks)-1]
			continue
		}
		if cur != nil {
			cur.body = append(cur.body, line)
		}
	}
	return blocks
}

// Emitter translates TAC text to assembly for a single target platform.
type Emitter struct {
	platform Platform
	out      *strings.Builder
	log      *zap.SugaredLogger

	sawMain        bool
	mainParamCount int
}

// NewEmitter returns an Emitter targeting platform. A nil logger is
// replaced with a no-op one.
func NewEmitter(platform Platform, log *zap.SugaredLogger) *Emitter {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Emitter{platform: platform, out: &strings.Builder{}, log: log}
}

// Emit translates the whole of tacText and returns the assembly text.
func Emit(tacText string, platform Platform, log *zap.SugaredLogger) (string, error) {
	e := NewEmitter(platform, log)

	blocks := splitFunctions(tacText)
	if len(blocks) == 0 {
		return "", diag.New(diag.Syntax, 0, "", "no functions found in intermediate representation")
	}

	e.line(".globl main")
	e.line(".text")

	for _, b := range blocks {
		if err := e.emitFunction(b); err != nil {
			return "", err
		}
	}

	if err := e.emitTrampoline(); err != nil {
		return "", err
	}

	return e.out.String(), nil
}

func (e *Emitter) line(format string, args ...interface{}) {
	fmt.Fprintf(e.out, format, args...)
	e.out.WriteByte('\n')
}
