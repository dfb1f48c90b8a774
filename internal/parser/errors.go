package parser

import "github.com/pkg/errors"

var errStackUnderflow = errors.New("expression operand stack underflow")
