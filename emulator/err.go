package emulator

import (
	"github.com/ezrec/regvm/translate"
)

var f = translate.From

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	LineNo int // Source line, or zero when unknown.
	Ip     int // Instruction index.
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("line %d (ip %d) %v", err.LineNo, err.Ip, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
