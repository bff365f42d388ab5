package emulator

import (
	"github.com/ezrec/um32/translate"
)

var f = translate.From

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Finger uint32
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo == 0 {
		return f("finger 0x%08x %v", err.Finger, err.Err)
	}
	return f("finger 0x%08x line %d %v", err.Finger, err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
