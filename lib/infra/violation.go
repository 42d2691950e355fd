package infra

import (
	"errors"
	"fmt"
	"io"
	"path"
	"runtime"
	"strconv"
	"strings"

	"go.uber.org/zap/zapcore"
)

// References:
// https://github.com/pkg/errors/blob/master/stack.go

// Frame is a program counter captured at the call site
// that broke an API contract.
type Frame uintptr

// Caller returns the frame of the caller of the function invoking Caller,
// skipping additional skip frames.
func Caller(skip int) Frame {
	var pcs [1]uintptr
	if n := runtime.Callers(skip+3, pcs[:]); n == 0 {
		return Frame(0)
	}
	return Frame(pcs[0])
}

func (frame Frame) pc() uintptr {
	return uintptr(frame) - 1
}

func (frame Frame) fileLine() (string, int) {
	fn := runtime.FuncForPC(frame.pc())
	if fn == nil {
		return "unknownFile", 0
	}
	return fn.FileLine(frame.pc())
}

func (frame Frame) name() string {
	fn := runtime.FuncForPC(frame.pc())
	if fn == nil {
		return "unknownFunc"
	}
	return fn.Name()
}

// Format characters:
// %s - source file
// %d - source line
// %n - function name
// %v - equivalent to %s:%d
// %+s - function name and full path, separated by \n\t
// %+v - equivalent to %+s:%d
func (frame Frame) Format(s fmt.State, verb rune) {
	file, line := frame.fileLine()
	switch verb {
	case 's':
		if s.Flag('+') {
			_, _ = io.WriteString(s, frame.name())
			_, _ = io.WriteString(s, "\n\t")
			_, _ = io.WriteString(s, file)
		} else {
			_, _ = io.WriteString(s, path.Base(file))
		}
	case 'd':
		_, _ = io.WriteString(s, strconv.Itoa(line))
	case 'n':
		_, _ = io.WriteString(s, funcName(frame.name()))
	case 'v':
		frame.Format(s, 's')
		_, _ = io.WriteString(s, ":")
		frame.Format(s, 'd')
	}
}

func (frame Frame) MarshalText() ([]byte, error) {
	name := frame.name()
	if name == "unknownFunc" {
		return []byte("unknownFrame"), nil
	}
	file, line := frame.fileLine()
	builder := strings.Builder{}
	_, _ = builder.WriteString(name)
	_, _ = builder.WriteString(" ")
	_, _ = builder.WriteString(file)
	_, _ = builder.WriteString(":")
	_, _ = builder.WriteString(strconv.Itoa(line))
	return []byte(builder.String()), nil
}

func funcName(name string) string {
	i := strings.LastIndex(name, "/")
	name = name[i+1:]
	i = strings.Index(name, ".")
	return name[i+1:]
}

// ContractViolation is the panic value raised when a caller breaks
// a precondition of a public operation, e.g. asking an empty tree
// for its minimum. It is not meant to be recovered by library code.
type ContractViolation struct {
	Op    string
	Err   error
	Frame Frame
}

func (v *ContractViolation) Error() string {
	return fmt.Sprintf("%s: %v (called at %v)", v.Op, v.Err, v.Frame)
}

func (v *ContractViolation) Unwrap() error {
	return v.Err
}

// MarshalLogObject allows the violation to be inlined into zap fields.
func (v *ContractViolation) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("op", v.Op)
	if v.Err != nil {
		enc.AddString("error", v.Err.Error())
	}
	text, _ := v.Frame.MarshalText()
	enc.AddString("calledAt", string(text))
	return nil
}

// Violate panics with a ContractViolation pointing at the caller
// of the function that invokes it.
func Violate(op string, err error) {
	panic(&ContractViolation{
		Op:    op,
		Err:   err,
		Frame: Caller(1),
	})
}

// AsContractViolation extracts a ContractViolation from a recovered panic value.
func AsContractViolation(r any) (*ContractViolation, bool) {
	err, ok := r.(error)
	if !ok {
		return nil, false
	}
	var v *ContractViolation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
