package cpu

import (
	"errors"

	"github.com/ezrec/avrsim/io"
	"github.com/ezrec/avrsim/translate"
)

var f = translate.From

var (
	// Machine state errors
	ErrOutOfRange  = errors.New(f("out of range"))
	ErrStackEmpty  = errors.New(f("stack empty"))
	ErrPortInvalid = errors.New(f("port invalid"))

	// Instruction decode errors
	ErrInvalidOpcode        = errors.New(f("invalid opcode"))
	ErrTruncatedInstruction = errors.New(f("truncated instruction"))

	// Instruction encode errors
	ErrOperandInvalid = errors.New(f("operand invalid"))

	// Loader errors
	ErrImageTooLarge = errors.New(f("image too large"))
	ErrReadFailure   = io.ErrReadFailure
)

// ErrRegister identifies a register identifier that was rejected.
type ErrRegister uint8

func (er ErrRegister) Error() string {
	return f("register %d", uint8(er))
}

// ErrAddress identifies a memory address that was rejected.
type ErrAddress uint32

func (ea ErrAddress) Error() string {
	return f("address 0x%04x", uint32(ea))
}

// ErrDecode reports where, and on which opcode word, decoding failed.
type ErrDecode struct {
	Pc   uint16
	Word uint16
	Err  error
}

func (err *ErrDecode) Error() string {
	return f("%04x: opcode 0x%04x %v", err.Pc, err.Word, err.Err)
}

func (err *ErrDecode) Unwrap() error {
	return err.Err
}

// ErrExecute reports the instruction that failed to execute.
type ErrExecute struct {
	Pc          uint16
	Instruction Instruction
	Err         error
}

func (err *ErrExecute) Error() string {
	return f("%04x: %v: %v", err.Pc, err.Instruction, err.Err)
}

func (err *ErrExecute) Unwrap() error {
	return err.Err
}

// ErrOperand reports an instruction operand that cannot be encoded.
type ErrOperand struct {
	Op      Op
	Operand string
}

func (err ErrOperand) Error() string {
	return f("%v: operand %v", err.Op, err.Operand)
}

func (err ErrOperand) Is(target error) bool {
	return target == ErrOperandInvalid
}
