package icvm

import (
	"errors"
	"fmt"
)

var (
	// ErrWaiting is returned by RunToHalt when the machine suspends for input.
	ErrWaiting = errors.New("icvm: machine is waiting for input")
	// ErrHalted is returned by Run when the machine has already halted.
	ErrHalted = errors.New("icvm: machine has halted")
)

// ErrMalformedProgram is returned when program text contains a token which is not an integer.
type ErrMalformedProgram struct {
	Index int
	Token string
	Err   error
}

func (e ErrMalformedProgram) Error() string {
	return fmt.Sprintf("icvm: malformed program: token %d %q: %v", e.Index, e.Token, e.Err)
}

func (e ErrMalformedProgram) Unwrap() error {
	return e.Err
}

type ErrInvalidOpcode struct {
	PC   int
	Code int64
}

func (e ErrInvalidOpcode) Error() string {
	return fmt.Sprintf("icvm: invalid opcode %d at %d", e.Code, e.PC)
}

type ErrInvalidMode struct {
	PC   int
	Mode int64
}

func (e ErrInvalidMode) Error() string {
	return fmt.Sprintf("icvm: invalid parameter mode %d at %d", e.Mode, e.PC)
}

// ErrInvalidWrite is returned when an instruction writes through an immediate parameter.
type ErrInvalidWrite struct {
	PC    int
	Param Param
}

func (e ErrInvalidWrite) Error() string {
	return fmt.Sprintf("icvm: cannot write to %v parameter %v at %d", e.Param.Mode, e.Param, e.PC)
}

// ErrInvalidAddress is returned when an address resolves outside of memory:
// below zero, or above MaxAddress.
type ErrInvalidAddress struct {
	PC   int
	Addr int64
}

func (e ErrInvalidAddress) Error() string {
	return fmt.Sprintf("icvm: invalid address %d at %d", e.Addr, e.PC)
}

type ErrHaltWithoutOutput struct {
	PC int
}

func (e ErrHaltWithoutOutput) Error() string {
	return fmt.Sprintf("icvm: halted at %d without producing output", e.PC)
}

// ErrStepLimit is returned when a machine reaches the limit set by SetStepLimit.
type ErrStepLimit struct {
	PC    int
	Steps uint64
}

func (e ErrStepLimit) Error() string {
	return fmt.Sprintf("icvm: step limit of %d reached at %d", e.Steps, e.PC)
}
