// Copyright 2014 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package vm

import (
	"errors"
	"fmt"
)

// Typed VM errors. These are data: they ride on the ExecResult and select the
// gas/refund/revert semantics at the message boundary. Anything else returned
// through the Go error channel is an internal fault and aborts the
// transaction.
var (
	ErrOutOfGas                 = errors.New("out of gas")
	ErrCodeStoreOutOfGas        = errors.New("contract creation code storage out of gas")
	ErrExecutionReverted        = errors.New("execution reverted")
	ErrMaxCodeSizeExceeded      = errors.New("max code size exceeded")
	ErrInvalidJump              = errors.New("invalid jump destination")
	ErrWriteProtection          = errors.New("write protection")
	ErrReturnDataOutOfBounds    = errors.New("return data out of bounds")
	ErrDepth                    = errors.New("max call depth exceeded")
	ErrContractAddressCollision = errors.New("contract address collision")
	ErrValueOverflow            = errors.New("value overflow")
	ErrInternal                 = errors.New("internal error")
	ErrInsufficientBalance      = errors.New("insufficient balance for transfer")

	ErrBLS12381InvalidInputLength = errors.New("bls12-381: invalid input length")
	ErrBLS12381PointNotOnCurve    = errors.New("bls12-381: point not on curve")

	// ErrOVM surfaces when a rewritten entry message never produced a target
	// message, i.e. the trace never reached user code.
	ErrOVM = errors.New("ovm: no target message executed")
)

// errStopToken is an internal marker raised by STOP/RETURN/SELFDESTRUCT to
// unwind the step loop cleanly. It never escapes the interpreter.
var errStopToken = errors.New("stop token")

// ErrStackUnderflow wraps an underflow with the observed and required depths.
type ErrStackUnderflow struct {
	stackLen int
	required int
}

func (e *ErrStackUnderflow) Error() string {
	return fmt.Sprintf("stack underflow (%d <=> %d)", e.stackLen, e.required)
}

// ErrStackOverflow wraps an overflow with the observed depth and the limit.
type ErrStackOverflow struct {
	stackLen int
	limit    int
}

func (e *ErrStackOverflow) Error() string {
	return fmt.Sprintf("stack limit reached %d (%d)", e.stackLen, e.limit)
}

// ErrInvalidOpCode is raised when the program counter lands on an undefined
// byte.
type ErrInvalidOpCode struct {
	opcode OpCode
}

func (e *ErrInvalidOpCode) Error() string {
	return fmt.Sprintf("invalid opcode: %s", e.opcode)
}

// IsVMError reports whether err is one of the typed VM errors, i.e. a normal
// execution outcome rather than an implementation fault.
func IsVMError(err error) bool {
	switch err.(type) {
	case *ErrStackUnderflow, *ErrStackOverflow, *ErrInvalidOpCode:
		return true
	}
	switch {
	case errors.Is(err, ErrOutOfGas),
		errors.Is(err, ErrCodeStoreOutOfGas),
		errors.Is(err, ErrExecutionReverted),
		errors.Is(err, ErrMaxCodeSizeExceeded),
		errors.Is(err, ErrInvalidJump),
		errors.Is(err, ErrWriteProtection),
		errors.Is(err, ErrReturnDataOutOfBounds),
		errors.Is(err, ErrDepth),
		errors.Is(err, ErrContractAddressCollision),
		errors.Is(err, ErrValueOverflow),
		errors.Is(err, ErrInternal),
		errors.Is(err, ErrInsufficientBalance),
		errors.Is(err, ErrBLS12381InvalidInputLength),
		errors.Is(err, ErrBLS12381PointNotOnCurve),
		errors.Is(err, ErrOVM):
		return true
	}
	return false
}
