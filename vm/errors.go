// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vm

import (
	"errors"
	"fmt"
)

// Execution errors. Any of them aborts the current frame and reverts its
// state mutations; the caller of a sub-call observes them as a failed call.
var (
	ErrOutOfGas              = errors.New("out of gas")
	ErrDepth                 = errors.New("max call depth exceeded")
	ErrInsufficientBalance   = errors.New("insufficient balance for transfer")
	ErrExecutionReverted     = errors.New("execution reverted")
	ErrReturnDataOutOfBounds = errors.New("return data out of bounds")
	ErrGasUintOverflow       = errors.New("gas uint64 overflow")

	errTruncatedPush = errors.New("push data truncated by end of code")
)

// ErrStackUnderflow wraps an evm error when the items on the stack less
// than the minimal requirement.
type ErrStackUnderflow struct {
	stackLen int
	required int
}

func (e ErrStackUnderflow) Error() string {
	return fmt.Sprintf("stack underflow (%d <=> %d)", e.stackLen, e.required)
}

// ErrStackOverflow wraps an evm error when the items on the stack exceeds
// the maximum allowance.
type ErrStackOverflow struct {
	stackLen int
	limit    int
}

func (e ErrStackOverflow) Error() string {
	return fmt.Sprintf("stack limit reached %d (%d)", e.stackLen, e.limit)
}

// ErrInvalidJump is returned when JUMP/JUMPI targets anything but a
// JUMPDEST byte outside PUSH immediate data.
type ErrInvalidJump struct {
	dest uint64
}

func (e ErrInvalidJump) Error() string {
	return fmt.Sprintf("invalid jump destination %d", e.dest)
}

// ErrInvalidOpCode wraps an evm error when an invalid opcode is encountered.
type ErrInvalidOpCode struct {
	opcode OpCode
}

func (e ErrInvalidOpCode) Error() string {
	return fmt.Sprintf("invalid opcode: %s", e.opcode)
}
