// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vm

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/lutfi-haslab/haschain/has"
	"github.com/lutfi-haslab/haschain/state"
	"github.com/lutfi-haslab/haschain/tx"
)

// errStopToken is an internal token indicating a graceful halt (STOP/RETURN).
var errStopToken = errors.New("stop token")

// Context provides the EVM with information about the transaction and the
// block it is executed in.
type Context struct {
	Origin   has.Address
	GasPrice *big.Int
	ChainID  uint64

	BlockNumber uint32
	Time        uint64
	Coinbase    has.Address
	GasLimit    uint64
}

// ScopeContext contains the things that are per-call, such as stack and
// memory, but not transients like pc and gas.
type ScopeContext struct {
	Memory   *Memory
	Stack    *Stack
	Contract *Contract
}

// EVM executes contract bytecode against the world state. The EVM should
// never be reused and is not thread safe.
type EVM struct {
	Context

	state *state.State
	table *JumpTable

	depth      int
	returnData []byte
	logs       []*tx.Log
}

// New creates an EVM operating on the given state under the given context.
func New(ctx Context, st *state.State) *EVM {
	return &EVM{
		Context: ctx,
		state:   st,
		table:   &defaultJumpTable,
	}
}

// State returns the world state the EVM operates on.
func (evm *EVM) State() *state.State {
	return evm.state
}

// Logs returns logs emitted so far by non-reverted frames.
func (evm *EVM) Logs() []*tx.Log {
	return evm.logs
}

// Depth returns the current call depth.
func (evm *EVM) Depth() int {
	return evm.depth
}

// Call executes the contract associated with addr with the given input as
// parameters. It handles the value transfer and runs the code under a state
// checkpoint, so a failing call leaves no visible side effect.
func (evm *EVM) Call(caller, addr has.Address, input []byte, gas uint64, value *uint256.Int) (ret []byte, leftOverGas uint64, err error) {
	if evm.depth > MaxCallDepth {
		return nil, gas, ErrDepth
	}

	checkpoint := evm.state.NewCheckpoint()
	logCheckpoint := len(evm.logs)

	if !value.IsZero() {
		if err := evm.state.SubBalance(caller, value.ToBig()); err != nil {
			evm.state.RevertTo(checkpoint)
			if errors.Is(err, state.ErrInsufficientBalance) {
				return nil, gas, ErrInsufficientBalance
			}
			return nil, gas, err
		}
		if err := evm.state.AddBalance(addr, value.ToBig()); err != nil {
			evm.state.RevertTo(checkpoint)
			return nil, gas, err
		}
	}

	code, err := evm.state.GetCode(addr)
	if err != nil {
		evm.state.RevertTo(checkpoint)
		return nil, gas, err
	}
	if len(code) == 0 {
		// calling a plain account costs nothing extra
		evm.state.Commit(checkpoint)
		return nil, gas, nil
	}

	contract := NewContract(caller, addr, value, gas, code)
	ret, err = evm.Run(contract, input)
	if err != nil {
		evm.state.RevertTo(checkpoint)
		evm.logs = evm.logs[:logCheckpoint]
		if err != ErrExecutionReverted {
			contract.Gas = 0
		}
	} else {
		evm.state.Commit(checkpoint)
	}
	return ret, contract.Gas, err
}

// Run executes the given contract frame with input as calldata and returns
// the frame's return data. It's the interpreter loop: fetch, validate stack,
// charge gas, execute, advance.
func (evm *EVM) Run(contract *Contract, input []byte) (ret []byte, err error) {
	evm.depth++
	defer func() { evm.depth-- }()

	if len(contract.Code) == 0 {
		return nil, nil
	}
	contract.Input = input

	var (
		mem   = newMemory()
		stack = newStack()
		scope = &ScopeContext{
			Memory:   mem,
			Stack:    stack,
			Contract: contract,
		}
		pc  uint64
		res []byte
	)

	for {
		op := contract.GetOp(pc)
		operation := evm.table[op]
		if operation == nil {
			// unknown opcodes halt with revert
			return nil, ErrInvalidOpCode{opcode: op}
		}
		// validate stack
		if sLen := stack.len(); sLen < operation.minStack {
			return nil, ErrStackUnderflow{stackLen: sLen, required: operation.minStack}
		} else if sLen > operation.maxStack {
			return nil, ErrStackOverflow{stackLen: sLen, limit: operation.maxStack}
		}
		if !contract.UseGas(operation.constantGas) {
			return nil, ErrOutOfGas
		}

		var memorySize uint64
		if operation.memorySize != nil {
			memSize, overflow := operation.memorySize(stack)
			if overflow {
				return nil, ErrGasUintOverflow
			}
			// memory is expanded in words of 32 bytes. Gas is also calculated in words.
			if memorySize, overflow = safeMul(toWordSize(memSize), 32); overflow {
				return nil, ErrGasUintOverflow
			}
		}
		if operation.dynamicGas != nil {
			dynamicCost, err := operation.dynamicGas(evm, contract, stack, mem, memorySize)
			if err != nil {
				return nil, err
			}
			if !contract.UseGas(dynamicCost) {
				return nil, ErrOutOfGas
			}
		}
		if memorySize > 0 {
			mem.Resize(memorySize)
		}

		res, err = operation.execute(&pc, evm, scope)
		if err != nil {
			break
		}
		pc++
	}

	if err == errStopToken {
		err = nil // clear stop token error
	}
	return res, err
}
