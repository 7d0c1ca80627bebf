// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vm

import (
	"github.com/holiman/uint256"

	"github.com/lutfi-haslab/haschain/has"
	"github.com/lutfi-haslab/haschain/tx"
)

func opAdd(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	y.Add(&x, y)
	return nil, nil
}

func opSub(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	y.Sub(&x, y)
	return nil, nil
}

func opMul(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	y.Mul(&x, y)
	return nil, nil
}

func opDiv(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	// division by zero yields zero
	y.Div(&x, y)
	return nil, nil
}

func opSdiv(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	y.SDiv(&x, y)
	return nil, nil
}

func opMod(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	y.Mod(&x, y)
	return nil, nil
}

func opSmod(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	y.SMod(&x, y)
	return nil, nil
}

func opAddmod(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	x, y, z := scope.Stack.pop(), scope.Stack.pop(), scope.Stack.peek()
	z.AddMod(&x, &y, z)
	return nil, nil
}

func opMulmod(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	x, y, z := scope.Stack.pop(), scope.Stack.pop(), scope.Stack.peek()
	z.MulMod(&x, &y, z)
	return nil, nil
}

func opExp(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	base, exponent := scope.Stack.pop(), scope.Stack.peek()
	exponent.Exp(&base, exponent)
	return nil, nil
}

func opSignExtend(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	back, num := scope.Stack.pop(), scope.Stack.peek()
	num.ExtendSign(num, &back)
	return nil, nil
}

func opLt(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	if x.Lt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opGt(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	if x.Gt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opSlt(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	if x.Slt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opSgt(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	if x.Sgt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opEq(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	if x.Eq(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opIszero(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	x := scope.Stack.peek()
	if x.IsZero() {
		x.SetOne()
	} else {
		x.Clear()
	}
	return nil, nil
}

func opAnd(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	y.And(&x, y)
	return nil, nil
}

func opOr(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	y.Or(&x, y)
	return nil, nil
}

func opXor(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	y.Xor(&x, y)
	return nil, nil
}

func opNot(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	x := scope.Stack.peek()
	x.Not(x)
	return nil, nil
}

func opByte(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	th, val := scope.Stack.pop(), scope.Stack.peek()
	val.Byte(&th)
	return nil, nil
}

// opSHL implements Shift Left
// The SHL instruction (shift left) pops 2 values from the stack, first arg1 and then arg2,
// and pushes on the stack arg2 shifted to the left by arg1 number of bits.
func opSHL(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	shift, value := scope.Stack.pop(), scope.Stack.peek()
	if shift.LtUint64(256) {
		value.Lsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil, nil
}

// opSHR implements Logical Shift Right
func opSHR(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	shift, value := scope.Stack.pop(), scope.Stack.peek()
	if shift.LtUint64(256) {
		value.Rsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil, nil
}

// opSAR implements Arithmetic Shift Right
// Shifts ≥ 256 collapse to all-ones for a negative input, zero otherwise.
func opSAR(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	shift, value := scope.Stack.pop(), scope.Stack.peek()
	if shift.GtUint64(256) {
		if value.Sign() >= 0 {
			value.Clear()
		} else {
			// Max negative shift: all bits set
			value.SetAllOne()
		}
		return nil, nil
	}
	n := uint(shift.Uint64())
	value.SRsh(value, n)
	return nil, nil
}

func opSha3(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	offset, size := scope.Stack.pop(), scope.Stack.peek()
	data := scope.Memory.GetPtr(offset.Uint64(), size.Uint64())

	hash := has.Keccak256(data)
	size.SetBytes(hash.Bytes())
	return nil, nil
}

func opAddress(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(new(uint256.Int).SetBytes(scope.Contract.Address.Bytes()))
	return nil, nil
}

func opBalance(_ *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	slot := scope.Stack.peek()
	address := has.BytesToAddress(slot.Bytes())
	balance, err := evm.state.GetBalance(address)
	if err != nil {
		return nil, err
	}
	slot.SetFromBig(balance)
	return nil, nil
}

func opOrigin(_ *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(new(uint256.Int).SetBytes(evm.Context.Origin.Bytes()))
	return nil, nil
}

func opCaller(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(new(uint256.Int).SetBytes(scope.Contract.CallerAddress.Bytes()))
	return nil, nil
}

func opCallValue(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(new(uint256.Int).Set(scope.Contract.Value()))
	return nil, nil
}

func opCallDataLoad(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	x := scope.Stack.peek()
	if offset, overflow := x.Uint64WithOverflow(); !overflow {
		data := getData(scope.Contract.Input, offset, 32)
		x.SetBytes(data)
	} else {
		x.Clear()
	}
	return nil, nil
}

func opCallDataSize(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(new(uint256.Int).SetUint64(uint64(len(scope.Contract.Input))))
	return nil, nil
}

func opCallDataCopy(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	var (
		memOffset  = scope.Stack.pop()
		dataOffset = scope.Stack.pop()
		length     = scope.Stack.pop()
	)
	dataOffset64, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		dataOffset64 = maxUint64
	}
	// These values are checked for overflow during gas cost calculation
	memOffset64 := memOffset.Uint64()
	length64 := length.Uint64()
	scope.Memory.Set(memOffset64, length64, getData(scope.Contract.Input, dataOffset64, length64))
	return nil, nil
}

func opCodeSize(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(new(uint256.Int).SetUint64(uint64(len(scope.Contract.Code))))
	return nil, nil
}

func opCodeCopy(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	var (
		memOffset  = scope.Stack.pop()
		codeOffset = scope.Stack.pop()
		length     = scope.Stack.pop()
	)
	uint64CodeOffset, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		uint64CodeOffset = maxUint64
	}
	codeCopy := getData(scope.Contract.Code, uint64CodeOffset, length.Uint64())
	scope.Memory.Set(memOffset.Uint64(), length.Uint64(), codeCopy)
	return nil, nil
}

func opGasprice(_ *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	v, _ := uint256.FromBig(evm.Context.GasPrice)
	scope.Stack.push(v)
	return nil, nil
}

func opExtCodeSize(_ *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	slot := scope.Stack.peek()
	code, err := evm.state.GetCode(has.BytesToAddress(slot.Bytes()))
	if err != nil {
		return nil, err
	}
	slot.SetUint64(uint64(len(code)))
	return nil, nil
}

func opExtCodeCopy(_ *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	var (
		addr       = scope.Stack.pop()
		memOffset  = scope.Stack.pop()
		codeOffset = scope.Stack.pop()
		length     = scope.Stack.pop()
	)
	uint64CodeOffset, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		uint64CodeOffset = maxUint64
	}
	code, err := evm.state.GetCode(has.BytesToAddress(addr.Bytes()))
	if err != nil {
		return nil, err
	}
	codeCopy := getData(code, uint64CodeOffset, length.Uint64())
	scope.Memory.Set(memOffset.Uint64(), length.Uint64(), codeCopy)
	return nil, nil
}

func opReturnDataSize(_ *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(new(uint256.Int).SetUint64(uint64(len(evm.returnData))))
	return nil, nil
}

func opReturnDataCopy(_ *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	var (
		memOffset  = scope.Stack.pop()
		dataOffset = scope.Stack.pop()
		length     = scope.Stack.pop()
	)

	offset64, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		return nil, ErrReturnDataOutOfBounds
	}
	// we can reuse dataOffset now (aliasing it for clarity)
	end := dataOffset
	end.Add(&dataOffset, &length)
	end64, overflow := end.Uint64WithOverflow()
	if overflow || uint64(len(evm.returnData)) < end64 {
		return nil, ErrReturnDataOutOfBounds
	}
	scope.Memory.Set(memOffset.Uint64(), length.Uint64(), evm.returnData[offset64:end64])
	return nil, nil
}

func opCoinbase(_ *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(new(uint256.Int).SetBytes(evm.Context.Coinbase.Bytes()))
	return nil, nil
}

func opTimestamp(_ *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(new(uint256.Int).SetUint64(evm.Context.Time))
	return nil, nil
}

func opNumber(_ *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(new(uint256.Int).SetUint64(uint64(evm.Context.BlockNumber)))
	return nil, nil
}

func opGasLimit(_ *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(new(uint256.Int).SetUint64(evm.Context.GasLimit))
	return nil, nil
}

func opChainID(_ *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(new(uint256.Int).SetUint64(evm.Context.ChainID))
	return nil, nil
}

func opPop(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	scope.Stack.pop()
	return nil, nil
}

func opMload(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	v := scope.Stack.peek()
	offset := v.Uint64()
	v.SetBytes(scope.Memory.GetPtr(offset, 32))
	return nil, nil
}

func opMstore(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	mStart, val := scope.Stack.pop(), scope.Stack.pop()
	scope.Memory.Set32(mStart.Uint64(), &val)
	return nil, nil
}

func opMstore8(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	off, val := scope.Stack.pop(), scope.Stack.pop()
	scope.Memory.store[off.Uint64()] = byte(val.Uint64())
	return nil, nil
}

func opSload(_ *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	loc := scope.Stack.peek()
	val, err := evm.state.GetStorage(scope.Contract.Address, has.BytesToBytes32(loc.Bytes()))
	if err != nil {
		return nil, err
	}
	loc.SetBytes(val.Bytes())
	return nil, nil
}

func opSstore(_ *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	loc, val := scope.Stack.pop(), scope.Stack.pop()
	evm.state.SetStorage(
		scope.Contract.Address,
		has.BytesToBytes32(loc.Bytes()),
		has.BytesToBytes32(val.Bytes()))
	return nil, nil
}

func opJump(pc *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	pos := scope.Stack.pop()
	if !scope.Contract.validJumpdest(&pos) {
		return nil, ErrInvalidJump{dest: pos.Uint64()}
	}
	*pc = pos.Uint64() - 1 // pc will be increased by the interpreter loop
	return nil, nil
}

func opJumpi(pc *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	pos, cond := scope.Stack.pop(), scope.Stack.pop()
	if !cond.IsZero() {
		if !scope.Contract.validJumpdest(&pos) {
			return nil, ErrInvalidJump{dest: pos.Uint64()}
		}
		*pc = pos.Uint64() - 1 // pc will be increased by the interpreter loop
	}
	return nil, nil
}

func opJumpdest(_ *uint64, _ *EVM, _ *ScopeContext) ([]byte, error) {
	return nil, nil
}

func opPc(pc *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(new(uint256.Int).SetUint64(*pc))
	return nil, nil
}

func opMsize(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(new(uint256.Int).SetUint64(uint64(scope.Memory.Len())))
	return nil, nil
}

func opGas(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(new(uint256.Int).SetUint64(scope.Contract.Gas))
	return nil, nil
}

func opPush0(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(new(uint256.Int))
	return nil, nil
}

// makePush creates a PUSHn instruction. A PUSHn whose immediate data runs
// past the end of code aborts the frame.
func makePush(size uint64, pushByteSize int) executionFunc {
	return func(pc *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
		start := *pc + 1
		end := start + uint64(pushByteSize)
		if end > uint64(len(scope.Contract.Code)) {
			return nil, errTruncatedPush
		}

		integer := new(uint256.Int)
		scope.Stack.push(integer.SetBytes(scope.Contract.Code[start:end]))

		*pc += size
		return nil, nil
	}
}

// makeDup creates a DUPn instruction.
func makeDup(size int) executionFunc {
	return func(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
		scope.Stack.dup(size)
		return nil, nil
	}
}

// makeSwap creates a SWAPn instruction.
func makeSwap(size int) executionFunc {
	// switch n + 1 otherwise n would be swapped with n
	size++
	return func(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
		scope.Stack.swap(size)
		return nil, nil
	}
}

// makeLog creates a LOGn instruction.
func makeLog(size int) executionFunc {
	return func(_ *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
		topics := make([]has.Bytes32, size)
		mStart, mSize := scope.Stack.pop(), scope.Stack.pop()
		for i := 0; i < size; i++ {
			addr := scope.Stack.pop()
			topics[i] = has.BytesToBytes32(addr.Bytes())
		}

		d := scope.Memory.GetCopy(mStart.Uint64(), mSize.Uint64())
		evm.logs = append(evm.logs, &tx.Log{
			Address: scope.Contract.Address,
			Topics:  topics,
			Data:    d,
		})
		return nil, nil
	}
}

func opCall(_ *uint64, evm *EVM, scope *ScopeContext) ([]byte, error) {
	stack := scope.Stack
	gasArg := stack.pop()
	addr, value := stack.pop(), stack.pop()
	inOffset, inSize := stack.pop(), stack.pop()
	retOffset, retSize := stack.pop(), stack.pop()

	toAddr := has.BytesToAddress(addr.Bytes())
	args := scope.Memory.GetCopy(inOffset.Uint64(), inSize.Uint64())

	// cap forwarded gas at what's left in the frame
	gas := scope.Contract.Gas
	if gasArg.IsUint64() && gasArg.Uint64() < gas {
		gas = gasArg.Uint64()
	}
	if !scope.Contract.UseGas(gas) {
		return nil, ErrOutOfGas
	}
	if !value.IsZero() {
		gas += GasCallStipend
	}

	ret, returnGas, err := evm.Call(scope.Contract.Address, toAddr, args, gas, &value)

	var status uint256.Int
	if err == nil {
		status.SetOne()
	}
	stack.push(&status)

	if err == nil || err == ErrExecutionReverted {
		scope.Memory.Set(retOffset.Uint64(), min64(retSize.Uint64(), uint64(len(ret))), ret)
	}
	scope.Contract.RefundGas(returnGas)

	evm.returnData = ret
	return ret, nil
}

func opStop(_ *uint64, _ *EVM, _ *ScopeContext) ([]byte, error) {
	return nil, errStopToken
}

func opReturn(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	offset, size := scope.Stack.pop(), scope.Stack.pop()
	ret := scope.Memory.GetCopy(offset.Uint64(), size.Uint64())
	return ret, errStopToken
}

func opRevert(_ *uint64, _ *EVM, scope *ScopeContext) ([]byte, error) {
	offset, size := scope.Stack.pop(), scope.Stack.pop()
	ret := scope.Memory.GetCopy(offset.Uint64(), size.Uint64())
	return ret, ErrExecutionReverted
}

func opInvalid(_ *uint64, _ *EVM, _ *ScopeContext) ([]byte, error) {
	return nil, ErrInvalidOpCode{opcode: INVALID}
}

// getData returns a slice from data based on offset and size, padded on the
// right with zeros. The caller gets a fresh slice.
func getData(data []byte, start uint64, size uint64) []byte {
	length := uint64(len(data))
	if start > length {
		start = length
	}
	end := start + size
	if end > length {
		end = length
	}
	return rightPadBytes(data[start:end], int(size))
}

func rightPadBytes(slice []byte, l int) []byte {
	if l <= len(slice) {
		return slice
	}
	padded := make([]byte, l)
	copy(padded, slice)
	return padded
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
