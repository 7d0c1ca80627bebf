// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vm

// gasMemoryOnly charges for memory expansion only.
func gasMemoryOnly(_ *EVM, _ *Contract, _ *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return memoryGasCost(mem, memorySize)
}

func gasSha3(_ *EVM, _ *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	gas, err := memoryGasCost(mem, memorySize)
	if err != nil {
		return 0, err
	}
	wordGas, overflow := stack.Back(1).Uint64WithOverflow()
	if overflow {
		return 0, ErrGasUintOverflow
	}
	if wordGas, overflow = safeMul(toWordSize(wordGas), GasSha3Word); overflow {
		return 0, ErrGasUintOverflow
	}
	if gas, overflow = safeAdd(gas, wordGas); overflow {
		return 0, ErrGasUintOverflow
	}
	return gas, nil
}

// gasCopy charges for *COPY ops whose length sits at stack position 2.
func gasCopy(_ *EVM, _ *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return copyGas(stack, mem, memorySize, 2)
}

// gasExtCodeCopy charges for EXTCODECOPY whose length sits at stack position 3.
func gasExtCodeCopy(_ *EVM, _ *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return copyGas(stack, mem, memorySize, 3)
}

func copyGas(stack *Stack, mem *Memory, memorySize uint64, lengthPos int) (uint64, error) {
	gas, err := memoryGasCost(mem, memorySize)
	if err != nil {
		return 0, err
	}
	wordGas, overflow := stack.Back(lengthPos).Uint64WithOverflow()
	if overflow {
		return 0, ErrGasUintOverflow
	}
	if wordGas, overflow = safeMul(toWordSize(wordGas), GasCopyWord); overflow {
		return 0, ErrGasUintOverflow
	}
	if gas, overflow = safeAdd(gas, wordGas); overflow {
		return 0, ErrGasUintOverflow
	}
	return gas, nil
}

func gasExp(_ *EVM, _ *Contract, stack *Stack, _ *Memory, _ uint64) (uint64, error) {
	expByteLen := uint64((stack.Back(1).BitLen() + 7) / 8)

	gas, overflow := safeMul(expByteLen, GasExpByte)
	if overflow {
		return 0, ErrGasUintOverflow
	}
	if gas, overflow = safeAdd(gas, GasSlowStep); overflow {
		return 0, ErrGasUintOverflow
	}
	return gas, nil
}

func makeGasLog(n uint64) gasFunc {
	return func(_ *EVM, _ *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
		requestedSize, overflow := stack.Back(1).Uint64WithOverflow()
		if overflow {
			return 0, ErrGasUintOverflow
		}

		gas, err := memoryGasCost(mem, memorySize)
		if err != nil {
			return 0, err
		}

		if gas, overflow = safeAdd(gas, GasLog); overflow {
			return 0, ErrGasUintOverflow
		}
		if gas, overflow = safeAdd(gas, n*GasLogTopic); overflow {
			return 0, ErrGasUintOverflow
		}

		var memorySizeGas uint64
		if memorySizeGas, overflow = safeMul(requestedSize, GasLogDataByte); overflow {
			return 0, ErrGasUintOverflow
		}
		if gas, overflow = safeAdd(gas, memorySizeGas); overflow {
			return 0, ErrGasUintOverflow
		}
		return gas, nil
	}
}

func gasCall(_ *EVM, _ *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	gas, err := memoryGasCost(mem, memorySize)
	if err != nil {
		return 0, err
	}
	if !stack.Back(2).IsZero() {
		// value transfer costs extra
		var overflow bool
		if gas, overflow = safeAdd(gas, GasCallValue); overflow {
			return 0, ErrGasUintOverflow
		}
	}
	return gas, nil
}

func safeAdd(x, y uint64) (uint64, bool) {
	sum := x + y
	return sum, sum < x
}

func safeMul(x, y uint64) (uint64, bool) {
	if x == 0 || y == 0 {
		return 0, false
	}
	p := x * y
	return p, p/y != x
}
