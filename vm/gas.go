// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vm

import (
	"github.com/holiman/uint256"
)

// Gas costs.
const (
	GasQuickStep   uint64 = 2
	GasFastestStep uint64 = 3
	GasFastStep    uint64 = 5
	GasMidStep     uint64 = 8
	GasSlowStep    uint64 = 10

	GasBalance     uint64 = 400
	GasExtCode     uint64 = 700
	GasSload       uint64 = 200
	GasSstore      uint64 = 5000 // flat cost; no refund accounting
	GasJumpdest    uint64 = 1
	GasSha3        uint64 = 30
	GasSha3Word    uint64 = 6
	GasCopyWord    uint64 = 3
	GasExpByte     uint64 = 50
	GasLog         uint64 = 375
	GasLogTopic    uint64 = 375
	GasLogDataByte uint64 = 8
	GasCall        uint64 = 700
	GasCallValue   uint64 = 9000
	GasCallStipend uint64 = 2300
	GasMemoryWord  uint64 = 3

	MemoryQuadCoeffDiv uint64 = 512

	// MaxCallDepth limits nesting of CALL frames.
	MaxCallDepth = 1024
)

// calcMemSize64 calculates the required memory size as offset + length,
// with overflow detection.
func calcMemSize64(off, l *uint256.Int) (uint64, bool) {
	if !l.IsUint64() {
		return 0, true
	}
	length := l.Uint64()
	if length == 0 {
		return 0, false
	}
	offset, overflow := off.Uint64WithOverflow()
	if overflow {
		return 0, true
	}
	val := offset + length
	return val, val < offset
}

// calcMemSize64WithUint is calcMemSize64 with a fixed uint64 length.
func calcMemSize64WithUint(off *uint256.Int, length64 uint64) (uint64, bool) {
	if length64 == 0 {
		return 0, false
	}
	offset64, overflow := off.Uint64WithOverflow()
	if overflow {
		return 0, true
	}
	val := offset64 + length64
	return val, val < offset64
}

// toWordSize returns the ceiled word size required for memory expansion.
func toWordSize(size uint64) uint64 {
	if size > maxUint64-31 {
		return maxUint64/32 + 1
	}
	return (size + 31) / 32
}

const maxUint64 = 1<<64 - 1

// memoryGasCost calculates the quadratic gas for memory expansion.
// It does so only for the memory region that is expanded, not the total memory.
func memoryGasCost(mem *Memory, newMemSize uint64) (uint64, error) {
	if newMemSize == 0 {
		return 0, nil
	}
	// The maximum that will fit in a uint64 is max_word_count - 1. Anything above
	// that will result in an overflow.
	if newMemSize > 0x1FFFFFFFE0 {
		return 0, ErrGasUintOverflow
	}
	newMemSizeWords := toWordSize(newMemSize)
	newMemSize = newMemSizeWords * 32

	if newMemSize > uint64(mem.Len()) {
		square := newMemSizeWords * newMemSizeWords
		linCoef := newMemSizeWords * GasMemoryWord
		quadCoef := square / MemoryQuadCoeffDiv
		newTotalFee := linCoef + quadCoef

		oldWords := toWordSize(uint64(mem.Len()))
		oldTotalFee := oldWords*GasMemoryWord + oldWords*oldWords/MemoryQuadCoeffDiv

		return newTotalFee - oldTotalFee, nil
	}
	return 0, nil
}
