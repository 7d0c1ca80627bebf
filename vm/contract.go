// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vm

import (
	"github.com/holiman/uint256"

	"github.com/lutfi-haslab/haschain/has"
)

// Contract represents a contract execution frame: the code being run, the
// address it runs at, its caller, endowment and remaining gas.
type Contract struct {
	CallerAddress has.Address
	Address       has.Address

	Code  []byte
	Input []byte

	value *uint256.Int
	Gas   uint64

	jumpdests bitvec // result of JUMPDEST analysis, lazily computed
	analysed  bool
}

// NewContract creates a new contract execution frame.
func NewContract(caller, address has.Address, value *uint256.Int, gas uint64, code []byte) *Contract {
	return &Contract{
		CallerAddress: caller,
		Address:       address,
		Code:          code,
		value:         value,
		Gas:           gas,
	}
}

// Value returns the contract's endowment.
func (c *Contract) Value() *uint256.Int {
	return c.value
}

// UseGas attempts to use gas and subtracts it from the remaining gas pool.
// It returns false when the pool is depleted.
func (c *Contract) UseGas(gas uint64) bool {
	if c.Gas < gas {
		return false
	}
	c.Gas -= gas
	return true
}

// RefundGas returns gas to the frame's pool.
func (c *Contract) RefundGas(gas uint64) {
	c.Gas += gas
}

// GetOp returns the n'th element in the contract's byte array.
func (c *Contract) GetOp(n uint64) OpCode {
	if n < uint64(len(c.Code)) {
		return OpCode(c.Code[n])
	}
	return STOP
}

// validJumpdest reports whether dest points at a JUMPDEST byte outside
// PUSH immediate data.
func (c *Contract) validJumpdest(dest *uint256.Int) bool {
	udest, overflow := dest.Uint64WithOverflow()
	// PC cannot go beyond len(code) and certainly can't be bigger than 63bits.
	// Don't bother checking for JUMPDEST in that case.
	if overflow || udest >= uint64(len(c.Code)) {
		return false
	}
	// Only JUMPDESTs allowed for destinations
	if OpCode(c.Code[udest]) != JUMPDEST {
		return false
	}
	if !c.analysed {
		c.jumpdests = codeBitmap(c.Code)
		c.analysed = true
	}
	return c.jumpdests.codeSegment(udest)
}

// bitvec is a bit vector which maps bytes in a program.
// An unset bit means the byte is an opcode, a set bit means
// it's data (i.e. argument of PUSHxx).
type bitvec []byte

func (bits bitvec) set(pos uint64) {
	bits[pos/8] |= 1 << (pos % 8)
}

// codeSegment checks if the position is in a code segment.
func (bits bitvec) codeSegment(pos uint64) bool {
	return ((bits[pos/8] >> (pos % 8)) & 1) == 0
}

// codeBitmap collects data locations in code.
func codeBitmap(code []byte) bitvec {
	// The bitmap is 4 bytes longer than necessary, in case the code
	// ends with a PUSH32, the algorithm will push zeroes onto the
	// bitvector outside the bounds of the actual code.
	bits := make(bitvec, len(code)/8+1+4)
	for pc := uint64(0); pc < uint64(len(code)); {
		op := OpCode(code[pc])
		pc++
		if op.IsPush() {
			numbits := uint64(op - PUSH1 + 1)
			for i := uint64(0); i < numbits; i++ {
				bits.set(pc + i)
			}
			pc += numbits
		}
	}
	return bits
}
