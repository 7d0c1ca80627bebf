// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vm

import (
	"github.com/holiman/uint256"
)

// Memory implements the VM's linear, byte addressable memory.
// It only ever grows; reads past the high-water mark expand it with zeros.
type Memory struct {
	store []byte
}

func newMemory() *Memory {
	return &Memory{}
}

// Set sets offset + size to value.
func (m *Memory) Set(offset, size uint64, value []byte) {
	if size == 0 {
		return
	}
	// length of store may never be less than offset + size.
	// The store should be resized PRIOR to setting the memory
	if offset+size > uint64(len(m.store)) {
		panic("invalid memory: store empty")
	}
	copy(m.store[offset:offset+size], value)
}

// Set32 sets the 32 bytes starting at offset to the value of val,
// left-padded with zeroes to 32 bytes.
func (m *Memory) Set32(offset uint64, val *uint256.Int) {
	if offset+32 > uint64(len(m.store)) {
		panic("invalid memory: store empty")
	}
	val.WriteToSlice(m.store[offset:])
}

// Resize resizes the memory to size.
func (m *Memory) Resize(size uint64) {
	if uint64(m.Len()) < size {
		m.store = append(m.store, make([]byte, size-uint64(m.Len()))...)
	}
}

// GetCopy returns offset + size as a new slice.
func (m *Memory) GetCopy(offset, size uint64) (cpy []byte) {
	if size == 0 {
		return nil
	}
	cpy = make([]byte, size)
	copy(cpy, m.store[offset:offset+size])
	return
}

// GetPtr returns the offset + size.
func (m *Memory) GetPtr(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	return m.store[offset : offset+size]
}

// Len returns the length of the backing slice.
func (m *Memory) Len() int {
	return len(m.store)
}

// Data returns the backing slice.
func (m *Memory) Data() []byte {
	return m.store
}
