// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package block

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/lutfi-haslab/haschain/has"
)

// Header contains almost all information about a block, except block body.
// It's immutable.
type Header struct {
	body headerBody

	cache struct {
		signingHash atomic.Value
		hash        atomic.Value
	}
}

// headerBody body of header.
// Field order is the canonical wire order.
type headerBody struct {
	ParentHash has.Bytes32
	Number     uint32
	Timestamp  uint64

	StateRoot    has.Bytes32
	TxsRoot      has.Bytes32
	ReceiptsRoot has.Bytes32

	Validator has.Address
	Signature []byte

	GasLimit uint64
	GasUsed  uint64

	ExtraData []byte
}

// ParentHash returns hash of parent block header.
func (h *Header) ParentHash() has.Bytes32 {
	return h.body.ParentHash
}

// Number returns sequential number of this block.
func (h *Header) Number() uint32 {
	return h.body.Number
}

// Timestamp returns timestamp of this block.
func (h *Header) Timestamp() uint64 {
	return h.body.Timestamp
}

// StateRoot returns account state commitment just after this block being applied.
func (h *Header) StateRoot() has.Bytes32 {
	return h.body.StateRoot
}

// TxsRoot returns root hash of txs contained in this block.
func (h *Header) TxsRoot() has.Bytes32 {
	return h.body.TxsRoot
}

// ReceiptsRoot returns root hash of tx receipts.
func (h *Header) ReceiptsRoot() has.Bytes32 {
	return h.body.ReceiptsRoot
}

// Validator returns the address of the authority that produced this block.
func (h *Header) Validator() has.Address {
	return h.body.Validator
}

// GasLimit returns gas limit of this block.
func (h *Header) GasLimit() uint64 {
	return h.body.GasLimit
}

// GasUsed returns gas used by txs.
func (h *Header) GasUsed() uint64 {
	return h.body.GasUsed
}

// ExtraData returns extra data of this block.
func (h *Header) ExtraData() []byte {
	return append([]byte(nil), h.body.ExtraData...)
}

// Signature returns the validator's signature.
func (h *Header) Signature() []byte {
	return append([]byte(nil), h.body.Signature...)
}

// WithSignature create a new Header object with signature set.
func (h *Header) WithSignature(sig []byte) *Header {
	cpy := Header{body: h.body}
	cpy.body.Signature = append([]byte(nil), sig...)
	return &cpy
}

// SigningHash computes hash of all header fields excluding signature.
func (h *Header) SigningHash() (hash has.Bytes32) {
	if cached := h.cache.signingHash.Load(); cached != nil {
		return cached.(has.Bytes32)
	}
	defer func() { h.cache.signingHash.Store(hash) }()

	hash = has.Blake2bFn(func(w io.Writer) {
		rlp.Encode(w, []interface{}{
			h.body.ParentHash,
			h.body.Number,
			h.body.Timestamp,

			h.body.StateRoot,
			h.body.TxsRoot,
			h.body.ReceiptsRoot,

			h.body.Validator,

			h.body.GasLimit,
			h.body.GasUsed,

			h.body.ExtraData,
		})
	})
	return
}

// Hash computes the identity hash of the header, covering all fields
// including the signature. It's the value referenced by child blocks'
// parentHash.
func (h *Header) Hash() (hash has.Bytes32) {
	if cached := h.cache.hash.Load(); cached != nil {
		return cached.(has.Bytes32)
	}
	defer func() { h.cache.hash.Store(hash) }()

	hash = has.Blake2bFn(func(w io.Writer) {
		rlp.Encode(w, &h.body)
	})
	return
}

// EncodeRLP implements rlp.Encoder.
func (h *Header) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &h.body)
}

// DecodeRLP implements rlp.Decoder.
func (h *Header) DecodeRLP(s *rlp.Stream) error {
	var body headerBody

	if err := s.Decode(&body); err != nil {
		return err
	}
	*h = Header{body: body}
	return nil
}

func (h *Header) String() string {
	return fmt.Sprintf(`Header(%v):
	Number:			%v
	ParentHash:		%v
	Timestamp:		%v
	Validator:		%v
	GasLimit:		%v
	GasUsed:		%v
	TxsRoot:		%v
	StateRoot:		%v
	ReceiptsRoot:	%v
	Signature:		0x%x`, h.Hash(), h.body.Number, h.body.ParentHash, h.body.Timestamp,
		h.body.Validator, h.body.GasLimit, h.body.GasUsed,
		h.body.TxsRoot, h.body.StateRoot, h.body.ReceiptsRoot, h.body.Signature)
}
