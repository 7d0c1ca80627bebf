// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/lutfi-haslab/haschain/has"
)

// Transaction is an immutable tx type.
type Transaction struct {
	body body

	cache struct {
		hash atomic.Value
		size atomic.Value
	}
}

// body describes details of a tx.
type body struct {
	From     has.Address
	To       *has.Address `rlp:"nil"`
	Value    *big.Int
	Gas      uint64
	GasPrice *big.Int
	Nonce    uint64
	Data     []byte
}

// Hash returns hash of tx.
func (t *Transaction) Hash() (hash has.Bytes32) {
	if cached := t.cache.hash.Load(); cached != nil {
		return cached.(has.Bytes32)
	}
	defer func() { t.cache.hash.Store(hash) }()

	hash = has.Blake2bFn(func(w io.Writer) {
		rlp.Encode(w, t)
	})
	return
}

// From returns the sender address.
func (t *Transaction) From() has.Address {
	return t.body.From
}

// To returns the recipient address, or nil for a contract creation.
func (t *Transaction) To() *has.Address {
	if t.body.To == nil {
		return nil
	}
	cpy := *t.body.To
	return &cpy
}

// Value returns the amount to be transferred.
func (t *Transaction) Value() *big.Int {
	return new(big.Int).Set(t.body.Value)
}

// Gas returns gas provision for this tx.
func (t *Transaction) Gas() uint64 {
	return t.body.Gas
}

// GasPrice returns gas price.
func (t *Transaction) GasPrice() *big.Int {
	return new(big.Int).Set(t.body.GasPrice)
}

// Nonce returns the sender's account nonce this tx consumes.
func (t *Transaction) Nonce() uint64 {
	return t.body.Nonce
}

// Data returns the input data.
func (t *Transaction) Data() []byte {
	return append([]byte(nil), t.body.Data...)
}

// Cost returns value + gas * gasPrice.
func (t *Transaction) Cost() *big.Int {
	cost := new(big.Int).SetUint64(t.body.Gas)
	cost.Mul(cost, t.body.GasPrice)
	return cost.Add(cost, t.body.Value)
}

// IntrinsicGas returns intrinsic gas of tx.
func (t *Transaction) IntrinsicGas() (uint64, error) {
	return IntrinsicGas(t.body.Data, t.body.To == nil)
}

// IntrinsicGas calculate intrinsic gas cost for tx with such data.
func IntrinsicGas(data []byte, contractCreation bool) (uint64, error) {
	var base uint64
	if contractCreation {
		base = has.TxGasContractCreation
	} else {
		base = has.TxGas
	}
	if len(data) == 0 {
		return base, nil
	}

	var nz uint64
	for _, byt := range data {
		if byt != 0 {
			nz++
		}
	}
	zgas := (uint64(len(data)) - nz) * has.TxDataZeroGas
	nzgas := nz * has.TxDataNonZeroGas
	total := base + zgas + nzgas
	if total < base {
		return 0, errors.New("intrinsic gas too large")
	}
	return total, nil
}

// EncodeRLP implements rlp.Encoder.
func (t *Transaction) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &t.body)
}

// DecodeRLP implements rlp.Decoder.
func (t *Transaction) DecodeRLP(s *rlp.Stream) error {
	_, size, _ := s.Kind()
	var body body
	if err := s.Decode(&body); err != nil {
		return err
	}
	*t = Transaction{body: body}
	t.cache.size.Store(rlp.ListSize(size))
	return nil
}

// Size returns size in bytes when RLP encoded.
func (t *Transaction) Size() uint64 {
	if cached := t.cache.size.Load(); cached != nil {
		return cached.(uint64)
	}
	data, _ := rlp.EncodeToBytes(t)
	size := uint64(len(data))
	t.cache.size.Store(size)
	return size
}

func (t *Transaction) String() string {
	var to string
	if t.body.To == nil {
		to = "nil (contract creation)"
	} else {
		to = t.body.To.String()
	}
	return fmt.Sprintf(`Tx(%v)
	From:		%v
	To:			%v
	Value:		%v
	Gas:		%v
	GasPrice:	%v
	Nonce:		%v
	Data:		0x%x`, t.Hash(), t.body.From, to, t.body.Value, t.body.Gas, t.body.GasPrice, t.body.Nonce, t.body.Data)
}
