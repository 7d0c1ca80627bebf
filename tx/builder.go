// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"math/big"

	"github.com/lutfi-haslab/haschain/has"
)

// Builder to make it easy to build transaction.
type Builder struct {
	body body
}

// From set the sender address.
func (b *Builder) From(from has.Address) *Builder {
	b.body.From = from
	return b
}

// To set the recipient address. Pass nil for a contract creation.
func (b *Builder) To(to *has.Address) *Builder {
	if to == nil {
		b.body.To = nil
	} else {
		cpy := *to
		b.body.To = &cpy
	}
	return b
}

// Value set the amount to transfer.
func (b *Builder) Value(value *big.Int) *Builder {
	b.body.Value = new(big.Int).Set(value)
	return b
}

// Gas set gas provision for tx.
func (b *Builder) Gas(gas uint64) *Builder {
	b.body.Gas = gas
	return b
}

// GasPrice set gas price.
func (b *Builder) GasPrice(price *big.Int) *Builder {
	b.body.GasPrice = new(big.Int).Set(price)
	return b
}

// Nonce set nonce.
func (b *Builder) Nonce(nonce uint64) *Builder {
	b.body.Nonce = nonce
	return b
}

// Data set input data.
func (b *Builder) Data(data []byte) *Builder {
	b.body.Data = append([]byte(nil), data...)
	return b
}

// Build build tx object.
func (b *Builder) Build() *Transaction {
	body := b.body
	if body.Value == nil {
		body.Value = new(big.Int)
	}
	if body.GasPrice == nil {
		body.GasPrice = new(big.Int)
	}
	return &Transaction{body: body}
}
