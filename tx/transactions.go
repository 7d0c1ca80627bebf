// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"io"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/lutfi-haslab/haschain/has"
)

// Transactions a slice of transactions.
type Transactions []*Transaction

// Copy returns a shallow copy.
func (txs Transactions) Copy() Transactions {
	return append(Transactions(nil), txs...)
}

// RootHash computes the root hash of transactions.
// It's a blake2b hash over the canonical RLP encoding of the list,
// so identical inputs always produce identical roots.
func (txs Transactions) RootHash() has.Bytes32 {
	return has.Blake2bFn(func(w io.Writer) {
		rlp.Encode(w, txs)
	})
}

// Receipts slice of receipts.
type Receipts []*Receipt

// RootHash computes the root hash of receipts.
func (rs Receipts) RootHash() has.Bytes32 {
	return has.Blake2bFn(func(w io.Writer) {
		rlp.Encode(w, rs)
	})
}
