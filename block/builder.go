// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package block

import (
	"github.com/lutfi-haslab/haschain/has"
	"github.com/lutfi-haslab/haschain/tx"
)

// Builder to make it easy to build a block object.
type Builder struct {
	body headerBody
	txs  tx.Transactions
}

// ParentHash set parent hash.
func (b *Builder) ParentHash(hash has.Bytes32) *Builder {
	b.body.ParentHash = hash
	return b
}

// Number set block number.
func (b *Builder) Number(num uint32) *Builder {
	b.body.Number = num
	return b
}

// Timestamp set timestamp.
func (b *Builder) Timestamp(ts uint64) *Builder {
	b.body.Timestamp = ts
	return b
}

// StateRoot set state root.
func (b *Builder) StateRoot(hash has.Bytes32) *Builder {
	b.body.StateRoot = hash
	return b
}

// ReceiptsRoot set receipts root.
func (b *Builder) ReceiptsRoot(hash has.Bytes32) *Builder {
	b.body.ReceiptsRoot = hash
	return b
}

// Validator set the producing authority.
func (b *Builder) Validator(addr has.Address) *Builder {
	b.body.Validator = addr
	return b
}

// GasLimit set gas limit.
func (b *Builder) GasLimit(limit uint64) *Builder {
	b.body.GasLimit = limit
	return b
}

// GasUsed set gas used.
func (b *Builder) GasUsed(used uint64) *Builder {
	b.body.GasUsed = used
	return b
}

// ExtraData set extra data, which will be cut to 32 bytes at most.
func (b *Builder) ExtraData(data []byte) *Builder {
	if len(data) > 32 {
		data = data[:32]
	}
	b.body.ExtraData = append([]byte(nil), data...)
	return b
}

// Transaction add a transaction.
func (b *Builder) Transaction(tx *tx.Transaction) *Builder {
	b.txs = append(b.txs, tx)
	return b
}

// Build build a block object.
func (b *Builder) Build() *Block {
	body := b.body
	body.TxsRoot = b.txs.RootHash()

	return &Block{
		&Header{body: body},
		b.txs.Copy(),
	}
}
