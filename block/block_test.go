// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package block_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"

	"github.com/lutfi-haslab/haschain/block"
	"github.com/lutfi-haslab/haschain/has"
	"github.com/lutfi-haslab/haschain/tx"
)

func newTestBlock() *block.Block {
	trx := new(tx.Builder).
		From(has.BytesToAddress([]byte("sender"))).
		Gas(21000).
		GasPrice(big.NewInt(1)).
		Build()

	return new(block.Builder).
		ParentHash(has.BytesToBytes32([]byte("parent"))).
		Number(7).
		Timestamp(1526400000).
		Validator(has.BytesToAddress([]byte("v1"))).
		GasLimit(10000000).
		GasUsed(21000).
		StateRoot(has.BytesToBytes32([]byte("state"))).
		ReceiptsRoot(has.BytesToBytes32([]byte("receipts"))).
		Transaction(trx).
		Build()
}

func TestBuilder(t *testing.T) {
	blk := newTestBlock()
	header := blk.Header()

	assert.Equal(t, uint32(7), header.Number())
	assert.Equal(t, has.BytesToBytes32([]byte("parent")), header.ParentHash())
	assert.Equal(t, uint64(1526400000), header.Timestamp())
	assert.Equal(t, has.BytesToAddress([]byte("v1")), header.Validator())
	assert.Equal(t, uint64(10000000), header.GasLimit())
	assert.Equal(t, uint64(21000), header.GasUsed())

	// txs root is derived from the block's transactions
	assert.Equal(t, blk.Transactions().RootHash(), header.TxsRoot())
}

func TestHeaderEncodeDecode(t *testing.T) {
	header := newTestBlock().Header()

	data, err := rlp.EncodeToBytes(header)
	assert.Nil(t, err)

	var decoded block.Header
	assert.Nil(t, rlp.DecodeBytes(data, &decoded))

	assert.Equal(t, header.Hash(), decoded.Hash())
	assert.Equal(t, header.SigningHash(), decoded.SigningHash())
	assert.Equal(t, header.Number(), decoded.Number())
	assert.Equal(t, header.ParentHash(), decoded.ParentHash())
	assert.Equal(t, header.Timestamp(), decoded.Timestamp())
	assert.Equal(t, header.Validator(), decoded.Validator())
	assert.Equal(t, header.GasLimit(), decoded.GasLimit())
	assert.Equal(t, header.GasUsed(), decoded.GasUsed())
	assert.Equal(t, header.StateRoot(), decoded.StateRoot())
	assert.Equal(t, header.TxsRoot(), decoded.TxsRoot())
	assert.Equal(t, header.ReceiptsRoot(), decoded.ReceiptsRoot())
}

func TestBlockEncodeDecode(t *testing.T) {
	blk := newTestBlock()

	data, err := rlp.EncodeToBytes(blk)
	assert.Nil(t, err)

	var decoded block.Block
	assert.Nil(t, rlp.DecodeBytes(data, &decoded))

	assert.Equal(t, blk.Header().Hash(), decoded.Header().Hash())
	assert.Equal(t, len(blk.Transactions()), len(decoded.Transactions()))
	assert.Equal(t, blk.Transactions()[0].Hash(), decoded.Transactions()[0].Hash())
}

func TestWithSignature(t *testing.T) {
	blk := newTestBlock()
	sig := []byte("mock signature")

	signed := blk.WithSignature(sig)

	// signing hash excludes the signature, identity hash covers it
	assert.Equal(t, blk.Header().SigningHash(), signed.Header().SigningHash())
	assert.NotEqual(t, blk.Header().Hash(), signed.Header().Hash())
	assert.Equal(t, sig, signed.Header().Signature())
	assert.Len(t, blk.Header().Signature(), 0)
}
