// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lutfi-haslab/haschain/block"
	"github.com/lutfi-haslab/haschain/chain"
	"github.com/lutfi-haslab/haschain/has"
	"github.com/lutfi-haslab/haschain/lvldb"
	"github.com/lutfi-haslab/haschain/tx"
)

func newBlock(number uint32, parentHash has.Bytes32, txs ...*tx.Transaction) *block.Block {
	builder := new(block.Builder).
		Number(number).
		ParentHash(parentHash).
		Timestamp(uint64(1000 + number*10)).
		Validator(has.BytesToAddress([]byte("v1"))).
		GasLimit(10000000)
	for _, trx := range txs {
		builder.Transaction(trx)
	}
	return builder.Build()
}

func newChain(t *testing.T) (*chain.Chain, *lvldb.LevelDB) {
	db, err := lvldb.NewMem()
	assert.Nil(t, err)
	c, err := chain.New(db)
	assert.Nil(t, err)
	return c, db
}

func TestEmptyChain(t *testing.T) {
	c, _ := newChain(t)
	assert.Nil(t, c.BestBlock())

	_, err := c.GetBlock(has.Bytes32{1})
	assert.True(t, c.IsNotFound(err))
}

func TestAddAndGetBlock(t *testing.T) {
	c, _ := newChain(t)

	trx := new(tx.Builder).
		From(has.BytesToAddress([]byte("alice"))).
		Gas(21000).
		GasPrice(big.NewInt(1)).
		Build()
	blk := newBlock(0, has.Bytes32{}, trx)
	receipts := tx.Receipts{{TxHash: trx.Hash(), GasUsed: 21000, Status: tx.StatusSucceeded}}

	assert.Nil(t, c.AddBlock(blk, receipts))
	assert.Nil(t, c.SetBestBlock(blk.Header().Hash()))

	// by hash
	loaded, err := c.GetBlock(blk.Header().Hash())
	assert.Nil(t, err)
	assert.Equal(t, blk.Header().Hash(), loaded.Header().Hash())

	// by number
	loaded, err = c.GetBlockByNumber(0)
	assert.Nil(t, err)
	assert.Equal(t, blk.Header().Hash(), loaded.Header().Hash())

	// header
	header, err := c.GetHeader(blk.Header().Hash())
	assert.Nil(t, err)
	assert.Equal(t, blk.Header().Hash(), header.Hash())

	// best block
	assert.Equal(t, blk.Header().Hash(), c.BestBlock().Header().Hash())

	// tx index
	gotTx, blockHash, index, err := c.GetTransaction(trx.Hash())
	assert.Nil(t, err)
	assert.Equal(t, trx.Hash(), gotTx.Hash())
	assert.Equal(t, blk.Header().Hash(), blockHash)
	assert.Equal(t, uint64(0), index)

	found, err := c.HasTransaction(trx.Hash())
	assert.Nil(t, err)
	assert.True(t, found)

	// receipt lookup
	receipt, err := c.GetTransactionReceipt(trx.Hash())
	assert.Nil(t, err)
	assert.Equal(t, uint64(21000), receipt.GasUsed)
}

func TestTipSurvivesReopen(t *testing.T) {
	db, err := lvldb.NewMem()
	assert.Nil(t, err)

	c, err := chain.New(db)
	assert.Nil(t, err)

	blk := newBlock(0, has.Bytes32{})
	assert.Nil(t, c.AddBlock(blk, nil))
	assert.Nil(t, c.SetBestBlock(blk.Header().Hash()))

	// a fresh Chain over the same store picks up the tip
	c2, err := chain.New(db)
	assert.Nil(t, err)
	assert.NotNil(t, c2.BestBlock())
	assert.Equal(t, blk.Header().Hash(), c2.BestBlock().Header().Hash())
}
