// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package packer_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lutfi-haslab/haschain/block"
	"github.com/lutfi-haslab/haschain/chain"
	"github.com/lutfi-haslab/haschain/genesis"
	"github.com/lutfi-haslab/haschain/has"
	"github.com/lutfi-haslab/haschain/lvldb"
	"github.com/lutfi-haslab/haschain/packer"
	"github.com/lutfi-haslab/haschain/poa"
	"github.com/lutfi-haslab/haschain/state"
	"github.com/lutfi-haslab/haschain/tx"
)

type env struct {
	db        *lvldb.LevelDB
	chain     *chain.Chain
	stater    *state.Stater
	authority *poa.Authority
	packer    *packer.Packer
	genesis   *block.Block
}

func newEnv(t *testing.T) *env {
	db, err := lvldb.NewMem()
	assert.Nil(t, err)

	gene := genesis.NewDevnet()
	st := state.New(db)
	genesisBlock, stage, err := gene.Build(st)
	assert.Nil(t, err)
	assert.Nil(t, stage.Commit(db))

	c, err := chain.New(db)
	assert.Nil(t, err)
	assert.Nil(t, c.AddBlock(genesisBlock, nil))
	assert.Nil(t, c.SetBestBlock(genesisBlock.Header().Hash()))

	config := gene.Config()
	authority := poa.NewAuthority(gene.Validators(), config.InactivityThreshold)

	return &env{
		db:        db,
		chain:     c,
		stater:    state.NewStater(db),
		authority: authority,
		packer:    packer.New(c, authority, config.ChainID, config.BlockTime, config.GasLimit),
		genesis:   genesisBlock,
	}
}

func (e *env) transfer(nonce uint64) *tx.Transaction {
	to := has.BytesToAddress([]byte("recipient"))
	return new(tx.Builder).
		From(genesis.DevAccounts()[0]).
		To(&to).
		Value(big.NewInt(1)).
		Gas(21000).
		GasPrice(big.NewInt(1)).
		Nonce(nonce).
		Build()
}

func TestPackEmptyBlock(t *testing.T) {
	e := newEnv(t)
	parent := e.genesis.Header()

	st := e.stater.NewState()
	flow, err := e.packer.Prepare(st, parent, parent.Timestamp()+100)
	assert.Nil(t, err)

	assert.Equal(t, uint32(1), flow.Number())
	assert.True(t, flow.When() >= parent.Timestamp()+genesis.NewDevnet().Config().BlockTime)

	blk, stage, receipts, err := flow.Pack()
	assert.Nil(t, err)
	assert.NotNil(t, stage)
	assert.Len(t, receipts, 0)

	header := blk.Header()
	assert.Equal(t, uint32(1), header.Number())
	assert.Equal(t, parent.Hash(), header.ParentHash())
	assert.Equal(t, uint64(0), header.GasUsed())
	assert.NotEmpty(t, header.Signature())
	assert.True(t, poa.ValidSignature(header))
}

func TestPackWithTransactions(t *testing.T) {
	e := newEnv(t)
	parent := e.genesis.Header()

	st := e.stater.NewState()
	flow, err := e.packer.Prepare(st, parent, parent.Timestamp()+100)
	assert.Nil(t, err)

	assert.Nil(t, flow.Adopt(e.transfer(0)))
	assert.Nil(t, flow.Adopt(e.transfer(1)))
	assert.Equal(t, uint64(42000), flow.GasUsed())

	blk, stage, receipts, err := flow.Pack()
	assert.Nil(t, err)
	assert.Len(t, receipts, 2)
	assert.Equal(t, uint64(42000), blk.Header().GasUsed())
	assert.Equal(t, uint64(21000), receipts[0].CumulativeGasUsed)
	assert.Equal(t, uint64(42000), receipts[1].CumulativeGasUsed)

	// header commitments match the content
	assert.Equal(t, blk.Transactions().RootHash(), blk.Header().TxsRoot())
	assert.Equal(t, receipts.RootHash(), blk.Header().ReceiptsRoot())
	assert.Equal(t, stage.Hash(), blk.Header().StateRoot())
}

func TestAdoptRejectsBadTx(t *testing.T) {
	e := newEnv(t)
	parent := e.genesis.Header()

	st := e.stater.NewState()
	flow, err := e.packer.Prepare(st, parent, parent.Timestamp()+100)
	assert.Nil(t, err)

	// wrong nonce
	err = flow.Adopt(e.transfer(5))
	assert.True(t, packer.IsBadTx(err))

	// duplicate of an already adopted tx
	trx := e.transfer(0)
	assert.Nil(t, flow.Adopt(trx))
	assert.True(t, packer.IsKnownTx(flow.Adopt(trx)))
}

func TestAdoptGasLimitReached(t *testing.T) {
	e := newEnv(t)
	parent := e.genesis.Header()

	gene := genesis.NewDevnet()
	small := packer.New(e.chain, e.authority, gene.Config().ChainID, gene.Config().BlockTime, 30000)

	st := e.stater.NewState()
	flow, err := small.Prepare(st, parent, parent.Timestamp()+100)
	assert.Nil(t, err)

	assert.Nil(t, flow.Adopt(e.transfer(0)))
	assert.True(t, packer.IsGasLimitReached(flow.Adopt(e.transfer(1))))
}

func TestPackDeterminism(t *testing.T) {
	build := func() has.Bytes32 {
		e := newEnv(t)
		parent := e.genesis.Header()

		st := e.stater.NewState()
		flow, err := e.packer.Prepare(st, parent, parent.Timestamp()+100)
		assert.Nil(t, err)
		assert.Nil(t, flow.Adopt(e.transfer(0)))

		blk, _, _, err := flow.Pack()
		assert.Nil(t, err)
		return blk.Header().Hash()
	}

	// identical pool and pre-state produce identical blocks
	assert.Equal(t, build(), build())
}

func TestAbort(t *testing.T) {
	e := newEnv(t)
	parent := e.genesis.Header()

	st := e.stater.NewState()
	sender := genesis.DevAccounts()[0]
	before, _ := st.GetBalance(sender)

	flow, err := e.packer.Prepare(st, parent, parent.Timestamp()+100)
	assert.Nil(t, err)
	assert.Nil(t, flow.Adopt(e.transfer(0)))
	flow.Abort()

	after, _ := st.GetBalance(sender)
	assert.Equal(t, before, after)
}
