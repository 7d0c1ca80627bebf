// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lutfi-haslab/haschain/block"
	"github.com/lutfi-haslab/haschain/consensus"
	"github.com/lutfi-haslab/haschain/genesis"
	"github.com/lutfi-haslab/haschain/has"
	"github.com/lutfi-haslab/haschain/lvldb"
	"github.com/lutfi-haslab/haschain/node"
	"github.com/lutfi-haslab/haschain/poa"
	"github.com/lutfi-haslab/haschain/tx"
)

var (
	alice = genesis.DevAccounts()[0]
	bob   = has.BytesToAddress([]byte("bob"))

	eth = new(big.Int).SetUint64(1e18)
)

func newNode(t *testing.T) *node.Node {
	db, err := lvldb.NewMem()
	assert.Nil(t, err)
	n, err := node.New(db, genesis.NewDevnet())
	assert.Nil(t, err)
	return n
}

func transfer(nonce uint64, value *big.Int) *tx.Transaction {
	return new(tx.Builder).
		From(alice).
		To(&bob).
		Value(value).
		Gas(21000).
		GasPrice(big.NewInt(1)).
		Nonce(nonce).
		Build()
}

func TestBootstrap(t *testing.T) {
	n := newNode(t)

	best := n.Chain().BestBlock()
	assert.NotNil(t, best)
	assert.Equal(t, uint32(0), best.Header().Number())
	assert.True(t, best.Header().ParentHash().IsZero())

	// dev account funded by the allocation
	balance, err := n.Stater().NewState().GetBalance(alice)
	assert.Nil(t, err)
	assert.True(t, balance.Sign() > 0)
}

func TestTransferThroughBlock(t *testing.T) {
	n := newNode(t)

	assert.Nil(t, n.SubmitTransaction(transfer(0, eth)))
	assert.Equal(t, 1, n.Pool().Len())

	genesisTime := n.Chain().BestBlock().Header().Timestamp()
	blk, err := n.PackBlock(genesisTime + 10)
	assert.Nil(t, err)
	assert.Len(t, blk.Transactions(), 1)
	assert.Equal(t, uint32(1), blk.Header().Number())

	// tip moved, pool pruned
	assert.Equal(t, blk.Header().Hash(), n.Chain().BestBlock().Header().Hash())
	assert.Equal(t, 0, n.Pool().Len())

	st := n.Stater().NewState()
	bobBalance, _ := st.GetBalance(bob)
	assert.Equal(t, eth, bobBalance)

	aliceBalance, _ := st.GetBalance(alice)
	expected := new(big.Int).Mul(big.NewInt(1_000_000), eth)
	expected.Sub(expected, eth)
	expected.Sub(expected, big.NewInt(21000))
	assert.Equal(t, expected, aliceBalance)

	nonce, _ := st.GetNonce(alice)
	assert.Equal(t, uint64(1), nonce)

	// receipt is queryable
	receipt, err := n.Chain().GetTransactionReceipt(blk.Transactions()[0].Hash())
	assert.Nil(t, err)
	assert.Equal(t, tx.StatusSucceeded, receipt.Status)
}

func TestNonceGapAcrossBlocks(t *testing.T) {
	n := newNode(t)
	genesisTime := n.Chain().BestBlock().Header().Timestamp()

	// nonce 1 arrives first: queued, blocks exclude it
	gapped := transfer(1, big.NewInt(1))
	assert.Nil(t, n.SubmitTransaction(gapped))

	blk, err := n.PackBlock(genesisTime + 10)
	assert.Nil(t, err)
	assert.Len(t, blk.Transactions(), 0)
	assert.Equal(t, 1, n.Pool().Len())

	// nonce 0 arrives: pending, gets mined
	assert.Nil(t, n.SubmitTransaction(transfer(0, big.NewInt(1))))
	blk, err = n.PackBlock(genesisTime + 20)
	assert.Nil(t, err)
	assert.Len(t, blk.Transactions(), 1)
	assert.Equal(t, uint64(0), blk.Transactions()[0].Nonce())

	// the gapped tx was promoted and mines next
	blk, err = n.PackBlock(genesisTime + 30)
	assert.Nil(t, err)
	assert.Len(t, blk.Transactions(), 1)
	assert.Equal(t, gapped.Hash(), blk.Transactions()[0].Hash())
}

func TestValidatorRotation(t *testing.T) {
	n := newNode(t)
	genesisTime := n.Chain().BestBlock().Header().Timestamp()

	validators := genesis.NewDevnet().Validators()
	for i := 1; i <= 3; i++ {
		blk, err := n.PackBlock(genesisTime + uint64(i)*10)
		assert.Nil(t, err)
		// round-robin: number mod |validators|
		assert.Equal(t, validators[blk.Header().Number()%uint32(len(validators))], blk.Header().Validator())
	}
}

func TestExtendFromPeer(t *testing.T) {
	producer := newNode(t)
	replica := newNode(t)
	genesisTime := producer.Chain().BestBlock().Header().Timestamp()

	assert.Nil(t, producer.SubmitTransaction(transfer(0, eth)))
	blk, err := producer.PackBlock(genesisTime + 10)
	assert.Nil(t, err)

	decision, err := replica.AddBlock(blk)
	assert.Nil(t, err)
	assert.Equal(t, poa.ForkExtend, decision)
	assert.Equal(t, blk.Header().Hash(), replica.Chain().BestBlock().Header().Hash())

	// replica converged on the same state
	bobBalance, _ := replica.Stater().NewState().GetBalance(bob)
	assert.Equal(t, eth, bobBalance)

	// feeding it again reports already known
	_, err = replica.AddBlock(blk)
	assert.Equal(t, consensus.ErrAlreadyKnown, err)
}

func TestShallowReorg(t *testing.T) {
	local := newNode(t)
	remote := newNode(t)
	genesisTime := local.Chain().BestBlock().Header().Timestamp()

	// local mines block 1 with a transfer
	displaced := transfer(0, big.NewInt(7))
	assert.Nil(t, local.SubmitTransaction(displaced))
	localTip, err := local.PackBlock(genesisTime + 10)
	assert.Nil(t, err)
	assert.Len(t, localTip.Transactions(), 1)

	// the remote chain grows three empty blocks on the same genesis
	var remoteBlocks []*block.Block
	for i := 1; i <= 3; i++ {
		blk, err := remote.PackBlock(genesisTime + uint64(i)*20)
		assert.Nil(t, err)
		remoteBlocks = append(remoteBlocks, blk)
	}

	// remote block 1: same height as the local tip, different parent chain -> kept aside
	decision, err := local.AddBlock(remoteBlocks[0])
	assert.Nil(t, err)
	assert.Equal(t, poa.ForkIgnore, decision)
	assert.Equal(t, localTip.Header().Hash(), local.Chain().BestBlock().Header().Hash())

	// remote block 2: ambiguous same-height race -> still ignored
	decision, err = local.AddBlock(remoteBlocks[1])
	assert.Nil(t, err)
	assert.Equal(t, poa.ForkIgnore, decision)

	// remote block 3: strictly longer chain -> reorg
	decision, err = local.AddBlock(remoteBlocks[2])
	assert.Nil(t, err)
	assert.Equal(t, poa.ForkReorg, decision)

	// the remote chain is now canonical
	assert.Equal(t, remoteBlocks[2].Header().Hash(), local.Chain().BestBlock().Header().Hash())
	for _, blk := range remoteBlocks {
		canonical, err := local.Chain().GetBlockByNumber(blk.Header().Number())
		assert.Nil(t, err)
		assert.Equal(t, blk.Header().Hash(), canonical.Header().Hash())
	}

	// the displaced block's transaction returned to the pool
	assert.NotNil(t, local.Pool().Get(displaced.Hash()))
}

func TestIgnoreLowerBlock(t *testing.T) {
	local := newNode(t)
	remote := newNode(t)
	genesisTime := local.Chain().BestBlock().Header().Timestamp()

	_, err := local.PackBlock(genesisTime + 10)
	assert.Nil(t, err)
	_, err = local.PackBlock(genesisTime + 20)
	assert.Nil(t, err)

	remoteBlk, err := remote.PackBlock(genesisTime + 30)
	assert.Nil(t, err)

	// height 1 vs tip 2: ignored, tip unchanged
	tip := local.Chain().BestBlock().Header().Hash()
	decision, err := local.AddBlock(remoteBlk)
	assert.Nil(t, err)
	assert.Equal(t, poa.ForkIgnore, decision)
	assert.Equal(t, tip, local.Chain().BestBlock().Header().Hash())
}

func TestRestartKeepsChain(t *testing.T) {
	db, err := lvldb.NewMem()
	assert.Nil(t, err)

	n, err := node.New(db, genesis.NewDevnet())
	assert.Nil(t, err)
	genesisTime := n.Chain().BestBlock().Header().Timestamp()

	assert.Nil(t, n.SubmitTransaction(transfer(0, eth)))
	blk, err := n.PackBlock(genesisTime + 10)
	assert.Nil(t, err)

	// a second node over the same store resumes at the tip
	n2, err := node.New(db, genesis.NewDevnet())
	assert.Nil(t, err)
	assert.Equal(t, blk.Header().Hash(), n2.Chain().BestBlock().Header().Hash())

	balance, _ := n2.Stater().NewState().GetBalance(bob)
	assert.Equal(t, eth, balance)
}
