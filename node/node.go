// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"time"

	"github.com/pkg/errors"

	"github.com/lutfi-haslab/haschain/block"
	"github.com/lutfi-haslab/haschain/chain"
	"github.com/lutfi-haslab/haschain/consensus"
	"github.com/lutfi-haslab/haschain/genesis"
	"github.com/lutfi-haslab/haschain/has"
	"github.com/lutfi-haslab/haschain/kv"
	"github.com/lutfi-haslab/haschain/log"
	"github.com/lutfi-haslab/haschain/packer"
	"github.com/lutfi-haslab/haschain/poa"
	"github.com/lutfi-haslab/haschain/runtime"
	"github.com/lutfi-haslab/haschain/state"
	"github.com/lutfi-haslab/haschain/tx"
	"github.com/lutfi-haslab/haschain/txpool"
)

var logger = log.WithContext("pkg", "node")

// Node is the chain manager: the single owner of world state, chain store,
// pool and consensus. All mutations flow through it, synchronously.
type Node struct {
	db     kv.GetPutter
	config genesis.Config

	chain     *chain.Chain
	stater    *state.Stater
	authority *poa.Authority
	pool      *txpool.TxPool
	packer    *packer.Packer
	cons      *consensus.Consensus
}

// New bootstraps a node from the given store and genesis: an empty store
// gets the genesis block and allocation applied; an initialized one gets
// its tip loaded.
func New(db kv.GetPutter, gene *genesis.Genesis) (*Node, error) {
	c, err := chain.New(db)
	if err != nil {
		return nil, err
	}

	config := gene.Config()
	stater := state.NewStater(db)
	authority := poa.NewAuthority(gene.Validators(), config.InactivityThreshold)

	n := &Node{
		db:        db,
		config:    config,
		chain:     c,
		stater:    stater,
		authority: authority,
		packer:    packer.New(c, authority, config.ChainID, config.BlockTime, config.GasLimit),
		cons:      consensus.New(c, authority, config.ChainID, config.BlockTime, config.GasLimit),
	}

	if c.BestBlock() == nil {
		st := stater.NewState()
		genesisBlock, stage, err := gene.Build(st)
		if err != nil {
			return nil, errors.Wrap(err, "build genesis")
		}
		if err := stage.Commit(db); err != nil {
			return nil, errors.Wrap(err, "commit genesis state")
		}
		if err := c.AddBlock(genesisBlock, nil); err != nil {
			return nil, errors.Wrap(err, "store genesis block")
		}
		if err := c.SetBestBlock(genesisBlock.Header().Hash()); err != nil {
			return nil, err
		}
		logger.Info("genesis block created", "hash", genesisBlock.Header().Hash())
	} else {
		logger.Info("chain loaded", "best", c.BestBlock().Header().Number())
	}

	n.pool = txpool.New(txpool.Options{
		Limit:           config.MaxPoolSize,
		LimitPerAccount: config.MaxAccountTransactions,
		MaxLifetime:     time.Duration(config.TransactionTimeout) * time.Second,
		MinGasPrice:     config.MinGasPrice,
		BlockGasLimit:   config.GasLimit,
	}, func(addr has.Address) (uint64, error) {
		return stater.NewState().GetNonce(addr)
	})

	return n, nil
}

// Chain returns the chain store.
func (n *Node) Chain() *chain.Chain {
	return n.chain
}

// Pool returns the transaction pool.
func (n *Node) Pool() *txpool.TxPool {
	return n.pool
}

// Authority returns the validator set.
func (n *Node) Authority() *poa.Authority {
	return n.authority
}

// Stater returns the state factory.
func (n *Node) Stater() *state.Stater {
	return n.stater
}

// Config returns the chain config.
func (n *Node) Config() genesis.Config {
	return n.config
}

// SubmitTransaction admits a transaction into the pool.
func (n *Node) SubmitTransaction(trx *tx.Transaction) error {
	return n.pool.Add(trx)
}

// PackBlock produces, persists and adopts a new block on top of the
// current tip, draining eligible transactions from the pool.
func (n *Node) PackBlock(nowTimestamp uint64) (*block.Block, error) {
	parent := n.chain.BestBlock().Header()

	st := n.stater.NewState()
	flow, err := n.packer.Prepare(st, parent, nowTimestamp)
	if err != nil {
		return nil, err
	}

	var badTxs []has.Bytes32
	for _, trx := range n.pool.Executables(n.config.GasLimit) {
		if err := flow.Adopt(trx); err != nil {
			switch {
			case packer.IsGasLimitReached(err):
				// block is full
			case packer.IsKnownTx(err):
				badTxs = append(badTxs, trx.Hash())
			case packer.IsBadTx(err):
				logger.Debug("tx dropped while packing", "hash", trx.Hash(), "err", err)
				badTxs = append(badTxs, trx.Hash())
			default:
				flow.Abort()
				return nil, err
			}
			if packer.IsGasLimitReached(err) {
				break
			}
		}
	}

	newBlock, stage, receipts, err := flow.Pack()
	if err != nil {
		flow.Abort()
		return nil, err
	}

	if err := n.commitBlock(newBlock, stage, receipts); err != nil {
		return nil, err
	}

	n.pool.Remove(badTxs...)
	logger.Info("block packed", "number", newBlock.Header().Number(),
		"txs", len(newBlock.Transactions()), "gasUsed", newBlock.Header().GasUsed())
	return newBlock, nil
}

// AddBlock handles a block received from the outside: validate, consult
// fork choice, then extend, store aside, or reorg.
func (n *Node) AddBlock(blk *block.Block) (poa.ForkDecision, error) {
	header := blk.Header()
	tip := n.chain.BestBlock().Header()

	if known, err := n.chain.HasBlock(header.Hash()); err != nil {
		return poa.ForkIgnore, err
	} else if known {
		return poa.ForkIgnore, consensus.ErrAlreadyKnown
	}

	parentHeader, err := n.chain.GetHeader(header.ParentHash())
	if err != nil {
		if n.chain.IsNotFound(err) {
			return poa.ForkIgnore, consensus.ErrUnknownParent
		}
		return poa.ForkIgnore, err
	}

	decision := poa.ShouldReorg(header, tip)
	now := uint64(time.Now().Unix())

	switch decision {
	case poa.ForkExtend:
		st := n.stater.NewState()
		stage, receipts, err := n.cons.Process(blk, st, now)
		if err != nil {
			return decision, err
		}
		if err := n.commitBlock(blk, stage, receipts); err != nil {
			return decision, err
		}
		logger.Info("chain extended", "number", header.Number(), "hash", header.Hash())
		return decision, nil

	case poa.ForkIgnore:
		// validate the header and keep the block around; it may become
		// an ancestor of a longer side chain
		if err := n.cons.ValidateStructure(blk, parentHeader, now); err != nil {
			return decision, err
		}
		if err := n.chain.AddBlock(blk, nil); err != nil {
			return decision, err
		}
		logger.Debug("side block stored", "number", header.Number(), "hash", header.Hash())
		return decision, nil

	default: // poa.ForkReorg
		if err := n.cons.ValidateStructure(blk, parentHeader, now); err != nil {
			return decision, err
		}
		if err := n.reorg(blk); err != nil {
			return decision, err
		}
		return decision, nil
	}
}

// commitBlock persists the staged state and the block, moves the tip and
// updates validator liveness and the pool.
func (n *Node) commitBlock(blk *block.Block, stage *state.Stage, receipts tx.Receipts) error {
	if stage != nil {
		if err := stage.Commit(n.db); err != nil {
			return err
		}
	}
	if err := n.chain.AddBlock(blk, receipts); err != nil {
		return err
	}
	if err := n.chain.SetBestBlock(blk.Header().Hash()); err != nil {
		return err
	}

	n.authority.Update(blk.Header().Number(), blk.Header().Validator())

	included := make([]has.Bytes32, 0, len(blk.Transactions()))
	for _, trx := range blk.Transactions() {
		included = append(included, trx.Hash())
	}
	n.pool.Remove(included...)
	return nil
}

// reorg walks back from the current tip to the common ancestor of the new
// block, restores the displaced blocks' transactions to the pool, then
// adopts the new chain in order. The world state is not rewound; the new
// chain's transactions are re-applied best-effort on the current state.
func (n *Node) reorg(newBlock *block.Block) error {
	tip := n.chain.BestBlock()

	// collect the new chain segment down to a block we consider canonical
	segment := []*block.Block{newBlock}
	cursor := newBlock.Header().ParentHash()
	for {
		blk, err := n.chain.GetBlock(cursor)
		if err != nil {
			if n.chain.IsNotFound(err) {
				return consensus.ErrUnknownParent
			}
			return err
		}
		canonical, err := n.chain.GetBlockByNumber(blk.Header().Number())
		if err == nil && canonical.Header().Hash() == blk.Header().Hash() {
			// common ancestor
			break
		}
		segment = append(segment, blk)
		cursor = blk.Header().ParentHash()
	}
	ancestorNumber := segment[len(segment)-1].Header().Number() - 1

	// restore displaced transactions to the pool
	for num := tip.Header().Number(); num > ancestorNumber; num-- {
		displaced, err := n.chain.GetBlockByNumber(num)
		if err != nil {
			return err
		}
		n.pool.Fill(displaced.Transactions())
	}

	// adopt the new chain in ascending order
	for i := len(segment) - 1; i >= 0; i-- {
		blk := segment[i]
		st := n.stater.NewState()
		receipts := n.replay(st, blk)
		if err := n.chain.AddBlock(blk, receipts); err != nil {
			return err
		}
		if err := n.chain.SetBestBlock(blk.Header().Hash()); err != nil {
			return err
		}
		n.authority.Update(blk.Header().Number(), blk.Header().Validator())

		included := make([]has.Bytes32, 0, len(blk.Transactions()))
		for _, trx := range blk.Transactions() {
			included = append(included, trx.Hash())
		}
		n.pool.Remove(included...)
	}

	logger.Info("chain reorged", "old", tip.Header().Number(),
		"new", newBlock.Header().Number(), "hash", newBlock.Header().Hash())
	return nil
}

// replay executes a reorged-in block's transactions on the current state,
// tolerating per-transaction failures. Deep state rewind is out of scope;
// transactions no longer executable on the current state are skipped.
func (n *Node) replay(st *state.State, blk *block.Block) tx.Receipts {
	header := blk.Header()
	rt := runtimeFor(st, n.config, header)

	var (
		receipts tx.Receipts
		gasUsed  uint64
	)
	for _, trx := range blk.Transactions() {
		checkpoint := st.NewCheckpoint()
		receipt, err := rt.ExecuteTransaction(trx)
		if err != nil {
			st.RevertTo(checkpoint)
			logger.Debug("tx skipped during reorg replay", "hash", trx.Hash(), "err", err)
			continue
		}
		st.Commit(checkpoint)
		gasUsed += receipt.GasUsed
		receipt.CumulativeGasUsed = gasUsed
		receipts = append(receipts, receipt)
	}
	if err := st.Stage().Commit(n.db); err != nil {
		logger.Warn("reorg state commit failed", "err", err)
	}
	return receipts
}

func runtimeFor(st *state.State, config genesis.Config, header *block.Header) *runtime.Runtime {
	return runtime.New(st, &runtime.Context{
		ChainID:  config.ChainID,
		Number:   header.Number(),
		Time:     header.Timestamp(),
		Coinbase: header.Validator(),
		GasLimit: header.GasLimit(),
	})
}

// Housekeep ages out stale pool entries.
func (n *Node) Housekeep() {
	n.pool.WashOld()
}
