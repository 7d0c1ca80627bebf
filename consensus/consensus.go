// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus

import (
	"github.com/pkg/errors"

	"github.com/lutfi-haslab/haschain/block"
	"github.com/lutfi-haslab/haschain/chain"
	"github.com/lutfi-haslab/haschain/has"
	"github.com/lutfi-haslab/haschain/poa"
	"github.com/lutfi-haslab/haschain/runtime"
	"github.com/lutfi-haslab/haschain/state"
	"github.com/lutfi-haslab/haschain/tx"
)

// Consensus validates received blocks against the PoA rules and replays
// their transactions to verify execution results.
type Consensus struct {
	chain     *chain.Chain
	authority *poa.Authority

	chainID   uint64
	blockTime uint64
	gasLimit  uint64
}

// New create a Consensus instance.
func New(c *chain.Chain, authority *poa.Authority, chainID, blockTime, gasLimit uint64) *Consensus {
	return &Consensus{
		chain:     c,
		authority: authority,
		chainID:   chainID,
		blockTime: blockTime,
		gasLimit:  gasLimit,
	}
}

// Process validates the block and replays its transactions against the
// given state, which must reflect the parent block's post-state. It
// returns the staged state changes and the recomputed receipts.
// A transaction reverted by the VM leaves the block valid; structural and
// consensus violations reject it.
func (c *Consensus) Process(blk *block.Block, st *state.State, nowTime uint64) (*state.Stage, tx.Receipts, error) {
	header := blk.Header()

	if known, err := c.chain.HasBlock(header.Hash()); err != nil {
		return nil, nil, err
	} else if known {
		return nil, nil, ErrAlreadyKnown
	}

	parentHeader, err := c.chain.GetHeader(header.ParentHash())
	if err != nil {
		if c.chain.IsNotFound(err) {
			return nil, nil, ErrUnknownParent
		}
		return nil, nil, err
	}

	if err := c.validate(header, parentHeader, blk.Transactions(), nowTime); err != nil {
		return nil, nil, err
	}
	return c.verify(blk, st)
}

// ValidateStructure enforces the structural and PoA header rules without
// replaying transactions. It's used for side chain blocks whose pre-state
// isn't available.
func (c *Consensus) ValidateStructure(blk *block.Block, parentHeader *block.Header, nowTime uint64) error {
	return c.validate(blk.Header(), parentHeader, blk.Transactions(), nowTime)
}

// validate enforces the structural and PoA header rules.
func (c *Consensus) validate(header, parentHeader *block.Header, txs tx.Transactions, nowTime uint64) error {
	switch {
	case header.Number() != parentHeader.Number()+1:
		return ErrBlockNumberMismatch
	case header.Timestamp() <= parentHeader.Timestamp():
		return ErrTimestampTooEarly
	case header.Timestamp()-parentHeader.Timestamp() < c.blockTime:
		return ErrTimestampTooEarly
	case header.Timestamp() > nowTime+has.MaxBlockTimestampAhead:
		return ErrTimestampTooLate
	case header.GasLimit() != c.gasLimit:
		return ErrGasLimit
	case header.GasUsed() > header.GasLimit():
		return ErrGasExceeded
	case header.TxsRoot() != txs.RootHash():
		return ErrTxsRootMismatch
	}

	expected, ok := c.authority.Expected(header.Number())
	if !ok || expected != header.Validator() {
		return ErrWrongValidator
	}
	if !poa.ValidSignature(header) {
		return ErrMissingSignature
	}

	seen := make(map[has.Bytes32]bool, len(txs))
	for _, trx := range txs {
		hash := trx.Hash()
		if seen[hash] {
			return ErrDuplicateTx
		}
		seen[hash] = true
	}
	return nil
}

// verify replays the block's transactions and checks the execution
// commitments in the header.
func (c *Consensus) verify(blk *block.Block, st *state.State) (*state.Stage, tx.Receipts, error) {
	header := blk.Header()

	checkpoint := st.NewCheckpoint()
	rt := runtime.New(st, &runtime.Context{
		ChainID:  c.chainID,
		Number:   header.Number(),
		Time:     header.Timestamp(),
		Coinbase: header.Validator(),
		GasLimit: header.GasLimit(),
	})

	var (
		receipts tx.Receipts
		gasUsed  uint64
	)
	for _, trx := range blk.Transactions() {
		receipt, err := rt.ExecuteTransaction(trx)
		if err != nil {
			// nonce/balance validation failures poison the block
			st.RevertTo(checkpoint)
			return nil, nil, errors.Wrap(ErrInvalidTx, err.Error())
		}
		gasUsed += receipt.GasUsed
		receipt.CumulativeGasUsed = gasUsed
		receipts = append(receipts, receipt)
	}

	if gasUsed != header.GasUsed() {
		st.RevertTo(checkpoint)
		return nil, nil, ErrGasUsedMismatch
	}
	if receipts.RootHash() != header.ReceiptsRoot() {
		st.RevertTo(checkpoint)
		return nil, nil, ErrReceiptsRootMismatch
	}

	if err := st.Commit(checkpoint); err != nil {
		return nil, nil, err
	}
	stage := st.Stage()
	if stage.Hash() != header.StateRoot() {
		return nil, nil, ErrStateRootMismatch
	}
	return stage, receipts, nil
}
