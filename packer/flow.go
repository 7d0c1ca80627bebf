// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package packer

import (
	"github.com/lutfi-haslab/haschain/block"
	"github.com/lutfi-haslab/haschain/has"
	"github.com/lutfi-haslab/haschain/metrics"
	"github.com/lutfi-haslab/haschain/poa"
	"github.com/lutfi-haslab/haschain/runtime"
	"github.com/lutfi-haslab/haschain/state"
	"github.com/lutfi-haslab/haschain/tx"
)

var (
	metricBlocksPacked = metrics.LazyLoadCounter("packer_block_packed_count")
	metricGasUsed      = metrics.LazyLoadCounter("packer_gas_used_total")
)

// Flow the flow of packing a new block.
type Flow struct {
	packer       *Packer
	parentHeader *block.Header
	runtime      *runtime.Runtime
	validator    has.Address
	checkpoint   int

	processed map[has.Bytes32]bool
	gasUsed   uint64
	txs       tx.Transactions
	receipts  tx.Receipts
}

// ParentHeader returns parent block header.
func (f *Flow) ParentHeader() *block.Header {
	return f.parentHeader
}

// Number returns the number of the block being packed.
func (f *Flow) Number() uint32 {
	return f.runtime.Context().Number
}

// When returns the timestamp of the block being packed.
func (f *Flow) When() uint64 {
	return f.runtime.Context().Time
}

// Validator returns the scheduled producing authority.
func (f *Flow) Validator() has.Address {
	return f.validator
}

// GasUsed returns the execution gas accumulated so far.
func (f *Flow) GasUsed() uint64 {
	return f.gasUsed
}

// Adopt try to execute the given transaction.
// If the tx is valid and can be executed on current state (regardless of
// VM error), it will be adopted by the new block.
func (f *Flow) Adopt(trx *tx.Transaction) error {
	if f.gasUsed+trx.Gas() > f.runtime.Context().GasLimit {
		return errGasLimitReached
	}

	txHash := trx.Hash()
	if f.processed[txHash] {
		return errKnownTx
	}
	if found, err := f.packer.chain.HasTransaction(txHash); err != nil {
		return err
	} else if found {
		return errKnownTx
	}

	checkpoint := f.runtime.State().NewCheckpoint()
	receipt, err := f.runtime.ExecuteTransaction(trx)
	if err != nil {
		// skip and revert state
		f.runtime.State().RevertTo(checkpoint)
		return badTxError{err.Error()}
	}
	if err := f.runtime.State().Commit(checkpoint); err != nil {
		return err
	}

	f.processed[txHash] = true
	f.gasUsed += receipt.GasUsed
	receipt.CumulativeGasUsed = f.gasUsed
	f.receipts = append(f.receipts, receipt)
	f.txs = append(f.txs, trx)
	return nil
}

// Pack build and sign the new block, commit the flow's state snapshot and
// stage the state changes for persistence.
func (f *Flow) Pack() (*block.Block, *state.Stage, tx.Receipts, error) {
	st := f.runtime.State()
	if err := st.Commit(f.checkpoint); err != nil {
		return nil, nil, nil, err
	}

	stage := st.Stage()
	stateRoot := stage.Hash()

	builder := new(block.Builder).
		ParentHash(f.parentHeader.Hash()).
		Number(f.runtime.Context().Number).
		Timestamp(f.runtime.Context().Time).
		Validator(f.validator).
		GasLimit(f.runtime.Context().GasLimit).
		GasUsed(f.gasUsed).
		ReceiptsRoot(f.receipts.RootHash()).
		StateRoot(stateRoot)
	for _, trx := range f.txs {
		builder.Transaction(trx)
	}
	newBlock := builder.Build()

	sig := poa.Signature(newBlock.Header())
	metricBlocksPacked().Add(1)
	metricGasUsed().Add(int64(f.gasUsed))
	return newBlock.WithSignature(sig), stage, f.receipts, nil
}

// Abort reverts everything the flow did to the state.
func (f *Flow) Abort() {
	f.runtime.State().RevertTo(f.checkpoint)
}
