// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package txpool

import (
	"math/big"
	"time"

	"github.com/lutfi-haslab/haschain/has"
	"github.com/lutfi-haslab/haschain/log"
	"github.com/lutfi-haslab/haschain/metrics"
	"github.com/lutfi-haslab/haschain/tx"
)

var (
	logger = log.WithContext("pkg", "txpool")

	metricAdmitted = metrics.LazyLoadCounter("txpool_admitted_count")
	metricEvicted  = metrics.LazyLoadCounter("txpool_evicted_count")
	metricPoolSize = metrics.LazyLoadGauge("txpool_current_size")
)

// Options options for tx pool.
type Options struct {
	Limit           int           // max pool size
	LimitPerAccount int           // max entries per sender
	MaxLifetime     time.Duration // entry age-out
	MinGasPrice     *big.Int      // admission floor
	BlockGasLimit   uint64        // single tx gas provision cap
}

// NonceSource reads the next expected nonce of an account.
// The committed world state satisfies this.
type NonceSource func(addr has.Address) (uint64, error)

// TxPool maintains unprocessed transactions in two logical buckets:
// pending entries are immediately includable, queued ones wait for a
// nonce gap to fill.
type TxPool struct {
	options   Options
	nextNonce NonceSource

	all             *txObjectMap
	priorityCounter uint64
}

// New create a new TxPool instance.
func New(options Options, nextNonce NonceSource) *TxPool {
	if options.MinGasPrice == nil {
		options.MinGasPrice = new(big.Int)
	}
	return &TxPool{
		options:   options,
		nextNonce: nextNonce,
		all:       newTxObjectMap(),
	}
}

// Add tries to admit the transaction into the pool.
// Admission checks run in a fixed order; the first failing one rejects.
func (p *TxPool) Add(trx *tx.Transaction) error {
	return p.add(trx, false)
}

// add admits a transaction. force skips the stale-nonce rejection, which
// reorg refills need: a displaced transaction may look stale on the current
// state but must survive in the pool.
func (p *TxPool) add(trx *tx.Transaction, force bool) error {
	if trx.GasPrice().Cmp(p.options.MinGasPrice) < 0 {
		return errGasPriceTooLow
	}
	if trx.Gas() == 0 {
		return errGasLimitZero
	}
	if trx.Gas() > p.options.BlockGasLimit {
		return errGasLimitTooHigh
	}
	if trx.Value().Sign() < 0 {
		return errNegativeValue
	}
	if trx.From().IsZero() {
		return errMissingSender
	}
	if p.all.Contains(trx.Hash()) {
		return errKnownTx
	}
	if p.all.Quota(trx.From()) >= p.options.LimitPerAccount {
		return errAccountLimitExceeded
	}

	expected, err := p.nextNonce(trx.From())
	if err != nil {
		return err
	}
	if trx.Nonce() < expected && !force {
		return errStaleNonce
	}

	p.priorityCounter++
	txObj := newTxObject(trx, p.priorityCounter)
	txObj.pending = trx.Nonce() == expected

	if err := p.all.Add(txObj, p.options.LimitPerAccount); err != nil {
		return err
	}
	metricAdmitted().Add(1)
	metricPoolSize().Set(int64(p.all.Len()))
	logger.Debug("tx admitted", "hash", trx.Hash(), "pending", txObj.pending)

	if p.all.Len() > p.options.Limit {
		p.evict(p.all.Len() - p.options.Limit)
	}
	return nil
}

// evict drops the n globally lowest-gas-price entries, oldest first on ties.
func (p *TxPool) evict(n int) {
	objs := p.all.ToTxObjects()
	objs.sortForEviction()
	for i := 0; i < n && i < len(objs); i++ {
		p.all.Remove(objs[i].Hash())
		metricEvicted().Add(1)
		logger.Debug("tx evicted", "hash", objs[i].Hash())
	}
	metricPoolSize().Set(int64(p.all.Len()))
}

// Get returns the pooled transaction with the given hash, or nil.
func (p *TxPool) Get(txHash has.Bytes32) *tx.Transaction {
	if obj := p.all.GetByHash(txHash); obj != nil {
		return obj.Transaction
	}
	return nil
}

// Len returns the number of pooled transactions.
func (p *TxPool) Len() int {
	return p.all.Len()
}

// Remove deletes the given entries, then promotes queued entries of the
// affected senders whose nonce now matches the expected next nonce.
func (p *TxPool) Remove(txHashes ...has.Bytes32) {
	senders := make(map[has.Address]struct{})
	for _, hash := range txHashes {
		if obj := p.all.GetByHash(hash); obj != nil {
			senders[obj.From()] = struct{}{}
			p.all.Remove(hash)
		}
	}
	for sender := range senders {
		p.promote(sender)
	}
	metricPoolSize().Set(int64(p.all.Len()))
}

// promote re-evaluates the pending flag of all entries of the sender
// against the current expected nonce. Stale entries are dropped.
func (p *TxPool) promote(sender has.Address) {
	expected, err := p.nextNonce(sender)
	if err != nil {
		logger.Warn("nonce lookup failed during promotion", "sender", sender, "err", err)
		return
	}
	for _, obj := range p.all.BySender(sender) {
		switch {
		case obj.Nonce() < expected:
			p.all.Remove(obj.Hash())
		case obj.Nonce() == expected:
			if !obj.pending {
				obj.pending = true
				logger.Debug("tx promoted", "hash", obj.Hash())
			}
		default:
			obj.pending = false
		}
	}
}

// Executables returns pending transactions ordered by gas price descending
// (admission order breaking ties), cut off where the cumulative gas
// provision would exceed gasLimit.
func (p *TxPool) Executables(gasLimit uint64) tx.Transactions {
	objs := p.all.ToTxObjects()
	objs.sortForBlock()

	var (
		txs           tx.Transactions
		cumulativeGas uint64
	)
	for _, obj := range objs {
		if !obj.pending {
			continue
		}
		if cumulativeGas+obj.Gas() > gasLimit {
			break
		}
		cumulativeGas += obj.Gas()
		txs = append(txs, obj.Transaction)
	}
	return txs
}

// WashOld evicts entries older than the configured lifetime.
func (p *TxPool) WashOld() {
	if p.options.MaxLifetime <= 0 {
		return
	}
	for _, obj := range p.all.ToTxObjects() {
		if obj.Age() > p.options.MaxLifetime {
			p.all.Remove(obj.Hash())
			metricEvicted().Add(1)
			logger.Debug("old tx washed", "hash", obj.Hash())
		}
	}
	metricPoolSize().Set(int64(p.all.Len()))
}

// Dump returns all pooled transactions.
func (p *TxPool) Dump() tx.Transactions {
	objs := p.all.ToTxObjects()
	txs := make(tx.Transactions, 0, len(objs))
	for _, obj := range objs {
		txs = append(txs, obj.Transaction)
	}
	return txs
}

// Fill adds txs into pool skipping admission errors.
// It's typically called when a side chain's transactions return to the
// pool after a reorg.
func (p *TxPool) Fill(txs tx.Transactions) {
	for _, trx := range txs {
		if err := p.add(trx, true); err != nil {
			logger.Debug("tx not refilled", "hash", trx.Hash(), "err", err)
		}
	}
}
