// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package txpool

import (
	"sort"
	"time"

	"github.com/lutfi-haslab/haschain/tx"
)

// txObject wraps a pooled transaction with its admission bookkeeping.
type txObject struct {
	*tx.Transaction

	timeAdded int64  // arrival wall-clock, unix seconds
	priority  uint64 // admission order; lower arrived earlier
	pending   bool   // nonce matches the sender's next expected nonce
}

func newTxObject(trx *tx.Transaction, priority uint64) *txObject {
	return &txObject{
		Transaction: trx,
		timeAdded:   time.Now().Unix(),
		priority:    priority,
	}
}

// Age returns how long the object has been pooled.
func (o *txObject) Age() time.Duration {
	return time.Since(time.Unix(o.timeAdded, 0))
}

// txObjects a sortable slice of tx objects.
type txObjects []*txObject

// sortForBlock orders by gas price descending, admission priority ascending.
func (objs txObjects) sortForBlock() {
	sort.SliceStable(objs, func(i, j int) bool {
		cmp := objs[i].GasPrice().Cmp(objs[j].GasPrice())
		if cmp != 0 {
			return cmp > 0
		}
		return objs[i].priority < objs[j].priority
	})
}

// sortForEviction orders by gas price ascending, oldest arrival first.
func (objs txObjects) sortForEviction() {
	sort.SliceStable(objs, func(i, j int) bool {
		cmp := objs[i].GasPrice().Cmp(objs[j].GasPrice())
		if cmp != 0 {
			return cmp < 0
		}
		return objs[i].priority < objs[j].priority
	})
}
