// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/lutfi-haslab/haschain/has"
)

// Receipt statuses.
const (
	StatusFailed    uint64 = 0
	StatusSucceeded uint64 = 1
)

// Receipt represents the results of a transaction.
type Receipt struct {
	// hash of the tx this receipt is for
	TxHash has.Bytes32
	// number of the block including the tx
	BlockNumber uint32
	// gas used by this tx
	GasUsed uint64
	// gas used by the block up to and including this tx
	CumulativeGasUsed uint64
	// address of the deployed contract, if the tx was a creation
	ContractAddress *has.Address `rlp:"nil"`
	// logs produced
	Logs []*Log
	// status of tx execution, 1 for success
	Status uint64
}

// Log represents a log entry emitted by LOG0..LOG4.
type Log struct {
	// address of the contract that generated this log
	Address has.Address
	// indexed topics
	Topics []has.Bytes32
	// non-indexed payload
	Data []byte
}
