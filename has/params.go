// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package has

// Constants of block chain.
const (
	BlockInterval uint64 = 5 // default time interval between two consecutive blocks.

	TxGas                 uint64 = 21000 // base gas charged for any transaction.
	TxGasContractCreation uint64 = 53000 // base gas charged for a contract creating transaction.
	TxDataZeroGas         uint64 = 4     // gas per zero byte of tx data.
	TxDataNonZeroGas      uint64 = 68    // gas per non-zero byte of tx data.

	InitialGasLimit uint64 = 10 * 1000 * 1000 // gas limit value in genesis block.

	MaxBlockTimestampAhead uint64 = 60 // (unit: second) max clock drift tolerated when validating a block.

	InactivityThreshold uint32 = 10 // missed block count that deactivates a validator.

	MaxStackDepth = 1024 // max depth of the VM operand stack.
)
