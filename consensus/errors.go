// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus

import "errors"

// Consensus errors. All of them reject the offending block as a whole.
var (
	ErrUnknownParent        = errors.New("parent block not found")
	ErrBlockNumberMismatch  = errors.New("block number doesn't follow parent")
	ErrWrongValidator       = errors.New("block produced by unscheduled validator")
	ErrTimestampTooEarly    = errors.New("block timestamp too early")
	ErrTimestampTooLate     = errors.New("block timestamp too far in the future")
	ErrGasLimit             = errors.New("block gas limit doesn't match chain config")
	ErrGasUsedMismatch      = errors.New("gas used doesn't match execution")
	ErrGasExceeded          = errors.New("gas used exceeds gas limit")
	ErrTxsRootMismatch      = errors.New("txs root mismatch")
	ErrReceiptsRootMismatch = errors.New("receipts root mismatch")
	ErrStateRootMismatch    = errors.New("state root mismatch")
	ErrMissingSignature     = errors.New("missing or invalid signature")
	ErrDuplicateTx          = errors.New("duplicate tx in block")
	ErrAlreadyKnown         = errors.New("block already known")
	ErrInvalidTx            = errors.New("tx fails pre-state validation")
)
