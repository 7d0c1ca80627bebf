// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package packer

import "errors"

var (
	errGasLimitReached = errors.New("gas limit reached")
	errKnownTx         = errors.New("known tx")
)

// IsGasLimitReached block is full of txs.
func IsGasLimitReached(err error) bool {
	return errors.Is(err, errGasLimitReached)
}

// IsKnownTx tx already packed in the chain or this flow.
func IsKnownTx(err error) bool {
	return errors.Is(err, errKnownTx)
}

// IsBadTx not a valid tx on current state.
func IsBadTx(err error) bool {
	var bad badTxError
	return errors.As(err, &bad)
}

type badTxError struct {
	msg string
}

func (e badTxError) Error() string {
	return "bad tx: " + e.msg
}
