// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package txpool

import "github.com/pkg/errors"

// Admission errors. Each one rejects the transaction without touching the pool.
var (
	errKnownTx              = errors.New("known transaction")
	errStaleNonce           = errors.New("nonce lower than expected")
	errAccountLimitExceeded = errors.New("account quota exceeded")
	errGasPriceTooLow       = errors.New("gas price below pool minimum")
	errGasLimitTooHigh      = errors.New("gas limit exceeds block gas limit")
	errGasLimitZero         = errors.New("zero gas limit")
	errMissingSender        = errors.New("missing sender")
	errNegativeValue        = errors.New("negative value")
)

func IsErrKnownTx(err error) bool {
	return errors.Is(err, errKnownTx)
}

func IsErrStaleNonce(err error) bool {
	return errors.Is(err, errStaleNonce)
}

func IsErrAccountLimitExceeded(err error) bool {
	return errors.Is(err, errAccountLimitExceeded)
}

func IsErrGasPriceTooLow(err error) bool {
	return errors.Is(err, errGasPriceTooLow)
}

func IsErrMissingSender(err error) bool {
	return errors.Is(err, errMissingSender)
}
