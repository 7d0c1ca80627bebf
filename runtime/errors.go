// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import "errors"

// Validation errors. A transaction failing any of these is not executable
// on the current state and must not be included in a block; no state is
// touched when they are returned. errAccountCollision is the exception: it
// is an execution failure, which ExecuteTransaction reports through a failed
// receipt, keeping the gas debit and nonce increment.
var (
	errGasLimitTooLow      = errors.New("gas limit too low")
	errInvalidNonce        = errors.New("invalid nonce")
	errInsufficientBalance = errors.New("insufficient balance to cover tx cost")
	errNegativeValue       = errors.New("negative value")
	errValueTooLarge       = errors.New("value exceeds 256 bits")
	errNegativeGasPrice    = errors.New("negative gas price")
	errAccountCollision    = errors.New("contract address collision")
)

// IsGasLimitTooLow reports whether err means the gas provision can't cover
// the intrinsic gas.
func IsGasLimitTooLow(err error) bool {
	return errors.Is(err, errGasLimitTooLow)
}

// IsInvalidNonce reports whether err means the tx nonce doesn't match the
// sender's account nonce.
func IsInvalidNonce(err error) bool {
	return errors.Is(err, errInvalidNonce)
}

// IsInsufficientBalance reports whether err means the sender can't pay for
// value + gas.
func IsInsufficientBalance(err error) bool {
	return errors.Is(err, errInsufficientBalance)
}

// IsAccountCollision reports whether err means a creation targeted an
// already occupied address.
func IsAccountCollision(err error) bool {
	return errors.Is(err, errAccountCollision)
}
