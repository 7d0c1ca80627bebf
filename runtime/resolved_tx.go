// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"math/big"

	"github.com/lutfi-haslab/haschain/has"
	"github.com/lutfi-haslab/haschain/state"
	"github.com/lutfi-haslab/haschain/tx"
)

// ResolvedTransaction resolve the transaction according to given state.
type ResolvedTransaction struct {
	tx           *tx.Transaction
	Origin       has.Address
	IntrinsicGas uint64
	Value        *big.Int
	To           *has.Address
	Data         []byte
}

// ResolveTransaction resolves the transaction and performs basic validation.
func ResolveTransaction(trx *tx.Transaction) (*ResolvedTransaction, error) {
	if trx.Gas() == 0 {
		return nil, errGasLimitTooLow
	}
	intrinsicGas, err := trx.IntrinsicGas()
	if err != nil {
		return nil, err
	}
	if trx.Gas() < intrinsicGas {
		return nil, errGasLimitTooLow
	}
	value := trx.Value()
	if value.Sign() < 0 {
		return nil, errNegativeValue
	}
	if value.BitLen() > 256 {
		return nil, errValueTooLarge
	}
	if trx.GasPrice().Sign() < 0 {
		return nil, errNegativeGasPrice
	}

	return &ResolvedTransaction{
		tx:           trx,
		Origin:       trx.From(),
		IntrinsicGas: intrinsicGas,
		Value:        value,
		To:           trx.To(),
		Data:         trx.Data(),
	}, nil
}

// GasCost returns the max amount payable for gas, gas * gasPrice.
func (r *ResolvedTransaction) GasCost() *big.Int {
	cost := new(big.Int).SetUint64(r.tx.Gas())
	return cost.Mul(cost, r.tx.GasPrice())
}

// CheckState validates the transaction against the current state: the
// sender's nonce must match exactly and the balance must cover
// value + gas * gasPrice.
func (r *ResolvedTransaction) CheckState(st *state.State) error {
	nonce, err := st.GetNonce(r.Origin)
	if err != nil {
		return err
	}
	if r.tx.Nonce() != nonce {
		return errInvalidNonce
	}

	balance, err := st.GetBalance(r.Origin)
	if err != nil {
		return err
	}
	cost := r.GasCost()
	cost.Add(cost, r.Value)
	if balance.Cmp(cost) < 0 {
		return errInsufficientBalance
	}
	return nil
}
