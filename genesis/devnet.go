// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"math/big"

	"github.com/lutfi-haslab/haschain/has"
)

// DevAccounts returns the well-known development accounts.
func DevAccounts() []has.Address {
	return []has.Address{
		has.MustParseAddress("0xf077b491b355e64048ce21e3a6fc4751eeea77fa"),
		has.MustParseAddress("0x435933c8064b4ae76be665428e0307ef2ccfbd68"),
		has.MustParseAddress("0x0f872421dc479f3c11edd89512731814d0598db5"),
	}
}

// NewDevnet create genesis for a solo development chain: the dev accounts
// double as the validator set and are each funded with 1M coins.
func NewDevnet() *Genesis {
	accounts := DevAccounts()

	million := new(big.Int).Mul(big.NewInt(1_000_000), big.NewInt(1e18))
	alloc := make(map[has.Address]Alloc, len(accounts))
	for _, addr := range accounts {
		alloc[addr] = Alloc{Balance: new(big.Int).Set(million)}
	}

	gen, err := New(Config{
		ChainID:                1337,
		BlockTime:              has.BlockInterval,
		GasLimit:               has.InitialGasLimit,
		MinGasPrice:            big.NewInt(1),
		MaxPoolSize:            10000,
		MaxAccountTransactions: 16,
		TransactionTimeout:     3600,
		InactivityThreshold:    has.InactivityThreshold,
	}, accounts, alloc, 1526400000)
	if err != nil {
		// the devnet preset is static; it can't fail
		panic(err)
	}
	return gen
}
