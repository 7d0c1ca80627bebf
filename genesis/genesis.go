// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/lutfi-haslab/haschain/block"
	"github.com/lutfi-haslab/haschain/has"
	"github.com/lutfi-haslab/haschain/state"
)

// Config carries the chain parameters fixed at genesis.
type Config struct {
	ChainID   uint64
	BlockTime uint64 // seconds, minimum parent-child spacing
	GasLimit  uint64 // identical across all produced blocks

	MinGasPrice            *big.Int
	MaxPoolSize            int
	MaxAccountTransactions int
	TransactionTimeout     uint64 // seconds
	InactivityThreshold    uint32
}

// Alloc is an account preset in the genesis state.
type Alloc struct {
	Balance *big.Int
	Nonce   uint64
	Code    string            // 0x-hex runtime code
	Storage map[string]string // 0x-hex slot -> 0x-hex value
}

// Genesis to build genesis block.
type Genesis struct {
	builder    *Builder
	config     Config
	validators []has.Address
}

// New creates a genesis from config, validator set and allocation map.
func New(config Config, validators []has.Address, alloc map[has.Address]Alloc, timestamp uint64) (*Genesis, error) {
	if len(validators) == 0 {
		return nil, errors.New("empty validator set")
	}
	if config.GasLimit == 0 {
		config.GasLimit = has.InitialGasLimit
	}
	if config.BlockTime == 0 {
		config.BlockTime = has.BlockInterval
	}

	builder := new(Builder).
		Timestamp(timestamp).
		GasLimit(config.GasLimit).
		Validator(validators[0]).
		State(func(st *state.State) error {
			for addr, a := range alloc {
				if a.Balance != nil {
					if a.Balance.Sign() < 0 {
						return errors.New("negative balance in alloc")
					}
					if err := st.AddBalance(addr, a.Balance); err != nil {
						return err
					}
				}
				if a.Nonce > 0 {
					if err := st.SetNonce(addr, a.Nonce); err != nil {
						return err
					}
				}
				if len(a.Code) > 0 {
					code, err := parseHexBytes(a.Code)
					if err != nil {
						return errors.Wrap(err, "alloc code")
					}
					if err := st.SetCode(addr, code); err != nil {
						return err
					}
				}
				for k, v := range a.Storage {
					key, err := has.ParseBytes32(k)
					if err != nil {
						return errors.Wrap(err, "alloc storage key")
					}
					val, err := has.ParseBytes32(v)
					if err != nil {
						return errors.Wrap(err, "alloc storage value")
					}
					st.SetStorage(addr, key, val)
				}
			}
			return nil
		})

	return &Genesis{
		builder:    builder,
		config:     config,
		validators: validators,
	}, nil
}

// Config returns the chain config fixed by this genesis.
func (g *Genesis) Config() Config {
	return g.config
}

// Validators returns the initial ordered authority set.
func (g *Genesis) Validators() []has.Address {
	return append([]has.Address(nil), g.validators...)
}

// Build builds the genesis block on the given state.
func (g *Genesis) Build(st *state.State) (*block.Block, *state.Stage, error) {
	return g.builder.Build(st)
}
