// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"encoding/hex"
	"math/big"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/lutfi-haslab/haschain/has"
)

// CustomGenesis is a user customized genesis document. Big numbers are
// carried as strings, decimal or 0x-hex.
type CustomGenesis struct {
	Config struct {
		ChainID                uint64 `yaml:"chainId"`
		BlockTime              uint64 `yaml:"blockTime"`
		GasLimit               uint64 `yaml:"gasLimit"`
		MinGasPrice            string `yaml:"minGasPrice"`
		MaxPoolSize            int    `yaml:"maxPoolSize"`
		MaxAccountTransactions int    `yaml:"maxAccountTransactions"`
		TransactionTimeout     uint64 `yaml:"transactionTimeout"`
		InactivityThreshold    uint32 `yaml:"inactivityThreshold"`
	} `yaml:"config"`
	Timestamp  uint64                 `yaml:"timestamp"`
	Validators []string               `yaml:"validators"`
	Alloc      map[string]customAlloc `yaml:"alloc"`
}

type customAlloc struct {
	Balance string            `yaml:"balance"`
	Nonce   uint64            `yaml:"nonce"`
	Code    string            `yaml:"code"`
	Storage map[string]string `yaml:"storage"`
}

// NewCustomNet loads a custom genesis document from a YAML file.
func NewCustomNet(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis file")
	}

	var custom CustomGenesis
	if err := yaml.Unmarshal(data, &custom); err != nil {
		return nil, errors.Wrap(err, "parse genesis file")
	}

	validators := make([]has.Address, 0, len(custom.Validators))
	for _, v := range custom.Validators {
		addr, err := has.ParseAddress(v)
		if err != nil {
			return nil, errors.Wrap(err, "parse validator address")
		}
		validators = append(validators, addr)
	}

	alloc := make(map[has.Address]Alloc, len(custom.Alloc))
	for k, a := range custom.Alloc {
		addr, err := has.ParseAddress(k)
		if err != nil {
			return nil, errors.Wrap(err, "parse alloc address")
		}
		balance, err := parseBigInt(a.Balance)
		if err != nil {
			return nil, errors.Wrap(err, "parse alloc balance")
		}
		alloc[addr] = Alloc{
			Balance: balance,
			Nonce:   a.Nonce,
			Code:    a.Code,
			Storage: a.Storage,
		}
	}

	minGasPrice, err := parseBigInt(custom.Config.MinGasPrice)
	if err != nil {
		return nil, errors.Wrap(err, "parse minGasPrice")
	}

	return New(Config{
		ChainID:                custom.Config.ChainID,
		BlockTime:              custom.Config.BlockTime,
		GasLimit:               custom.Config.GasLimit,
		MinGasPrice:            minGasPrice,
		MaxPoolSize:            custom.Config.MaxPoolSize,
		MaxAccountTransactions: custom.Config.MaxAccountTransactions,
		TransactionTimeout:     custom.Config.TransactionTimeout,
		InactivityThreshold:    custom.Config.InactivityThreshold,
	}, validators, alloc, custom.Timestamp)
}

// parseBigInt parses a decimal or 0x-hex number. Empty input reads as nil.
func parseBigInt(s string) (*big.Int, error) {
	if s == "" {
		return nil, nil
	}
	base := 10
	if strings.HasPrefix(strings.ToLower(s), "0x") {
		s, base = s[2:], 16
	}
	n, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, errors.Errorf("invalid number %q", s)
	}
	return n, nil
}

func parseHexBytes(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	return hex.DecodeString(s)
}
