// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis_test

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lutfi-haslab/haschain/genesis"
	"github.com/lutfi-haslab/haschain/has"
	"github.com/lutfi-haslab/haschain/lvldb"
	"github.com/lutfi-haslab/haschain/state"
)

func TestDevnetBuild(t *testing.T) {
	gene := genesis.NewDevnet()

	db, _ := lvldb.NewMem()
	st := state.New(db)
	blk, stage, err := gene.Build(st)
	assert.Nil(t, err)

	header := blk.Header()
	assert.Equal(t, uint32(0), header.Number())
	assert.True(t, header.ParentHash().IsZero())
	assert.Len(t, header.Signature(), 0)
	assert.Equal(t, gene.Validators()[0], header.Validator())
	assert.Equal(t, stage.Hash(), header.StateRoot())

	// dev accounts are funded
	balance, err := st.GetBalance(genesis.DevAccounts()[0])
	assert.Nil(t, err)
	assert.True(t, balance.Sign() > 0)
}

func TestDevnetDeterminism(t *testing.T) {
	build := func() has.Bytes32 {
		db, _ := lvldb.NewMem()
		st := state.New(db)
		blk, _, err := genesis.NewDevnet().Build(st)
		assert.Nil(t, err)
		return blk.Header().Hash()
	}
	assert.Equal(t, build(), build())
}

func TestCustomNet(t *testing.T) {
	doc := `
config:
  chainId: 99
  blockTime: 7
  gasLimit: 20000000
  maxPoolSize: 100
  maxAccountTransactions: 4
  transactionTimeout: 600
  inactivityThreshold: 3
timestamp: 1700000000
validators:
  - "0xf077b491b355e64048ce21e3a6fc4751eeea77fa"
  - "0x435933c8064b4ae76be665428e0307ef2ccfbd68"
alloc:
  "0xf077b491b355e64048ce21e3a6fc4751eeea77fa":
    balance: "1000000000000000000"
    nonce: 2
    storage:
      "0x0000000000000000000000000000000000000000000000000000000000000001": "0x0000000000000000000000000000000000000000000000000000000000000007"
`
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	assert.Nil(t, os.WriteFile(path, []byte(doc), 0o600))

	gene, err := genesis.NewCustomNet(path)
	assert.Nil(t, err)

	config := gene.Config()
	assert.Equal(t, uint64(99), config.ChainID)
	assert.Equal(t, uint64(7), config.BlockTime)
	assert.Equal(t, uint64(20000000), config.GasLimit)
	assert.Equal(t, uint32(3), config.InactivityThreshold)
	assert.Len(t, gene.Validators(), 2)

	db, _ := lvldb.NewMem()
	st := state.New(db)
	blk, _, err := gene.Build(st)
	assert.Nil(t, err)
	assert.Equal(t, uint64(1700000000), blk.Header().Timestamp())

	addr := has.MustParseAddress("0xf077b491b355e64048ce21e3a6fc4751eeea77fa")
	balance, _ := st.GetBalance(addr)
	assert.Equal(t, new(big.Int).SetUint64(1e18), balance)
	nonce, _ := st.GetNonce(addr)
	assert.Equal(t, uint64(2), nonce)
	slot, _ := st.GetStorage(addr, has.Bytes32{31: 1})
	assert.Equal(t, has.Bytes32{31: 7}, slot)
}

func TestEmptyValidators(t *testing.T) {
	_, err := genesis.New(genesis.Config{}, nil, nil, 0)
	assert.NotNil(t, err)
}
