// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package txpool

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lutfi-haslab/haschain/has"
	"github.com/lutfi-haslab/haschain/tx"
)

var (
	alice = has.BytesToAddress([]byte("alice"))
	bob   = has.BytesToAddress([]byte("bob"))
)

// nonceMap is a NonceSource over a plain map.
func nonceMap(m map[has.Address]uint64) NonceSource {
	return func(addr has.Address) (uint64, error) {
		return m[addr], nil
	}
}

func defaultOptions() Options {
	return Options{
		Limit:           10,
		LimitPerAccount: 5,
		MaxLifetime:     time.Hour,
		MinGasPrice:     big.NewInt(1),
		BlockGasLimit:   10000000,
	}
}

func newTx(from has.Address, nonce uint64, gasPrice int64) *tx.Transaction {
	return new(tx.Builder).
		From(from).
		To(&bob).
		Gas(21000).
		GasPrice(big.NewInt(gasPrice)).
		Nonce(nonce).
		Build()
}

func TestAdmission(t *testing.T) {
	nonces := map[has.Address]uint64{}
	pool := New(defaultOptions(), nonceMap(nonces))

	trx := newTx(alice, 0, 1)
	assert.Nil(t, pool.Add(trx))
	assert.Equal(t, 1, pool.Len())
	assert.NotNil(t, pool.Get(trx.Hash()))

	// duplicate hash
	assert.True(t, IsErrKnownTx(pool.Add(trx)))

	// gas price below floor
	err := pool.Add(newTx(alice, 1, 0))
	assert.True(t, IsErrGasPriceTooLow(err))

	// zero gas limit
	zeroGas := new(tx.Builder).From(alice).Gas(0).GasPrice(big.NewInt(1)).Nonce(1).Build()
	assert.NotNil(t, pool.Add(zeroGas))

	// gas limit over block gas limit
	hugeGas := new(tx.Builder).From(alice).Gas(20000000).GasPrice(big.NewInt(1)).Nonce(1).Build()
	assert.NotNil(t, pool.Add(hugeGas))

	// missing sender
	noSender := new(tx.Builder).Gas(21000).GasPrice(big.NewInt(1)).Build()
	assert.True(t, IsErrMissingSender(pool.Add(noSender)))

	// stale nonce
	nonces[alice] = 3
	assert.True(t, IsErrStaleNonce(pool.Add(newTx(alice, 2, 1))))
}

func TestAccountQuota(t *testing.T) {
	opts := defaultOptions()
	opts.LimitPerAccount = 2
	pool := New(opts, nonceMap(map[has.Address]uint64{}))

	assert.Nil(t, pool.Add(newTx(alice, 0, 1)))
	assert.Nil(t, pool.Add(newTx(alice, 1, 1)))
	assert.True(t, IsErrAccountLimitExceeded(pool.Add(newTx(alice, 2, 1))))

	// other senders unaffected
	assert.Nil(t, pool.Add(newTx(bob, 0, 1)))
}

func TestNonceGapQueue(t *testing.T) {
	nonces := map[has.Address]uint64{}
	pool := New(defaultOptions(), nonceMap(nonces))

	// nonce 1 while 0 is expected: queued, not eligible for blocks
	gapped := newTx(alice, 1, 1)
	assert.Nil(t, pool.Add(gapped))
	assert.Len(t, pool.Executables(10000000), 0)

	// nonce 0 arrives: pending
	first := newTx(alice, 0, 1)
	assert.Nil(t, pool.Add(first))
	executables := pool.Executables(10000000)
	assert.Len(t, executables, 1)
	assert.Equal(t, first.Hash(), executables[0].Hash())

	// block includes nonce 0: account nonce advances, nonce 1 promotes
	nonces[alice] = 1
	pool.Remove(first.Hash())

	executables = pool.Executables(10000000)
	assert.Len(t, executables, 1)
	assert.Equal(t, gapped.Hash(), executables[0].Hash())
}

func TestExecutablesOrdering(t *testing.T) {
	pool := New(defaultOptions(), nonceMap(map[has.Address]uint64{}))

	cheap := newTx(alice, 0, 1)
	dear := newTx(bob, 0, 100)
	assert.Nil(t, pool.Add(cheap))
	assert.Nil(t, pool.Add(dear))

	// descending gas price
	executables := pool.Executables(10000000)
	assert.Len(t, executables, 2)
	assert.Equal(t, dear.Hash(), executables[0].Hash())
	assert.Equal(t, cheap.Hash(), executables[1].Hash())

	// equal prices fall back to arrival order
	carol := has.BytesToAddress([]byte("carol"))
	second := newTx(carol, 0, 100)
	assert.Nil(t, pool.Add(second))
	executables = pool.Executables(10000000)
	assert.Equal(t, dear.Hash(), executables[0].Hash())
	assert.Equal(t, second.Hash(), executables[1].Hash())
}

func TestExecutablesGasCutoff(t *testing.T) {
	pool := New(defaultOptions(), nonceMap(map[has.Address]uint64{}))

	assert.Nil(t, pool.Add(newTx(alice, 0, 2)))
	assert.Nil(t, pool.Add(newTx(bob, 0, 1)))

	// room for only one 21000 gas tx
	executables := pool.Executables(30000)
	assert.Len(t, executables, 1)
}

func TestEviction(t *testing.T) {
	opts := defaultOptions()
	opts.Limit = 2
	pool := New(opts, nonceMap(map[has.Address]uint64{}))

	cheap := newTx(alice, 0, 1)
	mid := newTx(bob, 0, 5)
	assert.Nil(t, pool.Add(cheap))
	assert.Nil(t, pool.Add(mid))

	// pool at capacity; a higher-priced tx evicts the lowest
	carol := has.BytesToAddress([]byte("carol"))
	dear := newTx(carol, 0, 10)
	assert.Nil(t, pool.Add(dear))

	assert.Equal(t, 2, pool.Len())
	assert.Nil(t, pool.Get(cheap.Hash()))
	assert.NotNil(t, pool.Get(mid.Hash()))
	assert.NotNil(t, pool.Get(dear.Hash()))
}

func TestWashOld(t *testing.T) {
	opts := defaultOptions()
	opts.MaxLifetime = time.Minute
	pool := New(opts, nonceMap(map[has.Address]uint64{}))

	trx := newTx(alice, 0, 1)
	assert.Nil(t, pool.Add(trx))

	// age the entry past the lifetime
	obj := pool.all.GetByHash(trx.Hash())
	obj.timeAdded = time.Now().Add(-2 * time.Minute).Unix()

	pool.WashOld()
	assert.Equal(t, 0, pool.Len())
}

func TestRemoveDropsStale(t *testing.T) {
	nonces := map[has.Address]uint64{}
	pool := New(defaultOptions(), nonceMap(nonces))

	tx0 := newTx(alice, 0, 1)
	tx0dup := newTx(alice, 0, 2) // same nonce, different hash
	assert.Nil(t, pool.Add(tx0))
	assert.Nil(t, pool.Add(tx0dup))

	// tx0dup was mined; the leftover nonce-0 entry is now stale and dropped
	nonces[alice] = 1
	pool.Remove(tx0dup.Hash())

	assert.Equal(t, 0, pool.Len())
	assert.Nil(t, pool.Get(tx0.Hash()))
}
