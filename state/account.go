// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/lutfi-haslab/haschain/has"
	"github.com/lutfi-haslab/haschain/kv"
)

// Account is the consensus representation of an account.
// RLP encoded objects are stored under `account:<hex-addr>` keys.
type Account struct {
	Balance *big.Int
	Nonce   uint64
	Code    []byte
}

// IsEmpty returns if an account is empty.
// An empty account has zero balance, zero nonce and no code.
func (a *Account) IsEmpty() bool {
	return a.Balance.Sign() == 0 && a.Nonce == 0 && len(a.Code) == 0
}

func emptyAccount() *Account {
	return &Account{Balance: &big.Int{}}
}

// AccountKey makes the persistence key for the given address.
func AccountKey(addr has.Address) []byte {
	return []byte("account:" + addr.String()[2:])
}

// StorageKey makes the persistence key for the given address and storage slot.
func StorageKey(addr has.Address, key has.Bytes32) []byte {
	return []byte("storage:" + addr.String()[2:] + ":" + key.String()[2:])
}

// loadAccount load an account object by address.
// It returns an empty account if no account found at the address.
func loadAccount(db kv.Getter, addr has.Address) (*Account, error) {
	data, err := db.Get(AccountKey(addr))
	if err != nil {
		if db.IsNotFound(err) {
			return emptyAccount(), nil
		}
		return nil, err
	}
	var a Account
	if err := rlp.DecodeBytes(data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// loadStorage load the storage value for given address and key.
// Absent slots read as zero.
func loadStorage(db kv.Getter, addr has.Address, key has.Bytes32) (has.Bytes32, error) {
	data, err := db.Get(StorageKey(addr, key))
	if err != nil {
		if db.IsNotFound(err) {
			return has.Bytes32{}, nil
		}
		return has.Bytes32{}, err
	}
	return has.BytesToBytes32(data), nil
}

// saveAccount save account into db at given address.
// If the given account is empty, the value for given address is deleted.
func saveAccount(db kv.Putter, addr has.Address, a *Account) error {
	if a.IsEmpty() {
		return db.Delete(AccountKey(addr))
	}
	data, err := rlp.EncodeToBytes(a)
	if err != nil {
		return err
	}
	return db.Put(AccountKey(addr), data)
}

// saveStorage save value for given address and key.
// Zero values delete the slot.
func saveStorage(db kv.Putter, addr has.Address, key has.Bytes32, value has.Bytes32) error {
	if value.IsZero() {
		return db.Delete(StorageKey(addr, key))
	}
	return db.Put(StorageKey(addr, key), value.Bytes())
}
