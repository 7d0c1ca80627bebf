// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/lutfi-haslab/haschain/has"
	"github.com/lutfi-haslab/haschain/kv"
	"github.com/lutfi-haslab/haschain/stackedmap"
)

var (
	// ErrInsufficientBalance returned by SubBalance if the balance is lower
	// than the amount to subtract.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrSnapshotNotFound returned by RevertTo/Commit for a revision that
	// was never created or was already invalidated.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// State manages the world state: an address keyed mapping to accounts with
// their balances, nonces, code and storage. All mutations are journaled in a
// stacked map, so the state supports LIFO nested checkpoints with
// revert/commit, while reads fall through to the backing kv store.
type State struct {
	db    kv.Getter
	cache map[has.Address]*Account // accounts loaded from db
	sm    *stackedmap.StackedMap   // keeps revisions of accounts state
}

// New create state object backed by the given kv store.
func New(db kv.Getter) *State {
	state := State{
		db:    db,
		cache: make(map[has.Address]*Account),
	}
	state.sm = stackedmap.New(func(key interface{}) (interface{}, bool, error) {
		return state.cacheGetter(key)
	})

	// the base level. revisions returned by NewCheckpoint are always > 0.
	state.sm.Push()
	return &state
}

// cacheGetter implements stackedmap.MapGetter.
func (s *State) cacheGetter(key interface{}) (value interface{}, exist bool, err error) {
	switch k := key.(type) {
	case has.Address: // get account
		acc, err := s.getLoadedAccount(k)
		if err != nil {
			return nil, false, err
		}
		return acc, true, nil
	case codeKey: // get code
		acc, err := s.getLoadedAccount(has.Address(k))
		if err != nil {
			return nil, false, err
		}
		return acc.Code, true, nil
	case storageKey: // get storage
		v, err := loadStorage(s.db, k.addr, k.key)
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	}
	panic(fmt.Errorf("unexpected key type %+v", key))
}

func (s *State) getLoadedAccount(addr has.Address) (*Account, error) {
	if acc, ok := s.cache[addr]; ok {
		return acc, nil
	}
	acc, err := loadAccount(s.db, addr)
	if err != nil {
		return nil, err
	}
	s.cache[addr] = acc
	return acc, nil
}

// getAccount gets account by address. The returned account should not be modified.
func (s *State) getAccount(addr has.Address) (*Account, error) {
	v, _, err := s.sm.Get(addr)
	if err != nil {
		return nil, err
	}
	return v.(*Account), nil
}

// getAccountCopy get a copy of account by address.
func (s *State) getAccountCopy(addr has.Address) (Account, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return Account{}, err
	}
	return *acc, nil
}

func (s *State) updateAccount(addr has.Address, acc *Account) {
	s.sm.Put(addr, acc)
}

// GetBalance returns balance for the given address.
func (s *State) GetBalance(addr has.Address) (*big.Int, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return nil, &Error{err}
	}
	return acc.Balance, nil
}

// AddBalance adds amount to the balance of the given address.
func (s *State) AddBalance(addr has.Address, amount *big.Int) error {
	cpy, err := s.getAccountCopy(addr)
	if err != nil {
		return &Error{err}
	}
	cpy.Balance = new(big.Int).Add(cpy.Balance, amount)
	s.updateAccount(addr, &cpy)
	return nil
}

// SubBalance subtracts amount from the balance of the given address.
// It fails with ErrInsufficientBalance if the balance is lower than amount,
// leaving the state untouched.
func (s *State) SubBalance(addr has.Address, amount *big.Int) error {
	cpy, err := s.getAccountCopy(addr)
	if err != nil {
		return &Error{err}
	}
	if cpy.Balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	cpy.Balance = new(big.Int).Sub(cpy.Balance, amount)
	s.updateAccount(addr, &cpy)
	return nil
}

// GetNonce returns nonce of the given address.
func (s *State) GetNonce(addr has.Address) (uint64, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return 0, &Error{err}
	}
	return acc.Nonce, nil
}

// SetNonce sets nonce of the given address.
func (s *State) SetNonce(addr has.Address, nonce uint64) error {
	cpy, err := s.getAccountCopy(addr)
	if err != nil {
		return &Error{err}
	}
	cpy.Nonce = nonce
	s.updateAccount(addr, &cpy)
	return nil
}

// IncrementNonce bumps the nonce of the given address by one.
func (s *State) IncrementNonce(addr has.Address) error {
	cpy, err := s.getAccountCopy(addr)
	if err != nil {
		return &Error{err}
	}
	cpy.Nonce++
	s.updateAccount(addr, &cpy)
	return nil
}

// GetCode returns code for the given address.
func (s *State) GetCode(addr has.Address) ([]byte, error) {
	v, _, err := s.sm.Get(codeKey(addr))
	if err != nil {
		return nil, &Error{err}
	}
	return v.([]byte), nil
}

// GetCodeHash returns code hash for the given address.
// Zero hash for an address without code.
func (s *State) GetCodeHash(addr has.Address) (has.Bytes32, error) {
	code, err := s.GetCode(addr)
	if err != nil {
		return has.Bytes32{}, err
	}
	if len(code) == 0 {
		return has.Bytes32{}, nil
	}
	return has.Keccak256(code), nil
}

// SetCode set code for the given address.
func (s *State) SetCode(addr has.Address, code []byte) error {
	s.sm.Put(codeKey(addr), append([]byte(nil), code...))
	cpy, err := s.getAccountCopy(addr)
	if err != nil {
		return &Error{err}
	}
	cpy.Code = append([]byte(nil), code...)
	s.updateAccount(addr, &cpy)
	return nil
}

// GetStorage returns storage value for the given address and key.
// Absent slots read as zero.
func (s *State) GetStorage(addr has.Address, key has.Bytes32) (has.Bytes32, error) {
	v, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return has.Bytes32{}, &Error{err}
	}
	return v.(has.Bytes32), nil
}

// SetStorage set storage value for the given address and key.
// Storing a zero value deletes the slot.
func (s *State) SetStorage(addr has.Address, key, value has.Bytes32) {
	s.sm.Put(storageKey{addr, key}, value)
}

// Exists returns whether an account exists at the given address.
// See Account.IsEmpty()
func (s *State) Exists(addr has.Address) (bool, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return false, &Error{err}
	}
	return !acc.IsEmpty(), nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
// The state is restored exactly to what it was when the checkpoint was made,
// and the revision plus all later ones are invalidated.
func (s *State) RevertTo(revision int) error {
	if revision < 1 || revision >= s.sm.Depth() {
		return ErrSnapshotNotFound
	}
	s.sm.PopTo(revision)
	return nil
}

// Commit discards the checkpoint specified by revision while keeping all
// mutations made since, so outer checkpoints can still revert further.
func (s *State) Commit(revision int) error {
	if revision < 1 || revision >= s.sm.Depth() {
		return ErrSnapshotNotFound
	}
	s.sm.Squash(revision)
	return nil
}

type (
	storageKey struct {
		addr has.Address
		key  has.Bytes32
	}
	codeKey has.Address
)
