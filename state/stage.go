// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"io"
	"sort"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/lutfi-haslab/haschain/has"
	"github.com/lutfi-haslab/haschain/kv"
)

// changedObject holds the post-state of a touched account.
type changedObject struct {
	data    Account
	storage map[has.Bytes32]has.Bytes32
}

// Stage abstracts the changes accumulated by a state instance. It computes
// the state root over all modified accounts and can commit the changes to
// the backing kv store.
type Stage struct {
	changes map[has.Address]*changedObject
}

// Stage makes a stage object over the current journal.
// The journal is traversed in order, so the stage reflects every mutation
// made through the state regardless of checkpoint nesting.
func (s *State) Stage() *Stage {
	changes := make(map[has.Address]*changedObject)

	getChanged := func(addr has.Address) *changedObject {
		if obj, ok := changes[addr]; ok {
			return obj
		}
		obj := &changedObject{}
		changes[addr] = obj
		return obj
	}

	s.sm.Journal(func(k, v interface{}) bool {
		switch key := k.(type) {
		case has.Address:
			getChanged(key).data = *(v.(*Account))
		case codeKey:
			// code is carried inside the account record; nothing to do here
		case storageKey:
			c := getChanged(key.addr)
			if c.storage == nil {
				c.storage = make(map[has.Bytes32]has.Bytes32)
			}
			c.storage[key.key] = v.(has.Bytes32)
		}
		return true
	})

	// storage-only touches still need account data for the root
	for addr, c := range changes {
		if c.data.Balance == nil {
			if acc, err := s.getAccount(addr); err == nil {
				c.data = *acc
			} else {
				c.data = *emptyAccount()
			}
		}
	}

	return &Stage{changes: changes}
}

// Hash computes the state root: a content hash over the canonical
// serialization of all modified accounts and their modified storage,
// ordered by address and slot key. Recomputing on the same change set
// yields the same value bit-for-bit.
func (st *Stage) Hash() has.Bytes32 {
	addrs := make([]has.Address, 0, len(st.changes))
	for addr := range st.changes {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return string(addrs[i].Bytes()) < string(addrs[j].Bytes())
	})

	return has.Blake2bFn(func(w io.Writer) {
		for _, addr := range addrs {
			c := st.changes[addr]

			keys := make([]has.Bytes32, 0, len(c.storage))
			for k := range c.storage {
				keys = append(keys, k)
			}
			sort.Slice(keys, func(i, j int) bool {
				return string(keys[i].Bytes()) < string(keys[j].Bytes())
			})

			slots := make([][2]has.Bytes32, 0, len(keys))
			for _, k := range keys {
				slots = append(slots, [2]has.Bytes32{k, c.storage[k]})
			}

			rlp.Encode(w, []interface{}{
				addr,
				c.data.Balance,
				c.data.Nonce,
				c.data.Code,
				slots,
			})
		}
	})
}

// Commit writes all changes to the given store.
// Empty accounts and zero storage slots are deleted rather than written.
func (st *Stage) Commit(db kv.Putter) error {
	batch := db.NewBatch()
	for addr, c := range st.changes {
		cpy := c.data
		if err := saveAccount(batch, addr, &cpy); err != nil {
			return &Error{err}
		}
		for k, v := range c.storage {
			if err := saveStorage(batch, addr, k, v); err != nil {
				return &Error{err}
			}
		}
	}
	if err := batch.Write(); err != nil {
		return &Error{err}
	}
	return nil
}
