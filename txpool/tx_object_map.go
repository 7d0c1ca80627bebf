// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package txpool

import (
	"sync"

	"github.com/lutfi-haslab/haschain/has"
)

// txObjectMap maintains the mapping of tx hash to tx object and account quota.
type txObjectMap struct {
	lock      sync.RWMutex
	mapByHash map[has.Bytes32]*txObject
	quota     map[has.Address]int
}

func newTxObjectMap() *txObjectMap {
	return &txObjectMap{
		mapByHash: make(map[has.Bytes32]*txObject),
		quota:     make(map[has.Address]int),
	}
}

func (m *txObjectMap) Contains(txHash has.Bytes32) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	_, found := m.mapByHash[txHash]
	return found
}

func (m *txObjectMap) Add(txObj *txObject, limitPerAccount int) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	hash := txObj.Hash()
	if _, found := m.mapByHash[hash]; found {
		return errKnownTx
	}

	sender := txObj.From()
	if m.quota[sender] >= limitPerAccount {
		return errAccountLimitExceeded
	}

	m.quota[sender]++
	m.mapByHash[hash] = txObj
	return nil
}

func (m *txObjectMap) Remove(txHash has.Bytes32) bool {
	m.lock.Lock()
	defer m.lock.Unlock()

	if txObj, ok := m.mapByHash[txHash]; ok {
		if m.quota[txObj.From()] > 1 {
			m.quota[txObj.From()]--
		} else {
			delete(m.quota, txObj.From())
		}
		delete(m.mapByHash, txHash)
		return true
	}
	return false
}

func (m *txObjectMap) Quota(sender has.Address) int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.quota[sender]
}

func (m *txObjectMap) GetByHash(txHash has.Bytes32) *txObject {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.mapByHash[txHash]
}

func (m *txObjectMap) ToTxObjects() txObjects {
	m.lock.RLock()
	defer m.lock.RUnlock()

	objs := make(txObjects, 0, len(m.mapByHash))
	for _, obj := range m.mapByHash {
		objs = append(objs, obj)
	}
	return objs
}

func (m *txObjectMap) BySender(sender has.Address) txObjects {
	m.lock.RLock()
	defer m.lock.RUnlock()

	var objs txObjects
	for _, obj := range m.mapByHash {
		if obj.From() == sender {
			objs = append(objs, obj)
		}
	}
	return objs
}

func (m *txObjectMap) Len() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.mapByHash)
}
