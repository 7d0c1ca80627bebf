// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lutfi-haslab/haschain/kv"
)

func TestGetPutDelete(t *testing.T) {
	db, err := NewMem()
	assert.Nil(t, err)
	defer db.Close()

	key := []byte("key")

	_, err = db.Get(key)
	assert.True(t, db.IsNotFound(err))

	assert.Nil(t, db.Put(key, []byte("value")))
	value, err := db.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, []byte("value"), value)

	has, err := db.Has(key)
	assert.Nil(t, err)
	assert.True(t, has)

	assert.Nil(t, db.Delete(key))
	_, err = db.Get(key)
	assert.True(t, db.IsNotFound(err))
}

func TestBatch(t *testing.T) {
	db, err := NewMem()
	assert.Nil(t, err)
	defer db.Close()

	batch := db.NewBatch()
	assert.Nil(t, batch.Put([]byte("a"), []byte("1")))
	assert.Nil(t, batch.Put([]byte("b"), []byte("2")))
	assert.Equal(t, 2, batch.Len())

	// nothing visible before write
	_, err = db.Get([]byte("a"))
	assert.True(t, db.IsNotFound(err))

	assert.Nil(t, batch.Write())
	value, err := db.Get([]byte("b"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("2"), value)
}

func TestIterator(t *testing.T) {
	db, err := NewMem()
	assert.Nil(t, err)
	defer db.Close()

	assert.Nil(t, db.Put([]byte("k1"), []byte("1")))
	assert.Nil(t, db.Put([]byte("k2"), []byte("2")))
	assert.Nil(t, db.Put([]byte("x1"), []byte("3")))

	iter := db.NewIterator(kv.Range{From: []byte("k"), To: []byte("l")})
	defer iter.Release()

	var keys []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	assert.Nil(t, iter.Error())
	assert.Equal(t, []string{"k1", "k2"}, keys)
}
