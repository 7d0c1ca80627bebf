// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lutfi-haslab/haschain/stackedmap"
)

func TestStackedMap(t *testing.T) {
	assert := assert.New(t)
	src := make(map[string]string)
	src["foo"] = "bar"

	sm := stackedmap.New(func(key interface{}) (interface{}, bool, error) {
		v, ok := src[key.(string)]
		return v, ok, nil
	})

	tests := []struct {
		f         func()
		depth     int
		putKey    string
		putValue  string
		getKey    string
		getReturn []interface{}
	}{
		{func() {}, 0, "", "", "foo", []interface{}{"bar", true}},
		{func() { sm.Push() }, 1, "foo", "baz", "foo", []interface{}{"baz", true}},
		{func() { sm.Push() }, 2, "foo", "qux", "foo", []interface{}{"qux", true}},
		{func() { sm.Pop() }, 1, "", "", "foo", []interface{}{"baz", true}},
		{func() { sm.Pop() }, 0, "", "", "foo", []interface{}{"bar", true}},

		{func() { sm.Push(); sm.Push() }, 2, "", "", "", nil},
		{func() { sm.PopTo(0) }, 0, "", "", "foo", []interface{}{"bar", true}},
	}

	for _, test := range tests {
		test.f()
		assert.Equal(sm.Depth(), test.depth)
		if test.putKey != "" {
			sm.Put(test.putKey, test.putValue)
		}
		if test.getKey != "" {
			v, ok, err := sm.Get(test.getKey)
			assert.Nil(err)
			assert.Equal([]interface{}{v, ok}, test.getReturn)
		}
	}
}

func TestSquash(t *testing.T) {
	assert := assert.New(t)

	sm := stackedmap.New(func(key interface{}) (interface{}, bool, error) {
		return nil, false, nil
	})

	sm.Push() // base
	sm.Put("a", 1)

	rev := sm.Push()
	sm.Put("a", 2)
	sm.Put("b", 3)

	sm.Squash(rev)
	assert.Equal(1, sm.Depth())

	// mutations stay visible after squash
	v, ok, _ := sm.Get("a")
	assert.True(ok)
	assert.Equal(2, v)
	v, ok, _ = sm.Get("b")
	assert.True(ok)
	assert.Equal(3, v)

	// popping the base still reverts everything
	sm.Pop()
	_, ok, _ = sm.Get("a")
	assert.False(ok)
}

func TestSquashNested(t *testing.T) {
	assert := assert.New(t)

	sm := stackedmap.New(func(key interface{}) (interface{}, bool, error) {
		return nil, false, nil
	})

	base := sm.Push()
	_ = base
	sm.Put("k", "base")

	outer := sm.Push()
	sm.Put("k", "outer")

	inner := sm.Push()
	sm.Put("k", "inner")

	sm.Squash(inner)
	v, _, _ := sm.Get("k")
	assert.Equal("inner", v)

	// outer level can still revert the squashed-in changes
	sm.PopTo(outer)
	v, _, _ = sm.Get("k")
	assert.Equal("base", v)
}

func TestJournal(t *testing.T) {
	assert := assert.New(t)

	sm := stackedmap.New(func(key interface{}) (interface{}, bool, error) {
		return nil, false, nil
	})

	sm.Push()
	sm.Put("a", 1)
	sm.Push()
	sm.Put("b", 2)

	var keys []string
	sm.Journal(func(k, v interface{}) bool {
		keys = append(keys, k.(string))
		return true
	})
	assert.Equal([]string{"a", "b"}, keys)

	// aborted traversal
	keys = nil
	sm.Journal(func(k, v interface{}) bool {
		keys = append(keys, k.(string))
		return false
	})
	assert.Equal([]string{"a"}, keys)
}
