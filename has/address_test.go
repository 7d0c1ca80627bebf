// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package has

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0xf077b491b355e64048ce21e3a6fc4751eeea77fa")
	assert.Nil(t, err)
	assert.Equal(t, "0xf077b491b355e64048ce21e3a6fc4751eeea77fa", addr.String())

	_, err = ParseAddress("f077b491b355e64048ce21e3a6fc4751eeea77fa")
	assert.Nil(t, err)

	_, err = ParseAddress("0xf077")
	assert.NotNil(t, err)

	_, err = ParseAddress("zzf077b491b355e64048ce21e3a6fc4751eeea77fa")
	assert.NotNil(t, err)
}

func TestBytesToAddress(t *testing.T) {
	assert.Equal(t, Address{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}, BytesToAddress([]byte{1}))
	assert.True(t, Address{}.IsZero())
	assert.False(t, BytesToAddress([]byte{1}).IsZero())
}

func TestCreateContractAddress(t *testing.T) {
	sender := BytesToAddress([]byte("sender"))

	a1 := CreateContractAddress(sender, 0)
	a2 := CreateContractAddress(sender, 0)
	a3 := CreateContractAddress(sender, 1)

	// deterministic in (sender, nonce)
	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, a3)
	assert.NotEqual(t, a1, CreateContractAddress(BytesToAddress([]byte("other")), 0))
}

func TestMinimalBigEndian(t *testing.T) {
	assert.Equal(t, []byte(nil), minimalBigEndian(0))
	assert.Equal(t, []byte{1}, minimalBigEndian(1))
	assert.Equal(t, []byte{1, 0}, minimalBigEndian(256))
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, minimalBigEndian(^uint64(0)))
}
