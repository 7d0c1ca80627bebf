// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api_test

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"

	"github.com/lutfi-haslab/haschain/api"
	"github.com/lutfi-haslab/haschain/genesis"
	"github.com/lutfi-haslab/haschain/has"
	"github.com/lutfi-haslab/haschain/lvldb"
	"github.com/lutfi-haslab/haschain/node"
	"github.com/lutfi-haslab/haschain/tx"
)

func newServer(t *testing.T) (*node.Node, *httptest.Server) {
	db, err := lvldb.NewMem()
	assert.Nil(t, err)
	n, err := node.New(db, genesis.NewDevnet())
	assert.Nil(t, err)

	handler := api.New(n.Chain(), n.Stater(), n.Pool(), api.Options{})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return n, srv
}

func getJSON(t *testing.T, url string, v interface{}) {
	resp, err := http.Get(url)
	assert.Nil(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestGetAccount(t *testing.T) {
	_, srv := newServer(t)

	var account struct {
		Balance string `json:"balance"`
		Nonce   uint64 `json:"nonce"`
		HasCode bool   `json:"hasCode"`
	}
	getJSON(t, srv.URL+"/accounts/"+genesis.DevAccounts()[0].String(), &account)

	assert.NotEqual(t, "0x0", account.Balance)
	assert.Equal(t, uint64(0), account.Nonce)
	assert.False(t, account.HasCode)

	// bad address is a 400
	resp, err := http.Get(srv.URL + "/accounts/notanaddress")
	assert.Nil(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetBlock(t *testing.T) {
	n, srv := newServer(t)
	genesisHash := n.Chain().BestBlock().Header().Hash()

	var blk struct {
		Number uint32      `json:"number"`
		Hash   has.Bytes32 `json:"hash"`
	}
	getJSON(t, srv.URL+"/blocks/best", &blk)
	assert.Equal(t, uint32(0), blk.Number)
	assert.Equal(t, genesisHash, blk.Hash)

	getJSON(t, srv.URL+"/blocks/0", &blk)
	assert.Equal(t, genesisHash, blk.Hash)

	getJSON(t, srv.URL+"/blocks/"+genesisHash.String(), &blk)
	assert.Equal(t, genesisHash, blk.Hash)

	resp, err := http.Get(srv.URL + "/blocks/12345")
	assert.Nil(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubmitAndQueryTransaction(t *testing.T) {
	n, srv := newServer(t)

	to := has.BytesToAddress([]byte("bob"))
	trx := new(tx.Builder).
		From(genesis.DevAccounts()[0]).
		To(&to).
		Value(big.NewInt(1)).
		Gas(21000).
		GasPrice(big.NewInt(1)).
		Build()
	raw, err := rlp.EncodeToBytes(trx)
	assert.Nil(t, err)

	body, _ := json.Marshal(map[string]string{"raw": "0x" + hex.EncodeToString(raw)})
	resp, err := http.Post(srv.URL+"/transactions", "application/json", bytes.NewReader(body))
	assert.Nil(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, n.Pool().Len())

	// queryable from the pool
	var got struct {
		Hash has.Bytes32 `json:"hash"`
	}
	getJSON(t, fmt.Sprintf("%s/transactions/%s", srv.URL, trx.Hash()), &got)
	assert.Equal(t, trx.Hash(), got.Hash)

	// pool status reflects it
	var status struct {
		Count int `json:"count"`
	}
	getJSON(t, srv.URL+"/pool", &status)
	assert.Equal(t, 1, status.Count)

	// after a block, the receipt is available
	genesisTime := n.Chain().BestBlock().Header().Timestamp()
	_, err = n.PackBlock(genesisTime + 10)
	assert.Nil(t, err)

	var receipt struct {
		Status  uint64 `json:"status"`
		GasUsed uint64 `json:"gasUsed"`
	}
	getJSON(t, fmt.Sprintf("%s/transactions/%s/receipt", srv.URL, trx.Hash()), &receipt)
	assert.Equal(t, tx.StatusSucceeded, receipt.Status)
	assert.Equal(t, uint64(21000), receipt.GasUsed)
}
