// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lutfi-haslab/haschain/api/utils"
	"github.com/lutfi-haslab/haschain/has"
	"github.com/lutfi-haslab/haschain/txpool"
)

// Status is the JSON presentation of pool status.
type Status struct {
	Count  int           `json:"count"`
	Hashes []has.Bytes32 `json:"hashes"`
}

// Pool serves pool status reads.
type Pool struct {
	pool *txpool.TxPool
}

// New create a Pool endpoint group.
func New(p *txpool.TxPool) *Pool {
	return &Pool{pool: p}
}

func (p *Pool) handleGetStatus(w http.ResponseWriter, _ *http.Request) error {
	txs := p.pool.Dump()
	hashes := make([]has.Bytes32, 0, len(txs))
	for _, trx := range txs {
		hashes = append(hashes, trx.Hash())
	}
	return utils.WriteJSON(w, &Status{
		Count:  len(hashes),
		Hashes: hashes,
	})
}

// Mount attaches the endpoints to the router.
func (p *Pool) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(p.handleGetStatus))
}
